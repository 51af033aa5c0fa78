package diag

import "sort"

// Bag accumulates diagnostics for one compilation unit. It is deliberately
// not safe for concurrent use: exactly one namespace owns exactly one bag.
type Bag struct {
	items []Diagnostic
}

func NewBag() *Bag {
	return &Bag{}
}

// Add appends a diagnostic.
func (b *Bag) Add(d Diagnostic) {
	b.items = append(b.items, d)
}

// Extend appends every diagnostic from items. Overload resolution uses this
// to merge a candidate's isolated scratch list into the real sink.
func (b *Bag) Extend(items []Diagnostic) {
	b.items = append(b.items, items...)
}

// HasErrors reports whether any diagnostic has error severity. This is the
// single gate for proceeding to code generation.
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity == SevError {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns the accumulated diagnostics. The slice aliases the bag's
// internal storage and must not be modified.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// ErrorCount returns the number of error-severity diagnostics.
func (b *Bag) ErrorCount() int {
	n := 0
	for i := range b.items {
		if b.items[i].Severity == SevError {
			n++
		}
	}
	return n
}

// WarningCount returns the number of warning-severity diagnostics.
func (b *Bag) WarningCount() int {
	n := 0
	for i := range b.items {
		if b.items[i].Severity == SevWarning {
			n++
		}
	}
	return n
}

// Sort orders diagnostics by file, start offset, end offset and severity so
// output is deterministic regardless of resolution order.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		return di.Severity > dj.Severity
	})
}
