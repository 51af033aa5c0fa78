package sema

import "silica/internal/source"

// Local is a function-local binding: a parameter, a declared variable, or a
// try/catch binding. Slots index a per-function arena, so codegen can map
// them straight to stack locations.
type Local struct {
	Name     string
	Type     Type
	Slot     int
	Span     source.Span
	IsParam  bool
	Read     bool
	Assigned bool
}

type scope struct {
	names map[string]*Local
	loop  bool
	// break/continue counters accumulate on the innermost loop scope and
	// feed loop reachability.
	breaks    int
	continues int
}

// symTable is the block-structured symbol table for one function body.
// Every local ever declared stays in the arena; scopes only control name
// visibility.
type symTable struct {
	arena  []*Local
	scopes []*scope
}

func newSymTable() *symTable {
	return &symTable{}
}

// push opens a scope; loop scopes additionally collect break and continue
// counts.
func (st *symTable) push(loop bool) {
	st.scopes = append(st.scopes, &scope{names: map[string]*Local{}, loop: loop})
}

// pop closes the innermost scope and returns its bindings so the caller can
// report unused locals.
func (st *symTable) pop() []*Local {
	last := st.scopes[len(st.scopes)-1]
	st.scopes = st.scopes[:len(st.scopes)-1]
	out := make([]*Local, 0, len(last.names))
	for _, l := range last.names {
		out = append(out, l)
	}
	return out
}

// declare binds a name in the innermost scope. It returns the new local and,
// when the name shadows a binding in an enclosing scope, that binding.
// Redeclaration in the same scope returns shadowed == the conflicting local
// with sameScope set.
func (st *symTable) declare(name string, ty Type, span source.Span) (local *Local, shadowed *Local, sameScope bool) {
	current := st.scopes[len(st.scopes)-1]
	if prior, ok := current.names[name]; ok {
		shadowed, sameScope = prior, true
	} else {
		for i := len(st.scopes) - 2; i >= 0; i-- {
			if prior, ok := st.scopes[i].names[name]; ok {
				shadowed = prior
				break
			}
		}
	}
	local = &Local{Name: name, Type: ty, Slot: len(st.arena), Span: span}
	st.arena = append(st.arena, local)
	current.names[name] = local
	return local, shadowed, sameScope
}

// lookup resolves a name from the innermost scope outward.
func (st *symTable) lookup(name string) *Local {
	for i := len(st.scopes) - 1; i >= 0; i-- {
		if l, ok := st.scopes[i].names[name]; ok {
			return l
		}
	}
	return nil
}

// inLoop reports whether any open scope is a loop scope.
func (st *symTable) inLoop() bool {
	for i := len(st.scopes) - 1; i >= 0; i-- {
		if st.scopes[i].loop {
			return true
		}
	}
	return false
}

// noteBreak bumps the break counter of the innermost loop scope.
func (st *symTable) noteBreak() {
	if sc := st.innermostLoop(); sc != nil {
		sc.breaks++
	}
}

// noteContinue bumps the continue counter of the innermost loop scope.
func (st *symTable) noteContinue() {
	if sc := st.innermostLoop(); sc != nil {
		sc.continues++
	}
}

// loopBreaks reads the break counter of the innermost loop scope.
func (st *symTable) loopBreaks() int {
	if sc := st.innermostLoop(); sc != nil {
		return sc.breaks
	}
	return 0
}

func (st *symTable) innermostLoop() *scope {
	for i := len(st.scopes) - 1; i >= 0; i-- {
		if st.scopes[i].loop {
			return st.scopes[i]
		}
	}
	return nil
}

// slotCount is the arena size, i.e. how many local slots the function needs.
func (st *symTable) slotCount() int {
	return len(st.arena)
}
