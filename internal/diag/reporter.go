package diag

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"silica/internal/source"
)

// Reporter renders diagnostics with source snippets and markers. It maps the
// byte-offset spans back to line/column through the file set.
type Reporter struct {
	files *source.FileSet
}

func NewReporter(files *source.FileSet) *Reporter {
	return &Reporter{files: files}
}

// Format renders one diagnostic in Rust-like style: a header line, the source
// line with a marker underneath, then each note with its own location.
func (r *Reporter) Format(d Diagnostic) string {
	var out strings.Builder

	levelColor := r.levelColor(d.Severity)
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	out.WriteString(fmt.Sprintf("%s: %s\n", levelColor(d.Severity.String()), d.Message))

	file := r.files.File(d.Primary.File)
	if file == nil {
		return out.String()
	}
	pos := file.Position(d.Primary.Start)
	width := lineNumberWidth(pos.Line)
	indent := strings.Repeat(" ", width)

	out.WriteString(fmt.Sprintf("%s %s %s:%d:%d\n", indent, dim("-->"), file.Path, pos.Line, pos.Column))
	out.WriteString(fmt.Sprintf("%s %s\n", indent, dim("|")))

	line := file.Line(pos.Line)
	out.WriteString(fmt.Sprintf("%s %s %s\n", bold(fmt.Sprintf("%*d", width, pos.Line)), dim("|"), line))
	out.WriteString(fmt.Sprintf("%s %s %s\n", indent, dim("|"), r.marker(d, pos, line)))

	noteColor := color.New(color.FgBlue).SprintFunc()
	for _, note := range d.Notes {
		nf := r.files.File(note.Span.File)
		if nf == nil {
			continue
		}
		npos := nf.Position(note.Span.Start)
		out.WriteString(fmt.Sprintf("%s %s %s %s\n", indent, dim("|"), noteColor("note:"), note.Message))
		out.WriteString(fmt.Sprintf("%s %s %s:%d:%d\n", indent, dim("-->"), nf.Path, npos.Line, npos.Column))
		nline := nf.Line(npos.Line)
		out.WriteString(fmt.Sprintf("%s %s %s\n", dim(fmt.Sprintf("%*d", width, npos.Line)), dim("|"), nline))
	}

	out.WriteString("\n")
	return out.String()
}

// FormatAll renders every diagnostic in the bag in sorted order.
func (r *Reporter) FormatAll(bag *Bag) string {
	bag.Sort()
	var out strings.Builder
	for _, d := range bag.Items() {
		out.WriteString(r.Format(d))
	}
	return out.String()
}

func (r *Reporter) marker(d Diagnostic, pos source.Position, line string) string {
	length := int(d.Primary.Len())
	if length < 1 {
		length = 1
	}
	// Keep the marker on the primary line even for multi-line spans.
	if remaining := len(line) - (pos.Column - 1); length > remaining && remaining > 0 {
		length = remaining
	}
	spaces := strings.Repeat(" ", maxInt(0, pos.Column-1))
	markerColor := color.New(color.FgRed, color.Bold).SprintFunc()
	if d.Severity == SevWarning {
		markerColor = color.New(color.FgYellow, color.Bold).SprintFunc()
	}
	return spaces + markerColor(strings.Repeat("^", length))
}

func (r *Reporter) levelColor(s Severity) func(...interface{}) string {
	switch s {
	case SevError:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case SevWarning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	default:
		return color.New(color.FgBlue, color.Bold).SprintFunc()
	}
}

func lineNumberWidth(line int) int {
	width := len(fmt.Sprintf("%d", line))
	if width < 3 {
		width = 3
	}
	return width
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
