package diag

import "silica/internal/source"

// Note is a secondary message attached to a diagnostic, pointing at a
// different location than the primary span ("previous declaration here").
type Note struct {
	Span    source.Span
	Message string
}

// Diagnostic is one structured compiler message. Resolution accumulates
// diagnostics instead of halting, so one compile reports everything it found.
type Diagnostic struct {
	Severity Severity
	Category Category
	Message  string
	Primary  source.Span
	Notes    []Note
}

// Error builds an error diagnostic.
func Error(cat Category, span source.Span, message string) Diagnostic {
	return Diagnostic{Severity: SevError, Category: cat, Message: message, Primary: span}
}

// Warning builds a warning diagnostic.
func Warning(span source.Span, message string) Diagnostic {
	return Diagnostic{Severity: SevWarning, Category: CatWarning, Message: message, Primary: span}
}

// Info builds an informational diagnostic.
func Info(span source.Span, message string) Diagnostic {
	return Diagnostic{Severity: SevInfo, Category: CatWarning, Message: message, Primary: span}
}

// WithNote returns a copy of the diagnostic with an extra located note.
func (d Diagnostic) WithNote(span source.Span, message string) Diagnostic {
	d.Notes = append(d.Notes[:len(d.Notes):len(d.Notes)], Note{Span: span, Message: message})
	return d
}
