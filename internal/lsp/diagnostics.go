package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"silica/internal/diag"
	"silica/internal/source"
)

// ConvertDiagnostics maps the pipeline's diagnostics into protocol form.
// Notes become related information pointing at their own spans.
func ConvertDiagnostics(files *source.FileSet, bag *diag.Bag, uri protocol.DocumentUri) []protocol.Diagnostic {
	bag.Sort()

	// A non-nil empty slice clears previous squiggles client-side.
	out := make([]protocol.Diagnostic, 0, bag.Len())
	for _, d := range bag.Items() {
		rng, ok := spanToRange(files, d.Primary)
		if !ok {
			continue
		}
		pd := protocol.Diagnostic{
			Range:    rng,
			Severity: ptrSeverity(severityOf(d.Severity)),
			Source:   ptrString(ServerName),
			Message:  d.Message,
		}
		for _, note := range d.Notes {
			nrng, ok := spanToRange(files, note.Span)
			if !ok {
				continue
			}
			pd.RelatedInformation = append(pd.RelatedInformation, protocol.DiagnosticRelatedInformation{
				Location: protocol.Location{URI: uri, Range: nrng},
				Message:  note.Message,
			})
		}
		out = append(out, pd)
	}
	return out
}

func spanToRange(files *source.FileSet, sp source.Span) (protocol.Range, bool) {
	file := files.File(sp.File)
	if file == nil {
		return protocol.Range{}, false
	}
	start := file.Position(sp.Start)
	end := file.Position(sp.End)
	return protocol.Range{
		Start: protocol.Position{Line: uint32(start.Line - 1), Character: uint32(start.Column - 1)},
		End:   protocol.Position{Line: uint32(end.Line - 1), Character: uint32(end.Column - 1)},
	}, true
}

func severityOf(s diag.Severity) protocol.DiagnosticSeverity {
	switch s {
	case diag.SevError:
		return protocol.DiagnosticSeverityError
	case diag.SevWarning:
		return protocol.DiagnosticSeverityWarning
	}
	return protocol.DiagnosticSeverityInformation
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func ptrString(s string) *string {
	return &s
}
