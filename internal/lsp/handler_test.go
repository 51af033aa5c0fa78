package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"silica/internal/diag"
	"silica/internal/parser"
	"silica/internal/source"
)

func TestConvertDiagnosticsMapsRangesAndSeverity(t *testing.T) {
	src := "contract C {\n    function f() public {\n        return 1;\n    }\n}"
	files := source.NewFileSet()
	id := files.Add("test.sil", src)

	bag := diag.NewBag()
	bag.Add(diag.Warning(source.Span{File: id, Start: 45, End: 51}, "value is never used"))

	out := ConvertDiagnostics(files, bag, "file:///test.sil")
	require.Len(t, out, 1)
	assert.Equal(t, "value is never used", out[0].Message)
	assert.Equal(t, protocol.DiagnosticSeverityWarning, *out[0].Severity)
	assert.Equal(t, ServerName, *out[0].Source)
	assert.Equal(t, uint32(2), out[0].Range.Start.Line, "ranges are 0-based")
}

func TestConvertDiagnosticsCarriesNotes(t *testing.T) {
	src := "contract C { }"
	files := source.NewFileSet()
	id := files.Add("test.sil", src)

	bag := diag.NewBag()
	bag.Add(diag.Error(diag.CatDeclaration, source.Span{File: id, Start: 9, End: 10}, "redeclared").
		WithNote(source.Span{File: id, Start: 0, End: 8}, "first declared here"))

	out := ConvertDiagnostics(files, bag, "file:///test.sil")
	require.Len(t, out, 1)
	require.Len(t, out[0].RelatedInformation, 1)
	assert.Equal(t, "first declared here", out[0].RelatedInformation[0].Message)
	assert.Equal(t, protocol.DocumentUri("file:///test.sil"), out[0].RelatedInformation[0].Location.URI)
}

func TestConvertDiagnosticsClearsWithEmptySlice(t *testing.T) {
	files := source.NewFileSet()
	files.Add("test.sil", "contract C { }")
	out := ConvertDiagnostics(files, diag.NewBag(), "file:///test.sil")
	require.NotNil(t, out)
	assert.Empty(t, out)
}

func TestSemanticTokensClassifyDeclarations(t *testing.T) {
	src := `contract Token {
    uint256 constant LIMIT = 10;
    event Minted(address to);
    function mint(address to) public { emit Minted(to); }
}`
	files := source.NewFileSet()
	id := files.Add("test.sil", src)
	bag := diag.NewBag()
	unit := parser.ParseSource(id, src, bag)
	require.False(t, bag.HasErrors())

	tokens := collectTokens(unit, files.File(id))
	require.NotEmpty(t, tokens)

	kinds := map[uint32]int{}
	for _, tok := range tokens {
		kinds[tok.Type]++
	}
	assert.Equal(t, 1, kinds[tokType], "contract name")
	assert.Equal(t, 1, kinds[tokEvent], "event name")
	assert.Equal(t, 1, kinds[tokFunction], "function name")
	assert.Equal(t, 1, kinds[tokParameter], "function parameter")
	assert.Equal(t, 2, kinds[tokProperty], "state variable plus event field")

	// The constant carries the readonly modifier.
	foundReadonly := false
	for _, tok := range tokens {
		if tok.Type == tokProperty && tok.Modifiers&modReadonly != 0 {
			foundReadonly = true
		}
	}
	assert.True(t, foundReadonly)
}

func TestEncodeTokensDeltaCompression(t *testing.T) {
	tokens := []semanticToken{
		{Line: 0, StartChar: 9, Length: 5, Type: tokType, Modifiers: modDeclaration},
		{Line: 2, StartChar: 13, Length: 4, Type: tokFunction, Modifiers: 0},
		{Line: 2, StartChar: 20, Length: 2, Type: tokParameter, Modifiers: 0},
	}
	data := encodeTokens(tokens)
	require.Len(t, data, 15)

	assert.Equal(t, []protocol.UInteger{0, 9, 5, tokType, modDeclaration}, data[0:5])
	assert.Equal(t, []protocol.UInteger{2, 13, 4, tokFunction, 0}, data[5:10])
	assert.Equal(t, []protocol.UInteger{0, 7, 2, tokParameter, 0}, data[10:15], "same-line start is a delta")
}

func TestRefreshCachesDocumentState(t *testing.T) {
	h := NewHandler()
	doc := h.refresh("file:///tmp/buffer.sil", "contract C { uint256 public n; }")
	require.NotNil(t, doc)
	assert.NotNil(t, doc.unit)
	assert.False(t, doc.bag.HasErrors())

	broken := h.refresh("file:///tmp/buffer.sil", "contract C {")
	assert.True(t, broken.bag.HasErrors())

	h.mu.RLock()
	cached := h.docs["file:///tmp/buffer.sil"]
	h.mu.RUnlock()
	assert.Same(t, broken, cached)
}

func TestWholeTextExtractsFullSync(t *testing.T) {
	text, ok := wholeText([]any{protocol.TextDocumentContentChangeEventWhole{Text: "contract A { }"}})
	require.True(t, ok)
	assert.Equal(t, "contract A { }", text)

	_, ok = wholeText(nil)
	assert.False(t, ok)
}

func TestCompletionItemsCoverCoreSurface(t *testing.T) {
	items := completionItems()
	labels := map[string]bool{}
	for _, item := range items {
		labels[item.Label] = true
	}
	for _, want := range []string{"contract", "mapping", "uint256", "require", "msg.sender"} {
		assert.True(t, labels[want], want)
	}
}
