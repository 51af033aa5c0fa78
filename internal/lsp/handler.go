// Package lsp implements the language server: it keeps the live buffer
// contents, reruns the front-end pipeline on every change and publishes the
// resulting diagnostics.
package lsp

import (
	"fmt"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"silica/internal/ast"
	"silica/internal/diag"
	"silica/internal/driver"
	"silica/internal/project"
	"silica/internal/source"
	"silica/internal/target"
)

const ServerName = "silica"

// document is the cached state of one open buffer.
type document struct {
	text   string
	target target.Target

	// Rebuilt on every edit.
	files *source.FileSet
	unit  *ast.SourceUnit
	bag   *diag.Bag
}

// Handler implements the protocol methods the server advertises.
type Handler struct {
	mu   sync.RWMutex
	docs map[protocol.DocumentUri]*document
}

func NewHandler() *Handler {
	return &Handler{docs: make(map[protocol.DocumentUri]*document)}
}

// Initialize advertises capabilities: full-document sync, completion and
// semantic tokens.
func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
			CompletionProvider: &protocol.CompletionOptions{
				ResolveProvider: ptrBool(false),
			},
			SemanticTokensProvider: &protocol.SemanticTokensOptions{
				Legend: protocol.SemanticTokensLegend{
					TokenTypes:     SemanticTokenTypes,
					TokenModifiers: SemanticTokenModifiers,
				},
				Full: ptrBool(true),
			},
		},
		ServerInfo: &protocol.InitializeResultServerInfo{Name: ServerName},
	}, nil
}

func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (h *Handler) Shutdown(ctx *glsp.Context) error {
	return nil
}

func (h *Handler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// TextDocumentDidOpen compiles the opened buffer and publishes diagnostics.
func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	doc := h.refresh(uri, params.TextDocument.Text)
	publishDiagnostics(ctx, uri, doc)
	return nil
}

// TextDocumentDidChange applies a full-sync edit and republishes.
func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	text, ok := wholeText(params.ContentChanges)
	if !ok {
		h.mu.RLock()
		doc := h.docs[uri]
		h.mu.RUnlock()
		if doc == nil {
			return fmt.Errorf("change for unopened document %s", uri)
		}
		text = doc.text
	}
	doc := h.refresh(uri, text)
	publishDiagnostics(ctx, uri, doc)
	return nil
}

func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	h.mu.Lock()
	delete(h.docs, params.TextDocument.URI)
	h.mu.Unlock()

	// Clear stale squiggles for the closed buffer.
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

// TextDocumentCompletion offers keywords, elementary types and builtins.
func (h *Handler) TextDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	return &protocol.CompletionList{
		IsIncomplete: false,
		Items:        completionItems(),
	}, nil
}

// TextDocumentSemanticTokensFull walks the parse tree and reports declaration
// tokens in the LSP delta encoding.
func (h *Handler) TextDocumentSemanticTokensFull(ctx *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	h.mu.RLock()
	doc := h.docs[params.TextDocument.URI]
	h.mu.RUnlock()
	if doc == nil || doc.unit == nil {
		return &protocol.SemanticTokens{Data: []protocol.UInteger{}}, nil
	}
	file := doc.files.File(source.FileID(0))
	return &protocol.SemanticTokens{Data: encodeTokens(collectTokens(doc.unit, file))}, nil
}

// refresh reparses and re-resolves one buffer and caches the outcome.
func (h *Handler) refresh(uri protocol.DocumentUri, text string) *document {
	doc := &document{text: text, target: targetFor(uri)}

	result := driver.Compile(doc.target, driver.Input{Path: uriDisplayPath(uri), Text: text})
	doc.files = result.Files
	doc.bag = result.Bag
	doc.unit = result.Units[0]

	h.mu.Lock()
	h.docs[uri] = doc
	h.mu.Unlock()
	return doc
}

// targetFor picks the deployment target from the nearest manifest, falling
// back to EVM for buffers outside any project.
func targetFor(uri protocol.DocumentUri) target.Target {
	path, err := uriToPath(uri)
	if err != nil {
		return target.EVM
	}
	manifest, ok, err := project.Load(filepath.Dir(path))
	if err != nil || !ok {
		return target.EVM
	}
	return manifest.Target()
}

func wholeText(changes []any) (string, bool) {
	for _, change := range changes {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			return c.Text, true
		case protocol.TextDocumentContentChangeEvent:
			if c.Range == nil {
				return c.Text, true
			}
		}
	}
	return "", false
}

func publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, doc *document) {
	if ctx == nil {
		return
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: ConvertDiagnostics(doc.files, doc.bag, uri),
	})
}

// uriToPath converts a file:// URI to a platform path.
func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}
	path := u.Path
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path), nil
}

// uriDisplayPath is the path used in rendered diagnostics; the raw URI is a
// reasonable fallback for untitled buffers.
func uriDisplayPath(uri protocol.DocumentUri) string {
	if path, err := uriToPath(uri); err == nil {
		return path
	}
	return string(uri)
}

func ptrBool(b bool) *bool {
	return &b
}

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
