// Package main starts the silica language server on stdio.
package main

import (
	"os"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"silica/internal/lsp"
)

func main() {
	commonlog.Configure(1, nil)
	log := commonlog.GetLogger("silica.lsp")

	h := lsp.NewHandler()
	handler := protocol.Handler{
		Initialize:                     h.Initialize,
		Initialized:                    h.Initialized,
		Shutdown:                       h.Shutdown,
		SetTrace:                       h.SetTrace,
		TextDocumentDidOpen:            h.TextDocumentDidOpen,
		TextDocumentDidChange:          h.TextDocumentDidChange,
		TextDocumentDidClose:           h.TextDocumentDidClose,
		TextDocumentCompletion:         h.TextDocumentCompletion,
		TextDocumentSemanticTokensFull: h.TextDocumentSemanticTokensFull,
	}

	s := server.NewServer(&handler, lsp.ServerName, false)
	log.Info("starting language server")
	if err := s.RunStdio(); err != nil {
		log.Errorf("server stopped: %s", err.Error())
		os.Exit(1)
	}
}
