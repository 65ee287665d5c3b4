// SPDX-License-Identifier: Apache-2.0

// Command pidgin-lsp runs the diagnostics-only Language Server Protocol
// server (spec.md §6 supplement) over stdio.
package main

import (
	"log"
	"os"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"pidgin/internal/lsp"
)

const lsName = "pidgin"

var version = "0.0.1"

func main() {
	commonlog.Configure(1, nil)

	h := lsp.NewHandler()
	handler := protocol.Handler{
		Initialize:            h.Initialize,
		Initialized:           h.Initialized,
		Shutdown:              h.Shutdown,
		TextDocumentDidOpen:   h.TextDocumentDidOpen,
		TextDocumentDidClose:  h.TextDocumentDidClose,
		TextDocumentDidChange: h.TextDocumentDidChange,
	}

	s := server.NewServer(&handler, lsName, false)

	log.Println("starting pidgin-lsp", version)
	if err := s.RunStdio(); err != nil {
		log.Println("pidgin-lsp exited:", err)
		os.Exit(1)
	}
}
