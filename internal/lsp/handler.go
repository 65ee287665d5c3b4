// SPDX-License-Identifier: Apache-2.0

// Package lsp implements a diagnostics-only Language Server Protocol
// handler (spec.md §6 supplement): it compiles whichever document changed
// and reports the first compile/lifetime error it hits as an LSP
// diagnostic. There is no completion or semantic-token support — nothing
// in spec.md 6's source syntax table has the kind of static type
// information those features need, and the spec's own External
// Interfaces supplement scopes this surface to diagnostics alone.
package lsp

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"pidgin/internal/symtab"
	"pidgin/internal/vm"
)

// Handler implements the LSP server callbacks glsp dispatches to.
type Handler struct {
	mu      sync.RWMutex
	content map[string]string
}

func NewHandler() *Handler {
	return &Handler{content: make(map[string]string)}
}

func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Println("pidgin-lsp Initialize called")
	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
		},
	}, nil
}

func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Println("pidgin-lsp initialized")
	return nil
}

func (h *Handler) Shutdown(ctx *glsp.Context) error {
	log.Println("pidgin-lsp shutdown")
	return nil
}

func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	return h.recompile(ctx, params.TextDocument.URI, &params.TextDocument.Text)
}

func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	return h.recompile(ctx, params.TextDocument.URI, nil)
}

func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return fmt.Errorf("failed to convert URI %s: %w", params.TextDocument.URI, err)
	}
	h.mu.Lock()
	delete(h.content, path)
	h.mu.Unlock()
	return nil
}

// recompile re-reads the document (from text if the notification carried
// it, otherwise from disk) and publishes either an empty diagnostics list
// (clearing any earlier error) or a single diagnostic for the first
// compile failure. Pidgin's compiler stops at the first error (spec.md 2),
// so there is at most one diagnostic per document at a time.
func (h *Handler) recompile(ctx *glsp.Context, uri protocol.DocumentUri, text *string) error {
	path, err := uriToPath(uri)
	if err != nil {
		return fmt.Errorf("failed to convert URI %s: %w", uri, err)
	}

	var source string
	if text != nil {
		source = *text
	} else {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", path, err)
		}
		source = string(raw)
	}

	h.mu.Lock()
	h.content[path] = source
	h.mu.Unlock()

	_, compileErr := vm.Compile(symtab.New(), source)
	sendDiagnosticNotification(ctx, uri, diagnosticsFor(compileErr))
	return nil
}

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

func sendDiagnosticNotification(ctx *glsp.Context, uri protocol.URI, diagnostics []protocol.Diagnostic) {
	if data, err := json.Marshal(diagnostics); err == nil {
		log.Println("publishing diagnostics:", string(data))
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func ptrBool(b bool) *bool { return &b }

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind { return &k }
