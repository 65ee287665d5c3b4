// SPDX-License-Identifier: Apache-2.0
package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"pidgin/internal/errors"
)

// diagnosticsFor converts a reader/compiler error into the LSP diagnostics
// list to publish: empty when err is nil (clearing any earlier error), one
// entry otherwise.
func diagnosticsFor(err error) []protocol.Diagnostic {
	if err == nil {
		return []protocol.Diagnostic{}
	}

	ce, ok := asCompilerError(err)
	if !ok {
		return []protocol.Diagnostic{{
			Range:    protocol.Range{Start: protocol.Position{}, End: protocol.Position{Character: 1}},
			Severity: ptrSeverity(protocol.DiagnosticSeverityError),
			Source:   ptrString("pidgin"),
			Message:  err.Error(),
		}}
	}

	length := ce.Length
	if length <= 0 {
		length = 1
	}
	line := uint32(0)
	if ce.Position.Line > 1 {
		line = uint32(ce.Position.Line - 1)
	}
	col := uint32(0)
	if ce.Position.Column > 1 {
		col = uint32(ce.Position.Column - 1)
	}

	return []protocol.Diagnostic{{
		Range: protocol.Range{
			Start: protocol.Position{Line: line, Character: col},
			End:   protocol.Position{Line: line, Character: col + uint32(length)},
		},
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Source:   ptrString("pidgin"),
		Message:  diagnosticMessage(ce),
	}}
}

func diagnosticMessage(ce errors.CompilerError) string {
	if ce.Code != "" {
		return "[" + ce.Code + "] " + ce.Message
	}
	return ce.Message
}

func asCompilerError(err error) (errors.CompilerError, bool) {
	switch e := err.(type) {
	case errors.CompilerError:
		return e, true
	case *errors.CompilerError:
		return *e, true
	default:
		return errors.CompilerError{}, false
	}
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity { return &s }

func ptrString(s string) *string { return &s }
