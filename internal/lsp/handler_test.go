// SPDX-License-Identifier: Apache-2.0
package lsp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pidgin/internal/errors"
	"pidgin/internal/symtab"
	"pidgin/internal/vm"
)

func TestDiagnosticsForNilErrorIsEmpty(t *testing.T) {
	require.Empty(t, diagnosticsFor(nil))
}

func TestDiagnosticsForCompilerErrorCarriesPositionAndMessage(t *testing.T) {
	_, err := vm.Compile(symtab.New(), "(+ 1 nosuchname)")
	require.Error(t, err)

	diags := diagnosticsFor(err)
	require.Len(t, diags, 1)
	require.Contains(t, diags[0].Message, "nosuchname")
	require.Equal(t, uint32(0), diags[0].Range.Start.Line)
}

func TestDiagnosticsForPlainErrorUsesRawMessage(t *testing.T) {
	diags := diagnosticsFor(errUnexpectedForTest)
	require.Len(t, diags, 1)
	require.Equal(t, "boom", diags[0].Message)
}

var errUnexpectedForTest = plainErr("boom")

type plainErr string

func (e plainErr) Error() string { return string(e) }

func TestUriToPathRoundTripsAPlainFileURI(t *testing.T) {
	path, err := uriToPath("file:///tmp/example.pidgin")
	require.NoError(t, err)
	require.Equal(t, "/tmp/example.pidgin", path)
}

func TestAsCompilerErrorUnwrapsPointerAndValueForms(t *testing.T) {
	_, ok := asCompilerError(errors.UnboundSymbol("x", errors.Position{Line: 1, Column: 1}))
	require.True(t, ok)

	_, ok = asCompilerError(&errors.CompilerError{Message: "boom"})
	require.True(t, ok)

	_, ok = asCompilerError(errUnexpectedForTest)
	require.False(t, ok)
}
