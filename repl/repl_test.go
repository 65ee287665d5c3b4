// SPDX-License-Identifier: Apache-2.0
package repl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func runSession(t *testing.T, input string) string {
	t.Helper()
	var out strings.Builder
	Start(strings.NewReader(input), &out)
	return out.String()
}

func TestArithmeticFormPrintsResult(t *testing.T) {
	out := runSession(t, "(+ 1 2)\n")
	require.Contains(t, out, "3")
}

func TestDefPersistsAcrossSubmissions(t *testing.T) {
	out := runSession(t, "(def x 10)\n(+ x 5)\n")
	require.Contains(t, out, "15")
}

func TestMultiLineFormWaitsForBalancedParens(t *testing.T) {
	out := runSession(t, "(+ 1\n   2)\n")
	require.Contains(t, out, "3")
	require.Contains(t, out, continuePrompt)
}

func TestCompileErrorReportsDiagnosticAndContinuesSession(t *testing.T) {
	out := runSession(t, "(+ 1 nosuchname)\n(+ 1 1)\n")
	require.Contains(t, out, "2")
}

func TestStringLiteralContainingParenDoesNotConfuseBalance(t *testing.T) {
	out := runSession(t, `(list "(" ")")` + "\n")
	require.NotContains(t, out, continuePrompt)
}

func TestParenBalance(t *testing.T) {
	require.Equal(t, 0, parenBalance("(+ 1 2)"))
	require.Equal(t, 1, parenBalance("(+ 1"))
	require.Equal(t, 0, parenBalance(`(str "(")`))
}
