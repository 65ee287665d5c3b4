// SPDX-License-Identifier: Apache-2.0
package errors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorReporterFormatsUnboundSymbol(t *testing.T) {
	source := "(def main\n  (fn (x)\n    (+ x unknownVar)))"

	reporter := NewErrorReporter("test.pidgin", source)

	err := UnboundSymbol("unknownVar", Position{Line: 3, Column: 8})
	formatted := reporter.FormatError(err)

	assert.Contains(t, formatted, "error["+ErrorUnboundSymbol+"]")
	assert.Contains(t, formatted, "unbound symbol")
	assert.Contains(t, formatted, "unknownVar")
	assert.Contains(t, formatted, "test.pidgin:3:8")
}

func TestErrorReporterMarksColumn(t *testing.T) {
	source := "(bad-form)"
	reporter := NewErrorReporter("test.pidgin", source)
	err := CantParseToken("$", Position{Line: 1, Column: 2})
	formatted := reporter.FormatError(err)
	lines := strings.Split(formatted, "\n")
	found := false
	for _, l := range lines {
		if strings.Contains(l, "^") {
			found = true
		}
	}
	assert.True(t, found, "expected a caret marker line")
}
