// SPDX-License-Identifier: Apache-2.0
package errors

import "fmt"

// Position is a 1-indexed location in source text.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Error satisfies the error interface so a CompilerError (or *CompilerError)
// can be returned directly from compiler passes; FormatError renders the
// full diagnostic when a source listing is available.
func (e CompilerError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s[%s]: %s (at %s)", e.Level, e.Code, e.Message, e.Position)
	}
	return fmt.Sprintf("%s: %s (at %s)", e.Level, e.Message, e.Position)
}
