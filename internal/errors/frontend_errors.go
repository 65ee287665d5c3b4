// SPDX-License-Identifier: Apache-2.0
package errors

import "fmt"

// UnboundSymbol reports a reference to a name with no local binding or
// built-in of that name.
func UnboundSymbol(name string, pos Position) CompilerError {
	return CompilerError{
		Level:    Error,
		Code:     ErrorUnboundSymbol,
		Message:  fmt.Sprintf("unbound symbol %q", name),
		Position: pos,
		Length:   len(name),
		HelpText: "define it with (def " + name + " ...) or check for a typo",
	}
}

// ShadowedBinding reports a name rebound over a surrounding binding or a
// built-in name, which spec.md 4.2 treats as a compile-time error during
// lambda lifting.
func ShadowedBinding(name string, pos Position) CompilerError {
	return CompilerError{
		Level:    Error,
		Code:     ErrorShadowedBinding,
		Message:  fmt.Sprintf("%q shadows a surrounding binding or built-in", name),
		Position: pos,
		Length:   len(name),
	}
}

// FunctionDefinitionMissingBody reports an (fn (...)) form with no body
// expressions.
func FunctionDefinitionMissingBody(pos Position) CompilerError {
	return CompilerError{
		Level:    Error,
		Code:     ErrorFunctionDefinitionMissingBody,
		Message:  "fn form has no body expressions",
		Position: pos,
		Length:   2,
	}
}

// InvalidFunctionDefinitionArgumentName reports a non-symbol entry in an
// fn parameter list. A duplicate name is reported as ShadowedBinding.
func InvalidFunctionDefinitionArgumentName(got string, pos Position) CompilerError {
	return CompilerError{
		Level:    Error,
		Code:     ErrorInvalidFunctionDefinitionArgName,
		Message:  fmt.Sprintf("invalid function parameter name %q", got),
		Position: pos,
		Length:   len(got),
	}
}

// InvalidDefLength reports a (def ...) form without exactly a name and a
// value expression.
func InvalidDefLength(pos Position) CompilerError {
	return CompilerError{
		Level:    Error,
		Code:     ErrorInvalidDefLength,
		Message:  "def requires exactly a name and a value expression",
		Position: pos,
		Length:   3,
	}
}

// MultipleExpressionsInQuote reports a (quote a b) form.
func MultipleExpressionsInQuote(pos Position) CompilerError {
	return CompilerError{
		Level:    Error,
		Code:     ErrorMultipleExpressionsInQuote,
		Message:  "quote accepts exactly one expression",
		Position: pos,
		Length:   5,
	}
}

// MultipleExpressionsInUnquote reports an (unquote a b) form.
func MultipleExpressionsInUnquote(pos Position) CompilerError {
	return CompilerError{
		Level:    Error,
		Code:     ErrorMultipleExpressionsInUnquote,
		Message:  "unquote accepts exactly one expression",
		Position: pos,
		Length:   7,
	}
}

// UnquoteNotImplemented reports use of the reserved, unimplemented unquote
// form (spec.md 9, Open Question: do not guess at its semantics).
func UnquoteNotImplemented(pos Position) CompilerError {
	return CompilerError{
		Level:    Error,
		Code:     ErrorUnquoteNotImplemented,
		Message:  "unquote is reserved but not implemented",
		Position: pos,
		Length:   7,
	}
}

// InvalidPartialLength reports a (partial) form with no function
// expression.
func InvalidPartialLength(pos Position) CompilerError {
	return CompilerError{
		Level:    Error,
		Code:     ErrorInvalidPartialLength,
		Message:  "partial requires at least a function expression",
		Position: pos,
		Length:   7,
	}
}

// NestedDef reports a (def ...) form appearing somewhere other than the
// top level.
func NestedDef(pos Position) CompilerError {
	return CompilerError{
		Level:    Error,
		Code:     ErrorNestedDef,
		Message:  "def is only valid as a top-level form",
		Position: pos,
		Length:   3,
	}
}

// InvalidArgumentCount reports a special form called with the wrong number
// of arguments, or with an argument that must be a compile-time constant
// (yield-and-accept's accept count) where something else was given.
func InvalidArgumentCount(pos Position) CompilerError {
	return CompilerError{
		Level:    Error,
		Code:     ErrorInvalidArgumentCount,
		Message:  "wrong number or kind of arguments for this form",
		Position: pos,
		Length:   1,
	}
}

// CantParseToken reports a reader-level lexical failure.
func CantParseToken(snippet string, pos Position) CompilerError {
	return CompilerError{
		Level:    Error,
		Code:     ErrorCantParseToken,
		Message:  fmt.Sprintf("can't parse token starting at %q", snippet),
		Position: pos,
		Length:   1,
	}
}

// UnbalancedParen reports a reader-level mismatched-parenthesis failure.
func UnbalancedParen(pos Position) CompilerError {
	return CompilerError{
		Level:    Error,
		Code:     ErrorUnbalancedParen,
		Message:  "unbalanced parentheses",
		Position: pos,
		Length:   1,
	}
}
