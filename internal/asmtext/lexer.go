// SPDX-License-Identifier: Apache-2.0

// Package asmtext implements a textual assembly form for value.Block
// (spec.md 4.1's bytecode instruction catalog), giving the bytecode a
// human-readable, diffable serialization independent of the in-memory
// register-indexed representation: one instruction per line, named
// operand fields instead of a fixed positional shape, since the catalog
// mixes Out-only, In-only, Repl-only and Aux-only instruction shapes
// (instr.Instruction's HasOut/HasRepl/NIn flags) under a single opcode
// space.
package asmtext

import (
	"github.com/alecthomas/participle/v2/lexer"
)

var asmLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `;[^\n]*`, nil},
		{"Float", `-?[0-9]+\.[0-9]+`, nil},
		{"Int", `-?[0-9]+`, nil},
		{"Register", `r[0-9]+`, nil},
		{"Str", `"(\\.|[^"\\])*"`, nil},
		{"Char", `'(\\.|[^'\\])'`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_!?-]*`, nil},
		{"Punct", `[.:,={}\[\]]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
