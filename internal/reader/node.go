// SPDX-License-Identifier: Apache-2.0
package reader

import "pidgin/token"

// NodeKind tags a parsed tree node (spec.md 4.2's "parsed tree of tokens").
type NodeKind uint8

const (
	NodeNil NodeKind = iota
	NodeInt
	NodeFloat
	NodeString
	NodeSymbol
	NodeList
)

// Node is one parsed s-expression. Unlike value.Datum, it carries a source
// Position for diagnostics and has not yet been resolved against any
// lexical scope.
type Node struct {
	Kind  NodeKind
	Int   int64
	Float float64
	Str   string
	Sym   string
	Items []Node
	Pos   token.Position
}
