// SPDX-License-Identifier: Apache-2.0
package ast

import (
	"pidgin/internal/errors"
	"pidgin/internal/ir"
	"pidgin/internal/reader"
	"pidgin/internal/value"
)

// nodeToDatum turns a parsed form into a literal constant, as `quote` and
// `hard-quote` require (spec.md 6). The two forms differ only in their
// treatment of a nested (unquote ...) sub-form: quote treats it as a
// still-reserved, not-yet-implemented escape and rejects it; hard-quote
// takes everything underneath literally, including a symbol or list that
// happens to be named unquote.
func (c *Compiler) nodeToDatum(n reader.Node, hard bool) (ir.SSADatum, error) {
	switch n.Kind {
	case reader.NodeNil:
		return value.NilDatum[ir.Reg, ir.Reg, ir.Replacement](), nil
	case reader.NodeInt:
		return value.NumberDatum[ir.Reg, ir.Reg, ir.Replacement](value.Int(n.Int)), nil
	case reader.NodeFloat:
		return value.NumberDatum[ir.Reg, ir.Reg, ir.Replacement](value.Float(n.Float)), nil
	case reader.NodeString:
		return value.StrDatum[ir.Reg, ir.Reg, ir.Replacement](n.Str), nil
	case reader.NodeSymbol:
		idx := c.Syms.Intern(n.Sym)
		return value.SymbolDatum[ir.Reg, ir.Reg, ir.Replacement](idx), nil
	case reader.NodeList:
		if !hard && len(n.Items) >= 1 && n.Items[0].Kind == reader.NodeSymbol && n.Items[0].Sym == "unquote" {
			return ir.SSADatum{}, errors.UnquoteNotImplemented(toPosition(n))
		}
		items := make([]ir.SSADatum, len(n.Items))
		for i, item := range n.Items {
			d, err := c.nodeToDatum(item, hard)
			if err != nil {
				return ir.SSADatum{}, err
			}
			items[i] = d
		}
		return value.ListDatum[ir.Reg, ir.Reg, ir.Replacement](items), nil
	default:
		return ir.SSADatum{}, errors.UnquoteNotImplemented(toPosition(n))
	}
}

func toPosition(n reader.Node) errors.Position {
	return errors.Position{Line: n.Pos.Line, Column: n.Pos.Column}
}

// describeNode renders a short label for a malformed parameter-list entry
// in diagnostics, since only symbols carry a usable name.
func describeNode(n reader.Node) string {
	switch n.Kind {
	case reader.NodeSymbol:
		return n.Sym
	case reader.NodeString:
		return "\"" + n.Str + "\""
	case reader.NodeList:
		return "(...)"
	case reader.NodeNil:
		return "nil"
	default:
		return "<literal>"
	}
}
