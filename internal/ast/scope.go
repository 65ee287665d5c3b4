// SPDX-License-Identifier: Apache-2.0

// Package ast compiles a reader.Node tree into an SSA block (spec.md 4.2).
package ast

import "pidgin/internal/ir"

// scope maps the names bound by one function's parameter list (including
// any lambda-lifted capture parameters) to the registers holding them in
// that function's own block. A nested fn never chains further than its
// immediate enclosing scope: any name it needs from further up the lexical
// chain was already threaded into that enclosing function's own parameter
// list when *it* was compiled (see collectFreeVars), so the enclosing
// scope's names map always has a direct entry for it.
type scope struct {
	names map[string]ir.Reg
}

func (s *scope) resolveOwn(name string) (ir.Reg, bool) {
	if s == nil {
		return 0, false
	}
	r, ok := s.names[name]
	return r, ok
}

var reservedForms = map[string]bool{
	"fn": true, "def": true, "quote": true, "hard-quote": true,
	"unquote": true, "partial": true,
	"create-coroutine": true, "coroutine-alive?": true,
	"yield": true, "yield-and-accept": true,
}

func isReserved(name string) bool { return reservedForms[name] }
