// SPDX-License-Identifier: Apache-2.0
package ast

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pidgin/internal/corefn"
	"pidgin/internal/errors"
	"pidgin/internal/instr"
	"pidgin/internal/reader"
	"pidgin/internal/symtab"
)

func parseOne(t *testing.T, src string) reader.Node {
	t.Helper()
	forms, err := reader.ReadAll(src)
	require.NoError(t, err)
	require.Len(t, forms, 1)
	return forms[0]
}

func TestCompileArithmeticCall(t *testing.T) {
	c := New(symtab.New())
	tl, err := c.CompileTopLevel(parseOne(t, "(+ 1 2)"))
	require.NoError(t, err)
	require.False(t, tl.IsDef)

	var sawAdd, sawReturn bool
	for _, ins := range tl.Block.Instructions {
		switch ins.Op {
		case instr.OpCall:
			sawAdd = true
		case instr.OpReturn:
			sawReturn = true
		}
	}
	require.True(t, sawAdd, "expected a Call instruction")
	require.True(t, sawReturn, "expected a trailing Return")

	var sawCoreFnConst bool
	for _, k := range tl.Block.Constants {
		if k.Kind.String() == "core-fn" && corefn.ID(k.CoreFn) == corefn.Add {
			sawCoreFnConst = true
		}
	}
	require.True(t, sawCoreFnConst, "expected + to resolve to corefn.Add")
}

func TestCompileDefInstallsGlobalAndAllowsSelfReference(t *testing.T) {
	c := New(symtab.New())
	tl, err := c.CompileTopLevel(parseOne(t, "(def fact (fn (n) (fact n)))"))
	require.NoError(t, err)
	require.True(t, tl.IsDef)
	require.Equal(t, "fact", tl.DefName)
	require.True(t, c.Globals["fact"])

	// The (fn ...) constant's own block must reference "fact" via a global
	// Lookup, not fail as unbound.
	require.Len(t, tl.Block.Constants, 1)
	fn := tl.Block.Constants[0].CompositeFn
	require.NotNil(t, fn)
	var sawLookup bool
	for _, ins := range fn.Block.Instructions {
		if ins.Op == instr.OpLookup {
			sawLookup = true
		}
	}
	require.True(t, sawLookup, "self-recursive reference should compile to a global Lookup")
}

func TestCompileUnboundSymbol(t *testing.T) {
	c := New(symtab.New())
	_, err := c.CompileTopLevel(parseOne(t, "(+ 1 nosuchname)"))
	require.Error(t, err)
	ce, ok := err.(errors.CompilerError)
	require.True(t, ok)
	require.Equal(t, errors.ErrorUnboundSymbol, ce.Code)
}

func TestCompileLambdaLiftingCapturesOuterParameter(t *testing.T) {
	c := New(symtab.New())
	// (fn (x) (fn (y) (* x y))) — the inner fn captures x from the outer.
	tl, err := c.CompileTopLevel(parseOne(t, "(fn (x) (fn (y) (* x y)))"))
	require.NoError(t, err)

	// The top-level block holds only the outer fn constant; the outer fn's
	// own block constructs the inner CompositeFn constant then immediately
	// Partial-applies it over x.
	require.Len(t, tl.Block.Constants, 1)
	outer := tl.Block.Constants[0].CompositeFn
	require.NotNil(t, outer)
	var sawPartial bool
	for _, ins := range outer.Block.Instructions {
		if ins.Op == instr.OpPartial {
			sawPartial = true
			require.EqualValues(t, 1, ins.Aux, "exactly one captured value")
		}
	}
	require.True(t, sawPartial, "capturing fn should lambda-lift into a Partial")

	// The lifted inner function's arity must be 2: one capture slot plus
	// its own declared parameter.
	found := false
	for _, k := range outer.Block.Constants {
		if k.Kind.String() == "composite-fn" {
			require.EqualValues(t, 2, k.CompositeFn.Args.RegisterCount())
			found = true
		}
	}
	require.True(t, found, "expected a lifted composite-fn constant")
}

func TestCompileShadowedParamIsError(t *testing.T) {
	c := New(symtab.New())
	_, err := c.CompileTopLevel(parseOne(t, "(fn (x x) x)"))
	require.Error(t, err)
	ce, ok := err.(errors.CompilerError)
	require.True(t, ok)
	require.Equal(t, errors.ErrorShadowedBinding, ce.Code)
}

func TestCompileQuoteRejectsUnquote(t *testing.T) {
	c := New(symtab.New())
	_, err := c.CompileTopLevel(parseOne(t, "(quote (a (unquote b) c))"))
	require.Error(t, err)
	ce, ok := err.(errors.CompilerError)
	require.True(t, ok)
	require.Equal(t, errors.ErrorUnquoteNotImplemented, ce.Code)
}

func TestCompileHardQuoteAllowsUnquoteAsLiteral(t *testing.T) {
	c := New(symtab.New())
	tl, err := c.CompileTopLevel(parseOne(t, "(hard-quote (a (unquote b) c))"))
	require.NoError(t, err)
	require.Len(t, tl.Block.Constants, 1)
	require.Equal(t, "list", tl.Block.Constants[0].Kind.String())
}

func TestCompilePartialForm(t *testing.T) {
	c := New(symtab.New())
	tl, err := c.CompileTopLevel(parseOne(t, "(partial + 1 2)"))
	require.NoError(t, err)
	var sawPartial bool
	for _, ins := range tl.Block.Instructions {
		if ins.Op == instr.OpPartial {
			sawPartial = true
			require.EqualValues(t, 2, ins.Aux)
		}
	}
	require.True(t, sawPartial)
}
