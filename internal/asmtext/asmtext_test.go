package asmtext

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pidgin/internal/ast"
	"pidgin/internal/instr"
	"pidgin/internal/ir"
	"pidgin/internal/reader"
	"pidgin/internal/symtab"
	"pidgin/internal/value"
)

func compileToBlock(t *testing.T, src string) *value.Block {
	t.Helper()
	forms, err := reader.ReadAll(src)
	require.NoError(t, err)
	require.Len(t, forms, 1)
	c := ast.New(symtab.New())
	tl, err := c.CompileTopLevel(forms[0])
	require.NoError(t, err)
	erased, err := ir.EraseUnusedConstants(tl.Block, 0)
	require.NoError(t, err)
	inlined, err := ir.InlineCoreFnCalls(erased, 0)
	require.NoError(t, err)
	block, err := ir.AllocateRegisters(inlined, 0)
	require.NoError(t, err)
	return block
}

func TestRoundTripHandWrittenInstructions(t *testing.T) {
	block := &value.Block{
		Constants: []value.Datum[value.Reg8, value.Reg8, value.Reg8]{
			value.NumberDatum[value.Reg8, value.Reg8, value.Reg8](value.Int(41)),
		},
		Instructions: []value.BytecodeInstruction{
			{Op: instr.OpConst, Out: 0, HasOut: true, Aux: 0},
			{Op: instr.OpInc, In: [2]value.Reg8{0}, NIn: 1, Out: 1, HasOut: true},
			{Op: instr.OpReturn, In: [2]value.Reg8{1}, NIn: 1},
		},
	}

	text := Print(block)
	got, err := ParseString("hand.pasm", text)
	require.NoError(t, err)
	require.Equal(t, block, got)
}

func TestRoundTripNestedCompositeFnAndList(t *testing.T) {
	block := compileToBlock(t, "(fn (x) (list x 1 2))")
	text := Print(block)
	got, err := ParseString("nested.pasm", text)
	require.NoError(t, err)
	require.Equal(t, block, got)
}

func TestRoundTripArithmeticProgram(t *testing.T) {
	block := compileToBlock(t, "(+ 1 2 3)")
	text := Print(block)
	got, err := ParseString("arith.pasm", text)
	require.NoError(t, err)
	require.Equal(t, block, got)
}

func TestParseRejectsOutOfOrderConstantIndex(t *testing.T) {
	src := ".constants\n  1: num 1\n.code\n  return in=r0\n"
	_, err := ParseString("bad.pasm", src)
	require.Error(t, err)
}

func TestParseRejectsUnknownMnemonic(t *testing.T) {
	src := ".code\n  frobnicate out=r0\n"
	_, err := ParseString("bad.pasm", src)
	require.Error(t, err)
}
