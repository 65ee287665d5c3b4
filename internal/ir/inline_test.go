// SPDX-License-Identifier: Apache-2.0
package ir

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pidgin/internal/corefn"
	"pidgin/internal/instr"
	"pidgin/internal/value"
)

func constDatum(n int64) SSADatum {
	return value.NumberDatum[Reg, Reg, Replacement](value.Int(n))
}

func coreFnDatum(id corefn.ID) SSADatum {
	return value.CoreFnDatum[Reg, Reg, Replacement](uint16(id))
}

func constIns(out Reg, idx uint32) SSAInstruction {
	return instr.NullaryAux[Reg, Reg, Replacement](instr.OpConst, out, idx)
}

func callIns(out Reg, f Reg, argCount int) SSAInstruction {
	return instr.UnaryAux[Reg, Reg, Replacement](instr.OpCall, f, out, uint32(argCount))
}

func copyArg(reg Reg) SSAInstruction {
	return instr.NoOutput[Reg, Reg, Replacement](instr.OpCopyArgument, reg)
}

func returnIns(reg Reg) SSAInstruction {
	return instr.NoOutput[Reg, Reg, Replacement](instr.OpReturn, reg)
}

func block(instructions []SSAInstruction, constants []SSADatum) *SSABlock {
	return &SSABlock{Instructions: instructions, Constants: constants}
}

func inlineAndErase(t *testing.T, b *SSABlock) *SSABlock {
	t.Helper()
	inlined, err := InlineCoreFnCalls(b, 0)
	require.NoError(t, err)
	erased, err := EraseUnusedConstants(inlined, 0)
	require.NoError(t, err)
	return erased
}

func TestInlineBinaryAddition(t *testing.T) {
	raw := block([]SSAInstruction{
		constIns(0, 0),
		constIns(1, 1),
		constIns(2, 2),
		callIns(3, 2, 2),
		copyArg(0),
		copyArg(1),
		returnIns(3),
	}, []SSADatum{constDatum(1), constDatum(2), coreFnDatum(corefn.Add)})

	got := inlineAndErase(t, raw)

	require.Equal(t, []SSAInstruction{
		constIns(0, 0),
		constIns(1, 1),
		instr.Binary[Reg, Reg, Replacement](instr.OpAdd, 0, 1, 3),
		returnIns(3),
	}, got.Instructions)
	require.Equal(t, []SSADatum{constDatum(1), constDatum(2)}, got.Constants)
}

func TestInlineTrinaryAddition(t *testing.T) {
	raw := block([]SSAInstruction{
		constIns(0, 0),
		constIns(1, 1),
		constIns(2, 2),
		constIns(3, 3),
		callIns(4, 3, 3),
		copyArg(0),
		copyArg(1),
		copyArg(2),
		returnIns(4),
	}, []SSADatum{constDatum(1), constDatum(2), constDatum(3), coreFnDatum(corefn.Add)})

	got := inlineAndErase(t, raw)

	require.Equal(t, []SSAInstruction{
		constIns(0, 0),
		constIns(1, 1),
		constIns(2, 2),
		instr.Binary[Reg, Reg, Replacement](instr.OpAdd, 0, 1, 5),
		instr.Binary[Reg, Reg, Replacement](instr.OpAdd, 2, 5, 4),
		returnIns(4),
	}, got.Instructions)
}

func TestInlineQuaternaryAddition(t *testing.T) {
	raw := block([]SSAInstruction{
		constIns(0, 0),
		constIns(1, 1),
		constIns(2, 2),
		constIns(3, 3),
		constIns(4, 4),
		callIns(5, 4, 4),
		copyArg(0),
		copyArg(1),
		copyArg(2),
		copyArg(3),
		returnIns(5),
	}, []SSADatum{constDatum(1), constDatum(2), constDatum(3), constDatum(4), coreFnDatum(corefn.Add)})

	got := inlineAndErase(t, raw)

	require.Equal(t, []SSAInstruction{
		constIns(0, 0),
		constIns(1, 1),
		constIns(2, 2),
		constIns(3, 3),
		instr.Binary[Reg, Reg, Replacement](instr.OpAdd, 0, 1, 6),
		instr.Binary[Reg, Reg, Replacement](instr.OpAdd, 2, 6, 7),
		instr.Binary[Reg, Reg, Replacement](instr.OpAdd, 3, 7, 5),
		returnIns(5),
	}, got.Instructions)
}

func TestInlineQuaternaryMultiplication(t *testing.T) {
	raw := block([]SSAInstruction{
		constIns(0, 0),
		constIns(1, 1),
		constIns(2, 2),
		constIns(3, 3),
		constIns(4, 4),
		callIns(5, 4, 4),
		copyArg(0),
		copyArg(1),
		copyArg(2),
		copyArg(3),
		returnIns(5),
	}, []SSADatum{constDatum(1), constDatum(2), constDatum(3), constDatum(4), coreFnDatum(corefn.Multiply)})

	got := inlineAndErase(t, raw)

	require.Equal(t, []SSAInstruction{
		constIns(0, 0),
		constIns(1, 1),
		constIns(2, 2),
		constIns(3, 3),
		instr.Binary[Reg, Reg, Replacement](instr.OpMultiply, 0, 1, 6),
		instr.Binary[Reg, Reg, Replacement](instr.OpMultiply, 2, 6, 7),
		instr.Binary[Reg, Reg, Replacement](instr.OpMultiply, 3, 7, 5),
		returnIns(5),
	}, got.Instructions)
}

func TestInlinePush(t *testing.T) {
	emptyListIns := instr.Nullary[Reg, Reg, Replacement](instr.OpEmptyList, 0)
	raw := block([]SSAInstruction{
		emptyListIns,
		constIns(1, 0),
		constIns(2, 1),
		callIns(3, 2, 2),
		copyArg(0),
		copyArg(1),
		returnIns(3),
	}, []SSADatum{constDatum(5), coreFnDatum(corefn.Push)})

	got := inlineAndErase(t, raw)

	require.Equal(t, []SSAInstruction{
		emptyListIns,
		constIns(1, 0),
		instr.BinaryReplacing[Reg, Reg, Replacement](instr.OpPush, 1, Replacement{From: 0, To: 3}),
		returnIns(3),
	}, got.Instructions)
}

func TestInlineFirst(t *testing.T) {
	list := value.ListDatum[Reg, Reg, Replacement]([]SSADatum{constDatum(1), constDatum(2), constDatum(3)})
	raw := block([]SSAInstruction{
		constIns(0, 0),
		constIns(1, 1),
		callIns(2, 1, 1),
		copyArg(0),
		returnIns(2),
	}, []SSADatum{list, coreFnDatum(corefn.First)})

	got := inlineAndErase(t, raw)

	require.Equal(t, []SSAInstruction{
		constIns(0, 0),
		instr.Unary[Reg, Reg, Replacement](instr.OpFirst, 0, 2),
		returnIns(2),
	}, got.Instructions)
}

func TestInlineRest(t *testing.T) {
	list := value.ListDatum[Reg, Reg, Replacement]([]SSADatum{constDatum(1), constDatum(2), constDatum(3)})
	raw := block([]SSAInstruction{
		constIns(0, 0),
		constIns(1, 1),
		callIns(2, 1, 1),
		copyArg(0),
		returnIns(2),
	}, []SSADatum{list, coreFnDatum(corefn.Rest)})

	got := inlineAndErase(t, raw)

	require.Equal(t, []SSAInstruction{
		constIns(0, 0),
		instr.UnaryReplacing[Reg, Reg, Replacement](instr.OpRest, Replacement{From: 0, To: 2}),
		returnIns(2),
	}, got.Instructions)
}
