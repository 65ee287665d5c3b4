// SPDX-License-Identifier: Apache-2.0
package ir

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pidgin/internal/instr"
)

func TestAllocateRegistersReusesFinishedSlot(t *testing.T) {
	// Const(0,1); Const(1,2); Add(2,0,1); Return(2) -- SSA registers 0 and
	// 1 both retire at the Add instruction (their only read), so Add's own
	// output reuses the lowest vacated physical slot, 0, rather than
	// taking a fresh one.
	raw := block([]SSAInstruction{
		constIns(0, 0),
		constIns(1, 1),
		instr.Binary[Reg, Reg, Replacement](instr.OpAdd, 0, 1, 2),
		returnIns(2),
	}, []SSADatum{constDatum(1), constDatum(2)})

	allocated, err := AllocateRegisters(raw, 0)
	require.NoError(t, err)
	require.Len(t, allocated.Instructions, 4)
	require.EqualValues(t, 0, allocated.Instructions[0].Out)
	require.EqualValues(t, 1, allocated.Instructions[1].Out)
	require.EqualValues(t, 0, allocated.Instructions[2].Out)
}

func TestAllocateRegistersReusesRetiredRegisterNumber(t *testing.T) {
	// Const(0,1); Const(1,2); Add(2,0,1); Const(3,4); Return(3) -- once 0
	// and 1 retire at the Add, the allocator hands the retired register 1
	// back out for the physical slot backing SSA register 3.
	raw := block([]SSAInstruction{
		constIns(0, 0),
		constIns(1, 1),
		instr.Binary[Reg, Reg, Replacement](instr.OpAdd, 0, 1, 2),
		constIns(3, 2),
		returnIns(3),
	}, []SSADatum{constDatum(1), constDatum(2), constDatum(3)})

	allocated, err := AllocateRegisters(raw, 0)
	require.NoError(t, err)
	// Add's output (SSA register 2) took over the physical slot SSA
	// registers 0/1 just vacated (slot 0); SSA register 3 then gets the
	// next free slot, 1, since slot 0 is still occupied by the live sum.
	require.EqualValues(t, 0, allocated.Instructions[2].Out)
	require.EqualValues(t, 1, allocated.Instructions[3].Out)
}

func TestAllocateRegistersPreservesReplacement(t *testing.T) {
	raw := block([]SSAInstruction{
		instr.Nullary[Reg, Reg, Replacement](instr.OpEmptyList, 0),
		constIns(1, 0),
		instr.BinaryReplacing[Reg, Reg, Replacement](instr.OpPush, 1, Replacement{From: 0, To: 2}),
		returnIns(2),
	}, []SSADatum{constDatum(5)})

	allocated, err := AllocateRegisters(raw, 0)
	require.NoError(t, err)
	pushIns := allocated.Instructions[2]
	emptyListIns := allocated.Instructions[0]
	require.Equal(t, emptyListIns.Out, pushIns.Repl)
}

func TestAllocateRegistersExhaustionFails(t *testing.T) {
	var instructions []SSAInstruction
	var constants []SSADatum
	for i := 0; i < 300; i++ {
		instructions = append(instructions, constIns(Reg(i), uint32(i)))
		constants = append(constants, constDatum(int64(i)))
	}
	raw := block(instructions, constants)
	_, err := AllocateRegisters(raw, 0)
	require.Error(t, err)
	var aerr *AllocationError
	require.ErrorAs(t, err, &aerr)
}
