// SPDX-License-Identifier: Apache-2.0
package ir

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pidgin/internal/instr"
)

func TestLifetimesDetectUseBeforeCreation(t *testing.T) {
	instructions := []SSAInstruction{
		instr.NoOutput[Reg, Reg, Replacement](instr.OpReturn, 0),
	}
	_, err := CalculateRegisterLifetimes(0, instructions)
	require.Error(t, err)
	var lerr *LifetimeError
	require.ErrorAs(t, err, &lerr)
	require.Equal(t, UsedBeforeCreation, lerr.Kind)
}

func TestLifetimesDetectOutputToExisting(t *testing.T) {
	instructions := []SSAInstruction{
		instr.NullaryAux[Reg, Reg, Replacement](instr.OpConst, 0, 0),
		instr.NullaryAux[Reg, Reg, Replacement](instr.OpConst, 0, 1),
	}
	_, err := CalculateRegisterLifetimes(0, instructions)
	require.Error(t, err)
	var lerr *LifetimeError
	require.ErrorAs(t, err, &lerr)
	require.Equal(t, OutputToExisting, lerr.Kind)
}

func TestLifetimesDetectUseAfterReplacement(t *testing.T) {
	instructions := []SSAInstruction{
		instr.Nullary[Reg, Reg, Replacement](instr.OpEmptyList, 0),
		instr.UnaryReplacing[Reg, Reg, Replacement](instr.OpRest, Replacement{From: 0, To: 1}),
		instr.NoOutput[Reg, Reg, Replacement](instr.OpReturn, 0),
	}
	_, err := CalculateRegisterLifetimes(0, instructions)
	require.Error(t, err)
	var lerr *LifetimeError
	require.ErrorAs(t, err, &lerr)
	require.Equal(t, UsedAfterReplacement, lerr.Kind)
}

func TestLifetimesHappyPath(t *testing.T) {
	instructions := []SSAInstruction{
		instr.NullaryAux[Reg, Reg, Replacement](instr.OpConst, 0, 0),
		instr.NullaryAux[Reg, Reg, Replacement](instr.OpConst, 1, 1),
		instr.Binary[Reg, Reg, Replacement](instr.OpAdd, 0, 1, 2),
		instr.NoOutput[Reg, Reg, Replacement](instr.OpReturn, 2),
	}
	lifetimes, err := CalculateRegisterLifetimes(0, instructions)
	require.NoError(t, err)
	require.True(t, lifetimes[0].IsUsed())
	require.True(t, lifetimes[1].IsUsed())
	require.True(t, lifetimes[2].IsUsed())
	require.Equal(t, Timestamp(2), lifetimes[0].Usages[0])
}
