// SPDX-License-Identifier: Apache-2.0
package instr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUsagesBinary(t *testing.T) {
	ins := Binary[int, int, int](OpAdd, 1, 2, 3)
	u := GetUsages(ins)
	require.Equal(t, []int{1, 2}, u.Inputs)
	require.NotNil(t, u.Output)
	require.Equal(t, 3, *u.Output)
	require.Nil(t, u.Replacement)
}

func TestUsagesReplacing(t *testing.T) {
	type repl struct{ From, To int }
	ins := UnaryReplacing[int, int, repl](OpRest, repl{From: 4, To: 5})
	u := GetUsages(ins)
	require.Empty(t, u.Inputs)
	require.Nil(t, u.Output)
	require.NotNil(t, u.Replacement)
	require.Equal(t, 4, u.Replacement.From)
	require.Equal(t, 5, u.Replacement.To)
}

func TestTranslateMapsSlotsIndependently(t *testing.T) {
	ins := Binary[int, int, int](OpAdd, 10, 20, 30)
	out := Translate(ins,
		func(i int) uint8 { return uint8(i / 10) },
		func(o int) uint8 { return uint8(o / 10) },
		func(r int) uint8 { return uint8(r) },
	)
	require.Equal(t, OpAdd, out.Op)
	require.EqualValues(t, 1, out.In[0])
	require.EqualValues(t, 2, out.In[1])
	require.EqualValues(t, 3, out.Out)
}

func TestOpNameRoundTrip(t *testing.T) {
	op, ok := LookupOp("add")
	require.True(t, ok)
	require.Equal(t, OpAdd, op)
	require.Equal(t, "add", OpAdd.String())
}
