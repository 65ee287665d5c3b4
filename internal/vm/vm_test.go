// SPDX-License-Identifier: Apache-2.0
package vm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pidgin/internal/rterr"
	"pidgin/internal/symtab"
	"pidgin/internal/value"
)

func run(t *testing.T, src string) (value.Value, *EvaluationState) {
	t.Helper()
	syms := symtab.New()
	prog, err := Compile(syms, src)
	require.NoError(t, err)
	st := New(syms)
	v, err := prog.Run(st)
	require.NoError(t, err)
	return v, st
}

func TestArithmeticCall(t *testing.T) {
	v, _ := run(t, "(+ 1 2)")
	require.Equal(t, int64(3), v.Num.AsIntTruncating())
}

func TestVariadicArithmeticCall(t *testing.T) {
	v, _ := run(t, "(+ 1 2 3 4 5)")
	require.Equal(t, int64(15), v.Num.AsIntTruncating())
}

func TestListConstruction(t *testing.T) {
	v, _ := run(t, "(list 1 2 3)")
	require.Equal(t, value.KindList, v.Kind)
	require.Len(t, v.List.Items, 3)
	require.Equal(t, int64(1), v.List.Items[0].Num.AsIntTruncating())
}

func TestFirstOfRest(t *testing.T) {
	v, _ := run(t, "(first (rest (list 1 2 3)))")
	require.Equal(t, int64(2), v.Num.AsIntTruncating())
}

func TestLambdaLiftingCapturesOuterParameter(t *testing.T) {
	v, _ := run(t, "((fn (x) ((fn (y) (* x y)) 5)) 7)")
	require.Equal(t, int64(35), v.Num.AsIntTruncating())
}

func TestComposeChainsFunctions(t *testing.T) {
	v, _ := run(t, "((compose inc inc inc) 0)")
	require.Equal(t, int64(3), v.Num.AsIntTruncating())
}

func TestTailRecursiveCountDownDoesNotOverflowGoStack(t *testing.T) {
	src := `
(def count-down (fn (n acc)
  (if (= n 0) acc (count-down (- n 1) (+ acc 1)))))
(count-down 20000 0)
`
	v, _ := run(t, src)
	require.Equal(t, int64(20000), v.Num.AsIntTruncating())
}

func TestSelfRecursiveFactorial(t *testing.T) {
	src := `
(def fact (fn (n) (if (= n 0) 1 (* n (fact (- n 1))))))
(fact 10)
`
	v, _ := run(t, src)
	require.Equal(t, int64(3628800), v.Num.AsIntTruncating())
}

func TestPartialApplication(t *testing.T) {
	v, _ := run(t, "((partial + 10) 5)")
	require.Equal(t, int64(15), v.Num.AsIntTruncating())
}

func TestCoroutineYieldResumeRoundTrip(t *testing.T) {
	src := `
(def counter (fn ()
  (yield 1)
  (yield 2)
  (yield 3)))
(create-coroutine counter)
`
	syms := symtab.New()
	prog, err := Compile(syms, src)
	require.NoError(t, err)
	st := New(syms)
	co, err := prog.Run(st)
	require.NoError(t, err)
	require.Equal(t, value.KindCoroutine, co.Kind)

	for _, want := range []int64{1, 2, 3} {
		alive, err := st.Apply(co, nil)
		require.NoError(t, err)
		require.Equal(t, want, alive.Num.AsIntTruncating())
	}

	last, err := st.Apply(co, nil)
	require.NoError(t, err)
	require.Equal(t, value.Nil, last)

	_, err = st.Apply(co, nil)
	require.Error(t, err)
	require.IsType(t, rterr.DeadCoroutine{}, err)
}

func TestCoroutineAliveness(t *testing.T) {
	src := `
(def single-shot (fn () 42))
(def c (create-coroutine single-shot))
(list (coroutine-alive? c) c)
`
	syms := symtab.New()
	prog, err := Compile(syms, src)
	require.NoError(t, err)
	st := New(syms)
	v, err := prog.Run(st)
	require.NoError(t, err)
	require.True(t, v.List.Items[0].AsBool())

	co := v.List.Items[1]
	result, err := st.Apply(co, nil)
	require.NoError(t, err)
	require.Equal(t, int64(42), result.Num.AsIntTruncating())
	require.True(t, co.Coro.Dead, "a coroutine that ran to completion without yielding should be dead")
}

func TestYieldAndAcceptDeliversResumeArguments(t *testing.T) {
	src := `
(def echo (fn ()
  (yield-and-accept 0 1)))
(create-coroutine echo)
`
	syms := symtab.New()
	prog, err := Compile(syms, src)
	require.NoError(t, err)
	st := New(syms)
	co, err := prog.Run(st)
	require.NoError(t, err)

	first, err := st.Apply(co, nil)
	require.NoError(t, err)
	require.Equal(t, int64(0), first.Num.AsIntTruncating())

	second, err := st.Apply(co, []value.Value{value.IntNum(9)})
	require.NoError(t, err)
	require.Equal(t, int64(9), second.Num.AsIntTruncating())
}

func TestApplyingNonCallableIsRuntimeError(t *testing.T) {
	st := New(symtab.New())
	_, err := st.Apply(value.Num(value.Int(1)), nil)
	require.Error(t, err)
	require.IsType(t, rterr.CantApply{}, err)
}
