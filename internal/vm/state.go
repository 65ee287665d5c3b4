// SPDX-License-Identifier: Apache-2.0

// Package vm is the frame-stack evaluator (spec.md 6): it steps bytecode
// blocks over a register window per call, dispatches the call family with
// in-place reuse for tail positions, and owns the coroutine machinery that
// lets a child function pause mid-body and hand control back to its caller.
package vm

import (
	"fmt"
	"os"

	"pidgin/internal/corefn"
	"pidgin/internal/rterr"
	"pidgin/internal/symtab"
	"pidgin/internal/value"
)

// EvaluationState is one evaluator instance: the global bindings a program's
// top-level `def` forms populate, the symbol table shared with the
// compiler, and whichever coroutine currently owns the register stack
// (spec.md 6: "current_frame, current_coroutine, parent_coroutine_stack").
// It implements corefn.Applier so the dispatch table can call back into
// Apply for higher-order built-ins (map, filter, reduce, compose, apply,
// when, if) without internal/corefn importing this package.
type EvaluationState struct {
	Syms    *symtab.Table
	globals map[uint16]value.Value

	root    *CoroutineState
	current *CoroutineState
	parents []*CoroutineState // spec.md 6's parent_coroutine_stack

	out *os.File
}

// New builds an evaluator sharing syms with the compiler that will produce
// the blocks it runs.
func New(syms *symtab.Table) *EvaluationState {
	root := newCoroutineState()
	return &EvaluationState{
		Syms:    syms,
		globals: make(map[uint16]value.Value),
		root:    root,
		current: root,
		out:     os.Stdout,
	}
}

// Define installs a global binding, as a top-level `def` does once its value
// expression finishes evaluating.
func (st *EvaluationState) Define(name string, v value.Value) {
	st.globals[st.Syms.Intern(name)] = v
}

func (st *EvaluationState) lookupGlobal(idx uint16) (value.Value, bool) {
	v, ok := st.globals[idx]
	return v, ok
}

// Intern implements corefn.Applier for runtime (to-symbol "name") calls.
func (st *EvaluationState) Intern(name string) uint16 { return st.Syms.Intern(name) }

// Print implements corefn.Applier for the `print` built-in.
func (st *EvaluationState) Print(v value.Value) {
	fmt.Fprintln(st.out, v.Description())
}

// Apply implements corefn.Applier and is also the entry point callers
// outside this package use to invoke a Pidgin value as a function (a REPL
// evaluating a top-level call, or a composite function's CompositeFn
// descriptor read back out of a `def`).
func (st *EvaluationState) Apply(fn value.Value, args []value.Value) (value.Value, error) {
	target, fullArgs := resolveCallable(fn, args)
	switch target.Kind {
	case value.KindCompositeFn:
		if err := st.pushCall(target.Fn, fullArgs, sentinelReturn); err != nil {
			return value.Nil, err
		}
		val, yielded, err := st.run()
		if err != nil {
			return value.Nil, err
		}
		if yielded {
			// A Yield surfacing through this call-back boundary has no
			// frame left to resume into: corefn.Applier's Apply is a
			// plain synchronous call (map, filter, reduce, compose, ...),
			// not a steppable frame, so it can't hand control back to the
			// Go closure that's mid-iteration over it (spec.md 6: yield
			// suspends the coroutine's own bytecode frames, not a native
			// builtin's call stack).
			return value.Nil, rterr.IsntCoroutine{Got: "yield reached outside a resumable coroutine frame"}
		}
		return val, nil
	case value.KindCoreFn:
		return corefn.Table[corefn.ID(target.CoreFn)](fullArgs, st)
	case value.KindExternalFn:
		return target.Ext.Fn(fullArgs)
	case value.KindCoroutine:
		return st.resumeCoroutine(target.Coro, fullArgs)
	default:
		return value.Nil, rterr.CantApply{Got: target.Kind.String()}
	}
}

// resolveCallable walks a chain of partial applications down to the
// underlying callable, prepending each layer's stored arguments ahead of
// the caller's own (spec.md 3: "partial application ... captured leading
// arguments").
func resolveCallable(fn value.Value, args []value.Value) (value.Value, []value.Value) {
	for fn.Kind == value.KindPartial {
		combined := make([]value.Value, 0, len(fn.Partial.Stored)+len(args))
		combined = append(combined, fn.Partial.Stored...)
		combined = append(combined, args...)
		args = combined
		fn = fn.Partial.Fn
	}
	return fn, args
}
