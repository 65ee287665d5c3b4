// SPDX-License-Identifier: Apache-2.0
package vm

import (
	"pidgin/internal/rterr"
	"pidgin/internal/value"
)

// CoroutineState is the suspended-or-running state of one coroutine
// (spec.md 6: "Coroutine state: {stack, paused_frames, consumption}"). It
// lives behind value.CoroutineCell.Paused as an any, since value can't
// import vm. "stack" and "consumption" collapse here into the frame
// stack's own register windows: each frame already owns a right-sized
// slice, so there is no separate flat array to track a high-water mark
// for.
type CoroutineState struct {
	frames  []*frame
	running bool

	// Set by a Yield/YieldAndAccept just before this coroutine parks,
	// telling the next resume where (and how many values) to deliver.
	// acceptCount is 0 for a plain Yield, whose resume arguments are
	// simply discarded (spec.md 6: Yield(v) carries no accept clause;
	// YieldAndAccept(v, n, base) adds one).
	acceptBase  uint8
	acceptCount int
}

func newCoroutineState() *CoroutineState { return &CoroutineState{} }

// pendingCoroutine is the Paused payload before a coroutine's first
// resume, when it is still just a callable and has no frame stack yet
// (spec.md 6, state machine: Fresh -> Running on first Call).
type pendingCoroutine struct {
	fn value.Value
}

// CreateCoroutine wraps a callable in a fresh, not-yet-started handle
// (spec.md 6: "CreateCoroutine wraps a CompositeFn in a fresh
// CoroutineState whose paused_frames contains a single root frame" --
// deferred here to first resume, since a composite's arguments, and thus
// its root frame's register contents, aren't known until then).
func (st *EvaluationState) CreateCoroutine(fn value.Value) (value.Value, error) {
	switch fn.Kind {
	case value.KindCompositeFn, value.KindExternalFn, value.KindCoreFn, value.KindPartial:
		return value.Coroutine(&value.CoroutineCell{Paused: &pendingCoroutine{fn: fn}}), nil
	default:
		return value.Nil, rterr.CantCreateCoroutine{Reason: "not a callable value: " + fn.Kind.String()}
	}
}

// resumeCoroutine implements spec.md 6's Call-on-a-coroutine-handle
// semantics: take the paused state out of the cell, push the evaluator's
// currently running coroutine onto the parent stack, swap in the child,
// and continue it from wherever it last suspended (or start it, on first
// resume).
func (st *EvaluationState) resumeCoroutine(cell *value.CoroutineCell, args []value.Value) (value.Value, error) {
	if cell.Dead {
		return value.Nil, rterr.DeadCoroutine{}
	}
	switch paused := cell.Paused.(type) {
	case *pendingCoroutine:
		target, fullArgs := resolveCallable(paused.fn, args)
		if target.Kind != value.KindCompositeFn {
			// A coroutine wrapping a core-fn or external function has no
			// bytecode to suspend in the middle of: it runs to completion
			// on its first (only) resume.
			result, err := st.Apply(target, fullArgs)
			cell.Dead = true
			if err != nil {
				return value.Error(err), nil
			}
			return result, nil
		}
		composite := target.Fn
		if !composite.Args.CanAccept(len(fullArgs)) {
			return value.Nil, arityError(composite.Args, len(fullArgs))
		}
		fr := newFrame(composite, value.Composite(composite), sentinelReturn)
		if err := bindArgs(fr.regs, composite, fullArgs); err != nil {
			return value.Nil, err
		}
		child := newCoroutineState()
		child.frames = []*frame{fr}
		return st.enterCoroutine(cell, child)
	case *CoroutineState:
		if paused.running {
			return value.Nil, rterr.CoroutineAlreadyRunning{}
		}
		if paused.acceptCount > 0 && len(paused.frames) > 0 {
			top := paused.frames[len(paused.frames)-1]
			base := int(paused.acceptBase)
			for i := 0; i < paused.acceptCount && base+i < len(top.regs); i++ {
				if i < len(args) {
					top.regs[base+i] = args[i]
				} else {
					top.regs[base+i] = value.Nil
				}
			}
		}
		return st.enterCoroutine(cell, paused)
	default:
		return value.Nil, rterr.IsntCoroutine{Got: "corrupt coroutine handle"}
	}
}

// enterCoroutine swaps cs in as the running coroutine, steps it to either
// completion, a Yield, or an error, then swaps the previous coroutine back
// in (spec.md 6: parent_coroutine_stack). Errors and a final return both
// mark the coroutine dead; a Yield leaves it parked in the cell for a
// later resume.
func (st *EvaluationState) enterCoroutine(cell *value.CoroutineCell, cs *CoroutineState) (value.Value, error) {
	cs.running = true
	st.parents = append(st.parents, st.current)
	st.current = cs

	val, yielded, err := st.run()

	st.current = st.parents[len(st.parents)-1]
	st.parents = st.parents[:len(st.parents)-1]
	cs.running = false

	if err != nil {
		cell.Dead = true
		return value.Error(err), nil
	}
	if yielded {
		cell.Paused = cs
		return val, nil
	}
	cell.Dead = true
	return val, nil
}
