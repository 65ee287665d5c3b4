// SPDX-License-Identifier: Apache-2.0
package vm

import (
	"fmt"

	"pidgin/internal/corefn"
	"pidgin/internal/instr"
	"pidgin/internal/rterr"
	"pidgin/internal/value"
)

// pushCall pushes a new frame for fn onto the current coroutine's stack,
// the ordinary (non-tail) call path (spec.md 6: "stepping ... may push ...
// frames"). returnReg is the register in the frame below that the pushed
// frame's eventual Return writes its result into; sentinelReturn marks a
// frame that is the bottom of this particular run invocation, whose
// Return hands the result back to Go instead.
func (st *EvaluationState) pushCall(fn *value.CompositeFn, args []value.Value, returnReg int) error {
	if !fn.Args.CanAccept(len(args)) {
		return arityError(fn.Args, len(args))
	}
	fr := newFrame(fn, value.Composite(fn), returnReg)
	if err := bindArgs(fr.regs, fn, args); err != nil {
		return err
	}
	st.current.frames = append(st.current.frames, fr)
	return nil
}

// replaceTop reuses the top frame in place for a tail call (spec.md 8:
// deep tail recursion must not grow any stack). The same *frame survives
// across arbitrarily many iterations of run's loop; its returnReg is left
// untouched, since the eventual caller to return to hasn't changed.
func replaceTop(top *frame, fn *value.CompositeFn, args []value.Value) error {
	if !fn.Args.CanAccept(len(args)) {
		return arityError(fn.Args, len(args))
	}
	top.reset(fn, value.Composite(fn))
	return bindArgs(top.regs, fn, args)
}

// run steps the current coroutine until its bottommost frame for this
// invocation returns (a sentinelReturn frame, pushed by whoever called
// run), it yields, or it errors. A single EvaluationState can be reentered
// this way for a nested, non-tail call (from Apply, or a corefn
// higher-order builtin invoking a callback) without disturbing frames
// already on the stack below it, since those belong to an outer, already
// suspended call to run.
func (st *EvaluationState) run() (value.Value, bool, error) {
	for {
		frames := st.current.frames
		top := frames[len(frames)-1]
		ins := top.block.Instructions[top.pc]

		switch ins.Op {
		case instr.OpConst:
			top.regs[ins.Out] = value.FromDatum(top.block.Constants[ins.Aux])
			top.pc++

		case instr.OpLookup:
			v, ok := st.lookupGlobal(uint16(ins.Aux))
			if !ok {
				return value.Nil, false, fmt.Errorf("unbound global symbol %q", st.Syms.Name(uint16(ins.Aux)))
			}
			top.regs[ins.Out] = v
			top.pc++

		case instr.OpCopy:
			top.regs[ins.Out] = top.regs[ins.In[0]]
			top.pc++

		case instr.OpClear:
			top.regs[ins.In[0]] = value.Nil
			top.pc++

		case instr.OpCallingFunction:
			top.regs[ins.Out] = top.self
			top.pc++

		case instr.OpPrint, instr.OpDebugPrint:
			st.Print(top.regs[ins.In[0]])
			top.pc++

		case instr.OpReturn:
			result := top.regs[ins.In[0]]
			returnReg := top.returnReg
			st.current.frames = frames[:len(frames)-1]
			if returnReg == sentinelReturn {
				return result, false, nil
			}
			st.current.frames[len(st.current.frames)-1].regs[returnReg] = result

		case instr.OpJump:
			top.pc = int(ins.Aux)

		case instr.OpIf, instr.OpElseIf:
			if top.regs[ins.In[0]].AsBool() {
				top.pc++
			} else {
				top.pc = int(ins.Aux)
			}

		case instr.OpElse, instr.OpEndIf:
			top.pc++

		case instr.OpCopyArgument, instr.OpStealArgument:
			// Only ever consumed in bulk by a call-family instruction
			// immediately before them; reaching one as the current
			// instruction means a stray encode, not a legal program.
			return value.Nil, false, fmt.Errorf("orphaned %s instruction at pc %d", ins.Op, top.pc)

		case instr.OpPartial:
			args := gatherCallArgs(top, int(ins.Aux))
			top.regs[ins.Out] = value.Partial(&value.PartialApplication{Fn: top.regs[ins.In[0]], Stored: args})

		case instr.OpCall, instr.OpCallSelf:
			fnVal := top.regs[ins.In[0]]
			if ins.Op == instr.OpCallSelf {
				fnVal = top.self
			}
			args := gatherCallArgs(top, int(ins.Aux))
			if err := st.dispatchCall(fnVal, args, int(ins.Out)); err != nil {
				return value.Nil, false, err
			}

		case instr.OpApply, instr.OpApplySelf:
			fnVal := top.regs[ins.In[0]]
			if ins.Op == instr.OpApplySelf {
				fnVal = top.self
			}
			args, err := gatherApplyArgs(top, int(ins.Aux))
			if err != nil {
				return value.Nil, false, err
			}
			if err := st.dispatchCall(fnVal, args, int(ins.Out)); err != nil {
				return value.Nil, false, err
			}

		case instr.OpCallAndReturn, instr.OpCallSelfAndReturn:
			fnVal := top.regs[ins.In[0]]
			if ins.Op == instr.OpCallSelfAndReturn {
				fnVal = top.self
			}
			args := gatherCallArgs(top, int(ins.Aux))
			result, done, err := st.tailCall(top, fnVal, args)
			if err != nil {
				return value.Nil, false, err
			}
			if done {
				return result, false, nil
			}

		case instr.OpApplyAndReturn, instr.OpApplySelfAndReturn:
			fnVal := top.regs[ins.In[0]]
			if ins.Op == instr.OpApplySelfAndReturn {
				fnVal = top.self
			}
			args, err := gatherApplyArgs(top, int(ins.Aux))
			if err != nil {
				return value.Nil, false, err
			}
			result, done, err := st.tailCall(top, fnVal, args)
			if err != nil {
				return value.Nil, false, err
			}
			if done {
				return result, false, nil
			}

		case instr.OpCreateCoroutine:
			v, err := st.CreateCoroutine(top.regs[ins.In[0]])
			if err != nil {
				return value.Nil, false, err
			}
			top.regs[ins.Out] = v
			top.pc++

		case instr.OpIsCoroutineAlive:
			c := top.regs[ins.In[0]]
			alive := c.Kind == value.KindCoroutine && !c.Coro.Dead
			top.regs[ins.Out] = value.Bool(alive)
			top.pc++

		case instr.OpYield:
			st.current.acceptCount = 0
			top.pc++
			return top.regs[ins.In[0]], true, nil

		case instr.OpYieldAndAccept:
			st.current.acceptBase = ins.Out
			st.current.acceptCount = int(ins.Aux)
			yieldVal := top.regs[ins.In[0]]
			top.pc++
			return yieldVal, true, nil

		default:
			id, ok := opToCoreFn[ins.Op]
			if !ok {
				result, err := dispatchMiscOp(ins, top.regs, st)
				if err != nil {
					return value.Nil, false, err
				}
				writeGenericResult(top.regs, ins, result)
				top.pc++
				continue
			}
			args := gatherGenericArgs(top.regs, ins)
			result, err := corefn.Table[id](args, st)
			if err != nil {
				return value.Nil, false, err
			}
			writeGenericResult(top.regs, ins, result)
			top.pc++
		}

		// A call-family case may have returned straight out of run (a
		// sentinelReturn frame popping, or a coroutine yield); everything
		// else always has more frames left to step.
		if len(st.current.frames) == 0 {
			return value.Nil, false, fmt.Errorf("coroutine frame stack ran empty without a sentinel return")
		}
	}
}

// dispatchCall performs a non-tail call, writing its result into the
// calling frame's out register; a composite target pushes a new frame
// onto the same run loop (no Go recursion for Pidgin-to-Pidgin calls, tail
// or not), everything else is a direct Go call through to corefn,
// an external function, or a coroutine resume.
func (st *EvaluationState) dispatchCall(fnVal value.Value, args []value.Value, out int) error {
	target, fullArgs := resolveCallable(fnVal, args)
	switch target.Kind {
	case value.KindCompositeFn:
		return st.pushCall(target.Fn, fullArgs, out)
	case value.KindCoreFn:
		result, err := corefn.Table[corefn.ID(target.CoreFn)](fullArgs, st)
		if err != nil {
			return err
		}
		st.current.frames[len(st.current.frames)-1].regs[out] = result
		return nil
	case value.KindExternalFn:
		result, err := target.Ext.Fn(fullArgs)
		if err != nil {
			return err
		}
		st.current.frames[len(st.current.frames)-1].regs[out] = result
		return nil
	case value.KindCoroutine:
		result, err := st.resumeCoroutine(target.Coro, fullArgs)
		if err != nil {
			return err
		}
		st.current.frames[len(st.current.frames)-1].regs[out] = result
		return nil
	default:
		return rterr.CantApply{Got: target.Kind.String()}
	}
}

// gatherCallArgs reads the n CopyArgument/StealArgument pseudo-instructions
// following a Call/Partial/CallAndReturn-family instruction and advances
// top.pc past all of them (spec.md 4.1: "never executed; the evaluator
// consumes them while constructing the callee frame"). StealArgument moves
// its register's value out, leaving Nil behind, matching a compiler that
// knows the source register is dead after the call.
func gatherCallArgs(top *frame, n int) []value.Value {
	args := make([]value.Value, n)
	for i := 0; i < n; i++ {
		ins := top.block.Instructions[top.pc+1+i]
		r := ins.In[0]
		args[i] = top.regs[r]
		if ins.Op == instr.OpStealArgument {
			top.regs[r] = value.Nil
		}
	}
	top.pc += n + 1
	return args
}

// gatherApplyArgs is gatherCallArgs for the Apply family: the last of the n
// pseudo-argument registers holds a list whose elements splice in after the
// leading literal arguments (the same convention the `apply` core function
// uses over its own argument list).
func gatherApplyArgs(top *frame, n int) ([]value.Value, error) {
	raw := gatherCallArgs(top, n)
	if len(raw) == 0 {
		return nil, rterr.InvalidArity{Got: 0, Expected: "at least 1"}
	}
	spread := raw[len(raw)-1]
	if spread.Kind != value.KindList {
		return nil, rterr.ArgumentNotList{Got: spread.Kind.String()}
	}
	args := append(append([]value.Value{}, raw[:len(raw)-1]...), spread.List.Items...)
	return args, nil
}

// tailCall performs a CallAndReturn-family call. For a composite target it
// reuses the current top frame in place (spec.md 8), leaving run's loop to
// continue stepping the same frame slot under its new function (done is
// false: nothing to report, the loop just keeps going). For anything else
// there is no bytecode to loop into, so it runs the call to completion
// immediately and propagates its result exactly as an ordinary Return
// would: into the caller's register, or, if this was the bottom frame of
// the current run invocation (returnReg == sentinelReturn), done is true
// and run must return result straight to its own caller.
func (st *EvaluationState) tailCall(top *frame, fnVal value.Value, args []value.Value) (result value.Value, done bool, err error) {
	target, fullArgs := resolveCallable(fnVal, args)
	if target.Kind == value.KindCompositeFn {
		return value.Nil, false, replaceTop(top, target.Fn, fullArgs)
	}

	switch target.Kind {
	case value.KindCoreFn:
		result, err = corefn.Table[corefn.ID(target.CoreFn)](fullArgs, st)
	case value.KindExternalFn:
		result, err = target.Ext.Fn(fullArgs)
	case value.KindCoroutine:
		result, err = st.resumeCoroutine(target.Coro, fullArgs)
	default:
		err = rterr.CantApply{Got: target.Kind.String()}
	}
	if err != nil {
		return value.Nil, false, err
	}

	returnReg := top.returnReg
	frames := st.current.frames
	st.current.frames = frames[:len(frames)-1]
	if returnReg == sentinelReturn {
		return result, true, nil
	}
	st.current.frames[len(st.current.frames)-1].regs[returnReg] = result
	return value.Nil, false, nil
}
