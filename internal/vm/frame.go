// SPDX-License-Identifier: Apache-2.0
package vm

import "pidgin/internal/value"

// sentinelReturn marks a frame whose Return should stop the stepping loop
// and hand the value back to Go (the outermost call of a run), rather than
// writing it into a caller frame's register (spec.md 6: "Return ... pops
// the active frame, and either writes the value to the popped frame's
// return_stack_index ... or ... terminates evaluation with that value").
const sentinelReturn = -1

// frame is one activation record: an instruction cursor into a block plus
// the register window that block's instructions index into. Registers are
// windows into the owning coroutine's flat value stack (spec.md 6: "a
// dedicated value stack per coroutine ... registers are offsets from a
// frame's beginning"), implemented here as a plain Go slice rather than
// manual offset arithmetic into one backing array.
type frame struct {
	fn        *value.CompositeFn
	block     *value.Block
	regs      []value.Value
	pc        int
	self      value.Value // the CompositeFn value, for CallingFunction/CallSelf
	returnReg int         // register in the caller frame Return writes to, or sentinelReturn
}

func newFrame(fn *value.CompositeFn, self value.Value, returnReg int) *frame {
	return &frame{
		fn:        fn,
		block:     fn.Block,
		regs:      make([]value.Value, registerCount(fn.Block)),
		self:      self,
		returnReg: returnReg,
	}
}

// reset reuses this frame's register window for a fresh call, growing it if
// the new block needs more registers. Called only for tail positions
// (spec.md 8: deep tail recursion must not grow any stack), so the same
// *frame survives across arbitrarily many iterations.
func (f *frame) reset(fn *value.CompositeFn, self value.Value) {
	n := registerCount(fn.Block)
	if cap(f.regs) < n {
		f.regs = make([]value.Value, n)
	} else {
		f.regs = f.regs[:n]
		for i := range f.regs {
			f.regs[i] = value.Nil
		}
	}
	f.fn = fn
	f.block = fn.Block
	f.pc = 0
	f.self = self
}

// registerCount is the number of physical registers a block's instructions
// ever index, computed once; AritySpecifier only bounds the parameter
// prefix, and the allocator can use any register up to 256.
func registerCount(b *value.Block) int {
	max := -1
	bump := func(r value.Reg8) {
		if int(r) > max {
			max = int(r)
		}
	}
	for _, ins := range b.Instructions {
		for i := 0; i < int(ins.NIn); i++ {
			bump(ins.In[i])
		}
		if ins.HasOut {
			bump(ins.Out)
		}
		if ins.HasRepl {
			bump(ins.Repl)
		}
	}
	return max + 1
}

// bindArgs writes args into a freshly sized register window honoring fn's
// arity (spec.md 4.7: AritySpecifier.CanAccept); a variadic function
// collects every argument past its fixed prefix into a single trailing list
// register, the usual rest-parameter convention (not exercised by the
// compiler, which only ever emits fixed arity, but needed for hand-authored
// bytecode that declares a variadic CompositeFn).
func bindArgs(regs []value.Value, fn *value.CompositeFn, args []value.Value) error {
	if !fn.Args.CanAccept(len(args)) {
		return arityError(fn.Args, len(args))
	}
	if !fn.Args.Variadic {
		copy(regs, args)
		return nil
	}
	fixed := int(fn.Args.RegisterCount())
	copy(regs[:fixed], args[:fixed])
	regs[fixed] = value.List(value.NewList(append([]value.Value(nil), args[fixed:]...)))
	return nil
}
