// SPDX-License-Identifier: Apache-2.0
package ir

import (
	"pidgin/internal/corefn"
	"pidgin/internal/instr"
	"pidgin/internal/value"
)

// InlineCoreFnCalls rewrites `Const(core-fn) ; Call ; CopyArgument... /
// StealArgument...` sequences into primitive instructions wherever the
// called core function has a direct bytecode opcode at that arity
// (spec.md 4.4): First, Last, IsEmpty, Rest and ButLast with one argument;
// Add, Subtract, Multiply, Divide, Push and Cons with two. It runs to a
// fixed point, since each rewrite can expose the operand of an enclosing
// call that wasn't previously a compile-time-known core function.
//
// Variadic Add and Multiply calls (3 or more arguments) lower to a
// left-associated chain of binary primitives using scratch registers above
// the block's current maximum, exactly mirroring the binary case applied
// repeatedly (spec.md 4.4). A CreateList call with any number of arguments
// lowers to EmptyList followed by one Push per argument, chained through
// scratch registers the same way.
func InlineCoreFnCalls(block *SSABlock, preallocatedRegisters uint8) (*SSABlock, error) {
	instructions := append([]SSAInstruction(nil), block.Instructions...)
	constants := block.Constants

	for {
		lifetimes, err := CalculateRegisterLifetimes(preallocatedRegisters, instructions)
		if err != nil {
			return nil, err
		}
		rewritten, changed, err := inlineOnePass(instructions, constants, lifetimes)
		if err != nil {
			return nil, err
		}
		if !changed {
			break
		}
		instructions = rewritten
	}

	newConstants := make([]SSADatum, len(constants))
	for i, c := range constants {
		if c.Kind == value.KindCompositeFn {
			inlinedBody, err := InlineCoreFnCalls(c.CompositeFn.Block, c.CompositeFn.Args.RegisterCount())
			if err != nil {
				return nil, err
			}
			newConstants[i] = value.CompositeFnDatum[Reg, Reg, Replacement](&SSACompositeFunction{
				Args:  c.CompositeFn.Args,
				Block: inlinedBody,
			})
		} else {
			newConstants[i] = c
		}
	}

	return &SSABlock{Instructions: instructions, Constants: newConstants}, nil
}

func inlineOnePass(instructions []SSAInstruction, constants []SSADatum, lifetimes Lifetimes) ([]SSAInstruction, bool, error) {
	for timestamp, ins := range instructions {
		if ins.Op != instr.OpCall {
			continue
		}
		target := ins.Out
		fReg := ins.In[0]
		argCount := int(ins.Aux)

		fLifetime := lifetimes[fReg]
		if fLifetime == nil || fLifetime.Creation == nil {
			continue
		}
		creationIns := instructions[*fLifetime.Creation]
		if creationIns.Op != instr.OpConst {
			continue
		}
		constIdx := int(creationIns.Aux)
		if constIdx >= len(constants) || constants[constIdx].Kind != value.KindCoreFn {
			continue
		}
		fnID := corefn.ID(constants[constIdx].CoreFn)

		args := make([]Reg, argCount)
		ok := true
		for i := 0; i < argCount; i++ {
			argIns := instructions[timestamp+1+i]
			switch argIns.Op {
			case instr.OpCopyArgument, instr.OpStealArgument:
				args[i] = argIns.In[0]
			default:
				ok = false
			}
			if !ok {
				break
			}
		}
		if !ok {
			continue
		}

		replacement := buildInlinedInstructions(fnID, target, args, instructions)
		if replacement == nil {
			continue
		}

		out := make([]SSAInstruction, 0, len(instructions)-(argCount+1)+len(replacement))
		out = append(out, instructions[:timestamp]...)
		out = append(out, replacement...)
		out = append(out, instructions[timestamp+1+argCount:]...)
		return out, true, nil
	}
	return instructions, false, nil
}

// buildInlinedInstructions returns the primitive instruction(s) equivalent
// to calling fnID with args, or nil if fnID has no direct bytecode
// primitive at this arity.
func buildInlinedInstructions(fnID corefn.ID, target Reg, args []Reg, instructions []SSAInstruction) []SSAInstruction {
	if fnID == corefn.CreateList {
		if len(args) == 0 {
			return []SSAInstruction{instr.Nullary[Reg, Reg, Replacement](instr.OpEmptyList, target)}
		}
		prev := maxRegister(instructions) + 1
		out := []SSAInstruction{instr.Nullary[Reg, Reg, Replacement](instr.OpEmptyList, prev)}
		for i, a := range args {
			next := prev + 1
			if i == len(args)-1 {
				next = target
			}
			out = append(out, instr.BinaryReplacing[Reg, Reg, Replacement](instr.OpPush, a, Replacement{From: prev, To: next}))
			prev = next
		}
		return out
	}
	switch len(args) {
	case 1:
		switch fnID {
		case corefn.First:
			return []SSAInstruction{instr.Unary[Reg, Reg, Replacement](instr.OpFirst, args[0], target)}
		case corefn.Last:
			return []SSAInstruction{instr.Unary[Reg, Reg, Replacement](instr.OpLast, args[0], target)}
		case corefn.IsEmpty:
			return []SSAInstruction{instr.Unary[Reg, Reg, Replacement](instr.OpIsEmpty, args[0], target)}
		case corefn.Rest:
			return []SSAInstruction{instr.UnaryReplacing[Reg, Reg, Replacement](instr.OpRest, Replacement{From: args[0], To: target})}
		case corefn.ButLast:
			return []SSAInstruction{instr.UnaryReplacing[Reg, Reg, Replacement](instr.OpButLast, Replacement{From: args[0], To: target})}
		}
		return nil
	case 2:
		switch fnID {
		case corefn.Add:
			return []SSAInstruction{instr.Binary[Reg, Reg, Replacement](instr.OpAdd, args[0], args[1], target)}
		case corefn.Subtract:
			return []SSAInstruction{instr.Binary[Reg, Reg, Replacement](instr.OpSubtract, args[0], args[1], target)}
		case corefn.Multiply:
			return []SSAInstruction{instr.Binary[Reg, Reg, Replacement](instr.OpMultiply, args[0], args[1], target)}
		case corefn.Divide:
			return []SSAInstruction{instr.Binary[Reg, Reg, Replacement](instr.OpDivide, args[0], args[1], target)}
		case corefn.Push:
			return []SSAInstruction{instr.BinaryReplacing[Reg, Reg, Replacement](instr.OpPush, args[1], Replacement{From: args[0], To: target})}
		case corefn.Cons:
			return []SSAInstruction{instr.BinaryReplacing[Reg, Reg, Replacement](instr.OpCons, args[1], Replacement{From: args[0], To: target})}
		}
		return nil
	default:
		var op instr.Op
		switch fnID {
		case corefn.Add:
			op = instr.OpAdd
		case corefn.Multiply:
			op = instr.OpMultiply
		default:
			return nil
		}
		n := len(args)
		firstFree := maxRegister(instructions) + 1
		out := []SSAInstruction{instr.Binary[Reg, Reg, Replacement](op, args[0], args[1], firstFree)}
		if n == 3 {
			out = append(out, instr.Binary[Reg, Reg, Replacement](op, args[2], firstFree, target))
			return out
		}
		for i := 0; i < n-3; i++ {
			out = append(out, instr.Binary[Reg, Reg, Replacement](op, args[i+2], firstFree+i, firstFree+i+1))
		}
		out = append(out, instr.Binary[Reg, Reg, Replacement](op, args[n-1], firstFree+n-3, target))
		return out
	}
}
