// SPDX-License-Identifier: Apache-2.0
package vm

import (
	"pidgin/internal/instr"
	"pidgin/internal/rterr"
	"pidgin/internal/value"
)

// raisedValue is the Go error a to-error conversion wraps a Value in. It
// exists only so the resulting value.Error carries a message describing
// the original value; nothing else unwraps it, since the catalog has no
// error-value accessor opcode to read it back out.
type raisedValue struct{ v value.Value }

func (e raisedValue) Error() string { return e.v.Description() }

// dispatchMiscOp handles the handful of cataloged opcodes with no
// corefn.Table counterpart (opToCoreFn's doc comment): the boolean type
// predicates IsError/IsCell/IsCoroutine, the to-error converter, and the
// two collection primitives (DoubleMap, SteppedPartition) that never
// appear in compiler-generated bytecode but remain part of the
// instruction catalog for hand-assembled programs.
func dispatchMiscOp(ins value.BytecodeInstruction, regs []value.Value, st *EvaluationState) (value.Value, error) {
	args := gatherGenericArgs(regs, ins)
	switch ins.Op {
	case instr.OpIsError:
		return value.Bool(args[0].Kind == value.KindError), nil
	case instr.OpIsCell:
		return value.Bool(args[0].Kind == value.KindCell), nil
	case instr.OpIsCoroutine:
		return value.Bool(args[0].Kind == value.KindCoroutine), nil
	case instr.OpToError:
		return value.Error(raisedValue{args[0]}), nil
	case instr.OpDoubleMap:
		return dispatchDoubleMap(args)
	case instr.OpSteppedPartition:
		return dispatchSteppedPartition(args, ins.Aux)
	default:
		return value.Nil, rterr.CantApply{Got: "unrecognized opcode " + ins.Op.String()}
	}
}

// dispatchDoubleMap pairs each element of a list with its index (a single
// list register in, a single list of [index, value] pairs out). Unlike
// every other entry in this file it takes one register operand rather than
// two or three: the Instruction format caps a single instruction at two In
// registers or one Repl, never both, so a three-operand (fn, list, list)
// shape for this name is not representable and the fixed-arity `map` core
// function already covers the two-list case through an ordinary Call.
func dispatchDoubleMap(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Nil, rterr.InvalidArity{Got: len(args), Expected: "1"}
	}
	l, err := asListArg(args[0])
	if err != nil {
		return value.Nil, err
	}
	out := make([]value.Value, l.Len())
	for i, item := range l.Items {
		out[i] = value.List(value.NewList([]value.Value{value.Num(value.Int(int64(i))), item}))
	}
	return value.List(value.NewList(out)), nil
}

// dispatchSteppedPartition partitions a list into fixed-size, overlapping
// windows advancing by a given step (partition-step in the opcode name
// table), the bounded-stride generalization of plain Partition's
// non-overlapping groups. size and step are packed into the instruction's
// Aux word (high/low 16 bits) rather than taken as register operands, for
// the same register-count reason as dispatchDoubleMap: only the list
// itself is a runtime value here, so both strides are treated as
// compile-time constants baked into the instruction, the way a fixed
// iteration bound is for BoundedRepeat.
func dispatchSteppedPartition(args []value.Value, aux uint32) (value.Value, error) {
	if len(args) != 1 {
		return value.Nil, rterr.InvalidArity{Got: len(args), Expected: "1"}
	}
	size := int(aux >> 16)
	step := int(aux & 0xffff)
	if size <= 0 || step <= 0 {
		return value.Nil, rterr.ArgumentNotInt{Got: "partition-step size/step must be positive"}
	}
	l, err := asListArg(args[0])
	if err != nil {
		return value.Nil, err
	}
	var groups []value.Value
	for i := 0; i+size <= l.Len(); i += step {
		groups = append(groups, value.List(value.NewList(append([]value.Value(nil), l.Items[i:i+size]...))))
	}
	return value.List(value.NewList(groups)), nil
}

func asListArg(v value.Value) (*value.ListObj, error) {
	if v.Kind != value.KindList {
		return nil, rterr.ArgumentNotList{Got: v.Kind.String()}
	}
	return v.List, nil
}
