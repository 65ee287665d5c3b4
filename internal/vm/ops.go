// SPDX-License-Identifier: Apache-2.0
package vm

import (
	"pidgin/internal/corefn"
	"pidgin/internal/instr"
	"pidgin/internal/rterr"
	"pidgin/internal/value"
)

func arityError(a value.AritySpecifier, got int) error {
	return rterr.InvalidArity{Got: got, Expected: a.String()}
}

// opToCoreFn maps every opcode whose register shape (at most two inputs
// plus an optional single in-place replacement, spec.md 4.1) matches a
// corefn.Table entry's arity exactly onto that entry, so the interpreter
// loop has one fallback case instead of hand-writing arithmetic, predicate,
// and single/double-argument collection logic twice. Opcodes needing three
// or more logical arguments (Sub, Partition, Pad, GetIn, SetIn, Update,
// UpdateIn, MergeWith, SelectKeys, MapKeys, MapValues, variadic
// CreateMap/CreateSet, ...) have no entry here: the compiler never emits a
// dedicated opcode for them either (internal/ir's inliner only ever
// produces the unary/binary primitives below plus Add/Multiply chains), so
// they are reachable only through an ordinary Call against their
// corefn.Table entry.
var opToCoreFn = map[instr.Op]corefn.ID{
	instr.OpNumericalEqual: corefn.NumericalEqual,
	instr.OpIsZero:         corefn.IsZero,
	instr.OpIsNan:          corefn.IsNan,
	instr.OpIsInf:          corefn.IsInf,
	instr.OpIsEven:         corefn.IsEven,
	instr.OpIsOdd:          corefn.IsOdd,
	instr.OpIsPos:          corefn.IsPos,
	instr.OpIsNeg:          corefn.IsNeg,
	instr.OpInc:            corefn.Inc,
	instr.OpDec:            corefn.Dec,
	instr.OpNegate:         corefn.Subtract,
	instr.OpAbs:            corefn.Abs,
	instr.OpFloor:          corefn.Floor,
	instr.OpCeil:           corefn.Ceil,
	instr.OpSqrt:           corefn.Sqrt,
	instr.OpExp:            corefn.Exp,
	instr.OpExp2:           corefn.Exp2,
	instr.OpLn:             corefn.Ln,
	instr.OpLog2:           corefn.Log2,
	instr.OpAdd:            corefn.Add,
	instr.OpSubtract:       corefn.Subtract,
	instr.OpMultiply:       corefn.Multiply,
	instr.OpDivide:         corefn.Divide,
	instr.OpPow:            corefn.Pow,
	instr.OpMod:            corefn.Mod,
	instr.OpQuot:           corefn.Quot,
	instr.OpMin:            corefn.Min,
	instr.OpMax:            corefn.Max,
	instr.OpGreaterThan:        corefn.GreaterThan,
	instr.OpGreaterThanOrEqual: corefn.GreaterThanOrEqual,
	instr.OpLessThan:           corefn.LessThan,
	instr.OpLessThanOrEqual:    corefn.LessThanOrEqual,
	instr.OpRand:                 corefn.Rand,
	instr.OpUpperBoundedRand:     corefn.Rand,
	instr.OpLowerUpperBoundedRand: corefn.Rand,
	instr.OpRandInt:              corefn.RandInt,
	instr.OpLowerBoundedRandInt:  corefn.RandInt,

	instr.OpEqual:    corefn.Equal,
	instr.OpNotEqual: corefn.NotEqual,
	instr.OpNot:      corefn.Not,
	instr.OpAnd:      corefn.And,
	instr.OpOr:       corefn.Or,
	instr.OpXor:      corefn.Xor,

	instr.OpIsEmpty: corefn.IsEmpty,
	instr.OpFirst:   corefn.First,
	instr.OpLast:    corefn.Last,
	instr.OpRest:    corefn.Rest,
	instr.OpButLast: corefn.ButLast,
	instr.OpCount:   corefn.Count,
	instr.OpFlatten: corefn.Flatten,
	instr.OpPush:    corefn.Push,
	instr.OpCons:    corefn.Cons,
	instr.OpConcat:  corefn.Concat,
	instr.OpTake:    corefn.Take,
	instr.OpDrop:    corefn.Drop,
	instr.OpReverse: corefn.Reverse,
	instr.OpDistinct: corefn.Distinct,
	instr.OpSort:    corefn.Sort,
	instr.OpSortBy:  corefn.SortBy,
	instr.OpNth:     corefn.Nth,
	instr.OpNthFromLast: corefn.NthFromLast,
	instr.OpRemove: corefn.Remove,
	instr.OpFilter: corefn.Filter,
	instr.OpMap:    corefn.Map,
	instr.OpGet:    corefn.Get,
	instr.OpSet:    corefn.Set,
	instr.OpMinKey: corefn.MinKey,
	instr.OpMaxKey: corefn.MaxKey,
	instr.OpKeys:   corefn.Keys,
	instr.OpValues: corefn.Values,
	instr.OpZip:    corefn.Zip,
	instr.OpInvert: corefn.Invert,
	instr.OpMerge:  corefn.Merge,
	instr.OpUnion:  corefn.Union,
	instr.OpIntersection: corefn.Intersection,
	instr.OpDifference:   corefn.Difference,
	instr.OpSymmetricDifference: corefn.SymmetricDifference,

	instr.OpEmptyList: corefn.CreateList,
	instr.OpEmptyMap:  corefn.CreateMap,
	instr.OpEmptySet:  corefn.CreateSet,

	instr.OpCreateCell:   corefn.CreateCell,
	instr.OpGetCellValue: corefn.GetCellValue,
	instr.OpSetCellValue: corefn.SetCellValue,
	instr.OpUpdateCell:   corefn.UpdateCell,

	instr.OpIsNil: corefn.IsNil, instr.OpIsBool: corefn.IsBool, instr.OpIsChar: corefn.IsChar,
	instr.OpIsNum: corefn.IsNum, instr.OpIsInt: corefn.IsInt, instr.OpIsFloat: corefn.IsFloat,
	instr.OpIsSymbol: corefn.IsSymbol, instr.OpIsString: corefn.IsString, instr.OpIsList: corefn.IsList,
	instr.OpIsMap: corefn.IsMap, instr.OpIsSet: corefn.IsSet, instr.OpIsCollection: corefn.IsCollection,
	instr.OpIsFn: corefn.IsFn,

	instr.OpToBool: corefn.ToBool, instr.OpToChar: corefn.ToChar, instr.OpToNum: corefn.ToNum,
	instr.OpToInt: corefn.ToInt, instr.OpToFloat: corefn.ToFloat, instr.OpToSymbol: corefn.ToSymbol,
	instr.OpToString: corefn.ToString, instr.OpToList: corefn.ToList, instr.OpToMap: corefn.ToMap,

	instr.OpCompose:   corefn.Compose,
	instr.OpFindSome:  corefn.FindSome,
	instr.OpReduceWithoutInitialValue: corefn.Reduce,
	instr.OpReduceWithInitialValue:    corefn.Reduce,
	instr.OpMemoize:    corefn.Memoize,
	instr.OpConstantly: corefn.Constantly,
}

// gatherGenericArgs reads the operand registers a generic-dispatch
// instruction needs, in the corefn.Table calling convention: a replaced
// register (if any) always comes first, since BinaryReplacing instructions
// like Push read their replaced operand as the "receiver" (list, cell, ...)
// and their plain input as the value being combined with it.
func gatherGenericArgs(regs []value.Value, ins value.BytecodeInstruction) []value.Value {
	args := make([]value.Value, 0, int(ins.NIn)+1)
	if ins.HasRepl {
		args = append(args, regs[ins.Repl])
	}
	for i := 0; i < int(ins.NIn); i++ {
		args = append(args, regs[ins.In[i]])
	}
	return args
}

func writeGenericResult(regs []value.Value, ins value.BytecodeInstruction, result value.Value) {
	if ins.HasOut {
		regs[ins.Out] = result
	} else if ins.HasRepl {
		regs[ins.Repl] = result
	}
}
