// SPDX-License-Identifier: Apache-2.0

// Package instr defines the single parametric instruction enumeration
// shared by the SSA intermediate representation and the final bytecode
// (spec.md 4.1): one generic Instruction[I, O, R] type carrying an Op tag,
// rather than one Go type per opcode.
package instr

// Op names every instruction mnemonic in the catalog (spec.md 4.1).
type Op uint16

const (
	OpNone Op = iota

	// register moves / utility
	OpDebugPrint
	OpClear
	OpCopy
	OpConst
	OpPrint
	OpLookup
	OpCallingFunction

	// control
	OpReturn
	OpJump
	OpIf
	OpElse
	OpElseIf
	OpEndIf

	// call family
	OpCall
	OpCallSelf
	OpApply
	OpApplySelf
	OpCallAndReturn
	OpApplyAndReturn
	OpCallSelfAndReturn
	OpApplySelfAndReturn
	OpCopyArgument
	OpStealArgument

	// function construction
	OpPartial
	OpCompose
	OpFindSome
	OpReduceWithoutInitialValue
	OpReduceWithInitialValue
	OpMemoize
	OpConstantly

	// numeric
	OpNumericalEqual
	OpIsZero
	OpIsNan
	OpIsInf
	OpIsEven
	OpIsOdd
	OpIsPos
	OpIsNeg
	OpInc
	OpDec
	OpNegate
	OpAbs
	OpFloor
	OpCeil
	OpSqrt
	OpExp
	OpExp2
	OpLn
	OpLog2
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpPow
	OpMod
	OpQuot
	OpMin
	OpMax
	OpGreaterThan
	OpGreaterThanOrEqual
	OpLessThan
	OpLessThanOrEqual
	OpRand
	OpUpperBoundedRand
	OpLowerUpperBoundedRand
	OpRandInt
	OpLowerBoundedRandInt

	// boolean / equality
	OpEqual
	OpNotEqual
	OpNot
	OpAnd
	OpOr
	OpXor

	// collections
	OpEmptyList
	OpEmptyMap
	OpEmptySet
	OpIsEmpty
	OpFirst
	OpLast
	OpRest
	OpButLast
	OpCount
	OpFlatten
	OpPush
	OpCons
	OpConcat
	OpTake
	OpDrop
	OpReverse
	OpDistinct
	OpSub
	OpPartition
	OpSteppedPartition
	OpPad
	OpSort
	OpSortBy
	OpNth
	OpNthFromLast
	OpRemove
	OpFilter
	OpMap
	OpDoubleMap
	OpGet
	OpGetIn
	OpSet
	OpSetIn
	OpUpdate
	OpUpdateIn
	OpMinKey
	OpMaxKey
	OpKeys
	OpValues
	OpZip
	OpInvert
	OpMerge
	OpMergeWith
	OpMapKeys
	OpMapValues
	OpSelectKeys
	OpUnion
	OpIntersection
	OpDifference
	OpSymmetricDifference

	// iteration constructors
	OpInfiniteRange
	OpUpperBoundedRange
	OpLowerUpperBoundedRange
	OpInfiniteRepeat
	OpBoundedRepeat
	OpInfiniteRepeatedly
	OpBoundedRepeatedly
	OpInfiniteIterate
	OpBoundedIterate

	// cells
	OpCreateCell
	OpGetCellValue
	OpSetCellValue
	OpUpdateCell

	// coroutines
	OpCreateCoroutine
	OpIsCoroutineAlive
	OpYield
	OpYieldAndAccept

	// type predicates
	OpIsNil
	OpIsBool
	OpIsChar
	OpIsNum
	OpIsInt
	OpIsFloat
	OpIsSymbol
	OpIsString
	OpIsList
	OpIsMap
	OpIsSet
	OpIsCollection
	OpIsFn
	OpIsError
	OpIsCell
	OpIsCoroutine

	// type converters
	OpToBool
	OpToChar
	OpToNum
	OpToInt
	OpToFloat
	OpToSymbol
	OpToString
	OpToList
	OpToMap
	OpToSet
	OpToError

	opCount
)

var names = map[Op]string{
	OpDebugPrint: "debug-print", OpClear: "clear", OpCopy: "copy", OpConst: "const",
	OpPrint: "print", OpLookup: "lookup", OpCallingFunction: "calling-function",
	OpReturn: "return", OpJump: "jump", OpIf: "if", OpElse: "else", OpElseIf: "elseif", OpEndIf: "endif",
	OpCall: "call", OpCallSelf: "call-self", OpApply: "apply", OpApplySelf: "apply-self",
	OpCallAndReturn: "call-and-return", OpApplyAndReturn: "apply-and-return",
	OpCallSelfAndReturn: "call-self-and-return", OpApplySelfAndReturn: "apply-self-and-return",
	OpCopyArgument: "copy-argument", OpStealArgument: "steal-argument",
	OpPartial: "partial", OpCompose: "compose", OpFindSome: "find-some",
	OpReduceWithoutInitialValue: "reduce", OpReduceWithInitialValue: "reduce-init",
	OpMemoize: "memoize", OpConstantly: "constantly",
	OpNumericalEqual: "num-eq", OpIsZero: "zero?", OpIsNan: "nan?", OpIsInf: "inf?",
	OpIsEven: "even?", OpIsOdd: "odd?", OpIsPos: "pos?", OpIsNeg: "neg?",
	OpInc: "inc", OpDec: "dec", OpNegate: "negate", OpAbs: "abs",
	OpFloor: "floor", OpCeil: "ceil", OpSqrt: "sqrt", OpExp: "exp", OpExp2: "exp2",
	OpLn: "ln", OpLog2: "log2", OpAdd: "add", OpSubtract: "sub", OpMultiply: "mul",
	OpDivide: "div", OpPow: "pow", OpMod: "mod", OpQuot: "quot", OpMin: "min", OpMax: "max",
	OpGreaterThan: "gt", OpGreaterThanOrEqual: "ge", OpLessThan: "lt", OpLessThanOrEqual: "le",
	OpRand: "rand", OpUpperBoundedRand: "rand-upper", OpLowerUpperBoundedRand: "rand-range",
	OpRandInt: "rand-int", OpLowerBoundedRandInt: "rand-int-range",
	OpEqual: "eq", OpNotEqual: "neq", OpNot: "not", OpAnd: "and", OpOr: "or", OpXor: "xor",
	OpEmptyList: "empty-list", OpEmptyMap: "empty-map", OpEmptySet: "empty-set",
	OpIsEmpty: "empty?", OpFirst: "first", OpLast: "last", OpRest: "rest", OpButLast: "butlast",
	OpCount: "count", OpFlatten: "flatten", OpPush: "push", OpCons: "cons", OpConcat: "concat",
	OpTake: "take", OpDrop: "drop", OpReverse: "reverse", OpDistinct: "distinct", OpSub: "sub-range",
	OpPartition: "partition", OpSteppedPartition: "partition-step", OpPad: "pad",
	OpSort: "sort", OpSortBy: "sort-by", OpNth: "nth", OpNthFromLast: "nth-from-last",
	OpRemove: "remove", OpFilter: "filter", OpMap: "map", OpDoubleMap: "double-map",
	OpGet: "get", OpGetIn: "get-in", OpSet: "set", OpSetIn: "set-in",
	OpUpdate: "update", OpUpdateIn: "update-in", OpMinKey: "min-key", OpMaxKey: "max-key",
	OpKeys: "keys", OpValues: "values", OpZip: "zip", OpInvert: "invert",
	OpMerge: "merge", OpMergeWith: "merge-with", OpMapKeys: "map-keys", OpMapValues: "map-values",
	OpSelectKeys: "select-keys", OpUnion: "union", OpIntersection: "intersection",
	OpDifference: "difference", OpSymmetricDifference: "sym-difference",
	OpInfiniteRange: "range-inf", OpUpperBoundedRange: "range-upper",
	OpLowerUpperBoundedRange: "range", OpInfiniteRepeat: "repeat-inf", OpBoundedRepeat: "repeat",
	OpInfiniteRepeatedly: "repeatedly-inf", OpBoundedRepeatedly: "repeatedly",
	OpInfiniteIterate: "iterate-inf", OpBoundedIterate: "iterate",
	OpCreateCell: "create-cell", OpGetCellValue: "get-cell", OpSetCellValue: "set-cell",
	OpUpdateCell: "update-cell",
	OpCreateCoroutine: "create-coroutine", OpIsCoroutineAlive: "coroutine-alive?",
	OpYield: "yield", OpYieldAndAccept: "yield-and-accept",
	OpIsNil: "nil?", OpIsBool: "bool?", OpIsChar: "char?", OpIsNum: "num?", OpIsInt: "int?",
	OpIsFloat: "float?", OpIsSymbol: "symbol?", OpIsString: "str?", OpIsList: "list?",
	OpIsMap: "hashmap?", OpIsSet: "hashset?", OpIsCollection: "collection?", OpIsFn: "fn?",
	OpIsError: "error?", OpIsCell: "cell?", OpIsCoroutine: "coroutine?",
	OpToBool: "bool", OpToChar: "char", OpToNum: "num", OpToInt: "int", OpToFloat: "float",
	OpToSymbol: "symbol", OpToString: "str", OpToList: "to-list", OpToMap: "to-hashmap",
	OpToSet: "to-hashset", OpToError: "to-error",
}

func (o Op) String() string {
	if s, ok := names[o]; ok {
		return s
	}
	return "unknown"
}

// byName is built lazily from names for the textual assembler.
var byName map[string]Op

func LookupOp(name string) (Op, bool) {
	if byName == nil {
		byName = make(map[string]Op, len(names))
		for op, n := range names {
			byName[n] = op
		}
	}
	op, ok := byName[name]
	return op, ok
}
