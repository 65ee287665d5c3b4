// SPDX-License-Identifier: Apache-2.0

// Package corefn catalogs the built-in functions every Pidgin program
// starts with bound (spec.md 5) and implements their runtime semantics.
package corefn

// ID identifies one built-in function. It is stored directly in a Const
// instruction's CoreFn constant-pool slot (spec.md 4.1) and is small enough
// to fit the same uint16 slot a symbol index uses.
type ID uint16

const (
	Print ID = iota
	Apply
	When
	If
	Partial
	Compose
	FindSome
	Reduce
	Memoize
	Constantly
	NumericalEqual
	IsZero
	IsNan
	IsInf
	IsEven
	IsOdd
	IsPos
	IsNeg
	Inc
	Dec
	Abs
	Floor
	Ceil
	Sqrt
	Exp
	Exp2
	Ln
	Log2
	Add
	Subtract
	Multiply
	Divide
	Pow
	Mod
	Quot
	Min
	Max
	GreaterThan
	GreaterThanOrEqual
	LessThan
	LessThanOrEqual
	Rand
	RandInt
	Equal
	NotEqual
	Not
	And
	Or
	Xor
	IsEmpty
	First
	Count
	Flatten
	Remove
	Filter
	Map
	Set
	SetIn
	Get
	GetIn
	Update
	UpdateIn
	MinKey
	MaxKey
	Push
	Sort
	SortBy
	CreateList
	Last
	Rest
	ButLast
	Nth
	NthFromLast
	Cons
	Concat
	Take
	Drop
	Reverse
	Distinct
	Sub
	Partition
	Pad
	CreateMap
	Keys
	Values
	Zip
	Invert
	Merge
	MergeWith
	MapKeys
	MapValues
	SelectKeys
	CreateSet
	Union
	Intersection
	Difference
	SymmetricDifference
	Range
	Repeat
	Repeatedly
	Iterate
	IsNil
	IsBool
	IsChar
	IsNum
	IsInt
	IsFloat
	IsSymbol
	IsString
	IsList
	IsMap
	IsSet
	IsCollection
	IsFn
	ToBool
	ToChar
	ToNum
	ToInt
	ToFloat
	ToSymbol
	ToString
	ToList
	ToMap
	CreateCell
	GetCellValue
	SetCellValue
	UpdateCell

	idCount
)

var names = [idCount]string{
	Print: "print", Apply: "apply", When: "when", If: "if",
	Partial: "partial", Compose: "compose", FindSome: "some", Reduce: "reduce",
	Memoize: "memoize", Constantly: "constantly", NumericalEqual: "==",
	IsZero: "zero?", IsNan: "nan?", IsInf: "inf?", IsEven: "even?",
	IsOdd: "odd?", IsPos: "pos?", IsNeg: "neg?", Inc: "inc", Dec: "dec",
	Abs: "abs", Floor: "floor", Ceil: "ceil", Sqrt: "sqrt", Exp: "exp",
	Exp2: "exp2", Ln: "ln", Log2: "log2", Add: "+", Subtract: "-",
	Multiply: "*", Divide: "/", Pow: "pow", Mod: "mod", Quot: "quot",
	Min: "min", Max: "max", GreaterThan: ">", GreaterThanOrEqual: ">=",
	LessThan: "<", LessThanOrEqual: "<=", Rand: "rand", RandInt: "rand-int",
	Equal: "=", NotEqual: "not=", Not: "not", And: "and", Or: "or", Xor: "xor",
	IsEmpty: "empty?", First: "first", Count: "count", Flatten: "flatten",
	Remove: "remove", Filter: "filter", Map: "map", Set: "set",
	SetIn: "set-in", Get: "get", GetIn: "get-in", Update: "update",
	UpdateIn: "update-in", MinKey: "min-key", MaxKey: "max-key", Push: "push",
	Sort: "sort", SortBy: "sort-by", CreateList: "list", Last: "last",
	Rest: "rest", ButLast: "butlast", Nth: "nth", NthFromLast: "nth-from-last",
	Cons: "cons", Concat: "concat", Take: "take", Drop: "drop",
	Reverse: "reverse", Distinct: "distinct", Sub: "sub", Partition: "partition",
	Pad: "pad", CreateMap: "hashmap", Keys: "keys", Values: "vals", Zip: "zip",
	Invert: "invert", Merge: "merge", MergeWith: "merge-with",
	MapKeys: "map-keys", MapValues: "map-vals", SelectKeys: "select-keys",
	CreateSet: "hashset", Union: "union", Intersection: "intersection",
	Difference: "difference", SymmetricDifference: "sym-difference",
	Range: "range", Repeat: "repeat", Repeatedly: "repeatedly", Iterate: "iterate",
	IsNil: "nil?", IsBool: "bool?", IsChar: "char?", IsNum: "num?",
	IsInt: "int?", IsFloat: "float?", IsSymbol: "symbol?", IsString: "str?",
	IsList: "list?", IsMap: "hashmap?", IsSet: "hashset?",
	IsCollection: "collection?", IsFn: "fn?", ToBool: "bool", ToChar: "char",
	ToNum: "num", ToInt: "int", ToFloat: "float", ToSymbol: "symbol",
	ToString: "str", ToList: "to-list", ToMap: "to-hashmap",
	CreateCell: "cell", GetCellValue: "cell-get", SetCellValue: "cell-set!",
	UpdateCell: "cell-update!",
}

func (id ID) String() string {
	if int(id) < len(names) {
		return names[id]
	}
	return "unknown-core-fn"
}

var byName map[string]ID

func init() {
	byName = make(map[string]ID, len(names))
	for i, n := range names {
		byName[n] = ID(i)
	}
}

// Lookup resolves a source-level identifier to its core-function ID, as
// the compiler (internal/ast) binds free symbols that aren't local
// variables (spec.md 4.2).
func Lookup(name string) (ID, bool) {
	id, ok := byName[name]
	return id, ok
}

// NumIDs is the number of distinct core functions (used to size dispatch
// tables).
func NumIDs() int { return int(idCount) }
