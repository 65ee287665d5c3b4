// SPDX-License-Identifier: Apache-2.0
package value

import "pidgin/internal/instr"

// Kind tags every Value/Datum variant (spec.md 3).
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindChar
	KindNumber
	KindSymbol
	KindStr
	KindList
	KindCoreFn
	KindCompositeFn
	KindExternalFn
	KindHashmap
	KindHashset
	KindPartial
	KindCoroutine
	KindCell
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindNumber:
		return "number"
	case KindSymbol:
		return "symbol"
	case KindStr:
		return "string"
	case KindList:
		return "list"
	case KindCoreFn:
		return "core-fn"
	case KindCompositeFn:
		return "composite-fn"
	case KindExternalFn:
		return "external-fn"
	case KindHashmap:
		return "hashmap"
	case KindHashset:
		return "hashset"
	case KindPartial:
		return "partial-application"
	case KindCoroutine:
		return "coroutine"
	case KindCell:
		return "cell"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// AritySpecifier encodes either a fixed parameter count or a variadic
// threshold (spec.md 4.7).
type AritySpecifier struct {
	Variadic bool
	Count    uint8
}

func FixedArity(n uint8) AritySpecifier     { return AritySpecifier{Count: n} }
func VariadicArity(min uint8) AritySpecifier { return AritySpecifier{Variadic: true, Count: min} }

func (a AritySpecifier) CanAccept(n int) bool {
	if a.Variadic {
		return n >= int(a.Count)
	}
	return n == int(a.Count)
}

func (a AritySpecifier) RegisterCount() uint8 { return a.Count }

func (a AritySpecifier) String() string {
	if a.Variadic {
		return "at least " + itoa(int(a.Count))
	}
	return "exactly " + itoa(int(a.Count))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// GenericBlock is a sequence of instructions plus a constant pool
// (spec.md 3), parametrized over register-role types exactly as
// blocks.rs's GenericBlock<I,O,R,M> is (M, block-level metadata, is
// omitted here: SSA lifetime information is computed as a side table by
// internal/ir rather than threaded through the block itself).
type GenericBlock[I, O, R any] struct {
	Instructions []instr.Instruction[I, O, R]
	Constants    []Datum[I, O, R]
}

// CompositeFunction pairs an arity with a block (spec.md 3: "a composite
// function is an arity plus a block").
type CompositeFunction[I, O, R any] struct {
	Args  AritySpecifier
	Block *GenericBlock[I, O, R]
}

// Datum is the constant-pool value representation: literals producible by
// a `quote`d s-expression or a `fn` literal. It is parametrized over
// register-role types solely through CompositeFn, so that the same shape
// serves both the SSA constant pool (internal/ir, before register
// allocation) and the final bytecode constant pool (this package's Value).
//
// Collections, partial applications, coroutine handles, external
// functions, and error values never appear as literal constants (nothing
// in spec.md 6's source syntax produces them directly), so they live only
// on the richer runtime Value type, not here.
type Datum[I, O, R any] struct {
	Kind        Kind
	Bool        bool
	Char        rune
	Num         Number
	Sym         uint16
	Str         string
	List        []Datum[I, O, R]
	CoreFn      uint16
	CompositeFn *CompositeFunction[I, O, R]
}

func NilDatum[I, O, R any]() Datum[I, O, R] { return Datum[I, O, R]{Kind: KindNil} }

func BoolDatum[I, O, R any](b bool) Datum[I, O, R] {
	return Datum[I, O, R]{Kind: KindBool, Bool: b}
}

func CharDatum[I, O, R any](c rune) Datum[I, O, R] {
	return Datum[I, O, R]{Kind: KindChar, Char: c}
}

func NumberDatum[I, O, R any](n Number) Datum[I, O, R] {
	return Datum[I, O, R]{Kind: KindNumber, Num: n}
}

func SymbolDatum[I, O, R any](s uint16) Datum[I, O, R] {
	return Datum[I, O, R]{Kind: KindSymbol, Sym: s}
}

func StrDatum[I, O, R any](s string) Datum[I, O, R] {
	return Datum[I, O, R]{Kind: KindStr, Str: s}
}

func ListDatum[I, O, R any](items []Datum[I, O, R]) Datum[I, O, R] {
	return Datum[I, O, R]{Kind: KindList, List: items}
}

func CoreFnDatum[I, O, R any](id uint16) Datum[I, O, R] {
	return Datum[I, O, R]{Kind: KindCoreFn, CoreFn: id}
}

func CompositeFnDatum[I, O, R any](f *CompositeFunction[I, O, R]) Datum[I, O, R] {
	return Datum[I, O, R]{Kind: KindCompositeFn, CompositeFn: f}
}
