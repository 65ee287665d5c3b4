// SPDX-License-Identifier: Apache-2.0
package value

import (
	"fmt"
	"strings"

	"pidgin/internal/instr"
)

// Reg8 is the physical register type used once a function has been
// through register allocation (spec.md 4.6: "Instruction<u8,u8,u8>").
type Reg8 = uint8

// Block is the final bytecode form of a compiled function body.
type Block = GenericBlock[Reg8, Reg8, Reg8]

// CompositeFn is a compiled user-defined function: an arity plus a
// bytecode block (spec.md 3).
type CompositeFn = CompositeFunction[Reg8, Reg8, Reg8]

// BytecodeInstruction is the instr.Instruction instantiation the
// evaluator actually steps over.
type BytecodeInstruction = instr.Instruction[Reg8, Reg8, Reg8]

// ExternalFn is an opaque native function pointer (spec.md 3).
type ExternalFn struct {
	Name string
	Fn   func(args []Value) (Value, error)
}

// PartialApplication pairs a function with captured leading arguments
// (spec.md 3, GLOSSARY).
type PartialApplication struct {
	Fn     Value
	Stored []Value
}

// CoroutineCell is a reference-counted mutable cell holding either a
// suspended coroutine state or a dead marker (spec.md 3). The suspended
// state itself (frames, stack, consumption) is owned by internal/vm,
// which this package cannot import without a cycle; Paused is populated
// and type-asserted there.
type CoroutineCell struct {
	Paused any
	Dead   bool
}

// CellObj is a reference-counted mutable box (spec.md 9: "closures over
// mutable cells ... explicitly box the mutable location"). Unlike List/
// Hashmap/Hashset it is never copy-on-write: a cell's entire purpose is a
// shared mutable location, so Set always mutates in place regardless of
// refcount.
type CellObj struct {
	refs  int32
	Value Value
}

func NewCell(v Value) *CellObj { return &CellObj{refs: 1, Value: v} }

func (c *CellObj) Retain() *CellObj {
	if c != nil {
		c.refs++
	}
	return c
}

func (c *CellObj) Release() {
	if c == nil {
		return
	}
	c.refs--
}

// Value is the full runtime tagged union (spec.md 3): a superset of Datum
// adding the variants that only ever exist at runtime (collections,
// partial applications, coroutine handles, external functions, errors).
type Value struct {
	Kind    Kind
	Bool    bool
	Char    rune
	Num     Number
	Sym     uint16
	Str     string
	List    *ListObj
	Hashmap *HashmapObj
	Hashset *HashsetObj
	CoreFn  uint16
	Fn      *CompositeFn
	Ext     *ExternalFn
	Partial *PartialApplication
	Coro    *CoroutineCell
	Cell    *CellObj
	Err     error
}

var Nil = Value{Kind: KindNil}

func Bool(b bool) Value   { return Value{Kind: KindBool, Bool: b} }
func Char(c rune) Value   { return Value{Kind: KindChar, Char: c} }
func Num(n Number) Value  { return Value{Kind: KindNumber, Num: n} }
func IntNum(i int64) Value { return Num(Int(i)) }
func Symbol(s uint16) Value { return Value{Kind: KindSymbol, Sym: s} }
func Str(s string) Value  { return Value{Kind: KindStr, Str: s} }
func CoreFn(id uint16) Value { return Value{Kind: KindCoreFn, CoreFn: id} }
func Composite(f *CompositeFn) Value { return Value{Kind: KindCompositeFn, Fn: f} }
func External(f *ExternalFn) Value { return Value{Kind: KindExternalFn, Ext: f} }
func List(l *ListObj) Value    { return Value{Kind: KindList, List: l} }
func Hashmap(m *HashmapObj) Value { return Value{Kind: KindHashmap, Hashmap: m} }
func Hashset(s *HashsetObj) Value { return Value{Kind: KindHashset, Hashset: s} }
func Partial(p *PartialApplication) Value { return Value{Kind: KindPartial, Partial: p} }
func Coroutine(c *CoroutineCell) Value { return Value{Kind: KindCoroutine, Coro: c} }
func Cell(c *CellObj) Value { return Value{Kind: KindCell, Cell: c} }
func Error(err error) Value { return Value{Kind: KindError, Err: err} }

// AsBool implements Pidgin truthiness: Nil and false are falsy, everything
// else is truthy (spec.md 4.7).
func (v Value) AsBool() bool {
	switch v.Kind {
	case KindNil:
		return false
	case KindBool:
		return v.Bool
	default:
		return true
	}
}

func (v Value) IsNil() bool { return v.Kind == KindNil }

// Equal is structural equality (spec.md 3).
func (v Value) Equal(o Value) bool {
	if v.Kind == KindNumber && o.Kind == KindNumber {
		return v.Num.NumericalEqual(o.Num)
	}
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNil:
		return true
	case KindBool:
		return v.Bool == o.Bool
	case KindChar:
		return v.Char == o.Char
	case KindSymbol:
		return v.Sym == o.Sym
	case KindStr:
		return v.Str == o.Str
	case KindCoreFn:
		return v.CoreFn == o.CoreFn
	case KindCompositeFn:
		return v.Fn == o.Fn
	case KindExternalFn:
		return v.Ext == o.Ext
	case KindList:
		return v.List.equal(o.List)
	case KindHashmap:
		return v.Hashmap.equal(o.Hashmap)
	case KindHashset:
		return v.Hashset.equal(o.Hashset)
	case KindPartial:
		return v.Partial == o.Partial
	case KindCoroutine:
		return v.Coro == o.Coro
	case KindCell:
		return v.Cell == o.Cell
	case KindError:
		return v.Err == o.Err
	default:
		return false
	}
}

// Hash is total over hashable variants (spec.md 3: numeric equality must
// agree with hashing).
func (v Value) Hash() uint64 {
	const fnvOffset = 14695981039346656037
	const fnvPrime = 1099511628211
	mix := func(h uint64, b byte) uint64 { return (h ^ uint64(b)) * fnvPrime }
	mixStr := func(h uint64, s string) uint64 {
		for i := 0; i < len(s); i++ {
			h = mix(h, s[i])
		}
		return h
	}
	h := uint64(fnvOffset)
	switch v.Kind {
	case KindNil:
		return mix(h, 0)
	case KindBool:
		if v.Bool {
			return mix(h, 2)
		}
		return mix(h, 1)
	case KindChar:
		return mix(h, byte(v.Char)) ^ uint64(v.Char)
	case KindNumber:
		return v.Num.Hash()
	case KindSymbol:
		return h ^ uint64(v.Sym)*fnvPrime
	case KindStr:
		return mixStr(h, v.Str)
	case KindList:
		for _, item := range v.List.Items {
			h ^= item.Hash()
			h *= fnvPrime
		}
		return h
	default:
		return h
	}
}

func (v Value) Description() string {
	var b strings.Builder
	v.describe(&b)
	return b.String()
}

func (v Value) describe(b *strings.Builder) {
	switch v.Kind {
	case KindNil:
		b.WriteString("nil")
	case KindBool:
		fmt.Fprintf(b, "%t", v.Bool)
	case KindChar:
		fmt.Fprintf(b, "\\%c", v.Char)
	case KindNumber:
		b.WriteString(v.Num.String())
	case KindSymbol:
		fmt.Fprintf(b, "sym#%d", v.Sym)
	case KindStr:
		fmt.Fprintf(b, "%q", v.Str)
	case KindList:
		b.WriteByte('(')
		for i, item := range v.List.Items {
			if i > 0 {
				b.WriteByte(' ')
			}
			item.describe(b)
		}
		b.WriteByte(')')
	case KindHashmap:
		b.WriteString("{")
		first := true
		for _, kv := range v.Hashmap.pairsInOrder() {
			if !first {
				b.WriteByte(' ')
			}
			first = false
			kv.Key.describe(b)
			b.WriteByte(' ')
			kv.Val.describe(b)
		}
		b.WriteString("}")
	case KindHashset:
		b.WriteString("#{")
		for i, item := range v.Hashset.itemsInOrder() {
			if i > 0 {
				b.WriteByte(' ')
			}
			item.describe(b)
		}
		b.WriteString("}")
	case KindCoreFn:
		fmt.Fprintf(b, "<core-fn %d>", v.CoreFn)
	case KindCompositeFn:
		b.WriteString("<fn>")
	case KindExternalFn:
		fmt.Fprintf(b, "<external-fn %s>", v.Ext.Name)
	case KindPartial:
		b.WriteString("<partial>")
	case KindCoroutine:
		b.WriteString("<coroutine>")
	case KindCell:
		b.WriteString("<cell ")
		v.Cell.Value.describe(b)
		b.WriteString(">")
	case KindError:
		fmt.Fprintf(b, "<error %v>", v.Err)
	}
}

func (v Value) String() string { return v.Description() }
