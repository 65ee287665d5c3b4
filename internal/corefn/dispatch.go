// SPDX-License-Identifier: Apache-2.0
package corefn

import (
	"math"
	"math/rand"
	"sort"

	"pidgin/internal/rterr"
	"pidgin/internal/value"
)

// Table holds the runtime implementation of every core function that
// isn't eliminated by compile-time inlining (spec.md 4.4). Arithmetic,
// boolean, and a handful of collection ops are *also* inlined directly to
// primitive opcodes for common call shapes (internal/ir/inline.go); this
// table is what a Call instruction whose function register holds a
// CoreFn Value falls back to, so every entry here must agree with its
// inlined-opcode counterpart where one exists.
var Table map[ID]Fn

func init() {
	Table = map[ID]Fn{
		Print:          dispatchPrint,
		Apply:          dispatchApply,
		When:           dispatchWhen,
		If:             dispatchIf,
		Partial:        dispatchPartial,
		Compose:        dispatchCompose,
		FindSome:       dispatchFindSome,
		Reduce:         dispatchReduce,
		Memoize:        dispatchMemoize,
		Constantly:     dispatchConstantly,

		NumericalEqual: binNumBool(value.Number.NumericalEqual),
		IsZero:         unNumBool(value.Number.IsZero),
		IsNan:          unNumBool(value.Number.IsNan),
		IsInf:          unNumBool(value.Number.IsInf),
		IsPos:          unNumBool(value.Number.IsPos),
		IsNeg:          unNumBool(value.Number.IsNeg),
		IsEven:         dispatchIsEven,
		IsOdd:          dispatchIsOdd,
		Inc:            unNum(value.Number.Inc),
		Dec:            unNum(value.Number.Dec),
		Abs:            unNum(value.Number.Abs),
		Floor:          unNum(value.Number.Floor),
		Ceil:           unNum(value.Number.Ceil),
		Sqrt:           unFloat(math.Sqrt),
		Exp:            unFloat(math.Exp),
		Exp2:           unFloat(math.Exp2),
		Ln:             unFloat(math.Log),
		Log2:           unFloat(math.Log2),
		Add:            dispatchVariadicNum(value.Int(0), value.Number.Add),
		Subtract:       dispatchSubtract,
		Multiply:       dispatchVariadicNum(value.Int(1), value.Number.Mul),
		Divide:         dispatchDivide,
		Pow:            binNum(value.Number.Pow),
		Mod:            binNumErr(value.Number.Mod),
		Quot:           binNumErr(value.Number.Quot),
		Min:            dispatchVariadicNum2(value.Number.Min),
		Max:            dispatchVariadicNum2(value.Number.Max),
		GreaterThan:    binNumBool(func(a, b value.Number) bool { return b.Less(a) }),
		GreaterThanOrEqual: binNumBool(func(a, b value.Number) bool { return b.LessOrEqual(a) }),
		LessThan:       binNumBool(value.Number.Less),
		LessThanOrEqual: binNumBool(value.Number.LessOrEqual),
		Rand:           dispatchRand,
		RandInt:        dispatchRandInt,

		Equal:    dispatchEqual,
		NotEqual: dispatchNotEqual,
		Not:      dispatchNot,
		And:      dispatchAnd,
		Or:       dispatchOr,
		Xor:      dispatchXor,

		IsEmpty:  dispatchIsEmpty,
		Count:    dispatchCount,
		First:    dispatchFirst,
		Last:     dispatchLast,
		Rest:     dispatchRest,
		ButLast:  dispatchButLast,
		Push:     dispatchPush,
		Cons:     dispatchCons,
		Concat:   dispatchConcat,
		Flatten:  dispatchFlatten,
		Take:     dispatchTake,
		Drop:     dispatchDrop,
		Reverse:  dispatchReverse,
		Distinct: dispatchDistinct,
		Sub:      dispatchSub,
		Partition: dispatchPartition,
		Pad:      dispatchPad,
		Sort:     dispatchSort,
		SortBy:   dispatchSortBy,
		Nth:      dispatchNth,
		NthFromLast: dispatchNthFromLast,
		Remove:   dispatchRemove,
		Filter:   dispatchFilter,
		Map:      dispatchMap,
		CreateList: dispatchCreateList,

		Get:    dispatchGet,
		GetIn:  dispatchGetIn,
		Set:    dispatchSet,
		SetIn:  dispatchSetIn,
		Update: dispatchUpdate,
		UpdateIn: dispatchUpdateIn,
		MinKey: dispatchMinKey,
		MaxKey: dispatchMaxKey,
		Keys:   dispatchKeys,
		Values: dispatchValues,
		Zip:    dispatchZip,
		Invert: dispatchInvert,
		Merge:  dispatchMerge,
		MergeWith: dispatchMergeWith,
		MapKeys: dispatchMapKeys,
		MapValues: dispatchMapValues,
		SelectKeys: dispatchSelectKeys,
		CreateMap: dispatchCreateMap,

		CreateSet:           dispatchCreateSet,
		Union:               dispatchUnion,
		Intersection:        dispatchIntersection,
		Difference:          dispatchDifference,
		SymmetricDifference: dispatchSymmetricDifference,

		Range:      dispatchRange,
		Repeat:     dispatchRepeat,
		Repeatedly: dispatchRepeatedly,
		Iterate:    dispatchIterate,

		IsNil: predicate(func(v value.Value) bool { return v.Kind == value.KindNil }),
		IsBool: predicate(func(v value.Value) bool { return v.Kind == value.KindBool }),
		IsChar: predicate(func(v value.Value) bool { return v.Kind == value.KindChar }),
		IsNum:  predicate(func(v value.Value) bool { return v.Kind == value.KindNumber }),
		IsInt:  predicate(func(v value.Value) bool { return v.Kind == value.KindNumber && v.Num.IsInt() }),
		IsFloat: predicate(func(v value.Value) bool { return v.Kind == value.KindNumber && v.Num.IsFloat() }),
		IsSymbol: predicate(func(v value.Value) bool { return v.Kind == value.KindSymbol }),
		IsString: predicate(func(v value.Value) bool { return v.Kind == value.KindStr }),
		IsList:   predicate(func(v value.Value) bool { return v.Kind == value.KindList }),
		IsMap:    predicate(func(v value.Value) bool { return v.Kind == value.KindHashmap }),
		IsSet:    predicate(func(v value.Value) bool { return v.Kind == value.KindHashset }),
		IsCollection: predicate(func(v value.Value) bool {
			return v.Kind == value.KindList || v.Kind == value.KindHashmap || v.Kind == value.KindHashset
		}),
		IsFn: predicate(func(v value.Value) bool {
			switch v.Kind {
			case value.KindCoreFn, value.KindCompositeFn, value.KindExternalFn, value.KindPartial:
				return true
			default:
				return false
			}
		}),

		ToBool:   dispatchToBool,
		ToChar:   dispatchToChar,
		ToNum:    dispatchToNum,
		ToInt:    dispatchToInt,
		ToFloat:  dispatchToFloat,
		ToString: dispatchToString,
		ToSymbol: dispatchToSymbol,
		ToList:   dispatchToList,
		ToMap:    dispatchToMap,

		CreateCell:    dispatchCreateCell,
		GetCellValue:  dispatchGetCellValue,
		SetCellValue:  dispatchSetCellValue,
		UpdateCell:    dispatchUpdateCell,
	}
}

// --- small shared argument helpers -------------------------------------

func asNum(v value.Value) (value.Number, error) {
	if v.Kind != value.KindNumber {
		return value.Number{}, rterr.ArgumentNotNum{Got: v.Kind.String()}
	}
	return v.Num, nil
}

func asList(v value.Value) (*value.ListObj, error) {
	if v.Kind != value.KindList {
		return nil, rterr.ArgumentNotList{Got: v.Kind.String()}
	}
	return v.List, nil
}

func arity(args []value.Value, n int) error {
	if len(args) != n {
		return rterr.InvalidArity{Got: len(args), Expected: "exactly " + itoa(n)}
	}
	return nil
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var b [20]byte
	i := len(b)
	for n > 0 {
		i--
		b[i] = byte('0' + n%10)
		n /= 10
	}
	return string(b[i:])
}

// --- numeric -------------------------------------------------------------

func unNum(f func(value.Number) value.Number) Fn {
	return func(args []value.Value, ap Applier) (value.Value, error) {
		if err := arity(args, 1); err != nil {
			return value.Nil, err
		}
		n, err := asNum(args[0])
		if err != nil {
			return value.Nil, err
		}
		return value.Num(f(n)), nil
	}
}

func unNumBool(f func(value.Number) bool) Fn {
	return func(args []value.Value, ap Applier) (value.Value, error) {
		if err := arity(args, 1); err != nil {
			return value.Nil, err
		}
		n, err := asNum(args[0])
		if err != nil {
			return value.Nil, err
		}
		return value.Bool(f(n)), nil
	}
}

func unFloat(f func(float64) float64) Fn {
	return func(args []value.Value, ap Applier) (value.Value, error) {
		if err := arity(args, 1); err != nil {
			return value.Nil, err
		}
		n, err := asNum(args[0])
		if err != nil {
			return value.Nil, err
		}
		return value.Num(value.Float(f(n.AsFloat()))), nil
	}
}

func binNum(f func(value.Number, value.Number) value.Number) Fn {
	return func(args []value.Value, ap Applier) (value.Value, error) {
		if err := arity(args, 2); err != nil {
			return value.Nil, err
		}
		a, err := asNum(args[0])
		if err != nil {
			return value.Nil, err
		}
		b, err := asNum(args[1])
		if err != nil {
			return value.Nil, err
		}
		return value.Num(f(a, b)), nil
	}
}

func binNumErr(f func(value.Number, value.Number) (value.Number, error)) Fn {
	return func(args []value.Value, ap Applier) (value.Value, error) {
		if err := arity(args, 2); err != nil {
			return value.Nil, err
		}
		a, err := asNum(args[0])
		if err != nil {
			return value.Nil, err
		}
		b, err := asNum(args[1])
		if err != nil {
			return value.Nil, err
		}
		r, err := f(a, b)
		if err != nil {
			return value.Nil, err
		}
		return value.Num(r), nil
	}
}

func binNumBool(f func(value.Number, value.Number) bool) Fn {
	return func(args []value.Value, ap Applier) (value.Value, error) {
		if err := arity(args, 2); err != nil {
			return value.Nil, err
		}
		a, err := asNum(args[0])
		if err != nil {
			return value.Nil, err
		}
		b, err := asNum(args[1])
		if err != nil {
			return value.Nil, err
		}
		return value.Bool(f(a, b)), nil
	}
}

func dispatchVariadicNum(identity value.Number, op func(value.Number, value.Number) value.Number) Fn {
	return func(args []value.Value, ap Applier) (value.Value, error) {
		acc := identity
		for _, a := range args {
			n, err := asNum(a)
			if err != nil {
				return value.Nil, err
			}
			acc = op(acc, n)
		}
		return value.Num(acc), nil
	}
}

func dispatchVariadicNum2(op func(value.Number, value.Number) value.Number) Fn {
	return func(args []value.Value, ap Applier) (value.Value, error) {
		if len(args) == 0 {
			return value.Nil, rterr.InvalidArity{Got: 0, Expected: "at least 1"}
		}
		acc, err := asNum(args[0])
		if err != nil {
			return value.Nil, err
		}
		for _, a := range args[1:] {
			n, err := asNum(a)
			if err != nil {
				return value.Nil, err
			}
			acc = op(acc, n)
		}
		return value.Num(acc), nil
	}
}

func dispatchSubtract(args []value.Value, ap Applier) (value.Value, error) {
	if len(args) == 0 {
		return value.Nil, rterr.InvalidArity{Got: 0, Expected: "at least 1"}
	}
	acc, err := asNum(args[0])
	if err != nil {
		return value.Nil, err
	}
	if len(args) == 1 {
		return value.Num(acc.Negate()), nil
	}
	for _, a := range args[1:] {
		n, err := asNum(a)
		if err != nil {
			return value.Nil, err
		}
		acc = acc.Sub(n)
	}
	return value.Num(acc), nil
}

func dispatchDivide(args []value.Value, ap Applier) (value.Value, error) {
	if len(args) < 2 {
		return value.Nil, rterr.InvalidArity{Got: len(args), Expected: "at least 2"}
	}
	acc, err := asNum(args[0])
	if err != nil {
		return value.Nil, err
	}
	for _, a := range args[1:] {
		n, err := asNum(a)
		if err != nil {
			return value.Nil, err
		}
		acc, err = acc.Div(n)
		if err != nil {
			return value.Nil, err
		}
	}
	return value.Num(acc), nil
}

func dispatchIsEven(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Nil, err
	}
	n, err := asNum(args[0])
	if err != nil {
		return value.Nil, err
	}
	even, ok := n.IsEven()
	if !ok {
		return value.Nil, rterr.ArgumentNotInt{Got: n.String()}
	}
	return value.Bool(even), nil
}

func dispatchIsOdd(args []value.Value, ap Applier) (value.Value, error) {
	v, err := dispatchIsEven(args, ap)
	if err != nil {
		return value.Nil, err
	}
	return value.Bool(!v.Bool), nil
}

func dispatchRand(args []value.Value, ap Applier) (value.Value, error) {
	switch len(args) {
	case 0:
		return value.Num(value.Float(rand.Float64())), nil
	case 1:
		upper, err := asNum(args[0])
		if err != nil {
			return value.Nil, err
		}
		return value.Num(value.Float(rand.Float64() * upper.AsFloat())), nil
	case 2:
		lo, err := asNum(args[0])
		if err != nil {
			return value.Nil, err
		}
		hi, err := asNum(args[1])
		if err != nil {
			return value.Nil, err
		}
		return value.Num(value.Float(lo.AsFloat() + rand.Float64()*(hi.AsFloat()-lo.AsFloat()))), nil
	default:
		return value.Nil, rterr.InvalidArity{Got: len(args), Expected: "0, 1, or 2"}
	}
}

func dispatchRandInt(args []value.Value, ap Applier) (value.Value, error) {
	switch len(args) {
	case 1:
		upper, err := asNum(args[0])
		if err != nil {
			return value.Nil, err
		}
		n, ok := upper.AsIntLossless()
		if !ok || n <= 0 {
			return value.Nil, rterr.ArgumentNotInt{Got: upper.String()}
		}
		return value.IntNum(rand.Int63n(n)), nil
	case 2:
		lo, err := asNum(args[0])
		if err != nil {
			return value.Nil, err
		}
		hi, err := asNum(args[1])
		if err != nil {
			return value.Nil, err
		}
		loI, ok1 := lo.AsIntLossless()
		hiI, ok2 := hi.AsIntLossless()
		if !ok1 || !ok2 || hiI <= loI {
			return value.Nil, rterr.ArgumentNotInt{Got: "range"}
		}
		return value.IntNum(loI + rand.Int63n(hiI-loI)), nil
	default:
		return value.Nil, rterr.InvalidArity{Got: len(args), Expected: "1 or 2"}
	}
}

// --- boolean / equality ---------------------------------------------------

func dispatchEqual(args []value.Value, ap Applier) (value.Value, error) {
	if len(args) < 2 {
		return value.Nil, rterr.InvalidArity{Got: len(args), Expected: "at least 2"}
	}
	for i := 1; i < len(args); i++ {
		if !args[0].Equal(args[i]) {
			return value.Bool(false), nil
		}
	}
	return value.Bool(true), nil
}

func dispatchNotEqual(args []value.Value, ap Applier) (value.Value, error) {
	v, err := dispatchEqual(args, ap)
	if err != nil {
		return value.Nil, err
	}
	return value.Bool(!v.Bool), nil
}

func dispatchNot(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Nil, err
	}
	return value.Bool(!args[0].AsBool()), nil
}

func dispatchAnd(args []value.Value, ap Applier) (value.Value, error) {
	for _, a := range args {
		if !a.AsBool() {
			return value.Bool(false), nil
		}
	}
	return value.Bool(true), nil
}

func dispatchOr(args []value.Value, ap Applier) (value.Value, error) {
	for _, a := range args {
		if a.AsBool() {
			return value.Bool(true), nil
		}
	}
	return value.Bool(false), nil
}

func dispatchXor(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Nil, err
	}
	return value.Bool(args[0].AsBool() != args[1].AsBool()), nil
}

func predicate(f func(value.Value) bool) Fn {
	return func(args []value.Value, ap Applier) (value.Value, error) {
		if err := arity(args, 1); err != nil {
			return value.Nil, err
		}
		return value.Bool(f(args[0])), nil
	}
}

// --- higher order ----------------------------------------------------------

func dispatchPrint(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Nil, err
	}
	ap.Print(args[0])
	return args[0], nil
}

func dispatchApply(args []value.Value, ap Applier) (value.Value, error) {
	if len(args) < 2 {
		return value.Nil, rterr.InvalidArity{Got: len(args), Expected: "at least 2"}
	}
	spread, err := asList(args[len(args)-1])
	if err != nil {
		return value.Nil, err
	}
	full := append(append([]value.Value{}, args[1:len(args)-1]...), spread.Items...)
	return ap.Apply(args[0], full)
}

func dispatchWhen(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Nil, err
	}
	if !args[0].AsBool() {
		return value.Nil, nil
	}
	return ap.Apply(args[1], nil)
}

func dispatchIf(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 3); err != nil {
		return value.Nil, err
	}
	if args[0].AsBool() {
		return ap.Apply(args[1], nil)
	}
	return ap.Apply(args[2], nil)
}

func dispatchPartial(args []value.Value, ap Applier) (value.Value, error) {
	if len(args) < 1 {
		return value.Nil, rterr.InvalidArity{Got: 0, Expected: "at least 1"}
	}
	stored := append([]value.Value{}, args[1:]...)
	return value.Partial(&value.PartialApplication{Fn: args[0], Stored: stored}), nil
}

func dispatchCompose(args []value.Value, ap Applier) (value.Value, error) {
	fns := append([]value.Value{}, args...)
	composed := &value.ExternalFn{
		Name: "composed",
		Fn: func(callArgs []value.Value) (value.Value, error) {
			if len(fns) == 0 {
				if len(callArgs) != 1 {
					return value.Nil, rterr.InvalidArity{Got: len(callArgs), Expected: "exactly 1"}
				}
				return callArgs[0], nil
			}
			res, err := ap.Apply(fns[len(fns)-1], callArgs)
			if err != nil {
				return value.Nil, err
			}
			for i := len(fns) - 2; i >= 0; i-- {
				res, err = ap.Apply(fns[i], []value.Value{res})
				if err != nil {
					return value.Nil, err
				}
			}
			return res, nil
		},
	}
	return value.External(composed), nil
}

func dispatchFindSome(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Nil, err
	}
	l, err := asList(args[1])
	if err != nil {
		return value.Nil, err
	}
	for _, item := range l.Items {
		r, err := ap.Apply(args[0], []value.Value{item})
		if err != nil {
			return value.Nil, err
		}
		if r.AsBool() {
			return r, nil
		}
	}
	return value.Nil, nil
}

func dispatchReduce(args []value.Value, ap Applier) (value.Value, error) {
	var f, init, coll value.Value
	switch len(args) {
	case 2:
		f, coll = args[0], args[1]
	case 3:
		f, init, coll = args[0], args[1], args[2]
	default:
		return value.Nil, rterr.InvalidArity{Got: len(args), Expected: "2 or 3"}
	}
	l, err := asList(coll)
	if err != nil {
		return value.Nil, err
	}
	items := l.Items
	acc := init
	start := 0
	if len(args) == 2 {
		if len(items) == 0 {
			return value.Nil, nil
		}
		acc = items[0]
		start = 1
	}
	for _, item := range items[start:] {
		acc, err = ap.Apply(f, []value.Value{acc, item})
		if err != nil {
			return value.Nil, err
		}
	}
	return acc, nil
}

func dispatchMemoize(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Nil, err
	}
	fn := args[0]
	cache := map[uint64][]struct {
		args []value.Value
		res  value.Value
	}{}
	memo := &value.ExternalFn{
		Name: "memoized",
		Fn: func(callArgs []value.Value) (value.Value, error) {
			h := uint64(14695981039346656037)
			for _, a := range callArgs {
				h = (h ^ a.Hash()) * 1099511628211
			}
			for _, entry := range cache[h] {
				if sameArgs(entry.args, callArgs) {
					return entry.res, nil
				}
			}
			res, err := ap.Apply(fn, callArgs)
			if err != nil {
				return value.Nil, err
			}
			cache[h] = append(cache[h], struct {
				args []value.Value
				res  value.Value
			}{append([]value.Value{}, callArgs...), res})
			return res, nil
		},
	}
	return value.External(memo), nil
}

func sameArgs(a, b []value.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func dispatchConstantly(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Nil, err
	}
	v := args[0]
	return value.External(&value.ExternalFn{
		Name: "constantly",
		Fn:   func([]value.Value) (value.Value, error) { return v, nil },
	}), nil
}

// --- collections: lists ----------------------------------------------------

func dispatchIsEmpty(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Nil, err
	}
	n, err := collectionLen(args[0])
	if err != nil {
		return value.Nil, err
	}
	return value.Bool(n == 0), nil
}

func collectionLen(v value.Value) (int, error) {
	switch v.Kind {
	case value.KindList:
		return v.List.Len(), nil
	case value.KindHashmap:
		return v.Hashmap.Len(), nil
	case value.KindHashset:
		return v.Hashset.Len(), nil
	case value.KindStr:
		return len([]rune(v.Str)), nil
	default:
		return 0, rterr.ArgumentNotList{Got: v.Kind.String()}
	}
}

func dispatchCount(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Nil, err
	}
	n, err := collectionLen(args[0])
	if err != nil {
		return value.Nil, err
	}
	return value.IntNum(int64(n)), nil
}

func dispatchFirst(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Nil, err
	}
	l, err := asList(args[0])
	if err != nil {
		return value.Nil, err
	}
	v, _ := l.First()
	return v, nil
}

func dispatchLast(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Nil, err
	}
	l, err := asList(args[0])
	if err != nil {
		return value.Nil, err
	}
	v, _ := l.Last()
	return v, nil
}

func dispatchRest(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Nil, err
	}
	l, err := asList(args[0])
	if err != nil {
		return value.Nil, err
	}
	return value.List(l.Rest()), nil
}

func dispatchButLast(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Nil, err
	}
	l, err := asList(args[0])
	if err != nil {
		return value.Nil, err
	}
	return value.List(l.ButLast()), nil
}

func dispatchPush(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Nil, err
	}
	l, err := asList(args[0])
	if err != nil {
		return value.Nil, err
	}
	return value.List(l.Push(args[1])), nil
}

func dispatchCons(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Nil, err
	}
	l, err := asList(args[1])
	if err != nil {
		return value.Nil, err
	}
	fresh := value.NewList(append([]value.Value{args[0]}, l.Items...))
	return value.List(fresh), nil
}

func dispatchConcat(args []value.Value, ap Applier) (value.Value, error) {
	if len(args) == 0 {
		return value.List(value.EmptyList()), nil
	}
	acc, err := asList(args[0])
	if err != nil {
		return value.Nil, err
	}
	for _, a := range args[1:] {
		next, err := asList(a)
		if err != nil {
			return value.Nil, err
		}
		acc = acc.Concat(next)
	}
	return value.List(acc), nil
}

func dispatchFlatten(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Nil, err
	}
	l, err := asList(args[0])
	if err != nil {
		return value.Nil, err
	}
	var out []value.Value
	var walk func(*value.ListObj)
	walk = func(x *value.ListObj) {
		for _, item := range x.Items {
			if item.Kind == value.KindList {
				walk(item.List)
			} else {
				out = append(out, item)
			}
		}
	}
	walk(l)
	return value.List(value.NewList(out)), nil
}

func dispatchTake(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Nil, err
	}
	n, err := asNum(args[0])
	if err != nil {
		return value.Nil, err
	}
	l, err := asList(args[1])
	if err != nil {
		return value.Nil, err
	}
	k := int(n.AsIntTruncating())
	if k > l.Len() {
		k = l.Len()
	}
	if k < 0 {
		k = 0
	}
	out := append([]value.Value{}, l.Items[:k]...)
	return value.List(value.NewList(out)), nil
}

func dispatchDrop(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Nil, err
	}
	n, err := asNum(args[0])
	if err != nil {
		return value.Nil, err
	}
	l, err := asList(args[1])
	if err != nil {
		return value.Nil, err
	}
	k := int(n.AsIntTruncating())
	if k > l.Len() {
		k = l.Len()
	}
	if k < 0 {
		k = 0
	}
	out := append([]value.Value{}, l.Items[k:]...)
	return value.List(value.NewList(out)), nil
}

func dispatchReverse(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Nil, err
	}
	l, err := asList(args[0])
	if err != nil {
		return value.Nil, err
	}
	return value.List(l.Reverse()), nil
}

func dispatchDistinct(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Nil, err
	}
	l, err := asList(args[0])
	if err != nil {
		return value.Nil, err
	}
	var out []value.Value
	for _, item := range l.Items {
		dup := false
		for _, seen := range out {
			if seen.Equal(item) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, item)
		}
	}
	return value.List(value.NewList(out)), nil
}

func dispatchSub(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 3); err != nil {
		return value.Nil, err
	}
	from, err := asNum(args[0])
	if err != nil {
		return value.Nil, err
	}
	to, err := asNum(args[1])
	if err != nil {
		return value.Nil, err
	}
	l, err := asList(args[2])
	if err != nil {
		return value.Nil, err
	}
	lo, hi := int(from.AsIntTruncating()), int(to.AsIntTruncating())
	if lo < 0 {
		lo = 0
	}
	if hi > l.Len() {
		hi = l.Len()
	}
	if hi < lo {
		hi = lo
	}
	out := append([]value.Value{}, l.Items[lo:hi]...)
	return value.List(value.NewList(out)), nil
}

func dispatchPartition(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Nil, err
	}
	n, err := asNum(args[0])
	if err != nil {
		return value.Nil, err
	}
	l, err := asList(args[1])
	if err != nil {
		return value.Nil, err
	}
	size := int(n.AsIntTruncating())
	if size <= 0 {
		return value.Nil, rterr.ArgumentNotInt{Got: n.String()}
	}
	var groups []value.Value
	for i := 0; i+size <= l.Len(); i += size {
		groups = append(groups, value.List(value.NewList(append([]value.Value{}, l.Items[i:i+size]...))))
	}
	return value.List(value.NewList(groups)), nil
}

func dispatchPad(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 3); err != nil {
		return value.Nil, err
	}
	n, err := asNum(args[0])
	if err != nil {
		return value.Nil, err
	}
	l, err := asList(args[2])
	if err != nil {
		return value.Nil, err
	}
	size := int(n.AsIntTruncating())
	out := append([]value.Value{}, l.Items...)
	for len(out) < size {
		out = append(out, args[1])
	}
	return value.List(value.NewList(out)), nil
}

func dispatchSort(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Nil, err
	}
	l, err := asList(args[0])
	if err != nil {
		return value.Nil, err
	}
	out := append([]value.Value{}, l.Items...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Kind == value.KindNumber && out[j].Kind == value.KindNumber {
			return out[i].Num.Less(out[j].Num)
		}
		return out[i].Description() < out[j].Description()
	})
	return value.List(value.NewList(out)), nil
}

func dispatchSortBy(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Nil, err
	}
	l, err := asList(args[1])
	if err != nil {
		return value.Nil, err
	}
	out := append([]value.Value{}, l.Items...)
	keys := make([]value.Value, len(out))
	for i, item := range out {
		k, err := ap.Apply(args[0], []value.Value{item})
		if err != nil {
			return value.Nil, err
		}
		keys[i] = k
	}
	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		a, b := keys[idx[i]], keys[idx[j]]
		if a.Kind == value.KindNumber && b.Kind == value.KindNumber {
			return a.Num.Less(b.Num)
		}
		return a.Description() < b.Description()
	})
	sorted := make([]value.Value, len(out))
	for i, j := range idx {
		sorted[i] = out[j]
	}
	return value.List(value.NewList(sorted)), nil
}

func dispatchNth(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Nil, err
	}
	l, err := asList(args[0])
	if err != nil {
		return value.Nil, err
	}
	n, err := asNum(args[1])
	if err != nil {
		return value.Nil, err
	}
	v, _ := l.Nth(int(n.AsIntTruncating()))
	return v, nil
}

func dispatchNthFromLast(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Nil, err
	}
	l, err := asList(args[0])
	if err != nil {
		return value.Nil, err
	}
	n, err := asNum(args[1])
	if err != nil {
		return value.Nil, err
	}
	v, _ := l.Nth(l.Len() - 1 - int(n.AsIntTruncating()))
	return v, nil
}

func dispatchRemove(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Nil, err
	}
	l, err := asList(args[1])
	if err != nil {
		return value.Nil, err
	}
	var out []value.Value
	for _, item := range l.Items {
		keep, err := ap.Apply(args[0], []value.Value{item})
		if err != nil {
			return value.Nil, err
		}
		if !keep.AsBool() {
			out = append(out, item)
		}
	}
	return value.List(value.NewList(out)), nil
}

func dispatchFilter(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Nil, err
	}
	l, err := asList(args[1])
	if err != nil {
		return value.Nil, err
	}
	var out []value.Value
	for _, item := range l.Items {
		keep, err := ap.Apply(args[0], []value.Value{item})
		if err != nil {
			return value.Nil, err
		}
		if keep.AsBool() {
			out = append(out, item)
		}
	}
	return value.List(value.NewList(out)), nil
}

func dispatchMap(args []value.Value, ap Applier) (value.Value, error) {
	if len(args) < 2 {
		return value.Nil, rterr.InvalidArity{Got: len(args), Expected: "at least 2"}
	}
	lists := make([]*value.ListObj, len(args)-1)
	minLen := -1
	for i, a := range args[1:] {
		l, err := asList(a)
		if err != nil {
			return value.Nil, err
		}
		lists[i] = l
		if minLen == -1 || l.Len() < minLen {
			minLen = l.Len()
		}
	}
	out := make([]value.Value, 0, minLen)
	for i := 0; i < minLen; i++ {
		callArgs := make([]value.Value, len(lists))
		for j, l := range lists {
			callArgs[j] = l.Items[i]
		}
		r, err := ap.Apply(args[0], callArgs)
		if err != nil {
			return value.Nil, err
		}
		out = append(out, r)
	}
	return value.List(value.NewList(out)), nil
}

func dispatchCreateList(args []value.Value, ap Applier) (value.Value, error) {
	return value.List(value.NewList(append([]value.Value{}, args...))), nil
}

// --- collections: maps -----------------------------------------------------

func asMap(v value.Value) (*value.HashmapObj, error) {
	if v.Kind != value.KindHashmap {
		return nil, rterr.ArgumentNotList{Got: v.Kind.String()}
	}
	return v.Hashmap, nil
}

func asSet(v value.Value) (*value.HashsetObj, error) {
	if v.Kind != value.KindHashset {
		return nil, rterr.ArgumentNotList{Got: v.Kind.String()}
	}
	return v.Hashset, nil
}

func dispatchGet(args []value.Value, ap Applier) (value.Value, error) {
	if len(args) < 2 || len(args) > 3 {
		return value.Nil, rterr.InvalidArity{Got: len(args), Expected: "2 or 3"}
	}
	def := value.Nil
	if len(args) == 3 {
		def = args[2]
	}
	switch args[0].Kind {
	case value.KindHashmap:
		if v, ok := args[0].Hashmap.Get(args[1]); ok {
			return v, nil
		}
		return def, nil
	case value.KindList:
		n, err := asNum(args[1])
		if err != nil {
			return value.Nil, err
		}
		idx := int(n.AsIntTruncating())
		if idx < 0 || idx >= args[0].List.Len() {
			return def, nil
		}
		return args[0].List.Items[idx], nil
	default:
		return value.Nil, rterr.ArgumentNotList{Got: args[0].Kind.String()}
	}
}

func dispatchGetIn(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Nil, err
	}
	path, err := asList(args[1])
	if err != nil {
		return value.Nil, err
	}
	cur := args[0]
	for _, key := range path.Items {
		cur, err = dispatchGet([]value.Value{cur, key}, ap)
		if err != nil {
			return value.Nil, err
		}
	}
	return cur, nil
}

func dispatchSet(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 3); err != nil {
		return value.Nil, err
	}
	m, err := asMap(args[0])
	if err != nil {
		return value.Nil, err
	}
	return value.Hashmap(m.Set(args[1], args[2])), nil
}

func dispatchSetIn(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 3); err != nil {
		return value.Nil, err
	}
	path, err := asList(args[1])
	if err != nil {
		return value.Nil, err
	}
	return setInRec(args[0], path.Items, args[2])
}

func setInRec(cur value.Value, path []value.Value, v value.Value) (value.Value, error) {
	if len(path) == 0 {
		return v, nil
	}
	m, err := asMap(cur)
	if err != nil {
		return value.Nil, err
	}
	existing, _ := m.Get(path[0])
	updated, err := setInRec(existing, path[1:], v)
	if err != nil {
		return value.Nil, err
	}
	return value.Hashmap(m.Set(path[0], updated)), nil
}

func dispatchUpdate(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 3); err != nil {
		return value.Nil, err
	}
	m, err := asMap(args[0])
	if err != nil {
		return value.Nil, err
	}
	cur, _ := m.Get(args[1])
	next, err := ap.Apply(args[2], []value.Value{cur})
	if err != nil {
		return value.Nil, err
	}
	return value.Hashmap(m.Set(args[1], next)), nil
}

func dispatchUpdateIn(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 3); err != nil {
		return value.Nil, err
	}
	path, err := asList(args[1])
	if err != nil {
		return value.Nil, err
	}
	cur, err := dispatchGetIn([]value.Value{args[0], args[1]}, ap)
	if err != nil {
		return value.Nil, err
	}
	next, err := ap.Apply(args[2], []value.Value{cur})
	if err != nil {
		return value.Nil, err
	}
	return setInRec(args[0], path.Items, next)
}

func dispatchMinKey(args []value.Value, ap Applier) (value.Value, error) {
	return mapExtreme(args, ap, true)
}

func dispatchMaxKey(args []value.Value, ap Applier) (value.Value, error) {
	return mapExtreme(args, ap, false)
}

func mapExtreme(args []value.Value, ap Applier, wantMin bool) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Nil, err
	}
	l, err := asList(args[1])
	if err != nil {
		return value.Nil, err
	}
	if l.Len() == 0 {
		return value.Nil, nil
	}
	best := l.Items[0]
	bestKey, err := ap.Apply(args[0], []value.Value{best})
	if err != nil {
		return value.Nil, err
	}
	for _, item := range l.Items[1:] {
		k, err := ap.Apply(args[0], []value.Value{item})
		if err != nil {
			return value.Nil, err
		}
		bk, err1 := asNum(bestKey)
		nk, err2 := asNum(k)
		if err1 == nil && err2 == nil {
			if (wantMin && nk.Less(bk)) || (!wantMin && bk.Less(nk)) {
				best, bestKey = item, k
			}
		}
	}
	return best, nil
}

func dispatchKeys(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Nil, err
	}
	m, err := asMap(args[0])
	if err != nil {
		return value.Nil, err
	}
	var out []value.Value
	for _, kv := range m.Pairs() {
		out = append(out, kv.Key)
	}
	return value.List(value.NewList(out)), nil
}

func dispatchValues(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Nil, err
	}
	m, err := asMap(args[0])
	if err != nil {
		return value.Nil, err
	}
	var out []value.Value
	for _, kv := range m.Pairs() {
		out = append(out, kv.Val)
	}
	return value.List(value.NewList(out)), nil
}

func dispatchZip(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Nil, err
	}
	keys, err := asList(args[0])
	if err != nil {
		return value.Nil, err
	}
	vals, err := asList(args[1])
	if err != nil {
		return value.Nil, err
	}
	n := keys.Len()
	if vals.Len() < n {
		n = vals.Len()
	}
	m := value.NewHashmap()
	for i := 0; i < n; i++ {
		m = m.Set(keys.Items[i], vals.Items[i])
	}
	return value.Hashmap(m), nil
}

func dispatchInvert(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Nil, err
	}
	m, err := asMap(args[0])
	if err != nil {
		return value.Nil, err
	}
	out := value.NewHashmap()
	for _, kv := range m.Pairs() {
		out = out.Set(kv.Val, kv.Key)
	}
	return value.Hashmap(out), nil
}

func dispatchMerge(args []value.Value, ap Applier) (value.Value, error) {
	if len(args) == 0 {
		return value.Hashmap(value.NewHashmap()), nil
	}
	acc, err := asMap(args[0])
	if err != nil {
		return value.Nil, err
	}
	for _, a := range args[1:] {
		next, err := asMap(a)
		if err != nil {
			return value.Nil, err
		}
		acc = acc.Merge(next)
	}
	return value.Hashmap(acc), nil
}

func dispatchMergeWith(args []value.Value, ap Applier) (value.Value, error) {
	if len(args) < 1 {
		return value.Nil, rterr.InvalidArity{Got: len(args), Expected: "at least 1"}
	}
	f := args[0]
	maps := args[1:]
	if len(maps) == 0 {
		return value.Hashmap(value.NewHashmap()), nil
	}
	acc, err := asMap(maps[0])
	if err != nil {
		return value.Nil, err
	}
	var applyErr error
	for _, a := range maps[1:] {
		next, err := asMap(a)
		if err != nil {
			return value.Nil, err
		}
		acc = acc.MergeWith(next, func(l, r value.Value) value.Value {
			if applyErr != nil {
				return l
			}
			v, err := ap.Apply(f, []value.Value{l, r})
			if err != nil {
				applyErr = err
				return l
			}
			return v
		})
	}
	if applyErr != nil {
		return value.Nil, applyErr
	}
	return value.Hashmap(acc), nil
}

func dispatchMapKeys(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Nil, err
	}
	m, err := asMap(args[1])
	if err != nil {
		return value.Nil, err
	}
	out := value.NewHashmap()
	for _, kv := range m.Pairs() {
		nk, err := ap.Apply(args[0], []value.Value{kv.Key})
		if err != nil {
			return value.Nil, err
		}
		out = out.Set(nk, kv.Val)
	}
	return value.Hashmap(out), nil
}

func dispatchMapValues(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Nil, err
	}
	m, err := asMap(args[1])
	if err != nil {
		return value.Nil, err
	}
	out := value.NewHashmap()
	for _, kv := range m.Pairs() {
		nv, err := ap.Apply(args[0], []value.Value{kv.Val})
		if err != nil {
			return value.Nil, err
		}
		out = out.Set(kv.Key, nv)
	}
	return value.Hashmap(out), nil
}

func dispatchSelectKeys(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Nil, err
	}
	m, err := asMap(args[0])
	if err != nil {
		return value.Nil, err
	}
	keys, err := asList(args[1])
	if err != nil {
		return value.Nil, err
	}
	out := value.NewHashmap()
	for _, k := range keys.Items {
		if v, ok := m.Get(k); ok {
			out = out.Set(k, v)
		}
	}
	return value.Hashmap(out), nil
}

func dispatchCreateMap(args []value.Value, ap Applier) (value.Value, error) {
	if len(args)%2 != 0 {
		return value.Nil, rterr.InvalidArity{Got: len(args), Expected: "an even number"}
	}
	m := value.NewHashmap()
	for i := 0; i < len(args); i += 2 {
		m = m.Set(args[i], args[i+1])
	}
	return value.Hashmap(m), nil
}

// --- collections: sets -----------------------------------------------------

func dispatchCreateSet(args []value.Value, ap Applier) (value.Value, error) {
	s := value.NewHashset()
	for _, a := range args {
		s = s.Add(a)
	}
	return value.Hashset(s), nil
}

func dispatchUnion(args []value.Value, ap Applier) (value.Value, error) {
	if len(args) == 0 {
		return value.Hashset(value.NewHashset()), nil
	}
	acc, err := asSet(args[0])
	if err != nil {
		return value.Nil, err
	}
	for _, a := range args[1:] {
		next, err := asSet(a)
		if err != nil {
			return value.Nil, err
		}
		acc = acc.Union(next)
	}
	return value.Hashset(acc), nil
}

func dispatchIntersection(args []value.Value, ap Applier) (value.Value, error) {
	if len(args) == 0 {
		return value.Hashset(value.NewHashset()), nil
	}
	acc, err := asSet(args[0])
	if err != nil {
		return value.Nil, err
	}
	for _, a := range args[1:] {
		next, err := asSet(a)
		if err != nil {
			return value.Nil, err
		}
		acc = acc.Intersection(next)
	}
	return value.Hashset(acc), nil
}

func dispatchDifference(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Nil, err
	}
	a, err := asSet(args[0])
	if err != nil {
		return value.Nil, err
	}
	b, err := asSet(args[1])
	if err != nil {
		return value.Nil, err
	}
	return value.Hashset(a.Difference(b)), nil
}

func dispatchSymmetricDifference(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Nil, err
	}
	a, err := asSet(args[0])
	if err != nil {
		return value.Nil, err
	}
	b, err := asSet(args[1])
	if err != nil {
		return value.Nil, err
	}
	return value.Hashset(a.SymmetricDifference(b)), nil
}

// --- iteration constructors --------------------------------------------
//
// Only bounded forms are reachable from source syntax: an unbounded call
// would need a lazily-produced sequence, which this Value model doesn't
// have outside of coroutines (see DESIGN.md). internal/vm has no case for
// the iteration-constructor opcodes, bounded or infinite: a block that
// contains one fails with rterr.CantApply when it reaches it.

func dispatchRange(args []value.Value, ap Applier) (value.Value, error) {
	var lo, hi int64
	switch len(args) {
	case 1:
		n, err := asNum(args[0])
		if err != nil {
			return value.Nil, err
		}
		hi = n.AsIntTruncating()
	case 2:
		a, err := asNum(args[0])
		if err != nil {
			return value.Nil, err
		}
		b, err := asNum(args[1])
		if err != nil {
			return value.Nil, err
		}
		lo, hi = a.AsIntTruncating(), b.AsIntTruncating()
	default:
		return value.Nil, rterr.InvalidArity{Got: len(args), Expected: "1 or 2 (an unbounded range needs a coroutine)"}
	}
	var out []value.Value
	for i := lo; i < hi; i++ {
		out = append(out, value.IntNum(i))
	}
	return value.List(value.NewList(out)), nil
}

func dispatchRepeat(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Nil, err
	}
	n, err := asNum(args[0])
	if err != nil {
		return value.Nil, err
	}
	count := int(n.AsIntTruncating())
	out := make([]value.Value, count)
	for i := range out {
		out[i] = args[1]
	}
	return value.List(value.NewList(out)), nil
}

func dispatchRepeatedly(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Nil, err
	}
	n, err := asNum(args[0])
	if err != nil {
		return value.Nil, err
	}
	count := int(n.AsIntTruncating())
	out := make([]value.Value, count)
	for i := range out {
		v, err := ap.Apply(args[1], nil)
		if err != nil {
			return value.Nil, err
		}
		out[i] = v
	}
	return value.List(value.NewList(out)), nil
}

func dispatchIterate(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 3); err != nil {
		return value.Nil, err
	}
	n, err := asNum(args[0])
	if err != nil {
		return value.Nil, err
	}
	count := int(n.AsIntTruncating())
	out := make([]value.Value, 0, count)
	cur := args[2]
	for i := 0; i < count; i++ {
		out = append(out, cur)
		cur, err = ap.Apply(args[1], []value.Value{cur})
		if err != nil {
			return value.Nil, err
		}
	}
	return value.List(value.NewList(out)), nil
}

// --- type converters ---------------------------------------------------

func dispatchToBool(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Nil, err
	}
	return value.Bool(args[0].AsBool()), nil
}

func dispatchToChar(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Nil, err
	}
	switch args[0].Kind {
	case value.KindChar:
		return args[0], nil
	case value.KindNumber:
		return value.Char(rune(args[0].Num.AsIntTruncating())), nil
	default:
		return value.Nil, rterr.CantCastToNum{Got: args[0].Kind.String()}
	}
}

func dispatchToNum(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Nil, err
	}
	switch args[0].Kind {
	case value.KindNumber:
		return args[0], nil
	case value.KindChar:
		return value.IntNum(int64(args[0].Char)), nil
	case value.KindBool:
		if args[0].Bool {
			return value.IntNum(1), nil
		}
		return value.IntNum(0), nil
	default:
		return value.Nil, rterr.CantCastToNum{Got: args[0].Kind.String()}
	}
}

func dispatchToInt(args []value.Value, ap Applier) (value.Value, error) {
	v, err := dispatchToNum(args, ap)
	if err != nil {
		return value.Nil, err
	}
	return value.IntNum(v.Num.AsIntTruncating()), nil
}

func dispatchToFloat(args []value.Value, ap Applier) (value.Value, error) {
	v, err := dispatchToNum(args, ap)
	if err != nil {
		return value.Nil, err
	}
	return value.Num(value.Float(v.Num.AsFloat())), nil
}

func dispatchToString(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Nil, err
	}
	if args[0].Kind == value.KindStr {
		return args[0], nil
	}
	return value.Str(args[0].Description()), nil
}

func dispatchToSymbol(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Nil, err
	}
	if args[0].Kind != value.KindStr {
		return value.Nil, rterr.ArgumentNotList{Got: args[0].Kind.String()}
	}
	return value.Symbol(ap.Intern(args[0].Str)), nil
}

func dispatchToList(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Nil, err
	}
	switch args[0].Kind {
	case value.KindList:
		return args[0], nil
	case value.KindHashset:
		return value.List(value.NewList(args[0].Hashset.Items())), nil
	case value.KindHashmap:
		var out []value.Value
		for _, kv := range args[0].Hashmap.Pairs() {
			out = append(out, value.List(value.NewList([]value.Value{kv.Key, kv.Val})))
		}
		return value.List(value.NewList(out)), nil
	default:
		return value.Nil, rterr.ArgumentNotList{Got: args[0].Kind.String()}
	}
}

func dispatchToMap(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Nil, err
	}
	l, err := asList(args[0])
	if err != nil {
		return value.Nil, err
	}
	m := value.NewHashmap()
	for _, pair := range l.Items {
		kv, err := asList(pair)
		if err != nil || kv.Len() != 2 {
			return value.Nil, rterr.ArgumentNotList{Got: "malformed key/value pair"}
		}
		m = m.Set(kv.Items[0], kv.Items[1])
	}
	return value.Hashmap(m), nil
}

// --- cells ---------------------------------------------------------------

func dispatchCreateCell(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Nil, err
	}
	return value.Cell(value.NewCell(args[0])), nil
}

func dispatchGetCellValue(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Nil, err
	}
	if args[0].Kind != value.KindCell {
		return value.Nil, rterr.ArgumentNotList{Got: args[0].Kind.String()}
	}
	return args[0].Cell.Value, nil
}

func dispatchSetCellValue(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Nil, err
	}
	if args[0].Kind != value.KindCell {
		return value.Nil, rterr.ArgumentNotList{Got: args[0].Kind.String()}
	}
	args[0].Cell.Value = args[1]
	return args[1], nil
}

func dispatchUpdateCell(args []value.Value, ap Applier) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Nil, err
	}
	if args[0].Kind != value.KindCell {
		return value.Nil, rterr.ArgumentNotList{Got: args[0].Kind.String()}
	}
	next, err := ap.Apply(args[1], []value.Value{args[0].Cell.Value})
	if err != nil {
		return value.Nil, err
	}
	args[0].Cell.Value = next
	return next, nil
}
