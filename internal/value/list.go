// SPDX-License-Identifier: Apache-2.0
package value

// ListObj is the mutable backing store for KindList values. Lists are
// reference-counted so that a mutating collection op (spec.md 3, invariant
// 4: "collections use copy-on-write backed by reference counting... a
// correctness optimization only") can mutate in place when it holds the
// sole reference and must otherwise copy first.
type ListObj struct {
	refs  int32
	Items []Value
}

func NewList(items []Value) *ListObj {
	return &ListObj{refs: 1, Items: items}
}

func EmptyList() *ListObj { return NewList(nil) }

func (l *ListObj) Retain() *ListObj {
	if l != nil {
		l.refs++
	}
	return l
}

// Release drops a reference. Callers that only ever read through a Value
// they already own need not call this; it exists for evaluator code that
// explicitly drops a register's contents (spec.md's Clear instruction).
func (l *ListObj) Release() {
	if l != nil {
		l.refs--
	}
}

func (l *ListObj) shared() bool { return l.refs > 1 }

// Owned returns a list safe to mutate in place: itself if uniquely
// referenced, otherwise a fresh copy with a single reference.
func (l *ListObj) Owned() *ListObj {
	if !l.shared() {
		return l
	}
	cp := make([]Value, len(l.Items))
	copy(cp, l.Items)
	return NewList(cp)
}

func (l *ListObj) Len() int { return len(l.Items) }

func (l *ListObj) equal(o *ListObj) bool {
	if l == o {
		return true
	}
	if l == nil || o == nil {
		return false
	}
	if len(l.Items) != len(o.Items) {
		return false
	}
	for i, item := range l.Items {
		if !item.Equal(o.Items[i]) {
			return false
		}
	}
	return true
}

// Push returns a list with value appended, reusing the receiver's backing
// array when uniquely owned.
func (l *ListObj) Push(v Value) *ListObj {
	owned := l.Owned()
	owned.Items = append(owned.Items, v)
	return owned
}

func (l *ListObj) First() (Value, bool) {
	if len(l.Items) == 0 {
		return Nil, false
	}
	return l.Items[0], true
}

func (l *ListObj) Last() (Value, bool) {
	if len(l.Items) == 0 {
		return Nil, false
	}
	return l.Items[len(l.Items)-1], true
}

func (l *ListObj) Rest() *ListObj {
	if len(l.Items) == 0 {
		return EmptyList()
	}
	cp := make([]Value, len(l.Items)-1)
	copy(cp, l.Items[1:])
	return NewList(cp)
}

func (l *ListObj) ButLast() *ListObj {
	if len(l.Items) == 0 {
		return EmptyList()
	}
	cp := make([]Value, len(l.Items)-1)
	copy(cp, l.Items[:len(l.Items)-1])
	return NewList(cp)
}

func (l *ListObj) Reverse() *ListObj {
	cp := make([]Value, len(l.Items))
	for i, v := range l.Items {
		cp[len(cp)-1-i] = v
	}
	return NewList(cp)
}

func (l *ListObj) Concat(o *ListObj) *ListObj {
	cp := make([]Value, 0, len(l.Items)+len(o.Items))
	cp = append(cp, l.Items...)
	cp = append(cp, o.Items...)
	return NewList(cp)
}

// Nth returns the i'th element, reporting false for a negative or
// out-of-range index (nth-from-last computes its own index from the end
// before calling this).
func (l *ListObj) Nth(i int) (Value, bool) {
	if i < 0 || i >= len(l.Items) {
		return Nil, false
	}
	return l.Items[i], true
}
