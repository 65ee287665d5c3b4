// SPDX-License-Identifier: Apache-2.0
package value

// KV is one key/value pair of a HashmapObj, exposed for iteration order.
type KV struct {
	Key Value
	Val Value
}

// HashmapObj is the mutable backing store for KindHashmap values: an
// insertion-ordered association list indexed by hash for lookup, matching
// persistent-hashmap semantics (spec.md 3, invariant 4 copy-on-write) while
// keeping iteration order deterministic for printing and for keys/vals.
type HashmapObj struct {
	refs    int32
	index   map[uint64][]int
	entries []KV
	tomb    int
}

func NewHashmap() *HashmapObj {
	return &HashmapObj{refs: 1, index: make(map[uint64][]int)}
}

func (m *HashmapObj) Retain() *HashmapObj {
	if m != nil {
		m.refs++
	}
	return m
}

func (m *HashmapObj) Release() {
	if m != nil {
		m.refs--
	}
}

func (m *HashmapObj) shared() bool { return m.refs > 1 }

func (m *HashmapObj) clone() *HashmapObj {
	out := NewHashmap()
	for _, kv := range m.entries {
		if kv.Key.IsNil() && kv.Val.IsNil() {
			out.entries = append(out.entries, kv)
			continue
		}
		out.insert(kv.Key, kv.Val)
	}
	return out
}

// Owned returns a hashmap safe to mutate in place.
func (m *HashmapObj) Owned() *HashmapObj {
	if !m.shared() {
		return m
	}
	return m.clone()
}

func (m *HashmapObj) find(k Value) (idx int, ok bool) {
	h := k.Hash()
	for _, i := range m.index[h] {
		if i < len(m.entries) && m.entries[i].Key.Equal(k) {
			return i, true
		}
	}
	return -1, false
}

func (m *HashmapObj) Len() int { return len(m.entries) - m.tomb }

func (m *HashmapObj) Get(k Value) (Value, bool) {
	if i, ok := m.find(k); ok {
		return m.entries[i].Val, true
	}
	return Nil, false
}

func (m *HashmapObj) insert(k, v Value) {
	if i, ok := m.find(k); ok {
		m.entries[i].Val = v
		return
	}
	h := k.Hash()
	m.index[h] = append(m.index[h], len(m.entries))
	m.entries = append(m.entries, KV{Key: k, Val: v})
}

// Set returns a hashmap with k bound to v, reusing the receiver when
// uniquely owned.
func (m *HashmapObj) Set(k, v Value) *HashmapObj {
	owned := m.Owned()
	owned.insert(k, v)
	return owned
}

// Remove returns a hashmap with k unbound.
func (m *HashmapObj) Remove(k Value) *HashmapObj {
	owned := m.Owned()
	if i, ok := owned.find(k); ok {
		h := k.Hash()
		bucket := owned.index[h]
		for j, bi := range bucket {
			if bi == i {
				owned.index[h] = append(bucket[:j], bucket[j+1:]...)
				break
			}
		}
		owned.entries[i] = KV{Key: Nil, Val: Nil}
		owned.tomb++
	}
	return owned
}

// Pairs returns the map's entries in insertion order, skipping tombstones.
func (m *HashmapObj) Pairs() []KV { return m.pairsInOrder() }

func (m *HashmapObj) pairsInOrder() []KV {
	out := make([]KV, 0, m.Len())
	for _, kv := range m.entries {
		if kv.Key.IsNil() && kv.Val.IsNil() {
			continue
		}
		out = append(out, kv)
	}
	return out
}

func (m *HashmapObj) equal(o *HashmapObj) bool {
	if m == o {
		return true
	}
	if m == nil || o == nil {
		return false
	}
	if m.Len() != o.Len() {
		return false
	}
	for _, kv := range m.pairsInOrder() {
		ov, ok := o.Get(kv.Key)
		if !ok || !ov.Equal(kv.Val) {
			return false
		}
	}
	return true
}

func (m *HashmapObj) Merge(o *HashmapObj) *HashmapObj {
	owned := m.Owned()
	for _, kv := range o.pairsInOrder() {
		owned.insert(kv.Key, kv.Val)
	}
	return owned
}

// MergeWith merges o into the receiver, resolving collisions with combine.
func (m *HashmapObj) MergeWith(o *HashmapObj, combine func(a, b Value) Value) *HashmapObj {
	owned := m.Owned()
	for _, kv := range o.pairsInOrder() {
		if existing, ok := owned.Get(kv.Key); ok {
			owned.insert(kv.Key, combine(existing, kv.Val))
		} else {
			owned.insert(kv.Key, kv.Val)
		}
	}
	return owned
}
