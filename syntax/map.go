// Copyright © 2024 The ELPS authors

package syntax

import (
	"sort"
	"strings"
)

// Entry is a key-value pair of a Map.
type Entry struct {
	Key   Value
	Value Value
}

// Map is a persistent associative value written {k v ...}.  Entries keep
// insertion order.  A map written @{k v ...} is a host table.
type Map struct {
	located
	table   bool
	entries []Entry
}

// NewMap returns a map of the given entries.  Later entries replace earlier
// ones with an equal key.
func NewMap(entries ...Entry) *Map {
	m := &Map{}
	for _, e := range entries {
		m.entries = assocEntries(m.entries, e.Key, e.Value)
	}
	return m
}

// NewTable is like NewMap but returns a host table.
func NewTable(entries ...Entry) *Map {
	m := NewMap(entries...)
	m.table = true
	return m
}

func (m *Map) Kind() Kind { return KMap }

// IsTable returns true if m denotes a mutable host table.
func (m *Map) IsTable() bool { return m.table }

// Len returns the number of entries in m.
func (m *Map) Len() int { return len(m.entries) }

// Entries returns a copy of the entries of m in insertion order.
func (m *Map) Entries() []Entry {
	cp := make([]Entry, len(m.entries))
	copy(cp, m.entries)
	return cp
}

// Keys returns the keys of m in insertion order.
func (m *Map) Keys() []Value {
	keys := make([]Value, len(m.entries))
	for i := range m.entries {
		keys[i] = m.entries[i].Key
	}
	return keys
}

func (m *Map) index(k Value) int {
	return entryIndex(m.entries, k)
}

func entryIndex(entries []Entry, k Value) int {
	if k == nil {
		return -1
	}
	h := k.Hash()
	for i := range entries {
		if valueHash(entries[i].Key) == h && Equal(entries[i].Key, k) {
			return i
		}
	}
	return -1
}

// Get returns the value associated with k.
func (m *Map) Get(k Value) (Value, bool) {
	i := m.index(k)
	if i < 0 {
		return nil, false
	}
	return m.entries[i].Value, true
}

// Assoc returns a copy of m with k associated to v.
func (m *Map) Assoc(k, v Value) *Map {
	cp := make([]Entry, len(m.entries), len(m.entries)+1)
	copy(cp, m.entries)
	return &Map{table: m.table, entries: assocEntries(cp, k, v)}
}

func assocEntries(entries []Entry, k, v Value) []Entry {
	if i := entryIndex(entries, k); i >= 0 {
		entries[i].Value = v
		return entries
	}
	return append(entries, Entry{Key: k, Value: v})
}

// Dissoc returns a copy of m without key k.
func (m *Map) Dissoc(k Value) *Map {
	i := m.index(k)
	if i < 0 {
		return m
	}
	cp := make([]Entry, 0, len(m.entries)-1)
	cp = append(cp, m.entries[:i]...)
	cp = append(cp, m.entries[i+1:]...)
	return &Map{table: m.table, entries: cp}
}

// Equal ignores entry order.
func (m *Map) Equal(other Value) bool {
	o, ok := other.(*Map)
	if !ok {
		return false
	}
	if m == o {
		return true
	}
	if m.table != o.table || len(m.entries) != len(o.entries) {
		return false
	}
	for _, e := range m.entries {
		v, ok := o.Get(e.Key)
		if !ok || !Equal(e.Value, v) {
			return false
		}
	}
	return true
}

func (m *Map) Hash() uint64 {
	var h uint64
	for _, e := range m.entries {
		h += mixOrdered(valueHash(e.Key), valueHash(e.Value))
	}
	seed := uint64(KMap)
	if m.table {
		seed |= 1 << 8
	}
	return mixOrdered(seed, h)
}

func (m *Map) String() string {
	var b strings.Builder
	if m.table {
		b.WriteString("@")
	}
	b.WriteString("{")
	for i, e := range m.entries {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(valueString(e.Key))
		b.WriteString(" ")
		b.WriteString(valueString(e.Value))
	}
	b.WriteString("}")
	return b.String()
}

func (m *Map) withSpan(sp Span) Value {
	cp := *m
	cp.span = sp
	return &cp
}

// Set is a persistent collection of distinct values written #{a b ...}.
type Set struct {
	located
	elems []Value
}

// NewSet returns a set of the distinct values in vs.
func NewSet(vs ...Value) *Set {
	s := &Set{}
	for _, v := range vs {
		if !s.Contains(v) {
			s.elems = append(s.elems, v)
		}
	}
	return s
}

func (s *Set) Kind() Kind { return KSet }

// Len returns the number of values in s.
func (s *Set) Len() int { return len(s.elems) }

// Values returns a copy of the members of s in insertion order.
func (s *Set) Values() []Value {
	return copyValues(s.elems)
}

// Contains returns true if v is a member of s.
func (s *Set) Contains(v Value) bool {
	if v == nil {
		return false
	}
	h := v.Hash()
	for _, x := range s.elems {
		if valueHash(x) == h && Equal(x, v) {
			return true
		}
	}
	return false
}

// Conj returns a copy of s including v.
func (s *Set) Conj(v Value) *Set {
	if s.Contains(v) {
		return s
	}
	elems := make([]Value, len(s.elems), len(s.elems)+1)
	copy(elems, s.elems)
	return &Set{elems: append(elems, v)}
}

// Union returns the values in s or o.
func (s *Set) Union(o *Set) *Set {
	return NewSet(append(s.Values(), o.elems...)...)
}

// Intersection returns the values in both s and o.
func (s *Set) Intersection(o *Set) *Set {
	res := &Set{}
	for _, v := range s.elems {
		if o.Contains(v) {
			res.elems = append(res.elems, v)
		}
	}
	return res
}

// Difference returns the values in s that are not in o.
func (s *Set) Difference(o *Set) *Set {
	res := &Set{}
	for _, v := range s.elems {
		if !o.Contains(v) {
			res.elems = append(res.elems, v)
		}
	}
	return res
}

func (s *Set) Equal(other Value) bool {
	o, ok := other.(*Set)
	if !ok {
		return false
	}
	if len(s.elems) != len(o.elems) {
		return false
	}
	for _, v := range s.elems {
		if !o.Contains(v) {
			return false
		}
	}
	return true
}

func (s *Set) Hash() uint64 {
	hashes := make([]uint64, len(s.elems))
	for i, v := range s.elems {
		hashes[i] = valueHash(v)
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })
	return mixOrdered(uint64(KSet), hashes...)
}

func (s *Set) String() string {
	var b strings.Builder
	b.WriteString("#{")
	for i, v := range s.elems {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(valueString(v))
	}
	b.WriteString("}")
	return b.String()
}

func (s *Set) withSpan(sp Span) Value {
	cp := *s
	cp.span = sp
	return &cp
}

func valueHash(v Value) uint64 {
	if v == nil {
		return 0
	}
	return v.Hash()
}
