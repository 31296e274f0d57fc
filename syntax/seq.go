// Copyright © 2024 The ELPS authors

package syntax

import (
	"fmt"
	"strings"
)

// SeqKind distinguishes the flavors of sequence values.
type SeqKind uint8

// SeqKind constants.
const (
	// List values are written (a b c) and are evaluated as forms.
	List SeqKind = iota
	// Vector values are written [a b c].
	Vector
	// Tuple values are produced by macros; a tuple is evaluated as a form
	// unless it is bracketed.
	Tuple
	// Array values are written @[a b c] and denote mutable host arrays.
	Array
)

var seqKindStrings = []string{
	List:   "list",
	Vector: "vector",
	Tuple:  "tuple",
	Array:  "array",
}

func (k SeqKind) String() string {
	if int(k) >= len(seqKindStrings) {
		return "invalid"
	}
	return seqKindStrings[k]
}

// Seq is a persistent sequence.  Operations that "modify" a Seq return a new
// Seq; the receiver is never altered.  The backing slice of a Seq is never
// written after construction and its capacity is capped at its length, so
// slices of a Seq may share storage safely.
type Seq struct {
	located
	kind      SeqKind
	bracketed bool
	elems     []Value
}

// NewList returns a list containing a copy of vs.
func NewList(vs ...Value) *Seq {
	return newSeq(List, false, copyValues(vs))
}

// NewVector returns a vector containing a copy of vs.
func NewVector(vs ...Value) *Seq {
	return newSeq(Vector, true, copyValues(vs))
}

// NewTuple returns a tuple containing a copy of vs.
func NewTuple(bracketed bool, vs ...Value) *Seq {
	return newSeq(Tuple, bracketed, copyValues(vs))
}

// NewArray returns an array containing a copy of vs.
func NewArray(vs ...Value) *Seq {
	return newSeq(Array, true, copyValues(vs))
}

func newSeq(kind SeqKind, bracketed bool, elems []Value) *Seq {
	switch kind {
	case List:
		bracketed = false
	case Vector, Array:
		bracketed = true
	}
	return &Seq{
		kind:      kind,
		bracketed: bracketed,
		elems:     elems[:len(elems):len(elems)],
	}
}

func copyValues(vs []Value) []Value {
	if len(vs) == 0 {
		return nil
	}
	cp := make([]Value, len(vs))
	copy(cp, vs)
	return cp
}

func (s *Seq) Kind() Kind { return KSeq }

// SeqKind returns the flavor of s.
func (s *Seq) SeqKind() SeqKind { return s.kind }

// Bracketed returns true if s is written with brackets.
func (s *Seq) Bracketed() bool { return s.bracketed }

// IsForm returns true if s is evaluated as a form (special form, macro call
// or invocation) rather than as a literal collection.
func (s *Seq) IsForm() bool {
	return s.kind == List || (s.kind == Tuple && !s.bracketed)
}

// IsVectorLike returns true for vectors and bracketed tuples.
func (s *Seq) IsVectorLike() bool {
	return s.kind == Vector || (s.kind == Tuple && s.bracketed)
}

// Len returns the number of elements in s.
func (s *Seq) Len() int { return len(s.elems) }

// Get returns the element at index i or nil if i is out of range.
func (s *Seq) Get(i int) Value {
	if i < 0 || i >= len(s.elems) {
		return nil
	}
	return s.elems[i]
}

// Values returns a copy of the elements of s.
func (s *Seq) Values() []Value {
	return copyValues(s.elems)
}

// First returns the first element of s or nil.
func (s *Seq) First() Value {
	return s.Get(0)
}

// Rest returns s without its first element.  Rest of an empty sequence is
// empty.
func (s *Seq) Rest() *Seq {
	if len(s.elems) == 0 {
		return s.derive(nil)
	}
	return s.derive(s.elems[1:])
}

// Next is like Rest but returns nil when s has fewer than two elements.
func (s *Seq) Next() *Seq {
	if len(s.elems) <= 1 {
		return nil
	}
	return s.derive(s.elems[1:])
}

// Update returns a copy of s with index i replaced by v.  An index equal to
// Len appends v.  The returned sequence keeps the span of s.
func (s *Seq) Update(i int, v Value) (*Seq, error) {
	if i < 0 || i > len(s.elems) {
		return nil, fmt.Errorf("index out of bounds: %d [0,%d]", i, len(s.elems))
	}
	if i == len(s.elems) {
		res := s.Push(v)
		res.span = s.span
		return res, nil
	}
	elems := s.Values()
	elems[i] = v
	res := s.derive(elems)
	res.span = s.span
	return res, nil
}

// Push returns a copy of s with v appended.
func (s *Seq) Push(v Value) *Seq {
	elems := make([]Value, len(s.elems), len(s.elems)+1)
	copy(elems, s.elems)
	return s.derive(append(elems, v))
}

// Cons returns a copy of s with v prepended.
func (s *Seq) Cons(v Value) *Seq {
	elems := make([]Value, 0, len(s.elems)+1)
	elems = append(elems, v)
	return s.derive(append(elems, s.elems...))
}

// Slice returns the elements in [from, to).  Bounds are clamped to the
// sequence.  The result shares storage with s.
func (s *Seq) Slice(from, to int) *Seq {
	if from < 0 {
		from = 0
	}
	if to > len(s.elems) {
		to = len(s.elems)
	}
	if from >= to {
		return s.derive(nil)
	}
	return s.derive(s.elems[from:to])
}

// Concat returns a copy of s followed by the elements of each of others.
func (s *Seq) Concat(others ...*Seq) *Seq {
	n := len(s.elems)
	for _, o := range others {
		n += o.Len()
	}
	elems := make([]Value, 0, n)
	elems = append(elems, s.elems...)
	for _, o := range others {
		elems = append(elems, o.elems...)
	}
	return s.derive(elems)
}

// derive returns an unlocated sequence of the same flavor as s.
func (s *Seq) derive(elems []Value) *Seq {
	return newSeq(s.kind, s.bracketed, elems)
}

type seqFamily uint8

const (
	familyForm seqFamily = iota + 1
	familyVector
	familyArray
)

func (s *Seq) family() seqFamily {
	switch {
	case s.IsForm():
		return familyForm
	case s.kind == Array:
		return familyArray
	default:
		return familyVector
	}
}

// Equal returns true if other is a sequence of the same family with equal
// elements.  Sequences sharing storage are compared in constant time.
func (s *Seq) Equal(other Value) bool {
	o, ok := other.(*Seq)
	if !ok {
		return false
	}
	if s == o {
		return true
	}
	if s.family() != o.family() || len(s.elems) != len(o.elems) {
		return false
	}
	if len(s.elems) == 0 || &s.elems[0] == &o.elems[0] {
		return true
	}
	for i := range s.elems {
		if !Equal(s.elems[i], o.elems[i]) {
			return false
		}
	}
	return true
}

func (s *Seq) Hash() uint64 {
	hashes := make([]uint64, len(s.elems))
	for i, v := range s.elems {
		if v != nil {
			hashes[i] = v.Hash()
		}
	}
	return mixOrdered(uint64(KSeq)<<8|uint64(s.family()), hashes...)
}

func (s *Seq) String() string {
	var open, close string
	switch {
	case s.kind == Array:
		open, close = "@[", "]"
	case s.bracketed:
		open, close = "[", "]"
	default:
		open, close = "(", ")"
	}
	var b strings.Builder
	b.WriteString(open)
	for i, v := range s.elems {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(valueString(v))
	}
	b.WriteString(close)
	return b.String()
}

func (s *Seq) withSpan(sp Span) Value {
	cp := *s
	cp.span = sp
	return &cp
}

// At returns a copy of s located at sp.
func (s *Seq) At(sp Span) *Seq {
	return s.withSpan(sp).(*Seq)
}

// WithValues returns a sequence of the same flavor and span as s containing
// vs.
func (s *Seq) WithValues(vs []Value) *Seq {
	res := s.derive(copyValues(vs))
	res.span = s.span
	return res
}

func valueString(v Value) string {
	if v == nil {
		return "nil"
	}
	return v.String()
}
