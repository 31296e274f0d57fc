// Copyright © 2024 The ELPS authors

// Package syntax implements the immutable, location-tagged values produced by
// the reader and manipulated by macros.  The analyzer consumes these values
// read-only; every transformation returns a new value.
package syntax

import (
	"github.com/luthersystems/elpsc/parser/token"
)

// Kind is the type of a Value.
type Kind uint8

// Possible Kind values
const (
	KInvalid Kind = iota
	KSymbol
	KSeq
	KMap
	KSet
	KLiteral
	kindMax
)

var kindStrings = []string{
	KInvalid: "invalid",
	KSymbol:  "symbol",
	KSeq:     "sequence",
	KMap:     "map",
	KSet:     "set",
	KLiteral: "literal",
}

func (k Kind) String() string {
	if k >= kindMax {
		return kindStrings[KInvalid]
	}
	return kindStrings[k]
}

// Span is the source region a value was read from.  Either end may be nil.
type Span struct {
	Start *token.Location
	End   *token.Location
}

// IsZero returns true if the span carries no location at all.
func (sp Span) IsZero() bool {
	return sp.Start == nil && sp.End == nil
}

// Or returns sp with each missing end taken from fallback.
func (sp Span) Or(fallback Span) Span {
	if sp.Start == nil {
		sp.Start = fallback.Start
	}
	if sp.End == nil {
		sp.End = fallback.End
	}
	return sp
}

func (sp Span) String() string {
	if sp.Start != nil {
		return sp.Start.String()
	}
	return sp.End.String()
}

// Value is a syntax value.  The set of implementations is closed: *Symbol,
// *Seq, *Map, *Set and *Literal.
type Value interface {
	Kind() Kind
	Span() Span
	// Equal reports structural equality.  Spans are not compared.
	Equal(other Value) bool
	// Hash is consistent with Equal.
	Hash() uint64
	String() string

	withSpan(Span) Value
}

// WithSpan returns a copy of v located at sp.  Nested values are shared with
// v.
func WithSpan(v Value, sp Span) Value {
	if v == nil {
		return nil
	}
	return v.withSpan(sp)
}

// Equal reports whether a and b are structurally equal.  A nil Value is only
// equal to another nil Value.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

// located holds the span shared by every Value implementation.
type located struct {
	span Span
}

func (l located) Span() Span {
	return l.span
}
