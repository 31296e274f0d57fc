// Copyright © 2024 The ELPS authors

package syntax

import (
	"math"
	"strconv"
	"strings"
)

// LitKind distinguishes the scalar types held by a Literal.
type LitKind uint8

// LitKind constants.
const (
	LitNil LitKind = iota
	LitBool
	LitInt
	LitFloat
	LitString
	LitKeyword
)

var litKindStrings = []string{
	LitNil:     "nil",
	LitBool:    "bool",
	LitInt:     "int",
	LitFloat:   "float",
	LitString:  "string",
	LitKeyword: "keyword",
}

func (k LitKind) String() string {
	if int(k) >= len(litKindStrings) {
		return "invalid"
	}
	return litKindStrings[k]
}

// Literal is a scalar value.  Only the field matching LitKind is meaningful.
type Literal struct {
	located
	lit LitKind
	b   bool
	i   int64
	f   float64
	s   string
}

func Nil() *Literal                { return &Literal{lit: LitNil} }
func Bool(b bool) *Literal         { return &Literal{lit: LitBool, b: b} }
func Int(i int64) *Literal         { return &Literal{lit: LitInt, i: i} }
func Float(f float64) *Literal     { return &Literal{lit: LitFloat, f: f} }
func String(s string) *Literal     { return &Literal{lit: LitString, s: s} }
func Keyword(name string) *Literal { return &Literal{lit: LitKeyword, s: name} }

func (l *Literal) Kind() Kind          { return KLiteral }
func (l *Literal) LitKind() LitKind    { return l.lit }
func (l *Literal) BoolValue() bool     { return l.b }
func (l *Literal) IntValue() int64     { return l.i }
func (l *Literal) FloatValue() float64 { return l.f }

// Str returns the contents of a string literal or the name of a keyword.
func (l *Literal) Str() string { return l.s }

// IsNumber returns true for int and float literals.
func (l *Literal) IsNumber() bool {
	return l.lit == LitInt || l.lit == LitFloat
}

// IsNil returns true if v is a nil literal.
func IsNil(v Value) bool {
	l, ok := v.(*Literal)
	return ok && l.lit == LitNil
}

// IsKeyword returns true if v is the keyword :name.
func IsKeyword(v Value, name string) bool {
	l, ok := v.(*Literal)
	return ok && l.lit == LitKeyword && l.s == name
}

// integral returns the int64 equal to f when f is integral and in range.
func integral(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// numberEqual compares an int or float literal with another one exactly.
// An int equals a float only when the float is integral and converts to
// the same int64, so large ints never compare through a rounded float.
func (l *Literal) numberEqual(o *Literal) bool {
	switch {
	case l.lit == LitInt && o.lit == LitInt:
		return l.i == o.i
	case l.lit == LitFloat && o.lit == LitFloat:
		return l.f == o.f
	case l.lit == LitInt:
		i, ok := integral(o.f)
		return ok && i == l.i
	default:
		i, ok := integral(l.f)
		return ok && i == o.i
	}
}

// Equal compares numbers by value so that 1 and 1.0 are equal.
func (l *Literal) Equal(other Value) bool {
	o, ok := other.(*Literal)
	if !ok {
		return false
	}
	if l.IsNumber() && o.IsNumber() {
		return l.numberEqual(o)
	}
	if l.lit != o.lit {
		return false
	}
	switch l.lit {
	case LitBool:
		return l.b == o.b
	case LitString, LitKeyword:
		return l.s == o.s
	default:
		return true
	}
}

func (l *Literal) Hash() uint64 {
	switch l.lit {
	case LitInt:
		return hashInt(l.i)
	case LitFloat:
		if i, ok := integral(l.f); ok {
			return hashInt(i)
		}
		return hashStrings(KLiteral, "float", strconv.FormatFloat(l.f, 'g', -1, 64))
	case LitBool:
		return hashStrings(KLiteral, "bool", strconv.FormatBool(l.b))
	case LitString:
		return hashStrings(KLiteral, "string", l.s)
	case LitKeyword:
		return hashStrings(KLiteral, "keyword", l.s)
	default:
		return hashStrings(KLiteral, "nil")
	}
}

func (l *Literal) String() string {
	switch l.lit {
	case LitBool:
		return strconv.FormatBool(l.b)
	case LitInt:
		return strconv.FormatInt(l.i, 10)
	case LitFloat:
		s := strconv.FormatFloat(l.f, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEIN") {
			s += ".0"
		}
		return s
	case LitString:
		return strconv.Quote(l.s)
	case LitKeyword:
		return ":" + l.s
	default:
		return "nil"
	}
}

func (l *Literal) withSpan(sp Span) Value {
	cp := *l
	cp.span = sp
	return &cp
}
