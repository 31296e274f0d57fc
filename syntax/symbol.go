// Copyright © 2024 The ELPS authors

package syntax

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// Symbol names with special meaning to the reader and analyzer.
const (
	VariadicMarker = "&"
	Placeholder    = "_"
)

// Symbol is a possibly namespace-qualified name.
type Symbol struct {
	located
	ns   string
	name string
}

// Sym returns an unqualified symbol.
func Sym(name string) *Symbol {
	return &Symbol{name: name}
}

// QSym returns a symbol qualified by namespace ns.
func QSym(ns, name string) *Symbol {
	return &Symbol{ns: ns, name: name}
}

// ParseSymbol splits text of the form "ns/name" into a qualified symbol.
// Text without a separator, or with a separator at either end (e.g. "/"),
// produces an unqualified symbol.
func ParseSymbol(text string) *Symbol {
	i := strings.Index(text, "/")
	if i <= 0 || i == len(text)-1 {
		return Sym(text)
	}
	return QSym(text[:i], text[i+1:])
}

func (s *Symbol) Kind() Kind { return KSymbol }

// Name returns the unqualified name of s.
func (s *Symbol) Name() string { return s.name }

// Namespace returns the namespace qualifier of s, or "".
func (s *Symbol) Namespace() string { return s.ns }

// FullName returns "ns/name" for qualified symbols and the name otherwise.
func (s *Symbol) FullName() string {
	if s.ns == "" {
		return s.name
	}
	return s.ns + "/" + s.name
}

// Is returns true if s is unqualified and named name.
func (s *Symbol) Is(name string) bool {
	return s.ns == "" && s.name == name
}

func (s *Symbol) Equal(other Value) bool {
	o, ok := other.(*Symbol)
	if !ok {
		return false
	}
	return s == o || (s.ns == o.ns && s.name == o.name)
}

func (s *Symbol) Hash() uint64 {
	return hashStrings(KSymbol, s.ns, s.name)
}

func (s *Symbol) String() string {
	return s.FullName()
}

func (s *Symbol) withSpan(sp Span) Value {
	cp := *s
	cp.span = sp
	return &cp
}

// At returns a copy of s located at sp.
func (s *Symbol) At(sp Span) *Symbol {
	return s.withSpan(sp).(*Symbol)
}

// IsSymbol returns true if v is an unqualified symbol with the given name.
func IsSymbol(v Value, name string) bool {
	s, ok := v.(*Symbol)
	return ok && s.Is(name)
}

// SymbolGenerator produces symbols that cannot collide with names written by
// users.
type SymbolGenerator interface {
	// Gensym returns a fresh symbol whose name begins with prefix.
	Gensym(prefix string) *Symbol
	// Reset restarts numbering.  Callers reset a generator at the start of
	// an independent compilation unit.
	Reset()
}

// Counter is a SymbolGenerator backed by a monotonic counter.  The zero
// value is ready to use and is safe for concurrent use.
type Counter struct {
	n atomic.Int64
}

var _ SymbolGenerator = (*Counter)(nil)

// GeneratedPrefix is the marker embedded in every generated symbol name.
const GeneratedPrefix = "__gen_"

func (c *Counter) Gensym(prefix string) *Symbol {
	n := c.n.Add(1)
	return Sym(prefix + GeneratedPrefix + strconv.FormatInt(n, 10))
}

func (c *Counter) Reset() {
	c.n.Store(0)
}

// IsGenerated returns true if s was produced by a SymbolGenerator.
func IsGenerated(s *Symbol) bool {
	return strings.Contains(s.name, GeneratedPrefix)
}
