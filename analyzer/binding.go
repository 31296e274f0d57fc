// Copyright © 2024 The ELPS authors

package analyzer

import (
	"unicode/utf8"

	"github.com/luthersystems/elpsc/syntax"
)

// BindingPair binds Target to the value of the expression Value.
type BindingPair struct {
	Target *syntax.Symbol
	Value  syntax.Value
}

// Binder flattens destructuring patterns into primitive bindings.
type Binder struct {
	gen syntax.SymbolGenerator
}

// NewBinder returns a Binder that names temporaries with gen.
func NewBinder(gen syntax.SymbolGenerator) *Binder {
	return &Binder{gen: gen}
}

// patternState is the state of the walk over a sequence pattern.
type patternState uint8

const (
	stateStart patternState = iota
	stateRest
	stateDone
)

// walkSeqPattern visits the elements of a sequence pattern.  Elements
// before the variadic marker are visited with rest false, the single element
// after it with rest true.  walkSeqPattern reports whether a variadic marker
// was seen and whether an element followed it.
func walkSeqPattern(pattern *syntax.Seq, visit func(i int, elem syntax.Value, rest bool) error) (variadic, restBound bool, err error) {
	state := stateStart
	n := pattern.Len()
	for i := 0; i < n; i++ {
		elem := pattern.Get(i)
		switch state {
		case stateStart:
			if syntax.IsSymbol(elem, syntax.VariadicMarker) {
				variadic = true
				state = stateRest
				continue
			}
			if err := visit(i, elem, false); err != nil {
				return variadic, restBound, err
			}
		case stateRest:
			if err := visit(i, elem, true); err != nil {
				return variadic, restBound, err
			}
			restBound = true
			state = stateDone
		case stateDone:
			return variadic, restBound, errorf(ErrUnsupportedParameterForm, spanOf(elem).Or(pattern.Span()),
				"unsupported parameter form, only one symbol can follow the %s parameter", syntax.VariadicMarker)
		}
	}
	return variadic, restBound, nil
}

// Deconstruct flattens the binding of pattern to the expression value into
// binding pairs in evaluation order.
func (b *Binder) Deconstruct(pattern, value syntax.Value) ([]BindingPair, error) {
	var pairs []BindingPair
	err := b.deconstruct(&pairs, pattern, value, spanOf(pattern))
	if err != nil {
		return nil, err
	}
	return pairs, nil
}

// DeconstructBindings flattens a vector of alternating patterns and values.
func (b *Binder) DeconstructBindings(bindings *syntax.Seq) ([]BindingPair, error) {
	if bindings.Len()%2 != 0 {
		return nil, errorf(ErrInvalidBindingForm, bindings.Span(), "bindings must contain an even number of forms")
	}
	var pairs []BindingPair
	for i := 0; i < bindings.Len(); i += 2 {
		pattern := bindings.Get(i)
		if err := b.deconstruct(&pairs, pattern, bindings.Get(i+1), spanOf(pattern).Or(bindings.Span())); err != nil {
			return nil, err
		}
	}
	return pairs, nil
}

func (b *Binder) deconstruct(pairs *[]BindingPair, pattern, value syntax.Value, outer syntax.Span) error {
	switch p := pattern.(type) {
	case *syntax.Symbol:
		return b.bindSymbol(pairs, p, value, outer)
	case *syntax.Seq:
		sp := p.Span().Or(outer)
		if p.SeqKind() == syntax.Array {
			return b.deconstructIndexed(pairs, p, value, sp)
		}
		return b.deconstructSeq(pairs, p, value, sp)
	case *syntax.Map:
		return b.deconstructMap(pairs, p, value, p.Span().Or(outer))
	default:
		return errorf(ErrInvalidBindingForm, spanOf(pattern).Or(outer), "cannot destructure %v", pattern)
	}
}

func (b *Binder) bindSymbol(pairs *[]BindingPair, sym *syntax.Symbol, value syntax.Value, outer syntax.Span) error {
	if sym.Is(syntax.Placeholder) {
		sym = b.gen.Gensym("").At(sym.Span())
	}
	if err := checkIdentifier(sym, outer); err != nil {
		return err
	}
	*pairs = append(*pairs, BindingPair{Target: sym, Value: value})
	return nil
}

// temp binds a fresh symbol to value and returns it.
func (b *Binder) temp(pairs *[]BindingPair, value syntax.Value) *syntax.Symbol {
	sym := b.gen.Gensym("")
	*pairs = append(*pairs, BindingPair{Target: sym, Value: value})
	return sym
}

func (b *Binder) deconstructSeq(pairs *[]BindingPair, pattern *syntax.Seq, value syntax.Value, sp syntax.Span) error {
	cur := b.temp(pairs, value)
	last := pattern.Len() - 1
	_, _, err := walkSeqPattern(pattern, func(i int, elem syntax.Value, rest bool) error {
		if rest {
			return b.deconstruct(pairs, elem, cur, sp)
		}
		first := b.temp(pairs, coreCall("first", cur))
		if i < last {
			cur = b.temp(pairs, coreCall("next", cur))
		}
		return b.deconstruct(pairs, elem, first, sp)
	})
	return err
}

func (b *Binder) deconstructIndexed(pairs *[]BindingPair, pattern *syntax.Seq, value syntax.Value, sp syntax.Span) error {
	if pattern.Len()%2 != 0 {
		return errorf(ErrInvalidBindingForm, sp, "indexed binding pattern must contain an even number of forms")
	}
	arr := b.temp(pairs, value)
	for i := 0; i < pattern.Len(); i += 2 {
		elem := b.temp(pairs, hostCall("aget", arr, pattern.Get(i)))
		if err := b.deconstruct(pairs, pattern.Get(i+1), elem, sp); err != nil {
			return err
		}
	}
	return nil
}

func (b *Binder) deconstructMap(pairs *[]BindingPair, pattern *syntax.Map, value syntax.Value, sp syntax.Span) error {
	m := b.temp(pairs, value)
	for _, e := range pattern.Entries() {
		elem := b.temp(pairs, coreCall("get", m, e.Key))
		if err := b.deconstruct(pairs, e.Value, elem, sp); err != nil {
			return err
		}
	}
	return nil
}

// FnParams is the flattened parameter list of a function.
type FnParams struct {
	// Params are the positional parameters.  When Variadic is set the last
	// parameter receives the remaining arguments.
	Params   []*syntax.Symbol
	Variadic bool
	// Lets alternates destructuring patterns and the parameters holding the
	// values they destructure.
	Lets []syntax.Value
}

// Params flattens the parameter vector of a function.  Nested patterns are
// replaced by generated parameters and recorded in Lets.
func (b *Binder) Params(params *syntax.Seq) (*FnParams, error) {
	fp := &FnParams{}
	sp := params.Span()
	variadic, restBound, err := walkSeqPattern(params, func(i int, elem syntax.Value, rest bool) error {
		sym, ok := elem.(*syntax.Symbol)
		switch {
		case ok && sym.Is(syntax.Placeholder):
			sym = b.gen.Gensym("").At(sym.Span())
		case !ok:
			sym = b.gen.Gensym("").At(elem.Span())
			fp.Lets = append(fp.Lets, elem, sym)
		}
		fp.Params = append(fp.Params, sym)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if variadic && !restBound {
		fp.Params = append(fp.Params, b.gen.Gensym(""))
	}
	fp.Variadic = variadic
	for _, p := range fp.Params {
		if err := checkIdentifier(p, sp); err != nil {
			return nil, err
		}
	}
	return fp, nil
}

// checkIdentifier reports an error attributed to the enclosing pattern when
// sym cannot name a binding.
func checkIdentifier(sym *syntax.Symbol, outer syntax.Span) error {
	if sym.Namespace() == "" && isIdentifier(sym.Name()) {
		return nil
	}
	return errorf(ErrInvalidIdentifier, outer.Or(sym.Span()),
		"cannot bind %q: binding names must start with a letter or underscore and contain only letters, digits, underscores, dashes, ? and !", sym.FullName())
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, c := range name {
		switch {
		case c >= utf8.RuneSelf, c == '_':
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case i == 0:
			return false
		case '0' <= c && c <= '9', c == '-', c == '?', c == '!':
		default:
			return false
		}
	}
	return true
}

func coreCall(name string, args ...syntax.Value) *syntax.Seq {
	return syntax.NewList(append([]syntax.Value{syntax.QSym(CoreNamespace, name)}, args...)...)
}

func hostCall(name string, args ...syntax.Value) *syntax.Seq {
	return syntax.NewList(append([]syntax.Value{syntax.QSym(HostNamespace, name)}, args...)...)
}
