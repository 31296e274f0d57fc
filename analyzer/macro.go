// Copyright © 2024 The ELPS authors

package analyzer

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/luthersystems/elpsc/syntax"
)

// Expansion is the context of a single macro call.
type Expansion struct {
	// Form is the complete call form, including the macro name.
	Form *syntax.Seq
	// Namespace is the namespace the call appears in.
	Namespace string

	gen syntax.SymbolGenerator
}

// Gensym returns a fresh symbol for use in the expansion.
func (x *Expansion) Gensym(prefix string) *syntax.Symbol {
	return x.gen.Gensym(prefix)
}

// analyzeMacro expands form and analyzes the expansion under env so that
// tail position and recursion rules carry across the expansion.
func (a *Analyzer) analyzeMacro(form *syntax.Seq, b *Binding, env *Env) (Node, error) {
	v, err := a.expand(form, b, env)
	if err != nil {
		return nil, err
	}
	return a.Analyze(v, env.withMacroDepth(env.macroDepth+1))
}

// expand invokes the macro bound by b with the unevaluated arguments of
// form.  Failures of the macro body, including panics, are reported as
// ErrMacroExpansion errors.
func (a *Analyzer) expand(form *syntax.Seq, b *Binding, env *Env) (v syntax.Value, err error) {
	sp := form.Span().Or(env.form)
	name := b.FullName()
	if env.macroDepth >= a.maxMacroDepth {
		return nil, &Error{
			Condition: ErrMacroExpansion,
			Message:   fmt.Sprintf("error in expanding macro %q: expansion depth exceeds %d", name, a.maxMacroDepth),
			Span:      sp,
			Macro:     name,
		}
	}
	m := b.Macro()
	if m == nil {
		return nil, &Error{
			Condition: ErrMacroExpansion,
			Message:   fmt.Sprintf("error in expanding macro %q: macro has no implementation", name),
			Span:      sp,
			Macro:     name,
		}
	}
	wrap := func(cause error) error {
		return &Error{
			Condition: ErrMacroExpansion,
			Message:   fmt.Sprintf("error in expanding macro %q: %v", name, cause),
			Span:      sp,
			Cause:     cause,
			Macro:     name,
		}
	}
	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok {
				cause = fmt.Errorf("%v", r)
			}
			v, err = nil, wrap(cause)
		}
	}()

	x := &Expansion{Form: form, Namespace: env.Namespace(), gen: a.gen}
	v, err = m.Expand(x, form.Rest().Values())
	if err != nil {
		return nil, wrap(err)
	}
	if v == nil {
		v = syntax.Nil()
	}
	v = EnrichLocation(v, sp)
	a.log.WithFields(logrus.Fields{
		"macro": name,
		"depth": env.macroDepth,
		"loc":   sp.String(),
	}).Trace("macro expanded")
	return v, nil
}

// MacroExpand1 expands v once if it is a call of a macro.  The returned bool
// is false when v is not a macro call.
func (a *Analyzer) MacroExpand1(v syntax.Value, env *Env) (syntax.Value, bool, error) {
	form, ok := v.(*syntax.Seq)
	if !ok || !form.IsForm() || form.Len() == 0 {
		return v, false, nil
	}
	head, ok := form.First().(*syntax.Symbol)
	if !ok || FormOf(head) != FormNone || env.IsLocal(head) {
		return v, false, nil
	}
	b, ok := a.resolve(head, env)
	if !ok || !b.IsMacro() {
		return v, false, nil
	}
	x, err := a.expand(form, b, env.withForm(form.Span().Or(env.form)))
	if err != nil {
		return nil, false, err
	}
	return x, true, nil
}

// EnrichLocation returns v with every missing span end, of v and of each
// value nested within it, taken from sp.  Start and end are filled
// independently.  Values that already carry a complete span are shared.
func EnrichLocation(v syntax.Value, sp syntax.Span) syntax.Value {
	res, _ := enrich(v, sp)
	return res
}

func enrich(v syntax.Value, sp syntax.Span) (syntax.Value, bool) {
	changed := false
	switch x := v.(type) {
	case *syntax.Seq:
		elems := x.Values()
		for i, e := range elems {
			var c bool
			elems[i], c = enrich(e, sp)
			changed = changed || c
		}
		if changed {
			v = x.WithValues(elems)
		}
	case *syntax.Map:
		entries := x.Entries()
		for i, e := range entries {
			var ck, cv bool
			entries[i].Key, ck = enrich(e.Key, sp)
			entries[i].Value, cv = enrich(e.Value, sp)
			changed = changed || ck || cv
		}
		if changed {
			var m *syntax.Map
			if x.IsTable() {
				m = syntax.NewTable(entries...)
			} else {
				m = syntax.NewMap(entries...)
			}
			v = syntax.WithSpan(m, x.Span())
		}
	case *syntax.Set:
		elems := x.Values()
		for i, e := range elems {
			var c bool
			elems[i], c = enrich(e, sp)
			changed = changed || c
		}
		if changed {
			v = syntax.WithSpan(syntax.NewSet(elems...), x.Span())
		}
	}
	if v == nil {
		return nil, false
	}
	full := v.Span().Or(sp)
	if full != v.Span() {
		return syntax.WithSpan(v, full), true
	}
	return v, changed
}
