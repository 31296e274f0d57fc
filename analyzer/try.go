// Copyright © 2024 The ELPS authors

package analyzer

import (
	"github.com/luthersystems/elpsc/syntax"
)

func headIs(v syntax.Value, name string) (*syntax.Seq, bool) {
	s, ok := v.(*syntax.Seq)
	if !ok || !s.IsForm() || s.Len() == 0 {
		return nil, false
	}
	return s, syntax.IsSymbol(s.First(), name)
}

// analyzeTry analyzes (try body... (catch Class e body...)... (finally
// body...)).  A try without handlers is a do.  Recursion is not allowed
// across a try boundary.
func (a *Analyzer) analyzeTry(form *syntax.Seq, env *Env, sp syntax.Span) (Node, error) {
	var body []syntax.Value
	var catches []*syntax.Seq
	var finally *syntax.Seq
	for _, v := range form.Rest().Values() {
		if finally != nil {
			return nil, malformed(v, "finally must be the last form of 'try")
		}
		if c, ok := headIs(v, "catch"); ok {
			catches = append(catches, c)
			continue
		}
		if f, ok := headIs(v, "finally"); ok {
			finally = f
			continue
		}
		if len(catches) > 0 {
			return nil, malformed(v, "try body forms must precede catch and finally")
		}
		body = append(body, v)
	}

	bodyForm := doForm(syntax.NewList(body...))
	if len(catches) == 0 && finally == nil {
		return a.Analyze(bodyForm, env)
	}

	// A try used as an expression is emitted as a function whose result is
	// returned.
	if env.Context() == Expression {
		env = env.WithContext(Return)
	}
	handlerEnv := env.WithDisallowRecur(true)
	bodyNode, err := a.Analyze(bodyForm, handlerEnv)
	if err != nil {
		return nil, err
	}
	n := &TryNode{node: newNode(env, sp), Body: bodyNode}
	for _, c := range catches {
		catch, err := a.analyzeCatch(c, handlerEnv)
		if err != nil {
			return nil, err
		}
		n.Catches = append(n.Catches, catch)
	}
	if finally != nil {
		n.Finally, err = a.Analyze(doForm(finally.Rest()), handlerEnv.WithContext(Statement))
		if err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (a *Analyzer) analyzeCatch(form *syntax.Seq, env *Env) (*CatchNode, error) {
	sp := form.Span().Or(env.form)
	if form.Len() < 3 {
		return nil, arityError(form, "'catch requires at least two arguments")
	}
	classSym, ok := form.Get(1).(*syntax.Symbol)
	if !ok {
		return nil, malformed(form.Get(1), "first argument of 'catch must be a class symbol")
	}
	v, ok := form.Get(2).(*syntax.Symbol)
	if !ok {
		return nil, malformed(form.Get(2), "second argument of 'catch must be a symbol")
	}
	if err := checkIdentifier(v, form.Span()); err != nil {
		return nil, err
	}
	class := a.classNode(classSym, env)
	body, err := a.Analyze(doForm(form.Slice(3, form.Len())), env.withForm(sp).WithLocals(v))
	if err != nil {
		return nil, err
	}
	return &CatchNode{newNode(env, sp), class, v, body}, nil
}

// classNode resolves sym as a host class name.  Names that are not imported
// by a use clause name a host class directly.
func (a *Analyzer) classNode(sym *syntax.Symbol, env *Env) *HostClassNode {
	name, ok := a.resolveClass(sym, env)
	if !ok {
		name = sym.FullName()
	}
	return &HostClassNode{newNode(env, sym.Span().Or(env.form)), name}
}
