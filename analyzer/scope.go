// Copyright © 2024 The ELPS authors

package analyzer

import (
	"github.com/luthersystems/elpsc/syntax"
)

// analyzeBindings analyzes the initializers of pairs in order, each under an
// environment that binds the targets of the pairs before it.  The returned
// environment binds every target.
func (a *Analyzer) analyzeBindings(pairs []BindingPair, env *Env) ([]*BindingNode, *Env, error) {
	nodes := make([]*BindingNode, 0, len(pairs))
	for _, p := range pairs {
		init, err := a.Analyze(p.Value, env.Operand())
		if err != nil {
			return nil, nil, err
		}
		shadow := a.gen.Gensym(p.Target.Name() + "_")
		nodes = append(nodes, &BindingNode{
			node:   newNode(env, p.Target.Span().Or(env.form)),
			Symbol: p.Target,
			Shadow: shadow,
			Init:   init,
		})
		env = env.WithShadowedLocal(p.Target, shadow)
	}
	return nodes, env, nil
}

func (a *Analyzer) analyzeLet(form *syntax.Seq, env *Env, sp syntax.Span) (Node, error) {
	if form.Len() < 2 {
		return nil, arityError(form, "'let requires at least one argument")
	}
	bindings, ok := vectorArg(form.Get(1))
	if !ok {
		return nil, malformed(form.Get(1), "binding parameter of 'let must be a vector")
	}
	pairs, err := a.binder.DeconstructBindings(bindings)
	if err != nil {
		return nil, err
	}
	nodes, bodyEnv, err := a.analyzeBindings(pairs, env)
	if err != nil {
		return nil, err
	}
	body, err := a.Analyze(doForm(form.Slice(2, form.Len())), bodyEnv)
	if err != nil {
		return nil, err
	}
	return &LetNode{newNode(env, sp), nodes, body}, nil
}

// analyzeLoop binds symbols directly.  Destructuring patterns are bound to
// temporaries which an inner let destructures on every iteration.
func (a *Analyzer) analyzeLoop(form *syntax.Seq, env *Env, sp syntax.Span) (Node, error) {
	if form.Len() < 2 {
		return nil, arityError(form, "'loop requires at least one argument")
	}
	bindings, ok := vectorArg(form.Get(1))
	if !ok {
		return nil, malformed(form.Get(1), "binding parameter of 'loop must be a vector")
	}
	if bindings.Len()%2 != 0 {
		return nil, errorf(ErrInvalidBindingForm, bindings.Span(), "bindings must contain an even number of forms")
	}
	body := form.Slice(2, form.Len())
	var pairs []BindingPair
	var lets []syntax.Value
	for i := 0; i < bindings.Len(); i += 2 {
		pattern, init := bindings.Get(i), bindings.Get(i+1)
		if _, ok := pattern.(*syntax.Symbol); !ok {
			tmp := a.gen.Gensym("").At(pattern.Span())
			lets = append(lets, pattern, tmp)
			pattern = tmp
		}
		ps, err := a.binder.Deconstruct(pattern, init)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, ps...)
	}
	var bodyForm *syntax.Seq
	if len(lets) > 0 {
		bodyForm = letForm(lets, body)
	} else {
		bodyForm = doForm(body)
	}

	nodes, bodyEnv, err := a.analyzeBindings(pairs, env)
	if err != nil {
		return nil, err
	}
	frame := &RecurFrame{IsLoop: true}
	for _, p := range pairs {
		frame.Params = append(frame.Params, p.Target)
	}
	bodyNode, err := a.Analyze(bodyForm, bodyEnv.WithRecurFrame(frame))
	if err != nil {
		return nil, err
	}
	return &LoopNode{newNode(env, sp), nodes, bodyNode, frame}, nil
}

func (a *Analyzer) analyzeRecur(form *syntax.Seq, env *Env, sp syntax.Span) (Node, error) {
	frame := env.RecurFrame()
	if frame == nil || env.DisallowRecur() {
		return nil, errorf(ErrInvalidRecurPosition, sp, "can't call 'recur here")
	}
	nargs := form.Len() - 1
	if nargs != len(frame.Params) {
		return nil, arityError(form, "wrong number of arguments for 'recur, expected %d got %d", len(frame.Params), nargs)
	}
	args, err := a.analyzeAll(form.Rest().Values(), env.Operand())
	if err != nil {
		return nil, err
	}
	frame.active = true
	return &RecurNode{newNode(env, sp), frame, args}, nil
}

// analyzeFn analyzes the body in Return context with a fresh recur frame
// over the flat parameters.  Destructured parameters are bound by a let
// wrapping the body.
func (a *Analyzer) analyzeFn(form *syntax.Seq, env *Env, sp syntax.Span) (Node, error) {
	if form.Len() < 2 {
		return nil, arityError(form, "'fn requires at least one argument")
	}
	params, ok := vectorArg(form.Get(1))
	if !ok {
		return nil, malformed(form.Get(1), "first argument of 'fn must be a vector")
	}
	fp, err := a.binder.Params(params)
	if err != nil {
		return nil, err
	}
	body := form.Slice(2, form.Len())
	var bodyForm *syntax.Seq
	if len(fp.Lets) > 0 {
		bodyForm = letForm(fp.Lets, body)
	} else {
		bodyForm = doForm(body)
	}

	paramNames := make(map[string]bool, len(fp.Params))
	for _, p := range fp.Params {
		paramNames[p.Name()] = true
	}
	var uses []*Local
	for _, l := range env.Locals() {
		if !paramNames[l.Symbol.Name()] {
			uses = append(uses, l)
		}
	}

	frame := &RecurFrame{Params: fp.Params}
	bodyEnv := env.
		WithLocals(fp.Params...).
		WithContext(Return).
		WithRecurFrame(frame).
		WithFnArity(&FnArity{Params: len(fp.Params), Variadic: fp.Variadic})
	bodyNode, err := a.Analyze(bodyForm, bodyEnv)
	if err != nil {
		return nil, err
	}
	return &FnNode{
		node:     newNode(env, sp),
		Params:   fp.Params,
		Variadic: fp.Variadic,
		Body:     bodyNode,
		Uses:     uses,
		Frame:    frame,
	}, nil
}

// foreachTarget returns the symbol bound by a foreach pattern.  Patterns
// other than symbols are bound to a temporary destructured in lets.
func (a *Analyzer) foreachTarget(pattern syntax.Value, outer syntax.Span, lets *[]syntax.Value) (*syntax.Symbol, error) {
	sym, ok := pattern.(*syntax.Symbol)
	switch {
	case ok && sym.Is(syntax.Placeholder):
		return a.gen.Gensym("").At(sym.Span()), nil
	case ok:
		if err := checkIdentifier(sym, outer); err != nil {
			return nil, err
		}
		return sym, nil
	default:
		tmp := a.gen.Gensym("").At(pattern.Span())
		*lets = append(*lets, pattern, tmp)
		return tmp, nil
	}
}

// analyzeForeach analyzes the body for effect with recursion disallowed.
func (a *Analyzer) analyzeForeach(form *syntax.Seq, env *Env, sp syntax.Span) (Node, error) {
	if form.Len() < 2 {
		return nil, arityError(form, "'foreach requires at least one argument")
	}
	binding, ok := vectorArg(form.Get(1))
	if !ok {
		return nil, malformed(form.Get(1), "first argument of 'foreach must be a vector")
	}
	if binding.Len() != 2 && binding.Len() != 3 {
		return nil, malformed(binding, "binding vector of 'foreach must have two or three elements")
	}
	var lets []syntax.Value
	var key *syntax.Symbol
	if binding.Len() == 3 {
		k, err := a.foreachTarget(binding.Get(0), binding.Span(), &lets)
		if err != nil {
			return nil, err
		}
		key = k
	}
	val, err := a.foreachTarget(binding.Get(binding.Len()-2), binding.Span(), &lets)
	if err != nil {
		return nil, err
	}
	coll, err := a.Analyze(binding.Get(binding.Len()-1), env.Operand())
	if err != nil {
		return nil, err
	}

	body := form.Slice(2, form.Len())
	var bodyForm *syntax.Seq
	if len(lets) > 0 {
		bodyForm = letForm(lets, body)
	} else {
		bodyForm = doForm(body)
	}
	bodyEnv := env.WithContext(Statement).WithDisallowRecur(true)
	if key != nil {
		bodyEnv = bodyEnv.WithLocals(key, val)
	} else {
		bodyEnv = bodyEnv.WithLocals(val)
	}
	bodyNode, err := a.Analyze(bodyForm, bodyEnv)
	if err != nil {
		return nil, err
	}
	return &ForeachNode{newNode(env, sp), key, val, coll, bodyNode}, nil
}
