// Copyright © 2024 The ELPS authors

package analyzer

import (
	"strings"

	"github.com/luthersystems/elpsc/syntax"
)

// vectorArg returns v if it is a vector or a bracketed tuple.
func vectorArg(v syntax.Value) (*syntax.Seq, bool) {
	s, ok := v.(*syntax.Seq)
	if !ok || !s.IsVectorLike() {
		return nil, false
	}
	return s, true
}

// doForm wraps body in a do form.
func doForm(body *syntax.Seq) *syntax.Seq {
	return body.Cons(syntax.Sym("do"))
}

// letForm wraps body in a let form binding the alternating patterns and
// values of lets.
func letForm(lets []syntax.Value, body *syntax.Seq) *syntax.Seq {
	return body.Cons(syntax.NewVector(lets...)).Cons(syntax.Sym("let"))
}

func (a *Analyzer) analyzeDef(form *syntax.Seq, env *Env, sp syntax.Span) (Node, error) {
	nargs := form.Len() - 1
	if nargs < 2 || nargs > 3 {
		return nil, arityError(form, "'def requires two or three arguments, got %d", nargs)
	}
	name, ok := form.Get(1).(*syntax.Symbol)
	if !ok {
		return nil, malformed(form.Get(1), "first argument of 'def must be a symbol")
	}
	if name.Namespace() != "" {
		return nil, malformed(name, "cannot define qualified symbol %s", name.FullName())
	}
	var meta *syntax.Map
	if nargs == 3 {
		switch m := form.Get(2).(type) {
		case *syntax.Literal:
			if m.LitKind() != syntax.LitString {
				return nil, malformed(m, "second argument of 'def must be a docstring or a meta map")
			}
			meta = syntax.NewMap(syntax.Entry{Key: syntax.Keyword("doc"), Value: m})
		case *syntax.Map:
			meta = m
		default:
			return nil, malformed(m, "second argument of 'def must be a docstring or a meta map")
		}
	}
	b := a.reg.Define(env.Namespace(), name.Name(), meta, sp)
	init, err := a.Analyze(form.Get(nargs), env.Operand())
	if err != nil {
		return nil, err
	}
	return &DefNode{newNode(env, sp), b, init}, nil
}

func (a *Analyzer) analyzeNs(form *syntax.Seq, env *Env, sp syntax.Span) (Node, error) {
	if form.Len() < 2 {
		return nil, arityError(form, "'ns requires at least one argument")
	}
	name, ok := form.Get(1).(*syntax.Symbol)
	if !ok {
		return nil, malformed(form.Get(1), "first argument of 'ns must be a symbol")
	}
	n := &NsNode{node: newNode(env, sp), Name: name.FullName()}
	for _, v := range form.Slice(2, form.Len()).Values() {
		clause, ok := v.(*syntax.Seq)
		if !ok || !clause.IsForm() || clause.Len() < 2 {
			return nil, malformed(v, "ns clauses must be lists of the form (:require ...) or (:use ...)")
		}
		switch {
		case syntax.IsKeyword(clause.First(), "require"):
			req, err := parseRequire(clause)
			if err != nil {
				return nil, err
			}
			n.Requires = append(n.Requires, req)
		case syntax.IsKeyword(clause.First(), "use"):
			use, err := parseUse(clause)
			if err != nil {
				return nil, err
			}
			n.Uses = append(n.Uses, use)
		default:
			return nil, malformed(clause, "unknown ns clause %v", clause.First())
		}
	}

	a.reg.SetNamespace(n.Name)
	for _, req := range n.Requires {
		a.reg.AddAlias(n.Name, req.Alias, req.Namespace)
		for _, r := range req.Refers {
			a.reg.AddRefer(n.Name, r, req.Namespace)
		}
	}
	for _, use := range n.Uses {
		a.reg.AddUse(n.Name, use.Alias, use.Class)
	}
	return n, nil
}

// clauseOptions iterates the keyword options following the subject of an
// ns clause.
func clauseOptions(clause *syntax.Seq, fn func(key string, v syntax.Value) error) error {
	opts := clause.Slice(2, clause.Len())
	if opts.Len()%2 != 0 {
		return malformed(clause, "ns clause options must be keyword-value pairs")
	}
	for i := 0; i < opts.Len(); i += 2 {
		key, ok := opts.Get(i).(*syntax.Literal)
		if !ok || key.LitKind() != syntax.LitKeyword {
			return malformed(opts.Get(i), "ns clause option must be a keyword")
		}
		if err := fn(key.Str(), opts.Get(i+1)); err != nil {
			return err
		}
	}
	return nil
}

func parseRequire(clause *syntax.Seq) (RequireClause, error) {
	var req RequireClause
	ns, ok := clause.Get(1).(*syntax.Symbol)
	if !ok {
		return req, malformed(clause.Get(1), ":require must name a namespace")
	}
	req.Namespace = ns.FullName()
	req.Alias = lastSegment(req.Namespace, ".")
	err := clauseOptions(clause, func(key string, v syntax.Value) error {
		switch key {
		case "as":
			alias, ok := v.(*syntax.Symbol)
			if !ok {
				return malformed(v, ":as must be followed by a symbol")
			}
			req.Alias = alias.FullName()
		case "refer":
			refers, ok := vectorArg(v)
			if !ok {
				return malformed(v, ":refer must be followed by a vector of symbols")
			}
			for _, r := range refers.Values() {
				sym, ok := r.(*syntax.Symbol)
				if !ok || sym.Namespace() != "" {
					return malformed(r, ":refer must be followed by a vector of symbols")
				}
				req.Refers = append(req.Refers, sym.Name())
			}
		default:
			return malformed(v, "unknown :require option :%s", key)
		}
		return nil
	})
	return req, err
}

func parseUse(clause *syntax.Seq) (UseClause, error) {
	var use UseClause
	class, ok := clause.Get(1).(*syntax.Symbol)
	if !ok {
		return use, malformed(clause.Get(1), ":use must name a host class")
	}
	use.Class = class.FullName()
	use.Alias = lastSegment(use.Class, `\`)
	err := clauseOptions(clause, func(key string, v syntax.Value) error {
		if key != "as" {
			return malformed(v, "unknown :use option :%s", key)
		}
		alias, ok := v.(*syntax.Symbol)
		if !ok {
			return malformed(v, ":as must be followed by a symbol")
		}
		use.Alias = alias.FullName()
		return nil
	})
	return use, err
}

func lastSegment(name, sep string) string {
	return name[strings.LastIndex(name, sep)+1:]
}

func (a *Analyzer) analyzeQuote(form *syntax.Seq, env *Env, sp syntax.Span) (Node, error) {
	if form.Len() != 2 {
		return nil, arityError(form, "exactly one argument is required for 'quote")
	}
	return &QuoteNode{newNode(env, sp), form.Get(1)}, nil
}

// analyzeDo analyzes all but the last form as operands.  The last form
// inherits the context of the do.
func (a *Analyzer) analyzeDo(form *syntax.Seq, env *Env, sp syntax.Span) (Node, error) {
	n := form.Len() - 1
	if n == 0 {
		return &LiteralNode{newNode(env, sp), syntax.WithSpan(syntax.Nil(), sp)}, nil
	}
	stmts, err := a.analyzeAll(form.Slice(1, n).Values(), env.Operand())
	if err != nil {
		return nil, err
	}
	ret, err := a.Analyze(form.Get(n), env)
	if err != nil {
		return nil, err
	}
	return &DoNode{newNode(env, sp), stmts, ret}, nil
}

func (a *Analyzer) analyzeIf(form *syntax.Seq, env *Env, sp syntax.Span) (Node, error) {
	nargs := form.Len() - 1
	if nargs < 2 || nargs > 3 {
		return nil, arityError(form, "'if requires two or three arguments")
	}
	test, err := a.Analyze(form.Get(1), env.Operand())
	if err != nil {
		return nil, err
	}
	then, err := a.Analyze(form.Get(2), env)
	if err != nil {
		return nil, err
	}
	var els Node
	if nargs == 3 {
		els, err = a.Analyze(form.Get(3), env)
		if err != nil {
			return nil, err
		}
	} else {
		els = &LiteralNode{newNode(env, sp), syntax.WithSpan(syntax.Nil(), sp)}
	}
	return &IfNode{newNode(env, sp), test, then, els}, nil
}

func (a *Analyzer) analyzeApply(form *syntax.Seq, env *Env, sp syntax.Span) (Node, error) {
	if form.Len() < 3 {
		return nil, arityError(form, "at least two arguments are required for 'apply")
	}
	operand := env.Operand()
	fn, err := a.Analyze(form.Get(1), operand)
	if err != nil {
		return nil, err
	}
	args, err := a.analyzeAll(form.Slice(2, form.Len()).Values(), operand)
	if err != nil {
		return nil, err
	}
	return &ApplyNode{newNode(env, sp), fn, args}, nil
}

func (a *Analyzer) analyzeThrow(form *syntax.Seq, env *Env, sp syntax.Span) (Node, error) {
	if form.Len() != 2 {
		return nil, arityError(form, "exactly one argument is required for 'throw")
	}
	x, err := a.Analyze(form.Get(1), env.Operand())
	if err != nil {
		return nil, err
	}
	return &ThrowNode{newNode(env, sp), x}, nil
}

func (a *Analyzer) analyzeDefStruct(form *syntax.Seq, env *Env, sp syntax.Span) (Node, error) {
	if form.Len() != 3 {
		return nil, arityError(form, "exactly two arguments are required for 'defstruct, got %d", form.Len()-1)
	}
	name, ok := form.Get(1).(*syntax.Symbol)
	if !ok || name.Namespace() != "" {
		return nil, malformed(form.Get(1), "first argument of 'defstruct must be a symbol")
	}
	fieldVec, ok := vectorArg(form.Get(2))
	if !ok {
		return nil, malformed(form.Get(2), "second argument of 'defstruct must be a vector")
	}
	fields := make([]*syntax.Symbol, 0, fieldVec.Len())
	for _, v := range fieldVec.Values() {
		f, ok := v.(*syntax.Symbol)
		if !ok {
			return nil, malformed(v, "defstruct field elements must be symbols")
		}
		if err := checkIdentifier(f, fieldVec.Span()); err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	b := a.reg.DefineStruct(env.Namespace(), name.Name(), fields, sp)
	return &DefStructNode{newNode(env, sp), b, fields}, nil
}
