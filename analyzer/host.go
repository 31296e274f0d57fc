// Copyright © 2024 The ELPS authors

package analyzer

import (
	"github.com/luthersystems/elpsc/syntax"
)

// hostArgs checks that form has exactly n arguments and analyzes them as
// operands.
func (a *Analyzer) hostArgs(form *syntax.Seq, env *Env, n int) ([]Node, error) {
	if form.Len()-1 != n {
		return nil, arityError(form, "'%s requires exactly %d arguments, got %d", form.First(), n, form.Len()-1)
	}
	return a.analyzeAll(form.Rest().Values(), env.Operand())
}

func (a *Analyzer) analyzeHostNew(form *syntax.Seq, env *Env, sp syntax.Span) (Node, error) {
	if form.Len() < 2 {
		return nil, arityError(form, "'%s requires at least one argument", form.First())
	}
	operand := env.Operand()
	var class Node
	if sym, ok := form.Get(1).(*syntax.Symbol); ok && !env.IsLocal(sym) {
		class = a.classNode(sym, operand)
	} else {
		var err error
		class, err = a.Analyze(form.Get(1), operand)
		if err != nil {
			return nil, err
		}
	}
	args, err := a.analyzeAll(form.Slice(2, form.Len()).Values(), operand)
	if err != nil {
		return nil, err
	}
	return &NewNode{newNode(env, sp), class, args}, nil
}

// analyzeHostMember analyzes property reads and method calls on objects and,
// when static is set, constant reads and static calls on classes.
func (a *Analyzer) analyzeHostMember(form *syntax.Seq, env *Env, sp syntax.Span, static bool) (Node, error) {
	if form.Len() != 3 {
		return nil, arityError(form, "'%s requires exactly two arguments, got %d", form.First(), form.Len()-1)
	}
	operand := env.Operand()
	var target Node
	if sym, ok := form.Get(1).(*syntax.Symbol); ok && static && !env.IsLocal(sym) {
		target = a.classNode(sym, operand)
	} else {
		var err error
		target, err = a.Analyze(form.Get(1), operand)
		if err != nil {
			return nil, err
		}
	}
	n := &ObjectCallNode{node: newNode(env, sp), Target: target, Static: static}
	switch member := form.Get(2).(type) {
	case *syntax.Symbol:
		n.Member = member.FullName()
	case *syntax.Seq:
		name, ok := member.First().(*syntax.Symbol)
		if !member.IsForm() || !ok {
			return nil, malformed(member, "second argument of '%s must be a symbol or a method call", form.First())
		}
		args, err := a.analyzeAll(member.Rest().Values(), operand)
		if err != nil {
			return nil, err
		}
		n.IsMethod = true
		n.Member = name.FullName()
		n.Args = args
	default:
		return nil, malformed(member, "second argument of '%s must be a symbol or a method call", form.First())
	}
	return n, nil
}

func (a *Analyzer) analyzeArrayGet(form *syntax.Seq, env *Env, sp syntax.Span) (Node, error) {
	args, err := a.hostArgs(form, env, 2)
	if err != nil {
		return nil, err
	}
	return &ArrayGetNode{newNode(env, sp), args[0], args[1]}, nil
}

func (a *Analyzer) analyzeArraySet(form *syntax.Seq, env *Env, sp syntax.Span) (Node, error) {
	args, err := a.hostArgs(form, env, 3)
	if err != nil {
		return nil, err
	}
	return &ArraySetNode{newNode(env, sp), args[0], args[1], args[2]}, nil
}

func (a *Analyzer) analyzeArrayPush(form *syntax.Seq, env *Env, sp syntax.Span) (Node, error) {
	args, err := a.hostArgs(form, env, 2)
	if err != nil {
		return nil, err
	}
	return &ArrayPushNode{newNode(env, sp), args[0], args[1]}, nil
}

func (a *Analyzer) analyzeArrayUnset(form *syntax.Seq, env *Env, sp syntax.Span) (Node, error) {
	args, err := a.hostArgs(form, env, 2)
	if err != nil {
		return nil, err
	}
	return &ArrayUnsetNode{newNode(env, sp), args[0], args[1]}, nil
}
