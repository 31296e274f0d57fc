// Copyright © 2024 The ELPS authors

package corelib

import (
	"fmt"

	"github.com/luthersystems/elpsc/analyzer"
	"github.com/luthersystems/elpsc/syntax"
)

var coreMacros = []*coreMacro{
	{"defn", "(defn name [docstring] [params ...] body ...)", macroDefn,
		`Defines a named function in the current namespace.  An optional
		string before the parameter vector documents the function.`},
	{"when", "(when test body ...)", macroWhen,
		`Evaluates body when test is truthy and returns the value of its last
		form.  Returns nil otherwise.`},
	{"when-not", "(when-not test body ...)", macroWhenNot,
		`Evaluates body when test is falsey and returns the value of its last
		form.  Returns nil otherwise.`},
	{"if-not", "(if-not test then [else])", macroIfNot,
		`Evaluates then when test is falsey and else otherwise.`},
	{"cond", "(cond test expr ...)", macroCond,
		`Evaluates the tests in order and returns the value of the expr
		following the first truthy test.  Returns nil when no test is
		truthy.`},
	{"->", "(-> x form ...)", macroThreadFirst,
		`Threads x through the forms, inserting it as the first argument of
		the first form and each result as the first argument of the next.`},
	{"->>", "(->> x form ...)", macroThreadLast,
		`Threads x through the forms, inserting it as the last argument of
		the first form and each result as the last argument of the next.`},
	{"and", "(and x ...)", macroAnd,
		`Evaluates the arguments in order and returns the first falsey value
		or the last value.  Returns true without arguments.  Evaluation stops
		at the first falsey value.`},
	{"or", "(or x ...)", macroOr,
		`Evaluates the arguments in order and returns the first truthy value
		or the last value.  Returns nil without arguments.  Evaluation stops
		at the first truthy value.`},
}

var (
	symDef = syntax.Sym("def")
	symFn  = syntax.Sym("fn")
	symDo  = syntax.Sym("do")
	symIf  = syntax.Sym("if")
	symLet = syntax.Sym("let")
)

func list(vs ...syntax.Value) *syntax.Seq {
	return syntax.NewList(vs...)
}

func body(forms []syntax.Value) *syntax.Seq {
	return list(append([]syntax.Value{symDo}, forms...)...)
}

func macroDefn(x *analyzer.Expansion, args []syntax.Value) (syntax.Value, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("defn requires a name and a parameter vector")
	}
	name, ok := args[0].(*syntax.Symbol)
	if !ok {
		return nil, fmt.Errorf("first argument is not a symbol: %v", args[0])
	}
	def := []syntax.Value{symDef, name}
	rest := args[1:]
	if doc, ok := rest[0].(*syntax.Literal); ok && doc.LitKind() == syntax.LitString {
		def = append(def, doc)
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return nil, fmt.Errorf("defn requires a parameter vector")
	}
	params, ok := rest[0].(*syntax.Seq)
	if !ok || !params.IsVectorLike() {
		return nil, fmt.Errorf("parameters of %v are not a vector: %v", name, rest[0])
	}
	fn := list(append([]syntax.Value{symFn, params}, rest[1:]...)...)
	return list(append(def, fn)...), nil
}

func macroWhen(x *analyzer.Expansion, args []syntax.Value) (syntax.Value, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("when requires a test")
	}
	return list(symIf, args[0], body(args[1:])), nil
}

func macroWhenNot(x *analyzer.Expansion, args []syntax.Value) (syntax.Value, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("when-not requires a test")
	}
	return list(symIf, args[0], syntax.Nil(), body(args[1:])), nil
}

func macroIfNot(x *analyzer.Expansion, args []syntax.Value) (syntax.Value, error) {
	switch len(args) {
	case 2:
		return list(symIf, args[0], syntax.Nil(), args[1]), nil
	case 3:
		return list(symIf, args[0], args[2], args[1]), nil
	default:
		return nil, fmt.Errorf("if-not requires two or three arguments, got %d", len(args))
	}
}

func macroCond(x *analyzer.Expansion, args []syntax.Value) (syntax.Value, error) {
	if len(args)%2 != 0 {
		return nil, fmt.Errorf("cond requires an even number of forms")
	}
	var res syntax.Value = syntax.Nil()
	for i := len(args) - 2; i >= 0; i -= 2 {
		res = list(symIf, args[i], args[i+1], res)
	}
	return res, nil
}

func macroThreadFirst(x *analyzer.Expansion, args []syntax.Value) (syntax.Value, error) {
	return thread(args, func(step *syntax.Seq, acc syntax.Value) *syntax.Seq {
		head := step.Slice(0, 1)
		return head.Push(acc).Concat(step.Rest())
	})
}

func macroThreadLast(x *analyzer.Expansion, args []syntax.Value) (syntax.Value, error) {
	return thread(args, func(step *syntax.Seq, acc syntax.Value) *syntax.Seq {
		return step.Push(acc)
	})
}

// thread folds the value of args[0] through the remaining forms.  Steps that
// are not lists are called with the accumulated value as their only argument.
func thread(args []syntax.Value, insert func(step *syntax.Seq, acc syntax.Value) *syntax.Seq) (syntax.Value, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("threading requires an initial value")
	}
	acc := args[0]
	for _, v := range args[1:] {
		step, ok := v.(*syntax.Seq)
		switch {
		case ok && step.IsForm() && step.Len() > 0:
			acc = insert(step, acc)
		case ok && step.IsForm():
			return nil, fmt.Errorf("cannot thread through an empty list")
		default:
			acc = list(v, acc)
		}
	}
	return acc, nil
}

func macroAnd(x *analyzer.Expansion, args []syntax.Value) (syntax.Value, error) {
	switch len(args) {
	case 0:
		return syntax.Bool(true), nil
	case 1:
		return args[0], nil
	}
	rest, err := macroAnd(x, args[1:])
	if err != nil {
		return nil, err
	}
	tmp := x.Gensym("and")
	return list(symLet, syntax.NewVector(tmp, args[0]), list(symIf, tmp, rest, tmp)), nil
}

func macroOr(x *analyzer.Expansion, args []syntax.Value) (syntax.Value, error) {
	switch len(args) {
	case 0:
		return syntax.Nil(), nil
	case 1:
		return args[0], nil
	}
	rest, err := macroOr(x, args[1:])
	if err != nil {
		return nil, err
	}
	tmp := x.Gensym("or")
	return list(symLet, syntax.NewVector(tmp, args[0]), list(symIf, tmp, tmp, rest)), nil
}
