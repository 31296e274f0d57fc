// Copyright © 2024 The ELPS authors

package analyzer

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/elpsc/parser/rdparser"
	"github.com/luthersystems/elpsc/syntax"
)

func newTestAnalyzer(opts ...Option) *Analyzer {
	reg := NewRegistry()
	for _, name := range []string{"first", "next", "get", "+", "<", "inc", "println"} {
		reg.Define(CoreNamespace, name, nil, syntax.Span{})
	}
	return New(reg, opts...)
}

func read(t *testing.T, src string) syntax.Value {
	t.Helper()
	vs, err := rdparser.NewReader().Read("test", strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, vs, 1)
	return vs[0]
}

func analyzeSource(t *testing.T, a *Analyzer, src string) (Node, error) {
	t.Helper()
	return a.Analyze(read(t, src), EmptyEnv(a.Registry().CurrentNamespace()))
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name string
		src  string
		dump string
	}{
		{"int", `1`, `1`},
		{"string", `"x"`, `"x"`},
		{"keyword", `:k`, `:k`},
		{"nil", `nil`, `nil`},
		{"empty list", `()`, `()`},
		{"vector", `[1 2]`, `(vector 1 2)`},
		{"array", `@[1]`, `(array 1)`},
		{"map", `{:a 1}`, `(map :a 1)`},
		{"table", `@{:a 1}`, `(table :a 1)`},
		{"set", `#{1}`, `(set 1)`},
		{"quote", `'x`, `'x`},
		{"quote form", `'(a b)`, `'(a b)`},
		{"if", `(if true 1 2)`, `(if true 1 2)`},
		{"if without else", `(if true 1)`, `(if true 1 nil)`},
		{"do", `(do 1 2)`, `(do 1 2)`},
		{"empty do", `(do)`, `nil`},
		{"call", `(first [1])`, `(call core/first (vector 1))`},
		{"qualified call", `(core/first [1])`, `(call core/first (vector 1))`},
		{"apply", `(apply + 1 [2])`, `(apply core/+ 1 (vector 2))`},
		{"let", `(let [a 1] a)`, `(let [a 1] (do a))`},
		{"fn", `(fn [x] x)`, `(fn [x] (do x))`},
		{"variadic fn", `(fn [x & xs] xs)`, `(fn [x & xs] (do xs))`},
		{"loop", `(loop [i 0] (recur (inc i)))`, `(loop [i 0] (do (recur (call core/inc i))))`},
		{"throw", `(throw (host/new Exception "m"))`, `(throw (host/new Exception "m"))`},
		{"host var", `host/PHP_EOL`, `host/PHP_EOL`},
		{"host method", `(let [o 1] (host/-> o (format "Y")))`, `(let [o 1] (do (host/-> o (format "Y"))))`},
		{"host property", `(let [o 1] (host/-> o name))`, `(let [o 1] (do (host/-> o name)))`},
		{"host static", `(host/:: DateTime ATOM)`, `(host/:: DateTime ATOM)`},
		{"aget", `(let [a @[]] (host/aget a 0))`, `(let [a (array)] (do (host/aget a 0)))`},
		{"aset", `(let [a @[]] (host/aset a 0 1))`, `(let [a (array)] (do (host/aset a 0 1)))`},
		{"apush", `(let [a @[]] (host/apush a 1))`, `(let [a (array)] (do (host/apush a 1)))`},
		{"aunset", `(let [a @[]] (host/aunset a 0))`, `(let [a (array)] (do (host/aunset a 0)))`},
		{"foreach", `(foreach [x [1 2]] (println x))`, `(foreach [x] (vector 1 2) (do (call core/println x)))`},
		{"foreach key", `(foreach [k v {:a 1}] k)`, `(foreach [k v] (map :a 1) (do k))`},
		{"try", `(try 1 (catch Exception e e) (finally 2))`, `(try (do 1) (catch Exception e (do e)) (finally (do 2)))`},
		{"try without handlers", `(try 1 2)`, `(do 1 2)`},
		{"def", `(def x 1)`, `(def user/x 1)`},
		{"def docstring", `(def x "the x" 1)`, `(def user/x 1)`},
		{"defstruct", `(defstruct point [x y])`, `(defstruct user/point [x y])`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			a := newTestAnalyzer()
			n, err := analyzeSource(t, a, test.src)
			require.NoError(t, err)
			assert.Equal(t, test.dump, Dump(n))
		})
	}
}

func TestAnalyze_Literal(t *testing.T) {
	a := newTestAnalyzer()
	v := read(t, `42`)
	env := EmptyEnv("user").WithContext(Expression)
	n, err := a.Analyze(v, env)
	require.NoError(t, err)
	lit, ok := n.(*LiteralNode)
	require.True(t, ok)
	assert.Same(t, v, lit.Value)
	assert.Equal(t, Expression, n.Env().Context())
	assert.Equal(t, "test:1:1", n.Span().Start.String())
}

func TestAnalyze_Contexts(t *testing.T) {
	a := newTestAnalyzer()
	n, err := a.Analyze(read(t, `(do 1 2)`), EmptyEnv("user").WithContext(Return))
	require.NoError(t, err)
	do := n.(*DoNode)
	require.Len(t, do.Stmts, 1)
	assert.Equal(t, Expression, do.Stmts[0].Env().Context())
	assert.True(t, do.Stmts[0].Env().DisallowRecur())
	assert.Equal(t, Return, do.Ret.Env().Context())

	n, err = a.Analyze(read(t, `(if 1 2)`), EmptyEnv("user").WithContext(Return))
	require.NoError(t, err)
	ifn := n.(*IfNode)
	assert.Equal(t, Expression, ifn.Test.Env().Context())
	assert.Equal(t, Return, ifn.Then.Env().Context())
	assert.Equal(t, Return, ifn.Else.Env().Context())
	assert.Equal(t, n.Span(), ifn.Else.Span())

	n, err = a.Analyze(read(t, `(fn [x] (println x) x)`), EmptyEnv("user"))
	require.NoError(t, err)
	fn := n.(*FnNode)
	assert.Equal(t, Return, fn.Body.Env().Context())
	assert.Equal(t, &FnArity{Params: 1}, fn.Body.Env().FnArity())
}

func TestAnalyze_TryContext(t *testing.T) {
	a := newTestAnalyzer()
	n, err := a.Analyze(read(t, `(try 1 (catch Exception e e))`), EmptyEnv("user").WithContext(Expression))
	require.NoError(t, err)
	try := n.(*TryNode)
	assert.Equal(t, Return, try.Env().Context())
	assert.True(t, try.Body.Env().DisallowRecur())
	require.Len(t, try.Catches, 1)
	assert.Equal(t, "Exception", try.Catches[0].Class.Name)
	assert.Nil(t, try.Finally)
}

func TestAnalyze_Shadowing(t *testing.T) {
	a := newTestAnalyzer()
	n, err := analyzeSource(t, a, `(let [a 1 a a] a)`)
	require.NoError(t, err)
	let := n.(*LetNode)
	require.Len(t, let.Bindings, 2)
	first, second := let.Bindings[0], let.Bindings[1]
	assert.NotEqual(t, first.Shadow.Name(), second.Shadow.Name())
	assert.True(t, syntax.IsGenerated(first.Shadow))
	assert.True(t, strings.HasPrefix(first.Shadow.Name(), "a_"))

	init, ok := second.Init.(*LocalVarNode)
	require.True(t, ok)
	assert.Same(t, first.Shadow, init.Local.Shadow)

	body := let.Body.(*DoNode).Ret.(*LocalVarNode)
	assert.Same(t, second.Shadow, body.Local.Shadow)
}

func TestAnalyze_LocalsShadowGlobals(t *testing.T) {
	a := newTestAnalyzer()
	n, err := analyzeSource(t, a, `(fn [first] (first 1))`)
	require.NoError(t, err)
	call := n.(*FnNode).Body.(*DoNode).Ret.(*CallNode)
	_, ok := call.Fn.(*LocalVarNode)
	assert.True(t, ok)
}

func TestAnalyze_FnUses(t *testing.T) {
	a := newTestAnalyzer()
	n, err := analyzeSource(t, a, `(let [a 1 b 2] (fn [b] (+ a b)))`)
	require.NoError(t, err)
	fn := n.(*LetNode).Body.(*DoNode).Ret.(*FnNode)
	require.Len(t, fn.Uses, 1)
	assert.Equal(t, "a", fn.Uses[0].Symbol.Name())
}

func TestAnalyze_FnDestructuring(t *testing.T) {
	a := newTestAnalyzer(WithSymbolGenerator(&syntax.Counter{}))
	n, err := analyzeSource(t, a, `(fn [[x y] & _] x)`)
	require.NoError(t, err)
	fn := n.(*FnNode)
	require.Len(t, fn.Params, 2)
	assert.True(t, fn.Variadic)
	assert.True(t, syntax.IsGenerated(fn.Params[0]))
	_, ok := fn.Body.(*LetNode)
	assert.True(t, ok, "destructured parameters are bound by a let")
}

func TestAnalyze_Recur(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		err    error
		msg    string
		active bool
	}{
		{"fn tail", `(fn [x] (if x (recur 1) 2))`, nil, "", true},
		{"loop tail", `(loop [i 0] (if (< i 3) (recur (inc i)) i))`, nil, "", true},
		{"let tail", `(fn [x] (let [y x] (recur y)))`, nil, "", true},
		{"no recur", `(fn [x] x)`, nil, "", false},
		{"top level", `(recur 1)`, ErrInvalidRecurPosition, "test:1:1: invalid-recur-position: can't call 'recur here", false},
		{"non-tail do", `(fn [x] (do (recur 1) 2))`, ErrInvalidRecurPosition, "", false},
		{"if test", `(fn [x] (if (recur 1) 1 2))`, ErrInvalidRecurPosition, "", false},
		{"call argument", `(fn [x] (inc (recur 1)))`, ErrInvalidRecurPosition, "", false},
		{"binding init", `(fn [x] (let [y (recur 1)] y))`, ErrInvalidRecurPosition, "", false},
		{"foreach body", `(fn [x] (foreach [y x] (recur y)))`, ErrInvalidRecurPosition, "", false},
		{"try body", `(fn [x] (try (recur 1) (catch Exception e e)))`, ErrInvalidRecurPosition, "", false},
		{"arity", `(fn [x] (recur 1 2))`, ErrArityMismatch, "test:1:9: arity-mismatch: wrong number of arguments for 'recur, expected 1 got 2", false},
		{"loop arity", `(loop [a 1 b 2] (recur 1))`, ErrArityMismatch, "", false},
		{"variadic arity", `(fn [x & more] (recur 1 [2]))`, nil, "", true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			a := newTestAnalyzer()
			n, err := analyzeSource(t, a, test.src)
			if test.err != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, test.err)
				if test.msg != "" {
					assert.Equal(t, test.msg, err.Error())
				}
				return
			}
			require.NoError(t, err)
			switch n := n.(type) {
			case *FnNode:
				assert.Equal(t, test.active, n.Frame.Active())
				assert.False(t, n.Frame.IsLoop)
			case *LoopNode:
				assert.Equal(t, test.active, n.Frame.Active())
				assert.True(t, n.Frame.IsLoop)
			default:
				t.Fatalf("unexpected node %T", n)
			}
		})
	}
}

func TestAnalyze_RecurNestedFn(t *testing.T) {
	a := newTestAnalyzer()
	n, err := analyzeSource(t, a, `(loop [i 0] (fn [x] (recur x)))`)
	require.NoError(t, err)
	loop := n.(*LoopNode)
	fn := loop.Body.(*DoNode).Ret.(*FnNode)
	assert.False(t, loop.Frame.Active())
	assert.True(t, fn.Frame.Active())
}

func TestAnalyze_LoopDestructuring(t *testing.T) {
	a := newTestAnalyzer()
	n, err := analyzeSource(t, a, `(loop [[a b] [1 2]] (recur [b a]))`)
	require.NoError(t, err)
	loop := n.(*LoopNode)
	require.Len(t, loop.Bindings, 1)
	assert.True(t, syntax.IsGenerated(loop.Bindings[0].Symbol))
	assert.Len(t, loop.Frame.Params, 1)
	_, ok := loop.Body.(*LetNode)
	assert.True(t, ok)
	assert.True(t, loop.Frame.Active())
}

func TestAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		err  error
		msg  string
	}{
		{"if arity", `(if true)`, ErrArityMismatch, "test:1:1: arity-mismatch: 'if requires two or three arguments"},
		{"if empty", `(if)`, ErrArityMismatch, "test:1:1: arity-mismatch: 'if requires two or three arguments"},
		{"if arity high", `(if 1 2 3 4)`, ErrArityMismatch, ""},
		{"quote arity", `(quote)`, ErrArityMismatch, ""},
		{"def arity", `(def x)`, ErrArityMismatch, ""},
		{"def name", `(def "x" 1)`, ErrMalformedSpecialForm, ""},
		{"def meta", `(def x 1 1)`, ErrMalformedSpecialForm, ""},
		{"apply arity", `(apply +)`, ErrArityMismatch, ""},
		{"throw arity", `(throw)`, ErrArityMismatch, ""},
		{"unresolved", `foo`, ErrUnresolvedSymbol, "test:1:1: unresolved-symbol: cannot resolve symbol 'foo'"},
		{"unresolved nested", `(do 1 (first bar))`, ErrUnresolvedSymbol, "test:1:14: unresolved-symbol: cannot resolve symbol 'bar'"},
		{"let odd", `(let [a] a)`, ErrInvalidBindingForm, "test:1:6: invalid-binding-form: bindings must contain an even number of forms"},
		{"let vector", `(let (a 1) a)`, ErrMalformedSpecialForm, ""},
		{"let identifier", `(let [*a* 1] 1)`, ErrInvalidIdentifier, ""},
		{"fn params", `(fn x x)`, ErrMalformedSpecialForm, ""},
		{"fn rest", `(fn [& a b] a)`, ErrUnsupportedParameterForm, ""},
		{"foreach shape", `(foreach [x] x)`, ErrMalformedSpecialForm, ""},
		{"try order", `(try (catch Exception e e) 1)`, ErrMalformedSpecialForm, ""},
		{"finally last", `(try 1 (finally 2) (catch Exception e e))`, ErrMalformedSpecialForm, ""},
		{"catch arity", `(try 1 (catch Exception))`, ErrArityMismatch, ""},
		{"defstruct fields", `(defstruct p [1])`, ErrMalformedSpecialForm, ""},
		{"defstruct arity", `(defstruct p)`, ErrArityMismatch, ""},
		{"host member", `(host/-> 1 2)`, ErrMalformedSpecialForm, ""},
		{"aget arity", `(host/aget @[])`, ErrArityMismatch, ""},
		{"ns clause", `(ns app (:import x))`, ErrMalformedSpecialForm, ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			a := newTestAnalyzer()
			_, err := analyzeSource(t, a, test.src)
			require.Error(t, err)
			assert.ErrorIs(t, err, test.err)
			var aerr *Error
			require.True(t, errors.As(err, &aerr))
			assert.NotNil(t, aerr.Span.Start, "error is located")
			if test.msg != "" {
				assert.Equal(t, test.msg, err.Error())
			}
		})
	}
}

func TestAnalyze_ErrorSpanFallback(t *testing.T) {
	a := newTestAnalyzer()
	// The generated form carries no location of its own.
	form := syntax.NewList(syntax.Sym("if"), syntax.Bool(true))
	outer := read(t, `(x)`)
	_, err := a.Analyze(form, EmptyEnv("user").withForm(outer.Span()))
	require.Error(t, err)
	var aerr *Error
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, "test:1:1", aerr.Span.Start.String())
}

func TestAnalyze_Def(t *testing.T) {
	a := newTestAnalyzer()
	_, err := analyzeSource(t, a, `(def x "the x" 1)`)
	require.NoError(t, err)
	b, ok := a.Registry().Lookup("user", "x")
	require.True(t, ok)
	doc, ok := b.Meta.Get(syntax.Keyword("doc"))
	require.True(t, ok)
	assert.Equal(t, `"the x"`, doc.String())

	// Recursive definitions resolve the binding being defined.
	n, err := analyzeSource(t, a, `(def f (fn [n] (f n)))`)
	require.NoError(t, err)
	call := n.(*DefNode).Init.(*FnNode).Body.(*DoNode).Ret.(*CallNode)
	global, ok := call.Fn.(*GlobalVarNode)
	require.True(t, ok)
	assert.Equal(t, "user/f", global.Binding.FullName())
}

func TestAnalyze_Ns(t *testing.T) {
	a := newTestAnalyzer()
	a.Registry().Define("app.util", "helper", nil, syntax.Span{})
	a.Registry().Define("app.util", "other", nil, syntax.Span{})

	n, err := analyzeSource(t, a, `(ns app.main (:require app.util :as u :refer [helper]) (:require lib.str) (:use \Foo\Bar) (:use \Foo\Baz :as Q))`)
	require.NoError(t, err)
	ns := n.(*NsNode)
	assert.Equal(t, "app.main", ns.Name)
	assert.Equal(t, []RequireClause{
		{Namespace: "app.util", Alias: "u", Refers: []string{"helper"}},
		{Namespace: "lib.str", Alias: "str"},
	}, ns.Requires)
	assert.Equal(t, []UseClause{
		{Class: `\Foo\Bar`, Alias: "Bar"},
		{Class: `\Foo\Baz`, Alias: "Q"},
	}, ns.Uses)
	assert.Equal(t, "app.main", a.Registry().CurrentNamespace())

	tests := []struct {
		src  string
		dump string
	}{
		{`helper`, `app.util/helper`},
		{`u/other`, `app.util/other`},
		{`app.util/other`, `app.util/other`},
		{`first`, `core/first`},
		{`Bar`, `\Foo\Bar`},
		{`Q`, `\Foo\Baz`},
		{`(host/new Bar)`, `(host/new \Foo\Bar)`},
		{`(host/:: Q X)`, `(host/:: \Foo\Baz X)`},
	}
	for _, test := range tests {
		n, err := analyzeSource(t, a, test.src)
		if assert.NoError(t, err, test.src) {
			assert.Equal(t, test.dump, Dump(n), test.src)
		}
	}

	_, err = analyzeSource(t, a, `other`)
	assert.ErrorIs(t, err, ErrUnresolvedSymbol)
}

func TestAnalyze_DefStruct(t *testing.T) {
	a := newTestAnalyzer()
	_, err := analyzeSource(t, a, `(defstruct point [x y])`)
	require.NoError(t, err)
	b, ok := a.Registry().Lookup("user", "point")
	require.True(t, ok)
	require.Len(t, b.Fields, 2)
	assert.Equal(t, "y", b.Fields[1].Name())
	assert.False(t, b.IsMacro())
}

func TestAnalyze_HostNodes(t *testing.T) {
	a := newTestAnalyzer()
	n, err := analyzeSource(t, a, `(let [o 1] (host/-> o (format "Y" 2)))`)
	require.NoError(t, err)
	call := n.(*LetNode).Body.(*DoNode).Ret.(*ObjectCallNode)
	assert.True(t, call.IsMethod)
	assert.False(t, call.Static)
	assert.Equal(t, "format", call.Member)
	assert.Len(t, call.Args, 2)

	n, err = analyzeSource(t, a, `(host/new \DateTime "now")`)
	require.NoError(t, err)
	nn := n.(*NewNode)
	class, ok := nn.Class.(*HostClassNode)
	require.True(t, ok)
	assert.Equal(t, `\DateTime`, class.Name)
	require.Len(t, nn.Args, 1)
	assert.Equal(t, Expression, nn.Args[0].Env().Context())
}

func TestDumpIndent(t *testing.T) {
	a := newTestAnalyzer()
	n, err := analyzeSource(t, a, `(if 1 (do 2 3))`)
	require.NoError(t, err)
	var b strings.Builder
	require.NoError(t, DumpIndent(&b, n))
	assert.Equal(t, "(if <statement>\n  1\n  (do <statement>\n    2\n    3)\n  nil)\n", b.String())
}
