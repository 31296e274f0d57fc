// Copyright © 2024 The ELPS authors

package corelib

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/elpsc/analyzer"
	"github.com/luthersystems/elpsc/parser/rdparser"
	"github.com/luthersystems/elpsc/syntax"
)

func read(t *testing.T, src string) syntax.Value {
	t.Helper()
	vs, err := rdparser.NewReader().Read("test", strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, vs, 1)
	return vs[0]
}

func newAnalyzer() *analyzer.Analyzer {
	reg := analyzer.NewRegistry()
	Install(reg)
	return analyzer.New(reg, analyzer.WithSymbolGenerator(&syntax.Counter{}))
}

func TestInstall(t *testing.T) {
	reg := analyzer.NewRegistry()
	Install(reg)
	for _, b := range Builtins() {
		binding, ok := reg.Lookup(analyzer.CoreNamespace, b.Name)
		if !assert.True(t, ok, b.Name) {
			continue
		}
		assert.Equal(t, b.IsMacro, binding.IsMacro(), b.Name)
		if b.IsMacro {
			assert.NotNil(t, binding.Macro(), b.Name)
		}
		doc, ok := binding.Meta.Get(syntax.Keyword("doc"))
		require.True(t, ok, b.Name)
		assert.NotContains(t, doc.String(), "\n", b.Name)
		assert.NotEmpty(t, b.Usage, b.Name)
	}
}

func TestMacroExpand(t *testing.T) {
	tests := []struct {
		name string
		src  string
		exp  string
	}{
		{"defn", `(defn f [x] x)`, `(def f (fn [x] x))`},
		{"defn doc", `(defn f "doc" [x] (inc x) x)`, `(def f "doc" (fn [x] (inc x) x))`},
		{"when", `(when a b c)`, `(if a (do b c))`},
		{"when-not", `(when-not a b)`, `(if a nil (do b))`},
		{"if-not", `(if-not a b)`, `(if a nil b)`},
		{"if-not else", `(if-not a b c)`, `(if a c b)`},
		{"cond", `(cond a 1 :else 2)`, `(if a 1 (if :else 2 nil))`},
		{"empty cond", `(cond)`, `nil`},
		{"thread first", `(-> x (f 1) g)`, `(g (f x 1))`},
		{"thread last", `(->> x (f 1) g)`, `(g (f 1 x))`},
		{"and", `(and)`, `true`},
		{"and one", `(and a)`, `a`},
		{"and", `(and a b)`, `(let [and__gen_1 a] (if and__gen_1 b and__gen_1))`},
		{"or", `(or)`, `nil`},
		{"or", `(or a b)`, `(let [or__gen_1 a] (if or__gen_1 or__gen_1 b))`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			a := newAnalyzer()
			v, ok, err := a.MacroExpand1(read(t, test.src), analyzer.EmptyEnv("user"))
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, test.exp, v.String())
		})
	}
}

func TestMacroExpand_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"defn name", `(defn "f" [x] x)`, `first argument is not a symbol: "f"`},
		{"defn params", `(defn f x)`, `parameters of f are not a vector: x`},
		{"defn arity", `(defn f)`, `defn requires a name and a parameter vector`},
		{"defn doc only", `(defn f "doc")`, `defn requires a parameter vector`},
		{"when", `(when)`, `when requires a test`},
		{"if-not", `(if-not a)`, `if-not requires two or three arguments, got 1`},
		{"cond", `(cond a)`, `cond requires an even number of forms`},
		{"thread", `(-> x ())`, `cannot thread through an empty list`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			a := newAnalyzer()
			_, _, err := a.MacroExpand1(read(t, test.src), analyzer.EmptyEnv("user"))
			require.Error(t, err)
			assert.ErrorIs(t, err, analyzer.ErrMacroExpansion)
			assert.Contains(t, err.Error(), test.msg)
			assert.Contains(t, err.Error(), "test:1:1")
		})
	}
}

func TestAnalyzeWithCore(t *testing.T) {
	a := newAnalyzer()
	n, err := a.Analyze(read(t, `(defn f [x] (when (< x 10) (recur (inc x))))`), analyzer.EmptyEnv("user"))
	require.NoError(t, err)
	def, ok := n.(*analyzer.DefNode)
	require.True(t, ok)
	assert.Equal(t, "user/f", def.Binding.FullName())
	fn := def.Init.(*analyzer.FnNode)
	assert.True(t, fn.Frame.Active())
	assert.Equal(t, "test:1:1", def.Span().Start.String())

	n, err = a.Analyze(read(t, `(let [[a b] [1 2]] (and a b))`), analyzer.EmptyEnv("user"))
	require.NoError(t, err)
	_, ok = n.(*analyzer.LetNode)
	assert.True(t, ok)

	// A local binding shadows a core macro.
	n, err = a.Analyze(read(t, `(fn [when] (when 1 2))`), analyzer.EmptyEnv("user"))
	require.NoError(t, err)
	_, ok = n.(*analyzer.FnNode).Body.(*analyzer.DoNode).Ret.(*analyzer.CallNode)
	assert.True(t, ok)
}
