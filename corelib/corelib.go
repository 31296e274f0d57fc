// Copyright © 2024 The ELPS authors

// Package corelib declares the bindings of the core namespace.  Core macros
// are implemented in Go and expand during analysis.  Core functions are
// declared so that code referring to them, including the code generated by
// destructuring, resolves.
package corelib

import (
	"strings"

	"github.com/luthersystems/elpsc/analyzer"
	"github.com/luthersystems/elpsc/syntax"
)

// Builtin documents a binding of the core namespace.
type Builtin struct {
	Name    string
	Usage   string
	Doc     string
	IsMacro bool
}

type coreMacro struct {
	name  string
	usage string
	fn    analyzer.MacroFunc
	doc   string
}

type coreFunction struct {
	name  string
	usage string
	doc   string
}

var coreFunctions = []*coreFunction{
	{"first", "(first coll)",
		`Returns the first element of coll or nil when coll is empty.`},
	{"next", "(next coll)",
		`Returns the elements of coll after the first or nil when there are
		none.`},
	{"rest", "(rest coll)",
		`Returns the elements of coll after the first.  The result is empty,
		never nil, when there are none.`},
	{"get", "(get coll key [default])",
		`Returns the value mapped to key in a map or table, or the element at
		index key of a vector.  Returns default, or nil, when key is missing.`},
	{"cons", "(cons x coll)",
		`Returns a sequence with x prepended to coll.`},
	{"concat", "(concat coll ...)",
		`Returns the elements of each coll in order.`},
	{"count", "(count coll)",
		`Returns the number of elements in coll.`},
	{"nil?", "(nil? x)",
		`Returns true if x is nil.`},
	{"not", "(not x)",
		`Returns true if x is falsey.`},
	{"=", "(= x y ...)",
		`Returns true if all arguments are equal.`},
	{"<", "(< x y ...)",
		`Returns true if the arguments are in strictly increasing order.`},
	{">", "(> x y ...)",
		`Returns true if the arguments are in strictly decreasing order.`},
	{"<=", "(<= x y ...)",
		`Returns true if the arguments are in nondecreasing order.`},
	{">=", "(>= x y ...)",
		`Returns true if the arguments are in nonincreasing order.`},
	{"+", "(+ x ...)",
		`Returns the sum of the arguments.`},
	{"-", "(- x ...)",
		`Subtracts the remaining arguments from x.  With one argument returns
		its negation.`},
	{"*", "(* x ...)",
		`Returns the product of the arguments.`},
	{"/", "(/ x ...)",
		`Divides x by the remaining arguments.`},
	{"inc", "(inc x)",
		`Returns x plus one.`},
	{"dec", "(dec x)",
		`Returns x minus one.`},
	{"str", "(str x ...)",
		`Concatenates the string representations of the arguments.`},
	{"print", "(print x ...)",
		`Prints the arguments.`},
	{"println", "(println x ...)",
		`Prints the arguments followed by a newline.`},
	{"vector", "(vector x ...)",
		`Returns a vector of the arguments.`},
	{"list", "(list x ...)",
		`Returns a list of the arguments.`},
	{"hash-map", "(hash-map key value ...)",
		`Returns a map of the key-value pairs given as arguments.`},
	{"gensym", "(gensym)",
		`Returns a fresh symbol.`},
}

// Install declares the core functions and macros in reg.
func Install(reg *analyzer.Registry) {
	for _, fn := range coreFunctions {
		reg.Define(analyzer.CoreNamespace, fn.name, docMeta(fn.doc, false), syntax.Span{})
	}
	for _, m := range coreMacros {
		reg.Define(analyzer.CoreNamespace, m.name, docMeta(m.doc, true), syntax.Span{})
		reg.BindMacro(analyzer.CoreNamespace, m.name, m.fn)
	}
}

// Builtins returns the documentation of the core bindings, functions first.
func Builtins() []Builtin {
	bs := make([]Builtin, 0, len(coreFunctions)+len(coreMacros))
	for _, fn := range coreFunctions {
		bs = append(bs, Builtin{Name: fn.name, Usage: fn.usage, Doc: normalizeDoc(fn.doc)})
	}
	for _, m := range coreMacros {
		bs = append(bs, Builtin{Name: m.name, Usage: m.usage, Doc: normalizeDoc(m.doc), IsMacro: true})
	}
	return bs
}

func docMeta(doc string, macro bool) *syntax.Map {
	entries := []syntax.Entry{{Key: syntax.Keyword("doc"), Value: syntax.String(normalizeDoc(doc))}}
	if macro {
		entries = append(entries, syntax.Entry{Key: syntax.Keyword("macro"), Value: syntax.Bool(true)})
	}
	return syntax.NewMap(entries...)
}

// normalizeDoc joins the indented continuation lines of a docstring.
func normalizeDoc(doc string) string {
	lines := strings.Split(doc, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.Join(lines, " ")
}
