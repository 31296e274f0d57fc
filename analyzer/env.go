// Copyright © 2024 The ELPS authors

package analyzer

import (
	"sort"

	"github.com/luthersystems/elpsc/syntax"
)

// Context describes how the value of an expression is consumed.
type Context uint8

const (
	// Statement expressions are evaluated for effect only.
	Statement Context = iota
	// Expression values are consumed by an enclosing expression.
	Expression
	// Return values are returned from the enclosing function.
	Return
)

func (c Context) String() string {
	switch c {
	case Statement:
		return "statement"
	case Expression:
		return "expression"
	case Return:
		return "return"
	default:
		return "unknown"
	}
}

// RecurFrame describes the nearest loop or function that can receive a
// recur.  A frame is created by the fn or loop form that owns it and is
// marked active when a recur targets it.
type RecurFrame struct {
	Params []*syntax.Symbol
	IsLoop bool
	active bool
}

// Active returns true if some recur form targets f.
func (f *RecurFrame) Active() bool {
	return f != nil && f.active
}

// FnArity records the parameters of the function being analyzed.
type FnArity struct {
	Params   int
	Variadic bool
}

// Local is a lexically bound symbol.  Shadow is the generated name an emitter
// should use when the binding shadows another binding of the same name.
type Local struct {
	Symbol *syntax.Symbol
	Shadow *syntax.Symbol
}

// scope is one immutable layer of local bindings.
type scope struct {
	parent *scope
	locals map[string]*Local
}

func (s *scope) lookup(name string) (*Local, bool) {
	for ; s != nil; s = s.parent {
		if l, ok := s.locals[name]; ok {
			return l, true
		}
	}
	return nil, false
}

// Env is the immutable context threaded through analysis.  Methods named
// With* return a modified copy and leave the receiver untouched.
type Env struct {
	ns            string
	locals        *scope
	context       Context
	frame         *RecurFrame
	disallowRecur bool
	arity         *FnArity
	macroDepth    int
	// form is the span of the nearest enclosing located form.
	form syntax.Span
}

// EmptyEnv returns the environment for a top-level form of namespace ns.
func EmptyEnv(ns string) *Env {
	return &Env{ns: ns, context: Statement}
}

func (e *Env) copy() *Env {
	cp := *e
	return &cp
}

// Namespace returns the current namespace.
func (e *Env) Namespace() string { return e.ns }

// WithNamespace returns a copy of e in namespace ns.
func (e *Env) WithNamespace(ns string) *Env {
	cp := e.copy()
	cp.ns = ns
	return cp
}

// Context returns the evaluation context of e.
func (e *Env) Context() Context { return e.context }

// WithContext returns a copy of e with context c.
func (e *Env) WithContext(c Context) *Env {
	if e.context == c {
		return e
	}
	cp := e.copy()
	cp.context = c
	return cp
}

// Operand returns the environment for operands and other non-tail
// subexpressions: Expression context with recursion disallowed.
func (e *Env) Operand() *Env {
	if e.context == Expression && e.disallowRecur {
		return e
	}
	cp := e.copy()
	cp.context = Expression
	cp.disallowRecur = true
	return cp
}

// Local returns the innermost local binding of name.
func (e *Env) Local(name string) (*Local, bool) {
	return e.locals.lookup(name)
}

// IsLocal returns true if sym is an unqualified symbol bound locally.
func (e *Env) IsLocal(sym *syntax.Symbol) bool {
	if sym.Namespace() != "" {
		return false
	}
	_, ok := e.Local(sym.Name())
	return ok
}

// Locals returns the visible local bindings sorted by name.
func (e *Env) Locals() []*Local {
	seen := make(map[string]bool)
	var locals []*Local
	for s := e.locals; s != nil; s = s.parent {
		for name, l := range s.locals {
			if seen[name] {
				continue
			}
			seen[name] = true
			locals = append(locals, l)
		}
	}
	sort.Slice(locals, func(i, j int) bool {
		return locals[i].Symbol.Name() < locals[j].Symbol.Name()
	})
	return locals
}

// WithLocals returns a copy of e in which syms are bound, shadowing any outer
// bindings of the same names.
func (e *Env) WithLocals(syms ...*syntax.Symbol) *Env {
	if len(syms) == 0 {
		return e
	}
	layer := &scope{parent: e.locals, locals: make(map[string]*Local, len(syms))}
	for _, sym := range syms {
		layer.locals[sym.Name()] = &Local{Symbol: sym}
	}
	cp := e.copy()
	cp.locals = layer
	return cp
}

// WithShadowedLocal returns a copy of e in which sym is bound and emitted
// under the name shadow.
func (e *Env) WithShadowedLocal(sym, shadow *syntax.Symbol) *Env {
	layer := &scope{
		parent: e.locals,
		locals: map[string]*Local{sym.Name(): {Symbol: sym, Shadow: shadow}},
	}
	cp := e.copy()
	cp.locals = layer
	return cp
}

// RecurFrame returns the active recur frame, or nil.
func (e *Env) RecurFrame() *RecurFrame { return e.frame }

// WithRecurFrame returns a copy of e targeting frame.  Recursion is allowed
// again at a frame boundary.
func (e *Env) WithRecurFrame(frame *RecurFrame) *Env {
	cp := e.copy()
	cp.frame = frame
	cp.disallowRecur = false
	return cp
}

// DisallowRecur returns true if recur is illegal in e regardless of the
// active frame.
func (e *Env) DisallowRecur() bool { return e.disallowRecur }

// WithDisallowRecur returns a copy of e with the recursion flag set to b.
func (e *Env) WithDisallowRecur(b bool) *Env {
	if e.disallowRecur == b {
		return e
	}
	cp := e.copy()
	cp.disallowRecur = b
	return cp
}

// FnArity returns the arity of the enclosing function, or nil.
func (e *Env) FnArity() *FnArity { return e.arity }

// WithFnArity returns a copy of e inside a function of the given arity.
func (e *Env) WithFnArity(arity *FnArity) *Env {
	cp := e.copy()
	cp.arity = arity
	return cp
}

func (e *Env) withMacroDepth(depth int) *Env {
	cp := e.copy()
	cp.macroDepth = depth
	return cp
}

func (e *Env) withForm(sp syntax.Span) *Env {
	if e.form == sp {
		return e
	}
	cp := e.copy()
	cp.form = sp
	return cp
}
