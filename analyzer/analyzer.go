// Copyright © 2024 The ELPS authors

// Package analyzer lowers syntax values into an AST.  The analyzer resolves
// special forms, expands macros, tracks lexical scope and the legality of
// tail recursion, and flattens destructuring bindings.
package analyzer

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/luthersystems/elpsc/syntax"
)

// DefaultMaxMacroDepth bounds the nesting of macro expansions.
const DefaultMaxMacroDepth = 256

// Analyzer lowers syntax values into nodes.  An Analyzer is not safe for
// concurrent use but several analyzers may share a Registry.
type Analyzer struct {
	reg           *Registry
	gen           syntax.SymbolGenerator
	binder        *Binder
	maxMacroDepth int
	log           logrus.FieldLogger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithSymbolGenerator makes the analyzer name temporaries with gen.
func WithSymbolGenerator(gen syntax.SymbolGenerator) Option {
	return func(a *Analyzer) {
		a.gen = gen
	}
}

// WithMaxMacroDepth bounds the nesting of macro expansions.
func WithMaxMacroDepth(n int) Option {
	return func(a *Analyzer) {
		a.maxMacroDepth = n
	}
}

// WithLogger sets the logger used to trace macro expansion.
func WithLogger(log logrus.FieldLogger) Option {
	return func(a *Analyzer) {
		a.log = log
	}
}

// New returns an Analyzer that resolves globals in reg.
func New(reg *Registry, opts ...Option) *Analyzer {
	a := &Analyzer{
		reg:           reg,
		maxMacroDepth: DefaultMaxMacroDepth,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.gen == nil {
		a.gen = &syntax.Counter{}
	}
	if a.log == nil {
		log := logrus.New()
		log.SetLevel(logrus.WarnLevel)
		a.log = log
	}
	a.binder = NewBinder(a.gen)
	return a
}

// Registry returns the registry of a.
func (a *Analyzer) Registry() *Registry { return a.reg }

// SymbolGenerator returns the generator used for temporaries.
func (a *Analyzer) SymbolGenerator() syntax.SymbolGenerator { return a.gen }

// Binder returns the destructuring binder of a.
func (a *Analyzer) Binder() *Binder { return a.binder }

// Analyze lowers v under env.  Analyzer errors are returned as *Error with a
// span taken from the nearest located form.
func (a *Analyzer) Analyze(v syntax.Value, env *Env) (Node, error) {
	sp := spanOf(v).Or(env.form)
	env = env.withForm(sp)
	n, err := a.analyze(v, env, sp)
	if err != nil {
		return nil, locate(err, sp)
	}
	return n, nil
}

func (a *Analyzer) analyze(v syntax.Value, env *Env, sp syntax.Span) (Node, error) {
	switch v := v.(type) {
	case *syntax.Literal:
		return &LiteralNode{newNode(env, sp), v}, nil
	case *syntax.Symbol:
		return a.analyzeSymbol(v, env, sp)
	case *syntax.Seq:
		switch {
		case v.IsForm():
			if v.Len() == 0 {
				return &LiteralNode{newNode(env, sp), v}, nil
			}
			return a.analyzeForm(v, env, sp)
		case v.SeqKind() == syntax.Array:
			elems, err := a.analyzeAll(v.Values(), env.Operand())
			if err != nil {
				return nil, err
			}
			return &ArrayNode{newNode(env, sp), elems}, nil
		default:
			elems, err := a.analyzeAll(v.Values(), env.Operand())
			if err != nil {
				return nil, err
			}
			return &VectorNode{newNode(env, sp), elems}, nil
		}
	case *syntax.Map:
		return a.analyzeTable(v, env, sp)
	case *syntax.Set:
		elems, err := a.analyzeAll(v.Values(), env.Operand())
		if err != nil {
			return nil, err
		}
		return &SetNode{newNode(env, sp), elems}, nil
	default:
		return nil, malformed(v, "cannot analyze %T", v)
	}
}

func (a *Analyzer) analyzeAll(vs []syntax.Value, env *Env) ([]Node, error) {
	nodes := make([]Node, len(vs))
	for i, v := range vs {
		n, err := a.Analyze(v, env)
		if err != nil {
			return nil, err
		}
		nodes[i] = n
	}
	return nodes, nil
}

func (a *Analyzer) analyzeTable(m *syntax.Map, env *Env, sp syntax.Span) (Node, error) {
	operand := env.Operand()
	entries := make([]TableEntry, 0, m.Len())
	for _, e := range m.Entries() {
		k, err := a.Analyze(e.Key, operand)
		if err != nil {
			return nil, err
		}
		v, err := a.Analyze(e.Value, operand)
		if err != nil {
			return nil, err
		}
		entries = append(entries, TableEntry{Key: k, Value: v})
	}
	return &TableNode{newNode(env, sp), entries, m.IsTable()}, nil
}

func (a *Analyzer) analyzeSymbol(sym *syntax.Symbol, env *Env, sp syntax.Span) (Node, error) {
	if sym.Namespace() == HostNamespace {
		return &HostVarNode{newNode(env, sp), sym.Name()}, nil
	}
	if sym.Namespace() == "" {
		if l, ok := env.Local(sym.Name()); ok {
			return &LocalVarNode{newNode(env, sp), l}, nil
		}
	}
	if b, ok := a.resolve(sym, env); ok {
		return &GlobalVarNode{newNode(env, sp), b}, nil
	}
	if class, ok := a.resolveClass(sym, env); ok {
		return &HostClassNode{newNode(env, sp), class}, nil
	}
	return nil, errorf(ErrUnresolvedSymbol, sp, "cannot resolve symbol '%s'", sym.FullName())
}

// resolve finds the global binding of sym.  Qualified symbols are resolved
// through the aliases of the current namespace.  Unqualified symbols are
// searched in the current namespace, the referred symbols and the core
// namespace.
func (a *Analyzer) resolve(sym *syntax.Symbol, env *Env) (*Binding, bool) {
	if ns := sym.Namespace(); ns != "" {
		if target, ok := a.reg.ResolveAlias(env.Namespace(), ns); ok {
			ns = target
		}
		return a.reg.Lookup(ns, sym.Name())
	}
	if b, ok := a.reg.Lookup(env.Namespace(), sym.Name()); ok {
		return b, true
	}
	if ns, ok := a.reg.ResolveRefer(env.Namespace(), sym.Name()); ok {
		if b, ok := a.reg.Lookup(ns, sym.Name()); ok {
			return b, true
		}
	}
	return a.reg.Lookup(CoreNamespace, sym.Name())
}

// resolveClass finds the host class named by sym, either through a use
// clause or because the name is a qualified host class name.
func (a *Analyzer) resolveClass(sym *syntax.Symbol, env *Env) (string, bool) {
	if sym.Namespace() != "" {
		return "", false
	}
	if class, ok := a.reg.ResolveUse(env.Namespace(), sym.Name()); ok {
		return class, true
	}
	if strings.Contains(sym.Name(), `\`) {
		return sym.Name(), true
	}
	return "", false
}

func (a *Analyzer) analyzeForm(form *syntax.Seq, env *Env, sp syntax.Span) (Node, error) {
	if head, ok := form.First().(*syntax.Symbol); ok {
		if f := FormOf(head); f != FormNone {
			return a.analyzeSpecial(f, form, env, sp)
		}
		if !env.IsLocal(head) {
			if b, ok := a.resolve(head, env); ok && b.IsMacro() {
				return a.analyzeMacro(form, b, env)
			}
		}
	}
	return a.analyzeCall(form, env, sp)
}

func (a *Analyzer) analyzeCall(form *syntax.Seq, env *Env, sp syntax.Span) (Node, error) {
	operand := env.Operand()
	fn, err := a.Analyze(form.First(), operand)
	if err != nil {
		return nil, err
	}
	args, err := a.analyzeAll(form.Rest().Values(), operand)
	if err != nil {
		return nil, err
	}
	return &CallNode{newNode(env, sp), fn, args}, nil
}

func (a *Analyzer) analyzeSpecial(f Form, form *syntax.Seq, env *Env, sp syntax.Span) (Node, error) {
	switch f {
	case FormDef:
		return a.analyzeDef(form, env, sp)
	case FormNs:
		return a.analyzeNs(form, env, sp)
	case FormFn:
		return a.analyzeFn(form, env, sp)
	case FormQuote:
		return a.analyzeQuote(form, env, sp)
	case FormDo:
		return a.analyzeDo(form, env, sp)
	case FormIf:
		return a.analyzeIf(form, env, sp)
	case FormApply:
		return a.analyzeApply(form, env, sp)
	case FormLet:
		return a.analyzeLet(form, env, sp)
	case FormLoop:
		return a.analyzeLoop(form, env, sp)
	case FormRecur:
		return a.analyzeRecur(form, env, sp)
	case FormTry:
		return a.analyzeTry(form, env, sp)
	case FormThrow:
		return a.analyzeThrow(form, env, sp)
	case FormForeach:
		return a.analyzeForeach(form, env, sp)
	case FormDefStruct:
		return a.analyzeDefStruct(form, env, sp)
	case FormHostNew:
		return a.analyzeHostNew(form, env, sp)
	case FormHostObject:
		return a.analyzeHostMember(form, env, sp, false)
	case FormHostStatic:
		return a.analyzeHostMember(form, env, sp, true)
	case FormHostAGet:
		return a.analyzeArrayGet(form, env, sp)
	case FormHostASet:
		return a.analyzeArraySet(form, env, sp)
	case FormHostAPush:
		return a.analyzeArrayPush(form, env, sp)
	case FormHostAUnset:
		return a.analyzeArrayUnset(form, env, sp)
	default:
		return nil, malformed(form, "unknown special form %v", f)
	}
}
