// Copyright © 2024 The ELPS authors

package analyzer

import (
	"sort"
	"sync"

	"github.com/google/btree"

	"github.com/luthersystems/elpsc/syntax"
)

// Namespaces with special meaning to symbol resolution.
const (
	// CoreNamespace is searched for unqualified symbols after the current
	// namespace and its referred symbols.
	CoreNamespace = "core"
	// HostNamespace qualifies references to host runtime globals and the
	// host interop special forms.
	HostNamespace = "host"
)

// Macro is the compile-time implementation of a macro binding.  Expand
// receives the unevaluated arguments of a call and returns the syntax to
// analyze in place of the call.
type Macro interface {
	Expand(x *Expansion, args []syntax.Value) (syntax.Value, error)
}

// MacroFunc implements Macro.
type MacroFunc func(x *Expansion, args []syntax.Value) (syntax.Value, error)

// Expand implements Macro.
func (fn MacroFunc) Expand(x *Expansion, args []syntax.Value) (syntax.Value, error) {
	return fn(x, args)
}

// Binding is a global definition.
type Binding struct {
	Namespace string
	Name      string
	Meta      *syntax.Map
	Span      syntax.Span
	// Fields is non-nil for bindings introduced by defstruct.
	Fields []*syntax.Symbol

	isMacro bool
	macro   Macro
}

// FullName returns "ns/name".
func (b *Binding) FullName() string {
	return b.Namespace + "/" + b.Name
}

// IsMacro returns true if b was declared as a macro.
func (b *Binding) IsMacro() bool { return b.isMacro }

// Macro returns the implementation of a macro binding.  A macro that was
// declared but never given an implementation returns nil.
func (b *Binding) Macro() Macro { return b.macro }

func bindingLess(a, b *Binding) bool {
	if a.Namespace != b.Namespace {
		return a.Namespace < b.Namespace
	}
	return a.Name < b.Name
}

type nsInfo struct {
	aliases map[string]string
	refers  map[string]string
	uses    map[string]string
}

func newNSInfo() *nsInfo {
	return &nsInfo{
		aliases: make(map[string]string),
		refers:  make(map[string]string),
		uses:    make(map[string]string),
	}
}

// Registry holds the global bindings and namespace declarations shared by
// the analyses of a compilation.  A Registry is safe for concurrent use;
// reads proceed in parallel while writes are serialized.
type Registry struct {
	mut        sync.RWMutex
	globals    *btree.BTreeG[*Binding]
	namespaces map[string]*nsInfo
	current    string
}

// NewRegistry returns an empty registry whose current namespace is "user".
func NewRegistry() *Registry {
	return &Registry{
		globals:    btree.NewG(16, bindingLess),
		namespaces: make(map[string]*nsInfo),
		current:    "user",
	}
}

// CurrentNamespace returns the namespace most recently declared by an ns
// form.
func (r *Registry) CurrentNamespace() string {
	r.mut.RLock()
	defer r.mut.RUnlock()
	return r.current
}

// SetNamespace sets the current namespace.
func (r *Registry) SetNamespace(ns string) {
	r.mut.Lock()
	defer r.mut.Unlock()
	r.current = ns
	r.namespace(ns)
}

// namespace must be called with the write lock held.
func (r *Registry) namespace(ns string) *nsInfo {
	info, ok := r.namespaces[ns]
	if !ok {
		info = newNSInfo()
		r.namespaces[ns] = info
	}
	return info
}

// Define declares ns/name, replacing any previous declaration.  Meta entry
// :macro true declares a macro binding.  A redefinition keeps a macro
// implementation that was already bound.
func (r *Registry) Define(ns, name string, meta *syntax.Map, sp syntax.Span) *Binding {
	b := &Binding{
		Namespace: ns,
		Name:      name,
		Meta:      meta,
		Span:      sp,
		isMacro:   isMacroMeta(meta),
	}
	r.mut.Lock()
	defer r.mut.Unlock()
	if old, ok := r.globals.Get(b); ok && b.isMacro {
		b.macro = old.macro
	}
	r.globals.ReplaceOrInsert(b)
	return b
}

// DefineStruct declares a struct type ns/name with the given fields.
func (r *Registry) DefineStruct(ns, name string, fields []*syntax.Symbol, sp syntax.Span) *Binding {
	b := &Binding{
		Namespace: ns,
		Name:      name,
		Span:      sp,
		Fields:    fields,
	}
	r.mut.Lock()
	defer r.mut.Unlock()
	r.globals.ReplaceOrInsert(b)
	return b
}

// BindMacro declares ns/name as a macro implemented by m.
func (r *Registry) BindMacro(ns, name string, m Macro) *Binding {
	r.mut.Lock()
	defer r.mut.Unlock()
	b := &Binding{Namespace: ns, Name: name}
	if old, ok := r.globals.Get(b); ok {
		cp := *old
		b = &cp
	}
	b.isMacro = true
	b.macro = m
	r.globals.ReplaceOrInsert(b)
	return b
}

// Lookup returns the binding of ns/name.
func (r *Registry) Lookup(ns, name string) (*Binding, bool) {
	r.mut.RLock()
	defer r.mut.RUnlock()
	return r.globals.Get(&Binding{Namespace: ns, Name: name})
}

// Bindings returns the bindings of namespace ns ordered by name.
func (r *Registry) Bindings(ns string) []*Binding {
	r.mut.RLock()
	defer r.mut.RUnlock()
	var bs []*Binding
	r.globals.AscendGreaterOrEqual(&Binding{Namespace: ns}, func(b *Binding) bool {
		if b.Namespace != ns {
			return false
		}
		bs = append(bs, b)
		return true
	})
	return bs
}

// AddAlias makes alias refer to namespace target within ns.
func (r *Registry) AddAlias(ns, alias, target string) {
	r.mut.Lock()
	defer r.mut.Unlock()
	r.namespace(ns).aliases[alias] = target
}

// ResolveAlias returns the namespace that alias refers to within ns.
func (r *Registry) ResolveAlias(ns, alias string) (string, bool) {
	r.mut.RLock()
	defer r.mut.RUnlock()
	info, ok := r.namespaces[ns]
	if !ok {
		return "", false
	}
	target, ok := info.aliases[alias]
	return target, ok
}

// AddRefer makes the unqualified symbol name within ns refer to
// target/name.
func (r *Registry) AddRefer(ns, name, target string) {
	r.mut.Lock()
	defer r.mut.Unlock()
	r.namespace(ns).refers[name] = target
}

// ResolveRefer returns the namespace that name was referred from within ns.
func (r *Registry) ResolveRefer(ns, name string) (string, bool) {
	r.mut.RLock()
	defer r.mut.RUnlock()
	info, ok := r.namespaces[ns]
	if !ok {
		return "", false
	}
	target, ok := info.refers[name]
	return target, ok
}

// AddUse makes alias name the host class class within ns.
func (r *Registry) AddUse(ns, alias, class string) {
	r.mut.Lock()
	defer r.mut.Unlock()
	r.namespace(ns).uses[alias] = class
}

// ResolveUse returns the host class named by alias within ns.
func (r *Registry) ResolveUse(ns, alias string) (string, bool) {
	r.mut.RLock()
	defer r.mut.RUnlock()
	info, ok := r.namespaces[ns]
	if !ok {
		return "", false
	}
	class, ok := info.uses[alias]
	return class, ok
}

func isMacroMeta(meta *syntax.Map) bool {
	if meta == nil {
		return false
	}
	v, ok := meta.Get(syntax.Keyword("macro"))
	if !ok {
		return false
	}
	lit, ok := v.(*syntax.Literal)
	return ok && lit.LitKind() == syntax.LitBool && lit.BoolValue()
}

// Namespaces returns the names of every namespace that holds a binding or a
// declaration, in sorted order.
func (r *Registry) Namespaces() []string {
	r.mut.RLock()
	defer r.mut.RUnlock()
	seen := make(map[string]bool, len(r.namespaces))
	var names []string
	for ns := range r.namespaces {
		seen[ns] = true
		names = append(names, ns)
	}
	r.globals.Ascend(func(b *Binding) bool {
		if !seen[b.Namespace] {
			seen[b.Namespace] = true
			names = append(names, b.Namespace)
		}
		return true
	})
	sort.Strings(names)
	return names
}

// Aliases returns a copy of the namespace aliases declared within ns.
func (r *Registry) Aliases(ns string) map[string]string {
	r.mut.RLock()
	defer r.mut.RUnlock()
	aliases := make(map[string]string)
	if info, ok := r.namespaces[ns]; ok {
		for k, v := range info.aliases {
			aliases[k] = v
		}
	}
	return aliases
}
