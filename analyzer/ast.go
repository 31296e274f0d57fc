// Copyright © 2024 The ELPS authors

package analyzer

import (
	"github.com/luthersystems/elpsc/syntax"
)

// Node is an analyzed expression.  Every node records the environment it was
// analyzed under so that an emitter can choose between value and statement
// emission and lower recur frames.
type Node interface {
	Env() *Env
	Span() syntax.Span
}

type node struct {
	env  *Env
	span syntax.Span
}

func (n *node) Env() *Env         { return n.env }
func (n *node) Span() syntax.Span { return n.span }

func newNode(env *Env, sp syntax.Span) node {
	return node{env: env, span: sp}
}

// LiteralNode is a self-evaluating value.
type LiteralNode struct {
	node
	Value syntax.Value
}

// VectorNode constructs a persistent vector.
type VectorNode struct {
	node
	Elems []Node
}

// ArrayNode constructs a host array.
type ArrayNode struct {
	node
	Elems []Node
}

// SetNode constructs a persistent set.
type SetNode struct {
	node
	Elems []Node
}

// TableEntry is a key-value pair of a TableNode.
type TableEntry struct {
	Key   Node
	Value Node
}

// TableNode constructs a map.  Mutable tables are host tables written @{...}.
type TableNode struct {
	node
	Entries []TableEntry
	Mutable bool
}

// GlobalVarNode references a global binding.
type GlobalVarNode struct {
	node
	Binding *Binding
}

// LocalVarNode references a local binding.
type LocalVarNode struct {
	node
	Local *Local
}

// HostVarNode references a global of the host runtime.
type HostVarNode struct {
	node
	Name string
}

// HostClassNode references a host class.
type HostClassNode struct {
	node
	Name string
}

// DefNode defines a global binding.
type DefNode struct {
	node
	Binding *Binding
	Init    Node
}

// RequireClause is a (:require ...) clause of an ns form.
type RequireClause struct {
	Namespace string
	Alias     string
	Refers    []string
}

// UseClause is a (:use ...) clause of an ns form.
type UseClause struct {
	Class string
	Alias string
}

// NsNode declares the current namespace.
type NsNode struct {
	node
	Name     string
	Requires []RequireClause
	Uses     []UseClause
}

// FnNode is a function literal.  Params is the flat parameter list; with
// Variadic set the last parameter receives the remaining arguments.
type FnNode struct {
	node
	Params   []*syntax.Symbol
	Variadic bool
	Body     Node
	// Uses are the outer locals visible to the function body.
	Uses  []*Local
	Frame *RecurFrame
}

// QuoteNode returns its value unevaluated.
type QuoteNode struct {
	node
	Value syntax.Value
}

// DoNode evaluates Stmts for effect and then Ret.
type DoNode struct {
	node
	Stmts []Node
	Ret   Node
}

// IfNode is a conditional.
type IfNode struct {
	node
	Test Node
	Then Node
	Else Node
}

// ApplyNode calls Fn with Args, the last of which is spread.
type ApplyNode struct {
	node
	Fn   Node
	Args []Node
}

// BindingNode binds Symbol to the value of Init.
type BindingNode struct {
	node
	Symbol *syntax.Symbol
	Shadow *syntax.Symbol
	Init   Node
}

// LetNode binds locals sequentially and evaluates Body.
type LetNode struct {
	node
	Bindings []*BindingNode
	Body     Node
}

// LoopNode is a let whose body may recur to the loop head.
type LoopNode struct {
	node
	Bindings []*BindingNode
	Body     Node
	Frame    *RecurFrame
}

// RecurNode rebinds the parameters of Frame and jumps to its head.
type RecurNode struct {
	node
	Frame *RecurFrame
	Args  []Node
}

// CatchNode handles host exceptions of class Class bound to Var.
type CatchNode struct {
	node
	Class *HostClassNode
	Var   *syntax.Symbol
	Body  Node
}

// TryNode evaluates Body with exception handlers.  Finally is nil when
// absent.
type TryNode struct {
	node
	Body    Node
	Catches []*CatchNode
	Finally Node
}

// ThrowNode raises a host exception.
type ThrowNode struct {
	node
	Exception Node
}

// ForeachNode iterates Coll evaluating Body for effect.  Key is nil when
// the loop binds values only.
type ForeachNode struct {
	node
	Key   *syntax.Symbol
	Value *syntax.Symbol
	Coll  Node
	Body  Node
}

// DefStructNode declares a struct type.
type DefStructNode struct {
	node
	Binding *Binding
	Fields  []*syntax.Symbol
}

// CallNode invokes Fn with Args.
type CallNode struct {
	node
	Fn   Node
	Args []Node
}

// NewNode instantiates a host class.
type NewNode struct {
	node
	Class Node
	Args  []Node
}

// ObjectCallNode reads a property or calls a method of a host object or
// class.  Static members are accessed through a class.
type ObjectCallNode struct {
	node
	Target   Node
	Static   bool
	IsMethod bool
	Member   string
	Args     []Node
}

// ArrayGetNode reads an element of a host array.
type ArrayGetNode struct {
	node
	Array Node
	Index Node
}

// ArraySetNode writes an element of a host array.
type ArraySetNode struct {
	node
	Array Node
	Index Node
	Value Node
}

// ArrayPushNode appends to a host array.
type ArrayPushNode struct {
	node
	Array Node
	Value Node
}

// ArrayUnsetNode removes an element of a host array.
type ArrayUnsetNode struct {
	node
	Array Node
	Index Node
}
