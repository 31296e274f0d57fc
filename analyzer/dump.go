// Copyright © 2024 The ELPS authors

package analyzer

import (
	"fmt"
	"io"
	"strings"
)

// Dump returns a readable s-expression rendering of n.
func Dump(n Node) string {
	var b strings.Builder
	d := &dumper{w: &b}
	d.node(n)
	return b.String()
}

// DumpIndent writes an indented rendering of n to w, one child node per
// line.
func DumpIndent(w io.Writer, n Node) error {
	d := &dumper{w: w, indent: true}
	d.node(n)
	if d.err == nil {
		_, d.err = io.WriteString(w, "\n")
	}
	return d.err
}

type dumper struct {
	w      io.Writer
	indent bool
	depth  int
	err    error
}

func (d *dumper) printf(format string, v ...interface{}) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, format, v...)
}

func (d *dumper) open(name string, ctx Context) {
	d.printf("(%s", name)
	if d.indent {
		d.printf(" <%v>", ctx)
	}
	d.depth++
}

func (d *dumper) close() {
	d.depth--
	d.printf(")")
}

func (d *dumper) sep() {
	if d.indent {
		d.printf("\n%s", strings.Repeat("  ", d.depth))
		return
	}
	d.printf(" ")
}

func (d *dumper) children(ns []Node) {
	for _, n := range ns {
		d.sep()
		d.node(n)
	}
}

func (d *dumper) bindings(bs []*BindingNode) {
	d.sep()
	d.printf("[")
	for i, b := range bs {
		if i > 0 {
			d.sep()
		}
		d.printf("%s ", b.Symbol)
		d.node(b.Init)
	}
	d.printf("]")
}

func (d *dumper) node(n Node) {
	if n == nil {
		d.printf("<nil>")
		return
	}
	ctx := n.Env().Context()
	switch n := n.(type) {
	case *LiteralNode:
		d.printf("%v", n.Value)
	case *QuoteNode:
		d.printf("'%v", n.Value)
	case *LocalVarNode:
		d.printf("%s", n.Local.Symbol)
	case *GlobalVarNode:
		d.printf("%s", n.Binding.FullName())
	case *HostVarNode:
		d.printf("host/%s", n.Name)
	case *HostClassNode:
		d.printf("%s", n.Name)
	case *VectorNode:
		d.open("vector", ctx)
		d.children(n.Elems)
		d.close()
	case *ArrayNode:
		d.open("array", ctx)
		d.children(n.Elems)
		d.close()
	case *SetNode:
		d.open("set", ctx)
		d.children(n.Elems)
		d.close()
	case *TableNode:
		if n.Mutable {
			d.open("table", ctx)
		} else {
			d.open("map", ctx)
		}
		for _, e := range n.Entries {
			d.children([]Node{e.Key, e.Value})
		}
		d.close()
	case *DefNode:
		d.open("def", ctx)
		d.printf(" %s", n.Binding.FullName())
		d.children([]Node{n.Init})
		d.close()
	case *NsNode:
		d.open("ns", ctx)
		d.printf(" %s", n.Name)
		for _, r := range n.Requires {
			d.sep()
			d.printf("(:require %s :as %s", r.Namespace, r.Alias)
			if len(r.Refers) > 0 {
				d.printf(" :refer [%s]", strings.Join(r.Refers, " "))
			}
			d.printf(")")
		}
		for _, u := range n.Uses {
			d.sep()
			d.printf("(:use %s :as %s)", u.Class, u.Alias)
		}
		d.close()
	case *FnNode:
		d.open("fn", ctx)
		params := make([]string, len(n.Params))
		for i, p := range n.Params {
			params[i] = p.String()
		}
		if n.Variadic {
			params = append(params[:len(params)-1], "&", params[len(params)-1])
		}
		d.printf(" [%s]", strings.Join(params, " "))
		d.children([]Node{n.Body})
		d.close()
	case *DoNode:
		d.open("do", ctx)
		d.children(n.Stmts)
		d.children([]Node{n.Ret})
		d.close()
	case *IfNode:
		d.open("if", ctx)
		d.children([]Node{n.Test, n.Then, n.Else})
		d.close()
	case *ApplyNode:
		d.open("apply", ctx)
		d.children([]Node{n.Fn})
		d.children(n.Args)
		d.close()
	case *LetNode:
		d.open("let", ctx)
		d.bindings(n.Bindings)
		d.children([]Node{n.Body})
		d.close()
	case *LoopNode:
		d.open("loop", ctx)
		d.bindings(n.Bindings)
		d.children([]Node{n.Body})
		d.close()
	case *RecurNode:
		d.open("recur", ctx)
		d.children(n.Args)
		d.close()
	case *TryNode:
		d.open("try", ctx)
		d.children([]Node{n.Body})
		for _, c := range n.Catches {
			d.sep()
			d.open("catch", c.Env().Context())
			d.printf(" %s %s", c.Class.Name, c.Var)
			d.children([]Node{c.Body})
			d.close()
		}
		if n.Finally != nil {
			d.sep()
			d.open("finally", n.Finally.Env().Context())
			d.children([]Node{n.Finally})
			d.close()
		}
		d.close()
	case *ThrowNode:
		d.open("throw", ctx)
		d.children([]Node{n.Exception})
		d.close()
	case *ForeachNode:
		d.open("foreach", ctx)
		if n.Key != nil {
			d.printf(" [%s %s]", n.Key, n.Value)
		} else {
			d.printf(" [%s]", n.Value)
		}
		d.children([]Node{n.Coll, n.Body})
		d.close()
	case *DefStructNode:
		d.open("defstruct", ctx)
		fields := make([]string, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = f.String()
		}
		d.printf(" %s [%s]", n.Binding.FullName(), strings.Join(fields, " "))
		d.close()
	case *CallNode:
		d.open("call", ctx)
		d.children([]Node{n.Fn})
		d.children(n.Args)
		d.close()
	case *NewNode:
		d.open("host/new", ctx)
		d.children([]Node{n.Class})
		d.children(n.Args)
		d.close()
	case *ObjectCallNode:
		op := "host/->"
		if n.Static {
			op = "host/::"
		}
		d.open(op, ctx)
		d.children([]Node{n.Target})
		d.sep()
		if n.IsMethod {
			d.printf("(%s", n.Member)
			d.children(n.Args)
			d.printf(")")
		} else {
			d.printf("%s", n.Member)
		}
		d.close()
	case *ArrayGetNode:
		d.open("host/aget", ctx)
		d.children([]Node{n.Array, n.Index})
		d.close()
	case *ArraySetNode:
		d.open("host/aset", ctx)
		d.children([]Node{n.Array, n.Index, n.Value})
		d.close()
	case *ArrayPushNode:
		d.open("host/apush", ctx)
		d.children([]Node{n.Array, n.Value})
		d.close()
	case *ArrayUnsetNode:
		d.open("host/aunset", ctx)
		d.children([]Node{n.Array, n.Index})
		d.close()
	default:
		d.printf("<%T>", n)
	}
}
