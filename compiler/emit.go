// Copyright © 2024 The ELPS authors

package compiler

import (
	"context"
	"io"
	"sync"

	"github.com/luthersystems/elpsc/analyzer"
)

// Emitter consumes the analyzed top-level forms of a unit in order.
type Emitter interface {
	Emit(ctx context.Context, n analyzer.Node) error
}

// EmitterFunc implements Emitter.
type EmitterFunc func(ctx context.Context, n analyzer.Node) error

// Emit implements Emitter.
func (fn EmitterFunc) Emit(ctx context.Context, n analyzer.Node) error {
	return fn(ctx, n)
}

// DumpEmitter writes the s-expression dump of each node to W, one node per
// line.  With Indent set nodes are written one child per line.
type DumpEmitter struct {
	W      io.Writer
	Indent bool

	mut sync.Mutex
}

// Emit implements Emitter.
func (e *DumpEmitter) Emit(ctx context.Context, n analyzer.Node) error {
	e.mut.Lock()
	defer e.mut.Unlock()
	if e.Indent {
		return analyzer.DumpIndent(e.W, n)
	}
	_, err := io.WriteString(e.W, analyzer.Dump(n)+"\n")
	return err
}

// discard is the emitter of a Compiler without one.
var discard = EmitterFunc(func(context.Context, analyzer.Node) error { return nil })
