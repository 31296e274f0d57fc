// Copyright © 2024 The ELPS authors

// Package compiler drives the analysis of compilation units.  A unit is a
// source stream whose top-level forms are read, analyzed in order and handed
// to an Emitter.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/luthersystems/elpsc/analyzer"
	"github.com/luthersystems/elpsc/corelib"
	"github.com/luthersystems/elpsc/parser"
	"github.com/luthersystems/elpsc/syntax"
)

// Reader reads the top-level syntax values of a source stream.
type Reader interface {
	Read(name string, r io.Reader) ([]syntax.Value, error)
}

// Unit is the result of compiling one source stream.
type Unit struct {
	ID   uuid.UUID
	Name string
	// Namespace is the current namespace after the last form.
	Namespace string
	// Nodes are the analyzed top-level forms in source order.
	Nodes  []analyzer.Node
	Errors []error
}

// Err returns the errors of u joined, or nil.
func (u *Unit) Err() error {
	return errors.Join(u.Errors...)
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithReader makes the compiler read sources with r.
func WithReader(r Reader) Option {
	return func(c *Compiler) {
		c.reader = r
	}
}

// WithEmitter makes the compiler hand analyzed forms to e.
func WithEmitter(e Emitter) Option {
	return func(c *Compiler) {
		c.emitter = e
	}
}

// WithRegistry makes the compiler resolve globals in reg.  The core library
// is not installed in a registry supplied this way.
func WithRegistry(reg *analyzer.Registry) Option {
	return func(c *Compiler) {
		c.reg = reg
	}
}

// WithLogger sets the logger of the compiler and its analyzer.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Compiler) {
		c.log = log
	}
}

// Compiler analyzes units against a shared registry.  A Compiler is not safe
// for concurrent use.
type Compiler struct {
	cfg      *Config
	reader   Reader
	emitter  Emitter
	reg      *analyzer.Registry
	gen      *syntax.Counter
	analyzer *analyzer.Analyzer
	log      logrus.FieldLogger
	tracer   tracer
}

// New returns a Compiler configured by cfg.  A nil cfg uses DefaultConfig.
func New(cfg *Config, opts ...Option) (*Compiler, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Compiler{
		cfg: cfg,
		gen: &syntax.Counter{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.reader == nil {
		c.reader = parser.NewReader()
	}
	if c.emitter == nil {
		c.emitter = discard
	}
	if c.reg == nil {
		c.reg = analyzer.NewRegistry()
		corelib.Install(c.reg)
	}
	// Forms compiled one at a time start in the configured namespace too.
	c.reg.SetNamespace(c.namespace())
	if c.log == nil {
		log := logrus.New()
		log.SetLevel(logrus.WarnLevel)
		c.log = log
	}
	depth := cfg.MaxMacroDepth
	if depth == 0 {
		depth = analyzer.DefaultMaxMacroDepth
	}
	c.analyzer = analyzer.New(c.reg,
		analyzer.WithSymbolGenerator(c.gen),
		analyzer.WithMaxMacroDepth(depth),
		analyzer.WithLogger(c.log))
	c.tracer = newTracer(cfg)
	return c, nil
}

// Registry returns the registry shared by the units of c.
func (c *Compiler) Registry() *analyzer.Registry { return c.reg }

// Analyzer returns the analyzer of c.
func (c *Compiler) Analyzer() *analyzer.Analyzer { return c.analyzer }

func (c *Compiler) namespace() string {
	if c.cfg.Namespace == "" {
		return "user"
	}
	return c.cfg.Namespace
}

// CompileFile compiles the source file at path.
func (c *Compiler) CompileFile(ctx context.Context, path string) (*Unit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return c.Compile(ctx, path, f)
}

// Compile reads and analyzes the top-level forms of r in order.  Symbol
// generation restarts for every unit.  The returned error joins every
// failure of the unit, or is the first failure when the configuration
// stops on error.  The unit is returned even when compilation fails.
func (c *Compiler) Compile(ctx context.Context, name string, r io.Reader) (unit *Unit, err error) {
	unit = &Unit{ID: uuid.New(), Name: name}
	log := c.log.WithFields(logrus.Fields{
		"unit": unit.ID.String(),
		"file": name,
	})
	ctx, end := c.tracer.start(ctx, spanInfo{name: "compile " + name, unit: unit.ID.String()})
	defer func() { end(err) }()

	c.gen.Reset()
	c.reg.SetNamespace(c.namespace())
	defer func() { unit.Namespace = c.reg.CurrentNamespace() }()

	values, err := c.reader.Read(name, r)
	if err != nil {
		log.WithError(err).Warn("unable to read unit")
		unit.Errors = append(unit.Errors, err)
		return unit, err
	}
	log.WithField("forms", len(values)).Debug("unit read")
	for _, v := range values {
		if err := ctx.Err(); err != nil {
			unit.Errors = append(unit.Errors, err)
			return unit, err
		}
		n, err := c.compileForm(ctx, unit.ID.String(), v, log)
		if err != nil {
			unit.Errors = append(unit.Errors, err)
			if c.cfg.StopOnError {
				return unit, err
			}
			continue
		}
		unit.Nodes = append(unit.Nodes, n)
	}
	return unit, unit.Err()
}

// CompileForm analyzes and emits a single top-level form in the current
// namespace.  Unlike Compile it does not restart symbol generation, so
// successive calls behave like the forms of one long unit.
func (c *Compiler) CompileForm(ctx context.Context, v syntax.Value) (analyzer.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.compileForm(ctx, "", v, c.log)
}

func (c *Compiler) compileForm(ctx context.Context, unit string, v syntax.Value, log logrus.FieldLogger) (n analyzer.Node, err error) {
	loc := v.Span().Start
	if loc != nil {
		log = log.WithField("line", loc.Line)
	}
	ctx, end := c.tracer.start(ctx, spanInfo{name: "analyze", unit: unit, loc: loc})
	defer func() { end(err) }()

	n, err = c.analyzer.Analyze(v, analyzer.EmptyEnv(c.reg.CurrentNamespace()))
	if err != nil {
		log.WithError(err).Warn("analysis failed")
		return nil, err
	}
	if err := c.emitter.Emit(ctx, n); err != nil {
		log.WithError(err).Warn("emit failed")
		return nil, fmt.Errorf("emit: %w", err)
	}
	log.Debug("form analyzed")
	return n, nil
}

// Expand reads the top-level forms of r and expands each of them once.  Forms
// that are not macro calls are returned unchanged.  Namespace declarations
// are analyzed so that later forms resolve in the declared namespace.
func (c *Compiler) Expand(ctx context.Context, name string, r io.Reader) ([]syntax.Value, error) {
	c.gen.Reset()
	c.reg.SetNamespace(c.namespace())
	values, err := c.reader.Read(name, r)
	if err != nil {
		return nil, err
	}
	res := make([]syntax.Value, 0, len(values))
	for _, v := range values {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		env := analyzer.EmptyEnv(c.reg.CurrentNamespace())
		if isNsForm(v) {
			if _, err := c.analyzer.Analyze(v, env); err != nil {
				return nil, err
			}
			res = append(res, v)
			continue
		}
		x, _, err := c.analyzer.MacroExpand1(v, env)
		if err != nil {
			return nil, err
		}
		res = append(res, x)
	}
	return res, nil
}

func isNsForm(v syntax.Value) bool {
	s, ok := v.(*syntax.Seq)
	if !ok || !s.IsForm() {
		return false
	}
	head, ok := s.First().(*syntax.Symbol)
	return ok && analyzer.FormOf(head) == analyzer.FormNs
}
