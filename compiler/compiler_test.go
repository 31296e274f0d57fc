// Copyright © 2024 The ELPS authors

package compiler

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/luthersystems/elpsc/analyzer"
	"github.com/luthersystems/elpsc/parser"
)

const testSource = `
(ns app.main)
(defn add [a b] (+ a b))
(def total (add 1 2))
(when (< total 10) (println total))
`

func newTestCompiler(t *testing.T, cfg *Config, opts ...Option) *Compiler {
	t.Helper()
	if cfg == nil {
		cfg = &Config{Tracing: TracingNone}
	}
	c, err := New(cfg, opts...)
	require.NoError(t, err)
	return c
}

func TestCompile(t *testing.T) {
	var out bytes.Buffer
	c := newTestCompiler(t, nil, WithEmitter(&DumpEmitter{W: &out}))
	unit, err := c.Compile(context.Background(), "test.lisp", strings.NewReader(testSource))
	require.NoError(t, err)
	assert.Len(t, unit.Nodes, 4)
	assert.Empty(t, unit.Errors)
	assert.Equal(t, "app.main", unit.Namespace)
	assert.NotEqual(t, "", unit.ID.String())

	_, ok := c.Registry().Lookup("app.main", "add")
	assert.True(t, ok)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "(ns app.main)", lines[0])
	assert.Equal(t, "(def app.main/add (fn [a b] (do (call core/+ a b))))", lines[1])
	assert.Equal(t, "(def app.main/total (call app.main/add 1 2))", lines[2])
	assert.Equal(t, "(if (call core/< app.main/total 10) (do (call core/println app.main/total)) nil)", lines[3])
}

func TestCompile_Errors(t *testing.T) {
	src := `(def a 1) (if) (def b 2) unknown (def c 3)`

	c := newTestCompiler(t, nil)
	unit, err := c.Compile(context.Background(), "test.lisp", strings.NewReader(src))
	require.Error(t, err)
	assert.Len(t, unit.Nodes, 3)
	require.Len(t, unit.Errors, 2)
	assert.ErrorIs(t, unit.Errors[0], analyzer.ErrArityMismatch)
	assert.ErrorIs(t, unit.Errors[1], analyzer.ErrUnresolvedSymbol)
	assert.ErrorIs(t, err, analyzer.ErrArityMismatch)
	assert.ErrorIs(t, err, analyzer.ErrUnresolvedSymbol)

	c = newTestCompiler(t, &Config{StopOnError: true})
	unit, err = c.Compile(context.Background(), "test.lisp", strings.NewReader(src))
	require.Error(t, err)
	assert.ErrorIs(t, err, analyzer.ErrArityMismatch)
	assert.Len(t, unit.Nodes, 1)
	assert.Len(t, unit.Errors, 1)
	_, ok := c.Registry().Lookup("user", "b")
	assert.False(t, ok)
}

func TestCompile_ReadError(t *testing.T) {
	c := newTestCompiler(t, nil)
	unit, err := c.Compile(context.Background(), "test.lisp", strings.NewReader(`(def a`))
	require.Error(t, err)
	assert.Empty(t, unit.Nodes)
	assert.Equal(t, "test.lisp:1:1: unmatched (", err.Error())
}

func TestCompile_EmitError(t *testing.T) {
	errEmit := errors.New("disk full")
	c := newTestCompiler(t, nil, WithEmitter(EmitterFunc(func(ctx context.Context, n analyzer.Node) error {
		return errEmit
	})))
	_, err := c.Compile(context.Background(), "test.lisp", strings.NewReader(`1`))
	assert.ErrorIs(t, err, errEmit)
}

func TestCompile_Canceled(t *testing.T) {
	c := newTestCompiler(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Compile(ctx, "test.lisp", strings.NewReader(`1 2`))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompile_SymbolsRestartPerUnit(t *testing.T) {
	var out bytes.Buffer
	c := newTestCompiler(t, nil, WithEmitter(&DumpEmitter{W: &out}))
	src := `(let [[a] [1]] a)`
	_, err := c.Compile(context.Background(), "a.lisp", strings.NewReader(src))
	require.NoError(t, err)
	first := out.String()
	out.Reset()
	_, err = c.Compile(context.Background(), "b.lisp", strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, first, out.String())
	assert.Contains(t, first, "__gen_1")
}

func TestCompile_Logging(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	c := newTestCompiler(t, nil, WithLogger(log))
	_, err := c.Compile(context.Background(), "test.lisp", strings.NewReader("1\n(if)"))
	require.Error(t, err)

	var failed *logrus.Entry
	for _, e := range hook.AllEntries() {
		assert.Equal(t, "test.lisp", e.Data["file"])
		assert.NotEmpty(t, e.Data["unit"])
		if e.Level == logrus.WarnLevel {
			failed = e
		}
	}
	require.NotNil(t, failed)
	assert.Equal(t, "analysis failed", failed.Message)
	assert.Equal(t, 2, failed.Data["line"])
}

func TestCompile_OpenTelemetry(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	t.Cleanup(func() {
		err := tp.Shutdown(context.Background())
		assert.NoError(t, err, "TracerProvider shutdown")
	})
	otel.SetTracerProvider(tp)

	c := newTestCompiler(t, &Config{Tracing: TracingOpenTelemetry})
	_, err := c.Compile(context.Background(), "test.lisp", strings.NewReader("1\n(if)"))
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 3)
	assert.Equal(t, "analyze", spans[0].Name)
	assert.Equal(t, "analyze", spans[1].Name)
	assert.Equal(t, "compile test.lisp", spans[2].Name)
	assert.Len(t, spans[1].Events, 1, "the failure is recorded")
	assert.Equal(t, spans[2].SpanContext.TraceID(), spans[0].Parent.TraceID())
}

func TestCompile_OpenCensus(t *testing.T) {
	c := newTestCompiler(t, &Config{Tracing: TracingOpenCensus})
	unit, err := c.Compile(context.Background(), "test.lisp", strings.NewReader("1 2"))
	require.NoError(t, err)
	assert.Len(t, unit.Nodes, 2)
}

func TestCompileForm(t *testing.T) {
	var out bytes.Buffer
	c := newTestCompiler(t, nil, WithEmitter(&DumpEmitter{W: &out}))
	vs, err := parser.NewReader().Read("stdin", strings.NewReader(`(ns app) (def x 1) (let [[a] [x]] a) (let [[b] [x]] b)`))
	require.NoError(t, err)
	for _, v := range vs {
		_, err := c.CompileForm(context.Background(), v)
		require.NoError(t, err)
	}
	assert.Equal(t, "app", c.Registry().CurrentNamespace())
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "(def app/x 1)", lines[1])
	first := genNames.FindAllString(lines[2], -1)
	second := genNames.FindAllString(lines[3], -1)
	require.NotEmpty(t, first)
	require.NotEmpty(t, second)
	for _, name := range second {
		assert.NotContains(t, first, name, "symbol generation continues across forms")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.CompileForm(ctx, vs[1])
	assert.ErrorIs(t, err, context.Canceled)
}

var genNames = regexp.MustCompile(`\w*__gen_\d+`)

func TestCompileForm_Namespace(t *testing.T) {
	var out bytes.Buffer
	c := newTestCompiler(t, &Config{Namespace: "lib"}, WithEmitter(&DumpEmitter{W: &out}))
	assert.Equal(t, "lib", c.Registry().CurrentNamespace())
	vs, err := parser.NewReader().Read("stdin", strings.NewReader(`(def x 1)`))
	require.NoError(t, err)
	n, err := c.CompileForm(context.Background(), vs[0])
	require.NoError(t, err)
	assert.Equal(t, "lib", n.Env().Namespace())
	assert.Equal(t, "(def lib/x 1)\n", out.String())
}

func TestCompileFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.lisp")
	require.NoError(t, os.WriteFile(path, []byte(testSource), 0o600))
	c := newTestCompiler(t, nil)
	unit, err := c.CompileFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, unit.Name)
	assert.Len(t, unit.Nodes, 4)

	_, err = c.CompileFile(context.Background(), filepath.Join(t.TempDir(), "missing.lisp"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExpand(t *testing.T) {
	c := newTestCompiler(t, nil)
	src := `(ns app (:require lib.str :as s)) (when a b) (s/join 1)`
	vs, err := c.Expand(context.Background(), "test.lisp", strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, vs, 3)
	assert.Equal(t, "(if a (do b))", vs[1].String())
	assert.Equal(t, "(s/join 1)", vs[2].String())
	target, ok := c.Registry().ResolveAlias("app", "s")
	require.True(t, ok)
	assert.Equal(t, "lib.str", target)
}

func TestConfig(t *testing.T) {
	assert.Equal(t, analyzer.DefaultMaxMacroDepth, DefaultConfig().MaxMacroDepth)
	t.Setenv("ELPSC_MAX_MACRO_DEPTH", "12")
	t.Setenv("ELPSC_TRACING", TracingOpenCensus)
	t.Setenv("ELPSC_NAMESPACE", "app")
	cfg := DefaultConfig()
	assert.Equal(t, 12, cfg.MaxMacroDepth)
	assert.Equal(t, TracingOpenCensus, cfg.Tracing)
	assert.Equal(t, "app", cfg.Namespace)
	assert.Equal(t, DefaultTracerName, cfg.TracerName)
	assert.NoError(t, cfg.Validate())

	_, err := New(&Config{Tracing: "zipkin"})
	assert.EqualError(t, err, `unknown tracing backend: "zipkin"`)
	_, err = New(&Config{MaxMacroDepth: -1})
	assert.Error(t, err)
}

func TestDumpEmitter_Indent(t *testing.T) {
	var out bytes.Buffer
	c := newTestCompiler(t, nil, WithEmitter(&DumpEmitter{W: &out, Indent: true}))
	_, err := c.Compile(context.Background(), "test.lisp", strings.NewReader(`(do 1 2)`))
	require.NoError(t, err)
	assert.Equal(t, "(do <statement>\n  1\n  2)\n", out.String())
}
