// Copyright © 2018 The ELPS authors

// Package elpstest runs analyzer fixtures.  A fixture is a source file whose
// analyzed forms and failures are compared with a golden file next to it.
package elpstest

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xyproto/env/v2"

	"github.com/luthersystems/elpsc/analyzer"
	"github.com/luthersystems/elpsc/compiler"
	"github.com/luthersystems/elpsc/corelib"
)

// UpdateEnv names the environment variable that makes runners rewrite golden
// files instead of comparing with them.
const UpdateEnv = "ELPSC_UPDATE_GOLDEN"

// Runner analyzes fixtures.
type Runner struct {
	// Setup prepares the registry used for each fixture.  When Setup is nil
	// the core library is installed.
	Setup func(*analyzer.Registry)

	// Config configures the compiler.  When Config is nil fixtures are
	// analyzed with the zero configuration, independent of the environment.
	Config *compiler.Config
}

// NewCompiler returns a compiler for a single fixture that emits dumps to out
// and logs to t.
func (r *Runner) NewCompiler(t testing.TB, out io.Writer) *compiler.Compiler {
	reg := analyzer.NewRegistry()
	if r.Setup != nil {
		r.Setup(reg)
	} else {
		corelib.Install(reg)
	}
	cfg := r.Config
	if cfg == nil {
		cfg = &compiler.Config{}
	}
	c, err := compiler.New(cfg,
		compiler.WithRegistry(reg),
		compiler.WithEmitter(&compiler.DumpEmitter{W: out}),
		compiler.WithLogger(NewLogrus(t)))
	require.NoError(t, err)
	return c
}

// Output analyzes source and returns the dump of each analyzed form followed
// by the failures of the unit, one per line.
func (r *Runner) Output(t testing.TB, name string, source []byte) string {
	var out bytes.Buffer
	c := r.NewCompiler(t, &out)
	unit, _ := c.Compile(context.Background(), name, bytes.NewReader(source))
	if len(unit.Errors) > 0 {
		out.WriteString("--- errors\n")
	}
	for _, err := range unit.Errors {
		out.WriteString(err.Error())
		out.WriteByte('\n')
	}
	return out.String()
}

// RunGoldenFile compares the output of the fixture at path with the file of
// the same name and the extension .golden.
func (r *Runner) RunGoldenFile(t *testing.T, path string) {
	source, err := os.ReadFile(path) //#nosec G304
	require.NoError(t, err, "unable to read fixture")
	got := r.Output(t, filepath.Base(path), source)

	golden := strings.TrimSuffix(path, filepath.Ext(path)) + ".golden"
	env.Load()
	if env.Bool(UpdateEnv) {
		require.NoError(t, os.WriteFile(golden, []byte(got), 0o600))
		return
	}
	want, err := os.ReadFile(golden) //#nosec G304
	require.NoError(t, err, "unable to read golden file (set %s=true to create it)", UpdateEnv)
	assert.Equal(t, string(want), got)
}

// RunGoldenDir runs every .lisp fixture in dir as a subtest.
func (r *Runner) RunGoldenDir(t *testing.T, dir string) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.lisp"))
	require.NoError(t, err)
	require.NotEmpty(t, paths, "no fixtures in %s", dir)
	for _, path := range paths {
		path := path
		t.Run(strings.TrimSuffix(filepath.Base(path), ".lisp"), func(t *testing.T) {
			r.RunGoldenFile(t, path)
		})
	}
}

// BenchmarkCompile returns a benchmark that analyzes the file at path.
func BenchmarkCompile(path string) func(*testing.B) {
	return func(b *testing.B) {
		buf, err := os.ReadFile(path) //#nosec G304
		if err != nil {
			b.Fatalf("Unable to read source file %v: %v", path, err)
		}
		c, err := compiler.New(&compiler.Config{})
		if err != nil {
			b.Fatal(err)
		}
		b.SetBytes(int64(len(buf)))
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, err := c.Compile(context.Background(), "bench", bytes.NewReader(buf))
			if err != nil {
				b.Fatalf("Compile failure: %v", err)
			}
		}
	}
}
