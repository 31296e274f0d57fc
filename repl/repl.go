// Copyright © 2018 The ELPS authors

// Package repl implements an interactive analyzer.  Each form entered is
// analyzed in the current namespace and its analyzed tree is printed.
package repl

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"github.com/sirupsen/logrus"

	"github.com/luthersystems/elpsc/compiler"
	"github.com/luthersystems/elpsc/diagnostic"
	"github.com/luthersystems/elpsc/parser/rdparser"
	"github.com/luthersystems/elpsc/parser/token"
)

const historyFile = ".elpsc_history"

type config struct {
	stdin  io.ReadCloser
	stderr io.WriteCloser
	cfg    *compiler.Config
	indent bool
	color  diagnostic.ColorMode
}

func newConfig(opts ...Option) *config {
	config := &config{}
	for _, opt := range opts {
		opt(config)
	}
	return config
}

type Option func(*config)

// WithStdin allows overriding the input to the REPL.
func WithStdin(stdin io.ReadCloser) Option {
	return func(c *config) {
		c.stdin = stdin
	}
}

// WithStderr allows overriding the output to the REPL.
func WithStderr(stderr io.WriteCloser) Option {
	return func(c *config) {
		c.stderr = stderr
	}
}

// WithConfig sets the compiler configuration used by RunRepl.
func WithConfig(cfg *compiler.Config) Option {
	return func(c *config) {
		c.cfg = cfg
	}
}

// WithIndent prints analyzed forms one child per line.
func WithIndent(indent bool) Option {
	return func(c *config) {
		c.indent = indent
	}
}

// WithColor controls colored diagnostics.
func WithColor(mode diagnostic.ColorMode) Option {
	return func(c *config) {
		c.color = mode
	}
}

// RunRepl runs a repl that analyzes forms against the core library.
func RunRepl(prompt string, opts ...Option) {
	cfg := newConfig(opts...)
	var stderr io.Writer = os.Stderr
	if cfg.stderr != nil {
		stderr = cfg.stderr
	}
	// Failures are rendered as diagnostics so only errors are logged.
	log := logrus.New()
	log.SetOutput(stderr)
	log.SetLevel(logrus.ErrorLevel)
	c, err := compiler.New(cfg.cfg,
		compiler.WithEmitter(&compiler.DumpEmitter{W: stderr, Indent: cfg.indent}),
		compiler.WithLogger(log))
	if err != nil {
		errlnf("Compiler initialization failure: %v", err)
		os.Exit(1)
	}
	Run(c, prompt, strings.Repeat(" ", len(prompt)), opts...)
}

// Run runs a repl that analyzes forms with c.  Analyzed forms are handed to
// the emitter of c.
func Run(c *compiler.Compiler, prompt, cont string, opts ...Option) {
	p := rdparser.NewInteractive(nil)
	p.SetPrompts(prompt, cont)

	cfg := newConfig(opts...)
	var stderr io.Writer = os.Stderr
	if cfg.stderr != nil {
		stderr = cfg.stderr
	}

	hist := historyPath()
	ensureHistoryFilePermissions(hist)
	rlCfg := &readline.Config{
		Stdout:            stderr,
		Stderr:            stderr,
		Prompt:            p.Prompt(),
		HistoryFile:       hist,
		HistorySearchFold: true,
		AutoComplete:      &symbolCompleter{reg: c.Registry()},
	}

	if cfg.stdin != nil {
		rlCfg.Stdin = cfg.stdin
	}
	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		panic(err)
	}
	defer rl.Close() //nolint:errcheck // best-effort cleanup

	p.Read = func() []*token.Token {
		rl.SetPrompt(p.Prompt())
		for {
			line, err := rl.ReadSlice()
			if err != nil && err != readline.ErrInterrupt {
				return []*token.Token{{
					Type: token.EOF,
					Text: "",
				}}
			}
			if err == readline.ErrInterrupt {
				continue
			}
			if tokens := p.Lex(line); len(tokens) > 0 {
				return tokens
			}
		}
	}

	ctx := context.Background()
	for {
		expr, err := p.Parse()
		if err == io.EOF {
			break
		}
		if err != nil {
			renderError(stderr, err, cfg.color)
			continue
		}
		if _, err := c.CompileForm(ctx, expr); err != nil {
			renderError(stderr, err, cfg.color)
		}
	}
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, historyFile)
}

// ensureHistoryFilePermissions creates the history file if necessary and
// restricts it to the current user.
func ensureHistoryFilePermissions(path string) {
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0600)
	if err != nil {
		return
	}
	_ = f.Close()
	_ = os.Chmod(path, 0600)
}

func errlnf(format string, v ...interface{}) {
	if strings.HasSuffix(format, "\n") {
		errf(format, v...)
		return
	}
	errf(format+"\n", v...)
}

func errf(format string, v ...interface{}) {
	fmt.Fprintf(os.Stderr, format, v...)
}
