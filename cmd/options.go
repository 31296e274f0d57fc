// Copyright © 2024 The ELPS authors

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/luthersystems/elpsc/analyzer"
	"github.com/luthersystems/elpsc/compiler"
)

// Option configures an exported command factory (AnalyzeCommand,
// ExpandCommand, FormsCommand).
type Option func(*cmdConfig)

type cmdConfig struct {
	registry *analyzer.Registry
	config   *compiler.Config
}

func newCmdConfig(opts ...Option) *cmdConfig {
	c := &cmdConfig{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithRegistry injects a Registry for analysis.  Embedders use it to declare
// the host functions and macros their runtime provides.  The core library is
// not installed in an injected registry.
func WithRegistry(reg *analyzer.Registry) Option {
	return func(c *cmdConfig) { c.registry = reg }
}

// WithConfig sets the compiler configuration that configuration files,
// environment variables and flags are layered over.  Without it the
// configuration starts from compiler.DefaultConfig.
func WithConfig(cfg *compiler.Config) Option {
	return func(c *cmdConfig) { c.config = cfg }
}

// compilerFlags registers the flags shared by commands that compile.
func compilerFlags(flags *pflag.FlagSet) {
	flags.Bool("stop-on-error", false,
		"Stop at the first form that fails to analyze.")
	flags.Int("max-macro-depth", analyzer.DefaultMaxMacroDepth,
		"Maximum number of nested macro expansions.")
	flags.String("tracing", compiler.TracingNone,
		`Tracing backend: "none", "otel", or "opencensus".`)
	flags.String("namespace", "user",
		"Namespace of forms preceding any ns declaration.")
}

// compilerConfig layers the configuration file, ELPSC_ environment
// variables and changed flags over the base configuration.
func (c *cmdConfig) compilerConfig(cmd *cobra.Command) (*compiler.Config, error) {
	var cfg compiler.Config
	if c.config != nil {
		cfg = *c.config
	} else {
		cfg = *compiler.DefaultConfig()
	}
	flags := cmd.Flags()
	changed := func(key string) bool {
		f := flags.Lookup(key)
		return f != nil && f.Changed
	}
	switch {
	case changed("stop-on-error"):
		cfg.StopOnError, _ = flags.GetBool("stop-on-error")
	case viper.IsSet("stop-on-error"):
		cfg.StopOnError = viper.GetBool("stop-on-error")
	}
	switch {
	case changed("max-macro-depth"):
		cfg.MaxMacroDepth, _ = flags.GetInt("max-macro-depth")
	case viper.IsSet("max-macro-depth"):
		cfg.MaxMacroDepth = viper.GetInt("max-macro-depth")
	}
	for key, field := range map[string]*string{
		"tracing":   &cfg.Tracing,
		"namespace": &cfg.Namespace,
	} {
		switch {
		case changed(key):
			*field, _ = flags.GetString(key)
		case viper.IsSet(key):
			*field = viper.GetString(key)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// newCompiler returns a compiler using the injected registry, if any.
func (c *cmdConfig) newCompiler(cfg *compiler.Config, opts ...compiler.Option) (*compiler.Compiler, error) {
	opts = append(opts, compiler.WithLogger(newLogger()))
	if c.registry != nil {
		opts = append(opts, compiler.WithRegistry(c.registry))
	}
	return compiler.New(cfg, opts...)
}
