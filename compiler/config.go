// Copyright © 2024 The ELPS authors

package compiler

import (
	"fmt"

	"github.com/xyproto/env/v2"

	"github.com/luthersystems/elpsc/analyzer"
)

// Tracing backends.
const (
	TracingNone          = "none"
	TracingOpenTelemetry = "otel"
	TracingOpenCensus    = "opencensus"
)

// DefaultTracerName names the tracer used when Config.TracerName is empty.
const DefaultTracerName = "elpsc"

// Config controls a Compiler.
type Config struct {
	// StopOnError stops a unit at its first failing form.  Otherwise every
	// form is analyzed and all failures are reported.
	StopOnError bool
	// MaxMacroDepth bounds the nesting of macro expansions.
	MaxMacroDepth int
	// Tracing selects the tracing backend, one of the Tracing* constants.
	Tracing    string
	TracerName string
	// Namespace is the namespace of a unit until an ns form changes it.
	Namespace string
}

// DefaultConfig returns a Config initialized from the environment.
//
//	ELPSC_STOP_ON_ERROR   stop at the first failing form
//	ELPSC_MAX_MACRO_DEPTH maximum nesting of macro expansions
//	ELPSC_TRACING         none, otel or opencensus
//	ELPSC_TRACER_NAME     name of the tracer
//	ELPSC_NAMESPACE       initial namespace of each unit
func DefaultConfig() *Config {
	// env caches variables on first use; pick up later changes.
	env.Load()
	return &Config{
		StopOnError:   env.Bool("ELPSC_STOP_ON_ERROR"),
		MaxMacroDepth: env.Int("ELPSC_MAX_MACRO_DEPTH", analyzer.DefaultMaxMacroDepth),
		Tracing:       env.Str("ELPSC_TRACING", TracingNone),
		TracerName:    env.Str("ELPSC_TRACER_NAME", DefaultTracerName),
		Namespace:     env.Str("ELPSC_NAMESPACE", "user"),
	}
}

// Validate returns an error if c cannot configure a Compiler.
func (c *Config) Validate() error {
	switch c.Tracing {
	case "", TracingNone, TracingOpenTelemetry, TracingOpenCensus:
	default:
		return fmt.Errorf("unknown tracing backend: %q", c.Tracing)
	}
	if c.MaxMacroDepth < 0 {
		return fmt.Errorf("invalid maximum macro depth: %d", c.MaxMacroDepth)
	}
	return nil
}
