// Copyright © 2024 The ELPS authors

package compiler

import (
	"context"

	octrace "go.opencensus.io/trace"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/luthersystems/elpsc/parser/token"
)

// spanInfo describes the work traced by a span.
type spanInfo struct {
	name string
	unit string
	loc  *token.Location
}

// tracer starts a span and returns a function that ends it, recording err
// when it is non-nil.
type tracer interface {
	start(ctx context.Context, info spanInfo) (context.Context, func(err error))
}

func newTracer(cfg *Config) tracer {
	name := cfg.TracerName
	if name == "" {
		name = DefaultTracerName
	}
	switch cfg.Tracing {
	case TracingOpenTelemetry:
		return &otelTracer{name: name}
	case TracingOpenCensus:
		return ocTracer{}
	default:
		return noopTracer{}
	}
}

type noopTracer struct{}

func (noopTracer) start(ctx context.Context, info spanInfo) (context.Context, func(error)) {
	return ctx, func(error) {}
}

type otelTracer struct {
	name string
}

func (t *otelTracer) start(ctx context.Context, info spanInfo) (context.Context, func(error)) {
	attrs := []attribute.KeyValue{attribute.String("elpsc.unit", info.unit)}
	if info.loc != nil {
		attrs = append(attrs,
			semconv.CodeFilepath(info.loc.File),
			semconv.CodeLineNumber(info.loc.Line),
			semconv.CodeColumn(info.loc.Col),
		)
	}
	ctx, span := otel.GetTracerProvider().Tracer(t.name).Start(ctx, info.name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

type ocTracer struct{}

func (ocTracer) start(ctx context.Context, info spanInfo) (context.Context, func(error)) {
	ctx, span := octrace.StartSpan(ctx, info.name)
	attrs := []octrace.Attribute{octrace.StringAttribute("elpsc.unit", info.unit)}
	if info.loc != nil {
		attrs = append(attrs,
			octrace.StringAttribute("code.filepath", info.loc.File),
			octrace.Int64Attribute("code.lineno", int64(info.loc.Line)),
		)
	}
	span.AddAttributes(attrs...)
	return ctx, func(err error) {
		if err != nil {
			span.SetStatus(octrace.Status{Code: octrace.StatusCodeUnknown, Message: err.Error()})
		}
		span.End()
	}
}
