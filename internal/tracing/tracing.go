// Package tracing wires an OpenTelemetry OTLP/HTTP exporter into the
// process's global tracer provider, pointed at whatever collector
// endpoint the operator configures.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Config describes where to export spans. An empty Endpoint disables
// export entirely: Setup returns a no-op tracer and a no-op shutdown.
type Config struct {
	Endpoint    string
	ServiceName string
	Insecure    bool
	Headers     map[string]string
}

// Shutdown flushes and stops the tracer provider, if one was started.
type Shutdown func(context.Context) error

// Setup configures the global tracer provider from cfg, returning the
// gateway's request tracer and a shutdown function to call on exit.
func Setup(cfg Config) (trace.Tracer, Shutdown, error) {
	if cfg.Endpoint == "" {
		return noop.NewTracerProvider().Tracer("a2c"), func(context.Context) error { return nil }, nil
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "a2c"
	}

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(cfg.Endpoint),
		otlptracehttp.WithURLPath("/v1/traces"),
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("tracing: create OTLP exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		"", attribute.String("service.name", serviceName),
	))
	if err != nil {
		return nil, nil, fmt.Errorf("tracing: build resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return tp.Tracer("a2c"), tp.Shutdown, nil
}
