// Package telemetry provides the OpenTelemetry span helpers the HTTP
// layer wraps request handling in: one span per dispatched request,
// seeded with sanitized request attributes and enriched once routing
// has resolved.
package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Settings configures span recording. Telemetry is disabled by default
// and must be explicitly enabled.
type Settings struct {
	// IsEnabled controls whether telemetry is active. Defaults to false.
	IsEnabled bool

	// FunctionID is an identifier for grouping telemetry data by
	// operation.
	FunctionID string

	// Metadata contains additional key-value pairs to include in spans.
	Metadata map[string]attribute.Value

	// Tracer is a custom OpenTelemetry tracer. If nil, the global tracer
	// will be used.
	Tracer trace.Tracer
}

// DefaultSettings returns Settings with sensible defaults.
func DefaultSettings() *Settings {
	return &Settings{
		IsEnabled: false,
		Metadata:  make(map[string]attribute.Value),
	}
}
