// Package observability holds the ports the storefront reports through.
// Use cases, workers and handlers only see these interfaces; zap,
// Prometheus and OpenTelemetry sit behind them in infrastructure.
package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Observability is what every use case and worker is built with. Nop()
// stands in when a caller passes nil.
type Observability interface {
	Tracer() Tracer
	Logger() Logger
	Metrics() Metrics
}

// Metrics looks instruments up by key. An unregistered key yields a no-op
// instrument rather than an error.
type Metrics interface {
	Counter(name MetricKey) Counter
	Histogram(name MetricKey) Histogram
	Gauge(name MetricKey) Gauge
}

type Tracer interface {
	Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span)
}

// Counter only grows: requests, items added to carts.
type Counter interface {
	Add(delta float64, labels ...Label)
	Bind(labels ...Label) BoundCounter
}

// BoundCounter has its labels fixed up front, for hot paths.
type BoundCounter interface {
	Add(delta float64)
}

// Histogram records durations in seconds.
type Histogram interface {
	Observe(value float64, labels ...Label)
	Bind(labels ...Label) BoundHistogram
}

type BoundHistogram interface {
	Observe(value float64)
}

// Gauge moves both ways; active_cart_sessions is one.
type Gauge interface {
	Set(value float64, labels ...Label)
	Add(delta float64, labels ...Label)
}

// Label is a metric dimension. Keep values low-cardinality: route
// templates and store ids, never session ids.
type Label struct{ Key, Value string }

func L(k, v string) Label { return Label{Key: k, Value: v} }

// Field is one structured log attribute.
type Field struct {
	Key   string
	Value any
}

func F(k string, v any) Field { return Field{Key: k, Value: v} }

// Logger writes event-style entries (http_access, use_case_done). With
// returns a child carrying fields such as request_id or session_id.
type Logger interface {
	With(fields ...Field) Logger
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// MetricKey names a registered instrument; the keys live in metrics.go.
type MetricKey string
