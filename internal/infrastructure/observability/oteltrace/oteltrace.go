// Package oteltrace backs the storefront's Tracer port with OpenTelemetry.
package oteltrace

import (
	"context"

	"github.com/Zhima-Mochi/corralon-storefront/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultComponent = "corralon-storefront"

// tracer tags every span it starts with the component that started it, so
// cart, checkout and worker spans can be told apart in one trace.
type tracer struct {
	t         trace.Tracer
	component attribute.KeyValue
}

// New returns a Tracer on the global provider; NewProvider installs the real
// one. Before that, spans go to the no-op default.
func New(component string) observability.Tracer {
	return FromProvider(otel.GetTracerProvider(), component)
}

// FromProvider is New with an explicit provider.
func FromProvider(tp trace.TracerProvider, component string) observability.Tracer {
	if component == "" {
		component = defaultComponent
	}
	return &tracer{
		t:         tp.Tracer(component),
		component: attribute.String("storefront.component", component),
	}
}

func (t *tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := make([]attribute.KeyValue, 0, len(attrs)+1)
	all = append(all, t.component)
	all = append(all, attrs...)
	return t.t.Start(ctx, name, trace.WithAttributes(all...))
}
