package prometrics

import (
	"github.com/Zhima-Mochi/corralon-storefront/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
)

// Instruments registers every metric the service emits, keyed the way the
// application asks for them.
type Instruments struct {
	Counters   map[observability.MetricKey]observability.Counter
	Histograms map[observability.MetricKey]observability.Histogram
	Gauges     map[observability.MetricKey]observability.Gauge
}

func Standard(r Registry) Instruments {
	buckets := prometheus.DefBuckets
	return Instruments{
		Counters: map[observability.MetricKey]observability.Counter{
			observability.MUsecaseRequests: r.Counter(string(observability.MUsecaseRequests),
				"Use case executions by outcome.", "use_case", "outcome"),
			observability.MHTTPRequests: r.Counter(string(observability.MHTTPRequests),
				"HTTP requests by route and status code.", "method", "route", "status"),
			observability.MExternalRequests: r.Counter(string(observability.MExternalRequests),
				"Calls to peers such as the event bus.", "peer", "endpoint", "outcome"),
			observability.MCartItemsAdded: r.Counter(string(observability.MCartItemsAdded),
				"Units added to carts.", "store"),
		},
		Histograms: map[observability.MetricKey]observability.Histogram{
			observability.MUsecaseDuration: r.Histogram(string(observability.MUsecaseDuration),
				"Use case latency in seconds.", buckets, "use_case"),
			observability.MHTTPRequestDuration: r.Histogram(string(observability.MHTTPRequestDuration),
				"HTTP request latency in seconds.", buckets, "method", "route"),
			observability.MExternalRequestDuration: r.Histogram(string(observability.MExternalRequestDuration),
				"Peer call latency in seconds.", buckets, "peer", "endpoint"),
		},
		Gauges: map[observability.MetricKey]observability.Gauge{
			observability.MActiveCartSessions: r.Gauge(string(observability.MActiveCartSessions),
				"Cart sessions currently held in memory."),
		},
	}
}
