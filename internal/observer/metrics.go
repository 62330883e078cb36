// Package observer broadcasts coarsened supervisor state changes to registry observers.
package observer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks observer bus delivery metrics.
type Metrics struct {
	// ConnectionsActive is the current number of subscribed observers.
	ConnectionsActive prometheus.Gauge

	// EventsTotal is the total number of events broadcast to at least one
	// subscriber (by type and source).
	EventsTotal *prometheus.CounterVec

	// EventLatencySeconds is the latency from event creation to delivery (histogram).
	EventLatencySeconds prometheus.Histogram

	// ErrorsTotal is the total number of delivery errors (by error type).
	ErrorsTotal *prometheus.CounterVec

	// BroadcastDuration is the duration of broadcast operations (histogram).
	BroadcastDuration prometheus.Histogram
}

// NewMetrics creates a new Metrics instance registered under namespace.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ConnectionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "observer",
			Name:      "subscribers_active",
			Help:      "Current number of subscribed registry observers.",
		}),

		EventsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "observer",
			Name:      "events_total",
			Help:      "Total number of events broadcast to at least one subscriber, by type and source.",
		}, []string{"type", "source"}),

		EventLatencySeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "observer",
			Name:      "event_latency_seconds",
			Help:      "Latency from event creation to delivery, in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
		}),

		ErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "observer",
			Name:      "errors_total",
			Help:      "Total number of delivery errors, by error type.",
		}, []string{"error_type"}),

		BroadcastDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "observer",
			Name:      "broadcast_duration_seconds",
			Help:      "Duration of broadcast operations, in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
		}),
	}
}
