// Package metrics provides Prometheus metrics collection for the
// dashboard service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all Prometheus metrics for the dashboard.
type Collector struct {
	// Snapshot recomputation
	SnapshotRecomputes *prometheus.CounterVec
	RecomputeDuration  prometheus.Histogram

	// Backend delegation
	BackendRequests *prometheus.CounterVec

	// Optimistic key toggles
	ToggleRollbacks prometheus.Counter

	// Pool
	EventPoolSize prometheus.Gauge
}

// New creates a new metrics collector with all metrics registered.
func New() *Collector {
	return &Collector{
		SnapshotRecomputes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "scratcha",
				Name:      "snapshot_recomputes_total",
				Help:      "Dashboard snapshot recomputations by trigger",
			},
			[]string{"trigger"},
		),
		RecomputeDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "scratcha",
				Name:      "recompute_duration_seconds",
				Help:      "Time spent deriving one dashboard snapshot",
				Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5},
			},
		),
		BackendRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "scratcha",
				Name:      "backend_requests_total",
				Help:      "Requests delegated to the Scratcha backend",
			},
			[]string{"operation", "outcome"},
		),
		ToggleRollbacks: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: "scratcha",
				Name:      "key_toggle_rollbacks_total",
				Help:      "Optimistic API key toggles rolled back after backend failure",
			},
		),
		EventPoolSize: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "scratcha",
				Name:      "event_pool_size",
				Help:      "Events in the session-fixed demo pool",
			},
		),
	}
}
