package runtime

import "github.com/prometheus/client_golang/prometheus"

// metrics holds every Prometheus collector the dispatch loop updates,
// registered against a Runtime-owned registry rather than the global
// DefaultRegisterer so more than one Runtime can exist in a process (one
// per test, for instance) without a duplicate-registration panic.
type metrics struct {
	registry *prometheus.Registry

	queueDepth       prometheus.Gauge
	dispatchTotal    *prometheus.CounterVec
	dispatchDuration prometheus.Histogram
	effectsTotal     *prometheus.CounterVec
	droppedTotal     prometheus.Counter
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "aggrecored",
			Subsystem: "runtime",
			Name:      "queue_depth",
			Help:      "Number of messages currently waiting in the dispatch queue.",
		}),
		dispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aggrecored",
			Subsystem: "runtime",
			Name:      "dispatch_total",
			Help:      "Count of messages dispatched to Root.Update, by message type.",
		}, []string{"msg_type"}),
		dispatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "aggrecored",
			Subsystem: "runtime",
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent in a single Root.Update call.",
			Buckets:   prometheus.DefBuckets,
		}),
		effectsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aggrecored",
			Subsystem: "runtime",
			Name:      "effects_total",
			Help:      "Count of effect messages/futures produced by dispatches.",
		}, []string{"kind"}),
		droppedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aggrecored",
			Subsystem: "runtime",
			Name:      "dropped_total",
			Help:      "Count of messages dropped because the dispatch queue was full.",
		}),
	}
	m.registry.MustRegister(m.queueDepth, m.dispatchTotal, m.dispatchDuration, m.effectsTotal, m.droppedTotal)
	return m
}

// Registry exposes the collector registry so cmd/aggrecored can mount it
// under a /metrics handler.
func (r *Runtime) Registry() *prometheus.Registry { return r.metrics.registry }
