package classpath

import "github.com/prometheus/client_golang/prometheus"

// Metrics is the resolver's optional observability hook (SUPPLEMENTED
// FEATURES: ambient instrumentation, not a new feature surface). A nil
// *Metrics disables all instrumentation; Resolver checks for nil before
// every call site so wiring it in is opt-in.
type Metrics struct {
	queueDepth prometheus.Gauge
	accepted   prometheus.Counter
	rejected   prometheus.Counter
}

// NewMetrics builds and registers a Metrics set on reg. Pass a
// prometheus.NewRegistry() in tests to avoid polluting the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cpscan",
			Subsystem: "classpath",
			Name:      "queue_depth",
			Help:      "Number of classpath work items currently queued or in flight.",
		}),
		accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cpscan",
			Subsystem: "classpath",
			Name:      "accepted_total",
			Help:      "Classpath elements accepted into the resolved output.",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cpscan",
			Subsystem: "classpath",
			Name:      "rejected_total",
			Help:      "Classpath elements rejected during validation.",
		}),
	}
	reg.MustRegister(m.queueDepth, m.accepted, m.rejected)
	return m
}

func (m *Metrics) setQueueDepth(v float64) {
	if m == nil {
		return
	}
	m.queueDepth.Set(v)
}
