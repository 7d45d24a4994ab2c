package archive

import "github.com/prometheus/client_golang/prometheus"

// Metrics is the handler's optional observability hook. A nil *Metrics
// disables all instrumentation.
type Metrics struct {
	mmapReleases  prometheus.Counter
	openArchives  prometheus.Gauge
	prewarmQueued prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		mmapReleases: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cpscan",
			Subsystem: "archive",
			Name:      "mmap_releases_total",
			Help:      "Mmap chunk releases across every PhysicalArchive owned by this handler.",
		}),
		openArchives: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cpscan",
			Subsystem: "archive",
			Name:      "open_archives",
			Help:      "Logical archives currently open. Registered only; Handler never sets it, so it reads 0.",
		}),
		prewarmQueued: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cpscan",
			Subsystem: "archive",
			Name:      "prewarm_queue_depth",
			Help:      "Paths queued in the current Prewarm batch.",
		}),
	}
	reg.MustRegister(m.mmapReleases, m.openArchives, m.prewarmQueued)
	return m
}
