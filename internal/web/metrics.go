package web

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts fetch cycles served over HTTP.
type Metrics struct {
	registry *prometheus.Registry

	Cycles   *prometheus.CounterVec
	Duration prometheus.Histogram
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Cycles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "telemetrydash",
			Subsystem: "dashboard",
			Name:      "fetch_cycles_total",
			Help:      "Number of fetch cycles by resulting view",
		}, []string{"view"}),
		Duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "telemetrydash",
			Subsystem: "dashboard",
			Name:      "fetch_cycle_duration_seconds",
			Help:      "Duration of fetch cycles",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
