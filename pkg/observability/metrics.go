// Package observability provides Prometheus instrumentation for script
// nodes. Metrics are optional: a node without metrics attached pays nothing
// on the render path.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors a Node updates during its lifecycle.
type Metrics struct {
	ScriptLoads    prometheus.Counter
	LoadFailures   prometheus.Counter
	RenderBlocks   prometheus.Counter
	RenderErrors   prometheus.Counter
	RenderDuration prometheus.Histogram
}

// NewMetrics creates unregistered collectors. Call Register to attach them
// to a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		ScriptLoads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scriptnode_script_loads_total",
			Help: "Successful script loads (including the initial one).",
		}),
		LoadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scriptnode_script_load_failures_total",
			Help: "Scripts rejected by validation or the load step.",
		}),
		RenderBlocks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scriptnode_render_blocks_total",
			Help: "Blocks rendered.",
		}),
		RenderErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scriptnode_render_errors_total",
			Help: "Blocks whose render hook raised a contained script error.",
		}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scriptnode_render_duration_seconds",
			Help:    "Wall time of one render call.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
	}
}

// Register attaches all collectors to the given registerer.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.ScriptLoads,
		m.LoadFailures,
		m.RenderBlocks,
		m.RenderErrors,
		m.RenderDuration,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
