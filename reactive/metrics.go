package reactive

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instrumentation for a Scope: effects run,
// flush cycles, and dependency-cycle aborts, per SPEC_FULL.md's R-module
// DOMAIN STACK. Every method is a no-op on a nil *Metrics, same convention
// as layout.Metrics and session.Metrics.
type Metrics struct {
	effectsRunTotal  prometheus.Counter
	flushesTotal     prometheus.Counter
	cycleAbortsTotal prometheus.Counter
}

// NewMetrics registers the reactive scope's Prometheus metrics against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		effectsRunTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "flowui",
			Subsystem: "reactive",
			Name:      "effects_run_total",
			Help:      "Total number of effect runs across all flushes.",
		}),
		flushesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "flowui",
			Subsystem: "reactive",
			Name:      "flushes_total",
			Help:      "Total number of Scope.Flush calls that ran at least one effect.",
		}),
		cycleAbortsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "flowui",
			Subsystem: "reactive",
			Name:      "cycle_aborts_total",
			Help:      "Total number of flushes aborted after exceeding max propagation depth.",
		}),
	}
}

func (m *Metrics) effectRun() {
	if m != nil {
		m.effectsRunTotal.Inc()
	}
}

func (m *Metrics) flush() {
	if m != nil {
		m.flushesTotal.Inc()
	}
}

func (m *Metrics) cycleAbort() {
	if m != nil {
		m.cycleAbortsTotal.Inc()
	}
}
