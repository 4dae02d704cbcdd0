package layout

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instrumentation for the layout solver:
// solve count, cache hits/misses, and boundary subtrees solved in
// parallel. Callers that don't want metrics (most tests) can pass a nil
// *Metrics to Solve; every method is a no-op on a nil *Metrics.
type Metrics struct {
	solvesTotal      prometheus.Counter
	cacheHitsTotal   prometheus.Counter
	cacheMissesTotal prometheus.Counter
	parallelSolves   prometheus.Counter
}

// NewMetrics registers the layout solver's Prometheus metrics against reg.
// Pass prometheus.DefaultRegisterer for the global registry, or a fresh
// prometheus.NewRegistry() in tests that create more than one Metrics
// instance in the same process.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		solvesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "flowui",
			Subsystem: "layout",
			Name:      "solves_total",
			Help:      "Total number of layout node solves performed.",
		}),
		cacheHitsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "flowui",
			Subsystem: "layout",
			Name:      "cache_hits_total",
			Help:      "Total number of layout solves short-circuited by a cache hit.",
		}),
		cacheMissesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "flowui",
			Subsystem: "layout",
			Name:      "cache_misses_total",
			Help:      "Total number of layout solves that required remeasurement.",
		}),
		parallelSolves: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "flowui",
			Subsystem: "layout",
			Name:      "parallel_boundary_solves_total",
			Help:      "Total number of layout boundary subtrees solved on the worker pool.",
		}),
	}
}

func (m *Metrics) solve() {
	if m != nil {
		m.solvesTotal.Inc()
	}
}

func (m *Metrics) cacheHit() {
	if m != nil {
		m.cacheHitsTotal.Inc()
	}
}

func (m *Metrics) cacheMiss() {
	if m != nil {
		m.cacheMissesTotal.Inc()
	}
}

func (m *Metrics) parallelSolve() {
	if m != nil {
		m.parallelSolves.Inc()
	}
}
