package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instrumentation for live sessions: active
// count, patches sent, handler errors, and flush cycles, per
// SPEC_FULL.md's DOMAIN STACK. Every method is a no-op on a nil *Metrics,
// same convention as layout.Metrics.
type Metrics struct {
	sessionsActive     prometheus.Gauge
	patchesSentTotal   prometheus.Counter
	handlerErrorsTotal prometheus.Counter
	flushCyclesTotal   prometheus.Counter
}

// NewMetrics registers the session Prometheus metrics against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		sessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "flowui",
			Subsystem: "session",
			Name:      "active",
			Help:      "Number of sessions currently in ACTIVE or later, pre-CLOSED state.",
		}),
		patchesSentTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "flowui",
			Subsystem: "session",
			Name:      "patches_sent_total",
			Help:      "Total number of outbound patches written to a transport.",
		}),
		handlerErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "flowui",
			Subsystem: "session",
			Name:      "handler_errors_total",
			Help:      "Total number of handler panics/errors caught and surfaced as error patches.",
		}),
		flushCyclesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "flowui",
			Subsystem: "session",
			Name:      "flush_cycles_total",
			Help:      "Total number of reactive scope flushes run across all sessions.",
		}),
	}
}

func (m *Metrics) sessionStarted() {
	if m != nil {
		m.sessionsActive.Inc()
	}
}

func (m *Metrics) sessionEnded() {
	if m != nil {
		m.sessionsActive.Dec()
	}
}

func (m *Metrics) patchSent() {
	if m != nil {
		m.patchesSentTotal.Inc()
	}
}

func (m *Metrics) handlerError() {
	if m != nil {
		m.handlerErrorsTotal.Inc()
	}
}

func (m *Metrics) flushCycle() {
	if m != nil {
		m.flushCyclesTotal.Inc()
	}
}
