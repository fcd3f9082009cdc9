package telemetry

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nerrad567/sigos-core/internal/signal/arbiter"
)

const namespace = "sigos"

// Metrics holds the controller's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	transitions    *prometheus.CounterVec
	ledgerDepth    prometheus.Gauge
	execFailures   prometheus.Counter
	activePriority prometheus.Gauge
	requests       *prometheus.CounterVec
	releases       *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors on a private registry,
// together with the Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_transitions_total",
			Help:      "Number of times each rule became the displayed rule.",
		}, []string{"rule"}),
		ledgerDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ledger_depth",
			Help:      "Outstanding requests after the last transition.",
		}),
		execFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "execution_failures_total",
			Help:      "Transitions whose aspect was not fully applied.",
		}),
		activePriority: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_rule_priority",
			Help:      "Priority of the displayed rule.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Request outcomes by result.",
		}, []string{"result"}),
		releases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "releases_total",
			Help:      "Release outcomes by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		m.transitions,
		m.ledgerDepth,
		m.execFailures,
		m.activePriority,
		m.requests,
		m.releases,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// OnTransition updates the transition collectors.
func (m *Metrics) OnTransition(_ context.Context, t arbiter.Transition) {
	if t.To == nil {
		return
	}
	m.transitions.WithLabelValues(t.To.ID).Inc()
	m.ledgerDepth.Set(float64(t.LedgerDepth))
	m.activePriority.Set(float64(t.To.Priority))
	if t.ExecErr != nil {
		m.execFailures.Inc()
	}
}

// ObserveRequest counts a request outcome.
func (m *Metrics) ObserveRequest(r arbiter.RequestResult) {
	m.requests.WithLabelValues(r.String()).Inc()
}

// ObserveRelease counts a release outcome.
func (m *Metrics) ObserveRelease(r arbiter.ReleaseResult) {
	m.releases.WithLabelValues(r.String()).Inc()
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
