package gateway

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Turn outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeGuard    = "guard"
	OutcomeFallback = "fallback"
	OutcomeError    = "error"
)

// Metrics holds the Prometheus collectors for the gateway. Each Gateway owns
// its registry so tests can run side by side.
type Metrics struct {
	registry *prometheus.Registry

	turnsTotal    *prometheus.CounterVec
	turnDuration  prometheus.Histogram
	guardHits     prometheus.Counter
	parseFailures prometheus.Counter
	wsClients     prometheus.Gauge
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taberna_turns_total",
			Help: "Chat turns by outcome.",
		}, []string{"mode", "outcome"}),
		turnDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "taberna_turn_duration_seconds",
			Help:    "Wall time of a full turn, including the model round trip.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		guardHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taberna_guard_hits_total",
			Help: "Turns answered by the out-of-world guard without a model call.",
		}),
		parseFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taberna_parse_failures_total",
			Help: "Model replies that did not match the JSON contract.",
		}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "taberna_ws_clients",
			Help: "Connected transcript WebSocket clients.",
		}),
	}

	m.registry.MustRegister(m.turnsTotal, m.turnDuration, m.guardHits, m.parseFailures, m.wsClients)
	return m
}

// Registry returns the registry backing /metrics.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// RecordTurn records one finished turn.
func (m *Metrics) RecordTurn(mode, outcome string, elapsed time.Duration) {
	m.turnsTotal.WithLabelValues(mode, outcome).Inc()
	m.turnDuration.Observe(elapsed.Seconds())
}

// RecordGuardHit counts a turn answered by the guard short-circuit.
func (m *Metrics) RecordGuardHit() { m.guardHits.Inc() }

// RecordParseFailure counts a model reply outside the JSON contract.
func (m *Metrics) RecordParseFailure() { m.parseFailures.Inc() }

// ClientConnected and ClientDisconnected track the WebSocket gauge.
func (m *Metrics) ClientConnected()    { m.wsClients.Inc() }
func (m *Metrics) ClientDisconnected() { m.wsClients.Dec() }
