package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for CommandsTotal
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Direction labels for MessagesTotal
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// Metrics holds the Prometheus collectors for the protocol endpoint
type Metrics struct {
	CommandsTotal      *prometheus.CounterVec
	ParseFailuresTotal prometheus.Counter
	SessionsActive     prometheus.Gauge
	MessagesTotal      *prometheus.CounterVec
}

// New registers the collectors on reg. Use a fresh registry per server so
// tests can create several.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CommandsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inspectorjson_commands_total",
				Help: "Protocol commands dispatched, by method and outcome",
			},
			[]string{"method", "outcome"},
		),
		ParseFailuresTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "inspectorjson_parse_failures_total",
				Help: "Incoming messages that were not valid JSON",
			},
		),
		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "inspectorjson_sessions_active",
				Help: "Open frontend sessions",
			},
		),
		MessagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inspectorjson_messages_total",
				Help: "Websocket messages, by direction",
			},
			[]string{"direction"},
		),
	}
}

// RecordCommand counts one dispatched command. Nil receivers are ignored so
// callers can run without metrics.
func (m *Metrics) RecordCommand(method, outcome string) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(method, outcome).Inc()
}

func (m *Metrics) RecordParseFailure() {
	if m == nil {
		return
	}
	m.ParseFailuresTotal.Inc()
}

func (m *Metrics) RecordMessage(direction string) {
	if m == nil {
		return
	}
	m.MessagesTotal.WithLabelValues(direction).Inc()
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.SessionsActive.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.SessionsActive.Dec()
}
