package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics agrupa os coletores do barramento de comandos.
type Metrics struct {
	CommandsTotal   *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	QueriesTotal    *prometheus.CounterVec
	EventsTotal     *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CommandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "schedule_commands_total",
				Help: "Total number of dispatched commands",
			},
			[]string{"command", "outcome"},
		),
		CommandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "schedule_command_seconds",
				Help:    "Duration of command handling",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "schedule_queries_total",
				Help: "Total number of dispatched queries",
			},
			[]string{"query", "outcome"},
		),
		EventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "schedule_events_total",
				Help: "Total number of published events",
			},
			[]string{"event"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.CommandsTotal, m.CommandDuration, m.QueriesTotal, m.EventsTotal)
	}
	return m
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
