// Package metrics exposes Prometheus instruments for the turn pipeline. A
// nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Chative-core-poc-v1/salesbot/internal/agent/model"
)

const namespace = "dialogue"

type Metrics struct {
	classifications *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	retrievals      *prometheus.CounterVec
	turnDuration    prometheus.Histogram
	llmCost         prometheus.Counter
}

// New registers the instruments on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		classifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Classified messages by intent and resolving method.",
		}, []string{"intent", "method"}),
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "State machine steps by source and target state.",
		}, []string{"from", "to"}),
		retrievals: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrievals_total",
			Help:      "Knowledge retrievals by outcome (hit or empty).",
		}, []string{"outcome"}),
		turnDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "Wall time of one conversation turn including generation.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		llmCost: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_cost_usd_total",
			Help:      "Accumulated response model cost in USD.",
		}),
	}
}

func (m *Metrics) ObserveClassification(c model.Classification) {
	if m == nil {
		return
	}
	m.classifications.WithLabelValues(c.Intent.String(), string(c.Method)).Inc()
}

func (m *Metrics) ObserveStep(r model.StepResult) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(r.PrevState), string(r.NextState)).Inc()
}

func (m *Metrics) ObserveRetrieval(facts string) {
	if m == nil {
		return
	}
	outcome := "hit"
	if facts == "" {
		outcome = "empty"
	}
	m.retrievals.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveTurn(d time.Duration) {
	if m == nil {
		return
	}
	m.turnDuration.Observe(d.Seconds())
}

func (m *Metrics) AddCost(usd float64) {
	if m == nil || usd <= 0 {
		return
	}
	m.llmCost.Add(usd)
}
