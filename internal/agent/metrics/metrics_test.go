package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-core-poc-v1/salesbot/internal/agent/model"
)

// counter sums the samples of family name whose labels include want.
func counter(t *testing.T, reg *prometheus.Registry, name string, want map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	var total float64
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			labels := make(map[string]string)
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			match := true
			for k, v := range want {
				if labels[k] != v {
					match = false
				}
			}
			if match {
				total += m.GetCounter().GetValue()
			}
		}
	}
	return total
}

func TestObservers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveClassification(model.Classification{Intent: model.IntentPriceQuestion, Method: model.MethodPattern})
	m.ObserveClassification(model.Classification{Intent: model.IntentPriceQuestion, Method: model.MethodPattern})
	m.ObserveClassification(model.Classification{Intent: model.IntentAgreement, Method: model.MethodContext})
	m.ObserveStep(model.StepResult{PrevState: "greeting", NextState: "spin_situation"})
	m.ObserveRetrieval("факты")
	m.ObserveRetrieval("")
	m.ObserveRetrieval("")
	m.ObserveTurn(120 * time.Millisecond)
	m.AddCost(0.002)
	m.AddCost(-1)

	assert.Equal(t, 2.0, counter(t, reg, "dialogue_classifications_total", map[string]string{"intent": "price_question", "method": "pattern"}))
	assert.Equal(t, 1.0, counter(t, reg, "dialogue_classifications_total", map[string]string{"method": "context"}))
	assert.Equal(t, 1.0, counter(t, reg, "dialogue_transitions_total", map[string]string{"from": "greeting", "to": "spin_situation"}))
	assert.Equal(t, 1.0, counter(t, reg, "dialogue_retrievals_total", map[string]string{"outcome": "hit"}))
	assert.Equal(t, 2.0, counter(t, reg, "dialogue_retrievals_total", map[string]string{"outcome": "empty"}))
	assert.InDelta(t, 0.002, counter(t, reg, "dialogue_llm_cost_usd_total", nil), 1e-12)

	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "dialogue_turn_duration_seconds")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveClassification(model.Classification{})
		m.ObserveStep(model.StepResult{})
		m.ObserveRetrieval("")
		m.ObserveTurn(time.Second)
		m.AddCost(1)
	})
}
