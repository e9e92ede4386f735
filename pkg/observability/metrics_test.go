package observability_test

import (
	"testing"

	"github.com/aretw0/automata/internal/testutils"
	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/observability"
	"github.com/aretw0/automata/pkg/simulator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue finds a counter sample by name and label values.
func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestMetrics_SimulatorHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	highlighted := 0
	hooks := metrics.SimulatorHooks(domain.KindDFA, simulator.Hooks{
		OnHighlight: func(simulator.Highlight) { highlighted++ },
	})
	sim := simulator.New(testutils.EvenZerosDFA(t), simulator.WithHooks(hooks))

	sim.SetWord("00")
	sim.Simulate()
	sim.SetWord("0")
	sim.Simulate()
	sim.StepForward(true)
	sim.StepBackward(false)

	assert.Equal(t, 1.0, counterValue(t, reg, "automata_simulations_total", map[string]string{"kind": "dfa", "result": "accepted"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "automata_simulations_total", map[string]string{"kind": "dfa", "result": "rejected"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "automata_steps_total", map[string]string{"kind": "dfa", "direction": "forward"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "automata_steps_total", map[string]string{"kind": "dfa", "direction": "backward"}))
	assert.Equal(t, 1, highlighted)
}

func TestMetrics_ConversionsAndDiagnostics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	metrics.ObserveConversion(domain.KindNFA, domain.KindDFA)
	metrics.ObserveDiagnostics([]domain.Diagnostic{
		{Severity: domain.SeverityError},
		{Severity: domain.SeverityWarning},
		{Severity: domain.SeverityError},
	})

	assert.Equal(t, 1.0, counterValue(t, reg, "automata_conversions_total", map[string]string{"from": "nfa", "to": "dfa"}))
	assert.Equal(t, 2.0, counterValue(t, reg, "automata_diagnostics_total", map[string]string{"severity": "error"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "automata_diagnostics_total", map[string]string{"severity": "warning"}))
}

func TestNewMetrics_NilRegisterer(t *testing.T) {
	assert.NotPanics(t, func() {
		observability.NewMetrics(nil).ObserveConversion(domain.KindDFA, domain.KindPDA)
	})
}
