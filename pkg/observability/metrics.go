package observability

import (
	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/simulator"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the counters of the automata engine.
type Metrics struct {
	Simulations *prometheus.CounterVec
	Steps       *prometheus.CounterVec
	Conversions *prometheus.CounterVec
	Diagnostics *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them on reg.
// A nil registerer leaves them unregistered, which is handy in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Simulations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "automata_simulations_total",
				Help: "Total number of word simulations run to completion",
			},
			[]string{"kind", "result"},
		),
		Steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "automata_steps_total",
				Help: "Total number of simulator steps",
			},
			[]string{"kind", "direction"},
		),
		Conversions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "automata_conversions_total",
				Help: "Total number of conversions between automaton kinds",
			},
			[]string{"from", "to"},
		),
		Diagnostics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "automata_diagnostics_total",
				Help: "Total number of validation findings by severity",
			},
			[]string{"severity"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Simulations, m.Steps, m.Conversions, m.Diagnostics)
	}
	return m
}

// SimulatorHooks returns hooks counting runs and steps for the given kind.
// next, when set, is chained after the counters.
func (m *Metrics) SimulatorHooks(kind domain.Kind, next simulator.Hooks) simulator.Hooks {
	return simulator.Hooks{
		OnSimulate: func(k domain.Kind, res domain.Result) {
			m.ObserveSimulation(k, res)
			if next.OnSimulate != nil {
				next.OnSimulate(k, res)
			}
		},
		OnStep: func(ev simulator.StepEvent) {
			m.Steps.WithLabelValues(string(kind), string(ev.Direction)).Inc()
			if next.OnStep != nil {
				next.OnStep(ev)
			}
		},
		OnHighlight: next.OnHighlight,
	}
}

// ObserveSimulation records the outcome of a completed run.
func (m *Metrics) ObserveSimulation(kind domain.Kind, res domain.Result) {
	m.Simulations.WithLabelValues(string(kind), outcome(res.Success)).Inc()
}

// ObserveConversion records a kind switch.
func (m *Metrics) ObserveConversion(from, to domain.Kind) {
	m.Conversions.WithLabelValues(string(from), string(to)).Inc()
}

// ObserveDiagnostics counts findings by severity.
func (m *Metrics) ObserveDiagnostics(ds []domain.Diagnostic) {
	for _, d := range ds {
		m.Diagnostics.WithLabelValues(string(d.Severity)).Inc()
	}
}

func outcome(accepted bool) string {
	if accepted {
		return "accepted"
	}
	return "rejected"
}
