package cli

import (
	"context"
	"io"
	"sync"

	"github.com/aretw0/automata"
	"github.com/aretw0/automata/internal/presentation/tui"
	"github.com/aretw0/automata/pkg/automaton"
	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/simulator"
)

// StateLabels maps state IDs to labels for trace output.
func StateLabels(m *automaton.Model) map[string]string {
	labels := make(map[string]string)
	for _, s := range m.States() {
		labels[s.ID] = s.Label
	}
	return labels
}

// Trace steps word through m without delay and prints every configuration.
func Trace(app *App, m *automaton.Model, word string, p *tui.Printer) (domain.Result, error) {
	ed, err := app.Editor(m)
	if err != nil {
		return domain.Result{}, err
	}
	labels := StateLabels(m)
	sim := ed.Simulator()
	sim.SetWord(word)
	p.Step(labels, sim.Configuration(), domain.Result{Success: true, Message: "start"})
	for {
		res := sim.StepForward(false)
		p.Step(labels, sim.Configuration(), res)
		if res.FinalStep || !res.Success {
			return res, nil
		}
	}
}

// Animate plays word on the simulator's timer, printing each step as it
// happens, until the word is decided or ctx is cancelled.
func Animate(ctx context.Context, app *App, m *automaton.Model, word string, w io.Writer, color bool) (domain.Result, error) {
	p := tui.NewPrinter(w, color)
	labels := StateLabels(m)

	var mu sync.Mutex
	hooks := simulator.Hooks{
		OnStep: func(ev simulator.StepEvent) {
			mu.Lock()
			defer mu.Unlock()
			p.Step(labels, ev.Configuration, ev.Result)
		},
	}
	ed, err := app.Editor(m, automata.WithHooks(hooks))
	if err != nil {
		return domain.Result{}, err
	}

	sim := ed.Simulator()
	sim.SetWord(word)
	mu.Lock()
	p.Step(labels, sim.Configuration(), domain.Result{Success: true, Message: "start"})
	mu.Unlock()

	done := make(chan domain.Result, 1)
	sim.StartAnimation(func(res domain.Result) {
		if res.FinalStep || !res.Success {
			done <- res
		}
	})

	select {
	case res := <-done:
		return res, nil
	case <-ctx.Done():
		sim.StopAnimation(nil)
		return domain.Result{}, ctx.Err()
	}
}
