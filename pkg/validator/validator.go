// Package validator reports structural problems of an automaton as diagnostics.
// Nothing here stops editing or construction; callers decide what to do with the list.
package validator

import (
	"fmt"

	"github.com/aretw0/automata/pkg/automaton"
	"github.com/aretw0/automata/pkg/domain"
)

// Check runs the rules for the model's kind and returns every finding.
func Check(m *automaton.Model) []domain.Diagnostic {
	states := m.States()
	transitions := m.Transitions()

	if len(states) == 0 {
		return []domain.Diagnostic{{
			Code:     domain.CodeEmptyAutomaton,
			Message:  "automaton has no states",
			Severity: domain.SeverityInfo,
		}, {
			Code:     domain.CodeNoInitialState,
			Message:  "automaton has no initial state",
			Severity: domain.SeverityError,
		}}
	}

	var ds []domain.Diagnostic
	initial, hasInitial := m.InitialState()
	if !hasInitial {
		ds = append(ds, domain.Diagnostic{
			Code:     domain.CodeNoInitialState,
			Message:  "automaton has no initial state",
			Severity: domain.SeverityError,
		})
	}
	if len(m.FinalStates()) == 0 {
		ds = append(ds, domain.Diagnostic{
			Code:     domain.CodeNoFinalState,
			Message:  "automaton has no final state, every word is rejected",
			Severity: domain.SeverityWarning,
		})
	}
	if hasInitial {
		ds = append(ds, checkReachability(initial.ID, states, transitions)...)
	}

	switch m.Kind() {
	case domain.KindDFA:
		ds = append(ds, checkDeterminism(states, transitions, m.Alphabet())...)
	case domain.KindPDA:
		ds = append(ds, checkStackOperations(transitions)...)
	}
	return ds
}

// checkReachability crawls from the initial state over every transition,
// ignoring symbols and stack feasibility.
func checkReachability(start string, states []domain.State, transitions []domain.Transition) []domain.Diagnostic {
	adjacency := make(map[string][]string)
	for _, t := range transitions {
		adjacency[t.From] = append(adjacency[t.From], t.To)
	}

	visited := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range adjacency[current] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}

	var ds []domain.Diagnostic
	for _, s := range states {
		if visited[s.ID] {
			continue
		}
		s := s
		ds = append(ds, domain.Diagnostic{
			Code:     domain.CodeUnreachableState,
			Message:  fmt.Sprintf("state %s is unreachable from the initial state", s.Label),
			Severity: domain.SeverityWarning,
			State:    &s,
		})
	}
	return ds
}

// checkDeterminism requires exactly one transition per (state, symbol) and no ε-moves.
func checkDeterminism(states []domain.State, transitions []domain.Transition, alphabet []string) []domain.Diagnostic {
	var ds []domain.Diagnostic
	for _, t := range transitions {
		if t.IsEpsilon() {
			t := t
			ds = append(ds, domain.Diagnostic{
				Code:       domain.CodeEpsilonTransition,
				Message:    fmt.Sprintf("transition %s moves on ε, not allowed in a DFA", t.Label),
				Severity:   domain.SeverityError,
				Transition: &t,
			})
		}
	}

	for _, s := range states {
		s := s
		for _, sym := range alphabet {
			var matching []domain.Transition
			for _, t := range transitions {
				if t.From == s.ID && t.Accepts(sym) {
					matching = append(matching, t)
				}
			}
			switch len(matching) {
			case 0:
				ds = append(ds, domain.Diagnostic{
					Code:     domain.CodeMissingTransition,
					Message:  fmt.Sprintf("state %s has no transition for symbol %s", s.Label, sym),
					Severity: domain.SeverityError,
					State:    &s,
				})
			case 1:
			default:
				second := matching[1]
				ds = append(ds, domain.Diagnostic{
					Code:       domain.CodeNondeterminism,
					Message:    fmt.Sprintf("state %s has %d transitions for symbol %s", s.Label, len(matching), sym),
					Severity:   domain.SeverityError,
					State:      &s,
					Transition: &second,
				})
			}
		}
	}
	return ds
}

// checkStackOperations validates the shape of each stack program. Feasibility
// of pops is a runtime concern and is not checked here.
func checkStackOperations(transitions []domain.Transition) []domain.Diagnostic {
	var ds []domain.Diagnostic
	for _, t := range transitions {
		t := t
		for i, op := range t.StackOperations {
			switch {
			case !op.Operation.Valid():
				ds = append(ds, domain.Diagnostic{
					Code:       domain.CodeInvalidStackOp,
					Message:    fmt.Sprintf("transition %s has unknown stack operation %q", t.Label, op.Operation),
					Severity:   domain.SeverityError,
					Transition: &t,
				})
			case (op.Operation == domain.OpPush || op.Operation == domain.OpPop) && op.Symbol == "":
				ds = append(ds, domain.Diagnostic{
					Code:       domain.CodeInvalidStackOp,
					Message:    fmt.Sprintf("transition %s: %s needs a stack symbol", t.Label, op.Operation),
					Severity:   domain.SeverityError,
					Transition: &t,
				})
			case op.Operation == domain.OpEmpty && i > 0:
				ds = append(ds, domain.Diagnostic{
					Code:       domain.CodeMisplacedEmptyCheck,
					Message:    fmt.Sprintf("transition %s: empty check must be the first stack operation", t.Label),
					Severity:   domain.SeverityError,
					Transition: &t,
				})
			case (op.Operation == domain.OpEmpty || op.Operation == domain.OpNone) && op.Symbol != "":
				ds = append(ds, domain.Diagnostic{
					Code:       domain.CodeIgnoredStackSymbol,
					Message:    fmt.Sprintf("transition %s: symbol %q is ignored by %s", t.Label, op.Symbol, op.Operation),
					Severity:   domain.SeverityWarning,
					Transition: &t,
				})
			}
		}
	}
	return ds
}

// HasFatal reports whether any diagnostic prevents simulation.
func HasFatal(ds []domain.Diagnostic) bool {
	for _, d := range ds {
		if d.Fatal() {
			return true
		}
	}
	return false
}

// Filter returns the diagnostics with the given severity.
func Filter(ds []domain.Diagnostic, severity domain.Severity) []domain.Diagnostic {
	var out []domain.Diagnostic
	for _, d := range ds {
		if d.Severity == severity {
			out = append(out, d)
		}
	}
	return out
}
