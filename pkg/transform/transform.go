// Package transform converts automata between classes.
// Every function builds a new Model and leaves its input untouched.
package transform

import (
	"fmt"

	"github.com/aretw0/automata/pkg/automaton"
	"github.com/aretw0/automata/pkg/domain"
	"github.com/google/uuid"
)

// Convert returns m expressed as the target kind. Converting to the same kind clones.
func Convert(m *automaton.Model, target domain.Kind) (*automaton.Model, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedKind, target)
	}
	if m.Kind() == target {
		return m.Clone(), nil
	}
	switch m.Kind() {
	case domain.KindDFA:
		if target == domain.KindNFA {
			return DFAToNFA(m)
		}
		return ToPDA(m)
	case domain.KindNFA:
		if target == domain.KindDFA {
			return NFAToDFA(m)
		}
		return ToPDA(m)
	case domain.KindPDA:
		if target == domain.KindDFA {
			return PDAToDFA(m)
		}
		return PDAToNFA(m)
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedKind, m.Kind())
}

// DFAToNFA reinterprets a DFA as an NFA. Every DFA already is one.
func DFAToNFA(m *automaton.Model) (*automaton.Model, error) {
	if err := expect(m, domain.KindDFA); err != nil {
		return nil, err
	}
	return relabel(m, domain.KindNFA, nil)
}

// ToPDA turns a finite automaton into a PDA that never touches its stack.
func ToPDA(m *automaton.Model) (*automaton.Model, error) {
	if m.Kind() == domain.KindPDA {
		return m.Clone(), nil
	}
	return relabel(m, domain.KindPDA, func(t *domain.Transition) {
		t.StackOperations = []domain.StackOperation{{Operation: domain.OpNone}}
	})
}

// PDAToNFA drops every stack program. The result is exact only when the
// stack never constrained the PDA; otherwise it may accept more words.
func PDAToNFA(m *automaton.Model) (*automaton.Model, error) {
	if err := expect(m, domain.KindPDA); err != nil {
		return nil, err
	}
	return relabel(m, domain.KindNFA, nil)
}

// PDAToDFA is PDAToNFA followed by subset construction.
func PDAToDFA(m *automaton.Model) (*automaton.Model, error) {
	nfa, err := PDAToNFA(m)
	if err != nil {
		return nil, err
	}
	return NFAToDFA(nfa)
}

// UsesStack reports whether any transition of a PDA has an effective stack operation,
// i.e. whether PDAToNFA would lose information.
func UsesStack(m *automaton.Model) bool {
	if m.Kind() != domain.KindPDA {
		return false
	}
	for _, t := range m.Transitions() {
		for _, op := range t.StackOperations {
			if op.Operation != domain.OpNone {
				return true
			}
		}
	}
	return false
}

// relabel copies m under another kind; the model re-derives labels and drops
// stack programs for finite kinds.
func relabel(m *automaton.Model, kind domain.Kind, edit func(*domain.Transition)) (*automaton.Model, error) {
	doc := m.Document()
	if edit != nil {
		for i := range doc.Transitions {
			edit(&doc.Transitions[i])
		}
	}
	return automaton.New(kind, doc.States, doc.Transitions)
}

func expect(m *automaton.Model, kind domain.Kind) error {
	if m.Kind() != kind {
		return fmt.Errorf("%w: expected %s, got %s", domain.ErrUnsupportedKind, kind, m.Kind())
	}
	return nil
}

// AddSinkState completes a DFA: a fresh non-final sink loops on the whole
// alphabet and receives, from every state, the symbols that state lacks.
// A DFA that is already total is returned as a clone.
func AddSinkState(m *automaton.Model) (*automaton.Model, error) {
	if err := expect(m, domain.KindDFA); err != nil {
		return nil, err
	}
	out := m.Clone()
	alphabet := out.Alphabet()
	if len(alphabet) == 0 {
		return out, nil
	}

	missing := make(map[string][]string)
	var order []string
	for _, s := range out.States() {
		covered := make(map[string]bool)
		for _, t := range out.TransitionsFrom(s.ID) {
			for _, sym := range t.Symbols {
				covered[sym] = true
			}
		}
		for _, sym := range alphabet {
			if !covered[sym] {
				if _, seen := missing[s.ID]; !seen {
					order = append(order, s.ID)
				}
				missing[s.ID] = append(missing[s.ID], sym)
			}
		}
	}
	if len(order) == 0 {
		return out, nil
	}

	sink := domain.State{ID: uuid.NewString(), Label: out.NewStateLabel()}
	if err := out.AddState(sink); err != nil {
		return nil, err
	}
	if err := out.AddTransition(domain.Transition{From: sink.ID, To: sink.ID, Symbols: alphabet}); err != nil {
		return nil, err
	}
	for _, id := range order {
		if err := out.AddTransition(domain.Transition{From: id, To: sink.ID, Symbols: missing[id]}); err != nil {
			return nil, err
		}
	}
	return out, nil
}
