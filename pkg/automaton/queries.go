package automaton

import (
	"github.com/aretw0/automata/pkg/domain"
)

// State returns the state with the given ID. The entry marker is never returned.
func (m *Model) State(id string) (domain.State, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.states[id]
	if !ok {
		return domain.State{}, false
	}
	return *s, true
}

// Transition returns the transition with the given ID. The entry transition is never returned.
func (m *Model) Transition(id string) (domain.Transition, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.transitions[id]
	if !ok {
		return domain.Transition{}, false
	}
	return t.Clone(), true
}

// States returns every user state in insertion order.
func (m *Model) States() []domain.State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.State, 0, len(m.stateOrder))
	for _, id := range m.stateOrder {
		out = append(out, *m.states[id])
	}
	return out
}

// Transitions returns every user transition in insertion order.
func (m *Model) Transitions() []domain.Transition {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Transition, 0, len(m.transOrder))
	for _, id := range m.transOrder {
		out = append(out, m.transitions[id].Clone())
	}
	return out
}

// TransitionsFrom returns the transitions leaving stateID.
func (m *Model) TransitionsFrom(stateID string) []domain.Transition {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Transition
	for _, id := range m.transOrder {
		if t := m.transitions[id]; t.From == stateID {
			out = append(out, t.Clone())
		}
	}
	return out
}

// Alphabet returns the distinct non-empty symbols used by any transition,
// in order of first appearance.
func (m *Model) Alphabet() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.alphabetLocked()
}

func (m *Model) alphabetLocked() []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, id := range m.transOrder {
		for _, s := range m.transitions[id].Symbols {
			if s == domain.Epsilon || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func (m *Model) hasEpsilonLocked() bool {
	for _, id := range m.transOrder {
		if m.transitions[id].IsEpsilon() {
			return true
		}
	}
	return false
}

// FinalStates returns the accepting states in insertion order.
func (m *Model) FinalStates() []domain.State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.State
	for _, id := range m.stateOrder {
		if s := m.states[id]; s.Final {
			out = append(out, *s)
		}
	}
	return out
}

// InitialState returns the single initial state, if any.
func (m *Model) InitialState() (domain.State, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialLocked()
}

func (m *Model) initialLocked() (domain.State, bool) {
	if m.entry == nil {
		return domain.State{}, false
	}
	s, ok := m.states[m.entry.transition.To]
	if !ok {
		return domain.State{}, false
	}
	return *s, true
}

// EntryMarker returns the synthetic entry state and its transition into the
// initial state. It exists exactly when an initial state exists.
func (m *Model) EntryMarker() (domain.State, domain.Transition, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.entry == nil {
		return domain.State{}, domain.Transition{}, false
	}
	return m.entry.state, m.entry.transition.Clone(), true
}

// FormalDefinition builds the mathematical view of the automaton.
// Labels are used for states; the relation lists one tuple per symbol.
func (m *Model) FormalDefinition() domain.FormalDefinition {
	m.mu.RLock()
	defer m.mu.RUnlock()

	def := domain.FormalDefinition{
		Kind:        m.kind,
		States:      []string{},
		Alphabet:    m.alphabetLocked(),
		Transitions: []domain.Tuple{},
		Finals:      []string{},
	}
	for _, id := range m.stateOrder {
		s := m.states[id]
		def.States = append(def.States, s.Label)
		if s.Final {
			def.Finals = append(def.Finals, s.Label)
		}
	}
	for _, id := range m.transOrder {
		t := m.transitions[id]
		from, to := m.states[t.From].Label, m.states[t.To].Label
		symbols := t.Symbols
		if len(symbols) == 0 {
			symbols = []string{domain.Epsilon}
		}
		for _, sym := range symbols {
			def.Transitions = append(def.Transitions, domain.Tuple{From: from, Symbol: sym, To: to})
		}
	}
	if initial, ok := m.initialLocked(); ok {
		def.Initial = initial.Label
	}
	return def
}

// TransitionTable builds the state x symbol table. An ε column is appended
// when any transition moves without input.
func (m *Model) TransitionTable() domain.TransitionTable {
	m.mu.RLock()
	defer m.mu.RUnlock()

	symbols := m.alphabetLocked()
	if m.hasEpsilonLocked() {
		symbols = append(symbols, domain.Epsilon)
	}
	table := domain.TransitionTable{Symbols: symbols, Rows: []domain.TableRow{}}
	for _, sid := range m.stateOrder {
		row := domain.TableRow{State: m.states[sid].Label, Cells: make([][]string, len(symbols))}
		for i, sym := range symbols {
			cell := []string{}
			for _, tid := range m.transOrder {
				t := m.transitions[tid]
				if t.From != sid {
					continue
				}
				matches := t.Accepts(sym)
				if sym == domain.Epsilon {
					matches = t.IsEpsilon()
				}
				if matches {
					cell = append(cell, m.states[t.To].Label)
				}
			}
			row.Cells[i] = cell
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// Document returns the persistable form of the automaton. Labels of
// transitions are omitted since they are derived.
func (m *Model) Document() domain.Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc := domain.Document{
		Kind:        m.kind,
		States:      make([]domain.State, 0, len(m.stateOrder)),
		Transitions: make([]domain.Transition, 0, len(m.transOrder)),
	}
	for _, id := range m.stateOrder {
		doc.States = append(doc.States, *m.states[id])
	}
	for _, id := range m.transOrder {
		t := m.transitions[id].Clone()
		t.Label = ""
		if t.Symbols == nil {
			t.Symbols = []string{}
		}
		doc.Transitions = append(doc.Transitions, t)
	}
	return doc
}

// Clone returns an independent copy with the same states and transitions.
// Subscribers are not copied and the entry marker gets a fresh identity.
func (m *Model) Clone() *Model {
	doc := m.Document()
	c, err := New(m.kind, doc.States, doc.Transitions, WithLogger(m.logger))
	if err != nil {
		// doc comes from a well-formed model
		panic(err)
	}
	return c
}
