package automaton

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/aretw0/automata/internal/logging"
	"github.com/aretw0/automata/pkg/domain"
	"github.com/google/uuid"
)

// entryMarker is the synthetic state pointing at the initial state.
// Each Model owns its own marker so that several automata can coexist.
type entryMarker struct {
	state      domain.State
	transition domain.Transition
}

// Model holds the states and transitions of one automaton and keeps them well-formed.
// Every mutating method restores the invariants before returning and then
// notifies subscribers. Safe for concurrent use.
type Model struct {
	kind domain.Kind

	mu          sync.RWMutex
	stateOrder  []string
	states      map[string]*domain.State
	transOrder  []string
	transitions map[string]*domain.Transition
	entry       *entryMarker

	revision atomic.Uint64

	subMu       sync.Mutex
	subscribers map[int]func(domain.ChangeEvent)
	nextSub     int

	logger *slog.Logger
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger used for debug traces of invariant maintenance.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New creates a model of the given kind from an initial set of states and transitions.
// Both slices may be empty.
func New(kind domain.Kind, states []domain.State, transitions []domain.Transition, opts ...Option) (*Model, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedKind, kind)
	}
	m := &Model{
		kind:        kind,
		states:      make(map[string]*domain.State),
		transitions: make(map[string]*domain.Transition),
		subscribers: make(map[int]func(domain.ChangeEvent)),
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if len(states) == 0 && len(transitions) == 0 {
		return m, nil
	}
	if err := m.UpdateAutomaton(states, transitions); err != nil {
		return nil, err
	}
	return m, nil
}

// MustNew is like New but panics on error. Intended for tests and fixtures.
func MustNew(kind domain.Kind, states []domain.State, transitions []domain.Transition, opts ...Option) *Model {
	m, err := New(kind, states, transitions, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// Kind returns the automaton class.
func (m *Model) Kind() domain.Kind {
	return m.kind
}

// Revision increases on every completed structural mutation.
// Simulators compare it to detect that they became stale.
func (m *Model) Revision() uint64 {
	return m.revision.Load()
}

// Subscribe registers a callback invoked after every completed mutation.
// It returns a function that removes the subscription.
func (m *Model) Subscribe(fn func(domain.ChangeEvent)) func() {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.subscribers[id] = fn
	return func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		delete(m.subscribers, id)
	}
}

// commit bumps the revision and stamps the events. Caller holds m.mu.
func (m *Model) commit(events []domain.ChangeEvent) []domain.ChangeEvent {
	rev := m.revision.Add(1)
	for i := range events {
		events[i].Revision = rev
	}
	return events
}

// emit delivers events outside of the model lock so subscribers may query the model.
func (m *Model) emit(events []domain.ChangeEvent) {
	if len(events) == 0 {
		return
	}
	m.subMu.Lock()
	subs := make([]func(domain.ChangeEvent), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		subs = append(subs, fn)
	}
	m.subMu.Unlock()

	for _, ev := range events {
		for _, fn := range subs {
			fn(ev)
		}
	}
}

/* STATE MUTATIONS */

// AddState inserts a new state. An empty ID is replaced by a fresh uuid and an
// empty label by the next free "q<n>" label.
func (m *Model) AddState(s domain.State) error {
	m.mu.Lock()
	events, err := m.addStateLocked(s)
	if err == nil {
		events = m.commit(events)
	}
	m.mu.Unlock()
	if err != nil {
		return err
	}
	m.emit(events)
	return nil
}

func (m *Model) addStateLocked(s domain.State) ([]domain.ChangeEvent, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.ID == domain.EntryStateID {
		return nil, fmt.Errorf("%w: %s", domain.ErrReservedID, s.ID)
	}
	if _, exists := m.states[s.ID]; exists {
		return nil, fmt.Errorf("%w: state %s", domain.ErrDuplicateID, s.ID)
	}
	if s.Label == "" {
		s.Label = m.newStateLabelLocked()
	}

	initial := s.Initial
	s.Initial = false
	m.states[s.ID] = &s
	m.stateOrder = append(m.stateOrder, s.ID)

	events := []domain.ChangeEvent{{Type: domain.ChangeStateAdded, StateID: s.ID}}
	if initial {
		events = append(events, m.setInitialLocked(s.ID)...)
	}
	return events, nil
}

// UpdateState applies fn to a copy of the state and stores the result.
// The ID cannot be changed. Marking the state initial moves the entry marker;
// unmarking the current initial state removes it.
func (m *Model) UpdateState(id string, fn func(*domain.State)) error {
	m.mu.Lock()
	events, err := m.updateStateLocked(id, fn)
	if err == nil {
		events = m.commit(events)
	}
	m.mu.Unlock()
	if err != nil {
		return err
	}
	m.emit(events)
	return nil
}

func (m *Model) updateStateLocked(id string, fn func(*domain.State)) ([]domain.ChangeEvent, error) {
	current, ok := m.states[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrStateNotFound, id)
	}
	next := *current
	fn(&next)
	next.ID = id

	wasInitial := current.Initial
	becomesInitial := next.Initial
	next.Initial = wasInitial
	*current = next

	events := []domain.ChangeEvent{{Type: domain.ChangeStateUpdated, StateID: id}}
	switch {
	case becomesInitial && !wasInitial:
		events = append(events, m.setInitialLocked(id)...)
	case !becomesInitial && wasInitial:
		current.Initial = false
		m.clearEntryLocked()
		events = append(events, domain.ChangeEvent{Type: domain.ChangeInitialMoved})
	}
	return events, nil
}

// SetInitialState makes id the single initial state.
func (m *Model) SetInitialState(id string) error {
	return m.UpdateState(id, func(s *domain.State) { s.Initial = true })
}

// SetFinalState marks or unmarks id as accepting.
func (m *Model) SetFinalState(id string, final bool) error {
	return m.UpdateState(id, func(s *domain.State) { s.Final = final })
}

// RemoveState deletes a state and every transition entering or leaving it.
func (m *Model) RemoveState(id string) error {
	m.mu.Lock()
	st, ok := m.states[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrStateNotFound, id)
	}

	var events []domain.ChangeEvent
	for _, tid := range append([]string(nil), m.transOrder...) {
		t := m.transitions[tid]
		if t.From == id || t.To == id {
			m.deleteTransitionLocked(tid)
			events = append(events, domain.ChangeEvent{Type: domain.ChangeTransitionRemoved, TransitionID: tid})
		}
	}
	if st.Initial {
		m.clearEntryLocked()
		events = append(events, domain.ChangeEvent{Type: domain.ChangeInitialMoved})
	}
	delete(m.states, id)
	m.stateOrder = removeID(m.stateOrder, id)
	events = append(events, domain.ChangeEvent{Type: domain.ChangeStateRemoved, StateID: id})
	events = m.commit(events)
	m.mu.Unlock()

	m.emit(events)
	return nil
}

// setInitialLocked clears the initial flag everywhere else and re-creates the entry marker.
func (m *Model) setInitialLocked(id string) []domain.ChangeEvent {
	for _, other := range m.states {
		other.Initial = other.ID == id
	}
	m.entry = &entryMarker{
		state: domain.State{ID: domain.EntryStateID},
		transition: domain.Transition{
			ID:      uuid.NewString(),
			From:    domain.EntryStateID,
			To:      id,
			Symbols: []string{},
		},
	}
	m.logger.Debug("entry marker regenerated", "initial", id)
	return []domain.ChangeEvent{{Type: domain.ChangeInitialMoved, StateID: id}}
}

func (m *Model) clearEntryLocked() {
	m.entry = nil
}

/* TRANSITION MUTATIONS */

// AddTransition inserts a transition between two existing states.
// Its label is derived from the symbols (and stack operations for PDAs).
func (m *Model) AddTransition(t domain.Transition) error {
	m.mu.Lock()
	events, err := m.addTransitionLocked(t)
	if err == nil {
		events = m.commit(events)
	}
	m.mu.Unlock()
	if err != nil {
		return err
	}
	m.emit(events)
	return nil
}

func (m *Model) addTransitionLocked(t domain.Transition) ([]domain.ChangeEvent, error) {
	t = t.Clone()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if _, exists := m.transitions[t.ID]; exists {
		return nil, fmt.Errorf("%w: transition %s", domain.ErrDuplicateID, t.ID)
	}
	if m.entry != nil && t.ID == m.entry.transition.ID {
		return nil, fmt.Errorf("%w: %s", domain.ErrReservedID, t.ID)
	}
	if err := m.checkEndpointsLocked(t); err != nil {
		return nil, err
	}
	m.canonicalize(&t)
	m.transitions[t.ID] = &t
	m.transOrder = append(m.transOrder, t.ID)
	return []domain.ChangeEvent{{Type: domain.ChangeTransitionAdded, TransitionID: t.ID}}, nil
}

// UpdateTransition applies fn to a copy of the transition and stores the result.
// The label is regenerated whenever it drifted from the canonical rendering.
func (m *Model) UpdateTransition(id string, fn func(*domain.Transition)) error {
	m.mu.Lock()
	events, err := m.updateTransitionLocked(id, fn)
	if err == nil {
		events = m.commit(events)
	}
	m.mu.Unlock()
	if err != nil {
		return err
	}
	m.emit(events)
	return nil
}

func (m *Model) updateTransitionLocked(id string, fn func(*domain.Transition)) ([]domain.ChangeEvent, error) {
	current, ok := m.transitions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTransitionNotFound, id)
	}
	next := current.Clone()
	fn(&next)
	next.ID = id
	if err := m.checkEndpointsLocked(next); err != nil {
		return nil, err
	}
	m.canonicalize(&next)
	*current = next
	return []domain.ChangeEvent{{Type: domain.ChangeTransitionUpdated, TransitionID: id}}, nil
}

// RemoveTransition deletes a single transition.
func (m *Model) RemoveTransition(id string) error {
	m.mu.Lock()
	if _, ok := m.transitions[id]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrTransitionNotFound, id)
	}
	m.deleteTransitionLocked(id)
	events := m.commit([]domain.ChangeEvent{{Type: domain.ChangeTransitionRemoved, TransitionID: id}})
	m.mu.Unlock()

	m.emit(events)
	return nil
}

// RemoveTransitionsFrom deletes every transition leaving stateID and returns how many were removed.
func (m *Model) RemoveTransitionsFrom(stateID string) int {
	m.mu.Lock()
	var events []domain.ChangeEvent
	for _, tid := range append([]string(nil), m.transOrder...) {
		if m.transitions[tid].From == stateID {
			m.deleteTransitionLocked(tid)
			events = append(events, domain.ChangeEvent{Type: domain.ChangeTransitionRemoved, TransitionID: tid})
		}
	}
	if len(events) > 0 {
		events = m.commit(events)
	}
	m.mu.Unlock()

	m.emit(events)
	return len(events)
}

func (m *Model) deleteTransitionLocked(id string) {
	delete(m.transitions, id)
	m.transOrder = removeID(m.transOrder, id)
}

func (m *Model) checkEndpointsLocked(t domain.Transition) error {
	if _, ok := m.states[t.From]; !ok {
		return fmt.Errorf("%w: transition %s source %q", domain.ErrStateNotFound, t.ID, t.From)
	}
	if _, ok := m.states[t.To]; !ok {
		return fmt.Errorf("%w: transition %s target %q", domain.ErrStateNotFound, t.ID, t.To)
	}
	return nil
}

// canonicalize normalizes the symbol set, drops stack operations on finite
// automata and re-derives the label.
func (m *Model) canonicalize(t *domain.Transition) {
	t.Symbols = domain.NormalizeSymbols(t.Symbols)
	if !m.kind.UsesStack() {
		t.StackOperations = nil
	}
	if label := domain.Label(m.kind, *t); t.Label != label {
		t.Label = label
	}
}

/* BULK */

// UpdateAutomaton upserts states and transitions in one step, as done for
// programmatic loads. If several incoming states are marked initial the last
// one wins. Transition endpoints are checked before anything is applied.
func (m *Model) UpdateAutomaton(states []domain.State, transitions []domain.Transition) error {
	m.mu.Lock()
	backup := m.snapshotLocked()
	events, err := m.updateAutomatonLocked(states, transitions)
	if err != nil {
		m.restoreLocked(backup)
		m.mu.Unlock()
		return err
	}
	events = m.commit(events)
	m.mu.Unlock()
	m.emit(events)
	return nil
}

func (m *Model) updateAutomatonLocked(states []domain.State, transitions []domain.Transition) ([]domain.ChangeEvent, error) {
	states = append([]domain.State(nil), states...)
	known := make(map[string]bool, len(m.states)+len(states))
	for id := range m.states {
		known[id] = true
	}
	for i, s := range states {
		if s.ID == "" {
			states[i].ID = uuid.NewString()
			s.ID = states[i].ID
		}
		if s.ID == domain.EntryStateID {
			return nil, fmt.Errorf("%w: %s", domain.ErrReservedID, s.ID)
		}
		known[s.ID] = true
	}
	for _, t := range transitions {
		if !known[t.From] {
			return nil, fmt.Errorf("%w: transition %s source %q", domain.ErrStateNotFound, t.ID, t.From)
		}
		if !known[t.To] {
			return nil, fmt.Errorf("%w: transition %s target %q", domain.ErrStateNotFound, t.ID, t.To)
		}
	}

	var events []domain.ChangeEvent
	initialID := ""
	for _, s := range states {
		if s.Initial {
			initialID = s.ID
		}
		s.Initial = false
		if current, ok := m.states[s.ID]; ok {
			wasInitial := current.Initial
			*current = s
			current.Initial = wasInitial
			if current.Label == "" {
				current.Label = m.newStateLabelLocked()
			}
			events = append(events, domain.ChangeEvent{Type: domain.ChangeStateUpdated, StateID: s.ID})
			continue
		}
		evs, err := m.addStateLocked(s)
		if err != nil {
			return nil, err
		}
		events = append(events, evs...)
	}

	for _, t := range transitions {
		if t.ID != "" {
			if _, ok := m.transitions[t.ID]; ok {
				incoming := t.Clone()
				evs, err := m.updateTransitionLocked(t.ID, func(cur *domain.Transition) { *cur = incoming })
				if err != nil {
					return nil, err
				}
				events = append(events, evs...)
				continue
			}
		}
		evs, err := m.addTransitionLocked(t)
		if err != nil {
			return nil, err
		}
		events = append(events, evs...)
	}

	if initialID != "" {
		events = append(events, m.setInitialLocked(initialID)...)
	}
	return events, nil
}

// Load replaces the whole content of the model with the document.
// A document declaring a different kind is rejected.
func (m *Model) Load(doc domain.Document) error {
	if doc.Kind != "" && doc.Kind != m.kind {
		return fmt.Errorf("%w: document is %s, automaton is %s", domain.ErrUnsupportedKind, doc.Kind, m.kind)
	}
	m.mu.Lock()
	backup := m.snapshotLocked()
	m.resetLocked()
	events, err := m.updateAutomatonLocked(doc.States, doc.Transitions)
	if err != nil {
		m.restoreLocked(backup)
		m.mu.Unlock()
		return err
	}
	events = append(events, domain.ChangeEvent{Type: domain.ChangeLoaded})
	events = m.commit(events)
	m.mu.Unlock()

	m.emit(events)
	return nil
}

type snapshot struct {
	stateOrder  []string
	states      map[string]*domain.State
	transOrder  []string
	transitions map[string]*domain.Transition
	entry       *entryMarker
}

// snapshotLocked deep-copies the containers; the entry marker is replaced, never mutated.
func (m *Model) snapshotLocked() snapshot {
	s := snapshot{
		stateOrder:  append([]string(nil), m.stateOrder...),
		states:      make(map[string]*domain.State, len(m.states)),
		transOrder:  append([]string(nil), m.transOrder...),
		transitions: make(map[string]*domain.Transition, len(m.transitions)),
		entry:       m.entry,
	}
	for id, st := range m.states {
		cp := *st
		s.states[id] = &cp
	}
	for id, t := range m.transitions {
		cp := t.Clone()
		s.transitions[id] = &cp
	}
	return s
}

func (m *Model) restoreLocked(s snapshot) {
	m.stateOrder, m.states, m.transOrder, m.transitions, m.entry = s.stateOrder, s.states, s.transOrder, s.transitions, s.entry
}

func (m *Model) resetLocked() {
	m.stateOrder = nil
	m.states = make(map[string]*domain.State)
	m.transOrder = nil
	m.transitions = make(map[string]*domain.Transition)
	m.entry = nil
}

/* HELPERS */

// NewStateLabel returns the next free label of the form "q<n>".
func (m *Model) NewStateLabel() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.newStateLabelLocked()
}

func (m *Model) newStateLabelLocked() string {
	taken := make(map[string]bool, len(m.states))
	for _, s := range m.states {
		taken[s.Label] = true
	}
	for n := len(m.states); ; n++ {
		label := "q" + strconv.Itoa(n)
		if !taken[label] {
			return label
		}
	}
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}
