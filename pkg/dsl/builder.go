package dsl

import (
	"fmt"

	"github.com/aretw0/automata/pkg/automaton"
	"github.com/aretw0/automata/pkg/domain"
)

// Builder manages the automaton construction.
type Builder struct {
	kind        domain.Kind
	order       []string
	states      map[string]*StateBuilder
	transitions []*TransitionBuilder
}

// New creates a new builder for an automaton of the given kind.
func New(kind domain.Kind) *Builder {
	return &Builder{
		kind:   kind,
		states: make(map[string]*StateBuilder),
	}
}

// Add creates a new state in the automaton, labelled with its ID.
// If the state already exists, it returns the existing builder.
func (b *Builder) Add(id string) *StateBuilder {
	if sb, ok := b.states[id]; ok {
		return sb
	}
	sb := &StateBuilder{
		state:   domain.State{ID: id, Label: id},
		builder: b,
	}
	b.states[id] = sb
	b.order = append(b.order, id)
	return sb
}

// Document assembles the portable document. Transition IDs default to t0, t1, ...
func (b *Builder) Document() domain.Document {
	doc := domain.Document{
		Kind:        b.kind,
		States:      make([]domain.State, 0, len(b.order)),
		Transitions: make([]domain.Transition, 0, len(b.transitions)),
	}
	for _, id := range b.order {
		doc.States = append(doc.States, b.states[id].state)
	}
	for i, tb := range b.transitions {
		t := tb.transition.Clone()
		if t.ID == "" {
			t.ID = fmt.Sprintf("t%d", i)
		}
		doc.Transitions = append(doc.Transitions, t)
	}
	return doc
}

// Build compiles the automaton into a Model.
func (b *Builder) Build(opts ...automaton.Option) (*automaton.Model, error) {
	doc := b.Document()
	for _, tb := range b.transitions {
		if tb.transition.To == "" {
			return nil, fmt.Errorf("transition from %s on %v has no target: call Go", tb.transition.From, tb.transition.Symbols)
		}
	}
	m, err := automaton.New(doc.Kind, doc.States, doc.Transitions, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build automaton: %w", err)
	}
	return m, nil
}

// MustBuild is Build for fixtures; it panics on error.
func (b *Builder) MustBuild(opts ...automaton.Option) *automaton.Model {
	m, err := b.Build(opts...)
	if err != nil {
		panic(err)
	}
	return m
}
