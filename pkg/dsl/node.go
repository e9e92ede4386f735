package dsl

import "github.com/aretw0/automata/pkg/domain"

// StateBuilder provides a fluent API for configuring a state.
type StateBuilder struct {
	state   domain.State
	builder *Builder
}

// Label sets the display name.
func (s *StateBuilder) Label(label string) *StateBuilder {
	s.state.Label = label
	return s
}

// Initial marks the state as the unique initial state.
func (s *StateBuilder) Initial() *StateBuilder {
	for _, other := range s.builder.states {
		other.state.Initial = false
	}
	s.state.Initial = true
	return s
}

// Final marks the state as accepting.
func (s *StateBuilder) Final() *StateBuilder {
	s.state.Final = true
	return s
}

// On starts a transition consuming any of the given symbols.
func (s *StateBuilder) On(symbols ...string) *TransitionBuilder {
	tb := &TransitionBuilder{
		transition: domain.Transition{From: s.state.ID, Symbols: append([]string{}, symbols...)},
		from:       s,
	}
	s.builder.transitions = append(s.builder.transitions, tb)
	return tb
}

// Epsilon starts a transition that consumes no input.
func (s *StateBuilder) Epsilon() *TransitionBuilder {
	return s.On()
}

// Build returns the underlying domain.State.
func (s *StateBuilder) Build() domain.State {
	return s.state
}

// TransitionBuilder configures a transition until Go closes it.
type TransitionBuilder struct {
	transition domain.Transition
	from       *StateBuilder
}

// ID overrides the generated transition ID.
func (t *TransitionBuilder) ID(id string) *TransitionBuilder {
	t.transition.ID = id
	return t
}

func (t *TransitionBuilder) stack(op domain.StackOp, symbol string) *TransitionBuilder {
	t.transition.StackOperations = append(t.transition.StackOperations, domain.StackOperation{Symbol: symbol, Operation: op})
	return t
}

// Push adds a push of symbol.
func (t *TransitionBuilder) Push(symbol string) *TransitionBuilder {
	return t.stack(domain.OpPush, symbol)
}

// Pop adds a pop that requires symbol on top of the stack.
func (t *TransitionBuilder) Pop(symbol string) *TransitionBuilder {
	return t.stack(domain.OpPop, symbol)
}

// Empty requires the stack to be empty.
func (t *TransitionBuilder) Empty() *TransitionBuilder {
	return t.stack(domain.OpEmpty, "")
}

// Go sets the target, creating it if needed, and returns the source state
// so further transitions can be chained.
func (t *TransitionBuilder) Go(target string) *StateBuilder {
	t.from.builder.Add(target)
	t.transition.To = target
	return t.from
}
