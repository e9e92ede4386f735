package testutils

import (
	"testing"

	"github.com/aretw0/automata/pkg/automaton"
	"github.com/aretw0/automata/pkg/domain"
	"github.com/stretchr/testify/require"
)

// EvenZerosDFA accepts binary words with an even number of zeros.
// States: q0 (initial, final), q1.
func EvenZerosDFA(t *testing.T) *automaton.Model {
	t.Helper()
	m, err := automaton.New(domain.KindDFA,
		[]domain.State{
			{ID: "q0", Label: "q0", Initial: true, Final: true},
			{ID: "q1", Label: "q1"},
		},
		[]domain.Transition{
			{ID: "t00", From: "q0", To: "q1", Symbols: []string{"0"}},
			{ID: "t01", From: "q0", To: "q0", Symbols: []string{"1"}},
			{ID: "t10", From: "q1", To: "q0", Symbols: []string{"0"}},
			{ID: "t11", From: "q1", To: "q1", Symbols: []string{"1"}},
		})
	require.NoError(t, err)
	return m
}

// EndsWithABNFA accepts words over {a,b} ending in "ab".
func EndsWithABNFA(t *testing.T) *automaton.Model {
	t.Helper()
	m, err := automaton.New(domain.KindNFA,
		[]domain.State{
			{ID: "q0", Label: "q0", Initial: true},
			{ID: "q1", Label: "q1"},
			{ID: "q2", Label: "q2", Final: true},
		},
		[]domain.Transition{
			{ID: "loop", From: "q0", To: "q0", Symbols: []string{"a", "b"}},
			{ID: "a", From: "q0", To: "q1", Symbols: []string{"a"}},
			{ID: "b", From: "q1", To: "q2", Symbols: []string{"b"}},
		})
	require.NoError(t, err)
	return m
}

// EpsilonNFA accepts "a" and "b" through an ε-branch: q0 -ε-> q1 -a-> q3, q0 -ε-> q2 -b-> q3.
func EpsilonNFA(t *testing.T) *automaton.Model {
	t.Helper()
	m, err := automaton.New(domain.KindNFA,
		[]domain.State{
			{ID: "q0", Label: "q0", Initial: true},
			{ID: "q1", Label: "q1"},
			{ID: "q2", Label: "q2"},
			{ID: "q3", Label: "q3", Final: true},
		},
		[]domain.Transition{
			{ID: "e1", From: "q0", To: "q1", Symbols: []string{}},
			{ID: "e2", From: "q0", To: "q2", Symbols: []string{domain.Epsilon}},
			{ID: "a", From: "q1", To: "q3", Symbols: []string{"a"}},
			{ID: "b", From: "q2", To: "q3", Symbols: []string{"b"}},
		})
	require.NoError(t, err)
	return m
}

// AnBnPDA accepts a^n b^n for n >= 0, by final state.
func AnBnPDA(t *testing.T) *automaton.Model {
	t.Helper()
	m, err := automaton.New(domain.KindPDA,
		[]domain.State{
			{ID: "q0", Label: "q0", Initial: true},
			{ID: "q1", Label: "q1"},
			{ID: "q2", Label: "q2", Final: true},
		},
		[]domain.Transition{
			{ID: "pushA", From: "q0", To: "q0", Symbols: []string{"a"},
				StackOperations: []domain.StackOperation{{Symbol: "A", Operation: domain.OpPush}}},
			{ID: "firstB", From: "q0", To: "q1", Symbols: []string{"b"},
				StackOperations: []domain.StackOperation{{Symbol: "A", Operation: domain.OpPop}}},
			{ID: "popA", From: "q1", To: "q1", Symbols: []string{"b"},
				StackOperations: []domain.StackOperation{{Symbol: "A", Operation: domain.OpPop}}},
			{ID: "done", From: "q1", To: "q2", Symbols: []string{},
				StackOperations: []domain.StackOperation{{Operation: domain.OpEmpty}}},
			{ID: "emptyWord", From: "q0", To: "q2", Symbols: []string{},
				StackOperations: []domain.StackOperation{{Operation: domain.OpEmpty}}},
		})
	require.NoError(t, err)
	return m
}
