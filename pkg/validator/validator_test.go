package validator_test

import (
	"testing"

	"github.com/aretw0/automata/internal/testutils"
	"github.com/aretw0/automata/pkg/automaton"
	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes(ds []domain.Diagnostic) []domain.DiagnosticCode {
	out := make([]domain.DiagnosticCode, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Code)
	}
	return out
}

func TestCheck_CleanAutomata(t *testing.T) {
	tests := []struct {
		name  string
		model func(*testing.T) *automaton.Model
	}{
		{"total dfa", testutils.EvenZerosDFA},
		{"nfa with duplicates", testutils.EndsWithABNFA},
		{"nfa with epsilon", testutils.EpsilonNFA},
		{"pda", testutils.AnBnPDA},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := validator.Check(tt.model(t))
			assert.Empty(t, ds)
			assert.False(t, validator.HasFatal(ds))
		})
	}
}

func TestCheck_Empty(t *testing.T) {
	ds := validator.Check(automaton.MustNew(domain.KindNFA, nil, nil))
	assert.Equal(t, []domain.DiagnosticCode{domain.CodeEmptyAutomaton, domain.CodeNoInitialState}, codes(ds))
	assert.True(t, validator.HasFatal(ds))
}

func TestCheck_NoInitialIsFatal(t *testing.T) {
	m := testutils.EvenZerosDFA(t)
	require.NoError(t, m.UpdateState("q0", func(s *domain.State) { s.Initial = false }))

	ds := validator.Check(m)
	assert.Contains(t, codes(ds), domain.CodeNoInitialState)
	assert.True(t, validator.HasFatal(ds))
}

func TestCheck_DFAMissingAndDuplicate(t *testing.T) {
	m := automaton.MustNew(domain.KindDFA,
		[]domain.State{{ID: "q0", Label: "q0", Initial: true}, {ID: "q1", Label: "q1", Final: true}},
		[]domain.Transition{
			{ID: "a1", From: "q0", To: "q1", Symbols: []string{"a"}},
			{ID: "a2", From: "q0", To: "q0", Symbols: []string{"a"}},
			{ID: "b", From: "q0", To: "q1", Symbols: []string{"b"}},
		})

	ds := validator.Check(m)
	errs := validator.Filter(ds, domain.SeverityError)

	assert.ElementsMatch(t, []domain.DiagnosticCode{
		domain.CodeNondeterminism,    // q0 on a
		domain.CodeMissingTransition, // q1 on a
		domain.CodeMissingTransition, // q1 on b
	}, codes(errs))
	assert.False(t, validator.HasFatal(ds))
}

func TestCheck_DFAEpsilon(t *testing.T) {
	m := automaton.MustNew(domain.KindDFA,
		[]domain.State{{ID: "q0", Initial: true, Final: true}},
		[]domain.Transition{{ID: "e", From: "q0", To: "q0", Symbols: []string{}}})

	ds := validator.Check(m)
	require.Len(t, ds, 1)
	assert.Equal(t, domain.CodeEpsilonTransition, ds[0].Code)
	require.NotNil(t, ds[0].Transition)
	assert.Equal(t, "e", ds[0].Transition.ID)
}

func TestCheck_Unreachable(t *testing.T) {
	m := testutils.EndsWithABNFA(t)
	require.NoError(t, m.AddState(domain.State{ID: "island", Label: "island"}))

	ds := validator.Check(m)
	require.Len(t, ds, 1)
	assert.Equal(t, domain.CodeUnreachableState, ds[0].Code)
	assert.Equal(t, domain.SeverityWarning, ds[0].Severity)
	assert.Equal(t, "island", ds[0].State.ID)
}

func TestCheck_NoFinalIsWarning(t *testing.T) {
	m := automaton.MustNew(domain.KindNFA, []domain.State{{ID: "q0", Initial: true}}, nil)

	ds := validator.Check(m)
	assert.Equal(t, []domain.DiagnosticCode{domain.CodeNoFinalState}, codes(ds))
}

func TestCheck_StackOperations(t *testing.T) {
	m := automaton.MustNew(domain.KindPDA,
		[]domain.State{{ID: "q0", Initial: true, Final: true}},
		[]domain.Transition{
			{ID: "nosym", From: "q0", To: "q0", Symbols: []string{"a"},
				StackOperations: []domain.StackOperation{{Operation: domain.OpPop}}},
			{ID: "late", From: "q0", To: "q0", Symbols: []string{"b"},
				StackOperations: []domain.StackOperation{{Symbol: "X", Operation: domain.OpPush}, {Operation: domain.OpEmpty}}},
			{ID: "ignored", From: "q0", To: "q0", Symbols: []string{"c"},
				StackOperations: []domain.StackOperation{{Symbol: "X", Operation: domain.OpNone}}},
			{ID: "unknown", From: "q0", To: "q0", Symbols: []string{"d"},
				StackOperations: []domain.StackOperation{{Symbol: "X", Operation: "swap"}}},
		})

	ds := validator.Check(m)
	assert.ElementsMatch(t, []domain.DiagnosticCode{
		domain.CodeInvalidStackOp,
		domain.CodeMisplacedEmptyCheck,
		domain.CodeIgnoredStackSymbol,
		domain.CodeInvalidStackOp,
	}, codes(ds))
	assert.Len(t, validator.Filter(ds, domain.SeverityWarning), 1)
}
