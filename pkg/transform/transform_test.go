package transform_test

import (
	"testing"

	"github.com/aretw0/automata/internal/testutils"
	"github.com/aretw0/automata/pkg/automaton"
	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/simulator"
	"github.com/aretw0/automata/pkg/transform"
	"github.com/aretw0/automata/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func accepts(m *automaton.Model, word string) bool {
	sim := simulator.New(m)
	sim.SetWord(word)
	return sim.Simulate().Success
}

func stateByLabel(t *testing.T, m *automaton.Model, label string) domain.State {
	t.Helper()
	for _, s := range m.States() {
		if s.Label == label {
			return s
		}
	}
	t.Fatalf("no state labelled %s", label)
	return domain.State{}
}

func TestNFAToDFA_EpsilonScenario(t *testing.T) {
	nfa := automaton.MustNew(domain.KindNFA,
		[]domain.State{
			{ID: "q0", Label: "q0", Initial: true},
			{ID: "q1", Label: "q1"},
			{ID: "q2", Label: "q2", Final: true},
		},
		[]domain.Transition{
			{ID: "eps", From: "q0", To: "q1", Symbols: []string{}},
			{ID: "a", From: "q1", To: "q2", Symbols: []string{"a"}},
		})

	dfa, err := transform.NFAToDFA(nfa)
	require.NoError(t, err)
	assert.Equal(t, domain.KindDFA, dfa.Kind())

	initial, ok := dfa.InitialState()
	require.True(t, ok)
	assert.Equal(t, "{q0,q1}", initial.Label)
	assert.False(t, initial.Final)

	out := dfa.TransitionsFrom(initial.ID)
	require.Len(t, out, 1)
	assert.Equal(t, []string{"a"}, out[0].Symbols)
	target, ok := dfa.State(out[0].To)
	require.True(t, ok)
	assert.True(t, target.Final)
	assert.Equal(t, "{q2}", target.Label)
}

func TestNFAToDFA_Equivalence(t *testing.T) {
	words := []string{"", "a", "b", "ab", "ba", "aab", "abab", "abba", "bbab", "aaaa"}

	for name, build := range map[string]func(*testing.T) *automaton.Model{
		"ends with ab": testutils.EndsWithABNFA,
		"epsilon":      testutils.EpsilonNFA,
	} {
		t.Run(name, func(t *testing.T) {
			nfa := build(t)
			dfa, err := transform.NFAToDFA(nfa)
			require.NoError(t, err)

			for _, c := range validator.Check(dfa) {
				assert.NotEqual(t, domain.CodeNondeterminism, c.Code)
				assert.NotEqual(t, domain.CodeEpsilonTransition, c.Code)
			}
			for _, w := range words {
				assert.Equal(t, accepts(nfa, w), accepts(dfa, w), "word %q", w)
			}
		})
	}
}

func TestNFAToDFA_MergesSymbolsPerTarget(t *testing.T) {
	dfa, err := transform.NFAToDFA(testutils.EndsWithABNFA(t))
	require.NoError(t, err)

	start := stateByLabel(t, dfa, "{q0}")
	out := dfa.TransitionsFrom(start.ID)
	require.Len(t, out, 2)

	for _, tr := range out {
		to, _ := dfa.State(tr.To)
		switch to.Label {
		case "{q0,q1}":
			assert.Equal(t, []string{"a"}, tr.Symbols)
		case "{q0}":
			assert.Equal(t, []string{"b"}, tr.Symbols)
		default:
			t.Errorf("unexpected target %s", to.Label)
		}
	}
}

func TestNFAToDFA_WithoutInitial(t *testing.T) {
	tests := map[string]*automaton.Model{
		"empty nfa": automaton.MustNew(domain.KindNFA, nil, nil),
		"nfa":       automaton.MustNew(domain.KindNFA, []domain.State{{ID: "a"}}, nil),
		"pda": automaton.MustNew(domain.KindPDA, []domain.State{{ID: "a"}},
			[]domain.Transition{{ID: "t", From: "a", To: "a", Symbols: []string{"x"}}}),
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			rev := src.Revision()
			out, err := transform.Convert(src, domain.KindDFA)
			require.NoError(t, err)
			require.NotNil(t, out)
			assert.NotSame(t, src, out)
			assert.Equal(t, domain.KindDFA, out.Kind())
			assert.Empty(t, out.States())
			assert.Equal(t, rev, src.Revision(), "input untouched")
		})
	}
}

func TestAddSinkState_Totality(t *testing.T) {
	partial := automaton.MustNew(domain.KindDFA,
		[]domain.State{{ID: "q0", Label: "q0", Initial: true}, {ID: "q1", Label: "q1", Final: true}},
		[]domain.Transition{
			{ID: "a", From: "q0", To: "q1", Symbols: []string{"a"}},
			{ID: "b", From: "q1", To: "q1", Symbols: []string{"b"}},
		})
	rev := partial.Revision()

	total, err := transform.AddSinkState(partial)
	require.NoError(t, err)

	assert.Equal(t, rev, partial.Revision(), "input untouched")
	assert.Len(t, partial.States(), 2)
	require.Len(t, total.States(), 3)

	sink := stateByLabel(t, total, "q2")
	assert.False(t, sink.Final)

	for _, s := range total.States() {
		for _, sym := range total.Alphabet() {
			n := 0
			for _, tr := range total.TransitionsFrom(s.ID) {
				if tr.Accepts(sym) {
					n++
				}
			}
			assert.Equal(t, 1, n, "state %s symbol %s", s.Label, sym)
		}
	}
	assert.Empty(t, validator.Filter(validator.Check(total), domain.SeverityError))
	assert.Equal(t, accepts(partial, "ab"), accepts(total, "ab"))
	assert.Equal(t, accepts(partial, "ba"), accepts(total, "ba"))
}

func TestAddSinkState_TotalDFAIsCloned(t *testing.T) {
	m := testutils.EvenZerosDFA(t)
	out, err := transform.AddSinkState(m)
	require.NoError(t, err)
	assert.Equal(t, m.States(), out.States())
	assert.Equal(t, m.Transitions(), out.Transitions())
}

func TestAddSinkState_OnlyDFA(t *testing.T) {
	_, err := transform.AddSinkState(testutils.EndsWithABNFA(t))
	assert.ErrorIs(t, err, domain.ErrUnsupportedKind)
}

func TestToPDA(t *testing.T) {
	pda, err := transform.ToPDA(testutils.EvenZerosDFA(t))
	require.NoError(t, err)
	assert.Equal(t, domain.KindPDA, pda.Kind())
	for _, tr := range pda.Transitions() {
		assert.Equal(t, []domain.StackOperation{{Operation: domain.OpNone}}, tr.StackOperations)
	}
	assert.False(t, transform.UsesStack(pda))
	assert.True(t, accepts(pda, "00"))
	assert.False(t, accepts(pda, "0"))
}

func TestPDAProjection(t *testing.T) {
	pda := testutils.AnBnPDA(t)
	require.True(t, transform.UsesStack(pda))

	nfa, err := transform.PDAToNFA(pda)
	require.NoError(t, err)
	for _, tr := range nfa.Transitions() {
		assert.Empty(t, tr.StackOperations)
	}
	// the projection over-approximates
	assert.False(t, accepts(pda, "aab"))
	assert.True(t, accepts(nfa, "aab"))

	dfa, err := transform.PDAToDFA(pda)
	require.NoError(t, err)
	assert.Equal(t, domain.KindDFA, dfa.Kind())
	assert.True(t, accepts(dfa, "aab"))
}

func TestConvert(t *testing.T) {
	tests := []struct {
		from   func(*testing.T) *automaton.Model
		target domain.Kind
	}{
		{testutils.EvenZerosDFA, domain.KindDFA},
		{testutils.EvenZerosDFA, domain.KindNFA},
		{testutils.EvenZerosDFA, domain.KindPDA},
		{testutils.EndsWithABNFA, domain.KindDFA},
		{testutils.EndsWithABNFA, domain.KindPDA},
		{testutils.AnBnPDA, domain.KindNFA},
		{testutils.AnBnPDA, domain.KindDFA},
	}
	for _, tt := range tests {
		src := tt.from(t)
		t.Run(string(src.Kind())+"->"+string(tt.target), func(t *testing.T) {
			out, err := transform.Convert(src, tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.target, out.Kind())
			assert.NotSame(t, src, out)
		})
	}

	_, err := transform.Convert(testutils.EvenZerosDFA(t), "tm")
	assert.ErrorIs(t, err, domain.ErrUnsupportedKind)
}
