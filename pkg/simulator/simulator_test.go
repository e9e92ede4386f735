package simulator_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/automata/internal/testutils"
	"github.com/aretw0/automata/pkg/automaton"
	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/simulator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func abDFA(t *testing.T) *automaton.Model {
	t.Helper()
	m, err := automaton.New(domain.KindDFA,
		[]domain.State{
			{ID: "q0", Label: "q0", Initial: true},
			{ID: "q1", Label: "q1", Final: true},
		},
		[]domain.Transition{
			{ID: "q0a", From: "q0", To: "q1", Symbols: []string{"a"}},
			{ID: "q0b", From: "q0", To: "q0", Symbols: []string{"b"}},
			{ID: "q1a", From: "q1", To: "q1", Symbols: []string{"a"}},
			{ID: "q1b", From: "q1", To: "q0", Symbols: []string{"b"}},
		})
	require.NoError(t, err)
	return m
}

func simulate(m *automaton.Model, word string, opts ...simulator.Option) domain.Result {
	sim := simulator.New(m, opts...)
	sim.SetWord(word)
	return sim.Simulate()
}

func TestSimulate_Scenarios(t *testing.T) {
	tests := []struct {
		name   string
		model  func(*testing.T) *automaton.Model
		word   string
		accept bool
	}{
		{"dfa ab rejects", abDFA, "ab", false},
		{"dfa a accepts", abDFA, "a", true},
		{"even zeros empty", testutils.EvenZerosDFA, "", true},
		{"even zeros 1001", testutils.EvenZerosDFA, "1001", true},
		{"even zeros 10", testutils.EvenZerosDFA, "10", false},
		{"dfa unknown symbol", testutils.EvenZerosDFA, "012", false},
		{"nfa aab", testutils.EndsWithABNFA, "aab", true},
		{"nfa ba", testutils.EndsWithABNFA, "ba", false},
		{"nfa empty", testutils.EndsWithABNFA, "", false},
		{"epsilon a", testutils.EpsilonNFA, "a", true},
		{"epsilon b", testutils.EpsilonNFA, "b", true},
		{"epsilon ab", testutils.EpsilonNFA, "ab", false},
		{"pda empty", testutils.AnBnPDA, "", true},
		{"pda aabb", testutils.AnBnPDA, "aabb", true},
		{"pda aab", testutils.AnBnPDA, "aab", false},
		{"pda abb", testutils.AnBnPDA, "abb", false},
		{"pda ba", testutils.AnBnPDA, "ba", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := simulate(tt.model(t), tt.word)
			assert.Equal(t, tt.accept, res.Success, res.Message)
		})
	}
}

func TestSimulate_NoInitialFailsImmediately(t *testing.T) {
	m := testutils.EvenZerosDFA(t)
	require.NoError(t, m.UpdateState("q0", func(s *domain.State) { s.Initial = false }))

	sim := simulator.New(m)
	sim.SetWord("00")
	res := sim.Simulate()
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "no initial state")
	assert.NotEmpty(t, sim.Diagnostics())

	res = sim.StepForward(false)
	assert.False(t, res.Success)
}

func TestSimulate_DelimitedTokens(t *testing.T) {
	m := automaton.MustNew(domain.KindDFA,
		[]domain.State{{ID: "s", Initial: true}, {ID: "f", Final: true}},
		[]domain.Transition{
			{ID: "t1", From: "s", To: "f", Symbols: []string{"if"}},
			{ID: "t2", From: "f", To: "s", Symbols: []string{"else"}},
		})

	assert.True(t, simulate(m, "if;else;if").Success)
	assert.True(t, simulate(m, "if;;").Success, "empty tokens are dropped")
	assert.False(t, simulate(m, "if").Success, "without ';' every rune is a symbol")
}

func TestSplitWord(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, simulator.SplitWord("abc"))
	assert.Equal(t, []string{"ab", "c"}, simulator.SplitWord("ab; c;"))
	assert.Equal(t, []string{"ε", "á"}, simulator.SplitWord("εá"))
	assert.Empty(t, simulator.SplitWord(""))
}

func TestStepForward_MatchesSimulate(t *testing.T) {
	models := map[string]func(*testing.T) *automaton.Model{
		"dfa": abDFA,
		"nfa": testutils.EndsWithABNFA,
		"pda": testutils.AnBnPDA,
	}
	words := []string{"", "a", "ab", "aab", "abab", "aabb", "ba"}

	for name, build := range models {
		for _, w := range words {
			t.Run(fmt.Sprintf("%s/%q", name, w), func(t *testing.T) {
				m := build(t)
				sim := simulator.New(m)
				sim.SetWord(w)
				want := sim.Simulate()

				var res domain.Result
				for i := 0; i <= len(w); i++ {
					res = sim.StepForward(false)
					if res.FinalStep || !res.Success {
						break
					}
				}
				assert.Equal(t, want.Success, res.Success, res.Message)
			})
		}
	}
}

func TestStepForward_EmptyWord(t *testing.T) {
	sim := simulator.New(testutils.AnBnPDA(t))
	sim.SetWord("")

	res := sim.StepForward(false)
	assert.True(t, res.Success)
	assert.True(t, res.FinalStep)

	res = sim.StepForward(false)
	assert.False(t, res.Success, "word is exhausted")
}

func TestStepBackward_RestoresConfiguration(t *testing.T) {
	sim := simulator.New(testutils.AnBnPDA(t))
	sim.SetWord("aabb")

	res := sim.StepBackward(false)
	assert.False(t, res.Success, "nothing to undo")

	before := sim.Configuration()
	require.True(t, sim.StepForward(false).Success)
	afterOne := sim.Configuration()
	require.True(t, sim.StepForward(false).Success)

	require.True(t, sim.StepBackward(false).Success)
	assert.Equal(t, afterOne, sim.Configuration())
	require.True(t, sim.StepBackward(false).Success)
	assert.Equal(t, before, sim.Configuration())
}

func TestConfiguration_TracksStack(t *testing.T) {
	sim := simulator.New(testutils.AnBnPDA(t))
	sim.SetWord("aab")

	sim.StepForward(false)
	sim.StepForward(false)
	cfg := sim.Configuration()
	assert.Equal(t, 2, cfg.Position)
	assert.Equal(t, []string{"b"}, cfg.Remaining)
	require.Len(t, cfg.Branches, 1)
	assert.Equal(t, "q0", cfg.Branches[0].StateID)
	assert.Equal(t, []string{"A", "A"}, cfg.Branches[0].Stack)
}

func TestStepForward_PopMismatchIsNotEligible(t *testing.T) {
	m := automaton.MustNew(domain.KindPDA,
		[]domain.State{{ID: "q0", Label: "q0", Initial: true}, {ID: "q1", Label: "q1"}, {ID: "q2", Label: "q2", Final: true}},
		[]domain.Transition{
			{ID: "pushY", From: "q0", To: "q1", Symbols: []string{"a"},
				StackOperations: []domain.StackOperation{{Symbol: "Y", Operation: domain.OpPush}}},
			{ID: "popX", From: "q1", To: "q2", Symbols: []string{"b"},
				StackOperations: []domain.StackOperation{{Symbol: "X", Operation: domain.OpPop}}},
		})

	sim := simulator.New(m)
	sim.SetWord("ab")
	require.True(t, sim.StepForward(false).Success)

	res := sim.StepForward(false)
	assert.False(t, res.Success)
	assert.False(t, res.FinalStep)
	assert.Contains(t, res.Message, "no eligible transition")
	assert.Equal(t, 1, sim.Configuration().Position, "a stuck step keeps the configuration")
}

func TestSimulate_StackBound(t *testing.T) {
	// q0 pushes forever on ε; only the bound stops the exploration.
	m := automaton.MustNew(domain.KindPDA,
		[]domain.State{{ID: "q0", Initial: true}, {ID: "f", Final: true}},
		[]domain.Transition{
			{ID: "grow", From: "q0", To: "q0", Symbols: []string{},
				StackOperations: []domain.StackOperation{{Symbol: "Z", Operation: domain.OpPush}}},
			{ID: "x", From: "q0", To: "f", Symbols: []string{"x"},
				StackOperations: []domain.StackOperation{{Operation: domain.OpEmpty}}},
		})

	res := simulate(m, "y", simulator.WithLimits(simulator.Limits{MaxStackDepth: 8}))
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "exploration bounded")

	res = simulate(m, "x", simulator.WithLimits(simulator.Limits{MaxStackDepth: 8}))
	assert.True(t, res.Success)
}

func TestStaleSimulatorRefuses(t *testing.T) {
	m := testutils.EvenZerosDFA(t)
	sim := simulator.New(m)
	sim.SetWord("00")

	require.NoError(t, m.AddState(domain.State{ID: "q2"}))

	res := sim.Simulate()
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "changed")
	assert.False(t, sim.StepForward(false).Success)
}

func TestHooks(t *testing.T) {
	var (
		highlights []simulator.Highlight
		steps      []simulator.StepEvent
		runs       []domain.Kind
	)
	sim := simulator.New(testutils.EndsWithABNFA(t), simulator.WithHooks(simulator.Hooks{
		OnHighlight: func(h simulator.Highlight) { highlights = append(highlights, h) },
		OnStep:      func(e simulator.StepEvent) { steps = append(steps, e) },
		OnSimulate:  func(k domain.Kind, _ domain.Result) { runs = append(runs, k) },
	}))
	sim.SetWord("ab")

	sim.StepForward(false)
	assert.Empty(t, highlights)
	sim.StepForward(true)
	require.Len(t, highlights, 1)
	assert.ElementsMatch(t, []string{"q0", "q2"}, highlights[0].States)
	assert.Contains(t, highlights[0].Transitions, "b")

	sim.StepBackward(true)
	require.Len(t, steps, 3)
	assert.Equal(t, simulator.Backward, steps[2].Direction)

	sim.Simulate()
	assert.Equal(t, []domain.Kind{domain.KindNFA}, runs)
}

func TestHighlight_SkipsMergedBranches(t *testing.T) {
	m := automaton.MustNew(domain.KindNFA,
		[]domain.State{{ID: "q0", Label: "q0", Initial: true}, {ID: "q1", Label: "q1", Final: true}},
		[]domain.Transition{
			{ID: "first", From: "q0", To: "q1", Symbols: []string{"a"}},
			{ID: "second", From: "q0", To: "q1", Symbols: []string{"a", "b"}},
		})

	var highlights []simulator.Highlight
	sim := simulator.New(m, simulator.WithHooks(simulator.Hooks{
		OnHighlight: func(h simulator.Highlight) { highlights = append(highlights, h) },
	}))
	sim.SetWord("a")

	res := sim.StepForward(true)
	assert.True(t, res.Success)
	require.Len(t, highlights, 1)
	assert.Equal(t, []string{"q1"}, highlights[0].States)
	assert.Equal(t, []string{"first"}, highlights[0].Transitions)
}

type collector struct {
	mu      sync.Mutex
	results []domain.Result
}

func (c *collector) add(r domain.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, r)
}

func (c *collector) snapshot() []domain.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Result(nil), c.results...)
}

func TestAnimation_RunsToFinalStep(t *testing.T) {
	sim := simulator.New(testutils.AnBnPDA(t), simulator.WithInterval(5*time.Millisecond))
	sim.SetWord("aabb")

	c := &collector{}
	sim.StartAnimation(c.add)

	require.Eventually(t, func() bool {
		r := c.snapshot()
		return len(r) > 0 && r[len(r)-1].FinalStep
	}, 2*time.Second, 5*time.Millisecond)

	results := c.snapshot()
	assert.Len(t, results, 4)
	assert.True(t, results[3].Success)
	assert.Eventually(t, func() bool { return !sim.Animating() }, time.Second, 5*time.Millisecond)
}

func TestAnimation_RestartKeepsSingleTimer(t *testing.T) {
	sim := simulator.New(testutils.EvenZerosDFA(t), simulator.WithInterval(5*time.Millisecond))
	sim.SetWord("1111111111")

	first, second := &collector{}, &collector{}
	sim.StartAnimation(first.add)
	sim.StartAnimation(second.add)

	require.Eventually(t, func() bool {
		r := second.snapshot()
		return len(r) > 0 && r[len(r)-1].FinalStep
	}, 2*time.Second, 5*time.Millisecond)

	// The superseded timer may have fired at most before the restart; the
	// symbols were consumed exactly once overall.
	assert.Equal(t, 10, len(first.snapshot())+len(second.snapshot()))
}

func TestAnimation_PauseAndStop(t *testing.T) {
	sim := simulator.New(testutils.EvenZerosDFA(t), simulator.WithInterval(time.Hour))
	sim.SetWord("0101")

	sim.StartAnimation(nil)
	assert.True(t, sim.Animating())

	sim.StepForward(false)
	var paused domain.Result
	sim.PauseAnimation(func(r domain.Result) { paused = r })
	assert.True(t, paused.Success)
	assert.False(t, sim.Animating())
	assert.Equal(t, 1, sim.Configuration().Position, "pause keeps the configuration")

	sim.StartAnimation(nil)
	var stopped domain.Result
	sim.StopAnimation(func(r domain.Result) { stopped = r })
	assert.True(t, stopped.Success)
	assert.False(t, sim.Animating())
	assert.Equal(t, 0, sim.Configuration().Position, "stop resets")
}
