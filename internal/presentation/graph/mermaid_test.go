package graph_test

import (
	"testing"

	"github.com/aretw0/automata/internal/presentation/graph"
	"github.com/aretw0/automata/internal/testutils"
	"github.com/aretw0/automata/pkg/automaton"
	"github.com/aretw0/automata/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		model    func(*testing.T) *automaton.Model
		overlay  *graph.Overlay
		contains []string
		excludes []string
	}{
		{
			name:  "State Shapes",
			model: testutils.EndsWithABNFA,
			contains: []string{
				"graph LR",
				`q0(("q0"))`,
				`q2((("q2")))`,
				"__entry --> q0",
			},
			excludes: []string{"Overlay Styles"},
		},
		{
			name:  "Edge Labels",
			model: testutils.EndsWithABNFA,
			contains: []string{
				`q0 -- "a, b" --> q0`,
				`q0 -- "a" --> q1`,
			},
		},
		{
			name:  "Stack Program",
			model: testutils.AnBnPDA,
			contains: []string{
				"push(A)",
				"pop(A)",
			},
		},
		{
			name:    "Overlay",
			model:   testutils.EndsWithABNFA,
			overlay: &graph.Overlay{ActiveStates: []string{"q0", "q1", "q1", "gone"}, Transitions: []string{"a"}},
			contains: []string{
				"class q0 active;",
				"class q1 active;",
				// entry arrow is edge 0, loop is 1
				"linkStyle 2 stroke",
			},
			excludes: []string{"class gone active;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := graph.GenerateMermaid(tt.model(t), tt.overlay)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, out, unwanted)
			}
		})
	}
}

func TestGenerateMermaid_SanitizesIDs(t *testing.T) {
	m := automaton.MustNew(domain.KindDFA,
		[]domain.State{{ID: "a-b.c", Label: `say "hi"`, Initial: true}}, nil)

	out := graph.GenerateMermaid(m, nil)
	assert.Contains(t, out, `a_b_c(("say 'hi'"))`)
}
