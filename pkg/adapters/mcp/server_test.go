package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/automata"
	"github.com/aretw0/automata/internal/testutils"
	"github.com/aretw0/automata/pkg/adapters/memory"
	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts ...Option) (*Server, *session.Manager) {
	t.Helper()
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()
	require.NoError(t, mgr.Save(ctx, "even", testutils.EvenZerosDFA(t)))
	require.NoError(t, mgr.Save(ctx, "ab", testutils.EndsWithABNFA(t)))
	require.NoError(t, mgr.Save(ctx, "anbn", testutils.AnBnPDA(t)))
	return NewServer(mgr, opts...), mgr
}

func TestParseWords(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{`["a","","ab"]`, []string{"a", "", "ab"}},
		{"a, ab ,b", []string{"a", "ab", "b"}},
		{"", []string{""}},
	}
	for _, tt := range tests {
		got, err := parseWords(tt.raw)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.raw)
	}

	_, err := parseWords(`["a"`)
	assert.Error(t, err)
}

func TestHandleCheck(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleCheck(ctx, mcp.CallToolRequest{}, AutomatonArgs{ID: "even"})
	require.NoError(t, err)
	assert.Equal(t, domain.KindDFA, res.Kind)
	assert.False(t, res.Fatal)

	_, err = s.handleCheck(ctx, mcp.CallToolRequest{}, AutomatonArgs{ID: "missing"})
	assert.ErrorIs(t, err, domain.ErrAutomatonNotFound)

	_, err = s.handleCheck(ctx, mcp.CallToolRequest{}, AutomatonArgs{})
	assert.Error(t, err)
}

func TestHandleSimulate(t *testing.T) {
	s, _ := newTestServer(t)

	res, err := s.handleSimulate(context.Background(), mcp.CallToolRequest{}, SimulateArgs{ID: "anbn", Words: `["", "aabb", "aab"]`})
	require.NoError(t, err)
	require.Len(t, res.Results, 3)
	assert.True(t, res.Results[0].Accepted)
	assert.True(t, res.Results[1].Accepted)
	assert.False(t, res.Results[2].Accepted)
}

func TestHandleConvertAndSink(t *testing.T) {
	s, mgr := newTestServer(t, WithEditorOptions(automata.WithAllowedKinds(domain.KindDFA, domain.KindNFA)))
	ctx := context.Background()

	res, err := s.handleConvert(ctx, mcp.CallToolRequest{}, ConvertArgs{ID: "ab", Kind: "dfa"})
	require.NoError(t, err)
	assert.Equal(t, domain.KindDFA, res.Document.Kind)

	stored, err := mgr.Load(ctx, "ab")
	require.NoError(t, err)
	assert.Equal(t, domain.KindDFA, stored.Kind())

	_, err = s.handleConvert(ctx, mcp.CallToolRequest{}, ConvertArgs{ID: "even", Kind: "pda"})
	assert.ErrorIs(t, err, domain.ErrNotAllowed)

	_, err = s.handleConvert(ctx, mcp.CallToolRequest{}, ConvertArgs{ID: "even", Kind: "tm"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedKind)

	sunk, err := s.handleSink(ctx, mcp.CallToolRequest{}, AutomatonArgs{ID: "even"})
	require.NoError(t, err)
	assert.Len(t, sunk.Document.States, 2, "a total DFA is left as is")
}

func TestHandleSave(t *testing.T) {
	s, mgr := newTestServer(t)
	ctx := context.Background()

	yamlDoc := "kind: nfa\nstates:\n  - id: a\n    isInitial: true\n    isFinal: true\ntransitions:\n  - id: t\n    from: a\n    to: a\n    symbols: [x]\n"
	res, err := s.handleSave(ctx, mcp.CallToolRequest{}, SaveArgs{ID: "loop", Document: yamlDoc})
	require.NoError(t, err)
	assert.Equal(t, domain.KindNFA, res.Document.Kind)

	m, err := mgr.Load(ctx, "loop")
	require.NoError(t, err)
	assert.Len(t, m.Transitions(), 1)

	_, err = s.handleSave(ctx, mcp.CallToolRequest{}, SaveArgs{ID: "bad", Document: `{"states":[],"transitions":[]}`})
	assert.ErrorIs(t, err, domain.ErrMalformedDocument)
}

func TestReadAutomatonResource(t *testing.T) {
	s, _ := newTestServer(t)

	req := mcp.ReadResourceRequest{}
	req.Params.URI = "automata://even"
	contents, err := s.readAutomaton(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	var doc domain.Document
	require.NoError(t, json.Unmarshal([]byte(text.Text), &doc))
	assert.Equal(t, domain.KindDFA, doc.Kind)
	assert.Len(t, doc.States, 2)
}
