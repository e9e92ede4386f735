package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/automata/internal/testutils"
	"github.com/aretw0/automata/pkg/adapters/file"
	"github.com/aretw0/automata/pkg/automaton"
	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Store implements AutomatonStore
var _ ports.AutomatonStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		ports.RunAutomatonStoreContract(t, file.New(t.TempDir()))
	})
	t.Run("yaml", func(t *testing.T) {
		ports.RunAutomatonStoreContract(t, file.New(t.TempDir(), file.WithFormat(automaton.FormatYAML)))
	})
}

func TestFileStore_ReadsHandWrittenYAML(t *testing.T) {
	dir := t.TempDir()
	body := `kind: nfa
states:
  - id: s
    label: start
    isInitial: true
  - id: f
    isFinal: true
transitions:
  - id: t
    from: s
    to: f
    symbols: [x]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hand.yaml"), []byte(body), 0644))

	store := file.New(dir)
	doc, err := store.Load(context.Background(), "hand")
	require.NoError(t, err)
	assert.Equal(t, domain.KindNFA, doc.Kind)
	assert.Len(t, doc.States, 2)

	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"hand"}, ids)
}

func TestFileStore_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{"states": []}`), 0644))

	_, err := file.New(dir).Load(context.Background(), "bad")
	assert.ErrorIs(t, err, domain.ErrMalformedDocument)
}

func TestFileStore_RejectsPathIDs(t *testing.T) {
	store := file.New(t.TempDir())
	doc := testutils.EvenZerosDFA(t).Document()

	assert.Error(t, store.Save(context.Background(), "../escape", doc))
	assert.Error(t, store.Save(context.Background(), "", doc))
}

func TestFileStore_SwitchingFormatLeavesOneFile(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	doc := testutils.EvenZerosDFA(t).Document()

	require.NoError(t, file.New(dir).Save(ctx, "even", doc))
	require.NoError(t, file.New(dir, file.WithFormat(automaton.FormatYAML)).Save(ctx, "even", doc))

	_, err := os.Stat(filepath.Join(dir, "even.json"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "even.yaml"))
	assert.NoError(t, err)
}
