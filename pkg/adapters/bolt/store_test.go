package bolt_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/automata/internal/testutils"
	"github.com/aretw0/automata/pkg/adapters/bolt"
	"github.com/aretw0/automata/pkg/automaton"
	"github.com/aretw0/automata/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.AutomatonStore = (*bolt.Store)(nil)

func openStore(t *testing.T, path string) *bolt.Store {
	t.Helper()
	store, err := bolt.Open(path)
	require.NoError(t, err)
	return store
}

func TestBoltStore_Contract(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "automata.db"))
	defer store.Close()
	ports.RunAutomatonStoreContract(t, store)
}

func TestBoltStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "automata.db")
	ctx := context.Background()
	doc := testutils.AnBnPDA(t).Document()

	store := openStore(t, path)
	require.NoError(t, store.Save(ctx, "anbn", doc))
	require.NoError(t, store.Close())

	store = openStore(t, path)
	defer store.Close()

	loaded, err := store.Load(ctx, "anbn")
	require.NoError(t, err)

	m, err := automaton.New(loaded.Kind, loaded.States, loaded.Transitions)
	require.NoError(t, err)
	assert.Equal(t, testutils.AnBnPDA(t).Transitions(), m.Transitions())

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"anbn"}, ids)
}
