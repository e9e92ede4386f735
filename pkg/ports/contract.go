package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/automata/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// contractDocument is a small PDA exercising every document field.
func contractDocument() domain.Document {
	return domain.Document{
		Kind: domain.KindPDA,
		States: []domain.State{
			{ID: "q0", Label: "q0", Initial: true},
			{ID: "q1", Label: "q1", Final: true},
		},
		Transitions: []domain.Transition{
			{ID: "push", From: "q0", To: "q0", Symbols: []string{"a"},
				StackOperations: []domain.StackOperation{{Symbol: "A", Operation: domain.OpPush}}},
			{ID: "pop", From: "q0", To: "q1", Symbols: []string{"b"},
				StackOperations: []domain.StackOperation{{Symbol: "A", Operation: domain.OpPop}}},
			{ID: "eps", From: "q1", To: "q1", Symbols: []string{}},
		},
	}
}

// RunAutomatonStoreContract runs a suite of tests to verify that an AutomatonStore
// implementation adheres to the defined interface contract.
func RunAutomatonStoreContract(t *testing.T, store AutomatonStore) {
	ctx := context.Background()
	id := "contract-test-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		doc := contractDocument()

		err := store.Save(ctx, id, doc)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, doc.Kind, loaded.Kind)
		assert.Equal(t, doc.States, loaded.States)
		require.Len(t, loaded.Transitions, len(doc.Transitions))
		for i, tr := range doc.Transitions {
			assert.Equal(t, tr.ID, loaded.Transitions[i].ID)
			assert.Equal(t, tr.From, loaded.Transitions[i].From)
			assert.Equal(t, tr.To, loaded.Transitions[i].To)
			assert.ElementsMatch(t, tr.Symbols, loaded.Transitions[i].Symbols)
			assert.Equal(t, tr.StackOperations, loaded.Transitions[i].StackOperations)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		doc := contractDocument()
		doc.States[1].Label = "accept"
		require.NoError(t, store.Save(ctx, id, doc))

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "accept", loaded.States[1].Label)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+id)
		assert.ErrorIs(t, err, domain.ErrAutomatonNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, id, contractDocument()))

		err := store.Delete(ctx, id)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrAutomatonNotFound, "Load after Delete should return ErrAutomatonNotFound")

		assert.NoError(t, store.Delete(ctx, id), "Deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := id + "-1"
		id2 := id + "-2"
		require.NoError(t, store.Save(ctx, id1, contractDocument()))
		require.NoError(t, store.Save(ctx, id2, contractDocument()))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
		assert.NotContains(t, ids, id)
	})
}
