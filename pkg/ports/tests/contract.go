package tests

import (
	"context"
	"testing"

	"github.com/aretw0/automata/pkg/automaton"
	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ExerciseLibraryContractTest is a reusable test suite that verifies if an adapter complies with ports.ExerciseLibrary.
// expected maps exercise IDs to the number of states their automaton has.
func ExerciseLibraryContractTest(t *testing.T, lib ports.ExerciseLibrary, expected map[string]int) {
	t.Helper()
	ctx := context.Background()

	t.Run("Get_Success", func(t *testing.T) {
		for id, states := range expected {
			ex, err := lib.Get(ctx, id)
			require.NoError(t, err, "exercise %s", id)
			assert.Equal(t, id, ex.ID)
			assert.Len(t, ex.Document.States, states)

			// every exercise must build a valid model
			_, err = automaton.New(ex.Document.Kind, ex.Document.States, ex.Document.Transitions)
			assert.NoError(t, err, "exercise %s", id)
		}
	})

	t.Run("Get_NotFound", func(t *testing.T) {
		_, err := lib.Get(ctx, "non-existent-exercise")
		assert.ErrorIs(t, err, domain.ErrExerciseNotFound)
	})

	t.Run("List", func(t *testing.T) {
		exercises, err := lib.List(ctx)
		require.NoError(t, err)
		assert.Len(t, exercises, len(expected))

		for i := 1; i < len(exercises); i++ {
			assert.Less(t, exercises[i-1].ID, exercises[i].ID, "list is ordered by ID")
		}
		for _, ex := range exercises {
			_, ok := expected[ex.ID]
			assert.True(t, ok, "unexpected exercise %s", ex.ID)
		}
	})
}
