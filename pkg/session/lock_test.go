package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/automata/pkg/adapters/memory"
	"github.com/aretw0/automata/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		id := fmt.Sprintf("automaton-%d", i)
		_, err := mgr.LoadOrCreate(ctx, id, domain.KindDFA)
		require.NoError(t, err)
		require.NoError(t, mgr.Delete(ctx, id))
	}

	assert.Empty(t, mgr.locks, "locks must be released after use")
}
