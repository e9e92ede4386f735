package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/automata/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "m.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	calls := make(chan struct{}, 10)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- WatchFile(ctx, path, logging.NewNop(), func() { calls <- struct{}{} })
	}()

	select {
	case <-calls:
	case <-time.After(2 * time.Second):
		t.Fatal("initial call missing")
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(path, []byte(`{"kind":"dfa"}`), 0644))

	select {
	case <-calls:
	case <-time.After(2 * time.Second):
		t.Fatal("change not reported")
	}

	cancel()
	assert.NoError(t, <-errCh)
}
