package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/automata/internal/config"
	"github.com/aretw0/automata/internal/logging"
	"github.com/aretw0/automata/internal/presentation/tui"
	"github.com/aretw0/automata/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryApp(t *testing.T) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Store.Backend = config.BackendMemory
	cfg.Simulation.Interval = "5ms"
	app, err := NewApp(cfg, logging.NewNop())
	require.NoError(t, err)
	return app
}

func TestTrace(t *testing.T) {
	app := newMemoryApp(t)
	var out bytes.Buffer

	res, err := Trace(app, testutils.AnBnPDA(t), "aabb", tui.NewPrinter(&out, false))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.FinalStep)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 5)
	assert.Contains(t, lines[1], "q0[A]")
}

func TestTrace_Stuck(t *testing.T) {
	app := newMemoryApp(t)
	var out bytes.Buffer

	res, err := Trace(app, testutils.EvenZerosDFA(t), "02", tui.NewPrinter(&out, false))
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, out.String(), "no eligible transition")
}

func TestAnimate(t *testing.T) {
	app := newMemoryApp(t)
	var out bytes.Buffer

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := Animate(ctx, app, testutils.EndsWithABNFA(t), "aab", &out, false)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Len(t, strings.Split(strings.TrimSpace(out.String()), "\n"), 4)
}

func TestAnimate_Cancelled(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = config.BackendMemory
	cfg.Simulation.Interval = "1h"
	app, err := NewApp(cfg, logging.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	_, err = Animate(ctx, app, testutils.EndsWithABNFA(t), "ab", &out, false)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, IsInterrupted(err))
}
