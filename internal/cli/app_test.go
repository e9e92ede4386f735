package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/automata/internal/config"
	"github.com/aretw0/automata/internal/logging"
	"github.com/aretw0/automata/internal/testutils"
	"github.com/aretw0/automata/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore_Backends(t *testing.T) {
	mr := miniredis.RunT(t)
	dir := t.TempDir()

	tests := []struct {
		name   string
		mutate func(*config.Config)
		locker bool
	}{
		{"memory", func(c *config.Config) { c.Store.Backend = config.BackendMemory }, false},
		{"file", func(c *config.Config) {
			c.Store.Backend = config.BackendFile
			c.Store.Dir = filepath.Join(dir, "store")
			c.Store.Format = "yaml"
		}, false},
		{"bolt", func(c *config.Config) {
			c.Store.Backend = config.BackendBolt
			c.Store.Bolt.Path = filepath.Join(dir, "automata.db")
		}, false},
		{"redis", func(c *config.Config) {
			c.Store.Backend = config.BackendRedis
			c.Store.Redis.Addr = mr.Addr()
			c.Store.Redis.Prefix = "test:"
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)

			backend, err := OpenStore(cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.locker, backend.Locker != nil)
			if backend.Closer != nil {
				require.NoError(t, backend.Closer.Close())
			}

			app, err := NewApp(cfg, logging.NewNop())
			require.NoError(t, err)
			defer app.Close()

			ctx := context.Background()
			require.NoError(t, app.Manager.Save(ctx, "even", testutils.EvenZerosDFA(t)))
			m, err := app.Manager.Load(ctx, "even")
			require.NoError(t, err)
			assert.Equal(t, domain.KindDFA, m.Kind())
		})
	}
}

func TestOpenStore_Encrypted(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = config.BackendFile
	cfg.Store.Dir = t.TempDir()
	cfg.Store.Encryption.Key = base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))

	app, err := NewApp(cfg, logging.NewNop())
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, app.Manager.Save(ctx, "ab", testutils.EndsWithABNFA(t)))

	raw, err := os.ReadFile(filepath.Join(cfg.Store.Dir, "ab.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "__encrypted__")
	assert.NotContains(t, string(raw), `"q1"`)

	m, err := app.Manager.Load(ctx, "ab")
	require.NoError(t, err)
	assert.Len(t, m.States(), 3)
}

func TestOpenStore_Unknown(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = "etcd"
	_, err := OpenStore(cfg)
	assert.Error(t, err)
}

func TestOpenLibrary_MissingDir(t *testing.T) {
	cfg := config.Default()
	cfg.Library.Dir = filepath.Join(t.TempDir(), "nope")
	lib, err := OpenLibrary(cfg)
	require.NoError(t, err)
	assert.Nil(t, lib)
}

func TestOpenLibrary_Dir(t *testing.T) {
	dir, _ := testutils.SetupExerciseRepo(t, map[string]string{
		"single.md": "---\ntitle: Single a\nkind: dfa\nstates:\n  - {id: q0, isInitial: true}\n  - {id: q1, isFinal: true}\ntransitions:\n  - {id: a, from: q0, to: q1, symbols: [a]}\ntest_words: [a, aa]\n---\n",
	})
	cfg := config.Default()
	cfg.Library.Dir = dir

	lib, err := OpenLibrary(cfg)
	require.NoError(t, err)
	require.NotNil(t, lib)

	ex, err := lib.Get(context.Background(), "single")
	require.NoError(t, err)
	assert.Equal(t, "Single a", ex.Title)
	assert.Equal(t, domain.KindDFA, ex.Document.Kind)
	assert.Equal(t, []string{"a", "aa"}, ex.TestWords)
}

func TestResolve(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = config.BackendMemory
	app, err := NewApp(cfg, logging.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "ab.yaml")
	require.NoError(t, WriteFile(path, testutils.EndsWithABNFA(t)))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "kind: nfa")

	m, err := app.Resolve(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, domain.KindNFA, m.Kind())
	assert.Len(t, m.States(), 3)

	require.NoError(t, app.Manager.Save(ctx, "stored", testutils.AnBnPDA(t)))
	m, err = app.Resolve(ctx, "stored")
	require.NoError(t, err)
	assert.Equal(t, domain.KindPDA, m.Kind())

	_, err = app.Resolve(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrAutomatonNotFound)
}

func TestReadFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"kind":"dfa","states":[]}`), 0644))
	_, err := ReadFile(path)
	assert.ErrorIs(t, err, domain.ErrMalformedDocument)
}
