package config_test

import (
	"encoding/base64"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/automata/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	d, err := cfg.Interval()
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, d)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "automata.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
simulation:
  interval: 250ms
  max_stack_depth: 8
store:
  backend: redis
  redis:
    addr: redis:6379
    ttl: 1h
`), 0644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())
	assert.Equal(t, config.BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "redis:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 8080, cfg.HTTP.Port, "unset keys keep defaults")
	assert.Equal(t, 4096, cfg.Simulation.MaxConfigurations)

	ttl, err := cfg.RedisTTL()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, ttl)
	assert.Len(t, cfg.SimulatorOptions(), 2)
}

func TestLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "automata.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"store": {"backend": "bolt", "bolt": {"path": "x.db"}}}`), 0644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.BackendBolt, cfg.Store.Backend)
	assert.Equal(t, "x.db", cfg.Store.Bolt.Path)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"interval": "simulation:\n  interval: soon\n",
		"backend":  "store:\n  backend: postgres\n",
		"ttl":      "store:\n  redis:\n    ttl: forever\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "automata.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0644))
			_, err := config.Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLogLevel_UnknownIsInfo(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "chatty"
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel())
}

func TestEncryptionKeys(t *testing.T) {
	key := base64.StdEncoding.EncodeToString(make([]byte, 32))

	cfg := config.Default()
	active, fallback, err := cfg.EncryptionKeys()
	require.NoError(t, err)
	assert.Nil(t, active)
	assert.Nil(t, fallback)

	cfg.Store.Encryption = config.EncryptionConfig{Key: key, FallbackKeys: []string{key}}
	active, fallback, err = cfg.EncryptionKeys()
	require.NoError(t, err)
	assert.Len(t, active, 32)
	assert.Len(t, fallback, 1)

	cfg.Store.Encryption = config.EncryptionConfig{Key: base64.StdEncoding.EncodeToString([]byte("short"))}
	assert.ErrorContains(t, cfg.Validate(), "32 bytes")

	cfg.Store.Encryption = config.EncryptionConfig{FallbackKeys: []string{key}}
	assert.Error(t, cfg.Validate())
}
