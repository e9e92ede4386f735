// Package config loads the automata CLI and server configuration.
package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/automata/pkg/simulator"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendBolt   = "bolt"
)

// Config is the root of automata.yaml.
type Config struct {
	Log        LogConfig        `yaml:"log" json:"log"`
	Simulation SimulationConfig `yaml:"simulation" json:"simulation"`
	Store      StoreConfig      `yaml:"store" json:"store"`
	HTTP       HTTPConfig       `yaml:"http" json:"http"`
	Library    LibraryConfig    `yaml:"library" json:"library"`
}

type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

// SimulationConfig tunes simulators. Interval is a Go duration string ("500ms").
type SimulationConfig struct {
	Interval          string `yaml:"interval" json:"interval"`
	MaxStackDepth     int    `yaml:"max_stack_depth" json:"max_stack_depth"`
	MaxConfigurations int    `yaml:"max_configurations" json:"max_configurations"`
}

type StoreConfig struct {
	Backend    string           `yaml:"backend" json:"backend"`
	Dir        string           `yaml:"dir" json:"dir"`
	Format     string           `yaml:"format" json:"format"`
	Redis      RedisConfig      `yaml:"redis" json:"redis"`
	Bolt       BoltConfig       `yaml:"bolt" json:"bolt"`
	Encryption EncryptionConfig `yaml:"encryption" json:"encryption"`
}

// EncryptionConfig enables encryption at rest. Keys are base64 encoded 32 byte AES keys.
type EncryptionConfig struct {
	Key          string   `yaml:"key" json:"key"`
	FallbackKeys []string `yaml:"fallback_keys" json:"fallback_keys"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
	Prefix   string `yaml:"prefix" json:"prefix"`
	TTL      string `yaml:"ttl" json:"ttl"`
}

type BoltConfig struct {
	Path string `yaml:"path" json:"path"`
}

type HTTPConfig struct {
	Port int `yaml:"port" json:"port"`
}

type LibraryConfig struct {
	Dir string `yaml:"dir" json:"dir"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		Simulation: SimulationConfig{
			Interval:          simulator.DefaultInterval.String(),
			MaxStackDepth:     simulator.DefaultLimits.MaxStackDepth,
			MaxConfigurations: simulator.DefaultLimits.MaxConfigurations,
		},
		Store: StoreConfig{
			Backend: BackendFile,
			Dir:     filepath.Join(".automata", "store"),
			Format:  "json",
			Redis:   RedisConfig{Addr: "localhost:6379"},
			Bolt:    BoltConfig{Path: filepath.Join(".automata", "automata.db")},
		},
		HTTP:    HTTPConfig{Port: 8080},
		Library: LibraryConfig{Dir: "exercises"},
	}
}

// Load reads a YAML or JSON file over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	return cfg, cfg.Validate()
}

// Validate rejects values that would only fail later.
func (c Config) Validate() error {
	if _, err := c.Interval(); err != nil {
		return err
	}
	if _, err := c.RedisTTL(); err != nil {
		return err
	}
	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendRedis, BackendBolt:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if _, _, err := c.EncryptionKeys(); err != nil {
		return err
	}
	if c.Simulation.MaxStackDepth < 0 || c.Simulation.MaxConfigurations < 0 {
		return fmt.Errorf("simulation limits must not be negative")
	}
	return nil
}

// Interval parses the animation interval.
func (c Config) Interval() (time.Duration, error) {
	if c.Simulation.Interval == "" {
		return simulator.DefaultInterval, nil
	}
	d, err := time.ParseDuration(c.Simulation.Interval)
	if err != nil {
		return 0, fmt.Errorf("invalid simulation.interval: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("simulation.interval must be positive")
	}
	return d, nil
}

// RedisTTL parses the redis expiry; empty means no expiry.
func (c Config) RedisTTL() (time.Duration, error) {
	if c.Store.Redis.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Store.Redis.TTL)
	if err != nil {
		return 0, fmt.Errorf("invalid store.redis.ttl: %w", err)
	}
	return d, nil
}

// EncryptionKeys decodes the active and fallback keys. A nil active key means encryption is off.
func (c Config) EncryptionKeys() ([]byte, [][]byte, error) {
	enc := c.Store.Encryption
	if enc.Key == "" {
		if len(enc.FallbackKeys) > 0 {
			return nil, nil, fmt.Errorf("store.encryption.fallback_keys require store.encryption.key")
		}
		return nil, nil, nil
	}
	decode := func(name, s string) ([]byte, error) {
		k, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", name, err)
		}
		if len(k) != 32 {
			return nil, fmt.Errorf("%s must decode to 32 bytes, got %d", name, len(k))
		}
		return k, nil
	}
	active, err := decode("store.encryption.key", enc.Key)
	if err != nil {
		return nil, nil, err
	}
	var fallback [][]byte
	for i, s := range enc.FallbackKeys {
		k, err := decode(fmt.Sprintf("store.encryption.fallback_keys[%d]", i), s)
		if err != nil {
			return nil, nil, err
		}
		fallback = append(fallback, k)
	}
	return active, fallback, nil
}

// LogLevel maps the level name to slog. Unknown names mean info.
func (c Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// SimulatorOptions turns the simulation section into simulator options.
func (c Config) SimulatorOptions() []simulator.Option {
	var opts []simulator.Option
	if d, err := c.Interval(); err == nil {
		opts = append(opts, simulator.WithInterval(d))
	}
	limits := simulator.DefaultLimits
	if c.Simulation.MaxStackDepth > 0 {
		limits.MaxStackDepth = c.Simulation.MaxStackDepth
	}
	if c.Simulation.MaxConfigurations > 0 {
		limits.MaxConfigurations = c.Simulation.MaxConfigurations
	}
	return append(opts, simulator.WithLimits(limits))
}
