package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/automata"
	"github.com/aretw0/automata/internal/config"
	"github.com/aretw0/automata/pkg/adapters/bolt"
	"github.com/aretw0/automata/pkg/adapters/file"
	"github.com/aretw0/automata/pkg/adapters/loam"
	"github.com/aretw0/automata/pkg/adapters/memory"
	"github.com/aretw0/automata/pkg/adapters/redis"
	"github.com/aretw0/automata/pkg/automaton"
	"github.com/aretw0/automata/pkg/observability"
	"github.com/aretw0/automata/pkg/persistence/middleware"
	"github.com/aretw0/automata/pkg/ports"
	"github.com/aretw0/automata/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
)

// Backend is an opened store plus what must be released with it.
type Backend struct {
	Store  ports.AutomatonStore
	Locker ports.DistributedLocker
	Closer io.Closer
}

// OpenStore builds the store selected by cfg.Store.Backend, encrypted when a key is configured.
func OpenStore(cfg config.Config) (Backend, error) {
	b, err := openBackend(cfg)
	if err != nil {
		return Backend{}, err
	}
	key, fallback, err := cfg.EncryptionKeys()
	if err != nil {
		return Backend{}, err
	}
	if key != nil {
		b.Store = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    key,
			FallbackKeys: fallback,
		})(b.Store)
	}
	return b, nil
}

func openBackend(cfg config.Config) (Backend, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return Backend{Store: memory.NewStore()}, nil
	case config.BackendFile:
		return Backend{Store: file.New(cfg.Store.Dir, file.WithFormat(automaton.Format(cfg.Store.Format)))}, nil
	case config.BackendRedis:
		ttl, err := cfg.RedisTTL()
		if err != nil {
			return Backend{}, err
		}
		opts := []redis.Option{redis.WithTTL(ttl)}
		if cfg.Store.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Store.Redis.Prefix))
		}
		store := redis.New(cfg.Store.Redis.Addr, cfg.Store.Redis.Password, cfg.Store.Redis.DB, opts...)
		prefix := cfg.Store.Redis.Prefix
		if prefix == "" {
			prefix = redis.DefaultPrefix
		}
		return Backend{Store: store, Locker: redis.NewLocker(store.Client(), prefix), Closer: store}, nil
	case config.BackendBolt:
		store, err := bolt.Open(cfg.Store.Bolt.Path)
		if err != nil {
			return Backend{}, err
		}
		return Backend{Store: store, Closer: store}, nil
	}
	return Backend{}, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

// OpenLibrary opens the exercise directory. A missing directory yields nil.
func OpenLibrary(cfg config.Config) (ports.ExerciseLibrary, error) {
	if cfg.Library.Dir == "" {
		return nil, nil
	}
	if _, err := os.Stat(cfg.Library.Dir); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	lib, err := loam.Open(cfg.Library.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open library %s: %w", cfg.Library.Dir, err)
	}
	return lib, nil
}

// App holds everything a command needs: config, logger, store and metrics.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Manager  *session.Manager
	Registry *prometheus.Registry
	Metrics  *observability.Metrics

	closer io.Closer
}

// NewApp opens the configured store and wires the session manager around it.
func NewApp(cfg config.Config, logger *slog.Logger) (*App, error) {
	backend, err := OpenStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}
	opts := []session.Option{session.WithLogger(logger)}
	if backend.Locker != nil {
		opts = append(opts, session.WithLocker(backend.Locker))
	}
	reg := prometheus.NewRegistry()
	logger.Debug("store opened", "backend", cfg.Store.Backend)
	return &App{
		Config:   cfg,
		Logger:   logger,
		Manager:  session.NewManager(middleware.NewLoggingMiddleware(logger)(backend.Store), opts...),
		Registry: reg,
		Metrics:  observability.NewMetrics(reg),
		closer:   backend.Closer,
	}, nil
}

// Close releases the store.
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// EditorOptions are the editor settings derived from the config.
func (a *App) EditorOptions() []automata.Option {
	return []automata.Option{
		automata.WithLogger(a.Logger),
		automata.WithSimulatorOptions(a.Config.SimulatorOptions()...),
		automata.WithMetrics(a.Metrics),
	}
}

// Editor wraps m with the configured options.
func (a *App) Editor(m *automaton.Model, opts ...automata.Option) (*automata.Editor, error) {
	return automata.New(m, append(a.EditorOptions(), opts...)...)
}

// Resolve loads ref as a document file when such a file exists, otherwise
// as an ID in the store.
func (a *App) Resolve(ctx context.Context, ref string) (*automaton.Model, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		return ReadFile(ref, automaton.WithLogger(a.Logger))
	}
	return a.Manager.Load(ctx, ref)
}

// ReadFile parses a JSON or YAML document file. The kind must be present.
func ReadFile(path string, opts ...automaton.Option) (*automaton.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := automaton.Import("", data, automaton.FormatFromPath(path), opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// WriteFile exports m next to path's format.
func WriteFile(path string, m *automaton.Model) error {
	data, err := m.Export(automaton.FormatFromPath(path))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
