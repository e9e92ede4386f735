package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/automata/internal/logging"
	"github.com/aretw0/automata/pkg/automaton"
	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock outlives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates access to stored automata.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.AutomatonStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
	opts    []automaton.Option
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager and the models it loads.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Manager backed by store.
func NewManager(store ports.AutomatonStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.opts = []automaton.Option{automaton.WithLogger(m.logger)}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST lock entry.mu, and then call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry at zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

func (m *Manager) load(ctx context.Context, id string) (*automaton.Model, error) {
	doc, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	model, err := automaton.New(doc.Kind, doc.States, doc.Transitions, m.opts...)
	if err != nil {
		return nil, fmt.Errorf("stored automaton %s is invalid: %w", id, err)
	}
	return model, nil
}

// Load retrieves an automaton from the store.
func (m *Manager) Load(ctx context.Context, id string) (*automaton.Model, error) {
	var model *automaton.Model
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		model, err = m.load(ctx, id)
		return err
	})
	return model, err
}

// LoadOrCreate loads the automaton or, when it does not exist, stores an empty one of kind.
func (m *Manager) LoadOrCreate(ctx context.Context, id string, kind domain.Kind) (*automaton.Model, error) {
	var model *automaton.Model
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		model, err = m.load(ctx, id)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrAutomatonNotFound) {
			return fmt.Errorf("failed to check automaton existence: %w", err)
		}

		model, err = automaton.New(kind, nil, nil, m.opts...)
		if err != nil {
			return err
		}
		if err := m.store.Save(ctx, id, model.Document()); err != nil {
			return fmt.Errorf("failed to initialize automaton: %w", err)
		}
		m.logger.Info("automaton created", "automaton_id", id, "kind", kind)
		return nil
	})
	return model, err
}

// Save persists the automaton.
func (m *Manager) Save(ctx context.Context, id string, model *automaton.Model) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Save(ctx, id, model.Document())
	})
}

// Update loads the automaton, applies fn and saves what fn returns.
// fn may mutate the model in place and return it, or return a new model
// (e.g. a conversion). Nothing is saved when fn fails.
func (m *Manager) Update(ctx context.Context, id string, fn func(*automaton.Model) (*automaton.Model, error)) (*automaton.Model, error) {
	var out *automaton.Model
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		model, err := m.load(ctx, id)
		if err != nil {
			return err
		}
		out, err = fn(model)
		if err != nil {
			return err
		}
		return m.store.Save(ctx, id, out.Document())
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the automaton from the store.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Delete(ctx, id)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying store.
func (m *Manager) Store() ports.AutomatonStore {
	return m.store
}

// WithLock executes fn while holding the lock for the automaton.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"automaton_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
