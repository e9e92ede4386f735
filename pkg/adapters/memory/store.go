package memory

import (
	"context"
	"sync"

	"github.com/aretw0/automata/pkg/domain"
)

// Store implements ports.AutomatonStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.Document
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.Document),
	}
}

// Save persists a deep copy of the document.
func (s *Store) Save(ctx context.Context, id string, doc domain.Document) error {
	copied := copyDocument(doc)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[id] = copied
	return nil
}

// Load retrieves a copy so callers can't mutate the stored document.
func (s *Store) Load(ctx context.Context, id string) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.data[id]
	if !ok {
		return domain.Document{}, domain.ErrAutomatonNotFound
	}
	return copyDocument(doc), nil
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns the stored IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}

func copyDocument(doc domain.Document) domain.Document {
	out := domain.Document{
		Kind:        doc.Kind,
		States:      append([]domain.State(nil), doc.States...),
		Transitions: make([]domain.Transition, 0, len(doc.Transitions)),
	}
	for _, t := range doc.Transitions {
		out.Transitions = append(out.Transitions, t.Clone())
	}
	return out
}
