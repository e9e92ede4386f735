package ports_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/ports"
)

// MockStore is a map-backed AutomatonStore used to check the contract suite itself.
type MockStore struct {
	mu   sync.Mutex
	data map[string]domain.Document
}

func NewMockStore() *MockStore {
	return &MockStore{data: make(map[string]domain.Document)}
}

func (m *MockStore) Save(ctx context.Context, id string, doc domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[id] = doc
	return nil
}

func (m *MockStore) Load(ctx context.Context, id string) (domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.data[id]
	if !ok {
		return domain.Document{}, domain.ErrAutomatonNotFound
	}
	return doc, nil
}

func (m *MockStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

func (m *MockStore) List(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	return ids, nil
}

func TestAutomatonStore_Contract(t *testing.T) {
	ports.RunAutomatonStoreContract(t, NewMockStore())
}
