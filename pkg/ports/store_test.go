package ports_test

import (
	"context"
	"slices"
	"sync"
	"testing"

	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/ports"
)

// MockStore is a minimal DocumentStore used to check the contract suite itself.
type MockStore struct {
	mu   sync.Mutex
	seq  map[domain.Kind]int64
	data map[domain.Kind]map[int64][]byte
}

func NewMockStore() *MockStore {
	return &MockStore{
		seq:  make(map[domain.Kind]int64),
		data: make(map[domain.Kind]map[int64][]byte),
	}
}

func (m *MockStore) NextID(ctx context.Context, kind domain.Kind) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq[kind]++
	return m.seq[kind], nil
}

func (m *MockStore) Save(ctx context.Context, kind domain.Kind, id int64, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[kind] == nil {
		m.data[kind] = make(map[int64][]byte)
	}
	m.data[kind][id] = slices.Clone(data)
	return nil
}

func (m *MockStore) Load(ctx context.Context, kind domain.Kind, id int64) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[kind][id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return data, nil
}

func (m *MockStore) Delete(ctx context.Context, kind domain.Kind, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data[kind], id)
	return nil
}

func (m *MockStore) List(ctx context.Context, kind domain.Kind) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0, len(m.data[kind]))
	for id := range m.data[kind] {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func TestDocumentStore_Contract(t *testing.T) {
	ports.RunDocumentStoreContract(t, NewMockStore())
}
