package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/ports"
)

var _ ports.DocumentStore = (*Store)(nil)

// Store implements ports.DocumentStore in memory.
// Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	seq  map[domain.Kind]int64
	data map[domain.Kind]map[int64][]byte
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		seq:  make(map[domain.Kind]int64),
		data: make(map[domain.Kind]map[int64][]byte),
	}
}

// NextID allocates the next id for kind.
func (s *Store) NextID(ctx context.Context, kind domain.Kind) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq[kind]++
	return s.seq[kind], nil
}

// Save persists the document in memory.
func (s *Store) Save(ctx context.Context, kind domain.Kind, id int64, data []byte) error {
	// Copy so the caller can't mutate stored bytes, similar to serialization
	copied := slices.Clone(data)

	s.mu.Lock()
	defer s.mu.Unlock()
	docs, ok := s.data[kind]
	if !ok {
		docs = make(map[int64][]byte)
		s.data[kind] = docs
	}
	docs[id] = copied
	if id > s.seq[kind] {
		s.seq[kind] = id
	}
	return nil
}

// Load retrieves a document from memory.
func (s *Store) Load(ctx context.Context, kind domain.Kind, id int64) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[kind][id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return slices.Clone(data), nil
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, kind domain.Kind, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data[kind], id)
	return nil
}

// List returns the ids stored under kind, ascending.
func (s *Store) List(ctx context.Context, kind domain.Kind) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.data[kind]))
	for id := range s.data[kind] {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}
