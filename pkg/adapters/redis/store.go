package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

var _ ports.DocumentStore = (*Store)(nil)

// DefaultPrefix namespaces every key written by the adapters.
const DefaultPrefix = "onboard:"

// Store implements ports.DocumentStore using Redis.
// Documents are plain string keys; a ZSET per kind (scored by id) keeps List ordered.
type Store struct {
	client *backend.Client
	prefix string
}

type Option func(*Store)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Client exposes the underlying client so the locker and dispatcher can share it.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(kind domain.Kind, id int64) string {
	return s.prefix + "doc:" + string(kind) + ":" + strconv.FormatInt(id, 10)
}

func (s *Store) indexKey(kind domain.Kind) string {
	return s.prefix + "idx:" + string(kind)
}

func (s *Store) seqKey(kind domain.Kind) string {
	return s.prefix + "seq:" + string(kind)
}

// NextID allocates an id with INCR.
func (s *Store) NextID(ctx context.Context, kind domain.Kind) (int64, error) {
	id, err := s.client.Incr(ctx, s.seqKey(kind)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to allocate id for %s: %w", kind, err)
	}
	return id, nil
}

// Save persists the document and indexes it.
func (s *Store) Save(ctx context.Context, kind domain.Kind, id int64, data []byte) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(kind, id), data, 0)
	pipe.ZAdd(ctx, s.indexKey(kind), backend.Z{
		Score:  float64(id),
		Member: strconv.FormatInt(id, 10),
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the document from Redis.
func (s *Store) Load(ctx context.Context, kind domain.Kind, id int64) ([]byte, error) {
	val, err := s.client.Get(ctx, s.key(kind, id)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	return val, nil
}

// Delete removes the document and its index entry.
func (s *Store) Delete(ctx context.Context, kind domain.Kind, id int64) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(kind, id))
	pipe.ZRem(ctx, s.indexKey(kind), strconv.FormatInt(id, 10))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// List returns ids in ascending order using the ZSET index.
func (s *Store) List(ctx context.Context, kind domain.Kind) ([]int64, error) {
	members, err := s.client.ZRange(ctx, s.indexKey(kind), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt index entry %q for %s: %w", m, kind, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
