// Package repository maps domain entities onto a ports.DocumentStore as JSON documents.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/ports"
)

// Entity constrains P to be a pointer to T that carries an id.
type Entity[T any] interface {
	*T
	domain.Entity
}

// Collection stores one kind of entity.
type Collection[T any, P Entity[T]] struct {
	store ports.DocumentStore
	kind  domain.Kind
}

// NewCollection binds kind on store.
func NewCollection[T any, P Entity[T]](store ports.DocumentStore, kind domain.Kind) *Collection[T, P] {
	return &Collection[T, P]{store: store, kind: kind}
}

// Kind returns the collection kind.
func (c *Collection[T, P]) Kind() domain.Kind {
	return c.kind
}

// Create allocates an id for v and stores it.
func (c *Collection[T, P]) Create(ctx context.Context, v P) error {
	id, err := c.store.NextID(ctx, c.kind)
	if err != nil {
		return err
	}
	v.AssignID(id)
	return c.Save(ctx, v)
}

// Save overwrites the stored document of v.
func (c *Collection[T, P]) Save(ctx context.Context, v P) error {
	return saveDocument(ctx, c.store, c.kind, v)
}

// Get loads the entity. Missing entities return an error wrapping domain.ErrNotFound.
func (c *Collection[T, P]) Get(ctx context.Context, id int64) (P, error) {
	v := P(new(T))
	if err := loadDocument(ctx, c.store, c.kind, id, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Delete removes the entity.
func (c *Collection[T, P]) Delete(ctx context.Context, id int64) error {
	if err := c.store.Delete(ctx, c.kind, id); err != nil {
		return fmt.Errorf("failed to delete %s %d: %w", c.kind, id, err)
	}
	return nil
}

// List loads every entity ordered by id. Documents that vanish between the
// index read and the load are skipped.
func (c *Collection[T, P]) List(ctx context.Context) ([]P, error) {
	ids, err := c.store.List(ctx, c.kind)
	if err != nil {
		return nil, err
	}
	out := make([]P, 0, len(ids))
	for _, id := range ids {
		v, err := c.Get(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Filter returns the entities keep accepts.
func (c *Collection[T, P]) Filter(ctx context.Context, keep func(P) bool) ([]P, error) {
	all, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, v := range all {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out, nil
}

func saveDocument(ctx context.Context, store ports.DocumentStore, kind domain.Kind, v domain.Entity) error {
	if v.EntityID() <= 0 {
		return fmt.Errorf("cannot save %s without id", kind)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", kind, err)
	}
	if err := store.Save(ctx, kind, v.EntityID(), data); err != nil {
		return fmt.Errorf("failed to save %s %d: %w", kind, v.EntityID(), err)
	}
	return nil
}

func loadDocument(ctx context.Context, store ports.DocumentStore, kind domain.Kind, id int64, v any) error {
	data, err := store.Load(ctx, kind, id)
	if err != nil {
		return fmt.Errorf("%s %d: %w", kind, id, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s %d: %w", kind, id, err)
	}
	return nil
}
