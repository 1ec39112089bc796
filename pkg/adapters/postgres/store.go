// Package postgres implements ports.DocumentStore on PostgreSQL using lib/pq.
//
// Documents are stored as JSONB rows keyed by (kind, id); ids come from a
// per-kind counter row so they stay dense like the other backends.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/ports"
	"github.com/lib/pq"
)

var _ ports.DocumentStore = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS onboard_documents (
	kind TEXT   NOT NULL,
	id   BIGINT NOT NULL,
	body JSONB  NOT NULL,
	PRIMARY KEY (kind, id)
);
CREATE TABLE IF NOT EXISTS onboard_counters (
	kind TEXT   PRIMARY KEY,
	last BIGINT NOT NULL
);`

// Store implements ports.DocumentStore on a *sql.DB.
type Store struct {
	db *sql.DB
}

// Open connects with the given DSN and makes sure the tables exist.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to reach postgres: %w", err)
	}
	s := New(db)
	if err := s.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing connection pool.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// NextID bumps the counter of kind.
func (s *Store) NextID(ctx context.Context, kind domain.Kind) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO onboard_counters (kind, last) VALUES ($1, 1)
		ON CONFLICT (kind) DO UPDATE SET last = onboard_counters.last + 1
		RETURNING last`, string(kind)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate id for %s: %w", kind, describe(err))
	}
	return id, nil
}

// Save upserts the document.
func (s *Store) Save(ctx context.Context, kind domain.Kind, id int64, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO onboard_documents (kind, id, body) VALUES ($1, $2, $3)
		ON CONFLICT (kind, id) DO UPDATE SET body = EXCLUDED.body`,
		string(kind), id, string(data))
	if err != nil {
		return fmt.Errorf("failed to save %s %d: %w", kind, id, describe(err))
	}
	return nil
}

// Load returns the stored document or domain.ErrNotFound.
func (s *Store) Load(ctx context.Context, kind domain.Kind, id int64) ([]byte, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM onboard_documents WHERE kind = $1 AND id = $2`,
		string(kind), id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s %d: %w", kind, id, describe(err))
	}
	return body, nil
}

// Delete removes the document. Missing rows are not an error.
func (s *Store) Delete(ctx context.Context, kind domain.Kind, id int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM onboard_documents WHERE kind = $1 AND id = $2`, string(kind), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s %d: %w", kind, id, describe(err))
	}
	return nil
}

// List returns the ids of kind in ascending order.
func (s *Store) List(ctx context.Context, kind domain.Kind) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM onboard_documents WHERE kind = $1 ORDER BY id`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, describe(err))
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// describe adds the SQLSTATE to driver errors so logs are actionable.
func describe(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("%s (%s): %w", pqErr.Message, pqErr.Code, err)
	}
	return err
}
