package ports

import (
	"context"

	"github.com/aretw0/onboard/pkg/domain"
)

// DocumentStore persists JSON documents grouped by kind.
// Implementations must be safe for concurrent use.
type DocumentStore interface {
	// NextID allocates a new, never reused identifier for kind. IDs start at 1.
	NextID(ctx context.Context, kind domain.Kind) (int64, error)

	// Save stores (creates or replaces) the document.
	Save(ctx context.Context, kind domain.Kind, id int64, data []byte) error

	// Load retrieves a document.
	// Returns domain.ErrNotFound if the document does not exist.
	Load(ctx context.Context, kind domain.Kind, id int64) ([]byte, error)

	// Delete removes a document. Deleting a missing document is not an error.
	Delete(ctx context.Context, kind domain.Kind, id int64) error

	// List returns the ids stored under kind in ascending order.
	List(ctx context.Context, kind domain.Kind) ([]int64, error)
}
