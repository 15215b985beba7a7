package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Source is a read-only paged listing of catalog entities, ordered by
// ascending entity id so pagination stays deterministic even when rows
// are inserted concurrently.
type Source interface {
	// ListAfter returns up to limit entities with id strictly greater
	// than afterID, ordered by id ascending.
	ListAfter(ctx context.Context, afterID int64, limit int) ([]Entity, error)

	// Count returns the total number of entities.
	Count(ctx context.Context) (int64, error)

	// ResolveOwners maps embedding owner UUIDs back to entity ids.
	// Unknown owners are absent from the returned map.
	ResolveOwners(ctx context.Context, owners []uuid.UUID) (map[uuid.UUID]int64, error)
}
