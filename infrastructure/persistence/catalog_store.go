package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/reefwatch/mantid/domain/catalog"
	"github.com/reefwatch/mantid/domain/store"
	"github.com/reefwatch/mantid/internal/database"
)

// CatalogStore implements catalog.Source over the entities table. The
// table is populated by the cataloguing workflow; this store only reads
// it, except for Seed which exists for fixtures and imports.
type CatalogStore struct {
	database.Repository[catalog.Entity, EntityModel]
}

// NewCatalogStore creates a CatalogStore.
func NewCatalogStore(db database.Database) *CatalogStore {
	return &CatalogStore{
		Repository: database.NewRepository[catalog.Entity, EntityModel](
			db, entityMapper{}, "catalog entity",
		),
	}
}

// ListAfter implements catalog.Source.
func (s *CatalogStore) ListAfter(ctx context.Context, afterID int64, limit int) ([]catalog.Entity, error) {
	return s.Find(ctx,
		store.WithIDAfter(afterID),
		store.WithOrderAsc("id"),
		store.WithLimit(limit),
	)
}

// Count implements catalog.Source.
func (s *CatalogStore) Count(ctx context.Context) (int64, error) {
	return s.Repository.Count(ctx)
}

// ResolveOwners implements catalog.Source.
func (s *CatalogStore) ResolveOwners(ctx context.Context, owners []uuid.UUID) (map[uuid.UUID]int64, error) {
	if len(owners) == 0 {
		return map[uuid.UUID]int64{}, nil
	}

	ids := make([]string, len(owners))
	for i, o := range owners {
		ids[i] = o.String()
	}

	entities, err := s.Find(ctx, store.WithConditionIn("owner_id", ids))
	if err != nil {
		return nil, err
	}

	resolved := make(map[uuid.UUID]int64, len(entities))
	for _, e := range entities {
		resolved[e.Owner()] = e.ID()
	}
	return resolved, nil
}

// Seed inserts entities, for test fixtures and catalog imports.
func (s *CatalogStore) Seed(ctx context.Context, entities []catalog.Entity) error {
	if len(entities) == 0 {
		return nil
	}
	models := make([]EntityModel, len(entities))
	for i, e := range entities {
		models[i] = s.Mapper().ToModel(e)
	}
	if err := s.DB(ctx).Create(&models).Error; err != nil {
		return fmt.Errorf("seed catalog entities: %w", err)
	}
	return nil
}

var _ catalog.Source = (*CatalogStore)(nil)
