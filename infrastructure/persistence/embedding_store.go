package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"github.com/reefwatch/mantid/domain/embedding"
	"github.com/reefwatch/mantid/domain/matching"
	"github.com/reefwatch/mantid/domain/store"
	"github.com/reefwatch/mantid/internal/database"
)

// forEachBatchSize is how many vectors ForEach pulls per page.
const forEachBatchSize = 200

// EmbeddingStore implements matching.VectorStore on GORM, one row per
// owner with content-hash deduplication.
type EmbeddingStore struct {
	database.Repository[embedding.EmbeddingVector, EmbeddingModel]
	logger *slog.Logger
}

// NewEmbeddingStore creates an EmbeddingStore.
func NewEmbeddingStore(db database.Database, logger *slog.Logger) *EmbeddingStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmbeddingStore{
		Repository: database.NewRepository[embedding.EmbeddingVector, EmbeddingModel](
			db, embeddingMapper{}, "embedding",
		),
		logger: logger,
	}
}

// Upsert implements matching.VectorStore. When the stored content hash
// already equals the incoming one the write is skipped entirely.
func (s *EmbeddingStore) Upsert(ctx context.Context, v embedding.EmbeddingVector) error {
	var storedHashes []string
	err := database.ApplyConditions(s.DB(ctx), store.WithOwnerID(v.Owner().String())).
		Pluck("content_hash", &storedHashes).Error
	if err != nil {
		return fmt.Errorf("read stored hash for %s: %w", v.Owner(), err)
	}

	if len(storedHashes) > 0 && storedHashes[0] == v.ContentHash() && storedHashes[0] != "" {
		s.logger.Debug("embedding unchanged, skipping write",
			"owner", v.Owner(),
			"content_hash", storedHashes[0],
		)
		return nil
	}

	model := s.Mapper().ToModel(v)
	err = s.DB(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "owner_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"dim", "vector", "norm", "content_hash", "source_path", "updated_at",
		}),
	}).Create(&model).Error
	if err != nil {
		return fmt.Errorf("upsert embedding for %s: %w", v.Owner(), err)
	}

	return nil
}

// Get implements matching.VectorStore.
func (s *EmbeddingStore) Get(ctx context.Context, owner uuid.UUID) (embedding.EmbeddingVector, bool, error) {
	v, err := s.FindOne(ctx, store.WithOwnerID(owner.String()))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return embedding.EmbeddingVector{}, false, nil
		}
		return embedding.EmbeddingVector{}, false, err
	}
	return v, true, nil
}

// ForEach implements matching.VectorStore. Vectors are streamed in
// pages over ascending row id; every call starts from a fresh read.
func (s *EmbeddingStore) ForEach(ctx context.Context, fn func(embedding.EmbeddingVector) error) error {
	var lastID int64

	for {
		var models []EmbeddingModel
		err := database.ApplyOptions(s.DB(ctx),
			store.WithIDAfter(lastID),
			store.WithOrderAsc("id"),
			store.WithLimit(forEachBatchSize),
		).Find(&models).Error
		if err != nil {
			return fmt.Errorf("page embeddings after id %d: %w", lastID, err)
		}

		if len(models) == 0 {
			return nil
		}

		for _, m := range models {
			v, err := s.Mapper().ToDomain(m)
			if err != nil {
				return err
			}
			if err := fn(v); err != nil {
				return err
			}
			lastID = m.ID
		}
	}
}

// DuplicateHashes implements matching.VectorStore.
func (s *EmbeddingStore) DuplicateHashes(ctx context.Context) ([]matching.DuplicateHash, error) {
	var shared []string
	err := s.DB(ctx).
		Select("content_hash").
		Group("content_hash").
		Having("COUNT(DISTINCT owner_id) > 1").
		Pluck("content_hash", &shared).Error
	if err != nil {
		return nil, fmt.Errorf("find duplicate hashes: %w", err)
	}

	duplicates := make([]matching.DuplicateHash, 0, len(shared))
	for _, hash := range shared {
		vectors, err := s.Find(ctx,
			store.WithContentHash(hash),
			store.WithOrderAsc("owner_id"),
		)
		if err != nil {
			return nil, err
		}
		owners := make([]uuid.UUID, len(vectors))
		for i, v := range vectors {
			owners[i] = v.Owner()
		}
		duplicates = append(duplicates, matching.NewDuplicateHash(hash, owners))
	}

	return duplicates, nil
}

var _ matching.VectorStore = (*EmbeddingStore)(nil)
