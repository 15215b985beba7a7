package persistence

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/reefwatch/mantid/domain/matching"
	"github.com/reefwatch/mantid/domain/store"
	"github.com/reefwatch/mantid/internal/database"
)

// saveAllBatchSize bounds the row count of a single INSERT statement.
// Chunking for backend payload limits is the orchestrator's concern;
// this only keeps individual statements reasonable.
const saveAllBatchSize = 100

// SelfMatchStore implements matching.ResultStore on GORM with keyed
// upsert on (query_entity_id, rank).
type SelfMatchStore struct {
	database.Repository[matching.SelfMatchResult, SelfMatchModel]
	db     database.Database
	logger *slog.Logger
}

// NewSelfMatchStore creates a SelfMatchStore.
func NewSelfMatchStore(db database.Database, logger *slog.Logger) *SelfMatchStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SelfMatchStore{
		Repository: database.NewRepository[matching.SelfMatchResult, SelfMatchModel](
			db, selfMatchMapper{}, "self match result",
		),
		db:     db,
		logger: logger,
	}
}

// SaveAll implements matching.ResultStore. The whole chunk commits in
// one transaction so a failure leaves no partial write behind. Each
// query in the chunk fully supersedes its stored rows: ranks beyond
// the new result set are pruned, so a re-run that returns fewer
// matches never leaves a previous run's tail in the table.
func (s *SelfMatchStore) SaveAll(ctx context.Context, results []matching.SelfMatchResult) error {
	if len(results) == 0 {
		return nil
	}

	models := make([]SelfMatchModel, len(results))
	maxRanks := make(map[int64]int)
	for i, r := range results {
		models[i] = s.Mapper().ToModel(r)
		if r.Rank() > maxRanks[r.QueryEntityID()] {
			maxRanks[r.QueryEntityID()] = r.Rank()
		}
	}

	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "query_entity_id"}, {Name: "rank"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"query_owner_id", "matched_entity_id", "score", "is_correct_top_match", "source_path",
			}),
		}).CreateInBatches(models, saveAllBatchSize).Error
		if err != nil {
			return err
		}

		for queryID, maxRank := range maxRanks {
			err := tx.Where("query_entity_id = ? AND rank > ?", queryID, maxRank).
				Delete(&SelfMatchModel{}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save %d self match results: %w", len(results), err)
	}

	return nil
}

// All implements matching.ResultStore.
func (s *SelfMatchStore) All(ctx context.Context) ([]matching.SelfMatchResult, error) {
	return s.Find(ctx,
		store.WithOrderAsc("query_entity_id"),
		store.WithOrderAsc("rank"),
	)
}

// DistinctQueryEntityIDs implements matching.ResultStore.
func (s *SelfMatchStore) DistinctQueryEntityIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := s.DB(ctx).
		Distinct("query_entity_id").
		Order("query_entity_id ASC").
		Pluck("query_entity_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("distinct query entity ids: %w", err)
	}
	return ids, nil
}

// DeleteAll implements matching.ResultStore.
func (s *SelfMatchStore) DeleteAll(ctx context.Context) error {
	if err := s.db.Session(ctx).Where("1 = 1").Delete(&SelfMatchModel{}).Error; err != nil {
		return fmt.Errorf("clear self match results: %w", err)
	}
	return nil
}

var _ matching.ResultStore = (*SelfMatchStore)(nil)
