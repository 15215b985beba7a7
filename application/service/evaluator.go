// Package service drives the self-match evaluation pipeline: per-entity
// evaluation and the resumable batch orchestration over the catalog.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/reefwatch/mantid/domain/catalog"
	"github.com/reefwatch/mantid/domain/embedding"
	"github.com/reefwatch/mantid/domain/matching"
)

// Evaluation defaults.
const (
	DefaultMatchCount = 10

	// DefaultMinScore accepts every cosine score, i.e. no floor.
	DefaultMinScore = -1.0
)

// Evaluator re-embeds an entity's canonical photo and scores how the
// entity ranks against the whole catalog, itself included. Exclusion of
// self is deliberately absent: the self-match rank IS the statistic.
type Evaluator struct {
	embedder   embedding.Embedder
	guard      embedding.Guard
	vectors    matching.VectorStore
	searcher   matching.Searcher
	catalog    catalog.Source
	matchCount int
	minScore   float64
	logger     *slog.Logger
}

// NewEvaluator creates an Evaluator. matchCount <= 0 falls back to
// DefaultMatchCount.
func NewEvaluator(
	embedder embedding.Embedder,
	guard embedding.Guard,
	vectors matching.VectorStore,
	searcher matching.Searcher,
	source catalog.Source,
	matchCount int,
	minScore float64,
	logger *slog.Logger,
) *Evaluator {
	if matchCount <= 0 {
		matchCount = DefaultMatchCount
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{
		embedder:   embedder,
		guard:      guard,
		vectors:    vectors,
		searcher:   searcher,
		catalog:    source,
		matchCount: matchCount,
		minScore:   minScore,
		logger:     logger,
	}
}

// Evaluate runs the self-match pipeline for one entity: embed its
// canonical photo, validate, refresh the vector store, query the top
// matchCount neighbors, and build one SelfMatchResult per neighbor.
//
// Failures are ErrEmbedFailed (service or integrity) and ErrNoMatches
// (empty result list); both mean "skip this entity", not "abort".
func (e *Evaluator) Evaluate(ctx context.Context, entity catalog.Entity) ([]matching.SelfMatchResult, error) {
	raw, err := e.embedder.Embed(ctx, entity.PhotoPath())
	if err != nil {
		return nil, fmt.Errorf("%w: entity %d: %w", ErrEmbedFailed, entity.ID(), err)
	}

	vec, err := e.guard.Validate(entity.Owner(), raw, entity.PhotoPath())
	if err != nil {
		return nil, fmt.Errorf("%w: entity %d: %w", ErrEmbedFailed, entity.ID(), err)
	}

	// Keep the index fresh so every later query this run sees the
	// newest embedding, this entity's own included.
	if err := e.vectors.Upsert(ctx, vec); err != nil {
		return nil, fmt.Errorf("store embedding for entity %d: %w", entity.ID(), err)
	}

	neighbors, err := e.searcher.Search(ctx, vec.Vector().Values(), e.matchCount, e.minScore)
	if err != nil {
		return nil, fmt.Errorf("similarity search for entity %d: %w", entity.ID(), err)
	}

	if len(neighbors) == 0 {
		return nil, fmt.Errorf("%w: entity %d", ErrNoMatches, entity.ID())
	}

	owners := make([]uuid.UUID, len(neighbors))
	for i, n := range neighbors {
		owners[i] = n.Owner()
	}
	resolved, err := e.catalog.ResolveOwners(ctx, owners)
	if err != nil {
		return nil, fmt.Errorf("resolve matched owners for entity %d: %w", entity.ID(), err)
	}

	results := make([]matching.SelfMatchResult, 0, len(neighbors))
	for i, n := range neighbors {
		matchedID, ok := resolved[n.Owner()]
		if !ok {
			// A vector whose owner left the catalog; rank it with a
			// sentinel id so the row is still visible in the results.
			e.logger.Warn("matched owner not in catalog",
				"owner", n.Owner(),
				"query_entity", entity.ID(),
			)
			matchedID = -1
		}
		results = append(results, matching.NewSelfMatchResult(
			entity.Owner(),
			entity.ID(),
			matchedID,
			i+1,
			n.Score(),
			entity.PhotoPath(),
		))
	}

	top := results[0]
	e.logger.Debug("evaluated entity",
		"entity", entity.ID(),
		"top_match", top.MatchedEntityID(),
		"top_score", top.Score(),
		"correct", top.IsCorrectTopMatch(),
	)

	return results, nil
}
