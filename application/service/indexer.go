package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/reefwatch/mantid/domain/catalog"
	"github.com/reefwatch/mantid/domain/embedding"
	"github.com/reefwatch/mantid/domain/matching"
)

// IndexSummary reports the outcome of one backfill pass.
type IndexSummary struct {
	// TotalEntities is the catalog size at pass start.
	TotalEntities int

	// Indexed counts entities whose embedding was written or refreshed.
	Indexed int

	// Failed counts entities whose photo could not be embedded or
	// whose vector was rejected by the integrity guard.
	Failed int
}

// Indexer embeds every catalog photo into the vector store without
// evaluating, so an evaluation run can start from a warm index. Uses
// the same sequential single-worker model as the orchestrator.
type Indexer struct {
	source   catalog.Source
	embedder embedding.Embedder
	guard    embedding.Guard
	vectors  matching.VectorStore
	limiter  *rate.Limiter
	pageSize int
	progress func(done, total int)
	logger   *slog.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithIndexThrottle sets the fixed delay between entities.
func WithIndexThrottle(interval time.Duration) IndexerOption {
	return func(i *Indexer) {
		i.limiter = newLimiter(interval)
	}
}

// WithIndexPageSize sets the catalog page size.
func WithIndexPageSize(n int) IndexerOption {
	return func(i *Indexer) {
		if n > 0 {
			i.pageSize = n
		}
	}
}

// WithIndexProgress registers a per-entity progress callback.
func WithIndexProgress(fn func(done, total int)) IndexerOption {
	return func(i *Indexer) {
		i.progress = fn
	}
}

// NewIndexer creates an Indexer.
func NewIndexer(
	source catalog.Source,
	embedder embedding.Embedder,
	guard embedding.Guard,
	vectors matching.VectorStore,
	logger *slog.Logger,
	options ...IndexerOption,
) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	i := &Indexer{
		source:   source,
		embedder: embedder,
		guard:    guard,
		vectors:  vectors,
		limiter:  newLimiter(DefaultThrottle),
		pageSize: DefaultPageSize,
		logger:   logger,
	}
	for _, opt := range options {
		opt(i)
	}
	return i
}

// Run embeds the whole catalog. Per-entity embed and integrity failures
// become counters; store errors abort, because continuing would leave an
// index of unknown completeness.
func (i *Indexer) Run(ctx context.Context) (IndexSummary, error) {
	var summary IndexSummary

	total, err := i.source.Count(ctx)
	if err != nil {
		return summary, fmt.Errorf("count catalog: %w", err)
	}
	summary.TotalEntities = int(total)

	i.logger.Info("index backfill starting", "total_entities", summary.TotalEntities)

	var lastID int64
	for {
		entities, err := i.source.ListAfter(ctx, lastID, i.pageSize)
		if err != nil {
			return summary, fmt.Errorf("list catalog page after id %d: %w", lastID, err)
		}
		if len(entities) == 0 {
			break
		}

		for _, entity := range entities {
			lastID = entity.ID()

			if err := i.limiter.Wait(ctx); err != nil {
				return summary, fmt.Errorf("index cancelled: %w", err)
			}

			if err := i.indexOne(ctx, entity); err != nil {
				if ctx.Err() != nil {
					return summary, fmt.Errorf("index cancelled: %w", ctx.Err())
				}
				if isStoreFailure(err) {
					return summary, err
				}
				summary.Failed++
				i.logger.Warn("entity indexing failed", "entity", entity.ID(), "error", err)
			} else {
				summary.Indexed++
			}

			if i.progress != nil {
				i.progress(summary.Indexed+summary.Failed, summary.TotalEntities)
			}
		}
	}

	i.logger.Info("index backfill finished",
		"indexed", summary.Indexed,
		"failed", summary.Failed,
	)

	return summary, nil
}

func (i *Indexer) indexOne(ctx context.Context, entity catalog.Entity) error {
	raw, err := i.embedder.Embed(ctx, entity.PhotoPath())
	if err != nil {
		return fmt.Errorf("%w: entity %d: %w", ErrEmbedFailed, entity.ID(), err)
	}

	vec, err := i.guard.Validate(entity.Owner(), raw, entity.PhotoPath())
	if err != nil {
		return fmt.Errorf("%w: entity %d: %w", ErrEmbedFailed, entity.ID(), err)
	}

	if err := i.vectors.Upsert(ctx, vec); err != nil {
		return fmt.Errorf("store embedding for entity %d: %w", entity.ID(), err)
	}

	return nil
}

// isStoreFailure distinguishes persistence errors from the skippable
// per-entity taxonomy.
func isStoreFailure(err error) bool {
	return !errors.Is(err, ErrEmbedFailed)
}
