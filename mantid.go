// Package mantid wires the manta-ray photo-identification matching
// pipeline: embedding, vector integrity, similarity search, and the
// resumable self-match evaluation harness.
package mantid

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/reefwatch/mantid/application/service"
	"github.com/reefwatch/mantid/domain/embedding"
	"github.com/reefwatch/mantid/domain/matching"
	"github.com/reefwatch/mantid/infrastructure/persistence"
	"github.com/reefwatch/mantid/infrastructure/search"
	"github.com/reefwatch/mantid/internal/database"
)

// ErrNoEmbedder indicates no embedding service or custom embedder was
// configured.
var ErrNoEmbedder = errors.New("no embedder configured")

// Client is the assembled pipeline.
type Client struct {
	db           database.Database
	logger       *slog.Logger
	catalogStore *persistence.CatalogStore
	vectors      *persistence.EmbeddingStore
	results      *persistence.SelfMatchStore
	orchestrator *service.Orchestrator
	indexer      *service.Indexer
	matchCount   int
}

// New builds a Client from options.
func New(ctx context.Context, options ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range options {
		opt(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.embedder == nil {
		return nil, ErrNoEmbedder
	}
	if cfg.dbURL == "" {
		return nil, errors.New("no database URL configured")
	}

	db, err := database.NewDatabase(ctx, cfg.dbURL)
	if err != nil {
		return nil, err
	}
	if err := persistence.AutoMigrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	catalogStore := persistence.NewCatalogStore(db)
	vectors := persistence.NewEmbeddingStore(db, cfg.logger)
	results := persistence.NewSelfMatchStore(db, cfg.logger)
	searcher := search.NewVectorSearcher(vectors, cfg.logger)
	guard := embedding.NewGuard(cfg.dimension)

	evaluator := service.NewEvaluator(
		cfg.embedder, guard, vectors, searcher, catalogStore,
		cfg.matchCount, cfg.minScore, cfg.logger,
	)

	orchestratorOpts := []service.OrchestratorOption{
		service.WithThrottle(cfg.throttle),
		service.WithPageSize(cfg.pageSize),
		service.WithFlushChunkSize(cfg.flushChunkSize),
	}
	if cfg.progress != nil {
		orchestratorOpts = append(orchestratorOpts, service.WithProgress(cfg.progress))
	}

	indexerOpts := []service.IndexerOption{
		service.WithIndexThrottle(cfg.throttle),
		service.WithIndexPageSize(cfg.pageSize),
	}
	if cfg.progress != nil {
		indexerOpts = append(indexerOpts, service.WithIndexProgress(cfg.progress))
	}

	return &Client{
		db:           db,
		logger:       cfg.logger,
		catalogStore: catalogStore,
		vectors:      vectors,
		results:      results,
		orchestrator: service.NewOrchestrator(catalogStore, evaluator, results, cfg.logger, orchestratorOpts...),
		indexer:      service.NewIndexer(catalogStore, cfg.embedder, guard, vectors, cfg.logger, indexerOpts...),
		matchCount:   cfg.matchCount,
	}, nil
}

// Evaluate runs the self-match evaluation over the catalog.
func (c *Client) Evaluate(ctx context.Context, opts matching.RunOptions) (matching.RunSummary, error) {
	return c.orchestrator.Run(ctx, opts)
}

// Index backfills embeddings for the whole catalog without evaluating.
func (c *Client) Index(ctx context.Context) (service.IndexSummary, error) {
	return c.indexer.Run(ctx)
}

// AccuracyReport aggregates the persisted self-match results.
func (c *Client) AccuracyReport(ctx context.Context) (matching.Report, error) {
	results, err := c.results.All(ctx)
	if err != nil {
		return matching.Report{}, fmt.Errorf("load results: %w", err)
	}
	return matching.Accuracy(results, c.matchCount), nil
}

// DuplicateHashes lists content hashes shared across owners.
func (c *Client) DuplicateHashes(ctx context.Context) ([]matching.DuplicateHash, error) {
	return c.vectors.DuplicateHashes(ctx)
}

// Close releases the database.
func (c *Client) Close() error {
	return c.db.Close()
}
