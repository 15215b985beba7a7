package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/reefwatch/mantid/domain/catalog"
	"github.com/reefwatch/mantid/domain/matching"
)

// Orchestration defaults.
const (
	DefaultPageSize       = 50
	DefaultFlushChunkSize = 500
	DefaultThrottle       = 150 * time.Millisecond
)

// entityEvaluator is the per-entity evaluation the orchestrator drives.
type entityEvaluator interface {
	Evaluate(ctx context.Context, entity catalog.Entity) ([]matching.SelfMatchResult, error)
}

// batchCursor is the transient state of one run. The skip set is a
// derived view, recomputed from the result table at run start, never
// persisted mutable state.
type batchCursor struct {
	lastProcessedID int64
	processed       int
	skipSet         map[int64]struct{}
}

func newBatchCursor(skipIDs []int64) *batchCursor {
	skip := make(map[int64]struct{}, len(skipIDs))
	for _, id := range skipIDs {
		skip[id] = struct{}{}
	}
	return &batchCursor{skipSet: skip}
}

func (c *batchCursor) shouldSkip(id int64) bool {
	_, ok := c.skipSet[id]
	return ok
}

// Orchestrator drives the evaluator over the whole catalog in
// resumable, idempotent pages: one logical worker, strictly sequential,
// throttled between entities. Results for an entity are always fully
// flushed (or entirely dropped) before the next page starts, so a crash
// loses at most the current page and a resumed run picks up cleanly.
type Orchestrator struct {
	source    catalog.Source
	evaluator entityEvaluator
	results   matching.ResultStore
	limiter   *rate.Limiter
	pageSize  int
	chunkSize int
	progress  func(processed, total int)
	logger    *slog.Logger
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithThrottle sets the fixed delay between entities. Zero disables
// throttling (tests).
func WithThrottle(interval time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		o.limiter = newLimiter(interval)
	}
}

// WithPageSize sets how many entities are pulled from the catalog per page.
func WithPageSize(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.pageSize = n
		}
	}
}

// WithFlushChunkSize caps how many result rows a single flush statement
// carries, to respect backend payload limits.
func WithFlushChunkSize(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.chunkSize = n
		}
	}
}

// WithProgress registers a callback invoked after every entity with the
// running processed count and the catalog total.
func WithProgress(fn func(processed, total int)) OrchestratorOption {
	return func(o *Orchestrator) {
		o.progress = fn
	}
}

func newLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(
	source catalog.Source,
	evaluator entityEvaluator,
	results matching.ResultStore,
	logger *slog.Logger,
	options ...OrchestratorOption,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		source:    source,
		evaluator: evaluator,
		results:   results,
		limiter:   newLimiter(DefaultThrottle),
		pageSize:  DefaultPageSize,
		chunkSize: DefaultFlushChunkSize,
		logger:    logger,
	}
	for _, opt := range options {
		opt(o)
	}
	return o
}

// Run evaluates the catalog per the given options and returns a
// summary. Per-entity failures become counters; a flush failure is the
// one fatal error, because a partially dropped write would corrupt the
// resume invariant.
func (o *Orchestrator) Run(ctx context.Context, opts matching.RunOptions) (matching.RunSummary, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = o.pageSize
	}

	var summary matching.RunSummary

	total, err := o.source.Count(ctx)
	if err != nil {
		return summary, fmt.Errorf("count catalog: %w", err)
	}
	summary.TotalEntities = int(total)

	if opts.Rebuild {
		if err := o.results.DeleteAll(ctx); err != nil {
			return summary, fmt.Errorf("clear results for rebuild: %w", err)
		}
	}

	var skipIDs []int64
	if opts.Resume && !opts.Rebuild {
		skipIDs, err = o.results.DistinctQueryEntityIDs(ctx)
		if err != nil {
			return summary, fmt.Errorf("load skip set: %w", err)
		}
	}
	cursor := newBatchCursor(skipIDs)

	o.logger.Info("evaluation run starting",
		"total_entities", summary.TotalEntities,
		"skip_set", len(cursor.skipSet),
		"page_size", pageSize,
		"rebuild", opts.Rebuild,
	)

	for {
		entities, err := o.source.ListAfter(ctx, cursor.lastProcessedID, pageSize)
		if err != nil {
			return summary, fmt.Errorf("list catalog page after id %d: %w", cursor.lastProcessedID, err)
		}
		if len(entities) == 0 {
			break
		}

		buffer := make([]matching.SelfMatchResult, 0, pageSize)
		for _, entity := range entities {
			cursor.lastProcessedID = entity.ID()

			if cursor.shouldSkip(entity.ID()) {
				summary.Skipped++
				o.report(&summary)
				continue
			}

			if err := o.limiter.Wait(ctx); err != nil {
				return summary, fmt.Errorf("run cancelled: %w", err)
			}

			results, err := o.evaluator.Evaluate(ctx, entity)
			if err != nil {
				if ctx.Err() != nil {
					return summary, fmt.Errorf("run cancelled: %w", ctx.Err())
				}
				summary.Failed++
				o.logger.Warn("entity evaluation failed",
					"entity", entity.ID(),
					"error", err,
				)
				o.report(&summary)
				continue
			}

			buffer = append(buffer, results...)
			cursor.processed++
			summary.Processed++
			o.report(&summary)
		}

		if err := o.flush(ctx, buffer); err != nil {
			return summary, err
		}
	}

	o.logger.Info("evaluation run finished",
		"processed", summary.Processed,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)

	return summary, nil
}

func (o *Orchestrator) report(summary *matching.RunSummary) {
	if o.progress != nil {
		o.progress(summary.Processed+summary.Skipped+summary.Failed, summary.TotalEntities)
	}
}

// flush writes buffered results in chunks of at most chunkSize rows,
// never splitting one entity's rows across chunks. Chunk boundaries are
// purely a transport concern.
func (o *Orchestrator) flush(ctx context.Context, buffer []matching.SelfMatchResult) error {
	chunks := chunkByEntity(buffer, o.chunkSize)
	for i, chunk := range chunks {
		if err := o.results.SaveAll(ctx, chunk); err != nil {
			return fmt.Errorf("flush chunk %d/%d (entities %v): %w",
				i+1, len(chunks), entityIDs(chunk), err)
		}
	}
	return nil
}

// chunkByEntity splits results into chunks of at most maxRows rows while
// keeping all rows of one query entity in the same chunk. A single
// entity exceeding maxRows gets a chunk of its own.
func chunkByEntity(results []matching.SelfMatchResult, maxRows int) [][]matching.SelfMatchResult {
	if len(results) == 0 {
		return nil
	}

	var chunks [][]matching.SelfMatchResult
	var current []matching.SelfMatchResult

	i := 0
	for i < len(results) {
		// Collect the contiguous group of one query entity.
		j := i + 1
		for j < len(results) && results[j].QueryEntityID() == results[i].QueryEntityID() {
			j++
		}
		group := results[i:j]

		if len(current) > 0 && len(current)+len(group) > maxRows {
			chunks = append(chunks, current)
			current = nil
		}
		current = append(current, group...)
		i = j
	}

	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}

func entityIDs(results []matching.SelfMatchResult) []int64 {
	var ids []int64
	var last int64
	for i, r := range results {
		if i == 0 || r.QueryEntityID() != last {
			ids = append(ids, r.QueryEntityID())
			last = r.QueryEntityID()
		}
	}
	return ids
}
