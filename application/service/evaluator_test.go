package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reefwatch/mantid/application/service"
	"github.com/reefwatch/mantid/domain/catalog"
	"github.com/reefwatch/mantid/domain/embedding"
	"github.com/reefwatch/mantid/infrastructure/persistence"
	"github.com/reefwatch/mantid/infrastructure/search"
	"github.com/reefwatch/mantid/internal/database"
	"github.com/reefwatch/mantid/internal/testdb"
)

// stubEmbedder serves canned vectors keyed by photo path.
type stubEmbedder struct {
	vectors map[string][]float64
	errs    map[string]error
	calls   map[string]int
}

func newStubEmbedder() *stubEmbedder {
	return &stubEmbedder{
		vectors: map[string][]float64{},
		errs:    map[string]error{},
		calls:   map[string]int{},
	}
}

func totalCalls(s *stubEmbedder) int {
	var n int
	for _, c := range s.calls {
		n += c
	}
	return n
}

func (s *stubEmbedder) Embed(_ context.Context, imageRef string) ([]float64, error) {
	s.calls[imageRef]++
	if err, ok := s.errs[imageRef]; ok {
		return nil, err
	}
	v, ok := s.vectors[imageRef]
	if !ok {
		return nil, errors.New("no canned vector for " + imageRef)
	}
	return v, nil
}

// pipeline wires the evaluation stack over an in-memory database.
type pipeline struct {
	embedder  *stubEmbedder
	catalog   *persistence.CatalogStore
	vectors   *persistence.EmbeddingStore
	results   *persistence.SelfMatchStore
	evaluator *service.Evaluator
}

func newPipeline(t *testing.T, matchCount int, minScore float64) *pipeline {
	t.Helper()
	return newPipelineWithDB(t, testdb.New(t), matchCount, minScore)
}

func newPipelineWithDB(t *testing.T, db database.Database, matchCount int, minScore float64) *pipeline {
	t.Helper()

	embedder := newStubEmbedder()
	catalogStore := persistence.NewCatalogStore(db)
	vectorStore := persistence.NewEmbeddingStore(db, nil)
	resultStore := persistence.NewSelfMatchStore(db, nil)
	searcher := search.NewVectorSearcher(vectorStore, nil)
	guard := embedding.NewGuard(3)

	return &pipeline{
		embedder:  embedder,
		catalog:   catalogStore,
		vectors:   vectorStore,
		results:   resultStore,
		evaluator: service.NewEvaluator(embedder, guard, vectorStore, searcher, catalogStore, matchCount, minScore, nil),
	}
}

// Fixed owners so tie-breaks by ascending UUID are predictable.
var (
	ownerA = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	ownerB = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	ownerC = uuid.MustParse("00000000-0000-0000-0000-000000000003")
)

// seedThree seeds a catalog where A and C embed to parallel vectors, so
// C's self-match loses the tie to A's lower UUID.
func seedThree(t *testing.T, p *pipeline) []catalog.Entity {
	t.Helper()
	entities := []catalog.Entity{
		catalog.NewEntity(1, ownerA, "a.jpg"),
		catalog.NewEntity(2, ownerB, "b.jpg"),
		catalog.NewEntity(3, ownerC, "c.jpg"),
	}
	require.NoError(t, p.catalog.Seed(context.Background(), entities))

	p.embedder.vectors["a.jpg"] = []float64{2, 0, 0}
	p.embedder.vectors["b.jpg"] = []float64{0, 2, 0}
	p.embedder.vectors["c.jpg"] = []float64{4, 0, 0}
	return entities
}

func TestEvaluator_SelfMatchAtRankOne(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t, 10, -1)
	entities := seedThree(t, p)

	// Cold index: the first evaluation only ever sees its own vector.
	results, err := p.evaluator.Evaluate(ctx, entities[0])
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(1), results[0].QueryEntityID())
	assert.Equal(t, int64(1), results[0].MatchedEntityID())
	assert.Equal(t, 1, results[0].Rank())
	assert.InDelta(t, 1.0, results[0].Score(), 1e-9)
	assert.True(t, results[0].IsCorrectTopMatch())
}

func TestEvaluator_RanksAgainstWholeIndex(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t, 10, -1)
	entities := seedThree(t, p)

	for _, e := range entities {
		_, err := p.evaluator.Evaluate(ctx, e)
		require.NoError(t, err)
	}

	// B is orthogonal to A and C; its own vector wins outright.
	results, err := p.evaluator.Evaluate(ctx, entities[1])
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, int64(2), results[0].MatchedEntityID())
	assert.True(t, results[0].IsCorrectTopMatch())

	// C ties with A at score 1.0 and loses on UUID order.
	results, err = p.evaluator.Evaluate(ctx, entities[2])
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, int64(1), results[0].MatchedEntityID())
	assert.False(t, results[0].IsCorrectTopMatch())
	assert.Equal(t, int64(3), results[1].MatchedEntityID())
	assert.Equal(t, 2, results[1].Rank())
}

func TestEvaluator_MatchCountCapsResults(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t, 2, -1)
	entities := seedThree(t, p)

	for _, e := range entities {
		_, err := p.evaluator.Evaluate(ctx, e)
		require.NoError(t, err)
	}

	results, err := p.evaluator.Evaluate(ctx, entities[0])
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestEvaluator_EmbedFailure(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t, 10, -1)
	entities := seedThree(t, p)

	p.embedder.errs["a.jpg"] = errors.New("404 image not found")

	_, err := p.evaluator.Evaluate(ctx, entities[0])
	require.ErrorIs(t, err, service.ErrEmbedFailed)

	// Nothing was stored for the failed entity.
	_, found, err := p.vectors.Get(ctx, ownerA)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestEvaluator_IntegrityRejectionIsEmbedFailure(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t, 10, -1)
	entities := seedThree(t, p)

	p.embedder.vectors["a.jpg"] = []float64{0, 0, 0}

	_, err := p.evaluator.Evaluate(ctx, entities[0])
	require.ErrorIs(t, err, service.ErrEmbedFailed)
	require.ErrorIs(t, err, embedding.ErrAllZero)
}

func TestEvaluator_NoMatchesAboveFloor(t *testing.T) {
	ctx := context.Background()
	// A floor above 1.0 filters even the entity's own vector.
	p := newPipeline(t, 10, 1.1)
	entities := seedThree(t, p)

	_, err := p.evaluator.Evaluate(ctx, entities[0])
	require.ErrorIs(t, err, service.ErrNoMatches)
}

func TestEvaluator_RefreshesStaleVector(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t, 10, -1)
	entities := seedThree(t, p)

	_, err := p.evaluator.Evaluate(ctx, entities[0])
	require.NoError(t, err)

	// The photo changed; the evaluation must score the fresh vector.
	p.embedder.vectors["a.jpg"] = []float64{0, 0, 5}
	_, err = p.evaluator.Evaluate(ctx, entities[0])
	require.NoError(t, err)

	stored, found, err := p.vectors.Get(ctx, ownerA)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []float64{0, 0, 5}, stored.Vector().Values())
}
