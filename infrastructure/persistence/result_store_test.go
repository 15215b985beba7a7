package persistence_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reefwatch/mantid/domain/matching"
	"github.com/reefwatch/mantid/infrastructure/persistence"
	"github.com/reefwatch/mantid/internal/testdb"
)

func TestSelfMatchStore_SaveAllAndAll(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewSelfMatchStore(testdb.New(t), nil)

	owner := uuid.New()
	results := []matching.SelfMatchResult{
		matching.NewSelfMatchResult(owner, 2, 5, 1, 0.8, "b.jpg"),
		matching.NewSelfMatchResult(owner, 1, 1, 1, 1.0, "a.jpg"),
		matching.NewSelfMatchResult(owner, 1, 3, 2, 0.7, "a.jpg"),
	}
	require.NoError(t, store.SaveAll(ctx, results))

	got, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Ordered by query entity id, then rank.
	assert.Equal(t, int64(1), got[0].QueryEntityID())
	assert.Equal(t, 1, got[0].Rank())
	assert.True(t, got[0].IsCorrectTopMatch())
	assert.Equal(t, int64(1), got[1].QueryEntityID())
	assert.Equal(t, 2, got[1].Rank())
	assert.Equal(t, int64(2), got[2].QueryEntityID())
	assert.Equal(t, owner, got[2].QueryOwner())
	assert.Equal(t, "b.jpg", got[2].SourcePath())
}

func TestSelfMatchStore_SaveAllUpsertsOnQueryAndRank(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewSelfMatchStore(testdb.New(t), nil)

	owner := uuid.New()
	require.NoError(t, store.SaveAll(ctx, []matching.SelfMatchResult{
		matching.NewSelfMatchResult(owner, 1, 9, 1, 0.6, "a.jpg"),
		matching.NewSelfMatchResult(owner, 1, 4, 2, 0.5, "a.jpg"),
	}))

	// Re-running the same query supersedes its rows in place.
	require.NoError(t, store.SaveAll(ctx, []matching.SelfMatchResult{
		matching.NewSelfMatchResult(owner, 1, 1, 1, 0.9, "a.jpg"),
		matching.NewSelfMatchResult(owner, 1, 9, 2, 0.8, "a.jpg"),
	}))

	got, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].MatchedEntityID())
	assert.True(t, got[0].IsCorrectTopMatch())
	assert.InDelta(t, 0.9, got[0].Score(), 1e-9)
	assert.Equal(t, int64(9), got[1].MatchedEntityID())
}

func TestSelfMatchStore_SaveAllPrunesStaleRanks(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewSelfMatchStore(testdb.New(t), nil)

	owner := uuid.New()
	other := uuid.New()
	require.NoError(t, store.SaveAll(ctx, []matching.SelfMatchResult{
		matching.NewSelfMatchResult(owner, 1, 1, 1, 1.0, "a.jpg"),
		matching.NewSelfMatchResult(owner, 1, 5, 2, 0.8, "a.jpg"),
		matching.NewSelfMatchResult(owner, 1, 6, 3, 0.7, "a.jpg"),
		matching.NewSelfMatchResult(other, 2, 2, 1, 1.0, "b.jpg"),
		matching.NewSelfMatchResult(other, 2, 1, 2, 0.6, "b.jpg"),
	}))

	// A re-run that yields fewer matches for query 1 must not leave
	// the first run's rank-2/rank-3 rows behind.
	require.NoError(t, store.SaveAll(ctx, []matching.SelfMatchResult{
		matching.NewSelfMatchResult(owner, 1, 1, 1, 0.95, "a.jpg"),
	}))

	got, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, int64(1), got[0].QueryEntityID())
	assert.Equal(t, 1, got[0].Rank())
	assert.InDelta(t, 0.95, got[0].Score(), 1e-9)

	// Queries absent from the chunk keep all their rows.
	assert.Equal(t, int64(2), got[1].QueryEntityID())
	assert.Equal(t, 1, got[1].Rank())
	assert.Equal(t, int64(2), got[2].QueryEntityID())
	assert.Equal(t, 2, got[2].Rank())
}

func TestSelfMatchStore_SaveAllEmpty(t *testing.T) {
	store := persistence.NewSelfMatchStore(testdb.New(t), nil)
	require.NoError(t, store.SaveAll(context.Background(), nil))
}

func TestSelfMatchStore_DistinctQueryEntityIDs(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewSelfMatchStore(testdb.New(t), nil)

	owner := uuid.New()
	require.NoError(t, store.SaveAll(ctx, []matching.SelfMatchResult{
		matching.NewSelfMatchResult(owner, 3, 3, 1, 1.0, "c.jpg"),
		matching.NewSelfMatchResult(owner, 1, 1, 1, 1.0, "a.jpg"),
		matching.NewSelfMatchResult(owner, 1, 3, 2, 0.5, "a.jpg"),
	}))

	ids, err := store.DistinctQueryEntityIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids)
}

func TestSelfMatchStore_DeleteAll(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewSelfMatchStore(testdb.New(t), nil)

	owner := uuid.New()
	require.NoError(t, store.SaveAll(ctx, []matching.SelfMatchResult{
		matching.NewSelfMatchResult(owner, 1, 1, 1, 1.0, "a.jpg"),
	}))

	require.NoError(t, store.DeleteAll(ctx))

	got, err := store.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	ids, err := store.DistinctQueryEntityIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
