package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reefwatch/mantid/domain/embedding"
	"github.com/reefwatch/mantid/infrastructure/persistence"
	"github.com/reefwatch/mantid/internal/testdb"
)

func makeVector(t *testing.T, owner uuid.UUID, values []float64, updatedAt time.Time) embedding.EmbeddingVector {
	t.Helper()
	vec, err := embedding.NewVector(len(values), values)
	require.NoError(t, err)
	return embedding.NewEmbeddingVector(owner, vec, vec.Norm(), embedding.ContentHash(values), "photos/x.jpg", updatedAt)
}

func collectVectors(t *testing.T, store *persistence.EmbeddingStore) []embedding.EmbeddingVector {
	t.Helper()
	var out []embedding.EmbeddingVector
	err := store.ForEach(context.Background(), func(v embedding.EmbeddingVector) error {
		out = append(out, v)
		return nil
	})
	require.NoError(t, err)
	return out
}

func TestEmbeddingStore_UpsertAndGet(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewEmbeddingStore(testdb.New(t), nil)

	owner := uuid.New()
	v := makeVector(t, owner, []float64{2, 0, 0}, time.Now().UTC())
	require.NoError(t, store.Upsert(ctx, v))

	got, found, err := store.Get(ctx, owner)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, owner, got.Owner())
	assert.Equal(t, []float64{2, 0, 0}, got.Vector().Values())
	assert.Equal(t, v.ContentHash(), got.ContentHash())
	assert.Equal(t, "photos/x.jpg", got.SourcePath())
}

func TestEmbeddingStore_GetUnknownOwner(t *testing.T) {
	store := persistence.NewEmbeddingStore(testdb.New(t), nil)

	_, found, err := store.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestEmbeddingStore_UpsertSameHashSkipsWrite(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewEmbeddingStore(testdb.New(t), nil)

	owner := uuid.New()
	first := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	later := first.Add(24 * time.Hour)

	require.NoError(t, store.Upsert(ctx, makeVector(t, owner, []float64{2, 0, 0}, first)))
	require.NoError(t, store.Upsert(ctx, makeVector(t, owner, []float64{2, 0, 0}, later)))

	got, found, err := store.Get(ctx, owner)
	require.NoError(t, err)
	require.True(t, found)
	// The unchanged write never reached the row.
	assert.WithinDuration(t, first, got.UpdatedAt(), time.Second, "updated_at should keep the first write's timestamp")
	assert.Len(t, collectVectors(t, store), 1)
}

func TestEmbeddingStore_UpsertNewHashOverwrites(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewEmbeddingStore(testdb.New(t), nil)

	owner := uuid.New()
	require.NoError(t, store.Upsert(ctx, makeVector(t, owner, []float64{2, 0, 0}, time.Now().UTC())))
	require.NoError(t, store.Upsert(ctx, makeVector(t, owner, []float64{0, 3, 0}, time.Now().UTC())))

	got, found, err := store.Get(ctx, owner)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []float64{0, 3, 0}, got.Vector().Values())
	assert.Len(t, collectVectors(t, store), 1)
}

func TestEmbeddingStore_SameContentDifferentOwners(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewEmbeddingStore(testdb.New(t), nil)

	a := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	b := uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	c := uuid.New()

	require.NoError(t, store.Upsert(ctx, makeVector(t, a, []float64{2, 0, 0}, time.Now().UTC())))
	require.NoError(t, store.Upsert(ctx, makeVector(t, b, []float64{2, 0, 0}, time.Now().UTC())))
	require.NoError(t, store.Upsert(ctx, makeVector(t, c, []float64{0, 3, 0}, time.Now().UTC())))

	// Both rows exist; duplicated content is reported, not rejected.
	assert.Len(t, collectVectors(t, store), 3)

	dupes, err := store.DuplicateHashes(ctx)
	require.NoError(t, err)
	require.Len(t, dupes, 1)
	assert.Equal(t, embedding.ContentHash([]float64{2, 0, 0}), dupes[0].ContentHash())
	assert.Equal(t, []uuid.UUID{a, b}, dupes[0].Owners())
}

func TestEmbeddingStore_ForEachInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewEmbeddingStore(testdb.New(t), nil)

	owners := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for i, owner := range owners {
		v := makeVector(t, owner, []float64{float64(i + 2), 0, 0}, time.Now().UTC())
		require.NoError(t, store.Upsert(ctx, v))
	}

	got := collectVectors(t, store)
	require.Len(t, got, len(owners))
	for i, owner := range owners {
		assert.Equal(t, owner, got[i].Owner())
	}
}
