package matching

import (
	"context"

	"github.com/google/uuid"

	"github.com/reefwatch/mantid/domain/embedding"
)

// DuplicateHash reports a content hash shared by more than one owner,
// usually a sign of near-duplicate photos in the catalog.
type DuplicateHash struct {
	contentHash string
	owners      []uuid.UUID
}

// NewDuplicateHash creates a DuplicateHash.
func NewDuplicateHash(contentHash string, owners []uuid.UUID) DuplicateHash {
	cp := make([]uuid.UUID, len(owners))
	copy(cp, owners)
	return DuplicateHash{contentHash: contentHash, owners: cp}
}

// ContentHash returns the shared digest.
func (d DuplicateHash) ContentHash() string { return d.contentHash }

// Owners returns the owners sharing the digest.
func (d DuplicateHash) Owners() []uuid.UUID {
	cp := make([]uuid.UUID, len(d.owners))
	copy(cp, d.owners)
	return cp
}

// VectorStore persists exactly one embedding per owner. It is the sole
// writer of the embeddings table.
type VectorStore interface {
	// Upsert writes the vector for its owner, all-or-nothing. Writing
	// an identical content hash for the same owner is a no-op; a new
	// hash always overwrites (newest wins).
	Upsert(ctx context.Context, v embedding.EmbeddingVector) error

	// Get returns the stored vector for owner, with found=false when
	// the owner was never embedded.
	Get(ctx context.Context, owner uuid.UUID) (embedding.EmbeddingVector, bool, error)

	// ForEach streams every stored vector in ascending insertion order.
	// Each call issues fresh reads, so iteration is restartable.
	// Returning an error from fn stops the iteration.
	ForEach(ctx context.Context, fn func(embedding.EmbeddingVector) error) error

	// DuplicateHashes lists content hashes stored for more than one
	// owner.
	DuplicateHashes(ctx context.Context) ([]DuplicateHash, error)
}

// ResultStore persists self-match evaluation rows with keyed upsert on
// (query entity, rank). It is the sole writer of the results table.
type ResultStore interface {
	// SaveAll upserts one chunk of results atomically. Every query in
	// the chunk is fully superseded: stored rows with ranks beyond the
	// query's new result set are removed in the same transaction.
	SaveAll(ctx context.Context, results []SelfMatchResult) error

	// All returns every persisted result, ordered by query entity id
	// then rank.
	All(ctx context.Context) ([]SelfMatchResult, error)

	// DistinctQueryEntityIDs returns the ids of every query that
	// already has persisted results, for resume skip-sets.
	DistinctQueryEntityIDs(ctx context.Context) ([]int64, error)

	// DeleteAll clears the results table for a full rebuild.
	DeleteAll(ctx context.Context) error
}

// Searcher answers k-nearest-neighbor queries by cosine similarity.
// It excludes no owners: "ignore myself" semantics are the caller's
// responsibility, because the searcher has no notion of self.
type Searcher interface {
	// Search returns at most k neighbors with score >= minScore,
	// ordered by descending score, ties broken by ascending owner
	// UUID for determinism.
	Search(ctx context.Context, query []float64, k int, minScore float64) ([]Neighbor, error)
}
