// Package embedding defines the dimension-checked vector value objects
// and the integrity guard that stands between the embedding service and
// the vector store.
package embedding

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Vector is a fixed-dimension embedding vector. Constructing one with a
// length other than the requested dimension is impossible, which keeps
// the dimension invariant out of every downstream call site.
type Vector struct {
	values []float64
}

// NewVector creates a Vector of exactly dim components. The input is
// defensively copied.
func NewVector(dim int, values []float64) (Vector, error) {
	if len(values) != dim {
		return Vector{}, fmt.Errorf("%w: got %d, want %d", ErrWrongDimension, len(values), dim)
	}
	cp := make([]float64, len(values))
	copy(cp, values)
	return Vector{values: cp}, nil
}

// Dim returns the number of components.
func (v Vector) Dim() int { return len(v.values) }

// Values returns a defensive copy of the components.
func (v Vector) Values() []float64 {
	cp := make([]float64, len(v.values))
	copy(cp, v.values)
	return cp
}

// Norm returns the L2 norm of the vector.
func (v Vector) Norm() float64 {
	var sum float64
	for _, x := range v.values {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// EmbeddingVector is a validated embedding keyed by its owning entity's
// UUID. Instances are produced by Guard.Validate or restored from the
// vector store; both paths carry the full set of fields.
type EmbeddingVector struct {
	owner       uuid.UUID
	vector      Vector
	norm        float64
	contentHash string
	sourcePath  string
	updatedAt   time.Time
}

// NewEmbeddingVector assembles an EmbeddingVector from its parts.
func NewEmbeddingVector(owner uuid.UUID, vector Vector, norm float64, contentHash, sourcePath string, updatedAt time.Time) EmbeddingVector {
	return EmbeddingVector{
		owner:       owner,
		vector:      vector,
		norm:        norm,
		contentHash: contentHash,
		sourcePath:  sourcePath,
		updatedAt:   updatedAt,
	}
}

// Owner returns the owning entity's UUID.
func (e EmbeddingVector) Owner() uuid.UUID { return e.owner }

// Vector returns the embedded vector.
func (e EmbeddingVector) Vector() Vector { return e.vector }

// Norm returns the L2 norm recorded at validation time.
func (e EmbeddingVector) Norm() float64 { return e.norm }

// ContentHash returns the digest of the vector values. It is used only
// for duplicate detection, never for identity.
func (e EmbeddingVector) ContentHash() string { return e.contentHash }

// SourcePath returns the photo path the vector was embedded from.
func (e EmbeddingVector) SourcePath() string { return e.sourcePath }

// UpdatedAt returns the time the vector was last written.
func (e EmbeddingVector) UpdatedAt() time.Time { return e.updatedAt }
