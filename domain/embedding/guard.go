package embedding

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// UnitNormTolerance is how close to exactly 1.0 a vector's L2 norm may
// be before it is treated as the service's placeholder failure
// signature. A legitimately normalised embedding would also be caught;
// the service contract offers no explicit failure flag, so the norm is
// the only signal available.
const UnitNormTolerance = 1e-6

// Guard validates raw vectors before they are allowed into persistence.
// A corrupt or placeholder vector that enters the index silently poisons
// every future similarity query that ranks near it, so rejection happens
// here at the boundary.
type Guard struct {
	dimension int
}

// NewGuard creates a Guard for the process-wide configured dimension.
func NewGuard(dimension int) Guard {
	return Guard{dimension: dimension}
}

// Dimension returns the dimension the guard enforces.
func (g Guard) Dimension() int { return g.dimension }

// Validate checks a raw vector and, if every check passes, returns the
// fully populated EmbeddingVector ready for the store.
//
// Rejections, in order: ErrWrongDimension, ErrNotFinite, ErrAllZero,
// ErrDegenerateUnitNorm.
func (g Guard) Validate(owner uuid.UUID, raw []float64, sourcePath string) (EmbeddingVector, error) {
	vec, err := NewVector(g.dimension, raw)
	if err != nil {
		return EmbeddingVector{}, err
	}

	var absSum float64
	for i, x := range raw {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return EmbeddingVector{}, fmt.Errorf("%w: component %d, owner %s", ErrNotFinite, i, owner)
		}
		absSum += math.Abs(x)
	}
	if absSum == 0 {
		return EmbeddingVector{}, fmt.Errorf("%w: owner %s", ErrAllZero, owner)
	}

	norm := vec.Norm()
	if math.Abs(norm-1.0) < UnitNormTolerance {
		return EmbeddingVector{}, fmt.Errorf("%w: norm %.9f, owner %s", ErrDegenerateUnitNorm, norm, owner)
	}

	return NewEmbeddingVector(owner, vec, norm, ContentHash(raw), sourcePath, time.Now().UTC()), nil
}
