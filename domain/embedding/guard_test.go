package embedding

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVector(t *testing.T) {
	tests := []struct {
		name    string
		dim     int
		values  []float64
		wantErr error
	}{
		{
			name:   "exact dimension",
			dim:    3,
			values: []float64{1, 2, 3},
		},
		{
			name:    "too short",
			dim:     3,
			values:  []float64{1, 2},
			wantErr: ErrWrongDimension,
		},
		{
			name:    "too long",
			dim:     3,
			values:  []float64{1, 2, 3, 4},
			wantErr: ErrWrongDimension,
		},
		{
			name:    "nil values",
			dim:     3,
			values:  nil,
			wantErr: ErrWrongDimension,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewVector(tt.dim, tt.values)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.dim, v.Dim())
			assert.Equal(t, tt.values, v.Values())
		})
	}
}

func TestVector_DefensiveCopies(t *testing.T) {
	input := []float64{1, 2, 3}
	v, err := NewVector(3, input)
	require.NoError(t, err)

	input[0] = 99
	assert.Equal(t, []float64{1, 2, 3}, v.Values())

	out := v.Values()
	out[1] = 99
	assert.Equal(t, []float64{1, 2, 3}, v.Values())
}

func TestGuard_Validate(t *testing.T) {
	owner := uuid.New()
	guard := NewGuard(3)

	tests := []struct {
		name    string
		raw     []float64
		wantErr error
	}{
		{
			name: "valid vector",
			raw:  []float64{2, 0, 0},
		},
		{
			name:    "wrong dimension",
			raw:     []float64{2, 0},
			wantErr: ErrWrongDimension,
		},
		{
			name:    "all zeros",
			raw:     []float64{0, 0, 0},
			wantErr: ErrAllZero,
		},
		{
			name:    "NaN component",
			raw:     []float64{2, math.NaN(), 0},
			wantErr: ErrNotFinite,
		},
		{
			name:    "infinite component",
			raw:     []float64{2, math.Inf(1), 0},
			wantErr: ErrNotFinite,
		},
		{
			name:    "exact unit norm",
			raw:     []float64{0.6, 0.8, 0},
			wantErr: ErrDegenerateUnitNorm,
		},
		{
			name:    "unit norm within tolerance",
			raw:     []float64{0.6, 0.8, 1e-8},
			wantErr: ErrDegenerateUnitNorm,
		},
		{
			name: "norm just outside tolerance",
			raw:  []float64{0.6, 0.8, 0.01},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vec, err := guard.Validate(owner, tt.raw, "photos/m1.jpg")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, owner, vec.Owner())
			assert.Equal(t, tt.raw, vec.Vector().Values())
			assert.InDelta(t, vec.Vector().Norm(), vec.Norm(), 1e-12)
			assert.Equal(t, ContentHash(tt.raw), vec.ContentHash())
			assert.Equal(t, "photos/m1.jpg", vec.SourcePath())
			assert.False(t, vec.UpdatedAt().IsZero())
		})
	}
}

func TestContentHash(t *testing.T) {
	a := []float64{1.5, -0.25, 0}

	// Deterministic across calls.
	assert.Equal(t, ContentHash(a), ContentHash(a))
	assert.Len(t, ContentHash(a), 40)

	// Order sensitive.
	assert.NotEqual(t, ContentHash([]float64{1, 2}), ContentHash([]float64{2, 1}))

	// Value sensitive, even in the last decimal place.
	assert.NotEqual(t, ContentHash([]float64{1.0000000001}), ContentHash([]float64{1.0000000002}))
}
