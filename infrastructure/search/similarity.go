// Package search implements deterministic cosine-similarity ranking
// over the vectors held in the vector store.
package search

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/reefwatch/mantid/domain/matching"
)

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns a value between -1 (opposite) and 1 (identical direction).
// Returns 0 if the lengths differ or either vector has zero magnitude.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}

	if magA == 0 || magB == 0 {
		return 0
	}

	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// IndexedVector is one candidate held in the search index.
type IndexedVector struct {
	owner  uuid.UUID
	values []float64
}

// NewIndexedVector creates an IndexedVector. The values are defensively
// copied.
func NewIndexedVector(owner uuid.UUID, values []float64) IndexedVector {
	cp := make([]float64, len(values))
	copy(cp, values)
	return IndexedVector{owner: owner, values: cp}
}

// Owner returns the candidate's owner UUID.
func (v IndexedVector) Owner() uuid.UUID { return v.owner }

// TopK scores every candidate against the query and returns at most k
// neighbors with score >= minScore, ordered by descending score. Equal
// scores are broken by ascending owner UUID so repeated queries over the
// same index always rank identically.
func TopK(query []float64, candidates []IndexedVector, k int, minScore float64) []matching.Neighbor {
	if len(candidates) == 0 || k <= 0 {
		return []matching.Neighbor{}
	}

	neighbors := make([]matching.Neighbor, 0, len(candidates))
	for _, c := range candidates {
		score := CosineSimilarity(query, c.values)
		if score < minScore {
			continue
		}
		neighbors = append(neighbors, matching.NewNeighbor(c.owner, score))
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Score() != neighbors[j].Score() {
			return neighbors[i].Score() > neighbors[j].Score()
		}
		return neighbors[i].Owner().String() < neighbors[j].Owner().String()
	})

	if k > len(neighbors) {
		k = len(neighbors)
	}
	return neighbors[:k]
}
