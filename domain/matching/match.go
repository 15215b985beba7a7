// Package matching holds the similarity-match and self-match value
// objects, the accuracy aggregation, and the store contracts the
// evaluation pipeline is built on.
package matching

import "github.com/google/uuid"

// Neighbor is one candidate returned by a similarity search: the
// candidate's embedding owner and its cosine similarity to the query,
// in [-1, 1] with higher meaning more similar.
type Neighbor struct {
	owner uuid.UUID
	score float64
}

// NewNeighbor creates a Neighbor.
func NewNeighbor(owner uuid.UUID, score float64) Neighbor {
	return Neighbor{owner: owner, score: score}
}

// Owner returns the candidate's embedding owner UUID.
func (n Neighbor) Owner() uuid.UUID { return n.owner }

// Score returns the cosine similarity score.
func (n Neighbor) Score() float64 { return n.score }

// SimilarityMatch is one ranked entry of a similarity query. Ephemeral:
// produced by a search, consumed by the evaluator, never persisted on
// its own.
type SimilarityMatch struct {
	queryOwner     uuid.UUID
	candidateOwner uuid.UUID
	rank           int
	score          float64
}

// NewSimilarityMatch creates a SimilarityMatch. Rank is 1-based.
func NewSimilarityMatch(queryOwner, candidateOwner uuid.UUID, rank int, score float64) SimilarityMatch {
	return SimilarityMatch{
		queryOwner:     queryOwner,
		candidateOwner: candidateOwner,
		rank:           rank,
		score:          score,
	}
}

// QueryOwner returns the owner UUID the query vector belongs to.
func (m SimilarityMatch) QueryOwner() uuid.UUID { return m.queryOwner }

// CandidateOwner returns the matched candidate's owner UUID.
func (m SimilarityMatch) CandidateOwner() uuid.UUID { return m.candidateOwner }

// Rank returns the 1-based position in the ranked result list.
func (m SimilarityMatch) Rank() int { return m.rank }

// Score returns the cosine similarity score.
func (m SimilarityMatch) Score() float64 { return m.score }
