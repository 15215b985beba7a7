package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reefwatch/mantid/domain/embedding"
	"github.com/reefwatch/mantid/domain/matching"
)

// VectorSearcher implements matching.Searcher by streaming every stored
// vector and scoring it in-process. The catalog is small enough (a few
// thousand individuals) that exact scoring beats maintaining an
// approximate index, and exactness keeps the evaluation statistic free
// of recall noise.
type VectorSearcher struct {
	vectors matching.VectorStore
	logger  *slog.Logger
}

// NewVectorSearcher creates a VectorSearcher over the given store.
func NewVectorSearcher(vectors matching.VectorStore, logger *slog.Logger) *VectorSearcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &VectorSearcher{vectors: vectors, logger: logger}
}

// Search implements matching.Searcher.
func (s *VectorSearcher) Search(ctx context.Context, query []float64, k int, minScore float64) ([]matching.Neighbor, error) {
	var candidates []IndexedVector
	err := s.vectors.ForEach(ctx, func(v embedding.EmbeddingVector) error {
		candidates = append(candidates, NewIndexedVector(v.Owner(), v.Vector().Values()))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load candidate vectors: %w", err)
	}

	if len(candidates) == 0 {
		s.logger.Debug("similarity search over empty index")
		return []matching.Neighbor{}, nil
	}

	return TopK(query, candidates, k, minScore), nil
}

var _ matching.Searcher = (*VectorSearcher)(nil)
