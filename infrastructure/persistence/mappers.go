package persistence

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/reefwatch/mantid/domain/catalog"
	"github.com/reefwatch/mantid/domain/embedding"
	"github.com/reefwatch/mantid/domain/matching"
)

type entityMapper struct{}

func (entityMapper) ToDomain(m EntityModel) (catalog.Entity, error) {
	owner, err := uuid.Parse(m.OwnerID)
	if err != nil {
		return catalog.Entity{}, fmt.Errorf("entity %d: parse owner %q: %w", m.ID, m.OwnerID, err)
	}
	return catalog.NewEntity(m.ID, owner, m.PhotoPath), nil
}

func (entityMapper) ToModel(e catalog.Entity) EntityModel {
	return EntityModel{
		ID:        e.ID(),
		OwnerID:   e.Owner().String(),
		PhotoPath: e.PhotoPath(),
	}
}

type embeddingMapper struct{}

func (embeddingMapper) ToDomain(m EmbeddingModel) (embedding.EmbeddingVector, error) {
	owner, err := uuid.Parse(m.OwnerID)
	if err != nil {
		return embedding.EmbeddingVector{}, fmt.Errorf("embedding %d: parse owner %q: %w", m.ID, m.OwnerID, err)
	}
	vec, err := embedding.NewVector(m.Dim, m.Values)
	if err != nil {
		return embedding.EmbeddingVector{}, fmt.Errorf("embedding %d: %w", m.ID, err)
	}
	return embedding.NewEmbeddingVector(owner, vec, m.Norm, m.ContentHash, m.SourcePath, m.UpdatedAt), nil
}

func (embeddingMapper) ToModel(v embedding.EmbeddingVector) EmbeddingModel {
	return EmbeddingModel{
		OwnerID:     v.Owner().String(),
		Dim:         v.Vector().Dim(),
		Values:      Float64Slice(v.Vector().Values()),
		Norm:        v.Norm(),
		ContentHash: v.ContentHash(),
		SourcePath:  v.SourcePath(),
		UpdatedAt:   v.UpdatedAt(),
	}
}

type selfMatchMapper struct{}

func (selfMatchMapper) ToDomain(m SelfMatchModel) (matching.SelfMatchResult, error) {
	owner, err := uuid.Parse(m.QueryOwnerID)
	if err != nil {
		return matching.SelfMatchResult{}, fmt.Errorf("self match %d: parse owner %q: %w", m.ID, m.QueryOwnerID, err)
	}
	return matching.NewSelfMatchResult(
		owner, m.QueryEntityID, m.MatchedEntityID, m.Rank, m.Score, m.SourcePath,
	), nil
}

func (selfMatchMapper) ToModel(r matching.SelfMatchResult) SelfMatchModel {
	return SelfMatchModel{
		QueryOwnerID:    r.QueryOwner().String(),
		QueryEntityID:   r.QueryEntityID(),
		MatchedEntityID: r.MatchedEntityID(),
		Rank:            r.Rank(),
		Score:           r.Score(),
		CorrectTopMatch: r.IsCorrectTopMatch(),
		SourcePath:      r.SourcePath(),
	}
}
