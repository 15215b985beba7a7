// Package persistence provides the GORM-backed stores for catalog
// entities, embedding vectors, and self-match results.
package persistence

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Float64Slice serialises []float64 as JSON for storage. JSON works on
// both sqlite and postgres, and vectors are only ever read back whole.
type Float64Slice []float64

// Scan implements sql.Scanner.
func (f *Float64Slice) Scan(value any) error {
	if value == nil {
		*f = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Float64Slice", value)
	}

	return json.Unmarshal(data, f)
}

// Value implements driver.Valuer.
func (f Float64Slice) Value() (driver.Value, error) {
	if f == nil {
		return nil, nil
	}
	return json.Marshal(f)
}

// EntityModel is one catalogued individual.
type EntityModel struct {
	ID        int64  `gorm:"column:id;primaryKey"`
	OwnerID   string `gorm:"column:owner_id;size:36;uniqueIndex"`
	PhotoPath string `gorm:"column:photo_path"`
}

// TableName implements gorm schema.Tabler.
func (EntityModel) TableName() string { return "mantid_entities" }

// EmbeddingModel is one stored embedding vector, exactly one per owner.
type EmbeddingModel struct {
	ID          int64        `gorm:"column:id;primaryKey;autoIncrement"`
	OwnerID     string       `gorm:"column:owner_id;size:36;uniqueIndex"`
	Dim         int          `gorm:"column:dim"`
	Values      Float64Slice `gorm:"column:vector;type:json"`
	Norm        float64      `gorm:"column:norm"`
	ContentHash string       `gorm:"column:content_hash;size:40;index"`
	SourcePath  string       `gorm:"column:source_path"`
	UpdatedAt   time.Time    `gorm:"column:updated_at"`
}

// TableName implements gorm schema.Tabler.
func (EmbeddingModel) TableName() string { return "mantid_embeddings" }

// SelfMatchModel is one persisted self-match evaluation row, keyed by
// (query entity, rank) so re-runs supersede instead of duplicate.
type SelfMatchModel struct {
	ID              int64   `gorm:"column:id;primaryKey;autoIncrement"`
	QueryOwnerID    string  `gorm:"column:query_owner_id;size:36"`
	QueryEntityID   int64   `gorm:"column:query_entity_id;uniqueIndex:idx_self_match_query_rank"`
	MatchedEntityID int64   `gorm:"column:matched_entity_id"`
	Rank            int     `gorm:"column:rank;uniqueIndex:idx_self_match_query_rank"`
	Score           float64 `gorm:"column:score"`
	CorrectTopMatch bool    `gorm:"column:is_correct_top_match"`
	SourcePath      string  `gorm:"column:source_path"`
}

// TableName implements gorm schema.Tabler.
func (SelfMatchModel) TableName() string { return "mantid_self_matches" }
