package persistence

import (
	"fmt"

	"github.com/reefwatch/mantid/internal/database"
)

// AutoMigrate creates or updates the schema for every table this
// package owns. Safe to run repeatedly.
func AutoMigrate(db database.Database) error {
	if err := db.GORM().AutoMigrate(
		&EntityModel{},
		&EmbeddingModel{},
		&SelfMatchModel{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
