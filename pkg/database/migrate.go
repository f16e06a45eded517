package database

import (
	"fmt"

	"gorm.io/gorm"
)

var extensions = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
	`CREATE EXTENSION IF NOT EXISTS vector;`,
}

// Migrate installs the extensions the schema depends on (gen_random_uuid,
// pgvector) and then auto-migrates the given models.
func Migrate(db *gorm.DB, models ...interface{}) error {
	for _, sql := range extensions {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("setup extension: %w", err)
		}
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
