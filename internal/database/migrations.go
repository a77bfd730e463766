package database

import (
	"fmt"

	"gorm.io/gorm"
)

// RunMigrations executes the migrations AutoMigrate cannot express
func RunMigrations(db *gorm.DB) error {
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// createIndexes creates database indexes
func createIndexes(db *gorm.DB) error {
	// Lookup of a case across repeated searches
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_queries_case
		ON queries(court, case_type, case_number, year)
	`).Error; err != nil {
		return err
	}

	// Pruning of downloaded files
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_documents_downloaded_at
		ON documents(downloaded_at)
	`).Error; err != nil {
		return err
	}

	return nil
}
