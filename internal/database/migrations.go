package database

import (
	"log"

	"gorm.io/gorm"
)

// RunMigrations runs any custom data migrations after schema changes
func RunMigrations(db *gorm.DB) error {
	if err := migrateScanLanguage(db); err != nil {
		return err
	}
	if err := dropEmptyAlbumDocuments(db); err != nil {
		return err
	}
	return nil
}

// migrateScanLanguage backfills the language column added after the first
// scan_records rows were written. Safe to run repeatedly.
func migrateScanLanguage(db *gorm.DB) error {
	if !db.Migrator().HasColumn("scan_records", "language") {
		return nil
	}

	result := db.Exec(`UPDATE scan_records SET language = 'english' WHERE language IS NULL OR language = ''`)
	if result.Error != nil {
		log.Printf("Warning: failed to normalize scan language values: %v", result.Error)
	} else if result.RowsAffected > 0 {
		log.Printf("Migrated %d scan_records rows", result.RowsAffected)
	}
	return nil
}

// dropEmptyAlbumDocuments removes documents with no payload so they load as a
// fresh album instead of failing to decode
func dropEmptyAlbumDocuments(db *gorm.DB) error {
	if !db.Migrator().HasTable("album_documents") {
		return nil
	}

	result := db.Exec(`DELETE FROM album_documents WHERE payload IS NULL OR payload = ''`)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected > 0 {
		log.Printf("Cleaned up %d empty album documents", result.RowsAffected)
	}
	return nil
}
