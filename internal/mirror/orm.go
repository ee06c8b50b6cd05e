// Package mirror keeps a local SQLite copy of slow-changing application
// state: UI preferences, user-defined system catalogs and the latest
// record snapshots. The remote document store stays authoritative; the
// mirror only bridges restarts and offline reads.
package mirror

import (
	"fmt"
	"os"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultPath is used when MIRROR_DB_PATH is unset.
const DefaultPath = "fleetmaint.db"

// Open connects to the mirror database and migrates its schema.
func Open(path string) (*gorm.DB, error) {
	if path == "" {
		path = os.Getenv("MIRROR_DB_PATH")
	}
	if path == "" {
		path = DefaultPath
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open mirror database: %w", err)
	}

	if err := db.AutoMigrate(&Preference{}, &LocalSystemList{}, &RecordSnapshot{}); err != nil {
		return nil, fmt.Errorf("failed to migrate mirror schema: %w", err)
	}
	return db, nil
}
