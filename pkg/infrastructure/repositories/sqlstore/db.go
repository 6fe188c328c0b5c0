// Package sqlstore persists the pending backlog and remnant inventory in
// SQLite through GORM. It is the durable counterpart of the memory package;
// planning state that must survive between cycles lives here.
package sqlstore

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the SQLite database at path and migrates the planning
// tables. Use ":memory:" for an ephemeral database.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return nil, fmt.Errorf("migrate planning tables: %w", err)
	}
	return db, nil
}

// AllModels lists every model the store migrates.
func AllModels() []interface{} {
	return []interface{}{
		&PendingUnitRecord{},
		&RemnantRecord{},
	}
}
