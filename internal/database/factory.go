package database

import (
	"fmt"
	"os"
	"path/filepath"

	"olaaf-go/internal/config"
	"olaaf-go/internal/database/migrations"
	"olaaf-go/internal/olaaf"
)

// NewDatabaseFromConfig opens the history index described by cfg.
// An in-memory database is migrated on open since it starts empty every time.
func NewDatabaseFromConfig(cfg config.DatabaseConfig) (olaaf.Database, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.Path == "" {
			return nil, fmt.Errorf("path required for sqlite database")
		}
		return NewSQLiteDatabase(cfg.Path)
	case "memory":
		db, err := NewSQLiteDatabase(":memory:")
		if err != nil {
			return nil, err
		}
		if err := migrations.MigrateUp(db.db); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}

// InitDatabase creates the database file if needed and applies all migrations.
func InitDatabase(cfg config.DatabaseConfig) error {
	if cfg.Type != "sqlite" {
		return nil
	}
	if cfg.Path == "" {
		return fmt.Errorf("path required for sqlite database")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}

	db, err := OpenConnection(cfg.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	return migrations.MigrateUp(db)
}
