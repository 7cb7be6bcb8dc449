package database

import (
	"fmt"
	"os"
	"path/filepath"

	"mcat-go/internal/config"
	"mcat-go/internal/mcat"
)

// NewDatabaseFromConfig opens the source catalog described by cfg.
func NewDatabaseFromConfig(cfg config.DatabaseConfig, clock mcat.Clock) (*SQLiteDatabase, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.Path == "" {
			return nil, fmt.Errorf("path required for sqlite database")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
		return NewSQLiteDatabase(cfg.Path, clock)
	case "memory":
		return NewSQLiteDatabase(":memory:", clock)
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
