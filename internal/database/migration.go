package database

import (
	"fmt"
	"path/filepath"

	"github.com/Ilay3/UchetNZP-sub000/internal/database/migration"

	"go.uber.org/zap"
)

// RunMigrations applies all pending migrations from migrationsDir.
func RunMigrations(dbURL, migrationsDir string, log *zap.Logger) error {
	if dbURL == "" {
		return fmt.Errorf("database URL is not set")
	}

	absPath, err := filepath.Abs(migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	return migration.Migrate(dbURL, "file://"+absPath, true, log)
}
