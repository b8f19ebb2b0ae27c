package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/riskibarqy/playoff-pool/db"
	"github.com/riskibarqy/playoff-pool/internal/config"
	"github.com/riskibarqy/playoff-pool/internal/platform/logging"
)

const embeddedMigrationsSource = "embedded://db/migrations"

// DatabaseURL returns the configured DSN with driver flags applied.
func DatabaseURL(cfg config.Config) string {
	return normalizeDBURL(strings.TrimSpace(cfg.DBURL), cfg.DBDisablePreparedBinary)
}

// NewMigrator opens a migrator on its own connection. An empty dir reads the
// migrations compiled into the binary; otherwise files under dir are used.
// The returned string names the source for logs.
func NewMigrator(dsn, dir string) (*migrate.Migrate, string, error) {
	if dir = strings.TrimSpace(dir); dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, "", fmt.Errorf("resolve migrations dir %q: %w", dir, err)
		}
		sourceURL := "file://" + filepath.ToSlash(abs)
		m, err := migrate.New(sourceURL, dsn)
		if err != nil {
			return nil, "", fmt.Errorf("create migrator: %w", err)
		}
		return m, sourceURL, nil
	}

	src, err := iofs.New(db.Migrations, db.MigrationsDir)
	if err != nil {
		return nil, "", fmt.Errorf("open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return nil, "", fmt.Errorf("create migrator: %w", err)
	}
	return m, embeddedMigrationsSource, nil
}

func migrateUp(dsn string, logger *logging.Logger) error {
	m, source, err := NewMigrator(dsn, "")
	if err != nil {
		return err
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			logger.Warn("close migrator failed", "source_error", srcErr, "database_error", dbErr)
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", err)
	}
	logger.Info("database migrations applied", "source", source, "version", version, "dirty", dirty)
	return nil
}
