package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"time"

	"github.com/pressly/goose/v3"

	"gardencms/internal/database/migrations"
	"gardencms/internal/logger"
)

// Migrate applies every pending migration from fsys, logging one event per
// applied step. Pass nil to use the embedded migrations.
func Migrate(ctx context.Context, db *sql.DB, fsys fs.FS, log logger.Logger) error {
	if fsys == nil {
		fsys = migrations.FS
	}
	start := time.Now()
	log = log.With(logger.String("component", "database"))

	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		log.Error("db_migration_failed", logger.Error(err))
		return fmt.Errorf("create migration provider: %w", err)
	}

	current, err := provider.GetDBVersion(ctx)
	if err != nil {
		log.Error("db_migration_failed", logger.Error(err))
		return fmt.Errorf("read schema version: %w", err)
	}
	log.Info("db_migration_start", logger.Int64("current_version", current))

	results, err := provider.Up(ctx)
	for _, r := range results {
		if r == nil || r.Source == nil {
			continue
		}
		fields := []logger.Field{
			logger.Int64("version", r.Source.Version),
			logger.String("migration_step", r.Source.Path),
			logger.Int64("step_duration_ms", r.Duration.Milliseconds()),
		}
		if r.Error != nil {
			log.Error("db_migration_step_failed", append(fields, logger.Error(r.Error))...)
			continue
		}
		log.Info("db_migration_step", fields...)
	}
	if err != nil {
		log.Error("db_migration_failed",
			logger.Error(err),
			logger.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("apply migrations: %w", err)
	}

	log.Info("db_migration_success",
		logger.Int("applied", len(results)),
		logger.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
