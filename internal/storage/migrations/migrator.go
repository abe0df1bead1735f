package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

const dialect = "postgres"

//go:embed sql/*.sql
var files embed.FS

func setup() error {
	goose.SetBaseFS(files)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	return nil
}

// Up applies every pending migration.
func Up(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	const operation = "migrations.Up"

	logger.Info("Running database migrations...")

	if err := setup(); err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	if err := goose.UpContext(ctx, db, "sql"); err != nil {
		return fmt.Errorf("%s: failed to run migrations: %w", operation, err)
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// Down rolls back the most recent migration.
func Down(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	const operation = "migrations.Down"

	logger.Info("Rolling back last migration...")

	if err := setup(); err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	if err := goose.DownContext(ctx, db, "sql"); err != nil {
		return fmt.Errorf("%s: failed to rollback migration: %w", operation, err)
	}

	logger.Info("Migration rollback completed")
	return nil
}

func Status(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	const operation = "migrations.Status"

	logger.Info("Checking migration status...")

	if err := setup(); err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	if err := goose.StatusContext(ctx, db, "sql"); err != nil {
		return fmt.Errorf("%s: failed to check migration status: %w", operation, err)
	}
	return nil
}
