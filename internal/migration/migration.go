package migration

import (
	"context"

	"gokinet/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createAnalysesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create analyses table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createAnalysesTable(ctx context.Context, db *sqlx.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS analyses (
		id UUID PRIMARY KEY,
		source_name TEXT NOT NULL,
		sheet_name TEXT NOT NULL DEFAULT '',
		point_count INTEGER NOT NULL,
		selected_count INTEGER NOT NULL,
		pfo_rate_constant DOUBLE PRECISION NOT NULL,
		pfo_r2 DOUBLE PRECISION NOT NULL,
		pfo_mape DOUBLE PRECISION NOT NULL,
		pso_rate_constant DOUBLE PRECISION NOT NULL,
		pso_r2 DOUBLE PRECISION NOT NULL,
		pso_mape DOUBLE PRECISION NOT NULL,
		payload JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

	_, err := db.ExecContext(ctx, query)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_source_name ON analyses(source_name)`,
	}

	for _, index := range indexes {
		if _, err := db.ExecContext(ctx, index); err != nil {
			return err
		}
	}
	return nil
}
