package migration

import (
	"context"

	"github.com/jmoiron/sqlx"

	"neeledger/internal/errors"
)

// Runner handles database schema migrations
type Runner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *Runner {
	return &Runner{version: "1.0.0"}
}

// Version returns the migration version
func (r *Runner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *Runner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createReviewsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create reviews table")
	}
	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}
	return nil
}

func (r *Runner) createReviewsTable(ctx context.Context, db *sqlx.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS reviews (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		report_name TEXT NOT NULL DEFAULT '',
		result JSONB NOT NULL,
		recommendation TEXT NOT NULL,
		outcome TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL,
		decided_at TIMESTAMPTZ
	)`
	_, err := db.ExecContext(ctx, query)
	return err
}

func (r *Runner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	queries := []string{
		`CREATE INDEX IF NOT EXISTS idx_reviews_created_at ON reviews (created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_outcome ON reviews (outcome)`,
	}
	for _, query := range queries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return err
		}
	}
	return nil
}
