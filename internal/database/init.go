package database

import (
	"context"
	"fmt"

	"github.com/Csp-Ai/ResearchBets-sub001/internal/config"
)

// schemaStatements create the runs table; the whole run document is kept as
// JSONB with the columns the store filters and orders on pulled out.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		trace_id   UUID PRIMARY KEY,
		status     TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		document   JSONB NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_status_updated ON runs (status, updated_at)`,
}

// Initialize creates a database connection pool and makes sure the run schema exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureSchema applies the idempotent run schema
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
