package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Csp-Ai/ResearchBets-sub001/internal/database"
	"github.com/Csp-Ai/ResearchBets-sub001/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const errDecodeRun = "failed to decode run document: %w"

// PostgresRunRepository implements RunRepository for PostgreSQL
type PostgresRunRepository struct {
	db *database.DB
}

// NewPostgresRunRepository creates a new run repository
func NewPostgresRunRepository(db *database.DB) *PostgresRunRepository {
	return &PostgresRunRepository{db: db}
}

// Save upserts the run document
func (r *PostgresRunRepository) Save(ctx context.Context, run *models.Run) error {
	id, err := parseTraceID(run.TraceID)
	if err != nil {
		return err
	}
	doc, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to encode run: %w", err)
	}

	query := `
		INSERT INTO runs (trace_id, status, created_at, updated_at, document)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (trace_id) DO UPDATE
		SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at, document = EXCLUDED.document
	`

	_, err = r.db.GetPool().Exec(ctx, query, id, string(run.Status), run.CreatedAt, run.UpdatedAt, doc)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	return nil
}

// Get retrieves a run by trace id
func (r *PostgresRunRepository) Get(ctx context.Context, traceID string) (*models.Run, error) {
	id, err := parseTraceID(traceID)
	if err != nil {
		return nil, err
	}

	var doc []byte
	err = r.db.GetPool().QueryRow(ctx, `SELECT document FROM runs WHERE trace_id = $1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return decodeRun(doc)
}

// Update locks the row, applies patch and writes the document back
func (r *PostgresRunRepository) Update(ctx context.Context, traceID string, patch models.RunPatch) (*models.Run, error) {
	id, err := parseTraceID(traceID)
	if err != nil {
		return nil, err
	}

	var updated *models.Run
	err = r.db.WithTx(ctx, func(tx pgx.Tx) error {
		var doc []byte
		err := tx.QueryRow(ctx, `SELECT document FROM runs WHERE trace_id = $1 FOR UPDATE`, id).Scan(&doc)
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock run: %w", err)
		}

		run, err := decodeRun(doc)
		if err != nil {
			return err
		}
		patch.Apply(run, time.Now().UTC())

		doc, err = json.Marshal(run)
		if err != nil {
			return fmt.Errorf("failed to encode run: %w", err)
		}

		_, err = tx.Exec(ctx,
			`UPDATE runs SET status = $2, updated_at = $3, document = $4 WHERE trace_id = $1`,
			id, string(run.Status), run.UpdatedAt, doc,
		)
		if err != nil {
			return fmt.Errorf("failed to update run: %w", err)
		}

		updated = run
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// ListRecent retrieves the newest runs first; limit <= 0 returns all
func (r *PostgresRunRepository) ListRecent(ctx context.Context, limit int) ([]*models.Run, error) {
	if limit <= 0 {
		return r.queryRuns(ctx, `SELECT document FROM runs ORDER BY created_at DESC`)
	}
	return r.queryRuns(ctx, `SELECT document FROM runs ORDER BY created_at DESC LIMIT $1`, limit)
}

// ListStale retrieves running runs not updated since olderThan
func (r *PostgresRunRepository) ListStale(ctx context.Context, olderThan time.Time) ([]*models.Run, error) {
	query := `
		SELECT document FROM runs
		WHERE status = $1 AND updated_at < $2
		ORDER BY updated_at ASC
	`
	return r.queryRuns(ctx, query, string(models.RunStatusRunning), olderThan)
}

// Ping verifies database connectivity
func (r *PostgresRunRepository) Ping(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

func (r *PostgresRunRepository) queryRuns(ctx context.Context, query string, args ...interface{}) ([]*models.Run, error) {
	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run, err := decodeRun(doc)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func parseTraceID(traceID string) (uuid.UUID, error) {
	id, err := uuid.Parse(traceID)
	if err != nil {
		return uuid.Nil, models.ErrInvalidTraceID
	}
	return id, nil
}

func decodeRun(doc []byte) (*models.Run, error) {
	var run models.Run
	if err := json.Unmarshal(doc, &run); err != nil {
		return nil, fmt.Errorf(errDecodeRun, err)
	}
	return &run, nil
}
