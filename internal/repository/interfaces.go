// Package repository persists runs behind a storage-agnostic port.
package repository

import (
	"context"
	"time"

	"github.com/Csp-Ai/ResearchBets-sub001/internal/models"
)

// RunRepository defines the interface for run persistence.
// Implementations return models.ErrNotFound for unknown trace ids.
type RunRepository interface {
	Save(ctx context.Context, run *models.Run) error
	Get(ctx context.Context, traceID string) (*models.Run, error)
	Update(ctx context.Context, traceID string, patch models.RunPatch) (*models.Run, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Run, error)
	ListStale(ctx context.Context, olderThan time.Time) ([]*models.Run, error)
	Ping(ctx context.Context) error
}
