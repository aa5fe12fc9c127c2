package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Csp-Ai/ResearchBets-sub001/internal/models"
)

// MemoryRunRepository implements RunRepository in process memory
type MemoryRunRepository struct {
	mu   sync.RWMutex
	runs map[string]*models.Run
	now  func() time.Time
}

// NewMemoryRunRepository creates an empty in-memory run store
func NewMemoryRunRepository() *MemoryRunRepository {
	return &MemoryRunRepository{
		runs: make(map[string]*models.Run),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Save stores a copy of run, replacing any run with the same trace id
func (r *MemoryRunRepository) Save(_ context.Context, run *models.Run) error {
	stored, err := cloneRun(run)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.TraceID] = stored
	return nil
}

// Get returns a copy of the stored run
func (r *MemoryRunRepository) Get(_ context.Context, traceID string) (*models.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[traceID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return cloneRun(run)
}

// Update applies patch to the stored run under the write lock
func (r *MemoryRunRepository) Update(_ context.Context, traceID string, patch models.RunPatch) (*models.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, ok := r.runs[traceID]
	if !ok {
		return nil, models.ErrNotFound
	}

	patch.Apply(run, r.now())
	return cloneRun(run)
}

// ListRecent returns up to limit runs, newest first; limit <= 0 returns all
func (r *MemoryRunRepository) ListRecent(_ context.Context, limit int) ([]*models.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runs := make([]*models.Run, 0, len(r.runs))
	for _, run := range r.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return cloneRuns(runs)
}

// ListStale returns running runs not updated since olderThan
func (r *MemoryRunRepository) ListStale(_ context.Context, olderThan time.Time) ([]*models.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stale []*models.Run
	for _, run := range r.runs {
		if run.Status == models.RunStatusRunning && run.UpdatedAt.Before(olderThan) {
			stale = append(stale, run)
		}
	}
	return cloneRuns(stale)
}

// Ping always succeeds
func (r *MemoryRunRepository) Ping(context.Context) error {
	return nil
}

// Len returns the number of stored runs
func (r *MemoryRunRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.runs)
}

func cloneRun(run *models.Run) (*models.Run, error) {
	data, err := json.Marshal(run)
	if err != nil {
		return nil, fmt.Errorf("failed to encode run: %w", err)
	}
	var out models.Run
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode run: %w", err)
	}
	return &out, nil
}

func cloneRuns(runs []*models.Run) ([]*models.Run, error) {
	out := make([]*models.Run, 0, len(runs))
	for _, run := range runs {
		c, err := cloneRun(run)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
