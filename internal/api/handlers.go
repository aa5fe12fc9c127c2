package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/Csp-Ai/ResearchBets-sub001/internal/models"
	"github.com/Csp-Ai/ResearchBets-sub001/internal/service"
	"github.com/Csp-Ai/ResearchBets-sub001/internal/stream"
)

const maxRequestBytes = 1 << 20

// RunService is the orchestrator surface the handlers need
type RunService interface {
	RunSlip(ctx context.Context, in service.SlipInput) (*models.Run, error)
	GetRun(ctx context.Context, traceID string) (*models.Run, error)
	ListRuns(ctx context.Context, limit int) ([]*models.Run, error)
	RemoveWeakest(ctx context.Context, traceID string) (*models.Run, error)
	RemoveLeg(ctx context.Context, traceID, legID string) (*models.Run, error)
	Ping(ctx context.Context) error
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	runs RunService
	hub  *stream.Hub
	log  *logrus.Entry
}

// NewHandler creates a new handler; hub may be nil to disable streaming
func NewHandler(runs RunService, hub *stream.Hub, log *logrus.Entry) *Handler {
	return &Handler{runs: runs, hub: hub, log: log}
}

// HealthCheck reports whether the run store is reachable
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.runs.Ping(ctx); err != nil {
		h.log.WithError(err).Warn("Run store unhealthy")
		respondError(w, http.StatusServiceUnavailable, "run store unhealthy")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

// CreateRun analyzes a slip
// Body: {slipText, legs?, trustedContext?, crowdNotes?}
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var in service.SlipInput
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	run, err := h.runs.RunSlip(r.Context(), in)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, run)
}

// ListRuns returns recent runs
// Query params: limit
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", 0)

	runs, err := h.runs.ListRuns(r.Context(), limit)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

// GetRun returns one run
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.runs.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, run)
}

// RemoveWeakest drops the weakest leg and returns the recomputed run
func (h *Handler) RemoveWeakest(w http.ResponseWriter, r *http.Request) {
	run, err := h.runs.RemoveWeakest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, run)
}

// RemoveLeg drops the named leg and returns the recomputed run
func (h *Handler) RemoveLeg(w http.ResponseWriter, r *http.Request) {
	run, err := h.runs.RemoveLeg(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "legID"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, run)
}

// StreamRun upgrades to a websocket that receives the run's state transitions
func (h *Handler) StreamRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.runs.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	// Upgrade writes its own error response
	if err := h.hub.Serve(w, r, run); err != nil {
		h.log.WithError(err).WithField("trace_id", run.TraceID).Debug("WebSocket upgrade failed")
	}
}

func parseIntParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
