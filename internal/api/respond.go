package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/Csp-Ai/ResearchBets-sub001/internal/models"
	"github.com/Csp-Ai/ResearchBets-sub001/internal/service"
	"github.com/Csp-Ai/ResearchBets-sub001/internal/verdict"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Code    int      `json:"code"`
	Details []string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logrus.WithError(err).Error("error encoding response")
	}
}

func respondError(w http.ResponseWriter, status int, message string, details ...string) {
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
		Details: details,
	})
}

// respondServiceError maps service and store errors onto HTTP statuses
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		respondError(w, http.StatusBadRequest, models.ErrInvalidInput.Error(), vErr.Problems...)
	case errors.Is(err, models.ErrInvalidTraceID):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotFound):
		respondError(w, http.StatusNotFound, "run not found")
	case errors.Is(err, models.ErrLegNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrRunNotComplete), errors.Is(err, models.ErrNoWeakestLeg):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, verdict.ErrInvariantViolation):
		h.log.WithError(err).WithField("path", r.URL.Path).Error("Verdict failed consistency checks")
		respondError(w, http.StatusInternalServerError, "verdict failed consistency checks")
	default:
		h.log.WithError(err).WithField("path", r.URL.Path).Error("Request failed")
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
