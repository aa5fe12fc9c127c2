package service

import (
	"context"

	"github.com/Csp-Ai/ResearchBets-sub001/internal/models"
)

// TrustedContextProvider supplies trusted coverage and unverified chatter for
// a slip when the caller did not send one
type TrustedContextProvider interface {
	TrustedContext(ctx context.Context, legs []models.ExtractedLeg) (*models.TrustedContext, error)
}

// Publisher receives every persisted run state transition
type Publisher interface {
	Publish(run *models.Run)
}

// NopPublisher discards run updates
type NopPublisher struct{}

// Publish does nothing
func (NopPublisher) Publish(*models.Run) {}
