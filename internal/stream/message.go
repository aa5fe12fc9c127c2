package stream

import (
	"time"

	"github.com/Csp-Ai/ResearchBets-sub001/internal/models"
)

// Message types sent to subscribers
const (
	MessageTypeSnapshot  = "snapshot"
	MessageTypeRunUpdate = "run_update"
)

// Message is one frame pushed to a run subscriber
type Message struct {
	Type      string           `json:"type"`
	TraceID   string           `json:"traceId"`
	Status    models.RunStatus `json:"status"`
	Run       *models.Run      `json:"run"`
	Timestamp time.Time        `json:"timestamp"`
}

func newMessage(msgType string, run *models.Run) Message {
	return Message{
		Type:      msgType,
		TraceID:   run.TraceID,
		Status:    run.Status,
		Run:       run,
		Timestamp: time.Now().UTC(),
	}
}
