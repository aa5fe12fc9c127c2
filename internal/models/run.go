package models

import "time"

// RunStatus represents the lifecycle state of a run
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// RunMetadata carries optional free-text context for a run
type RunMetadata struct {
	OriginalText string   `json:"originalText,omitempty"`
	CrowdNotes   []string `json:"crowdNotes,omitempty"`
}

// Run is the full persisted artifact of one slip analysis
type Run struct {
	TraceID            string          `json:"traceId"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
	Status             RunStatus       `json:"status"`
	SlipText           string          `json:"slipText"`
	NormalizedSlipText string          `json:"normalizedSlipText"`
	ExtractedLegs      []ExtractedLeg  `json:"extractedLegs"`
	EnrichedLegs       []EnrichedLeg   `json:"enrichedLegs"`
	Sources            SourceStats     `json:"sources"`
	Analysis           VerdictAnalysis `json:"analysis"`
	Trusted            *TrustedContext `json:"trustedContext,omitempty"`
	Metadata           *RunMetadata    `json:"metadata,omitempty"`
	Error              string          `json:"error,omitempty"`
}

// IsComplete checks if the run finished scoring
func (r *Run) IsComplete() bool {
	return r.Status == RunStatusComplete
}

// LegByID looks up an extracted leg by id
func (r *Run) LegByID(id string) (ExtractedLeg, bool) {
	for _, leg := range r.ExtractedLegs {
		if leg.ID == id {
			return leg, true
		}
	}
	return ExtractedLeg{}, false
}

// RunPatch is a partial update; nil fields are left untouched
type RunPatch struct {
	Status        *RunStatus
	ExtractedLegs *[]ExtractedLeg
	EnrichedLegs  *[]EnrichedLeg
	Sources       *SourceStats
	Analysis      *VerdictAnalysis
	Trusted       *TrustedContext
	Metadata      *RunMetadata
	Error         *string
}

// Apply copies the set fields of the patch onto run and stamps UpdatedAt
func (p RunPatch) Apply(run *Run, now time.Time) {
	if p.Status != nil {
		run.Status = *p.Status
	}
	if p.ExtractedLegs != nil {
		run.ExtractedLegs = *p.ExtractedLegs
	}
	if p.EnrichedLegs != nil {
		run.EnrichedLegs = *p.EnrichedLegs
	}
	if p.Sources != nil {
		run.Sources = *p.Sources
	}
	if p.Analysis != nil {
		run.Analysis = *p.Analysis
	}
	if p.Trusted != nil {
		run.Trusted = p.Trusted
	}
	if p.Metadata != nil {
		run.Metadata = p.Metadata
	}
	if p.Error != nil {
		run.Error = *p.Error
	}
	run.UpdatedAt = now
}
