package verdict

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Csp-Ai/ResearchBets-sub001/internal/models"
	"github.com/Csp-Ai/ResearchBets-sub001/internal/risk"
)

// ErrInvariantViolation is wrapped by every InvariantError
var ErrInvariantViolation = errors.New("verdict invariant violated")

// Invariant check names
const (
	CheckWeakestLeg       = "weakest_leg"
	CheckOrphanReason     = "orphan_reason"
	CheckZeroRiskPhrasing = "zero_risk_phrasing"
	CheckOrphanLeg        = "orphan_leg"
)

// InvariantError reports a verdict whose prose or ranking contradicts its scores
type InvariantError struct {
	Check  string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvariantViolation, e.Check, e.Detail)
}

func (e *InvariantError) Unwrap() error {
	return ErrInvariantViolation
}

func checkLegsKnown(ranked []scoredLeg, extracted map[string]models.ExtractedLeg) error {
	for _, s := range ranked {
		if _, ok := extracted[s.leg.ExtractedLegID]; !ok {
			return &InvariantError{
				Check:  CheckOrphanLeg,
				Detail: fmt.Sprintf("scored leg %q is not in the extracted leg list", s.leg.ExtractedLegID),
			}
		}
	}
	return nil
}

func checkInvariants(ranked []scoredLeg, weakestID string, reasons []reason) error {
	if len(ranked) > 0 && ranked[0].leg.ExtractedLegID != weakestID {
		return &InvariantError{
			Check:  CheckWeakestLeg,
			Detail: fmt.Sprintf("weakest leg %q but top-ranked leg is %q", weakestID, ranked[0].leg.ExtractedLegID),
		}
	}

	byID := make(map[string]scoredLeg, len(ranked))
	for _, s := range ranked {
		byID[s.leg.ExtractedLegID] = s
	}

	for i, r := range reasons {
		s, ok := byID[r.legID]
		if !ok {
			return &InvariantError{
				Check:  CheckOrphanReason,
				Detail: fmt.Sprintf("reason %d refers to unknown leg %q", i, r.legID),
			}
		}
		if !mentions(r.text, s) {
			return &InvariantError{
				Check:  CheckOrphanReason,
				Detail: fmt.Sprintf("reason %d does not name leg %q", i, r.legID),
			}
		}
		if s.leg.RiskScore == 0 && !zeroRiskPhrasing(r.text, s) {
			return &InvariantError{
				Check:  CheckZeroRiskPhrasing,
				Detail: fmt.Sprintf("reason %d describes zero-risk leg %q with downside language", i, r.legID),
			}
		}
	}
	return nil
}

func mentions(text string, s scoredLeg) bool {
	if s.selection != "" && strings.Contains(text, s.selection) {
		return true
	}
	return strings.Contains(text, s.leg.ExtractedLegID)
}

func zeroRiskPhrasing(text string, s scoredLeg) bool {
	if !strings.Contains(text, models.NoDownsideFactor) {
		return false
	}
	if s.selection != "" {
		text = strings.ReplaceAll(text, s.selection, "")
	}
	for _, marker := range risk.DownsideMarkers {
		if strings.Contains(text, marker) {
			return false
		}
	}
	for _, phrase := range downsidePhrases {
		if strings.Contains(text, phrase) {
			return false
		}
	}
	return true
}
