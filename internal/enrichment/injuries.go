package enrichment

import (
	"context"

	"github.com/Csp-Ai/ResearchBets-sub001/internal/models"
)

// StubInjuries is the injury adapter used when no injury feed is configured
type StubInjuries struct{}

// Injuries implements InjuryProvider
func (StubInjuries) Injuries(_ context.Context, leg models.ExtractedLeg) (InjurySignal, error) {
	return DeriveInjuries(leg), nil
}

// DeriveInjuries returns no flags and fallback provenance
func DeriveInjuries(models.ExtractedLeg) InjurySignal {
	return InjurySignal{
		Mode:  models.SourceModeFallback,
		Notes: []string{"Injuries fallback: no injury feed consulted, no injury or news flags applied."},
	}
}
