// Package enrichment attaches stats, injury and odds signals to extracted legs.
//
// Every provider may fail or be unavailable. The Enricher never surfaces
// those failures: it drops to the deterministic fallback adapter for that
// source and tags the leg's provenance as fallback.
package enrichment

import (
	"context"

	"github.com/Csp-Ai/ResearchBets-sub001/internal/models"
)

// Source names used in provenance notes and metrics labels
const (
	SourceStats    = "stats"
	SourceInjuries = "injuries"
	SourceOdds     = "odds"
)

// StatsSignal is the hit-rate bundle for one leg
type StatsSignal struct {
	L5         int
	L10        int
	Season     *int
	VsOpponent *int
	Mode       models.SourceMode
	Notes      []string
}

// InjurySignal is the availability bundle for one leg
type InjurySignal struct {
	Injury *string
	News   *string
	Mode   models.SourceMode
	Notes  []string
}

// OddsSignal is the market-movement bundle for one leg
type OddsSignal struct {
	LineMove   *float64
	Divergence *float64
	Mode       models.SourceMode
	Notes      []string
}

// StatsProvider returns hit rates for a leg
type StatsProvider interface {
	Stats(ctx context.Context, leg models.ExtractedLeg) (StatsSignal, error)
}

// InjuryProvider returns injury and news flags for a leg
type InjuryProvider interface {
	Injuries(ctx context.Context, leg models.ExtractedLeg) (InjurySignal, error)
}

// OddsProvider returns line movement and book divergence for a leg
type OddsProvider interface {
	Odds(ctx context.Context, leg models.ExtractedLeg) (OddsSignal, error)
}
