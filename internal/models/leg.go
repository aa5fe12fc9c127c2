package models

// SourceMode tags where a signal came from
type SourceMode string

const (
	SourceModeLive     SourceMode = "live"
	SourceModeFallback SourceMode = "fallback"
)

// RiskBand is the three-band classification of a leg's risk score
type RiskBand string

const (
	RiskBandLow      RiskBand = "low"
	RiskBandModerate RiskBand = "moderate"
	RiskBandHigh     RiskBand = "high"
)

// NoDownsideFactor is the only factor text allowed for a leg with zero risk.
// Reason generation and invariant checks match on this exact string.
const NoDownsideFactor = "No downside drivers flagged."

// LegInput is a pre-parsed leg supplied by an external extraction service (OCR/LLM)
type LegInput struct {
	Selection string `json:"selection" validate:"required"`
	Market    string `json:"market,omitempty"`
	Line      string `json:"line,omitempty"`
	Odds      string `json:"odds,omitempty"`
	Team      string `json:"team,omitempty"`
	Player    string `json:"player,omitempty"`
	Sport     string `json:"sport,omitempty"`
	EventTime string `json:"eventTime,omitempty"`
	Book      string `json:"book,omitempty"`
}

// ExtractedLeg represents one wagering proposition parsed from slip text
type ExtractedLeg struct {
	ID        string `json:"id"`
	Selection string `json:"selection"`
	Market    string `json:"market,omitempty"`
	Line      string `json:"line,omitempty"`
	Odds      string `json:"odds,omitempty"`
	Team      string `json:"team,omitempty"`
	Player    string `json:"player,omitempty"`
	Sport     string `json:"sport,omitempty"`
	EventTime string `json:"eventTime,omitempty"`
	Book      string `json:"book,omitempty"` // may list several books, e.g. "dk/fd"
}

// LegSources records per-source provenance for one leg
type LegSources struct {
	Stats    SourceMode `json:"stats"`
	Injuries SourceMode `json:"injuries"`
	Odds     SourceMode `json:"odds"`
}

// AllFallback reports whether no source produced a live reading for the leg
func (s LegSources) AllFallback() bool {
	return s.Stats == SourceModeFallback && s.Injuries == SourceModeFallback && s.Odds == SourceModeFallback
}

// LegFlags holds the optional volatility signals for a leg
type LegFlags struct {
	Injury     *string  `json:"injury"`
	News       *string  `json:"news"`
	LineMove   *float64 `json:"lineMove"`
	Divergence *float64 `json:"divergence"`
}

// RiskAssessment is the output of leg risk scoring
type RiskAssessment struct {
	Score   float64  `json:"riskScore"`
	Band    RiskBand `json:"riskBand"`
	Factors []string `json:"riskFactors"`
}

// EnrichedLeg is an ExtractedLeg plus independently sourced signals and its risk triple
type EnrichedLeg struct {
	ExtractedLegID string     `json:"extractedLegId"`
	L5             int        `json:"l5"`
	L10            int        `json:"l10"`
	Season         *int       `json:"season,omitempty"`
	VsOpponent     *int       `json:"vsOpp,omitempty"`
	Sources        LegSources `json:"dataSources"`
	Flags          LegFlags   `json:"flags"`
	Notes          []string   `json:"evidenceNotes"`
	RiskScore      float64    `json:"riskScore"`
	RiskBand       RiskBand   `json:"riskBand"`
	RiskFactors    []string   `json:"riskFactors"`
}

// SetRisk writes score, band and factors together so they can never drift apart
func (l *EnrichedLeg) SetRisk(a RiskAssessment) {
	l.RiskScore = a.Score
	l.RiskBand = a.Band
	l.RiskFactors = append([]string(nil), a.Factors...)
}

// Risk returns the leg's current risk triple
func (l *EnrichedLeg) Risk() RiskAssessment {
	return RiskAssessment{
		Score:   l.RiskScore,
		Band:    l.RiskBand,
		Factors: append([]string(nil), l.RiskFactors...),
	}
}

// SourceStats is the run-level provenance: live if any leg got a live reading
type SourceStats struct {
	Stats    SourceMode `json:"stats"`
	Injuries SourceMode `json:"injuries"`
	Odds     SourceMode `json:"odds"`
}

// AllLive reports whether every source category was live for the run
func (s SourceStats) AllLive() bool {
	return s.Stats == SourceModeLive && s.Injuries == SourceModeLive && s.Odds == SourceModeLive
}

// AllFallback reports whether every source category was fallback for the run
func (s SourceStats) AllFallback() bool {
	return s.Stats == SourceModeFallback && s.Injuries == SourceModeFallback && s.Odds == SourceModeFallback
}

// AggregateSources folds per-leg provenance into run-level SourceStats
func AggregateSources(legs []EnrichedLeg) SourceStats {
	stats := SourceStats{
		Stats:    SourceModeFallback,
		Injuries: SourceModeFallback,
		Odds:     SourceModeFallback,
	}
	for _, leg := range legs {
		if leg.Sources.Stats == SourceModeLive {
			stats.Stats = SourceModeLive
		}
		if leg.Sources.Injuries == SourceModeLive {
			stats.Injuries = SourceModeLive
		}
		if leg.Sources.Odds == SourceModeLive {
			stats.Odds = SourceModeLive
		}
	}
	return stats
}
