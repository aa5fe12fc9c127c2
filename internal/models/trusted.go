package models

import "strings"

// CoverageTier describes how much trusted (allow-listed) data backs a source
type CoverageTier string

const (
	CoverageLive     CoverageTier = "live"
	CoverageFallback CoverageTier = "fallback"
	CoverageNone     CoverageTier = "none"
)

// TrustedCoverage is the per-source coverage reported by the trusted-context provider
type TrustedCoverage struct {
	Injuries CoverageTier `json:"injuries" validate:"omitempty,oneof=live fallback none"`
	Odds     CoverageTier `json:"odds,omitempty" validate:"omitempty,oneof=live fallback none"`
	Stats    CoverageTier `json:"stats,omitempty" validate:"omitempty,oneof=live fallback none"`
}

// UnverifiedItem is unconfirmed chatter that may only lower displayed confidence
type UnverifiedItem struct {
	Kind     string `json:"kind"`
	Headline string `json:"headline"`
}

// IsInjuryKind reports whether the item speaks to player availability
func (u UnverifiedItem) IsInjuryKind() bool {
	switch strings.ToLower(strings.TrimSpace(u.Kind)) {
	case "injury", "status", "suspension":
		return true
	default:
		return false
	}
}

// TrustedContext is the opaque trusted/unverified input to the confidence cap
type TrustedContext struct {
	Coverage        TrustedCoverage  `json:"coverage"`
	UnverifiedItems []UnverifiedItem `json:"unverifiedItems,omitempty"`
}

// InjuryCoverage returns the trusted injury tier, treating an unset tier as none
func (t *TrustedContext) InjuryCoverage() CoverageTier {
	if t == nil || t.Coverage.Injuries == "" {
		return CoverageNone
	}
	return t.Coverage.Injuries
}
