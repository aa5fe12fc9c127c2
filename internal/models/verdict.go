package models

import "time"

// RiskLabel is the headline label derived from confidence
type RiskLabel string

const (
	RiskLabelStrong  RiskLabel = "Strong"
	RiskLabelCaution RiskLabel = "Caution"
	RiskLabelWeak    RiskLabel = "Weak"
)

// Confidence bounds shared by the aggregator and the placeholder verdict
const (
	MinConfidencePct = 35
	MaxConfidencePct = 85
)

// LabelFor maps a confidence percentage onto a RiskLabel (thresholds 70/55)
func LabelFor(confidencePct int) RiskLabel {
	switch {
	case confidencePct >= 70:
		return RiskLabelStrong
	case confidencePct >= 55:
		return RiskLabelCaution
	default:
		return RiskLabelWeak
	}
}

// DataQuality annotates how much trusted evidence backs the verdict
type DataQuality struct {
	TrustedCoverage CoverageTier `json:"trustedCoverage"`
	UsedUnverified  bool         `json:"usedUnverified"`
	UnverifiedCount int          `json:"unverifiedCount"`
	Ceiling         int          `json:"ceiling"`
	CapRule         string       `json:"capRule"`
	Capped          bool         `json:"capped"`
	CapReason       string       `json:"capReason,omitempty"`
}

// VerdictAnalysis is the final output of a run
type VerdictAnalysis struct {
	ConfidencePct int          `json:"confidencePct"`
	WeakestLegID  *string      `json:"weakestLegId"`
	Reasons       []string     `json:"reasons"`
	RiskLabel     RiskLabel    `json:"riskLabel"`
	ComputedAt    time.Time    `json:"computedAt"`
	DataQuality   *DataQuality `json:"dataQuality,omitempty"`
}
