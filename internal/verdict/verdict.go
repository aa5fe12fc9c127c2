// Package verdict aggregates scored legs into a single confidence verdict,
// names the weakest leg and applies the data-quality confidence ceiling.
package verdict

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Csp-Ai/ResearchBets-sub001/internal/models"
	"github.com/Csp-Ai/ResearchBets-sub001/internal/risk"
)

// EmptySlipReason is the single reason attached to the zero-leg verdict
const EmptySlipReason = "No legs found. Paste your slip with one leg per line to get a verdict."

var confidenceRiskWeight = decimal.RequireFromString("0.9")

// Input is everything the aggregator needs for one run
type Input struct {
	EnrichedLegs    []models.EnrichedLeg
	ExtractedLegs   []models.ExtractedLeg
	Sources         models.SourceStats
	TrustedInjuries models.CoverageTier
	UnverifiedItems []models.UnverifiedItem
	At              time.Time
}

// NewInput builds an Input for a run, reading coverage from an optional trusted context
func NewInput(extracted []models.ExtractedLeg, enriched []models.EnrichedLeg, trusted *models.TrustedContext, at time.Time) Input {
	in := Input{
		EnrichedLegs:    enriched,
		ExtractedLegs:   extracted,
		Sources:         models.AggregateSources(enriched),
		TrustedInjuries: trusted.InjuryCoverage(),
		At:              at,
	}
	if trusted != nil {
		in.UnverifiedItems = trusted.UnverifiedItems
	}
	return in
}

// Placeholder is the verdict for a slip with no legs. It is also stored on
// runs that are still scoring.
func Placeholder(at time.Time) models.VerdictAnalysis {
	return models.VerdictAnalysis{
		ConfidencePct: models.MinConfidencePct,
		WeakestLegID:  nil,
		Reasons:       []string{EmptySlipReason},
		RiskLabel:     models.RiskLabelWeak,
		ComputedAt:    at,
	}
}

type scoredLeg struct {
	leg       models.EnrichedLeg
	selection string
}

// ComputeVerdict rescores every leg, ranks them by risk and returns the capped
// verdict. A non-nil error is always an *InvariantError.
func ComputeVerdict(in Input) (models.VerdictAnalysis, error) {
	if len(in.EnrichedLegs) == 0 {
		return Placeholder(in.At), nil
	}

	extracted := make(map[string]models.ExtractedLeg, len(in.ExtractedLegs))
	for _, leg := range in.ExtractedLegs {
		extracted[leg.ID] = leg
	}

	ranked := make([]scoredLeg, 0, len(in.EnrichedLegs))
	total := decimal.Zero
	for _, leg := range in.EnrichedLegs {
		risk.Apply(&leg)
		total = total.Add(decimal.NewFromFloat(leg.RiskScore))
		ranked = append(ranked, scoredLeg{
			leg:       leg,
			selection: extracted[leg.ExtractedLegID].Selection,
		})
	}
	if err := checkLegsKnown(ranked, extracted); err != nil {
		return models.VerdictAnalysis{}, err
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].leg.RiskScore > ranked[j].leg.RiskScore
	})

	avg := total.Div(decimal.NewFromInt(int64(len(ranked))))
	base := baseConfidence(avg)
	ceiling := ComputeConfidenceCap(in)
	confidence := base
	if ceiling.Ceiling < confidence {
		confidence = ceiling.Ceiling
	}

	weakestID := ranked[0].leg.ExtractedLegID
	reasons := buildReasons(ranked, avg, confidence, ceiling)
	if err := checkInvariants(ranked, weakestID, reasons); err != nil {
		return models.VerdictAnalysis{}, err
	}

	return models.VerdictAnalysis{
		ConfidencePct: confidence,
		WeakestLegID:  &weakestID,
		Reasons:       reasonTexts(reasons),
		RiskLabel:     models.LabelFor(confidence),
		ComputedAt:    in.At,
		DataQuality:   dataQuality(in, ceiling, base),
	}, nil
}

// baseConfidence is round(100 - avg*0.9) clamped to the confidence bounds
func baseConfidence(avg decimal.Decimal) int {
	raw := decimal.NewFromInt(100).Sub(avg.Mul(confidenceRiskWeight)).Round(0).IntPart()
	switch {
	case raw < models.MinConfidencePct:
		return models.MinConfidencePct
	case raw > models.MaxConfidencePct:
		return models.MaxConfidencePct
	default:
		return int(raw)
	}
}

func dataQuality(in Input, ceiling Cap, base int) *models.DataQuality {
	coverage := coverageOf(in.TrustedInjuries)
	dq := &models.DataQuality{
		TrustedCoverage: coverage,
		UsedUnverified:  len(in.UnverifiedItems) > 0,
		UnverifiedCount: len(in.UnverifiedItems),
		Ceiling:         ceiling.Ceiling,
		CapRule:         ceiling.Rule,
		Capped:          ceiling.Ceiling < base,
	}
	if coverage == models.CoverageNone || dq.Capped {
		dq.CapReason = ceiling.Reason
	}
	return dq
}
