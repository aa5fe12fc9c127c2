// Package risk scores a single enriched leg. ComputeLegRisk is the only
// place in the module that produces a risk score, band or factor list.
package risk

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Csp-Ai/ResearchBets-sub001/internal/models"
)

// Point weights of the additive model
var (
	l10Threshold      = 60
	l10Weight         = decimal.RequireFromString("0.8")
	l5Threshold       = 58
	l5Weight          = decimal.RequireFromString("1.1")
	injuryPoints      = decimal.NewFromInt(16)
	newsPoints        = decimal.NewFromInt(8)
	lineMovePoints    = decimal.NewFromInt(10)
	divergencePoints  = decimal.NewFromInt(7)
	lineMoveTrigger   = 1.0
	divergenceTrigger = 0.5

	highBandFloor     = decimal.NewFromInt(24)
	moderateBandFloor = decimal.NewFromInt(10)
)

// Factor label prefixes. Verdict prose checks zero-risk legs against these.
const (
	FactorL10Downside    = "L10 downside"
	FactorL5Downside     = "L5 downside"
	FactorInjuryWatch    = "Injury watch"
	FactorNewsVolatility = "News volatility"
	FactorLineMoved      = "Line moved"
	FactorBooksDisagree  = "Books disagree"
)

// DownsideMarkers lists every factor prefix that describes a downside
var DownsideMarkers = []string{
	FactorL10Downside,
	FactorL5Downside,
	FactorInjuryWatch,
	FactorNewsVolatility,
	FactorLineMoved,
	FactorBooksDisagree,
}

// ComputeLegRisk converts hit rates and volatility flags into a score, band and
// ordered factor list. The score is rounded to two decimal places.
func ComputeLegRisk(l5, l10 int, flags models.LegFlags) models.RiskAssessment {
	score := decimal.Zero
	factors := make([]string, 0, 6)

	if l10 < l10Threshold {
		score = score.Add(decimal.NewFromInt(int64(l10Threshold - l10)).Mul(l10Weight))
		factors = append(factors, fmt.Sprintf("%s %d%%", FactorL10Downside, 100-l10))
	}
	if l5 < l5Threshold {
		score = score.Add(decimal.NewFromInt(int64(l5Threshold - l5)).Mul(l5Weight))
		factors = append(factors, fmt.Sprintf("%s %d%%", FactorL5Downside, 100-l5))
	}
	if flags.Injury != nil {
		score = score.Add(injuryPoints)
		factors = append(factors, FactorInjuryWatch)
	}
	if flags.News != nil {
		score = score.Add(newsPoints)
		factors = append(factors, FactorNewsVolatility)
	}
	if flags.LineMove != nil && math.Abs(*flags.LineMove) >= lineMoveTrigger {
		score = score.Add(lineMovePoints)
		factors = append(factors, fmt.Sprintf("%s %s", FactorLineMoved, formatSignal(*flags.LineMove)))
	}
	if flags.Divergence != nil && *flags.Divergence >= divergenceTrigger {
		score = score.Add(divergencePoints)
		factors = append(factors, fmt.Sprintf("%s (%s)", FactorBooksDisagree, formatSignal(*flags.Divergence)))
	}

	score = score.Round(2)
	if len(factors) == 0 {
		factors = append(factors, models.NoDownsideFactor)
	}

	return models.RiskAssessment{
		Score:   score.InexactFloat64(),
		Band:    bandFor(score),
		Factors: factors,
	}
}

// Apply rescores leg from its own signals and stores the result on it
func Apply(leg *models.EnrichedLeg) models.RiskAssessment {
	assessment := ComputeLegRisk(leg.L5, leg.L10, leg.Flags)
	leg.SetRisk(assessment)
	return assessment
}

// ApplyAll rescores every leg in place
func ApplyAll(legs []models.EnrichedLeg) {
	for i := range legs {
		Apply(&legs[i])
	}
}

func bandFor(score decimal.Decimal) models.RiskBand {
	switch {
	case score.GreaterThanOrEqual(highBandFloor):
		return models.RiskBandHigh
	case score.GreaterThanOrEqual(moderateBandFloor):
		return models.RiskBandModerate
	default:
		return models.RiskBandLow
	}
}

func formatSignal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
