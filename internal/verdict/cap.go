package verdict

import (
	"fmt"

	"github.com/Csp-Ai/ResearchBets-sub001/internal/models"
)

// Cap rule identifiers, in evaluation order
const (
	CapRuleNoTrustedInjuries = "no_trusted_injuries"
	CapRuleFallbackHeavy     = "fallback_heavy"
	CapRuleStatsOnlyLive     = "stats_only_live"
	CapRuleAllLive           = "all_live"
	CapRuleDefault           = "default"
)

// Ceilings applied by each rule
const (
	ceilingNoTrustedInjuries    = 75
	ceilingNoTrustedWithChatter = 72
	ceilingFallbackHeavy        = 65
	ceilingStatsOnlyLive        = 75
	ceilingAllLive              = 85
	ceilingDefault              = 80
)

// unverified injury-kind items needed to tighten the no-coverage ceiling
const unverifiedInjuryChatterMinimum = 2

// Cap is the confidence ceiling chosen for a run and the rule that chose it
type Cap struct {
	Ceiling int
	Rule    string
	Reason  string
}

// ComputeConfidenceCap picks the ceiling for in. Rules are tried in a fixed
// order and the first match wins, so data-quality gaps always dominate.
func ComputeConfidenceCap(in Input) Cap {
	if coverageOf(in.TrustedInjuries) == models.CoverageNone {
		chatter := countInjuryChatter(in.UnverifiedItems)
		if chatter >= unverifiedInjuryChatterMinimum {
			return Cap{
				Ceiling: ceilingNoTrustedWithChatter,
				Rule:    CapRuleNoTrustedInjuries,
				Reason: fmt.Sprintf("No trusted injury report covers this slip and %d unverified availability reports are circulating; confidence is held at %d%%.",
					chatter, ceilingNoTrustedWithChatter),
			}
		}
		return Cap{
			Ceiling: ceilingNoTrustedInjuries,
			Rule:    CapRuleNoTrustedInjuries,
			Reason:  fmt.Sprintf("No trusted injury report covers this slip; confidence is held at %d%%.", ceilingNoTrustedInjuries),
		}
	}

	legCount := len(in.EnrichedLegs)
	heavy := 0
	statsLiveEverywhere := legCount > 0
	for _, leg := range in.EnrichedLegs {
		if leg.Sources.AllFallback() {
			heavy++
		}
		if leg.Sources.Stats != models.SourceModeLive {
			statsLiveEverywhere = false
		}
	}

	if 2*heavy > legCount && in.Sources.AllFallback() {
		return Cap{
			Ceiling: ceilingFallbackHeavy,
			Rule:    CapRuleFallbackHeavy,
			Reason:  fmt.Sprintf("%d of %d legs rely only on fallback data; confidence is held at %d%%.", heavy, legCount, ceilingFallbackHeavy),
		}
	}

	if in.Sources.Stats == models.SourceModeLive &&
		in.Sources.Injuries == models.SourceModeFallback &&
		in.Sources.Odds == models.SourceModeFallback &&
		statsLiveEverywhere {
		return Cap{
			Ceiling: ceilingStatsOnlyLive,
			Rule:    CapRuleStatsOnlyLive,
			Reason:  fmt.Sprintf("Only stats are live; injury and odds data are fallback, so confidence is held at %d%%.", ceilingStatsOnlyLive),
		}
	}

	if in.Sources.AllLive() {
		return Cap{
			Ceiling: ceilingAllLive,
			Rule:    CapRuleAllLive,
			Reason:  "All sources are live.",
		}
	}

	return Cap{
		Ceiling: ceilingDefault,
		Rule:    CapRuleDefault,
		Reason:  fmt.Sprintf("Source coverage is mixed; confidence is held at %d%%.", ceilingDefault),
	}
}

func coverageOf(tier models.CoverageTier) models.CoverageTier {
	if tier == "" {
		return models.CoverageNone
	}
	return tier
}

func countInjuryChatter(items []models.UnverifiedItem) int {
	n := 0
	for _, item := range items {
		if item.IsInjuryKind() {
			n++
		}
	}
	return n
}
