package verdict

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Csp-Ai/ResearchBets-sub001/internal/models"
	"github.com/Csp-Ai/ResearchBets-sub001/internal/risk"
)

var fixedNow = time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC)

var (
	allLive     = models.LegSources{Stats: models.SourceModeLive, Injuries: models.SourceModeLive, Odds: models.SourceModeLive}
	allFallback = models.LegSources{Stats: models.SourceModeFallback, Injuries: models.SourceModeFallback, Odds: models.SourceModeFallback}
	statsOnly   = models.LegSources{Stats: models.SourceModeLive, Injuries: models.SourceModeFallback, Odds: models.SourceModeFallback}
)

type legFixture struct {
	id        string
	selection string
	l5, l10   int
	flags     models.LegFlags
	sources   models.LegSources
}

func buildInput(coverage models.CoverageTier, fixtures ...legFixture) Input {
	in := Input{TrustedInjuries: coverage, At: fixedNow}
	for _, s := range fixtures {
		in.ExtractedLegs = append(in.ExtractedLegs, models.ExtractedLeg{ID: s.id, Selection: s.selection})
		in.EnrichedLegs = append(in.EnrichedLegs, models.EnrichedLeg{
			ExtractedLegID: s.id,
			L5:             s.l5,
			L10:            s.l10,
			Flags:          s.flags,
			Sources:        s.sources,
		})
	}
	in.Sources = models.AggregateSources(in.EnrichedLegs)
	return in
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestComputeVerdictZeroLegs(t *testing.T) {
	got, err := ComputeVerdict(Input{At: fixedNow})
	require.NoError(t, err)

	assert.Equal(t, 35, got.ConfidencePct)
	assert.Nil(t, got.WeakestLegID)
	require.Len(t, got.Reasons, 1)
	assert.Contains(t, got.Reasons[0], "one leg per line")
	assert.Equal(t, models.RiskLabelWeak, got.RiskLabel)
	assert.Nil(t, got.DataQuality)
	assert.Equal(t, fixedNow, got.ComputedAt)
}

func TestComputeVerdictWeakestLegIsHighestRisk(t *testing.T) {
	in := buildInput(models.CoverageLive,
		legFixture{id: "0-celtics-ml", selection: "Celtics ML", l5: 70, l10: 70, sources: allLive},
		legFixture{id: "1-tatum-over-29-5", selection: "Tatum over 29.5", l5: 40, l10: 45, sources: allLive},
		legFixture{id: "2-brown-over-4-5-assists", selection: "Brown over 4.5 assists", l5: 55, l10: 58, sources: allLive},
	)

	got, err := ComputeVerdict(in)
	require.NoError(t, err)

	require.NotNil(t, got.WeakestLegID)
	assert.Equal(t, "1-tatum-over-29-5", *got.WeakestLegID)
	require.Len(t, got.Reasons, 5)
	assert.True(t, strings.HasPrefix(got.Reasons[0], "Highest downside: Tatum over 29.5 ("))
	assert.True(t, strings.HasPrefix(got.Reasons[1], "Next highest downside: Brown over 4.5 assists ("))
	assert.Equal(t, "Downside #3: Celtics ML. No downside drivers flagged.", got.Reasons[2])
	assert.Contains(t, got.Reasons[3], "across 3 legs")
	assert.Contains(t, got.Reasons[4], "Tatum over 29.5")
}

func TestComputeVerdictTieBreakFollowsInputOrder(t *testing.T) {
	a := legFixture{id: "0-a", selection: "Leg A", l5: 50, l10: 50, sources: allLive}
	b := legFixture{id: "1-b", selection: "Leg B", l5: 50, l10: 50, sources: allLive}

	got, err := ComputeVerdict(buildInput(models.CoverageLive, a, b))
	require.NoError(t, err)
	assert.Equal(t, "0-a", *got.WeakestLegID)

	got, err = ComputeVerdict(buildInput(models.CoverageLive, b, a))
	require.NoError(t, err)
	assert.Equal(t, "1-b", *got.WeakestLegID)
}

func TestComputeVerdictBaseConfidence(t *testing.T) {
	// 16.8 and 45.3 average to 31.05, so 100 - 27.945 rounds to 72
	in := buildInput(models.CoverageLive,
		legFixture{id: "0-a", selection: "Leg A", l5: 50, l10: 50, sources: allLive},
		legFixture{id: "1-b", selection: "Leg B", l5: 35, l10: 35, sources: allLive},
	)

	got, err := ComputeVerdict(in)
	require.NoError(t, err)

	assert.Equal(t, 72, got.ConfidencePct)
	assert.Equal(t, models.RiskLabelStrong, got.RiskLabel)
	require.NotNil(t, got.DataQuality)
	assert.Equal(t, CapRuleAllLive, got.DataQuality.CapRule)
	assert.False(t, got.DataQuality.Capped)
	assert.Empty(t, got.DataQuality.CapReason)
	assert.Contains(t, got.Reasons[3], "Average risk 31.05 across 2 legs")
	assert.Contains(t, got.Reasons[4], "holds up")
}

func TestComputeVerdictClampsToFloor(t *testing.T) {
	in := buildInput(models.CoverageLive, legFixture{
		id: "0-longshot", selection: "Longshot", l5: 35, l10: 35, sources: allLive,
		flags: models.LegFlags{
			Injury:     strPtr("out"),
			News:       strPtr("benched"),
			LineMove:   floatPtr(2),
			Divergence: floatPtr(1),
		},
	})

	got, err := ComputeVerdict(in)
	require.NoError(t, err)

	assert.Equal(t, 35, got.ConfidencePct)
	assert.Equal(t, models.RiskLabelWeak, got.RiskLabel)
	assert.Contains(t, got.Reasons[len(got.Reasons)-1], "consider removing Longshot")
}

func TestComputeVerdictConfidenceBounds(t *testing.T) {
	coverages := []models.CoverageTier{models.CoverageLive, models.CoverageFallback, models.CoverageNone}
	sources := []models.LegSources{allLive, allFallback, statsOnly}

	for _, coverage := range coverages {
		for _, src := range sources {
			for l := 35; l <= 85; l += 10 {
				in := buildInput(coverage,
					legFixture{id: "0-x", selection: "X", l5: l, l10: 120 - l, sources: src},
					legFixture{id: "1-y", selection: "Y", l5: 120 - l, l10: l, sources: src},
				)
				got, err := ComputeVerdict(in)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, got.ConfidencePct, 35)
				assert.LessOrEqual(t, got.ConfidencePct, 85)
				assert.LessOrEqual(t, len(got.Reasons), 6)
			}
		}
	}
}

func TestComputeVerdictCapDominatesWhenInjuriesUntrusted(t *testing.T) {
	in := buildInput(models.CoverageNone,
		legFixture{id: "0-a", selection: "Leg A", l5: 80, l10: 80, sources: allLive},
		legFixture{id: "1-b", selection: "Leg B", l5: 85, l10: 85, sources: allLive},
	)
	in.UnverifiedItems = []models.UnverifiedItem{
		{Kind: "injury", Headline: "A limping at shootaround"},
		{Kind: "status", Headline: "B listed questionable"},
	}

	got, err := ComputeVerdict(in)
	require.NoError(t, err)

	assert.Equal(t, 72, got.ConfidencePct)
	require.NotNil(t, got.DataQuality)
	assert.Equal(t, models.CoverageNone, got.DataQuality.TrustedCoverage)
	assert.True(t, got.DataQuality.UsedUnverified)
	assert.Equal(t, 2, got.DataQuality.UnverifiedCount)
	assert.True(t, got.DataQuality.Capped)
	assert.Contains(t, got.DataQuality.CapReason, "No trusted injury report")

	in.UnverifiedItems = nil
	got, err = ComputeVerdict(in)
	require.NoError(t, err)
	assert.Equal(t, 75, got.ConfidencePct)
}

func TestComputeVerdictZeroRiskLegsUseCannedPhrase(t *testing.T) {
	in := buildInput(models.CoverageLive,
		legFixture{id: "0-safe", selection: "Safe leg", l5: 80, l10: 80, sources: allLive},
	)

	got, err := ComputeVerdict(in)
	require.NoError(t, err)

	for _, r := range got.Reasons {
		assert.Contains(t, r, models.NoDownsideFactor)
		for _, marker := range risk.DownsideMarkers {
			assert.NotContains(t, r, marker)
		}
	}
}

func TestComputeVerdictRescoresLegs(t *testing.T) {
	in := buildInput(models.CoverageLive,
		legFixture{id: "0-a", selection: "Leg A", l5: 80, l10: 80, sources: allLive},
		legFixture{id: "1-b", selection: "Leg B", l5: 50, l10: 50, sources: allLive},
	)
	in.EnrichedLegs[0].RiskScore = 99
	in.EnrichedLegs[0].RiskFactors = []string{"Injury watch"}

	got, err := ComputeVerdict(in)
	require.NoError(t, err)

	assert.Equal(t, "1-b", *got.WeakestLegID)
}

func TestComputeVerdictOrphanLeg(t *testing.T) {
	in := buildInput(models.CoverageLive,
		legFixture{id: "0-a", selection: "Leg A", l5: 50, l10: 50, sources: allLive},
	)
	in.ExtractedLegs = nil

	_, err := ComputeVerdict(in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvariantViolation))

	var invErr *InvariantError
	require.True(t, errors.As(err, &invErr))
	assert.Equal(t, CheckOrphanLeg, invErr.Check)
}

func TestComputeVerdictReasonPrefixes(t *testing.T) {
	var fixtures []legFixture
	for i := 0; i < 5; i++ {
		fixtures = append(fixtures, legFixture{
			id:        fmt.Sprintf("%d-leg", i),
			selection: fmt.Sprintf("Leg %d", i),
			l5:        40 + i*5,
			l10:       40 + i*5,
			sources:   allLive,
		})
	}

	got, err := ComputeVerdict(buildInput(models.CoverageLive, fixtures...))
	require.NoError(t, err)

	require.Len(t, got.Reasons, 5)
	assert.True(t, strings.HasPrefix(got.Reasons[0], "Highest downside: Leg 0"))
	assert.True(t, strings.HasPrefix(got.Reasons[1], "Next highest downside: Leg 1"))
	assert.True(t, strings.HasPrefix(got.Reasons[2], "Downside #3: Leg 2"))
}

func TestComputeVerdictZeroRiskLegUnderFallbackCap(t *testing.T) {
	in := buildInput(models.CoverageLive,
		legFixture{id: "0-a", selection: "Leg A", l5: 80, l10: 80, sources: allFallback},
	)

	got, err := ComputeVerdict(in)
	require.NoError(t, err)

	assert.Equal(t, 65, got.ConfidencePct)
	require.NotNil(t, got.DataQuality)
	assert.Equal(t, CapRuleFallbackHeavy, got.DataQuality.CapRule)

	closing := got.Reasons[len(got.Reasons)-1]
	assert.Contains(t, closing, "fallback heavy data-quality cap")
	assert.Contains(t, closing, "Leg A")
	for _, r := range got.Reasons {
		assert.Contains(t, r, models.NoDownsideFactor)
		for _, phrase := range downsidePhrases {
			assert.NotContains(t, r, phrase)
		}
	}
}

func TestCheckInvariants(t *testing.T) {
	risky := scoredLeg{
		leg:       models.EnrichedLeg{ExtractedLegID: "0-risky", RiskScore: 16.8, RiskFactors: []string{"L10 downside 50%"}},
		selection: "Risky leg",
	}
	safe := scoredLeg{
		leg:       models.EnrichedLeg{ExtractedLegID: "1-safe", RiskFactors: []string{models.NoDownsideFactor}},
		selection: "Safe leg",
	}
	ranked := []scoredLeg{risky, safe}

	tests := []struct {
		name    string
		weakest string
		reasons []reason
		check   string
	}{
		{
			name:    "consistent",
			weakest: "0-risky",
			reasons: []reason{
				{text: "Highest downside: Risky leg (L10 downside 50%; risk 16.80).", legID: "0-risky"},
				{text: "Next highest downside: Safe leg. No downside drivers flagged.", legID: "1-safe"},
			},
		},
		{
			name:    "weakest mismatch",
			weakest: "1-safe",
			check:   CheckWeakestLeg,
		},
		{
			name:    "reason for unknown leg",
			weakest: "0-risky",
			reasons: []reason{{text: "Highest downside: Ghost.", legID: "9-ghost"}},
			check:   CheckOrphanReason,
		},
		{
			name:    "reason does not name its leg",
			weakest: "0-risky",
			reasons: []reason{{text: "Highest downside: something else.", legID: "0-risky"}},
			check:   CheckOrphanReason,
		},
		{
			name:    "zero-risk leg missing canned phrase",
			weakest: "0-risky",
			reasons: []reason{{text: "Next highest downside: Safe leg looks fine.", legID: "1-safe"}},
			check:   CheckZeroRiskPhrasing,
		},
		{
			name:    "zero-risk leg called fragile",
			weakest: "0-risky",
			reasons: []reason{{text: "At 65% the slip is fragile; consider removing Safe leg. No downside drivers flagged.", legID: "1-safe"}},
			check:   CheckZeroRiskPhrasing,
		},
		{
			name:    "zero-risk leg with downside factor",
			weakest: "0-risky",
			reasons: []reason{{text: "Safe leg: Injury watch. No downside drivers flagged.", legID: "1-safe"}},
			check:   CheckZeroRiskPhrasing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkInvariants(ranked, tt.weakest, tt.reasons)
			if tt.check == "" {
				assert.NoError(t, err)
				return
			}
			var invErr *InvariantError
			require.True(t, errors.As(err, &invErr))
			assert.Equal(t, tt.check, invErr.Check)
		})
	}
}

func TestNewInputDefaultsToNoCoverage(t *testing.T) {
	in := NewInput(nil, nil, nil, fixedNow)
	assert.Equal(t, models.CoverageNone, in.TrustedInjuries)
	assert.Empty(t, in.UnverifiedItems)

	trusted := &models.TrustedContext{
		Coverage:        models.TrustedCoverage{Injuries: models.CoverageLive},
		UnverifiedItems: []models.UnverifiedItem{{Kind: "news", Headline: "trade talk"}},
	}
	in = NewInput(nil, nil, trusted, fixedNow)
	assert.Equal(t, models.CoverageLive, in.TrustedInjuries)
	assert.Len(t, in.UnverifiedItems, 1)
}
