package verdict

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Csp-Ai/ResearchBets-sub001/internal/models"
)

const (
	maxLegReasons       = 3
	strongConfidenceMin = 70
)

// downsidePhrases are closing-sentence wordings that must never describe a zero-risk leg
var downsidePhrases = []string{"fragile", "consider removing", "keep an eye on"}

// reason keeps the leg a sentence talks about next to the sentence itself
type reason struct {
	text  string
	legID string
}

func reasonTexts(reasons []reason) []string {
	out := make([]string, len(reasons))
	for i, r := range reasons {
		out[i] = r.text
	}
	return out
}

func legLabel(s scoredLeg) string {
	if s.selection != "" {
		return s.selection
	}
	return s.leg.ExtractedLegID
}

func rankPrefix(i int, zeroRisk bool) string {
	if zeroRisk {
		return fmt.Sprintf("Rank %d", i+1)
	}
	switch i {
	case 0:
		return "Highest downside"
	case 1:
		return "Next highest downside"
	default:
		return fmt.Sprintf("Downside #%d", i+1)
	}
}

func buildReasons(ranked []scoredLeg, avg decimal.Decimal, confidence int, ceiling Cap) []reason {
	reasons := make([]reason, 0, maxLegReasons+2)

	for i, s := range ranked {
		if i == maxLegReasons {
			break
		}
		var text string
		if s.leg.RiskScore == 0 {
			text = fmt.Sprintf("%s: %s. %s", rankPrefix(i, true), legLabel(s), models.NoDownsideFactor)
		} else {
			text = fmt.Sprintf("%s: %s (%s; risk %.2f).",
				rankPrefix(i, false), legLabel(s), strings.Join(s.leg.RiskFactors, ", "), s.leg.RiskScore)
		}
		reasons = append(reasons, reason{text: text, legID: s.leg.ExtractedLegID})
	}

	weakest := ranked[0]
	noun := "legs"
	if len(ranked) == 1 {
		noun = "leg"
	}
	summary := fmt.Sprintf("Average risk %s across %d %s; %s ranks first.",
		avg.StringFixed(2), len(ranked), noun, legLabel(weakest))

	var closing string
	switch {
	case weakest.leg.RiskScore == 0:
		// every leg is clean, so only the data-quality ceiling holds confidence down
		summary += " " + models.NoDownsideFactor
		closing = fmt.Sprintf("At %d%% confidence is set by the %s data-quality cap, not by %s. %s",
			confidence, strings.ReplaceAll(ceiling.Rule, "_", " "), legLabel(weakest), models.NoDownsideFactor)
	case confidence >= strongConfidenceMin:
		closing = fmt.Sprintf("At %d%% the slip holds up; keep an eye on %s.", confidence, legLabel(weakest))
	default:
		closing = fmt.Sprintf("At %d%% the slip is fragile; consider removing %s.", confidence, legLabel(weakest))
	}

	return append(reasons,
		reason{text: summary, legID: weakest.leg.ExtractedLegID},
		reason{text: closing, legID: weakest.leg.ExtractedLegID},
	)
}
