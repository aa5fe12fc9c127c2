package slip

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Csp-Ai/ResearchBets-sub001/internal/models"
)

const maxSlugLength = 48

var (
	// first decimal or integer number in the selection
	linePattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

	// trailing American odds token, optionally parenthesised: "-110", "(+150)"
	oddsPattern = regexp.MustCompile(`(?:^|\s)\(?([+-]\d{3,5})\)?$`)
)

// Extract parses raw slip text into one leg per non-empty normalized line.
// Empty or unparseable input yields an empty, non-nil slice.
func Extract(raw string) []models.ExtractedLeg {
	normalized := Normalize(raw)
	if normalized == "" {
		return []models.ExtractedLeg{}
	}

	lines := strings.Split(normalized, "\n")
	legs := make([]models.ExtractedLeg, 0, len(lines))
	for _, line := range lines {
		legs = append(legs, buildLeg(len(legs), models.LegInput{Selection: line}))
	}
	return legs
}

// FromParsed builds legs from externally pre-parsed records. Only
// normalization is applied to the selection text; records whose selection
// normalizes to nothing are skipped.
func FromParsed(inputs []models.LegInput) []models.ExtractedLeg {
	legs := make([]models.ExtractedLeg, 0, len(inputs))
	for _, in := range inputs {
		in.Selection = normalizeSelection(in.Selection)
		if in.Selection == "" {
			continue
		}
		legs = append(legs, buildLeg(len(legs), in))
	}
	return legs
}

// LegID builds the deterministic id for the leg at index
func LegID(index int, selection string) string {
	slug := slugify(selection)
	if slug == "" {
		slug = "leg"
	}
	return fmt.Sprintf("%d-%s", index, slug)
}

// ParseLine returns the first number in the selection, or "" if there is none
func ParseLine(selection string) string {
	return linePattern.FindString(selection)
}

// ParseOdds returns a trailing American odds token, or "" if there is none
func ParseOdds(selection string) string {
	m := oddsPattern.FindStringSubmatch(selection)
	if m == nil {
		return ""
	}
	return m[1]
}

func buildLeg(index int, in models.LegInput) models.ExtractedLeg {
	leg := models.ExtractedLeg{
		ID:        LegID(index, in.Selection),
		Selection: in.Selection,
		Market:    strings.TrimSpace(in.Market),
		Line:      strings.TrimSpace(in.Line),
		Odds:      strings.TrimSpace(in.Odds),
		Team:      strings.TrimSpace(in.Team),
		Player:    strings.TrimSpace(in.Player),
		Sport:     strings.TrimSpace(in.Sport),
		EventTime: strings.TrimSpace(in.EventTime),
		Book:      strings.TrimSpace(in.Book),
	}

	if leg.Line == "" {
		// an odds token is never the line
		leg.Line = ParseLine(oddsPattern.ReplaceAllString(leg.Selection, ""))
	}
	if leg.Odds == "" {
		leg.Odds = ParseOdds(leg.Selection)
	}

	return leg
}
