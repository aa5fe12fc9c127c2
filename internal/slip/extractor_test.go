package slip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Csp-Ai/ResearchBets-sub001/internal/models"
)

const tatumSelection = "Jayson Tatum over 29.5 points"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "only whitespace", input: " \t\r\n \n", expected: ""},
		{name: "crlf lines", input: "Leg one\r\nLeg two\rLeg three", expected: "Leg one\nLeg two\nLeg three"},
		{name: "bullets", input: "• Tatum over 29.5 • Celtics ML", expected: "Tatum over 29.5\nCeltics ML"},
		{name: "tabs and runs of spaces", input: "Tatum\t\tover   29.5", expected: "Tatum over 29.5"},
		{name: "blank lines dropped", input: "A\n\n\n  B  ", expected: "A\nB"},
		{name: "non-breaking space", input: "Tatum\u00a0over 29.5", expected: "Tatum over 29.5"},
		{name: "fullwidth digits", input: "Over ２９.５", expected: "Over 29.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"Jayson Tatum over 29.5 points -110",
		"• A\r\n•B\t\t  C\n\n\n◦ D",
		"  leading and trailing  \n",
		"Café con leche ▪ Mbappé anytime scorer",
		"e\u0301 composed later",
		"line\u2028separator",
		"· middle dot ∙ bullet operator",
		"mixed \r\n\r\n\t• ● ○ ■ □ ‣ ⁃ glyphs",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalize must be idempotent for %q", in)
	}
}

func TestExtractEmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\r\n\t", "•••"} {
		legs := Extract(in)
		require.NotNil(t, legs)
		assert.Empty(t, legs)
	}
}

func TestExtractOneLegPerLine(t *testing.T) {
	legs := Extract("Jayson Tatum over 29.5 points -110\n• Celtics ML\nBrown over 5.5 rebounds (+120)")

	require.Len(t, legs, 3)
	assert.Equal(t, "Jayson Tatum over 29.5 points -110", legs[0].Selection)
	assert.Equal(t, "29.5", legs[0].Line)
	assert.Equal(t, "-110", legs[0].Odds)
	assert.Equal(t, "", legs[1].Line)
	assert.Equal(t, "", legs[1].Odds)
	assert.Equal(t, "5.5", legs[2].Line)
	assert.Equal(t, "+120", legs[2].Odds)
}

func TestExtractTrailingOddsIsNotTheLine(t *testing.T) {
	legs := Extract("Lakers ML -150\nBrunson o25.5 pts (+105)\nKnicks +4")

	require.Len(t, legs, 3)
	assert.Equal(t, "Lakers ML -150", legs[0].Selection)
	assert.Equal(t, "-150", legs[0].Odds)
	assert.Equal(t, "", legs[0].Line)
	assert.Equal(t, "25.5", legs[1].Line)
	assert.Equal(t, "+105", legs[1].Odds)
	assert.Equal(t, "4", legs[2].Line)
	assert.Equal(t, "", legs[2].Odds)
}

func TestExtractIDsUniqueForDuplicateSelections(t *testing.T) {
	legs := Extract("Celtics ML\nCeltics ML")

	require.Len(t, legs, 2)
	assert.Equal(t, "0-celtics-ml", legs[0].ID)
	assert.Equal(t, "1-celtics-ml", legs[1].ID)
	assert.NotEqual(t, legs[0].ID, legs[1].ID)
}

func TestExtractDeterministic(t *testing.T) {
	raw := "Tatum over 29.5\nBrown under 22.5"
	assert.Equal(t, Extract(raw), Extract(raw))
}

func TestLegID(t *testing.T) {
	tests := []struct {
		index     int
		selection string
		expected  string
	}{
		{0, tatumSelection, "0-jayson-tatum-over-29-5-points"},
		{3, "Mbappé anytime scorer", "3-mbappe-anytime-scorer"},
		{1, "!!!", "1-leg"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, LegID(tt.index, tt.selection))
		})
	}
}

func TestLegIDTruncatesLongSelections(t *testing.T) {
	id := LegID(0, "a very long selection text that keeps going and going well past the slug limit")
	assert.LessOrEqual(t, len(id), len("0-")+maxSlugLength)
	assert.NotContains(t, id[len(id)-1:], "-")
}

func TestParseLine(t *testing.T) {
	assert.Equal(t, "29.5", ParseLine(tatumSelection))
	assert.Equal(t, "3", ParseLine("Lakers -3 spread"))
	assert.Equal(t, "", ParseLine("Celtics ML"))
}

func TestFromParsed(t *testing.T) {
	legs := FromParsed([]models.LegInput{
		{Selection: "  Jayson   Tatum over 29.5 points ", Market: "points", Odds: "-110"},
		{Selection: "   "},
		{Selection: "Celtics\nML", Line: "0", Book: "dk/fd"},
	})

	require.Len(t, legs, 2)
	assert.Equal(t, "0-jayson-tatum-over-29-5-points", legs[0].ID)
	assert.Equal(t, tatumSelection, legs[0].Selection)
	assert.Equal(t, "points", legs[0].Market)
	assert.Equal(t, "29.5", legs[0].Line)
	assert.Equal(t, "-110", legs[0].Odds)

	assert.Equal(t, "1-celtics-ml", legs[1].ID)
	assert.Equal(t, "Celtics ML", legs[1].Selection)
	assert.Equal(t, "0", legs[1].Line, "explicit line must not be overwritten")
	assert.Equal(t, "dk/fd", legs[1].Book)
}
