package enrichment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Csp-Ai/ResearchBets-sub001/internal/models"
)

func TestSplitBooks(t *testing.T) {
	tests := []struct {
		name  string
		field string
		want  []string
	}{
		{name: "empty", field: "", want: []string{}},
		{name: "single", field: "DraftKings", want: []string{"draftkings"}},
		{name: "slash", field: "dk/fd", want: []string{"dk", "fd"}},
		{name: "mixed delimiters", field: "dk, fd | mgm; czr + br & pb", want: []string{"dk", "fd", "mgm", "czr", "br", "pb"}},
		{name: "duplicates ignore case", field: "DK/dk/Fd", want: []string{"dk", "fd"}},
		{name: "only delimiters", field: " / , ", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitBooks(tt.field))
		})
	}
}

func TestDeriveOdds(t *testing.T) {
	tests := []struct {
		name       string
		book       string
		mode       models.SourceMode
		divergence *float64
	}{
		{name: "no book", book: "", mode: models.SourceModeFallback},
		{name: "one book", book: "dk", mode: models.SourceModeFallback},
		{name: "repeated book", book: "dk/DK", mode: models.SourceModeFallback},
		{name: "two books", book: "dk/fd", mode: models.SourceModeLive, divergence: floatPtr(0.4)},
		{name: "three books", book: "dk/fd/mgm", mode: models.SourceModeLive, divergence: floatPtr(0.6)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveOdds(models.ExtractedLeg{Selection: "Leg", Book: tt.book})
			assert.Equal(t, tt.mode, got.Mode)
			assert.Nil(t, got.LineMove)
			assert.Equal(t, tt.divergence, got.Divergence)
			assert.NotEmpty(t, got.Notes)
		})
	}
}

func TestDeriveOddsImpliedProbabilityNote(t *testing.T) {
	got := DeriveOdds(models.ExtractedLeg{Selection: "Tatum over 29.5", Odds: "-110"})

	require.Len(t, got.Notes, 2)
	assert.Equal(t, "Implied probability 52.4% at -110.", got.Notes[1])
	assert.Nil(t, got.Divergence)
}

func TestImpliedProbability(t *testing.T) {
	tests := []struct {
		odds string
		want string
		ok   bool
	}{
		{odds: "+150", want: "0.4000", ok: true},
		{odds: "-110", want: "0.5238", ok: true},
		{odds: "+100", want: "0.5000", ok: true},
		{odds: "-200", want: "0.6667", ok: true},
		{odds: "2.5", want: "0.4000", ok: true},
		{odds: "1.91", want: "0.5236", ok: true},
		{odds: "", ok: false},
		{odds: "+50", ok: false},
		{odds: "evens", ok: false},
		{odds: "1.0", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.odds, func(t *testing.T) {
			got, ok := ImpliedProbability(tt.odds)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got.StringFixed(4))
			}
		})
	}
}

func floatPtr(f float64) *float64 { return &f }
