package enrichment

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Csp-Ai/ResearchBets-sub001/internal/models"
)

var divergencePerBook = decimal.RequireFromString("0.2")

// BookOdds is the built-in odds adapter working off the leg's book field
type BookOdds struct{}

// Odds implements OddsProvider
func (BookOdds) Odds(_ context.Context, leg models.ExtractedLeg) (OddsSignal, error) {
	return DeriveOdds(leg), nil
}

// DeriveOdds scores book divergence when the leg names two or more distinct
// books. A parseable odds string adds an implied-probability note only.
func DeriveOdds(leg models.ExtractedLeg) OddsSignal {
	var signal OddsSignal

	books := SplitBooks(leg.Book)
	if len(books) >= 2 {
		d := divergencePerBook.Mul(decimal.NewFromInt(int64(len(books)))).Round(2).InexactFloat64()
		signal.Divergence = &d
		signal.Mode = models.SourceModeLive
		signal.Notes = append(signal.Notes, fmt.Sprintf("Odds live: compared %d books (%s), divergence %s.",
			len(books), strings.Join(books, ", "), strconv.FormatFloat(d, 'f', -1, 64)))
	} else {
		signal.Mode = models.SourceModeFallback
		signal.Notes = append(signal.Notes, "Odds fallback: fewer than two books on leg, no divergence or line move applied.")
	}

	if p, ok := ImpliedProbability(leg.Odds); ok {
		signal.Notes = append(signal.Notes, fmt.Sprintf("Implied probability %s%% at %s.",
			p.Mul(decimal.NewFromInt(100)).StringFixed(1), leg.Odds))
	}

	return signal
}

// SplitBooks splits a book field on common delimiters and drops duplicates,
// comparing case-insensitively. Order of first appearance is kept.
func SplitBooks(field string) []string {
	parts := strings.FieldsFunc(field, func(r rune) bool {
		return strings.ContainsRune(",/|;+&", r)
	})
	seen := make(map[string]struct{}, len(parts))
	books := make([]string, 0, len(parts))
	for _, p := range parts {
		b := strings.ToLower(strings.TrimSpace(p))
		if b == "" {
			continue
		}
		if _, dup := seen[b]; dup {
			continue
		}
		seen[b] = struct{}{}
		books = append(books, b)
	}
	return books
}

// ImpliedProbability converts American (+150, -110) or decimal (1.91) odds
// into a probability in (0, 1).
func ImpliedProbability(odds string) (decimal.Decimal, bool) {
	odds = strings.TrimSpace(odds)
	if odds == "" {
		return decimal.Zero, false
	}

	hundred := decimal.NewFromInt(100)
	if odds[0] == '+' || odds[0] == '-' {
		american, err := strconv.Atoi(odds)
		if err != nil || american == 0 || (american > -100 && american < 100) {
			return decimal.Zero, false
		}
		a := decimal.NewFromInt(int64(american))
		if american > 0 {
			// +150: 100 / 250
			return hundred.Div(a.Add(hundred)), true
		}
		// -110: 110 / 210
		neg := a.Neg()
		return neg.Div(neg.Add(hundred)), true
	}

	price, err := decimal.NewFromString(odds)
	if err != nil || price.LessThanOrEqual(decimal.NewFromInt(1)) {
		return decimal.Zero, false
	}
	return decimal.NewFromInt(1).Div(price), true
}
