package enrichment

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Csp-Ai/ResearchBets-sub001/internal/logger"
	"github.com/Csp-Ai/ResearchBets-sub001/internal/metrics"
	"github.com/Csp-Ai/ResearchBets-sub001/internal/models"
	"github.com/Csp-Ai/ResearchBets-sub001/internal/risk"
)

const defaultConcurrency = 8

// Enricher runs the three source adapters for every leg of a slip
type Enricher struct {
	stats       StatsProvider
	injuries    InjuryProvider
	odds        OddsProvider
	concurrency int
	logger      *logger.ProviderLogger
}

// Option configures an Enricher
type Option func(*Enricher)

// WithStatsProvider replaces the built-in stats adapter
func WithStatsProvider(p StatsProvider) Option {
	return func(e *Enricher) { e.stats = p }
}

// WithInjuryProvider replaces the built-in injury stub
func WithInjuryProvider(p InjuryProvider) Option {
	return func(e *Enricher) { e.injuries = p }
}

// WithOddsProvider replaces the built-in odds adapter
func WithOddsProvider(p OddsProvider) Option {
	return func(e *Enricher) { e.odds = p }
}

// WithConcurrency bounds how many legs are enriched at once
func WithConcurrency(n int) Option {
	return func(e *Enricher) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithLogger sets the logger used for provider fallbacks
func WithLogger(log *logrus.Logger) Option {
	return func(e *Enricher) { e.logger = logger.NewProviderLogger(log) }
}

// NewEnricher creates an Enricher with the built-in adapters unless overridden
func NewEnricher(opts ...Option) *Enricher {
	e := &Enricher{
		stats:       HeuristicStats{},
		injuries:    StubInjuries{},
		odds:        BookOdds{},
		concurrency: defaultConcurrency,
		logger:      logger.NewProviderLogger(nil),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich returns one scored EnrichedLeg per input leg, in input order.
// Legs are enriched concurrently and the call returns once all are done.
func (e *Enricher) Enrich(ctx context.Context, legs []models.ExtractedLeg) []models.EnrichedLeg {
	out := make([]models.EnrichedLeg, len(legs))

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, leg := range legs {
		g.Go(func() error {
			out[i] = e.EnrichLeg(ctx, leg)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// EnrichLeg queries the three sources for one leg in parallel and scores it
func (e *Enricher) EnrichLeg(ctx context.Context, leg models.ExtractedLeg) models.EnrichedLeg {
	var (
		stats    StatsSignal
		injuries InjurySignal
		odds     OddsSignal
		g        errgroup.Group
	)
	g.Go(func() error {
		stats = e.fetchStats(ctx, leg)
		return nil
	})
	g.Go(func() error {
		injuries = e.fetchInjuries(ctx, leg)
		return nil
	})
	g.Go(func() error {
		odds = e.fetchOdds(ctx, leg)
		return nil
	})
	_ = g.Wait()

	notes := make([]string, 0, len(stats.Notes)+len(injuries.Notes)+len(odds.Notes))
	notes = append(notes, stats.Notes...)
	notes = append(notes, injuries.Notes...)
	notes = append(notes, odds.Notes...)

	enriched := models.EnrichedLeg{
		ExtractedLegID: leg.ID,
		L5:             stats.L5,
		L10:            stats.L10,
		Season:         stats.Season,
		VsOpponent:     stats.VsOpponent,
		Sources: models.LegSources{
			Stats:    stats.Mode,
			Injuries: injuries.Mode,
			Odds:     odds.Mode,
		},
		Flags: models.LegFlags{
			Injury:     injuries.Injury,
			News:       injuries.News,
			LineMove:   odds.LineMove,
			Divergence: odds.Divergence,
		},
		Notes: notes,
	}
	risk.Apply(&enriched)

	metrics.RecordEnrichmentSource(SourceStats, string(stats.Mode))
	metrics.RecordEnrichmentSource(SourceInjuries, string(injuries.Mode))
	metrics.RecordEnrichmentSource(SourceOdds, string(odds.Mode))

	return enriched
}

func (e *Enricher) fetchStats(ctx context.Context, leg models.ExtractedLeg) StatsSignal {
	s, err := e.stats.Stats(ctx, leg)
	if err != nil {
		e.logger.LogProviderFallback(SourceStats, leg.ID, err)
		s = DeriveStats(leg)
		s.Mode = models.SourceModeFallback
		s.Notes = append([]string{fallbackNote(SourceStats)}, s.Notes...)
		return s
	}
	s.L5 = clampPercent(s.L5)
	s.L10 = clampPercent(s.L10)
	s.Mode = normalizeMode(s.Mode)
	return s
}

func (e *Enricher) fetchInjuries(ctx context.Context, leg models.ExtractedLeg) InjurySignal {
	s, err := e.injuries.Injuries(ctx, leg)
	if err != nil {
		e.logger.LogProviderFallback(SourceInjuries, leg.ID, err)
		s = DeriveInjuries(leg)
		s.Notes = append([]string{fallbackNote(SourceInjuries)}, s.Notes...)
		return s
	}
	s.Mode = normalizeMode(s.Mode)
	return s
}

func (e *Enricher) fetchOdds(ctx context.Context, leg models.ExtractedLeg) OddsSignal {
	s, err := e.odds.Odds(ctx, leg)
	if err != nil {
		e.logger.LogProviderFallback(SourceOdds, leg.ID, err)
		s = DeriveOdds(leg)
		s.Mode = models.SourceModeFallback
		s.Notes = append([]string{fallbackNote(SourceOdds)}, s.Notes...)
		return s
	}
	s.Mode = normalizeMode(s.Mode)
	return s
}

func fallbackNote(source string) string {
	return fmt.Sprintf("%s provider unavailable; built-in adapter used.", source)
}

func normalizeMode(m models.SourceMode) models.SourceMode {
	if m == models.SourceModeLive {
		return m
	}
	return models.SourceModeFallback
}

func clampPercent(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
