// Package service orchestrates slip runs: persist, extract, enrich, score,
// aggregate and persist again.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Csp-Ai/ResearchBets-sub001/internal/enrichment"
	"github.com/Csp-Ai/ResearchBets-sub001/internal/logger"
	"github.com/Csp-Ai/ResearchBets-sub001/internal/metrics"
	"github.com/Csp-Ai/ResearchBets-sub001/internal/models"
	"github.com/Csp-Ai/ResearchBets-sub001/internal/repository"
	"github.com/Csp-Ai/ResearchBets-sub001/internal/risk"
	"github.com/Csp-Ai/ResearchBets-sub001/internal/slip"
	"github.com/Csp-Ai/ResearchBets-sub001/internal/verdict"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100

	staleRunError = "run timed out before scoring completed"
)

// RunService is the run orchestrator
type RunService struct {
	repo             repository.RunRepository
	enricher         *enrichment.Enricher
	trusted          TrustedContextProvider
	publisher        Publisher
	validator        *InputValidator
	logger           *logger.RunLogger
	panicOnInvariant bool
	now              func() time.Time
}

// RunServiceOption configures a RunService
type RunServiceOption func(*RunService)

// WithTrustedContextProvider sets the provider consulted when a request has no trusted context
func WithTrustedContextProvider(p TrustedContextProvider) RunServiceOption {
	return func(s *RunService) { s.trusted = p }
}

// WithPublisher sets the receiver of run state transitions
func WithPublisher(p Publisher) RunServiceOption {
	return func(s *RunService) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithPanicOnInvariant makes invariant violations panic instead of failing the run
func WithPanicOnInvariant(enabled bool) RunServiceOption {
	return func(s *RunService) { s.panicOnInvariant = enabled }
}

// WithLogger sets the base logger
func WithLogger(log *logrus.Logger) RunServiceOption {
	return func(s *RunService) { s.logger = logger.NewRunLogger(log) }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) RunServiceOption {
	return func(s *RunService) { s.now = now }
}

// NewRunService creates a new run orchestrator
func NewRunService(repo repository.RunRepository, enricher *enrichment.Enricher, opts ...RunServiceOption) *RunService {
	if enricher == nil {
		enricher = enrichment.NewEnricher()
	}

	s := &RunService{
		repo:      repo,
		enricher:  enricher,
		publisher: NopPublisher{},
		validator: NewInputValidator(),
		logger:    logger.NewRunLogger(nil),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunSlip analyzes one slip and returns the completed run.
//
// Zero extracted legs is not a failure: the run completes with the
// placeholder verdict. An invariant violation marks the run failed and is
// returned as a *verdict.InvariantError.
func (s *RunService) RunSlip(ctx context.Context, in SlipInput) (*models.Run, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	startTime := time.Now()
	now := s.now()
	run := &models.Run{
		TraceID:            uuid.NewString(),
		CreatedAt:          now,
		UpdatedAt:          now,
		Status:             models.RunStatusRunning,
		SlipText:           in.RawText,
		NormalizedSlipText: slip.Normalize(in.RawText),
		ExtractedLegs:      []models.ExtractedLeg{},
		EnrichedLegs:       []models.EnrichedLeg{},
		Sources:            models.AggregateSources(nil),
		Analysis:           verdict.Placeholder(now),
		Trusted:            in.Trusted,
	}
	if in.RawText != "" || len(in.CrowdNotes) > 0 {
		run.Metadata = &models.RunMetadata{OriginalText: in.RawText, CrowdNotes: in.CrowdNotes}
	}

	if err := s.repo.Save(ctx, run); err != nil {
		s.logger.LogRunFailed(run.TraceID, err)
		metrics.RecordRun(string(models.RunStatusFailed), time.Since(startTime).Seconds())
		return nil, fmt.Errorf("failed to persist run: %w", err)
	}
	s.publisher.Publish(run)
	s.logger.LogRunStarted(run.TraceID, len(in.RawText), len(in.Legs))

	var extracted []models.ExtractedLeg
	if len(in.Legs) > 0 {
		extracted = slip.FromParsed(in.Legs)
	} else {
		extracted = slip.Extract(in.RawText)
	}
	metrics.RecordLegsExtracted(len(extracted))

	trusted := s.trustedContext(ctx, run.TraceID, in.Trusted, extracted)
	enriched := s.enricher.Enrich(ctx, extracted)

	analysis, err := s.score(extracted, enriched, trusted)
	if err != nil {
		s.fail(ctx, run.TraceID, err)
		metrics.RecordRun(string(models.RunStatusFailed), time.Since(startTime).Seconds())
		return nil, err
	}
	s.logCap(run.TraceID, analysis)

	sources := models.AggregateSources(enriched)
	status := models.RunStatusComplete
	updated, err := s.repo.Update(ctx, run.TraceID, models.RunPatch{
		Status:        &status,
		ExtractedLegs: &extracted,
		EnrichedLegs:  &enriched,
		Sources:       &sources,
		Analysis:      &analysis,
		Trusted:       trusted,
	})
	if err != nil {
		s.logger.LogRunFailed(run.TraceID, err)
		metrics.RecordRun(string(models.RunStatusFailed), time.Since(startTime).Seconds())
		return nil, fmt.Errorf("failed to persist completed run: %w", err)
	}
	s.publisher.Publish(updated)

	duration := time.Since(startTime)
	metrics.RecordRun(string(models.RunStatusComplete), duration.Seconds())
	metrics.RecordVerdict(analysis.ConfidencePct)
	s.logger.LogRunCompleted(
		updated.TraceID,
		len(updated.ExtractedLegs),
		analysis.ConfidencePct,
		string(analysis.RiskLabel),
		derefOrEmpty(analysis.WeakestLegID),
		duration,
	)

	return updated, nil
}

// RemoveWeakest drops the current weakest leg and recomputes the verdict
// under the same trace id
func (s *RunService) RemoveWeakest(ctx context.Context, traceID string) (*models.Run, error) {
	run, err := s.completedRun(ctx, traceID)
	if err != nil {
		return nil, err
	}

	if run.Analysis.WeakestLegID == nil {
		return nil, models.ErrNoWeakestLeg
	}

	return s.removeLeg(ctx, run, *run.Analysis.WeakestLegID)
}

// RemoveLeg drops any leg by id and recomputes the verdict under the same trace id
func (s *RunService) RemoveLeg(ctx context.Context, traceID, legID string) (*models.Run, error) {
	run, err := s.completedRun(ctx, traceID)
	if err != nil {
		return nil, err
	}

	if _, ok := run.LegByID(legID); !ok {
		return nil, models.ErrLegNotFound
	}

	return s.removeLeg(ctx, run, legID)
}

// GetRun retrieves a run by trace id
func (s *RunService) GetRun(ctx context.Context, traceID string) (*models.Run, error) {
	if err := ValidateTraceID(traceID); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, traceID)
}

// ListRuns returns the most recent runs, newest first
func (s *RunService) ListRuns(ctx context.Context, limit int) ([]*models.Run, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	runs, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	if runs == nil {
		runs = []*models.Run{}
	}
	return runs, nil
}

// ReapStale marks runs stuck in running for longer than olderThan as failed
// and returns how many were reaped
func (s *RunService) ReapStale(ctx context.Context, olderThan time.Duration) (int, error) {
	stale, err := s.repo.ListStale(ctx, s.now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("failed to list stale runs: %w", err)
	}

	status := models.RunStatusFailed
	msg := staleRunError
	reaped := 0
	for _, run := range stale {
		updated, err := s.repo.Update(ctx, run.TraceID, models.RunPatch{Status: &status, Error: &msg})
		if err != nil {
			s.logger.WithError(err).WithField("trace_id", run.TraceID).Warn("Failed to reap stale run")
			continue
		}
		s.publisher.Publish(updated)
		reaped++
	}

	metrics.RecordStaleRunsReaped(reaped)
	s.logger.LogStaleRunsReaped(reaped, olderThan)

	return reaped, nil
}

// Ping checks the run store
func (s *RunService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// ValidateTraceID rejects ids that are not UUIDs
func ValidateTraceID(traceID string) error {
	if _, err := uuid.Parse(traceID); err != nil {
		return models.ErrInvalidTraceID
	}
	return nil
}

func (s *RunService) completedRun(ctx context.Context, traceID string) (*models.Run, error) {
	run, err := s.GetRun(ctx, traceID)
	if err != nil {
		return nil, err
	}
	if !run.IsComplete() {
		return nil, models.ErrRunNotComplete
	}
	return run, nil
}

func (s *RunService) removeLeg(ctx context.Context, run *models.Run, legID string) (*models.Run, error) {
	extracted := make([]models.ExtractedLeg, 0, len(run.ExtractedLegs))
	for _, leg := range run.ExtractedLegs {
		if leg.ID != legID {
			extracted = append(extracted, leg)
		}
	}

	enriched := make([]models.EnrichedLeg, 0, len(run.EnrichedLegs))
	for _, leg := range run.EnrichedLegs {
		if leg.ExtractedLegID != legID {
			enriched = append(enriched, leg)
		}
	}
	risk.ApplyAll(enriched)

	analysis, err := s.score(extracted, enriched, run.Trusted)
	if err != nil {
		s.fail(ctx, run.TraceID, err)
		return nil, err
	}
	s.logCap(run.TraceID, analysis)

	sources := models.AggregateSources(enriched)
	status := models.RunStatusComplete
	updated, err := s.repo.Update(ctx, run.TraceID, models.RunPatch{
		Status:        &status,
		ExtractedLegs: &extracted,
		EnrichedLegs:  &enriched,
		Sources:       &sources,
		Analysis:      &analysis,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist run after removing leg: %w", err)
	}
	s.publisher.Publish(updated)

	metrics.RecordLegRemoved()
	metrics.RecordVerdict(analysis.ConfidencePct)
	s.logger.LogLegRemoved(run.TraceID, legID, len(extracted), analysis.ConfidencePct)

	return updated, nil
}

func (s *RunService) score(extracted []models.ExtractedLeg, enriched []models.EnrichedLeg, trusted *models.TrustedContext) (models.VerdictAnalysis, error) {
	return verdict.ComputeVerdict(verdict.NewInput(extracted, enriched, trusted, s.now()))
}

// trustedContext prefers the request's context, then the provider. A
// provider error leaves coverage unset, which caps confidence hardest.
func (s *RunService) trustedContext(ctx context.Context, traceID string, requested *models.TrustedContext, legs []models.ExtractedLeg) *models.TrustedContext {
	if requested != nil || s.trusted == nil || len(legs) == 0 {
		return requested
	}

	tc, err := s.trusted.TrustedContext(ctx, legs)
	if err != nil {
		s.logger.WithError(err).WithField("trace_id", traceID).Warn("Trusted context unavailable")
		return nil
	}
	return tc
}

// fail records a scoring failure and marks the run failed
func (s *RunService) fail(ctx context.Context, traceID string, err error) {
	var invErr *verdict.InvariantError
	if errors.As(err, &invErr) {
		s.logger.LogInvariantViolation(traceID, invErr.Check, invErr.Detail)
		metrics.RecordInvariantViolation(invErr.Check)
		if s.panicOnInvariant {
			panic(err)
		}
	} else {
		s.logger.LogRunFailed(traceID, err)
	}

	status := models.RunStatusFailed
	msg := err.Error()
	updated, updErr := s.repo.Update(ctx, traceID, models.RunPatch{Status: &status, Error: &msg})
	if updErr != nil {
		s.logger.LogRunFailed(traceID, updErr)
		return
	}
	s.publisher.Publish(updated)
}

func (s *RunService) logCap(traceID string, analysis models.VerdictAnalysis) {
	dq := analysis.DataQuality
	if dq == nil || !dq.Capped {
		return
	}
	metrics.RecordConfidenceCapped(dq.CapRule)
	s.logger.LogConfidenceCapped(traceID, dq.CapRule, dq.Ceiling, dq.CapReason)
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
