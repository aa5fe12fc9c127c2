package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// RunLogger provides dedicated logging for slip runs.
type RunLogger struct {
	*logrus.Entry
}

// NewRunLogger creates a new run logger.
func NewRunLogger(baseLogger *logrus.Logger) *RunLogger {
	if baseLogger == nil {
		baseLogger = Discard()
	}
	return &RunLogger{
		Entry: baseLogger.WithField("component", "run"),
	}
}

// LogRunStarted logs a run entering the running state.
func (rl *RunLogger) LogRunStarted(traceID string, slipChars int, preParsedLegs int) {
	rl.WithFields(logrus.Fields{
		"trace_id":        traceID,
		"slip_chars":      slipChars,
		"pre_parsed_legs": preParsedLegs,
	}).Info("Run started")
}

// LogRunCompleted logs a completed verdict.
func (rl *RunLogger) LogRunCompleted(traceID string, legs int, confidencePct int, riskLabel string, weakestLegID string, duration time.Duration) {
	rl.WithFields(logrus.Fields{
		"trace_id":       traceID,
		"legs":           legs,
		"confidence_pct": confidencePct,
		"risk_label":     riskLabel,
		"weakest_leg_id": weakestLegID,
		"duration_ms":    duration.Milliseconds(),
	}).Info("Run completed")
}

// LogRunFailed logs a run transitioned to failed.
func (rl *RunLogger) LogRunFailed(traceID string, err error) {
	rl.WithFields(logrus.Fields{
		"trace_id": traceID,
	}).WithError(err).Error("Run failed")
}

// LogLegRemoved logs a leg dropped from a completed run.
func (rl *RunLogger) LogLegRemoved(traceID, legID string, remainingLegs int, confidencePct int) {
	rl.WithFields(logrus.Fields{
		"trace_id":       traceID,
		"leg_id":         legID,
		"remaining_legs": remainingLegs,
		"confidence_pct": confidencePct,
	}).Info("Leg removed and run rescored")
}

// LogInvariantViolation logs a verdict that contradicted its own scores.
func (rl *RunLogger) LogInvariantViolation(traceID, check, detail string) {
	rl.WithFields(logrus.Fields{
		"trace_id": traceID,
		"check":    check,
		"detail":   detail,
	}).Error("Verdict invariant violated")
}

// LogConfidenceCapped logs a verdict lowered by the data-quality ceiling.
func (rl *RunLogger) LogConfidenceCapped(traceID, rule string, ceiling int, reason string) {
	rl.WithFields(logrus.Fields{
		"trace_id": traceID,
		"cap_rule": rule,
		"ceiling":  ceiling,
		"reason":   reason,
	}).Debug("Confidence capped")
}

// LogStaleRunsReaped logs a reaper pass.
func (rl *RunLogger) LogStaleRunsReaped(count int, olderThan time.Duration) {
	rl.WithFields(logrus.Fields{
		"count":      count,
		"older_than": olderThan.String(),
	}).Info("Stale runs reaped")
}
