package logger

import (
	"github.com/sirupsen/logrus"
)

// ProviderLogger logs enrichment provider events.
type ProviderLogger struct {
	*logrus.Entry
}

// NewProviderLogger creates a new provider logger.
func NewProviderLogger(baseLogger *logrus.Logger) *ProviderLogger {
	if baseLogger == nil {
		baseLogger = Discard()
	}
	return &ProviderLogger{
		Entry: baseLogger.WithField("component", "enrichment"),
	}
}

// LogProviderFallback logs a provider error that was replaced by the fallback adapter.
func (pl *ProviderLogger) LogProviderFallback(source, legID string, err error) {
	pl.WithFields(logrus.Fields{
		"source": source,
		"leg_id": legID,
	}).WithError(err).Warn("Provider failed, using fallback")
}

// LogCircuitBreakerOpened logs the HTTP client tripping its breaker.
func (pl *ProviderLogger) LogCircuitBreakerOpened(consecutiveErrors int, err error) {
	pl.WithFields(logrus.Fields{
		"consecutive_errors": consecutiveErrors,
	}).WithError(err).Error("Circuit breaker opened")
}
