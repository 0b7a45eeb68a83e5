package singleton

import (
	"time"

	"github.com/kbukum/lazykit/logger"
	"github.com/kbukum/lazykit/resilience"
)

// retryConfig chains a debug log in front of cfg.OnRetry.
func retryConfig(cfg resilience.RetryConfig, log *logger.Logger, name string) resilience.RetryConfig {
	next := cfg.OnRetry
	cfg.OnRetry = func(attempt int, err error, backoff time.Duration) {
		log.Debug("retrying constructor", logger.Fields(
			logger.FieldProvider, name,
			"retry", attempt,
			"backoff_ms", backoff.Milliseconds(),
			logger.FieldError, err.Error(),
		))
		if next != nil {
			next(attempt, err, backoff)
		}
	}
	return cfg
}
