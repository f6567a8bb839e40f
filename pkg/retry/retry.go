// Package retry re-runs transient-failure operations with exponential
// backoff. Only download fetches retry; the flat pacing used by removal and
// upscale loops lives in pkg/ratelimit and never grows.
package retry

import (
	"context"
	"time"

	"grokfaves/pkg/errors"
	"grokfaves/pkg/logger"
)

// Operation is a function that may need retrying.
type Operation func() error

// Config holds retry behavior.
type Config struct {
	// MaxAttempts caps total attempts, including the first.
	MaxAttempts int
	// InitialDelay is the wait before the first retry.
	InitialDelay time.Duration
	// Multiplier grows the delay after each attempt.
	Multiplier float64
	// MaxDelay caps the grown delay.
	MaxDelay time.Duration
	// RetryIf decides whether an error is worth another attempt.
	RetryIf func(error) bool
}

// DefaultConfig retries transient errors up to three attempts.
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		Multiplier:   2.0,
		MaxDelay:     30 * time.Second,
		RetryIf:      errors.IsRetryable,
	}
}

// Do runs op until it succeeds, exhausts attempts, hits a non-retryable
// error, or the context is cancelled. The last error is returned.
func Do(ctx context.Context, cfg *Config, op Operation) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	delay := cfg.InitialDelay
	var lastErr error
	for attempt := 1; cfg.MaxAttempts <= 0 || attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if cfg.RetryIf != nil && !cfg.RetryIf(lastErr) {
			return lastErr
		}
		if cfg.MaxAttempts > 0 && attempt == cfg.MaxAttempts {
			break
		}

		logger.GetLogger().WarnWithFields("retrying after failure", map[string]interface{}{
			"attempt": attempt,
			"delay":   delay,
			"error":   lastErr.Error(),
		})

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
	return lastErr
}
