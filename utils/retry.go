package utils

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// RetryConfig holds the parameters for the retry strategy.
// Delay before attempt n+1 is BaseDelay*2^(n-1) plus a random jitter in [0, MaxJitter].
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxJitter   time.Duration
	Logger      *Logger
}

// DefaultRetry returns the policy used for external calls: 3 attempts,
// 1s → 2s → 4s back-off, up to 500ms jitter.
func DefaultRetry(logger *Logger) *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxJitter:   500 * time.Millisecond,
		Logger:      logger,
	}
}

// Do executes fn with exponential back-off retry logic.
// The error of the final attempt is wrapped and returned.
func (r *RetryConfig) Do(ctx context.Context, operationName string, fn func(ctx context.Context) error) error {
	var lastErr error
	delay := r.BaseDelay
	attempts := r.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if attempt < attempts {
			wait := delay + r.jitter()
			if r.Logger != nil {
				r.Logger.Warn("[retry] %s failed (attempt %d/%d): %v, retrying in %v",
					operationName, attempt, attempts, lastErr, wait)
			}
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s aborted after %d attempts: %w", operationName, attempt, lastErr)
			case <-time.After(wait):
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, attempts, lastErr)
}

func (r *RetryConfig) jitter() time.Duration {
	if r.MaxJitter <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(r.MaxJitter) + 1))
}
