// Package errors provides error types, handling utilities, and retry logic for lazycommit.
package errors

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// RetryConfig contains configuration for transport retries.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       bool // +/-25% random spread
}

// DefaultRetryConfig returns the retry policy used for model requests.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// RetryFunc is a function that can be retried.
type RetryFunc func(ctx context.Context) error

// RetryCallback is invoked before each retry with the 1-based attempt that failed.
type RetryCallback func(attempt int, err error, delay time.Duration)

// Retry executes fn until it succeeds, returns a non-retryable error,
// or MaxAttempts is reached. Only errors reporting IsRetryable are retried.
func Retry(ctx context.Context, config RetryConfig, fn RetryFunc) error {
	return RetryWithNotify(ctx, config, fn, func(attempt int, err error, delay time.Duration) {
		LogRetry(attempt, config.MaxAttempts, err, delay)
	})
}

// RetryWithNotify is Retry with a caller-supplied notification hook.
func RetryWithNotify(ctx context.Context, config RetryConfig, fn RetryFunc, notify RetryCallback) error {
	attempts := config.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == attempts-1 {
			break
		}

		delay := retryDelay(config, attempt, lastErr)
		if notify != nil {
			notify(attempt+1, lastErr, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return lastErr
}

// retryDelay honours a server-provided Retry-After up to MaxDelay, otherwise
// backs off exponentially.
func retryDelay(config RetryConfig, attempt int, err error) time.Duration {
	if retryAfter := GetRetryAfter(err); retryAfter > 0 {
		if config.MaxDelay > 0 && retryAfter > config.MaxDelay {
			return config.MaxDelay
		}
		return retryAfter
	}

	delay := float64(config.InitialDelay) * math.Pow(config.Multiplier, float64(attempt))
	if delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}
	if config.Jitter {
		delay += delay * 0.25 * (rand.Float64()*2 - 1)
	}

	return time.Duration(delay)
}
