package ai

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/lazycommit/lazycommit/internal/pkg/errors"
	"github.com/sony/gobreaker"
)

// BreakerSettings configures the circuit breaker around endpoint requests.
type BreakerSettings struct {
	// FailureThreshold is the number of consecutive endpoint failures that opens the circuit.
	// It should not exceed the retry attempts, or a single call can never trip it.
	FailureThreshold uint32
	// OpenTimeout is how long the circuit stays open before a trial request.
	OpenTimeout time.Duration
	// HalfOpenRequests is the number of trial requests allowed while half-open.
	HalfOpenRequests uint32
}

// DefaultBreakerSettings returns the breaker used for model endpoints.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		FailureThreshold: 2,
		OpenTimeout:      60 * time.Second,
		HalfOpenRequests: 1,
	}
}

// Breaker guards the individual HTTP attempts of one provider. Once open,
// the remaining retries and repair rounds fail without touching the network.
type Breaker struct {
	name string
	cb   *gobreaker.CircuitBreaker
}

// NewBreaker creates a breaker for the named provider.
func NewBreaker(name string, settings BreakerSettings) *Breaker {
	threshold := settings.FailureThreshold
	if threshold == 0 {
		threshold = 1
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: settings.HalfOpenRequests,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			apperrors.LogCircuitBreaker(name, from.String(), to.String())
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !isEndpointFailure(err)
		},
	})

	return &Breaker{name: name, cb: cb}
}

// isEndpointFailure reports errors that say the endpoint itself is unhealthy.
// Authentication problems and cancelled runs do not count.
func isEndpointFailure(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	switch {
	case apperrors.Is(err, apperrors.ErrModelUnavailable),
		apperrors.Is(err, apperrors.ErrTimeout),
		apperrors.Is(err, apperrors.ErrRateLimited):
		return true
	default:
		return false
	}
}

// State returns the current breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// Do runs one request attempt. A nil Breaker runs attempt directly.
// When the circuit is open, or this attempt opened it, the error is not
// retryable so the caller skips its remaining backoff.
func (b *Breaker) Do(attempt func() error) error {
	if b == nil {
		return attempt()
	}

	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, attempt()
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return b.openError(err)
	case apperrors.IsRetryable(err) && b.cb.State() == gobreaker.StateOpen:
		return b.openError(err)
	default:
		return err
	}
}

func (b *Breaker) openError(cause error) error {
	return apperrors.NewModelUnavailableError(b.name, cause).
		WithSuggestion("The endpoint failed repeatedly; wait a minute and try again")
}
