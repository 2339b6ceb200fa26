package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

type RetryConfig struct {
	MaxAttempts       uint
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
}

func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:       3,
		InitialDelay:      500 * time.Millisecond,
		MaxDelay:          5 * time.Second,
		BackoffMultiplier: 2,
	}
}

type RetryHook interface {
	OnRetryAttempt(ctx context.Context, attempt uint, err error, nextDelay time.Duration)
	OnRetrySuccess(ctx context.Context, attempts uint, totalDuration time.Duration)
	OnRetryFailure(ctx context.Context, err error, attempts uint, totalDuration time.Duration)
}

type RetryOptions struct {
	Config         *RetryConfig
	CircuitBreaker *CircuitBreaker
	Retryable      func(error) bool
	Hooks          []RetryHook
}

// Retry runs fn until it succeeds, returns a non-retryable error, or the
// attempt budget is spent. An open circuit breaker fails the call immediately
// with ErrCircuitOpen.
func Retry[T any](ctx context.Context, opts RetryOptions, fn func(context.Context) (T, error)) (T, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultRetryConfig()
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.InitialDelay
	b.MaxInterval = cfg.MaxDelay
	if cfg.BackoffMultiplier > 0 {
		b.Multiplier = cfg.BackoffMultiplier
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = 1
	}

	start := time.Now()
	var attempts uint
	operation := func() (T, error) {
		attempts++
		var zero T

		if opts.CircuitBreaker != nil && !opts.CircuitBreaker.Allow() {
			return zero, backoff.Permanent(ErrCircuitOpen)
		}

		result, err := fn(ctx)
		if opts.CircuitBreaker != nil {
			opts.CircuitBreaker.RecordResult(err)
		}
		if err == nil {
			return result, nil
		}

		if opts.Retryable != nil && !opts.Retryable(err) {
			return zero, backoff.Permanent(err)
		}
		return zero, err
	}

	result, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(maxAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			for _, hook := range opts.Hooks {
				hook.OnRetryAttempt(ctx, attempts, err, next)
			}
		}),
	)

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Unwrap()
	}

	elapsed := time.Since(start)
	for _, hook := range opts.Hooks {
		if err != nil {
			hook.OnRetryFailure(ctx, err, attempts, elapsed)
		} else {
			hook.OnRetrySuccess(ctx, attempts, elapsed)
		}
	}

	return result, err
}
