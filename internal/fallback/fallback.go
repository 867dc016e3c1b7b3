// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fallback provides the shared attempt-with-fallback-chain and retry
// primitives used by the search and extraction stages.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// Strategy is one ordered attempt in a chain. A strategy either produces a
// value or fails, letting the next strategy run.
type Strategy[T any] struct {
	// Name identifies the strategy in errors and telemetry.
	Name string

	// Run attempts to produce a value.
	Run func(ctx context.Context) (T, error)
}

// ErrExhausted is returned when every strategy in a chain failed.
var ErrExhausted = errors.New("all fallback strategies failed")

// Chain runs strategies in order and returns the first success along with the
// name of the strategy that produced it. When every strategy fails it returns
// ErrExhausted wrapped with each strategy's failure.
func Chain[T any](ctx context.Context, strategies []Strategy[T]) (T, string, error) {
	var zero T
	var failures []error

	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			return zero, "", err
		}
		v, err := s.Run(ctx)
		if err == nil {
			return v, s.Name, nil
		}
		failures = append(failures, fmt.Errorf("%s: %w", s.Name, err))
	}

	return zero, "", fmt.Errorf("%w: %w", ErrExhausted, errors.Join(failures...))
}

// RetryPolicy controls Retry's backoff schedule.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first
	// (default 3).
	MaxAttempts int

	// BaseDelay is the first backoff duration; it doubles per attempt
	// (default 500ms). Tests shrink this to avoid real sleeps.
	BaseDelay time.Duration

	// Retryable reports whether an error is worth another attempt. A nil
	// Retryable retries everything.
	Retryable func(error) bool
}

func (p RetryPolicy) normalize() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = 500 * time.Millisecond
	}
	return p
}

// Retry runs fn with bounded exponential backoff. Non-retryable errors and
// context cancellation end the loop immediately; otherwise the last error is
// returned after the attempt budget is spent.
func Retry[T any](ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	policy = policy.normalize()

	var zero T
	var lastErr error

	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * policy.BaseDelay
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(backoff):
			}
		}

		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if policy.Retryable != nil && !policy.Retryable(err) {
			return zero, err
		}
	}

	return zero, fmt.Errorf("after %d attempts: %w", policy.MaxAttempts, lastErr)
}
