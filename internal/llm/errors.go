// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"errors"
	"strings"
)

// Sentinel errors for provider failure classes.
var (
	// ErrAuth marks an invalid-credential failure. Fatal for the pipeline.
	ErrAuth = errors.New("invalid credentials")

	// ErrRateLimited marks a rate-limit response. Retryable with backoff.
	ErrRateLimited = errors.New("rate limited")
)

// Retryable reports whether a model-call error is worth another attempt.
// Auth failures are never retried; rate limits, timeouts, and transient
// network faults are.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAuth) {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	e := strings.ToLower(err.Error())
	switch {
	case strings.Contains(e, "429"), strings.Contains(e, "rate"):
		return true
	case strings.Contains(e, "timeout"), strings.Contains(e, "deadline"),
		strings.Contains(e, "temporarily"), strings.Contains(e, "unavailable"),
		strings.Contains(e, "connection"):
		return true
	case strings.Contains(e, "http 5"):
		return true
	default:
		return false
	}
}
