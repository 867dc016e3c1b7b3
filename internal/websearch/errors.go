// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package websearch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrAuth marks a rejected API key. Never retried; the caller should
// surface a configuration problem instead of degrading.
var ErrAuth = errors.New("search provider rejected credentials")

// ErrRateLimited marks provider throttling. Retried with backoff.
var ErrRateLimited = errors.New("search provider rate limited")

// SearchError wraps a per-query provider failure. It is recoverable: the
// pipeline records it as a degradation and continues with other queries.
type SearchError struct {
	Provider string
	Query    string
	Err      error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("%s search for %q: %v", e.Provider, e.Query, e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }

// retryable reports whether a provider error is worth another attempt.
func retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAuth) {
		return false
	}
	if errors.Is(err, ErrRateLimited) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"timeout", "temporarily", "unavailable", "connection re", "http 5"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
