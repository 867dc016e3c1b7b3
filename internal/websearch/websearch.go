// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package websearch queries web search providers and normalizes their results.
package websearch

import (
	"context"

	"github.com/kowshik24/position-finder/pkg/types"
)

// Provider is the strategy interface for web search backends.
type Provider interface {
	// Name returns the provider identifier used in logs and degradations.
	Name() string

	// Search runs one query and returns ranked results. An empty slice with
	// a nil error means the provider answered but found nothing.
	Search(ctx context.Context, query types.SearchQuery) ([]types.SearchResult, error)
}
