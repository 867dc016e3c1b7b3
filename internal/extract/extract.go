// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract obtains page text for search results through a tiered
// fallback chain. Extraction is total: every result yields some content,
// even if only the title and snippet.
package extract

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kowshik24/position-finder/internal/fallback"
	"github.com/kowshik24/position-finder/pkg/types"
)

// Extractor resolves a search result to page text, preferring richer
// sources and degrading gracefully.
type Extractor struct {
	cfg     types.FetchConfig
	fetcher *pageFetcher
}

// NewExtractor builds an Extractor, filling defaults for unset config fields.
func NewExtractor(cfg types.FetchConfig) *Extractor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 2 << 20
	}
	if cfg.MinContentLength <= 0 {
		cfg.MinContentLength = 200
	}
	return &Extractor{
		cfg: cfg,
		fetcher: &pageFetcher{
			client:       &http.Client{Timeout: cfg.Timeout},
			userAgent:    cfg.UserAgent,
			maxBodyBytes: cfg.MaxBodyBytes,
		},
	}
}

// Extract returns content for one search result. The chain tries
// provider-supplied content, then a direct page fetch, then falls back to
// the title and snippet. The last tier cannot fail, so Extract never
// returns an error for reachable results; only context cancellation
// propagates.
func (e *Extractor) Extract(ctx context.Context, result types.SearchResult) (types.ExtractedContent, error) {
	content, tierName, err := fallback.Chain(ctx, []fallback.Strategy[string]{
		{Name: string(types.TierProviderContent), Run: func(ctx context.Context) (string, error) {
			return e.providerContent(result)
		}},
		{Name: string(types.TierDirectFetch), Run: func(ctx context.Context) (string, error) {
			return e.directFetch(ctx, result.URL)
		}},
		{Name: string(types.TierSnippetOnly), Run: func(ctx context.Context) (string, error) {
			return snippetContent(result), nil
		}},
	})
	if err != nil {
		if ctx.Err() != nil {
			return types.ExtractedContent{}, ctx.Err()
		}
		// Unreachable in practice: the snippet tier always succeeds.
		return types.ExtractedContent{}, err
	}

	return types.ExtractedContent{
		SourceURL: result.URL,
		Text:      content,
		Tier:      types.ExtractionTier(tierName),
	}, nil
}

// providerContent accepts inline content from the search provider when it
// is substantial enough to extract candidates from.
func (e *Extractor) providerContent(result types.SearchResult) (string, error) {
	text := collapseWhitespace(result.RawContent)
	if len(text) < e.cfg.MinContentLength {
		return "", fmt.Errorf("provider content too short (%d bytes)", len(text))
	}
	return text, nil
}

// directFetch downloads the page and strips it to visible text.
func (e *Extractor) directFetch(ctx context.Context, pageURL string) (string, error) {
	text, err := e.fetcher.fetchText(ctx, pageURL)
	if err != nil {
		return "", err
	}
	if len(text) < e.cfg.MinContentLength {
		return "", fmt.Errorf("fetched page too short (%d bytes)", len(text))
	}
	return text, nil
}

// snippetContent is the terminal tier: title plus snippet, whatever the
// provider gave us.
func snippetContent(result types.SearchResult) string {
	var parts []string
	if result.Title != "" {
		parts = append(parts, result.Title)
	}
	if result.Snippet != "" {
		parts = append(parts, result.Snippet)
	}
	return strings.Join(parts, "\n")
}

// collapseWhitespace normalizes runs of whitespace to single spaces while
// keeping line breaks between blocks.
func collapseWhitespace(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 {
			lines = append(lines, strings.Join(fields, " "))
		}
	}
	return strings.Join(lines, "\n")
}
