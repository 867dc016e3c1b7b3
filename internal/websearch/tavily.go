// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/kowshik24/position-finder/internal/fallback"
	"github.com/kowshik24/position-finder/pkg/types"
)

// tavilyAPIBase is the Tavily search endpoint. Declared as a var so tests
// can substitute an httptest server.
var tavilyAPIBase = "https://api.tavily.com/search"

// TavilyProvider queries the Tavily search API.
type TavilyProvider struct {
	cfg     types.SearchConfig
	client  *http.Client
	limiter *rate.Limiter
	retry   fallback.RetryPolicy
}

// NewTavilyProvider builds a provider from config, filling defaults for
// unset fields.
func NewTavilyProvider(cfg types.SearchConfig) *TavilyProvider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 10
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	return &TavilyProvider{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		retry:   fallback.RetryPolicy{MaxAttempts: cfg.MaxRetries, Retryable: retryable},
	}
}

// Name returns the provider identifier.
func (p *TavilyProvider) Name() string { return "tavily" }

// Search runs one query against Tavily. Transient failures are retried
// with backoff; a rejected key fails immediately with ErrAuth.
func (p *TavilyProvider) Search(ctx context.Context, query types.SearchQuery) ([]types.SearchResult, error) {
	results, err := fallback.Retry(ctx, p.retry, func(ctx context.Context) ([]types.SearchResult, error) {
		return p.searchOnce(ctx, query.Text)
	})
	if err != nil {
		return nil, &SearchError{Provider: p.Name(), Query: query.Text, Err: err}
	}
	return results, nil
}

func (p *TavilyProvider) searchOnce(ctx context.Context, query string) ([]types.SearchResult, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body := tavilyRequest{
		APIKey:            p.cfg.APIKey,
		Query:             query,
		SearchDepth:       string(p.cfg.Depth),
		MaxResults:        p.cfg.MaxResults,
		IncludeRawContent: p.cfg.IncludeRawContent,
		TimeRange:         string(p.cfg.Recency),
		IncludeDomains:    p.cfg.IncludeDomains,
		ExcludeDomains:    p.cfg.ExcludeDomains,
	}
	if body.SearchDepth == "" {
		body.SearchDepth = string(types.DepthBasic)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tavilyAPIBase, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", p.cfg.UserAgent)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w (HTTP %d)", ErrAuth, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w (HTTP 429)", ErrRateLimited)
	case resp.StatusCode != http.StatusOK:
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search API returned HTTP %d: %s", resp.StatusCode, excerpt)
	}

	var tr tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	results := make([]types.SearchResult, 0, len(tr.Results))
	for i, r := range tr.Results {
		if r.URL == "" {
			continue
		}
		results = append(results, types.SearchResult{
			URL:        r.URL,
			Title:      r.Title,
			Snippet:    r.Content,
			RawContent: r.RawContent,
			Rank:       i,
		})
	}
	return results, nil
}

// Tavily API JSON structures.
type tavilyRequest struct {
	APIKey            string   `json:"api_key"`
	Query             string   `json:"query"`
	SearchDepth       string   `json:"search_depth"`
	MaxResults        int      `json:"max_results"`
	IncludeRawContent bool     `json:"include_raw_content"`
	TimeRange         string   `json:"time_range,omitempty"`
	IncludeDomains    []string `json:"include_domains,omitempty"`
	ExcludeDomains    []string `json:"exclude_domains,omitempty"`
}

type tavilyResponse struct {
	Query   string         `json:"query"`
	Results []tavilyResult `json:"results"`
}

type tavilyResult struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Content    string  `json:"content"`
	RawContent string  `json:"raw_content"`
	Score      float64 `json:"score"`
}
