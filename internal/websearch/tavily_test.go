package websearch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kowshik24/position-finder/internal/fallback"
	"github.com/kowshik24/position-finder/pkg/types"
)

func testSearchCfg() types.SearchConfig {
	return types.SearchConfig{
		APIKey:            "tvly-test",
		MaxResults:        5,
		IncludeRawContent: true,
		MaxRetries:        1,
		RequestsPerSecond: 1000,
	}
}

func newTestProvider(t *testing.T, handler http.HandlerFunc) *TavilyProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	old := tavilyAPIBase
	tavilyAPIBase = server.URL
	t.Cleanup(func() { tavilyAPIBase = old })

	return NewTavilyProvider(testSearchCfg())
}

func TestTavilySearchDecodesResults(t *testing.T) {
	var gotReq tavilyRequest
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(tavilyResponse{
			Results: []tavilyResult{
				{Title: "Prof. Chen — Robotics Lab", URL: "https://acme.edu/chen", Content: "snippet", RawContent: "full page"},
				{Title: "missing url", URL: ""},
				{Title: "Dept directory", URL: "https://acme.edu/faculty", Content: "list"},
			},
		})
	})

	results, err := p.Search(context.Background(), types.SearchQuery{Text: "robotics Acme University faculty"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].URL != "https://acme.edu/chen" || results[0].RawContent != "full page" {
		t.Errorf("results[0] = %+v", results[0])
	}
	if results[1].Rank != 2 {
		t.Errorf("Rank = %d, want provider order preserved", results[1].Rank)
	}

	if gotReq.APIKey != "tvly-test" {
		t.Errorf("api_key = %q", gotReq.APIKey)
	}
	if gotReq.SearchDepth != string(types.DepthBasic) {
		t.Errorf("search_depth = %q, want default basic", gotReq.SearchDepth)
	}
	if !gotReq.IncludeRawContent {
		t.Error("include_raw_content not forwarded")
	}
}

func TestTavilySearchEmptyResults(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(tavilyResponse{})
	})

	results, err := p.Search(context.Background(), types.SearchQuery{Text: "q"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("len(results) = %d, want 0", len(results))
	}
}

func TestTavilySearchAuthFailureNotRetried(t *testing.T) {
	calls := 0
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	})
	p.retry = fallback.RetryPolicy{MaxAttempts: 3, BaseDelay: 1, Retryable: retryable}

	_, err := p.Search(context.Background(), types.SearchQuery{Text: "q"})
	if !errors.Is(err, ErrAuth) {
		t.Fatalf("want ErrAuth, got %v", err)
	}
	var searchErr *SearchError
	if !errors.As(err, &searchErr) {
		t.Fatalf("want *SearchError, got %T", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on auth failure)", calls)
	}
}

func TestTavilySearchRetriesServerErrors(t *testing.T) {
	calls := 0
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(tavilyResponse{
			Results: []tavilyResult{{Title: "ok", URL: "https://acme.edu"}},
		})
	})
	p.retry = fallback.RetryPolicy{MaxAttempts: 2, BaseDelay: 1, Retryable: retryable}

	results, err := p.Search(context.Background(), types.SearchQuery{Text: "q"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 || calls != 2 {
		t.Errorf("results = %v, calls = %d", results, calls)
	}
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"auth", ErrAuth, false},
		{"rate limited", ErrRateLimited, true},
		{"server error", errors.New("search API returned HTTP 503: busy"), true},
		{"decode failure", errors.New("parsing search response: unexpected EOF"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := retryable(tc.err); got != tc.want {
				t.Errorf("retryable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
