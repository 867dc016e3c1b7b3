// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// SearchDepth selects the provider's search effort level.
type SearchDepth string

const (
	DepthBasic    SearchDepth = "basic"
	DepthAdvanced SearchDepth = "advanced"
)

// Recency restricts results to a trailing time window.
type Recency string

const (
	RecencyDay   Recency = "day"
	RecencyWeek  Recency = "week"
	RecencyMonth Recency = "month"
	RecencyYear  Recency = "year"
	RecencyNone  Recency = ""
)

// HTTPConfig holds shared HTTP settings for stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "position-finder/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the web-search stage. Fields map directly
// onto provider request parameters.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey authenticates against the search provider.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Depth selects basic or advanced search.
	Depth SearchDepth `json:"depth" yaml:"depth"`

	// MaxResults is the per-query result cap, clamped to [1,20].
	MaxResults int `json:"max_results" yaml:"max_results"`

	// IncludeRawContent asks the provider to return page content inline.
	IncludeRawContent bool `json:"include_raw_content" yaml:"include_raw_content"`

	// Recency restricts results to a trailing window; empty means no filter.
	Recency Recency `json:"recency,omitempty" yaml:"recency,omitempty"`

	// IncludeDomains limits results to these domains.
	IncludeDomains []string `json:"include_domains,omitempty" yaml:"include_domains,omitempty"`

	// ExcludeDomains removes results from these domains.
	ExcludeDomains []string `json:"exclude_domains,omitempty" yaml:"exclude_domains,omitempty"`

	// MaxRetries is the retry budget for rate-limited or transient failures
	// (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// RequestsPerSecond throttles calls to the provider (default 2).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
}

// FetchConfig holds settings for direct page fetches in the extraction stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxBodyBytes caps the page size read during direct fetch (default 2 MiB).
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes"`

	// MinContentLength is the shortest provider-supplied content accepted for
	// the first extraction tier (default 200 bytes).
	MinContentLength int `json:"min_content_length" yaml:"min_content_length"`
}

// AIConfig holds shared settings for stages that call the generative model.
type AIConfig struct {
	// Model is the model identifier (e.g. "gpt-4o-mini").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the model API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the API endpoint; empty means the provider default.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// MaxRetries is the retry budget for failed model calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// Timeout is the per-call timeout (default 60s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// RequestsPerSecond throttles calls to the model API (default 2).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
}

// ProfileConfig holds settings for research-interest extraction.
type ProfileConfig struct {
	// MaxInterests caps the extracted keyword list (default 8).
	MaxInterests int `json:"max_interests" yaml:"max_interests"`
}

// MatchConfig holds the scoring rubric's tunable weights.
type MatchConfig struct {
	// OverlapWeight scales the interest/description keyword overlap term.
	OverlapWeight float64 `json:"overlap_weight" yaml:"overlap_weight"`

	// HiringBoost is added when an explicit hiring phrase is present.
	HiringBoost float64 `json:"hiring_boost" yaml:"hiring_boost"`

	// HiringBoostImplicit is added for an implicit hiring signal.
	HiringBoostImplicit float64 `json:"hiring_boost_implicit" yaml:"hiring_boost_implicit"`

	// TierWeights maps extraction tiers to multiplicative discounts. Missing
	// entries fall back to the defaults (1.0, 0.85, 0.6).
	TierWeights map[ExtractionTier]float64 `json:"tier_weights,omitempty" yaml:"tier_weights,omitempty"`

	// UseModel routes scoring through a generative-model judgment call,
	// falling back to the rubric on malformed output.
	UseModel bool `json:"use_model" yaml:"use_model"`
}

// EnrichConfig holds settings for the supplementary-search stage.
type EnrichConfig struct {
	// MaxResultsPerQuery caps supplementary search results (default 3).
	MaxResultsPerQuery int `json:"max_results_per_query" yaml:"max_results_per_query"`

	// NameMatchRatio is the fraction of candidate name tokens that must appear
	// in a supplementary result before its link is accepted (default 0.5).
	NameMatchRatio float64 `json:"name_match_ratio" yaml:"name_match_ratio"`
}

// ConcurrencyConfig bounds parallelism per external dependency class.
type ConcurrencyConfig struct {
	// SearchCalls bounds concurrent search-provider calls (default 4).
	SearchCalls int `json:"search_calls" yaml:"search_calls"`

	// PageFetches bounds concurrent direct page fetches (default 8).
	PageFetches int `json:"page_fetches" yaml:"page_fetches"`

	// ModelCalls bounds concurrent generative-model calls (default 2).
	ModelCalls int `json:"model_calls" yaml:"model_calls"`
}

// AuditConfig holds settings for the run-telemetry store.
type AuditConfig struct {
	// Dir is the directory holding the audit database; empty disables auditing.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Search      SearchConfig      `json:"search" yaml:"search"`
	Fetch       FetchConfig       `json:"fetch" yaml:"fetch"`
	AI          AIConfig          `json:"ai" yaml:"ai"`
	Profile     ProfileConfig     `json:"profile" yaml:"profile"`
	Match       MatchConfig       `json:"match" yaml:"match"`
	Enrich      EnrichConfig      `json:"enrich" yaml:"enrich"`
	Concurrency ConcurrencyConfig `json:"concurrency" yaml:"concurrency"`
	Audit       AuditConfig       `json:"audit" yaml:"audit"`

	// MaxCandidates caps the final ranked list (default 10).
	MaxCandidates int `json:"max_candidates" yaml:"max_candidates"`
}
