// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SearchResult is one raw hit returned by the web-search provider. Results
// are ephemeral and never persisted past the request.
type SearchResult struct {
	// URL is the result page address.
	URL string `json:"url" yaml:"url"`

	// Title is the page title as reported by the provider.
	Title string `json:"title" yaml:"title"`

	// Snippet is the provider's short content excerpt.
	Snippet string `json:"snippet" yaml:"snippet"`

	// Rank is the provider-reported relevance position, 0 being best.
	Rank int `json:"rank" yaml:"rank"`

	// RawContent is the provider-supplied page content, when requested and
	// available. Feeds the first extraction tier.
	RawContent string `json:"raw_content,omitempty" yaml:"raw_content,omitempty"`
}

// ExtractionTier records which fallback level produced a page's text.
// Tiers are ordered by decreasing confidence.
type ExtractionTier string

const (
	// TierProviderContent means the search provider supplied the page text.
	TierProviderContent ExtractionTier = "provider-content"

	// TierDirectFetch means the page was fetched and reduced to text directly.
	TierDirectFetch ExtractionTier = "direct-fetch"

	// TierSnippetOnly means only the result title and snippet were available.
	TierSnippetOnly ExtractionTier = "snippet-only"
)

// AtLeast reports whether t carries confidence greater than or equal to other.
func (t ExtractionTier) AtLeast(other ExtractionTier) bool {
	return tierOrder(t) >= tierOrder(other)
}

func tierOrder(t ExtractionTier) int {
	switch t {
	case TierProviderContent:
		return 3
	case TierDirectFetch:
		return 2
	case TierSnippetOnly:
		return 1
	default:
		return 0
	}
}

// ExtractedContent is the resolved text for one search result, tagged with
// the tier that produced it.
type ExtractedContent struct {
	// SourceURL is the page the text was resolved from.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// Text is the resolved page text.
	Text string `json:"text" yaml:"text"`

	// Tier is the extraction tier actually used.
	Tier ExtractionTier `json:"tier" yaml:"tier"`
}
