// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich fills missing candidate links through supplementary
// searches. Enrichment is strictly additive: it never overwrites data that
// an equal or higher confidence source already provided, and a fruitless
// search leaves the candidate untouched.
package enrich

import (
	"context"
	"strings"

	"github.com/kowshik24/position-finder/internal/candidates"
	"github.com/kowshik24/position-finder/internal/websearch"
	"github.com/kowshik24/position-finder/pkg/types"
)

// fieldHints maps each enrichable link field to its query hint.
var fieldHints = []struct {
	field string
	hint  string
}{
	{types.FieldLabSite, "lab website"},
	{types.FieldScholarProfile, "Google Scholar profile"},
	{types.FieldNetworkProfile, "LinkedIn"},
}

// Enricher runs supplementary link searches for ranked candidates.
type Enricher struct {
	provider websearch.Provider
	cfg      types.EnrichConfig
}

func NewEnricher(provider websearch.Provider, cfg types.EnrichConfig) *Enricher {
	if cfg.MaxResultsPerQuery <= 0 {
		cfg.MaxResultsPerQuery = 3
	}
	if cfg.NameMatchRatio <= 0 {
		cfg.NameMatchRatio = 0.5
	}
	return &Enricher{provider: provider, cfg: cfg}
}

// EnrichAll enriches each candidate in place and returns recoverable search
// degradations. Candidates whose links are already complete trigger no
// searches, so a second pass is a no-op.
func (e *Enricher) EnrichAll(ctx context.Context, list []types.ProfessorCandidate) []string {
	var degradations []string
	for i := range list {
		if err := ctx.Err(); err != nil {
			return degradations
		}
		degradations = append(degradations, e.enrich(ctx, &list[i])...)
	}
	return degradations
}

func (e *Enricher) enrich(ctx context.Context, c *types.ProfessorCandidate) []string {
	var degradations []string
	for _, fh := range fieldHints {
		if linkFor(c, fh.field) != "" {
			continue
		}

		query := types.SearchQuery{
			Text:       c.Name + " " + c.University + " " + fh.hint,
			Provenance: "enrich:" + fh.field,
		}
		results, err := e.provider.Search(ctx, query)
		if err != nil {
			degradations = append(degradations, err.Error())
			continue
		}

		if len(results) > e.cfg.MaxResultsPerQuery {
			results = results[:e.cfg.MaxResultsPerQuery]
		}
		for _, r := range results {
			if !e.matchesName(c.Name, r) {
				continue
			}
			setLink(c, fh.field, r.URL)
			break
		}
	}
	return degradations
}

// matchesName requires a minimum fraction of the candidate's name tokens in
// the result's title or snippet before trusting a supplementary link.
func (e *Enricher) matchesName(name string, r types.SearchResult) bool {
	tokens := strings.Fields(candidates.NormalizeName(name))
	if len(tokens) == 0 {
		return false
	}
	haystack := strings.ToLower(r.Title + " " + r.Snippet)
	hits := 0
	for _, tok := range tokens {
		if strings.Contains(haystack, tok) {
			hits++
		}
	}
	return float64(hits)/float64(len(tokens)) >= e.cfg.NameMatchRatio
}

func linkFor(c *types.ProfessorCandidate, field string) string {
	switch field {
	case types.FieldLabSite:
		return c.Links.LabSite
	case types.FieldScholarProfile:
		return c.Links.ScholarProfile
	case types.FieldNetworkProfile:
		return c.Links.NetworkProfile
	}
	return ""
}

// setLink records an enriched link at snippet confidence: the URL comes from
// result metadata, not extracted page content.
func setLink(c *types.ProfessorCandidate, field, url string) {
	switch field {
	case types.FieldLabSite:
		c.Links.LabSite = url
	case types.FieldScholarProfile:
		c.Links.ScholarProfile = url
	case types.FieldNetworkProfile:
		c.Links.NetworkProfile = url
	}
	if c.FieldTiers == nil {
		c.FieldTiers = make(map[string]types.ExtractionTier)
	}
	c.FieldTiers[field] = types.TierSnippetOnly
}
