// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package queryplan turns a student profile into a deduplicated set of
// targeted search queries.
package queryplan

import (
	"strings"

	"github.com/kowshik24/position-finder/pkg/types"
)

// hintTerms bias the search toward faculty hiring pages.
var hintTerms = []string{"professor", "faculty", "hiring graduate students"}

// broadHint is appended to the combined all-interests query.
const broadHint = "faculty openings PhD positions"

// maxFallbackQueryLen bounds the raw-CV fallback query.
const maxFallbackQueryLen = 160

// Plan builds one query per (interest, scope) combination plus one broad
// query combining all interests. Queries are deduplicated by case-insensitive
// exact match, and at least one query is always produced: when the profile
// carries no interests the CV text itself, truncated, becomes the query.
func Plan(p types.StudentProfile) []types.SearchQuery {
	scope := strings.TrimSpace(p.TargetUniversity)
	if p.TargetDepartment != "" {
		scope = strings.TrimSpace(scope + " " + p.TargetDepartment)
	}

	var queries []types.SearchQuery

	for _, interest := range p.Interests {
		for _, hint := range hintTerms {
			text := joinTerms(interest, scope, hint)
			queries = append(queries, types.SearchQuery{
				Text:       text,
				Provenance: "interest:" + interest + provenanceScope(scope),
			})
		}
	}

	if len(p.Interests) > 0 {
		combined := strings.Join(p.Interests, " ")
		queries = append(queries, types.SearchQuery{
			Text:       joinTerms(combined, scope, broadHint),
			Provenance: "broad" + provenanceScope(scope),
		})
	}

	queries = dedupe(queries)

	if len(queries) == 0 {
		text := strings.Join(strings.Fields(p.CVText), " ")
		if len(text) > maxFallbackQueryLen {
			text = text[:maxFallbackQueryLen]
		}
		if text == "" {
			text = "professor hiring graduate students"
		}
		queries = append(queries, types.SearchQuery{
			Text:       joinTerms(text, scope, "professor faculty"),
			Provenance: "cv-fallback" + provenanceScope(scope),
		})
	}

	return queries
}

func joinTerms(terms ...string) string {
	var parts []string
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func provenanceScope(scope string) string {
	if scope == "" {
		return "+open"
	}
	return "+university"
}

// dedupe removes queries whose text matches case-insensitively, keeping the
// first occurrence.
func dedupe(queries []types.SearchQuery) []types.SearchQuery {
	seen := make(map[string]bool, len(queries))
	var out []types.SearchQuery
	for _, q := range queries {
		key := strings.ToLower(strings.TrimSpace(q.Text))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, q)
	}
	return out
}
