// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RunStatus distinguishes an empty result list caused by a provider outage
// from a genuine absence of matches.
type RunStatus string

const (
	// StatusOK means the run completed and produced candidates.
	StatusOK RunStatus = "ok"

	// StatusNoResults means searches ran but no candidate survived
	// extraction and validation.
	StatusNoResults RunStatus = "no-results"

	// StatusSearchUnavailable means every search query failed after retries.
	StatusSearchUnavailable RunStatus = "search-unavailable"
)

// FinderResult is what the pipeline returns to its caller.
type FinderResult struct {
	// Candidates is the ranked list, capped at the configured maximum.
	Candidates []ProfessorCandidate `json:"candidates" yaml:"candidates"`

	// Status flags how the run ended; an empty list with StatusNoResults is a
	// valid, non-error outcome.
	Status RunStatus `json:"status" yaml:"status"`

	// Degradations lists recoverable failures absorbed during the run
	// (failed queries, skipped batches, scoring fallbacks). Telemetry only.
	Degradations []string `json:"degradations,omitempty" yaml:"degradations,omitempty"`
}
