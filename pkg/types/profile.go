// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the position-finder pipeline.
package types

// StudentProfile describes the prospective student the pipeline searches on
// behalf of. It is built once per request and not mutated afterwards.
type StudentProfile struct {
	// CVText is the free-text CV or resume supplied by the caller.
	CVText string `json:"cv_text" yaml:"cv_text"`

	// Interests holds research-interest keywords derived from the CV,
	// ordered by extraction priority and deduplicated.
	Interests []string `json:"interests" yaml:"interests"`

	// TargetUniversity optionally narrows the search to one institution.
	TargetUniversity string `json:"target_university,omitempty" yaml:"target_university,omitempty"`

	// TargetDepartment optionally narrows the search to one department.
	TargetDepartment string `json:"target_department,omitempty" yaml:"target_department,omitempty"`
}

// SearchQuery is one targeted query produced by the planner.
type SearchQuery struct {
	// Text is the query string sent to the search provider.
	Text string `json:"text" yaml:"text"`

	// Provenance tags which interest/scope combination generated the query
	// (e.g. "interest:reinforcement learning+university").
	Provenance string `json:"provenance" yaml:"provenance"`
}
