// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// HiringStatus classifies the hiring signal found for a candidate.
type HiringStatus string

const (
	// HiringExplicit means the source text contains an explicit hiring phrase
	// (e.g. "accepting PhD students for Fall 2026").
	HiringExplicit HiringStatus = "explicit"

	// HiringImplicit means the source hints at openings without stating them
	// (e.g. an active lab page listing open projects).
	HiringImplicit HiringStatus = "implicit"

	// HiringUnknown means no hiring signal was found.
	HiringUnknown HiringStatus = "unknown"
)

// Link field names used for per-field confidence tracking.
const (
	FieldLabSite        = "lab_site"
	FieldScholarProfile = "scholar_profile"
	FieldNetworkProfile = "network_profile"
)

// CandidateLinks holds the optional discoverable links for a candidate.
type CandidateLinks struct {
	// LabSite is the personal or lab website.
	LabSite string `json:"lab_site,omitempty" yaml:"lab_site,omitempty"`

	// ScholarProfile is the publication/citation profile page.
	ScholarProfile string `json:"scholar_profile,omitempty" yaml:"scholar_profile,omitempty"`

	// NetworkProfile is the professional networking profile page.
	NetworkProfile string `json:"network_profile,omitempty" yaml:"network_profile,omitempty"`
}

// ProfessorCandidate is one faculty record produced by the pipeline.
type ProfessorCandidate struct {
	// Name is the candidate's full name, possibly with title.
	Name string `json:"name" yaml:"name"`

	// University is the institution the candidate belongs to.
	University string `json:"university" yaml:"university"`

	// Department is the department or lab affiliation, when known.
	Department string `json:"department,omitempty" yaml:"department,omitempty"`

	// ResearchAreas describes the candidate's research focus.
	ResearchAreas string `json:"research_areas,omitempty" yaml:"research_areas,omitempty"`

	// Hiring is the hiring-status signal found in the source text.
	Hiring HiringStatus `json:"hiring" yaml:"hiring"`

	// HiringPhrase is the explicit hiring phrase, when one was found.
	HiringPhrase string `json:"hiring_phrase,omitempty" yaml:"hiring_phrase,omitempty"`

	// Links holds the optional discoverable links.
	Links CandidateLinks `json:"links" yaml:"links"`

	// Score is the match score against the student profile, in [0,1].
	Score float64 `json:"score" yaml:"score"`

	// Rationale is a short explanation of the score.
	Rationale string `json:"rationale,omitempty" yaml:"rationale,omitempty"`

	// Sources lists the contributing source URLs, sorted.
	Sources []string `json:"sources" yaml:"sources"`

	// Tier is the highest extraction tier among contributing sources.
	Tier ExtractionTier `json:"tier" yaml:"tier"`

	// FieldTiers records, per optional field, the tier of the source that
	// populated it. Enrichment consults this to avoid downgrading data.
	FieldTiers map[string]ExtractionTier `json:"field_tiers,omitempty" yaml:"field_tiers,omitempty"`

	// Seq is the smallest (query index, provider rank) position at which the
	// candidate was first produced, encoded as queryIndex*1000+rank. It is a
	// deterministic stand-in for insertion order regardless of goroutine
	// scheduling.
	Seq int `json:"-" yaml:"-"`
}
