// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package candidates extracts professor records from page text and merges
// them across sources into a deduplicated candidate set.
package candidates

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/kowshik24/position-finder/internal/llm"
	"github.com/kowshik24/position-finder/pkg/types"
)

// maxPageChars bounds the per-page text included in a batch prompt.
const maxPageChars = 6000

var extractPromptTmpl = template.Must(template.New("extract").Parse(`From the following web pages, extract every professor or faculty member mentioned, with whatever details the pages provide.

Student research interests: {{.Interests}}
{{- if .University}}
Target university: {{.University}}
{{- end}}

For each professor output an object with these keys:
- "name": full name (required)
- "university": institution name{{if .University}} (assume "{{.University}}" when the page does not say otherwise){{end}}
- "department": department or lab, or ""
- "research_areas": short description of their research focus, or ""
- "hiring_status": "explicit" if a page states they are recruiting students, "implicit" if it merely hints at openings, otherwise "unknown"
- "hiring_phrase": the exact hiring sentence when hiring_status is "explicit", else ""
- "source_url": the URL of the page the professor was found on
- "lab_site": lab or personal website URL, or ""
- "scholar_profile": publication profile URL, or ""
- "network_profile": professional networking profile URL, or ""

Respond with a JSON array of these objects and nothing else. Output [] if no page mentions faculty.
{{range .Pages}}
--- Page: {{.SourceURL}}
{{.Text}}
{{end}}`))

const extractSystemPrompt = "You extract structured faculty records from academic web pages. Output only valid JSON."

// strictRetrySuffix is appended on the second attempt after unparseable output.
const strictRetrySuffix = "\n\nYour previous response was not valid JSON. Respond with ONLY a JSON array, no prose, no code fences."

// ParseError reports that a batch's model output never became valid JSON.
// Recoverable: the caller skips the batch and records a degradation.
type ParseError struct {
	Batch string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing candidates from batch %q: %v", e.Batch, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Extractor pulls professor records out of extracted page text.
type Extractor struct {
	backend llm.Backend
}

func NewExtractor(backend llm.Backend) *Extractor {
	return &Extractor{backend: backend}
}

// Extract returns the professor records found in one query's batch of pages.
// Each record is tagged with the tier of the page it came from. Records
// without a resolvable name or university are dropped. Malformed model
// output gets one stricter retry; a second failure returns *ParseError and
// the batch contributes nothing.
func (e *Extractor) Extract(ctx context.Context, batch []types.ExtractedContent, profile types.StudentProfile) ([]types.ProfessorCandidate, error) {
	pages := make([]types.ExtractedContent, 0, len(batch))
	for _, content := range batch {
		if strings.TrimSpace(content.Text) != "" {
			pages = append(pages, content)
		}
	}
	if len(pages) == 0 {
		return nil, nil
	}

	batchName := pages[0].SourceURL
	prompt, err := renderExtractPrompt(pages, profile)
	if err != nil {
		return nil, &ParseError{Batch: batchName, Err: err}
	}

	records, err := e.completeAndParse(ctx, prompt)
	if err != nil {
		records, err = e.completeAndParse(ctx, prompt+strictRetrySuffix)
	}
	if err != nil {
		return nil, &ParseError{Batch: batchName, Err: err}
	}

	byURL := make(map[string]types.ExtractedContent, len(pages))
	for _, p := range pages {
		byURL[p.SourceURL] = p
	}
	// Records the model failed to attribute fall back to the batch's least
	// confident page.
	conservative := pages[0]
	for _, p := range pages[1:] {
		if conservative.Tier.AtLeast(p.Tier) {
			conservative = p
		}
	}

	var out []types.ProfessorCandidate
	for _, r := range records {
		source, ok := byURL[strings.TrimSpace(r.SourceURL)]
		if !ok {
			source = conservative
		}
		c, ok := r.toCandidate(source, profile.TargetUniversity)
		if ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (e *Extractor) completeAndParse(ctx context.Context, prompt string) ([]professorRecord, error) {
	raw, err := e.backend.Complete(ctx, extractSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}
	var records []professorRecord
	if err := json.Unmarshal([]byte(llm.StripFences(raw)), &records); err != nil {
		return nil, fmt.Errorf("decoding model output: %w", err)
	}
	return records, nil
}

func renderExtractPrompt(pages []types.ExtractedContent, profile types.StudentProfile) (string, error) {
	bounded := make([]types.ExtractedContent, len(pages))
	copy(bounded, pages)
	for i := range bounded {
		if len(bounded[i].Text) > maxPageChars {
			// Back off to a rune boundary so the cut never splits a
			// multi-byte sequence.
			cut := maxPageChars
			for cut > 0 && !utf8.RuneStart(bounded[i].Text[cut]) {
				cut--
			}
			bounded[i].Text = bounded[i].Text[:cut]
		}
	}

	var buf bytes.Buffer
	err := extractPromptTmpl.Execute(&buf, struct {
		Interests  string
		University string
		Pages      []types.ExtractedContent
	}{
		Interests:  strings.Join(profile.Interests, ", "),
		University: profile.TargetUniversity,
		Pages:      bounded,
	})
	return buf.String(), err
}

// professorRecord mirrors the model's output schema.
type professorRecord struct {
	Name           string `json:"name"`
	University     string `json:"university"`
	Department     string `json:"department"`
	ResearchAreas  string `json:"research_areas"`
	HiringStatus   string `json:"hiring_status"`
	HiringPhrase   string `json:"hiring_phrase"`
	SourceURL      string `json:"source_url"`
	LabSite        string `json:"lab_site"`
	ScholarProfile string `json:"scholar_profile"`
	NetworkProfile string `json:"network_profile"`
}

// toCandidate validates a record and tags it with its source page's tier.
// Records with no name are dropped; a missing university falls back to the
// student's target when one is set.
func (r professorRecord) toCandidate(source types.ExtractedContent, targetUniversity string) (types.ProfessorCandidate, bool) {
	name := strings.TrimSpace(r.Name)
	university := strings.TrimSpace(r.University)
	if university == "" {
		university = strings.TrimSpace(targetUniversity)
	}
	if name == "" || university == "" {
		return types.ProfessorCandidate{}, false
	}

	c := types.ProfessorCandidate{
		Name:          name,
		University:    university,
		Department:    strings.TrimSpace(r.Department),
		ResearchAreas: strings.TrimSpace(r.ResearchAreas),
		Hiring:        parseHiringStatus(r.HiringStatus),
		Links: types.CandidateLinks{
			LabSite:        strings.TrimSpace(r.LabSite),
			ScholarProfile: strings.TrimSpace(r.ScholarProfile),
			NetworkProfile: strings.TrimSpace(r.NetworkProfile),
		},
		Sources: []string{source.SourceURL},
		Tier:    source.Tier,
	}
	if c.Hiring == types.HiringExplicit {
		c.HiringPhrase = strings.TrimSpace(r.HiringPhrase)
	}

	c.FieldTiers = make(map[string]types.ExtractionTier)
	for field, link := range map[string]string{
		types.FieldLabSite:        c.Links.LabSite,
		types.FieldScholarProfile: c.Links.ScholarProfile,
		types.FieldNetworkProfile: c.Links.NetworkProfile,
	} {
		if link != "" {
			c.FieldTiers[field] = source.Tier
		}
	}
	return c, true
}

func parseHiringStatus(s string) types.HiringStatus {
	switch types.HiringStatus(strings.ToLower(strings.TrimSpace(s))) {
	case types.HiringExplicit:
		return types.HiringExplicit
	case types.HiringImplicit:
		return types.HiringImplicit
	default:
		return types.HiringUnknown
	}
}
