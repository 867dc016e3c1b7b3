// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package profile derives structured research interests from free-text CV input.
package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/kowshik24/position-finder/internal/fallback"
	"github.com/kowshik24/position-finder/internal/llm"
	"github.com/kowshik24/position-finder/pkg/types"
)

// interestPromptTmpl asks the model for research-interest keywords as a JSON
// array. Ordering in the array reflects prominence in the CV.
var interestPromptTmpl = template.Must(template.New("interests").Parse(`Analyze the following CV and extract the applicant's research interests as short keyword phrases (e.g. "reinforcement learning", "computational biology").

Rules:
- Order by prominence in the CV, most central interest first.
- At most {{.Max}} phrases, each 1-4 words, lowercase.
- Respond with a JSON array of strings and nothing else.

Example response:
["machine learning", "computer vision", "robotics"]

CV:
{{.CV}}
`))

const interestSystemPrompt = "You are an academic advisor extracting structured research interests from a CV. Output only valid JSON."

// ExtractionError reports that interest extraction failed after retries.
// Callers may fall back to treating the whole CV as one generic interest.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting research interests: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Analyzer extracts research interests from CVs via the generative model.
type Analyzer struct {
	backend llm.Backend
	cfg     types.ProfileConfig
	retry   fallback.RetryPolicy
}

// NewAnalyzer builds an Analyzer. maxRetries bounds model-call retries.
func NewAnalyzer(backend llm.Backend, cfg types.ProfileConfig, maxRetries int) *Analyzer {
	if cfg.MaxInterests <= 0 {
		cfg.MaxInterests = 8
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &Analyzer{
		backend: backend,
		cfg:     cfg,
		retry:   fallback.RetryPolicy{MaxAttempts: maxRetries, Retryable: llm.Retryable},
	}
}

// Analyze builds a StudentProfile from raw CV text. The returned profile is
// immutable for the rest of the request. Returns *ExtractionError when the
// model call fails after retries or never yields parseable output.
func (a *Analyzer) Analyze(ctx context.Context, cvText, targetUniversity, targetDepartment string) (types.StudentProfile, error) {
	p := types.StudentProfile{
		CVText:           cvText,
		TargetUniversity: strings.TrimSpace(targetUniversity),
		TargetDepartment: strings.TrimSpace(targetDepartment),
	}
	if strings.TrimSpace(cvText) == "" {
		return p, &ExtractionError{Err: fmt.Errorf("empty CV text")}
	}

	prompt, err := renderInterestPrompt(cvText, a.cfg.MaxInterests)
	if err != nil {
		return p, &ExtractionError{Err: err}
	}

	interests, err := fallback.Retry(ctx, a.retry, func(ctx context.Context) ([]string, error) {
		raw, err := a.backend.Complete(ctx, interestSystemPrompt, prompt)
		if err != nil {
			return nil, err
		}
		return parseInterests(raw)
	})
	if err != nil {
		return p, &ExtractionError{Err: err}
	}

	p.Interests = dedupeInterests(interests, a.cfg.MaxInterests)
	return p, nil
}

// FallbackProfile builds a profile that treats the entire CV as one generic
// interest, used when extraction fails but the pipeline should continue.
func FallbackProfile(cvText, targetUniversity, targetDepartment string) types.StudentProfile {
	return types.StudentProfile{
		CVText:           cvText,
		Interests:        nil,
		TargetUniversity: strings.TrimSpace(targetUniversity),
		TargetDepartment: strings.TrimSpace(targetDepartment),
	}
}

func renderInterestPrompt(cv string, max int) (string, error) {
	var buf bytes.Buffer
	err := interestPromptTmpl.Execute(&buf, struct {
		CV  string
		Max int
	}{CV: cv, Max: max})
	return buf.String(), err
}

// parseInterests decodes the model's JSON array output.
func parseInterests(raw string) ([]string, error) {
	var interests []string
	if err := json.Unmarshal([]byte(llm.StripFences(raw)), &interests); err != nil {
		return nil, fmt.Errorf("parsing interest list: %w", err)
	}
	if len(interests) == 0 {
		return nil, fmt.Errorf("model returned no interests")
	}
	return interests, nil
}

// dedupeInterests normalizes, deduplicates case-insensitively preserving
// order, and caps the list.
func dedupeInterests(interests []string, max int) []string {
	seen := make(map[string]bool, len(interests))
	var out []string
	for _, in := range interests {
		in = strings.TrimSpace(in)
		if in == "" {
			continue
		}
		key := strings.ToLower(in)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, strings.ToLower(in))
		if len(out) == max {
			break
		}
	}
	return out
}
