// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/kowshik24/position-finder/internal/llm"
	"github.com/kowshik24/position-finder/pkg/types"
)

var scorePromptTmpl = template.Must(template.New("score").Parse(`Rate how well this professor matches the student, from 0.0 (no fit) to 1.0 (ideal fit).

Student research interests: {{.Interests}}

Professor:
- Name: {{.Name}}
- University: {{.University}}
{{- if .Department}}
- Department: {{.Department}}
{{- end}}
{{- if .ResearchAreas}}
- Research areas: {{.ResearchAreas}}
{{- end}}
- Hiring signal: {{.Hiring}}{{if .HiringPhrase}} ("{{.HiringPhrase}}"){{end}}

Respond with a JSON object: {"score": <number>, "rationale": "<one sentence>"} and nothing else.
`))

const scoreSystemPrompt = "You judge student-advisor research fit. Output only valid JSON."

// modelScore asks the generative model for a fit judgment. Any failure,
// including out-of-range or unparseable output, is returned for the caller
// to fall back on the rubric.
func (m *Matcher) modelScore(ctx context.Context, profile types.StudentProfile, c types.ProfessorCandidate) (float64, string, error) {
	var buf bytes.Buffer
	err := scorePromptTmpl.Execute(&buf, struct {
		Interests     string
		Name          string
		University    string
		Department    string
		ResearchAreas string
		Hiring        types.HiringStatus
		HiringPhrase  string
	}{
		Interests:     strings.Join(profile.Interests, ", "),
		Name:          c.Name,
		University:    c.University,
		Department:    c.Department,
		ResearchAreas: c.ResearchAreas,
		Hiring:        c.Hiring,
		HiringPhrase:  c.HiringPhrase,
	})
	if err != nil {
		return 0, "", err
	}

	raw, err := m.backend.Complete(ctx, scoreSystemPrompt, buf.String())
	if err != nil {
		return 0, "", err
	}

	var judged struct {
		Score     float64 `json:"score"`
		Rationale string  `json:"rationale"`
	}
	if err := json.Unmarshal([]byte(llm.StripFences(raw)), &judged); err != nil {
		return 0, "", fmt.Errorf("decoding score output: %w", err)
	}
	if judged.Score < 0 || judged.Score > 1 {
		return 0, "", fmt.Errorf("model score %v out of range", judged.Score)
	}
	return judged.Score, judged.Rationale, nil
}
