package candidates

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/kowshik24/position-finder/pkg/types"
)

type mockBackend struct {
	responses []string
	calls     int
}

func (m *mockBackend) Complete(_ context.Context, _, _ string) (string, error) {
	i := m.calls
	if i >= len(m.responses) {
		i = len(m.responses) - 1
	}
	m.calls++
	return m.responses[i], nil
}

func testBatch() []types.ExtractedContent {
	return []types.ExtractedContent{
		{SourceURL: "https://acme.edu/faculty", Text: "faculty directory text", Tier: types.TierProviderContent},
		{SourceURL: "https://acme.edu/news", Text: "campus news text", Tier: types.TierSnippetOnly},
	}
}

func TestExtractParsesRecords(t *testing.T) {
	backend := &mockBackend{responses: []string{`[
		{"name": "Prof. Wei Chen", "university": "Acme University", "department": "CS",
		 "research_areas": "robotics and control", "hiring_status": "explicit",
		 "hiring_phrase": "We are accepting PhD students for Fall 2026.",
		 "source_url": "https://acme.edu/faculty",
		 "lab_site": "https://chenlab.acme.edu"},
		{"name": "", "university": "Acme University", "source_url": "https://acme.edu/faculty"},
		{"name": "Maria Santos", "university": "", "source_url": "https://acme.edu/news"}
	]`}}
	e := NewExtractor(backend)
	profile := types.StudentProfile{Interests: []string{"robotics"}, TargetUniversity: "Acme University"}

	got, err := e.Extract(context.Background(), testBatch(), profile)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(candidates) = %d, want 2 (nameless record dropped)", len(got))
	}

	chen := got[0]
	if chen.Name != "Prof. Wei Chen" || chen.Hiring != types.HiringExplicit {
		t.Errorf("candidate = %+v", chen)
	}
	if chen.HiringPhrase != "We are accepting PhD students for Fall 2026." {
		t.Errorf("HiringPhrase = %q", chen.HiringPhrase)
	}
	if chen.Tier != types.TierProviderContent {
		t.Errorf("Tier = %q, want the source page's tier", chen.Tier)
	}
	if chen.FieldTiers[types.FieldLabSite] != types.TierProviderContent {
		t.Errorf("FieldTiers = %v", chen.FieldTiers)
	}
	if len(chen.Sources) != 1 || chen.Sources[0] != "https://acme.edu/faculty" {
		t.Errorf("Sources = %v", chen.Sources)
	}

	// The record with no university inherits the student's target, and its
	// tier follows its own source page.
	santos := got[1]
	if santos.University != "Acme University" {
		t.Errorf("University = %q, want target fallback", santos.University)
	}
	if santos.Tier != types.TierSnippetOnly {
		t.Errorf("Tier = %q, want news-page tier", santos.Tier)
	}
}

func TestExtractUnattributedRecordGetsLowestTier(t *testing.T) {
	backend := &mockBackend{responses: []string{`[
		{"name": "Wei Chen", "university": "Acme University", "source_url": "https://elsewhere.example.com"}
	]`}}
	e := NewExtractor(backend)

	got, err := e.Extract(context.Background(), testBatch(), types.StudentProfile{})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(candidates) = %d", len(got))
	}
	if got[0].Tier != types.TierSnippetOnly {
		t.Errorf("Tier = %q, unattributed records take the batch's least confident tier", got[0].Tier)
	}
}

func TestExtractRetriesOnceOnMalformedOutput(t *testing.T) {
	backend := &mockBackend{responses: []string{
		"Sure! Here are the professors I found.",
		`[{"name": "Wei Chen", "university": "Acme University", "source_url": "https://acme.edu/faculty"}]`,
	}}
	e := NewExtractor(backend)

	got, err := e.Extract(context.Background(), testBatch(), types.StudentProfile{})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if backend.calls != 2 {
		t.Errorf("model calls = %d, want 2", backend.calls)
	}
	if len(got) != 1 {
		t.Errorf("len(candidates) = %d", len(got))
	}
}

func TestExtractParseErrorAfterStrictRetry(t *testing.T) {
	backend := &mockBackend{responses: []string{"not json", "still not json"}}
	e := NewExtractor(backend)

	_, err := e.Extract(context.Background(), testBatch(), types.StudentProfile{})
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("want *ParseError, got %v", err)
	}
	if parseErr.Batch != "https://acme.edu/faculty" {
		t.Errorf("Batch = %q", parseErr.Batch)
	}
	if backend.calls != 2 {
		t.Errorf("model calls = %d, want 2", backend.calls)
	}
}

func TestExtractEmptyBatch(t *testing.T) {
	backend := &mockBackend{responses: []string{"[]"}}
	e := NewExtractor(backend)

	got, err := e.Extract(context.Background(), []types.ExtractedContent{{SourceURL: "u", Text: "   "}}, types.StudentProfile{})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(got) != 0 || backend.calls != 0 {
		t.Errorf("got %v, calls = %d; blank batches should skip the model", got, backend.calls)
	}
}

func TestExtractNoFacultyInBatch(t *testing.T) {
	backend := &mockBackend{responses: []string{"```json\n[]\n```"}}
	e := NewExtractor(backend)

	got, err := e.Extract(context.Background(), testBatch(), types.StudentProfile{})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len(candidates) = %d, want 0", len(got))
	}
}

func TestRenderExtractPromptTruncatesOnRuneBoundary(t *testing.T) {
	// A two-byte rune straddling the cut point must be dropped whole.
	text := strings.Repeat("a", maxPageChars-1) + "é" + strings.Repeat("b", 40)
	pages := []types.ExtractedContent{{SourceURL: "https://acme.edu/é", Text: text}}

	prompt, err := renderExtractPrompt(pages, types.StudentProfile{})
	if err != nil {
		t.Fatalf("renderExtractPrompt() error = %v", err)
	}
	if !utf8.ValidString(prompt) {
		t.Error("prompt contains invalid UTF-8 after truncation")
	}
}

func TestParseHiringStatus(t *testing.T) {
	cases := map[string]types.HiringStatus{
		"explicit": types.HiringExplicit,
		"EXPLICIT": types.HiringExplicit,
		"implicit": types.HiringImplicit,
		"unknown":  types.HiringUnknown,
		"yes":      types.HiringUnknown,
		"":         types.HiringUnknown,
	}
	for in, want := range cases {
		if got := parseHiringStatus(in); got != want {
			t.Errorf("parseHiringStatus(%q) = %q, want %q", in, got, want)
		}
	}
}
