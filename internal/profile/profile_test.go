package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/kowshik24/position-finder/pkg/types"
)

func testProfileCfg(max int) types.ProfileConfig {
	return types.ProfileConfig{MaxInterests: max}
}

// mockBackend returns canned responses in sequence, then repeats the last.
type mockBackend struct {
	responses []string
	errs      []error
	calls     int
}

func (m *mockBackend) Complete(_ context.Context, _, _ string) (string, error) {
	i := m.calls
	if i >= len(m.responses) {
		i = len(m.responses) - 1
	}
	m.calls++
	var err error
	if i < len(m.errs) {
		err = m.errs[i]
	}
	return m.responses[i], err
}

func TestAnalyzeExtractsOrderedInterests(t *testing.T) {
	backend := &mockBackend{responses: []string{`["Reinforcement Learning", "robotics", "reinforcement learning", "  "]`}}
	a := NewAnalyzer(backend, testProfileCfg(8), 1)

	p, err := a.Analyze(context.Background(), "CV text", "Acme University", "")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	want := []string{"reinforcement learning", "robotics"}
	if len(p.Interests) != len(want) {
		t.Fatalf("interests = %v, want %v", p.Interests, want)
	}
	for i := range want {
		if p.Interests[i] != want[i] {
			t.Errorf("interests[%d] = %q, want %q", i, p.Interests[i], want[i])
		}
	}
	if p.TargetUniversity != "Acme University" {
		t.Errorf("TargetUniversity = %q", p.TargetUniversity)
	}
}

func TestAnalyzeCapsInterests(t *testing.T) {
	backend := &mockBackend{responses: []string{`["a","b","c","d"]`}}
	a := NewAnalyzer(backend, testProfileCfg(2), 1)

	p, err := a.Analyze(context.Background(), "CV", "", "")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(p.Interests) != 2 {
		t.Errorf("len(interests) = %d, want 2", len(p.Interests))
	}
}

func TestAnalyzeHandlesFencedOutput(t *testing.T) {
	backend := &mockBackend{responses: []string{"```json\n[\"nlp\"]\n```"}}
	a := NewAnalyzer(backend, testProfileCfg(8), 1)

	p, err := a.Analyze(context.Background(), "CV", "", "")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(p.Interests) != 1 || p.Interests[0] != "nlp" {
		t.Errorf("interests = %v", p.Interests)
	}
}

func TestAnalyzeEmptyCV(t *testing.T) {
	a := NewAnalyzer(&mockBackend{responses: []string{"[]"}}, testProfileCfg(8), 1)

	_, err := a.Analyze(context.Background(), "   ", "", "")
	var exErr *ExtractionError
	if !errors.As(err, &exErr) {
		t.Fatalf("want *ExtractionError, got %v", err)
	}
}

func TestAnalyzeMalformedOutputAfterRetries(t *testing.T) {
	backend := &mockBackend{responses: []string{"not json", "still not json"}}
	a := NewAnalyzer(backend, testProfileCfg(8), 2)
	a.retry.BaseDelay = 1 // avoid real sleeps

	_, err := a.Analyze(context.Background(), "CV", "", "")
	var exErr *ExtractionError
	if !errors.As(err, &exErr) {
		t.Fatalf("want *ExtractionError, got %v", err)
	}
	if backend.calls != 2 {
		t.Errorf("model calls = %d, want 2", backend.calls)
	}
}

func TestFallbackProfileKeepsCV(t *testing.T) {
	p := FallbackProfile("raw cv", " Acme University ", "")
	if p.CVText != "raw cv" {
		t.Errorf("CVText = %q", p.CVText)
	}
	if p.TargetUniversity != "Acme University" {
		t.Errorf("TargetUniversity = %q", p.TargetUniversity)
	}
	if len(p.Interests) != 0 {
		t.Errorf("fallback profile should carry no extracted interests")
	}
}
