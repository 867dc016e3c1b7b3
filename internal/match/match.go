// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match scores candidates against a student profile and orders the
// final list deterministically.
package match

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kowshik24/position-finder/internal/candidates"
	"github.com/kowshik24/position-finder/internal/llm"
	"github.com/kowshik24/position-finder/pkg/types"
)

// Default rubric weights, applied when the config leaves them zero.
const (
	defaultOverlapWeight       = 0.6
	defaultHiringBoost         = 0.3
	defaultHiringBoostImplicit = 0.15
)

// defaultTierWeights discount scores by extraction confidence.
var defaultTierWeights = map[types.ExtractionTier]float64{
	types.TierProviderContent: 1.0,
	types.TierDirectFetch:     0.85,
	types.TierSnippetOnly:     0.6,
}

// ScoreError reports that model-based scoring failed for one candidate.
// Recoverable: the rubric score is used instead.
type ScoreError struct {
	Candidate string
	Err       error
}

func (e *ScoreError) Error() string {
	return fmt.Sprintf("scoring %s: %v", e.Candidate, e.Err)
}

func (e *ScoreError) Unwrap() error { return e.Err }

// Matcher assigns scores in [0,1] and ranks candidates. A nil backend, or
// cfg.UseModel false, restricts scoring to the deterministic rubric.
type Matcher struct {
	cfg     types.MatchConfig
	backend llm.Backend
}

func NewMatcher(cfg types.MatchConfig, backend llm.Backend) *Matcher {
	if cfg.OverlapWeight <= 0 {
		cfg.OverlapWeight = defaultOverlapWeight
	}
	if cfg.HiringBoost <= 0 {
		cfg.HiringBoost = defaultHiringBoost
	}
	if cfg.HiringBoostImplicit <= 0 {
		cfg.HiringBoostImplicit = defaultHiringBoostImplicit
	}
	return &Matcher{cfg: cfg, backend: backend}
}

// Rank scores every candidate and returns them ordered best-first. The
// second return value lists recoverable scoring degradations.
func (m *Matcher) Rank(ctx context.Context, profile types.StudentProfile, list []types.ProfessorCandidate) ([]types.ProfessorCandidate, []string) {
	var degradations []string

	ranked := make([]types.ProfessorCandidate, len(list))
	copy(ranked, list)

	for i := range ranked {
		score, rationale, err := m.score(ctx, profile, ranked[i])
		if err != nil {
			degradations = append(degradations, err.Error())
		}
		ranked[i].Score = score
		ranked[i].Rationale = rationale
	}

	sortCandidates(ranked)
	return ranked, degradations
}

// score prefers the model judgment when enabled, falling back to the rubric
// on any model failure. The returned error, if any, is a *ScoreError
// describing the fallback; the score itself is always valid.
func (m *Matcher) score(ctx context.Context, profile types.StudentProfile, c types.ProfessorCandidate) (float64, string, error) {
	if m.cfg.UseModel && m.backend != nil {
		score, rationale, err := m.modelScore(ctx, profile, c)
		if err == nil {
			return clamp01(score * m.tierWeight(c.Tier)), rationale, nil
		}
		rubricScore, rubricRationale := m.rubricScore(profile, c)
		return rubricScore, rubricRationale, &ScoreError{Candidate: c.Name, Err: err}
	}
	score, rationale := m.rubricScore(profile, c)
	return score, rationale, nil
}

// rubricScore is the deterministic scoring path: interest overlap plus a
// hiring boost, discounted by extraction tier, clamped to [0,1].
func (m *Matcher) rubricScore(profile types.StudentProfile, c types.ProfessorCandidate) (float64, string) {
	overlap, matched := interestOverlap(profile.Interests, c)

	raw := m.cfg.OverlapWeight * overlap
	switch c.Hiring {
	case types.HiringExplicit:
		raw += m.cfg.HiringBoost
	case types.HiringImplicit:
		raw += m.cfg.HiringBoostImplicit
	}

	score := clamp01(raw * m.tierWeight(c.Tier))

	var parts []string
	if len(matched) > 0 {
		parts = append(parts, "shared interests: "+strings.Join(matched, ", "))
	} else {
		parts = append(parts, "no direct interest overlap")
	}
	if c.Hiring == types.HiringExplicit {
		parts = append(parts, "explicitly recruiting")
	} else if c.Hiring == types.HiringImplicit {
		parts = append(parts, "possible openings")
	}
	return score, strings.Join(parts, "; ")
}

func (m *Matcher) tierWeight(tier types.ExtractionTier) float64 {
	if w, ok := m.cfg.TierWeights[tier]; ok && w > 0 {
		return w
	}
	if w, ok := defaultTierWeights[tier]; ok {
		return w
	}
	return defaultTierWeights[types.TierSnippetOnly]
}

// interestOverlap returns the fraction of student interests that appear in
// the candidate's research description, and the matched interests.
func interestOverlap(interests []string, c types.ProfessorCandidate) (float64, []string) {
	if len(interests) == 0 {
		return 0, nil
	}
	haystack := strings.ToLower(c.ResearchAreas + " " + c.Department)
	var matched []string
	for _, interest := range interests {
		if interest == "" {
			continue
		}
		if strings.Contains(haystack, strings.ToLower(interest)) {
			matched = append(matched, interest)
		}
	}
	return float64(len(matched)) / float64(len(interests)), matched
}

// sortCandidates orders best-first with deterministic tie-breaking: score,
// then extraction tier, then corroborating source count, then discovery
// sequence, then identity.
func sortCandidates(list []types.ProfessorCandidate) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Tier != b.Tier {
			return a.Tier.AtLeast(b.Tier)
		}
		if len(a.Sources) != len(b.Sources) {
			return len(a.Sources) > len(b.Sources)
		}
		if a.Seq != b.Seq {
			return a.Seq < b.Seq
		}
		return candidates.IdentityKey(a.Name, a.University) < candidates.IdentityKey(b.Name, b.University)
	})
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
