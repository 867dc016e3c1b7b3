// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package candidates

import (
	"sort"
	"sync"

	"github.com/kowshik24/position-finder/pkg/types"
)

// Aggregator merges candidates produced concurrently by multiple queries
// into one deduplicated set keyed by identity. Safe for concurrent use.
type Aggregator struct {
	mu    sync.Mutex
	byKey map[string]*types.ProfessorCandidate
}

func NewAggregator() *Aggregator {
	return &Aggregator{byKey: make(map[string]*types.ProfessorCandidate)}
}

// Add merges one candidate into the set. The first mention of an identity
// seeds the record; later mentions corroborate it, filling gaps and upgrading
// fields only when they come from a higher-confidence extraction tier.
func (a *Aggregator) Add(c types.ProfessorCandidate) {
	key := IdentityKey(c.Name, c.University)

	a.mu.Lock()
	defer a.mu.Unlock()

	existing, ok := a.byKey[key]
	if !ok {
		clone := c
		clone.Sources = append([]string(nil), c.Sources...)
		clone.FieldTiers = cloneFieldTiers(c.FieldTiers)
		a.byKey[key] = &clone
		return
	}
	mergeInto(existing, c)
}

// Candidates returns the merged set ordered by discovery sequence. The order
// is deterministic: Seq encodes (query index, provider rank), not goroutine
// arrival.
func (a *Aggregator) Candidates() []types.ProfessorCandidate {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]types.ProfessorCandidate, 0, len(a.byKey))
	for _, c := range a.byKey {
		sort.Strings(c.Sources)
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Seq != out[j].Seq {
			return out[i].Seq < out[j].Seq
		}
		return IdentityKey(out[i].Name, out[i].University) < IdentityKey(out[j].Name, out[j].University)
	})
	return out
}

// Len returns the number of distinct identities seen so far.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.byKey)
}

// mergeInto folds an incoming mention into the existing record. Existing
// data from an equal-or-higher tier is never overwritten.
func mergeInto(dst *types.ProfessorCandidate, src types.ProfessorCandidate) {
	if src.Seq < dst.Seq {
		dst.Seq = src.Seq
	}
	if src.Tier.AtLeast(dst.Tier) && src.Tier != dst.Tier {
		dst.Tier = src.Tier
	}

	for _, s := range src.Sources {
		if !containsString(dst.Sources, s) {
			dst.Sources = append(dst.Sources, s)
		}
	}

	// Hiring signal only strengthens: unknown -> implicit -> explicit.
	if hiringRank(src.Hiring) > hiringRank(dst.Hiring) {
		dst.Hiring = src.Hiring
		dst.HiringPhrase = src.HiringPhrase
	}

	if dst.Department == "" {
		dst.Department = src.Department
	}
	if dst.ResearchAreas == "" || (len(src.ResearchAreas) > len(dst.ResearchAreas) && src.Tier.AtLeast(dst.Tier)) {
		if src.ResearchAreas != "" {
			dst.ResearchAreas = src.ResearchAreas
		}
	}

	if dst.FieldTiers == nil {
		dst.FieldTiers = make(map[string]types.ExtractionTier)
	}
	mergeLink(&dst.Links.LabSite, src.Links.LabSite, types.FieldLabSite, dst.FieldTiers, src.FieldTiers)
	mergeLink(&dst.Links.ScholarProfile, src.Links.ScholarProfile, types.FieldScholarProfile, dst.FieldTiers, src.FieldTiers)
	mergeLink(&dst.Links.NetworkProfile, src.Links.NetworkProfile, types.FieldNetworkProfile, dst.FieldTiers, src.FieldTiers)
}

// mergeLink fills an empty link, or replaces one whose recorded tier is
// strictly lower than the incoming mention's.
func mergeLink(dst *string, src, field string, dstTiers map[string]types.ExtractionTier, srcTiers map[string]types.ExtractionTier) {
	if src == "" {
		return
	}
	srcTier := srcTiers[field]
	if *dst == "" {
		*dst = src
		dstTiers[field] = srcTier
		return
	}
	dstTier := dstTiers[field]
	if srcTier.AtLeast(dstTier) && srcTier != dstTier {
		*dst = src
		dstTiers[field] = srcTier
	}
}

func hiringRank(h types.HiringStatus) int {
	switch h {
	case types.HiringExplicit:
		return 2
	case types.HiringImplicit:
		return 1
	default:
		return 0
	}
}

func cloneFieldTiers(m map[string]types.ExtractionTier) map[string]types.ExtractionTier {
	out := make(map[string]types.ExtractionTier, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
