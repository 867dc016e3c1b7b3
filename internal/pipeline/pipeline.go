// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates the full position-finder run: profile
// analysis, query planning, search, extraction, candidate aggregation,
// matching, and enrichment. Stage failures degrade the result instead of
// aborting it; only configuration problems and cancellation surface as
// errors.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kowshik24/position-finder/internal/audit"
	"github.com/kowshik24/position-finder/internal/candidates"
	"github.com/kowshik24/position-finder/internal/enrich"
	"github.com/kowshik24/position-finder/internal/extract"
	"github.com/kowshik24/position-finder/internal/llm"
	"github.com/kowshik24/position-finder/internal/match"
	"github.com/kowshik24/position-finder/internal/profile"
	"github.com/kowshik24/position-finder/internal/queryplan"
	"github.com/kowshik24/position-finder/internal/websearch"
	"github.com/kowshik24/position-finder/pkg/types"
)

// seqStride spaces per-query sequence numbers so (query index, provider
// rank) collapses into one deterministic ordinal.
const seqStride = 1000

// ConfigError reports unusable configuration. It is the only error class a
// run returns besides context cancellation.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ProfileAnalyzer derives a student profile from CV text.
type ProfileAnalyzer interface {
	Analyze(ctx context.Context, cvText, targetUniversity, targetDepartment string) (types.StudentProfile, error)
}

// ContentExtractor resolves search results to page text.
type ContentExtractor interface {
	Extract(ctx context.Context, result types.SearchResult) (types.ExtractedContent, error)
}

// CandidateExtractor pulls professor records out of one query's batch of
// page text.
type CandidateExtractor interface {
	Extract(ctx context.Context, batch []types.ExtractedContent, p types.StudentProfile) ([]types.ProfessorCandidate, error)
}

// Ranker scores and orders candidates.
type Ranker interface {
	Rank(ctx context.Context, p types.StudentProfile, list []types.ProfessorCandidate) ([]types.ProfessorCandidate, []string)
}

// LinkEnricher fills missing candidate links.
type LinkEnricher interface {
	EnrichAll(ctx context.Context, list []types.ProfessorCandidate) []string
}

// Finder runs the pipeline end to end.
type Finder struct {
	cfg       types.PipelineConfig
	analyzer  ProfileAnalyzer
	provider  websearch.Provider
	extractor ContentExtractor
	records   CandidateExtractor
	ranker    Ranker
	enricher  LinkEnricher
	store     *audit.Store
	out       io.Writer
}

// New wires a Finder from configuration. The audit store may be nil; out
// receives progress lines and may be io.Discard.
func New(cfg types.PipelineConfig, store *audit.Store, out io.Writer) *Finder {
	normalizeConcurrency(&cfg.Concurrency)
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = 10
	}

	backend := llm.NewOpenAIBackend(cfg.AI)
	provider := websearch.NewTavilyProvider(cfg.Search)

	return &Finder{
		cfg:       cfg,
		analyzer:  profile.NewAnalyzer(backend, cfg.Profile, cfg.AI.MaxRetries),
		provider:  provider,
		extractor: extract.NewExtractor(cfg.Fetch),
		records:   candidates.NewExtractor(backend),
		ranker:    match.NewMatcher(cfg.Match, backend),
		enricher:  enrich.NewEnricher(provider, cfg.Enrich),
		store:     store,
		out:       out,
	}
}

func normalizeConcurrency(c *types.ConcurrencyConfig) {
	if c.SearchCalls <= 0 {
		c.SearchCalls = 4
	}
	if c.PageFetches <= 0 {
		c.PageFetches = 8
	}
	if c.ModelCalls <= 0 {
		c.ModelCalls = 2
	}
}

// Validate checks that the configuration can support a run.
func (f *Finder) Validate() error {
	if f.cfg.Search.APIKey == "" {
		return &ConfigError{Field: "search.api_key", Err: errors.New("missing search API key")}
	}
	if f.cfg.AI.APIKey == "" {
		return &ConfigError{Field: "ai.api_key", Err: errors.New("missing model API key")}
	}
	if f.cfg.Search.MaxResults > 20 {
		return &ConfigError{Field: "search.max_results", Err: fmt.Errorf("%d exceeds the provider cap of 20", f.cfg.Search.MaxResults)}
	}
	return nil
}

// Run executes the pipeline for one student. The returned error is non-nil
// only for configuration problems (missing or rejected credentials) or
// context cancellation; everything else lands in the result's status and
// degradations.
func (f *Finder) Run(ctx context.Context, cvText, targetUniversity, targetDepartment string) (types.FinderResult, error) {
	if err := f.Validate(); err != nil {
		return types.FinderResult{}, err
	}

	runID, err := f.store.BeginRun(ctx)
	if err != nil {
		fmt.Fprintf(f.out, "warning: audit unavailable: %v\n", err)
	}

	var degradations []string

	// Stage 1: profile analysis. A failed extraction degrades to a raw-CV
	// profile rather than ending the run; a rejected model key is fatal.
	studentProfile, err := f.analyzer.Analyze(ctx, cvText, targetUniversity, targetDepartment)
	if err != nil {
		switch {
		case ctx.Err() != nil:
			return types.FinderResult{}, ctx.Err()
		case errors.Is(err, llm.ErrAuth):
			return types.FinderResult{}, &ConfigError{Field: "ai.api_key", Err: err}
		}
		degradations = append(degradations, err.Error())
		studentProfile = profile.FallbackProfile(cvText, targetUniversity, targetDepartment)
	}
	fmt.Fprintf(f.out, "profile: %d research interests\n", len(studentProfile.Interests))

	// Stage 2: query planning.
	queries := queryplan.Plan(studentProfile)
	fmt.Fprintf(f.out, "planned %d queries\n", len(queries))
	f.recordEvent(ctx, runID, "plan", fmt.Sprintf("%d queries", len(queries)))

	// Stage 3: search.
	perQuery, searchDegradations, err := f.runSearches(ctx, queries)
	if err != nil {
		return types.FinderResult{}, err
	}
	degradations = append(degradations, searchDegradations...)
	if ctx.Err() != nil {
		return types.FinderResult{}, ctx.Err()
	}

	totalResults := 0
	for _, results := range perQuery {
		totalResults += len(results)
	}
	fmt.Fprintf(f.out, "search: %d results across %d queries\n", totalResults, len(queries))
	f.recordEvent(ctx, runID, "search", fmt.Sprintf("%d results", totalResults))

	if len(searchDegradations) == len(queries) && totalResults == 0 {
		// Every query failed: the provider is unreachable or rejecting us.
		result := types.FinderResult{Status: types.StatusSearchUnavailable, Degradations: degradations}
		f.finishRun(ctx, runID, result, len(queries))
		return result, nil
	}

	// Stages 4-5: extraction and candidate aggregation.
	agg := candidates.NewAggregator()
	extractDegradations := f.extractCandidates(ctx, perQuery, studentProfile, agg)
	degradations = append(degradations, extractDegradations...)
	if ctx.Err() != nil {
		return types.FinderResult{}, ctx.Err()
	}

	merged := agg.Candidates()
	fmt.Fprintf(f.out, "extracted %d distinct candidates\n", len(merged))
	f.recordEvent(ctx, runID, "extract", fmt.Sprintf("%d candidates", len(merged)))

	// Stage 6: matching and ranking.
	ranked, scoreDegradations := f.ranker.Rank(ctx, studentProfile, merged)
	degradations = append(degradations, scoreDegradations...)
	if len(ranked) > f.cfg.MaxCandidates {
		ranked = ranked[:f.cfg.MaxCandidates]
	}

	// Stage 7: enrichment of the final list only.
	degradations = append(degradations, f.enricher.EnrichAll(ctx, ranked)...)
	if ctx.Err() != nil {
		return types.FinderResult{}, ctx.Err()
	}

	status := types.StatusOK
	if len(ranked) == 0 {
		status = types.StatusNoResults
	}

	result := types.FinderResult{
		Candidates:   ranked,
		Status:       status,
		Degradations: degradations,
	}
	f.finishRun(ctx, runID, result, len(queries))
	return result, nil
}

// runSearches fans queries out to the provider with bounded concurrency.
// The returned slice is indexed by query so downstream ordering never
// depends on completion order. A rejected credential aborts the run as a
// ConfigError.
func (f *Finder) runSearches(ctx context.Context, queries []types.SearchQuery) ([][]types.SearchResult, []string, error) {
	perQuery := make([][]types.SearchResult, len(queries))

	var mu sync.Mutex
	var degradations []string

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.cfg.Concurrency.SearchCalls)

	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			results, err := f.provider.Search(gctx, q)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				if errors.Is(err, websearch.ErrAuth) {
					return err
				}
				mu.Lock()
				degradations = append(degradations, err.Error())
				mu.Unlock()
				return nil
			}
			perQuery[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, websearch.ErrAuth) {
			return nil, nil, &ConfigError{Field: "search.api_key", Err: err}
		}
		return nil, nil, err
	}

	return perQuery, degradations, nil
}

// extractCandidates resolves page content for every search result, then
// runs one model call per query batch and merges the records into the
// aggregator. Page fetches and model calls carry separate concurrency
// bounds.
func (f *Finder) extractCandidates(ctx context.Context, perQuery [][]types.SearchResult, p types.StudentProfile, agg *candidates.Aggregator) []string {
	// Phase 1: resolve content, preserving (query, rank) positions.
	batches := make([][]types.ExtractedContent, len(perQuery))
	for qi, results := range perQuery {
		batches[qi] = make([]types.ExtractedContent, len(results))
	}

	fg, fctx := errgroup.WithContext(ctx)
	fg.SetLimit(f.cfg.Concurrency.PageFetches)

	for qi, results := range perQuery {
		for ri, result := range results {
			qi, ri, result := qi, ri, result
			fg.Go(func() error {
				content, err := f.extractor.Extract(fctx, result)
				if err != nil {
					// Extraction is total short of cancellation.
					return nil
				}
				batches[qi][ri] = content
				return nil
			})
		}
	}
	_ = fg.Wait()
	if ctx.Err() != nil {
		return nil
	}

	// Phase 2: one candidate-extraction call per query batch.
	var mu sync.Mutex
	var degradations []string

	mg, mctx := errgroup.WithContext(ctx)
	mg.SetLimit(f.cfg.Concurrency.ModelCalls)

	for qi, batch := range batches {
		if len(batch) == 0 {
			continue
		}
		qi, batch := qi, batch
		mg.Go(func() error {
			found, err := f.records.Extract(mctx, batch, p)
			if err != nil {
				if mctx.Err() != nil {
					return mctx.Err()
				}
				mu.Lock()
				degradations = append(degradations, err.Error())
				mu.Unlock()
				return nil
			}

			rankByURL := make(map[string]int, len(batch))
			for ri, content := range batch {
				rankByURL[content.SourceURL] = ri
			}
			for _, c := range found {
				rank := len(batch) - 1
				if len(c.Sources) > 0 {
					if ri, ok := rankByURL[c.Sources[0]]; ok {
						rank = ri
					}
				}
				c.Seq = qi*seqStride + rank
				agg.Add(c)
			}
			return nil
		})
	}
	_ = mg.Wait()

	return degradations
}

func (f *Finder) recordEvent(ctx context.Context, runID, stage, detail string) {
	if err := f.store.RecordEvent(ctx, runID, stage, detail); err != nil {
		fmt.Fprintf(f.out, "warning: audit event not recorded: %v\n", err)
	}
}

func (f *Finder) finishRun(ctx context.Context, runID string, result types.FinderResult, queryCount int) {
	err := f.store.FinishRun(ctx, runID, result.Status, queryCount, len(result.Candidates), result.Degradations)
	if err != nil {
		fmt.Fprintf(f.out, "warning: audit outcome not recorded: %v\n", err)
	}
}
