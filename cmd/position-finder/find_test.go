// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kowshik24/position-finder/pkg/types"
)

func newFindTestCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "find"}
	registerFindFlags(cmd)
	if err := cmd.Flags().Parse(args); err != nil {
		t.Fatalf("parsing flags: %v", err)
	}
	return cmd
}

func TestPipelineConfigFromFile(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	viper.Set("search.depth", "advanced")
	viper.Set("search.max_results", 5)
	viper.Set("search.timeout", "45s")
	viper.Set("ai.model", "gpt-test")
	viper.Set("ai.requests_per_second", 4.0)
	viper.Set("match.overlap_weight", 0.7)
	viper.Set("enrich.name_match_ratio", 0.8)
	viper.Set("concurrency.search_calls", 2)
	viper.Set("max_candidates", 3)
	viper.Set("audit.dir", "audit")

	cfg, err := pipelineConfig(newFindTestCmd(t))
	if err != nil {
		t.Fatalf("pipelineConfig() error = %v", err)
	}
	if cfg.Search.Depth != types.DepthAdvanced {
		t.Errorf("Search.Depth = %q, want advanced", cfg.Search.Depth)
	}
	if cfg.Search.MaxResults != 5 {
		t.Errorf("Search.MaxResults = %d, want 5", cfg.Search.MaxResults)
	}
	if cfg.Search.Timeout != 45*time.Second {
		t.Errorf("Search.Timeout = %v, want 45s", cfg.Search.Timeout)
	}
	if cfg.AI.Model != "gpt-test" {
		t.Errorf("AI.Model = %q, want gpt-test", cfg.AI.Model)
	}
	if cfg.AI.RequestsPerSecond != 4 {
		t.Errorf("AI.RequestsPerSecond = %v, want 4", cfg.AI.RequestsPerSecond)
	}
	if cfg.Match.OverlapWeight != 0.7 {
		t.Errorf("Match.OverlapWeight = %v, want 0.7", cfg.Match.OverlapWeight)
	}
	if cfg.Enrich.NameMatchRatio != 0.8 {
		t.Errorf("Enrich.NameMatchRatio = %v, want 0.8", cfg.Enrich.NameMatchRatio)
	}
	if cfg.Concurrency.SearchCalls != 2 {
		t.Errorf("Concurrency.SearchCalls = %d, want 2", cfg.Concurrency.SearchCalls)
	}
	if cfg.MaxCandidates != 3 {
		t.Errorf("MaxCandidates = %d, want 3", cfg.MaxCandidates)
	}
	if cfg.Audit.Dir != "audit" {
		t.Errorf("Audit.Dir = %q, want audit", cfg.Audit.Dir)
	}
}

func TestPipelineConfigFlagsOverrideFile(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	viper.Set("search.depth", "advanced")
	viper.Set("search.max_results", 5)
	viper.Set("audit.dir", "from-file")

	cmd := newFindTestCmd(t, "--depth", "basic", "--max-results", "3", "--audit-dir", "from-flag")
	cfg, err := pipelineConfig(cmd)
	if err != nil {
		t.Fatalf("pipelineConfig() error = %v", err)
	}
	if cfg.Search.Depth != types.DepthBasic {
		t.Errorf("Search.Depth = %q, want the flag's basic", cfg.Search.Depth)
	}
	if cfg.Search.MaxResults != 3 {
		t.Errorf("Search.MaxResults = %d, want the flag's 3", cfg.Search.MaxResults)
	}
	if cfg.Audit.Dir != "from-flag" {
		t.Errorf("Audit.Dir = %q, want from-flag", cfg.Audit.Dir)
	}
}

func TestPipelineConfigDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	cfg, err := pipelineConfig(newFindTestCmd(t))
	if err != nil {
		t.Fatalf("pipelineConfig() error = %v", err)
	}
	if cfg.Search.Depth != types.DepthBasic {
		t.Errorf("Search.Depth = %q, want basic", cfg.Search.Depth)
	}
	if cfg.Search.MaxResults != 10 {
		t.Errorf("Search.MaxResults = %d, want 10", cfg.Search.MaxResults)
	}
	if !cfg.Search.IncludeRawContent {
		t.Error("IncludeRawContent should default on")
	}
	if cfg.MaxCandidates != 10 {
		t.Errorf("MaxCandidates = %d, want 10", cfg.MaxCandidates)
	}
	if cfg.Fetch.UserAgent == "" {
		t.Error("Fetch.UserAgent should inherit the search user agent")
	}
}

func TestPipelineConfigRejectsInvalidValues(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	viper.Set("search.depth", "turbo")

	if _, err := pipelineConfig(newFindTestCmd(t)); err == nil {
		t.Error("want error for invalid depth from the config file")
	}

	viper.Reset()
	if _, err := pipelineConfig(newFindTestCmd(t, "--recency", "fortnight")); err == nil {
		t.Error("want error for invalid recency flag")
	}
}
