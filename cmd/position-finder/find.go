// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/kowshik24/position-finder/internal/audit"
	"github.com/kowshik24/position-finder/internal/pipeline"
	"github.com/kowshik24/position-finder/internal/secrets"
	"github.com/kowshik24/position-finder/pkg/types"
)

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Search for matching professors from a CV",
	Long: `Find runs the full pipeline: extracts research interests from the CV,
plans targeted queries, searches the web, pulls professor records from the
result pages, scores them against the student's interests, and enriches the
top candidates with lab, publication, and networking links.

API keys are read from .secrets/tavily-api-key and .secrets/openai-api-key,
from TAVILY_API_KEY / OPENAI_API_KEY, or from flags.`,
	RunE: runFind,
}

func runFind(cmd *cobra.Command, args []string) error {
	cvPath, _ := cmd.Flags().GetString("cv")
	cvData, err := os.ReadFile(cvPath)
	if err != nil {
		return fmt.Errorf("reading CV file: %w", err)
	}

	university, _ := cmd.Flags().GetString("university")
	department, _ := cmd.Flags().GetString("department")

	cfg, err := pipelineConfig(cmd)
	if err != nil {
		return err
	}

	store, err := audit.NewStore(cfg.Audit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: audit store unavailable: %v\n", err)
	}
	defer store.Close()

	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	finder := pipeline.New(cfg, store, os.Stderr)
	result, err := finder.Run(ctx, string(cvData), university, department)
	if err != nil {
		return err
	}

	outPath, _ := cmd.Flags().GetString("out")
	if outPath != "" {
		if err := writeReport(outPath, result); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", outPath)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatFindOutput(result, jsonOutput)
}

// pipelineConfig assembles the run configuration. The viper config file is
// the baseline; flags, loaded secrets, and the environment override it.
func pipelineConfig(cmd *cobra.Command) (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	if err := viper.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
		dc.Squash = true
	}); err != nil {
		return cfg, fmt.Errorf("decoding config file: %w", err)
	}

	searchKey, _ := cmd.Flags().GetString("search-key")
	cfg.Search.APIKey = secrets.Resolve(searchKey, loadedSecrets, secrets.KeySearch, "TAVILY_API_KEY")

	modelKey, _ := cmd.Flags().GetString("model-key")
	cfg.AI.APIKey = secrets.Resolve(modelKey, loadedSecrets, secrets.KeyModel, "OPENAI_API_KEY")

	if model, _ := cmd.Flags().GetString("model"); model != "" {
		cfg.AI.Model = model
	}

	if cmd.Flags().Changed("depth") || cfg.Search.Depth == "" {
		depth, _ := cmd.Flags().GetString("depth")
		cfg.Search.Depth = types.SearchDepth(depth)
	}
	switch cfg.Search.Depth {
	case types.DepthBasic, types.DepthAdvanced, "":
	default:
		return cfg, fmt.Errorf("invalid search depth %q: use basic or advanced", cfg.Search.Depth)
	}

	if cmd.Flags().Changed("recency") {
		recency, _ := cmd.Flags().GetString("recency")
		cfg.Search.Recency = types.Recency(recency)
	}
	switch cfg.Search.Recency {
	case types.RecencyDay, types.RecencyWeek, types.RecencyMonth, types.RecencyYear, types.RecencyNone:
	default:
		return cfg, fmt.Errorf("invalid recency %q: use day, week, month, or year", cfg.Search.Recency)
	}

	if cmd.Flags().Changed("max-results") || cfg.Search.MaxResults == 0 {
		cfg.Search.MaxResults, _ = cmd.Flags().GetInt("max-results")
	}
	// Provider-supplied content drives the first extraction tier, so raw
	// content stays on unless the config file turns it off.
	if !viper.IsSet("search.include_raw_content") {
		cfg.Search.IncludeRawContent = true
	}
	if cfg.Search.UserAgent == "" {
		cfg.Search.UserAgent = "position-finder/" + version
	}

	if s, _ := cmd.Flags().GetString("include-domains"); s != "" {
		cfg.Search.IncludeDomains = splitDomains(s)
	}
	if s, _ := cmd.Flags().GetString("exclude-domains"); s != "" {
		cfg.Search.ExcludeDomains = splitDomains(s)
	}

	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = cfg.Search.UserAgent
	}
	if cmd.Flags().Changed("model-scoring") {
		cfg.Match.UseModel, _ = cmd.Flags().GetBool("model-scoring")
	}
	if cmd.Flags().Changed("max-candidates") || cfg.MaxCandidates == 0 {
		cfg.MaxCandidates, _ = cmd.Flags().GetInt("max-candidates")
	}
	if dir, _ := cmd.Flags().GetString("audit-dir"); dir != "" {
		cfg.Audit.Dir = dir
	}

	return cfg, nil
}

func splitDomains(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, d := range strings.Split(s, ",") {
		if d = strings.TrimSpace(d); d != "" {
			out = append(out, d)
		}
	}
	return out
}

func writeReport(path string, result types.FinderResult) error {
	report := struct {
		GeneratedAt time.Time          `yaml:"generated_at"`
		Result      types.FinderResult `yaml:"result"`
	}{
		GeneratedAt: time.Now().UTC(),
		Result:      result,
	}
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func formatFindOutput(result types.FinderResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	switch result.Status {
	case types.StatusSearchUnavailable:
		fmt.Println("Search provider unavailable; no candidates found.")
	case types.StatusNoResults:
		fmt.Println("No matching professors found.")
	}

	for i, c := range result.Candidates {
		fmt.Printf("%d. %s - %s", i+1, c.Name, c.University)
		if c.Department != "" {
			fmt.Printf(" (%s)", c.Department)
		}
		fmt.Printf("  [score %.2f]\n", c.Score)

		if c.ResearchAreas != "" {
			fmt.Printf("   research: %s\n", c.ResearchAreas)
		}
		switch c.Hiring {
		case types.HiringExplicit:
			fmt.Printf("   hiring: yes - %q\n", c.HiringPhrase)
		case types.HiringImplicit:
			fmt.Println("   hiring: possibly")
		}
		if c.Rationale != "" {
			fmt.Printf("   why: %s\n", c.Rationale)
		}
		if c.Links.LabSite != "" {
			fmt.Printf("   lab: %s\n", c.Links.LabSite)
		}
		if c.Links.ScholarProfile != "" {
			fmt.Printf("   scholar: %s\n", c.Links.ScholarProfile)
		}
		if c.Links.NetworkProfile != "" {
			fmt.Printf("   network: %s\n", c.Links.NetworkProfile)
		}
		fmt.Printf("   sources: %s\n", strings.Join(c.Sources, ", "))
	}

	if len(result.Degradations) > 0 {
		fmt.Fprintf(os.Stderr, "\n%d degradation(s) during the run:\n", len(result.Degradations))
		for _, d := range result.Degradations {
			fmt.Fprintf(os.Stderr, "  - %s\n", d)
		}
	}
	return nil
}

func registerFindFlags(cmd *cobra.Command) {
	cmd.Flags().String("cv", "", "path to the CV text file (required)")
	cmd.Flags().String("university", "", "target university to focus the search on")
	cmd.Flags().String("department", "", "target department within the university")
	cmd.Flags().String("search-key", "", "search provider API key (overrides secrets and environment)")
	cmd.Flags().String("model-key", "", "model API key (overrides secrets and environment)")
	cmd.Flags().String("model", "", "model identifier for extraction and scoring")
	cmd.Flags().String("depth", "basic", "search depth: basic or advanced")
	cmd.Flags().String("recency", "", "restrict results to a trailing window: day, week, month, year")
	cmd.Flags().Int("max-results", 10, "maximum results per search query")
	cmd.Flags().String("include-domains", "", "limit results to these domains (comma-separated)")
	cmd.Flags().String("exclude-domains", "", "exclude results from these domains (comma-separated)")
	cmd.Flags().Int("max-candidates", 10, "maximum candidates in the final list")
	cmd.Flags().Bool("model-scoring", false, "score candidates with the model instead of the rubric")
	cmd.Flags().String("audit-dir", "", "directory for run telemetry (empty disables auditing)")
	cmd.Flags().Duration("timeout", 0, "overall run timeout (0 = none)")
	cmd.Flags().Bool("json", false, "output the result as JSON")
	cmd.Flags().String("out", "", "also write a YAML report to this path")
}

func init() {
	registerFindFlags(findCmd)
	_ = findCmd.MarkFlagRequired("cv")

	rootCmd.AddCommand(findCmd)
}
