// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kowshik24/position-finder/internal/audit"
	"github.com/kowshik24/position-finder/pkg/types"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List past pipeline runs from the audit database",
	Long: `Runs prints the telemetry of recent pipeline runs: when they ran, their
status, query and candidate counts, and any degradations recorded.`,
	RunE: runRuns,
}

func runRuns(cmd *cobra.Command, args []string) error {
	auditDir, _ := cmd.Flags().GetString("audit-dir")
	if auditDir == "" {
		auditDir = viper.GetString("audit.dir")
	}
	if auditDir == "" {
		return fmt.Errorf("no audit directory: pass --audit-dir or set audit.dir in the config file")
	}

	store, err := audit.NewStore(types.AuditConfig{Dir: auditDir})
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	history, err := store.History(context.Background(), limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(history)
	}

	if len(history) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	for _, r := range history {
		duration := ""
		if !r.FinishedAt.IsZero() {
			duration = r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
		}
		fmt.Printf("%s  %s  %-18s  queries=%d candidates=%d  %s\n",
			r.StartedAt.Format("2006-01-02 15:04:05"), r.ID[:8], r.Status,
			r.QueryCount, r.CandidateCount, duration)
		for _, d := range r.Degradations {
			fmt.Printf("    degraded: %s\n", d)
		}
	}
	return nil
}

func init() {
	runsCmd.Flags().String("audit-dir", "", "directory holding the audit database")
	runsCmd.Flags().Int("limit", 20, "maximum runs to list")
	runsCmd.Flags().Bool("json", false, "output runs as JSON")

	rootCmd.AddCommand(runsCmd)
}
