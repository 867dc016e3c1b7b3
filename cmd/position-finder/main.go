// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the position-finder CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kowshik24/position-finder/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the position-finder CLI.
var rootCmd = &cobra.Command{
	Use:   "position-finder",
	Short: "Find professors with open PhD positions matching a student's CV",
	Long: `position-finder searches the web for faculty whose research matches a
student's CV and who show signs of recruiting graduate students. It extracts
research interests from the CV, fans out targeted searches, pulls professor
records from the result pages, and ranks candidates by fit.

The main workflow is the find subcommand; runs lists past run telemetry.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional and never an error when absent.
		_ = godotenv.Load()

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./position-finder.yaml or ~/.config/position-finder/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("position-finder")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "position-finder"))
		}
	}

	viper.SetEnvPrefix("POSITION_FINDER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
