// Package main is the entry point for the mantid CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reefwatch/mantid/internal/config"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mantid",
		Short: "Manta-ray photo-identification matching pipeline",
		Long:  `Mantid embeds catalog photos, maintains the vector index, and runs the self-match evaluation harness that scores identification accuracy.`,
	}

	cmd.AddCommand(evaluateCmd())
	cmd.AddCommand(indexCmd())
	cmd.AddCommand(statsCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig loads configuration from .env file and environment
// variables, and makes sure the data directory exists.
func loadConfig(envFile string) (config.AppConfig, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return config.AppConfig{}, fmt.Errorf("create data directory: %w", err)
	}
	return cfg, nil
}
