package main

import (
	"fmt"

	"github.com/spf13/cobra"

	mantid "github.com/reefwatch/mantid"
	"github.com/reefwatch/mantid/internal/log"
)

func statsCmd() *cobra.Command {
	var (
		envFile    string
		duplicates bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Report accuracy statistics from persisted results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(envFile, duplicates)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().BoolVar(&duplicates, "duplicates", false, "Also list content hashes shared across individuals")

	return cmd
}

func runStats(envFile string, duplicates bool) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	logger := log.NewLogger(cfg)

	ctx, stop := signalContext()
	defer stop()

	opts := append(mantid.OptionsFromConfig(cfg), mantid.WithLogger(logger))
	client, err := mantid.New(ctx, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	report, err := client.AccuracyReport(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("queries: %d\n", report.Queries())
	fmt.Printf("top-1 accuracy: %.1f%% (%d/%d)\n",
		report.Top1Accuracy()*100, report.Top1Correct(), report.Queries())
	fmt.Printf("top-%d accuracy: %.1f%% (%d/%d)\n",
		report.K(), report.TopKAccuracy()*100, report.TopKCorrect(), report.Queries())

	if duplicates {
		dupes, err := client.DuplicateHashes(ctx)
		if err != nil {
			return err
		}
		if len(dupes) == 0 {
			fmt.Println("no duplicate embeddings")
			return nil
		}
		fmt.Printf("duplicate embeddings (%d):\n", len(dupes))
		for _, d := range dupes {
			fmt.Printf("  %s shared by %d owners\n", d.ContentHash(), len(d.Owners()))
		}
	}

	return nil
}
