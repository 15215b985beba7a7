package main

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	mantid "github.com/reefwatch/mantid"
	"github.com/reefwatch/mantid/internal/log"
)

func indexCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Backfill embeddings for every catalog photo",
		Long: `Embed every catalog photo into the vector index without running
an evaluation. Photos whose stored embedding is unchanged are skipped
by content hash, so re-running is cheap.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(envFile)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")

	return cmd
}

func runIndex(envFile string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	logger := log.NewLogger(cfg)

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("indexing"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	opts := mantid.OptionsFromConfig(cfg)
	opts = append(opts,
		mantid.WithLogger(logger),
		mantid.WithProgress(func(done, total int) {
			bar.ChangeMax(total)
			_ = bar.Set(done)
		}),
	)

	ctx, stop := signalContext()
	defer stop()

	client, err := mantid.New(ctx, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	summary, err := client.Index(ctx)
	_ = bar.Finish()
	if err != nil {
		return err
	}

	fmt.Printf("entities: %d  indexed: %d  failed: %d\n",
		summary.TotalEntities, summary.Indexed, summary.Failed)

	return nil
}
