package main

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	mantid "github.com/reefwatch/mantid"
	"github.com/reefwatch/mantid/domain/matching"
	"github.com/reefwatch/mantid/internal/log"
)

func evaluateCmd() *cobra.Command {
	var (
		envFile  string
		rebuild  bool
		noResume bool
		pageSize int
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run the self-match evaluation over the catalog",
		Long: `Run the self-match evaluation over the whole catalog.

Each individual's canonical photo is re-embedded and queried against
the vector index; the rank at which the individual matches itself is
persisted. Runs are resumable: already evaluated individuals are
skipped unless --rebuild is given.

Environment variables (prefix MANTID_):
  DB_URL                       Database URL (default: sqlite in data dir)
  EMBEDDING_BASE_URL           Embedding service endpoint
  EMBEDDING_API_KEY            Embedding service API key
  EMBEDDING_DIMENSION          Embedding dimension (default: 1024)
  EVALUATION_MATCH_COUNT       Neighbors per query (default: 10)
  EVALUATION_THROTTLE_MILLIS   Delay between entities (default: 150)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(envFile, rebuild, noResume, pageSize)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "Clear all prior results and recompute everything")
	cmd.Flags().BoolVar(&noResume, "no-resume", false, "Re-evaluate entities that already have results")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Catalog page size (default from config)")

	return cmd
}

func runEvaluate(envFile string, rebuild, noResume bool, pageSize int) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	logger := log.NewLogger(cfg)

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("evaluating"),
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
	if pageSize > 0 {
		opts = append(opts, mantid.WithPageSize(pageSize))
	}

	ctx, stop := signalContext()
	defer stop()
	client, err := mantid.New(ctx, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	summary, err := client.Evaluate(ctx, matching.RunOptions{
		PageSize: pageSize,
		Resume:   !noResume,
		Rebuild:  rebuild,
	})
	_ = bar.Finish()
	if err != nil {
		return err
	}

	report, err := client.AccuracyReport(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("entities: %d  processed: %d  skipped: %d  failed: %d\n",
		summary.TotalEntities, summary.Processed, summary.Skipped, summary.Failed)
	fmt.Printf("top-1 accuracy: %.1f%% (%d/%d)  top-%d accuracy: %.1f%%\n",
		report.Top1Accuracy()*100, report.Top1Correct(), report.Queries(),
		report.K(), report.TopKAccuracy()*100)

	return nil
}
