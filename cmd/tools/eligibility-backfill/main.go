// cmd/tools/eligibility-backfill/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"insertion-workers/internal/backfill"
	"insertion-workers/internal/candidates"
	"insertion-workers/internal/common/camunda"
	"insertion-workers/internal/common/config"
	"insertion-workers/internal/common/database"
	"insertion-workers/internal/common/logger"
	"insertion-workers/internal/common/metrics"
	"insertion-workers/internal/eligibility"
	"insertion-workers/internal/reference"
)

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "eligibility-backfill",
		Short: "Recompute stored eligibility statuses",
		Long: `eligibility-backfill re-evaluates candidates against the current programme
policies and writes back statut_eligibilite where it changed.

Examples:
  eligibility-backfill run --dry-run
  eligibility-backfill run --call 6f1c... --concurrency 16
  eligibility-backfill run --flush-policy 2b7e...`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (configs/config.yaml lookup when empty)")
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var opts backfill.Options

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Re-evaluate candidates and persist changed statuses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.CallID, "call", "", "Only candidates of this call (appel_id)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Evaluate without writing")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 0, "Parallel evaluations per page (default eligibility.batch_concurrency)")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 200, "Candidates per page")
	cmd.Flags().StringSliceVar(&opts.FlushPolicies, "flush-policy", nil, "Drop the cached policy of these programmes first (repeatable)")
	return cmd
}

func run(ctx context.Context, opts backfill.Options, out io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	zapLog, err := logger.NewFromConfig(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return err
	}
	defer pg.Close()
	if err := camunda.Retry(ctx, 3, 2*time.Second, log, "postgres", func() error { return pg.Ping(ctx) }); err != nil {
		return err
	}

	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	provider := reference.New(pg.DB, rdb.Client, cfg.Eligibility, log)
	evaluator := eligibility.NewEvaluator(provider, eligibility.Config{
		BaselineMinAge: cfg.Eligibility.BaselineMinAge,
		BaselineMaxAge: cfg.Eligibility.BaselineMaxAge,
	}, log, eligibility.WithRecorder(metrics.EligibilityRecorder{}))

	if opts.Concurrency <= 0 {
		opts.Concurrency = cfg.Eligibility.BatchConcurrency
	}

	runner := backfill.New(candidates.NewRepository(pg.DB), evaluator, opts, log)
	if cache, ok := provider.(backfill.PolicyCache); ok {
		runner.WithPolicyCache(cache)
	}
	summary, err := runner.Run(ctx)
	if summary != nil {
		if werr := writeSummary(out, summary); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

func writeSummary(w io.Writer, s *backfill.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
