package commands

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/robinvandernoord/r2-d2/cmd/r2d2/cmdutil"
	"github.com/robinvandernoord/r2-d2/internal/logger"
	"github.com/robinvandernoord/r2-d2/pkg/metrics"
	"github.com/robinvandernoord/r2-d2/pkg/restic"
	"github.com/robinvandernoord/r2-d2/pkg/usage"
)

var (
	usageBucket string
	usagePrefix string
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Report repository size by storage tier and object role",
	Long: `Account every object in the repository and report bytes and object
counts split by storage tier (Standard or Infrequent Access) and by role
(payload data or repository metadata).

Pack files under data/ count as payload; everything else in the repository
layout (snapshots, index, keys, locks, config) counts as metadata. Objects
that do not belong to a restic repository layout fail the run, so a typo
in --prefix is caught instead of silently producing a wrong total.

Examples:
  # Account the repository in the configured bucket
  r2d2 usage

  # Account a repository under a prefix in another bucket
  r2d2 usage --bucket backups --prefix laptop

  # Machine-readable output
  r2d2 usage -o json`,
	Args: cobra.NoArgs,
	RunE: runUsage,
}

func init() {
	usageCmd.Flags().StringVarP(&usageBucket, "bucket", "b", "", "Bucket holding the repository (default: R2_BUCKET)")
	usageCmd.Flags().StringVarP(&usagePrefix, "prefix", "p", "", "Repository prefix inside the bucket (default: R2_PREFIX)")
}

func runUsage(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}

	stop, err := cmdutil.StartRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer stop()

	bucket, err := cmdutil.ResolveBucket(cfg, usageBucket)
	if err != nil {
		return err
	}
	prefix := usagePrefix
	if prefix == "" {
		prefix = cfg.Prefix
	}

	store, err := cmdutil.NewStore(ctx, cfg, bucket)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	logger.Info("starting usage run",
		logger.RunID(runID),
		logger.Bucket(bucket),
		logger.Prefix(prefix),
	)

	// The repository config anchors the classification: without it, role
	// assignment cannot be trusted. With a password the config is also
	// decrypted and its format version verified.
	repo, err := restic.Open(ctx, store, restic.OpenOptions{
		Prefix:   prefix,
		Password: cfg.Password,
	})
	if err != nil {
		logger.Error("usage run failed", logger.RunID(runID), logger.Err(err))
		return err
	}

	// Accounting classifies both pack layouts per key; the detected layout
	// is diagnostic context for investigating unclassified objects.
	layout, err := repo.DetectLayout(ctx)
	if err != nil {
		logger.Error("usage run failed", logger.RunID(runID), logger.Err(err))
		return err
	}
	logger.Debug("detected repository layout",
		logger.RunID(runID),
		"layout", layout.String(),
	)

	report, err := usage.Compute(ctx, usage.Options{
		Store:      store,
		Classifier: repo.Classifier(),
		Prefix:     prefix,
		Workers:    cfg.Concurrency,
		Metrics:    metrics.NewUsageMetrics(),
	})
	if err != nil {
		logger.Error("usage run failed", logger.RunID(runID), logger.Err(err))
		return err
	}

	logger.Info("usage run complete",
		logger.RunID(runID),
		logger.Objects(report.TotalObjects()),
		logger.Size(report.TotalSize()),
	)

	return cmdutil.PrintResource(cmd.OutOrStdout(), report, report)
}
