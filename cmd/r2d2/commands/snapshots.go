package commands

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robinvandernoord/r2-d2/cmd/r2d2/cmdutil"
	"github.com/robinvandernoord/r2-d2/internal/cli/timeutil"
	"github.com/robinvandernoord/r2-d2/internal/logger"
	"github.com/robinvandernoord/r2-d2/pkg/restic"
)

var (
	snapshotsBucket string
	snapshotsPrefix string
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List snapshots in the repository",
	Long: `Decrypt and list the snapshots stored in the repository, oldest first.

Requires the repository password (R2_PASSWORD) to unwrap the master key.

Examples:
  # List snapshots in the configured bucket
  r2d2 snapshots

  # List snapshots in a repository under a prefix
  r2d2 snapshots --bucket backups --prefix laptop

  # Machine-readable output
  r2d2 snapshots -o json`,
	Args: cobra.NoArgs,
	RunE: runSnapshots,
}

func init() {
	snapshotsCmd.Flags().StringVarP(&snapshotsBucket, "bucket", "b", "", "Bucket holding the repository (default: R2_BUCKET)")
	snapshotsCmd.Flags().StringVarP(&snapshotsPrefix, "prefix", "p", "", "Repository prefix inside the bucket (default: R2_PREFIX)")
}

type snapshotList []restic.Snapshot

// Headers implements output.TableRenderer.
func (l snapshotList) Headers() []string {
	return []string{"ID", "TIME", "HOST", "PATHS", "TAGS"}
}

// Rows implements output.TableRenderer.
func (l snapshotList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, s := range l {
		rows = append(rows, []string{
			s.ShortID(),
			timeutil.FormatLocal(s.Time),
			cmdutil.EmptyOr(s.Hostname, "-"),
			cmdutil.EmptyOr(strings.Join(s.Paths, ", "), "-"),
			cmdutil.EmptyOr(strings.Join(s.Tags, ", "), "-"),
		})
	}
	return rows
}

func runSnapshots(cmd *cobra.Command, args []string) error {
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

	if cfg.Password == "" {
		return errors.New("R2_PASSWORD is required to decrypt snapshots")
	}

	bucket, err := cmdutil.ResolveBucket(cfg, snapshotsBucket)
	if err != nil {
		return err
	}
	prefix := snapshotsPrefix
	if prefix == "" {
		prefix = cfg.Prefix
	}

	store, err := cmdutil.NewStore(ctx, cfg, bucket)
	if err != nil {
		return err
	}

	repo, err := restic.Open(ctx, store, restic.OpenOptions{
		Prefix:   prefix,
		Password: cfg.Password,
	})
	if err != nil {
		return err
	}

	snapshots, err := repo.Snapshots(ctx)
	if err != nil {
		return err
	}

	logger.Debug("listed snapshots", logger.Bucket(bucket), logger.Objects(uint64(len(snapshots))))

	rows := snapshotList(snapshots)
	return cmdutil.PrintOutput(cmd.OutOrStdout(), rows, len(rows) == 0, "No snapshots found.", rows)
}
