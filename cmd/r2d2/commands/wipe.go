package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robinvandernoord/r2-d2/cmd/r2d2/cmdutil"
	"github.com/robinvandernoord/r2-d2/internal/cli/prompt"
	"github.com/robinvandernoord/r2-d2/internal/logger"
)

var (
	wipeBucket string
	wipeForce  bool
)

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete every object in a bucket",
	Long: `Delete every object in the bucket. The bucket itself is kept.

This is irreversible. Unless --force is given, the bucket name must be
typed back to confirm.

Examples:
  # Wipe the configured bucket (asks for confirmation)
  r2d2 wipe

  # Wipe another bucket without confirmation
  r2d2 wipe --bucket scratch --force`,
	Args: cobra.NoArgs,
	RunE: runWipe,
}

func init() {
	wipeCmd.Flags().StringVarP(&wipeBucket, "bucket", "b", "", "Bucket to wipe (default: R2_BUCKET)")
	wipeCmd.Flags().BoolVarP(&wipeForce, "force", "f", false, "Skip the confirmation prompt")
}

func runWipe(cmd *cobra.Command, args []string) error {
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

	bucket, err := cmdutil.ResolveBucket(cfg, wipeBucket)
	if err != nil {
		return err
	}

	if !wipeForce {
		err := prompt.ConfirmDanger(
			fmt.Sprintf("This permanently deletes ALL objects in bucket %q", bucket),
			bucket,
		)
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	store, err := cmdutil.NewStore(ctx, cfg, bucket)
	if err != nil {
		return err
	}

	logger.Info("wiping bucket", logger.Bucket(bucket))

	deleted, err := store.Purge(ctx, "")
	if err != nil {
		return err
	}

	cmdutil.PrintSuccess(fmt.Sprintf("Deleted %d object(s) from %s", deleted, bucket))
	return nil
}
