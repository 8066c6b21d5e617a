package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robinvandernoord/r2-d2/cmd/r2d2/cmdutil"
	"github.com/robinvandernoord/r2-d2/pkg/r2/s3"
)

var (
	initBucket   string
	initLocation string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the configured bucket",
	Long: `Create the bucket the tool is configured to use.

An optional location hint places the bucket near a region (R2 accepts
hints like "weur", "eeur" or "apac").

Examples:
  # Create the configured bucket
  r2d2 init

  # Create another bucket with a location hint
  r2d2 init --bucket backups --location weur`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVarP(&initBucket, "bucket", "b", "", "Bucket to create (default: R2_BUCKET)")
	initCmd.Flags().StringVar(&initLocation, "location", "", "Location hint for bucket placement")
}

func runInit(cmd *cobra.Command, args []string) error {
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

	bucket, err := cmdutil.ResolveBucket(cfg, initBucket)
	if err != nil {
		return err
	}

	client, err := cmdutil.NewClient(ctx, cfg)
	if err != nil {
		return err
	}

	if err := s3.CreateBucket(ctx, client, bucket, initLocation); err != nil {
		return err
	}

	cmdutil.PrintSuccess(fmt.Sprintf("Bucket %s created", bucket))
	return nil
}
