package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robinvandernoord/r2-d2/cmd/r2d2/cmdutil"
	"github.com/robinvandernoord/r2-d2/internal/cli/prompt"
	"github.com/robinvandernoord/r2-d2/internal/logger"
	"github.com/robinvandernoord/r2-d2/pkg/config"
	"github.com/robinvandernoord/r2-d2/pkg/r2/s3"
)

var (
	authCheck bool
	authFile  string
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Set up R2 credentials interactively",
	Long: `Prompt for Cloudflare R2 credentials and write them to a dotenv
configuration file.

The account ID and an R2 API token (access key ID and secret access key)
come from the Cloudflare dashboard under R2 > Manage API Tokens. The file
is written with mode 0600.

Examples:
  # Interactive setup, written to .r2
  r2d2 auth

  # Verify the credentials against the account before saving
  r2d2 auth --check

  # Write to a different file
  r2d2 auth --file /etc/r2d2/.r2`,
	Args: cobra.NoArgs,
	RunE: runAuth,
}

func init() {
	authCmd.Flags().BoolVar(&authCheck, "check", false, "Verify the credentials by listing buckets before saving")
	authCmd.Flags().StringVar(&authFile, "file", ".r2", "File to write the configuration to")
}

func runAuth(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Existing values become prompt defaults. A broken configuration must
	// not stop auth, since auth is how it gets fixed.
	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		logger.Warn("existing configuration could not be loaded", logger.Err(err))
		cfg = config.GetDefaultConfig()
	}

	accountID, err := prompt.Input("Cloudflare account ID", cfg.AccountID)
	if err != nil {
		return cmdutil.HandleAbort(err)
	}
	cfg.AccountID = accountID

	accessKeyID, err := prompt.Input("Access key ID", cfg.AccessKeyID)
	if err != nil {
		return cmdutil.HandleAbort(err)
	}
	cfg.AccessKeyID = accessKeyID

	secretLabel := "Secret access key"
	if cfg.SecretAccessKey != "" {
		secretLabel = "Secret access key (empty keeps the current one)"
	}
	secret, err := prompt.Password(secretLabel)
	if err != nil {
		return cmdutil.HandleAbort(err)
	}
	if secret != "" {
		cfg.SecretAccessKey = secret
	}

	bucket, err := prompt.Input("Default bucket (optional)", cfg.Bucket)
	if err != nil {
		return cmdutil.HandleAbort(err)
	}
	cfg.Bucket = bucket

	if err := config.Validate(cfg); err != nil {
		return err
	}
	if err := config.RequireCredentials(cfg); err != nil {
		return err
	}

	if authCheck {
		client, err := cmdutil.NewClient(ctx, cfg)
		if err != nil {
			return err
		}
		buckets, err := s3.ListBuckets(ctx, client)
		if err != nil {
			return fmt.Errorf("credential check failed: %w", err)
		}
		cmdutil.PrintSuccess(fmt.Sprintf("Credentials verified (%d buckets visible)", len(buckets)))
	}

	if err := config.Save(cfg, authFile); err != nil {
		return err
	}

	cmdutil.PrintSuccess(fmt.Sprintf("Configuration written to %s", authFile))
	return nil
}
