// Package commands implements the CLI commands for r2d2.
package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/robinvandernoord/r2-d2/cmd/r2d2/cmdutil"
	configcmd "github.com/robinvandernoord/r2-d2/cmd/r2d2/commands/config"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "r2d2",
	Short: "Storage accounting for restic repositories on Cloudflare R2",
	Long: `r2d2 inspects restic repositories stored in Cloudflare R2 (or any
S3-compatible bucket) and reports how many bytes and objects they hold,
split by storage tier (Standard vs Infrequent Access) and by role
(payload pack files vs repository metadata).

Configuration comes from a .r2 or .env file in the working directory, or
from R2_* environment variables. Run 'r2d2 auth' for an interactive setup.

Use "r2d2 [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Sync flags to cmdutil.Flags for subcommands
		cmdutil.Flags.ConfigPath, _ = cmd.Flags().GetString("config")
		cmdutil.Flags.Output, _ = cmd.Flags().GetString("output")
		cmdutil.Flags.NoColor, _ = cmd.Flags().GetBool("no-color")
		cmdutil.Flags.Verbose, _ = cmd.Flags().GetBool("verbose")
		cmdutil.Flags.LogFormat, _ = cmd.Flags().GetString("log-format")
		cmdutil.Flags.MetricsListen, _ = cmd.Flags().GetString("metrics-listen")
		cmdutil.Version = Version
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: ./.r2, then ./.env)")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format (table|json|yaml)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (text|json)")
	rootCmd.PersistentFlags().String("metrics-listen", "", "Serve /health and /metrics on this address for the duration of the run")

	// Add subcommands
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(overviewCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(snapshotsCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(wipeCmd)
	rootCmd.AddCommand(configcmd.Cmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)

	// Hide the default completion command (we provide our own)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
