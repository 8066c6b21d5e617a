package config

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/robinvandernoord/r2-d2/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Load and validate the r2d2 configuration.

Checks for syntax errors, invalid values, and settings that will make
commands fail later.

Examples:
  # Validate the default configuration sources
  r2d2 config validate

  # Validate a specific file
  r2d2 config validate --config ./production.r2`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	// Get config path from the root's persistent flag
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	displayPath := configPath
	if displayPath == "" {
		switch {
		case fileExists(".r2"):
			displayPath = ".r2"
		case fileExists(".env"):
			displayPath = ".env"
		default:
			displayPath = "environment only"
		}
	}

	var warnings []string

	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		warnings = append(warnings, "credentials not configured - store commands will fail (run `r2d2 auth`)")
	}
	if cfg.AccountID == "" && cfg.Endpoint == "" {
		warnings = append(warnings, "no account ID or endpoint - the store endpoint cannot be derived")
	}
	if cfg.Bucket == "" {
		warnings = append(warnings, "no default bucket - commands need an explicit --bucket")
	}
	if cfg.Password == "" {
		warnings = append(warnings, "repository password not set - snapshots will fail")
	}

	fmt.Printf("Configuration source: %s\n", displayPath)
	fmt.Println("Validation: OK")

	if len(warnings) > 0 {
		fmt.Println("\nWarnings:")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
	}

	fmt.Printf("\nConfiguration summary:\n")
	fmt.Printf("  Account ID:   %s\n", orUnset(cfg.AccountID))
	fmt.Printf("  Bucket:       %s\n", orUnset(cfg.Bucket))
	fmt.Printf("  Concurrency:  %d\n", cfg.Concurrency)
	fmt.Printf("  Log level:    %s\n", cfg.Logging.Level)

	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func orUnset(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}
