// Package config implements configuration inspection commands for r2d2.
package config

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for configuration inspection.
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and validate configuration",
	Long: `Inspect the resolved r2d2 configuration.

Configuration is read from a .r2 or .env file in the working directory
and from R2_* environment variables, with environment variables taking
precedence per key.

Examples:
  # Show the resolved configuration (secrets redacted)
  r2d2 config show

  # Validate the configuration
  r2d2 config validate

  # Generate a JSON schema for the configuration
  r2d2 config schema`,
}

func init() {
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(schemaCmd)
	Cmd.AddCommand(validateCmd)
}
