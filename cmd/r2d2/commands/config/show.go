package config

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robinvandernoord/r2-d2/cmd/r2d2/cmdutil"
	"github.com/robinvandernoord/r2-d2/internal/cli/output"
	"github.com/robinvandernoord/r2-d2/pkg/config"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	Long: `Show the configuration after file, environment, and defaults have
been merged. Secrets are redacted.

Keys are printed in the same R2_* form the configuration file uses, so
any line can be pasted back into a .r2 file as-is.

Examples:
  # Show the resolved configuration
  r2d2 config show

  # Machine-readable output
  r2d2 config show -o json`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}

	red := cfg.Redacted()
	pairs := resolvedSettings(&red)

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case output.FormatJSON, output.FormatYAML:
		m := make(map[string]string, len(pairs))
		for _, pair := range pairs {
			m[pair[0]] = pair[1]
		}
		if format == output.FormatJSON {
			return output.PrintJSON(out, m)
		}
		return output.PrintYAML(out, m)
	default:
		return output.SimpleTable(out, pairs)
	}
}

// resolvedSettings flattens the configuration into the R2_* key dialect of
// the dotenv file, in file order.
func resolvedSettings(cfg *config.Config) [][2]string {
	return [][2]string{
		{"R2_ACCOUNT_ID", cfg.AccountID},
		{"R2_ACCESS_KEY_ID", cfg.AccessKeyID},
		{"R2_SECRET_ACCESS_KEY", cfg.SecretAccessKey},
		{"R2_BUCKET", cfg.Bucket},
		{"R2_PREFIX", cfg.Prefix},
		{"R2_PASSWORD", cfg.Password},
		{"R2_ENDPOINT", cfg.Endpoint},
		{"R2_REGION", cfg.Region},
		{"R2_FORCE_PATH_STYLE", strconv.FormatBool(cfg.ForcePathStyle)},
		{"R2_CONCURRENCY", strconv.Itoa(cfg.Concurrency)},
		{"R2_MISSING_STORAGE_CLASS", cfg.MissingStorageClass},
		{"R2_LOGGING_LEVEL", cfg.Logging.Level},
		{"R2_LOGGING_FORMAT", cfg.Logging.Format},
		{"R2_LOGGING_OUTPUT", cfg.Logging.Output},
		{"R2_RETRY_MAX_RETRIES", strconv.Itoa(cfg.Retry.MaxRetries)},
		{"R2_RETRY_INITIAL_BACKOFF", cfg.Retry.InitialBackoff.String()},
		{"R2_RETRY_MAX_BACKOFF", cfg.Retry.MaxBackoff.String()},
		{"R2_RETRY_MULTIPLIER", strconv.FormatFloat(cfg.Retry.Multiplier, 'g', -1, 64)},
		{"R2_UPLOAD_PART_SIZE", cfg.Upload.PartSize.String()},
		{"R2_UPLOAD_PARALLEL", strconv.Itoa(cfg.Upload.Parallel)},
		{"R2_TELEMETRY_ENABLED", strconv.FormatBool(cfg.Telemetry.Enabled)},
		{"R2_TELEMETRY_ENDPOINT", cfg.Telemetry.Endpoint},
		{"R2_TELEMETRY_INSECURE", strconv.FormatBool(cfg.Telemetry.Insecure)},
		{"R2_TELEMETRY_SAMPLE_RATE", strconv.FormatFloat(cfg.Telemetry.SampleRate, 'g', -1, 64)},
		{"R2_TELEMETRY_PROFILING_ENABLED", strconv.FormatBool(cfg.Telemetry.Profiling.Enabled)},
		{"R2_TELEMETRY_PROFILING_ENDPOINT", cfg.Telemetry.Profiling.Endpoint},
		{"R2_TELEMETRY_PROFILING_PROFILE_TYPES", strings.Join(cfg.Telemetry.Profiling.ProfileTypes, ",")},
		{"R2_METRICS_ENABLED", strconv.FormatBool(cfg.Metrics.Enabled)},
		{"R2_METRICS_LISTEN", cfg.Metrics.Listen},
	}
}
