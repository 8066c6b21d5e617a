package config

import (
	"strings"
	"time"

	"github.com/robinvandernoord/r2-d2/internal/bytesize"
	"github.com/robinvandernoord/r2-d2/pkg/transfer"
	"github.com/robinvandernoord/r2-d2/pkg/usage"
)

// Defaults shared between ApplyDefaults, Save, and the commands.
const (
	// DefaultRegion is the signing region R2 expects.
	DefaultRegion = "auto"

	// DefaultConcurrency is the accounting worker count.
	DefaultConcurrency = usage.DefaultWorkers

	// DefaultMissingStorageClass counts unclassified listing entries as
	// Standard, the tier R2 reports for ordinary objects.
	DefaultMissingStorageClass = "standard"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// This function is called after loading configuration from file and environment
// variables to fill in any missing values with sensible defaults.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
func ApplyDefaults(cfg *Config) {
	applyStoreDefaults(cfg)
	applyLoggingDefaults(&cfg.Logging)
	applyRetryDefaults(&cfg.Retry)
	applyUploadDefaults(&cfg.Upload)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyMetricsDefaults(&cfg.Metrics)
}

// applyStoreDefaults sets connection and engine defaults.
func applyStoreDefaults(cfg *Config) {
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.MissingStorageClass == "" {
		cfg.MissingStorageClass = DefaultMissingStorageClass
	}
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalize log level to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	// Logs default to stderr: stdout carries the report.
	if cfg.Output == "" {
		cfg.Output = "stderr"
	}
}

// applyRetryDefaults sets the store backoff defaults.
//
// MaxRetries has no "unlimited" setting: a zero value means the default of
// three retries. Disabling retries entirely is not supported because a
// single dropped connection would then fail a full accounting run.
func applyRetryDefaults(cfg *RetryConfig) {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialBackoff == 0 {
		cfg.InitialBackoff = 100 * time.Millisecond
	}
	if cfg.MaxBackoff == 0 {
		cfg.MaxBackoff = 5 * time.Second
	}
	if cfg.Multiplier == 0 {
		cfg.Multiplier = 2.0
	}
}

// applyUploadDefaults sets multipart upload defaults.
func applyUploadDefaults(cfg *UploadConfig) {
	if cfg.PartSize == 0 {
		cfg.PartSize = bytesize.ByteSize(transfer.DefaultPartSize)
	}
	if cfg.Parallel == 0 {
		cfg.Parallel = transfer.DefaultParallelParts
	}
}

// applyTelemetryDefaults sets OpenTelemetry defaults.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	// Enabled defaults to false (opt-in for telemetry)
	// No need to set, zero value is false

	// Default endpoint is localhost:4317 (standard OTLP gRPC port)
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}

	// Default sample rate is 1.0 (sample all traces)
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}

	// Apply profiling defaults
	applyProfilingDefaults(&cfg.Profiling)
}

// applyProfilingDefaults sets Pyroscope profiling defaults.
func applyProfilingDefaults(cfg *ProfilingConfig) {
	// Enabled defaults to false (opt-in for profiling)
	// No need to set, zero value is false

	// Default endpoint is localhost:4040 (standard Pyroscope port)
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}

	// Default profile types include CPU, memory allocation, and goroutines
	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{
			"cpu",
			"alloc_objects",
			"alloc_space",
			"inuse_objects",
			"inuse_space",
			"goroutines",
		}
	}
}

// applyMetricsDefaults sets metrics defaults.
func applyMetricsDefaults(cfg *MetricsConfig) {
	// Enabled defaults to false (opt-in for metrics)
	if cfg.Listen == "" {
		cfg.Listen = "127.0.0.1:9090"
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is useful for:
//   - Generating sample configuration files
//   - Testing
//   - Documentation
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// defaultSettings returns every configuration key with its default value.
// Registering these with viper makes environment-only keys visible to
// Unmarshal.
func defaultSettings() map[string]any {
	return map[string]any{
		"account_id":            "",
		"access_key_id":         "",
		"secret_access_key":     "",
		"bucket":                "",
		"prefix":                "",
		"password":              "",
		"endpoint":              "",
		"region":                DefaultRegion,
		"force_path_style":      false,
		"concurrency":           DefaultConcurrency,
		"missing_storage_class": DefaultMissingStorageClass,

		"logging.level":  "INFO",
		"logging.format": "text",
		"logging.output": "stderr",

		"retry.max_retries":     3,
		"retry.initial_backoff": "100ms",
		"retry.max_backoff":     "5s",
		"retry.multiplier":      2.0,

		"upload.part_size": int64(transfer.DefaultPartSize),
		"upload.parallel":  transfer.DefaultParallelParts,

		"telemetry.enabled":     false,
		"telemetry.endpoint":    "localhost:4317",
		"telemetry.insecure":    true,
		"telemetry.sample_rate": 1.0,

		"telemetry.profiling.enabled":  false,
		"telemetry.profiling.endpoint": "http://localhost:4040",
		"telemetry.profiling.profile_types": []string{
			"cpu",
			"alloc_objects",
			"alloc_space",
			"inuse_objects",
			"inuse_space",
			"goroutines",
		},

		"metrics.enabled": false,
		"metrics.listen":  "127.0.0.1:9090",
	}
}
