package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/robinvandernoord/r2-d2/internal/bytesize"
)

// Config represents the r2-d2 configuration.
//
// This structure captures everything an invocation needs:
//   - R2/S3 connection (account, credentials, bucket, endpoint)
//   - Repository addressing (prefix, password)
//   - Engine tuning (concurrency, retry policy, upload part sizing)
//   - Ambient concerns (logging, telemetry, metrics)
//
// Configuration sources (in order of precedence):
//  1. Environment variables (R2_*)
//  2. Configuration file (dotenv format: explicit --config path, else ./.r2,
//     else ./.env)
//  3. Default values (lowest priority)
//
// Files and environment both use the flat R2_* names; nested fields join
// their path with underscores (R2_LOGGING_LEVEL, R2_RETRY_MAX_BACKOFF).
type Config struct {
	// AccountID is the Cloudflare account ID. Required unless Endpoint is
	// set explicitly: the default endpoint is derived from it.
	AccountID string `mapstructure:"account_id" yaml:"account_id,omitempty"`

	// AccessKeyID and SecretAccessKey are the S3 API credentials for the
	// bucket. Created in the Cloudflare dashboard under R2 API tokens.
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id,omitempty"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key,omitempty"`

	// Bucket is the default bucket for commands that take no --bucket flag.
	Bucket string `mapstructure:"bucket" yaml:"bucket,omitempty"`

	// Prefix scopes all repository operations to a key prefix within the
	// bucket. Empty means the repository lives at the bucket root.
	Prefix string `mapstructure:"prefix" yaml:"prefix,omitempty"`

	// Password is the repository password, needed only by commands that
	// decrypt repository contents (snapshots).
	Password string `mapstructure:"password" yaml:"password,omitempty"`

	// Endpoint overrides the derived R2 endpoint. Useful for other
	// S3-compatible stores and for integration tests.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`

	// Region is the S3 signing region. R2 uses "auto".
	Region string `mapstructure:"region" yaml:"region,omitempty"`

	// ForcePathStyle switches to path-style bucket addressing, required by
	// Localstack and some self-hosted stores.
	ForcePathStyle bool `mapstructure:"force_path_style" yaml:"force_path_style,omitempty"`

	// Concurrency is the number of accounting workers consuming the
	// listing. Default: 8
	Concurrency int `mapstructure:"concurrency" validate:"omitempty,min=1,max=256" yaml:"concurrency,omitempty"`

	// MissingStorageClass selects how objects listed without a storage
	// class are tiered.
	// Valid values: standard (count as Standard), head (look the object
	// up), fail (abort the run)
	MissingStorageClass string `mapstructure:"missing_storage_class" validate:"omitempty,oneof=standard head fail" yaml:"missing_storage_class,omitempty"`

	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Retry controls the store's backoff policy for transient failures
	Retry RetryConfig `mapstructure:"retry" yaml:"retry"`

	// Upload controls multipart upload sizing and parallelism
	Upload UploadConfig `mapstructure:"upload" yaml:"upload"`

	// Telemetry controls OpenTelemetry distributed tracing
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// Metrics contains Prometheus metrics configuration
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized
	// to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path. Defaults to stderr so
	// table and JSON output on stdout stays machine-consumable.
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// RetryConfig controls the bounded exponential backoff applied to
// transient store failures.
type RetryConfig struct {
	// MaxRetries is the number of attempts after the first failure.
	// Default: 3
	MaxRetries int `mapstructure:"max_retries" validate:"omitempty,min=0,max=20" yaml:"max_retries"`

	// InitialBackoff is the wait before the first retry; each subsequent
	// wait is scaled by Multiplier up to MaxBackoff.
	// Default: 100ms
	InitialBackoff time.Duration `mapstructure:"initial_backoff" yaml:"initial_backoff"`

	// MaxBackoff caps the wait between retries.
	// Default: 5s
	MaxBackoff time.Duration `mapstructure:"max_backoff" yaml:"max_backoff"`

	// Multiplier scales the backoff after each failed attempt.
	// Default: 2.0
	Multiplier float64 `mapstructure:"multiplier" validate:"omitempty,gte=1" yaml:"multiplier"`
}

// UploadConfig controls the multipart upload pipeline.
type UploadConfig struct {
	// PartSize is the bytes per multipart part. Supports human-readable
	// values like "15MiB". The S3 API floor for non-final parts is 5 MiB.
	// Default: 15MiB
	PartSize bytesize.ByteSize `mapstructure:"part_size" yaml:"part_size,omitempty"`

	// Parallel bounds concurrent part uploads.
	// Default: 8
	Parallel int `mapstructure:"parallel" validate:"omitempty,min=1,max=64" yaml:"parallel,omitempty"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
// When enabled, trace data is exported to an OTLP-compatible collector
// (e.g., Jaeger, Tempo, or any OTLP receiver).
type TelemetryConfig struct {
	// Enabled controls whether distributed tracing is enabled
	// Default: false (opt-in for telemetry)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP collector endpoint (host:port)
	// Default: "localhost:4317" (standard OTLP gRPC port)
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`

	// Insecure controls whether to use insecure (non-TLS) connection
	// Default: true (for local development)
	Insecure bool `mapstructure:"insecure" yaml:"insecure,omitempty"`

	// SampleRate controls the trace sampling rate (0.0 to 1.0)
	// 1.0 = sample all traces, 0.5 = sample 50%, 0.0 = no sampling
	// Default: 1.0 (sample all)
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate,omitempty"`

	// Profiling contains Pyroscope continuous profiling configuration
	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls Pyroscope continuous profiling.
type ProfilingConfig struct {
	// Enabled controls whether continuous profiling is enabled
	// Default: false (opt-in for profiling)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the Pyroscope server endpoint (URL)
	// Default: "http://localhost:4040" (standard Pyroscope port)
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`

	// ProfileTypes specifies which profile types to collect
	// Default: ["cpu", "alloc_objects", "alloc_space", "inuse_objects",
	// "inuse_space", "goroutines"]
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types,omitempty"`
}

// MetricsConfig configures Prometheus metrics collection and the optional
// diagnostics listener. When Enabled is false, no metrics are collected
// (zero overhead).
type MetricsConfig struct {
	// Enabled controls whether metrics collection and the diagnostics
	// HTTP listener are enabled
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Listen is the bind address for the diagnostics listener serving
	// /health and /metrics
	// Default: "127.0.0.1:9090"
	Listen string `mapstructure:"listen" validate:"omitempty,hostname_port" yaml:"listen,omitempty"`
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (R2_*)
//  2. Configuration file (dotenv format)
//  3. Default values
//
// The configuration file is the explicit configPath when given, otherwise
// the first of ./.r2 and ./.env that exists. A missing file is not an
// error: the environment alone is a complete source.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v)

	path, found, err := resolveConfigFile(configPath)
	if err != nil {
		return nil, err
	}
	if found {
		settings, err := readDotenvFile(path)
		if err != nil {
			return nil, err
		}
		if err := v.MergeConfigMap(nestSettings(settings)); err != nil {
			return nil, fmt.Errorf("failed to merge config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Apply defaults for any missing values
	ApplyDefaults(&cfg)

	// Validate configuration
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Save writes the configuration to path as dotenv KEY=VALUE lines, the
// format Load reads back. Only non-default values are written. The file is
// created with 0600 permissions because it carries credentials.
func Save(cfg *Config, path string) error {
	var b strings.Builder
	b.WriteString("# r2-d2 configuration\n")

	write := func(key, value string) {
		if value == "" {
			return
		}
		if strings.ContainsAny(value, " #'\"\n") {
			value = strconv.Quote(value)
		}
		fmt.Fprintf(&b, "%s=%s\n", key, value)
	}

	write("R2_ACCOUNT_ID", cfg.AccountID)
	write("R2_ACCESS_KEY_ID", cfg.AccessKeyID)
	write("R2_SECRET_ACCESS_KEY", cfg.SecretAccessKey)
	write("R2_BUCKET", cfg.Bucket)
	write("R2_PREFIX", cfg.Prefix)
	write("R2_PASSWORD", cfg.Password)
	write("R2_ENDPOINT", cfg.Endpoint)
	if cfg.Region != DefaultRegion {
		write("R2_REGION", cfg.Region)
	}
	if cfg.ForcePathStyle {
		write("R2_FORCE_PATH_STYLE", "true")
	}
	if cfg.Concurrency != 0 && cfg.Concurrency != DefaultConcurrency {
		write("R2_CONCURRENCY", strconv.Itoa(cfg.Concurrency))
	}
	if cfg.MissingStorageClass != "" && cfg.MissingStorageClass != DefaultMissingStorageClass {
		write("R2_MISSING_STORAGE_CLASS", cfg.MissingStorageClass)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Redacted returns a copy of the configuration with secrets masked,
// suitable for display and logs.
func (c *Config) Redacted() Config {
	out := *c
	if out.SecretAccessKey != "" {
		out.SecretAccessKey = "[redacted]"
	}
	if out.Password != "" {
		out.Password = "[redacted]"
	}
	return out
}

// setupViper configures environment variable support and registers every
// key with its default so environment-only configuration resolves.
func setupViper(v *viper.Viper) {
	// Environment variables use the R2_ prefix; nested keys join their
	// path with underscores.
	// Example: R2_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("R2")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Viper only resolves environment variables for keys it knows about,
	// so every key is registered with its default value.
	for key, value := range defaultSettings() {
		v.SetDefault(key, value)
	}
}

// resolveConfigFile picks the configuration file: an explicit path must
// exist; otherwise the first of ./.r2 and ./.env that exists is used.
func resolveConfigFile(explicit string) (string, bool, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", false, fmt.Errorf("configuration file not found: %s", explicit)
		}
		return explicit, true, nil
	}

	for _, candidate := range []string{".r2", ".env"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		}
	}

	return "", false, nil
}

// readDotenvFile parses a dotenv file into its flat key/value pairs.
func readDotenvFile(path string) (map[string]string, error) {
	fv := viper.New()
	fv.SetConfigFile(path)
	fv.SetConfigType("env")

	if err := fv.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	settings := make(map[string]string)
	for _, key := range fv.AllKeys() {
		settings[key] = fv.GetString(key)
	}
	return settings, nil
}

// dotenvKeys maps the flat R2_* names used in files and the environment to
// nested config keys. Keys outside this table are ignored, so a shared
// .env file can carry other tools' settings.
var dotenvKeys = map[string]string{
	"r2_account_id":            "account_id",
	"r2_access_key_id":         "access_key_id",
	"r2_secret_access_key":     "secret_access_key",
	"r2_bucket":                "bucket",
	"r2_prefix":                "prefix",
	"r2_password":              "password",
	"r2_endpoint":              "endpoint",
	"r2_region":                "region",
	"r2_force_path_style":      "force_path_style",
	"r2_concurrency":           "concurrency",
	"r2_missing_storage_class": "missing_storage_class",

	"r2_logging_level":  "logging.level",
	"r2_logging_format": "logging.format",
	"r2_logging_output": "logging.output",

	"r2_retry_max_retries":     "retry.max_retries",
	"r2_retry_initial_backoff": "retry.initial_backoff",
	"r2_retry_max_backoff":     "retry.max_backoff",
	"r2_retry_multiplier":      "retry.multiplier",

	"r2_upload_part_size": "upload.part_size",
	"r2_upload_parallel":  "upload.parallel",

	"r2_telemetry_enabled":     "telemetry.enabled",
	"r2_telemetry_endpoint":    "telemetry.endpoint",
	"r2_telemetry_insecure":    "telemetry.insecure",
	"r2_telemetry_sample_rate": "telemetry.sample_rate",

	"r2_telemetry_profiling_enabled":       "telemetry.profiling.enabled",
	"r2_telemetry_profiling_endpoint":      "telemetry.profiling.endpoint",
	"r2_telemetry_profiling_profile_types": "telemetry.profiling.profile_types",

	"r2_metrics_enabled": "metrics.enabled",
	"r2_metrics_listen":  "metrics.listen",
}

// nestSettings converts flat dotenv pairs into the nested map shape viper
// merges at config-file precedence (below environment variables).
func nestSettings(flat map[string]string) map[string]any {
	nested := make(map[string]any)

	for key, value := range flat {
		dotted, ok := dotenvKeys[strings.ToLower(key)]
		if !ok {
			continue
		}

		parts := strings.Split(dotted, ".")
		m := nested
		for _, part := range parts[:len(parts)-1] {
			child, ok := m[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				m[part] = child
			}
			m = child
		}
		m[parts[len(parts)-1]] = value
	}

	return nested
}

// configDecodeHooks returns a combined decode hook for all custom types.
// Dotenv and environment values are always strings, so beyond the ByteSize
// and duration parsing this also covers plain scalars.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		emptyStringDecodeHook(),
		byteSizeDecodeHook(),
		durationDecodeHook(),
		mapstructure.StringToSliceHookFunc(","),
		scalarDecodeHook(),
	)
}

// emptyStringDecodeHook maps empty assignments (R2_CONCURRENCY=) to the
// target's zero value instead of a parse error.
func emptyStringDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if s, ok := data.(string); ok && s == "" && to.Kind() != reflect.String {
			return reflect.Zero(to).Interface(), nil
		}
		return data, nil
	}
}

// byteSizeDecodeHook returns a mapstructure decode hook that converts
// strings and integers to bytesize.ByteSize. This enables config values
// like "15MiB", "500MB", or plain numbers.
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		// Only handle conversion to ByteSize
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return bytesize.ParseByteSize(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

// durationDecodeHook returns a mapstructure decode hook that converts
// strings to time.Duration. This enables config values like "30s", "5m",
// "1h".
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		// Only handle conversion to time.Duration
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// scalarDecodeHook converts string values to numeric and boolean targets.
// Dotenv files carry everything as text; this hook runs after the ByteSize
// and duration hooks have claimed their named types.
func scalarDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		s, ok := data.(string)
		if !ok {
			return data, nil
		}

		switch to.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return strconv.ParseInt(s, 10, 64)
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return strconv.ParseUint(s, 10, 64)
		case reflect.Float32, reflect.Float64:
			return strconv.ParseFloat(s, 64)
		case reflect.Bool:
			return strconv.ParseBool(s)
		default:
			return data, nil
		}
	}
}
