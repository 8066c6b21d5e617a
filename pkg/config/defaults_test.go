package config

import (
	"testing"
	"time"

	"github.com/robinvandernoord/r2-d2/internal/bytesize"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stderr" {
		t.Errorf("Expected default log output 'stderr', got %q", cfg.Logging.Output)
	}
}

func TestApplyDefaults_Store(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Region != "auto" {
		t.Errorf("Expected default region 'auto', got %q", cfg.Region)
	}
	if cfg.Concurrency != DefaultConcurrency {
		t.Errorf("Expected default concurrency %d, got %d", DefaultConcurrency, cfg.Concurrency)
	}
	if cfg.MissingStorageClass != "standard" {
		t.Errorf("Expected default missing storage class 'standard', got %q", cfg.MissingStorageClass)
	}
	// Connection settings have no defaults, they come from the user
	if cfg.AccountID != "" || cfg.Bucket != "" {
		t.Error("Expected no default account or bucket")
	}
}

func TestApplyDefaults_Retry(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Retry.MaxRetries != 3 {
		t.Errorf("Expected default max retries 3, got %d", cfg.Retry.MaxRetries)
	}
	if cfg.Retry.InitialBackoff != 100*time.Millisecond {
		t.Errorf("Expected default initial backoff 100ms, got %v", cfg.Retry.InitialBackoff)
	}
	if cfg.Retry.MaxBackoff != 5*time.Second {
		t.Errorf("Expected default max backoff 5s, got %v", cfg.Retry.MaxBackoff)
	}
	if cfg.Retry.Multiplier != 2.0 {
		t.Errorf("Expected default multiplier 2.0, got %v", cfg.Retry.Multiplier)
	}
}

func TestApplyDefaults_Upload(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Upload.PartSize != 15*bytesize.MiB {
		t.Errorf("Expected default part size 15MiB, got %v", cfg.Upload.PartSize)
	}
	if cfg.Upload.Parallel != 8 {
		t.Errorf("Expected default parallel 8, got %d", cfg.Upload.Parallel)
	}
}

func TestApplyDefaults_Telemetry(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Telemetry.Enabled {
		t.Error("Expected telemetry disabled by default")
	}
	if cfg.Telemetry.Endpoint != "localhost:4317" {
		t.Errorf("Expected default OTLP endpoint 'localhost:4317', got %q", cfg.Telemetry.Endpoint)
	}
	if cfg.Telemetry.SampleRate != 1.0 {
		t.Errorf("Expected default sample rate 1.0, got %v", cfg.Telemetry.SampleRate)
	}
	if cfg.Telemetry.Profiling.Endpoint != "http://localhost:4040" {
		t.Errorf("Expected default Pyroscope endpoint, got %q", cfg.Telemetry.Profiling.Endpoint)
	}
	if len(cfg.Telemetry.Profiling.ProfileTypes) != 6 {
		t.Errorf("Expected 6 default profile types, got %d", len(cfg.Telemetry.Profiling.ProfileTypes))
	}
}

func TestApplyDefaults_Metrics(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Metrics.Enabled {
		t.Error("Expected metrics disabled by default")
	}
	if cfg.Metrics.Listen != "127.0.0.1:9090" {
		t.Errorf("Expected default listen address '127.0.0.1:9090', got %q", cfg.Metrics.Listen)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Region:      "us-east-1",
		Concurrency: 2,
		Logging: LoggingConfig{
			Level:  "DEBUG",
			Format: "json",
			Output: "/var/log/r2d2.log",
		},
		Retry: RetryConfig{
			MaxRetries:     10,
			InitialBackoff: time.Second,
		},
	}

	ApplyDefaults(cfg)

	// Verify explicit values were preserved
	if cfg.Region != "us-east-1" {
		t.Errorf("Expected explicit region to be preserved, got %q", cfg.Region)
	}
	if cfg.Concurrency != 2 {
		t.Errorf("Expected explicit concurrency 2 to be preserved, got %d", cfg.Concurrency)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected explicit level 'DEBUG' to be preserved, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected explicit format 'json' to be preserved, got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "/var/log/r2d2.log" {
		t.Errorf("Expected explicit output to be preserved, got %q", cfg.Logging.Output)
	}
	if cfg.Retry.MaxRetries != 10 {
		t.Errorf("Expected explicit max retries 10 to be preserved, got %d", cfg.Retry.MaxRetries)
	}
	if cfg.Retry.InitialBackoff != time.Second {
		t.Errorf("Expected explicit initial backoff 1s to be preserved, got %v", cfg.Retry.InitialBackoff)
	}
	// Untouched fields still get defaults
	if cfg.Retry.MaxBackoff != 5*time.Second {
		t.Errorf("Expected default max backoff 5s, got %v", cfg.Retry.MaxBackoff)
	}
}

func TestGetDefaultConfig_IsValid(t *testing.T) {
	cfg := GetDefaultConfig()

	// The default config should pass validation
	err := Validate(cfg)
	if err != nil {
		t.Errorf("Default config should be valid, got error: %v", err)
	}
}
