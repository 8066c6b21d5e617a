package config

import (
	"strings"
	"testing"

	"github.com/robinvandernoord/r2-d2/internal/bytesize"
)

func TestValidate_ValidConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	err := Validate(cfg)
	if err != nil {
		t.Errorf("Expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Level = "INVALID"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid log level")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("Expected 'oneof' validation error, got: %v", err)
	}
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Format = "xml"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid log format")
	}
}

func TestValidate_ConcurrencyRange(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Concurrency = 1000 // Out of range

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for concurrency out of range")
	}
	if !strings.Contains(err.Error(), "max") {
		t.Errorf("Expected 'max' validation error, got: %v", err)
	}
}

func TestValidate_InvalidMissingStorageClass(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.MissingStorageClass = "guess"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for unknown missing-storage-class policy")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("Expected 'oneof' validation error, got: %v", err)
	}
}

func TestValidate_TelemetryEnabledWithoutEndpoint(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.Endpoint = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for telemetry enabled without endpoint")
	}
	if !strings.Contains(err.Error(), "telemetry") && !strings.Contains(err.Error(), "endpoint") {
		t.Errorf("Expected error about telemetry endpoint, got: %v", err)
	}
}

func TestValidate_ProfilingEnabledWithoutEndpoint(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Telemetry.Profiling.Enabled = true
	cfg.Telemetry.Profiling.Endpoint = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for profiling enabled without endpoint")
	}
}

func TestValidate_TelemetrySampleRate(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Telemetry.SampleRate = 1.5 // Out of range (should be 0.0-1.0)

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for sample rate out of range")
	}
}

func TestValidate_PartSizeBelowMinimum(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Upload.PartSize = bytesize.MiB // Below the 5 MiB S3 floor

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for part size below minimum")
	}
	if !strings.Contains(err.Error(), "5MiB") {
		t.Errorf("Expected error to name the 5MiB minimum, got: %v", err)
	}
}

func TestValidate_InvalidMetricsListen(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Metrics.Listen = "not an address"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for malformed listen address")
	}
}

func TestValidate_LogLevelNormalization(t *testing.T) {
	// Test that validation accepts both uppercase and lowercase log levels
	testCases := []string{"info", "INFO", "debug", "DEBUG", "warn", "WARN", "error", "ERROR"}

	for _, level := range testCases {
		cfg := GetDefaultConfig()
		cfg.Logging.Level = level

		err := Validate(cfg)
		if err != nil {
			t.Errorf("Validation failed for level %q: %v", level, err)
		}

		// Validation should NOT normalize - level should remain as-is
		if cfg.Logging.Level != level {
			t.Errorf("Expected level to remain %q after validation, got %q", level, cfg.Logging.Level)
		}
	}

	// Test that normalization happens in ApplyDefaults
	cfg := &Config{Logging: LoggingConfig{Level: "info"}}
	ApplyDefaults(cfg)
	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected ApplyDefaults to normalize 'info' to 'INFO', got %q", cfg.Logging.Level)
	}
}

func TestRequireCredentials_NothingConfigured(t *testing.T) {
	cfg := GetDefaultConfig()

	err := RequireCredentials(cfg)
	if err == nil {
		t.Fatal("Expected error for empty credentials")
	}
	if !strings.Contains(err.Error(), "no configuration found") {
		t.Errorf("Expected 'no configuration found' error, got: %v", err)
	}
}

func TestRequireCredentials_MissingKeys(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.AccountID = "0123456789abcdef"

	err := RequireCredentials(cfg)
	if err == nil {
		t.Fatal("Expected error for missing access keys")
	}
	if !strings.Contains(err.Error(), "R2_ACCESS_KEY_ID") {
		t.Errorf("Expected error naming the missing keys, got: %v", err)
	}
}

func TestRequireCredentials_MissingEndpoint(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.AccessKeyID = "AKIDEXAMPLE"
	cfg.SecretAccessKey = "secret"

	err := RequireCredentials(cfg)
	if err == nil {
		t.Fatal("Expected error for missing account and endpoint")
	}
	if !strings.Contains(err.Error(), "R2_ACCOUNT_ID") {
		t.Errorf("Expected error naming the account key, got: %v", err)
	}
}

func TestRequireCredentials_AccountAndKeys(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.AccountID = "0123456789abcdef"
	cfg.AccessKeyID = "AKIDEXAMPLE"
	cfg.SecretAccessKey = "secret"

	if err := RequireCredentials(cfg); err != nil {
		t.Errorf("Expected credentials to satisfy the check, got: %v", err)
	}
}

func TestRequireCredentials_EndpointInsteadOfAccount(t *testing.T) {
	// Custom endpoints (Localstack, MinIO) work without a Cloudflare
	// account ID.
	cfg := GetDefaultConfig()
	cfg.Endpoint = "http://localhost:4566"
	cfg.AccessKeyID = "test"
	cfg.SecretAccessKey = "test"

	if err := RequireCredentials(cfg); err != nil {
		t.Errorf("Expected endpoint-based credentials to satisfy the check, got: %v", err)
	}
}
