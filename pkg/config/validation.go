package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/robinvandernoord/r2-d2/internal/bytesize"
)

// Validate checks the configuration for invalid values.
//
// Struct tags cover the range and enum checks; the explicit checks below
// cover cross-field rules the tags cannot express. Credentials are not
// validated here: commands that never touch the store (completion, config
// schema) must load cleanly without them, so store-backed commands call
// RequireCredentials separately.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return err
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		return errors.New("telemetry is enabled but no endpoint is configured")
	}
	if cfg.Telemetry.Profiling.Enabled && cfg.Telemetry.Profiling.Endpoint == "" {
		return errors.New("profiling is enabled but no endpoint is configured")
	}

	// The S3 API rejects non-final multipart parts below 5 MiB.
	if cfg.Upload.PartSize != 0 && cfg.Upload.PartSize < 5*bytesize.MiB {
		return fmt.Errorf("upload part size %s is below the S3 minimum of 5MiB", cfg.Upload.PartSize)
	}

	return nil
}

// RequireCredentials checks that the configuration carries everything a
// store-backed command needs. Returned errors name the missing R2_* keys
// so the fix is obvious from the message alone.
func RequireCredentials(cfg *Config) error {
	if cfg.AccountID == "" && cfg.Endpoint == "" && cfg.AccessKeyID == "" && cfg.SecretAccessKey == "" {
		return errors.New("no configuration found (tried .r2, .env, environment variables): run `r2d2 auth` to set up credentials")
	}
	if cfg.AccountID == "" && cfg.Endpoint == "" {
		return errors.New("R2_ACCOUNT_ID or R2_ENDPOINT is required to reach the store")
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return errors.New("R2_ACCESS_KEY_ID and R2_SECRET_ACCESS_KEY are required: run `r2d2 auth` or create an R2 API token")
	}
	return nil
}
