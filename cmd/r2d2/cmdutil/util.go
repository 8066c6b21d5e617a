// Package cmdutil provides shared utilities for r2d2 commands.
package cmdutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/robinvandernoord/r2-d2/internal/cli/output"
	"github.com/robinvandernoord/r2-d2/internal/cli/prompt"
	"github.com/robinvandernoord/r2-d2/internal/diag"
	"github.com/robinvandernoord/r2-d2/internal/logger"
	"github.com/robinvandernoord/r2-d2/internal/telemetry"
	"github.com/robinvandernoord/r2-d2/pkg/config"
	"github.com/robinvandernoord/r2-d2/pkg/metrics"
	"github.com/robinvandernoord/r2-d2/pkg/r2/s3"
)

// Version is the build version. The commands package sets it before any
// command runs; telemetry and the diagnostics endpoint report it.
var Version = "dev"

// Flags stores global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// GlobalFlags holds the global flag values.
type GlobalFlags struct {
	ConfigPath    string
	Output        string
	NoColor       bool
	Verbose       bool
	LogFormat     string
	MetricsListen string
}

// LoadConfig loads the configuration and applies flag overrides on top.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(Flags.ConfigPath)
	if err != nil {
		return nil, err
	}

	if Flags.Verbose {
		cfg.Logging.Level = "DEBUG"
	}
	if Flags.LogFormat != "" {
		cfg.Logging.Format = Flags.LogFormat
	}
	if Flags.MetricsListen != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Listen = Flags.MetricsListen
	}

	return cfg, nil
}

// StartRuntime wires the ambient stack for one invocation: logger,
// telemetry, profiling, the metrics registry and the diagnostics listener.
// The returned stop function flushes and stops all of it; call it before
// the command returns.
func StartRuntime(ctx context.Context, cfg *config.Config) (stop func(), err error) {
	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "r2d2",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "r2d2",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		shutdownTelemetry(telemetryShutdown)
		return nil, fmt.Errorf("failed to initialize profiling: %w", err)
	}

	// The diagnostics listener runs for the duration of the command.
	var stopDiag func()
	if cfg.Metrics.Enabled {
		// The registry must exist before any store starts recording.
		metrics.InitRegistry()

		srv := diag.NewServer(cfg.Metrics.Listen, Version)
		diagCtx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := srv.Start(diagCtx); err != nil {
				logger.Error("diagnostics server error", "error", err)
			}
		}()
		stopDiag = func() {
			cancel()
			<-done
		}
	}

	return func() {
		if stopDiag != nil {
			stopDiag()
		}
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", "error", err)
		}
		shutdownTelemetry(telemetryShutdown)
	}, nil
}

func shutdownTelemetry(shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logger.Error("telemetry shutdown error", "error", err)
	}
}

// NewClient builds the S3 client from the configuration. The endpoint is
// derived from the account ID unless set explicitly.
func NewClient(ctx context.Context, cfg *config.Config) (*awss3.Client, error) {
	if err := config.RequireCredentials(cfg); err != nil {
		return nil, err
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = s3.DefaultEndpoint(cfg.AccountID)
	}

	return s3.NewClient(ctx, endpoint, cfg.Region, cfg.AccessKeyID, cfg.SecretAccessKey, cfg.ForcePathStyle)
}

// ResolveBucket picks the bucket a command operates on: the --bucket flag
// when given, otherwise the configured default.
func ResolveBucket(cfg *config.Config, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if cfg.Bucket != "" {
		return cfg.Bucket, nil
	}
	return "", errors.New("no bucket configured: pass --bucket or set R2_BUCKET")
}

// NewStore builds the bucket-scoped store a command operates on.
func NewStore(ctx context.Context, cfg *config.Config, bucket string) (*s3.Store, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewStoreWithClient(client, cfg, bucket)
}

// NewStoreWithClient builds a store on an existing client, for commands
// that scope several stores off one connection.
func NewStoreWithClient(client *awss3.Client, cfg *config.Config, bucket string) (*s3.Store, error) {
	policy, err := s3.ParseMissingClassPolicy(cfg.MissingStorageClass)
	if err != nil {
		return nil, err
	}

	maxRetries := uint(cfg.Retry.MaxRetries)
	return s3.NewStore(s3.StoreConfig{
		Client:              client,
		Bucket:              bucket,
		Metrics:             metrics.NewStoreMetrics(),
		MissingStorageClass: policy,
		MaxRetries:          &maxRetries,
		InitialBackoff:      cfg.Retry.InitialBackoff,
		MaxBackoff:          cfg.Retry.MaxBackoff,
		BackoffMultiplier:   cfg.Retry.Multiplier,
	})
}

// GetOutputFormatParsed returns the parsed output format.
func GetOutputFormatParsed() (output.Format, error) {
	return output.ParseFormat(Flags.Output)
}

// Printer returns a printer writing to stdout in the selected format.
func Printer() (*output.Printer, error) {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return nil, err
	}
	return output.NewPrinter(os.Stdout, format, !Flags.NoColor), nil
}

// PrintResource prints a resource in the selected format.
// For table format, it uses the provided tableRenderer. For JSON/YAML, it outputs the resource.
func PrintResource(w io.Writer, data any, tableRenderer output.TableRenderer) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	case output.FormatYAML:
		return output.PrintYAML(w, data)
	default:
		return output.PrintTable(w, tableRenderer)
	}
}

// PrintOutput prints data in the specified format (JSON, YAML, or table).
// For table format, it displays emptyMsg if data is empty, otherwise uses the tableRenderer.
func PrintOutput(w io.Writer, data any, isEmpty bool, emptyMsg string, tableRenderer output.TableRenderer) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	case output.FormatYAML:
		return output.PrintYAML(w, data)
	default:
		if isEmpty {
			_, _ = fmt.Fprintln(w, emptyMsg)
			return nil
		}
		return output.PrintTable(w, tableRenderer)
	}
}

// PrintSuccess prints a success message if the output format is table.
func PrintSuccess(msg string) {
	format, err := GetOutputFormatParsed()
	if err != nil || format != output.FormatTable {
		return
	}
	printer := output.NewPrinter(os.Stdout, format, !Flags.NoColor)
	printer.Success(msg)
}

// EmptyOr returns the value if not empty, otherwise returns the fallback.
// Useful for table display where empty fields should show "-".
func EmptyOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// HandleAbort checks if error is an abort (Ctrl+C) and prints a message.
// Returns nil for abort (user cancelled), otherwise returns the original error.
func HandleAbort(err error) error {
	if prompt.IsAborted(err) {
		fmt.Println("\nAborted.")
		return nil
	}
	return err
}
