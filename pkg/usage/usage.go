package usage

import (
	"context"
	"errors"
	"time"

	"github.com/robinvandernoord/r2-d2/internal/logger"
	"github.com/robinvandernoord/r2-d2/internal/telemetry"
	"github.com/robinvandernoord/r2-d2/pkg/r2"
	"github.com/robinvandernoord/r2-d2/pkg/restic"
)

// DefaultWorkers bounds the classification fan-out when Options.Workers is
// zero.
const DefaultWorkers = 8

// Options bundle everything one computation needs. Each Compute call is
// independent and repeatable; nothing is shared across invocations.
type Options struct {
	// Store lists and reads the bucket holding the repository.
	Store r2.Store

	// Classifier assigns accounting roles to object keys.
	Classifier *restic.Classifier

	// Prefix scopes the listing to the repository root.
	Prefix string

	// Workers bounds the concurrent classification fan-out. Zero selects
	// DefaultWorkers.
	Workers int

	// Metrics records run outcomes. Nil disables recording.
	Metrics Metrics
}

// Compute walks the object listing under the prefix, attributes every
// object to a (tier, role) bucket and returns the accounting. The report's
// End field carries the wall-clock time the listing began.
//
// Cancellation stops further listing promptly and returns a cancellation
// error; a partially summed report is never returned.
func Compute(ctx context.Context, opts Options) (*Report, error) {
	if opts.Store == nil {
		return nil, errors.New("usage: store is required")
	}
	if opts.Classifier == nil {
		return nil, errors.New("usage: classifier is required")
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	prefix := restic.NormalizePrefix(opts.Prefix)

	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanUsageCompute)
	defer span.End()
	telemetry.SetAttributes(ctx,
		telemetry.Prefix(prefix),
		telemetry.Workers(workers),
	)

	start := time.Now().UTC()

	report, err := reconcile(ctx, opts.Store, opts.Classifier, prefix, workers)

	if opts.Metrics != nil {
		opts.Metrics.ObserveRun(time.Since(start), err)
	}
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, err
	}

	report.End = start

	if m := opts.Metrics; m != nil {
		m.RecordAccounted(r2.TierStandard.String(), restic.RolePayload.String(),
			report.ObjectCount, report.PayloadSize)
		m.RecordAccounted(r2.TierStandard.String(), restic.RoleMetadata.String(),
			report.UploadCount, report.MetadataSize)
		m.RecordAccounted(r2.TierInfrequentAccess.String(), restic.RolePayload.String(),
			report.InfrequentAccessObjectCount, report.InfrequentAccessPayloadSize)
		m.RecordAccounted(r2.TierInfrequentAccess.String(), restic.RoleMetadata.String(),
			report.InfrequentAccessUploadCount, report.InfrequentAccessMetadataSize)
	}

	telemetry.SetAttributes(ctx,
		telemetry.Objects(report.TotalObjects()),
		telemetry.Bytes(report.TotalSize()),
	)
	logger.Debug("usage computation complete",
		"prefix", prefix,
		"objects", report.TotalObjects(),
		"bytes", report.TotalSize(),
		"duration", time.Since(start).String(),
	)

	return report, nil
}
