package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "r2d2", cfg.ServiceName)
	assert.Equal(t, "dev", cfg.ServiceVersion)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, 1.0, cfg.SampleRate)
}

func TestInitDisabled(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Enabled = false

	shutdown, err := Init(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	// Should be able to call shutdown without error
	err = shutdown(ctx)
	assert.NoError(t, err)

	// Should not be enabled
	assert.False(t, IsEnabled())
}

func TestTracerReturnsNoOp(t *testing.T) {
	// Reset state
	tracer = nil
	enabled = false

	// Without initialization, should return no-op tracer
	tr := Tracer()
	require.NotNil(t, tr)
}

func TestStartSpan(t *testing.T) {
	ctx := context.Background()

	// Even without initialization, StartSpan should work (no-op)
	newCtx, span := StartSpan(ctx, "store.list")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)

	// Should be able to end the span
	span.End()
}

func TestSpanFromContext(t *testing.T) {
	ctx := context.Background()

	// Should return a span even without active span
	span := SpanFromContext(ctx)
	require.NotNil(t, span)
}

func TestAddEvent(t *testing.T) {
	ctx := context.Background()

	// Should not panic with no active span
	require.NotPanics(t, func() {
		AddEvent(ctx, "page.skipped")
	})
}

func TestRecordError(t *testing.T) {
	ctx := context.Background()

	// Should not panic with nil error
	require.NotPanics(t, func() {
		RecordError(ctx, nil)
	})

	// Should not panic with error
	require.NotPanics(t, func() {
		RecordError(ctx, errors.New("test error"))
	})
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()

	// Should not panic
	require.NotPanics(t, func() {
		SetStatus(ctx, codes.Ok, "success")
	})

	require.NotPanics(t, func() {
		SetStatus(ctx, codes.Error, "failed")
	})
}

func TestSetAttributes(t *testing.T) {
	ctx := context.Background()

	// Should not panic
	require.NotPanics(t, func() {
		SetAttributes(ctx, Bucket("backups"))
	})
}

func TestTraceID(t *testing.T) {
	ctx := context.Background()

	// Without active span, should return empty string
	traceID := TraceID(ctx)
	assert.Equal(t, "", traceID)
}

func TestSpanID(t *testing.T) {
	ctx := context.Background()

	// Without active span, should return empty string
	spanID := SpanID(ctx)
	assert.Equal(t, "", spanID)
}

func TestAttributeHelpers(t *testing.T) {
	t.Run("Bucket", func(t *testing.T) {
		attr := Bucket("backups")
		assert.Equal(t, AttrBucket, string(attr.Key))
		assert.Equal(t, "backups", attr.Value.AsString())
	})

	t.Run("StorageKey", func(t *testing.T) {
		attr := StorageKey("data/ab/abcdef")
		assert.Equal(t, AttrKey, string(attr.Key))
		assert.Equal(t, "data/ab/abcdef", attr.Value.AsString())
	})

	t.Run("Prefix", func(t *testing.T) {
		attr := Prefix("repo/")
		assert.Equal(t, AttrPrefix, string(attr.Key))
		assert.Equal(t, "repo/", attr.Value.AsString())
	})

	t.Run("Region", func(t *testing.T) {
		attr := Region("auto")
		assert.Equal(t, AttrRegion, string(attr.Key))
		assert.Equal(t, "auto", attr.Value.AsString())
	})

	t.Run("StorageClass", func(t *testing.T) {
		attr := StorageClass("STANDARD_IA")
		assert.Equal(t, AttrStorageClass, string(attr.Key))
		assert.Equal(t, "STANDARD_IA", attr.Value.AsString())
	})

	t.Run("Attempt", func(t *testing.T) {
		attr := Attempt(2)
		assert.Equal(t, AttrAttempt, string(attr.Key))
		assert.Equal(t, int64(2), attr.Value.AsInt64())
	})

	t.Run("KeyCount", func(t *testing.T) {
		attr := KeyCount(1000)
		assert.Equal(t, AttrKeyCount, string(attr.Key))
		assert.Equal(t, int64(1000), attr.Value.AsInt64())
	})

	t.Run("Truncated", func(t *testing.T) {
		attr := Truncated(true)
		assert.Equal(t, AttrTruncated, string(attr.Key))
		assert.True(t, attr.Value.AsBool())
	})

	t.Run("RepoVersion", func(t *testing.T) {
		attr := RepoVersion(2)
		assert.Equal(t, AttrRepoVersion, string(attr.Key))
		assert.Equal(t, int64(2), attr.Value.AsInt64())
	})

	t.Run("SnapshotID", func(t *testing.T) {
		attr := SnapshotID("8b3f2a91")
		assert.Equal(t, AttrSnapshotID, string(attr.Key))
		assert.Equal(t, "8b3f2a91", attr.Value.AsString())
	})

	t.Run("Tier", func(t *testing.T) {
		attr := Tier("InfrequentAccess")
		assert.Equal(t, AttrTier, string(attr.Key))
		assert.Equal(t, "InfrequentAccess", attr.Value.AsString())
	})

	t.Run("Role", func(t *testing.T) {
		attr := Role("payload")
		assert.Equal(t, AttrRole, string(attr.Key))
		assert.Equal(t, "payload", attr.Value.AsString())
	})

	t.Run("Objects", func(t *testing.T) {
		attr := Objects(42)
		assert.Equal(t, AttrObjects, string(attr.Key))
		assert.Equal(t, int64(42), attr.Value.AsInt64())
	})

	t.Run("Bytes", func(t *testing.T) {
		attr := Bytes(1048576)
		assert.Equal(t, AttrBytes, string(attr.Key))
		assert.Equal(t, int64(1048576), attr.Value.AsInt64())
	})

	t.Run("Workers", func(t *testing.T) {
		attr := Workers(8)
		assert.Equal(t, AttrWorkers, string(attr.Key))
		assert.Equal(t, int64(8), attr.Value.AsInt64())
	})

	t.Run("UploadID", func(t *testing.T) {
		attr := UploadID("upload-123")
		assert.Equal(t, AttrUploadID, string(attr.Key))
		assert.Equal(t, "upload-123", attr.Value.AsString())
	})

	t.Run("PartNumber", func(t *testing.T) {
		attr := PartNumber(7)
		assert.Equal(t, AttrPartNumber, string(attr.Key))
		assert.Equal(t, int64(7), attr.Value.AsInt64())
	})

	t.Run("PartSize", func(t *testing.T) {
		attr := PartSize(15728640)
		assert.Equal(t, AttrPartSize, string(attr.Key))
		assert.Equal(t, int64(15728640), attr.Value.AsInt64())
	})
}

func TestStartStoreSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartStoreSpan(ctx, "list", "backups", Prefix("repo/"))
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()
}

func TestStartRepoSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartRepoSpan(ctx, "open", "backups")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()
}
