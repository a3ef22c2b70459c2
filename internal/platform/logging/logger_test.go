package logging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_ContextAddsTraceFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core))

	traceID, err := trace.TraceIDFromHex("0af7651916cd43dd8448eb211c80319c")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("b7ad6b7169203331")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	logger.InfoContext(ctx, "pick accepted", "draft_id", "winter-2026", "err", errors.New("none"))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "winter-2026", fields["draft_id"])
	assert.Equal(t, "0af7651916cd43dd8448eb211c80319c", fields["trace_id"])
	assert.Equal(t, "b7ad6b7169203331", fields["span_id"])
	assert.Equal(t, "none", fields["err"])
}

func TestLogger_TeeWritesToEveryCore(t *testing.T) {
	t.Parallel()

	primary, primaryLogs := observer.New(zapcore.InfoLevel)
	extra, extraLogs := observer.New(zapcore.WarnLevel)

	logger := FromZap(zap.New(primary)).Tee(extra)
	logger.Info("scoring run started")
	logger.Warn("batch retry", "attempt", 2)

	assert.Equal(t, 2, primaryLogs.Len())
	require.Equal(t, 1, extraLogs.Len())
	assert.Equal(t, "batch retry", extraLogs.All()[0].Message)
}

func TestLogger_OddArgsAndNil(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core)).With("league_id", "lg-1")
	logger.Debug("dangling", "orphan")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "lg-1", fields["league_id"])
	assert.Equal(t, "orphan", fields[badKey])

	logger.Info("typed", zap.Int("round", 3), "phase", "winter")
	fields = logs.All()[1].ContextMap()
	assert.EqualValues(t, 3, fields["round"])
	assert.Equal(t, "winter", fields["phase"])

	var nilLogger *Logger
	assert.NotPanics(t, func() { nilLogger.Info("no-op") })
	assert.NoError(t, nilLogger.Sync())
}

func TestLogger_SyncOncePerRoot(t *testing.T) {
	t.Parallel()

	root := NewNop()
	child := root.With("league_id", "lg-1")
	assert.NoError(t, child.Sync())
	assert.NoError(t, root.Sync())
	assert.Same(t, root.syncOnce, child.syncOnce)
}
