package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	appctx "millstock/internal/core/context"
)

func observed() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &Logger{zap.New(core).Sugar()}, logs
}

func TestContextFieldsAreAttached(t *testing.T) {
	log, logs := observed()

	ctx := WithLogger(context.Background(), log)
	ctx = appctx.WithTrace(ctx, appctx.Trace{RequestID: "req-1", TraceID: "tr-1"})
	ctx = appctx.WithUser(ctx, &appctx.UserContext{UserID: "clerk"})

	Info(ctx, "record created", "entity", "CPO record")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "tr-1", fields["trace_id"])
	assert.Equal(t, "clerk", fields["user_id"])
	assert.Equal(t, "CPO record", fields["entity"])
}

func TestBackgroundContextHasNoRequestFields(t *testing.T) {
	log, logs := observed()

	Warn(WithLogger(context.Background(), log), "redis unavailable")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.NotContains(t, entry.ContextMap(), "request_id")
}

func TestNewFallsBackToInfo(t *testing.T) {
	l, err := New(Config{Level: "loud", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	assert.True(t, l.Desugar().Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Desugar().Core().Enabled(zapcore.DebugLevel))
}
