package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestFromContextFallback ensures the global logger is returned for a bare context.
func TestFromContextFallback(t *testing.T) {
	t.Parallel()

	l := FromContext(context.Background())
	require.NotNil(t, l)
	require.Same(t, Logger(), l)
}

// TestToContextRoundtrip ensures a logger stored in a context is returned as-is.
func TestToContextRoundtrip(t *testing.T) {
	t.Parallel()

	custom := zap.NewNop().Sugar()
	ctx := ToContext(context.Background(), custom)

	require.Same(t, custom, FromContext(ctx))
}

// TestWithName ensures naming replaces the context logger without touching the parent.
func TestWithName(t *testing.T) {
	t.Parallel()

	parent := ToContext(context.Background(), zap.NewNop().Sugar())
	child := WithName(parent, "component")

	require.NotSame(t, FromContext(parent), FromContext(child))
}

// TestWithNameShowsInEntries ensures names attached through the context land
// on the emitted entries.
func TestWithNameShowsInEntries(t *testing.T) {
	t.Parallel()

	core, entries := observer.New(zapcore.DebugLevel)
	ctx := ToContext(context.Background(), zap.New(core).Sugar())
	ctx = WithName(ctx, "updater")

	Info(ctx, "named entry")

	require.Equal(t, 1, entries.Len())
	require.Equal(t, "updater", entries.All()[0].LoggerName)
}

// TestWithMinimumLevel ensures the helper raises the threshold for the
// returned context without touching the one it derives from.
func TestWithMinimumLevel(t *testing.T) {
	t.Parallel()

	core, entries := observer.New(zapcore.DebugLevel)
	ctx := ToContext(context.Background(), zap.New(core).Sugar())

	quiet := WithMinimumLevel(ctx, zapcore.WarnLevel)
	Info(quiet, "suppressed")
	Warn(quiet, "visible")
	Info(ctx, "still here")

	require.Equal(t, 2, entries.Len())
	require.Equal(t, "visible", entries.All()[0].Message)
	require.Equal(t, "still here", entries.All()[1].Message)
}
