package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LevelFiltersRecords(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("warn", &buf)
	require.NoError(t, err)

	ctx := context.Background()
	log.Debug(ctx, "dbg")
	log.Info(ctx, "inf")
	log.Warn(ctx, "wrn", "thread_id", "t1")
	log.Error(ctx, "err", "status", 500)

	out := buf.String()
	assert.NotContains(t, out, "msg=dbg")
	assert.NotContains(t, out, "msg=inf")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "thread_id=t1")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "status=500")
}

func TestNew_DebugIncludesEverything(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("DEBUG", &buf)
	require.NoError(t, err)

	log.Debug(context.Background(), "request", "method", "GET", "path", "/auth/me")

	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "path=/auth/me")
}

func TestNew_UnknownLevel(t *testing.T) {
	_, err := New("verbose", &bytes.Buffer{})
	require.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"info", slog.LevelInfo},
		{"Warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"debug", slog.LevelDebug},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestSlogLogger_With_AddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("info", &buf)
	require.NoError(t, err)

	child := log.With("request_id", "123", "user", "alice@example.org")
	child.Info(context.Background(), "hello", "k", "v")

	for _, s := range []string{"msg=hello", "request_id=123", "user=alice@example.org", "k=v"} {
		assert.Contains(t, buf.String(), s)
	}
}

func TestNop_DoesNotPanic(t *testing.T) {
	log := Nop()
	ctx := context.TODO()
	log.Debug(ctx, "x")
	log.Info(ctx, "x")
	log.Warn(ctx, "x")
	log.Error(ctx, "x")
	log.With("a", 1).Info(ctx, "y")
}
