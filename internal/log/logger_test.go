package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" warning "))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestWithCorrelationID_UsesContextValue(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo)

	ctx := ContextWithCorrelationID(context.Background(), "corr-123")
	logger.WithCorrelationID(ctx).Info("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "corr-123", line["correlation_id"])
	assert.Equal(t, "hello", line["msg"])
}

func TestGetLoggerInstanceFromContext(t *testing.T) {
	injected := NewDiscardLogger()
	ctx := ContextWithLogger(context.Background(), injected)

	assert.Same(t, injected, GetLoggerInstanceFromContext(ctx, nil))

	fallback := NewDiscardLogger()
	got := GetLoggerInstanceFromContext(context.Background(), fallback)
	assert.NotNil(t, got)
	assert.NotSame(t, fallback, got)

	//nolint:staticcheck // nil context is part of the contract
	assert.Same(t, fallback, GetLoggerInstanceFromContext(nil, fallback))
}

func TestGetOrGenerateCorrelationID_GeneratesWhenMissing(t *testing.T) {
	a := GetOrGenerateCorrelationID(context.Background())
	b := GetOrGenerateCorrelationID(context.Background())

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
