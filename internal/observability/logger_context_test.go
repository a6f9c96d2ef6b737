package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerContext(t *testing.T) {
	t.Parallel()
	lg := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	base := context.Background()

	ctx := ContextWithLogger(base, lg)
	assert.Same(t, lg, LoggerFromContext(ctx))
	assert.Equal(t, base, ContextWithLogger(base, nil))
	assert.NotNil(t, LoggerFromContext(base))
}

func TestRequestIDContext(t *testing.T) {
	t.Parallel()
	base := context.Background()
	assert.Equal(t, base, ContextWithRequestID(base, ""))
	assert.Empty(t, RequestIDFromContext(base))
	assert.Equal(t, "req-123", RequestIDFromContext(ContextWithRequestID(base, "req-123")))
}

func TestWithSession(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	lg := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := ContextWithRequestID(ContextWithLogger(context.Background(), lg), "req-1")

	ctx = WithSession(ctx, "sess-42")
	assert.Equal(t, "sess-42", SessionIDFromContext(ctx))
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))

	LoggerFromContext(ctx).Info("scored")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "sess-42", line["session_id"])

	base := context.Background()
	assert.Equal(t, base, WithSession(base, ""))
}
