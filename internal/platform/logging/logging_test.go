package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"trace", LevelTrace},
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.input))
		})
	}
}

func TestNewWithWriter_JSONOutput(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(&Config{
		Level:   "info",
		Format:  "json",
		Service: "quote-suggestions",
		Version: "test",
	}, &buf)

	logger.Info("hello", slog.String("key", "value"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "value", record["key"])
	assert.Equal(t, "quote-suggestions", record["service_name"])
	assert.Equal(t, "test", record["service_version"])
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(&Config{Level: "warn", Format: "json"}, &buf)

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNewWithWriter_RedactsSecrets(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(&Config{Level: "info", Format: "json"}, &buf)
	logger.Info("login", slog.String("password", "hunter2"))

	assert.NotContains(t, buf.String(), "hunter2")
}

func TestNewWithWriter_FileOutput(t *testing.T) {
	var buf bytes.Buffer

	path := filepath.Join(t.TempDir(), "app.log")
	logger := NewWithWriter(&Config{
		Level:  "info",
		Format: "text",
		File: FileConfig{
			Enabled:   true,
			Path:      path,
			MaxSizeMB: 1,
		},
	}, &buf)

	logger.Info("written twice")

	assert.Contains(t, buf.String(), "written twice")
	assert.FileExists(t, path)
}

func TestFromContext_Fallback(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
	assert.NotNil(t, FromContext(nil)) //nolint:staticcheck // nil ctx fallback is part of the contract
}

func TestWithContext_RoundTrip(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(&Config{Level: "info", Format: "json"}, &buf)
	ctx := WithContext(context.Background(), logger)

	assert.Same(t, logger, FromContext(ctx))
}

func TestWithRequestID_EnrichesLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(&Config{Level: "info", Format: "json"}, &buf)
	ctx := WithContext(context.Background(), logger)
	ctx = WithRequestID(ctx, "req-123")

	FromContext(ctx).Info("tagged")

	assert.Contains(t, buf.String(), "req-123")
}

func TestMultiHandler_FansOut(t *testing.T) {
	var a, b bytes.Buffer

	handler := NewMultiHandler(
		slog.NewJSONHandler(&a, nil),
		slog.NewJSONHandler(&b, nil),
	)

	slog.New(handler).Info("both")

	assert.Contains(t, a.String(), "both")
	assert.Contains(t, b.String(), "both")
}
