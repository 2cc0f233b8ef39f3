package util

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level string, format LogFormat) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	l := &Logger{level: ParseLogLevel(level), fields: map[string]interface{}{}}
	l.AddOutput(NewConsoleOutput(buf, format))
	return l, buf
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"fatal", LevelFatal},
		{"bogus", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLogLevel(tt.input))
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	l, buf := newBufferLogger("warn", FormatText)

	l.Debug("hidden")
	l.Info("hidden too")
	l.Warn("shown")
	l.Errorf("failed %d", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] shown")
	assert.Contains(t, out, "[ERROR] failed 3")
}

func TestLogger_TextFieldsAreSorted(t *testing.T) {
	l, buf := newBufferLogger("debug", FormatText)

	l.With(F("date", "2024-01-15")).Info("compiled", F("activities", 4), F("buckets", 24))

	assert.Contains(t, buf.String(), "compiled activities=4 buckets=24 date=2024-01-15")
}

func TestLogger_JSONFormat(t *testing.T) {
	l, buf := newBufferLogger("info", FormatJSON)

	l.Info("served", F("path", "/timeline"))

	var entry LogEntry
	require.NoError(t, sonic.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "served", entry.Message)
	assert.Equal(t, "/timeline", entry.Fields["path"])
}

func TestLogger_WithContext(t *testing.T) {
	l, buf := newBufferLogger("info", FormatText)

	ctx := ContextWithRequestID(context.Background(), "req-42")
	l.WithContext(ctx).Info("handled")
	l.WithContext(context.Background()).Info("plain")

	out := buf.String()
	assert.Contains(t, out, "handled request_id=req-42")
	assert.Contains(t, out, "plain\n")
}

func TestNewLogger(t *testing.T) {
	_, err := NewLogger(LoggerOptions{Level: "info"})
	assert.ErrorIs(t, err, ErrNoLogOutput)

	path := filepath.Join(t.TempDir(), "logs", "app.log")
	l, err := NewLogger(LoggerOptions{Level: "info", File: path})
	require.NoError(t, err)

	l.Info("written to file")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO] written to file")
}

func TestGlobalLogger(t *testing.T) {
	l, buf := newBufferLogger("debug", FormatText)
	SetLogger(l)
	defer CloseLogger()

	LogDebugf("loaded %d activities", 7)
	LogWarn("cache miss", F("key", "activities"))

	out := buf.String()
	assert.Contains(t, out, "loaded 7 activities")
	assert.Contains(t, out, "cache miss key=activities")

	CloseLogger()
	assert.Nil(t, Log())
	LogInfo("dropped")
}
