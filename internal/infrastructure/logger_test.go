package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datastorage/internal/config"
)

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "logs", "cboe.log")

	cfg := config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	}

	logger, err := InitializeLogger(cfg)
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	if logger == nil {
		t.Fatal("Logger is nil")
	}

	logger.Info("test message", "key", "value")
	CloseLogFile()

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	var logEntry map[string]interface{}
	if err := json.Unmarshal(content, &logEntry); err != nil {
		t.Errorf("Log output is not valid JSON: %v", err)
	}

	if logEntry["msg"] != "test message" {
		t.Errorf("Expected msg='test message', got %v", logEntry["msg"])
	}
	if logEntry["key"] != "value" {
		t.Errorf("Expected key='value', got %v", logEntry["key"])
	}
	if logEntry["level"] != "INFO" {
		t.Errorf("Expected level='INFO', got %v", logEntry["level"])
	}
}

func TestTraceIDInjection(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "debug")

	ctx := WithTraceID(context.Background(), "run-123")
	logger.InfoContext(ctx, "stage complete")

	var logEntry map[string]interface{}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &logEntry))

	assert.Equal(t, "run-123", logEntry["trace_id"])
}

func TestStepInjection(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info")

	ctx := WithStep(WithTraceID(context.Background(), "run-1"), "vix_spx.parse")
	logger.InfoContext(ctx, "Archive parsed")
	logger.Info("outside")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var inside, outside map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &inside))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &outside))
	assert.Equal(t, "vix_spx.parse", inside["step"])
	assert.Equal(t, "run-1", inside["trace_id"])
	assert.NotContains(t, outside, "step")
}

func TestInitializeLogger_BothOutputs(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "logs", "crsp.log")
	logger, err := InitializeLogger(config.LoggingConfig{Level: "warn", Output: "both", FilePath: logFile})
	require.NoError(t, err)

	logger.Debug("file only")
	logger.Warn("everywhere")
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "file only", "the log file keeps debug records")
	assert.Contains(t, string(content), "everywhere")
	assert.Contains(t, string(content), `"source"`)
}

func TestContextHandler_WithAttrsKeepsInjection(t *testing.T) {
	var buf bytes.Buffer
	logger := WithDataset(WithComponent(NewLogger(&buf, "info"), "store"), "crsp.returns")

	logger.InfoContext(WithTraceID(context.Background(), "abc"), "saved")

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &logEntry))
	assert.Equal(t, "abc", logEntry["trace_id"])
	assert.Equal(t, "store", logEntry["component"])
	assert.Equal(t, "crsp.returns", logEntry["dataset"])
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLogLevel(tt.level))
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn")

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestEnsureTraceID(t *testing.T) {
	ctx := EnsureTraceID(context.Background())
	id := GetTraceID(ctx)
	require.NotEmpty(t, id)

	assert.Equal(t, id, GetTraceID(EnsureTraceID(ctx)))
	assert.NotEqual(t, id, GenerateTraceID())
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(&buf, "info")

	assert.Same(t, base, WithError(base, nil))

	WithError(base, os.ErrNotExist).Error("load failed")
	assert.Contains(t, buf.String(), "file does not exist")
}
