package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datastorage/internal/config"
)

func TestInitializeTelemetry_WritesTextfile(t *testing.T) {
	ctx := context.Background()
	metricsFile := filepath.Join(t.TempDir(), "textfile", "datastorage.prom")

	tel, err := InitializeTelemetry(ctx, config.TelemetryConfig{
		ServiceName:    "datastorage-test",
		TraceExporter:  "none",
		MetricsEnabled: true,
	}, metricsFile, NewLogger(&bytes.Buffer{}, "error"))
	require.NoError(t, err)
	require.NotNil(t, tel.Registry)

	metrics, err := NewETLMetrics(tel.Meter)
	require.NoError(t, err)

	metrics.RecordRows(ctx, "crsp.returns", RowsPersisted, 42)
	metrics.RecordStep(ctx, "crsp.returns", "transform", 150*time.Millisecond, nil)
	metrics.RecordStep(ctx, "crsp.returns", "persist", time.Millisecond, errors.New("disk full"))
	metrics.RecordFetch(ctx, "www.cboe.com", 1024, nil)

	require.NoError(t, tel.Shutdown(ctx))

	content, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "datastorage_rows_total")
	assert.Contains(t, text, `dataset="crsp.returns"`)
	assert.Contains(t, text, "datastorage_step_duration_seconds")
	assert.Contains(t, text, "datastorage_step_errors_total")
	assert.Contains(t, text, "datastorage_fetch_bytes_total")
}

func TestInitializeTelemetry_MetricsDisabled(t *testing.T) {
	ctx := context.Background()
	metricsFile := filepath.Join(t.TempDir(), "datastorage.prom")

	tel, err := InitializeTelemetry(ctx, config.TelemetryConfig{
		ServiceName:   "datastorage-test",
		TraceExporter: "none",
	}, metricsFile, nil)
	require.NoError(t, err)
	assert.Nil(t, tel.Registry)
	assert.NotNil(t, tel.Meter)
	assert.NotNil(t, tel.Tracer)

	require.NoError(t, tel.Shutdown(ctx))
	assert.NoFileExists(t, metricsFile)
}

func TestInitializeTelemetry_UnsupportedExporter(t *testing.T) {
	_, err := InitializeTelemetry(context.Background(), config.TelemetryConfig{
		ServiceName:   "datastorage-test",
		TraceExporter: "zipkin",
	}, "", nil)
	assert.Error(t, err)
}

func TestETLMetrics_NilIsSafe(t *testing.T) {
	var m *ETLMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordRows(ctx, "x", RowsParsed, 1)
		m.RecordStep(ctx, "x", "parse", time.Second, nil)
		m.RecordFetch(ctx, "host", 10, nil)
	})
}

func TestNoopTelemetry(t *testing.T) {
	tel := NoopTelemetry()
	_, span := tel.Tracer.Start(context.Background(), "step")
	span.End()

	assert.NoError(t, tel.Shutdown(context.Background()))
}
