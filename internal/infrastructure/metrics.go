package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Row count kinds recorded by RecordRows
const (
	RowsParsed    = "parsed"
	RowsDropped   = "dropped"
	RowsPersisted = "persisted"
	RowsLoaded    = "loaded"
)

// ETLMetrics holds the pipeline instruments. A nil *ETLMetrics records nothing.
type ETLMetrics struct {
	StepsTotal   metric.Int64Counter
	StepDuration metric.Float64Histogram
	StepErrors   metric.Int64Counter
	Rows         metric.Int64Counter
	FetchBytes   metric.Int64Counter
	FetchTotal   metric.Int64Counter
}

// NewETLMetrics creates the pipeline instruments on meter
func NewETLMetrics(meter metric.Meter) (*ETLMetrics, error) {
	stepsTotal, err := meter.Int64Counter(
		"datastorage_steps_total",
		metric.WithDescription("Total number of pipeline steps executed"),
	)
	if err != nil {
		return nil, err
	}

	stepDuration, err := meter.Float64Histogram(
		"datastorage_step_duration_seconds",
		metric.WithDescription("Pipeline step duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	stepErrors, err := meter.Int64Counter(
		"datastorage_step_errors_total",
		metric.WithDescription("Total number of failed pipeline steps"),
	)
	if err != nil {
		return nil, err
	}

	rows, err := meter.Int64Counter(
		"datastorage_rows_total",
		metric.WithDescription("Rows parsed, dropped, persisted and loaded per dataset"),
	)
	if err != nil {
		return nil, err
	}

	fetchBytes, err := meter.Int64Counter(
		"datastorage_fetch_bytes_total",
		metric.WithDescription("Bytes downloaded from remote sources"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	fetchTotal, err := meter.Int64Counter(
		"datastorage_fetch_requests_total",
		metric.WithDescription("Remote requests issued"),
	)
	if err != nil {
		return nil, err
	}

	return &ETLMetrics{
		StepsTotal:   stepsTotal,
		StepDuration: stepDuration,
		StepErrors:   stepErrors,
		Rows:         rows,
		FetchBytes:   fetchBytes,
		FetchTotal:   fetchTotal,
	}, nil
}

// RecordStep records one finished step
func (m *ETLMetrics) RecordStep(ctx context.Context, dataset, step string, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "completed"
	if err != nil {
		status = "failed"
	}
	attrs := metric.WithAttributes(
		attribute.String("dataset", dataset),
		attribute.String("step", step),
		attribute.String("status", status),
	)
	m.StepsTotal.Add(ctx, 1, attrs)
	m.StepDuration.Record(ctx, d.Seconds(), attrs)
	if err != nil {
		m.StepErrors.Add(ctx, 1, attrs)
	}
}

// RecordRows adds n rows of the given kind for dataset
func (m *ETLMetrics) RecordRows(ctx context.Context, dataset, kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Rows.Add(ctx, int64(n), metric.WithAttributes(
		attribute.String("dataset", dataset),
		attribute.String("kind", kind),
	))
}

// RecordFetch records one remote request and the bytes it returned
func (m *ETLMetrics) RecordFetch(ctx context.Context, host string, bytes int64, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.FetchTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("host", host),
		attribute.String("status", status),
	))
	if bytes > 0 {
		m.FetchBytes.Add(ctx, bytes, metric.WithAttributes(attribute.String("host", host)))
	}
}
