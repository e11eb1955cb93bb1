package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	prom "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"datastorage/internal/config"
)

// MeterName is the instrumentation scope for tracers and meters
const MeterName = "datastorage"

// Telemetry holds the tracing and metrics providers for one command run.
// Batch runs have no scrape endpoint, so the Prometheus registry is written
// to a node-exporter textfile on Shutdown when a metrics file is configured.
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Registry       *prom.Registry
	Tracer         trace.Tracer
	Meter          metric.Meter

	metricsFile string
	logger      *slog.Logger
}

// NoopTelemetry returns telemetry that records nothing
func NoopTelemetry() *Telemetry {
	return &Telemetry{
		Tracer: tracenoop.NewTracerProvider().Tracer(MeterName),
		Meter:  metricnoop.NewMeterProvider().Meter(MeterName),
		logger: slog.Default(),
	}
}

// InitializeTelemetry sets up tracing and metrics from configuration
func InitializeTelemetry(ctx context.Context, cfg config.TelemetryConfig, metricsFile string, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = GetLogger()
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(config.AppVersion),
		attribute.String("service.instance.id", GenerateTraceID()),
	)

	t := NoopTelemetry()
	t.metricsFile = metricsFile
	t.logger = logger

	if err := t.initializeTracing(cfg, res); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if cfg.MetricsEnabled {
		if err := t.initializeMetrics(res); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	logger.DebugContext(ctx, "Telemetry initialized",
		slog.String("trace_exporter", cfg.TraceExporter),
		slog.Bool("metrics_enabled", cfg.MetricsEnabled),
		slog.String("metrics_file", metricsFile))

	return t, nil
}

// initializeTracing sets up OpenTelemetry tracing
func (t *Telemetry) initializeTracing(cfg config.TelemetryConfig, res *resource.Resource) error {
	switch cfg.TraceExporter {
	case "stdout":
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return fmt.Errorf("failed to create trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
		)
		t.TracerProvider = tp
		t.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(config.AppVersion))
	case "none", "":
		// noop tracer already in place
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}
	return nil
}

// initializeMetrics wires the otel meter provider to a private Prometheus registry
func (t *Telemetry) initializeMetrics(res *resource.Resource) error {
	registry := prom.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	t.Registry = registry
	t.MeterProvider = mp
	t.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(config.AppVersion))
	return nil
}

// WriteMetrics writes the current registry contents in textfile format
func (t *Telemetry) WriteMetrics(path string) error {
	if t.Registry == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	return prom.WriteToTextfile(path, t.Registry)
}

// Shutdown flushes metrics to the textfile and stops the providers
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error

	if err := t.WriteMetrics(t.metricsFile); err != nil {
		errs = append(errs, fmt.Errorf("write metrics: %w", err))
	}
	if t.MeterProvider != nil {
		if err := t.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}
	if t.TracerProvider != nil {
		if err := t.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	return errors.Join(errs...)
}
