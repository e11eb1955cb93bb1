package datasets

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"datastorage/internal/config"
	"datastorage/internal/dataprocessing"
	apperrors "datastorage/internal/errors"
	"datastorage/internal/fetch"
	"datastorage/internal/files"
	"datastorage/internal/infrastructure"
	"datastorage/internal/store"
	"datastorage/internal/table"
	"datastorage/internal/validation"
)

// Env carries the shared dependencies of every importer
type Env struct {
	Config     *config.Config
	Paths      *config.Paths
	Files      *files.Manager
	Store      *store.Store
	Fetcher    *fetch.Fetcher
	Summarizer *dataprocessing.Summarizer
	Validator  *validation.FileValidator
	Metrics    *infrastructure.ETLMetrics
	Tracer     trace.Tracer
	Logger     *slog.Logger

	// Download makes fetch steps retrieve remote files instead of using
	// the copies already in the provider directories
	Download bool
}

// NewEnv wires an Env from configuration and telemetry. A nil telemetry
// records nothing.
func NewEnv(cfg *config.Config, paths *config.Paths, tel *infrastructure.Telemetry, logger *slog.Logger) (*Env, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if tel == nil {
		tel = infrastructure.NoopTelemetry()
	}

	metrics, err := infrastructure.NewETLMetrics(tel.Meter)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to create metrics", err)
	}

	fm := files.NewManager(logger)
	return &Env{
		Config:     cfg,
		Paths:      paths,
		Files:      fm,
		Store:      store.New(fm, logger, store.WithTracer(tel.Tracer)),
		Fetcher:    fetch.NewFetcher(cfg.Fetch, fm, metrics, logger),
		Summarizer: dataprocessing.NewSummarizer(logger, fm),
		Validator:  validation.NewFileValidator(logger),
		Metrics:    metrics,
		Tracer:     tel.Tracer,
		Logger:     logger,
	}, nil
}

func (e *Env) tracer() trace.Tracer {
	if e.Tracer == nil {
		return tracenoop.NewTracerProvider().Tracer("datasets")
	}
	return e.Tracer
}

// Persist checks the primary key of t and replaces it in the provider's
// container
func (e *Env) Persist(ctx context.Context, provider config.ProviderPaths, container string, t *table.Table) error {
	if err := t.CheckUniqueKey(); err != nil {
		appErr := apperrors.NewTransformError("primary key is not unique", err).WithDataset(t.Name())
		var dup *table.DuplicateKeyError
		if errors.As(err, &dup) {
			appErr.WithContext("value", dup.Value).
				WithContext("first_row", dup.First).
				WithContext("second_row", dup.Second)
		}
		return appErr
	}

	if err := e.Store.Save(ctx, provider.StorePath(container), t); err != nil {
		return annotate(err, t.Name())
	}
	e.Summarizer.LogSummary(ctx, t)
	e.Metrics.RecordRows(ctx, t.Name(), infrastructure.RowsPersisted, t.NumRows())
	return nil
}

// Load reads a persisted table back from the provider's container
func (e *Env) Load(ctx context.Context, provider config.ProviderPaths, container, name string) (*table.Table, error) {
	t, err := e.Store.Load(ctx, provider.StorePath(container), name)
	if err != nil {
		return nil, annotate(err, name)
	}
	e.Metrics.RecordRows(ctx, name, infrastructure.RowsLoaded, t.NumRows())
	return t, nil
}

// Source is one raw file of a provider, with the URL it is downloaded from
// when it has one
type Source struct {
	URL  string
	File string
}

// FetchSources downloads every source with a URL when Download is set, then
// requires each raw file to be present and to match its format
func (e *Env) FetchSources(ctx context.Context, provider config.ProviderPaths, sources ...Source) error {
	for _, src := range sources {
		dest := provider.RawPath(src.File)
		switch {
		case e.Download && src.URL != "":
			if err := e.Fetcher.Download(ctx, src.URL, dest); err != nil {
				return err
			}
		case !e.Files.FileExists(dest):
			appErr := apperrors.NewFetchError("raw file not found", nil).
				WithContext("path", dest).
				WithContext("provider", provider.Provider)
			if src.URL != "" {
				appErr.WithContext("hint", "run with -download")
			}
			return appErr
		default:
			e.Logger.DebugContext(ctx, "Using local raw file", slog.String("path", dest))
		}

		if err := e.Validator.ValidateRawFile(dest); err != nil {
			appErr := apperrors.NewFetchError("invalid raw file", err).
				WithContext("path", dest).
				WithContext("provider", provider.Provider)
			if src.URL != "" {
				appErr.WithContext("url", src.URL)
			}
			return appErr
		}
	}
	return nil
}

// ParseArchive opens the single payload of a raw ZIP archive and parses it
func (e *Env) ParseArchive(ctx context.Context, path string, spec dataprocessing.ParseSpec) (*table.Table, dataprocessing.ParseStats, error) {
	entry, err := dataprocessing.OpenSingleEntry(path)
	if err != nil {
		return nil, dataprocessing.ParseStats{}, err
	}
	defer entry.Close()

	t, stats, err := dataprocessing.ParseCSV(entry, spec)
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok {
			appErr.WithContext("path", path).WithContext("entry", entry.Name)
		}
		return nil, stats, err
	}

	e.Logger.InfoContext(ctx, "Archive parsed",
		slog.String("path", path),
		slog.String("entry", entry.Name),
		slog.Int("rows", stats.Rows),
		slog.Int("dropped_rows", stats.DroppedRows),
		slog.Int("blank_rows", stats.BlankRows),
		slog.Int("coerced_cells", stats.CoercedCells))
	return t, stats, nil
}

// annotate sets the dataset of an AppError that has none
func annotate(err error, dataset string) error {
	if appErr, ok := apperrors.AsAppError(err); ok && appErr.Dataset == "" {
		appErr.WithDataset(dataset)
	}
	return err
}
