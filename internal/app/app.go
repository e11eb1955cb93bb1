package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"datastorage/internal/analysis"
	"datastorage/internal/config"
	"datastorage/internal/datasets"
	apperrors "datastorage/internal/errors"
	"datastorage/internal/exporter"
	"datastorage/internal/infrastructure"
	"datastorage/internal/table"
)

// shutdownTimeout bounds flushing telemetry after the run
const shutdownTimeout = 10 * time.Second

// Options selects the command being run and its shared flags
type Options struct {
	// Command names the log file, <command>.log in the logs directory
	Command    string
	ConfigFile string
	Download   bool
}

// Application holds everything a command needs, wired once at startup
type Application struct {
	Config    *config.Config
	Paths     *config.Paths
	Logger    *slog.Logger
	Telemetry *infrastructure.Telemetry
	Env       *datasets.Env
	Exporter  *exporter.CSVWriter
	Plotter   *analysis.Plotter

	command string
	started time.Time
}

// New loads configuration, resolves paths, and initializes logging,
// telemetry and the dataset environment
func New(ctx context.Context, opts Options) (*Application, error) {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to load configuration", err)
	}

	paths, err := config.GetPaths(cfg.Paths)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to resolve paths", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, apperrors.NewConfigError("failed to create directories", err)
	}

	if cfg.Logging.FilePath == "" || cfg.Logging.FilePath == config.DefaultLogFile {
		cfg.Logging.FilePath = paths.GetLogPath(opts.Command + ".log")
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to initialize logger", err)
	}
	logger = infrastructure.WithComponent(logger, opts.Command)
	paths.LogPathResolution(logger)

	tel, err := infrastructure.InitializeTelemetry(ctx, cfg.Telemetry, paths.MetricsFile, logger)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to initialize telemetry", err)
	}

	env, err := datasets.NewEnv(cfg, paths, tel, logger)
	if err != nil {
		return nil, err
	}
	env.Download = opts.Download
	for _, dir := range []string{paths.PlotsDir, paths.ExportsDir} {
		if err := env.Validator.ValidateOutputDirectory(dir); err != nil {
			return nil, apperrors.NewConfigError("output directory unusable", err)
		}
	}

	return &Application{
		Config:    cfg,
		Paths:     paths,
		Logger:    logger,
		Telemetry: tel,
		Env:       env,
		Exporter:  exporter.NewCSVWriter(paths, logger),
		Plotter:   analysis.NewPlotter(paths, env.Files, logger),
		command:   opts.Command,
		started:   time.Now(),
	}, nil
}

// Import runs the importers, restricted to only when it is not empty, and
// logs the outcome of every step
func (a *Application) Import(ctx context.Context, only []string, importers ...datasets.Importer) (*datasets.Result, error) {
	res, err := datasets.Import(ctx, a.Env, only, importers...)
	if res == nil {
		return nil, err
	}
	for _, s := range res.Steps {
		a.Logger.InfoContext(ctx, "Step finished",
			slog.String("step", s.ID),
			slog.String("status", string(s.GetStatus())),
			slog.Duration("duration", s.Duration()),
			slog.Any("metadata", s.Metadata))
	}
	return res, err
}

// Report prints a preview of t when preview is positive and exports it as
// CSV when export is set
func (a *Application) Report(w io.Writer, t *table.Table, preview int, export bool) error {
	if preview > 0 {
		if err := exporter.Preview(w, t, preview); err != nil {
			return fmt.Errorf("failed to print preview: %w", err)
		}
	}
	if export {
		path, err := a.Exporter.WriteTable(t.Name()+".csv", t)
		if err != nil {
			return apperrors.NewStorageError("failed to export table", err).WithDataset(t.Name())
		}
		fmt.Fprintf(w, "%s written to %s\n", t.Name(), path)
	}
	return nil
}

// Shutdown writes the metrics textfile, stops telemetry and closes the log
// file
func (a *Application) Shutdown(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Command finished",
		slog.String("command", a.command),
		slog.Duration("elapsed", time.Since(a.started)))

	err := a.Telemetry.Shutdown(ctx)
	return errors.Join(err, infrastructure.CloseLogFile())
}

// Run builds the application, runs fn with a context cancelled on SIGINT or
// SIGTERM, shuts down, and returns the process exit code
func Run(opts Options, fn func(ctx context.Context, a *Application) error) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = infrastructure.ContextWithTraceID(ctx)

	a, err := New(ctx, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", opts.Command, err)
		return 1
	}

	runErr := fn(ctx, a)
	if runErr != nil {
		logError(ctx, a.Logger, runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "%s: shutdown: %v\n", opts.Command, err)
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", opts.Command, runErr)
		return 1
	}
	return 0
}

// logError logs err with its type, dataset and context when it is an AppError
func logError(ctx context.Context, logger *slog.Logger, err error) {
	var attrs []any
	if appErr, ok := apperrors.AsAppError(err); ok {
		attrs = appErr.LogAttrs()
	}
	infrastructure.WithError(logger, err).ErrorContext(ctx, "Command failed", attrs...)
}
