// Package quandl imports index close prices from the Quandl API and the
// annual Fama-French research factors
package quandl

import (
	"context"
	"log/slog"

	"datastorage/internal/config"
	"datastorage/internal/dataprocessing"
	"datastorage/internal/datasets"
	apperrors "datastorage/internal/errors"
	"datastorage/internal/fetch"
	"datastorage/internal/table"
)

// Dataset names; each dataset is stored in a container of the same name
const (
	SPX     = "spx"
	VIX     = "vix"
	Factors = "ff_factors"
)

// SeriesImporter imports one index series. The API has no bulk file, so
// Fetch always queries it and keeps the series for Parse.
type SeriesImporter struct {
	env    *datasets.Env
	client *fetch.QuandlClient
	name   string
	code   string
	column string
	logger *slog.Logger

	series *table.Table
}

// NewSeries creates an importer storing the column of dataset code as name
func NewSeries(env *datasets.Env, name, code string) *SeriesImporter {
	cfg := env.Config.Sources.Quandl
	return &SeriesImporter{
		env:    env,
		client: fetch.NewQuandlClient(env.Fetcher, cfg.BaseURL, env.Paths.Quandl.Credential, env.Logger),
		name:   name,
		code:   code,
		column: cfg.Column,
		logger: env.Logger.With("component", "quandl", "dataset", name),
	}
}

// Importers returns the SPX, VIX and factor importers
func Importers(env *datasets.Env) []datasets.Importer {
	cfg := env.Config.Sources.Quandl
	return []datasets.Importer{
		NewSeries(env, SPX, cfg.SPXCode),
		NewSeries(env, VIX, cfg.VIXCode),
		NewFactors(env),
	}
}

func (s *SeriesImporter) Dataset() string { return s.name }
func (s *SeriesImporter) Provider() config.ProviderPaths { return s.env.Paths.Quandl }
func (s *SeriesImporter) Container() string { return s.name }

func (s *SeriesImporter) Fetch(ctx context.Context) error {
	series, err := s.client.Series(ctx, s.code, s.column)
	if err != nil {
		return err
	}
	s.series = series
	return nil
}

func (s *SeriesImporter) Parse(ctx context.Context) (*table.Table, dataprocessing.ParseStats, error) {
	if s.series == nil {
		return nil, dataprocessing.ParseStats{}, apperrors.NewParseError("series not fetched", nil).
			WithContext("code", s.code)
	}
	return s.series, dataprocessing.ParseStats{Rows: s.series.NumRows()}, nil
}

func (s *SeriesImporter) Transform(ctx context.Context, raw *table.Table) (*table.Table, error) {
	t, dropped, err := TransformSeries(raw, s.column, s.name)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		s.logger.WarnContext(ctx, "Dropped days without a close", slog.Int("rows", dropped))
	}
	return t, nil
}

// TransformSeries renames column to name, drops days without a value and
// keys the series by date
func TransformSeries(raw *table.Table, column, name string) (*table.Table, int, error) {
	t, err := raw.Rename(map[string]string{column: name})
	if err != nil {
		return nil, 0, apperrors.NewTransformError("missing close column", err)
	}
	if t, err = t.Select("date", name); err != nil {
		return nil, 0, apperrors.NewTransformError("missing date column", err)
	}
	before := t.NumRows()
	if t, err = t.DropMissing(name); err != nil {
		return nil, 0, apperrors.NewTransformError("failed to drop missing values", err)
	}
	if t, err = t.WithKey("date"); err != nil {
		return nil, 0, apperrors.NewTransformError("failed to set key", err)
	}
	if err := t.CheckUniqueKey(); err != nil {
		return nil, 0, apperrors.NewTransformError("duplicate date", err)
	}
	if t, err = t.SortByKey(); err != nil {
		return nil, 0, apperrors.NewTransformError("failed to sort", err)
	}
	return t.WithName(name), before - t.NumRows(), nil
}

// LoadSPX reads the SPX close series
func LoadSPX(ctx context.Context, env *datasets.Env) (*table.Table, error) {
	return env.Load(ctx, env.Paths.Quandl, SPX, SPX)
}

// LoadVIX reads the VIX close series
func LoadVIX(ctx context.Context, env *datasets.Env) (*table.Table, error) {
	return env.Load(ctx, env.Paths.Quandl, VIX, VIX)
}

// LoadFactors reads the annual Fama-French factors
func LoadFactors(ctx context.Context, env *datasets.Env) (*table.Table, error) {
	return env.Load(ctx, env.Paths.Quandl, Factors, Factors)
}
