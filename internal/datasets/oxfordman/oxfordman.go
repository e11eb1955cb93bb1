// Package oxfordman imports Oxford-Man realized volatility. Two releases
// are merged: the older realized library is kept only for dates before the
// newer indices series starts.
package oxfordman

import (
	"context"
	"log/slog"
	"math"

	"datastorage/internal/config"
	"datastorage/internal/dataprocessing"
	"datastorage/internal/datasets"
	apperrors "datastorage/internal/errors"
	"datastorage/internal/table"
)

const (
	Dataset   = "realized_vol"
	Container = "realized_vol"
)

// RV is the annualized realized volatility column, in percent
const RV = "RV"

// Header lines above the column names in each release
const (
	librarySkipRows = 1
	indicesSkipRows = 2
)

// Release numbers stored in the raw table's source column
const (
	SourceLibrary int64 = 1
	SourceIndices int64 = 2
)

// Importer downloads and merges both realized volatility releases
type Importer struct {
	env    *datasets.Env
	source config.OxfordManSource
	logger *slog.Logger
}

func New(env *datasets.Env) *Importer {
	return &Importer{
		env:    env,
		source: env.Config.Sources.OxfordMan,
		logger: env.Logger.With("component", "oxfordman"),
	}
}

// Importers returns every Oxford-Man importer
func Importers(env *datasets.Env) []datasets.Importer {
	return []datasets.Importer{New(env)}
}

func (i *Importer) Dataset() string { return Dataset }
func (i *Importer) Provider() config.ProviderPaths { return i.env.Paths.OxfordMan }
func (i *Importer) Container() string { return Container }

func (i *Importer) Fetch(ctx context.Context) error {
	return i.env.FetchSources(ctx, i.Provider(),
		datasets.Source{URL: i.source.LibraryURL, File: i.source.LibraryArchive},
		datasets.Source{URL: i.source.IndicesURL, File: i.source.IndicesArchive},
	)
}

// Parse reads both releases into one table with columns date, RV and
// source
func (i *Importer) Parse(ctx context.Context) (*table.Table, dataprocessing.ParseStats, error) {
	var total dataprocessing.ParseStats
	releases := []struct {
		archive string
		skip    int
		column  string
		source  int64
	}{
		{i.source.LibraryArchive, librarySkipRows, i.source.LibraryColumn, SourceLibrary},
		{i.source.IndicesArchive, indicesSkipRows, i.source.IndicesColumn, SourceIndices},
	}

	parts := make([]*table.Table, 0, len(releases))
	for _, r := range releases {
		t, stats, err := i.env.ParseArchive(ctx, i.Provider().RawPath(r.archive), ParseSpec(r.skip, r.column))
		if err != nil {
			return nil, total, err
		}
		t, err = t.DeriveInt("source", func(int) int64 { return r.source })
		if err != nil {
			return nil, total, apperrors.NewParseError("failed to tag release", err)
		}
		parts = append(parts, t)
		total.Rows += stats.Rows
		total.DroppedRows += stats.DroppedRows
		total.BlankRows += stats.BlankRows
		total.CoercedCells += stats.CoercedCells
	}

	raw, err := table.Concat(parts...)
	if err != nil {
		return nil, total, apperrors.NewParseError("failed to combine releases", err)
	}
	return raw, total, nil
}

func (i *Importer) Transform(ctx context.Context, raw *table.Table) (*table.Table, error) {
	return Transform(raw, i.source.AnnualizeFactor)
}

// ParseSpec describes one release: the first column holds yyyymmdd dates,
// rows without a date are dropped and column becomes RV
func ParseSpec(skipRows int, column string) dataprocessing.ParseSpec {
	return dataprocessing.ParseSpec{
		SkipRows:         skipRows,
		FirstColumn:      "date",
		DropMissingDates: true,
		Columns: []dataprocessing.ColumnSpec{
			{Source: "date", Kind: table.KindDate, Layout: dataprocessing.LayoutCompact},
			{Source: column, Name: RV, Kind: table.KindFloat},
		},
	}
}

// Transform drops missing values, keeps library rows strictly before the
// first indices date, and converts daily variance into annualized
// volatility in percent: sqrt(RV * factor) * 100
func Transform(raw *table.Table, factor int) (*table.Table, error) {
	clean, err := raw.DropMissing(RV)
	if err != nil {
		return nil, apperrors.NewTransformError("missing RV column", err)
	}
	source, err := clean.Ints("source")
	if err != nil {
		return nil, apperrors.NewTransformError("missing source column", err)
	}
	dates, err := clean.Dates("date")
	if err != nil {
		return nil, apperrors.NewTransformError("missing date column", err)
	}

	var cutoff int64 = math.MaxInt64
	for k, s := range source {
		if s == SourceIndices {
			cutoff = min(cutoff, dates[k].Unix())
		}
	}

	merged := clean.Filter(func(k int) bool {
		return source[k] == SourceIndices || dates[k].Unix() < cutoff
	})
	if merged, err = merged.Drop("source"); err != nil {
		return nil, apperrors.NewTransformError("failed to drop source column", err)
	}

	rv, _ := merged.Floats(RV)
	merged, err = merged.DeriveFloat(RV, func(k int) float64 {
		return math.Sqrt(rv[k]*float64(factor)) * 100
	})
	if err != nil {
		return nil, apperrors.NewTransformError("failed to annualize", err)
	}

	if merged, err = merged.WithKey("date"); err != nil {
		return nil, apperrors.NewTransformError("failed to set key", err)
	}
	if err := merged.CheckUniqueKey(); err != nil {
		return nil, apperrors.NewTransformError("duplicate date", err)
	}
	if merged, err = merged.SortByKey(); err != nil {
		return nil, apperrors.NewTransformError("failed to sort", err)
	}
	return merged.WithName(Dataset), nil
}

// Load reads the realized volatility table
func Load(ctx context.Context, env *datasets.Env) (*table.Table, error) {
	return env.Load(ctx, env.Paths.OxfordMan, Container, Dataset)
}
