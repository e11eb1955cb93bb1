// Package cboe imports the CBOE daily price history workbook into the
// vix_spx table
package cboe

import (
	"context"
	"log/slog"

	"datastorage/internal/config"
	"datastorage/internal/dataprocessing"
	"datastorage/internal/datasets"
	apperrors "datastorage/internal/errors"
	"datastorage/internal/table"
)

const (
	Dataset   = "vix_spx"
	Container = "vix_spx"
)

// Index level columns
const (
	SPX = "SPX"
	VIX = "VIX"
)

// Importer reads the Daily sheet of the price history workbook
type Importer struct {
	env    *datasets.Env
	source config.CBOESource
	logger *slog.Logger
}

func New(env *datasets.Env) *Importer {
	return &Importer{
		env:    env,
		source: env.Config.Sources.CBOE,
		logger: env.Logger.With("component", "cboe"),
	}
}

// Importers returns every CBOE importer
func Importers(env *datasets.Env) []datasets.Importer {
	return []datasets.Importer{New(env)}
}

func (i *Importer) Dataset() string { return Dataset }
func (i *Importer) Provider() config.ProviderPaths { return i.env.Paths.CBOE }
func (i *Importer) Container() string { return Container }

func (i *Importer) Fetch(ctx context.Context) error {
	return i.env.FetchSources(ctx, i.Provider(), datasets.Source{URL: i.source.URL, File: i.source.File})
}

// Parse reads the sheet. Index headers such as "SPX Index" are shortened
// to their ticker; non-numeric cells become missing values and are counted.
func (i *Importer) Parse(ctx context.Context) (*table.Table, dataprocessing.ParseStats, error) {
	path := i.Provider().RawPath(i.source.File)
	t, stats, err := dataprocessing.ParseSheet(path, i.source.Sheet, ParseSpec(i.source.SkipRows))
	if err != nil {
		return nil, stats, err
	}
	i.logger.InfoContext(ctx, "Workbook parsed",
		slog.String("path", path),
		slog.String("sheet", i.source.Sheet),
		slog.Int("rows", stats.Rows),
		slog.Int("rows_without_date", stats.DroppedRows),
		slog.Int("non_numeric_cells", stats.CoercedCells))
	return t, stats, nil
}

func (i *Importer) Transform(ctx context.Context, raw *table.Table) (*table.Table, error) {
	return Transform(raw)
}

// ParseSpec describes the Daily sheet
func ParseSpec(skipRows int) dataprocessing.ParseSpec {
	return dataprocessing.ParseSpec{
		SkipRows:         skipRows,
		FirstColumn:      "date",
		HeaderRename:     Ticker,
		DropMissingDates: true,
		Columns: []dataprocessing.ColumnSpec{
			{Source: "date", Kind: table.KindDate, Layout: dataprocessing.LayoutExcelSerial},
			{Source: SPX, Kind: table.KindFloat, Coerce: true},
			{Source: VIX, Kind: table.KindFloat, Coerce: true},
		},
	}
}

// Ticker shortens a column header to its first three characters
func Ticker(header string) string {
	if r := []rune(header); len(r) > 3 {
		return string(r[:3])
	}
	return header
}

// Transform keeps dates with both SPX and VIX, keyed and sorted by date
func Transform(raw *table.Table) (*table.Table, error) {
	t, err := raw.Select("date", SPX, VIX)
	if err != nil {
		return nil, apperrors.NewTransformError("missing index column", err)
	}
	if t, err = t.DropMissing(SPX, VIX); err != nil {
		return nil, apperrors.NewTransformError("failed to drop missing values", err)
	}
	if t, err = t.WithKey("date"); err != nil {
		return nil, apperrors.NewTransformError("failed to set key", err)
	}
	if t, err = t.SortByKey(); err != nil {
		return nil, apperrors.NewTransformError("failed to sort", err)
	}
	return t.WithName(Dataset), nil
}

// Load reads the vix_spx table
func Load(ctx context.Context, env *datasets.Env) (*table.Table, error) {
	return env.Load(ctx, env.Paths.CBOE, Container, Dataset)
}
