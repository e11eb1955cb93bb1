// Package crsp imports CRSP monthly firm returns and resamples them to
// annual compounded returns per industry and firm
package crsp

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"datastorage/internal/config"
	"datastorage/internal/dataprocessing"
	"datastorage/internal/datasets"
	apperrors "datastorage/internal/errors"
	"datastorage/internal/table"
)

const (
	// Dataset is the persisted table name
	Dataset = "returns"
	// Container is the table container in the CRSP directory
	Container = "firm_returns"
)

// missingReturnCodes are the CRSP placeholders for a return that could
// not be computed
var missingReturnCodes = map[string]bool{
	"":  true,
	"A": true,
	"B": true,
	"C": true,
	"D": true,
	"E": true,
}

// Importer imports the firm returns archive
type Importer struct {
	env    *datasets.Env
	source config.CRSPSource
	logger *slog.Logger
}

// New creates the returns importer
func New(env *datasets.Env) *Importer {
	return &Importer{
		env:    env,
		source: env.Config.Sources.CRSP,
		logger: env.Logger.With("component", "crsp"),
	}
}

// Importers returns every CRSP importer
func Importers(env *datasets.Env) []datasets.Importer {
	return []datasets.Importer{New(env)}
}

func (i *Importer) Dataset() string { return Dataset }
func (i *Importer) Provider() config.ProviderPaths { return i.env.Paths.CRSP }
func (i *Importer) Container() string { return Container }

// Fetch requires the archive; CRSP extracts are placed by hand
func (i *Importer) Fetch(ctx context.Context) error {
	return i.env.FetchSources(ctx, i.Provider(), datasets.Source{File: i.source.Archive})
}

func (i *Importer) Parse(ctx context.Context) (*table.Table, dataprocessing.ParseStats, error) {
	return i.env.ParseArchive(ctx, i.Provider().RawPath(i.source.Archive), ParseSpec(i.source.SkipRows))
}

func (i *Importer) Transform(ctx context.Context, raw *table.Table) (*table.Table, error) {
	monthly, dropped, err := Clean(raw)
	if err != nil {
		return nil, err
	}
	i.logger.InfoContext(ctx, "Monthly returns cleaned",
		slog.Int("rows", monthly.NumRows()),
		slog.Int("missing_return", dropped.MissingReturn),
		slog.Int("invalid_price", dropped.InvalidPrice),
		slog.Int("invalid_shares", dropped.InvalidShares))
	return Resample(monthly)
}

// ParseSpec describes the raw monthly extract
func ParseSpec(skipRows int) dataprocessing.ParseSpec {
	return dataprocessing.ParseSpec{
		SkipRows: skipRows,
		Columns: []dataprocessing.ColumnSpec{
			{Source: "DATE", Name: "date", Kind: table.KindDate, Layout: dataprocessing.LayoutDayFirst},
			{Source: "HSICCD", Name: "SIC", Kind: table.KindInt},
			{Source: "CUSIP", Kind: table.KindString},
			{Source: "PRC", Name: "price", Kind: table.KindFloat},
			{Source: "SHROUT", Name: "shares", Kind: table.KindFloat},
			{Source: "RETX", Name: "return", Kind: table.KindString},
		},
	}
}

// DropCounts breaks dropped monthly rows down by reason
type DropCounts struct {
	MissingReturn int
	InvalidPrice  int
	InvalidShares int
}

// Clean drops rows with a missing return code or a non-positive price or
// share count, converts returns to numbers and derives value and year. A
// return that is neither a number nor a missing code fails the transform.
func Clean(raw *table.Table) (*table.Table, DropCounts, error) {
	var counts DropCounts

	rets, err := raw.Strings("return")
	if err != nil {
		return nil, counts, apperrors.NewTransformError("missing return column", err)
	}
	prices, err := raw.Floats("price")
	if err != nil {
		return nil, counts, apperrors.NewTransformError("missing price column", err)
	}
	shares, err := raw.Floats("shares")
	if err != nil {
		return nil, counts, apperrors.NewTransformError("missing shares column", err)
	}

	keep := make([]int, 0, raw.NumRows())
	parsed := make([]float64, 0, raw.NumRows())
	for row := 0; row < raw.NumRows(); row++ {
		r := strings.TrimSpace(rets[row])
		switch {
		case missingReturnCodes[r]:
			counts.MissingReturn++
			continue
		case !(prices[row] > 0):
			counts.InvalidPrice++
			continue
		case !(shares[row] > 0):
			counts.InvalidShares++
			continue
		}
		v, err := strconv.ParseFloat(r, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, counts, apperrors.NewTransformError("invalid return", err).
				WithRow(row).
				WithContext("column", "return").
				WithContext("value", r)
		}
		keep = append(keep, row)
		parsed = append(parsed, v)
	}

	monthly := raw.Take(keep)
	monthly, err = monthly.SetColumn(table.NewFloat("return", parsed))
	if err != nil {
		return nil, counts, apperrors.NewTransformError("failed to convert returns", err)
	}

	price, _ := monthly.Floats("price")
	shrout, _ := monthly.Floats("shares")
	monthly, err = monthly.DeriveFloat("value", func(i int) float64 { return shrout[i] * price[i] })
	if err != nil {
		return nil, counts, apperrors.NewTransformError("failed to derive value", err)
	}

	dates, err := monthly.Dates("date")
	if err != nil {
		return nil, counts, apperrors.NewTransformError("missing date column", err)
	}
	monthly, err = monthly.DeriveInt("year", func(i int) int64 { return int64(dates[i].Year()) })
	if err != nil {
		return nil, counts, apperrors.NewTransformError("failed to derive year", err)
	}
	return monthly, counts, nil
}

// Resample compounds monthly returns into annual ones per (SIC, CUSIP,
// year), in percent. The annual value is the value of the earliest monthly
// observation in the year.
func Resample(monthly *table.Table) (*table.Table, error) {
	if err := monthly.CheckUnique("SIC", "CUSIP", "date"); err != nil {
		return nil, apperrors.NewTransformError("duplicate monthly observation", err)
	}

	sorted, err := monthly.SortBy("SIC", "CUSIP", "date")
	if err != nil {
		return nil, apperrors.NewTransformError("failed to sort monthly returns", err)
	}
	groups, err := sorted.GroupBy("SIC", "CUSIP", "year")
	if err != nil {
		return nil, apperrors.NewTransformError("failed to group monthly returns", err)
	}

	annual, err := groups.Float("return", func(r []float64) float64 {
		return table.CompoundReturn(r) * 100
	})
	if err != nil {
		return nil, apperrors.NewTransformError("failed to compound returns", err)
	}
	value, err := groups.First("value")
	if err != nil {
		return nil, apperrors.NewTransformError("failed to take first value", err)
	}

	out, err := groups.Aggregate(annual, value)
	if err != nil {
		return nil, apperrors.NewTransformError("failed to assemble annual returns", err)
	}
	return out.WithName(Dataset), nil
}

// Load reads the annual returns table
func Load(ctx context.Context, env *datasets.Env) (*table.Table, error) {
	return env.Load(ctx, env.Paths.CRSP, Container, Dataset)
}
