// Package compustat imports Compustat short interest records
package compustat

import (
	"context"
	"log/slog"
	"time"

	"datastorage/internal/config"
	"datastorage/internal/dataprocessing"
	"datastorage/internal/datasets"
	apperrors "datastorage/internal/errors"
	"datastorage/internal/table"
)

const (
	Dataset   = "short_int"
	Container = "short_int"
)

// Importer imports the short interest archive
type Importer struct {
	env    *datasets.Env
	source config.CompustatSource
	logger *slog.Logger
}

func New(env *datasets.Env) *Importer {
	return &Importer{
		env:    env,
		source: env.Config.Sources.Compustat,
		logger: env.Logger.With("component", "compustat"),
	}
}

// Importers returns every Compustat importer
func Importers(env *datasets.Env) []datasets.Importer {
	return []datasets.Importer{New(env)}
}

func (i *Importer) Dataset() string { return Dataset }
func (i *Importer) Provider() config.ProviderPaths { return i.env.Paths.Compustat }
func (i *Importer) Container() string { return Container }

func (i *Importer) Fetch(ctx context.Context) error {
	return i.env.FetchSources(ctx, i.Provider(), datasets.Source{File: i.source.Archive})
}

func (i *Importer) Parse(ctx context.Context) (*table.Table, dataprocessing.ParseStats, error) {
	return i.env.ParseArchive(ctx, i.Provider().RawPath(i.source.Archive), ParseSpec())
}

func (i *Importer) Transform(ctx context.Context, raw *table.Table) (*table.Table, error) {
	t, err := Transform(raw)
	if err != nil {
		return nil, err
	}

	s, err := Describe(t)
	if err != nil {
		return nil, apperrors.NewTransformError("failed to describe short interest", err)
	}
	attrs := []any{
		slog.Int("companies", s.Companies),
		slog.Int("dates", s.Dates),
	}
	if !s.First.IsZero() {
		attrs = append(attrs,
			slog.String("first_date", s.First.Format(table.DateLayout)),
			slog.String("last_date", s.Last.Format(table.DateLayout)))
	}
	i.logger.InfoContext(ctx, "Short interest coverage", attrs...)
	return t, nil
}

// ParseSpec describes the raw short interest extract. GVKEY stays a string
// so leading zeros survive.
func ParseSpec() dataprocessing.ParseSpec {
	return dataprocessing.ParseSpec{
		Columns: []dataprocessing.ColumnSpec{
			{Source: "GVKEY", Name: "gvkey", Kind: table.KindString},
			{Source: "datadate", Name: "date", Kind: table.KindDate, Layout: dataprocessing.LayoutDayFirst},
			{Source: "SHORTINTADJ", Name: "short_int", Kind: table.KindFloat},
		},
	}
}

// Transform keys the records by (gvkey, date) and sorts them. A repeated
// (gvkey, date) pair fails the transform.
func Transform(raw *table.Table) (*table.Table, error) {
	t, err := raw.Select("gvkey", "date", "short_int")
	if err != nil {
		return nil, apperrors.NewTransformError("missing short interest column", err)
	}
	if t, err = t.WithKey("gvkey", "date"); err != nil {
		return nil, apperrors.NewTransformError("failed to set key", err)
	}
	if err := t.CheckUniqueKey(); err != nil {
		return nil, apperrors.NewTransformError("duplicate company date", err)
	}
	if t, err = t.SortByKey(); err != nil {
		return nil, apperrors.NewTransformError("failed to sort", err)
	}
	return t.WithName(Dataset), nil
}

// Summary describes the coverage of the short interest table
type Summary struct {
	Companies int
	Dates     int
	First     time.Time
	Last      time.Time
}

// Describe counts distinct companies and dates and finds the date range
func Describe(t *table.Table) (Summary, error) {
	var s Summary
	gvkeys, err := t.Strings("gvkey")
	if err != nil {
		return s, err
	}
	dates, err := t.Dates("date")
	if err != nil {
		return s, err
	}

	companies := make(map[string]struct{})
	for _, g := range gvkeys {
		companies[g] = struct{}{}
	}
	days := make(map[time.Time]struct{})
	for _, d := range dates {
		days[d] = struct{}{}
		if s.First.IsZero() || d.Before(s.First) {
			s.First = d
		}
		if d.After(s.Last) {
			s.Last = d
		}
	}
	s.Companies = len(companies)
	s.Dates = len(days)
	return s, nil
}

// Load reads the short interest table
func Load(ctx context.Context, env *datasets.Env) (*table.Table, error) {
	return env.Load(ctx, env.Paths.Compustat, Container, Dataset)
}
