package quandl

import (
	"bufio"
	"context"
	"strings"

	"datastorage/internal/config"
	"datastorage/internal/dataprocessing"
	"datastorage/internal/datasets"
	apperrors "datastorage/internal/errors"
	"datastorage/internal/table"
)

// annualMarker introduces the annual block of the research factors file,
// which follows the monthly block
const annualMarker = "Annual Factors"

// FactorsImporter imports the annual block of the Fama-French research
// factors archive
type FactorsImporter struct {
	env    *datasets.Env
	source config.QuandlSource
}

func NewFactors(env *datasets.Env) *FactorsImporter {
	return &FactorsImporter{env: env, source: env.Config.Sources.Quandl}
}

func (f *FactorsImporter) Dataset() string { return Factors }
func (f *FactorsImporter) Provider() config.ProviderPaths { return f.env.Paths.Quandl }
func (f *FactorsImporter) Container() string { return Factors }

func (f *FactorsImporter) Fetch(ctx context.Context) error {
	return f.env.FetchSources(ctx, f.Provider(),
		datasets.Source{URL: f.source.FamaFrenchURL, File: f.source.FamaFrenchArchive})
}

func (f *FactorsImporter) Parse(ctx context.Context) (*table.Table, dataprocessing.ParseStats, error) {
	path := f.Provider().RawPath(f.source.FamaFrenchArchive)
	entry, err := dataprocessing.OpenSingleEntry(path)
	if err != nil {
		return nil, dataprocessing.ParseStats{}, err
	}
	defer entry.Close()

	section, err := AnnualSection(bufio.NewScanner(entry))
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok {
			appErr.WithContext("path", path).WithContext("entry", entry.Name)
		}
		return nil, dataprocessing.ParseStats{}, err
	}
	return dataprocessing.ParseCSV(strings.NewReader(section), FactorsSpec())
}

// Transform keys the factors by year
func (f *FactorsImporter) Transform(ctx context.Context, raw *table.Table) (*table.Table, error) {
	t, err := raw.WithKey("year")
	if err != nil {
		return nil, apperrors.NewTransformError("failed to set key", err)
	}
	if err := t.CheckUniqueKey(); err != nil {
		return nil, apperrors.NewTransformError("duplicate year", err)
	}
	if t, err = t.SortByKey(); err != nil {
		return nil, apperrors.NewTransformError("failed to sort", err)
	}
	return t.WithName(Factors), nil
}

// FactorsSpec describes the annual block: an unnamed year column followed
// by the factor returns in percent
func FactorsSpec() dataprocessing.ParseSpec {
	return dataprocessing.ParseSpec{
		FirstColumn: "year",
		Columns: []dataprocessing.ColumnSpec{
			{Source: "year", Kind: table.KindInt},
			{Source: "Mkt-RF", Name: "MKT", Kind: table.KindFloat},
			{Source: "SMB", Kind: table.KindFloat},
			{Source: "HML", Kind: table.KindFloat},
			{Source: "RF", Kind: table.KindFloat},
		},
	}
}

// AnnualSection returns the header and rows of the annual block, which
// runs from the line after the marker to the next blank line
func AnnualSection(sc *bufio.Scanner) (string, error) {
	var b strings.Builder
	found := false
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if !found {
			found = strings.Contains(line, annualMarker)
			continue
		}
		if strings.TrimSpace(line) == "" {
			if b.Len() == 0 {
				continue
			}
			break
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return "", apperrors.NewParseError("failed to read factors file", err)
	}
	if !found || b.Len() == 0 {
		return "", apperrors.NewParseError("annual factors block not found", nil).
			WithContext("marker", annualMarker)
	}
	return b.String(), nil
}
