// Package optionmetrics imports OptionMetrics extracts of the S&P 500:
// dividend yields, the zero yield curve, the risk-free rate derived from
// it, standardized options and the implied volatility surface.
//
// Importers run in dependency order. riskfree reads the persisted yields
// table, and surface reads riskfree, dividends or std_options together
// with the Quandl spx series, depending on the configured rate source.
package optionmetrics

import (
	"context"

	"datastorage/internal/config"
	"datastorage/internal/dataprocessing"
	"datastorage/internal/datasets"
	"datastorage/internal/table"
)

// Dataset names; each dataset is stored in a container of the same name
const (
	Dividends  = "dividends"
	Yields     = "yields"
	RiskFree   = "riskfree"
	StdOptions = "std_options"
	Surface    = "surface"
)

// archiveImporter parses one pre-placed archive and hands the raw table
// to transform
type archiveImporter struct {
	env       *datasets.Env
	dataset   string
	archive   string
	spec      dataprocessing.ParseSpec
	transform func(ctx context.Context, raw *table.Table) (*table.Table, error)
}

func (a *archiveImporter) Dataset() string { return a.dataset }
func (a *archiveImporter) Provider() config.ProviderPaths { return a.env.Paths.OptionMetrics }
func (a *archiveImporter) Container() string { return a.dataset }

func (a *archiveImporter) Fetch(ctx context.Context) error {
	return a.env.FetchSources(ctx, a.Provider(), datasets.Source{File: a.archive})
}

func (a *archiveImporter) Parse(ctx context.Context) (*table.Table, dataprocessing.ParseStats, error) {
	return a.env.ParseArchive(ctx, a.Provider().RawPath(a.archive), a.spec)
}

func (a *archiveImporter) Transform(ctx context.Context, raw *table.Table) (*table.Table, error) {
	return a.transform(ctx, raw)
}

// Importers returns every OptionMetrics importer in dependency order
func Importers(env *datasets.Env) []datasets.Importer {
	return []datasets.Importer{
		NewDividends(env),
		NewYields(env),
		NewRiskFree(env),
		NewStdOptions(env),
		NewSurface(env),
	}
}

// load reads one of the OptionMetrics tables
func load(ctx context.Context, env *datasets.Env, name string) (*table.Table, error) {
	return env.Load(ctx, env.Paths.OptionMetrics, name, name)
}

// LoadDividends reads the dividend yield table (annualized, percent)
func LoadDividends(ctx context.Context, env *datasets.Env) (*table.Table, error) {
	return load(ctx, env, Dividends)
}

// LoadYields reads the zero yield curve (annualized, percent)
func LoadYields(ctx context.Context, env *datasets.Env) (*table.Table, error) {
	return load(ctx, env, Yields)
}

// LoadRiskFree reads the daily risk-free rate (annualized, percent)
func LoadRiskFree(ctx context.Context, env *datasets.Env) (*table.Table, error) {
	return load(ctx, env, RiskFree)
}

// LoadStdOptions reads the standardized options table
func LoadStdOptions(ctx context.Context, env *datasets.Env) (*table.Table, error) {
	return load(ctx, env, StdOptions)
}

// LoadSurface reads the volatility surface
func LoadSurface(ctx context.Context, env *datasets.Env) (*table.Table, error) {
	return load(ctx, env, Surface)
}

// keyed sets the key of t, checks it and sorts by it
func keyed(t *table.Table, name string, key ...string) (*table.Table, error) {
	t, err := t.WithKey(key...)
	if err != nil {
		return nil, err
	}
	if err := t.CheckUniqueKey(); err != nil {
		return nil, err
	}
	if t, err = t.SortByKey(); err != nil {
		return nil, err
	}
	return t.WithName(name), nil
}
