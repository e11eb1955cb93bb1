package optionmetrics

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"time"

	"datastorage/internal/config"
	"datastorage/internal/dataprocessing"
	"datastorage/internal/datasets"
	apperrors "datastorage/internal/errors"
	"datastorage/internal/table"
)

// NewDividends creates the dividend yield importer
func NewDividends(env *datasets.Env) datasets.Importer {
	return &archiveImporter{
		env:     env,
		dataset: Dividends,
		archive: env.Config.Sources.OptionMetrics.DividendArchive,
		spec: dataprocessing.ParseSpec{
			Columns: []dataprocessing.ColumnSpec{
				{Source: "date", Kind: table.KindDate, Layout: dataprocessing.LayoutDayFirst},
				{Source: "rate", Kind: table.KindFloat},
			},
		},
		transform: func(ctx context.Context, raw *table.Table) (*table.Table, error) {
			t, err := keyed(raw, Dividends, "date")
			if err != nil {
				return nil, apperrors.NewTransformError("invalid dividend table", err)
			}
			return t, nil
		},
	}
}

// YieldSpec describes the zero curve extract
func YieldSpec() dataprocessing.ParseSpec {
	return dataprocessing.ParseSpec{
		Columns: []dataprocessing.ColumnSpec{
			{Source: "date", Kind: table.KindDate, Layout: dataprocessing.LayoutDayFirst},
			{Source: "days", Kind: table.KindInt},
			{Source: "rate", Kind: table.KindFloat},
		},
	}
}

// NewYields creates the zero curve importer
func NewYields(env *datasets.Env) datasets.Importer {
	cfg := env.Config.Sources.OptionMetrics
	logger := env.Logger.With("component", "optionmetrics", "dataset", Yields)
	return &archiveImporter{
		env:     env,
		dataset: Yields,
		archive: cfg.YieldArchive,
		spec:    YieldSpec(),
		transform: func(ctx context.Context, raw *table.Table) (*table.Table, error) {
			t, err := TransformYields(raw, cfg)
			if err != nil {
				return nil, err
			}
			logger.InfoContext(ctx, "Yield curve prepared",
				slog.Int("rows", t.NumRows()),
				slog.Bool("interpolated", cfg.InterpolateCurve))
			return t, nil
		},
	}
}

// TransformYields drops rates at or above the configured ceiling, renames
// rate to riskfree, optionally fills the curve in, and keys by (date, days)
func TransformYields(raw *table.Table, cfg config.OptionMetricsSource) (*table.Table, error) {
	rates, err := raw.Floats("rate")
	if err != nil {
		return nil, apperrors.NewTransformError("missing rate column", err)
	}
	t := raw.Filter(func(i int) bool { return rates[i] < cfg.MaxRiskFree })
	if t, err = t.Rename(map[string]string{"rate": "riskfree"}); err != nil {
		return nil, apperrors.NewTransformError("failed to rename rate", err)
	}
	if t, err = t.Select("date", "days", "riskfree"); err != nil {
		return nil, apperrors.NewTransformError("missing yield column", err)
	}

	if cfg.InterpolateCurve {
		if t, err = InterpolateYields(t); err != nil {
			return nil, err
		}
	}

	out, err := keyed(t, Yields, "date", "days")
	if err != nil {
		return nil, apperrors.NewTransformError("invalid yield curve", err)
	}
	return out, nil
}

// InterpolateYields fits each date's curve across maturities and evaluates
// it on every integer day between that date's shortest and longest
// maturity. Every date is then extended to the union of those day ranges by
// carrying the nearest value forward, then backward. Days no curve spans
// are not emitted.
func InterpolateYields(t *table.Table) (*table.Table, error) {
	sorted, err := t.SortBy("date", "days")
	if err != nil {
		return nil, apperrors.NewTransformError("failed to sort yields", err)
	}
	groups, err := sorted.GroupBy("date")
	if err != nil {
		return nil, apperrors.NewTransformError("failed to group yields", err)
	}
	days, _ := sorted.Ints("days")
	rates, _ := sorted.Floats("riskfree")
	dates, _ := groups.Keys().Dates("date")

	curves := make([]dataprocessing.Curve, groups.Len())
	covered := make(map[int64]struct{})
	for g, idx := range groups.Indices() {
		xs := make([]int64, len(idx))
		ys := make([]float64, len(idx))
		for k, i := range idx {
			xs[k], ys[k] = days[i], rates[i]
		}
		curve, err := dataprocessing.InterpolateCurve(xs, ys)
		if err != nil {
			return nil, apperrors.NewTransformError("failed to interpolate yield curve", err).
				WithContext("date", dates[g].Format(table.DateLayout))
		}
		curves[g] = curve
		for _, d := range curve.Days {
			covered[d] = struct{}{}
		}
	}
	if len(curves) == 0 {
		return sorted, nil
	}

	// columns are the maturities some date's curve spans
	columns := make([]int64, 0, len(covered))
	for d := range covered {
		columns = append(columns, d)
	}
	slices.Sort(columns)
	position := make(map[int64]int, len(columns))
	for k, d := range columns {
		position[d] = k
	}

	grid := make([][]float64, len(curves))
	for g, curve := range curves {
		row := make([]float64, len(columns))
		for k := range row {
			row[k] = math.NaN()
		}
		for k, d := range curve.Days {
			row[position[d]] = curve.Values[k]
		}
		grid[g] = row
	}
	dataprocessing.NewForwardFillProcessor().FillRows(grid)

	n := len(curves) * len(columns)
	outDates := make([]time.Time, 0, n)
	outDays := make([]int64, 0, n)
	outRates := make([]float64, 0, n)
	for g, row := range grid {
		for k, v := range row {
			outDates = append(outDates, dates[g])
			outDays = append(outDays, columns[k])
			outRates = append(outRates, v)
		}
	}
	return table.New(t.Name(),
		table.NewDate("date", outDates),
		table.NewInt("days", outDays),
		table.NewFloat("riskfree", outRates),
	)
}

// riskFreeImporter derives the daily risk-free rate from the persisted
// yield curve
type riskFreeImporter struct {
	env *datasets.Env
}

// NewRiskFree creates the risk-free rate importer
func NewRiskFree(env *datasets.Env) datasets.Importer {
	return &riskFreeImporter{env: env}
}

func (r *riskFreeImporter) Dataset() string { return RiskFree }
func (r *riskFreeImporter) Provider() config.ProviderPaths { return r.env.Paths.OptionMetrics }
func (r *riskFreeImporter) Container() string { return RiskFree }

func (r *riskFreeImporter) Fetch(ctx context.Context) error { return nil }

func (r *riskFreeImporter) Parse(ctx context.Context) (*table.Table, dataprocessing.ParseStats, error) {
	yields, err := LoadYields(ctx, r.env)
	if err != nil {
		return nil, dataprocessing.ParseStats{}, err
	}
	return yields, dataprocessing.ParseStats{Rows: yields.NumRows()}, nil
}

func (r *riskFreeImporter) Transform(ctx context.Context, yields *table.Table) (*table.Table, error) {
	return TransformRiskFree(yields)
}

// TransformRiskFree takes the yield of the longest maturity on each date
func TransformRiskFree(yields *table.Table) (*table.Table, error) {
	sorted, err := yields.SortBy("date", "days")
	if err != nil {
		return nil, apperrors.NewTransformError("failed to sort yields", err)
	}
	groups, err := sorted.GroupBy("date")
	if err != nil {
		return nil, apperrors.NewTransformError("failed to group yields", err)
	}
	last, err := groups.Last("riskfree")
	if err != nil {
		return nil, apperrors.NewTransformError("missing riskfree column", err)
	}
	out, err := groups.Aggregate(last)
	if err != nil {
		return nil, apperrors.NewTransformError("failed to assemble riskfree", err)
	}
	return out.WithName(RiskFree), nil
}
