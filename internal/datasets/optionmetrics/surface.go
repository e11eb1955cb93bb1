package optionmetrics

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"datastorage/internal/config"
	"datastorage/internal/dataprocessing"
	"datastorage/internal/datasets"
	"datastorage/internal/datasets/quandl"
	apperrors "datastorage/internal/errors"
	"datastorage/internal/options"
	"datastorage/internal/table"
)

// daysPerYear converts calendar days to maturities in years
const daysPerYear = 365.0

// NewStdOptions creates the standardized options importer
func NewStdOptions(env *datasets.Env) datasets.Importer {
	return &archiveImporter{
		env:     env,
		dataset: StdOptions,
		archive: env.Config.Sources.OptionMetrics.StdOptionsArchive,
		spec: dataprocessing.ParseSpec{
			Columns: []dataprocessing.ColumnSpec{
				{Source: "cp_flag", Kind: table.KindString},
				{Source: "date", Kind: table.KindDate, Layout: dataprocessing.LayoutDayFirst},
				{Source: "days", Kind: table.KindInt},
				{Source: "forward_price", Name: "forward", Kind: table.KindFloat},
				{Source: "strike_price", Name: "strike", Kind: table.KindFloat, Optional: true},
				{Source: "premium", Kind: table.KindFloat, Optional: true},
				{Source: "impl_volatility", Name: "imp_vol", Kind: table.KindFloat},
			},
		},
		transform: func(ctx context.Context, raw *table.Table) (*table.Table, error) {
			t, err := keyed(raw, StdOptions, "cp_flag", "date", "days")
			if err != nil {
				return nil, apperrors.NewTransformError("invalid standardized options", err)
			}
			return t, nil
		},
	}
}

// SurfaceSpec describes the volatility surface extract
func SurfaceSpec() dataprocessing.ParseSpec {
	return dataprocessing.ParseSpec{
		Columns: []dataprocessing.ColumnSpec{
			{Source: "date", Kind: table.KindDate, Layout: dataprocessing.LayoutDayFirst},
			{Source: "days", Kind: table.KindInt},
			{Source: "cp_flag", Kind: table.KindString},
			{Source: "impl_volatility", Name: "imp_vol", Kind: table.KindFloat},
			{Source: "impl_strike", Name: "strike", Kind: table.KindFloat},
			{Source: "impl_premium", Name: "premium", Kind: table.KindFloat},
		},
	}
}

// SurfaceImporter builds the volatility surface from the raw extract and
// previously persisted rate and index tables
type SurfaceImporter struct {
	*archiveImporter
	cfg    config.OptionMetricsSource
	logger *slog.Logger
}

// NewSurface creates the volatility surface importer
func NewSurface(env *datasets.Env) *SurfaceImporter {
	cfg := env.Config.Sources.OptionMetrics
	s := &SurfaceImporter{
		cfg:    cfg,
		logger: env.Logger.With("component", "optionmetrics", "dataset", Surface),
	}
	s.archiveImporter = &archiveImporter{
		env:       env,
		dataset:   Surface,
		archive:   cfg.SurfaceArchive,
		spec:      SurfaceSpec(),
		transform: s.transform,
	}
	return s
}

func (s *SurfaceImporter) transform(ctx context.Context, raw *table.Table) (*table.Table, error) {
	quotes, err := FilterQuotes(raw, s.cfg)
	if err != nil {
		return nil, err
	}

	spx, err := quandl.LoadSPX(ctx, s.env)
	if err != nil {
		return nil, err
	}

	var rates *table.Table
	switch s.cfg.SurfaceRiskFree {
	case config.SurfaceRiskFreeCurve:
		riskfree, err := LoadRiskFree(ctx, s.env)
		if err != nil {
			return nil, err
		}
		dividends, err := LoadDividends(ctx, s.env)
		if err != nil {
			return nil, err
		}
		rates, err = CurveRates(quotes, riskfree, dividends, spx)
		if err != nil {
			return nil, err
		}
	default:
		std, err := LoadStdOptions(ctx, s.env)
		if err != nil {
			return nil, err
		}
		rates, err = ForwardRates(quotes, std, spx)
		if err != nil {
			return nil, err
		}
	}

	out, err := BuildSurface(rates, s.cfg.OutOfTheMoney)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Volatility surface built",
		slog.String("riskfree_source", s.cfg.SurfaceRiskFree),
		slog.Int("quotes", quotes.NumRows()),
		slog.Int("rows", out.NumRows()),
		slog.Bool("out_of_the_money", s.cfg.OutOfTheMoney))
	return out, nil
}

// FilterQuotes keeps quotes observed on the configured weekday with at most
// the configured number of days to expiry
func FilterQuotes(raw *table.Table, cfg config.OptionMetricsSource) (*table.Table, error) {
	weekday, err := parseWeekday(cfg.SurfaceWeekday)
	if err != nil {
		return nil, apperrors.NewConfigError("invalid surface weekday", err)
	}
	dates, err := raw.Dates("date")
	if err != nil {
		return nil, apperrors.NewTransformError("missing date column", err)
	}
	days, err := raw.Ints("days")
	if err != nil {
		return nil, apperrors.NewTransformError("missing days column", err)
	}
	maxDays := int64(cfg.SurfaceMaxDays)
	return raw.Filter(func(i int) bool {
		return dates[i].Weekday() == weekday && days[i] <= maxDays
	}), nil
}

func parseWeekday(name string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if d.String() == name {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}

// CurveRates attaches the index level and the risk-free rate net of the
// dividend yield, both annualized percentages, as a decimal riskfree column
func CurveRates(quotes, riskfree, dividends, spx *table.Table) (*table.Table, error) {
	rf, err := riskfree.Select("date", "riskfree")
	if err != nil {
		return nil, apperrors.NewTransformError("missing riskfree column", err)
	}
	div, err := dividends.Select("date", "rate")
	if err != nil {
		return nil, apperrors.NewTransformError("missing dividend rate", err)
	}
	idx, err := spx.Select("date", quandl.SPX)
	if err != nil {
		return nil, apperrors.NewTransformError("missing spx column", err)
	}

	t := quotes
	for _, right := range []*table.Table{rf, idx, div} {
		if t, err = table.InnerJoin(t, right, "date"); err != nil {
			return nil, apperrors.NewTransformError("failed to join surface inputs", err)
		}
	}

	r, _ := t.Floats("riskfree")
	q, _ := t.Floats("rate")
	if t, err = t.DeriveFloat("riskfree", func(i int) float64 { return (r[i] - q[i]) / 100 }); err != nil {
		return nil, apperrors.NewTransformError("failed to net dividends", err)
	}
	if t, err = t.Drop("rate"); err != nil {
		return nil, apperrors.NewTransformError("failed to drop dividend rate", err)
	}
	return t, nil
}

// ForwardRates attaches the index level and infers the risk-free rate from
// the standardized forward of the same (cp_flag, date, days)
func ForwardRates(quotes, std, spx *table.Table) (*table.Table, error) {
	fwd, err := std.Select("cp_flag", "date", "days", "forward")
	if err != nil {
		return nil, apperrors.NewTransformError("missing forward column", err)
	}
	idx, err := spx.Select("date", quandl.SPX)
	if err != nil {
		return nil, apperrors.NewTransformError("missing spx column", err)
	}

	t, err := table.InnerJoin(quotes, fwd, "cp_flag", "date", "days")
	if err != nil {
		return nil, apperrors.NewTransformError("failed to join forwards", err)
	}
	if t, err = table.InnerJoin(t, idx, "date"); err != nil {
		return nil, apperrors.NewTransformError("failed to join spx", err)
	}

	f, _ := t.Floats("forward")
	s, _ := t.Floats(quandl.SPX)
	days, _ := t.Ints("days")
	if t, err = t.DeriveFloat("riskfree", func(i int) float64 {
		return math.Log(f[i]/s[i]) / (float64(days[i]) / daysPerYear)
	}); err != nil {
		return nil, apperrors.NewTransformError("failed to infer riskfree", err)
	}
	if t, err = t.Drop("forward"); err != nil {
		return nil, apperrors.NewTransformError("failed to drop forward", err)
	}
	return t, nil
}

// BuildSurface derives maturity, moneyness, delta and vega from quotes
// carrying spx and a decimal riskfree rate, optionally keeps out-of-the-money
// quotes only, and sorts by (date, maturity, moneyness)
func BuildSurface(t *table.Table, outOfTheMoney bool) (*table.Table, error) {
	t, err := t.Rename(map[string]string{quandl.SPX: "price"})
	if err != nil {
		return nil, apperrors.NewTransformError("missing spx column", err)
	}

	days, err := t.Ints("days")
	if err != nil {
		return nil, apperrors.NewTransformError("missing days column", err)
	}
	flags, err := t.Strings("cp_flag")
	if err != nil {
		return nil, apperrors.NewTransformError("missing cp_flag column", err)
	}
	inputs := make(map[string][]float64, 4)
	for _, name := range []string{"price", "strike", "riskfree", "imp_vol"} {
		values, err := t.Floats(name)
		if err != nil {
			return nil, apperrors.NewTransformError("missing "+name+" column", err)
		}
		inputs[name] = values
	}
	price, strike, riskfree, vol := inputs["price"], inputs["strike"], inputs["riskfree"], inputs["imp_vol"]

	n := t.NumRows()
	greeks := make([]options.Greeks, n)
	calls := make([]bool, n)
	for i := range n {
		calls[i] = flags[i] != "P"
		greeks[i] = options.Compute(price[i], strike[i], riskfree[i], float64(days[i])/daysPerYear, vol[i], calls[i])
	}

	if t, err = t.DeriveFloat("maturity", func(i int) float64 { return float64(days[i]) / daysPerYear }); err != nil {
		return nil, apperrors.NewTransformError("failed to derive maturity", err)
	}
	if t, err = t.DeriveBool("call", func(i int) bool { return calls[i] }); err != nil {
		return nil, apperrors.NewTransformError("failed to derive call", err)
	}
	if t, err = t.DeriveFloat("moneyness", func(i int) float64 { return greeks[i].Moneyness }); err != nil {
		return nil, apperrors.NewTransformError("failed to derive moneyness", err)
	}
	if t, err = t.DeriveFloat("delta", func(i int) float64 { return greeks[i].Delta }); err != nil {
		return nil, apperrors.NewTransformError("failed to derive delta", err)
	}
	if t, err = t.DeriveFloat("vega", func(i int) float64 { return greeks[i].Vega }); err != nil {
		return nil, apperrors.NewTransformError("failed to derive vega", err)
	}

	if outOfTheMoney {
		t = t.Filter(func(i int) bool { return options.OutOfTheMoney(greeks[i].Moneyness, calls[i]) })
	}

	if t, err = t.SortBy("date", "maturity", "moneyness"); err != nil {
		return nil, apperrors.NewTransformError("failed to sort surface", err)
	}
	return t.WithName(Surface), nil
}
