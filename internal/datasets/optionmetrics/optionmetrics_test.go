package optionmetrics_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datastorage/internal/config"
	"datastorage/internal/datasets"
	"datastorage/internal/datasets/optionmetrics"
	"datastorage/internal/datasets/quandl"
	"datastorage/internal/datasets/testutil"
	apperrors "datastorage/internal/errors"
	"datastorage/internal/table"
)

// 2020-01-08 is a Wednesday
var wednesday = table.Day(2020, 1, 8)

func writeFixtures(t *testing.T, env *datasets.Env) {
	t.Helper()
	cfg := env.Config.Sources.OptionMetrics
	raw := env.Paths.OptionMetrics.RawPath

	testutil.WriteArchive(t, raw(cfg.DividendArchive), "dividends.csv",
		"date,rate",
		"08-01-2020,1.8",
	)
	testutil.WriteArchive(t, raw(cfg.YieldArchive), "yields.csv",
		"date,days,rate",
		"08-01-2020,365,1.6",
		"08-01-2020,30,1.5",
		"08-01-2020,400,12",
	)
	testutil.WriteArchive(t, raw(cfg.StdOptionsArchive), "std_options.csv",
		"cp_flag,date,days,forward_price,impl_volatility",
		"C,08-01-2020,365,102,0.2",
		"P,08-01-2020,365,102,0.2",
	)
	testutil.WriteArchive(t, raw(cfg.SurfaceArchive), "surface.csv",
		"date,days,cp_flag,impl_volatility,impl_strike,impl_premium",
		"08-01-2020,365,C,0.2,100,8",
		"08-01-2020,365,P,0.2,100,7",
		"09-01-2020,365,C,0.2,100,8",
		"08-01-2020,730,C,0.2,100,12",
	)
}

func spx(level float64) *table.Table {
	return table.MustNew(quandl.SPX,
		table.NewDate("date", []time.Time{wednesday}),
		table.NewFloat(quandl.SPX, []float64{level}),
	)
}

func TestImport_ForwardSurface(t *testing.T) {
	env := testutil.NewEnv(t)
	writeFixtures(t, env)
	testutil.SaveTable(t, env, env.Paths.Quandl, quandl.SPX, spx(100))

	ctx := context.Background()
	res, err := datasets.Import(ctx, env, nil, optionmetrics.Importers(env)...)
	require.NoError(t, err)
	assert.Len(t, res.Steps, 20)

	yields, err := optionmetrics.LoadYields(ctx, env)
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "days", "riskfree"}, yields.ColumnNames())
	days, _ := yields.Ints("days")
	assert.Equal(t, []int64{30, 365}, days, "rates at or above the ceiling are dropped")

	riskfree, err := optionmetrics.LoadRiskFree(ctx, env)
	require.NoError(t, err)
	require.Equal(t, 1, riskfree.NumRows())
	assert.InDelta(t, 1.6, riskfree.Row(0)["riskfree"], 1e-12)

	std, err := optionmetrics.LoadStdOptions(ctx, env)
	require.NoError(t, err)
	assert.Equal(t, []string{"cp_flag", "date", "days", "forward", "imp_vol"}, std.ColumnNames())
	assert.Equal(t, []string{"cp_flag", "date", "days"}, std.Key())

	surface, err := optionmetrics.LoadSurface(ctx, env)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"date", "days", "cp_flag", "imp_vol", "strike", "premium", "price",
		"riskfree", "maturity", "call", "moneyness", "delta", "vega",
	}, surface.ColumnNames())

	// The call sits below the forward and is in the money
	require.Equal(t, 1, surface.NumRows())
	row := surface.Row(0)
	assert.Equal(t, "P", row["cp_flag"])
	assert.Equal(t, false, row["call"])
	assert.InDelta(t, math.Log(1.02), row["riskfree"], 1e-12)
	assert.InDelta(t, 1.0, row["maturity"], 1e-12)
	assert.InDelta(t, -math.Log(1.02), row["moneyness"], 1e-12)
	assert.Less(t, row["delta"].(float64), 0.0)
	assert.Greater(t, row["delta"].(float64), -1.0)
	assert.Greater(t, row["vega"].(float64), 0.0)
}

func TestImport_SurfaceMissingSPX(t *testing.T) {
	env := testutil.NewEnv(t)
	writeFixtures(t, env)

	res, err := datasets.Import(context.Background(), env, nil, optionmetrics.Importers(env)...)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
	assert.Equal(t, "surface.transform", res.Failed().ID)
}

func TestCurveRates(t *testing.T) {
	quotes := table.MustNew("",
		table.NewDate("date", []time.Time{wednesday, wednesday}),
		table.NewInt("days", []int64{365, 365}),
		table.NewString("cp_flag", []string{"C", "P"}),
		table.NewFloat("imp_vol", []float64{0.2, 0.2}),
		table.NewFloat("strike", []float64{100, 100}),
		table.NewFloat("premium", []float64{8, 7}),
	)
	riskfree := table.MustNew("",
		table.NewDate("date", []time.Time{wednesday}),
		table.NewFloat("riskfree", []float64{1.6}),
	)
	dividends := table.MustNew("",
		table.NewDate("date", []time.Time{wednesday}),
		table.NewFloat("rate", []float64{1.8}),
	)

	rates, err := optionmetrics.CurveRates(quotes, riskfree, dividends, spx(100))
	require.NoError(t, err)
	assert.False(t, rates.Has("rate"))
	rf, _ := rates.Floats("riskfree")
	assert.InDeltaSlice(t, []float64{-0.002, -0.002}, rf, 1e-12)

	all, err := optionmetrics.BuildSurface(rates, false)
	require.NoError(t, err)
	assert.Equal(t, 2, all.NumRows())

	otm, err := optionmetrics.BuildSurface(rates, true)
	require.NoError(t, err)
	require.Equal(t, 1, otm.NumRows())
	assert.Equal(t, "C", otm.Row(0)["cp_flag"])
	assert.InDelta(t, 0.002, otm.Row(0)["moneyness"], 1e-12)
}

func TestBuildSurface_Order(t *testing.T) {
	later := wednesday.AddDate(0, 0, 7)
	rates := table.MustNew("",
		table.NewDate("date", []time.Time{later, wednesday, wednesday, wednesday}),
		table.NewInt("days", []int64{30, 365, 30, 30}),
		table.NewString("cp_flag", []string{"C", "C", "C", "P"}),
		table.NewFloat("imp_vol", []float64{0.2, 0.2, 0.2, 0.2}),
		table.NewFloat("strike", []float64{100, 100, 110, 90}),
		table.NewFloat(quandl.SPX, []float64{100, 100, 100, 100}),
		table.NewFloat("riskfree", []float64{0, 0, 0, 0}),
	)

	out, err := optionmetrics.BuildSurface(rates, false)
	require.NoError(t, err)
	sorted, err := out.IsSortedBy("date", "maturity", "moneyness")
	require.NoError(t, err)
	assert.True(t, sorted)

	strikes, _ := out.Floats("strike")
	assert.Equal(t, []float64{90, 110, 100, 100}, strikes)
}

func TestBuildSurface_MissingColumns(t *testing.T) {
	columns := func(skip string) []*table.Column {
		all := map[string]*table.Column{
			"strike":   table.NewFloat("strike", []float64{100}),
			"riskfree": table.NewFloat("riskfree", []float64{0.01}),
			"imp_vol":  table.NewFloat("imp_vol", []float64{0.2}),
		}
		cols := []*table.Column{
			table.NewDate("date", []time.Time{wednesday}),
			table.NewInt("days", []int64{30}),
			table.NewString("cp_flag", []string{"C"}),
			table.NewFloat(quandl.SPX, []float64{100}),
		}
		for _, name := range []string{"strike", "riskfree", "imp_vol"} {
			if name != skip {
				cols = append(cols, all[name])
			}
		}
		return cols
	}

	for _, missing := range []string{"strike", "riskfree", "imp_vol"} {
		t.Run(missing, func(t *testing.T) {
			_, err := optionmetrics.BuildSurface(table.MustNew("", columns(missing)...), false)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeTransform))
			assert.Contains(t, err.Error(), missing)
		})
	}

	_, err := optionmetrics.BuildSurface(table.MustNew("", columns("")...), false)
	assert.NoError(t, err)
}

func TestFilterQuotes(t *testing.T) {
	cfg := config.Default().Sources.OptionMetrics
	raw := table.MustNew("",
		table.NewDate("date", []time.Time{wednesday, wednesday.AddDate(0, 0, 1), wednesday}),
		table.NewInt("days", []int64{365, 30, 366}),
	)

	got, err := optionmetrics.FilterQuotes(raw, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, got.NumRows())

	cfg.SurfaceWeekday = "Someday"
	_, err = optionmetrics.FilterQuotes(raw, cfg)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestInterpolateYields(t *testing.T) {
	second := wednesday.AddDate(0, 0, 1)
	yields := table.MustNew(optionmetrics.Yields,
		table.NewDate("date", []time.Time{wednesday, wednesday, second}),
		table.NewInt("days", []int64{20, 10, 15}),
		table.NewFloat("riskfree", []float64{2, 1, 3}),
	)

	out, err := optionmetrics.InterpolateYields(yields)
	require.NoError(t, err)
	require.Equal(t, 22, out.NumRows(), "both dates span the union of maturities 10..20")

	days, _ := out.Ints("days")
	rates, _ := out.Floats("riskfree")
	assert.Equal(t, int64(10), days[0])
	assert.Equal(t, int64(20), days[10])
	assert.InDelta(t, 1.5, rates[5], 1e-12, "linear between two points")
	for i := 11; i < 22; i++ {
		assert.InDelta(t, 3.0, rates[i], 1e-12, "a single point fills the whole row")
	}
}

func TestInterpolateYields_DisjointRanges(t *testing.T) {
	second := wednesday.AddDate(0, 0, 1)
	yields := table.MustNew(optionmetrics.Yields,
		table.NewDate("date", []time.Time{wednesday, wednesday, second, second}),
		table.NewInt("days", []int64{10, 20, 30, 40}),
		table.NewFloat("riskfree", []float64{1, 2, 3, 4}),
	)

	out, err := optionmetrics.InterpolateYields(yields)
	require.NoError(t, err)
	require.Equal(t, 44, out.NumRows(), "each date spans 10..20 and 30..40 only")

	days, _ := out.Ints("days")
	for _, d := range days {
		assert.False(t, d > 20 && d < 30, "day %d lies between both curves", d)
	}
	assert.Equal(t, int64(30), days[11])

	rates, _ := out.Floats("riskfree")
	assert.InDelta(t, 2.0, rates[11], 1e-12, "first date carries its longest maturity forward")
	assert.InDelta(t, 3.0, rates[22], 1e-12, "second date carries its shortest maturity backward")
	assert.InDelta(t, 3.5, rates[22+16], 1e-12)
}

func TestTransformYields_Interpolated(t *testing.T) {
	cfg := config.Default().Sources.OptionMetrics
	cfg.InterpolateCurve = true
	raw := table.MustNew("",
		table.NewDate("date", []time.Time{wednesday, wednesday, wednesday}),
		table.NewInt("days", []int64{10, 12, 11}),
		table.NewFloat("rate", []float64{1, 1.2, math.NaN()}),
	)

	out, err := optionmetrics.TransformYields(raw, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "days"}, out.Key())
	rates, _ := out.Floats("riskfree")
	assert.InDeltaSlice(t, []float64{1, 1.1, 1.2}, rates, 1e-12, "NaN rates are dropped before the fit")
}

func TestTransformRiskFree(t *testing.T) {
	second := wednesday.AddDate(0, 0, 1)
	yields := table.MustNew(optionmetrics.Yields,
		table.NewDate("date", []time.Time{second, wednesday, wednesday}),
		table.NewInt("days", []int64{30, 365, 30}),
		table.NewFloat("riskfree", []float64{1.4, 1.6, 1.5}),
	)

	out, err := optionmetrics.TransformRiskFree(yields)
	require.NoError(t, err)
	assert.Equal(t, optionmetrics.RiskFree, out.Name())
	dates, _ := out.Dates("date")
	assert.Equal(t, []time.Time{wednesday, second}, dates)
	rates, _ := out.Floats("riskfree")
	assert.Equal(t, []float64{1.6, 1.4}, rates)
}
