package analysis_test

import (
	"context"
	"math"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datastorage/internal/analysis"
	"datastorage/internal/datasets/cboe"
	"datastorage/internal/datasets/oxfordman"
	"datastorage/internal/datasets/testutil"
	apperrors "datastorage/internal/errors"
	"datastorage/internal/files"
	"datastorage/internal/table"
)

func days(n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = table.Day(2000, 1, 3).AddDate(0, 0, i)
	}
	return out
}

func realizedVol() *table.Table {
	return table.MustNew(oxfordman.Dataset,
		table.NewDate("date", days(4)),
		table.NewFloat(oxfordman.RV, []float64{10, 12, 14, 16}),
	)
}

func vixSPX() *table.Table {
	d := days(5)
	return table.MustNew(cboe.Dataset,
		table.NewDate("date", []time.Time{d[4], d[3], d[2], d[1], d[0]}),
		table.NewFloat(cboe.SPX, []float64{1000, 1000, math.NaN(), 1100, 1000}),
		table.NewFloat(cboe.VIX, []float64{20, 20, 20, 11, 15}),
	)
}

func TestRVVIX(t *testing.T) {
	got, err := analysis.RVVIX(realizedVol(), vixSPX())
	require.NoError(t, err)

	assert.Equal(t, []string{"date", oxfordman.RV, cboe.SPX, cboe.VIX, analysis.LogReturn, analysis.Difference}, got.ColumnNames())
	assert.Equal(t, []string{"date"}, got.Key())

	// Day 0 has no return, day 2 has no SPX and day 3 has no return
	dates, _ := got.Dates("date")
	assert.Equal(t, []time.Time{days(2)[1]}, dates)

	row := got.Row(0)
	assert.InDelta(t, math.Log(1.1), row[analysis.LogReturn], 1e-12)
	assert.InDelta(t, 1.0, row[analysis.Difference], 1e-12)
}

func TestLoadRVVIX(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	_, err := analysis.LoadRVVIX(ctx, env)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))

	testutil.SaveTable(t, env, env.Paths.OxfordMan, oxfordman.Container, realizedVol())
	testutil.SaveTable(t, env, env.Paths.CBOE, cboe.Container, vixSPX())

	got, err := analysis.LoadRVVIX(ctx, env)
	require.NoError(t, err)
	assert.Equal(t, 1, got.NumRows())
}

func TestACF(t *testing.T) {
	tests := []struct {
		name     string
		x        []float64
		nlags    int
		expected []float64
	}{
		{
			name:     "alternating series",
			x:        []float64{1, -1, 1, -1},
			nlags:    2,
			expected: []float64{1, -0.75, 0.5},
		},
		{
			name:     "linear trend",
			x:        []float64{1, 2, 3, 4, 5},
			nlags:    2,
			expected: []float64{1, 0.4, -0.1},
		},
		{
			name:     "lags capped at length",
			x:        []float64{1, 2, 3},
			nlags:    90,
			expected: []float64{1, 0, -0.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := analysis.ACF(tt.x, tt.nlags)
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.expected, got, 1e-12)
		})
	}
}

func TestACF_Errors(t *testing.T) {
	_, err := analysis.ACF([]float64{1}, 1)
	assert.Error(t, err)
	_, err = analysis.ACF([]float64{2, 2, 2}, 1)
	assert.Error(t, err)
	_, err = analysis.ACF([]float64{1, math.NaN()}, 1)
	assert.Error(t, err)
}

func TestACFTable(t *testing.T) {
	data := table.MustNew("",
		table.NewDate("date", days(4)),
		table.NewFloat("x", []float64{1, -2, 3, -4}),
	)

	got, err := analysis.ACFTable(data, 2, "x", "x^2")
	require.NoError(t, err)
	assert.Equal(t, []string{"lag", "x", "x^2"}, got.ColumnNames())
	lags, _ := got.Ints("lag")
	assert.Equal(t, []int64{0, 1, 2}, lags)

	_, err = analysis.ACFTable(data, 2, "x", "y")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeTransform), "an unknown series fails")
}

func shortInterest() *table.Table {
	d1, d2 := table.Day(2006, 1, 15), table.Day(2006, 2, 15)
	return table.MustNew("short_int",
		table.NewString("gvkey", []string{"001004", "001004", "001013", "001045"}),
		table.NewDate("date", []time.Time{d1, d2, d2, d2}),
		table.NewFloat("short_int", []float64{100, 200, math.NaN(), 400}),
	)
}

func TestCompanyCounts(t *testing.T) {
	got, err := analysis.CompanyCounts(shortInterest())
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "companies"}, got.ColumnNames())
	counts, _ := got.Ints("companies")
	assert.Equal(t, []int64{1, 3}, counts)
}

func TestMeanShortInterest(t *testing.T) {
	got, err := analysis.MeanShortInterest(shortInterest())
	require.NoError(t, err)
	means, _ := got.Floats("short_int")
	assert.Equal(t, []float64{100, 300}, means, "missing values are ignored")
}

func TestWindow(t *testing.T) {
	si := shortInterest()

	tests := []struct {
		name     string
		from, to time.Time
		rows     int
	}{
		{name: "closed", from: table.Day(2006, 1, 1), to: table.Day(2006, 1, 31), rows: 1},
		{name: "inclusive bounds", from: table.Day(2006, 1, 15), to: table.Day(2006, 2, 15), rows: 4},
		{name: "open start", to: table.Day(2006, 1, 15), rows: 1},
		{name: "open end", from: table.Day(2006, 2, 1), rows: 3},
		{name: "time of day ignored", from: time.Date(2006, 2, 15, 18, 0, 0, 0, time.UTC), rows: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := analysis.Window(si, tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.rows, got.NumRows())
		})
	}
}

func TestPlotShortInterest(t *testing.T) {
	env := testutil.NewEnv(t)
	p := analysis.NewPlotter(env.Paths, files.NewManager(nil), nil)

	dates := []time.Time{
		table.Day(2004, 6, 30), table.Day(2004, 12, 31),
		table.Day(2006, 1, 15), table.Day(2006, 1, 15), table.Day(2006, 2, 15),
		table.Day(2008, 1, 15),
	}
	si := table.MustNew("short_int",
		table.NewString("gvkey", []string{"001004", "001004", "001004", "001013", "001004", "001004"}),
		table.NewDate("date", dates),
		table.NewFloat("short_int", []float64{50, 60, 100, 300, 200, 80}),
	)

	written, err := analysis.PlotShortInterest(p, si)
	require.NoError(t, err)
	require.Len(t, written, 5)
	for _, path := range written {
		assertPNG(t, path)
	}
	assert.Contains(t, written[1], "compustat_companies_2006_2007.png")
	assert.Contains(t, written[3], "compustat_short_int_to2004.png")

	pilot, err := analysis.Window(si, analysis.PeriodPilot.From, analysis.PeriodPilot.To)
	require.NoError(t, err)
	assert.Equal(t, 3, pilot.NumRows())
}

func TestPlotShortInterest_SkipsEmptyWindows(t *testing.T) {
	env := testutil.NewEnv(t)
	p := analysis.NewPlotter(env.Paths, files.NewManager(nil), nil)

	written, err := analysis.PlotShortInterest(p, shortInterest())
	require.NoError(t, err)
	assert.Len(t, written, 4, "nothing before 2005")
}

func TestPlotter(t *testing.T) {
	env := testutil.NewEnv(t)
	p := analysis.NewPlotter(env.Paths, files.NewManager(nil), nil)

	frame := table.MustNew("",
		table.NewDate("date", days(3)),
		table.NewFloat("a", []float64{1, math.NaN(), 3}),
		table.NewFloat("b", []float64{3, 2, 1}),
	)

	path, err := p.Series("series.png", "Series", frame, "a", "b")
	require.NoError(t, err)
	assertPNG(t, path)

	path, err = p.Panels("panels.png", frame,
		analysis.Panel{Title: "A", Columns: []string{"a"}},
		analysis.Panel{Title: "B", Columns: []string{"b"}})
	require.NoError(t, err)
	assertPNG(t, path)

	acf, err := analysis.ACFTable(frame, 1, "b")
	require.NoError(t, err)
	path, err = p.ACF("acf.png", acf)
	require.NoError(t, err)
	assertPNG(t, path)

	_, err = p.Series("bad.png", "Bad", frame, "missing")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeTransform))
}

func assertPNG(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 8)
	assert.Equal(t, "\x89PNG", string(data[:4]))
}
