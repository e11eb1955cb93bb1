package quandl_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datastorage/internal/datasets"
	"datastorage/internal/datasets/quandl"
	"datastorage/internal/datasets/testutil"
	apperrors "datastorage/internal/errors"
	"datastorage/internal/table"
)

var factorsFile = []string{
	"This file was created by CMPT_ME_BEME_RETS using the 201512 CRSP database.",
	"The 1-month TBill return is from Ibbotson and Associates, Inc.",
	"",
	",Mkt-RF,SMB,HML,RF",
	"192607,    2.96,   -2.30,   -2.87,    0.22",
	"192608,    2.64,   -1.40,    4.19,    0.25",
	"",
	" Annual Factors: January-December ",
	",Mkt-RF,SMB,HML,RF",
	"1928,   35.39,    4.20,   -6.15,    3.56",
	"1927,   29.47,   -2.50,   -3.67,    3.12",
	"",
	"Copyright 2016 Kenneth R. French",
}

func series(rows string) string {
	return `{"dataset":{"column_names":["Date","Open","Close"],"data":[` + rows + `]}}`
}

func TestImport(t *testing.T) {
	env := testutil.NewEnv(t)
	require.NoError(t, os.WriteFile(env.Paths.Quandl.Credential, []byte("token\n"), 0600))
	testutil.WriteArchive(t, env.Paths.Quandl.RawPath(env.Config.Sources.Quandl.FamaFrenchArchive),
		"F-F_Research_Data_Factors.CSV", factorsFile...)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v3/datasets/YAHOO/INDEX_GSPC.json":
			w.Write([]byte(series(`["1950-01-04",16.85,16.85],["1950-01-03",16.66,16.66]`)))
		case "/api/v3/datasets/YAHOO/INDEX_VIX.json":
			w.Write([]byte(series(`["1990-01-02",17.24,17.24],["1990-01-03",18.19,null]`)))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	env.Config.Sources.Quandl.BaseURL = srv.URL + "/api/v3"

	ctx := context.Background()
	res, err := datasets.Import(ctx, env, nil, quandl.Importers(env)...)
	require.NoError(t, err)
	assert.Len(t, res.Steps, 12)

	spx, err := quandl.LoadSPX(ctx, env)
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "spx"}, spx.ColumnNames())
	dates, _ := spx.Dates("date")
	assert.Equal(t, []time.Time{table.Day(1950, 1, 3), table.Day(1950, 1, 4)}, dates)

	vix, err := quandl.LoadVIX(ctx, env)
	require.NoError(t, err)
	assert.Equal(t, 1, vix.NumRows(), "days without a close are dropped")

	factors, err := quandl.LoadFactors(ctx, env)
	require.NoError(t, err)
	assert.Equal(t, []string{"year", "MKT", "SMB", "HML", "RF"}, factors.ColumnNames())
	years, _ := factors.Ints("year")
	assert.Equal(t, []int64{1927, 1928}, years)
	mkt, _ := factors.Floats("MKT")
	assert.Equal(t, []float64{29.47, 35.39}, mkt)
}

func TestImport_MissingToken(t *testing.T) {
	env := testutil.NewEnv(t)

	res, err := datasets.Import(context.Background(), env, []string{quandl.SPX}, quandl.Importers(env)...)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeFetch))
	assert.Equal(t, "spx.fetch", res.Failed().ID)
	assert.Len(t, res.Steps, 4, "only the selected dataset runs")
}

func TestAnnualSection(t *testing.T) {
	section, err := quandl.AnnualSection(bufio.NewScanner(strings.NewReader(strings.Join(factorsFile, "\r\n"))))
	require.NoError(t, err)
	assert.Equal(t, ",Mkt-RF,SMB,HML,RF\n1928,   35.39,    4.20,   -6.15,    3.56\n1927,   29.47,   -2.50,   -3.67,    3.12\n", section)

	_, err = quandl.AnnualSection(bufio.NewScanner(strings.NewReader(strings.Join(factorsFile[:7], "\n"))))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParse))
}

func TestTransformSeries_Idempotent(t *testing.T) {
	raw := table.MustNew("",
		table.NewDate("date", []time.Time{table.Day(1990, 1, 3), table.Day(1990, 1, 2)}),
		table.NewFloat("Close", []float64{18.19, 17.24}),
	)
	once, dropped, err := quandl.TransformSeries(raw, "Close", quandl.VIX)
	require.NoError(t, err)
	assert.Zero(t, dropped)

	twice, _, err := quandl.TransformSeries(once, quandl.VIX, quandl.VIX)
	require.NoError(t, err)
	assert.True(t, once.Equal(twice))
}
