package analysis

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	apperrors "datastorage/internal/errors"
	"datastorage/internal/table"
)

// DefaultLags is the horizon of the autocorrelation study, in trading days
const DefaultLags = 90

// ACF returns the sample autocorrelation of x at lags 0..nlags. Each
// autocovariance is the lagged cross product of the demeaned series divided
// by len(x), so values shrink toward zero at long lags. nlags is capped at
// len(x)-1.
func ACF(x []float64, nlags int) ([]float64, error) {
	n := len(x)
	if n < 2 {
		return nil, fmt.Errorf("autocorrelation needs at least 2 observations, got %d", n)
	}
	if nlags < 0 {
		return nil, fmt.Errorf("negative lag count %d", nlags)
	}
	if floats.HasNaN(x) {
		return nil, fmt.Errorf("series contains NaN")
	}
	nlags = min(nlags, n-1)

	d := make([]float64, n)
	copy(d, x)
	floats.AddConst(-stat.Mean(x, nil), d)

	acov0 := floats.Dot(d, d) / float64(n)
	if acov0 == 0 {
		return nil, fmt.Errorf("constant series has no autocorrelation")
	}

	acf := make([]float64, nlags+1)
	for k := range acf {
		acf[k] = floats.Dot(d[:n-k], d[k:]) / float64(n) / acov0
	}
	return acf, nil
}

// ACFTable computes the autocorrelation of each named series of t up to
// nlags. Squared names ("VIX^2") square the underlying column first. The
// result has a lag column followed by one column per series.
func ACFTable(t *table.Table, nlags int, series ...string) (*table.Table, error) {
	cols := make([]*table.Column, 0, len(series)+1)
	var lags int
	for _, name := range series {
		values, err := seriesValues(t, name)
		if err != nil {
			return nil, apperrors.NewTransformError("invalid autocorrelation series", err).
				WithContext("series", name)
		}
		acf, err := ACF(values, nlags)
		if err != nil {
			return nil, apperrors.NewTransformError("autocorrelation failed", err).
				WithContext("series", name)
		}
		lags = len(acf)
		cols = append(cols, table.NewFloat(name, acf))
	}

	lag := make([]int64, lags)
	for i := range lag {
		lag[i] = int64(i)
	}
	cols = append([]*table.Column{table.NewInt("lag", lag)}, cols...)
	out, err := table.New("acf", cols...)
	if err != nil {
		return nil, apperrors.NewTransformError("failed to assemble autocorrelations", err)
	}
	return out, nil
}

const squaredSuffix = "^2"

// seriesValues returns the column named by series, squared when series
// carries the ^2 suffix
func seriesValues(t *table.Table, series string) ([]float64, error) {
	name, squared := strings.CutSuffix(series, squaredSuffix)
	values, err := t.Floats(name)
	if err != nil {
		return nil, err
	}
	if !squared {
		return values, nil
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = math.Pow(v, 2)
	}
	return out, nil
}
