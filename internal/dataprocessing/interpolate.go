package dataprocessing

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// Curve fitting methods, in order of preference
const (
	MethodCubic  = "cubic"
	MethodLinear = "linear"
	MethodSingle = "single"
)

// minCubicPoints is the smallest sample a not-a-knot spline is fitted to
const minCubicPoints = 4

// Curve is a term structure evaluated on every integer day between its
// first and last observed maturity
type Curve struct {
	Days   []int64
	Values []float64
	Method string
}

// InterpolateCurve fits values observed at maturities days (strictly
// increasing) and evaluates the fit on the full integer grid. A not-a-knot
// cubic spline is tried first; with too few points or a singular system it
// falls back to piecewise linear. A single observation is returned as is.
func InterpolateCurve(days []int64, values []float64) (Curve, error) {
	if len(days) != len(values) {
		return Curve{}, fmt.Errorf("%d maturities but %d values", len(days), len(values))
	}
	if len(days) == 0 {
		return Curve{}, fmt.Errorf("no observations")
	}
	for i := 1; i < len(days); i++ {
		if days[i] <= days[i-1] {
			return Curve{}, fmt.Errorf("maturities not strictly increasing at %d (%d after %d)", i, days[i], days[i-1])
		}
	}

	if len(days) == 1 {
		return Curve{Days: []int64{days[0]}, Values: []float64{values[0]}, Method: MethodSingle}, nil
	}

	xs := make([]float64, len(days))
	for i, d := range days {
		xs[i] = float64(d)
	}

	var predictor interp.FittablePredictor
	method := MethodLinear
	if len(xs) >= minCubicPoints {
		cubic := &interp.NotAKnotCubic{}
		if err := cubic.Fit(xs, values); err == nil {
			predictor = cubic
			method = MethodCubic
		}
	}
	if predictor == nil {
		linear := &interp.PiecewiseLinear{}
		if err := linear.Fit(xs, values); err != nil {
			return Curve{}, fmt.Errorf("linear fit: %w", err)
		}
		predictor = linear
	}

	first, last := days[0], days[len(days)-1]
	curve := Curve{
		Days:   make([]int64, 0, last-first+1),
		Values: make([]float64, 0, last-first+1),
		Method: method,
	}
	for d := first; d <= last; d++ {
		curve.Days = append(curve.Days, d)
		curve.Values = append(curve.Values, predictor.Predict(float64(d)))
	}
	return curve, nil
}
