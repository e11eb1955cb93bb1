package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpolateCurve_GridSpansMaturities(t *testing.T) {
	curve, err := InterpolateCurve([]int64{9, 15, 50}, []float64{5.763, 5.746, 5.673})
	require.NoError(t, err)

	require.Len(t, curve.Days, 50-9+1)
	assert.Equal(t, int64(9), curve.Days[0])
	assert.Equal(t, int64(50), curve.Days[len(curve.Days)-1])
	assert.Equal(t, MethodLinear, curve.Method)
	assert.InDelta(t, 5.763, curve.Values[0], 1e-12)
	assert.InDelta(t, 5.746, curve.Values[15-9], 1e-12)
	assert.InDelta(t, 5.673, curve.Values[len(curve.Values)-1], 1e-12)
}

func TestInterpolateCurve_Linear(t *testing.T) {
	curve, err := InterpolateCurve([]int64{10, 20}, []float64{1, 2})
	require.NoError(t, err)

	assert.Equal(t, MethodLinear, curve.Method)
	assert.InDelta(t, 1.5, curve.Values[5], 1e-12)
}

func TestInterpolateCurve_CubicReproducesCubic(t *testing.T) {
	poly := func(x float64) float64 { return 0.001*x*x*x - 0.02*x*x + x + 5 }
	days := []int64{1, 5, 10, 20, 30}
	values := make([]float64, len(days))
	for i, d := range days {
		values[i] = poly(float64(d))
	}

	curve, err := InterpolateCurve(days, values)
	require.NoError(t, err)
	assert.Equal(t, MethodCubic, curve.Method)
	require.Len(t, curve.Days, 30)
	for i, d := range curve.Days {
		assert.InDelta(t, poly(float64(d)), curve.Values[i], 1e-8, "day %d", d)
	}
}

func TestInterpolateCurve_SinglePoint(t *testing.T) {
	curve, err := InterpolateCurve([]int64{30}, []float64{4.2})
	require.NoError(t, err)
	assert.Equal(t, MethodSingle, curve.Method)
	assert.Equal(t, []int64{30}, curve.Days)
	assert.Equal(t, []float64{4.2}, curve.Values)
}

func TestInterpolateCurve_Errors(t *testing.T) {
	_, err := InterpolateCurve(nil, nil)
	assert.Error(t, err)

	_, err = InterpolateCurve([]int64{10, 10}, []float64{1, 2})
	assert.Error(t, err)

	_, err = InterpolateCurve([]int64{10, 20}, []float64{1})
	assert.Error(t, err)
}
