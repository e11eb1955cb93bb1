package table

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInnerJoin(t *testing.T) {
	d1, d2, d3 := Day(2015, 1, 5), Day(2015, 1, 6), Day(2015, 1, 7)

	rv := MustNew("realized_vol",
		NewDate("date", []time.Time{d1, d2, d3}),
		NewFloat("RV", []float64{10, 11, 12}),
	)
	vix := MustNew("vix_spx",
		NewDate("date", []time.Time{d3, d1}),
		NewFloat("VIX", []float64{20, 19}),
		NewFloat("SPX", []float64{2000, 2010}),
	)

	joined, err := InnerJoin(rv, vix)
	require.NoError(t, err)

	assert.Equal(t, "realized_vol", joined.Name())
	assert.Equal(t, []string{"date", "RV", "VIX", "SPX"}, joined.ColumnNames())
	dates, _ := joined.Dates("date")
	assert.Equal(t, []time.Time{d1, d3}, dates)
	vixes, _ := joined.Floats("VIX")
	assert.Equal(t, []float64{19, 20}, vixes)
	assert.Empty(t, joined.Key())
}

func TestInnerJoin_MultiColumnAndFanOut(t *testing.T) {
	d := Day(2010, 3, 3)
	surface := MustNew("surface",
		NewString("cp_flag", []string{"C", "P", "C"}),
		NewDate("date", []time.Time{d, d, d}),
		NewInt("days", []int64{30, 30, 60}),
		NewFloat("strike", []float64{1200, 1000, 1250}),
	)
	std := MustNew("std_options",
		NewString("cp_flag", []string{"C", "C", "P"}),
		NewDate("date", []time.Time{d, d, d}),
		NewInt("days", []int64{30, 60, 30}),
		NewFloat("forward", []float64{1101, 1102, 1101}),
	)

	joined, err := InnerJoin(surface, std, "cp_flag", "date", "days")
	require.NoError(t, err)

	forward, _ := joined.Floats("forward")
	assert.Equal(t, []float64{1101, 1101, 1102}, forward)

	spot := MustNew("spx",
		NewDate("date", []time.Time{d, d}),
		NewFloat("spx", []float64{1100, 1100.5}),
	)
	fanned, err := InnerJoin(surface, spot, "date")
	require.NoError(t, err)
	assert.Equal(t, 6, fanned.NumRows())
}

func TestInnerJoin_Errors(t *testing.T) {
	a := MustNew("a", NewDate("date", []time.Time{Day(2020, 1, 1)}), NewFloat("x", []float64{1}))
	b := MustNew("b", NewString("date", []string{"2020-01-01"}), NewFloat("y", []float64{1}))
	c := MustNew("c", NewDate("date", []time.Time{Day(2020, 1, 1)}), NewFloat("x", []float64{2}))
	d := MustNew("d", NewFloat("z", []float64{1}))

	_, err := InnerJoin(a, b, "date")
	assert.ErrorContains(t, err, "is date on the left and string on the right")

	_, err = InnerJoin(a, c, "date")
	assert.ErrorContains(t, err, "exists on both sides")

	_, err = InnerJoin(a, d)
	assert.ErrorContains(t, err, "no common columns")
}

func TestConcat(t *testing.T) {
	a := MustNew("rv", NewDate("date", []time.Time{Day(2000, 1, 3)}), NewFloat("RV", []float64{1}))
	b := MustNew("rv2", NewDate("date", []time.Time{Day(2001, 1, 3)}), NewFloat("RV", []float64{2}))

	keyed, _ := a.WithKey("date")
	out, err := Concat(keyed, b)
	require.NoError(t, err)
	assert.Equal(t, 2, out.NumRows())
	assert.Equal(t, "rv", out.Name())
	assert.Equal(t, []string{"date"}, out.Key())

	bad := MustNew("bad", NewDate("date", []time.Time{Day(2001, 1, 3)}), NewInt("RV", []int64{2}))
	_, err = Concat(a, bad)
	assert.Error(t, err)

	_, err = Concat()
	assert.Error(t, err)
}
