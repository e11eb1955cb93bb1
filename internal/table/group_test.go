package table

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupBy(t *testing.T) {
	tbl := MustNew("returns",
		NewInt("SIC", []int64{2834, 1311, 2834, 1311, 2834}),
		NewString("CUSIP", []string{"A", "B", "A", "B", "C"}),
		NewFloat("return", []float64{0.1, 0.05, -0.05, 0.02, 0.3}),
		NewFloat("value", []float64{100, 50, 110, 52, 7}),
	)

	groups, err := tbl.GroupBy("SIC", "CUSIP")
	require.NoError(t, err)
	assert.Equal(t, 3, groups.Len())

	keys := groups.Keys()
	sic, _ := keys.Ints("SIC")
	cusip, _ := keys.Strings("CUSIP")
	assert.Equal(t, []int64{1311, 2834, 2834}, sic)
	assert.Equal(t, []string{"B", "A", "C"}, cusip)
	assert.Equal(t, []string{"SIC", "CUSIP"}, keys.Key())

	assert.Equal(t, [][]int{{1, 3}, {0, 2}, {4}}, groups.Indices())

	first, err := groups.First("value")
	require.NoError(t, err)
	assert.Equal(t, []float64{50, 100, 7}, first.Floats())

	last, err := groups.Last("value")
	require.NoError(t, err)
	assert.Equal(t, []float64{52, 110, 7}, last.Floats())

	assert.Equal(t, []int64{2, 2, 1}, groups.Count("n").Ints())

	total, err := groups.Float("return", Sum)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.07, 0.05, 0.3}, total.Floats(), 1e-12)

	out, err := groups.Aggregate(total, first)
	require.NoError(t, err)
	assert.Equal(t, []string{"SIC", "CUSIP", "return", "value"}, out.ColumnNames())
	assert.Equal(t, 3, out.NumRows())
}

func TestGroups_CountDistinct(t *testing.T) {
	d1, d2 := Day(2010, 1, 15), Day(2010, 1, 31)
	tbl := MustNew("short_int",
		NewDate("date", []time.Time{d1, d1, d1, d2}),
		NewString("gvkey", []string{"1", "2", "2", "1"}),
	)

	groups, err := tbl.GroupBy("date")
	require.NoError(t, err)

	counts, err := groups.CountDistinct("gvkey", "companies")
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, counts.Ints())
}

func TestCompoundReturn(t *testing.T) {
	returns := []float64{0.05, -0.02, 0.10, 0.0, -0.07}

	want := 1.0
	for _, r := range returns {
		want *= 1 + r
	}
	want--

	assert.InDelta(t, want, CompoundReturn(returns), 1e-12)

	// independent of row order
	rng := rand.New(rand.NewSource(7))
	shuffled := append([]float64(nil), returns...)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	assert.InDelta(t, CompoundReturn(returns), CompoundReturn(shuffled), 1e-12)

	assert.Equal(t, 0.0, CompoundReturn(nil))
}

func TestMeanAndSum(t *testing.T) {
	assert.Equal(t, 2.0, Mean([]float64{1, math.NaN(), 3}))
	assert.True(t, math.IsNaN(Mean([]float64{math.NaN()})))
	assert.Equal(t, 4.0, Sum([]float64{1, math.NaN(), 3}))
	assert.True(t, AllFinite([]float64{1, 2}))
	assert.False(t, AllFinite([]float64{1, math.Inf(1)}))
}
