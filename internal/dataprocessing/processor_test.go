package dataprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForwardFillProcessor(t *testing.T) {
	nan := math.NaN()

	tests := []struct {
		name     string
		values   []float64
		expected []float64
		stats    FillStatistics
	}{
		{
			name:     "interior and trailing gaps",
			values:   []float64{1, nan, nan, 4, nan},
			expected: []float64{1, 1, 1, 4, 4},
			stats:    FillStatistics{TotalValues: 5, MissingBefore: 3, ForwardFilled: 3},
		},
		{
			name:     "leading gap is back filled",
			values:   []float64{nan, nan, 2, 3},
			expected: []float64{2, 2, 2, 3},
			stats:    FillStatistics{TotalValues: 4, MissingBefore: 2, BackwardFilled: 2},
		},
		{
			name:     "nothing observed",
			values:   []float64{nan, nan},
			expected: []float64{nan, nan},
			stats:    FillStatistics{TotalValues: 2, MissingBefore: 2, RemainingMissing: 2},
		},
	}

	p := NewForwardFillProcessor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := p.FillMissingData(tt.values)
			assert.Equal(t, tt.stats, stats)
			for i := range tt.expected {
				if math.IsNaN(tt.expected[i]) {
					assert.True(t, math.IsNaN(tt.values[i]))
					continue
				}
				assert.Equal(t, tt.expected[i], tt.values[i])
			}
		})
	}
}

func TestFillRows(t *testing.T) {
	nan := math.NaN()
	grid := [][]float64{
		{5.7, nan, 5.5},
		{nan, 5.6, nan},
	}
	stats := NewForwardFillProcessor().FillRows(grid)

	assert.Equal(t, [][]float64{{5.7, 5.7, 5.5}, {5.6, 5.6, 5.6}}, grid)
	assert.Equal(t, 3, stats.MissingBefore)
	assert.Equal(t, 0, stats.RemainingMissing)
}
