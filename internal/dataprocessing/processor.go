package dataprocessing

import "math"

// FillStatistics reports how many gaps a fill pass closed
type FillStatistics struct {
	TotalValues      int
	MissingBefore    int
	ForwardFilled    int
	BackwardFilled   int
	RemainingMissing int
}

// ForwardFillProcessor closes NaN gaps in ordered series, first carrying the
// last observed value forward, then carrying the first observed value back
// over a leading gap.
type ForwardFillProcessor struct{}

// NewForwardFillProcessor creates a new fill processor
func NewForwardFillProcessor() *ForwardFillProcessor {
	return &ForwardFillProcessor{}
}

// FillMissingData fills values in place and reports what it changed
func (f *ForwardFillProcessor) FillMissingData(values []float64) FillStatistics {
	stats := FillStatistics{TotalValues: len(values)}
	for _, v := range values {
		if math.IsNaN(v) {
			stats.MissingBefore++
		}
	}
	stats.ForwardFilled = ForwardFill(values)
	stats.BackwardFilled = BackwardFill(values)
	stats.RemainingMissing = stats.MissingBefore - stats.ForwardFilled - stats.BackwardFilled
	return stats
}

// FillRows fills every row of a grid independently
func (f *ForwardFillProcessor) FillRows(grid [][]float64) FillStatistics {
	var total FillStatistics
	for _, row := range grid {
		s := f.FillMissingData(row)
		total.TotalValues += s.TotalValues
		total.MissingBefore += s.MissingBefore
		total.ForwardFilled += s.ForwardFilled
		total.BackwardFilled += s.BackwardFilled
		total.RemainingMissing += s.RemainingMissing
	}
	return total
}

// ForwardFill replaces each NaN with the closest earlier non-NaN value and
// returns the number of replacements
func ForwardFill(values []float64) int {
	filled := 0
	last := math.NaN()
	for i, v := range values {
		if math.IsNaN(v) {
			if !math.IsNaN(last) {
				values[i] = last
				filled++
			}
			continue
		}
		last = v
	}
	return filled
}

// BackwardFill replaces each NaN with the closest later non-NaN value and
// returns the number of replacements
func BackwardFill(values []float64) int {
	filled := 0
	next := math.NaN()
	for i := len(values) - 1; i >= 0; i-- {
		if math.IsNaN(values[i]) {
			if !math.IsNaN(next) {
				values[i] = next
				filled++
			}
			continue
		}
		next = values[i]
	}
	return filled
}
