package exporter

import (
	"strconv"

	"datastorage/internal/table"
)

// fullPrecision formats floats with the fewest digits that round-trip
const fullPrecision = -1

// formatFloat formats a float64 with the given number of decimals, or the
// shortest exact form when decimals is negative
func formatFloat(f float64, decimals int) string {
	if decimals < 0 {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', decimals, 64)
}

// formatCell renders row i of c; missing values are empty
func formatCell(c *table.Column, i, decimals int) string {
	if c.IsMissing(i) {
		return ""
	}
	if c.Kind() == table.KindFloat {
		return formatFloat(c.Floats()[i], decimals)
	}
	return c.Format(i)
}
