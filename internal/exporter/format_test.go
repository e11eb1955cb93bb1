package exporter

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datastorage/internal/table"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		decimals int
		expected string
	}{
		{name: "zero value", input: 0, decimals: fullPrecision, expected: "0"},
		{name: "integer value", input: 123, decimals: fullPrecision, expected: "123"},
		{name: "shortest round trip", input: 0.1 + 0.2, decimals: fullPrecision, expected: "0.30000000000000004"},
		{name: "negative decimal", input: -789.123, decimals: fullPrecision, expected: "-789.123"},
		{name: "fixed decimals round", input: 17.23456, decimals: 4, expected: "17.2346"},
		{name: "fixed decimals pad", input: 13.4, decimals: 2, expected: "13.40"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatFloat(tt.input, tt.decimals))
		})
	}
}

func TestFormatCell(t *testing.T) {
	tbl := table.MustNew("",
		table.NewDate("date", []time.Time{table.Day(1990, 1, 2), {}}),
		table.NewFloat("vix", []float64{17.24, math.NaN()}),
		table.NewString("cusip", []string{"06022110", ""}),
	)

	var row0, row1 []string
	for _, c := range tbl.Columns() {
		row0 = append(row0, formatCell(c, 0, 1))
		row1 = append(row1, formatCell(c, 1, 1))
	}
	assert.Equal(t, []string{"1990-01-02", "17.2", "06022110"}, row0)
	assert.Equal(t, []string{"", "", ""}, row1, "missing values render empty")
}

func TestPreview(t *testing.T) {
	tbl := table.MustNew("vix_spx",
		table.NewDate("date", []time.Time{table.Day(1990, 1, 2), table.Day(1990, 1, 3), table.Day(1990, 1, 4)}),
		table.NewFloat("VIX", []float64{17.24, math.NaN(), 19.22}),
	)
	tbl, err := tbl.WithKey("date")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Preview(&buf, tbl, 2))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "vix_spx: 3 rows, key (date)", lines[0])
	assert.Contains(t, lines[2], "17.2400")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(lines[3]), "-"), "missing values show as a dash")
	assert.Equal(t, "... 1 more rows", lines[4])
}
