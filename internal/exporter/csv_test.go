package exporter

import (
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datastorage/internal/config"
	"datastorage/internal/table"
)

func setupTestEnv(t *testing.T) (*CSVWriter, string) {
	t.Helper()
	dir := t.TempDir()
	return NewCSVWriter(&config.Paths{ExportsDir: dir}, nil), dir
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	writer, dir := setupTestEnv(t)

	tests := []struct {
		name     string
		filePath string
		options  WriteOptions
		validate func(t *testing.T, content []byte)
	}{
		{
			name:     "basic write with headers",
			filePath: "test_basic.csv",
			options: WriteOptions{
				Headers: []string{"date", "SPX", "VIX"},
				Records: [][]string{
					{"1990-01-02", "359.69", "17.24"},
					{"1990-01-03", "358.76", "18.19"},
				},
			},
			validate: func(t *testing.T, content []byte) {
				lines := strings.Split(strings.TrimSpace(string(content)), "\n")
				assert.Equal(t, []string{"date,SPX,VIX", "1990-01-02,359.69,17.24", "1990-01-03,358.76,18.19"}, lines)
			},
		},
		{
			name:     "write with BOM prefix",
			filePath: "test_bom.csv",
			options: WriteOptions{
				Headers:   []string{"gvkey", "short_int"},
				Records:   [][]string{{"001004", "1200"}},
				BOMPrefix: true,
			},
			validate: func(t *testing.T, content []byte) {
				require.True(t, bytes.HasPrefix(content, bom))
				lines := strings.Split(strings.TrimSpace(string(content[3:])), "\n")
				assert.Equal(t, "gvkey,short_int", lines[0])
			},
		},
		{
			name:     "quotes fields with commas",
			filePath: "nested/quoted.csv",
			options: WriteOptions{
				Records: [][]string{{"Research, Annual", "1"}},
			},
			validate: func(t *testing.T, content []byte) {
				assert.Equal(t, "\"Research, Annual\",1\n", string(content))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, writer.WriteCSV(tt.filePath, tt.options))
			content, err := os.ReadFile(filepath.Join(dir, tt.filePath))
			require.NoError(t, err)
			tt.validate(t, content)
		})
	}
}

func TestCSVWriter_Append(t *testing.T) {
	writer, dir := setupTestEnv(t)
	path := filepath.Join(dir, "append.csv")

	require.NoError(t, writer.WriteCSV(path, WriteOptions{Headers: []string{"a"}, Records: [][]string{{"1"}}}))
	require.NoError(t, writer.WriteCSV(path, WriteOptions{Headers: []string{"a"}, Records: [][]string{{"2"}}, Append: true}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\n1\n2\n", string(content), "appending never repeats the header")
}

func TestStreamWriter(t *testing.T) {
	writer, dir := setupTestEnv(t)

	stream, err := writer.CreateStreamWriter("stream.csv", []string{"year", "MKT"}, true)
	require.NoError(t, err)
	require.NoError(t, stream.WriteRecord([]string{"1927", "29.47"}))
	require.NoError(t, stream.WriteRecord([]string{"1928", "35.39"}))
	require.NoError(t, stream.Close())

	content, err := os.ReadFile(filepath.Join(dir, "stream.csv"))
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(content, bom))
	assert.Equal(t, "year,MKT\n1927,29.47\n1928,35.39\n", string(content[3:]))
}

func TestCSVWriter_WriteTable(t *testing.T) {
	writer, dir := setupTestEnv(t)
	tbl := table.MustNew("realized_vol",
		table.NewDate("date", []time.Time{table.Day(2000, 1, 3), table.Day(2000, 1, 4)}),
		table.NewFloat("RV", []float64{0.1 + 0.2, math.NaN()}),
		table.NewInt("n", []int64{1, 2}),
		table.NewBool("ok", []bool{true, false}),
	)

	path, err := writer.WriteTable("rv.csv", tbl)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "rv.csv"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"date", "RV", "n", "ok"},
		{"2000-01-03", "0.30000000000000004", "1", "true"},
		{"2000-01-04", "", "2", "false"},
	}, records)
}

func TestCSVWriter_ResolvePath(t *testing.T) {
	writer, dir := setupTestEnv(t)
	abs := filepath.Join(t.TempDir(), "x.csv")

	assert.Equal(t, abs, writer.resolvePath(abs))
	assert.Equal(t, filepath.Join(dir, "x.csv"), writer.resolvePath("x.csv"))
}
