package validation

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileValidator_ValidateRawFile(t *testing.T) {
	tests := []struct {
		name          string
		file          string
		content       []byte
		wantErr       bool
		errorContains string
	}{
		{
			name:    "zip archive",
			file:    "data.zip",
			content: []byte("PK\x03\x04rest"),
		},
		{
			name:    "workbook",
			file:    "dailypricehistory.XLSX",
			content: []byte("PK\x03\x04rest"),
		},
		{
			name:          "legacy workbook",
			file:          "dailypricehistory.xls",
			content:       []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1},
			wantErr:       true,
			errorContains: "save the workbook as .xlsx",
		},
		{
			name:    "csv accepts any content",
			file:    "prices.csv",
			content: []byte("date,close\n"),
		},
		{
			name:          "html error page saved as archive",
			file:          "data.zip",
			content:       []byte("<html><body>Not Found</body></html>"),
			wantErr:       true,
			errorContains: "not a valid zip file",
		},
		{
			name:          "truncated archive",
			file:          "data.zip",
			content:       []byte("PK"),
			wantErr:       true,
			errorContains: "not a valid zip file",
		},
		{
			name:          "empty file",
			file:          "data.zip",
			content:       []byte{},
			wantErr:       true,
			errorContains: "is empty",
		},
		{
			name:          "office lock file",
			file:          "~$dailypricehistory.xlsx",
			content:       []byte("PK\x03\x04"),
			wantErr:       true,
			errorContains: "temporary office file",
		},
		{
			name:          "unknown extension",
			file:          "data.7z",
			content:       []byte("7z"),
			wantErr:       true,
			errorContains: "unsupported extension",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, tt.content, 0644))

			err := NewFileValidator(slog.Default()).ValidateRawFile(path)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFileValidator_ValidateFile(t *testing.T) {
	validator := NewFileValidator(nil)
	dir := t.TempDir()

	err := validator.ValidateFile(filepath.Join(dir, "missing.zip"))
	assert.ErrorContains(t, err, "does not exist")

	err = validator.ValidateFile(dir)
	assert.ErrorContains(t, err, "is a directory")

	file := filepath.Join(dir, "data.zip")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	assert.NoError(t, validator.ValidateFile(file))
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	validator := NewFileValidator(nil)

	dir := filepath.Join(t.TempDir(), "plots", "nested")
	require.NoError(t, validator.ValidateOutputDirectory(dir))
	assert.DirExists(t, dir)
	assert.NoFileExists(t, filepath.Join(dir, ".write_test"))

	file := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	assert.Error(t, validator.ValidateOutputDirectory(filepath.Join(file, "sub")))
}
