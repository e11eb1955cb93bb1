package dataprocessing

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "datastorage/internal/errors"
)

// writeZip creates an archive whose entries are written in the given order
func writeZip(t *testing.T, path string, entries ...[2]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.Create(e[0])
		require.NoError(t, err)
		_, err = io.WriteString(w, e[1])
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func TestOpenSingleEntry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "short_int.zip")
	writeZip(t, path,
		[2]string{"export/", ""},
		[2]string{"__MACOSX/export/._short_int.csv", "resource fork"},
		[2]string{"export/short_int.csv", "GVKEY,datadate\n001004,15-01-2004\n"},
	)

	entry, err := OpenSingleEntry(path)
	require.NoError(t, err)
	defer entry.Close()

	assert.Equal(t, "export/short_int.csv", entry.Name)
	content, err := io.ReadAll(entry)
	require.NoError(t, err)
	assert.Equal(t, "GVKEY,datadate\n001004,15-01-2004\n", string(content))
}

func TestOpenSingleEntry_Errors(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.zip")
	writeZip(t, empty, [2]string{"folder/", ""})

	two := filepath.Join(dir, "two.zip")
	writeZip(t, two, [2]string{"a.csv", "x"}, [2]string{"b.csv", "y"})

	notZip := filepath.Join(dir, "plain.zip")
	require.NoError(t, os.WriteFile(notZip, []byte("plain text"), 0644))

	tests := []struct {
		name string
		path string
	}{
		{"no payload", empty},
		{"two payloads", two},
		{"not an archive", notZip},
		{"missing file", filepath.Join(dir, "absent.zip")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := OpenSingleEntry(tt.path)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParse))
		})
	}

	names, err := ListEntries(two)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv", "b.csv"}, names)
}
