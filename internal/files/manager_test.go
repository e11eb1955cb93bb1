package files

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "short_int.zip")
	require.NoError(t, os.WriteFile(existing, []byte("zip"), 0644))

	manager := NewManager(nil)

	tests := []struct {
		name           string
		path           string
		expectedExists bool
	}{
		{"existing file", existing, true},
		{"non-existing file", filepath.Join(dir, "absent.zip"), false},
		{"directory", dir, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedExists, manager.FileExists(tt.path))
		})
	}
}

func TestWriteAtomic(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "nested", "vix_spx.tables")
	manager := NewManager(nil)

	err := manager.WriteAtomic(dst, func(w io.Writer) error {
		_, err := io.WriteString(w, "first")
		return err
	})
	require.NoError(t, err)

	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "first", string(content))

	// overwrite replaces the whole file
	err = manager.WriteAtomic(dst, func(w io.Writer) error {
		_, err := io.WriteString(w, "2nd")
		return err
	})
	require.NoError(t, err)
	content, _ = os.ReadFile(dst)
	assert.Equal(t, "2nd", string(content))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestWriteAtomic_FailureLeavesDestinationUntouched(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "firm_returns.tables")
	require.NoError(t, os.WriteFile(dst, []byte("previous"), 0644))
	manager := NewManager(nil)

	boom := errors.New("connection reset")
	err := manager.WriteAtomic(dst, func(w io.Writer) error {
		io.WriteString(w, "partial")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	content, _ := os.ReadFile(dst)
	assert.Equal(t, "previous", string(content))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.Contains(e.Name(), ".tmp-"), "temporary file %s left behind", e.Name())
	}
}
