package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindByExtension(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "OxfordMan")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub.zip"), 0755))
	for _, name := range []string{"realized.library.0.1.csv.zip", "OXFORD.ZIP", "realized_vol.tables", "notes.txt", ".hidden.zip"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	discovery := NewDiscovery(base)

	archives, err := discovery.FindArchives("OxfordMan")
	require.NoError(t, err)
	names := make([]string, len(archives))
	for i, f := range archives {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"OXFORD.ZIP", "realized.library.0.1.csv.zip"}, names)

	stores, err := discovery.FindByExtension(dir, ".tables")
	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.Equal(t, filepath.Join(dir, "realized_vol.tables"), stores[0].Path)
	assert.Equal(t, int64(1), stores[0].Size)

	missing, err := discovery.FindArchives("Nowhere")
	require.NoError(t, err)
	assert.Empty(t, missing)
}
