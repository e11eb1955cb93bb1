// Package testutil builds dataset environments and raw fixtures in
// temporary directories
package testutil

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"

	"datastorage/internal/config"
	"datastorage/internal/datasets"
	"datastorage/internal/table"
)

// NewEnv returns an Env whose every provider directory lives under a fresh
// temporary root
func NewEnv(t *testing.T) *datasets.Env {
	t.Helper()
	root := t.TempDir()

	cfg := config.Default()
	cfg.Paths.Root = root
	cfg.Paths.OptionMetricsDir = filepath.Join(root, "data", config.ProviderOptionMetrics)
	cfg.Fetch.RequestsPerSecond = 100
	cfg.Fetch.Burst = 10

	paths, err := config.GetPaths(cfg.Paths)
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	env, err := datasets.NewEnv(cfg, paths, nil, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	require.NoError(t, err)
	return env
}

// WriteArchive writes a ZIP archive holding one entry with the given lines
func WriteArchive(t *testing.T, path, entry string, lines ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(entry)
	require.NoError(t, err)
	_, err = io.WriteString(w, strings.Join(lines, "\n")+"\n")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

// SaveTable persists t so derived datasets can load it
func SaveTable(t *testing.T, env *datasets.Env, provider config.ProviderPaths, container string, tbl *table.Table) {
	t.Helper()
	require.NoError(t, env.Store.Save(context.Background(), provider.StorePath(container), tbl))
}
