package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery finds raw archives and table containers in provider directories
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// FindByExtension lists regular files in dir whose names end with any of
// the extensions (case-insensitive), sorted by name. A missing directory
// yields no files.
func (d *Discovery) FindByExtension(dir string, extensions ...string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		name := entry.Name()
		lower := strings.ToLower(name)
		for _, ext := range extensions {
			if !strings.HasSuffix(lower, strings.ToLower(ext)) {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				break
			}
			files = append(files, FileInfo{
				Path:    filepath.Join(fullPath, name),
				Name:    name,
				Size:    info.Size(),
				ModTime: info.ModTime(),
			})
			break
		}
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// FindArchives lists the raw ZIP archives and spreadsheets in dir
func (d *Discovery) FindArchives(dir string) ([]FileInfo, error) {
	return d.FindByExtension(dir, ".zip", ".xlsx", ".xls")
}
