package validation

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// File signatures of the raw formats providers publish
var zipMagic = []byte("PK\x03\x04")

// signatures maps a raw file extension to its expected leading bytes.
// XLSX workbooks are ZIP packages. A nil signature accepts any content.
var signatures = map[string][]byte{
	".zip":  zipMagic,
	".xlsx": zipMagic,
	".csv":  nil,
	".txt":  nil,
}

// unreadable lists extensions recognised but not parseable, with a hint
var unreadable = map[string]string{
	".xls": "legacy .xls workbooks are not readable; save the workbook as .xlsx and point the source file at it",
}

// FileValidator checks raw provider files and output directories
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateFile checks if a specific file exists, is readable and not empty
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("file %s is empty", path)
	}

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateRawFile checks that path is a usable raw provider file: a known
// extension, not an office lock file, and content starting with the
// signature of its format. A server error page saved under an archive name
// fails here instead of in the parser.
func (v *FileValidator) ValidateRawFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	if strings.HasPrefix(filepath.Base(path), "~$") {
		return fmt.Errorf("file %s is a temporary office file", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if hint, ok := unreadable[ext]; ok {
		return fmt.Errorf("file %s: %s", path, hint)
	}
	magic, known := signatures[ext]
	if !known {
		return fmt.Errorf("file %s has unsupported extension %q", path, ext)
	}
	if magic == nil {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	defer f.Close()

	head := make([]byte, len(magic))
	if _, err := io.ReadFull(f, head); err != nil || !bytes.Equal(head, magic) {
		v.logger.Warn("Raw file has unexpected content",
			slog.String("file", path),
			slog.String("extension", ext),
			slog.String("head", fmt.Sprintf("%q", head)))
		return fmt.Errorf("file %s is not a valid %s file", path, strings.TrimPrefix(ext, "."))
	}
	return nil
}

// ValidateOutputDirectory ensures output directory exists or can be created
// and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	// Verify it's writable by creating a test file
	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}
