package dataprocessing

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"

	apperrors "datastorage/internal/errors"
)

// Entry is the payload file of an opened archive. Closing it closes the
// archive as well.
type Entry struct {
	Name string
	Size uint64
	io.ReadCloser

	archive *zip.ReadCloser
}

// Close releases the entry and its archive
func (e *Entry) Close() error {
	err := e.ReadCloser.Close()
	if cerr := e.archive.Close(); err == nil {
		err = cerr
	}
	return err
}

// OpenSingleEntry opens a ZIP archive holding exactly one payload file.
// Directory entries and macOS resource forks are ignored.
func OpenSingleEntry(archivePath string) (*Entry, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, apperrors.NewParseError("failed to open archive", err).WithContext("path", archivePath)
	}

	var payload []*zip.File
	for _, f := range zr.File {
		if isMetadataEntry(f) {
			continue
		}
		payload = append(payload, f)
	}

	if len(payload) != 1 {
		zr.Close()
		names := make([]string, len(payload))
		for i, f := range payload {
			names[i] = f.Name
		}
		return nil, apperrors.NewParseError(
			fmt.Sprintf("archive must hold exactly one payload file, found %d", len(payload)), nil).
			WithContext("path", archivePath).
			WithContext("entries", strings.Join(names, ","))
	}

	f := payload[0]
	rc, err := f.Open()
	if err != nil {
		zr.Close()
		return nil, apperrors.NewParseError("failed to open archive entry", err).
			WithContext("path", archivePath).WithContext("entry", f.Name)
	}

	return &Entry{
		Name:       f.Name,
		Size:       f.UncompressedSize64,
		ReadCloser: rc,
		archive:    zr,
	}, nil
}

// ListEntries returns the payload file names of an archive
func ListEntries(archivePath string) ([]string, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, apperrors.NewParseError("failed to open archive", err).WithContext("path", archivePath)
	}
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		if !isMetadataEntry(f) {
			names = append(names, f.Name)
		}
	}
	return names, nil
}

func isMetadataEntry(f *zip.File) bool {
	if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
		return true
	}
	if strings.HasPrefix(f.Name, "__MACOSX/") {
		return true
	}
	return strings.HasPrefix(path.Base(f.Name), "._")
}
