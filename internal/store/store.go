package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/klauspost/compress/zip"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	apperrors "datastorage/internal/errors"
	"datastorage/internal/files"
	"datastorage/internal/table"
)

// entryExt is the suffix of every table entry inside a container
const entryExt = ".arrow"

// Store persists named tables into container files. A container is a ZIP
// archive holding one Arrow IPC stream per table, so several logical tables
// can share one file. Every Save rewrites the container through a temporary
// file and a rename.
//
// Store does not lock containers; concurrent imports writing the same
// container must be serialized by the caller.
type Store struct {
	files  *files.Manager
	mem    memory.Allocator
	logger *slog.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithTracer records a span per Save and Load
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Store) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithClock overrides the creation timestamp source
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a Store
func New(fm *files.Manager, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if fm == nil {
		fm = files.NewManager(logger)
	}
	s := &Store{
		files:  fm,
		mem:    memory.DefaultAllocator,
		logger: logger.With("component", "store"),
		tracer: tracenoop.NewTracerProvider().Tracer("store"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save replaces the table named t.Name() in the container at file,
// keeping every other table in it
func (s *Store) Save(ctx context.Context, file string, t *table.Table) error {
	ctx, span := s.tracer.Start(ctx, "store.save", trace.WithAttributes(
		attribute.String("file", file),
		attribute.String("table", t.Name()),
		attribute.Int("rows", t.NumRows()),
	))
	defer span.End()

	if err := validName(t.Name()); err != nil {
		return apperrors.NewStorageError("invalid table name", err).WithContext("file", file)
	}

	payload, err := s.encode(t)
	if err != nil {
		return apperrors.NewStorageError("failed to encode table", err).
			WithContext("file", file).WithContext("table", t.Name())
	}

	entries, err := readEntries(file)
	if err != nil && !os.IsNotExist(err) {
		return apperrors.NewStorageError("failed to read existing container", err).WithContext("file", file)
	}
	if entries == nil {
		entries = make(map[string][]byte)
	}
	entries[t.Name()] = payload

	err = s.files.WriteAtomic(file, func(w io.Writer) error {
		return writeEntries(w, entries)
	})
	if err != nil {
		return apperrors.NewStorageError("failed to write container", err).
			WithContext("file", file).WithContext("table", t.Name())
	}

	s.logger.InfoContext(ctx, "Table saved",
		slog.String("file", file),
		slog.String("table", t.Name()),
		slog.Int("rows", t.NumRows()),
		slog.Int("columns", t.NumCols()),
		slog.Int("bytes", len(payload)))
	return nil
}

// Load reads the named table from the container at file
func (s *Store) Load(ctx context.Context, file, name string) (*table.Table, error) {
	ctx, span := s.tracer.Start(ctx, "store.load", trace.WithAttributes(
		attribute.String("file", file),
		attribute.String("table", name),
	))
	defer span.End()

	zr, err := zip.OpenReader(file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError("container "+file).WithContext("table", name)
		}
		return nil, apperrors.NewStorageError("failed to open container", err).WithContext("file", file)
	}
	defer zr.Close()

	var entry *zip.File
	for _, f := range zr.File {
		if f.Name == name+entryExt {
			entry = f
			break
		}
	}
	if entry == nil {
		return nil, apperrors.NewNotFoundError("table "+name).WithContext("file", file)
	}

	rc, err := entry.Open()
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open table entry", err).
			WithContext("file", file).WithContext("table", name)
	}
	defer rc.Close()

	t, err := s.decode(rc)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to decode table", err).
			WithContext("file", file).WithContext("table", name)
	}
	if t.Name() != name {
		return nil, apperrors.NewStorageError(fmt.Sprintf("entry holds table %q", t.Name()), nil).
			WithContext("file", file).WithContext("table", name)
	}

	s.logger.DebugContext(ctx, "Table loaded",
		slog.String("file", file),
		slog.String("table", name),
		slog.Int("rows", t.NumRows()))
	return t, nil
}

// List returns the table names stored in the container, sorted
func (s *Store) List(file string) ([]string, error) {
	zr, err := zip.OpenReader(file)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open container", err).WithContext("file", file)
	}
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, entryExt) {
			names = append(names, strings.TrimSuffix(f.Name, entryExt))
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) encode(t *table.Table) ([]byte, error) {
	schema, err := SchemaFor(t, s.now())
	if err != nil {
		return nil, err
	}

	rec := toRecord(s.mem, schema, t)
	defer rec.Release()

	var buf bytes.Buffer
	writer := ipc.NewWriter(&buf,
		ipc.WithSchema(schema),
		ipc.WithAllocator(s.mem),
		ipc.WithZstd(),
	)
	if err := writer.Write(rec); err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to write record: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close writer: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Store) decode(r io.Reader) (*table.Table, error) {
	reader, err := ipc.NewReader(r, ipc.WithAllocator(s.mem))
	if err != nil {
		return nil, fmt.Errorf("failed to create reader: %w", err)
	}
	defer reader.Release()

	meta, err := readMeta(reader.Schema())
	if err != nil {
		return nil, err
	}

	var records []arrow.Record
	defer func() {
		for _, rec := range records {
			rec.Release()
		}
	}()
	for reader.Next() {
		rec := reader.Record()
		rec.Retain()
		records = append(records, rec)
	}
	if err := reader.Err(); err != nil {
		return nil, err
	}

	return fromRecords(reader.Schema(), meta, records)
}

// readEntries loads every table entry of an existing container
func readEntries(file string) (map[string][]byte, error) {
	zr, err := zip.OpenReader(file)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	entries := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		if !strings.HasSuffix(f.Name, entryExt) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		entries[strings.TrimSuffix(f.Name, entryExt)] = data
	}
	return entries, nil
}

// writeEntries writes entries in name order. Arrow buffers are already
// zstd-compressed, so entries are stored without further compression.
func writeEntries(w io.Writer, entries map[string][]byte) error {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	zw := zip.NewWriter(w)
	for _, name := range names {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:   name + entryExt,
			Method: zip.Store,
		})
		if err != nil {
			return err
		}
		if _, err := fw.Write(entries[name]); err != nil {
			return err
		}
	}
	return zw.Close()
}

func validName(name string) error {
	if name == "" {
		return fmt.Errorf("table has no name")
	}
	if strings.ContainsAny(name, `/\`) || path.Clean(name) != name || name == "." || name == ".." {
		return fmt.Errorf("table name %q is not a plain name", name)
	}
	return nil
}
