package dataprocessing

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"datastorage/internal/errors"
	"datastorage/internal/files"
	"datastorage/internal/table"
)

// Summarizer describes persisted tables: size, key cardinality, date range
// and per-column statistics.
type Summarizer struct {
	logger     *slog.Logger
	files      *files.Manager
	dateFormat string
}

// ColumnStats summarizes one column. Min, Max and Mean are only set for
// numeric columns and ignore missing values.
type ColumnStats struct {
	Name     string  `json:"name"`
	Kind     string  `json:"kind"`
	Missing  int     `json:"missing"`
	Distinct int     `json:"distinct"`
	Min      float64 `json:"min,omitempty"`
	Max      float64 `json:"max,omitempty"`
	Mean     float64 `json:"mean,omitempty"`
}

// TableSummary is the description of one table
type TableSummary struct {
	Table        string        `json:"table"`
	Rows         int           `json:"rows"`
	Key          []string      `json:"key,omitempty"`
	DistinctKeys int           `json:"distinct_keys"`
	FirstDate    string        `json:"first_date,omitempty"`
	LastDate     string        `json:"last_date,omitempty"`
	Columns      []ColumnStats `json:"columns"`
}

// NewSummarizer creates a summarizer
func NewSummarizer(logger *slog.Logger, fm *files.Manager) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	if fm == nil {
		fm = files.NewManager(logger)
	}
	return &Summarizer{
		logger:     logger,
		files:      fm,
		dateFormat: table.DateLayout,
	}
}

// Summarize computes the summary of t. The date range comes from the
// first date column of the key, or the first date column at all.
func (s *Summarizer) Summarize(t *table.Table) TableSummary {
	summary := TableSummary{
		Table: t.Name(),
		Rows:  t.NumRows(),
		Key:   t.Key(),
	}

	if len(summary.Key) > 0 {
		if g, err := t.GroupBy(summary.Key...); err == nil {
			summary.DistinctKeys = g.Len()
		}
	}

	if dateCol := s.rangeColumn(t); dateCol != nil {
		var first, last time.Time
		for _, d := range dateCol.Dates() {
			if d.IsZero() {
				continue
			}
			if first.IsZero() || d.Before(first) {
				first = d
			}
			if d.After(last) {
				last = d
			}
		}
		if !first.IsZero() {
			summary.FirstDate = first.Format(s.dateFormat)
			summary.LastDate = last.Format(s.dateFormat)
		}
	}

	for _, c := range t.Columns() {
		summary.Columns = append(summary.Columns, columnStats(c))
	}
	return summary
}

// LogSummary writes the summary of t to the logger
func (s *Summarizer) LogSummary(ctx context.Context, t *table.Table) TableSummary {
	summary := s.Summarize(t)
	attrs := []any{
		slog.String("table", summary.Table),
		slog.Int("rows", summary.Rows),
		slog.Int("distinct_keys", summary.DistinctKeys),
	}
	if summary.FirstDate != "" {
		attrs = append(attrs, slog.String("first_date", summary.FirstDate), slog.String("last_date", summary.LastDate))
	}
	s.logger.InfoContext(ctx, "Table summary", attrs...)
	return summary
}

func (s *Summarizer) rangeColumn(t *table.Table) *table.Column {
	for _, name := range t.Key() {
		if c, err := t.Column(name); err == nil && c.Kind() == table.KindDate {
			return c
		}
	}
	for _, c := range t.Columns() {
		if c.Kind() == table.KindDate {
			return c
		}
	}
	return nil
}

func columnStats(c *table.Column) ColumnStats {
	cs := ColumnStats{Name: c.Name(), Kind: c.Kind().String()}

	distinct := make(map[string]struct{})
	var numeric []float64
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			cs.Missing++
			continue
		}
		distinct[c.Format(i)] = struct{}{}
		switch c.Kind() {
		case table.KindFloat:
			if v := c.Floats()[i]; !math.IsInf(v, 0) {
				numeric = append(numeric, v)
			}
		case table.KindInt:
			numeric = append(numeric, float64(c.Ints()[i]))
		}
	}
	cs.Distinct = len(distinct)

	if len(numeric) > 0 {
		cs.Min = floats.Min(numeric)
		cs.Max = floats.Max(numeric)
		cs.Mean = stat.Mean(numeric, nil)
	}
	return cs
}

// WriteCSV writes one line per column of every summary
func (s *Summarizer) WriteCSV(ctx context.Context, path string, summaries []TableSummary) error {
	s.logger.InfoContext(ctx, "Writing table summaries to CSV",
		slog.String("path", path),
		slog.Int("summary_count", len(summaries)))

	err := s.files.WriteAtomic(path, func(w io.Writer) error {
		writer := csv.NewWriter(w)
		header := []string{"Table", "Rows", "DistinctKeys", "FirstDate", "LastDate",
			"Column", "Kind", "Missing", "Distinct", "Min", "Max", "Mean"}
		if err := writer.Write(header); err != nil {
			return err
		}
		for _, summary := range summaries {
			for _, col := range summary.Columns {
				row := []string{
					summary.Table,
					strconv.Itoa(summary.Rows),
					strconv.Itoa(summary.DistinctKeys),
					summary.FirstDate,
					summary.LastDate,
					col.Name,
					col.Kind,
					strconv.Itoa(col.Missing),
					strconv.Itoa(col.Distinct),
					fmt.Sprintf("%.6g", col.Min),
					fmt.Sprintf("%.6g", col.Max),
					fmt.Sprintf("%.6g", col.Mean),
				}
				if err := writer.Write(row); err != nil {
					return err
				}
			}
		}
		writer.Flush()
		return writer.Error()
	})
	if err != nil {
		return errors.NewStorageError("failed to write summary CSV", err).WithContext("path", path)
	}
	return nil
}

// WriteJSON writes the summaries with generation metadata
func (s *Summarizer) WriteJSON(ctx context.Context, path string, summaries []TableSummary) error {
	s.logger.InfoContext(ctx, "Writing table summaries to JSON",
		slog.String("path", path),
		slog.Int("summary_count", len(summaries)))

	jsonData := map[string]interface{}{
		"tables":       summaries,
		"count":        len(summaries),
		"generated_at": time.Now().Format(time.RFC3339),
		"format":       "table_summary_v1",
	}

	err := s.files.WriteAtomic(path, func(w io.Writer) error {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(jsonData)
	})
	if err != nil {
		return errors.NewStorageError("failed to write summary JSON", err).WithContext("path", path)
	}
	return nil
}
