package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "datastorage/internal/errors"
	"datastorage/internal/table"
)

// Date layouts understood by ParseSpec besides ordinary Go time layouts
const (
	// LayoutExcelSerial parses spreadsheet serial day numbers
	LayoutExcelSerial = "excel-serial"
	// LayoutCompact is yyyymmdd, also accepted with a trailing ".0"
	LayoutCompact = "20060102"
	// LayoutDayFirst is dd-mm-yyyy
	LayoutDayFirst = "02-01-2006"
)

// ColumnSpec selects one source column and its type
type ColumnSpec struct {
	// Source is the header name after FirstColumn and HeaderRename apply
	Source string
	// Name is the output column name, Source when empty
	Name string
	Kind table.Kind
	// Layout is the date layout of KindDate columns
	Layout string
	// Optional columns may be absent from the header
	Optional bool
	// Coerce turns unparsable numeric cells into missing values instead
	// of failing; every coerced cell is counted in ParseStats
	Coerce bool
}

func (c ColumnSpec) outputName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Source
}

// ParseSpec describes how a delimited payload becomes a table
type ParseSpec struct {
	// SkipRows lines are discarded before the header row
	SkipRows int
	// FirstColumn renames the first header cell whatever its content
	FirstColumn string
	// HeaderRename maps every other header cell to its canonical name
	HeaderRename func(header string) string
	Columns      []ColumnSpec
	// MissingTokens are cell values treated as missing
	MissingTokens []string
	// DropMissingDates drops rows with an empty date instead of failing
	DropMissingDates bool
}

// ParseStats reports what parsing skipped or coerced
type ParseStats struct {
	Rows         int
	DroppedRows  int
	BlankRows    int
	CoercedCells int
}

// rowSource yields records one at a time, io.EOF at the end
type rowSource func() ([]string, error)

// ParseCSV parses a comma-separated payload
func ParseCSV(r io.Reader, spec ParseSpec) (*table.Table, ParseStats, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	return parseRows(func() ([]string, error) {
		rec, err := reader.Read()
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, apperrors.NewParseError("malformed CSV", err)
		}
		return rec, err
	}, spec)
}

// ParseSheet parses one worksheet of a spreadsheet workbook. Cells are read
// as raw values, so date cells arrive as serial numbers and need
// LayoutExcelSerial. Only OOXML workbooks are readable.
func ParseSheet(path, sheet string, spec ParseSpec) (*table.Table, ParseStats, error) {
	if strings.EqualFold(filepath.Ext(path), ".xls") {
		return nil, ParseStats{}, apperrors.NewParseError("legacy .xls workbooks are not readable, save as .xlsx", nil).
			WithContext("path", path)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, ParseStats{}, apperrors.NewParseError("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, ParseStats{}, apperrors.NewParseError("failed to read sheet", err).
			WithContext("path", path).WithContext("sheet", sheet)
	}

	next := 0
	t, stats, err := parseRows(func() ([]string, error) {
		if next >= len(rows) {
			return nil, io.EOF
		}
		next++
		return rows[next-1], nil
	}, spec)
	if appErr, ok := apperrors.AsAppError(err); ok {
		appErr.WithContext("sheet", sheet)
	}
	return t, stats, err
}

type boundColumn struct {
	spec  ColumnSpec
	index int

	floats  []float64
	ints    []int64
	strings []string
	dates   []time.Time
	bools   []bool
}

func parseRows(next rowSource, spec ParseSpec) (*table.Table, ParseStats, error) {
	var stats ParseStats

	for i := 0; i < spec.SkipRows; i++ {
		if _, err := next(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, stats, apperrors.NewParseError("payload ends before the header row", nil).
					WithContext("skip_rows", spec.SkipRows)
			}
			return nil, stats, err
		}
	}

	header, err := next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, stats, apperrors.NewParseError("payload has no header row", nil)
		}
		return nil, stats, err
	}
	cols, err := bindColumns(header, spec)
	if err != nil {
		return nil, stats, err
	}

	missing := make(map[string]bool, len(spec.MissingTokens))
	for _, tok := range spec.MissingTokens {
		missing[tok] = true
	}

	for row := 0; ; row++ {
		rec, err := next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, withRow(err, row)
		}
		if isBlank(rec) {
			stats.BlankRows++
			continue
		}

		drop, err := parseRecord(rec, row, cols, spec, missing, &stats)
		if err != nil {
			return nil, stats, err
		}
		if drop {
			stats.DroppedRows++
			continue
		}
		stats.Rows++
	}

	out := make([]*table.Column, 0, len(cols))
	for _, c := range cols {
		name := c.spec.outputName()
		switch c.spec.Kind {
		case table.KindFloat:
			out = append(out, table.NewFloat(name, c.floats))
		case table.KindInt:
			out = append(out, table.NewInt(name, c.ints))
		case table.KindString:
			out = append(out, table.NewString(name, c.strings))
		case table.KindDate:
			out = append(out, table.NewDate(name, c.dates))
		case table.KindBool:
			out = append(out, table.NewBool(name, c.bools))
		}
	}
	t, err := table.New("", out...)
	if err != nil {
		return nil, stats, apperrors.NewParseError("failed to assemble table", err)
	}
	return t, stats, nil
}

// bindColumns resolves every ColumnSpec to its header position
func bindColumns(header []string, spec ParseSpec) ([]*boundColumn, error) {
	names := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		switch {
		case i == 0 && spec.FirstColumn != "":
			h = spec.FirstColumn
		case spec.HeaderRename != nil:
			h = spec.HeaderRename(h)
		}
		names[i] = h
	}

	positions := make(map[string][]int, len(names))
	for i, n := range names {
		positions[n] = append(positions[n], i)
	}

	cols := make([]*boundColumn, 0, len(spec.Columns))
	seen := make(map[string]bool, len(spec.Columns))
	for _, cs := range spec.Columns {
		pos := positions[cs.Source]
		switch {
		case len(pos) == 0 && cs.Optional:
			continue
		case len(pos) == 0:
			return nil, apperrors.NewParseError(fmt.Sprintf("column %q not found", cs.Source), nil).
				WithContext("header", strings.Join(names, ","))
		case len(pos) > 1:
			return nil, apperrors.NewParseError(fmt.Sprintf("header name %q is ambiguous", cs.Source), nil).
				WithContext("positions", fmt.Sprint(pos))
		}
		if cs.Kind == table.KindDate && cs.Layout == "" {
			return nil, apperrors.NewParseError(fmt.Sprintf("date column %q has no layout", cs.Source), nil)
		}
		name := cs.outputName()
		if seen[name] {
			return nil, apperrors.NewParseError(fmt.Sprintf("duplicate output column %q", name), nil)
		}
		seen[name] = true
		cols = append(cols, &boundColumn{spec: cs, index: pos[0]})
	}
	return cols, nil
}

// parseRecord appends one record to the bound columns. It reports drop when
// the record has a missing date and DropMissingDates is set.
func parseRecord(rec []string, row int, cols []*boundColumn, spec ParseSpec, missing map[string]bool, stats *ParseStats) (bool, error) {
	cell := func(c *boundColumn) (string, bool) {
		if c.index >= len(rec) {
			return "", true
		}
		v := strings.TrimSpace(rec[c.index])
		return v, v == "" || missing[v]
	}

	// dates first, so a dropped row leaves no partial values behind
	dates := make(map[*boundColumn]time.Time)
	for _, c := range cols {
		if c.spec.Kind != table.KindDate {
			continue
		}
		v, isMissing := cell(c)
		if isMissing {
			if spec.DropMissingDates {
				return true, nil
			}
			return false, cellError("missing date", nil, row, c, v)
		}
		d, err := ParseDate(v, c.spec.Layout)
		if err != nil {
			return false, cellError("invalid date", err, row, c, v)
		}
		dates[c] = d
	}

	for _, c := range cols {
		v, isMissing := cell(c)
		switch c.spec.Kind {
		case table.KindDate:
			c.dates = append(c.dates, dates[c])
		case table.KindString:
			if isMissing {
				v = ""
			}
			c.strings = append(c.strings, v)
		case table.KindFloat:
			f := math.NaN()
			if !isMissing {
				parsed, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
				switch {
				case err == nil:
					f = parsed
				case c.spec.Coerce:
					stats.CoercedCells++
				default:
					return false, cellError("invalid number", err, row, c, v)
				}
			}
			c.floats = append(c.floats, f)
		case table.KindInt:
			if isMissing {
				return false, cellError("missing integer", nil, row, c, v)
			}
			n, err := parseInt(v)
			if err != nil {
				return false, cellError("invalid integer", err, row, c, v)
			}
			c.ints = append(c.ints, n)
		case table.KindBool:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return false, cellError("invalid boolean", err, row, c, v)
			}
			c.bools = append(c.bools, b)
		}
	}
	return false, nil
}

// ParseDate parses s with layout. LayoutExcelSerial reads spreadsheet serial
// numbers; LayoutCompact tolerates a trailing ".0" left by numeric export.
func ParseDate(s, layout string) (time.Time, error) {
	switch layout {
	case LayoutExcelSerial:
		serial, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return time.Time{}, err
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, err
		}
		return table.Normalize(t), nil
	case LayoutCompact:
		s = strings.TrimSuffix(s, ".0")
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, err
	}
	return table.Normalize(t), nil
}

// parseInt accepts integers, also written as an integral float ("7074.0")
func parseInt(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return n, nil
	}
	f, ferr := strconv.ParseFloat(s, 64)
	if ferr != nil || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, err
	}
	return int64(f), nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func cellError(msg string, cause error, row int, c *boundColumn, value string) error {
	return apperrors.NewParseError(msg, cause).
		WithRow(row).
		WithContext("column", c.spec.Source).
		WithContext("value", value)
}

func withRow(err error, row int) error {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr.WithRow(row)
	}
	return apperrors.NewParseError("failed to read row", err).WithRow(row)
}
