package table

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Table is an ordered set of equally long typed columns with an optional
// primary key. Operations never mutate their receiver; they return a new
// table that may share column storage with the old one.
type Table struct {
	name   string
	cols   []*Column
	byName map[string]int
	key    []string
	rows   int
}

// New builds a table, enforcing unique column names and equal lengths
func New(name string, cols ...*Column) (*Table, error) {
	t := &Table{name: name, byName: make(map[string]int, len(cols))}
	for i, c := range cols {
		if c == nil {
			return nil, fmt.Errorf("table %s: column %d is nil", name, i)
		}
		if c.name == "" {
			return nil, fmt.Errorf("table %s: column %d has no name", name, i)
		}
		if _, dup := t.byName[c.name]; dup {
			return nil, fmt.Errorf("table %s: duplicate column %q", name, c.name)
		}
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, fmt.Errorf("table %s: column %q has %d rows, want %d", name, c.name, c.Len(), t.rows)
		}
		t.byName[c.name] = i
		t.cols = append(t.cols, c)
	}
	return t, nil
}

// MustNew is like New but panics on error. Intended for fixtures.
func MustNew(name string, cols ...*Column) *Table {
	t, err := New(name, cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the logical table name
func (t *Table) Name() string { return t.name }

// NumRows returns the row count
func (t *Table) NumRows() int { return t.rows }

// NumCols returns the column count
func (t *Table) NumCols() int { return len(t.cols) }

// Columns returns the columns in order
func (t *Table) Columns() []*Column { return t.cols }

// Key returns the primary key column names
func (t *Table) Key() []string { return t.key }

// ColumnNames returns the column names in order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.name
	}
	return names
}

// Has reports whether a column exists
func (t *Table) Has(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// Column returns a column by name
func (t *Table) Column(name string) (*Column, error) {
	i, ok := t.byName[name]
	if !ok {
		return nil, fmt.Errorf("table %s: no column %q", t.name, name)
	}
	return t.cols[i], nil
}

func (t *Table) typed(name string, kind Kind) (*Column, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if c.kind != kind {
		return nil, fmt.Errorf("table %s: column %q is %s, not %s", t.name, name, c.kind, kind)
	}
	return c, nil
}

// Floats returns the values of a float column
func (t *Table) Floats(name string) ([]float64, error) {
	c, err := t.typed(name, KindFloat)
	if err != nil {
		return nil, err
	}
	return c.floats, nil
}

// Ints returns the values of an int column
func (t *Table) Ints(name string) ([]int64, error) {
	c, err := t.typed(name, KindInt)
	if err != nil {
		return nil, err
	}
	return c.ints, nil
}

// Strings returns the values of a string column
func (t *Table) Strings(name string) ([]string, error) {
	c, err := t.typed(name, KindString)
	if err != nil {
		return nil, err
	}
	return c.strings, nil
}

// Dates returns the values of a date column
func (t *Table) Dates(name string) ([]time.Time, error) {
	c, err := t.typed(name, KindDate)
	if err != nil {
		return nil, err
	}
	return c.dates, nil
}

// Bools returns the values of a bool column
func (t *Table) Bools(name string) ([]bool, error) {
	c, err := t.typed(name, KindBool)
	if err != nil {
		return nil, err
	}
	return c.bools, nil
}

func (t *Table) with(cols []*Column, key []string) *Table {
	out, err := New(t.name, cols...)
	if err != nil {
		// callers only reshuffle validated columns
		panic(err)
	}
	out.key = key
	return out
}

// WithName returns the table under another logical name
func (t *Table) WithName(name string) *Table {
	out := t.with(t.cols, t.key)
	out.name = name
	return out
}

// WithKey sets the primary key columns
func (t *Table) WithKey(names ...string) (*Table, error) {
	for _, n := range names {
		if !t.Has(n) {
			return nil, fmt.Errorf("table %s: key column %q not found", t.name, n)
		}
	}
	return t.with(t.cols, append([]string(nil), names...)), nil
}

// SetColumn adds c, or replaces the column of the same name in place
func (t *Table) SetColumn(c *Column) (*Table, error) {
	if len(t.cols) > 0 && c.Len() != t.rows {
		return nil, fmt.Errorf("table %s: column %q has %d rows, want %d", t.name, c.name, c.Len(), t.rows)
	}
	cols := append([]*Column(nil), t.cols...)
	if i, ok := t.byName[c.name]; ok {
		if t.isKey(c.name) && cols[i].kind != c.kind {
			return nil, fmt.Errorf("table %s: key column %q cannot change kind", t.name, c.name)
		}
		cols[i] = c
	} else {
		cols = append(cols, c)
	}
	return t.with(cols, t.key), nil
}

func (t *Table) isKey(name string) bool {
	for _, k := range t.key {
		if k == name {
			return true
		}
	}
	return false
}

// DeriveFloat adds or replaces a float column computed row by row
func (t *Table) DeriveFloat(name string, fn func(i int) float64) (*Table, error) {
	values := make([]float64, t.rows)
	for i := range values {
		values[i] = fn(i)
	}
	return t.SetColumn(NewFloat(name, values))
}

// DeriveInt adds or replaces an int column computed row by row
func (t *Table) DeriveInt(name string, fn func(i int) int64) (*Table, error) {
	values := make([]int64, t.rows)
	for i := range values {
		values[i] = fn(i)
	}
	return t.SetColumn(NewInt(name, values))
}

// DeriveBool adds or replaces a bool column computed row by row
func (t *Table) DeriveBool(name string, fn func(i int) bool) (*Table, error) {
	values := make([]bool, t.rows)
	for i := range values {
		values[i] = fn(i)
	}
	return t.SetColumn(NewBool(name, values))
}

// Select keeps the named columns in the given order. The key survives only
// if all of its columns are selected.
func (t *Table) Select(names ...string) (*Table, error) {
	cols := make([]*Column, 0, len(names))
	for _, n := range names {
		c, err := t.Column(n)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	key := t.key
	for _, k := range t.key {
		if !contains(names, k) {
			key = nil
			break
		}
	}
	return t.with(cols, key), nil
}

// Drop removes the named columns; removing a key column clears the key
func (t *Table) Drop(names ...string) (*Table, error) {
	for _, n := range names {
		if !t.Has(n) {
			return nil, fmt.Errorf("table %s: no column %q", t.name, n)
		}
	}
	keep := make([]string, 0, len(t.cols))
	for _, c := range t.cols {
		if !contains(names, c.name) {
			keep = append(keep, c.name)
		}
	}
	return t.Select(keep...)
}

// Rename renames columns (and key entries) according to mapping
func (t *Table) Rename(mapping map[string]string) (*Table, error) {
	for from := range mapping {
		if !t.Has(from) {
			return nil, fmt.Errorf("table %s: cannot rename missing column %q", t.name, from)
		}
	}
	cols := make([]*Column, len(t.cols))
	for i, c := range t.cols {
		if to, ok := mapping[c.name]; ok {
			cols[i] = c.renamed(to)
		} else {
			cols[i] = c
		}
	}
	key := make([]string, len(t.key))
	for i, k := range t.key {
		if to, ok := mapping[k]; ok {
			key[i] = to
		} else {
			key[i] = k
		}
	}
	out, err := New(t.name, cols...)
	if err != nil {
		return nil, err
	}
	if len(key) > 0 {
		out.key = key
	}
	return out, nil
}

// Take returns the rows at idx, in that order
func (t *Table) Take(idx []int) *Table {
	cols := make([]*Column, len(t.cols))
	for i, c := range t.cols {
		cols[i] = c.take(idx)
	}
	out := t.with(cols, t.key)
	out.rows = len(idx)
	return out
}

// Filter keeps the rows for which keep returns true
func (t *Table) Filter(keep func(i int) bool) *Table {
	idx := make([]int, 0, t.rows)
	for i := 0; i < t.rows; i++ {
		if keep(i) {
			idx = append(idx, i)
		}
	}
	return t.Take(idx)
}

// Head returns the first n rows
func (t *Table) Head(n int) *Table {
	if n > t.rows {
		n = t.rows
	}
	if n < 0 {
		n = 0
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return t.Take(idx)
}

// DropMissing removes rows with a missing value in any of the named
// columns, or in any column when none are named
func (t *Table) DropMissing(names ...string) (*Table, error) {
	cols := t.cols
	if len(names) > 0 {
		cols = make([]*Column, 0, len(names))
		for _, n := range names {
			c, err := t.Column(n)
			if err != nil {
				return nil, err
			}
			cols = append(cols, c)
		}
	}
	return t.Filter(func(i int) bool {
		for _, c := range cols {
			if c.IsMissing(i) {
				return false
			}
		}
		return true
	}), nil
}

// Equal reports whether both tables have the same name, key, schema and
// values. NaN compares equal to NaN.
func (t *Table) Equal(o *Table) bool {
	if t.name != o.name || t.rows != o.rows || len(t.cols) != len(o.cols) {
		return false
	}
	if strings.Join(t.key, "\x1f") != strings.Join(o.key, "\x1f") {
		return false
	}
	for ci, c := range t.cols {
		oc := o.cols[ci]
		if c.name != oc.name || c.kind != oc.kind {
			return false
		}
		for i := 0; i < t.rows; i++ {
			if !c.equalAt(i, oc, i) {
				return false
			}
		}
	}
	return true
}

// Row returns the values of row i keyed by column name
func (t *Table) Row(i int) map[string]any {
	row := make(map[string]any, len(t.cols))
	for _, c := range t.cols {
		row[c.name] = c.Value(i)
	}
	return row
}

// String renders a short description used in logs and test failures
func (t *Table) String() string {
	parts := make([]string, len(t.cols))
	for i, c := range t.cols {
		parts[i] = c.name + ":" + c.kind.String()
	}
	return fmt.Sprintf("%s[%d rows; %s; key=%s]", t.name, t.rows, strings.Join(parts, ", "), strings.Join(t.key, ","))
}

// rowKey encodes the values of cols at row i as a map key
func rowKey(cols []*Column, i int) string {
	if len(cols) == 1 {
		return cols[0].Format(i)
	}
	parts := make([]string, len(cols))
	for k, c := range cols {
		parts[k] = c.Format(i)
	}
	return strings.Join(parts, "\x1f")
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// isFinite reports whether v is neither NaN nor infinite
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
