package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind is the element type of a column
type Kind int

const (
	KindFloat Kind = iota
	KindInt
	KindString
	KindDate
	KindBool
)

// String returns the kind name used in schemas and error messages
func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindDate:
		return "date"
	case KindBool:
		return "bool"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// DateLayout is the canonical text form of a date value
const DateLayout = "2006-01-02"

// Normalize truncates t to midnight UTC of its calendar date
func Normalize(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Day builds a normalized date value
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Column is a named, typed vector. Exactly one of the value slices is in
// use, selected by Kind. Missing values are NaN for floats, "" for strings
// and the zero time for dates.
type Column struct {
	name    string
	kind    Kind
	floats  []float64
	ints    []int64
	strings []string
	dates   []time.Time
	bools   []bool
}

// NewFloat creates a float column
func NewFloat(name string, values []float64) *Column {
	return &Column{name: name, kind: KindFloat, floats: values}
}

// NewInt creates an integer column
func NewInt(name string, values []int64) *Column {
	return &Column{name: name, kind: KindInt, ints: values}
}

// NewString creates a string column
func NewString(name string, values []string) *Column {
	return &Column{name: name, kind: KindString, strings: values}
}

// NewDate creates a date column, normalizing every value to midnight UTC
func NewDate(name string, values []time.Time) *Column {
	normalized := make([]time.Time, len(values))
	for i, v := range values {
		normalized[i] = Normalize(v)
	}
	return &Column{name: name, kind: KindDate, dates: normalized}
}

// NewBool creates a boolean column
func NewBool(name string, values []bool) *Column {
	return &Column{name: name, kind: KindBool, bools: values}
}

// Name returns the column name
func (c *Column) Name() string { return c.name }

// Kind returns the column element type
func (c *Column) Kind() Kind { return c.kind }

// Len returns the number of values
func (c *Column) Len() int {
	switch c.kind {
	case KindFloat:
		return len(c.floats)
	case KindInt:
		return len(c.ints)
	case KindString:
		return len(c.strings)
	case KindDate:
		return len(c.dates)
	case KindBool:
		return len(c.bools)
	}
	return 0
}

// Floats returns the underlying values of a float column, nil otherwise
func (c *Column) Floats() []float64 { return c.floats }

// Ints returns the underlying values of an int column, nil otherwise
func (c *Column) Ints() []int64 { return c.ints }

// Strings returns the underlying values of a string column, nil otherwise
func (c *Column) Strings() []string { return c.strings }

// Dates returns the underlying values of a date column, nil otherwise
func (c *Column) Dates() []time.Time { return c.dates }

// Bools returns the underlying values of a bool column, nil otherwise
func (c *Column) Bools() []bool { return c.bools }

// IsMissing reports whether the value at row i is missing
func (c *Column) IsMissing(i int) bool {
	switch c.kind {
	case KindFloat:
		return math.IsNaN(c.floats[i])
	case KindString:
		return c.strings[i] == ""
	case KindDate:
		return c.dates[i].IsZero()
	}
	return false
}

// Format renders the value at row i as text
func (c *Column) Format(i int) string {
	switch c.kind {
	case KindFloat:
		return strconv.FormatFloat(c.floats[i], 'g', -1, 64)
	case KindInt:
		return strconv.FormatInt(c.ints[i], 10)
	case KindString:
		return c.strings[i]
	case KindDate:
		if c.dates[i].IsZero() {
			return ""
		}
		return c.dates[i].Format(DateLayout)
	case KindBool:
		return strconv.FormatBool(c.bools[i])
	}
	return ""
}

// Value returns the value at row i as an interface
func (c *Column) Value(i int) any {
	switch c.kind {
	case KindFloat:
		return c.floats[i]
	case KindInt:
		return c.ints[i]
	case KindString:
		return c.strings[i]
	case KindDate:
		return c.dates[i]
	case KindBool:
		return c.bools[i]
	}
	return nil
}

// compare orders rows i and j ascending. NaN sorts after every number.
func (c *Column) compare(i, j int) int {
	switch c.kind {
	case KindFloat:
		a, b := c.floats[i], c.floats[j]
		switch {
		case math.IsNaN(a) && math.IsNaN(b):
			return 0
		case math.IsNaN(a):
			return 1
		case math.IsNaN(b):
			return -1
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	case KindInt:
		a, b := c.ints[i], c.ints[j]
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	case KindString:
		return strings.Compare(c.strings[i], c.strings[j])
	case KindDate:
		return c.dates[i].Compare(c.dates[j])
	case KindBool:
		a, b := c.bools[i], c.bools[j]
		switch {
		case a == b:
			return 0
		case !a:
			return -1
		}
		return 1
	}
	return 0
}

// equalAt compares row i of c with row j of o; NaN equals NaN
func (c *Column) equalAt(i int, o *Column, j int) bool {
	if c.kind != o.kind {
		return false
	}
	switch c.kind {
	case KindFloat:
		a, b := c.floats[i], o.floats[j]
		return a == b || (math.IsNaN(a) && math.IsNaN(b))
	case KindInt:
		return c.ints[i] == o.ints[j]
	case KindString:
		return c.strings[i] == o.strings[j]
	case KindDate:
		return c.dates[i].Equal(o.dates[j])
	case KindBool:
		return c.bools[i] == o.bools[j]
	}
	return false
}

// take returns a new column holding the rows at idx, in that order
func (c *Column) take(idx []int) *Column {
	out := &Column{name: c.name, kind: c.kind}
	switch c.kind {
	case KindFloat:
		out.floats = make([]float64, len(idx))
		for k, i := range idx {
			out.floats[k] = c.floats[i]
		}
	case KindInt:
		out.ints = make([]int64, len(idx))
		for k, i := range idx {
			out.ints[k] = c.ints[i]
		}
	case KindString:
		out.strings = make([]string, len(idx))
		for k, i := range idx {
			out.strings[k] = c.strings[i]
		}
	case KindDate:
		out.dates = make([]time.Time, len(idx))
		for k, i := range idx {
			out.dates[k] = c.dates[i]
		}
	case KindBool:
		out.bools = make([]bool, len(idx))
		for k, i := range idx {
			out.bools[k] = c.bools[i]
		}
	}
	return out
}

// renamed returns a shallow copy of c under a new name
func (c *Column) renamed(name string) *Column {
	out := *c
	out.name = name
	return &out
}

// appended returns a new column with o's values after c's
func (c *Column) appended(o *Column) *Column {
	out := &Column{name: c.name, kind: c.kind}
	switch c.kind {
	case KindFloat:
		out.floats = append(append(make([]float64, 0, len(c.floats)+len(o.floats)), c.floats...), o.floats...)
	case KindInt:
		out.ints = append(append(make([]int64, 0, len(c.ints)+len(o.ints)), c.ints...), o.ints...)
	case KindString:
		out.strings = append(append(make([]string, 0, len(c.strings)+len(o.strings)), c.strings...), o.strings...)
	case KindDate:
		out.dates = append(append(make([]time.Time, 0, len(c.dates)+len(o.dates)), c.dates...), o.dates...)
	case KindBool:
		out.bools = append(append(make([]bool, 0, len(c.bools)+len(o.bools)), c.bools...), o.bools...)
	}
	return out
}
