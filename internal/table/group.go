package table

import (
	"fmt"
	"math"
)

// Groups partitions a table's rows by equal values of the grouping columns.
// Groups are ordered ascending by those values; row indices inside a group
// keep their source order.
type Groups struct {
	src     *Table
	by      []string
	keys    *Table
	indices [][]int
}

// GroupBy partitions rows by the named columns
func (t *Table) GroupBy(names ...string) (*Groups, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("table %s: group by needs at least one column", t.name)
	}
	cols := make([]*Column, 0, len(names))
	for _, n := range names {
		c, err := t.Column(n)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}

	order := sortedIndex(cols, t.rows)
	var indices [][]int
	var firsts []int
	for k, i := range order {
		if k == 0 || compareRows(cols, order[k-1], i) != 0 {
			indices = append(indices, nil)
			firsts = append(firsts, i)
		}
		indices[len(indices)-1] = append(indices[len(indices)-1], i)
	}

	keyCols := make([]*Column, len(cols))
	for i, c := range cols {
		keyCols[i] = c.take(firsts)
	}
	keys, err := New(t.name, keyCols...)
	if err != nil {
		return nil, err
	}
	keys.rows = len(firsts)
	keys.key = append([]string(nil), names...)

	return &Groups{src: t, by: names, keys: keys, indices: indices}, nil
}

// Len returns the number of groups
func (g *Groups) Len() int { return len(g.indices) }

// Indices returns the source row indices of each group
func (g *Groups) Indices() [][]int { return g.indices }

// Keys returns one row per group holding the grouping values, keyed by them
func (g *Groups) Keys() *Table { return g.keys }

// Float reduces a float column per group
func (g *Groups) Float(name string, reduce func(values []float64) float64) (*Column, error) {
	values, err := g.src.Floats(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(g.indices))
	buf := make([]float64, 0)
	for k, idx := range g.indices {
		buf = buf[:0]
		for _, i := range idx {
			buf = append(buf, values[i])
		}
		out[k] = reduce(buf)
	}
	return NewFloat(name, out), nil
}

// First returns each group's first value of the named column
func (g *Groups) First(name string) (*Column, error) {
	c, err := g.src.Column(name)
	if err != nil {
		return nil, err
	}
	idx := make([]int, len(g.indices))
	for k, rows := range g.indices {
		idx[k] = rows[0]
	}
	return c.take(idx), nil
}

// Last returns each group's last value of the named column
func (g *Groups) Last(name string) (*Column, error) {
	c, err := g.src.Column(name)
	if err != nil {
		return nil, err
	}
	idx := make([]int, len(g.indices))
	for k, rows := range g.indices {
		idx[k] = rows[len(rows)-1]
	}
	return c.take(idx), nil
}

// Count returns the row count of each group as a column called name
func (g *Groups) Count(name string) *Column {
	out := make([]int64, len(g.indices))
	for k, rows := range g.indices {
		out[k] = int64(len(rows))
	}
	return NewInt(name, out)
}

// CountDistinct counts the distinct non-missing values of column per group
func (g *Groups) CountDistinct(column, name string) (*Column, error) {
	c, err := g.src.Column(column)
	if err != nil {
		return nil, err
	}
	out := make([]int64, len(g.indices))
	for k, rows := range g.indices {
		seen := make(map[string]struct{}, len(rows))
		for _, i := range rows {
			if c.IsMissing(i) {
				continue
			}
			seen[c.Format(i)] = struct{}{}
		}
		out[k] = int64(len(seen))
	}
	return NewInt(name, out), nil
}

// Aggregate builds the keys table extended by the given per-group columns
func (g *Groups) Aggregate(cols ...*Column) (*Table, error) {
	out := g.keys
	for _, c := range cols {
		var err error
		if out, err = out.SetColumn(c); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Sum adds finite values, skipping NaN
func Sum(values []float64) float64 {
	s := 0.0
	for _, v := range values {
		if !math.IsNaN(v) {
			s += v
		}
	}
	return s
}

// Mean averages the non-NaN values; NaN when there are none
func Mean(values []float64) float64 {
	s, n := 0.0, 0
	for _, v := range values {
		if !math.IsNaN(v) {
			s += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return s / float64(n)
}

// CompoundReturn chains simple returns: exp(sum(log(1+r))) - 1
func CompoundReturn(returns []float64) float64 {
	logSum := 0.0
	for _, r := range returns {
		logSum += math.Log1p(r)
	}
	return math.Expm1(logSum)
}

// AllFinite reports whether every value is finite
func AllFinite(values []float64) bool {
	for _, v := range values {
		if !isFinite(v) {
			return false
		}
	}
	return true
}
