package table

import (
	"fmt"
)

// Concat stacks tables with identical schemas. The result takes its name
// and key from the first table.
func Concat(tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("concat: no tables")
	}
	first := tables[0]
	cols := append([]*Column(nil), first.cols...)
	for _, t := range tables[1:] {
		if len(t.cols) != len(first.cols) {
			return nil, fmt.Errorf("concat: %s has %d columns, %s has %d", t.name, len(t.cols), first.name, len(first.cols))
		}
		for i, c := range t.cols {
			if c.name != cols[i].name || c.kind != cols[i].kind {
				return nil, fmt.Errorf("concat: column %d is %s %s in %s but %s %s in %s",
					i, c.name, c.kind, t.name, cols[i].name, cols[i].kind, first.name)
			}
			cols[i] = cols[i].appended(c)
		}
	}
	return first.with(cols, first.key), nil
}

// InnerJoin matches rows of left and right on equal values of the on
// columns, or on every shared column name when none are given. Output
// follows left row order, then right row order within a left row. Right
// columns other than the join columns are appended; any other shared name
// is an error. The result has no key.
func InnerJoin(left, right *Table, on ...string) (*Table, error) {
	if len(on) == 0 {
		for _, c := range left.cols {
			if right.Has(c.name) {
				on = append(on, c.name)
			}
		}
		if len(on) == 0 {
			return nil, fmt.Errorf("join %s with %s: no common columns", left.name, right.name)
		}
	}

	leftOn := make([]*Column, len(on))
	rightOn := make([]*Column, len(on))
	for i, n := range on {
		lc, err := left.Column(n)
		if err != nil {
			return nil, err
		}
		rc, err := right.Column(n)
		if err != nil {
			return nil, err
		}
		if lc.kind != rc.kind {
			return nil, fmt.Errorf("join %s with %s: column %q is %s on the left and %s on the right",
				left.name, right.name, n, lc.kind, rc.kind)
		}
		leftOn[i], rightOn[i] = lc, rc
	}

	rightRest := make([]*Column, 0, len(right.cols))
	for _, c := range right.cols {
		if contains(on, c.name) {
			continue
		}
		if left.Has(c.name) {
			return nil, fmt.Errorf("join %s with %s: column %q exists on both sides", left.name, right.name, c.name)
		}
		rightRest = append(rightRest, c)
	}

	index := make(map[string][]int, right.rows)
	for j := 0; j < right.rows; j++ {
		k := rowKey(rightOn, j)
		index[k] = append(index[k], j)
	}

	var li, ri []int
	for i := 0; i < left.rows; i++ {
		for _, j := range index[rowKey(leftOn, i)] {
			li = append(li, i)
			ri = append(ri, j)
		}
	}

	cols := make([]*Column, 0, len(left.cols)+len(rightRest))
	for _, c := range left.cols {
		cols = append(cols, c.take(li))
	}
	for _, c := range rightRest {
		cols = append(cols, c.take(ri))
	}
	out, err := New(left.name, cols...)
	if err != nil {
		return nil, err
	}
	out.rows = len(li)
	return out, nil
}
