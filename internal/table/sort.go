package table

import (
	"fmt"
	"sort"
	"strings"
)

// SortBy stably sorts rows ascending by the named columns
func (t *Table) SortBy(names ...string) (*Table, error) {
	cols := make([]*Column, 0, len(names))
	for _, n := range names {
		c, err := t.Column(n)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return t.Take(sortedIndex(cols, t.rows)), nil
}

// SortByKey sorts rows ascending by the primary key
func (t *Table) SortByKey() (*Table, error) {
	if len(t.key) == 0 {
		return nil, fmt.Errorf("table %s: no key to sort by", t.name)
	}
	return t.SortBy(t.key...)
}

// IsSortedBy reports whether rows are in ascending order of the named columns
func (t *Table) IsSortedBy(names ...string) (bool, error) {
	cols := make([]*Column, 0, len(names))
	for _, n := range names {
		c, err := t.Column(n)
		if err != nil {
			return false, err
		}
		cols = append(cols, c)
	}
	for i := 1; i < t.rows; i++ {
		if compareRows(cols, i-1, i) > 0 {
			return false, nil
		}
	}
	return true, nil
}

func sortedIndex(cols []*Column, n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return compareRows(cols, idx[a], idx[b]) < 0
	})
	return idx
}

func compareRows(cols []*Column, i, j int) int {
	for _, c := range cols {
		if r := c.compare(i, j); r != 0 {
			return r
		}
	}
	return 0
}

// DuplicateKeyError reports two rows sharing a primary key value
type DuplicateKeyError struct {
	Table  string
	Key    []string
	Value  string
	First  int
	Second int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("table %s: duplicate key (%s)=(%s) at rows %d and %d",
		e.Table, strings.Join(e.Key, ", "), e.Value, e.First, e.Second)
}

// CheckUniqueKey fails with a *DuplicateKeyError on the first repeated key
func (t *Table) CheckUniqueKey() error {
	if len(t.key) == 0 {
		return nil
	}
	return t.CheckUnique(t.key...)
}

// CheckUnique fails with a *DuplicateKeyError if the named columns do not
// identify rows uniquely
func (t *Table) CheckUnique(names ...string) error {
	cols := make([]*Column, 0, len(names))
	for _, n := range names {
		c, err := t.Column(n)
		if err != nil {
			return err
		}
		cols = append(cols, c)
	}
	seen := make(map[string]int, t.rows)
	for i := 0; i < t.rows; i++ {
		k := rowKey(cols, i)
		if first, ok := seen[k]; ok {
			return &DuplicateKeyError{
				Table:  t.name,
				Key:    append([]string(nil), names...),
				Value:  strings.ReplaceAll(k, "\x1f", ", "),
				First:  first,
				Second: i,
			}
		}
		seen[k] = i
	}
	return nil
}
