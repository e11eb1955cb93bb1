package exporter

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"datastorage/internal/table"
)

// previewDecimals is the float precision of console previews
const previewDecimals = 4

// Preview prints the first n rows of t as aligned columns, preceded by a
// line naming the table, its row count and key
func Preview(w io.Writer, t *table.Table, n int) error {
	fmt.Fprintf(w, "%s: %d rows", t.Name(), t.NumRows())
	if key := t.Key(); len(key) > 0 {
		fmt.Fprintf(w, ", key (%s)", strings.Join(key, ", "))
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, strings.Join(t.ColumnNames(), "\t")+"\t")

	head := t.Head(n)
	cells := make([]string, head.NumCols())
	for i := 0; i < head.NumRows(); i++ {
		for j, c := range head.Columns() {
			cells[j] = formatCell(c, i, previewDecimals)
			if cells[j] == "" {
				cells[j] = "-"
			}
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}
	if head.NumRows() < t.NumRows() {
		fmt.Fprintf(tw, "... %d more rows\n", t.NumRows()-head.NumRows())
	}
	return tw.Flush()
}
