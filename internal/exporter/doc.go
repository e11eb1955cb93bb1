// Package exporter writes dataset tables out of the store.
//
// CSVWriter is the file side: generic CSV writing with an optional UTF-8
// BOM, a streaming writer for large tables, and WriteTable, which exports a
// whole table with full float precision. Relative names resolve under the
// configured exports directory.
//
// Preview is the console side, printing the head of a table as aligned
// columns after an import.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(paths, logger)
//	path, err := w.WriteTable("vix_spx.csv", t)
//
//	exporter.Preview(os.Stdout, t, 5)
package exporter
