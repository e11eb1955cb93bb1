// Package dataprocessing turns raw provider payloads into tables.
//
// # Parsing
//
// OpenSingleEntry opens a ZIP archive holding one payload file. ParseCSV and
// ParseSheet read a delimited payload or a workbook sheet according to a
// ParseSpec: rows to skip before the header, header renames, the typed
// columns to keep and the tokens that mean "missing". A cell that does not
// parse as its declared type is a ParseError carrying the 0-based data row
// and the column name:
//
//	entry, err := dataprocessing.OpenSingleEntry(path)
//	if err != nil {
//	    return err
//	}
//	defer entry.Close()
//	t, stats, err := dataprocessing.ParseCSV(entry, spec)
//
// # Curves and gaps
//
// InterpolateCurve evaluates a term structure on every integer maturity
// between its ends, cubic when there are enough points and linear
// otherwise. ForwardFillProcessor closes NaN gaps forward, then backward.
//
// # Summaries
//
// Summarizer reports row counts, key cardinality, date range and column
// statistics of a table, for logs and for the inventory export.
package dataprocessing
