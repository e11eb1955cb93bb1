// Package store persists tables into container files.
//
// A container is a ZIP archive with one Arrow IPC stream per table, named
// "<table>.arrow". Table identity, key columns and row count travel in the
// Arrow schema metadata, so Load returns the table exactly as saved,
// including its key. Saving a table replaces only that entry; the other
// tables of the container are kept byte for byte.
package store
