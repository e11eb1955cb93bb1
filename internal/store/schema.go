package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"

	"datastorage/internal/table"
)

// Schema metadata keys stored with every table
const (
	MetaTable         = "datastorage.table"
	MetaKey           = "datastorage.key"
	MetaRows          = "datastorage.rows"
	MetaSchemaVersion = "datastorage.schema_version"
	MetaCreatedAt     = "datastorage.created_at"

	// SchemaVersion changes whenever the column encoding changes
	SchemaVersion = "1"
)

// SchemaFor builds the Arrow schema of t, including table metadata
func SchemaFor(t *table.Table, createdAt time.Time) (*arrow.Schema, error) {
	fields := make([]arrow.Field, 0, t.NumCols())
	for _, c := range t.Columns() {
		dt, nullable, err := arrowType(c.Kind())
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Name(), err)
		}
		fields = append(fields, arrow.Field{Name: c.Name(), Type: dt, Nullable: nullable})
	}

	md := arrow.NewMetadata(
		[]string{MetaTable, MetaKey, MetaRows, MetaSchemaVersion, MetaCreatedAt},
		[]string{
			t.Name(),
			strings.Join(t.Key(), ","),
			strconv.Itoa(t.NumRows()),
			SchemaVersion,
			createdAt.UTC().Format(time.RFC3339),
		},
	)

	return arrow.NewSchema(fields, &md), nil
}

// arrowType maps a column kind to its Arrow type. Dates are the only
// nullable kind; a zero date is written as null.
func arrowType(kind table.Kind) (arrow.DataType, bool, error) {
	switch kind {
	case table.KindFloat:
		return arrow.PrimitiveTypes.Float64, false, nil
	case table.KindInt:
		return arrow.PrimitiveTypes.Int64, false, nil
	case table.KindString:
		return arrow.BinaryTypes.String, false, nil
	case table.KindDate:
		return arrow.FixedWidthTypes.Date32, true, nil
	case table.KindBool:
		return arrow.FixedWidthTypes.Boolean, false, nil
	}
	return nil, false, fmt.Errorf("unsupported column kind %s", kind)
}

// tableMeta is the metadata read back from a stored schema
type tableMeta struct {
	name    string
	key     []string
	rows    int
	version string
}

func readMeta(schema *arrow.Schema) (tableMeta, error) {
	md := schema.Metadata()
	get := func(k string) string {
		if i := md.FindKey(k); i >= 0 {
			return md.Values()[i]
		}
		return ""
	}

	meta := tableMeta{
		name:    get(MetaTable),
		version: get(MetaSchemaVersion),
	}
	if meta.version != SchemaVersion {
		return meta, fmt.Errorf("schema version %q, want %q", meta.version, SchemaVersion)
	}
	if k := get(MetaKey); k != "" {
		meta.key = strings.Split(k, ",")
	}
	rows, err := strconv.Atoi(get(MetaRows))
	if err != nil {
		return meta, fmt.Errorf("invalid row count metadata: %w", err)
	}
	meta.rows = rows
	return meta, nil
}
