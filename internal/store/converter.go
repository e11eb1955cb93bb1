package store

import (
	"fmt"
	"math"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"datastorage/internal/table"
)

// toRecord converts t into a single Arrow record batch
func toRecord(mem memory.Allocator, schema *arrow.Schema, t *table.Table) arrow.Record {
	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()

	for i, c := range t.Columns() {
		switch c.Kind() {
		case table.KindFloat:
			builder.Field(i).(*array.Float64Builder).AppendValues(c.Floats(), nil)
		case table.KindInt:
			builder.Field(i).(*array.Int64Builder).AppendValues(c.Ints(), nil)
		case table.KindString:
			builder.Field(i).(*array.StringBuilder).AppendValues(c.Strings(), nil)
		case table.KindDate:
			db := builder.Field(i).(*array.Date32Builder)
			for _, d := range c.Dates() {
				if d.IsZero() {
					db.AppendNull()
					continue
				}
				db.Append(arrow.Date32FromTime(d))
			}
		case table.KindBool:
			builder.Field(i).(*array.BooleanBuilder).AppendValues(c.Bools(), nil)
		}
	}

	return builder.NewRecord()
}

// fromRecords rebuilds a table from the record batches of one stream
func fromRecords(schema *arrow.Schema, meta tableMeta, records []arrow.Record) (*table.Table, error) {
	cols := make([]*table.Column, schema.NumFields())
	for i, field := range schema.Fields() {
		col, err := readColumn(field, i, records)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}

	t, err := table.New(meta.name, cols...)
	if err != nil {
		return nil, err
	}
	if t.NumRows() != meta.rows && len(cols) > 0 {
		return nil, fmt.Errorf("table %s: read %d rows, metadata says %d", meta.name, t.NumRows(), meta.rows)
	}
	if len(meta.key) > 0 {
		return t.WithKey(meta.key...)
	}
	return t, nil
}

func readColumn(field arrow.Field, idx int, records []arrow.Record) (*table.Column, error) {
	switch field.Type.ID() {
	case arrow.FLOAT64:
		var values []float64
		for _, rec := range records {
			arr := rec.Column(idx).(*array.Float64)
			for j := 0; j < arr.Len(); j++ {
				if arr.IsNull(j) {
					values = append(values, math.NaN())
					continue
				}
				values = append(values, arr.Value(j))
			}
		}
		return table.NewFloat(field.Name, values), nil
	case arrow.INT64:
		var values []int64
		for _, rec := range records {
			arr := rec.Column(idx).(*array.Int64)
			values = append(values, arr.Int64Values()...)
		}
		return table.NewInt(field.Name, values), nil
	case arrow.STRING:
		var values []string
		for _, rec := range records {
			arr := rec.Column(idx).(*array.String)
			for j := 0; j < arr.Len(); j++ {
				values = append(values, arr.Value(j))
			}
		}
		return table.NewString(field.Name, values), nil
	case arrow.DATE32:
		var values []time.Time
		for _, rec := range records {
			arr := rec.Column(idx).(*array.Date32)
			for j := 0; j < arr.Len(); j++ {
				if arr.IsNull(j) {
					values = append(values, time.Time{})
					continue
				}
				values = append(values, arr.Value(j).ToTime())
			}
		}
		return table.NewDate(field.Name, values), nil
	case arrow.BOOL:
		var values []bool
		for _, rec := range records {
			arr := rec.Column(idx).(*array.Boolean)
			for j := 0; j < arr.Len(); j++ {
				values = append(values, arr.Value(j))
			}
		}
		return table.NewBool(field.Name, values), nil
	}
	return nil, fmt.Errorf("column %q: unsupported arrow type %s", field.Name, field.Type)
}
