// Package table provides the in-memory dataset table shared by every
// importer: ordered, typed columns of equal length plus an optional primary
// key.
//
// Column kinds are float, int, string, date and bool. Dates are stored as
// calendar days at midnight UTC so that they can take part in keys and
// joins without time zone surprises. Missing values are NaN for floats, the
// empty string for strings and the zero time for dates; ints and bools
// cannot be missing.
//
// The operations cover what the transforms need and nothing more:
//
//	t.Filter(func(i int) bool { return price[i] > 0 })
//	t.DeriveFloat("value", func(i int) float64 { return shares[i] * price[i] })
//	t.Rename(map[string]string{"PRC": "price"})
//	t.SortBy("SIC", "CUSIP", "date")
//	t.GroupBy("SIC", "CUSIP", "year")
//	table.InnerJoin(surface, riskfree, "date")
//	table.Concat(rv1, rv2)
//	t.CheckUniqueKey()
//
// Operations return new tables and never mutate their receiver.
package table
