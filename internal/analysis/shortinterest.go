package analysis

import (
	"log/slog"
	"time"

	apperrors "datastorage/internal/errors"
	"datastorage/internal/table"
)

// CompanyCounts returns the number of distinct companies reporting short
// interest on each date, as (date, companies)
func CompanyCounts(shortInt *table.Table) (*table.Table, error) {
	groups, err := shortInt.GroupBy("date")
	if err != nil {
		return nil, apperrors.NewTransformError("failed to group by date", err)
	}
	counts, err := groups.CountDistinct("gvkey", "companies")
	if err != nil {
		return nil, apperrors.NewTransformError("missing gvkey column", err)
	}
	out, err := groups.Aggregate(counts)
	if err != nil {
		return nil, apperrors.NewTransformError("failed to assemble company counts", err)
	}
	return out.WithName("company_counts"), nil
}

// MeanShortInterest averages short interest across companies on each date,
// ignoring missing values, as (date, short_int)
func MeanShortInterest(shortInt *table.Table) (*table.Table, error) {
	groups, err := shortInt.GroupBy("date")
	if err != nil {
		return nil, apperrors.NewTransformError("failed to group by date", err)
	}
	mean, err := groups.Float("short_int", table.Mean)
	if err != nil {
		return nil, apperrors.NewTransformError("missing short_int column", err)
	}
	out, err := groups.Aggregate(mean)
	if err != nil {
		return nil, apperrors.NewTransformError("failed to assemble means", err)
	}
	return out.WithName("mean_short_int"), nil
}

// Window keeps rows whose date lies in [from, to]. A zero bound is open.
func Window(t *table.Table, from, to time.Time) (*table.Table, error) {
	dates, err := t.Dates("date")
	if err != nil {
		return nil, apperrors.NewTransformError("missing date column", err)
	}
	from, to = table.Normalize(from), table.Normalize(to)
	return t.Filter(func(i int) bool {
		d := dates[i]
		return (from.IsZero() || !d.Before(from)) && (to.IsZero() || !d.After(to))
	}), nil
}

// Period is a date window charted on its own. A zero bound is open.
type Period struct {
	Suffix   string
	Title    string
	From, To time.Time
}

// Short interest sub-periods charted besides the full history
var (
	PeriodTo2004 = Period{Suffix: "to2004", Title: "to 2004", To: table.Day(2004, 12, 31)}
	PeriodPilot  = Period{Suffix: "2006_2007", Title: "2006 to mid 2007", From: table.Day(2006, 1, 1), To: table.Day(2007, 6, 30)}
)

// PlotShortInterest charts company counts over the full history and the
// pilot period, and mean short interest over the full history, up to 2004
// and the pilot period. Empty windows are skipped. It returns the files
// written.
func PlotShortInterest(p *Plotter, shortInt *table.Table) ([]string, error) {
	counts, err := CompanyCounts(shortInt)
	if err != nil {
		return nil, err
	}
	mean, err := MeanShortInterest(shortInt)
	if err != nil {
		return nil, err
	}

	charts := []struct {
		name, title, column string
		t                   *table.Table
		periods             []Period
	}{
		{"compustat_companies", "Companies reporting short interest", "companies", counts, []Period{PeriodPilot}},
		{"compustat_short_int", "Mean short interest", "short_int", mean, []Period{PeriodTo2004, PeriodPilot}},
	}

	var written []string
	for _, c := range charts {
		path, err := p.Series(c.name+".png", c.title, c.t, c.column)
		if err != nil {
			return written, err
		}
		written = append(written, path)

		for _, period := range c.periods {
			w, err := Window(c.t, period.From, period.To)
			if err != nil {
				return written, err
			}
			if w.NumRows() == 0 {
				p.logger.Debug("Empty plot window skipped",
					slog.String("chart", c.name),
					slog.String("period", period.Suffix))
				continue
			}
			path, err := p.Series(c.name+"_"+period.Suffix+".png", c.title+", "+period.Title, w, c.column)
			if err != nil {
				return written, err
			}
			written = append(written, path)
		}
	}
	return written, nil
}
