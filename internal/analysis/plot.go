package analysis

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"datastorage/internal/config"
	apperrors "datastorage/internal/errors"
	"datastorage/internal/files"
	"datastorage/internal/table"
)

// Default chart geometry
const (
	chartWidth  = 8 * vg.Inch
	panelHeight = 3 * vg.Inch
)

// Panel is one chart of a stacked figure: every column shares the date axis
type Panel struct {
	Title   string
	Columns []string
}

// Plotter renders tables as PNG charts in the plots directory
type Plotter struct {
	paths  *config.Paths
	files  *files.Manager
	logger *slog.Logger
}

// NewPlotter creates a plotter writing under paths.PlotsDir
func NewPlotter(paths *config.Paths, fm *files.Manager, logger *slog.Logger) *Plotter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Plotter{paths: paths, files: fm, logger: logger.With("component", "plotter")}
}

// Series draws the named columns of t against its date column in a single
// chart and returns the file written
func (p *Plotter) Series(file, title string, t *table.Table, columns ...string) (string, error) {
	return p.Panels(file, t, Panel{Title: title, Columns: columns})
}

// Panels stacks one chart per panel, sharing the date axis, and returns the
// file written
func (p *Plotter) Panels(file string, t *table.Table, panels ...Panel) (string, error) {
	if len(panels) == 0 {
		return "", apperrors.NewTransformError("no panels to plot", nil).WithContext("file", file)
	}
	dates, err := t.Dates("date")
	if err != nil {
		return "", apperrors.NewTransformError("missing date column", err).WithContext("table", t.Name())
	}

	plots := make([][]*plot.Plot, len(panels))
	for k, panel := range panels {
		chart := newChart(panel.Title)
		chart.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}
		for j, name := range panel.Columns {
			values, err := numeric(t, name)
			if err != nil {
				return "", apperrors.NewTransformError("cannot plot column", err).
					WithContext("table", t.Name()).WithContext("column", name)
			}
			if err := addLine(chart, name, j, dateXYs(dates, values)); err != nil {
				return "", err
			}
		}
		plots[k] = []*plot.Plot{chart}
	}

	return p.write(file, func(w io.Writer) error {
		img := vgimg.New(chartWidth, panelHeight*vg.Length(len(plots)))
		dc := draw.New(img)
		tiles := draw.Tiles{Rows: len(plots), Cols: 1, PadY: vg.Millimeter * 2}
		canvases := plot.Align(plots, tiles, dc)
		for k := range plots {
			plots[k][0].Draw(canvases[k][0])
		}
		png := vgimg.PngCanvas{Canvas: img}
		_, err := png.WriteTo(w)
		return err
	})
}

// ACF draws every autocorrelation column of an ACFTable result against lag
func (p *Plotter) ACF(file string, acf *table.Table) (string, error) {
	lags, err := acf.Ints("lag")
	if err != nil {
		return "", apperrors.NewTransformError("missing lag column", err)
	}

	chart := newChart("")
	chart.X.Label.Text = "Lags, days"
	for j, c := range acf.Columns() {
		if c.Name() == "lag" {
			continue
		}
		xy := make(plotter.XYs, len(lags))
		for i, l := range lags {
			xy[i] = plotter.XY{X: float64(l), Y: c.Floats()[i]}
		}
		if err := addLine(chart, c.Name(), j-1, xy); err != nil {
			return "", err
		}
	}

	wt, err := chart.WriterTo(chartWidth*3/4, panelHeight*4/3, "png")
	if err != nil {
		return "", fmt.Errorf("failed to render chart: %w", err)
	}
	return p.write(file, func(w io.Writer) error {
		_, err := wt.WriteTo(w)
		return err
	})
}

func (p *Plotter) write(file string, render func(w io.Writer) error) (string, error) {
	path := p.paths.GetPlotPath(file)
	if err := p.files.WriteAtomic(path, render); err != nil {
		return "", apperrors.NewStorageError("failed to write chart", err).WithContext("path", path)
	}
	p.logger.Info("Chart written", slog.String("path", path))
	return path, nil
}

func newChart(title string) *plot.Plot {
	chart := plot.New()
	chart.Title.Text = title
	chart.Legend.Top = true
	chart.Add(plotter.NewGrid())
	return chart
}

func addLine(chart *plot.Plot, name string, idx int, xy plotter.XYs) error {
	line, err := plotter.NewLine(xy)
	if err != nil {
		return apperrors.NewTransformError("cannot plot series", err).WithContext("series", name)
	}
	line.LineStyle.Color = plotutil.Color(idx)
	line.LineStyle.Width = vg.Points(1)
	chart.Add(line)
	chart.Legend.Add(name, line)
	return nil
}

// dateXYs pairs dates with values, skipping missing values
// numeric returns a float column, or an int column converted to floats
func numeric(t *table.Table, name string) ([]float64, error) {
	ints, err := t.Ints(name)
	if err != nil {
		return t.Floats(name)
	}
	out := make([]float64, len(ints))
	for i, v := range ints {
		out[i] = float64(v)
	}
	return out, nil
}

func dateXYs(dates []time.Time, values []float64) plotter.XYs {
	xy := make(plotter.XYs, 0, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		xy = append(xy, plotter.XY{X: float64(dates[i].Unix()), Y: v})
	}
	return xy
}
