// Command spxrvvix joins realized volatility with the CBOE SPX and VIX
// closes, charts the series and their autocorrelations, and optionally
// exports both frames
package main

import (
	"context"
	"flag"
	"os"

	"datastorage/internal/analysis"
	"datastorage/internal/app"
	"datastorage/internal/datasets/cboe"
	"datastorage/internal/datasets/oxfordman"
	"datastorage/internal/table"
)

func main() {
	flags := app.RegisterFlags(flag.CommandLine)
	lags := flag.Int("lags", analysis.DefaultLags, "autocorrelation horizon in days")
	flag.Parse()

	os.Exit(app.Run(flags.Options("spxrvvix"), func(ctx context.Context, a *app.Application) error {
		frame, err := analysis.LoadRVVIX(ctx, a.Env)
		if err != nil {
			return err
		}
		acf, err := analysis.ACFTable(frame, *lags, cboe.VIX+"^2", oxfordman.RV+"^2", analysis.LogReturn)
		if err != nil {
			return err
		}

		for _, t := range []*table.Table{frame, acf} {
			if err := a.Report(os.Stdout, t, flags.Preview, flags.CSV); err != nil {
				return err
			}
		}
		if !flags.Plot {
			return nil
		}

		if _, err := a.Plotter.Panels("spx_logr.png", frame,
			analysis.Panel{Title: "S&P 500", Columns: []string{cboe.SPX}},
			analysis.Panel{Title: "Log return", Columns: []string{analysis.LogReturn}}); err != nil {
			return err
		}
		if _, err := a.Plotter.Panels("rv_vix.png", frame,
			analysis.Panel{Title: "Realized and implied volatility", Columns: []string{oxfordman.RV, cboe.VIX}},
			analysis.Panel{Title: "Variance premium", Columns: []string{analysis.Difference}}); err != nil {
			return err
		}
		_, err = a.Plotter.ACF("acf.png", acf)
		return err
	}))
}
