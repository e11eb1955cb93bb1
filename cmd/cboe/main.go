// Command cboe imports the CBOE daily SPX and VIX closes
package main

import (
	"context"
	"flag"
	"os"

	"datastorage/internal/analysis"
	"datastorage/internal/app"
	"datastorage/internal/datasets/cboe"
)

func main() {
	flags := app.RegisterFlags(flag.CommandLine)
	flag.Parse()

	os.Exit(app.Run(flags.Options("cboe"), func(ctx context.Context, a *app.Application) error {
		res, err := a.ImportAndReport(ctx, os.Stdout, flags, cboe.Importers(a.Env)...)
		if err != nil || !flags.Plot {
			return err
		}
		t, ok := res.Tables[cboe.Dataset]
		if !ok {
			return nil
		}
		_, err = a.Plotter.Panels("cboe.png", t,
			analysis.Panel{Title: "S&P 500", Columns: []string{cboe.SPX}},
			analysis.Panel{Title: "VIX", Columns: []string{cboe.VIX}})
		return err
	}))
}
