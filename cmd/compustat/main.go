// Command compustat imports the Compustat short interest panel
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"datastorage/internal/analysis"
	"datastorage/internal/app"
	"datastorage/internal/datasets/compustat"
	"datastorage/internal/table"
)

func main() {
	flags := app.RegisterFlags(flag.CommandLine)
	flag.Parse()

	os.Exit(app.Run(flags.Options("compustat"), func(ctx context.Context, a *app.Application) error {
		res, err := a.ImportAndReport(ctx, os.Stdout, flags, compustat.Importers(a.Env)...)
		if err != nil {
			return err
		}
		t, ok := res.Tables[compustat.Dataset]
		if !ok {
			return nil
		}

		summary, err := compustat.Describe(t)
		if err != nil {
			return err
		}
		fmt.Printf("%d companies over %d dates, %s to %s\n", summary.Companies, summary.Dates,
			summary.First.Format(table.DateLayout), summary.Last.Format(table.DateLayout))

		if !flags.Plot {
			return nil
		}
		written, err := analysis.PlotShortInterest(a.Plotter, t)
		for _, path := range written {
			fmt.Println("plot written to", path)
		}
		return err
	}))
}
