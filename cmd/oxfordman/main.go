// Command oxfordman imports Oxford-Man realized volatility of the S&P 500
package main

import (
	"context"
	"flag"
	"os"

	"datastorage/internal/app"
	"datastorage/internal/datasets/oxfordman"
)

func main() {
	flags := app.RegisterFlags(flag.CommandLine)
	flag.Parse()

	os.Exit(app.Run(flags.Options("oxfordman"), func(ctx context.Context, a *app.Application) error {
		res, err := a.ImportAndReport(ctx, os.Stdout, flags, oxfordman.Importers(a.Env)...)
		if err != nil || !flags.Plot {
			return err
		}
		if t, ok := res.Tables[oxfordman.Dataset]; ok {
			_, err = a.Plotter.Series("oxfordman.png", "Realized volatility", t, oxfordman.RV)
		}
		return err
	}))
}
