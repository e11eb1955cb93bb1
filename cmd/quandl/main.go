// Command quandl imports the SPX and VIX series and the Fama-French factors
package main

import (
	"context"
	"flag"
	"os"

	"datastorage/internal/app"
	"datastorage/internal/datasets/quandl"
)

func main() {
	flags := app.RegisterFlags(flag.CommandLine)
	flag.Parse()

	os.Exit(app.Run(flags.Options("quandl"), func(ctx context.Context, a *app.Application) error {
		res, err := a.ImportAndReport(ctx, os.Stdout, flags, quandl.Importers(a.Env)...)
		if err != nil || !flags.Plot {
			return err
		}
		for _, name := range []string{quandl.SPX, quandl.VIX} {
			t, ok := res.Tables[name]
			if !ok {
				continue
			}
			if _, err := a.Plotter.Series("quandl_"+name+".png", name, t, name); err != nil {
				return err
			}
		}
		return nil
	}))
}
