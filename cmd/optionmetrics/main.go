// Command optionmetrics imports OptionMetrics dividends, yield curves,
// standardized options and the implied volatility surface
package main

import (
	"context"
	"flag"
	"os"

	"datastorage/internal/app"
	"datastorage/internal/datasets/optionmetrics"
)

func main() {
	flags := app.RegisterFlags(flag.CommandLine)
	flag.Parse()

	os.Exit(app.Run(flags.Options("optionmetrics"), func(ctx context.Context, a *app.Application) error {
		res, err := a.ImportAndReport(ctx, os.Stdout, flags, optionmetrics.Importers(a.Env)...)
		if err != nil || !flags.Plot {
			return err
		}
		if t, ok := res.Tables[optionmetrics.RiskFree]; ok {
			_, err = a.Plotter.Series("riskfree.png", "Risk-free rate", t, optionmetrics.RiskFree)
		}
		return err
	}))
}
