// Command crsp imports CRSP monthly firm returns and compounds them into
// annual returns
package main

import (
	"context"
	"flag"
	"os"

	"datastorage/internal/app"
	"datastorage/internal/datasets/crsp"
)

func main() {
	flags := app.RegisterFlags(flag.CommandLine)
	flag.Parse()

	os.Exit(app.Run(flags.Options("crsp"), func(ctx context.Context, a *app.Application) error {
		_, err := a.ImportAndReport(ctx, os.Stdout, flags, crsp.Importers(a.Env)...)
		if err == nil && flags.Plot {
			// annual returns are a firm panel with no date axis
			a.Logger.WarnContext(ctx, "No chart for annual returns")
		}
		return err
	}))
}
