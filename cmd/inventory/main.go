// Command inventory lists, per provider, the raw archives on disk with
// their payload files and the tables stored in each container
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"datastorage/internal/app"
	"datastorage/internal/exporter"
)

func main() {
	flags := app.RegisterFlags(flag.CommandLine)
	flag.Parse()

	os.Exit(app.Run(flags.Options("inventory"), func(ctx context.Context, a *app.Application) error {
		var records [][]string
		for _, p := range a.Paths.Providers() {
			rows, err := inventory(ctx, a.Env, p)
			if err != nil {
				return err
			}
			records = append(records, rows...)
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.ToUpper(strings.Join(headers, "\t")))
		for _, r := range records {
			fmt.Fprintln(tw, strings.Join(r, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		if !flags.CSV {
			return nil
		}
		return a.Exporter.WriteCSV("inventory.csv", exporter.WriteOptions{Headers: headers, Records: records})
	}))
}
