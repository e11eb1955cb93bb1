package app

import (
	"context"
	"flag"
	"io"
	"strings"

	"datastorage/internal/datasets"
)

// Flags are the options shared by every command
type Flags struct {
	ConfigFile string
	Download   bool
	Only       string
	Plot       bool
	Preview    int
	CSV        bool
}

// RegisterFlags defines the shared flags on fs
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.ConfigFile, "config", "", "YAML configuration file (defaults to the well-known locations)")
	fs.BoolVar(&f.Download, "download", false, "download remote sources before parsing")
	fs.StringVar(&f.Only, "only", "", "comma-separated datasets to import (default all)")
	fs.BoolVar(&f.Plot, "plot", false, "write charts to the plots directory")
	fs.IntVar(&f.Preview, "preview", 0, "print the first N rows of each table")
	fs.BoolVar(&f.CSV, "csv", false, "export each table as CSV to the exports directory")
	return f
}

// Options returns the application options for command
func (f *Flags) Options(command string) Options {
	return Options{Command: command, ConfigFile: f.ConfigFile, Download: f.Download}
}

// Datasets splits -only into dataset names
func (f *Flags) Datasets() []string {
	var out []string
	for _, name := range strings.Split(f.Only, ",") {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// ImportAndReport imports with the -only selection and reports every table
// produced, in importer order
func (a *Application) ImportAndReport(ctx context.Context, w io.Writer, f *Flags, importers ...datasets.Importer) (*datasets.Result, error) {
	res, err := a.Import(ctx, f.Datasets(), importers...)
	if err != nil {
		return res, err
	}
	for _, imp := range importers {
		t, ok := res.Tables[imp.Dataset()]
		if !ok {
			continue
		}
		if err := a.Report(w, t, f.Preview, f.CSV); err != nil {
			return res, err
		}
	}
	return res, nil
}
