// Package app wires configuration, logging, telemetry and the dataset
// environment for the command line importers.
//
// Every command under cmd/ follows the same shape:
//
//	os.Exit(app.Run(app.Options{Command: "cboe", ConfigFile: *configFile}, func(ctx context.Context, a *app.Application) error {
//		_, err := a.Import(ctx, only, cboe.Importers(a.Env)...)
//		return err
//	}))
//
// Run cancels the context on SIGINT or SIGTERM, writes the metrics textfile
// on the way out, and maps a failed run to exit code 1.
package app
