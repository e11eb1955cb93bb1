// Package datasets holds what every dataset importer shares: the Env with
// paths, store, fetcher and telemetry, the Importer contract of four steps
// (fetch, parse, transform, persist) and the adapter that turns importers
// into operations steps.
//
// Dataset packages live underneath, one per provider:
//
//	cboe          vix_spx
//	compustat     short_int
//	crsp          returns
//	quandl        spx, vix, ff_factors
//	oxfordman     realized_vol
//	optionmetrics dividends, yields, riskfree, std_options, surface
//
// A typical command builds the importers of one provider and runs them:
//
//	resp, err := datasets.Import(ctx, env, only, crsp.Importers(env)...)
//
// Imports stop at the first failing step; the remaining steps are skipped.
package datasets
