// Package analysis composes persisted datasets without storing the result.
//
// RVVIX joins realized volatility with the CBOE index levels and derives
// SPX log returns and the RV-VIX spread. ACF and ACFTable compute sample
// autocorrelations for the volatility persistence study. CompanyCounts,
// MeanShortInterest and Window summarize the short interest table. Plotter
// renders any of these, or a plain dataset, as PNG charts.
package analysis
