// Package fetch retrieves remote provider files.
//
// Fetcher performs plain HTTP GETs paced by a rate limiter and writes
// downloads atomically. QuandlClient wraps the token-authenticated Quandl
// dataset API and returns series as tables.
package fetch
