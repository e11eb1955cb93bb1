package config

import "time"

// Application constants
const (
	AppName    = "datastorage"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable (DATASTORAGE_*)
	EnvPrefix = "DATASTORAGE"

	DefaultHTTPTimeout = 60 * time.Second
	DefaultLogFile     = "logs/datastorage.log"

	// StoreExtension is appended to container names on disk
	StoreExtension = ".tables"

	// CredentialFileName holds the Quandl API token
	CredentialFileName = "Quandl.token"

	TradingDaysPerYear  = 252
	CalendarDaysPerYear = 365
)

// Provider names, also used as their data directory names
const (
	ProviderCBOE          = "CBOE"
	ProviderCompustat     = "Compustat"
	ProviderCRSP          = "CRSP"
	ProviderQuandl        = "Quandl"
	ProviderOxfordMan     = "OxfordMan"
	ProviderOptionMetrics = "OptionMetrics"
)

// Surface risk-free rate sources
const (
	SurfaceRiskFreeCurve   = "curve"
	SurfaceRiskFreeForward = "forward"
)

// optionMetricsHomeDir is where the OptionMetrics archives live relative to $HOME
var optionMetricsHomeDir = []string{"Dropbox", "Research", "data", "OptionMetrics", "data"}
