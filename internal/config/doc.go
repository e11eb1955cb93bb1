// Package config provides centralized configuration management for the
// dataset importers. It loads configuration from defaults, an optional YAML
// file and environment variables, validates it, and resolves every
// filesystem path the importers touch.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file (-config flag or datastorage.yaml)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern DATASTORAGE_* for namespacing:
//
//	DATASTORAGE_LOGGING_LEVEL=debug
//	DATASTORAGE_PATHS_ROOT=/srv/research
//	DATASTORAGE_PATHS_OPTIONMETRICS_DIR=/mnt/optionmetrics
//	DATASTORAGE_FETCH_REQUESTS_PER_SECOND=0.5
//	DATASTORAGE_SOURCES_OPTIONMETRICS_INTERPOLATE_CURVE=true
//
// # Path Management
//
// Paths is the single source of truth for file locations. Each provider gets
// a ProviderPaths value that is passed explicitly into its importer:
//
//	paths, _ := config.GetPaths(cfg.Paths)
//	archive := paths.CRSP.RawPath("firm_returns.zip")
//	store := paths.CRSP.StorePath("firm_returns")
package config
