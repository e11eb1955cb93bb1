package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ProviderPaths locates one provider's data directory. Raw archives and
// persisted table containers live side by side in DataDir.
type ProviderPaths struct {
	Provider   string
	DataDir    string
	Credential string
}

// RawPath returns the path of a raw archive or spreadsheet
func (p ProviderPaths) RawPath(file string) string {
	return filepath.Join(p.DataDir, file)
}

// StorePath returns the path of a table container, adding StoreExtension
func (p ProviderPaths) StorePath(container string) string {
	if !strings.HasSuffix(container, StoreExtension) {
		container += StoreExtension
	}
	return filepath.Join(p.DataDir, container)
}

// Paths contains all the application paths
// This is the single source of truth for ALL file paths in the application
type Paths struct {
	Root        string
	DataDir     string
	LogsDir     string
	PlotsDir    string
	ExportsDir  string
	MetricsFile string

	CBOE          ProviderPaths
	Compustat     ProviderPaths
	CRSP          ProviderPaths
	Quandl        ProviderPaths
	OxfordMan     ProviderPaths
	OptionMetrics ProviderPaths
}

// GetPaths resolves every path from the configuration. Without an explicit
// root, paths are relative to the executable directory, never the current
// working directory.
//
//	<root>/
//	  ├── data/
//	  │   ├── CBOE/        dailypricehistory.xlsx, vix_spx.tables
//	  │   ├── Compustat/   short_int.zip, short_int.tables
//	  │   ├── CRSP/        firm_returns.zip, firm_returns.tables
//	  │   ├── Quandl/      Quandl.token, spx.tables, vix.tables, ff_factors.tables
//	  │   └── OxfordMan/   realized vol archives, realized_vol.tables
//	  ├── logs/
//	  ├── plots/
//	  └── exports/
//
// OptionMetrics lives under $HOME/Dropbox/Research/data/OptionMetrics/data
// unless configured.
func GetPaths(cfg PathsConfig) (*Paths, error) {
	root := cfg.Root
	if root == "" {
		exeDir, err := executableDir()
		if err != nil {
			return nil, err
		}
		root = exeDir
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
	}

	under := func(configured, def string) string {
		if configured == "" {
			return filepath.Join(root, def)
		}
		if filepath.IsAbs(configured) {
			return configured
		}
		return filepath.Join(root, configured)
	}

	dataDir := under(cfg.DataDir, "data")
	provider := func(name string) ProviderPaths {
		return ProviderPaths{Provider: name, DataDir: filepath.Join(dataDir, name)}
	}

	optionMetrics := ProviderPaths{Provider: ProviderOptionMetrics, DataDir: cfg.OptionMetricsDir}
	if optionMetrics.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		optionMetrics.DataDir = filepath.Join(append([]string{home}, optionMetricsHomeDir...)...)
	}

	quandl := provider(ProviderQuandl)
	quandl.Credential = cfg.QuandlToken
	if quandl.Credential == "" {
		quandl.Credential = filepath.Join(quandl.DataDir, CredentialFileName)
	}

	paths := &Paths{
		Root:          root,
		DataDir:       dataDir,
		LogsDir:       under(cfg.LogsDir, "logs"),
		PlotsDir:      under(cfg.PlotsDir, "plots"),
		ExportsDir:    under(cfg.ExportsDir, "exports"),
		CBOE:          provider(ProviderCBOE),
		Compustat:     provider(ProviderCompustat),
		CRSP:          provider(ProviderCRSP),
		Quandl:        quandl,
		OxfordMan:     provider(ProviderOxfordMan),
		OptionMetrics: optionMetrics,
	}
	if cfg.MetricsFile != "" {
		paths.MetricsFile = under(cfg.MetricsFile, "")
	}

	return paths, nil
}

func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %v", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}

	return filepath.Dir(exe), nil
}

// Providers returns every provider's paths in a stable order
func (p *Paths) Providers() []ProviderPaths {
	return []ProviderPaths{p.CBOE, p.Compustat, p.CRSP, p.Quandl, p.OxfordMan, p.OptionMetrics}
}

// Provider looks up a provider by name, case-insensitively
func (p *Paths) Provider(name string) (ProviderPaths, error) {
	for _, pp := range p.Providers() {
		if strings.EqualFold(pp.Provider, name) {
			return pp, nil
		}
	}
	return ProviderPaths{}, fmt.Errorf("unknown provider %q", name)
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{p.DataDir, p.LogsDir, p.PlotsDir, p.ExportsDir}
	for _, pp := range p.Providers() {
		directories = append(directories, pp.DataDir)
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
	}

	return nil
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// GetPlotPath returns the path for a chart image
func (p *Paths) GetPlotPath(filename string) string {
	return filepath.Join(p.PlotsDir, filename)
}

// GetExportPath returns the path for a CSV export
func (p *Paths) GetExportPath(filename string) string {
	return filepath.Join(p.ExportsDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs detailed path resolution information for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		return
	}

	providers := make([]any, 0, 6)
	for _, pp := range p.Providers() {
		providers = append(providers, slog.String(strings.ToLower(pp.Provider), pp.DataDir))
	}

	logger.Debug("Path resolution summary",
		slog.Group("directories",
			slog.String("root", p.Root),
			slog.String("data", p.DataDir),
			slog.String("logs", p.LogsDir),
			slog.String("plots", p.PlotsDir),
			slog.String("exports", p.ExportsDir),
		),
		slog.Group("providers", providers...),
		slog.Group("files",
			slog.String("quandl_token", p.Quandl.Credential),
			slog.Bool("quandl_token_exists", FileExists(p.Quandl.Credential)),
			slog.String("metrics", p.MetricsFile),
		))
}
