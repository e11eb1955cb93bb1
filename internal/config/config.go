package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete importer configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Fetch     FetchConfig     `yaml:"fetch" envconfig:"FETCH"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Sources   SourcesConfig   `yaml:"sources" envconfig:"SOURCES"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration.
// Empty values fall back to locations derived from Root.
type PathsConfig struct {
	Root             string `yaml:"root" envconfig:"ROOT"`
	DataDir          string `yaml:"data_dir" envconfig:"DATA_DIR"`
	LogsDir          string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
	PlotsDir         string `yaml:"plots_dir" envconfig:"PLOTS_DIR"`
	ExportsDir       string `yaml:"exports_dir" envconfig:"EXPORTS_DIR"`
	OptionMetricsDir string `yaml:"optionmetrics_dir" envconfig:"OPTIONMETRICS_DIR"`
	QuandlToken      string `yaml:"quandl_token" envconfig:"QUANDL_TOKEN"`
	MetricsFile      string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// FetchConfig controls remote downloads
type FetchConfig struct {
	Timeout           time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`
	UserAgent         string        `yaml:"user_agent" envconfig:"USER_AGENT" validate:"required"`
	RequestsPerSecond float64       `yaml:"requests_per_second" envconfig:"REQUESTS_PER_SECOND" validate:"gt=0"`
	Burst             int           `yaml:"burst" envconfig:"BURST" validate:"min=1"`
}

// TelemetryConfig controls tracing and metrics
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	TraceExporter  string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
}

// SourcesConfig describes where every provider's raw files come from
type SourcesConfig struct {
	CBOE          CBOESource          `yaml:"cboe" envconfig:"CBOE"`
	Compustat     CompustatSource     `yaml:"compustat" envconfig:"COMPUSTAT"`
	CRSP          CRSPSource          `yaml:"crsp" envconfig:"CRSP"`
	Quandl        QuandlSource        `yaml:"quandl" envconfig:"QUANDL"`
	OxfordMan     OxfordManSource     `yaml:"oxfordman" envconfig:"OXFORDMAN"`
	OptionMetrics OptionMetricsSource `yaml:"optionmetrics" envconfig:"OPTIONMETRICS"`
}

// CBOESource is the daily price history workbook
type CBOESource struct {
	URL      string `yaml:"url" envconfig:"URL" validate:"required,url"`
	File     string `yaml:"file" envconfig:"FILE" validate:"required"`
	Sheet    string `yaml:"sheet" envconfig:"SHEET" validate:"required"`
	SkipRows int    `yaml:"skip_rows" envconfig:"SKIP_ROWS" validate:"min=0"`
}

// CompustatSource is the pre-placed short interest archive
type CompustatSource struct {
	Archive string `yaml:"archive" envconfig:"ARCHIVE" validate:"required"`
}

// CRSPSource is the pre-placed monthly firm returns archive
type CRSPSource struct {
	Archive  string `yaml:"archive" envconfig:"ARCHIVE" validate:"required"`
	SkipRows int    `yaml:"skip_rows" envconfig:"SKIP_ROWS" validate:"min=0"`
}

// QuandlSource configures the token-authenticated series API and
// the Fama-French factor archive
type QuandlSource struct {
	BaseURL           string `yaml:"base_url" envconfig:"BASE_URL" validate:"required,url"`
	SPXCode           string `yaml:"spx_code" envconfig:"SPX_CODE" validate:"required"`
	VIXCode           string `yaml:"vix_code" envconfig:"VIX_CODE" validate:"required"`
	Column            string `yaml:"column" envconfig:"COLUMN" validate:"required"`
	FamaFrenchURL     string `yaml:"fama_french_url" envconfig:"FAMA_FRENCH_URL" validate:"required,url"`
	FamaFrenchArchive string `yaml:"fama_french_archive" envconfig:"FAMA_FRENCH_ARCHIVE" validate:"required"`
}

// OxfordManSource names the two realized volatility archives
type OxfordManSource struct {
	LibraryURL      string `yaml:"library_url" envconfig:"LIBRARY_URL" validate:"omitempty,url"`
	IndicesURL      string `yaml:"indices_url" envconfig:"INDICES_URL" validate:"omitempty,url"`
	LibraryArchive  string `yaml:"library_archive" envconfig:"LIBRARY_ARCHIVE" validate:"required"`
	LibraryColumn   string `yaml:"library_column" envconfig:"LIBRARY_COLUMN" validate:"required"`
	IndicesArchive  string `yaml:"indices_archive" envconfig:"INDICES_ARCHIVE" validate:"required"`
	IndicesColumn   string `yaml:"indices_column" envconfig:"INDICES_COLUMN" validate:"required"`
	AnnualizeFactor int    `yaml:"annualize_factor" envconfig:"ANNUALIZE_FACTOR" validate:"gt=0"`
}

// OptionMetricsSource names the option data archives and surface settings
type OptionMetricsSource struct {
	DividendArchive   string  `yaml:"dividend_archive" envconfig:"DIVIDEND_ARCHIVE" validate:"required"`
	YieldArchive      string  `yaml:"yield_archive" envconfig:"YIELD_ARCHIVE" validate:"required"`
	StdOptionsArchive string  `yaml:"std_options_archive" envconfig:"STD_OPTIONS_ARCHIVE" validate:"required"`
	SurfaceArchive    string  `yaml:"surface_archive" envconfig:"SURFACE_ARCHIVE" validate:"required"`
	InterpolateCurve  bool    `yaml:"interpolate_curve" envconfig:"INTERPOLATE_CURVE"`
	MaxRiskFree       float64 `yaml:"max_riskfree" envconfig:"MAX_RISKFREE" validate:"gt=0"`
	SurfaceWeekday    string  `yaml:"surface_weekday" envconfig:"SURFACE_WEEKDAY" validate:"oneof=Monday Tuesday Wednesday Thursday Friday"`
	SurfaceMaxDays    int     `yaml:"surface_max_days" envconfig:"SURFACE_MAX_DAYS" validate:"gt=0"`
	OutOfTheMoney     bool    `yaml:"out_of_the_money" envconfig:"OUT_OF_THE_MONEY"`
	// SurfaceRiskFree selects the surface discount rate: "curve" uses the
	// risk-free table net of dividends, "forward" infers it from forwards
	SurfaceRiskFree   string  `yaml:"surface_riskfree" envconfig:"SURFACE_RISKFREE" validate:"oneof=curve forward"`
}

// Load builds the configuration from defaults, an optional YAML file and
// DATASTORAGE_* environment variables, in increasing order of precedence.
// An empty configFile searches the well-known locations.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Fields carry no default tags, so unset variables leave file values intact
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML values onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks struct constraints and normalizes logging settings
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	// JSON lines only
	c.Logging.Format = "json"
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"datastorage.yaml",
		"configs/datastorage.yaml",
		"../configs/datastorage.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: DefaultLogFile,
		},
		Fetch: FetchConfig{
			Timeout:           DefaultHTTPTimeout,
			UserAgent:         AppName + "/" + AppVersion,
			RequestsPerSecond: 1,
			Burst:             1,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppName,
			TraceExporter:  "none",
			MetricsEnabled: true,
		},
		Sources: SourcesConfig{
			CBOE: CBOESource{
				URL:      "http://www.cboe.com/micro/buywrite/dailypricehistory.xlsx",
				File:     "dailypricehistory.xlsx",
				Sheet:    "Daily",
				SkipRows: 4,
			},
			Compustat: CompustatSource{
				Archive: "short_int.zip",
			},
			CRSP: CRSPSource{
				Archive: "firm_returns.zip",
			},
			Quandl: QuandlSource{
				BaseURL:           "https://www.quandl.com/api/v3",
				SPXCode:           "YAHOO/INDEX_GSPC",
				VIXCode:           "YAHOO/INDEX_VIX",
				Column:            "Close",
				FamaFrenchURL:     "https://mba.tuck.dartmouth.edu/pages/faculty/ken.french/ftp/F-F_Research_Data_Factors_CSV.zip",
				FamaFrenchArchive: "F-F_Research_Data_Factors_CSV.zip",
			},
			OxfordMan: OxfordManSource{
				LibraryURL:      "http://realized.oxford-man.ox.ac.uk/media/950/realized.library.0.1.csv.zip",
				IndicesURL:      "http://realized.oxford-man.ox.ac.uk/media/1366/oxfordmanrealizedvolatilityindices.zip",
				LibraryArchive:  "realized.library.0.1.csv.zip",
				LibraryColumn:   "SPX_rv",
				IndicesArchive:  "oxfordmanrealizedvolatilityindices.zip",
				IndicesColumn:   "SPX2.rv",
				AnnualizeFactor: TradingDaysPerYear,
			},
			OptionMetrics: OptionMetricsSource{
				DividendArchive:   "SPX_dividend.zip",
				YieldArchive:      "yield_curve.zip",
				StdOptionsArchive: "SPX_standard_options.zip",
				SurfaceArchive:    "SPX_surface.zip",
				MaxRiskFree:       10,
				SurfaceWeekday:    "Wednesday",
				SurfaceMaxDays:    365,
				OutOfTheMoney:     true,
				SurfaceRiskFree:   SurfaceRiskFreeForward,
			},
		},
	}
}
