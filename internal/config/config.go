// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file, a dotenv file and the environment on top.
// - Errors returned by Load wrap this package's sentinel kinds.
package config

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Store selects the patient backend: memory or postgres.
	Store string `koanf:"store"`

	// FixturesPath points to a YAML or JSON patient file for the memory
	// store. Demo patients are served when empty.
	FixturesPath string `koanf:"fixtures_path"`

	// DatabaseURL is the PostgreSQL connection string for the postgres store.
	DatabaseURL string `koanf:"database_url"`

	// DBMaxConns caps the PostgreSQL pool size.
	DBMaxConns int32 `koanf:"db_max_conns"`

	// Locale is the BCP 47 tag used for numbers and casing, e.g. "en-US".
	Locale string `koanf:"locale"`

	// Timezone is the IANA zone dates are shown in, e.g. "UTC".
	Timezone string `koanf:"timezone"`

	// Hour24 renders date-times with a 24-hour clock.
	Hour24 bool `koanf:"hour24"`

	// FallbackProgress shows demo progress entries for patients without any.
	FallbackProgress bool `koanf:"fallback_progress"`

	// MaxPatientList caps GET /patients.
	MaxPatientList int `koanf:"max_patient_list"`

	// MetricsEnabled turns Prometheus recording on or off. Collectors stay
	// registered either way.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsNamespace and MetricsSubsystem prefix every metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`

	// MetricsBuckets overrides the latency histogram buckets (milliseconds).
	MetricsBuckets []float64 `koanf:"metrics_buckets"`

	// MetricsLabels are constant labels added to every metric.
	MetricsLabels map[string]string `koanf:"metrics_labels"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		Store:            StoreMemory,
		DBMaxConns:       10,
		Locale:           "en-US",
		Timezone:         "Local",
		Hour24:           false,
		FallbackProgress: false,
		MaxPatientList:   100,
		MetricsEnabled:   true,
		MetricsNamespace: "skinalyze",
		MetricsSubsystem: "dashboard",
	}
}
