// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and environment variables.
// - External errors are wrapped with this package's sentinel errors.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// TablePath points at an override reference table (JSON or YAML).
	// Empty means the bundled table.
	TablePath string `koanf:"table_path"`

	// WatchTable reloads TablePath when the file changes.
	WatchTable bool `koanf:"watch_table"`

	// MaxAge rejects queries above this age.
	MaxAge int `koanf:"max_age"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:   "info",
		LogFormat:  "text",
		Addr:       ":9080",
		TablePath:  "",
		WatchTable: false,
		MaxAge:     120,
	}
}
