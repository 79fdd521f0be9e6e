// Package config provides centralized configuration management for the application.
// It loads configuration from an optional YAML file and environment variables
// with sensible defaults, and validates all settings on startup to fail fast on
// misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// Every setting can be configured via environment variables, which take
// precedence over the configuration file.
type Config struct {
	Paths      PathsConfig      `yaml:"paths"`
	Validation ValidationConfig `yaml:"validation"`
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Watch      WatchConfig      `yaml:"watch"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// PathsConfig locates the validation inputs and the error report.
type PathsConfig struct {
	// Index is the global label index (default: index.tsv)
	Index string `yaml:"index" env:"MRO_INDEX" default:"index.tsv"`

	// IEDB is the IEDB cross-reference table (default: <TemplateDir>/iedb.tsv)
	IEDB string `yaml:"iedb" env:"MRO_IEDB"`

	// TemplateDir holds external.tsv and the ontology tables (default: ontology)
	TemplateDir string `yaml:"template_dir" env:"MRO_TEMPLATE_DIR" default:"ontology"`

	// Report is where the error report is written (default: build/mro-errors.tsv)
	Report string `yaml:"report" env:"MRO_REPORT" default:"build/mro-errors.tsv"`
}

// ValidationConfig holds run settings.
type ValidationConfig struct {
	// Concurrency is how many tables of one stage run at once (default: 4)
	Concurrency int `yaml:"concurrency" env:"MRO_CONCURRENCY" default:"4"`

	// Format is the report format: tsv, json or yaml (default: tsv)
	Format string `yaml:"format" env:"MRO_REPORT_FORMAT" default:"tsv"`

	// Timeout bounds a single run (default: 5m)
	Timeout time.Duration `yaml:"timeout" env:"MRO_TIMEOUT" default:"5m"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `yaml:"host" env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `yaml:"port" env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 60s)
	WriteTimeout time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `yaml:"request_timeout" env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// forwarding headers are honoured
	TrustedProxies []string `yaml:"trusted_proxies" env:"TRUSTED_PROXIES"`
}

// DatabaseConfig holds run-history database settings.
// History is disabled when URL is empty.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `yaml:"url" env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `yaml:"max_conns" env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `yaml:"min_conns" env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// Enabled reports whether run history is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// WatchConfig holds watch-mode settings.
type WatchConfig struct {
	// Debounce is how long changes settle before a re-run (default: 500ms)
	Debounce time.Duration `yaml:"debounce" env:"MRO_WATCH_DEBOUNCE" default:"500ms"`

	// Patterns are doublestar globs of files that trigger a re-run (default: **/*.tsv)
	Patterns []string `yaml:"patterns" env:"MRO_WATCH_PATTERNS" default:"**/*.tsv"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `yaml:"level" env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `yaml:"format" env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
