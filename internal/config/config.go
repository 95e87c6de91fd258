// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Ingest   IngestConfig
	Install  InstallConfig
	Export   ExportConfig
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
}

// IngestConfig holds file loading settings.
type IngestConfig struct {
	// DefaultPath is offered when the interactive prompt is left empty
	DefaultPath string `envconfig:"INGEST_DEFAULT_PATH" default:"data/MOCK_DATA.csv"`

	// Delimiter is the field separator for delimited files (default: ",")
	Delimiter string `envconfig:"INGEST_DELIMITER" default:","`

	// PreviewRows is the number of rows shown by head and tail (default: 5)
	PreviewRows int `envconfig:"INGEST_PREVIEW_ROWS" default:"5"`
}

// DelimiterRune returns the configured delimiter as a rune.
func (c IngestConfig) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

// InstallConfig holds settings for installing missing optional engines.
type InstallConfig struct {
	// Enabled allows the tool to run the host package manager (default: true)
	Enabled bool `envconfig:"INSTALL_ENABLED" default:"true"`

	// Command is the package manager invocation; the package name is appended
	Command string `envconfig:"INSTALL_COMMAND" default:"apt-get install -y"`

	// Timeout bounds the package manager run; 0 means no timeout
	Timeout time.Duration `envconfig:"INSTALL_TIMEOUT" default:"0s"`

	// XLSPackage is the package providing the legacy .xls converter
	XLSPackage string `envconfig:"INSTALL_XLS_PACKAGE" default:"libreoffice"`

	// XLSConverter is the converter binary looked up on PATH
	XLSConverter string `envconfig:"INSTALL_XLS_CONVERTER" default:"soffice"`
}

// CommandArgs splits Command into program and arguments.
func (c InstallConfig) CommandArgs() []string {
	return strings.Fields(c.Command)
}

// ExportConfig holds settings for writing cleaned copies.
type ExportConfig struct {
	// Dir is where exported files are written; empty means the working directory
	Dir string `envconfig:"EXPORT_DIR"`
}

// ServerConfig holds HTTP server settings for the serve command.
type ServerConfig struct {
	// Host is the interface to bind to (default: 127.0.0.1)
	Host string `envconfig:"SERVER_HOST" default:"127.0.0.1"`

	// Port is the port to listen on (default: 8080)
	Port int `envconfig:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 60s)
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 5m)
	RequestTimeout time.Duration `envconfig:"SERVER_REQUEST_TIMEOUT" default:"5m"`

	// MaxConcurrentLoads is the maximum number of API requests loading files at once (default: 4)
	MaxConcurrentLoads int `envconfig:"SERVER_MAX_CONCURRENT_LOADS" default:"4"`

	// LoadWait is how long a request waits for a load slot before a 429 (default: 30s)
	LoadWait time.Duration `envconfig:"SERVER_LOAD_WAIT" default:"30s"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// DatabaseConfig holds the optional PostgreSQL export target.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. Empty disables the postgres format.
	// DB_URL is accepted as a fallback.
	URL string `envconfig:"DATABASE_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `envconfig:"DB_MAX_CONNS" default:"4"`
}

// Enabled reports whether a database target is configured.
func (c DatabaseConfig) Enabled() bool { return c.URL != "" }

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: warn)
	Level string `envconfig:"LOG_LEVEL" default:"warn"`

	// Format is the log format: text or json (default: text)
	Format string `envconfig:"LOG_FORMAT" default:"text"`
}
