package config

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/kelseyhightower/envconfig"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}

	// Nested structs get a prefixed key (INGEST_INGEST_DELIMITER); the
	// envconfig tag is looked up as the alternate name, so the short
	// names documented on each field are the ones users set.
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = os.Getenv("DB_URL")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Ingest validation
	if utf8.RuneCountInString(c.Ingest.Delimiter) != 1 {
		errs = append(errs, fmt.Sprintf("INGEST_DELIMITER (%q) must be a single character", c.Ingest.Delimiter))
	} else if d := c.Ingest.DelimiterRune(); d == '"' || d == '\r' || d == '\n' || d == utf8.RuneError {
		errs = append(errs, fmt.Sprintf("INGEST_DELIMITER (%q) is not a valid separator", c.Ingest.Delimiter))
	}
	if c.Ingest.PreviewRows < 0 {
		errs = append(errs, "INGEST_PREVIEW_ROWS must be non-negative")
	}

	// Install validation
	if c.Install.Enabled && len(c.Install.CommandArgs()) == 0 {
		errs = append(errs, "INSTALL_COMMAND is required when INSTALL_ENABLED is true")
	}
	if c.Install.Timeout < 0 {
		errs = append(errs, "INSTALL_TIMEOUT must be non-negative")
	}
	if c.Install.XLSConverter == "" {
		errs = append(errs, "INSTALL_XLS_CONVERTER must not be empty")
	}

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.MaxConcurrentLoads < 1 {
		errs = append(errs, fmt.Sprintf("SERVER_MAX_CONCURRENT_LOADS (%d) must be at least 1", c.Server.MaxConcurrentLoads))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	// Database validation
	if c.Database.Enabled() && c.Database.MaxConns <= 0 {
		errs = append(errs, "DB_MAX_CONNS must be positive")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// The database URL is masked.
func (c *Config) String() string {
	dbURL := ""
	if c.Database.Enabled() {
		dbURL = "[MASKED]"
	}

	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Ingest: {DefaultPath: %q, Delimiter: %q, PreviewRows: %d}, ",
		c.Ingest.DefaultPath, c.Ingest.Delimiter, c.Ingest.PreviewRows)
	fmt.Fprintf(&b, "Install: {Enabled: %v, Command: %q, Timeout: %s}, ",
		c.Install.Enabled, c.Install.Command, c.Install.Timeout)
	fmt.Fprintf(&b, "Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port)
	fmt.Fprintf(&b, "Database: {URL: %s, MaxConns: %d}, ", dbURL, c.Database.MaxConns)
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}
