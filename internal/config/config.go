// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import "time"

// Store names accepted by STORE_PRIMARY and STORE_SECONDARY.
const (
	StoreRemote = "remote"
	StoreSheet  = "sheet"
	StoreLocal  = "local"
	StoreNone   = "none"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Import   ImportConfig
	Storage  StorageConfig
	Sheet    SheetConfig
	Local    LocalConfig
	Payslip  PayslipConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds PostgreSQL settings for the remote document store.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. Required when a store role is "remote".
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 0)
	MinConns int `env:"DB_MIN_CONNS" default:"0"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// ImportConfig holds payroll import settings.
type ImportConfig struct {
	// MaxFileSize is the maximum allowed file size in bytes (default: 20MB)
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" default:"20971520"`

	// MaxConcurrent is the maximum number of parallel imports (default: 4)
	MaxConcurrent int `env:"IMPORT_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long to wait for an import slot (default: 30s)
	MaxWaitTime time.Duration `env:"IMPORT_MAX_WAIT_TIME" default:"30s"`

	// Timeout is the maximum duration for a single import (default: 2m)
	Timeout time.Duration `env:"IMPORT_TIMEOUT" default:"2m"`

	// AliasFile is an optional YAML file of extra header aliases
	AliasFile string `env:"IMPORT_ALIAS_FILE"`
}

// StorageConfig selects the primary and secondary stores.
type StorageConfig struct {
	// Primary is the preferred store: remote, sheet, local or none (default: remote)
	Primary string `env:"STORE_PRIMARY" default:"remote"`

	// Secondary is the fallback store: remote, sheet or local (default: local)
	Secondary string `env:"STORE_SECONDARY" default:"local"`

	// WriteConcurrency bounds parallel record writes per store (default: 8)
	WriteConcurrency int `env:"STORE_WRITE_CONCURRENCY" default:"8"`

	// InitTimeout bounds a store's readiness check (default: 5s)
	InitTimeout time.Duration `env:"STORE_INIT_TIMEOUT" default:"5s"`

	// WriteTimeout bounds one store attempt, primary or fallback (default: 30s)
	WriteTimeout time.Duration `env:"STORE_WRITE_TIMEOUT" default:"30s"`
}

// SheetConfig holds settings for the workbook-backed store.
type SheetConfig struct {
	// Path is the .xlsx workbook file (default: payroll.xlsx)
	Path string `env:"SHEET_STORE_PATH" default:"payroll.xlsx"`
}

// LocalConfig holds settings for the on-disk fallback store.
type LocalConfig struct {
	// Path is the SQLite database file (default: payroll-local.db)
	Path string `env:"LOCAL_STORE_PATH" default:"payroll-local.db"`
}

// PayslipConfig holds salary slip rendering settings.
type PayslipConfig struct {
	Title        string `env:"PAYSLIP_TITLE" default:"Salary Slip"`
	Currency     string `env:"PAYSLIP_CURRENCY" default:"Rs."`
	Organization string `env:"PAYSLIP_ORGANIZATION"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey enables X-API-Key authentication on /api routes (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted API keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + itoa(c.Port)
	}
	return c.Host + ":" + itoa(c.Port)
}

// UsesStore reports whether either store role is set to name.
func (c *StorageConfig) UsesStore(name string) bool {
	return c.Primary == name || c.Secondary == name
}

// itoa converts an int to string without importing strconv in this file.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}
