package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Load reads configuration from the process environment.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads configuration through lookup, which returns "" for unset
// names. Every bad value is reported, then the result is normalized and
// validated.
func LoadFrom(lookup func(string) string) (*Config, error) {
	cfg := &Config{}

	l := loader{lookup: lookup}
	l.load(reflect.ValueOf(cfg).Elem())
	if err := errors.Join(l.errs...); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

var durationType = reflect.TypeFor[time.Duration]()

// loader fills struct fields tagged env, envAlt, default and required.
type loader struct {
	lookup func(string) string
	errs   []error
}

func (l *loader) load(v reflect.Value) {
	t := v.Type()
	for i := range t.NumField() {
		field := t.Field(i)
		fv := v.Field(i)
		if !fv.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			l.load(fv)
			continue
		}

		name := field.Tag.Get("env")
		if name == "" {
			continue
		}

		value := strings.TrimSpace(l.lookup(name))
		if alt := field.Tag.Get("envAlt"); value == "" && alt != "" {
			value = strings.TrimSpace(l.lookup(alt))
		}
		if value == "" {
			if field.Tag.Get("required") == "true" {
				l.errs = append(l.errs, fmt.Errorf("%s is required", name))
				continue
			}
			value = field.Tag.Get("default")
		}
		if value == "" {
			continue
		}

		if err := setField(fv, value); err != nil {
			l.errs = append(l.errs, fmt.Errorf("%s=%q: %w", name, value, err))
		}
	}
}

// setField parses value into field according to the field's type.
// Slices of strings are comma separated; blank entries are dropped.
func setField(field reflect.Value, value string) error {
	switch {
	case field.Type() == durationType:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		field.SetInt(int64(d))

	case field.CanInt():
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(n)

	case field.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case field.Kind() == reflect.String:
		field.SetString(value)

	case field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.String:
		var items []string
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				items = append(items, p)
			}
		}
		field.Set(reflect.ValueOf(items))

	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}
	return nil
}

// normalize lowercases enumerated settings so "Local" and "local" agree.
func (c *Config) normalize() {
	c.Storage.Primary = strings.ToLower(c.Storage.Primary)
	c.Storage.Secondary = strings.ToLower(c.Storage.Secondary)
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Format = strings.ToLower(c.Logging.Format)
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Storage validation
	validStores := map[string]bool{StoreRemote: true, StoreSheet: true, StoreLocal: true}
	if c.Storage.Primary != StoreNone && !validStores[c.Storage.Primary] {
		errs = append(errs, fmt.Sprintf("STORE_PRIMARY (%q) must be one of: remote, sheet, local, none", c.Storage.Primary))
	}
	if !validStores[c.Storage.Secondary] {
		errs = append(errs, fmt.Sprintf("STORE_SECONDARY (%q) must be one of: remote, sheet, local", c.Storage.Secondary))
	}
	if c.Storage.Primary == c.Storage.Secondary {
		errs = append(errs, fmt.Sprintf("STORE_PRIMARY and STORE_SECONDARY must differ (both %q)", c.Storage.Primary))
	}
	if c.Storage.WriteConcurrency <= 0 {
		errs = append(errs, "STORE_WRITE_CONCURRENCY must be positive")
	}
	if c.Storage.InitTimeout <= 0 {
		errs = append(errs, "STORE_INIT_TIMEOUT must be positive")
	}
	if c.Storage.WriteTimeout <= 0 {
		errs = append(errs, "STORE_WRITE_TIMEOUT must be positive")
	}
	if c.Storage.UsesStore(StoreSheet) && c.Sheet.Path == "" {
		errs = append(errs, "SHEET_STORE_PATH is required when a store role is sheet")
	}
	if c.Storage.UsesStore(StoreLocal) && c.Local.Path == "" {
		errs = append(errs, "LOCAL_STORE_PATH is required when a store role is local")
	}

	// Database validation
	if c.Storage.UsesStore(StoreRemote) {
		if c.Database.URL == "" {
			errs = append(errs, "DATABASE_URL is required when a store role is remote")
		}
		if c.Database.MaxConns < c.Database.MinConns {
			errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
				c.Database.MaxConns, c.Database.MinConns))
		}
		if c.Database.MaxConns <= 0 {
			errs = append(errs, "DB_MAX_CONNS must be positive")
		}
		if c.Database.MinConns < 0 {
			errs = append(errs, "DB_MIN_CONNS must be non-negative")
		}
	}

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	// Import validation
	if c.Import.MaxFileSize <= 0 {
		errs = append(errs, "IMPORT_MAX_FILE_SIZE must be positive")
	}
	if c.Import.MaxConcurrent <= 0 {
		errs = append(errs, "IMPORT_MAX_CONCURRENT must be positive")
	}
	if c.Import.MaxWaitTime <= 0 {
		errs = append(errs, "IMPORT_MAX_WAIT_TIME must be positive")
	}
	if c.Import.Timeout <= 0 {
		errs = append(errs, "IMPORT_TIMEOUT must be positive")
	}

	// Security validation
	if c.Security.RequireAPIKey && len(c.Security.APIKeys) == 0 {
		errs = append(errs, "REQUIRE_API_KEY is true but API_KEYS is empty; configure at least one API key or disable auth")
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
// Sensitive values like database URLs are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Database: {URL: [MASKED], MaxConns: %d, MinConns: %d}, ",
		c.Database.MaxConns, c.Database.MinConns))
	b.WriteString(fmt.Sprintf("Import: {MaxFileSize: %d, MaxConcurrent: %d, Timeout: %s}, ",
		c.Import.MaxFileSize, c.Import.MaxConcurrent, c.Import.Timeout))
	b.WriteString(fmt.Sprintf("Storage: {Primary: %q, Secondary: %q, WriteConcurrency: %d}, ",
		c.Storage.Primary, c.Storage.Secondary, c.Storage.WriteConcurrency))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
