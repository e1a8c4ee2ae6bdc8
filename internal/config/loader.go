package config

import (
	"fmt"
	"net/url"
	"os"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

var (
	durationType = reflect.TypeOf(time.Duration(0))
	timeType     = reflect.TypeOf(time.Time{})
)

// Load builds a Config from the process environment, fills unset fields from
// their default tags and runs Validate on the result.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := populate(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// MustLoad is Load for callers that cannot continue without configuration.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// populate fills every settable field that carries an env tag. Nested structs
// other than time.Time are walked in place.
func populate(v reflect.Value) error {
	t := v.Type()

	for i := range t.NumField() {
		sf, fv := t.Field(i), v.Field(i)
		if !fv.CanSet() {
			continue
		}
		if sf.Type.Kind() == reflect.Struct && sf.Type != timeType {
			if err := populate(fv); err != nil {
				return err
			}
			continue
		}

		raw, err := lookup(sf.Tag)
		if err != nil {
			return err
		}
		if raw == "" {
			continue
		}
		if err := assign(fv, raw); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", sf.Tag.Get("env"), raw, err)
		}
	}
	return nil
}

// lookup resolves a field from its env tag, then envAlt, then default.
func lookup(tag reflect.StructTag) (string, error) {
	name := tag.Get("env")
	if name == "" {
		return "", nil
	}

	for _, key := range []string{name, tag.Get("envAlt")} {
		if key == "" {
			continue
		}
		if v := os.Getenv(key); v != "" {
			return v, nil
		}
	}

	if tag.Get("required") == "true" {
		return "", fmt.Errorf("required environment variable %s is not set", name)
	}
	return tag.Get("default"), nil
}

// assign parses raw into fv according to the field's type.
func assign(fv reflect.Value, raw string) error {
	if fv.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		fv.SetInt(int64(d))
		return nil
	}

	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		fv.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		fv.SetBool(b)
	case reflect.Slice:
		if elem := fv.Type().Elem().Kind(); elem != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", elem)
		}
		fv.Set(reflect.ValueOf(splitList(raw)))
	default:
		return fmt.Errorf("unsupported field type: %s", fv.Kind())
	}
	return nil
}

// splitList splits a comma-separated value and drops blank entries.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// problems accumulates validation failures so they are reported together.
type problems []string

func (p *problems) check(failed bool, format string, args ...any) {
	if failed {
		*p = append(*p, fmt.Sprintf(format, args...))
	}
}

// Validate reports every invalid setting in a single error.
func (c *Config) Validate() error {
	var p problems

	if c.Portal.BaseURL == "" {
		p.check(true, "IMPORT_API_URL is required")
	} else {
		u, err := url.Parse(c.Portal.BaseURL)
		p.check(err != nil || u.Scheme == "" || u.Host == "",
			"IMPORT_API_URL (%q) must be an absolute URL", c.Portal.BaseURL)
	}
	p.check(c.Portal.Timeout <= 0, "IMPORT_API_TIMEOUT must be positive")

	if db := c.Database; db.Enabled() {
		p.check(db.MaxConns < db.MinConns, "DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)", db.MaxConns, db.MinConns)
		p.check(db.MaxConns <= 0, "DB_MAX_CONNS must be positive")
		p.check(db.MinConns < 0, "DB_MIN_CONNS must be non-negative")
	}

	p.check(c.Server.Port <= 0 || c.Server.Port > 65535, "SERVER_PORT (%d) must be 1-65535", c.Server.Port)
	p.check(c.Server.ReadTimeout < 0, "SERVER_READ_TIMEOUT must be non-negative")
	p.check(c.Server.ShutdownTimeout <= 0, "SERVER_SHUTDOWN_TIMEOUT must be positive")

	p.check(c.Import.MaxFileSize <= 0, "IMPORT_MAX_FILE_SIZE must be positive")
	p.check(c.Import.PreviewRows <= 0, "IMPORT_PREVIEW_ROWS must be positive")
	p.check(c.Import.SessionTTL <= 0, "IMPORT_SESSION_TTL must be positive")
	p.check(c.Import.MaxConcurrent <= 0, "IMPORT_MAX_CONCURRENT must be positive")
	p.check(c.Import.MaxWaitTime <= 0, "IMPORT_MAX_WAIT_TIME must be positive")

	if c.Rate.Enabled {
		p.check(c.Rate.RequestsPerMinute <= 0, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
		p.check(c.Rate.UploadLimit <= 0, "RATE_LIMIT_UPLOAD must be positive when rate limiting is enabled")
	}

	p.check(c.Security.RequireAPIKey && len(c.Security.APIKeys) == 0,
		"REQUIRE_API_KEY is true but API_KEYS is empty; configure at least one API key or disable auth")
	p.check(c.Security.JWTSecret != "" && c.Security.JWTAdminRole == "",
		"JWT_ADMIN_ROLE must be set when JWT_SECRET is configured")

	level, format := strings.ToLower(c.Logging.Level), strings.ToLower(c.Logging.Format)
	p.check(!slices.Contains([]string{"debug", "info", "warn", "error"}, level),
		"LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level)
	p.check(!slices.Contains([]string{"text", "json"}, format),
		"LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format)

	if len(p) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(p, "\n  - "))
	}
	return nil
}

// String renders the config for startup logs with credentials masked.
func (c *Config) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Config{Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port)
	fmt.Fprintf(&b, "Portal: {BaseURL: %q, Token: %s, Timeout: %s}, ", c.Portal.BaseURL, mask(c.Portal.Token), c.Portal.Timeout)
	fmt.Fprintf(&b, "Import: {MaxFileSize: %d, PreviewRows: %d, SessionTTL: %s, MaxConcurrent: %d}, ",
		c.Import.MaxFileSize, c.Import.PreviewRows, c.Import.SessionTTL, c.Import.MaxConcurrent)
	fmt.Fprintf(&b, "Database: {URL: %s, MaxConns: %d, MinConns: %d}, ", mask(c.Database.URL), c.Database.MaxConns, c.Database.MinConns)
	fmt.Fprintf(&b, "Rate: {Enabled: %v, RequestsPerMinute: %d}, ", c.Rate.Enabled, c.Rate.RequestsPerMinute)
	fmt.Fprintf(&b, "Security: {RequireAPIKey: %v, APIKeys: %d, JWTSecret: %s}, ",
		c.Security.RequireAPIKey, len(c.Security.APIKeys), mask(c.Security.JWTSecret))
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}}", c.Logging.Level, c.Logging.Format)
	return b.String()
}

func mask(secret string) string {
	if secret == "" {
		return "[UNSET]"
	}
	return "[MASKED]"
}
