// Package config defines bootbridge's typed configuration and binds it to viper.
package config

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"bootbridge/internal/errors"
)

// EnvPrefix prefixes every environment variable viper binds.
const EnvPrefix = "BOOTBRIDGE"

// Config is the complete bootbridge configuration.
type Config struct {
	Identity IdentityConfig `mapstructure:"identity"`
	Gate     GateConfig     `mapstructure:"gate"`
	Bridge   BridgeConfig   `mapstructure:"bridge"`
	Host     HostConfig     `mapstructure:"host"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Log      LogConfig      `mapstructure:"log"`
}

// IdentityConfig holds the identity provider endpoints.
type IdentityConfig struct {
	LoginURL  string `mapstructure:"login_url"`
	TicketURL string `mapstructure:"ticket_url"`
	RedeemURL string `mapstructure:"redeem_url"`
	Referer   string `mapstructure:"referer"`

	// CookieDomain scopes the seeded session cookie. Empty keeps it host-only.
	CookieDomain string `mapstructure:"cookie_domain"`
}

// GateConfig configures the page lifecycle gate.
type GateConfig struct {
	TerminalMarker string `mapstructure:"terminal_marker"`
}

// BridgeConfig configures the task state bridge.
type BridgeConfig struct {
	Endpoint     string        `mapstructure:"endpoint"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	StartingTask string        `mapstructure:"starting_task"`
}

// HostConfig configures the host task endpoint.
type HostConfig struct {
	Listen   string        `mapstructure:"listen"`
	DemoStep time.Duration `mapstructure:"demo_step"`
	Metrics  bool          `mapstructure:"metrics"`
}

// HTTPConfig configures the outbound HTTP client.
type HTTPConfig struct {
	Timeout            time.Duration `mapstructure:"timeout"`
	RequestsPerSecond  float64       `mapstructure:"requests_per_second"`
	Burst              int           `mapstructure:"burst"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Identity: IdentityConfig{
			LoginURL:  "https://auth.roblox.com/v2/login",
			TicketURL: "https://auth.roblox.com/v1/authentication-ticket",
			RedeemURL: "https://auth.roblox.com/v1/authentication-ticket/redeem",
			Referer:   "https://www.roblox.com",

			CookieDomain: ".roblox.com",
		},
		Gate: GateConfig{
			TerminalMarker: "home",
		},
		Bridge: BridgeConfig{
			Endpoint:     "http://127.0.0.1:47321/current_task",
			PollInterval: 100 * time.Millisecond,
		},
		Host: HostConfig{
			Listen:   "127.0.0.1:47321",
			DemoStep: 2 * time.Second,
			Metrics:  true,
		},
		HTTP: HTTPConfig{
			Timeout:           30 * time.Second,
			RequestsPerSecond: 5,
			Burst:             3,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Settings flattens the configuration into viper keys.
func (c Config) Settings() map[string]any {
	return map[string]any{
		"identity.login_url":        c.Identity.LoginURL,
		"identity.ticket_url":       c.Identity.TicketURL,
		"identity.redeem_url":       c.Identity.RedeemURL,
		"identity.referer":          c.Identity.Referer,
		"identity.cookie_domain":    c.Identity.CookieDomain,
		"gate.terminal_marker":      c.Gate.TerminalMarker,
		"bridge.endpoint":           c.Bridge.Endpoint,
		"bridge.poll_interval":      c.Bridge.PollInterval.String(),
		"bridge.starting_task":      c.Bridge.StartingTask,
		"host.listen":               c.Host.Listen,
		"host.demo_step":            c.Host.DemoStep.String(),
		"host.metrics":              c.Host.Metrics,
		"http.timeout":              c.HTTP.Timeout.String(),
		"http.requests_per_second":  c.HTTP.RequestsPerSecond,
		"http.burst":                c.HTTP.Burst,
		"http.insecure_skip_verify": c.HTTP.InsecureSkipVerify,
		"log.level":                 c.Log.Level,
		"log.format":                c.Log.Format,
		"log.file":                  c.Log.File,
	}
}

// SetDefaults registers Default() with v. Registering every key also lets
// AutomaticEnv resolve it.
func SetDefaults(v *viper.Viper) {
	for key, value := range Default().Settings() {
		v.SetDefault(key, value)
	}
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.NewConfigurationError("", "", "failed to decode configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

//nolint:gochecknoglobals // Package-level constants for validation
var (
	validLevels  = []string{"debug", "info", "warn", "error"}
	validFormats = []string{"text", "json"}
)

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error

	urls := []struct{ field, value string }{
		{"identity.login_url", c.Identity.LoginURL},
		{"identity.ticket_url", c.Identity.TicketURL},
		{"identity.redeem_url", c.Identity.RedeemURL},
		{"identity.referer", c.Identity.Referer},
		{"bridge.endpoint", c.Bridge.Endpoint},
	}
	for _, u := range urls {
		if err := validateURL(u.field, u.value); err != nil {
			errs = append(errs, err)
		}
	}

	if c.Gate.TerminalMarker == "" {
		errs = append(errs, errors.NewValidationError("gate.terminal_marker", "", "required",
			"terminal marker must not be empty"))
	}
	if c.Bridge.PollInterval <= 0 {
		errs = append(errs, errors.NewValidationError("bridge.poll_interval", c.Bridge.PollInterval.String(),
			"positive", "poll interval must be positive"))
	}
	if c.Host.Listen == "" {
		errs = append(errs, errors.NewValidationError("host.listen", "", "required",
			"listen address must not be empty"))
	}
	if c.HTTP.Timeout <= 0 {
		errs = append(errs, errors.NewValidationError("http.timeout", c.HTTP.Timeout.String(),
			"positive", "timeout must be positive"))
	}
	if c.HTTP.RequestsPerSecond < 0 {
		errs = append(errs, errors.NewValidationError("http.requests_per_second",
			strconv.FormatFloat(c.HTTP.RequestsPerSecond, 'f', -1, 64),
			"non_negative", "rate limit must not be negative"))
	}
	if c.HTTP.RequestsPerSecond > 0 && c.HTTP.Burst < 1 {
		errs = append(errs, errors.NewValidationError("http.burst", strconv.Itoa(c.HTTP.Burst),
			"min=1", "burst must be at least 1 when rate limiting"))
	}
	if !slices.Contains(validLevels, c.Log.Level) {
		errs = append(errs, errors.NewValidationError("log.level", c.Log.Level, "supported_values",
			fmt.Sprintf("log level must be one of: %v", validLevels)))
	}
	if !slices.Contains(validFormats, c.Log.Format) {
		errs = append(errs, errors.NewValidationError("log.format", c.Log.Format, "supported_values",
			fmt.Sprintf("log format must be one of: %v", validFormats)))
	}

	return errors.Join(errs...)
}

func validateURL(field, value string) error {
	parsed, err := url.Parse(value)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return errors.NewValidationError(field, value, "url", "must be an absolute http(s) URL")
	}
	return nil
}
