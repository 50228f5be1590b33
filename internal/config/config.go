// Package config loads the impact service configuration.
//
// Sources, lowest precedence first: built-in defaults, an optional YAML file
// named by CONFIG_FILE, and the process environment (optionally seeded from a
// .env file).
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults
const (
	DefaultPort           = "3000"
	DefaultPANTimeout     = 30 * time.Second
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "json"
	DefaultCORSOrigins    = "*"
	DefaultRateLimitRPS   = 10
	DefaultRateLimitBurst = 20
)

// Config is the complete service configuration.
type Config struct {
	Port      string    `env:"PORT" yaml:"port"`
	PAN       PANConfig `yaml:"pan"`
	LogLevel  string    `env:"LOG_LEVEL" yaml:"log_level"`
	LogFormat string    `env:"LOG_FORMAT" yaml:"log_format"`

	MetricsDisabled    bool   `env:"METRICS_DISABLED" yaml:"metrics_disabled"`
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" yaml:"cors_allowed_origins"`

	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// PANConfig holds the PAN API endpoint and merchant credentials.
type PANConfig struct {
	BaseURL  string        `env:"PAN_API_URL" yaml:"base_url"`
	Username string        `env:"PAN_USERNAME" yaml:"username"`
	Password string        `env:"PAN_PASSWORD" yaml:"password"`
	Timeout  time.Duration `env:"PAN_TIMEOUT" yaml:"timeout"`
}

// RateLimitConfig bounds requests per client address. Limiting is opt-in.
type RateLimitConfig struct {
	Enabled           bool    `env:"RATE_LIMIT_ENABLED" yaml:"enabled"`
	RequestsPerSecond float64 `env:"RATE_LIMIT_RPS" yaml:"requests_per_second"`
	Burst             int     `env:"RATE_LIMIT_BURST" yaml:"burst"`
}

// LoadDotEnv loads .env style files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load env file %s: %w", file, err)
		}
	}
	return nil
}

// Load reads the configuration from CONFIG_FILE (if set) and the environment.
func Load() (*Config, error) {
	return LoadFromPath(os.Getenv("CONFIG_FILE"))
}

// LoadFromPath reads the YAML file at path (if non-empty), overlays the
// environment, applies defaults and validates the result.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.Port = strings.TrimSpace(c.Port)
	if c.Port == "" {
		c.Port = DefaultPort
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if strings.TrimSpace(c.CORSAllowedOrigins) == "" {
		c.CORSAllowedOrigins = DefaultCORSOrigins
	}

	c.PAN.BaseURL = strings.TrimRight(strings.TrimSpace(c.PAN.BaseURL), "/")
	if c.PAN.Timeout == 0 {
		c.PAN.Timeout = DefaultPANTimeout
	}

	if c.RateLimit.RequestsPerSecond == 0 {
		c.RateLimit.RequestsPerSecond = DefaultRateLimitRPS
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = DefaultRateLimitBurst
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid PORT %q", c.Port)
	}

	if c.PAN.BaseURL == "" {
		return fmt.Errorf("PAN_API_URL is required")
	}
	u, err := url.Parse(c.PAN.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("PAN_API_URL must be an absolute http(s) URL, got %q", c.PAN.BaseURL)
	}
	if c.PAN.Username == "" {
		return fmt.Errorf("PAN_USERNAME is required")
	}
	if c.PAN.Password == "" {
		return fmt.Errorf("PAN_PASSWORD is required")
	}
	if c.PAN.Timeout < 0 {
		return fmt.Errorf("PAN_TIMEOUT must not be negative")
	}

	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat)
	}

	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.Burst < 0) {
		return fmt.Errorf("rate limit settings must not be negative")
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// AllowedOrigins splits CORSAllowedOrigins on commas.
func (c *Config) AllowedOrigins() []string {
	return splitAndTrimCSV(c.CORSAllowedOrigins)
}

func splitAndTrimCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
