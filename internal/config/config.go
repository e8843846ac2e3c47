package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the file or environment leaves a field unset.
const (
	DefaultAddr     = ":8080"
	DefaultIssuer   = "guardpost"
	DefaultTokenTTL = 30 * time.Minute
)

// Config is the process-wide configuration, loaded once at startup and
// treated as immutable afterwards.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// ServerConfig holds listener settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig holds the PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// AuthConfig holds the token signing settings. Secret is mandatory; there is
// no insecure default to fall back to.
type AuthConfig struct {
	Secret      string        `yaml:"secret"`
	Issuer      string        `yaml:"issuer"`
	TokenTTL    time.Duration `yaml:"-"`
	TokenTTLRaw string        `yaml:"token_ttl"`
}

// RateLimitConfig tunes the per-client-IP token bucket on the auth endpoints.
type RateLimitConfig struct {
	Burst     int `yaml:"burst"`
	PerSecond int `yaml:"per_second"`
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads a YAML configuration file. Occurrences of ${VAR_NAME} in the
// raw file are replaced with the corresponding environment variable before
// parsing, so secrets can stay out of the file itself.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	expanded := envVarPattern.ReplaceAllStringFunc(string(data), func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(name)
	})

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromEnv builds a configuration purely from environment variables, for
// deployments that ship no config file.
func FromEnv() (*Config, error) {
	cfg := Config{
		Server:   ServerConfig{Addr: os.Getenv("GUARDPOST_ADDR")},
		Database: DatabaseConfig{DSN: os.Getenv("GUARDPOST_PG_DSN")},
		Auth: AuthConfig{
			Secret:      os.Getenv("GUARDPOST_AUTH_SECRET"),
			Issuer:      os.Getenv("GUARDPOST_ISSUER"),
			TokenTTLRaw: os.Getenv("GUARDPOST_TOKEN_TTL"),
		},
	}
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) finish() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		c.Server.Addr = DefaultAddr
	}
	c.Auth.Secret = strings.TrimSpace(c.Auth.Secret)
	if c.Auth.Secret == "" {
		return errors.New("auth.secret is required")
	}
	c.Auth.Issuer = strings.TrimSpace(c.Auth.Issuer)
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = DefaultIssuer
	}
	ttlRaw := strings.TrimSpace(c.Auth.TokenTTLRaw)
	if ttlRaw == "" {
		c.Auth.TokenTTL = DefaultTokenTTL
	} else {
		ttl, err := time.ParseDuration(ttlRaw)
		if err != nil {
			return fmt.Errorf("parsing auth.token_ttl: %w", err)
		}
		if ttl <= 0 {
			return errors.New("auth.token_ttl must be positive")
		}
		c.Auth.TokenTTL = ttl
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 10
	}
	if c.RateLimit.PerSecond <= 0 {
		c.RateLimit.PerSecond = 5
	}
	return nil
}
