package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Auth        AuthConfig        `yaml:"auth"`
	Tailscale   TailscaleConfig   `yaml:"tailscale"`
	Logging     LoggingConfig     `yaml:"logging"`
	Sentry      SentryConfig      `yaml:"sentry"`
	Progression ProgressionConfig `yaml:"progression"`
	Cache       CacheConfig       `yaml:"cache"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// LoggingConfig controls the process logger. File, when set, receives a
// rotated copy of every record.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type SentryConfig struct {
	DSN         string `yaml:"dsn"`
	Environment string `yaml:"environment"`
}

type ProgressionConfig struct {
	DeloadPolicy string `yaml:"deload_policy"`
}

// CacheConfig sizes the whiteboard projection cache. A zero size disables it.
type CacheConfig struct {
	WhiteboardMB int `yaml:"whiteboard_mb"`
	TTLSeconds   int `yaml:"ttl_seconds"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix BLOCKBOARD_ and underscore-separated paths:
//
//	BLOCKBOARD_SERVER_HOST, BLOCKBOARD_SERVER_PORT,
//	BLOCKBOARD_DB_HOST, BLOCKBOARD_DB_PORT, BLOCKBOARD_DB_NAME,
//	BLOCKBOARD_DB_USER, BLOCKBOARD_DB_PASSWORD, BLOCKBOARD_DB_SSLMODE,
//	BLOCKBOARD_AUTH_API_KEY,
//	BLOCKBOARD_TAILSCALE_ENABLED, BLOCKBOARD_TAILSCALE_HOSTNAME, BLOCKBOARD_TAILSCALE_STATE_DIR,
//	BLOCKBOARD_LOG_LEVEL, BLOCKBOARD_LOG_FORMAT, BLOCKBOARD_LOG_FILE,
//	BLOCKBOARD_SENTRY_DSN, BLOCKBOARD_SENTRY_ENVIRONMENT,
//	BLOCKBOARD_DELOAD_POLICY, BLOCKBOARD_CACHE_WHITEBOARD_MB, BLOCKBOARD_CACHE_TTL_SECONDS
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Tailscale:   TailscaleConfig{Hostname: "blockboard"},
		Logging:     LoggingConfig{Level: "info", Format: "text", MaxSizeMB: 50, MaxBackups: 3, MaxAgeDays: 28},
		Progression: ProgressionConfig{DeloadPolicy: "calendar"},
		Cache:       CacheConfig{WhiteboardMB: 16, TTLSeconds: 300},
	}
}

func applyEnvOverrides(cfg *Config) {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	str("BLOCKBOARD_SERVER_HOST", &cfg.Server.Host)
	num("BLOCKBOARD_SERVER_PORT", &cfg.Server.Port)
	str("BLOCKBOARD_DB_HOST", &cfg.Database.Host)
	num("BLOCKBOARD_DB_PORT", &cfg.Database.Port)
	str("BLOCKBOARD_DB_NAME", &cfg.Database.Name)
	str("BLOCKBOARD_DB_USER", &cfg.Database.User)
	str("BLOCKBOARD_DB_PASSWORD", &cfg.Database.Password)
	str("BLOCKBOARD_DB_SSLMODE", &cfg.Database.SSLMode)
	str("BLOCKBOARD_AUTH_API_KEY", &cfg.Auth.APIKey)

	if v := os.Getenv("BLOCKBOARD_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
	str("BLOCKBOARD_TAILSCALE_HOSTNAME", &cfg.Tailscale.Hostname)
	str("BLOCKBOARD_TAILSCALE_STATE_DIR", &cfg.Tailscale.StateDir)

	str("BLOCKBOARD_LOG_LEVEL", &cfg.Logging.Level)
	str("BLOCKBOARD_LOG_FORMAT", &cfg.Logging.Format)
	str("BLOCKBOARD_LOG_FILE", &cfg.Logging.File)
	str("BLOCKBOARD_SENTRY_DSN", &cfg.Sentry.DSN)
	str("BLOCKBOARD_SENTRY_ENVIRONMENT", &cfg.Sentry.Environment)
	str("BLOCKBOARD_DELOAD_POLICY", &cfg.Progression.DeloadPolicy)
	num("BLOCKBOARD_CACHE_WHITEBOARD_MB", &cfg.Cache.WhiteboardMB)
	num("BLOCKBOARD_CACHE_TTL_SECONDS", &cfg.Cache.TTLSeconds)
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	switch c.Progression.DeloadPolicy {
	case "", "calendar", "skip_deloads":
	default:
		return fmt.Errorf("progression.deload_policy must be calendar or skip_deloads, got %q", c.Progression.DeloadPolicy)
	}
	if c.Cache.WhiteboardMB < 0 {
		return fmt.Errorf("cache.whiteboard_mb must not be negative")
	}
	return nil
}
