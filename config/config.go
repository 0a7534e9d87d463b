// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Backend   BackendConfig   `yaml:"backend"`
	Database  DatabaseConfig  `yaml:"database"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// BackendConfig configures the Scratcha backend the dashboard
// delegates account, application, and key operations to.
type BackendConfig struct {
	URL     string            `yaml:"url"`
	Timeout time.Duration     `yaml:"timeout,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

// DatabaseConfig configures the local SQLite store holding the session
// event pool and UI preferences.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// DashboardConfig configures the derivation engine.
type DashboardConfig struct {
	// PoolSize is the number of events seeded into a fresh session pool.
	PoolSize int `yaml:"pool_size"`
	// AvgTokensPerRequest is the fixed token approximation per call.
	AvgTokensPerRequest int `yaml:"avg_tokens_per_request"`
	// DefaultPlan names the starting pricing tier.
	DefaultPlan string `yaml:"default_plan"`
	// Scenario selects the starting dataset: "low", "mid", "high",
	// or "random".
	Scenario string `yaml:"scenario"`
	// Seed fixes the pool RNG; zero means time-based.
	Seed int64 `yaml:"seed"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
// Useful for container deployments where no config file is mounted.
//
// Environment variables:
//
//	SCRATCHA_BACKEND_URL      - Scratcha backend base URL (required)
//	SCRATCHA_DATABASE_DSN     - SQLite path (default: scratcha-dashboard.db)
//	SCRATCHA_SERVER_HOST      - Server host (default: 0.0.0.0)
//	SCRATCHA_SERVER_PORT      - Server port (default: 8080)
//	SCRATCHA_POOL_SIZE        - Session event pool size (default: 25000)
//	SCRATCHA_DEFAULT_PLAN     - Starting plan (default: Starter)
//	SCRATCHA_SCENARIO         - Dataset scenario (default: random)
//	SCRATCHA_LOG_LEVEL        - debug, info, warn, error (default: info)
//	SCRATCHA_LOG_FORMAT       - json or console (default: json)
//	SCRATCHA_METRICS_ENABLED  - Enable /metrics (default: true)
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadWithFallback tries the file first, then falls back to environment
// variables.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	if os.Getenv("SCRATCHA_BACKEND_URL") != "" {
		return LoadFromEnv()
	}

	return nil, fmt.Errorf("no configuration found: provide config file or set SCRATCHA_BACKEND_URL")
}

// applyEnvOverrides applies SCRATCHA_* environment variables.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SCRATCHA_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("SCRATCHA_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SCRATCHA_SERVER_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if v := os.Getenv("SCRATCHA_SERVER_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}

	if v := os.Getenv("SCRATCHA_BACKEND_URL"); v != "" {
		cfg.Backend.URL = v
	}
	if v := os.Getenv("SCRATCHA_BACKEND_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Backend.Timeout = d
		}
	}

	if v := os.Getenv("SCRATCHA_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}

	if v := os.Getenv("SCRATCHA_POOL_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Dashboard.PoolSize = n
		}
	}
	if v := os.Getenv("SCRATCHA_AVG_TOKENS_PER_REQUEST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Dashboard.AvgTokensPerRequest = n
		}
	}
	if v := os.Getenv("SCRATCHA_DEFAULT_PLAN"); v != "" {
		cfg.Dashboard.DefaultPlan = v
	}
	if v := os.Getenv("SCRATCHA_SCENARIO"); v != "" {
		cfg.Dashboard.Scenario = v
	}
	if v := os.Getenv("SCRATCHA_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Dashboard.Seed = n
		}
	}

	if v := os.Getenv("SCRATCHA_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SCRATCHA_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	if v := os.Getenv("SCRATCHA_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

// setDefaults fills zero values with sensible defaults.
func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Backend.Timeout == 0 {
		cfg.Backend.Timeout = 10 * time.Second
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "scratcha-dashboard.db"
	}
	if cfg.Dashboard.PoolSize == 0 {
		cfg.Dashboard.PoolSize = 25000
	}
	if cfg.Dashboard.AvgTokensPerRequest == 0 {
		cfg.Dashboard.AvgTokensPerRequest = 20
	}
	if cfg.Dashboard.DefaultPlan == "" {
		cfg.Dashboard.DefaultPlan = "Starter"
	}
	if cfg.Dashboard.Scenario == "" {
		cfg.Dashboard.Scenario = "random"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// validate checks the configuration for errors.
func validate(cfg *Config) error {
	if cfg.Backend.URL == "" {
		return fmt.Errorf("backend.url is required")
	}
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", cfg.Server.Port)
	}
	if cfg.Dashboard.PoolSize < 0 {
		return fmt.Errorf("dashboard.pool_size must not be negative")
	}
	switch cfg.Dashboard.Scenario {
	case "low", "mid", "high", "random":
	default:
		return fmt.Errorf("dashboard.scenario must be low, mid, high, or random, got %q", cfg.Dashboard.Scenario)
	}
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", cfg.Logging.Format)
	}
	return nil
}
