// Package config loads the PPM core's configuration from environment
// variables (with an optional YAML file underneath), following the layered
// pattern of the ambient stack: godotenv for local .env files, yaml for a
// checked-in defaults file, envdecode for the authoritative overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string `json:"host" yaml:"host" env:"SERVER_HOST"`
	Port int    `json:"port" yaml:"port" env:"SERVER_PORT"`
}

// DatabaseConfig controls the relational store.
type DatabaseConfig struct {
	Driver          string `json:"driver" yaml:"driver" env:"DATABASE_DRIVER"`
	DSN             string `json:"dsn" yaml:"dsn" env:"DATABASE_URL"`
	MaxOpenConns    int    `json:"max_open_conns" yaml:"max_open_conns" env:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int    `json:"max_idle_conns" yaml:"max_idle_conns" env:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime int    `json:"conn_max_lifetime" yaml:"conn_max_lifetime" env:"DATABASE_CONN_MAX_LIFETIME"`
	MigrateOnStart  bool   `json:"migrate_on_start" yaml:"migrate_on_start" env:"DATABASE_MIGRATE_ON_START"`
}

// LoggingConfig controls application logging.
type LoggingConfig struct {
	Level      string `json:"level" yaml:"level" env:"LOG_LEVEL"`
	Format     string `json:"format" yaml:"format" env:"LOG_FORMAT"`
	Output     string `json:"output" yaml:"output" env:"LOG_OUTPUT"`
	FilePrefix string `json:"file_prefix" yaml:"file_prefix" env:"LOG_FILE_PREFIX"`
}

// PlatformConfig holds the Supabase-style PostgREST endpoint used by the AI
// subsystem (embeddings, operation log, feedback). Help-chat responses are
// cached in-process, not on this endpoint.
type PlatformConfig struct {
	URL        string `json:"database_url" yaml:"database_url" env:"DATABASE_URL"`
	AnonKey    string `json:"database_anon_key" yaml:"database_anon_key" env:"DATABASE_ANON_KEY"`
	ServiceKey string `json:"database_service_key" yaml:"database_service_key" env:"DATABASE_SERVICE_KEY"`
}

// AIConfig holds the AI provider credentials.
type AIConfig struct {
	ModelKey string `json:"ai_model_key" yaml:"ai_model_key" env:"AI_MODEL_KEY"`
	BaseURL  string `json:"ai_base_url" yaml:"ai_base_url" env:"AI_BASE_URL"`
}

// RuntimeConfig holds default_portfolio_id and cache_backend_url, the two
// core configuration keys not carried by PlatformConfig or AIConfig (seven
// core keys in all).
type RuntimeConfig struct {
	DefaultPortfolioID string `json:"default_portfolio_id" yaml:"default_portfolio_id" env:"DEFAULT_PORTFOLIO_ID"`
	CacheBackendURL    string `json:"cache_backend_url" yaml:"cache_backend_url" env:"CACHE_BACKEND_URL"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server   ServerConfig   `json:"server" yaml:"server"`
	Database DatabaseConfig `json:"database" yaml:"database"`
	Logging  LoggingConfig  `json:"logging" yaml:"logging"`
	Platform PlatformConfig `json:"platform" yaml:"platform"`
	AI       AIConfig       `json:"ai" yaml:"ai"`
	Runtime  RuntimeConfig  `json:"runtime" yaml:"runtime"`
}

// New returns a configuration populated with defaults.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Driver:          "postgres",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
			MigrateOnStart:  true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stdout",
			FilePrefix: "ppm-core",
		},
	}
}

// Load loads configuration from an optional file and environment overrides.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := New()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, err
		}
	} else {
		_ = loadFromFile("configs/config.yaml", cfg)
	}

	if err := envdecode.Decode(cfg); err != nil {
		// envdecode errors when no tagged field is present in the environment;
		// treat that as "no overrides" so local runs work without exporting vars.
		if !strings.Contains(err.Error(), "none of the target fields were set") {
			return nil, fmt.Errorf("decode env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFile reads configuration from a YAML file, skipping environment decode
// (used by tests that want a fully deterministic config).
func LoadFile(path string) (*Config, error) {
	cfg := New()
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	expanded, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Environment returns the deployment environment name from APP_ENV,
// defaulting to "development" when unset.
func Environment() string {
	env := strings.ToLower(strings.TrimSpace(os.Getenv("APP_ENV")))
	if env == "" {
		return "development"
	}
	return env
}

// IsProduction reports whether Environment() is "production".
func IsProduction() bool {
	return Environment() == "production"
}

// Validate enforces that the mandatory configuration keys are present.
// cache_backend_url and ai_base_url are explicitly optional per the core's
// external-interface contract.
func (c *Config) Validate() error {
	var missing []string
	if c.Platform.URL == "" {
		missing = append(missing, "database_url")
	}
	if c.Platform.AnonKey == "" {
		missing = append(missing, "database_anon_key")
	}
	if c.Platform.ServiceKey == "" {
		missing = append(missing, "database_service_key")
	}
	if c.AI.ModelKey == "" {
		missing = append(missing, "ai_model_key")
	}
	if c.Runtime.DefaultPortfolioID == "" {
		missing = append(missing, "default_portfolio_id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}
