// Package config loads server configuration from a YAML file with
// environment variable overrides. Environment variables win over the file so
// secrets can stay out of version control.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rinexis/authreview/pkg/validation"
)

// Duration wraps time.Duration so YAML values like "15m" parse directly
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the top-level server configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" validate:"required"`
	Auth     AuthConfig     `yaml:"auth" validate:"required"`
	Storage  StorageConfig  `yaml:"storage"`
	Analysis AnalysisConfig `yaml:"analysis"`
}

// ServerConfig holds the HTTP listener settings
type ServerConfig struct {
	ListenAddr     string   `yaml:"listen_addr" validate:"required"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// AuthConfig holds token and session settings
type AuthConfig struct {
	JWTSecret       string        `yaml:"jwt_secret" validate:"required,min=32"`
	TokenDuration   Duration      `yaml:"token_duration"`
	RefreshDuration Duration      `yaml:"refresh_duration"`
	BootstrapAdmin  BootstrapUser `yaml:"bootstrap_admin"`
}

// BootstrapUser seeds an initial admin account on an empty directory
type BootstrapUser struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email" validate:"omitempty,email"`
	Password string `yaml:"password"`
}

// StorageConfig selects the account store and dataset locations
type StorageConfig struct {
	DataDir     string `yaml:"data_dir" validate:"required"`
	PostgresURL string `yaml:"postgres_url"` // empty = in-memory store with JSON persistence
	S3Bucket    string `yaml:"s3_bucket"` // empty = no dataset replication
	S3Region    string `yaml:"s3_region"`
	S3AccessKey string `yaml:"s3_access_key"` // empty = default AWS credential chain
	S3SecretKey string `yaml:"s3_secret_key"`
}

// AnalysisConfig bounds the CSV ingestion
type AnalysisConfig struct {
	MaxRows  int `yaml:"max_rows" validate:"omitempty,min=1"`
	PageSize int `yaml:"page_size" validate:"omitempty,min=1"`
}

// Default returns a configuration with sensible defaults applied
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr: ":8080",
		},
		Auth: AuthConfig{
			TokenDuration:   Duration(15 * time.Minute),
			RefreshDuration: Duration(7 * 24 * time.Hour),
		},
		Storage: StorageConfig{
			DataDir: "./data",
		},
		Analysis: AnalysisConfig{
			MaxRows:  250_000,
			PageSize: 10,
		},
	}
}

// Load reads configuration from a YAML file, applies environment overrides,
// and validates the result. An empty path skips the file and uses defaults
// plus environment variables only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := validation.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnv overrides file values with environment variables
func (c *Config) applyEnv() {
	if v := os.Getenv("AUTHREVIEW_LISTEN_ADDR"); v != "" {
		c.Server.ListenAddr = v
	}
	if v := os.Getenv("AUTHREVIEW_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i, o := range origins {
			origins[i] = strings.TrimSpace(o)
		}
		c.Server.AllowedOrigins = origins
	}
	if v := os.Getenv("AUTHREVIEW_JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("AUTHREVIEW_DATA_DIR"); v != "" {
		c.Storage.DataDir = v
	}
	if v := os.Getenv("AUTHREVIEW_POSTGRES_URL"); v != "" {
		c.Storage.PostgresURL = v
	}
	if v := os.Getenv("AUTHREVIEW_S3_BUCKET"); v != "" {
		c.Storage.S3Bucket = v
	}
	if v := os.Getenv("AUTHREVIEW_S3_REGION"); v != "" {
		c.Storage.S3Region = v
	}
	if v := os.Getenv("AUTHREVIEW_S3_ACCESS_KEY"); v != "" {
		c.Storage.S3AccessKey = v
	}
	if v := os.Getenv("AUTHREVIEW_S3_SECRET_KEY"); v != "" {
		c.Storage.S3SecretKey = v
	}
	if v := os.Getenv("AUTHREVIEW_MAX_ROWS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Analysis.MaxRows = n
		}
	}
}
