// Package config loads server settings from defaults, an optional YAML file
// and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// FileEnv names the variable holding the YAML config path.
const FileEnv = "INVOICING_CONFIG"

// Config is the server configuration.
type Config struct {
	DatabaseURL    string        `yaml:"database_url" env:"DATABASE_URL"`
	HTTPAddr       string        `yaml:"http_addr" env:"HTTP_ADDR"`
	JWTSecret      string        `yaml:"jwt_secret" env:"AUTH_JWT_SECRET"`
	TokenTTL       time.Duration `yaml:"token_ttl" env:"AUTH_TOKEN_TTL"`
	Currency       string        `yaml:"currency" env:"CURRENCY"`
	StorageDriver  string        `yaml:"storage_driver" env:"STORAGE_DRIVER"`
	StorageRoot    string        `yaml:"storage_root" env:"STORAGE_ROOT"`
	S3Bucket       string        `yaml:"s3_bucket" env:"S3_BUCKET"`
	S3Region       string        `yaml:"s3_region" env:"S3_REGION"`
	S3Endpoint     string        `yaml:"s3_endpoint" env:"S3_ENDPOINT"`
	WebhookURL     string        `yaml:"status_webhook_url" env:"STATUS_WEBHOOK_URL"`
	WebhookTimeout time.Duration `yaml:"webhook_timeout" env:"WEBHOOK_TIMEOUT"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		HTTPAddr:       ":8080",
		TokenTTL:       60 * time.Minute,
		Currency:       "USD",
		StorageDriver:  "local",
		StorageRoot:    "static/profile_pics",
		WebhookTimeout: 10 * time.Second,
	}
}

// Load reads the file named by INVOICING_CONFIG, if any, then the process environment.
func Load() (Config, error) {
	return load(os.Getenv(FileEnv), nil)
}

// load is Load with an explicit file and environment; a nil environ reads the process environment.
func load(path string, environ map[string]string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return cfg, fmt.Errorf("config: env: %w", err)
	}
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	cfg.Currency = strings.ToUpper(strings.TrimSpace(cfg.Currency))
	return cfg, cfg.Validate()
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("AUTH_JWT_SECRET is required"))
	}
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("HTTP_ADDR is required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("AUTH_TOKEN_TTL must be positive"))
	}
	if c.WebhookTimeout < 0 {
		errs = append(errs, errors.New("WEBHOOK_TIMEOUT must not be negative"))
	}
	switch c.StorageDriver {
	case "local":
		if c.StorageRoot == "" {
			errs = append(errs, errors.New("STORAGE_ROOT is required for local storage"))
		}
	case "s3":
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required for s3 storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER %q is not local or s3", c.StorageDriver))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
