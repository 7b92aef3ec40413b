// Package config loads server configuration from YAML or JSON files with
// environment variable overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Common errors for configuration loading.
var (
	ErrFileNotFound     = errors.New("configuration file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidJSON      = errors.New("invalid JSON syntax")
	ErrInvalidYAML      = errors.New("invalid YAML syntax")
	ErrEmptyFile        = errors.New("configuration file is empty")
)

// Config is the full server configuration.
type Config struct {
	Admin    AdminConfig    `yaml:"admin" json:"admin"`
	Database DatabaseConfig `yaml:"database" json:"database"`
	Email    EmailConfig    `yaml:"email" json:"email"`
	Payments PaymentsConfig `yaml:"payments" json:"payments"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
	Store    StoreConfig    `yaml:"store" json:"store"`
}

// AdminConfig configures the admin HTTP API.
type AdminConfig struct {
	Port int `yaml:"port" json:"port"`

	// APIKey authenticates admin requests. Empty generates a key at startup.
	APIKey string `yaml:"apiKey" json:"apiKey"`

	// AllowLocalhost skips authentication for localhost requests.
	AllowLocalhost bool `yaml:"allowLocalhost" json:"allowLocalhost"`
}

// DatabaseConfig configures persistence. An empty URL selects the in-memory
// store.
type DatabaseConfig struct {
	URL string `yaml:"url" json:"url"`
}

// EmailConfig configures outbound email.
type EmailConfig struct {
	APIKey   string `yaml:"apiKey" json:"apiKey"`
	Endpoint string `yaml:"endpoint" json:"endpoint"`
	From     string `yaml:"from" json:"from"`
}

// PaymentsConfig configures the payment provider.
type PaymentsConfig struct {
	APIKey        string `yaml:"apiKey" json:"apiKey"`
	WebhookSecret string `yaml:"webhookSecret" json:"webhookSecret"`
	SuccessURL    string `yaml:"successUrl" json:"successUrl"`
	CancelURL     string `yaml:"cancelUrl" json:"cancelUrl"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// StoreConfig holds storefront settings.
type StoreConfig struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Admin: AdminConfig{
			Port: 4280,
		},
		Email: EmailConfig{
			From: "hello@getpressed.com",
		},
		Payments: PaymentsConfig{
			SuccessURL: "https://getpressed.com/checkout/thanks",
			CancelURL:  "https://getpressed.com/cart",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Store: StoreConfig{
			Name: "Pressed",
			URL:  "https://getpressed.com",
		},
	}
}

// Load reads configuration from a JSON or YAML file, applies environment
// overrides, and returns the result merged over defaults. An empty path
// returns defaults with environment overrides only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// loadFile decodes a config file into cfg. Format is detected by extension
// (.yaml, .yml for YAML, otherwise JSON).
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
		}
		return nil
	}

	if !json.Valid(data) {
		return fmt.Errorf("%w in file: %s", ErrInvalidJSON, path)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}

// applyEnv overrides config fields from PRESSED_* environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("PRESSED_ADMIN_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Admin.Port = port
		}
	}
	if v := os.Getenv("PRESSED_API_KEY"); v != "" {
		cfg.Admin.APIKey = v
	}
	if v := os.Getenv("PRESSED_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("PRESSED_EMAIL_API_KEY"); v != "" {
		cfg.Email.APIKey = v
	}
	if v := os.Getenv("PRESSED_EMAIL_FROM"); v != "" {
		cfg.Email.From = v
	}
	if v := os.Getenv("PRESSED_PAYMENTS_API_KEY"); v != "" {
		cfg.Payments.APIKey = v
	}
	if v := os.Getenv("PRESSED_WEBHOOK_SECRET"); v != "" {
		cfg.Payments.WebhookSecret = v
	}
	if v := os.Getenv("PRESSED_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("PRESSED_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

// Save writes the configuration to a file using atomic rename. Format
// follows the file extension.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config cannot be nil")
	}

	var data []byte
	var err error
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("write temporary file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temporary file: %w", err)
	}
	return nil
}
