// Package config handles runtime configuration from environment variables,
// an optional .env file, and an optional YAML settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the settings file probed when no -config flag is given.
const DefaultFile = "termagent.yaml"

// Config holds all runtime configuration.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Verbose     bool
}

// fileConfig mirrors the YAML settings file.
type fileConfig struct {
	APIKey      string   `yaml:"api_key"`
	BaseURL     string   `yaml:"base_url"`
	Model       string   `yaml:"model"`
	MaxTokens   int      `yaml:"max_tokens"`
	Temperature *float64 `yaml:"temperature"`
}

// Default returns the baseline configuration without side effects.
func Default() Config {
	return Config{
		Model:       "gpt-4o-mini",
		MaxTokens:   2048,
		Temperature: 0.2,
	}
}

// Load builds the configuration: defaults, then the YAML settings file, then
// environment variables (after loading an adjacent .env file). When path is
// empty the default settings file is used if it exists; an explicit path
// that cannot be read or parsed is an error.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if err := applyFile(&cfg, path, explicit); err != nil {
		return Config{}, err
	}

	if v := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); v != "" {
		cfg.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("OPENAI_MODEL")); v != "" {
		cfg.Model = v
	}

	return Normalize(cfg), nil
}

// applyFile overlays settings from a YAML file onto cfg. A missing file is
// only an error when it was explicitly requested.
func applyFile(cfg *Config, path string, explicit bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.APIKey != "" {
		cfg.APIKey = fc.APIKey
	}
	if fc.BaseURL != "" {
		cfg.BaseURL = fc.BaseURL
	}
	if fc.Model != "" {
		cfg.Model = fc.Model
	}
	if fc.MaxTokens > 0 {
		cfg.MaxTokens = fc.MaxTokens
	}
	if fc.Temperature != nil {
		cfg.Temperature = *fc.Temperature
	}
	return nil
}

// Normalize sanitizes configuration values and applies defaults.
func Normalize(cfg Config) Config {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = Default().Model
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = Default().MaxTokens
	}
	if cfg.Temperature < 0 {
		cfg.Temperature = Default().Temperature
	}
	return cfg
}

// Validate reports whether the configuration is usable. A missing credential
// is fatal at startup.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("OPENAI_API_KEY is not set")
	}
	return nil
}
