package peyflex

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"golang.org/x/time/rate"

	"github.com/peyflex/client-go/internal/logger"
)

// EnvPrefix prefixes every environment variable read by LoadConfig.
// PEYFLEX_API_TOKEN maps to api.token, PEYFLEX_LOG_LEVEL to log.level.
const EnvPrefix = "PEYFLEX_"

// Config is the file/environment representation of the client settings.
type Config struct {
	API  APIConfig  `koanf:"api"`
	Log  LogConfig  `koanf:"log"`
	Rate RateConfig `koanf:"rate"`
}

// APIConfig holds the connection settings.
type APIConfig struct {
	Token   string        `koanf:"token"`
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
	Retries int           `koanf:"retries"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Pretty bool   `koanf:"pretty"`
}

// RateConfig limits outgoing requests. A zero Limit disables limiting.
type RateConfig struct {
	Limit float64 `koanf:"limit"`
	Burst int     `koanf:"burst"`
}

// LoadConfig loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. The given files, later files overriding earlier ones. Files ending in
// .yaml or .yml are parsed as YAML, anything else as a dotenv file.
// 3. Default values (lowest priority)
func LoadConfig(files ...string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	for _, path := range files {
		if err := loadFile(k, path); err != nil {
			return nil, err
		}
	}

	if err := k.Load(envprovider.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"api.url":     DefaultBaseURL,
		"api.timeout": DefaultTimeout.String(),
		"api.retries": DefaultRetries,
		"log.level":   "disabled",
		"log.pretty":  false,
		"rate.limit":  0,
		"rate.burst":  1,
	}
	return k.Load(confmap.Provider(defaults, "."), nil)
}

func loadFile(k *koanf.Koanf, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	default:
		vars, err := godotenv.Read(path)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		values := make(map[string]any, len(vars))
		for name, value := range vars {
			if key := envKey(name); key != "" && strings.HasPrefix(name, EnvPrefix) {
				values[key] = value
			}
		}
		if err := k.Load(confmap.Provider(values, "."), nil); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// envKey converts PEYFLEX_API_TOKEN to api.token.
func envKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(name, EnvPrefix)), "_", ".")
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if c.API.Token == "" {
		errs = append(errs, fmt.Errorf("api.token: %w", ErrMissingToken))
	}
	if c.API.URL == "" {
		errs = append(errs, fmt.Errorf("api.url: %w", ErrMissingBaseURL))
	}
	if c.API.Timeout < 0 {
		errs = append(errs, fmt.Errorf("api.timeout must not be negative, got %v", c.API.Timeout))
	}
	if c.API.Retries < 0 {
		errs = append(errs, fmt.Errorf("api.retries must not be negative, got %d", c.API.Retries))
	}
	if c.Rate.Limit < 0 {
		errs = append(errs, fmt.Errorf("rate.limit must not be negative, got %v", c.Rate.Limit))
	}
	return errors.Join(errs...)
}

// Options converts the configuration into client options.
func (c *Config) Options() []Option {
	opts := []Option{
		WithBaseURL(c.API.URL),
		WithRetries(c.API.Retries),
		WithLogger(logger.New(c.Log.Level, c.Log.Pretty)),
	}
	if c.API.Timeout > 0 {
		opts = append(opts, WithTimeout(c.API.Timeout))
	}
	if c.Rate.Limit > 0 {
		opts = append(opts, WithRateLimit(rate.Limit(c.Rate.Limit), c.Rate.Burst))
	}
	return opts
}

// NewFromConfig creates a client from cfg. Extra options are applied after
// the configured ones and win over them.
func NewFromConfig(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return New(cfg.API.Token, append(cfg.Options(), opts...)...)
}
