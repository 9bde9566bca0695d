package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFilenames are searched in the working directory when no path is given.
var ConfigFilenames = []string{
	".todoclient.yaml",
	"todoclient.yaml",
}

// Config is the console client's file configuration.
type Config struct {
	BaseURL               string            `yaml:"baseUrl"`
	Timeout               time.Duration     `yaml:"timeout"`
	MaxResponseBufferSize int64             `yaml:"maxResponseBufferSize"`
	Headers               map[string]string `yaml:"headers"`
	RateLimit             float64           `yaml:"rateLimit"`
	NoColor               bool              `yaml:"noColor"`
}

// DefaultConfig mirrors the client defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:               DefaultBaseURL,
		Timeout:               DefaultTimeout,
		MaxResponseBufferSize: DefaultMaxResponseBufferSize,
	}
}

// LoadConfig reads path, or the first of ConfigFilenames found in dir when
// path is empty. No file at all yields the defaults.
func LoadConfig(path, dir string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		for _, name := range ConfigFilenames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			return cfg, nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the client cannot use.
func (c *Config) Validate() error {
	var errs []error
	if c.BaseURL == "" {
		errs = append(errs, errors.New("baseUrl is required"))
	}
	if c.Timeout < 0 {
		errs = append(errs, errors.New("timeout must not be negative"))
	}
	if c.MaxResponseBufferSize < 0 {
		errs = append(errs, errors.New("maxResponseBufferSize must not be negative"))
	}
	if c.RateLimit < 0 {
		errs = append(errs, errors.New("rateLimit must not be negative"))
	}
	return errors.Join(errs...)
}

// Options converts the configuration into client options.
func (c *Config) Options() []Option {
	return []Option{
		WithBaseURL(c.BaseURL),
		WithTimeout(c.Timeout),
		WithMaxResponseBufferSize(c.MaxResponseBufferSize),
		WithDefaultHeaders(c.Headers),
		WithRateLimit(c.RateLimit),
	}
}
