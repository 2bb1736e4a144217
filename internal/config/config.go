// Package config provides configuration management for the report tool.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingBaseURL   = errors.New("api.base_url is required")
	ErrNoPostTypes      = errors.New("api.post_types must list at least one post type")
	ErrInvalidPerPage   = errors.New("api.per_page must be between 1 and 100")
	ErrInvalidTimeout   = errors.New("api.timeout_sec must be at least 1")
	ErrMissingViewsCSV  = errors.New("input.views_csv is required")
	ErrMissingOutputDir = errors.New("output.dir is required")
	ErrMissingViewsJSON = errors.New("output.views_json is required")
	ErrMissingPrefix    = errors.New("output.report_prefix is required")
	ErrInvalidLogLevel  = errors.New("logging.level must be one of: debug, info, warn, error")
)

// Config represents the complete report tool configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig describes the remote content API.
type APIConfig struct {
	BaseURL    string   `yaml:"base_url"`
	PostTypes  []string `yaml:"post_types"`
	PerPage    int      `yaml:"per_page"`
	TimeoutSec int      `yaml:"timeout_sec"`
}

// InputConfig describes local input files.
type InputConfig struct {
	ViewsCSV string `yaml:"views_csv"`
}

// OutputConfig defines output behavior.
type OutputConfig struct {
	Dir          string `yaml:"dir"`
	ViewsJSON    string `yaml:"views_json"`
	ReportPrefix string `yaml:"report_prefix"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the configuration matching the WordPress developer
// news deployment this tool was written for.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:    "https://developer.wordpress.org/news",
			PostTypes:  []string{"snippets", "dev-blog-videos", "posts"},
			PerPage:    100,
			TimeoutSec: 30,
		},
		Input: InputConfig{
			ViewsCSV: "views.csv",
		},
		Output: OutputConfig{
			Dir:          ".",
			ViewsJSON:    "views_data.json",
			ReportPrefix: "devblognews",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from YAML file.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return ErrMissingBaseURL
	}

	if len(c.API.PostTypes) == 0 {
		return ErrNoPostTypes
	}

	if c.API.PerPage < 1 || c.API.PerPage > 100 {
		return ErrInvalidPerPage
	}

	if c.API.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	if c.Input.ViewsCSV == "" {
		return ErrMissingViewsCSV
	}

	if c.Output.Dir == "" {
		return ErrMissingOutputDir
	}

	if c.Output.ViewsJSON == "" {
		return ErrMissingViewsJSON
	}

	if c.Output.ReportPrefix == "" {
		return ErrMissingPrefix
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	return nil
}

// GetTimeout returns the per-request timeout duration.
func (a *APIConfig) GetTimeout() time.Duration {
	return time.Duration(a.TimeoutSec) * time.Second
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{BaseURL: %s, PostTypes: %d, ViewsCSV: %s, OutputDir: %s}",
		c.API.BaseURL,
		len(c.API.PostTypes),
		c.Input.ViewsCSV,
		c.Output.Dir,
	)
}
