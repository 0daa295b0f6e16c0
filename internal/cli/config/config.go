package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/banban-dev/banban/internal/pagination"
)

const ConfigFileName = "banban.json"

// Server represents a ban:ban API server
type Server struct {
	URL   string `json:"url"`
	Alias string `json:"alias"`
}

// Config represents the CLI configuration file
type Config struct {
	Servers []Server `json:"servers"`

	// PageSize is the default size of list pages (feed, comments, notifications)
	PageSize int `json:"pageSize,omitempty"`

	// RecheckInterval is how long the session coordinator waits between silent
	// checks, e.g. "5m". It cannot go below one minute.
	RecheckInterval string `json:"recheckInterval,omitempty"`
}

// DefaultConfig returns a default configuration with an example server
func DefaultConfig() *Config {
	return &Config{
		Servers: []Server{
			{
				URL:   "",
				Alias: "e.g. production",
			},
		},
		PageSize: pagination.DefaultSize,
	}
}

// EffectivePageSize returns the configured page size, clamped to what the API accepts
func (c *Config) EffectivePageSize() int {
	return pagination.NormalizeSize(c.PageSize)
}

// Interval parses RecheckInterval. Zero means the coordinator default.
func (c *Config) Interval() (time.Duration, error) {
	if c.RecheckInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.RecheckInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid recheckInterval %q: %w", c.RecheckInterval, err)
	}
	return d, nil
}

// FindConfigFile searches for banban.json in current directory and parent directories
func FindConfigFile() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	// Search upwards until we find banban.json or reach root
	dir := currentDir
	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("banban.json not found in %s or any parent directory", currentDir)
}

// Load reads the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	for i := range cfg.Servers {
		cfg.Servers[i].URL = strings.TrimRight(cfg.Servers[i].URL, "/")
	}

	return &cfg, nil
}

// LoadFromCurrentDir loads config from current directory or parent directories
func LoadFromCurrentDir() (*Config, error) {
	configPath, err := FindConfigFile()
	if err != nil {
		return nil, err
	}

	return Load(configPath)
}

// Save writes the configuration to a file
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetServerByURLOrAlias finds a server by URL or alias, URL first
func (c *Config) GetServerByURLOrAlias(urlOrAlias string) (*Server, error) {
	trimmed := strings.TrimRight(urlOrAlias, "/")
	for i := range c.Servers {
		if c.Servers[i].URL == trimmed {
			return &c.Servers[i], nil
		}
	}
	for i := range c.Servers {
		if c.Servers[i].Alias == urlOrAlias {
			return &c.Servers[i], nil
		}
	}
	return nil, fmt.Errorf("server with URL or alias '%s' not found", urlOrAlias)
}
