// Package config handles configuration loading and validation for sitetrackr.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultDatabaseFile is the save file name used when database_file is unset.
const DefaultDatabaseFile = "sitetrackr.db"

// Config holds the application configuration.
type Config struct {
	DatabaseFile string   `yaml:"database_file"` // relative paths resolve against DataDir
	Currency     string   `yaml:"currency"`
	Defaults     Defaults `yaml:"defaults"`
	GenAI        GenAI    `yaml:"genai"`
	DataDir      string   `yaml:"-"` // set by caller, not from config file
}

// Defaults seeds newly added work items. Values stored in the save file's
// settings table take precedence once the user edits them in the TUI.
type Defaults struct {
	Category string `yaml:"category"`
	ItemName string `yaml:"item_name"`
	Owner    string `yaml:"owner"`
}

// GenAI configures the generateContent bridge.
type GenAI struct {
	Endpoint    string        `yaml:"endpoint"`
	Model       string        `yaml:"model"`
	FastModel   string        `yaml:"fast_model"`
	APIKeyEnv   string        `yaml:"api_key_env"` // environment variable holding the key
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// APIKey reads the key from the configured environment variable.
func (g GenAI) APIKey() string {
	return os.Getenv(g.APIKeyEnv)
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DatabaseFile: DefaultDatabaseFile,
		Currency:     "NT$",
		Defaults: Defaults{
			Category: "Misc",
			ItemName: "New work item",
			Owner:    "Site manager",
		},
		GenAI: GenAI{
			Endpoint:    "https://generativelanguage.googleapis.com",
			Model:       "gemini-3-pro-preview",
			FastModel:   "gemini-2.5-flash",
			APIKeyEnv:   "GEMINI_API_KEY",
			Temperature: 0.5,
			Timeout:     2 * time.Minute,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.DatabaseFile == "" {
		c.DatabaseFile = defaults.DatabaseFile
	}
	if c.Currency == "" {
		c.Currency = defaults.Currency
	}
	if c.Defaults.Category == "" {
		c.Defaults.Category = defaults.Defaults.Category
	}
	if c.Defaults.ItemName == "" {
		c.Defaults.ItemName = defaults.Defaults.ItemName
	}
	if c.Defaults.Owner == "" {
		c.Defaults.Owner = defaults.Defaults.Owner
	}
	if c.GenAI.Endpoint == "" {
		c.GenAI.Endpoint = defaults.GenAI.Endpoint
	}
	if c.GenAI.Model == "" {
		c.GenAI.Model = defaults.GenAI.Model
	}
	if c.GenAI.FastModel == "" {
		c.GenAI.FastModel = defaults.GenAI.FastModel
	}
	if c.GenAI.APIKeyEnv == "" {
		c.GenAI.APIKeyEnv = defaults.GenAI.APIKeyEnv
	}
	if c.GenAI.Temperature == 0 {
		c.GenAI.Temperature = defaults.GenAI.Temperature
	}
	if c.GenAI.Timeout == 0 {
		c.GenAI.Timeout = defaults.GenAI.Timeout
	}
}

// DBPath returns the absolute location of the save file.
func (c *Config) DBPath() string {
	if filepath.IsAbs(c.DatabaseFile) || c.DatabaseFile == ":memory:" {
		return c.DatabaseFile
	}
	return filepath.Join(c.DataDir, c.DatabaseFile)
}

// LogFile returns the default log file location inside the data directory.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "sitetrackr.log")
}
