package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type Config struct {
	Reporters         []string       `json:"reporters,omitempty"`
	OutputDir         string         `json:"outputDir,omitempty"`
	Parallel          *bool          `json:"parallel,omitempty"`
	Concurrency       int            `json:"concurrency,omitempty"` // checks run at once in parallel mode
	Bail              *bool          `json:"bail,omitempty"`
	Verbose           *bool          `json:"verbose,omitempty"`
	NoColor           *bool          `json:"noColor,omitempty"`
	Sortable          *bool          `json:"sortable,omitempty"` // sort collections in failure output
	ContainerName     string         `json:"containerName,omitempty"`
	ElementPluralName string         `json:"elementPluralName,omitempty"`
	EnvFile           string         `json:"envFile,omitempty"`
	Variables         map[string]any `json:"variables,omitempty"`
}

func BoolPtr(b bool) *bool {
	return &b
}

func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

func (c *Config) GetParallel() bool {
	return getBool(c.Parallel, false)
}

func (c *Config) GetBail() bool {
	return getBool(c.Bail, false)
}

func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

func (c *Config) GetSortable() bool {
	return getBool(c.Sortable, false)
}

// ConfigFilenames lists the config file names searched, in order.
var ConfigFilenames = []string{
	".hitassert.config.json",
	"hitassert.config.json",
	".hitassertrc",
	".hitassertrc.json",
}

// LoadConfig loads path, or searches the current directory when path is empty.
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig loads the first config file found in dir, or the
// defaults when there is none.
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}
	return DefaultConfig(), nil
}

func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	// A relative env file is relative to the config file.
	if config.EnvFile != "" && !filepath.IsAbs(config.EnvFile) {
		config.EnvFile = filepath.Join(filepath.Dir(path), config.EnvFile)
	}

	return config, nil
}

// Merge returns c overlaid with the fields set in other.
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c

	if other.OutputDir != "" {
		result.OutputDir = other.OutputDir
	}
	if other.Concurrency > 0 {
		result.Concurrency = other.Concurrency
	}
	if other.ContainerName != "" {
		result.ContainerName = other.ContainerName
	}
	if other.ElementPluralName != "" {
		result.ElementPluralName = other.ElementPluralName
	}
	if other.EnvFile != "" {
		result.EnvFile = other.EnvFile
	}

	// Booleans only override when explicitly set.
	if other.Parallel != nil {
		result.Parallel = other.Parallel
	}
	if other.Bail != nil {
		result.Bail = other.Bail
	}
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}
	if other.Sortable != nil {
		result.Sortable = other.Sortable
	}

	if len(other.Variables) > 0 {
		merged := make(map[string]any, len(result.Variables)+len(other.Variables))
		for k, v := range result.Variables {
			merged[k] = v
		}
		for k, v := range other.Variables {
			merged[k] = v
		}
		result.Variables = merged
	}

	if len(other.Reporters) > 0 {
		result.Reporters = other.Reporters
	}

	return &result
}

func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
