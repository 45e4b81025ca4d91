package platform

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the name of the workspace configuration file.
const ConfigFile = "stage.yaml"

// Config describes a workspace: where data lives and which collections a
// session registers.
type Config struct {
	Root        string             `yaml:"root"`
	Format      string             `yaml:"format,omitempty"`
	Strict      bool               `yaml:"strict,omitempty"`
	ReadOnly    bool               `yaml:"read_only,omitempty"`
	Collections []CollectionConfig `yaml:"collections"`
}

// CollectionConfig configures one collection.
type CollectionConfig struct {
	Name string `yaml:"name"`
	// Dir is relative to Root. Defaults to Name.
	Dir string `yaml:"dir,omitempty"`
	// Format overrides Config.Format for this collection.
	Format string `yaml:"format,omitempty"`
	// Required lists fields every staged value must carry.
	Required []string `yaml:"required,omitempty"`
}

// LoadConfig reads a YAML configuration file. A relative Root is resolved
// against the file's directory.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	if cfg.Root == "" {
		cfg.Root = "."
	}
	if !filepath.IsAbs(cfg.Root) {
		cfg.Root = filepath.Join(filepath.Dir(path), cfg.Root)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that collection names are present and unique.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Collections))
	for i, col := range c.Collections {
		if col.Name == "" {
			return fmt.Errorf("collection #%d has no name", i)
		}
		if seen[col.Name] {
			return fmt.Errorf("collection %q declared twice", col.Name)
		}
		seen[col.Name] = true
	}
	return nil
}

// WriteConfig marshals cfg to path.
func WriteConfig(path string, cfg *Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, raw, 0644)
}
