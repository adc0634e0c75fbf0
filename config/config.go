// Package config provides configuration loading and management for Semreason.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete Semreason configuration
type Config struct {
	Engine   EngineConfig   `yaml:"engine"`
	Explorer ExplorerConfig `yaml:"explorer"`
	Rules    RulesConfig    `yaml:"rules"`
	NATS     NATSConfig     `yaml:"nats"`
}

// EngineConfig configures the inference engine
type EngineConfig struct {
	// MaxIterations bounds the number of forward-chaining passes
	MaxIterations int `yaml:"max_iterations"`
	// MaxInferences bounds the total number of derived facts
	MaxInferences int `yaml:"max_inferences"`
	// CacheTTL is how long a computed inference set stays valid
	CacheTTL time.Duration `yaml:"cache_ttl"`
	// ComputeJustifications records full derivation chains when true
	ComputeJustifications bool `yaml:"compute_justifications"`
}

// ExplorerConfig configures neighborhood exploration defaults
type ExplorerConfig struct {
	// MaxHops is the default traversal radius
	MaxHops int `yaml:"max_hops"`
	// Direction is "outgoing", "incoming" or "both"
	Direction string `yaml:"direction"`
	// IncludeInferred shows derived edges in results
	IncludeInferred bool `yaml:"include_inferred"`
	// ExpandInferred continues traversal through derived edges
	ExpandInferred bool `yaml:"expand_inferred"`
	// MaxNodes caps the result node count
	MaxNodes int `yaml:"max_nodes"`
	// MaxEdges caps the result edge count
	MaxEdges int `yaml:"max_edges"`
	// Timeout bounds a single exploration
	Timeout time.Duration `yaml:"timeout"`
}

// RulesConfig configures custom rule loading
type RulesConfig struct {
	// Builtins enables the builtin RDFS/OWL rule catalog
	Builtins bool `yaml:"builtins"`
	// Path is a YAML rule file loaded on top of the builtin catalog
	Path string `yaml:"path"`
	// Watch reloads the rule file when it changes on disk
	Watch bool `yaml:"watch"`
	// DebounceDelay coalesces rapid file change notifications
	DebounceDelay time.Duration `yaml:"debounce_delay"`
}

// NATSConfig configures the NATS connection
type NATSConfig struct {
	// URL is the NATS server URL (empty = use embedded server)
	URL string `yaml:"url"`
	// Embedded indicates whether to use embedded NATS
	Embedded bool `yaml:"embedded"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			MaxIterations:         10,
			MaxInferences:         10000,
			CacheTTL:              5 * time.Minute,
			ComputeJustifications: true,
		},
		Explorer: ExplorerConfig{
			MaxHops:         2,
			Direction:       "both",
			IncludeInferred: true,
			ExpandInferred:  false,
			MaxNodes:        100,
			MaxEdges:        500,
			Timeout:         10 * time.Second,
		},
		Rules: RulesConfig{
			Builtins:      true,
			Path:          "",
			Watch:         false,
			DebounceDelay: 200 * time.Millisecond,
		},
		NATS: NATSConfig{
			URL:      "",
			Embedded: true,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Engine.MaxIterations < 1 {
		return fmt.Errorf("engine.max_iterations must be at least 1")
	}
	if c.Engine.MaxInferences < 1 {
		return fmt.Errorf("engine.max_inferences must be at least 1")
	}
	if c.Explorer.MaxHops < 1 {
		return fmt.Errorf("explorer.max_hops must be at least 1")
	}
	switch c.Explorer.Direction {
	case "outgoing", "incoming", "both":
	default:
		return fmt.Errorf("explorer.direction must be outgoing, incoming or both, got %q", c.Explorer.Direction)
	}
	if c.Explorer.MaxNodes < 1 || c.Explorer.MaxEdges < 1 {
		return fmt.Errorf("explorer node and edge limits must be at least 1")
	}
	if c.Rules.Path != "" {
		if _, err := os.Stat(c.Rules.Path); err != nil {
			return fmt.Errorf("rules.path is not readable: %w", err)
		}
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Engine
	if other.Engine.MaxIterations != 0 {
		c.Engine.MaxIterations = other.Engine.MaxIterations
	}
	if other.Engine.MaxInferences != 0 {
		c.Engine.MaxInferences = other.Engine.MaxInferences
	}
	if other.Engine.CacheTTL != 0 {
		c.Engine.CacheTTL = other.Engine.CacheTTL
	}
	c.Engine.ComputeJustifications = other.Engine.ComputeJustifications

	// Explorer
	if other.Explorer.MaxHops != 0 {
		c.Explorer.MaxHops = other.Explorer.MaxHops
	}
	if other.Explorer.Direction != "" {
		c.Explorer.Direction = other.Explorer.Direction
	}
	c.Explorer.IncludeInferred = other.Explorer.IncludeInferred
	c.Explorer.ExpandInferred = other.Explorer.ExpandInferred
	if other.Explorer.MaxNodes != 0 {
		c.Explorer.MaxNodes = other.Explorer.MaxNodes
	}
	if other.Explorer.MaxEdges != 0 {
		c.Explorer.MaxEdges = other.Explorer.MaxEdges
	}
	if other.Explorer.Timeout != 0 {
		c.Explorer.Timeout = other.Explorer.Timeout
	}

	// Rules
	c.Rules.Builtins = other.Rules.Builtins
	if other.Rules.Path != "" {
		c.Rules.Path = other.Rules.Path
	}
	if other.Rules.Watch {
		c.Rules.Watch = true
	}
	if other.Rules.DebounceDelay != 0 {
		c.Rules.DebounceDelay = other.Rules.DebounceDelay
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
		c.NATS.Embedded = false
	}
}
