// Package commands provides the semreason CLI subcommands.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/semreason/config"
	"github.com/c360studio/semreason/inference"
	"github.com/c360studio/semreason/neighborhood"
	"github.com/c360studio/semreason/rules"
	"github.com/c360studio/semreason/store"
	"github.com/c360studio/semreason/triple"
)

// Runtime bundles the store, rule registry and engine a subcommand
// operates on, built from the effective configuration and input files.
type Runtime struct {
	Config   *config.Config
	Store    *store.Memory
	Registry *rules.Registry
	Engine   *inference.Engine
}

// RuntimeOptions selects the inputs for building a Runtime.
type RuntimeOptions struct {
	// ConfigPath overrides the layered config lookup when set.
	ConfigPath string

	// TriplesPath is a YAML document of asserted triples.
	TriplesPath string

	// RulesPath is a YAML rule file loaded on top of the builtins.
	// Overrides the configured rules path when set.
	RulesPath string

	Logger *slog.Logger
}

// NewRuntime loads configuration, triples and rules into a ready engine.
func NewRuntime(opts RuntimeOptions) (*Runtime, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var cfg *config.Config
	var err error
	if opts.ConfigPath != "" {
		cfg, err = config.LoadFromFile(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	} else {
		cfg, err = config.NewLoader(logger).Load()
		if err != nil {
			return nil, err
		}
	}

	mem := store.NewMemory()
	if opts.TriplesPath != "" {
		ts, err := LoadTriplesFile(opts.TriplesPath)
		if err != nil {
			return nil, err
		}
		mem.AddAll(ts)
	}

	reg := rules.NewRegistry()
	if cfg.Rules.Builtins {
		reg = rules.NewRegistryWithBuiltins()
	}
	rulesPath := opts.RulesPath
	if rulesPath == "" {
		rulesPath = cfg.Rules.Path
	}
	if rulesPath != "" {
		custom, err := rules.LoadFile(rulesPath)
		if err != nil {
			return nil, fmt.Errorf("load rules: %w", err)
		}
		for _, r := range custom {
			if err := reg.Add(r); err != nil {
				return nil, fmt.Errorf("register rule %s: %w", r.ID, err)
			}
		}
	}

	engineOpts := inference.DefaultOptions()
	engineOpts.MaxIterations = cfg.Engine.MaxIterations
	engineOpts.MaxInferences = cfg.Engine.MaxInferences
	engineOpts.CacheTTL = cfg.Engine.CacheTTL
	engineOpts.ComputeJustifications = cfg.Engine.ComputeJustifications
	engineOpts.Registry = reg
	engineOpts.Logger = logger

	return &Runtime{
		Config:   cfg,
		Store:    mem,
		Registry: reg,
		Engine:   inference.NewEngine(mem, engineOpts),
	}, nil
}

// ExploreOptions maps the configured explorer defaults onto traversal
// options.
func (r *Runtime) ExploreOptions() neighborhood.Options {
	opts := neighborhood.DefaultOptions()
	opts.MaxHops = r.Config.Explorer.MaxHops
	opts.Direction = neighborhood.Direction(r.Config.Explorer.Direction)
	opts.IncludeInferred = r.Config.Explorer.IncludeInferred
	opts.ExpandInferred = r.Config.Explorer.ExpandInferred
	opts.MaxNodes = r.Config.Explorer.MaxNodes
	opts.MaxEdges = r.Config.Explorer.MaxEdges
	opts.Timeout = r.Config.Explorer.Timeout
	return opts
}

// tripleSpec is one triple in a YAML triples document.
type tripleSpec struct {
	Subject   string `yaml:"subject"`
	Predicate string `yaml:"predicate"`
	Object    string `yaml:"object"`
	Literal   bool   `yaml:"literal"`
	Datatype  string `yaml:"datatype"`
	Language  string `yaml:"language"`
}

// triplesFile is the YAML document shape for asserted triples.
type triplesFile struct {
	Triples []tripleSpec `yaml:"triples"`
}

// LoadTriplesFile reads asserted triples from a YAML document.
func LoadTriplesFile(path string) ([]triple.Triple, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read triples file: %w", err)
	}
	return ParseTriples(data)
}

// ParseTriples parses a YAML triples document.
func ParseTriples(data []byte) ([]triple.Triple, error) {
	var file triplesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse triples file: %w", err)
	}

	out := make([]triple.Triple, 0, len(file.Triples))
	for i, spec := range file.Triples {
		if spec.Subject == "" || spec.Predicate == "" || spec.Object == "" {
			return nil, fmt.Errorf("triple %d: subject, predicate and object are required", i)
		}
		t := triple.Triple{
			Subject:   spec.Subject,
			Predicate: spec.Predicate,
			Object:    spec.Object,
			IsLiteral: spec.Literal || spec.Datatype != "" || spec.Language != "",
			Datatype:  spec.Datatype,
			Language:  spec.Language,
		}
		out = append(out, t)
	}
	return out, nil
}
