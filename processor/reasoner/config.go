package reasoner

import (
	"fmt"
	"reflect"
	"time"

	"github.com/c360studio/semstreams/component"
)

// reasonerSchema defines the configuration schema.
var reasonerSchema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))

// Config holds configuration for the reasoner processor component.
type Config struct {
	// StreamName is the JetStream stream carrying graph entity messages.
	StreamName string `json:"stream_name" schema:"type:string,description:JetStream stream for graph ingestion,category:basic,default:GRAPH"`

	// ConsumerName is the durable consumer name for entity consumption.
	ConsumerName string `json:"consumer_name" schema:"type:string,description:Durable consumer name for entity consumption,category:basic,default:reasoner"`

	// IngestSubject is the subject pattern for graph entity messages.
	IngestSubject string `json:"ingest_subject" schema:"type:string,description:Subject pattern for graph entity ingestion,category:basic,default:graph.ingest.entity"`

	// MaxIterations bounds forward-chaining passes per recompute.
	MaxIterations int `json:"max_iterations" schema:"type:int,description:Forward chaining iteration bound,category:advanced,default:10"`

	// MaxInferences bounds the derived fact count per recompute.
	MaxInferences int `json:"max_inferences" schema:"type:int,description:Derived fact bound per recompute,category:advanced,default:10000"`

	// PublishDerived republishes derived facts to the graph when true.
	PublishDerived bool `json:"publish_derived" schema:"type:bool,description:Publish derived facts back to the graph,category:basic,default:true"`

	// DebounceDelay coalesces recomputes across a burst of entity messages.
	DebounceDelay time.Duration `json:"debounce_delay" schema:"type:duration,description:Delay before recomputing after ingestion,category:advanced,default:500ms"`

	// RulesPath is a YAML rule file loaded on top of the builtin catalog.
	RulesPath string `json:"rules_path" schema:"type:string,description:Custom rule file loaded on top of the builtins,category:advanced"`

	// WatchRules reloads the rule file when it changes on disk.
	WatchRules bool `json:"watch_rules" schema:"type:bool,description:Reload the rule file on change,category:advanced,default:false"`

	// Ports contains input/output port definitions.
	Ports *component.PortConfig `json:"ports,omitempty" schema:"type:ports,description:Input/output port definitions,category:basic"`
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		StreamName:     "GRAPH",
		ConsumerName:   "reasoner",
		IngestSubject:  "graph.ingest.entity",
		MaxIterations:  10,
		MaxInferences:  10000,
		PublishDerived: true,
		DebounceDelay:  500 * time.Millisecond,
		Ports: &component.PortConfig{
			Inputs: []component.PortDefinition{
				{
					Name:        "graph-entities",
					Type:        "jetstream",
					Subject:     "graph.ingest.entity",
					StreamName:  "GRAPH",
					Description: "Receive graph entity triples",
					Required:    true,
				},
			},
			Outputs: []component.PortDefinition{
				{
					Name:        "derived-facts",
					Type:        "jetstream",
					Subject:     "graph.ingest.entity",
					Description: "Publish derived facts as graph entities",
					Required:    false,
				},
			},
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.StreamName == "" {
		return fmt.Errorf("stream_name is required")
	}
	if c.ConsumerName == "" {
		return fmt.Errorf("consumer_name is required")
	}
	if c.IngestSubject == "" {
		return fmt.Errorf("ingest_subject is required")
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be at least 1")
	}
	if c.MaxInferences < 1 {
		return fmt.Errorf("max_inferences must be at least 1")
	}
	if c.WatchRules && c.RulesPath == "" {
		return fmt.Errorf("watch_rules requires rules_path")
	}
	return nil
}
