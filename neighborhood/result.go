package neighborhood

import (
	"time"

	"github.com/c360studio/semreason/inference"
)

// Node is a graph node discovered during exploration.
type Node struct {
	ID    string   `json:"id"`
	Label string   `json:"label,omitempty"`
	Types []string `json:"types,omitempty"`

	// HopDistance is the BFS distance from the center node.
	HopDistance int `json:"hop_distance"`

	// ReachedViaInference marks nodes first reached over a derived edge.
	ReachedViaInference bool `json:"reached_via_inference,omitempty"`

	IsCenter bool `json:"is_center,omitempty"`
}

// Edge is a graph edge discovered during exploration. Its ID is the
// underlying triple's identity key, which deduplicates rediscoveries.
type Edge struct {
	ID        string `json:"id"`
	Source    string `json:"source"`
	Target    string `json:"target"`
	Predicate string `json:"predicate"`

	// IsInferred marks derived edges; Inference carries their
	// provenance when available.
	IsInferred bool                    `json:"is_inferred,omitempty"`
	Inference  *inference.InferredFact `json:"inference,omitempty"`

	// HopDistance is the hop at which the edge was discovered.
	HopDistance int `json:"hop_distance"`
}

// Stats describes one exploration run.
type Stats struct {
	// NodesPerHop counts discoveries per hop, index 0 being the center.
	NodesPerHop []int `json:"nodes_per_hop"`

	AssertedEdgeCount int `json:"asserted_edge_count"`
	InferredEdgeCount int `json:"inferred_edge_count"`

	Elapsed time.Duration `json:"elapsed"`

	// MaxHopReached is the highest hop index with a non-zero discovery
	// count.
	MaxHopReached int `json:"max_hop_reached"`
}

// Result is the neighborhood around a center node. It is always
// well-formed: a failed exploration yields empty node and edge sets,
// never an error to handle.
type Result struct {
	CenterID  string  `json:"center_id"`
	Nodes     []*Node `json:"nodes"`
	Edges     []*Edge `json:"edges"`
	Stats     Stats   `json:"stats"`
	Options   Options `json:"options"`
	Truncated bool    `json:"truncated"`
}

// StartEvent is the payload of event.TopicExploreStart.
type StartEvent struct {
	RequestID string  `json:"request_id"`
	CenterID  string  `json:"center_id"`
	Options   Options `json:"options"`
}

// HopEvent is the payload of event.TopicHopExpand, emitted once per
// completed hop.
type HopEvent struct {
	Hop             int `json:"hop"`
	NodesDiscovered int `json:"nodes_discovered"`
	TotalNodes      int `json:"total_nodes"`
	TotalEdges      int `json:"total_edges"`
}

// CompleteEvent is the payload of event.TopicExploreComplete.
type CompleteEvent struct {
	RequestID string        `json:"request_id"`
	CenterID  string        `json:"center_id"`
	Nodes     int           `json:"nodes"`
	Edges     int           `json:"edges"`
	Elapsed   time.Duration `json:"elapsed"`
	Truncated bool          `json:"truncated"`
}

// ErrorEvent is the payload of event.TopicExploreError.
type ErrorEvent struct {
	RequestID string `json:"request_id"`
	CenterID  string `json:"center_id"`
	Message   string `json:"message"`
}
