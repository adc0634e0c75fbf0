// Package neighborhood implements bounded, cancellable breadth-first
// exploration over the union of asserted and inferred facts.
package neighborhood

import (
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Direction selects which edges the traversal follows.
type Direction string

const (
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
	DirectionBoth     Direction = "both"
)

// Options bounds one exploration. Start from DefaultOptions and
// override; zero numeric fields and an empty Direction are normalized
// to their defaults, boolean fields are honored as given.
type Options struct {
	// MaxHops bounds the traversal depth from the center node.
	MaxHops int `json:"max_hops" yaml:"max_hops"`

	// Direction selects outgoing, incoming or both edge sets.
	Direction Direction `json:"direction" yaml:"direction"`

	// IncludeInferred merges derived facts into the edge set.
	IncludeInferred bool `json:"include_inferred" yaml:"include_inferred"`

	// ExpandInferred lets the traversal continue through nodes reached
	// by an inferred edge. When false such nodes are shown but not
	// expanded further.
	ExpandInferred bool `json:"expand_inferred" yaml:"expand_inferred"`

	// PredicateFilter is an allow list of predicate glob patterns
	// (doublestar syntax; a plain predicate matches itself). Empty
	// allows everything.
	PredicateFilter []string `json:"predicate_filter,omitempty" yaml:"predicate_filter,omitempty"`

	// ExcludePredicates is a deny list of predicate glob patterns,
	// checked before the allow list.
	ExcludePredicates []string `json:"exclude_predicates,omitempty" yaml:"exclude_predicates,omitempty"`

	// ClassFilter restricts newly-discovered nodes to those whose
	// types intersect it. Failing nodes are skipped entirely, along
	// with the edge that reached them. The center node is exempt.
	ClassFilter []string `json:"class_filter,omitempty" yaml:"class_filter,omitempty"`

	// MaxNodes and MaxEdges truncate the result (Truncated=true).
	MaxNodes int `json:"max_nodes" yaml:"max_nodes"`
	MaxEdges int `json:"max_edges" yaml:"max_edges"`

	// Timeout is advisory wall clock, checked at hop boundaries only;
	// a hop already in progress completes.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// DefaultOptions returns the standard exploration bounds.
func DefaultOptions() Options {
	return Options{
		MaxHops:         2,
		Direction:       DirectionBoth,
		IncludeInferred: true,
		ExpandInferred:  false,
		MaxNodes:        100,
		MaxEdges:        500,
		Timeout:         10 * time.Second,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.MaxHops <= 0 {
		o.MaxHops = def.MaxHops
	}
	if o.Direction == "" {
		o.Direction = def.Direction
	}
	if o.MaxNodes <= 0 {
		o.MaxNodes = def.MaxNodes
	}
	if o.MaxEdges <= 0 {
		o.MaxEdges = def.MaxEdges
	}
	if o.Timeout <= 0 {
		o.Timeout = def.Timeout
	}
	return o
}

// allowsPredicate applies the deny list first, then the allow list.
func (o Options) allowsPredicate(predicate string) bool {
	for _, pattern := range o.ExcludePredicates {
		if globMatch(pattern, predicate) {
			return false
		}
	}
	if len(o.PredicateFilter) == 0 {
		return true
	}
	for _, pattern := range o.PredicateFilter {
		if globMatch(pattern, predicate) {
			return true
		}
	}
	return false
}

// allowsClass reports whether a node's types intersect the class
// filter. An empty filter allows everything; a node without types
// fails a non-empty filter.
func (o Options) allowsClass(types []string) bool {
	if len(o.ClassFilter) == 0 {
		return true
	}
	for _, want := range o.ClassFilter {
		for _, have := range types {
			if want == have {
				return true
			}
		}
	}
	return false
}

func globMatch(pattern, value string) bool {
	if pattern == value {
		return true
	}
	ok, err := doublestar.Match(pattern, value)
	return err == nil && ok
}
