// Package store defines the triple storage contracts the reasoner
// consumes and an indexed in-memory implementation of them.
package store

import (
	"context"

	"github.com/c360studio/semreason/triple"
)

// TripleStore is the lookup surface the inference engine consumes. An
// empty string passed to Match acts as a wildcard; empty strings are
// not valid node or predicate identifiers.
type TripleStore interface {
	// Match returns every triple consistent with the given constraints.
	Match(ctx context.Context, subject, predicate, object string) ([]triple.Triple, error)

	// Has reports whether the exact triple is asserted.
	Has(ctx context.Context, t triple.Triple) (bool, error)

	// GetAll enumerates every asserted triple.
	GetAll(ctx context.Context) ([]triple.Triple, error)
}

// NeighborhoodStore is the traversal surface the explorer consumes.
type NeighborhoodStore interface {
	// GetOutgoing returns triples whose subject is the given node.
	GetOutgoing(ctx context.Context, subject string) ([]triple.Triple, error)

	// GetIncoming returns triples whose object is the given node.
	GetIncoming(ctx context.Context, object string) ([]triple.Triple, error)
}

// NodeMetadata is optional descriptive data about a node.
type NodeMetadata struct {
	Label string   `json:"label,omitempty"`
	Types []string `json:"types,omitempty"`
}

// MetadataProvider is optionally implemented by stores that can
// describe nodes. The explorer checks for it with a type assertion and
// treats a nil result as "no metadata".
type MetadataProvider interface {
	GetNodeMetadata(ctx context.Context, id string) (*NodeMetadata, error)
}
