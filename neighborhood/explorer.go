package neighborhood

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/semreason/event"
	"github.com/c360studio/semreason/inference"
	"github.com/c360studio/semreason/store"
	"github.com/c360studio/semreason/triple"
)

// InferenceSource supplies derived facts to the traversal. The
// inference engine implements it; a nil source disables inferred edges
// regardless of Options.IncludeInferred.
type InferenceSource interface {
	ComputeInferences(ctx context.Context) ([]*inference.InferredFact, error)
	InferredForSubject(subject string) []*inference.InferredFact
	InferredForObject(object string) []*inference.InferredFact
}

// Explorer walks the neighborhood of a node over asserted and derived
// edges. An Explorer owns its traversal state exclusively; concurrent
// Explore calls on one instance require external serialization.
// Cancellation is cooperative: Cancel (or context cancellation) is
// observed at hop boundaries, and a hop already in progress completes.
type Explorer struct {
	store    store.NeighborhoodStore
	metadata store.MetadataProvider // nil when the store provides none
	source   InferenceSource        // nil disables inferred edges
	bus      *event.Bus
	logger   *slog.Logger

	cancelled atomic.Bool
	now       func() time.Time // test seam
}

// NewExplorer creates an explorer over the given store. The metadata
// surface is discovered by type assertion on the store; bus and logger
// may be nil.
func NewExplorer(ns store.NeighborhoodStore, source InferenceSource, bus *event.Bus, logger *slog.Logger) *Explorer {
	if logger == nil {
		logger = slog.Default()
	}
	meta, _ := ns.(store.MetadataProvider)
	return &Explorer{
		store:    ns,
		metadata: meta,
		source:   source,
		bus:      bus,
		logger:   logger,
		now:      time.Now,
	}
}

// Cancel requests that the current exploration stop at the next hop
// boundary.
func (x *Explorer) Cancel() { x.cancelled.Store(true) }

// Explore walks outward from centerID within the given bounds. It
// never fails to the caller: traversal errors are reported on the
// event bus and produce an empty, well-formed result.
func (x *Explorer) Explore(ctx context.Context, centerID string, opts Options) *Result {
	opts = opts.withDefaults()
	x.cancelled.Store(false)
	started := x.now()
	requestID := uuid.New().String()

	x.publish(event.TopicExploreStart, StartEvent{RequestID: requestID, CenterID: centerID, Options: opts})

	result, err := x.explore(ctx, centerID, opts, started)
	if err != nil {
		x.logger.Warn("Exploration failed",
			slog.String("request_id", requestID),
			slog.String("center", centerID),
			slog.String("error", err.Error()))
		x.publish(event.TopicExploreError, ErrorEvent{RequestID: requestID, CenterID: centerID, Message: err.Error()})
		return &Result{
			CenterID: centerID,
			Nodes:    []*Node{},
			Edges:    []*Edge{},
			Options:  opts,
			Stats:    Stats{Elapsed: x.now().Sub(started)},
		}
	}

	x.publish(event.TopicExploreComplete, CompleteEvent{
		RequestID: requestID,
		CenterID:  centerID,
		Nodes:     len(result.Nodes),
		Edges:     len(result.Edges),
		Elapsed:   result.Stats.Elapsed,
		Truncated: result.Truncated,
	})
	return result
}

func (x *Explorer) publish(topic string, payload any) {
	if x.bus != nil {
		x.bus.Publish(topic, payload)
	}
}

// neighborEdge is one candidate edge out of (or into) a frontier node.
type neighborEdge struct {
	t        triple.Triple
	neighbor string
	inferred bool
	fact     *inference.InferredFact
}

// traversal is the mutable state of one exploration run.
type traversal struct {
	opts      Options
	nodes     map[string]*Node
	nodeOrder []*Node
	edges     map[string]*Edge
	edgeOrder []*Edge

	nodesPerHop []int
	asserted    int
	inferred    int
	truncated   bool
	full        bool // a size cap was hit; stop traversing
}

func (x *Explorer) explore(ctx context.Context, centerID string, opts Options, started time.Time) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("exploration panic: %v", r)
		}
	}()

	useInferred := opts.IncludeInferred && x.source != nil
	if useInferred {
		// Warm the derived-fact set once; the engine's cache makes
		// repeated explorations cheap.
		if _, err := x.source.ComputeInferences(ctx); err != nil {
			return nil, err
		}
	}

	tr := &traversal{
		opts:  opts,
		nodes: make(map[string]*Node),
		edges: make(map[string]*Edge),
	}

	center, err := x.newNode(ctx, centerID, 0, false)
	if err != nil {
		return nil, err
	}
	center.IsCenter = true
	tr.nodes[centerID] = center
	tr.nodeOrder = append(tr.nodeOrder, center)
	tr.nodesPerHop = append(tr.nodesPerHop, 1)

	frontier := []string{centerID}
	for hop := 1; hop <= opts.MaxHops && len(frontier) > 0 && !tr.full; hop++ {
		if x.cancelled.Load() || ctx.Err() != nil {
			break
		}
		if x.now().Sub(started) > opts.Timeout {
			tr.truncated = true
			break
		}

		var next []string
		discovered := 0
		for _, id := range frontier {
			if tr.full {
				break
			}
			neighbors, err := x.gather(ctx, id, opts, useInferred)
			if err != nil {
				return nil, err
			}
			for _, ne := range neighbors {
				added, enqueue, err := x.visit(ctx, tr, ne, hop)
				if err != nil {
					return nil, err
				}
				if added {
					discovered++
				}
				if enqueue {
					next = append(next, ne.neighbor)
				}
				if tr.full {
					break
				}
			}
		}

		tr.nodesPerHop = append(tr.nodesPerHop, discovered)
		x.publish(event.TopicHopExpand, HopEvent{
			Hop:             hop,
			NodesDiscovered: discovered,
			TotalNodes:      len(tr.nodeOrder),
			TotalEdges:      len(tr.edgeOrder),
		})
		frontier = next
	}

	maxHop := 0
	for hop, count := range tr.nodesPerHop {
		if hop > 0 && count > 0 {
			maxHop = hop
		}
	}

	return &Result{
		CenterID: centerID,
		Nodes:    tr.nodeOrder,
		Edges:    tr.edgeOrder,
		Options:  opts,
		Stats: Stats{
			NodesPerHop:       tr.nodesPerHop,
			AssertedEdgeCount: tr.asserted,
			InferredEdgeCount: tr.inferred,
			Elapsed:           x.now().Sub(started),
			MaxHopReached:     maxHop,
		},
		Truncated: tr.truncated,
	}, nil
}

// visit processes one candidate edge at the given hop. It reports
// whether a new node was discovered and whether that node joins the
// next frontier.
func (x *Explorer) visit(ctx context.Context, tr *traversal, ne neighborEdge, hop int) (added, enqueue bool, err error) {
	// An asserted and an inferred edge over the same triple are
	// distinct: the engine discards candidates equal to asserted facts,
	// but a stale cache after store mutation can surface both.
	edgeID := ne.t.Key() + "|asserted"
	if ne.inferred {
		edgeID = ne.t.Key() + "|inferred"
	}

	if _, seen := tr.nodes[ne.neighbor]; !seen {
		node, err := x.newNode(ctx, ne.neighbor, hop, ne.inferred)
		if err != nil {
			return false, false, err
		}
		// Nodes failing the class filter are skipped entirely, along
		// with the edge that reached them.
		if !tr.opts.allowsClass(node.Types) {
			return false, false, nil
		}
		// A new node and its discovering edge are admitted together;
		// hitting either cap rejects both so the result never holds an
		// orphan node.
		if len(tr.nodes) >= tr.opts.MaxNodes || len(tr.edgeOrder) >= tr.opts.MaxEdges {
			tr.truncated = true
			tr.full = true
			return false, false, nil
		}
		tr.nodes[ne.neighbor] = node
		tr.nodeOrder = append(tr.nodeOrder, node)
		added = true
		enqueue = !ne.inferred || tr.opts.ExpandInferred
	}

	if _, exists := tr.edges[edgeID]; exists {
		return added, enqueue, nil
	}
	if len(tr.edgeOrder) >= tr.opts.MaxEdges {
		tr.truncated = true
		tr.full = true
		return added, enqueue, nil
	}
	edge := &Edge{
		ID:          edgeID,
		Source:      ne.t.Subject,
		Target:      ne.t.Object,
		Predicate:   ne.t.Predicate,
		IsInferred:  ne.inferred,
		Inference:   ne.fact,
		HopDistance: hop,
	}
	tr.edges[edgeID] = edge
	tr.edgeOrder = append(tr.edgeOrder, edge)
	if ne.inferred {
		tr.inferred++
	} else {
		tr.asserted++
	}
	return added, enqueue, nil
}

// gather collects the direction-appropriate asserted and inferred
// edges of a node, minus filtered predicates and literal objects
// (literals are values, not traversable nodes).
func (x *Explorer) gather(ctx context.Context, id string, opts Options, useInferred bool) ([]neighborEdge, error) {
	var out []neighborEdge

	appendEdge := func(t triple.Triple, neighbor string, inferred bool, fact *inference.InferredFact) {
		if t.IsLiteral {
			return
		}
		if !opts.allowsPredicate(t.Predicate) {
			return
		}
		out = append(out, neighborEdge{t: t, neighbor: neighbor, inferred: inferred, fact: fact})
	}

	if opts.Direction == DirectionOutgoing || opts.Direction == DirectionBoth {
		triples, err := x.store.GetOutgoing(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, t := range triples {
			appendEdge(t, t.Object, false, nil)
		}
		if useInferred {
			for _, fact := range x.source.InferredForSubject(id) {
				appendEdge(fact.Triple, fact.Triple.Object, true, fact)
			}
		}
	}

	if opts.Direction == DirectionIncoming || opts.Direction == DirectionBoth {
		triples, err := x.store.GetIncoming(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, t := range triples {
			appendEdge(t, t.Subject, false, nil)
		}
		if useInferred {
			for _, fact := range x.source.InferredForObject(id) {
				appendEdge(fact.Triple, fact.Triple.Subject, true, fact)
			}
		}
	}

	return out, nil
}

// newNode builds a node at the given hop, filling label and types from
// the store's metadata surface when present.
func (x *Explorer) newNode(ctx context.Context, id string, hop int, viaInference bool) (*Node, error) {
	node := &Node{
		ID:                  id,
		HopDistance:         hop,
		ReachedViaInference: viaInference,
	}
	if x.metadata != nil {
		meta, err := x.metadata.GetNodeMetadata(ctx, id)
		if err != nil {
			return nil, err
		}
		if meta != nil {
			node.Label = meta.Label
			node.Types = meta.Types
		}
	}
	return node, nil
}
