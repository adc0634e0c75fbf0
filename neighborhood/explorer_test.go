package neighborhood

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semreason/event"
	"github.com/c360studio/semreason/inference"
	"github.com/c360studio/semreason/store"
	"github.com/c360studio/semreason/triple"
	"github.com/c360studio/semreason/vocabulary/owl"
	"github.com/c360studio/semreason/vocabulary/rdf"
	"github.com/c360studio/semreason/vocabulary/rdfs"
)

func chainStore(t *testing.T) *store.Memory {
	t.Helper()
	mem := store.NewMemory()
	mem.AddAll([]triple.Triple{
		triple.New("A", "knows", "B"),
		triple.New("B", "knows", "C"),
		triple.New("C", "knows", "D"),
	})
	return mem
}

func nodeByID(result *Result, id string) *Node {
	for _, n := range result.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

func TestDefaultOptionsEnableInferredEdges(t *testing.T) {
	opts := DefaultOptions()
	assert.True(t, opts.IncludeInferred)
	assert.False(t, opts.ExpandInferred)
	assert.Equal(t, DirectionBoth, opts.Direction)

	// Boolean fields pass through normalization untouched; callers who
	// build Options from scratch opt out of the inferred-edge default.
	zero := Options{}.withDefaults()
	assert.False(t, zero.IncludeInferred)
	assert.Equal(t, DefaultOptions().MaxHops, zero.MaxHops)
}

func TestExploreLinearChainHopDistances(t *testing.T) {
	x := NewExplorer(chainStore(t), nil, nil, nil)

	opts := DefaultOptions()
	opts.MaxHops = 3
	opts.Direction = DirectionOutgoing
	result := x.Explore(context.Background(), "A", opts)

	require.Len(t, result.Nodes, 4)
	require.Len(t, result.Edges, 3)

	for id, hop := range map[string]int{"A": 0, "B": 1, "C": 2, "D": 3} {
		node := nodeByID(result, id)
		require.NotNil(t, node, id)
		assert.Equal(t, hop, node.HopDistance, id)
	}
	assert.True(t, nodeByID(result, "A").IsCenter)
	assert.Equal(t, []int{1, 1, 1, 1}, result.Stats.NodesPerHop)
	assert.Equal(t, 3, result.Stats.MaxHopReached)
	assert.Equal(t, 3, result.Stats.AssertedEdgeCount)
	assert.Zero(t, result.Stats.InferredEdgeCount)
	assert.False(t, result.Truncated)
}

func TestExploreStopsAtMaxHops(t *testing.T) {
	x := NewExplorer(chainStore(t), nil, nil, nil)

	opts := DefaultOptions()
	opts.MaxHops = 2
	opts.Direction = DirectionOutgoing
	result := x.Explore(context.Background(), "A", opts)

	assert.Len(t, result.Nodes, 3)
	assert.Nil(t, nodeByID(result, "D"))
	assert.Equal(t, 2, result.Stats.MaxHopReached)
	assert.False(t, result.Truncated, "hop limit is a bound, not truncation")
}

func TestExploreDirectionIncoming(t *testing.T) {
	x := NewExplorer(chainStore(t), nil, nil, nil)

	opts := DefaultOptions()
	opts.MaxHops = 3
	opts.Direction = DirectionIncoming
	result := x.Explore(context.Background(), "D", opts)

	require.Len(t, result.Nodes, 4)
	assert.Equal(t, 1, nodeByID(result, "C").HopDistance)
	assert.Equal(t, 3, nodeByID(result, "A").HopDistance)
}

func TestExploreDirectionBoth(t *testing.T) {
	x := NewExplorer(chainStore(t), nil, nil, nil)

	opts := DefaultOptions()
	opts.MaxHops = 1
	opts.Direction = DirectionBoth
	result := x.Explore(context.Background(), "B", opts)

	require.Len(t, result.Nodes, 3)
	assert.Equal(t, 1, nodeByID(result, "A").HopDistance)
	assert.Equal(t, 1, nodeByID(result, "C").HopDistance)
}

func TestExploreMaxNodesTruncates(t *testing.T) {
	mem := store.NewMemory()
	mem.AddAll([]triple.Triple{
		triple.New("hub", "knows", "n1"),
		triple.New("hub", "knows", "n2"),
		triple.New("hub", "knows", "n3"),
	})
	x := NewExplorer(mem, nil, nil, nil)

	opts := DefaultOptions()
	opts.MaxNodes = 2
	result := x.Explore(context.Background(), "hub", opts)

	assert.True(t, result.Truncated)
	assert.LessOrEqual(t, len(result.Nodes), 2)
}

func TestExploreMaxEdgesTruncates(t *testing.T) {
	mem := store.NewMemory()
	mem.AddAll([]triple.Triple{
		triple.New("hub", "knows", "n1"),
		triple.New("hub", "likes", "n1"),
		triple.New("hub", "follows", "n1"),
	})
	x := NewExplorer(mem, nil, nil, nil)

	opts := DefaultOptions()
	opts.MaxEdges = 2
	result := x.Explore(context.Background(), "hub", opts)

	assert.True(t, result.Truncated)
	assert.LessOrEqual(t, len(result.Edges), 2)
}

func TestExploreMaxEdgesAdmitsNodeAndEdgeTogether(t *testing.T) {
	x := NewExplorer(chainStore(t), nil, nil, nil)

	opts := DefaultOptions()
	opts.MaxHops = 3
	opts.Direction = DirectionOutgoing
	opts.MaxEdges = 2
	result := x.Explore(context.Background(), "A", opts)

	assert.True(t, result.Truncated)
	assert.Len(t, result.Edges, 2)
	assert.Nil(t, nodeByID(result, "D"), "node past the edge cap must not appear")

	// Every non-center node is the endpoint of a recorded edge.
	incident := make(map[string]bool)
	for _, e := range result.Edges {
		incident[e.Source] = true
		incident[e.Target] = true
	}
	for _, n := range result.Nodes {
		if !n.IsCenter {
			assert.True(t, incident[n.ID], "node %s has no incident edge", n.ID)
		}
	}
}

func TestExploreAssertedAndInferredEdgesAreDistinct(t *testing.T) {
	mem := store.NewMemory()
	mem.AddAll([]triple.Triple{
		triple.New("partOf", rdf.Type, owl.TransitiveProperty),
		triple.New("A", "partOf", "B"),
		triple.New("B", "partOf", "C"),
	})
	engine := inference.NewEngine(mem, inference.DefaultOptions())
	_, err := engine.ComputeInferences(context.Background())
	require.NoError(t, err)

	// Assert the derived triple without invalidating the cache; the
	// traversal now sees the same triple from both origins.
	require.True(t, mem.Add(triple.New("A", "partOf", "C")))

	x := NewExplorer(mem, engine, nil, nil)
	opts := DefaultOptions()
	opts.MaxHops = 1
	opts.Direction = DirectionOutgoing
	result := x.Explore(context.Background(), "A", opts)

	var asserted, inferred int
	for _, e := range result.Edges {
		if e.Source != "A" || e.Predicate != "partOf" || e.Target != "C" {
			continue
		}
		if e.IsInferred {
			inferred++
		} else {
			asserted++
		}
	}
	assert.Equal(t, 1, asserted)
	assert.Equal(t, 1, inferred)
	assert.NotNil(t, nodeByID(result, "C"))
}

func TestExplorePredicateFilters(t *testing.T) {
	mem := store.NewMemory()
	mem.AddAll([]triple.Triple{
		triple.New("A", "foaf:knows", "B"),
		triple.New("A", "foaf:member", "G"),
		triple.New("A", "dc:creator", "Doc"),
	})
	x := NewExplorer(mem, nil, nil, nil)

	opts := DefaultOptions()
	opts.PredicateFilter = []string{"foaf:*"}
	result := x.Explore(context.Background(), "A", opts)
	assert.Len(t, result.Edges, 2)
	assert.Nil(t, nodeByID(result, "Doc"))

	opts = DefaultOptions()
	opts.ExcludePredicates = []string{"foaf:member"}
	result = x.Explore(context.Background(), "A", opts)
	assert.Len(t, result.Edges, 2)
	assert.Nil(t, nodeByID(result, "G"))
}

func TestExploreClassFilterSkipsNodeAndEdge(t *testing.T) {
	mem := store.NewMemory()
	mem.AddAll([]triple.Triple{
		triple.New("A", "knows", "B"),
		triple.New("A", "knows", "C"),
		triple.New("B", rdf.Type, "Person"),
		triple.New("C", rdf.Type, "Robot"),
		triple.New("B", "knows", "D"),
		triple.New("D", rdf.Type, "Person"),
	})
	x := NewExplorer(mem, nil, nil, nil)

	opts := DefaultOptions()
	opts.Direction = DirectionOutgoing
	opts.ClassFilter = []string{"Person"}
	opts.PredicateFilter = []string{"knows"}
	result := x.Explore(context.Background(), "A", opts)

	// The center is exempt from the class filter even without types.
	assert.NotNil(t, nodeByID(result, "A"))
	assert.NotNil(t, nodeByID(result, "B"))
	assert.NotNil(t, nodeByID(result, "D"))
	assert.Nil(t, nodeByID(result, "C"))
	for _, e := range result.Edges {
		assert.NotEqual(t, "C", e.Target)
	}
}

func TestExploreSkipsLiteralObjects(t *testing.T) {
	mem := store.NewMemory()
	mem.Add(triple.New("A", "knows", "B"))
	mem.Add(triple.NewLiteral("A", "age", "42", "xsd:integer"))
	x := NewExplorer(mem, nil, nil, nil)

	result := x.Explore(context.Background(), "A", DefaultOptions())

	assert.Len(t, result.Nodes, 2)
	assert.Len(t, result.Edges, 1)
}

func TestExploreNodeMetadataPopulated(t *testing.T) {
	mem := store.NewMemory()
	mem.Add(triple.New("A", "knows", "B"))
	mem.Add(triple.New("B", rdf.Type, "Person"))
	mem.Add(triple.NewLiteral("B", rdfs.Label, "Bob", ""))
	x := NewExplorer(mem, nil, nil, nil)

	result := x.Explore(context.Background(), "A", DefaultOptions())

	b := nodeByID(result, "B")
	require.NotNil(t, b)
	assert.Equal(t, "Bob", b.Label)
	assert.Equal(t, []string{"Person"}, b.Types)
}

func transitiveFixture(t *testing.T) (*store.Memory, *inference.Engine) {
	t.Helper()
	mem := store.NewMemory()
	mem.AddAll([]triple.Triple{
		triple.New("partOf", rdf.Type, owl.TransitiveProperty),
		triple.New("A", "partOf", "B"),
		triple.New("B", "partOf", "C"),
		triple.New("C", "other", "D"),
	})
	return mem, inference.NewEngine(mem, inference.DefaultOptions())
}

func TestExploreInferredEdgesShownNotTraversed(t *testing.T) {
	mem, engine := transitiveFixture(t)
	x := NewExplorer(mem, engine, nil, nil)

	opts := DefaultOptions()
	opts.MaxHops = 2
	opts.Direction = DirectionOutgoing
	opts.PredicateFilter = []string{"partOf", "other"}
	result := x.Explore(context.Background(), "A", opts)

	// A partOf C is derived, so C appears at hop 1 via inference.
	c := nodeByID(result, "C")
	require.NotNil(t, c)
	assert.Equal(t, 1, c.HopDistance)
	assert.True(t, c.ReachedViaInference)

	var inferredEdge *Edge
	for _, e := range result.Edges {
		if e.IsInferred && e.Source == "A" && e.Target == "C" {
			inferredEdge = e
		}
	}
	require.NotNil(t, inferredEdge)
	require.NotNil(t, inferredEdge.Inference)
	assert.Equal(t, result.Stats.InferredEdgeCount, countInferred(result))

	// C was reached over an inferred edge only, so its own neighbors
	// stay hidden until ExpandInferred is set.
	assert.Nil(t, nodeByID(result, "D"))

	opts.ExpandInferred = true
	result = x.Explore(context.Background(), "A", opts)
	d := nodeByID(result, "D")
	require.NotNil(t, d)
	assert.Equal(t, 2, d.HopDistance)
}

func countInferred(result *Result) int {
	n := 0
	for _, e := range result.Edges {
		if e.IsInferred {
			n++
		}
	}
	return n
}

func TestExploreExcludesInferredWhenDisabled(t *testing.T) {
	mem, engine := transitiveFixture(t)
	x := NewExplorer(mem, engine, nil, nil)

	opts := DefaultOptions()
	opts.Direction = DirectionOutgoing
	opts.IncludeInferred = false
	opts.PredicateFilter = []string{"partOf"}
	result := x.Explore(context.Background(), "A", opts)

	assert.Zero(t, result.Stats.InferredEdgeCount)
	for _, e := range result.Edges {
		assert.False(t, e.IsInferred)
	}
}

type failingNeighborhood struct{}

var errNeighborhood = errors.New("backend unavailable")

func (failingNeighborhood) GetOutgoing(context.Context, string) ([]triple.Triple, error) {
	return nil, errNeighborhood
}

func (failingNeighborhood) GetIncoming(context.Context, string) ([]triple.Triple, error) {
	return nil, errNeighborhood
}

func TestExploreStoreFailureYieldsEmptyResultAndEvent(t *testing.T) {
	bus := event.NewBus(nil)
	var errEvents []ErrorEvent
	var completed int
	bus.Subscribe(event.TopicExploreError, func(ev event.Event) {
		errEvents = append(errEvents, ev.Payload.(ErrorEvent))
	})
	bus.Subscribe(event.TopicExploreComplete, func(event.Event) { completed++ })

	x := NewExplorer(failingNeighborhood{}, nil, bus, nil)
	result := x.Explore(context.Background(), "A", DefaultOptions())

	require.NotNil(t, result)
	assert.Equal(t, "A", result.CenterID)
	assert.Empty(t, result.Nodes)
	assert.Empty(t, result.Edges)

	require.Len(t, errEvents, 1)
	assert.Equal(t, "A", errEvents[0].CenterID)
	assert.Contains(t, errEvents[0].Message, "backend unavailable")
	assert.Zero(t, completed)
}

func TestExploreEvents(t *testing.T) {
	bus := event.NewBus(nil)
	var topics []string
	var hops []HopEvent
	bus.Subscribe(event.TopicExploreStart, func(ev event.Event) { topics = append(topics, ev.Topic) })
	bus.Subscribe(event.TopicHopExpand, func(ev event.Event) {
		topics = append(topics, ev.Topic)
		hops = append(hops, ev.Payload.(HopEvent))
	})
	bus.Subscribe(event.TopicExploreComplete, func(ev event.Event) { topics = append(topics, ev.Topic) })

	x := NewExplorer(chainStore(t), nil, bus, nil)
	opts := DefaultOptions()
	opts.MaxHops = 2
	opts.Direction = DirectionOutgoing
	result := x.Explore(context.Background(), "A", opts)

	assert.Equal(t, []string{
		event.TopicExploreStart,
		event.TopicHopExpand,
		event.TopicHopExpand,
		event.TopicExploreComplete,
	}, topics)
	require.Len(t, hops, 2)
	assert.Equal(t, 1, hops[0].Hop)
	assert.Equal(t, 1, hops[0].NodesDiscovered)
	assert.Equal(t, len(result.Nodes), hops[1].TotalNodes)
}

func TestExploreCancelStopsAtHopBoundary(t *testing.T) {
	bus := event.NewBus(nil)
	x := NewExplorer(chainStore(t), nil, bus, nil)
	bus.Subscribe(event.TopicHopExpand, func(event.Event) { x.Cancel() })

	opts := DefaultOptions()
	opts.MaxHops = 3
	opts.Direction = DirectionOutgoing
	result := x.Explore(context.Background(), "A", opts)

	// Cancel lands after the first hop event, so only hop 1 completes.
	assert.Len(t, result.Nodes, 2)
	assert.False(t, result.Truncated, "explicit cancel is not truncation")
}

func TestExploreContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	x := NewExplorer(chainStore(t), nil, nil, nil)
	opts := DefaultOptions()
	opts.Direction = DirectionOutgoing
	result := x.Explore(ctx, "A", opts)

	assert.Len(t, result.Nodes, 1, "only the center survives an immediate cancel")
}

func TestExploreTimeoutTruncates(t *testing.T) {
	x := NewExplorer(chainStore(t), nil, nil, nil)
	base := time.Now()
	calls := 0
	x.now = func() time.Time {
		calls++
		if calls == 1 {
			return base
		}
		return base.Add(time.Minute)
	}

	opts := DefaultOptions()
	opts.Direction = DirectionOutgoing
	opts.Timeout = 10 * time.Second
	result := x.Explore(context.Background(), "A", opts)

	assert.True(t, result.Truncated)
	assert.Len(t, result.Nodes, 1)
}

func TestExploreDuplicateEdgeRecordedOnce(t *testing.T) {
	mem := store.NewMemory()
	mem.AddAll([]triple.Triple{
		triple.New("A", "knows", "B"),
		triple.New("A", "knows", "C"),
		triple.New("B", "knows", "C"),
		triple.New("C", "knows", "B"),
	})
	x := NewExplorer(mem, nil, nil, nil)

	opts := DefaultOptions()
	opts.MaxHops = 3
	opts.Direction = DirectionOutgoing
	result := x.Explore(context.Background(), "A", opts)

	seen := make(map[string]bool)
	for _, e := range result.Edges {
		assert.False(t, seen[e.ID], "edge %s recorded twice", e.ID)
		seen[e.ID] = true
	}
	assert.Len(t, result.Edges, 4)
	assert.Len(t, result.Nodes, 3)
}
