package inference

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semreason/event"
	"github.com/c360studio/semreason/rules"
	"github.com/c360studio/semreason/store"
	"github.com/c360studio/semreason/triple"
	"github.com/c360studio/semreason/vocabulary/owl"
	"github.com/c360studio/semreason/vocabulary/rdf"
	"github.com/c360studio/semreason/vocabulary/rdfs"
)

// countingStore tracks how often the engine reads the full triple set.
type countingStore struct {
	*store.Memory
	getAllCalls int
}

func (c *countingStore) GetAll(ctx context.Context) ([]triple.Triple, error) {
	c.getAllCalls++
	return c.Memory.GetAll(ctx)
}

// failingStore rejects every operation.
type failingStore struct{}

var errStore = errors.New("store unavailable")

func (failingStore) Match(context.Context, string, string, string) ([]triple.Triple, error) {
	return nil, errStore
}
func (failingStore) Has(context.Context, triple.Triple) (bool, error) { return false, errStore }
func (failingStore) GetAll(context.Context) ([]triple.Triple, error)  { return nil, errStore }

func newTestEngine(t *testing.T, triples ...triple.Triple) (*Engine, *countingStore) {
	t.Helper()
	mem := store.NewMemory()
	mem.AddAll(triples)
	cs := &countingStore{Memory: mem}
	return NewEngine(cs, DefaultOptions()), cs
}

func TestSubClassTransitivityClosure(t *testing.T) {
	e, _ := newTestEngine(t,
		triple.New("ex:A", rdfs.SubClassOf, "ex:B"),
		triple.New("ex:B", rdfs.SubClassOf, "ex:C"),
	)

	facts, err := e.ComputeInferences(context.Background())
	require.NoError(t, err)
	require.Len(t, facts, 1)

	assert.Equal(t, triple.New("ex:A", rdfs.SubClassOf, "ex:C"), facts[0].Triple)
	assert.Equal(t, rules.TypeSubClassTransitivity, facts[0].Type)
	assert.Equal(t, 1.0, facts[0].Confidence)
	assert.True(t, e.IsInferred(facts[0].Triple))
}

func TestInversePropagation(t *testing.T) {
	e, _ := newTestEngine(t,
		triple.New("ex:hasChild", owl.InverseOf, "ex:hasParent"),
		triple.New("ex:John", "ex:hasChild", "ex:Mary"),
	)

	_, err := e.ComputeInferences(context.Background())
	require.NoError(t, err)
	assert.True(t, e.IsInferred(triple.New("ex:Mary", "ex:hasParent", "ex:John")))
}

func TestSymmetricPropagation(t *testing.T) {
	e, _ := newTestEngine(t,
		triple.New("ex:knows", rdf.Type, owl.SymmetricProperty),
		triple.New("ex:Alice", "ex:knows", "ex:Bob"),
	)

	_, err := e.ComputeInferences(context.Background())
	require.NoError(t, err)
	assert.True(t, e.IsInferred(triple.New("ex:Bob", "ex:knows", "ex:Alice")))
}

func TestTransitivePropertyPropagation(t *testing.T) {
	e, _ := newTestEngine(t,
		triple.New("ex:partOf", rdf.Type, owl.TransitiveProperty),
		triple.New("ex:Piston", "ex:partOf", "ex:Engine"),
		triple.New("ex:Engine", "ex:partOf", "ex:Car"),
	)

	_, err := e.ComputeInferences(context.Background())
	require.NoError(t, err)
	assert.True(t, e.IsInferred(triple.New("ex:Piston", "ex:partOf", "ex:Car")))
}

func TestDomainRangeInference(t *testing.T) {
	e, _ := newTestEngine(t,
		triple.New("ex:teaches", rdfs.Domain, "ex:Teacher"),
		triple.New("ex:teaches", rdfs.Range, "ex:Course"),
		triple.New("ex:Jane", "ex:teaches", "ex:Algebra"),
	)

	_, err := e.ComputeInferences(context.Background())
	require.NoError(t, err)
	assert.True(t, e.IsInferred(triple.New("ex:Jane", rdf.Type, "ex:Teacher")))
	assert.True(t, e.IsInferred(triple.New("ex:Algebra", rdf.Type, "ex:Course")))
}

func TestIdempotentWhileCacheValid(t *testing.T) {
	e, cs := newTestEngine(t,
		triple.New("ex:A", rdfs.SubClassOf, "ex:B"),
		triple.New("ex:B", rdfs.SubClassOf, "ex:C"),
	)
	ctx := context.Background()

	first, err := e.ComputeInferences(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, cs.getAllCalls)

	second, err := e.ComputeInferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cs.getAllCalls, "cached call must not touch the store")
	require.Len(t, second, len(first))
	for i := range first {
		assert.Same(t, first[i], second[i], "cached call returns identical fact instances")
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	e, cs := newTestEngine(t, triple.New("ex:A", rdfs.SubClassOf, "ex:B"))
	ctx := context.Background()

	base := time.Now()
	e.now = func() time.Time { return base }
	_, err := e.ComputeInferences(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, cs.getAllCalls)

	e.now = func() time.Time { return base.Add(e.opts.CacheTTL + time.Second) }
	_, err = e.ComputeInferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, cs.getAllCalls, "expired cache must recompute")
}

func TestNoDuplicateFactsOnSubclassChain(t *testing.T) {
	// A1 ⊂ A2 ⊂ A3 ⊂ A4 ⊂ A5: closure adds C(5,2)=10 pairs, 4 asserted,
	// so exactly 6 inferred, each with a single justification.
	e, _ := newTestEngine(t,
		triple.New("ex:A1", rdfs.SubClassOf, "ex:A2"),
		triple.New("ex:A2", rdfs.SubClassOf, "ex:A3"),
		triple.New("ex:A3", rdfs.SubClassOf, "ex:A4"),
		triple.New("ex:A4", rdfs.SubClassOf, "ex:A5"),
	)

	facts, err := e.ComputeInferences(context.Background())
	require.NoError(t, err)
	assert.Len(t, facts, 6)

	keys := make(map[string]bool)
	for _, f := range facts {
		assert.False(t, keys[f.Triple.Key()], "duplicate fact %s", f.Triple)
		keys[f.Triple.Key()] = true
	}
}

func TestRederivingAssertedFactIsDiscarded(t *testing.T) {
	e, _ := newTestEngine(t,
		triple.New("ex:A", rdfs.SubClassOf, "ex:B"),
		triple.New("ex:B", rdfs.SubClassOf, "ex:C"),
		triple.New("ex:A", rdfs.SubClassOf, "ex:C"), // already asserted
	)

	facts, err := e.ComputeInferences(context.Background())
	require.NoError(t, err)
	assert.Empty(t, facts, "asserted facts must not be re-derived")
}

func TestMaxInferencesBoundsOutput(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxInferences = 3

	mem := store.NewMemory()
	mem.AddAll([]triple.Triple{
		triple.New("ex:A1", rdfs.SubClassOf, "ex:A2"),
		triple.New("ex:A2", rdfs.SubClassOf, "ex:A3"),
		triple.New("ex:A3", rdfs.SubClassOf, "ex:A4"),
		triple.New("ex:A4", rdfs.SubClassOf, "ex:A5"),
		triple.New("ex:A5", rdfs.SubClassOf, "ex:A6"),
	})
	e := NewEngine(mem, opts)

	facts, err := e.ComputeInferences(context.Background())
	require.NoError(t, err)
	assert.Len(t, facts, 3)
	assert.True(t, e.Stats().Truncated)

	// Deterministic truncation: rerunning after invalidation yields the
	// same facts in the same order.
	e.InvalidateCache()
	again, err := e.ComputeInferences(context.Background())
	require.NoError(t, err)
	require.Len(t, again, 3)
	for i := range facts {
		assert.Equal(t, facts[i].Triple, again[i].Triple)
	}
}

func TestJustifyPrefersAsserted(t *testing.T) {
	// A⊂C is asserted and would also be derivable from the chain.
	e, _ := newTestEngine(t,
		triple.New("ex:A", rdfs.SubClassOf, "ex:B"),
		triple.New("ex:B", rdfs.SubClassOf, "ex:C"),
		triple.New("ex:A", rdfs.SubClassOf, "ex:C"),
	)
	ctx := context.Background()
	_, err := e.ComputeInferences(ctx)
	require.NoError(t, err)

	j, err := e.Justify(ctx, triple.New("ex:A", rdfs.SubClassOf, "ex:C"))
	require.NoError(t, err)
	require.NotNil(t, j)
	assert.Equal(t, 0, j.Depth, "asserted justification wins")
	assert.Empty(t, j.InferenceChain)
}

func TestJustifyInferred(t *testing.T) {
	e, _ := newTestEngine(t,
		triple.New("ex:A", rdfs.SubClassOf, "ex:B"),
		triple.New("ex:B", rdfs.SubClassOf, "ex:C"),
	)
	ctx := context.Background()
	_, err := e.ComputeInferences(ctx)
	require.NoError(t, err)

	j, err := e.Justify(ctx, triple.New("ex:A", rdfs.SubClassOf, "ex:C"))
	require.NoError(t, err)
	require.NotNil(t, j)
	assert.Equal(t, 1, j.Depth)
	require.Len(t, j.InferenceChain, 1)
	step := j.InferenceChain[0]
	assert.Equal(t, "rdfs-subclass-transitivity", step.Rule.ID)
	assert.Equal(t, 0, step.StepNumber)
	require.Len(t, step.Premises, 2)
	assert.Contains(t, j.Explanation, "By Subclass transitivity")
	assert.Contains(t, j.Explanation, "AND")
}

func TestJustifyUnknownTriple(t *testing.T) {
	e, _ := newTestEngine(t)
	j, err := e.Justify(context.Background(), triple.New("x", "y", "z"))
	require.NoError(t, err)
	assert.Nil(t, j)
}

func TestMinimalJustifications(t *testing.T) {
	opts := DefaultOptions()
	opts.ComputeJustifications = false

	mem := store.NewMemory()
	mem.AddAll([]triple.Triple{
		triple.New("ex:A", rdfs.SubClassOf, "ex:B"),
		triple.New("ex:B", rdfs.SubClassOf, "ex:C"),
	})
	e := NewEngine(mem, opts)

	facts, err := e.ComputeInferences(context.Background())
	require.NoError(t, err)
	require.Len(t, facts, 1)

	j := facts[0].Justification
	assert.Empty(t, j.InferenceChain)
	assert.Equal(t, "Inferred via Subclass transitivity", j.Explanation)
	assert.Len(t, j.SupportingFacts, 2)
	assert.Equal(t, 1, j.Depth)
}

func TestRuleMutationInvalidatesCache(t *testing.T) {
	e, cs := newTestEngine(t, triple.New("ex:A", rdfs.SubClassOf, "ex:B"))
	ctx := context.Background()

	_, err := e.ComputeInferences(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, cs.getAllCalls)

	require.True(t, e.SetRuleEnabled("rdfs-subclass-transitivity", false))
	_, err = e.ComputeInferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, cs.getAllCalls)

	require.True(t, e.RemoveRule("owl-symmetric"))
	_, err = e.ComputeInferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, cs.getAllCalls)
}

func TestUnknownRuleIDsAreNoOps(t *testing.T) {
	e, _ := newTestEngine(t)
	assert.False(t, e.RemoveRule("nope"))
	assert.False(t, e.SetRuleEnabled("nope", true))
}

func TestStoreErrorPropagates(t *testing.T) {
	e := NewEngine(failingStore{}, DefaultOptions())

	_, err := e.ComputeInferences(context.Background())
	assert.ErrorIs(t, err, errStore)

	_, err = e.Justify(context.Background(), triple.New("a", "b", "c"))
	assert.ErrorIs(t, err, errStore)
}

func TestComputedEventEmitted(t *testing.T) {
	bus := event.NewBus(nil)
	var got []ComputedEvent
	bus.Subscribe(event.TopicInferenceComputed, func(e event.Event) {
		got = append(got, e.Payload.(ComputedEvent))
	})

	opts := DefaultOptions()
	opts.Bus = bus
	mem := store.NewMemory()
	mem.AddAll([]triple.Triple{
		triple.New("ex:A", rdfs.SubClassOf, "ex:B"),
		triple.New("ex:B", rdfs.SubClassOf, "ex:C"),
	})
	e := NewEngine(mem, opts)

	_, err := e.ComputeInferences(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Count)
	assert.GreaterOrEqual(t, got[0].Iterations, 1)

	// Cached call emits nothing.
	_, err = e.ComputeInferences(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)

	var cleared bool
	bus.Subscribe(event.TopicInferenceCleared, func(event.Event) { cleared = true })
	e.Clear()
	assert.True(t, cleared)
}

func TestInferredAccessors(t *testing.T) {
	e, _ := newTestEngine(t,
		triple.New("ex:hasChild", owl.InverseOf, "ex:hasParent"),
		triple.New("ex:John", "ex:hasChild", "ex:Mary"),
	)
	_, err := e.ComputeInferences(context.Background())
	require.NoError(t, err)

	byType := e.InferredByType(rules.TypeInverseProperty)
	require.Len(t, byType, 1)

	forSubject := e.InferredForSubject("ex:Mary")
	require.Len(t, forSubject, 1)
	assert.Equal(t, "ex:hasParent", forSubject[0].Triple.Predicate)

	forObject := e.InferredForObject("ex:John")
	require.Len(t, forObject, 1)

	stats := e.Stats()
	assert.Equal(t, 1, stats.TotalInferred)
	assert.Equal(t, 1, stats.ByRule["owl-inverse-forward"])
	assert.True(t, stats.CacheValid)

	e.Clear()
	assert.Equal(t, 0, e.Stats().TotalInferred)
	assert.False(t, e.Stats().CacheValid)
}

func TestSameAsPropagation(t *testing.T) {
	e, _ := newTestEngine(t,
		triple.New("ex:Clark", owl.SameAs, "ex:Superman"),
		triple.New("ex:Superman", owl.SameAs, "ex:KalEl"),
	)
	_, err := e.ComputeInferences(context.Background())
	require.NoError(t, err)

	assert.True(t, e.IsInferred(triple.New("ex:Superman", owl.SameAs, "ex:Clark")))
	assert.True(t, e.IsInferred(triple.New("ex:Clark", owl.SameAs, "ex:KalEl")))
}

func TestEquivalentClassYieldsSubclassBothWays(t *testing.T) {
	e, _ := newTestEngine(t,
		triple.New("ex:Human", owl.EquivalentClass, "ex:Person"),
	)
	_, err := e.ComputeInferences(context.Background())
	require.NoError(t, err)

	assert.True(t, e.IsInferred(triple.New("ex:Human", rdfs.SubClassOf, "ex:Person")))
	assert.True(t, e.IsInferred(triple.New("ex:Person", rdfs.SubClassOf, "ex:Human")))
}

func TestTypeInheritanceThroughClosure(t *testing.T) {
	e, _ := newTestEngine(t,
		triple.New("ex:Rex", rdf.Type, "ex:Dog"),
		triple.New("ex:Dog", rdfs.SubClassOf, "ex:Mammal"),
		triple.New("ex:Mammal", rdfs.SubClassOf, "ex:Animal"),
	)
	_, err := e.ComputeInferences(context.Background())
	require.NoError(t, err)

	assert.True(t, e.IsInferred(triple.New("ex:Rex", rdf.Type, "ex:Mammal")))
	assert.True(t, e.IsInferred(triple.New("ex:Rex", rdf.Type, "ex:Animal")))
}
