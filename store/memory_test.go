package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semreason/triple"
)

func seeded(t *testing.T) *Memory {
	t.Helper()
	m := NewMemory()
	m.AddAll([]triple.Triple{
		triple.New("ex:Alice", "ex:knows", "ex:Bob"),
		triple.New("ex:Bob", "ex:knows", "ex:Carol"),
		triple.New("ex:Alice", "rdf:type", "ex:Person"),
		triple.NewLiteral("ex:Alice", "rdfs:label", "Alice", "xsd:string"),
	})
	return m
}

func TestMemoryAddDeduplicates(t *testing.T) {
	m := NewMemory()
	assert.True(t, m.Add(triple.New("a", "p", "b")))
	assert.False(t, m.Add(triple.New("a", "p", "b")))
	assert.Equal(t, 1, m.Len())

	// Literal typing is not part of identity.
	assert.False(t, m.Add(triple.NewLiteral("a", "p", "b", "xsd:string")))
}

func TestMemoryMatch(t *testing.T) {
	m := seeded(t)
	ctx := context.Background()

	got, err := m.Match(ctx, "ex:Alice", "", "")
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = m.Match(ctx, "", "ex:knows", "")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = m.Match(ctx, "", "", "ex:Bob")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ex:Alice", got[0].Subject)

	got, err = m.Match(ctx, "", "", "")
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestMemoryHas(t *testing.T) {
	m := seeded(t)
	ctx := context.Background()

	ok, err := m.Has(ctx, triple.New("ex:Alice", "ex:knows", "ex:Bob"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.Has(ctx, triple.New("ex:Bob", "ex:knows", "ex:Alice"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryNeighborhood(t *testing.T) {
	m := seeded(t)
	ctx := context.Background()

	out, err := m.GetOutgoing(ctx, "ex:Bob")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "ex:Carol", out[0].Object)

	in, err := m.GetIncoming(ctx, "ex:Bob")
	require.NoError(t, err)
	require.Len(t, in, 1)
	assert.Equal(t, "ex:Alice", in[0].Subject)

	// Literal objects are not traversable nodes.
	in, err = m.GetIncoming(ctx, "Alice")
	require.NoError(t, err)
	assert.Empty(t, in)
}

func TestMemoryMetadataFromAssertions(t *testing.T) {
	m := seeded(t)
	ctx := context.Background()

	meta, err := m.GetNodeMetadata(ctx, "ex:Alice")
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, "Alice", meta.Label)
	assert.Equal(t, []string{"ex:Person"}, meta.Types)

	meta, err = m.GetNodeMetadata(ctx, "ex:Nobody")
	require.NoError(t, err)
	assert.Nil(t, meta)
}

func TestMemorySetNodeMetadata(t *testing.T) {
	m := NewMemory()
	m.SetNodeMetadata("ex:X", NodeMetadata{Label: "X", Types: []string{"ex:Thing"}})

	meta, err := m.GetNodeMetadata(context.Background(), "ex:X")
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, "X", meta.Label)

	// Returned metadata is a copy; mutating it does not affect the store.
	meta.Types[0] = "mutated"
	again, err := m.GetNodeMetadata(context.Background(), "ex:X")
	require.NoError(t, err)
	assert.Equal(t, []string{"ex:Thing"}, again.Types)
}
