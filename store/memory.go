package store

import (
	"context"
	"sync"

	"github.com/c360studio/semreason/triple"
	"github.com/c360studio/semreason/vocabulary/rdf"
	"github.com/c360studio/semreason/vocabulary/rdfs"
)

// Memory is an indexed in-memory triple store. It implements
// TripleStore, NeighborhoodStore and MetadataProvider, which makes the
// module usable standalone (tests, CLI, the reasoner processor) without
// a host application's store.
//
// Reads and writes are guarded by a single RWMutex; the reasoner itself
// stays single-writer per its API contract, but the processor ingests
// triples from a consumer goroutine while queries arrive elsewhere.
type Memory struct {
	mu        sync.RWMutex
	triples   []triple.Triple
	keys      map[string]struct{}
	bySubject map[string][]int
	byObject  map[string][]int
	metadata  map[string]*NodeMetadata
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		keys:      make(map[string]struct{}),
		bySubject: make(map[string][]int),
		byObject:  make(map[string][]int),
		metadata:  make(map[string]*NodeMetadata),
	}
}

// Add asserts a triple. Re-adding an already-asserted triple (by
// identity key) is a no-op and reports false.
func (m *Memory) Add(t triple.Triple) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := t.Key()
	if _, exists := m.keys[key]; exists {
		return false
	}
	idx := len(m.triples)
	m.triples = append(m.triples, t)
	m.keys[key] = struct{}{}
	m.bySubject[t.Subject] = append(m.bySubject[t.Subject], idx)
	if !t.IsLiteral {
		m.byObject[t.Object] = append(m.byObject[t.Object], idx)
	}

	// rdf:type assertions double as node metadata for class filtering.
	if t.Predicate == rdf.Type {
		meta := m.metadata[t.Subject]
		if meta == nil {
			meta = &NodeMetadata{}
			m.metadata[t.Subject] = meta
		}
		meta.Types = append(meta.Types, t.Object)
	}
	if t.Predicate == rdfs.Label && t.IsLiteral {
		meta := m.metadata[t.Subject]
		if meta == nil {
			meta = &NodeMetadata{}
			m.metadata[t.Subject] = meta
		}
		meta.Label = t.Object
	}
	return true
}

// AddAll asserts a batch of triples and returns how many were new.
func (m *Memory) AddAll(ts []triple.Triple) int {
	added := 0
	for _, t := range ts {
		if m.Add(t) {
			added++
		}
	}
	return added
}

// SetNodeMetadata attaches descriptive metadata to a node, replacing
// anything derived from rdf:type assertions so far.
func (m *Memory) SetNodeMetadata(id string, meta NodeMetadata) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := meta
	m.metadata[id] = &copied
}

// Len returns the number of asserted triples.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.triples)
}

// Match implements TripleStore. Empty-string constraints are wildcards.
func (m *Memory) Match(_ context.Context, subject, predicate, object string) ([]triple.Triple, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Narrow via an index when a bound position has one.
	candidates := m.candidateIndexes(subject, object)

	var out []triple.Triple
	for _, idx := range candidates {
		t := m.triples[idx]
		if subject != "" && t.Subject != subject {
			continue
		}
		if predicate != "" && t.Predicate != predicate {
			continue
		}
		if object != "" && t.Object != object {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// candidateIndexes picks the smallest available index for the bound
// positions, falling back to a full scan. Callers hold the read lock.
func (m *Memory) candidateIndexes(subject, object string) []int {
	switch {
	case subject != "" && object != "":
		s, o := m.bySubject[subject], m.byObject[object]
		if len(s) <= len(o) {
			return s
		}
		return o
	case subject != "":
		return m.bySubject[subject]
	case object != "":
		return m.byObject[object]
	default:
		all := make([]int, len(m.triples))
		for i := range all {
			all[i] = i
		}
		return all
	}
}

// Has implements TripleStore.
func (m *Memory) Has(_ context.Context, t triple.Triple) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.keys[t.Key()]
	return ok, nil
}

// GetAll implements TripleStore. The returned slice is a copy.
func (m *Memory) GetAll(_ context.Context) ([]triple.Triple, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]triple.Triple, len(m.triples))
	copy(out, m.triples)
	return out, nil
}

// GetOutgoing implements NeighborhoodStore.
func (m *Memory) GetOutgoing(_ context.Context, subject string) ([]triple.Triple, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idxs := m.bySubject[subject]
	out := make([]triple.Triple, 0, len(idxs))
	for _, idx := range idxs {
		out = append(out, m.triples[idx])
	}
	return out, nil
}

// GetIncoming implements NeighborhoodStore. Literal objects never
// appear as incoming edges.
func (m *Memory) GetIncoming(_ context.Context, object string) ([]triple.Triple, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idxs := m.byObject[object]
	out := make([]triple.Triple, 0, len(idxs))
	for _, idx := range idxs {
		out = append(out, m.triples[idx])
	}
	return out, nil
}

// GetNodeMetadata implements MetadataProvider. Unknown nodes return
// nil, nil.
func (m *Memory) GetNodeMetadata(_ context.Context, id string) (*NodeMetadata, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	meta, ok := m.metadata[id]
	if !ok {
		return nil, nil
	}
	copied := *meta
	copied.Types = append([]string(nil), meta.Types...)
	return &copied, nil
}
