package inference

import (
	"context"
	"log/slog"
	"time"

	"github.com/c360studio/semreason/event"
	"github.com/c360studio/semreason/rules"
	"github.com/c360studio/semreason/store"
	"github.com/c360studio/semreason/triple"
)

// Options configures an Engine. Start from DefaultOptions and override;
// zero numeric fields are normalized to their defaults, but
// ComputeJustifications is honored as given.
type Options struct {
	// MaxIterations caps fixed-point passes over the rule set. It does
	// not bound justification depth, which is always 1 for a firing.
	MaxIterations int

	// MaxInferences caps the total number of accepted derived facts.
	// Hitting the cap is silent truncation, not an error.
	MaxInferences int

	// CacheTTL bounds how long a computed result set is served without
	// recomputation. The cache is time-boxed memoization, not
	// dependency tracking: mutating the store without calling
	// InvalidateCache is silently missed until the TTL lapses.
	CacheTTL time.Duration

	// ComputeJustifications selects full single-step chains with
	// templated explanations; when false only the minimal
	// justification is stored.
	ComputeJustifications bool

	// Registry supplies the rule set; nil means the built-in
	// RDFS/OWL 2 RL catalog.
	Registry *rules.Registry

	// Bus receives inference.computed / inference.cleared events; nil
	// disables emission.
	Bus *event.Bus

	Logger *slog.Logger
}

// DefaultOptions returns the standard engine configuration.
func DefaultOptions() Options {
	return Options{
		MaxIterations:         10,
		MaxInferences:         10000,
		CacheTTL:              5 * time.Minute,
		ComputeJustifications: true,
	}
}

// ComputedEvent is the payload of event.TopicInferenceComputed.
type ComputedEvent struct {
	Count      int   `json:"count"`
	Iterations int   `json:"iterations"`
	TimeMs     int64 `json:"time_ms"`
}

// Stats describes the engine's current derived-fact set.
type Stats struct {
	TotalInferred int                `json:"total_inferred"`
	ByType        map[rules.Type]int `json:"by_type"`
	ByRule        map[string]int     `json:"by_rule"`
	Iterations    int                `json:"iterations"`
	Truncated     bool               `json:"truncated"`
	LastDuration  time.Duration      `json:"last_duration"`
	LastComputed  time.Time          `json:"last_computed"`
	CacheValid    bool               `json:"cache_valid"`
}

// Engine derives new facts from a triple store by forward chaining. An
// Engine owns its rule registry, inferred-fact map and cache state
// exclusively; it is not safe for concurrent use from multiple
// goroutines without external serialization.
type Engine struct {
	store  store.TripleStore
	reg    *rules.Registry
	bus    *event.Bus
	logger *slog.Logger
	opts   Options

	inferred  map[string]*InferredFact // identity key → fact
	order     []*InferredFact          // acceptance order
	bySubject map[string][]*InferredFact
	byObject  map[string][]*InferredFact

	cacheTimestamp time.Time // zero = invalid
	lastIterations int
	lastDuration   time.Duration
	truncated      bool

	now func() time.Time // test seam
}

// NewEngine creates an engine over the given store.
func NewEngine(ts store.TripleStore, opts Options) *Engine {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultOptions().MaxIterations
	}
	if opts.MaxInferences <= 0 {
		opts.MaxInferences = DefaultOptions().MaxInferences
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultOptions().CacheTTL
	}
	reg := opts.Registry
	if reg == nil {
		reg = rules.NewRegistryWithBuiltins()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		store:     ts,
		reg:       reg,
		bus:       opts.Bus,
		logger:    logger,
		opts:      opts,
		inferred:  make(map[string]*InferredFact),
		bySubject: make(map[string][]*InferredFact),
		byObject:  make(map[string][]*InferredFact),
		now:       time.Now,
	}
}

// AddRule registers a rule and invalidates the cache.
func (e *Engine) AddRule(rule rules.Rule) error {
	if err := e.reg.Add(rule); err != nil {
		return err
	}
	e.InvalidateCache()
	return nil
}

// RemoveRule unregisters a rule, reporting false for unknown ids. A
// successful removal invalidates the cache.
func (e *Engine) RemoveRule(id string) bool {
	if !e.reg.Remove(id) {
		return false
	}
	e.InvalidateCache()
	return true
}

// SetRuleEnabled toggles a rule, reporting false for unknown ids. A
// successful toggle invalidates the cache.
func (e *Engine) SetRuleEnabled(id string, enabled bool) bool {
	if !e.reg.SetEnabled(id, enabled) {
		return false
	}
	e.InvalidateCache()
	return true
}

// Rules returns the registered rules in firing order.
func (e *Engine) Rules() []rules.Rule { return e.reg.All() }

// InvalidateCache forces the next ComputeInferences call to recompute.
func (e *Engine) InvalidateCache() { e.cacheTimestamp = time.Time{} }

// Clear drops every inferred fact and invalidates the cache.
func (e *Engine) Clear() {
	e.resetFacts()
	e.InvalidateCache()
	e.lastIterations = 0
	e.truncated = false
	if e.bus != nil {
		e.bus.Publish(event.TopicInferenceCleared, nil)
	}
}

func (e *Engine) resetFacts() {
	e.inferred = make(map[string]*InferredFact)
	e.order = nil
	e.bySubject = make(map[string][]*InferredFact)
	e.byObject = make(map[string][]*InferredFact)
}

func (e *Engine) cacheValid() bool {
	return !e.cacheTimestamp.IsZero() && e.now().Sub(e.cacheTimestamp) < e.opts.CacheTTL
}

// ComputeInferences runs rule application to a fixed point and returns
// the derived facts in acceptance order. While the cache is valid the
// previous result set is returned unchanged, with no store access. A
// store failure propagates to the caller and is not retried.
func (e *Engine) ComputeInferences(ctx context.Context) ([]*InferredFact, error) {
	if e.cacheValid() {
		return e.results(), nil
	}

	started := e.now()
	e.resetFacts()
	e.truncated = false

	asserted, err := e.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	assertedKeys := make(map[string]struct{}, len(asserted))
	for _, t := range asserted {
		assertedKeys[t.Key()] = struct{}{}
	}

	// facts is the snapshot rules match against: asserted triples plus
	// every fact accepted so far, including earlier in the same pass.
	facts := make([]triple.Triple, len(asserted), len(asserted)+64)
	copy(facts, asserted)

	iterations := 0
	capped := false
	for iterations < e.opts.MaxIterations && !capped {
		iterations++
		changed := false

		for _, rule := range e.reg.Enabled() {
			for _, m := range matchConjunction(rule.Premises, facts) {
				candidate, ok := rule.Conclusion.Substitute(m.env)
				if !ok {
					continue
				}
				key := candidate.Key()
				if _, exists := assertedKeys[key]; exists {
					continue
				}
				if _, exists := e.inferred[key]; exists {
					continue
				}

				e.accept(candidate, rule, m.supports)
				facts = append(facts, candidate)
				changed = true

				if len(e.order) >= e.opts.MaxInferences {
					capped = true
					break
				}
			}
			if capped {
				break
			}
		}

		if !changed {
			break
		}
	}

	e.cacheTimestamp = e.now()
	e.lastIterations = iterations
	e.lastDuration = e.now().Sub(started)
	e.truncated = capped

	e.logger.Debug("Inference pass complete",
		slog.Int("inferred", len(e.order)),
		slog.Int("iterations", iterations),
		slog.Bool("truncated", capped))

	if e.bus != nil {
		e.bus.Publish(event.TopicInferenceComputed, ComputedEvent{
			Count:      len(e.order),
			Iterations: iterations,
			TimeMs:     e.lastDuration.Milliseconds(),
		})
	}
	return e.results(), nil
}

func (e *Engine) accept(t triple.Triple, rule rules.Rule, premises []triple.Triple) {
	fact := &InferredFact{
		Triple:        t,
		Type:          rule.Type,
		Rule:          rule,
		Justification: buildJustification(rule, premises, t, e.opts.ComputeJustifications),
		Confidence:    1.0,
		Timestamp:     e.now(),
	}
	e.inferred[t.Key()] = fact
	e.order = append(e.order, fact)
	e.bySubject[t.Subject] = append(e.bySubject[t.Subject], fact)
	e.byObject[t.Object] = append(e.byObject[t.Object], fact)
}

// results returns the accepted facts in acceptance order. The slice is
// fresh but the facts are the stored instances, so a cached call
// returns identical fact identities.
func (e *Engine) results() []*InferredFact {
	out := make([]*InferredFact, len(e.order))
	copy(out, e.order)
	return out
}

// Justify explains a triple. Asserted facts win over derivable ones:
// the store is consulted first and returns a depth-0 ground-truth
// justification. Unknown triples yield nil, nil. Store failures
// propagate.
func (e *Engine) Justify(ctx context.Context, t triple.Triple) (*Justification, error) {
	asserted, err := e.store.Has(ctx, t)
	if err != nil {
		return nil, err
	}
	if asserted {
		return groundJustification(t), nil
	}
	if fact, ok := e.inferred[t.Key()]; ok {
		return fact.Justification, nil
	}
	return nil, nil
}

// IsInferred reports whether the triple is in the derived set.
func (e *Engine) IsInferred(t triple.Triple) bool {
	_, ok := e.inferred[t.Key()]
	return ok
}

// InferredByType returns derived facts of one inference type, in
// acceptance order.
func (e *Engine) InferredByType(ruleType rules.Type) []*InferredFact {
	var out []*InferredFact
	for _, fact := range e.order {
		if fact.Type == ruleType {
			out = append(out, fact)
		}
	}
	return out
}

// InferredForSubject returns derived facts whose subject is the given
// node.
func (e *Engine) InferredForSubject(subject string) []*InferredFact {
	return append([]*InferredFact(nil), e.bySubject[subject]...)
}

// InferredForObject returns derived facts whose object is the given
// node. The object index exists for the explorer's incoming-edge
// lookups, which would otherwise scan the whole derived set per node.
func (e *Engine) InferredForObject(object string) []*InferredFact {
	return append([]*InferredFact(nil), e.byObject[object]...)
}

// Stats summarizes the current derived-fact set and cache state.
func (e *Engine) Stats() Stats {
	s := Stats{
		TotalInferred: len(e.order),
		ByType:        make(map[rules.Type]int),
		ByRule:        make(map[string]int),
		Iterations:    e.lastIterations,
		Truncated:     e.truncated,
		LastDuration:  e.lastDuration,
		LastComputed:  e.cacheTimestamp,
		CacheValid:    e.cacheValid(),
	}
	for _, fact := range e.order {
		s.ByType[fact.Type]++
		s.ByRule[fact.Rule.ID]++
	}
	return s
}
