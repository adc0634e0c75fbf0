package rules

import (
	"fmt"
	"sort"
)

// Registry holds rules in registration order and serves them sorted by
// descending priority. It is not safe for concurrent mutation; callers
// in a multi-goroutine host must serialize access (the inference engine
// wraps it behind its own API).
type Registry struct {
	byID  map[string]int // id → index into ordered
	rules []Rule         // registration order
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]int)}
}

// NewRegistryWithBuiltins returns a registry pre-loaded with the
// built-in RDFS/OWL 2 RL catalog.
func NewRegistryWithBuiltins() *Registry {
	r := NewRegistry()
	for _, rule := range Builtins() {
		// Builtins are statically valid.
		_ = r.Add(rule)
	}
	return r
}

// Add registers a rule. Duplicate IDs are rejected.
func (r *Registry) Add(rule Rule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	if _, exists := r.byID[rule.ID]; exists {
		return fmt.Errorf("rule %s already registered", rule.ID)
	}
	r.byID[rule.ID] = len(r.rules)
	r.rules = append(r.rules, rule)
	return nil
}

// Remove unregisters a rule. It reports false for unknown IDs rather
// than erroring.
func (r *Registry) Remove(id string) bool {
	idx, ok := r.byID[id]
	if !ok {
		return false
	}
	r.rules = append(r.rules[:idx], r.rules[idx+1:]...)
	delete(r.byID, id)
	for i := idx; i < len(r.rules); i++ {
		r.byID[r.rules[i].ID] = i
	}
	return true
}

// SetEnabled toggles a rule. It reports false for unknown IDs.
func (r *Registry) SetEnabled(id string, enabled bool) bool {
	idx, ok := r.byID[id]
	if !ok {
		return false
	}
	r.rules[idx].Enabled = enabled
	return true
}

// Get returns the rule with the given ID.
func (r *Registry) Get(id string) (Rule, bool) {
	idx, ok := r.byID[id]
	if !ok {
		return Rule{}, false
	}
	return r.rules[idx], true
}

// Len returns the number of registered rules.
func (r *Registry) Len() int { return len(r.rules) }

// All returns every rule sorted by priority descending, ties broken by
// registration order. The slice is a copy; rules themselves are values.
func (r *Registry) All() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out
}

// Enabled returns the enabled subset of All(), in firing order.
func (r *Registry) Enabled() []Rule {
	all := r.All()
	out := all[:0]
	for _, rule := range all {
		if rule.Enabled {
			out = append(out, rule)
		}
	}
	return out
}
