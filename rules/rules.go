// Package rules defines inference rules and the ordered registry the
// reasoning engine draws them from.
package rules

import (
	"fmt"

	"github.com/c360studio/semreason/triple"
)

// Type classifies what kind of entailment a rule produces. The values
// double as machine-readable provenance on derived facts.
type Type string

const (
	TypeSubClassTransitivity    Type = "rdfs:subClassOf-transitivity"
	TypeTypeInheritance         Type = "rdfs:type-inheritance"
	TypeSubPropertyTransitivity Type = "rdfs:subPropertyOf-transitivity"
	TypeSubPropertyPropagation  Type = "rdfs:subPropertyOf-propagation"
	TypeDomainInference         Type = "rdfs:domain-inference"
	TypeRangeInference          Type = "rdfs:range-inference"
	TypeInverseProperty         Type = "owl:inverseOf-propagation"
	TypeSymmetricProperty       Type = "owl:SymmetricProperty-propagation"
	TypeTransitiveProperty      Type = "owl:TransitiveProperty-propagation"
	TypeEquivalentClass         Type = "owl:equivalentClass-propagation"
	TypeEquivalentProperty      Type = "owl:equivalentProperty-propagation"
	TypeSameAs                  Type = "owl:sameAs-propagation"
	TypeCustom                  Type = "custom"
)

// Rule is an immutable forward-chaining rule: when every premise
// pattern matches under one consistent variable environment, the
// conclusion pattern grounds a new fact.
type Rule struct {
	ID          string           `yaml:"id"`
	Name        string           `yaml:"name"`
	Description string           `yaml:"description,omitempty"`
	Type        Type             `yaml:"type"`
	Premises    []triple.Pattern `yaml:"-"`
	Conclusion  triple.Pattern   `yaml:"-"`

	// Priority orders rule application; higher fires first. Ties are
	// broken by registration order.
	Priority int `yaml:"priority,omitempty"`

	// Enabled rules participate in fixed-point passes.
	Enabled bool `yaml:"enabled"`
}

// Validate checks the structural requirements on a rule.
func (r Rule) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("rule id is required")
	}
	if r.Name == "" {
		return fmt.Errorf("rule %s: name is required", r.ID)
	}
	if len(r.Premises) == 0 {
		return fmt.Errorf("rule %s: at least one premise is required", r.ID)
	}
	c := r.Conclusion
	for _, term := range []triple.Term{c.Subject, c.Predicate, c.Object} {
		if term.Kind == triple.TermAny {
			return fmt.Errorf("rule %s: conclusion positions must be bound or variables", r.ID)
		}
	}
	return nil
}
