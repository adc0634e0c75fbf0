package rules

import (
	"github.com/c360studio/semreason/triple"
	"github.com/c360studio/semreason/vocabulary/owl"
	"github.com/c360studio/semreason/vocabulary/rdf"
	"github.com/c360studio/semreason/vocabulary/rdfs"
)

// Builtins returns the static RDFS / OWL 2 RL rule catalog. The slice
// is freshly built on every call so callers can mutate Enabled flags
// through a registry without affecting other engines.
//
// Priorities put schema-level closure (subclass/subproperty/equivalence
// hierarchies) ahead of instance-level propagation so instance rules
// see the completed hierarchy earlier and the fixed point converges in
// fewer passes.
func Builtins() []Rule {
	return []Rule{
		{
			ID:          "rdfs-subclass-transitivity",
			Name:        "Subclass transitivity",
			Description: "If A is a subclass of B and B is a subclass of C, A is a subclass of C.",
			Type:        TypeSubClassTransitivity,
			Premises: []triple.Pattern{
				triple.NewPattern("?a", rdfs.SubClassOf, "?b"),
				triple.NewPattern("?b", rdfs.SubClassOf, "?c"),
			},
			Conclusion: triple.NewPattern("?a", rdfs.SubClassOf, "?c"),
			Priority:   100,
			Enabled:    true,
		},
		{
			ID:          "rdfs-subproperty-transitivity",
			Name:        "Subproperty transitivity",
			Description: "If P is a subproperty of Q and Q is a subproperty of R, P is a subproperty of R.",
			Type:        TypeSubPropertyTransitivity,
			Premises: []triple.Pattern{
				triple.NewPattern("?p", rdfs.SubPropertyOf, "?q"),
				triple.NewPattern("?q", rdfs.SubPropertyOf, "?r"),
			},
			Conclusion: triple.NewPattern("?p", rdfs.SubPropertyOf, "?r"),
			Priority:   100,
			Enabled:    true,
		},
		{
			ID:          "owl-equivalent-class-forward",
			Name:        "Equivalent class (forward)",
			Description: "Equivalent classes subsume each other.",
			Type:        TypeEquivalentClass,
			Premises: []triple.Pattern{
				triple.NewPattern("?a", owl.EquivalentClass, "?b"),
			},
			Conclusion: triple.NewPattern("?a", rdfs.SubClassOf, "?b"),
			Priority:   95,
			Enabled:    true,
		},
		{
			ID:          "owl-equivalent-class-backward",
			Name:        "Equivalent class (backward)",
			Description: "Equivalent classes subsume each other, in both directions.",
			Type:        TypeEquivalentClass,
			Premises: []triple.Pattern{
				triple.NewPattern("?a", owl.EquivalentClass, "?b"),
			},
			Conclusion: triple.NewPattern("?b", rdfs.SubClassOf, "?a"),
			Priority:   95,
			Enabled:    true,
		},
		{
			ID:          "owl-equivalent-property-forward",
			Name:        "Equivalent property (forward)",
			Type:        TypeEquivalentProperty,
			Premises: []triple.Pattern{
				triple.NewPattern("?p", owl.EquivalentProperty, "?q"),
			},
			Conclusion: triple.NewPattern("?p", rdfs.SubPropertyOf, "?q"),
			Priority:   95,
			Enabled:    true,
		},
		{
			ID:          "owl-equivalent-property-backward",
			Name:        "Equivalent property (backward)",
			Type:        TypeEquivalentProperty,
			Premises: []triple.Pattern{
				triple.NewPattern("?p", owl.EquivalentProperty, "?q"),
			},
			Conclusion: triple.NewPattern("?q", rdfs.SubPropertyOf, "?p"),
			Priority:   95,
			Enabled:    true,
		},
		{
			ID:          "rdfs-type-inheritance",
			Name:        "Type inheritance",
			Description: "Instances of a class are instances of its superclasses.",
			Type:        TypeTypeInheritance,
			Premises: []triple.Pattern{
				triple.NewPattern("?x", rdf.Type, "?a"),
				triple.NewPattern("?a", rdfs.SubClassOf, "?b"),
			},
			Conclusion: triple.NewPattern("?x", rdf.Type, "?b"),
			Priority:   90,
			Enabled:    true,
		},
		{
			ID:          "rdfs-subproperty-propagation",
			Name:        "Subproperty propagation",
			Description: "Statements made with a subproperty also hold for its superproperty.",
			Type:        TypeSubPropertyPropagation,
			Premises: []triple.Pattern{
				triple.NewPattern("?p", rdfs.SubPropertyOf, "?q"),
				triple.NewPattern("?x", "?p", "?y"),
			},
			Conclusion: triple.NewPattern("?x", "?q", "?y"),
			Priority:   90,
			Enabled:    true,
		},
		{
			ID:          "rdfs-domain-inference",
			Name:        "Domain inference",
			Description: "The subject of a property is typed by the property's domain.",
			Type:        TypeDomainInference,
			Premises: []triple.Pattern{
				triple.NewPattern("?p", rdfs.Domain, "?c"),
				triple.NewPattern("?x", "?p", "?y"),
			},
			Conclusion: triple.NewPattern("?x", rdf.Type, "?c"),
			Priority:   80,
			Enabled:    true,
		},
		{
			ID:          "rdfs-range-inference",
			Name:        "Range inference",
			Description: "The object of a property is typed by the property's range.",
			Type:        TypeRangeInference,
			Premises: []triple.Pattern{
				triple.NewPattern("?p", rdfs.Range, "?c"),
				triple.NewPattern("?x", "?p", "?y"),
			},
			Conclusion: triple.NewPattern("?y", rdf.Type, "?c"),
			Priority:   80,
			Enabled:    true,
		},
		{
			ID:          "owl-inverse-forward",
			Name:        "Inverse property (forward)",
			Description: "If P is the inverse of Q, a P statement implies the flipped Q statement.",
			Type:        TypeInverseProperty,
			Premises: []triple.Pattern{
				triple.NewPattern("?p", owl.InverseOf, "?q"),
				triple.NewPattern("?x", "?p", "?y"),
			},
			Conclusion: triple.NewPattern("?y", "?q", "?x"),
			Priority:   70,
			Enabled:    true,
		},
		{
			ID:          "owl-inverse-backward",
			Name:        "Inverse property (backward)",
			Description: "inverseOf works in both directions even when only one is asserted.",
			Type:        TypeInverseProperty,
			Premises: []triple.Pattern{
				triple.NewPattern("?p", owl.InverseOf, "?q"),
				triple.NewPattern("?x", "?q", "?y"),
			},
			Conclusion: triple.NewPattern("?y", "?p", "?x"),
			Priority:   70,
			Enabled:    true,
		},
		{
			ID:          "owl-symmetric",
			Name:        "Symmetric property",
			Description: "A symmetric property holds in both directions.",
			Type:        TypeSymmetricProperty,
			Premises: []triple.Pattern{
				triple.NewPattern("?p", rdf.Type, owl.SymmetricProperty),
				triple.NewPattern("?x", "?p", "?y"),
			},
			Conclusion: triple.NewPattern("?y", "?p", "?x"),
			Priority:   70,
			Enabled:    true,
		},
		{
			ID:          "owl-transitive",
			Name:        "Transitive property",
			Description: "A transitive property composes with itself.",
			Type:        TypeTransitiveProperty,
			Premises: []triple.Pattern{
				triple.NewPattern("?p", rdf.Type, owl.TransitiveProperty),
				triple.NewPattern("?x", "?p", "?y"),
				triple.NewPattern("?y", "?p", "?z"),
			},
			Conclusion: triple.NewPattern("?x", "?p", "?z"),
			Priority:   60,
			Enabled:    true,
		},
		{
			ID:          "owl-sameas-symmetry",
			Name:        "sameAs symmetry",
			Type:        TypeSameAs,
			Premises: []triple.Pattern{
				triple.NewPattern("?x", owl.SameAs, "?y"),
			},
			Conclusion: triple.NewPattern("?y", owl.SameAs, "?x"),
			Priority:   50,
			Enabled:    true,
		},
		{
			ID:          "owl-sameas-transitivity",
			Name:        "sameAs transitivity",
			Type:        TypeSameAs,
			Premises: []triple.Pattern{
				triple.NewPattern("?x", owl.SameAs, "?y"),
				triple.NewPattern("?y", owl.SameAs, "?z"),
			},
			Conclusion: triple.NewPattern("?x", owl.SameAs, "?z"),
			Priority:   50,
			Enabled:    true,
		},
	}
}
