// Package owl defines the OWL 2 vocabulary terms used by the RL-profile
// entailment rules.
package owl

// Namespace is the OWL 2 namespace.
const Namespace = "http://www.w3.org/2002/07/owl#"

// Property characteristics.
const (
	// InverseOf relates two properties that run in opposite directions.
	InverseOf = "owl:inverseOf"

	// SymmetricProperty is the class of properties that hold in both
	// directions.
	SymmetricProperty = "owl:SymmetricProperty"

	// TransitiveProperty is the class of properties that compose with
	// themselves.
	TransitiveProperty = "owl:TransitiveProperty"
)

// Equivalence predicates.
const (
	// EquivalentClass relates two classes with the same extension.
	EquivalentClass = "owl:equivalentClass"

	// EquivalentProperty relates two properties with the same extension.
	EquivalentProperty = "owl:equivalentProperty"

	// SameAs relates two names for the same individual.
	SameAs = "owl:sameAs"
)

// IRI expands a vocabulary term ("owl:sameAs") into its full IRI form.
func IRI(term string) string {
	if len(term) > 4 && term[:4] == "owl:" {
		return Namespace + term[4:]
	}
	return term
}
