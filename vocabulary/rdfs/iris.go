package rdfs

// Namespace is the RDF Schema namespace.
const Namespace = "http://www.w3.org/2000/01/rdf-schema#"

// Schema predicates the entailment rules match on.
const (
	// SubClassOf relates a class to its superclass.
	SubClassOf = "rdfs:subClassOf"

	// SubPropertyOf relates a property to its superproperty.
	SubPropertyOf = "rdfs:subPropertyOf"

	// Domain declares the class of a property's subjects.
	Domain = "rdfs:domain"

	// Range declares the class of a property's objects.
	Range = "rdfs:range"

	// Label is the human-readable name of a resource.
	Label = "rdfs:label"
)

// IRI expands a vocabulary term ("rdfs:subClassOf") into its full IRI form.
func IRI(term string) string {
	if len(term) > 5 && term[:5] == "rdfs:" {
		return Namespace + term[5:]
	}
	return term
}
