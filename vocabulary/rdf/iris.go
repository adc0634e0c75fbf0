// Package rdf defines the RDF core vocabulary terms used by the rule
// catalog and exporters.
package rdf

// Namespace is the RDF syntax namespace.
const Namespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"

const (
	// Type relates a resource to one of its classes.
	Type = "rdf:type"

	// Property is the class of RDF properties.
	Property = "rdf:Property"
)

// IRI expands a vocabulary term ("rdf:type") into its full IRI form.
func IRI(term string) string {
	if len(term) > 4 && term[:4] == "rdf:" {
		return Namespace + term[4:]
	}
	return term
}
