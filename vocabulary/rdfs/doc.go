// Package rdfs defines the RDF Schema vocabulary terms used by the
// built-in entailment rules.
//
// Terms are kept in their prefixed form ("rdfs:subClassOf") throughout
// the reasoner; IRI expansion happens only at export boundaries. This
// matches how triples arrive from the graph ingestion pipeline, where
// predicates are short dotted or prefixed names rather than full IRIs.
package rdfs
