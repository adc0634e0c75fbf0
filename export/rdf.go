// Package export serializes asserted and derived triples to RDF.
package export

import (
	"fmt"
	"strings"

	"github.com/c360studio/semreason/inference"
	"github.com/c360studio/semreason/triple"
	"github.com/c360studio/semreason/vocabulary/owl"
	"github.com/c360studio/semreason/vocabulary/rdf"
	"github.com/c360studio/semreason/vocabulary/rdfs"
)

// ResourceNamespace is the default namespace for bare node identifiers.
const ResourceNamespace = "https://semreason.dev/resource/"

// Format specifies the output serialization format.
type Format string

const (
	// FormatTurtle produces Turtle (.ttl) output.
	FormatTurtle Format = "turtle"

	// FormatNTriples produces N-Triples (.nt) output.
	FormatNTriples Format = "ntriples"

	// FormatJSONLD produces JSON-LD (.jsonld) output.
	FormatJSONLD Format = "jsonld"
)

// Options controls what an export includes.
type Options struct {
	// IncludeInferred adds derived triples to the output.
	IncludeInferred bool

	// Provenance annotates derived triples with the rule that produced
	// them. Turtle and N-Triples carry it as comments; JSON-LD ignores
	// it because per-statement provenance needs reification there.
	Provenance bool

	// BaseIRI expands bare node identifiers. Defaults to
	// ResourceNamespace.
	BaseIRI string
}

// DefaultOptions returns the standard export options.
func DefaultOptions() Options {
	return Options{
		IncludeInferred: true,
		Provenance:      true,
		BaseIRI:         ResourceNamespace,
	}
}

// Exporter accumulates triples and serializes them to RDF.
type Exporter struct {
	opts     Options
	prefixes map[string]string
	asserted []triple.Triple
	inferred []*inference.InferredFact
}

// NewExporter creates an exporter with the given options.
func NewExporter(opts Options) *Exporter {
	if opts.BaseIRI == "" {
		opts.BaseIRI = ResourceNamespace
	}
	return &Exporter{
		opts:     opts,
		prefixes: defaultPrefixes(),
	}
}

// defaultPrefixes returns the standard namespace prefixes for RDF export.
func defaultPrefixes() map[string]string {
	return map[string]string{
		"rdf":  rdf.Namespace,
		"rdfs": rdfs.Namespace,
		"owl":  owl.Namespace,
		"xsd":  "http://www.w3.org/2001/XMLSchema#",
		"prov": "http://www.w3.org/ns/prov#",
	}
}

// SetPrefix sets a namespace prefix used for term expansion.
func (e *Exporter) SetPrefix(prefix, iri string) {
	e.prefixes[prefix] = iri
}

// AddTriples adds asserted triples to the export set.
func (e *Exporter) AddTriples(ts []triple.Triple) {
	e.asserted = append(e.asserted, ts...)
}

// AddInferred adds derived facts to the export set.
func (e *Exporter) AddInferred(facts []*inference.InferredFact) {
	e.inferred = append(e.inferred, facts...)
}

// Export serializes the accumulated triples to the specified format.
func (e *Exporter) Export(format Format) (string, error) {
	switch format {
	case FormatTurtle:
		return e.toTurtle(), nil
	case FormatNTriples:
		return e.toNTriples(), nil
	case FormatJSONLD:
		return e.toJSONLD(), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// toTurtle serializes to Turtle format.
func (e *Exporter) toTurtle() string {
	w := NewTurtleWriter()
	w.prefixes = e.prefixes
	w.WritePrefixes()

	for _, t := range e.asserted {
		w.WriteTriple(e.expandIRI(t.Subject), e.expandIRI(t.Predicate), e.objectTerm(t))
	}

	if e.opts.IncludeInferred && len(e.inferred) > 0 {
		w.WriteBlank()
		w.WriteComment("derived facts")
		for _, fact := range e.inferred {
			if e.opts.Provenance {
				w.WriteComment(fmt.Sprintf("derived by %s", fact.Rule.ID))
			}
			t := fact.Triple
			w.WriteTriple(e.expandIRI(t.Subject), e.expandIRI(t.Predicate), e.objectTerm(t))
		}
	}

	return w.String()
}

// toNTriples serializes to N-Triples format.
func (e *Exporter) toNTriples() string {
	w := NewNTriplesWriter()

	for _, t := range e.asserted {
		w.WriteTriple(e.expandIRI(t.Subject), e.expandIRI(t.Predicate), e.objectTerm(t))
	}

	if e.opts.IncludeInferred {
		for _, fact := range e.inferred {
			if e.opts.Provenance {
				w.WriteComment(fmt.Sprintf("derived by %s", fact.Rule.ID))
			}
			t := fact.Triple
			w.WriteTriple(e.expandIRI(t.Subject), e.expandIRI(t.Predicate), e.objectTerm(t))
		}
	}

	return w.String()
}

// toJSONLD serializes to JSON-LD format, grouping triples by subject.
func (e *Exporter) toJSONLD() string {
	w := NewJSONLDWriter()
	w.SetContext(e.prefixes)

	triples := append([]triple.Triple(nil), e.asserted...)
	if e.opts.IncludeInferred {
		for _, fact := range e.inferred {
			triples = append(triples, fact.Triple)
		}
	}

	// Group by subject, preserving first-seen order.
	var order []string
	nodes := make(map[string]map[string]any)
	types := make(map[string][]string)
	for _, t := range triples {
		subject := e.expandIRI(t.Subject)
		props, ok := nodes[subject]
		if !ok {
			props = make(map[string]any)
			nodes[subject] = props
			order = append(order, subject)
		}
		if t.Predicate == rdf.Type && !t.IsLiteral {
			types[subject] = append(types[subject], e.expandIRI(t.Object))
			continue
		}
		predicate := e.expandIRI(t.Predicate)
		appendProperty(props, predicate, e.jsonValue(t))
	}

	for _, subject := range order {
		w.AddNode(subject, types[subject], nodes[subject])
	}
	return w.String()
}

// appendProperty collects repeated predicates into a slice.
func appendProperty(props map[string]any, key string, value any) {
	existing, ok := props[key]
	if !ok {
		props[key] = value
		return
	}
	if list, ok := existing.([]any); ok {
		props[key] = append(list, value)
		return
	}
	props[key] = []any{existing, value}
}

// jsonValue renders a triple's object for JSON-LD.
func (e *Exporter) jsonValue(t triple.Triple) any {
	if !t.IsLiteral {
		return map[string]any{"@id": e.expandIRI(t.Object)}
	}
	if t.Datatype == "" && t.Language == "" {
		return t.Object
	}
	value := map[string]any{"@value": t.Object}
	if t.Datatype != "" {
		value["@type"] = t.Datatype
	}
	if t.Language != "" {
		value["@language"] = t.Language
	}
	return value
}

// objectTerm renders a triple's object as a Turtle/N-Triples term.
func (e *Exporter) objectTerm(t triple.Triple) string {
	if !t.IsLiteral {
		return fmt.Sprintf("<%s>", e.expandIRI(t.Object))
	}
	literal := `"` + escapeString(t.Object) + `"`
	switch {
	case t.Language != "":
		return literal + "@" + t.Language
	case t.Datatype != "":
		return fmt.Sprintf("%s^^<%s>", literal, e.expandIRI(t.Datatype))
	default:
		return literal
	}
}

// expandIRI resolves a term to a full IRI. Full IRIs pass through,
// known prefixes expand, and bare names fall under the base IRI.
func (e *Exporter) expandIRI(term string) string {
	if strings.HasPrefix(term, "http://") || strings.HasPrefix(term, "https://") {
		return term
	}
	if prefix, local, ok := strings.Cut(term, ":"); ok {
		if ns, known := e.prefixes[prefix]; known {
			return ns + local
		}
	}
	return e.opts.BaseIRI + term
}

// escapeString escapes special characters in strings for RDF serialization.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}
