// Package triple defines the subject-predicate-object statement model
// and the variable patterns the reasoner matches against it.
package triple

import "strings"

// Triple is a single subject-predicate-object statement. Triples are
// treated as immutable once constructed; identity is determined by
// Key(), which excludes literal typing.
type Triple struct {
	Subject   string `json:"subject" yaml:"subject"`
	Predicate string `json:"predicate" yaml:"predicate"`
	Object    string `json:"object" yaml:"object"`

	// IsLiteral marks the object as a literal value rather than a node
	// identifier. Datatype and Language qualify literals only.
	IsLiteral bool   `json:"is_literal,omitempty" yaml:"is_literal,omitempty"`
	Datatype  string `json:"datatype,omitempty" yaml:"datatype,omitempty"`
	Language  string `json:"language,omitempty" yaml:"language,omitempty"`
}

// New constructs a triple between two nodes.
func New(subject, predicate, object string) Triple {
	return Triple{Subject: subject, Predicate: predicate, Object: object}
}

// NewLiteral constructs a triple whose object is a literal value.
func NewLiteral(subject, predicate, value, datatype string) Triple {
	return Triple{
		Subject:   subject,
		Predicate: predicate,
		Object:    value,
		IsLiteral: true,
		Datatype:  datatype,
	}
}

// Key returns the identity key "subject|predicate|object". Two triples
// with the same key are the same logical statement even if their
// literal typing differs.
func (t Triple) Key() string {
	var sb strings.Builder
	sb.Grow(len(t.Subject) + len(t.Predicate) + len(t.Object) + 2)
	sb.WriteString(t.Subject)
	sb.WriteByte('|')
	sb.WriteString(t.Predicate)
	sb.WriteByte('|')
	sb.WriteString(t.Object)
	return sb.String()
}

// Equal reports whether two triples are the same logical statement.
func (t Triple) Equal(other Triple) bool {
	return t.Subject == other.Subject &&
		t.Predicate == other.Predicate &&
		t.Object == other.Object
}

// String renders the triple for logs and explanations.
func (t Triple) String() string {
	return t.Subject + " " + t.Predicate + " " + t.Object
}
