package triple

import "strings"

// TermKind discriminates the three forms a pattern position can take.
type TermKind int

const (
	// TermAny matches any value and binds nothing.
	TermAny TermKind = iota
	// TermBound matches only its literal value.
	TermBound
	// TermVar binds (or constrains, if already bound) a named variable.
	TermVar
)

// Term is one position of a pattern, decided once at rule-load time so
// the matcher never re-parses the "?name" convention.
type Term struct {
	Kind  TermKind
	Value string // literal value for TermBound, variable name for TermVar
}

// Any returns a term that matches anything.
func Any() Term { return Term{Kind: TermAny} }

// Bound returns a term constrained to a literal value.
func Bound(value string) Term { return Term{Kind: TermBound, Value: value} }

// Var returns a term binding the named variable.
func Var(name string) Term { return Term{Kind: TermVar, Value: name} }

// ParseTerm interprets the string convention used in rule files: an
// empty string matches anything, a "?"-prefixed string is a variable,
// anything else is a literal constraint.
func ParseTerm(s string) Term {
	switch {
	case s == "":
		return Any()
	case strings.HasPrefix(s, "?"):
		return Var(strings.TrimPrefix(s, "?"))
	default:
		return Bound(s)
	}
}

func (t Term) String() string {
	switch t.Kind {
	case TermBound:
		return t.Value
	case TermVar:
		return "?" + t.Value
	default:
		return "*"
	}
}

// Pattern constrains a triple position-by-position. Bindings is the
// variable environment type shared with the matcher.
type Pattern struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// Bindings maps variable names to the values they are bound to.
type Bindings map[string]string

// Clone copies the environment so one join branch cannot leak bindings
// into a sibling branch.
func (b Bindings) Clone() Bindings {
	out := make(Bindings, len(b)+1)
	for k, v := range b {
		out[k] = v
	}
	return out
}

// NewPattern builds a pattern from the string convention (see ParseTerm).
func NewPattern(subject, predicate, object string) Pattern {
	return Pattern{
		Subject:   ParseTerm(subject),
		Predicate: ParseTerm(predicate),
		Object:    ParseTerm(object),
	}
}

// Match reports whether t is consistent with the pattern under the
// existing environment and, if so, returns the environment extended
// with any newly bound variables. A variable already present in the
// environment behaves as a literal equality constraint.
func (p Pattern) Match(t Triple, env Bindings) (Bindings, bool) {
	positions := [3]struct {
		term  Term
		value string
	}{
		{p.Subject, t.Subject},
		{p.Predicate, t.Predicate},
		{p.Object, t.Object},
	}

	var extended Bindings
	lookup := func(name string) (string, bool) {
		if extended != nil {
			if v, ok := extended[name]; ok {
				return v, true
			}
		}
		if v, ok := env[name]; ok {
			return v, true
		}
		return "", false
	}

	for _, pos := range positions {
		switch pos.term.Kind {
		case TermAny:
			// matches anything
		case TermBound:
			if pos.term.Value != pos.value {
				return nil, false
			}
		case TermVar:
			if bound, ok := lookup(pos.term.Value); ok {
				if bound != pos.value {
					return nil, false
				}
				continue
			}
			if extended == nil {
				extended = env.Clone()
			}
			extended[pos.term.Value] = pos.value
		}
	}

	if extended == nil {
		return env, true
	}
	return extended, true
}

// Substitute produces the ground triple named by the pattern under env.
// It returns false when a variable position is unbound or a position is
// a wildcard, since neither can name a concrete fact.
func (p Pattern) Substitute(env Bindings) (Triple, bool) {
	resolve := func(term Term) (string, bool) {
		switch term.Kind {
		case TermBound:
			return term.Value, true
		case TermVar:
			v, ok := env[term.Value]
			return v, ok
		default:
			return "", false
		}
	}

	s, ok := resolve(p.Subject)
	if !ok {
		return Triple{}, false
	}
	pr, ok := resolve(p.Predicate)
	if !ok {
		return Triple{}, false
	}
	o, ok := resolve(p.Object)
	if !ok {
		return Triple{}, false
	}
	return Triple{Subject: s, Predicate: pr, Object: o}, true
}

// String renders the pattern for explanations, e.g. "?a rdfs:subClassOf ?b".
func (p Pattern) String() string {
	return p.Subject.String() + " " + p.Predicate.String() + " " + p.Object.String()
}
