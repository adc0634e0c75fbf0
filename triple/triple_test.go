package triple

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTripleKey(t *testing.T) {
	tr := New("ex:Alice", "ex:knows", "ex:Bob")
	assert.Equal(t, "ex:Alice|ex:knows|ex:Bob", tr.Key())

	// Literal typing is not part of identity.
	lit := NewLiteral("ex:Alice", "ex:age", "42", "xsd:integer")
	plain := New("ex:Alice", "ex:age", "42")
	assert.Equal(t, plain.Key(), lit.Key())
	assert.True(t, lit.Equal(plain))
}

func TestParseTerm(t *testing.T) {
	assert.Equal(t, Any(), ParseTerm(""))
	assert.Equal(t, Var("x"), ParseTerm("?x"))
	assert.Equal(t, Bound("rdf:type"), ParseTerm("rdf:type"))
}

func TestPatternMatch(t *testing.T) {
	p := NewPattern("?a", "rdfs:subClassOf", "?b")
	tr := New("ex:Cat", "rdfs:subClassOf", "ex:Animal")

	env, ok := p.Match(tr, Bindings{})
	require.True(t, ok)
	assert.Equal(t, "ex:Cat", env["a"])
	assert.Equal(t, "ex:Animal", env["b"])
}

func TestPatternMatchBoundVariableConstrains(t *testing.T) {
	p := NewPattern("?a", "rdfs:subClassOf", "?b")

	env, ok := p.Match(New("ex:Cat", "rdfs:subClassOf", "ex:Animal"), Bindings{"a": "ex:Cat"})
	require.True(t, ok)
	assert.Equal(t, "ex:Animal", env["b"])

	_, ok = p.Match(New("ex:Dog", "rdfs:subClassOf", "ex:Animal"), Bindings{"a": "ex:Cat"})
	assert.False(t, ok, "bound variable must reject a conflicting value")
}

func TestPatternMatchDoesNotMutateEnv(t *testing.T) {
	p := NewPattern("?a", "?p", "?b")
	env := Bindings{}

	_, ok := p.Match(New("s", "p", "o"), env)
	require.True(t, ok)
	assert.Empty(t, env, "input environment must stay untouched")
}

func TestPatternMatchLiteralConstraint(t *testing.T) {
	p := NewPattern("?x", "rdf:type", "owl:SymmetricProperty")

	_, ok := p.Match(New("ex:knows", "rdf:type", "owl:SymmetricProperty"), Bindings{})
	assert.True(t, ok)

	_, ok = p.Match(New("ex:knows", "rdf:type", "owl:TransitiveProperty"), Bindings{})
	assert.False(t, ok)
}

func TestPatternMatchWildcard(t *testing.T) {
	p := Pattern{Subject: Var("x"), Predicate: Any(), Object: Any()}

	env, ok := p.Match(New("a", "b", "c"), Bindings{})
	require.True(t, ok)
	assert.Equal(t, Bindings{"x": "a"}, env)
}

func TestSubstitute(t *testing.T) {
	p := NewPattern("?a", "rdfs:subClassOf", "?c")

	tr, ok := p.Substitute(Bindings{"a": "ex:Cat", "c": "ex:Thing"})
	require.True(t, ok)
	assert.Equal(t, New("ex:Cat", "rdfs:subClassOf", "ex:Thing"), tr)

	_, ok = p.Substitute(Bindings{"a": "ex:Cat"})
	assert.False(t, ok, "unbound conclusion variable cannot ground a fact")

	_, ok = Pattern{Subject: Any(), Predicate: Bound("p"), Object: Bound("o")}.Substitute(Bindings{})
	assert.False(t, ok, "wildcard position cannot ground a fact")
}
