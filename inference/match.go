package inference

import "github.com/c360studio/semreason/triple"

// match is one consistent way of satisfying a premise conjunction: the
// variable environment plus the ground triples that produced it, in
// premise order.
type match struct {
	env      triple.Bindings
	supports []triple.Triple
}

// matchPattern extends every incoming match with every triple that is
// consistent with the pattern under that match's environment.
func matchPattern(p triple.Pattern, in []match, facts []triple.Triple) []match {
	var out []match
	for _, m := range in {
		for _, f := range facts {
			env, ok := p.Match(f, m.env)
			if !ok {
				continue
			}
			supports := make([]triple.Triple, len(m.supports), len(m.supports)+1)
			copy(supports, m.supports)
			out = append(out, match{env: env, supports: append(supports, f)})
		}
	}
	return out
}

// matchConjunction evaluates a premise conjunction as a left-deep
// nested-loop join: bindings from premise i seed the candidate set for
// premise i+1. Worst case is the product of the fact-set size per
// premise; there is no pattern-indexed lookup, which is acceptable for
// the bounded fact sets this engine targets.
func matchConjunction(premises []triple.Pattern, facts []triple.Triple) []match {
	current := []match{{env: triple.Bindings{}}}
	for _, p := range premises {
		current = matchPattern(p, current, facts)
		if len(current) == 0 {
			return nil
		}
	}
	return current
}
