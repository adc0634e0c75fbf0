// Package inference implements the forward-chaining entailment engine:
// pattern unification, fixed-point rule application, justification
// construction and time-boxed result caching.
package inference

import (
	"strings"
	"time"

	"github.com/c360studio/semreason/rules"
	"github.com/c360studio/semreason/triple"
)

// InferenceStep records one rule firing inside a justification chain.
type InferenceStep struct {
	Rule       rules.Rule      `json:"rule"`
	Premises   []triple.Triple `json:"premises"`
	Conclusion triple.Triple   `json:"conclusion"`
	StepNumber int             `json:"step_number"`
}

// Justification explains why a fact holds. Depth 0 marks ground truth
// (asserted in the store); depth 1 marks a single rule firing. Chains
// are never composed across fixed-point passes.
type Justification struct {
	SupportingFacts []triple.Triple `json:"supporting_facts"`
	InferenceChain  []InferenceStep `json:"inference_chain,omitempty"`
	Explanation     string          `json:"explanation"`
	Depth           int             `json:"depth"`
}

// InferredFact is a derived triple with its provenance. Facts live in
// the engine's inferred map from the fixed-point pass that created them
// until Clear() or cache invalidation.
type InferredFact struct {
	Triple        triple.Triple  `json:"triple"`
	Type          rules.Type     `json:"inference_type"`
	Rule          rules.Rule     `json:"rule"`
	Justification *Justification `json:"justification"`

	// Confidence is carried for downstream consumers but not computed;
	// rule firings always record 1.0.
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
	Verified   bool      `json:"verified,omitempty"`
}

// groundJustification is the depth-0 justification for asserted facts.
func groundJustification(t triple.Triple) *Justification {
	return &Justification{
		SupportingFacts: []triple.Triple{t},
		Explanation:     "Asserted in the knowledge graph",
		Depth:           0,
	}
}

// buildJustification constructs the single-step chain for a rule
// firing. When full is false only the minimal form is stored, which
// saves time when chains are never displayed.
func buildJustification(rule rules.Rule, premises []triple.Triple, conclusion triple.Triple, full bool) *Justification {
	if !full {
		return &Justification{
			SupportingFacts: premises,
			Explanation:     "Inferred via " + rule.Name,
			Depth:           1,
		}
	}

	var sb strings.Builder
	sb.WriteString("By ")
	sb.WriteString(rule.Name)
	sb.WriteString(": ")
	for i, p := range premises {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		sb.WriteString("(")
		sb.WriteString(p.String())
		sb.WriteString(")")
	}
	sb.WriteString(" => (")
	sb.WriteString(conclusion.String())
	sb.WriteString(")")

	return &Justification{
		SupportingFacts: premises,
		InferenceChain: []InferenceStep{{
			Rule:       rule,
			Premises:   premises,
			Conclusion: conclusion,
			StepNumber: 0,
		}},
		Explanation: sb.String(),
		Depth:       1,
	}
}
