package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/semreason/triple"
)

// ruleFile is the YAML document shape for custom rule files.
//
//	rules:
//	  - id: colleague-symmetry
//	    name: Colleague symmetry
//	    priority: 10
//	    premises:
//	      - {subject: "?x", predicate: "ex:colleagueOf", object: "?y"}
//	    conclusion: {subject: "?y", predicate: "ex:colleagueOf", object: "?x"}
type ruleFile struct {
	Rules []ruleSpec `yaml:"rules"`
}

type ruleSpec struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Type        string        `yaml:"type"`
	Priority    int           `yaml:"priority"`
	Enabled     *bool         `yaml:"enabled"`
	Premises    []patternSpec `yaml:"premises"`
	Conclusion  patternSpec   `yaml:"conclusion"`
}

type patternSpec struct {
	Subject   string `yaml:"subject"`
	Predicate string `yaml:"predicate"`
	Object    string `yaml:"object"`
}

func (p patternSpec) pattern() triple.Pattern {
	return triple.NewPattern(p.Subject, p.Predicate, p.Object)
}

// Parse decodes custom rules from YAML. Variables use the "?name"
// convention; the convention is resolved here, once, into tagged terms.
func Parse(data []byte) ([]Rule, error) {
	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse rule file: %w", err)
	}

	out := make([]Rule, 0, len(file.Rules))
	for i, spec := range file.Rules {
		ruleType := Type(spec.Type)
		if spec.Type == "" {
			ruleType = TypeCustom
		}
		enabled := true
		if spec.Enabled != nil {
			enabled = *spec.Enabled
		}

		rule := Rule{
			ID:          spec.ID,
			Name:        spec.Name,
			Description: spec.Description,
			Type:        ruleType,
			Priority:    spec.Priority,
			Enabled:     enabled,
			Conclusion:  spec.Conclusion.pattern(),
		}
		for _, prem := range spec.Premises {
			rule.Premises = append(rule.Premises, prem.pattern())
		}
		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		out = append(out, rule)
	}
	return out, nil
}

// LoadFile reads and parses a YAML rule file.
func LoadFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}
	return Parse(data)
}
