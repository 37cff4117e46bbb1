package rules

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// targetList accepts either a scalar path or a list of candidate paths.
type targetList []string

func (t *targetList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*t = targetList{s}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*t = targetList(list)
		return nil
	default:
		return fmt.Errorf("target must be a path or a list of paths")
	}
}

// ruleSpec is the raw YAML shape of one rule entry. Unknown fields are
// ignored for forward compatibility.
type ruleSpec struct {
	ID             string         `yaml:"id"`
	Kind           string         `yaml:"kind"`
	Target         targetList     `yaml:"target"`
	Confidence     string         `yaml:"confidence"`
	Severity       string         `yaml:"severity"`
	Category       string         `yaml:"category"`
	Criteria       *Criteria      `yaml:"criteria"`
	AppliesWhen    *Predicate     `yaml:"applies_when"`
	Recommendation Recommendation `yaml:"recommendation"`
}

// document is the top-level rule file shape.
type document struct {
	Version  int         `yaml:"version"`
	Patterns []yaml.Node `yaml:"patterns"`
}

// Load parses a rule document. Each malformed entry yields a LoadWarning
// and is dropped; the load only fails outright when the document itself is
// not parseable YAML. A document with zero valid rules is not an error.
func Load(r io.Reader, source string) ([]Rule, []LoadWarning, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("reading rules from %s: %w", source, err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parsing rules from %s: %w", source, err)
	}

	var (
		valid    []Rule
		warnings []LoadWarning
		seen     = make(map[string]bool)
	)

	for i, node := range doc.Patterns {
		var spec ruleSpec
		if err := node.Decode(&spec); err != nil {
			warnings = append(warnings, LoadWarning{Source: source, Index: i, Reason: err.Error()})
			continue
		}
		rule, reason := validate(spec)
		if reason != "" {
			warnings = append(warnings, LoadWarning{Source: source, Index: i, RuleID: spec.ID, Reason: reason})
			continue
		}
		if seen[rule.ID] {
			warnings = append(warnings, LoadWarning{Source: source, Index: i, RuleID: rule.ID, Reason: "duplicate id, first occurrence wins"})
			continue
		}
		seen[rule.ID] = true
		valid = append(valid, rule)
	}

	return valid, warnings, nil
}

// LoadFile loads a rule document from disk.
func LoadFile(path string) ([]Rule, []LoadWarning, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening rules %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return Load(f, path)
}

// validate converts a raw spec into a Rule, returning a non-empty reason
// when the entry is malformed.
func validate(spec ruleSpec) (Rule, string) {
	if spec.ID == "" {
		return Rule{}, "missing id"
	}

	kind := Kind(spec.Kind)
	switch kind {
	case KindFileAbsence, KindDirectoryAbsence, KindFileQuality:
	case "":
		return Rule{}, "missing kind"
	default:
		return Rule{}, fmt.Sprintf("unknown kind %q", spec.Kind)
	}

	if len(spec.Target) == 0 {
		return Rule{}, "missing target"
	}
	for _, t := range spec.Target {
		if t == "" {
			return Rule{}, "empty target path"
		}
	}

	// Omitted confidence and severity default to medium.
	confidence := Level(spec.Confidence)
	if confidence == "" {
		confidence = Medium
	}
	if !ValidLevel(confidence) {
		return Rule{}, fmt.Sprintf("invalid confidence %q", spec.Confidence)
	}
	severity := Level(spec.Severity)
	if severity == "" {
		severity = Medium
	}
	if !ValidLevel(severity) {
		return Rule{}, fmt.Sprintf("invalid severity %q", spec.Severity)
	}

	if kind == KindFileQuality {
		if len(spec.Target) != 1 {
			return Rule{}, "file_quality takes exactly one target"
		}
		if spec.Criteria == nil {
			return Rule{}, "file_quality requires criteria"
		}
		if spec.Criteria.MinLines < 0 {
			return Rule{}, "criteria.min_lines must not be negative"
		}
		if spec.Criteria.MinLines == 0 && len(spec.Criteria.Sections) == 0 {
			return Rule{}, "criteria must set min_lines or sections"
		}
	}

	category := spec.Category
	if category == "" {
		category = DeriveCategory(spec.ID)
	} else if !validCategory(category) {
		return Rule{}, fmt.Sprintf("unknown category %q", spec.Category)
	}

	return Rule{
		ID:             spec.ID,
		Kind:           kind,
		Targets:        []string(spec.Target),
		Confidence:     confidence,
		Severity:       severity,
		Category:       category,
		Criteria:       spec.Criteria,
		AppliesWhen:    spec.AppliesWhen,
		Recommendation: spec.Recommendation,
	}, ""
}
