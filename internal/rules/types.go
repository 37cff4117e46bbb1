// Package rules defines the declarative rule model and its YAML loader.
package rules

import (
	"fmt"
	"strings"

	"github.com/sagehill-systems/repohealth/internal/snapshot"
)

// Kind discriminates what a rule checks.
type Kind string

// Rule kinds.
const (
	KindFileAbsence      Kind = "file_absence"
	KindDirectoryAbsence Kind = "directory_absence"
	KindFileQuality      Kind = "file_quality"
)

// Level grades both confidence and severity.
type Level string

// Levels, ordered high to low.
const (
	High   Level = "high"
	Medium Level = "medium"
	Low    Level = "low"
)

// ValidLevel reports whether l is one of the three known levels.
func ValidLevel(l Level) bool {
	return l == High || l == Medium || l == Low
}

// Categories is the fixed report taxonomy, in display order.
var Categories = []string{"git", "documentation", "ci-cd", "code-quality", "setup", "security", "other"}

// Criteria holds the quality thresholds for file_quality rules.
type Criteria struct {
	// MinLines is the minimum acceptable line count; 0 disables the check.
	MinLines int `yaml:"min_lines" json:"min_lines"`

	// Sections lists substrings that must each appear in the file.
	Sections []string `yaml:"sections" json:"sections,omitempty"`
}

// Predicate gates a rule on snapshot facts. Empty fields do not constrain.
// ProjectTypes and Frameworks match any-of; Flags must all match.
type Predicate struct {
	ProjectTypes []string        `yaml:"project_types" json:"project_types,omitempty"`
	Frameworks   []string        `yaml:"frameworks" json:"frameworks,omitempty"`
	Flags        map[string]bool `yaml:"flags" json:"flags,omitempty"`
}

// Matches evaluates the predicate against a snapshot.
func (p *Predicate) Matches(snap *snapshot.Snapshot) bool {
	if p == nil {
		return true
	}
	if len(p.ProjectTypes) > 0 {
		ok := false
		for _, t := range p.ProjectTypes {
			if snap.HasType(t) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if len(p.Frameworks) > 0 {
		ok := false
		for _, f := range p.Frameworks {
			if snap.HasFramework(f) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for name, want := range p.Flags {
		if snap.Flag(name) != want {
			return false
		}
	}
	return true
}

// Variant overrides the remediation template for a matching project type.
type Variant struct {
	WhenType string `yaml:"when_type" json:"when_type"`
	Template string `yaml:"template" json:"template"`
}

// Recommendation describes the remediation attached to a rule.
type Recommendation struct {
	Template string    `yaml:"template" json:"template"`
	Reason   string    `yaml:"reason" json:"reason,omitempty"`
	Variants []Variant `yaml:"variants" json:"variants,omitempty"`
}

// Resolve returns the template for the snapshot's project types, applying
// the first matching variant, and the declared reason.
func (r Recommendation) Resolve(snap *snapshot.Snapshot) (template, reason string) {
	template = r.Template
	for _, v := range r.Variants {
		if v.WhenType != "" && snap.HasType(v.WhenType) {
			template = v.Template
			break
		}
	}
	return template, r.Reason
}

// Rule is one validated declarative check.
type Rule struct {
	ID             string         `json:"id"`
	Kind           Kind           `json:"kind"`
	Targets        []string       `json:"targets"`
	Confidence     Level          `json:"confidence"`
	Severity       Level          `json:"severity"`
	Category       string         `json:"category"`
	Criteria       *Criteria      `json:"criteria,omitempty"`
	AppliesWhen    *Predicate     `json:"applies_when,omitempty"`
	Recommendation Recommendation `json:"recommendation"`
}

// LoadWarning records one rejected or suspicious rule entry.
type LoadWarning struct {
	Source string `json:"source"`
	Index  int    `json:"index"`
	RuleID string `json:"rule_id,omitempty"`
	Reason string `json:"reason"`
}

func (w LoadWarning) String() string {
	id := w.RuleID
	if id == "" {
		id = fmt.Sprintf("entry %d", w.Index)
	}
	return fmt.Sprintf("%s: %s: %s", w.Source, id, w.Reason)
}

// DeriveCategory maps a rule id onto the fixed taxonomy when the rule does
// not declare a category itself.
func DeriveCategory(id string) string {
	switch {
	case strings.Contains(id, "gitignore") || strings.Contains(id, "git-"):
		return "git"
	case strings.Contains(id, "readme") || strings.Contains(id, "contributing") || strings.Contains(id, "license") || strings.Contains(id, "docs"):
		return "documentation"
	case strings.Contains(id, "ci") || strings.Contains(id, "workflow") || strings.Contains(id, "docker"):
		return "ci-cd"
	case strings.Contains(id, "eslint") || strings.Contains(id, "prettier") || strings.Contains(id, "lint") || strings.Contains(id, "test"):
		return "code-quality"
	case strings.Contains(id, "editorconfig"):
		return "setup"
	case strings.Contains(id, "security"):
		return "security"
	default:
		return "other"
	}
}

func validCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
