// Package engine evaluates a rule set against a project snapshot and
// aggregates the results into a scored report.
package engine

import (
	"github.com/sagehill-systems/repohealth/internal/rules"
)

// Evidence carries what a single check observed. It explains a detection
// but never alters the rule's declared confidence.
type Evidence struct {
	// Checked lists the candidate targets that were tested.
	Checked []string `json:"checked"`

	// Missing is set when the target (or every candidate) was absent.
	Missing bool `json:"missing,omitempty"`

	// ReadError records a target that existed but could not be read.
	ReadError string `json:"read_error,omitempty"`

	// LineCount and MinLines describe a quality check's line test.
	LineCount int `json:"line_count,omitempty"`
	MinLines  int `json:"min_lines,omitempty"`

	// MatchedSections and MissingSections describe the marker test.
	MatchedSections []string `json:"matched_sections,omitempty"`
	MissingSections []string `json:"missing_sections,omitempty"`

	// Marginal is set when every required section is present and only
	// the line count fell short, a weaker form of the issue.
	Marginal bool `json:"marginal,omitempty"`
}

// Detection is the outcome of evaluating one applicable rule.
type Detection struct {
	RuleID     string      `json:"rule_id"`
	Kind       rules.Kind  `json:"kind"`
	Category   string      `json:"category"`
	Confidence rules.Level `json:"confidence"`
	Severity   rules.Level `json:"severity"`
	IssueFound bool        `json:"issue_found"`
	Evidence   Evidence    `json:"evidence"`

	// Template and Reason are the resolved recommendation.
	Template string `json:"template,omitempty"`
	Reason   string `json:"reason,omitempty"`

	// Priority is the computed priority score for a positive detection.
	Priority float64 `json:"priority"`
}

// Report aggregates all detections for one snapshot.
type Report struct {
	Project      string   `json:"project"`
	ProjectTypes []string `json:"project_types"`
	Frameworks   []string `json:"frameworks"`

	// TotalPatterns counts rules actually evaluated, after applies_when
	// filtering.
	TotalPatterns  int `json:"total_patterns"`
	IssuesFound    int `json:"issues_found"`
	HighSeverity   int `json:"high_severity"`
	MediumSeverity int `json:"medium_severity"`
	LowSeverity    int `json:"low_severity"`

	// Detections holds only positive detections, ordered by priority
	// descending with rule id as the tie-break.
	Detections []Detection `json:"detections"`

	// HealthScore is the 0-100 aggregate.
	HealthScore int `json:"health_score"`
}

// Tier buckets a health score for display and exit-status decisions.
func Tier(score int) string {
	switch {
	case score >= 90:
		return "Excellent"
	case score >= 75:
		return "Good"
	case score >= 50:
		return "Fair"
	default:
		return "Needs Improvement"
	}
}
