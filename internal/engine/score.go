package engine

import "github.com/sagehill-systems/repohealth/internal/rules"

// confidenceWeight maps evidentiary strength to a multiplier.
func confidenceWeight(l rules.Level) float64 {
	switch l {
	case rules.High:
		return 1.0
	case rules.Low:
		return 0.4
	default:
		return 0.7
	}
}

// severityMultiplier dampens the base priority for lower-impact issues.
func severityMultiplier(l rules.Level) float64 {
	switch l {
	case rules.High:
		return 1.0
	case rules.Low:
		return 0.3
	default:
		return 0.6
	}
}

// basePriority anchors the priority scale per severity.
func basePriority(l rules.Level) float64 {
	switch l {
	case rules.High:
		return 10
	case rules.Low:
		return 2
	default:
		return 5
	}
}

// PriorityScore computes the ranking score for a positive detection.
func PriorityScore(confidence, severity rules.Level) float64 {
	return confidenceWeight(confidence) * severityMultiplier(severity) * basePriority(severity)
}

// HealthScore computes the 0-100 aggregate. Penalties are computed in
// floating point and the clamped result is truncated toward zero, so
// total=13, issues=4, high=1, medium=2 yields 29. An empty rule set
// (total == 0) scores a perfect 100 by policy: no applicable rules means
// nothing to penalize.
func HealthScore(total, issues, high, medium int) int {
	issuesPenalty := 0.0
	if total > 0 {
		issuesPenalty = float64(issues) / float64(total) * 100
	}
	score := 100 - issuesPenalty - float64(high)*20 - float64(medium)*10
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return int(score)
}
