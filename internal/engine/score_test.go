package engine

import (
	"math"
	"testing"

	"github.com/sagehill-systems/repohealth/internal/rules"
)

// ---------------------------------------------------------------------------
// PriorityScore
// ---------------------------------------------------------------------------

func TestPriorityScore_Values(t *testing.T) {
	cases := []struct {
		confidence rules.Level
		severity   rules.Level
		want       float64
	}{
		{rules.High, rules.High, 10.0},  // 1.0 * 1.0 * 10
		{rules.High, rules.Medium, 3.0}, // 1.0 * 0.6 * 5
		{rules.High, rules.Low, 0.6},    // 1.0 * 0.3 * 2
		{rules.Medium, rules.High, 7.0}, // 0.7 * 1.0 * 10
		{rules.Low, rules.Medium, 1.2},  // 0.4 * 0.6 * 5
		{rules.Low, rules.Low, 0.24},    // 0.4 * 0.3 * 2
	}
	for _, c := range cases {
		got := PriorityScore(c.confidence, c.severity)
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("PriorityScore(%s, %s) = %v, want %v", c.confidence, c.severity, got, c.want)
		}
	}
}

// ---------------------------------------------------------------------------
// HealthScore
// ---------------------------------------------------------------------------

func TestHealthScore_ConcreteCase(t *testing.T) {
	// 100 - (4/13)*100 - 1*20 - 2*10 = 29.23..., truncated toward zero.
	if got := HealthScore(13, 4, 1, 2); got != 29 {
		t.Errorf("HealthScore(13, 4, 1, 2) = %d, want 29", got)
	}
}

func TestHealthScore_TruncatesTowardZero(t *testing.T) {
	// 100 - (1/3)*100 = 66.66... -> 66, not 67.
	if got := HealthScore(3, 1, 0, 0); got != 66 {
		t.Errorf("HealthScore(3, 1, 0, 0) = %d, want 66", got)
	}
}

func TestHealthScore_EmptyRuleSetIsPerfect(t *testing.T) {
	if got := HealthScore(0, 0, 0, 0); got != 100 {
		t.Errorf("HealthScore with no applicable rules = %d, want 100", got)
	}
}

func TestHealthScore_NoIssues(t *testing.T) {
	if got := HealthScore(13, 0, 0, 0); got != 100 {
		t.Errorf("HealthScore(13, 0, 0, 0) = %d, want 100", got)
	}
}

func TestHealthScore_ClampsAtZero(t *testing.T) {
	if got := HealthScore(5, 5, 4, 2); got != 0 {
		t.Errorf("HealthScore with heavy penalties = %d, want 0", got)
	}
}

// ---------------------------------------------------------------------------
// Tier
// ---------------------------------------------------------------------------

func TestTier_Boundaries(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{100, "Excellent"},
		{90, "Excellent"},
		{89, "Good"},
		{75, "Good"},
		{74, "Fair"},
		{50, "Fair"},
		{49, "Needs Improvement"},
		{0, "Needs Improvement"},
	}
	for _, c := range cases {
		if got := Tier(c.score); got != c.want {
			t.Errorf("Tier(%d) = %q, want %q", c.score, got, c.want)
		}
	}
}
