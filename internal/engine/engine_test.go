package engine

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/sagehill-systems/repohealth/internal/rules"
	"github.com/sagehill-systems/repohealth/internal/snapshot"
)

// fixture builds a snapshot over a real temp root so file_quality checks
// can read targets.
func fixture(t *testing.T, files map[string]string) *snapshot.Snapshot {
	t.Helper()
	root := t.TempDir()
	snap := &snapshot.Snapshot{
		Name:  "fixture",
		Root:  root,
		Files: make(map[string]bool),
		Dirs:  make(map[string]bool),
		Flags: make(map[string]bool),
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		snap.Files[rel] = true
		dir := filepath.ToSlash(filepath.Dir(rel))
		for dir != "." && dir != "/" {
			snap.Dirs[dir] = true
			dir = filepath.ToSlash(filepath.Dir(dir))
		}
	}
	return snap
}

func absenceRule(id, target string) rules.Rule {
	return rules.Rule{
		ID:         id,
		Kind:       rules.KindFileAbsence,
		Targets:    []string{target},
		Confidence: rules.High,
		Severity:   rules.Medium,
		Category:   "other",
	}
}

// ---------------------------------------------------------------------------
// Absence checks
// ---------------------------------------------------------------------------

func TestEvaluate_FileAbsence(t *testing.T) {
	snap := fixture(t, map[string]string{"README.md": "# x"})

	rep := Evaluate(snap, []rules.Rule{
		absenceRule("missing-readme", "README.md"),
		absenceRule("missing-license", "LICENSE"),
	})

	if rep.TotalPatterns != 2 {
		t.Fatalf("TotalPatterns = %d, want 2", rep.TotalPatterns)
	}
	if rep.IssuesFound != 1 {
		t.Fatalf("IssuesFound = %d, want 1", rep.IssuesFound)
	}
	if rep.Detections[0].RuleID != "missing-license" {
		t.Errorf("expected missing-license to be the issue, got %s", rep.Detections[0].RuleID)
	}
	if !rep.Detections[0].Evidence.Missing {
		t.Error("evidence should record the target as missing")
	}
}

func TestEvaluate_AnyOfCandidates(t *testing.T) {
	snap := fixture(t, map[string]string{"README.rst": "x"})

	rule := rules.Rule{
		ID:         "missing-readme",
		Kind:       rules.KindFileAbsence,
		Targets:    []string{"README.md", "README.rst"},
		Confidence: rules.High,
		Severity:   rules.High,
		Category:   "documentation",
	}

	rep := Evaluate(snap, []rules.Rule{rule})
	if rep.IssuesFound != 0 {
		t.Error("one present candidate satisfies an any-of rule")
	}
}

func TestEvaluate_DirectoryAbsence(t *testing.T) {
	snap := fixture(t, map[string]string{"tests/a_test.py": "x"})

	present := rules.Rule{
		ID: "missing-tests", Kind: rules.KindDirectoryAbsence,
		Targets: []string{"test", "tests"}, Confidence: rules.Medium, Severity: rules.High,
		Category: "code-quality",
	}
	absent := rules.Rule{
		ID: "missing-docs", Kind: rules.KindDirectoryAbsence,
		Targets: []string{"docs"}, Confidence: rules.High, Severity: rules.Low,
		Category: "documentation",
	}

	rep := Evaluate(snap, []rules.Rule{present, absent})
	if rep.IssuesFound != 1 {
		t.Fatalf("IssuesFound = %d, want 1", rep.IssuesFound)
	}
	if rep.Detections[0].RuleID != "missing-docs" {
		t.Errorf("expected missing-docs, got %s", rep.Detections[0].RuleID)
	}
}

// ---------------------------------------------------------------------------
// Quality checks
// ---------------------------------------------------------------------------

func qualityRule(minLines int, sections ...string) rules.Rule {
	return rules.Rule{
		ID:         "readme-minimal",
		Kind:       rules.KindFileQuality,
		Targets:    []string{"README.md"},
		Confidence: rules.Medium,
		Severity:   rules.Low,
		Category:   "documentation",
		Criteria:   &rules.Criteria{MinLines: minLines, Sections: sections},
	}
}

func TestEvaluate_QualityLineBoundary(t *testing.T) {
	exactly50 := strings.Repeat("line\n", 50)
	just49 := strings.Repeat("line\n", 49)

	snap := fixture(t, map[string]string{"README.md": exactly50})
	rep := Evaluate(snap, []rules.Rule{qualityRule(50)})
	if rep.IssuesFound != 0 {
		t.Error("a file of exactly min_lines lines passes")
	}

	snap = fixture(t, map[string]string{"README.md": just49})
	rep = Evaluate(snap, []rules.Rule{qualityRule(50)})
	if rep.IssuesFound != 1 {
		t.Fatal("a file one line short fails")
	}
	ev := rep.Detections[0].Evidence
	if ev.LineCount != 49 || ev.MinLines != 50 {
		t.Errorf("evidence lines = %d/%d, want 49/50", ev.LineCount, ev.MinLines)
	}
}

func TestEvaluate_QualityMissingSection(t *testing.T) {
	snap := fixture(t, map[string]string{"README.md": strings.Repeat("text\n", 60)})

	rep := Evaluate(snap, []rules.Rule{qualityRule(10, "# ", "## Usage")})
	if rep.IssuesFound != 1 {
		t.Fatal("missing sections must be an issue")
	}
	ev := rep.Detections[0].Evidence
	if len(ev.MissingSections) != 2 {
		t.Errorf("MissingSections = %v, want both markers", ev.MissingSections)
	}
}

func TestEvaluate_QualityMarginalEvidence(t *testing.T) {
	content := "# Title\n## Usage\nshort\n"
	snap := fixture(t, map[string]string{"README.md": content})

	rep := Evaluate(snap, []rules.Rule{qualityRule(10, "# ", "## Usage")})
	if rep.IssuesFound != 1 {
		t.Fatal("expected a line-count issue")
	}
	d := rep.Detections[0]
	if !d.Evidence.Marginal {
		t.Error("all sections present with short line count should be marked marginal")
	}
	if d.Confidence != rules.Medium {
		t.Error("declared confidence must never be rescored")
	}
}

func TestEvaluate_QualityMissingTargetDegradesToAbsence(t *testing.T) {
	snap := fixture(t, nil)

	rep := Evaluate(snap, []rules.Rule{qualityRule(10)})
	if rep.IssuesFound != 1 {
		t.Fatal("a missing quality target is an issue")
	}
	if !rep.Detections[0].Evidence.Missing {
		t.Error("evidence should record the target as missing")
	}
}

func TestEvaluate_QualityUnreadableTargetIsIssue(t *testing.T) {
	// The snapshot claims the file exists but it is gone from disk, the
	// same failure mode as a permission error mid-evaluation.
	snap := fixture(t, nil)
	snap.Files["README.md"] = true

	rep := Evaluate(snap, []rules.Rule{qualityRule(10)})
	if rep.IssuesFound != 1 {
		t.Fatal("an unreadable target is an issue, not an abort")
	}
	if rep.Detections[0].Evidence.ReadError == "" {
		t.Error("evidence should note the read failure")
	}
}

// ---------------------------------------------------------------------------
// applies_when
// ---------------------------------------------------------------------------

func TestEvaluate_AppliesWhenExcludesEntirely(t *testing.T) {
	snap := fixture(t, nil) // no project types detected

	gated := absenceRule("missing-eslint", ".eslintrc.json")
	gated.AppliesWhen = &rules.Predicate{ProjectTypes: []string{"node"}}

	rep := Evaluate(snap, []rules.Rule{gated})
	if rep.TotalPatterns != 0 {
		t.Error("a filtered rule must not count toward TotalPatterns")
	}
	if len(rep.Detections) != 0 {
		t.Error("a filtered rule must not produce a detection, even though its check would fire")
	}
	if rep.HealthScore != 100 {
		t.Errorf("HealthScore = %d, want 100 for an empty evaluated set", rep.HealthScore)
	}
}

// ---------------------------------------------------------------------------
// Ordering and determinism
// ---------------------------------------------------------------------------

func TestEvaluate_OrderByPriorityThenID(t *testing.T) {
	snap := fixture(t, nil)

	// Two rules with identical score, one with a higher score.
	a := absenceRule("b-check", "missing-b")
	b := absenceRule("a-check", "missing-a")
	c := absenceRule("c-check", "missing-c")
	c.Severity = rules.High

	rep := Evaluate(snap, []rules.Rule{a, b, c})
	got := []string{rep.Detections[0].RuleID, rep.Detections[1].RuleID, rep.Detections[2].RuleID}
	want := []string{"c-check", "a-check", "b-check"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v (priority desc, id asc)", got, want)
	}
}

func TestEvaluate_DeterministicAcrossWorkerCounts(t *testing.T) {
	files := map[string]string{"README.md": "# x\n"}
	ruleList := []rules.Rule{
		absenceRule("r1", "LICENSE"),
		absenceRule("r2", "CONTRIBUTING.md"),
		absenceRule("r3", ".gitignore"),
		absenceRule("r4", ".editorconfig"),
		qualityRule(10),
	}
	ruleList[1].Severity = rules.High
	ruleList[3].Severity = rules.Low

	snap := fixture(t, files)
	base := Evaluate(snap, ruleList, WithWorkers(1))

	for _, workers := range []int{2, 4, 16} {
		rep := Evaluate(snap, ruleList, WithWorkers(workers))
		if rep.HealthScore != base.HealthScore {
			t.Errorf("workers=%d: HealthScore %d != %d", workers, rep.HealthScore, base.HealthScore)
		}
		if !reflect.DeepEqual(rep.Detections, base.Detections) {
			t.Errorf("workers=%d: detections differ from single-worker run", workers)
		}
	}
}

// ---------------------------------------------------------------------------
// Recommendations
// ---------------------------------------------------------------------------

func TestEvaluate_ResolvesRecommendationVariant(t *testing.T) {
	snap := fixture(t, nil)
	snap.ProjectTypes = []string{"node"}

	rule := absenceRule("missing-gitignore", ".gitignore")
	rule.Recommendation = rules.Recommendation{
		Template: "gitignore-basic",
		Reason:   "artifacts get committed",
		Variants: []rules.Variant{{WhenType: "node", Template: "gitignore-node"}},
	}

	rep := Evaluate(snap, []rules.Rule{rule})
	if rep.Detections[0].Template != "gitignore-node" {
		t.Errorf("Template = %q, want node variant", rep.Detections[0].Template)
	}
	if rep.Detections[0].Reason != "artifacts get committed" {
		t.Errorf("Reason = %q", rep.Detections[0].Reason)
	}
}

func TestEvaluate_NegativeDetectionHasNoRecommendation(t *testing.T) {
	snap := fixture(t, map[string]string{".gitignore": "node_modules\n"})

	rule := absenceRule("missing-gitignore", ".gitignore")
	rule.Recommendation = rules.Recommendation{Template: "gitignore-basic"}

	rep := Evaluate(snap, []rules.Rule{rule})
	if len(rep.Detections) != 0 {
		t.Fatal("satisfied rule should produce no positive detection")
	}
}
