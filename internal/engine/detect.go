package engine

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/sagehill-systems/repohealth/internal/rules"
	"github.com/sagehill-systems/repohealth/internal/snapshot"
)

// evaluateRule runs one rule against the snapshot. The rule has already
// passed its applies_when gate. Evaluation is pure with respect to the
// snapshot; only file_quality touches the filesystem, read-only.
func evaluateRule(snap *snapshot.Snapshot, rule rules.Rule) Detection {
	d := Detection{
		RuleID:     rule.ID,
		Kind:       rule.Kind,
		Category:   rule.Category,
		Confidence: rule.Confidence,
		Severity:   rule.Severity,
		Evidence:   Evidence{Checked: rule.Targets},
	}

	switch rule.Kind {
	case rules.KindFileAbsence:
		d.IssueFound = noneExists(rule.Targets, snap.HasFile)
		d.Evidence.Missing = d.IssueFound
	case rules.KindDirectoryAbsence:
		d.IssueFound = noneExists(rule.Targets, snap.HasDir)
		d.Evidence.Missing = d.IssueFound
	case rules.KindFileQuality:
		checkQuality(snap, rule, &d)
	}

	if d.IssueFound {
		d.Template, d.Reason = rule.Recommendation.Resolve(snap)
		d.Priority = PriorityScore(rule.Confidence, rule.Severity)
	}
	return d
}

// noneExists implements the any-of-candidates semantic: the issue holds
// only when every candidate is absent.
func noneExists(targets []string, present func(string) bool) bool {
	for _, t := range targets {
		if present(t) {
			return false
		}
	}
	return true
}

// checkQuality tests a single target file against its criteria. A missing
// target degrades to an absence-style positive detection; an unreadable
// target is treated the same with the error recorded in evidence.
func checkQuality(snap *snapshot.Snapshot, rule rules.Rule, d *Detection) {
	target := rule.Targets[0]
	if !snap.HasFile(target) {
		d.IssueFound = true
		d.Evidence.Missing = true
		return
	}

	data, err := os.ReadFile(filepath.Join(snap.Root, filepath.FromSlash(target)))
	if err != nil {
		d.IssueFound = true
		d.Evidence.ReadError = err.Error()
		return
	}

	crit := rule.Criteria
	lineCount := countLines(data)
	d.Evidence.LineCount = lineCount
	d.Evidence.MinLines = crit.MinLines

	content := string(data)
	for _, section := range crit.Sections {
		if strings.Contains(content, section) {
			d.Evidence.MatchedSections = append(d.Evidence.MatchedSections, section)
		} else {
			d.Evidence.MissingSections = append(d.Evidence.MissingSections, section)
		}
	}

	tooShort := crit.MinLines > 0 && lineCount < crit.MinLines
	d.IssueFound = tooShort || len(d.Evidence.MissingSections) > 0

	// All markers present with only the line count short is a weaker
	// signal; noted in evidence, never rescored.
	d.Evidence.Marginal = tooShort && len(crit.Sections) > 0 && len(d.Evidence.MissingSections) == 0
}

// countLines counts lines the way an editor displays them: a trailing
// newline does not open a new line, an empty file has zero.
func countLines(data []byte) int {
	if len(data) == 0 {
		return 0
	}
	n := bytes.Count(data, []byte("\n"))
	if data[len(data)-1] != '\n' {
		n++
	}
	return n
}
