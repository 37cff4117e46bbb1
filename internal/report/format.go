// Package report renders an analysis report for human readers.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sagehill-systems/repohealth/internal/engine"
	"github.com/sagehill-systems/repohealth/internal/output"
	"github.com/sagehill-systems/repohealth/internal/rules"
)

// categoryTitles maps taxonomy keys to display names, shown in the fixed
// order of rules.Categories.
var categoryTitles = map[string]string{
	"git":           "Git Configuration",
	"documentation": "Documentation",
	"ci-cd":         "CI/CD",
	"code-quality":  "Code Quality",
	"setup":         "Setup",
	"security":      "Security",
	"other":         "Other",
}

// Format writes the full human-readable report: project info, per-category
// status, the top-N priority actions, and the health score line. The
// detections arrive already sorted; rendering never reorders them.
func Format(w io.Writer, rep *engine.Report, topN int) {
	fmt.Fprintln(w, output.Section("Project Analysis"))
	fmt.Fprintln(w)

	writeInfo(w, rep)
	writeCategories(w, rep)
	writeActions(w, rep, topN)
	writeHealth(w, rep)
}

// WriteJSON emits the machine-readable report document.
func WriteJSON(w io.Writer, rep *engine.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func writeInfo(w io.Writer, rep *engine.Report) {
	line := func(label, value string) {
		fmt.Fprintf(w, " %s %s\n", output.StyleLabel.Render(label), output.StyleValue.Render(value))
	}

	line("Project:", rep.Project)
	types := "unknown"
	if len(rep.ProjectTypes) > 0 {
		types = strings.Join(rep.ProjectTypes, ", ")
	}
	line("Type:", types)
	if len(rep.Frameworks) > 0 {
		line("Frameworks:", strings.Join(rep.Frameworks, ", "))
	}
	line("Patterns checked:", fmt.Sprintf("%d", rep.TotalPatterns))
	line("Issues found:", fmt.Sprintf("%d", rep.IssuesFound))
}

func writeCategories(w io.Writer, rep *engine.Report) {
	byCategory := make(map[string][]engine.Detection)
	for _, d := range rep.Detections {
		byCategory[d.Category] = append(byCategory[d.Category], d)
	}

	fmt.Fprintln(w, output.Section("Findings"))
	fmt.Fprintln(w)

	if len(rep.Detections) == 0 {
		fmt.Fprintf(w, " %s no issues detected\n", output.StyleSuccess.Render("✓"))
		return
	}

	for _, cat := range rules.Categories {
		detections := byCategory[cat]
		if len(detections) == 0 {
			continue
		}

		icon := output.StyleWarning.Render("!")
		for _, d := range detections {
			if d.Severity == rules.High {
				icon = output.StyleError.Render("✗")
				break
			}
		}
		fmt.Fprintf(w, " %s %s\n", icon, output.StyleBold.Render(title(cat)))

		for _, d := range detections {
			fmt.Fprintf(w, "   %s %s %s\n",
				output.SeverityIcon(string(d.Severity)),
				describe(d),
				output.StyleMuted.Render(fmt.Sprintf("(confidence: %s, severity: %s)", d.Confidence, d.Severity)))
			if d.Template != "" {
				fmt.Fprintf(w, "     %s\n", output.StyleMuted.Render("→ repohealth apply "+d.Template))
			}
			if d.Reason != "" {
				fmt.Fprintf(w, "     %s\n", output.StyleMuted.Render(d.Reason))
			}
		}
	}
}

func writeActions(w io.Writer, rep *engine.Report, topN int) {
	fmt.Fprintln(w, output.Section("Priority Actions"))
	fmt.Fprintln(w)

	if len(rep.Detections) == 0 {
		fmt.Fprintf(w, " %s nothing to do\n", output.StyleSuccess.Render("✓"))
		return
	}

	if topN <= 0 {
		topN = 5
	}
	top := rep.Detections
	if len(top) > topN {
		top = top[:topN]
	}

	for i, d := range top {
		fmt.Fprintf(w, " %d. %s %s\n", i+1, describe(d),
			output.SeverityStyle(string(d.Severity)).Render(fmt.Sprintf("(%s severity)", d.Severity)))
		if d.Template != "" {
			fmt.Fprintf(w, "    %s\n", output.StyleMuted.Render("→ repohealth apply "+d.Template))
		}
	}
}

func writeHealth(w io.Writer, rep *engine.Report) {
	fmt.Fprintln(w, output.Section("Health"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, " %s  %s\n\n",
		output.ScoreBar(rep.HealthScore, 20),
		output.StyleBold.Render(engine.Tier(rep.HealthScore)))
}

// describe turns a rule id into a readable summary, with evidence detail
// for quality checks.
func describe(d engine.Detection) string {
	text := strings.ReplaceAll(d.RuleID, "-", " ")
	text = strings.ToUpper(text[:1]) + text[1:]

	ev := d.Evidence
	switch {
	case ev.ReadError != "":
		return fmt.Sprintf("%s (target unreadable)", text)
	case d.Kind == rules.KindFileQuality && !ev.Missing:
		var parts []string
		if ev.MinLines > 0 && ev.LineCount < ev.MinLines {
			parts = append(parts, fmt.Sprintf("%d/%d lines", ev.LineCount, ev.MinLines))
		}
		if len(ev.MissingSections) > 0 {
			parts = append(parts, fmt.Sprintf("missing sections: %s", strings.Join(ev.MissingSections, ", ")))
		}
		if len(parts) > 0 {
			return fmt.Sprintf("%s (%s)", text, strings.Join(parts, "; "))
		}
	}
	return text
}

func title(category string) string {
	if t, ok := categoryTitles[category]; ok {
		return t
	}
	return category
}
