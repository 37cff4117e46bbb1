package output

import (
	"fmt"
	"strings"
)

// ScoreBar renders a visual bar for a 0-100 health score.
// Example: "████████░░ 80/100"
func ScoreBar(score int, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := score * width / 100
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	style := StyleError
	switch {
	case score >= 75:
		style = StyleSuccess
	case score >= 50:
		style = StyleWarning
	}

	return fmt.Sprintf("%s %s", style.Render(bar), StyleMuted.Render(fmt.Sprintf("%d/100", score)))
}

// TrendArrow returns a styled indicator for a health score delta between
// two analysis runs. Higher scores are better.
func TrendArrow(delta int) string {
	if delta == 0 {
		return StyleMuted.Render("─")
	}
	if delta > 0 {
		return StyleSuccess.Render(fmt.Sprintf("▲ +%d", delta))
	}
	return StyleError.Render(fmt.Sprintf("▼ %d", delta))
}

// Section prints a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 66))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}
