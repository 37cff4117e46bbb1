// Package output provides styled terminal rendering helpers for repohealth.
package output

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Color constants for consistent styling across the CLI.
var (
	// ColorPrimary is used for headers and emphasis.
	ColorPrimary = lipgloss.Color("#4dd0e1")

	// ColorSuccess is used for passing checks and healthy scores.
	ColorSuccess = lipgloss.Color("#66bb6a")

	// ColorError is used for high-severity issues and failing scores.
	ColorError = lipgloss.Color("#ef5350")

	// ColorWarning is used for medium-severity issues.
	ColorWarning = lipgloss.Color("#ffca28")

	// ColorMuted is used for secondary text and rules.
	ColorMuted = lipgloss.Color("#888888")
)

// Styles provides reusable lipgloss styles.
var (
	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	StyleSuccess = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorError)

	StyleWarning = lipgloss.NewStyle().
			Foreground(ColorWarning)

	StyleMuted = lipgloss.NewStyle().
			Foreground(ColorMuted)

	StyleBold = lipgloss.NewStyle().
			Bold(true)

	// StyleLabel is used for metric labels.
	StyleLabel = lipgloss.NewStyle().Width(22)

	// StyleValue is used for metric values.
	StyleValue = lipgloss.NewStyle().Bold(true)
)

// noColor tracks whether color output is disabled.
var noColor bool

// SetNoColor disables or enables color output globally. When disabled,
// all package-level styles are reassigned to unstyled renderers.
func SetNoColor(disabled bool) {
	noColor = disabled
	if disabled {
		plain := lipgloss.NewStyle()
		StyleHeader = plain
		StyleSuccess = plain
		StyleError = plain
		StyleWarning = plain
		StyleMuted = plain
		StyleBold = plain
		StyleLabel = plain.Width(22)
		StyleValue = plain
	}
}

// IsNoColor returns whether color output is currently disabled.
func IsNoColor() bool {
	return noColor
}

// DetectColor disables color when stdout is not a terminal, unless the
// caller already forced a mode. Piped output stays machine-friendly.
func DetectColor() {
	if noColor {
		return
	}
	fd := os.Stdout.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		SetNoColor(true)
	}
}

// SeverityStyle returns the style for a severity level string.
func SeverityStyle(severity string) lipgloss.Style {
	switch severity {
	case "high":
		return StyleError
	case "medium":
		return StyleWarning
	default:
		return StyleMuted
	}
}

// SeverityIcon returns the status glyph for a severity level string.
func SeverityIcon(severity string) string {
	switch severity {
	case "high":
		return StyleError.Render("✗")
	case "medium":
		return StyleWarning.Render("!")
	default:
		return StyleMuted.Render("·")
	}
}
