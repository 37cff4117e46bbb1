package output

import (
	"strings"
	"testing"
)

func init() {
	SetNoColor(true)
}

// ---------------------------------------------------------------------------
// Table
// ---------------------------------------------------------------------------

func TestTable_RendersHeadersAndRows(t *testing.T) {
	tbl := NewTable("ID", "Severity")
	tbl.AddRow("missing-readme", "high")
	tbl.AddRow("missing-license", "medium")

	got := tbl.Render()
	for _, want := range []string{"ID", "Severity", "missing-readme", "medium"} {
		if !strings.Contains(got, want) {
			t.Errorf("table missing %q:\n%s", want, got)
		}
	}
}

func TestTable_ColumnsWidenToFit(t *testing.T) {
	tbl := NewTable("A")
	tbl.AddRow("a-very-long-cell-value")

	lines := strings.Split(strings.TrimRight(tbl.Render(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header, separator, one row; got %d lines", len(lines))
	}
	if !strings.Contains(lines[2], "a-very-long-cell-value") {
		t.Error("long cell should render untruncated")
	}
}

func TestTable_ShortRowPadsMissingCells(t *testing.T) {
	tbl := NewTable("A", "B")
	tbl.AddRow("only-one")

	got := tbl.Render()
	if !strings.Contains(got, "only-one") {
		t.Error("row with missing cells should still render")
	}
}

func TestTable_EmptyHeadersRenderNothing(t *testing.T) {
	tbl := NewTable()
	if got := tbl.Render(); got != "" {
		t.Errorf("expected empty render, got %q", got)
	}
}

// ---------------------------------------------------------------------------
// ScoreBar and TrendArrow
// ---------------------------------------------------------------------------

func TestScoreBar_FillProportion(t *testing.T) {
	got := ScoreBar(50, 10)
	if strings.Count(got, "█") != 5 {
		t.Errorf("ScoreBar(50, 10) filled %d cells, want 5: %q", strings.Count(got, "█"), got)
	}
	if !strings.Contains(got, "50/100") {
		t.Errorf("score label missing: %q", got)
	}
}

func TestScoreBar_ClampsRange(t *testing.T) {
	if got := ScoreBar(150, 10); strings.Count(got, "█") != 10 {
		t.Errorf("over-100 score should fill the whole bar: %q", got)
	}
	if got := ScoreBar(-5, 10); strings.Count(got, "█") != 0 {
		t.Errorf("negative score should fill nothing: %q", got)
	}
}

func TestTrendArrow(t *testing.T) {
	if got := TrendArrow(5); !strings.Contains(got, "▲ +5") {
		t.Errorf("positive delta: %q", got)
	}
	if got := TrendArrow(-3); !strings.Contains(got, "▼ -3") {
		t.Errorf("negative delta: %q", got)
	}
	if got := TrendArrow(0); !strings.Contains(got, "─") {
		t.Errorf("zero delta: %q", got)
	}
}

// ---------------------------------------------------------------------------
// Severity helpers
// ---------------------------------------------------------------------------

func TestSeverityIcon(t *testing.T) {
	cases := map[string]string{
		"high":   "✗",
		"medium": "!",
		"low":    "·",
	}
	for severity, want := range cases {
		if got := SeverityIcon(severity); !strings.Contains(got, want) {
			t.Errorf("SeverityIcon(%q) = %q, want %q", severity, got, want)
		}
	}
}
