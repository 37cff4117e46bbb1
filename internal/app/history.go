package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sagehill-systems/repohealth/internal/config"
	"github.com/sagehill-systems/repohealth/internal/history"
	"github.com/sagehill-systems/repohealth/internal/output"
)

var (
	historyFlagSessionID string
	historyFlagLimit     int
)

var historyCmd = &cobra.Command{
	Use:   "history [path]",
	Short: "Show past analysis results for a project",
	Long: `History lists saved analysis records for the project at the given
path (default: current directory), newest first, with the score trend
between consecutive runs.

Records are isolated per session: --session-id is required and only records
saved under that id are ever returned.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyFlagSessionID, "session-id", "", "Isolation session id (required)")
	historyCmd.Flags().IntVar(&historyFlagLimit, "limit", 0, "Maximum records to list")
	_ = historyCmd.MarkFlagRequired("session-id")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if flagNoColor {
		output.SetNoColor(true)
	}
	output.DetectColor()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	project := filepath.Base(abs)

	q, err := history.NewQuery(historyFlagSessionID, history.Domain, project, historyFlagLimit)
	if err != nil {
		return err
	}

	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		return fmt.Errorf("opening history store: %w", err)
	}
	defer func() { _ = store.Close() }()

	records, err := store.History(cmd.Context(), q)
	if err != nil {
		return err
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	renderHistory(project, records)
	return nil
}

func renderHistory(project string, records []history.Record) {
	fmt.Println(output.Section("Analysis History: " + project))
	fmt.Println()

	if len(records) == 0 {
		fmt.Println(output.StyleMuted.Render(" No saved analyses for this project in this session."))
		fmt.Println()
		return
	}

	tbl := output.NewTable("When", "Score", "Trend", "Issues", "Patterns")
	for i, rec := range records {
		// Records are newest first; the trend compares against the next
		// (older) record.
		trend := output.StyleMuted.Render("─")
		if i+1 < len(records) {
			trend = output.TrendArrow(rec.HealthScore - records[i+1].HealthScore)
		}
		tbl.AddRow(
			rec.CreatedAt.Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", rec.HealthScore),
			trend,
			fmt.Sprintf("%d", rec.IssuesFound),
			fmt.Sprintf("%d", rec.TotalPatterns),
		)
	}
	tbl.Print()
	fmt.Println()
}
