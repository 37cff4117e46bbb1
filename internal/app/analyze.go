package app

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sagehill-systems/repohealth/internal/config"
	"github.com/sagehill-systems/repohealth/internal/engine"
	"github.com/sagehill-systems/repohealth/internal/history"
	"github.com/sagehill-systems/repohealth/internal/output"
	"github.com/sagehill-systems/repohealth/internal/report"
	"github.com/sagehill-systems/repohealth/internal/rules"
	"github.com/sagehill-systems/repohealth/internal/snapshot"
)

var (
	analyzeFlagRules     string
	analyzeFlagSnapshot  string
	analyzeFlagFailUnder int
	analyzeFlagTop       int
	analyzeFlagSave      bool
	analyzeFlagSessionID string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Scan a project and report health with recommendations",
	Long: `Analyze scans the project at the given path (default: current
directory), evaluates the active rule set against the snapshot, and prints
a category-grouped report with prioritized remediation actions and a 0-100
health score.

The exit status is non-zero when the health score falls below the
--fail-under threshold, so analyze can gate pre-commit hooks and CI.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFlagRules, "rules", "", "Rule file path (default: embedded catalog or config rules_path)")
	analyzeCmd.Flags().StringVar(&analyzeFlagSnapshot, "snapshot", "", "Evaluate a saved snapshot JSON instead of scanning")
	analyzeCmd.Flags().IntVar(&analyzeFlagFailUnder, "fail-under", -1, "Exit non-zero below this health score (default from config)")
	analyzeCmd.Flags().IntVar(&analyzeFlagTop, "top", 0, "Number of priority actions to list (default from config)")
	analyzeCmd.Flags().BoolVar(&analyzeFlagSave, "save", false, "Persist the result to the history store")
	analyzeCmd.Flags().StringVar(&analyzeFlagSessionID, "session-id", "", "Isolation session id for history (minted when omitted)")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if flagNoColor {
		output.SetNoColor(true)
	}
	output.DetectColor()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ruleList, warnings, err := loadRules(cfg)
	if err != nil {
		return err
	}
	printWarnings(warnings)

	snap, err := obtainSnapshot(cmd, cfg, args)
	if err != nil {
		return err
	}

	rep := engine.Evaluate(snap, ruleList)

	if flagJSON {
		if err := report.WriteJSON(os.Stdout, rep); err != nil {
			return err
		}
	} else {
		top := analyzeFlagTop
		if top <= 0 {
			top = cfg.TopActions
		}
		report.Format(os.Stdout, rep, top)
	}

	if analyzeFlagSave {
		saveResult(cmd, cfg, rep)
	}

	failUnder := analyzeFlagFailUnder
	if failUnder < 0 {
		failUnder = cfg.FailUnder
	}
	if rep.HealthScore < failUnder {
		return fmt.Errorf("health score %d is below threshold %d", rep.HealthScore, failUnder)
	}
	return nil
}

// loadRules resolves the rule source: --rules flag, config rules_path, or
// the embedded catalog.
func loadRules(cfg *config.Config) ([]rules.Rule, []rules.LoadWarning, error) {
	path := analyzeFlagRules
	if path == "" {
		path = cfg.RulesPath
	}
	if path == "" {
		return rules.Default()
	}
	return rules.LoadFile(path)
}

// obtainSnapshot scans the target path, or loads a saved snapshot when
// --snapshot is given.
func obtainSnapshot(cmd *cobra.Command, cfg *config.Config, args []string) (*snapshot.Snapshot, error) {
	if analyzeFlagSnapshot != "" {
		return snapshot.ReadJSONFile(analyzeFlagSnapshot)
	}

	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	snap, err := snapshot.Scan(cmd.Context(), root, snapshot.Options{
		SkipDirs:    cfg.SkipDirs,
		Concurrency: cfg.ScanConcurrency,
	})
	if err != nil {
		return nil, err
	}
	if flagVerbose {
		for _, s := range snap.Skips {
			fmt.Fprintf(os.Stderr, "%s %s: %s\n", output.StyleMuted.Render("skipped"), s.Path, s.Reason)
		}
	}
	return snap, nil
}

// saveResult persists the report to the history store. Persistence is
// best-effort: failures are reported on stderr but never change the
// analysis output or exit decision.
func saveResult(cmd *cobra.Command, cfg *config.Config, rep *engine.Report) {
	sessionID := analyzeFlagSessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
		fmt.Fprintf(os.Stderr, "session id: %s\n", sessionID)
	}

	req, err := history.NewPutRequest(sessionID, history.Domain, history.NewRecord(rep))
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning: not saved:", err)
		return
	}

	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning: opening history store:", err)
		return
	}
	defer func() { _ = store.Close() }()

	if err := store.Put(cmd.Context(), req); err != nil {
		fmt.Fprintln(os.Stderr, "warning: saving result:", err)
	}
}

func printWarnings(warnings []rules.LoadWarning) {
	if !flagVerbose {
		return
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "%s %s\n", output.StyleWarning.Render("rule warning:"), w)
	}
}
