package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagehill-systems/repohealth/internal/config"
	"github.com/sagehill-systems/repohealth/internal/history"
	"github.com/sagehill-systems/repohealth/internal/output"
	"github.com/sagehill-systems/repohealth/internal/rules"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check whether the repohealth setup is healthy",
	Long: `Run a series of health checks against your repohealth configuration,
rule catalog, and history store. Prints a pass/fail line for each check
and a summary of how many checks passed.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// doctorCheck holds the result of a single health check.
type doctorCheck struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// doctorOutput is the JSON-serializable result of the doctor command.
type doctorOutput struct {
	Checks      []doctorCheck `json:"checks"`
	PassedCount int           `json:"passed"`
	TotalCount  int           `json:"total"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	if flagNoColor {
		output.SetNoColor(true)
	}
	output.DetectColor()

	var checks []doctorCheck

	// 1. Config — loads without error.
	cfg, check := checkConfig()
	checks = append(checks, check)

	if cfg != nil {
		// 2. Rule catalog — loads and yields valid rules.
		checks = append(checks, checkRules(cfg))

		// 3. History store — database opens and migrates.
		checks = append(checks, checkHistoryDB(cfg))
	}

	passed := 0
	for _, c := range checks {
		if c.Passed {
			passed++
		}
	}

	if flagJSON {
		out := doctorOutput{
			Checks:      checks,
			PassedCount: passed,
			TotalCount:  len(checks),
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Println(output.Section("Doctor"))
	fmt.Println()

	for _, c := range checks {
		renderDoctorCheck(c)
	}

	fmt.Println()
	summary := fmt.Sprintf("%d/%d checks passed", passed, len(checks))
	if passed == len(checks) {
		fmt.Printf(" %s\n\n", output.StyleSuccess.Render(summary))
	} else {
		fmt.Printf(" %s\n\n", output.StyleWarning.Render(summary))
	}

	return nil
}

// renderDoctorCheck prints a single check result line.
func renderDoctorCheck(c doctorCheck) {
	var indicator string
	if c.Passed {
		indicator = output.StyleSuccess.Render("✓")
	} else {
		indicator = output.StyleWarning.Render("✗")
	}
	label := output.StyleBold.Render(c.Name)
	detail := output.StyleMuted.Render(c.Message)
	fmt.Printf("  %s  %-24s %s\n", indicator, label, detail)
}

func checkConfig() (*config.Config, doctorCheck) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, doctorCheck{
			Name:    "Configuration",
			Passed:  false,
			Message: err.Error(),
		}
	}
	return cfg, doctorCheck{
		Name:    "Configuration",
		Passed:  true,
		Message: "loaded",
	}
}

func checkRules(cfg *config.Config) doctorCheck {
	var (
		ruleList []rules.Rule
		warnings []rules.LoadWarning
		err      error
		source   = "builtin catalog"
	)
	if cfg.RulesPath == "" {
		ruleList, warnings, err = rules.Default()
	} else {
		source = cfg.RulesPath
		ruleList, warnings, err = rules.LoadFile(cfg.RulesPath)
	}
	if err != nil {
		return doctorCheck{
			Name:    "Rule catalog",
			Passed:  false,
			Message: err.Error(),
		}
	}
	if len(ruleList) == 0 {
		return doctorCheck{
			Name:    "Rule catalog",
			Passed:  false,
			Message: fmt.Sprintf("%s: zero valid rules (%d warnings)", source, len(warnings)),
		}
	}
	msg := fmt.Sprintf("%s: %d rules", source, len(ruleList))
	if len(warnings) > 0 {
		msg = fmt.Sprintf("%s, %d warnings", msg, len(warnings))
	}
	return doctorCheck{
		Name:    "Rule catalog",
		Passed:  true,
		Message: msg,
	}
}

func checkHistoryDB(cfg *config.Config) doctorCheck {
	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		return doctorCheck{
			Name:    "History store",
			Passed:  false,
			Message: err.Error(),
		}
	}
	_ = store.Close()
	return doctorCheck{
		Name:    "History store",
		Passed:  true,
		Message: cfg.HistoryDB,
	}
}
