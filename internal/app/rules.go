package app

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagehill-systems/repohealth/internal/config"
	"github.com/sagehill-systems/repohealth/internal/output"
	"github.com/sagehill-systems/repohealth/internal/rules"
)

var (
	rulesFlagRules  string
	rulesFlagStrict bool
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show the active rule set and validation warnings",
	Long: `Rules loads the active pattern catalog (embedded default, config
rules_path, or --rules) and lists every valid rule together with any
entries that were rejected during validation.`,
	RunE: runRules,
}

func init() {
	rulesCmd.Flags().StringVar(&rulesFlagRules, "rules", "", "Rule file path (default: embedded catalog or config rules_path)")
	rulesCmd.Flags().BoolVar(&rulesFlagStrict, "strict", false, "Exit non-zero when the catalog yields zero valid rules")

	rootCmd.AddCommand(rulesCmd)
}

// rulesOutput is the JSON-serializable result of the rules command.
type rulesOutput struct {
	Rules    []rules.Rule        `json:"rules"`
	Warnings []rules.LoadWarning `json:"warnings"`
}

func runRules(cmd *cobra.Command, args []string) error {
	if flagNoColor {
		output.SetNoColor(true)
	}
	output.DetectColor()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	path := rulesFlagRules
	if path == "" {
		path = cfg.RulesPath
	}

	var (
		ruleList []rules.Rule
		warnings []rules.LoadWarning
	)
	if path == "" {
		ruleList, warnings, err = rules.Default()
	} else {
		ruleList, warnings, err = rules.LoadFile(path)
	}
	if err != nil {
		return err
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rulesOutput{Rules: ruleList, Warnings: warnings}); err != nil {
			return err
		}
	} else {
		renderRules(ruleList, warnings)
	}

	if rulesFlagStrict && len(ruleList) == 0 {
		return fmt.Errorf("rule catalog yielded zero valid rules")
	}
	return nil
}

func renderRules(ruleList []rules.Rule, warnings []rules.LoadWarning) {
	fmt.Println(output.Section("Rule Catalog"))
	fmt.Println()

	tbl := output.NewTable("ID", "Kind", "Severity", "Confidence", "Category", "Target")
	for _, r := range ruleList {
		tbl.AddRow(r.ID, string(r.Kind), string(r.Severity), string(r.Confidence),
			r.Category, strings.Join(r.Targets, ", "))
	}
	tbl.Print()

	fmt.Println()
	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Valid rules:"),
		output.StyleValue.Render(fmt.Sprintf("%d", len(ruleList))))

	if len(warnings) > 0 {
		fmt.Println(output.Section("Warnings"))
		fmt.Println()
		for _, w := range warnings {
			fmt.Printf(" %s %s\n", output.StyleWarning.Render("!"), w)
		}
	}
	fmt.Println()
}
