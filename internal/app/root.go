// Package app contains the Cobra command tree for repohealth.
package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "repohealth",
	Short: "Rule-based project health analysis",
	Long: `repohealth scans a project's filesystem, evaluates a declarative
rule set against the structure it finds, and produces a prioritized,
confidence-weighted health report with remediation recommendations.

It inspects filesystem shape and lightweight content metrics only; it never
parses source code or runs project commands.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("repohealth", appVersion)
		fmt.Println()
		fmt.Println("Use a subcommand:")
		fmt.Println("  analyze   Scan a project and report health with recommendations")
		fmt.Println("  scan      Produce a structure snapshot without evaluating rules")
		fmt.Println("  rules     Show the active rule set and validation warnings")
		fmt.Println("  history   Show past analysis results for a project")
		fmt.Println("  doctor    Check whether the repohealth setup is healthy")
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/repohealth/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output")
}
