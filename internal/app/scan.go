package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagehill-systems/repohealth/internal/config"
	"github.com/sagehill-systems/repohealth/internal/output"
	"github.com/sagehill-systems/repohealth/internal/snapshot"
)

var scanFlagOut string

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Produce a structure snapshot without evaluating rules",
	Long: `Scan walks the project tree and prints what it found: file and
directory counts, detected project types and frameworks, and setup flags.

With --json (or --out) the full snapshot is emitted as a JSON document that
'analyze --snapshot' can evaluate later, so scanning and evaluation can run
as separate pipeline steps.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanFlagOut, "out", "", "Write the snapshot JSON to a file")

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
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

	snap, err := snapshot.Scan(cmd.Context(), root, snapshot.Options{
		SkipDirs:    cfg.SkipDirs,
		Concurrency: cfg.ScanConcurrency,
	})
	if err != nil {
		return err
	}

	if scanFlagOut != "" {
		f, err := os.Create(scanFlagOut)
		if err != nil {
			return fmt.Errorf("creating %q: %w", scanFlagOut, err)
		}
		defer func() { _ = f.Close() }()
		return snapshot.WriteJSON(f, snap)
	}

	if flagJSON {
		return snapshot.WriteJSON(os.Stdout, snap)
	}

	renderScanSummary(snap)
	return nil
}

func renderScanSummary(snap *snapshot.Snapshot) {
	fmt.Println(output.Section("Structure Snapshot"))
	fmt.Println()

	line := func(label, value string) {
		fmt.Printf(" %s %s\n", output.StyleLabel.Render(label), output.StyleValue.Render(value))
	}

	line("Project:", snap.Name)
	types := "unknown"
	if len(snap.ProjectTypes) > 0 {
		types = strings.Join(snap.ProjectTypes, ", ")
	}
	line("Type:", types)
	if len(snap.Frameworks) > 0 {
		line("Frameworks:", strings.Join(snap.Frameworks, ", "))
	}
	line("Files:", fmt.Sprintf("%d", snap.FileCount()))
	line("Directories:", fmt.Sprintf("%d", snap.DirCount()))

	flag := func(name string, on bool) string {
		if on {
			return output.StyleSuccess.Render(name)
		}
		return output.StyleMuted.Render(name)
	}
	fmt.Printf(" %s %s %s %s\n",
		output.StyleLabel.Render("Setup:"),
		flag("git", snap.Flag(snapshot.FlagHasGit)),
		flag("ci", snap.Flag(snapshot.FlagHasCI)),
		flag("tests", snap.Flag(snapshot.FlagHasTests)))

	if len(snap.Skips) > 0 {
		fmt.Printf(" %s %s\n",
			output.StyleLabel.Render("Skipped entries:"),
			output.StyleWarning.Render(fmt.Sprintf("%d", len(snap.Skips))))
	}
	fmt.Println()
}
