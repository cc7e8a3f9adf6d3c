package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tordrt/erdkit"
)

var validateFrom string

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Report parse warnings and model inconsistencies",
	Long: `Validate parses the input and checks the resulting model: unique table and
column ids, resolvable foreign key references and consistent FK flags.
Exits non-zero when anything is reported.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateFrom, "from", "", "Input format: mermaid, json or yaml (default: by extension)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) > 0 {
		path = args[0]
	}

	s, warnings, err := readInput(path, validateFrom, cfg.IDGenerator())
	if err != nil {
		return err
	}
	_ = reportWarnings(warnings, false)

	problems := erdkit.Validate(s)
	for _, p := range problems {
		color.New(color.FgYellow).Fprintf(os.Stderr, "invalid: %s\n", p)
	}

	total := len(warnings) + len(problems)
	if total > 0 {
		return fmt.Errorf("%d problem(s) found", total)
	}

	color.Green("OK: %d tables", len(s.Tables))
	return nil
}
