package main

import (
	"github.com/spf13/cobra"

	"github.com/tordrt/erdkit"
)

var (
	ddlOutput   string
	ddlDeferFK  bool
	ddlEscape   bool
	ddlStrict   bool
	ddlFromType string
)

var ddlCmd = &cobra.Command{
	Use:   "ddl [file]",
	Short: "Generate PostgreSQL DDL from a diagram",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDDL,
}

func init() {
	ddlCmd.Flags().StringVar(&ddlFromType, "from", "", "Input format: mermaid, json or yaml (default: by extension)")
	ddlCmd.Flags().StringVarP(&ddlOutput, "output", "o", "", "Output file (default: stdout)")
	ddlCmd.Flags().BoolVar(&ddlDeferFK, "defer-fk", false, "Emit all foreign keys after the last CREATE TABLE")
	ddlCmd.Flags().BoolVar(&ddlEscape, "escape", false, "Double single quotes inside comment literals")
	ddlCmd.Flags().BoolVar(&ddlStrict, "strict", false, "Fail on parse warnings")
}

func runDDL(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) > 0 {
		path = args[0]
	}

	s, warnings, err := readInput(path, ddlFromType, cfg.IDGenerator())
	if err != nil {
		return err
	}
	if err := reportWarnings(warnings, ddlStrict || cfg.Parse.Strict); err != nil {
		return err
	}

	writer, closeOutput, err := openOutput(ddlOutput)
	if err != nil {
		return err
	}
	defer closeOutput()

	opts := &erdkit.DDLOptions{
		DeferForeignKeys: ddlDeferFK || cfg.DDL.DeferForeignKeys,
		EscapeLiterals:   ddlEscape || cfg.DDL.EscapeLiterals,
	}
	_, err = writer.Write([]byte(erdkit.GenerateDDL(s.Tables, opts)))
	return err
}
