package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	convertFrom   string
	convertFormat string
	convertOutput string
	convertDir    string
	convertIDs    string
	convertStrict bool
)

var convertCmd = &cobra.Command{
	Use:   "convert [file]",
	Short: "Convert a diagram or exchange document to another format",
	Long: `Convert reads Mermaid erDiagram text, JSON or YAML (picked by file extension,
or --from) and writes it as mermaid, sql, json, yaml, markdown or text.
Reads stdin when no file or "-" is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVar(&convertFrom, "from", "", "Input format: mermaid, json or yaml (default: by extension)")
	convertCmd.Flags().StringVarP(&convertFormat, "format", "f", "", "Output format (default: output.format from config)")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "Output file (default: stdout)")
	convertCmd.Flags().StringVarP(&convertDir, "output-dir", "d", "", "Output directory for multi-file output")
	convertCmd.Flags().StringVar(&convertIDs, "ids", "", "Id scheme for parsed diagrams: sequence or uuid")
	convertCmd.Flags().BoolVar(&convertStrict, "strict", false, "Fail on parse warnings")
}

func runConvert(cmd *cobra.Command, args []string) error {
	ids, err := idGenerator(cmd, convertIDs)
	if err != nil {
		return err
	}

	var path string
	if len(args) > 0 {
		path = args[0]
	}

	s, warnings, err := readInput(path, convertFrom, ids)
	if err != nil {
		return err
	}
	if err := reportWarnings(warnings, convertStrict || cfg.Parse.Strict); err != nil {
		return err
	}

	reportProblems(os.Stderr, s)

	format := convertFormat
	if format == "" {
		format = cfg.Output.Format
	}
	outputDir := convertDir
	if outputDir == "" && convertOutput == "" {
		outputDir = cfg.Output.Dir
	}

	return writeSchema(s, format, convertOutput, outputDir)
}
