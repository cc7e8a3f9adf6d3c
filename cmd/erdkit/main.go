package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tordrt/erdkit"
	"github.com/tordrt/erdkit/internal/config"
	"github.com/tordrt/erdkit/internal/schema"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "erdkit",
	Short: "Convert entity-relationship diagrams between Mermaid, JSON/YAML and PostgreSQL DDL",
	Long: `erdkit parses Mermaid erDiagram text into a table model, serializes it back,
generates PostgreSQL DDL and reverse engineers diagrams from PostgreSQL, MySQL
or SQLite databases.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

func init() {
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./erdkit.config.{json,yaml})")

	rootCmd.AddCommand(convertCmd, ddlCmd, extractCmd, applyCmd, validateCmd)
}

func initConfig() error {
	v := viper.GetViper()
	if err := config.Init(v, cfgFile); err != nil {
		return err
	}

	loaded, err := config.Load(v)
	if err != nil {
		return err
	}
	cfg = loaded
	return nil
}

// parseTableList splits a comma-separated flag value
func parseTableList(tablesStr string) []string {
	if tablesStr == "" {
		return nil
	}

	tableList := strings.Split(tablesStr, ",")
	for i, t := range tableList {
		tableList[i] = strings.TrimSpace(t)
	}
	return tableList
}

// idGenerator resolves the --ids flag, falling back to the config
func idGenerator(cmd *cobra.Command, flagValue string) (schema.IDGenerator, error) {
	if cmd.Flags().Changed("ids") {
		return schema.NewIDGenerator(flagValue)
	}
	return cfg.IDGenerator(), nil
}

// readInput loads a schema from path, or from stdin when path is "-" or
// empty. from overrides the format picked from the file extension.
func readInput(path, from string, ids schema.IDGenerator) (*erdkit.Schema, []erdkit.ParseWarning, error) {
	if path == "" || path == "-" {
		if from == "" {
			from = erdkit.InputMermaid
		}
		return erdkit.ReadSchema(os.Stdin, from, ids)
	}

	if from == "" {
		return erdkit.LoadSchemaFile(path, ids)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open schema file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return erdkit.ReadSchema(f, from, ids)
}

// reportWarnings prints parse warnings to stderr. In strict mode any warning
// fails the command.
func reportWarnings(warnings []erdkit.ParseWarning, strict bool) error {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if strict && len(warnings) > 0 {
		return fmt.Errorf("%d parse warning(s) in strict mode", len(warnings))
	}
	return nil
}

// reportProblems prints model problems that make the written output lossy,
// such as names a diagram cannot carry, and returns how many it found.
func reportProblems(w io.Writer, s *erdkit.Schema) int {
	problems := erdkit.Validate(s)
	for _, p := range problems {
		fmt.Fprintf(w, "warning: %s\n", p)
	}
	return len(problems)
}

// openOutput returns stdout, or a created file when outputFile is set. The
// returned close func reports close failures as warnings.
func openOutput(outputFile string) (io.Writer, func(), error) {
	if outputFile == "" {
		return os.Stdout, func() {}, nil
	}

	f, err := os.Create(outputFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() {
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to close output file: %v\n", err)
		}
	}, nil
}

// writeSchema formats s to outputFile, outputDir or stdout
func writeSchema(s *erdkit.Schema, format, outputFile, outputDir string) error {
	if outputDir != "" && outputFile != "" {
		return fmt.Errorf("cannot use both --output-dir and --output flags")
	}

	ddlOpts := erdkit.DDLOptions{
		DeferForeignKeys: cfg.DDL.DeferForeignKeys,
		EscapeLiterals:   cfg.DDL.EscapeLiterals,
	}

	if outputDir != "" {
		if err := erdkit.FormatSchema(s, format, &erdkit.OutputOptions{OutputDir: outputDir, DDL: ddlOpts}); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		color.New(color.FgGreen).Fprintf(os.Stderr, "Wrote %d tables to %s\n", len(s.Tables), outputDir)
		return nil
	}

	writer, closeOutput, err := openOutput(outputFile)
	if err != nil {
		return err
	}
	defer closeOutput()

	if err := erdkit.FormatSchema(s, format, &erdkit.OutputOptions{Writer: writer, DDL: ddlOpts}); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
