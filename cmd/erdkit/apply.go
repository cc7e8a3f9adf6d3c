package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tordrt/erdkit"
)

var (
	applyDBURL  string
	applyFrom   string
	applyDryRun bool
	applyEscape bool
	applyStrict bool
)

var applyCmd = &cobra.Command{
	Use:   "apply <file>",
	Short: "Create the tables of a diagram in a PostgreSQL database",
	Long: `Apply generates DDL with all foreign keys after the last CREATE TABLE and
runs it in a single transaction. Nothing is created if any statement fails.`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringVar(&applyDBURL, "db-url", "", "PostgreSQL connection string (default: from database.url_env)")
	applyCmd.Flags().StringVar(&applyFrom, "from", "", "Input format: mermaid, json or yaml (default: by extension)")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Print the DDL instead of executing it")
	applyCmd.Flags().BoolVar(&applyEscape, "escape", true, "Double single quotes inside comment literals")
	applyCmd.Flags().BoolVar(&applyStrict, "strict", true, "Fail on parse warnings")
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	s, warnings, err := readInput(args[0], applyFrom, cfg.IDGenerator())
	if err != nil {
		return err
	}
	if err := reportWarnings(warnings, applyStrict); err != nil {
		return err
	}

	opts := &erdkit.DDLOptions{EscapeLiterals: applyEscape}

	if applyDryRun {
		opts.DeferForeignKeys = true
		fmt.Print(erdkit.GenerateDDL(s.Tables, opts))
		return nil
	}

	url := applyDBURL
	if url == "" {
		url, err = cfg.GetDatabaseURL()
		if err != nil {
			return fmt.Errorf("--db-url not given: %w", err)
		}
	}

	log.Printf("Applying %d tables from %s", len(s.Tables), args[0])

	if _, err := erdkit.ApplySchema(ctx, url, s.Tables, opts); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	color.New(color.FgGreen).Fprintf(os.Stderr, "Applied %d tables\n", len(s.Tables))
	return nil
}
