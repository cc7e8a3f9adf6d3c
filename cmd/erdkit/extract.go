package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tordrt/erdkit"
)

var (
	dbURL          string
	mysqlURL       string
	sqlitePath     string
	extractOutput  string
	extractDir     string
	extractTables  string
	excludeTables  string
	extractSchema  string
	extractFormat  string
	extractIDs     string
	extractSummary bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Reverse engineer a diagram from a live database",
	Long: `Extract reads tables, columns, primary keys, foreign keys and comments from
PostgreSQL, MySQL or SQLite. Without a database flag the URL is read from the
environment variable named by database.url_env (default DATABASE_URL).`,
	Args: cobra.NoArgs,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&dbURL, "db-url", "", "PostgreSQL connection string")
	extractCmd.Flags().StringVar(&mysqlURL, "mysql-url", "", "MySQL connection string")
	extractCmd.Flags().StringVar(&sqlitePath, "sqlite", "", "SQLite database file path")
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "Output file (default: stdout)")
	extractCmd.Flags().StringVarP(&extractDir, "output-dir", "d", "", "Output directory for multi-file output")
	extractCmd.Flags().StringVarP(&extractTables, "tables", "t", "", "Specific tables (comma-separated, optional)")
	extractCmd.Flags().StringVar(&excludeTables, "exclude", "", "Tables to exclude (comma-separated, optional)")
	extractCmd.Flags().StringVarP(&extractSchema, "schema", "s", "", "Database schema name (default: database.schema for PostgreSQL, database name for MySQL)")
	extractCmd.Flags().StringVarP(&extractFormat, "format", "f", "", "Output format (default: output.format from config)")
	extractCmd.Flags().StringVar(&extractIDs, "ids", "", "Id scheme: sequence or uuid")
	extractCmd.Flags().BoolVar(&extractSummary, "summary", false, "Print a table count summary to stderr")
}

// resolveDatabaseURL turns the database flags into a single URL
func resolveDatabaseURL() (string, error) {
	dbCount := 0
	for _, v := range []string{dbURL, mysqlURL, sqlitePath} {
		if v != "" {
			dbCount++
		}
	}
	if dbCount > 1 {
		return "", fmt.Errorf("only one of --db-url, --mysql-url, or --sqlite can be specified")
	}

	switch {
	case dbURL != "":
		return dbURL, nil
	case mysqlURL != "":
		if strings.HasPrefix(mysqlURL, "mysql://") {
			return mysqlURL, nil
		}
		return "mysql://" + mysqlURL, nil
	case sqlitePath != "":
		return "sqlite://" + sqlitePath, nil
	}

	url, err := cfg.GetDatabaseURL()
	if err != nil {
		return "", fmt.Errorf("one of --db-url, --mysql-url, or --sqlite must be specified: %w", err)
	}
	return url, nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	url, err := resolveDatabaseURL()
	if err != nil {
		return err
	}

	ids, err := idGenerator(cmd, extractIDs)
	if err != nil {
		return err
	}

	schemaName := extractSchema
	if schemaName == "" && (strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")) {
		schemaName = cfg.Database.Schema
	}

	s, err := erdkit.ExtractSchema(ctx, url, &erdkit.Options{
		Tables:        parseTableList(extractTables),
		ExcludeTables: parseTableList(excludeTables),
		SchemaName:    schemaName,
		IDs:           ids,
	})
	if err != nil {
		return err
	}

	reportProblems(os.Stderr, s)

	if extractSummary {
		refs := 0
		for _, table := range s.Tables {
			for _, col := range table.Columns {
				if col.ForeignKeyReference != nil {
					refs++
				}
			}
		}
		color.New(color.FgCyan).Fprintf(os.Stderr, "Extracted %d tables with %d foreign key references\n", len(s.Tables), refs)
	}

	format := extractFormat
	if format == "" {
		format = cfg.Output.Format
	}
	outputDir := extractDir
	if outputDir == "" && extractOutput == "" {
		outputDir = cfg.Output.Dir
	}

	return writeSchema(s, format, extractOutput, outputDir)
}
