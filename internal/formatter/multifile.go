package formatter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tordrt/erdkit/internal/ddl"
	"github.com/tordrt/erdkit/internal/mermaid"
	"github.com/tordrt/erdkit/internal/schema"
)

// MultiFileFormatter writes schema to multiple files in a directory:
// an _overview file plus one file per table.
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string // "mermaid", "sql", "markdown" or "text"
	DDLOptions   ddl.Options
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, format string) (*MultiFileFormatter, error) {
	switch format {
	case FormatMermaid, FormatSQL, FormatMarkdown, FormatText:
	default:
		return nil, fmt.Errorf("format %s cannot be split into files (must be mermaid, sql, markdown or text)", format)
	}
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
	}, nil
}

// overviewName is the base name of the overview file
const overviewName = "_overview"

// Format writes the schema to multiple files. Table names become file names,
// so they are checked before anything is written.
func (f *MultiFileFormatter) Format(s *schema.Schema) error {
	if err := checkFileNames(s.Tables); err != nil {
		return err
	}

	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := f.writeFile(overviewName, func(w io.Writer) error { return f.writeOverview(w, s) }); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	for i := range s.Tables {
		table := &s.Tables[i]
		if err := f.writeFile(table.Name, func(w io.Writer) error { return f.writeTable(w, s, table) }); err != nil {
			return fmt.Errorf("failed to write table file for %s: %w", table.Name, err)
		}
	}

	return nil
}

func checkFileNames(tables []schema.Table) error {
	seen := make(map[string]bool)
	for _, table := range tables {
		switch {
		case !schema.IsIdentifier(table.Name):
			return fmt.Errorf("table name %q cannot be used as a file name", table.Name)
		case table.Name == overviewName:
			return fmt.Errorf("table name %q clashes with the overview file", table.Name)
		case seen[table.Name]:
			return fmt.Errorf("duplicate table name %q", table.Name)
		}
		seen[table.Name] = true
	}
	return nil
}

func (f *MultiFileFormatter) writeFile(name string, write func(io.Writer) error) error {
	file, err := os.Create(filepath.Join(f.OutputDir, name+f.getFileExtension()))
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	return write(file)
}

func (f *MultiFileFormatter) writeOverview(w io.Writer, s *schema.Schema) error {
	// Diagram and DDL overviews hold the whole schema
	switch f.OutputFormat {
	case FormatMermaid:
		return NewMermaidFormatter(w).Format(s)
	case FormatSQL:
		return NewSQLFormatter(w, f.DDLOptions).Format(s)
	case FormatMarkdown:
		_, _ = fmt.Fprintf(w, "# Schema Overview\n\n")
		_, _ = fmt.Fprintf(w, "Each table has a corresponding file: `<table_name>%s`\n\n", f.getFileExtension())
		_, _ = fmt.Fprintf(w, "## Tables\n\n")
	default:
		_, _ = fmt.Fprintf(w, "SCHEMA OVERVIEW\n")
		_, _ = fmt.Fprintf(w, "Each table has a file: <table_name>%s\n\n", f.getFileExtension())
	}

	for _, table := range sortedTables(s.Tables) {
		name := table.Name
		if f.OutputFormat == FormatMarkdown {
			name = fmt.Sprintf("- **%s**", table.Name)
		}
		_, _ = fmt.Fprint(w, name)

		if targets := referencedTables(s.Tables, &table); len(targets) > 0 {
			_, _ = fmt.Fprintf(w, " (references: %s)", strings.Join(targets, ", "))
		}
		_, _ = fmt.Fprintln(w)
	}

	return nil
}

func (f *MultiFileFormatter) writeTable(w io.Writer, s *schema.Schema, table *schema.Table) error {
	switch f.OutputFormat {
	case FormatMermaid:
		_, err := io.WriteString(w, mermaid.Serialize(neighbourhood(s.Tables, table)))
		return err
	case FormatSQL:
		_, err := io.WriteString(w, ddl.NewGenerator(f.DDLOptions).GenerateTable(s.Tables, *table))
		return err
	case FormatMarkdown:
		return NewMarkdownFormatter(w).FormatTable(s.Tables, table)
	default:
		return NewTextFormatter(w).formatTable(s.Tables, table)
	}
}

func (f *MultiFileFormatter) getFileExtension() string {
	switch f.OutputFormat {
	case FormatMermaid:
		return ".mmd"
	case FormatSQL:
		return ".sql"
	case FormatMarkdown:
		return ".md"
	default:
		return ".txt"
	}
}

func sortedTables(tables []schema.Table) []schema.Table {
	sorted := make([]schema.Table, len(tables))
	copy(sorted, tables)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}

// referencedTables returns the distinct names of tables the given table
// points at, in column order.
func referencedTables(tables []schema.Table, table *schema.Table) []string {
	var names []string
	seen := make(map[string]bool)

	outgoing, _ := tableReferences(tables, table)
	for _, ref := range outgoing {
		if !seen[ref.TargetTable.Name] {
			seen[ref.TargetTable.Name] = true
			names = append(names, ref.TargetTable.Name)
		}
	}
	return names
}

// neighbourhood returns table together with every table it references or is
// referenced by, in schema order. References between two neighbours are
// removed so the diagram only shows relations touching table.
func neighbourhood(tables []schema.Table, table *schema.Table) []schema.Table {
	related := map[string]bool{table.ID: true}
	outgoing, incoming := tableReferences(tables, table)
	for _, ref := range outgoing {
		related[ref.TargetTable.ID] = true
	}
	for _, ref := range incoming {
		related[ref.Table.ID] = true
	}

	var result []schema.Table
	for _, t := range tables {
		if !related[t.ID] {
			continue
		}

		columns := make([]schema.Column, len(t.Columns))
		copy(columns, t.Columns)
		if t.ID != table.ID {
			for i := range columns {
				if ref := columns[i].ForeignKeyReference; ref != nil && ref.TableID != table.ID {
					columns[i].ForeignKeyReference = nil
				}
			}
		}
		t.Columns = columns
		result = append(result, t)
	}
	return result
}
