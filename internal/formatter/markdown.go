package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/erdkit/internal/schema"
)

// MarkdownFormatter formats schema as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the schema in markdown format
func (f *MarkdownFormatter) Format(s *schema.Schema) error {
	_, _ = fmt.Fprintln(f.writer, "# Entity Relationship Diagram")
	_, _ = fmt.Fprintln(f.writer)

	for i := range s.Tables {
		if err := f.formatTable(s.Tables, &s.Tables[i]); err != nil {
			return err
		}
	}
	return nil
}

// FormatTable formats a single table (exported for use by multifile formatter).
// tables is the full table list, needed to resolve references.
func (f *MarkdownFormatter) FormatTable(tables []schema.Table, table *schema.Table) error {
	return f.formatTable(tables, table)
}

func (f *MarkdownFormatter) formatTable(tables []schema.Table, table *schema.Table) error {
	_, _ = fmt.Fprintf(f.writer, "## %s\n\n", table.Name)
	if table.Comment != "" {
		_, _ = fmt.Fprintf(f.writer, "%s\n\n", table.Comment)
	}

	_, _ = fmt.Fprintln(f.writer, "### Columns")
	_, _ = fmt.Fprintln(f.writer)

	for _, col := range table.Columns {
		line := fmt.Sprintf("- **%s:** %s", col.Name, col.Type)
		if constraintStr := f.formatConstraints(col); constraintStr != "" {
			line += ", " + constraintStr
		}
		if col.Comment != "" {
			line += fmt.Sprintf(" (%s)", col.Comment)
		}
		_, _ = fmt.Fprintln(f.writer, line)
	}
	_, _ = fmt.Fprintln(f.writer)

	outgoing, incoming := tableReferences(tables, table)

	if len(outgoing) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### References")
		_, _ = fmt.Fprintln(f.writer)
		for _, ref := range outgoing {
			_, _ = fmt.Fprintf(f.writer, "- %s → %s.%s\n",
				ref.Column.Name,
				ref.TargetTable.Name,
				ref.TargetColumn.Name)
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	if len(incoming) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### Referenced By")
		_, _ = fmt.Fprintln(f.writer)
		for _, ref := range incoming {
			_, _ = fmt.Fprintf(f.writer, "- %s.%s → %s\n",
				ref.Table.Name,
				ref.Column.Name,
				ref.TargetColumn.Name)
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	return nil
}

func (f *MarkdownFormatter) formatConstraints(col schema.Column) string {
	var constraints []string

	if col.IsPrimaryKey {
		constraints = append(constraints, "PK")
	}
	if col.IsForeignKey {
		constraints = append(constraints, "FK")
	}

	return strings.Join(constraints, ", ")
}
