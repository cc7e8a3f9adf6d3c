package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/erdkit/internal/schema"
)

// TextFormatter formats schema as compact text
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes the schema in compact text format
func (f *TextFormatter) Format(s *schema.Schema) error {
	for i := range s.Tables {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer) // Blank line between tables
		}

		if err := f.formatTable(s.Tables, &s.Tables[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *TextFormatter) formatTable(tables []schema.Table, table *schema.Table) error {
	// Table header with primary key
	pkStr := ""
	if pk := table.PrimaryKeyColumns(); len(pk) > 0 {
		pkStr = fmt.Sprintf(" (PK: %s)", strings.Join(pk, ", "))
	}
	_, _ = fmt.Fprintf(f.writer, "TABLE %s%s\n", table.Name, pkStr)
	if table.Comment != "" {
		_, _ = fmt.Fprintf(f.writer, "  -- %s\n", table.Comment)
	}

	for _, col := range table.Columns {
		_, _ = fmt.Fprintf(f.writer, "  %s\n", f.formatColumn(col))
	}

	outgoing, incoming := tableReferences(tables, table)

	if len(outgoing) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "  REFERENCES:")
		for _, ref := range outgoing {
			_, _ = fmt.Fprintf(f.writer, "    %s → %s.%s\n", ref.Column.Name, ref.TargetTable.Name, ref.TargetColumn.Name)
		}
	}

	if len(incoming) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "  REFERENCED BY:")
		for _, ref := range incoming {
			_, _ = fmt.Fprintf(f.writer, "    %s.%s → %s\n", ref.Table.Name, ref.Column.Name, ref.TargetColumn.Name)
		}
	}

	return nil
}

func (f *TextFormatter) formatColumn(col schema.Column) string {
	parts := []string{col.Name + ":", col.Type}

	if col.IsPrimaryKey {
		parts = append(parts, "PK")
	}
	if col.IsForeignKey {
		parts = append(parts, "FK")
	}
	if col.Comment != "" {
		parts = append(parts, "-- "+col.Comment)
	}

	return strings.Join(parts, " ")
}

// tableReferences splits the resolvable foreign keys touching table into
// those it owns and those pointing at it.
func tableReferences(tables []schema.Table, table *schema.Table) (outgoing, incoming []schema.Reference) {
	for _, ref := range schema.References(tables) {
		if ref.Table.ID == table.ID {
			outgoing = append(outgoing, ref)
		}
		if ref.TargetTable.ID == table.ID {
			incoming = append(incoming, ref)
		}
	}
	return outgoing, incoming
}
