package mermaid

import (
	"fmt"
	"strings"

	"github.com/tordrt/erdkit/internal/schema"
)

// oneToMany is the only cardinality the serializer writes
const oneToMany = "||--o{"

// Comments are quoted single-line strings, so quotes and line breaks are
// written as Mermaid entity codes.
var (
	commentEscaper   = strings.NewReplacer(`"`, "#quot;", "\n", "#10;", "\r", "#13;")
	commentUnescaper = strings.NewReplacer("#quot;", `"`, "#10;", "\n", "#13;", "\r")
)

// Serialize renders tables as erDiagram text. Relations are written from
// the referenced table to the owning table, always as one-to-many.
func Serialize(tables []schema.Table) string {
	var b strings.Builder

	b.WriteString("erDiagram\n")

	for _, table := range tables {
		writeTable(&b, table)
	}

	for _, table := range tables {
		for _, col := range table.Columns {
			if line, ok := relationLine(tables, table, col); ok {
				b.WriteString(line)
			}
		}
	}

	return b.String()
}

func writeTable(b *strings.Builder, table schema.Table) {
	fmt.Fprintf(b, "    %s {\n", table.Name)
	for _, col := range table.Columns {
		b.WriteString(columnLine(col))
	}
	b.WriteString("    }\n")
}

func columnLine(col schema.Column) string {
	line := fmt.Sprintf("        %s %s", col.Type, col.Name)
	if col.IsPrimaryKey {
		line += " PK"
	}
	if col.IsForeignKey {
		line += " FK"
	}
	if col.Comment != "" {
		line += fmt.Sprintf(" \"%s\"", commentEscaper.Replace(col.Comment))
	}
	return line + "\n"
}

// relationLine only needs the referenced table; the referenced column id is
// not part of the text format.
func relationLine(tables []schema.Table, owner schema.Table, col schema.Column) (string, bool) {
	if !col.IsForeignKey || col.ForeignKeyReference == nil {
		return "", false
	}
	ref := schema.FindTableByID(tables, col.ForeignKeyReference.TableID)
	if ref == nil {
		return "", false
	}
	return fmt.Sprintf("    %s %s %s : \"%s\"\n", ref.Name, oneToMany, owner.Name, col.Name), true
}
