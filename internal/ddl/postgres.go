// Package ddl generates PostgreSQL DDL from the ERD model.
package ddl

import (
	"fmt"
	"strings"

	"github.com/tordrt/erdkit/internal/schema"
)

// postgresTypes maps lower-cased diagram types to PostgreSQL types.
// Types not listed are emitted upper-cased as written.
var postgresTypes = map[string]string{
	"varchar":   "VARCHAR(255)",
	"int":       "INTEGER",
	"bigint":    "BIGINT",
	"text":      "TEXT",
	"boolean":   "BOOLEAN",
	"date":      "DATE",
	"datetime":  "TIMESTAMP",
	"timestamp": "TIMESTAMP",
}

// lineComment keeps an inline "--" comment on its column line
var lineComment = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Options configures a Generator
type Options struct {
	// DeferForeignKeys emits every foreign key constraint and its index after
	// all CREATE TABLE statements instead of after the owning table.
	DeferForeignKeys bool

	// EscapeLiterals doubles single quotes inside COMMENT literals.
	EscapeLiterals bool
}

// Generator renders CREATE TABLE, COMMENT and foreign key statements
type Generator struct {
	opts Options
}

// NewGenerator creates a new DDL generator
func NewGenerator(opts Options) *Generator {
	return &Generator{opts: opts}
}

// Generate renders tables with the default options
func Generate(tables []schema.Table) string {
	return NewGenerator(Options{}).Generate(tables)
}

// PostgresType returns the PostgreSQL type for a diagram column type
func PostgresType(columnType string) string {
	if pgType, ok := postgresTypes[strings.ToLower(columnType)]; ok {
		return pgType
	}
	return strings.ToUpper(columnType)
}

// Generate renders one block per table, in input order, separated by blank
// lines. Foreign keys that do not resolve to an existing table and column
// are left out.
func (g *Generator) Generate(tables []schema.Table) string {
	var blocks []string
	var deferred []string

	for _, table := range tables {
		stmts := g.tableStatements(table)

		fks := foreignKeys(tables, table)
		if g.opts.DeferForeignKeys {
			deferred = append(deferred, fks...)
		} else {
			stmts = append(stmts, fks...)
		}

		blocks = append(blocks, strings.Join(stmts, "\n"))
	}

	if len(deferred) > 0 {
		blocks = append(blocks, "-- Foreign keys\n"+strings.Join(deferred, "\n"))
	}

	if len(blocks) == 0 {
		return ""
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

// GenerateTable renders the block of a single table. Foreign keys are
// resolved against tables and always follow the CREATE TABLE statement.
func (g *Generator) GenerateTable(tables []schema.Table, table schema.Table) string {
	stmts := append(g.tableStatements(table), foreignKeys(tables, table)...)
	return strings.Join(stmts, "\n") + "\n"
}

func (g *Generator) tableStatements(table schema.Table) []string {
	return append([]string{g.createTable(table)}, g.comments(table)...)
}

func (g *Generator) createTable(table schema.Table) string {
	var b strings.Builder

	fmt.Fprintf(&b, "-- Table: %s\n", table.Name)
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", quoteIdent(table.Name))

	pk := table.PrimaryKeyColumns()

	for i, col := range table.Columns {
		def := fmt.Sprintf("    %s %s", quoteIdent(col.Name), PostgresType(col.Type))
		if col.IsPrimaryKey {
			def += " NOT NULL"
		}
		// The separator must precede the inline comment
		if i < len(table.Columns)-1 || len(pk) > 0 {
			def += ","
		}
		if col.Comment != "" {
			def += " -- " + lineComment.Replace(col.Comment)
		}
		b.WriteString(def + "\n")
	}

	if len(pk) > 0 {
		quoted := make([]string, len(pk))
		for i, name := range pk {
			quoted[i] = quoteIdent(name)
		}
		fmt.Fprintf(&b, "    PRIMARY KEY (%s)\n", strings.Join(quoted, ", "))
	}

	b.WriteString(");")
	return b.String()
}

func (g *Generator) comments(table schema.Table) []string {
	var stmts []string

	if table.Comment != "" {
		stmts = append(stmts, fmt.Sprintf("COMMENT ON TABLE %s IS %s;", quoteIdent(table.Name), g.literal(table.Comment)))
	}

	for _, col := range table.Columns {
		if col.Comment == "" {
			continue
		}
		stmts = append(stmts, fmt.Sprintf("COMMENT ON COLUMN %s.%s IS %s;",
			quoteIdent(table.Name), quoteIdent(col.Name), g.literal(col.Comment)))
	}

	return stmts
}

func foreignKeys(tables []schema.Table, table schema.Table) []string {
	var stmts []string

	for i := range table.Columns {
		col := &table.Columns[i]
		refTable, refColumn, ok := schema.ResolveReference(tables, col)
		if !ok {
			continue
		}

		stmts = append(stmts,
			fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT fk_%s_%s FOREIGN KEY (%s) REFERENCES %s (%s);",
				quoteIdent(table.Name), table.Name, col.Name, quoteIdent(col.Name),
				quoteIdent(refTable.Name), quoteIdent(refColumn.Name)),
			fmt.Sprintf("CREATE INDEX idx_fk_%s_%s ON %s (%s);",
				table.Name, col.Name, quoteIdent(table.Name), quoteIdent(col.Name)),
		)
	}

	return stmts
}

func (g *Generator) literal(s string) string {
	if g.opts.EscapeLiterals {
		s = strings.ReplaceAll(s, "'", "''")
	}
	return "'" + s + "'"
}

func quoteIdent(name string) string {
	return `"` + name + `"`
}
