package schema

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	identifierRe = regexp.MustCompile(`^\w+$`)

	// typeTokenRe is the column type token an erDiagram line can carry
	typeTokenRe = regexp.MustCompile(`^[A-Za-z_][\w\-\[\]()]*$`)
)

// entityCodes are decoded from diagram comments, so literal occurrences do
// not survive a round trip.
var entityCodes = []string{"#quot;", "#10;", "#13;"}

// IsIdentifier reports whether name is usable as a diagram table or column
// name.
func IsIdentifier(name string) bool {
	return identifierRe.MatchString(name)
}

// Warning describes a soft invariant violation. Table and Column are names
// and may be empty when the warning concerns the schema as a whole.
type Warning struct {
	Table   string
	Column  string
	Message string
}

func (w Warning) String() string {
	switch {
	case w.Table != "" && w.Column != "":
		return fmt.Sprintf("%s.%s: %s", w.Table, w.Column, w.Message)
	case w.Table != "":
		return fmt.Sprintf("%s: %s", w.Table, w.Message)
	default:
		return w.Message
	}
}

// Validate checks the invariants the parser, serializer and DDL generator
// rely on. It never modifies the schema and reports every problem it finds.
func Validate(s *Schema) []Warning {
	var warnings []Warning

	tableIDs := make(map[string]bool)
	tableNames := make(map[string]bool)

	for _, table := range s.Tables {
		if tableIDs[table.ID] {
			warnings = append(warnings, Warning{Table: table.Name, Message: fmt.Sprintf("duplicate table id %q", table.ID)})
		}
		tableIDs[table.ID] = true

		if tableNames[table.Name] {
			warnings = append(warnings, Warning{Table: table.Name, Message: "duplicate table name"})
		}
		tableNames[table.Name] = true

		if !IsIdentifier(table.Name) {
			warnings = append(warnings, Warning{Table: table.Name, Message: fmt.Sprintf("table name %q is not an identifier", table.Name)})
		}

		if strings.Contains(table.Comment, "'") {
			warnings = append(warnings, Warning{Table: table.Name, Message: "comment contains a single quote and is not escaped in DDL"})
		}

		warnings = append(warnings, validateColumns(s.Tables, table)...)
	}

	return warnings
}

func validateColumns(tables []Table, table Table) []Warning {
	var warnings []Warning
	columnIDs := make(map[string]bool)

	for i := range table.Columns {
		col := &table.Columns[i]

		if columnIDs[col.ID] {
			warnings = append(warnings, Warning{Table: table.Name, Column: col.Name, Message: fmt.Sprintf("duplicate column id %q", col.ID)})
		}
		columnIDs[col.ID] = true

		if !IsIdentifier(col.Name) {
			warnings = append(warnings, Warning{Table: table.Name, Column: col.Name, Message: fmt.Sprintf("column name %q is not an identifier", col.Name)})
		}

		if strings.TrimSpace(col.Type) == "" {
			warnings = append(warnings, Warning{Table: table.Name, Column: col.Name, Message: "column has no type"})
		} else if !typeTokenRe.MatchString(col.Type) {
			warnings = append(warnings, Warning{Table: table.Name, Column: col.Name, Message: fmt.Sprintf("type %q is not a single diagram token", col.Type)})
		}

		for _, code := range entityCodes {
			if strings.Contains(col.Comment, code) {
				warnings = append(warnings, Warning{Table: table.Name, Column: col.Name, Message: fmt.Sprintf("comment contains %s and changes on a diagram round trip", code)})
				break
			}
		}

		if strings.Contains(col.Comment, "'") {
			warnings = append(warnings, Warning{Table: table.Name, Column: col.Name, Message: "comment contains a single quote and is not escaped in DDL"})
		}

		if col.ForeignKeyReference == nil {
			if col.IsForeignKey {
				warnings = append(warnings, Warning{Table: table.Name, Column: col.Name, Message: "flagged as foreign key without a reference"})
			}
			continue
		}

		ref := col.ForeignKeyReference
		target := FindTableByID(tables, ref.TableID)
		switch {
		case target == nil:
			warnings = append(warnings, Warning{Table: table.Name, Column: col.Name, Message: fmt.Sprintf("references unknown table id %q", ref.TableID)})
		case target.ColumnByID(ref.ColumnID) == nil:
			warnings = append(warnings, Warning{Table: table.Name, Column: col.Name, Message: fmt.Sprintf("references unknown column id %q in table %s", ref.ColumnID, target.Name)})
		}

		if !col.IsForeignKey {
			warnings = append(warnings, Warning{Table: table.Name, Column: col.Name, Message: "has a reference but is not flagged as foreign key"})
		}
	}

	return warnings
}
