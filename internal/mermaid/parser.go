// Package mermaid converts between Mermaid erDiagram text and the ERD model.
//
// Parsing is best-effort: lines that match no known pattern are skipped and
// relations that cannot be resolved are dropped. Nothing in this package
// returns an error.
package mermaid

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tordrt/erdkit/internal/schema"
)

// idColumn is the column a relation's source table is assumed to be
// referenced by. Relation lines carry only the owning column's name.
const idColumn = "id"

var (
	tableStartRe = regexp.MustCompile(`^\w+\s*\{$`)
	columnRe     = regexp.MustCompile(`^([A-Za-z_][\w\-\[\]()]*)\s+(\w+)(?:\s+(PK|FK|PK(?:\s*,\s*|\s+)FK|FK(?:\s*,\s*|\s+)PK))?(?:\s+"([^"]*)")?$`)
	relationRe   = regexp.MustCompile(`^(\w+)\s+(\|\|--o\{|\|\|--\||o\|\|--\||o\|\|--o\{)\s+(\w+)\s*:\s*"([^"]+)"$`)
)

// Relation is a relationship line as it appeared in the text, before
// resolution against the parsed tables.
type Relation struct {
	SourceTable  string
	TargetTable  string
	SourceColumn string
	TargetColumn string
	RelationType string
	Line         int
}

// Warning reports input the parser skipped or could not resolve
type Warning struct {
	Line    int
	Message string
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("line %d: %s", w.Line, w.Message)
	}
	return w.Message
}

// Result is the outcome of a parse
type Result struct {
	Tables    []schema.Table
	Relations []Relation
	Warnings  []Warning
}

// Options configures a Parser
type Options struct {
	// IDs assigns table and column ids. Defaults to schema.SequentialIDs.
	IDs schema.IDGenerator
}

// Parser turns erDiagram text into tables
type Parser struct {
	ids schema.IDGenerator
}

// NewParser creates a new parser
func NewParser(opts Options) *Parser {
	ids := opts.IDs
	if ids == nil {
		ids = schema.SequentialIDs{}
	}
	return &Parser{ids: ids}
}

// Parse converts erDiagram text into tables with sequential ids.
// It never fails; the result may be empty.
func Parse(text string) []schema.Table {
	return NewParser(Options{}).Parse(text).Tables
}

// Parse scans the text line by line and resolves relations afterwards
func (p *Parser) Parse(text string) Result {
	var res Result
	var current *schema.Table
	currentStart := 0

	for i, line := range strings.Split(text, "\n") {
		lineNo := i + 1
		trimmed := strings.TrimSpace(line)

		if tableStartRe.MatchString(trimmed) {
			if current != nil {
				res.Warnings = append(res.Warnings, Warning{
					Line:    currentStart,
					Message: fmt.Sprintf("table %s was never closed and is discarded", current.Name),
				})
			}
			current = &schema.Table{
				ID:      p.ids.TableID(len(res.Tables)),
				Name:    strings.TrimSpace(strings.Split(trimmed, "{")[0]),
				Columns: []schema.Column{},
			}
			currentStart = lineNo
			continue
		}

		if trimmed == "}" {
			if current != nil {
				res.Tables = append(res.Tables, *current)
				current = nil
			}
			continue
		}

		if current != nil && trimmed != "" {
			if col, ok := p.parseColumn(trimmed, len(res.Tables), len(current.Columns)); ok {
				current.Columns = append(current.Columns, col)
				continue
			}
		}

		if rel, ok := parseRelation(trimmed); ok {
			rel.Line = lineNo
			res.Relations = append(res.Relations, rel)
			continue
		}

		if current != nil && trimmed != "" {
			res.Warnings = append(res.Warnings, Warning{
				Line:    lineNo,
				Message: fmt.Sprintf("unrecognized line in table %s skipped", current.Name),
			})
		}
	}

	if current != nil {
		res.Warnings = append(res.Warnings, Warning{
			Line:    currentStart,
			Message: fmt.Sprintf("table %s was never closed and is discarded", current.Name),
		})
	}

	res.Warnings = append(res.Warnings, resolveRelations(res.Tables, res.Relations)...)
	return res
}

func (p *Parser) parseColumn(line string, tableIndex, columnIndex int) (schema.Column, bool) {
	m := columnRe.FindStringSubmatch(line)
	if m == nil {
		return schema.Column{}, false
	}

	keys := m[3]
	return schema.Column{
		ID:           p.ids.ColumnID(tableIndex, columnIndex),
		Type:         m[1],
		Name:         m[2],
		IsPrimaryKey: strings.Contains(keys, "PK"),
		IsForeignKey: strings.Contains(keys, "FK"),
		Comment:      commentUnescaper.Replace(m[4]),
	}, true
}

func parseRelation(line string) (Relation, bool) {
	m := relationRe.FindStringSubmatch(line)
	if m == nil {
		return Relation{}, false
	}

	return Relation{
		SourceTable:  m[1],
		RelationType: m[2],
		TargetTable:  m[3],
		SourceColumn: idColumn,
		TargetColumn: m[4],
	}, true
}

// resolveRelations attaches a foreign key reference to the target column of
// every relation whose tables and column exist. Lookups are by name; the
// stored reference holds ids only.
func resolveRelations(tables []schema.Table, relations []Relation) []Warning {
	var warnings []Warning

	for _, rel := range relations {
		source := schema.FindTableByName(tables, rel.SourceTable)
		target := schema.FindTableByName(tables, rel.TargetTable)

		if source == nil || target == nil {
			missing := rel.SourceTable
			if source != nil {
				missing = rel.TargetTable
			}
			warnings = append(warnings, Warning{
				Line:    rel.Line,
				Message: fmt.Sprintf("relation dropped: unknown table %s", missing),
			})
			continue
		}

		targetColumn := target.ColumnByName(rel.TargetColumn)
		if targetColumn == nil {
			warnings = append(warnings, Warning{
				Line:    rel.Line,
				Message: fmt.Sprintf("relation dropped: table %s has no column %s", target.Name, rel.TargetColumn),
			})
			continue
		}

		columnID := ""
		if sourceColumn := source.ColumnByName(rel.SourceColumn); sourceColumn != nil {
			columnID = sourceColumn.ID
		} else {
			warnings = append(warnings, Warning{
				Line:    rel.Line,
				Message: fmt.Sprintf("table %s has no %s column; reference left without a column", source.Name, rel.SourceColumn),
			})
		}

		targetColumn.ForeignKeyReference = &schema.ForeignKeyReference{
			TableID:  source.ID,
			ColumnID: columnID,
		}
	}

	return warnings
}
