package schema

// Schema represents a complete entity-relationship diagram.
// It is also the exchange shape for JSON/YAML documents: {"tables": [...]}.
type Schema struct {
	Tables []Table `json:"tables" yaml:"tables"`
}

// Table represents an entity in the diagram
type Table struct {
	ID      string   `json:"id" yaml:"id"`
	Name    string   `json:"name" yaml:"name"`
	Columns []Column `json:"columns" yaml:"columns"`
	Comment string   `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// Column represents a table column.
// IsForeignKey may be set without ForeignKeyReference when the referenced
// table or column could not be resolved.
type Column struct {
	ID                  string               `json:"id" yaml:"id"`
	Name                string               `json:"name" yaml:"name"`
	Type                string               `json:"type" yaml:"type"`
	IsPrimaryKey        bool                 `json:"isPrimaryKey" yaml:"isPrimaryKey"`
	IsForeignKey        bool                 `json:"isForeignKey" yaml:"isForeignKey"`
	Comment             string               `json:"comment" yaml:"comment"`
	ForeignKeyReference *ForeignKeyReference `json:"foreignKeyReference,omitempty" yaml:"foreignKeyReference,omitempty"`
}

// ForeignKeyReference points at a column of another table by id
type ForeignKeyReference struct {
	TableID  string `json:"tableId" yaml:"tableId"`
	ColumnID string `json:"columnId" yaml:"columnId"`
}

// TableByID returns the first table with the given id, or nil
func (s *Schema) TableByID(id string) *Table {
	return FindTableByID(s.Tables, id)
}

// TableByName returns the first table with the given name, or nil
func (s *Schema) TableByName(name string) *Table {
	return FindTableByName(s.Tables, name)
}

// FindTableByID looks up a table by id in a table list
func FindTableByID(tables []Table, id string) *Table {
	for i := range tables {
		if tables[i].ID == id {
			return &tables[i]
		}
	}
	return nil
}

// FindTableByName looks up a table by name in a table list
func FindTableByName(tables []Table, name string) *Table {
	for i := range tables {
		if tables[i].Name == name {
			return &tables[i]
		}
	}
	return nil
}

// ColumnByID returns the first column with the given id, or nil
func (t *Table) ColumnByID(id string) *Column {
	for i := range t.Columns {
		if t.Columns[i].ID == id {
			return &t.Columns[i]
		}
	}
	return nil
}

// ColumnByName returns the first column with the given name, or nil
func (t *Table) ColumnByName(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// PrimaryKeyColumns returns the names of all primary key columns in table order
func (t *Table) PrimaryKeyColumns() []string {
	var pk []string
	for _, col := range t.Columns {
		if col.IsPrimaryKey {
			pk = append(pk, col.Name)
		}
	}
	return pk
}

// Reference is a resolved foreign key: the owning column and the column it points at.
type Reference struct {
	Table        *Table
	Column       *Column
	TargetTable  *Table
	TargetColumn *Column
}

// ResolveReference resolves a column's foreign key against a table list.
// ok is false when the column is not flagged as a foreign key, has no
// reference, or the referenced table or column does not exist.
func ResolveReference(tables []Table, col *Column) (targetTable *Table, targetColumn *Column, ok bool) {
	if !col.IsForeignKey || col.ForeignKeyReference == nil {
		return nil, nil, false
	}
	targetTable = FindTableByID(tables, col.ForeignKeyReference.TableID)
	if targetTable == nil {
		return nil, nil, false
	}
	targetColumn = targetTable.ColumnByID(col.ForeignKeyReference.ColumnID)
	if targetColumn == nil {
		return nil, nil, false
	}
	return targetTable, targetColumn, true
}

// References lists every resolvable foreign key in the table list, in table
// and column order.
func References(tables []Table) []Reference {
	var refs []Reference
	for i := range tables {
		for j := range tables[i].Columns {
			col := &tables[i].Columns[j]
			targetTable, targetColumn, ok := ResolveReference(tables, col)
			if !ok {
				continue
			}
			refs = append(refs, Reference{
				Table:        &tables[i],
				Column:       col,
				TargetTable:  targetTable,
				TargetColumn: targetColumn,
			})
		}
	}
	return refs
}
