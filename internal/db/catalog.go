// Package db reads table definitions from live databases into the ERD model
// and applies generated DDL to PostgreSQL.
package db

import (
	"context"
	"fmt"

	"github.com/tordrt/erdkit/internal/schema"
)

// ColumnInfo is a column as reported by a database catalog
type ColumnInfo struct {
	Name    string
	Type    string
	Comment string
}

// ForeignKeyInfo is one column of a foreign key constraint. TargetColumn may
// be empty when the database leaves it implicit; the target's primary key is
// used then.
type ForeignKeyInfo struct {
	Column       string
	TargetTable  string
	TargetColumn string
}

// Catalog exposes the table metadata of one database schema
type Catalog interface {
	TableNames(ctx context.Context) ([]string, error)
	TableComment(ctx context.Context, table string) (string, error)
	Columns(ctx context.Context, table string) ([]ColumnInfo, error)
	PrimaryKey(ctx context.Context, table string) ([]string, error)
	ForeignKeys(ctx context.Context, table string) ([]ForeignKeyInfo, error)
}

type pendingKey struct {
	table  int
	column int
	fk     ForeignKeyInfo
}

// Extract builds the ERD model for the specified tables.
// If tables is empty, every table the catalog lists is extracted.
// Foreign keys are resolved to ids once all tables are read; keys pointing
// outside the extracted set stay flagged without a reference.
func Extract(ctx context.Context, catalog Catalog, tables []string, ids schema.IDGenerator) (*schema.Schema, error) {
	if ids == nil {
		ids = schema.SequentialIDs{}
	}

	tableNames, err := getTableNames(ctx, catalog, tables)
	if err != nil {
		return nil, fmt.Errorf("failed to get table names: %w", err)
	}

	extracted := make([]schema.Table, 0, len(tableNames))
	var pending []pendingKey

	for i, tableName := range tableNames {
		table, keys, err := extractTable(ctx, catalog, tableName, i, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to extract table %s: %w", tableName, err)
		}
		extracted = append(extracted, *table)
		pending = append(pending, keys...)
	}

	for _, key := range pending {
		resolveForeignKey(extracted, key)
	}

	return &schema.Schema{Tables: extracted}, nil
}

// getTableNames returns the list of tables to extract
func getTableNames(ctx context.Context, catalog Catalog, requestedTables []string) ([]string, error) {
	if len(requestedTables) > 0 {
		return requestedTables, nil
	}
	return catalog.TableNames(ctx)
}

// extractTable extracts all information for a single table
func extractTable(ctx context.Context, catalog Catalog, tableName string, index int, ids schema.IDGenerator) (*schema.Table, []pendingKey, error) {
	table := &schema.Table{
		ID:      ids.TableID(index),
		Name:    tableName,
		Columns: []schema.Column{},
	}

	comment, err := catalog.TableComment(ctx, tableName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to extract table comment: %w", err)
	}
	table.Comment = comment

	columns, err := catalog.Columns(ctx, tableName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to extract columns: %w", err)
	}

	pk, err := catalog.PrimaryKey(ctx, tableName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to extract primary key: %w", err)
	}

	fks, err := catalog.ForeignKeys(ctx, tableName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to extract foreign keys: %w", err)
	}

	pkSet := make(map[string]bool, len(pk))
	for _, name := range pk {
		pkSet[name] = true
	}

	for j, info := range columns {
		table.Columns = append(table.Columns, schema.Column{
			ID:           ids.ColumnID(index, j),
			Name:         info.Name,
			Type:         info.Type,
			IsPrimaryKey: pkSet[info.Name],
			Comment:      info.Comment,
		})
	}

	var keys []pendingKey
	for _, fk := range fks {
		for j := range table.Columns {
			if table.Columns[j].Name == fk.Column {
				table.Columns[j].IsForeignKey = true
				keys = append(keys, pendingKey{table: index, column: j, fk: fk})
				break
			}
		}
	}

	return table, keys, nil
}

func resolveForeignKey(tables []schema.Table, key pendingKey) {
	target := schema.FindTableByName(tables, key.fk.TargetTable)
	if target == nil {
		return
	}

	targetColumn := key.fk.TargetColumn
	if targetColumn == "" {
		pk := target.PrimaryKeyColumns()
		if len(pk) == 0 {
			return
		}
		targetColumn = pk[0]
	}

	col := target.ColumnByName(targetColumn)
	if col == nil {
		return
	}

	tables[key.table].Columns[key.column].ForeignKeyReference = &schema.ForeignKeyReference{
		TableID:  target.ID,
		ColumnID: col.ID,
	}
}
