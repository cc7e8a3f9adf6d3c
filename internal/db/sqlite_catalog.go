package db

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

// SQLiteCatalog reads table metadata from a SQLite database.
// SQLite has no comments, so TableComment and column comments are always empty.
type SQLiteCatalog struct {
	client *SQLiteClient
}

// NewSQLiteCatalog creates a new SQLite catalog
func NewSQLiteCatalog(client *SQLiteClient) *SQLiteCatalog {
	return &SQLiteCatalog{
		client: client,
	}
}

// TableNames lists user tables, skipping SQLite's internal ones
func (c *SQLiteCatalog) TableNames(ctx context.Context) ([]string, error) {
	query := `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	rows, err := c.client.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return scanStrings(rows)
}

// TableComment always returns ""
func (c *SQLiteCatalog) TableComment(context.Context, string) (string, error) {
	return "", nil
}

type sqliteColumn struct {
	ColumnInfo
	pk int
}

func (c *SQLiteCatalog) tableInfo(ctx context.Context, table string) ([]sqliteColumn, error) {
	rows, err := c.client.Query(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteSQLite(table)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []sqliteColumn
	for rows.Next() {
		var cid, notNull, pk int
		var name, colType string
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultValue, &pk); err != nil {
			return nil, err
		}

		columns = append(columns, sqliteColumn{
			ColumnInfo: ColumnInfo{Name: name, Type: normalizeSQLiteType(colType)},
			pk:         pk,
		})
	}

	return columns, rows.Err()
}

// Columns returns the columns of a table in declaration order
func (c *SQLiteCatalog) Columns(ctx context.Context, table string) ([]ColumnInfo, error) {
	info, err := c.tableInfo(ctx, table)
	if err != nil {
		return nil, err
	}

	columns := make([]ColumnInfo, len(info))
	for i, col := range info {
		columns[i] = col.ColumnInfo
	}
	return columns, nil
}

// PrimaryKey returns the primary key columns in key order
func (c *SQLiteCatalog) PrimaryKey(ctx context.Context, table string) ([]string, error) {
	info, err := c.tableInfo(ctx, table)
	if err != nil {
		return nil, err
	}

	var keyed []sqliteColumn
	for _, col := range info {
		if col.pk > 0 {
			keyed = append(keyed, col)
		}
	}
	sort.SliceStable(keyed, func(i, j int) bool { return keyed[i].pk < keyed[j].pk })

	var pk []string
	for _, col := range keyed {
		pk = append(pk, col.Name)
	}
	return pk, nil
}

// ForeignKeys returns one entry per foreign key column
func (c *SQLiteCatalog) ForeignKeys(ctx context.Context, table string) ([]ForeignKeyInfo, error) {
	rows, err := c.client.Query(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%s)", quoteSQLite(table)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []ForeignKeyInfo
	for rows.Next() {
		var id, seq int
		var targetTable, fromCol, onUpdate, onDelete, match string
		var toCol sql.NullString // NULL when the key references the primary key implicitly

		if err := rows.Scan(&id, &seq, &targetTable, &fromCol, &toCol, &onUpdate, &onDelete, &match); err != nil {
			return nil, err
		}

		keys = append(keys, ForeignKeyInfo{
			Column:       fromCol,
			TargetTable:  targetTable,
			TargetColumn: toCol.String,
		})
	}

	return keys, rows.Err()
}

// normalizeSQLiteType lower-cases the declared type and reduces it to a single
// diagram token: "UNSIGNED BIG INT" becomes "unsigned_big_int" and
// "DECIMAL(10, 2)" becomes "decimal". Columns declared without a type become
// "blob", SQLite's affinity for them.
func normalizeSQLiteType(declared string) string {
	t := strings.ToLower(strings.TrimSpace(declared))
	if t == "" {
		return "blob"
	}
	if i := strings.Index(t, "("); i > 0 && strings.Contains(t[i:], ",") {
		t = strings.TrimSpace(t[:i])
	}
	return strings.Join(strings.Fields(t), "_")
}

func quoteSQLite(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
