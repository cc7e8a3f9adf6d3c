package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Masterminds/squirrel"
)

// MySQLCatalog reads table metadata from a MySQL database
type MySQLCatalog struct {
	client     *MySQLClient
	schemaName string
	qb         squirrel.StatementBuilderType
}

// NewMySQLCatalog creates a new MySQL catalog
func NewMySQLCatalog(client *MySQLClient, schemaName string) *MySQLCatalog {
	return &MySQLCatalog{
		client:     client,
		schemaName: schemaName,
		qb:         squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

func (c *MySQLCatalog) query(ctx context.Context, b squirrel.Sqlizer) (*sql.Rows, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return c.client.Query(ctx, query, args...)
}

// TableNames lists the base tables of the database
func (c *MySQLCatalog) TableNames(ctx context.Context) ([]string, error) {
	rows, err := c.query(ctx, c.qb.Select("table_name").
		From("information_schema.tables").
		Where(squirrel.Eq{"table_schema": c.schemaName, "table_type": "BASE TABLE"}).
		OrderBy("table_name"))
	if err != nil {
		return nil, err
	}
	return scanStrings(rows)
}

// TableComment returns the table comment, or "" when there is none
func (c *MySQLCatalog) TableComment(ctx context.Context, table string) (string, error) {
	query, args, err := c.qb.Select("COALESCE(table_comment, '')").
		From("information_schema.tables").
		Where(squirrel.Eq{"table_schema": c.schemaName, "table_name": table}).
		ToSql()
	if err != nil {
		return "", err
	}

	var comment string
	err = c.client.QueryRow(ctx, query, args...).Scan(&comment)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return comment, err
}

// Columns returns the columns of a table in ordinal order
func (c *MySQLCatalog) Columns(ctx context.Context, table string) ([]ColumnInfo, error) {
	rows, err := c.query(ctx, c.qb.Select("column_name", "column_type", "data_type", "COALESCE(column_comment, '')").
		From("information_schema.columns").
		Where(squirrel.Eq{"table_schema": c.schemaName, "table_name": table}).
		OrderBy("ordinal_position"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []ColumnInfo
	for rows.Next() {
		var col ColumnInfo
		var columnType, dataType string

		if err := rows.Scan(&col.Name, &columnType, &dataType, &col.Comment); err != nil {
			return nil, err
		}

		col.Type = normalizeMySQLType(columnType, dataType)
		columns = append(columns, col)
	}

	return columns, rows.Err()
}

// PrimaryKey returns the primary key columns in key order
func (c *MySQLCatalog) PrimaryKey(ctx context.Context, table string) ([]string, error) {
	rows, err := c.query(ctx, c.qb.Select("column_name").
		From("information_schema.key_column_usage").
		Where(squirrel.Eq{"table_schema": c.schemaName, "table_name": table, "constraint_name": "PRIMARY"}).
		OrderBy("ordinal_position"))
	if err != nil {
		return nil, err
	}
	return scanStrings(rows)
}

// ForeignKeys returns one entry per foreign key column
func (c *MySQLCatalog) ForeignKeys(ctx context.Context, table string) ([]ForeignKeyInfo, error) {
	rows, err := c.query(ctx, c.qb.Select("column_name", "referenced_table_name", "referenced_column_name").
		From("information_schema.key_column_usage").
		Where(squirrel.Eq{"table_schema": c.schemaName, "table_name": table}).
		Where(squirrel.NotEq{"referenced_table_name": nil}).
		OrderBy("ordinal_position"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []ForeignKeyInfo
	for rows.Next() {
		var fk ForeignKeyInfo
		if err := rows.Scan(&fk.Column, &fk.TargetTable, &fk.TargetColumn); err != nil {
			return nil, err
		}
		keys = append(keys, fk)
	}

	return keys, rows.Err()
}

// normalizeMySQLType keeps the full column type ("varchar(255)") unless it
// cannot be written as a single diagram token, as with "int unsigned" or
// "enum('a','b')".
func normalizeMySQLType(columnType, dataType string) string {
	if strings.ContainsAny(columnType, " ',") {
		return dataType
	}
	return columnType
}

func scanStrings(rows *sql.Rows) ([]string, error) {
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}

	return values, rows.Err()
}
