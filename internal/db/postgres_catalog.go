package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

// PostgresCatalog reads table metadata from a PostgreSQL schema
type PostgresCatalog struct {
	client *PostgresClient
	schema string
	qb     squirrel.StatementBuilderType
}

// NewPostgresCatalog creates a new PostgreSQL catalog
func NewPostgresCatalog(client *PostgresClient, schemaName string) *PostgresCatalog {
	return &PostgresCatalog{
		client: client,
		schema: schemaName,
		qb:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (c *PostgresCatalog) query(ctx context.Context, b squirrel.Sqlizer) (pgx.Rows, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return c.client.Query(ctx, sql, args...)
}

// TableNames lists the base tables of the schema
func (c *PostgresCatalog) TableNames(ctx context.Context) ([]string, error) {
	rows, err := c.query(ctx, c.qb.Select("table_name").
		From("information_schema.tables").
		Where(squirrel.Eq{"table_schema": c.schema, "table_type": "BASE TABLE"}).
		OrderBy("table_name"))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// TableComment returns the COMMENT ON TABLE text, or "" when there is none
func (c *PostgresCatalog) TableComment(ctx context.Context, table string) (string, error) {
	sql, args, err := c.qb.Select("COALESCE(obj_description(cls.oid, 'pg_class'), '')").
		From("pg_class cls").
		Join("pg_namespace n ON n.oid = cls.relnamespace").
		Where(squirrel.Eq{"n.nspname": c.schema, "cls.relname": table}).
		ToSql()
	if err != nil {
		return "", err
	}

	var comment string
	err = c.client.QueryRow(ctx, sql, args...).Scan(&comment)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return comment, err
}

// Columns returns the columns of a table in ordinal order
func (c *PostgresCatalog) Columns(ctx context.Context, table string) ([]ColumnInfo, error) {
	rows, err := c.query(ctx, c.qb.Select(
		"col.column_name",
		"col.data_type",
		"col.udt_name",
		"col.character_maximum_length",
		"COALESCE(col_description(format('%I.%I', col.table_schema, col.table_name)::regclass, col.ordinal_position::int), '')",
	).
		From("information_schema.columns col").
		Where(squirrel.Eq{"col.table_schema": c.schema, "col.table_name": table}).
		OrderBy("col.ordinal_position"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []ColumnInfo
	for rows.Next() {
		var col ColumnInfo
		var dataType, udtName string
		var charMaxLength *int

		if err := rows.Scan(&col.Name, &dataType, &udtName, &charMaxLength, &col.Comment); err != nil {
			return nil, err
		}

		// One token per type keeps extracted diagrams parseable
		col.Type = normalizePostgresType(dataType, udtName, charMaxLength)
		columns = append(columns, col)
	}

	return columns, rows.Err()
}

// PrimaryKey returns the primary key columns in key order
func (c *PostgresCatalog) PrimaryKey(ctx context.Context, table string) ([]string, error) {
	rows, err := c.query(ctx, c.qb.Select("column_name").
		From("information_schema.key_column_usage").
		Where(squirrel.Eq{"table_schema": c.schema, "table_name": table}).
		Where(squirrel.Expr(`constraint_name IN (
			SELECT constraint_name
			FROM information_schema.table_constraints
			WHERE table_schema = ? AND table_name = ? AND constraint_type = 'PRIMARY KEY'
		)`, c.schema, table)).
		OrderBy("ordinal_position"))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// ForeignKeys returns one entry per foreign key column
func (c *PostgresCatalog) ForeignKeys(ctx context.Context, table string) ([]ForeignKeyInfo, error) {
	rows, err := c.query(ctx, c.qb.Select(
		"kcu.column_name",
		"ccu.table_name AS foreign_table_name",
		"ccu.column_name AS foreign_column_name",
	).
		From("information_schema.table_constraints AS tc").
		Join(`information_schema.key_column_usage AS kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema`).
		Join(`information_schema.constraint_column_usage AS ccu
			ON ccu.constraint_name = tc.constraint_name
			AND ccu.table_schema = tc.table_schema`).
		Where(squirrel.Eq{"tc.constraint_type": "FOREIGN KEY", "tc.table_schema": c.schema, "tc.table_name": table}).
		OrderBy("kcu.ordinal_position"))
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

// pgShortNames replaces information_schema data types that are not a
// single identifier token.
var pgShortNames = map[string]string{
	"timestamp with time zone":    "timestamptz",
	"timestamp without time zone": "timestamp",
	"time with time zone":         "timetz",
	"time without time zone":      "time",
	"character varying":           "varchar",
	"character":                   "char",
}

// pgElementNames spells array element udt names the way data_type does
var pgElementNames = map[string]string{
	"int2":   "smallint",
	"int4":   "integer",
	"int8":   "bigint",
	"float4": "real",
	"bool":   "boolean",
}

// normalizePostgresType reduces a column type to one diagram type token.
// Character types keep their length.
func normalizePostgresType(dataType, udtName string, charMaxLength *int) string {
	switch dataType {
	case "ARRAY":
		// udt_name is the element type prefixed with "_"
		elem := strings.TrimPrefix(udtName, "_")
		if name, ok := pgElementNames[elem]; ok {
			elem = name
		}
		return elem + "[]"
	case "USER-DEFINED":
		return udtName
	}

	short, ok := pgShortNames[dataType]
	if !ok {
		// double precision, bit varying
		if strings.Contains(dataType, " ") {
			return udtName
		}
		return dataType
	}
	if charMaxLength != nil && (short == "varchar" || short == "char") {
		return fmt.Sprintf("%s(%d)", short, *charMaxLength)
	}
	return short
}
