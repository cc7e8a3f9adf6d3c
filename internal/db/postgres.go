package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// applicationName tags erdkit sessions in pg_stat_activity unless the
// connection string sets its own.
const applicationName = "erdkit"

// PostgresClient holds the single connection used for catalog queries and
// for applying generated DDL.
type PostgresClient struct {
	conn *pgx.Conn
}

// NewPostgresClient connects and pings the server
func NewPostgresClient(ctx context.Context, connString string) (*PostgresClient, error) {
	cfg, err := pgx.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if cfg.RuntimeParams["application_name"] == "" {
		cfg.RuntimeParams["application_name"] = applicationName
	}

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresClient{conn: conn}, nil
}

func (c *PostgresClient) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

func (c *PostgresClient) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return c.conn.Query(ctx, sql, args...)
}

func (c *PostgresClient) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return c.conn.QueryRow(ctx, sql, args...)
}

// Begin starts a transaction on the connection
func (c *PostgresClient) Begin(ctx context.Context) (pgx.Tx, error) {
	return c.conn.Begin(ctx)
}
