package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// TxStarter begins a transaction. *pgx.Conn and *pgxpool.Pool satisfy it.
type TxStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Apply executes a DDL script inside a single transaction. Nothing is
// committed unless every statement succeeds.
func Apply(ctx context.Context, conn TxStarter, script string) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Without arguments pgx sends the script over the simple protocol,
	// which accepts multiple statements.
	if _, err := tx.Exec(ctx, script); err != nil {
		return fmt.Errorf("failed to execute DDL: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
