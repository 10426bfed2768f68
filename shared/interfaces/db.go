package interfaces

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so repository methods
// can run either standalone or inside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxManager runs a unit of work in a single database transaction.
type TxManager interface {
	// WithTransaction commits when fn returns nil and rolls back otherwise
	// (including on panic, which is re-raised).
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}
