package db

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/vvka-141/credcheck/pkg/credcheck"
)

// ConnAdapter adapts *pgx.Conn to implement the credcheck.DBConnection interface.
// This decouples the validator from pgx-specific types.
//
// Thread-Safety: Not safe for concurrent use (pgx.Conn is not).
type ConnAdapter struct {
	conn    *pgx.Conn
	onClose func()
}

// NewConnAdapter creates a new ConnAdapter wrapping the given connection.
func NewConnAdapter(conn *pgx.Conn) *ConnAdapter {
	return &ConnAdapter{conn: conn}
}

// QueryRow executes sql and collects exactly one row keyed by column name.
func (a *ConnAdapter) QueryRow(ctx context.Context, sql string) (map[string]any, error) {
	rows, err := a.conn.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToMap)
}

// Close terminates the connection and runs any release hook once.
func (a *ConnAdapter) Close(ctx context.Context) error {
	err := a.conn.Close(ctx)
	if a.onClose != nil {
		a.onClose()
		a.onClose = nil
	}
	return err
}

// Verify ConnAdapter implements DBConnection at compile time
var _ credcheck.DBConnection = (*ConnAdapter)(nil)
