package credcheck

import "context"

// Connector is a unified interface for establishing a database connection.
// Different implementations handle various authentication methods
// (standard credentials, cloud IAM tokens, etc.).
type Connector interface {
	// Connect opens a single connection for the given record.
	// The returned connection must be closed by the caller when done.
	Connect(ctx context.Context, record CredentialRecord) (DBConnection, error)
}

// DBConnection abstracts the one connection a check run owns.
// It decouples the validator from pgx-specific types.
type DBConnection interface {
	// QueryRow executes a query expected to return exactly one row and
	// returns it as column name to value.
	QueryRow(ctx context.Context, sql string) (map[string]any, error)

	// Close releases the connection. Safe to call once per connection.
	Close(ctx context.Context) error
}
