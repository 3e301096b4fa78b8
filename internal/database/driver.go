package database

import "context"

// Driver defines the read-only operations the dashboard needs from its
// data source. All implementations must be safe for concurrent use.
type Driver interface {
	// Connect establishes a connection to the database.
	Connect(ctx context.Context, dsn string) error

	// Close closes the database connection.
	Close() error

	// Ping checks if the connection is alive.
	Ping(ctx context.Context) error

	// SelectRows returns all columns of up to q.Limit rows.
	SelectRows(ctx context.Context, q RowQuery) ([]*Record, error)

	// CountRows returns the exact number of rows matching q.
	CountRows(ctx context.Context, q CountQuery) (int64, error)

	// DatabaseName returns the name of the connected database.
	DatabaseName() string
}
