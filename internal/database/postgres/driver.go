package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joacominatel/telemetrydash/internal/database"
)

var errNotConnected = errors.New("not connected")

// Driver implements the database.Driver interface for PostgreSQL.
type Driver struct {
	pool   *pgxpool.Pool
	qb     squirrel.StatementBuilderType
	dbName string
}

// New creates a new PostgreSQL driver.
func New() *Driver {
	return &Driver{qb: newBuilder()}
}

// Connect establishes a connection pool to PostgreSQL.
func (d *Driver) Connect(ctx context.Context, dsn string) error {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("parse dsn: %w", err)
	}

	cfg.MaxConns = 2
	cfg.MinConns = 0

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return err
	}

	d.pool = pool
	d.dbName = cfg.ConnConfig.Database
	return nil
}

// Close closes the connection pool.
func (d *Driver) Close() error {
	if d.pool != nil {
		d.pool.Close()
	}
	return nil
}

// Ping checks if the connection is alive.
func (d *Driver) Ping(ctx context.Context) error {
	if d.pool == nil {
		return errNotConnected
	}
	return d.pool.Ping(ctx)
}

// SelectRows fetches all columns of up to q.Limit rows. Column order
// follows the result set.
func (d *Driver) SelectRows(ctx context.Context, q database.RowQuery) ([]*database.Record, error) {
	if d.pool == nil {
		return nil, errNotConnected
	}

	query, args, err := buildSelectRows(d.qb, q)
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()

	var records []*database.Record
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		rec := database.NewRecord()
		for i, v := range values {
			rec.Set(fields[i].Name, toValue(v))
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// CountRows returns an exact count(*) for the table, optionally
// restricted to rows newer than q.Since.
func (d *Driver) CountRows(ctx context.Context, q database.CountQuery) (int64, error) {
	if d.pool == nil {
		return 0, errNotConnected
	}

	query, args, err := buildCountRows(d.qb, q)
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var count int64
	if err := d.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// DatabaseName returns the name of the connected database.
func (d *Driver) DatabaseName() string {
	return d.dbName
}
