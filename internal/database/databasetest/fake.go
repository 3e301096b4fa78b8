// Package databasetest provides an in-memory database.Driver for tests.
package databasetest

import (
	"context"
	"sync"

	"github.com/joacominatel/telemetrydash/internal/database"
)

// Driver is a scripted database.Driver. Calls are recorded in order.
type Driver struct {
	mu sync.Mutex

	Records      []*database.Record
	Total        int64
	Recent       int64
	ConnectErr   error
	SelectErr    error
	CountErr     error
	RecentErr    error
	Name         string
	calls        []string
	rowQueries   []database.RowQuery
	countQueries []database.CountQuery
}

// Record builds a record from alternating key/value pairs.
func Record(pairs ...any) *database.Record {
	r := database.NewRecord()
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Set(pairs[i].(string), pairs[i+1].(database.Value))
	}
	return r
}

func (d *Driver) record(call string) {
	d.mu.Lock()
	d.calls = append(d.calls, call)
	d.mu.Unlock()
}

// Calls returns the names of the operations invoked so far.
func (d *Driver) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.calls))
	copy(out, d.calls)
	return out
}

// RowQueries returns the row queries received.
func (d *Driver) RowQueries() []database.RowQuery {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]database.RowQuery(nil), d.rowQueries...)
}

// CountQueries returns the count queries received.
func (d *Driver) CountQueries() []database.CountQuery {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]database.CountQuery(nil), d.countQueries...)
}

func (d *Driver) Connect(_ context.Context, _ string) error {
	d.record("connect")
	return d.ConnectErr
}

func (d *Driver) Close() error {
	d.record("close")
	return nil
}

func (d *Driver) Ping(_ context.Context) error {
	d.record("ping")
	return nil
}

func (d *Driver) SelectRows(_ context.Context, q database.RowQuery) ([]*database.Record, error) {
	d.record("select")
	d.mu.Lock()
	d.rowQueries = append(d.rowQueries, q)
	d.mu.Unlock()
	if d.SelectErr != nil {
		return nil, d.SelectErr
	}
	return d.Records, nil
}

func (d *Driver) CountRows(_ context.Context, q database.CountQuery) (int64, error) {
	d.mu.Lock()
	d.countQueries = append(d.countQueries, q)
	d.mu.Unlock()
	if q.Filtered() {
		d.record("count recent")
		return d.Recent, d.RecentErr
	}
	d.record("count")
	return d.Total, d.CountErr
}

func (d *Driver) DatabaseName() string {
	if d.Name == "" {
		return "postgres"
	}
	return d.Name
}

// Scenario returns a driver loaded with the reference telemetry row:
// one record, 42 rows in total, 5 in the last day.
func Scenario() *Driver {
	return &Driver{
		Records: []*database.Record{
			Record(
				"id", database.Int(1),
				"data_hora", database.String("2024-01-01T00:00:00Z"),
				"status", database.String("ok"),
			),
		},
		Total:  42,
		Recent: 5,
	}
}
