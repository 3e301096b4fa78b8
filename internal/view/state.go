// Package view holds the dashboard view state shared by the terminal and
// HTML renderers. A view is activated once and runs one fetch cycle.
package view

import (
	"errors"
	"time"

	"github.com/joacominatel/telemetrydash/internal/app"
	"github.com/joacominatel/telemetrydash/internal/database"
)

// Display strings shared by all renderers.
const (
	Title         = "Telemetry Dashboard"
	LoadingText   = "Loading..."
	EmptyText     = "No data found"
	FallbackError = "failed to load data"
	Placeholder   = "-"
)

// Phase is the lifecycle phase of a view.
type Phase int

const (
	PhaseConstructed Phase = iota
	PhaseActive
)

// Kind is the render selected for the current state.
type Kind int

const (
	KindNotReady Kind = iota
	KindLoading
	KindError
	KindEmpty
	KindPopulated
)

func (k Kind) String() string {
	switch k {
	case KindNotReady:
		return "not-ready"
	case KindLoading:
		return "loading"
	case KindError:
		return "error"
	case KindEmpty:
		return "empty"
	case KindPopulated:
		return "populated"
	default:
		return "unknown"
	}
}

// State is the view state of one dashboard instance. Only its owner
// mutates it.
type State struct {
	variant   app.Variant
	phase     Phase
	loading   bool
	err       string
	records   []*database.Record
	columns   []string
	metrics   *app.Metrics
	fetchedAt time.Time
}

// NewState creates a view in the constructed phase.
func NewState(variant app.Variant) *State {
	if !variant.Valid() {
		variant = app.VariantMetrics
	}
	return &State{variant: variant, loading: true}
}

// Activate moves the view to the active phase. It returns false if the
// view was already active, in which case no fetch must be started.
func (s *State) Activate() bool {
	if s.phase == PhaseActive {
		return false
	}
	s.phase = PhaseActive
	s.loading = true
	return true
}

// Resolve applies the outcome of the fetch cycle. A failure discards
// everything else. It returns false if the view is not waiting for a
// result.
func (s *State) Resolve(snap *app.Snapshot, err error) bool {
	if s.phase != PhaseActive || !s.loading {
		return false
	}
	s.loading = false

	if err != nil {
		s.err = ErrorMessage(err)
		s.records, s.columns, s.metrics = nil, nil, nil
		return true
	}

	if snap.Empty() {
		return true
	}

	s.records = snap.Records
	s.columns = snap.Columns
	s.fetchedAt = snap.FetchedAt
	if s.variant == app.VariantMetrics {
		s.metrics = snap.Metrics
	}
	return true
}

// Kind evaluates the render precedence:
// not ready, loading, error, empty, populated.
func (s *State) Kind() Kind {
	switch {
	case s.phase != PhaseActive:
		return KindNotReady
	case s.loading:
		return KindLoading
	case s.err != "":
		return KindError
	case len(s.records) == 0:
		return KindEmpty
	default:
		return KindPopulated
	}
}

// Phase returns the lifecycle phase.
func (s *State) Phase() Phase {
	return s.phase
}

// Variant returns the dashboard variant the view renders.
func (s *State) Variant() app.Variant {
	return s.variant
}

// Err returns the display message of a failed fetch cycle, or "".
func (s *State) Err() string {
	return s.err
}

// Columns returns the column list discovered from the first record.
func (s *State) Columns() []string {
	return s.columns
}

// Records returns the fetched records in source order.
func (s *State) Records() []*database.Record {
	return s.records
}

// FetchedAt returns when the fetch cycle completed.
func (s *State) FetchedAt() time.Time {
	return s.fetchedAt
}

// Metrics returns the metric cards to show, or nil when none apply.
func (s *State) Metrics() *app.Metrics {
	if s.Kind() != KindPopulated {
		return nil
	}
	return s.metrics
}

// Cell renders one value for display.
func (s *State) Cell(rec *database.Record, column string) string {
	v, _ := rec.Get(column)
	if v.IsNull() && s.variant == app.VariantMetrics {
		return Placeholder
	}
	return v.String()
}

// Rows projects the records onto the discovered column list.
func (s *State) Rows() [][]string {
	rows := make([][]string, len(s.records))
	for i, rec := range s.records {
		row := make([]string, len(s.columns))
		for j, col := range s.columns {
			row[j] = s.Cell(rec, col)
		}
		rows[i] = row
	}
	return rows
}

// ErrorMessage collapses any failure into its display string: the
// failure's own message, without the stage the service tagged it with.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var qe *app.ErrQuery
	if errors.As(err, &qe) && qe.Cause != nil {
		err = qe.Cause
	}
	var ce *app.ErrConnection
	if errors.As(err, &ce) && ce.Cause != nil {
		err = ce.Cause
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return FallbackError
}
