package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/joacominatel/telemetrydash/internal/database"
	"go.uber.org/zap"
)

// RecentWindow is the look-back window of the recent records metric.
const RecentWindow = 24 * time.Hour

// Variant selects between the two dashboard flavours.
type Variant string

const (
	// VariantPlain fetches unordered rows and renders no metric cards.
	VariantPlain Variant = "plain"
	// VariantMetrics orders rows by timestamp and renders metric cards.
	VariantMetrics Variant = "metrics"
)

// Valid reports whether v is a known variant.
func (v Variant) Valid() bool {
	return v == VariantPlain || v == VariantMetrics
}

// Source describes the table the dashboard reads from.
type Source struct {
	Schema          string
	Table           string
	TimestampColumn string
	Limit           uint64
	Variant         Variant
}

// Metrics are the three summary counters. They come from independent
// queries and are not cross-checked.
type Metrics struct {
	TotalRecords   int64
	Columns        int64
	Last24hRecords int64
}

// Snapshot is the result of one successful fetch cycle.
type Snapshot struct {
	ID        uuid.UUID
	Records   []*database.Record
	Columns   []string
	Metrics   *Metrics
	FetchedAt time.Time
}

// Empty reports whether the row query returned no rows.
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Records) == 0
}

// Service coordinates application-level operations between the
// renderers and the database.
type Service struct {
	driver database.Driver
	source Source
	logger *zap.Logger
	now    func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source used for the recent window.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new application service.
func NewService(driver database.Driver, source Source, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !source.Variant.Valid() {
		source.Variant = VariantMetrics
	}
	s := &Service{
		driver: driver,
		source: source,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect establishes a database connection.
func (s *Service) Connect(ctx context.Context, dsn string) error {
	if err := s.driver.Connect(ctx, dsn); err != nil {
		return &ErrConnection{Cause: err}
	}
	return nil
}

// Disconnect closes the database connection.
func (s *Service) Disconnect() error {
	return s.driver.Close()
}

// DatabaseName returns the current database name.
func (s *Service) DatabaseName() string {
	return s.driver.DatabaseName()
}

// Source returns the table description the service reads from.
func (s *Service) Source() Source {
	return s.source
}

// LoadSnapshot runs one fetch cycle: the row query, the exact total
// count and, for the metrics variant, the recent count. The queries run
// one after another and the first failure aborts the cycle.
func (s *Service) LoadSnapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{ID: uuid.New()}
	log := s.logger.With(
		zap.String("cycle", snap.ID.String()),
		zap.String("table", s.source.Table),
		zap.String("variant", string(s.source.Variant)),
	)
	log.Debug("starting fetch cycle")

	rowQuery := database.RowQuery{
		Schema: s.source.Schema,
		Table:  s.source.Table,
		Limit:  s.source.Limit,
	}
	if s.source.Variant == VariantMetrics {
		rowQuery.OrderBy = s.source.TimestampColumn
	}

	records, err := s.driver.SelectRows(ctx, rowQuery)
	if err != nil {
		log.Debug("row query failed", zap.Error(err))
		return nil, &ErrQuery{Stage: StageRows, Cause: err}
	}
	log.Debug("rows received", zap.Int("count", len(records)))

	total, err := s.driver.CountRows(ctx, database.CountQuery{
		Schema: s.source.Schema,
		Table:  s.source.Table,
	})
	if err != nil {
		log.Debug("total count failed", zap.Error(err))
		return nil, &ErrQuery{Stage: StageTotalCount, Cause: err}
	}

	var recent int64
	if s.source.Variant == VariantMetrics {
		recent, err = s.driver.CountRows(ctx, database.CountQuery{
			Schema:      s.source.Schema,
			Table:       s.source.Table,
			SinceColumn: s.source.TimestampColumn,
			Since:       s.now().Add(-RecentWindow),
		})
		if err != nil {
			log.Debug("recent count failed", zap.Error(err))
			return nil, &ErrQuery{Stage: StageRecentCount, Cause: err}
		}
	}

	snap.FetchedAt = s.now()

	if len(records) == 0 {
		log.Debug("no rows found")
		return snap, nil
	}

	snap.Records = records
	snap.Columns = DiscoverColumns(records)
	log.Debug("columns discovered", zap.Strings("columns", snap.Columns))

	if s.source.Variant == VariantMetrics {
		snap.Metrics = &Metrics{
			TotalRecords:   total,
			Columns:        int64(len(snap.Columns)),
			Last24hRecords: recent,
		}
	}

	return snap, nil
}

// DiscoverColumns returns the key list of the first record. The other
// records are assumed to share it.
func DiscoverColumns(records []*database.Record) []string {
	if len(records) == 0 {
		return nil
	}
	return records[0].Keys()
}
