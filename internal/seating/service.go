package seating

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errMissingDatabase = errors.New("database handle is required")
	noOpLogger         = zap.NewNop()
)

// ServiceError wraps persistence failures with a dotted operation code so
// handlers and logs can distinguish failure sites.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

const (
	opServiceNew = "seating.service.new"
	opListTables = "seating.list_tables"
	opReplaceAll = "seating.replace_all"
	opLookupSeat = "seating.lookup_seat"
	opEnsureSeed = "seating.ensure_seed"
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

// ServiceConfig wires the seat directory service dependencies.
type ServiceConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Service owns the persisted seat directory: the table list read by lookup
// and replaced wholesale by admin save.
type Service struct {
	db     *gorm.DB
	clock  func() time.Time
	logger *zap.Logger
}

// NewService validates configuration and constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	return &Service{db: cfg.Database, clock: clock, logger: logger}, nil
}

// ListTables returns every table with its seats ordered by seat number.
// Table order follows identifier order, which has no semantic meaning.
func (s *Service) ListTables(ctx context.Context) ([]Table, error) {
	if s.db == nil {
		return nil, newServiceError(opListTables, "missing_database", errMissingDatabase)
	}

	var tables []Table
	err := s.db.WithContext(ctx).
		Preload("Seats", func(db *gorm.DB) *gorm.DB {
			return db.Order("seat_number ASC")
		}).
		Order("id").
		Find(&tables).Error
	if err != nil {
		s.logError(opListTables, "query_failed", err)
		return nil, newServiceError(opListTables, "query_failed", err)
	}

	if tables == nil {
		tables = []Table{}
	}
	return tables, nil
}

// ReplaceAll persists the supplied table list as the new authoritative
// layout. Prior rows are dropped and re-inserted in one transaction: the
// save contract is whole-document replace, not incremental diff.
func (s *Service) ReplaceAll(ctx context.Context, tables []Table) error {
	if s.db == nil {
		return newServiceError(opReplaceAll, "missing_database", errMissingDatabase)
	}

	for _, table := range tables {
		if _, err := ValidateTableID(table.ID); err != nil {
			s.logError(opReplaceAll, "invalid_table_id", err, zap.String("table_id", table.ID))
			return newServiceError(opReplaceAll, "invalid_table_id", err)
		}
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM banquet_seats").Error; err != nil {
			return newServiceError(opReplaceAll, "clear_seats_failed", err)
		}
		if err := tx.Exec("DELETE FROM banquet_tables").Error; err != nil {
			return newServiceError(opReplaceAll, "clear_tables_failed", err)
		}
		for i := range tables {
			table := tables[i]
			for j := range table.Seats {
				table.Seats[j].TableID = table.ID
			}
			if err := tx.Create(&table).Error; err != nil {
				return newServiceError(opReplaceAll, "insert_failed", err)
			}
		}
		return nil
	})
	if txErr != nil {
		s.logError(opReplaceAll, "transaction_failed", txErr, zap.Int("table_count", len(tables)))
		return txErr
	}

	return nil
}

// LookupSeat loads the current directory snapshot and finds the seat for
// the given attendee name. Returns ErrNameRequired or ErrSeatNotFound
// unchanged so callers can surface the right hint.
func (s *Service) LookupSeat(ctx context.Context, name string) (SeatReference, error) {
	tables, err := s.ListTables(ctx)
	if err != nil {
		return SeatReference{}, newServiceError(opLookupSeat, "snapshot_failed", err)
	}
	return FindSeat(tables, name)
}

// EnsureSeedData inserts the default layout when the directory is empty.
func (s *Service) EnsureSeedData(ctx context.Context) error {
	if s.db == nil {
		return newServiceError(opEnsureSeed, "missing_database", errMissingDatabase)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&Table{}).Count(&count).Error; err != nil {
		s.logError(opEnsureSeed, "count_failed", err)
		return newServiceError(opEnsureSeed, "count_failed", err)
	}
	if count > 0 {
		return nil
	}

	if err := s.ReplaceAll(ctx, DefaultLayout()); err != nil {
		return err
	}
	s.logger.Info("seat directory seeded with default layout")
	return nil
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.logger.Error("seating service error", attrs...)
}
