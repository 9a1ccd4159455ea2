package core

import (
	"context"
	"errors"
	"time"

	"github.com/JonMunkholm/catalog/internal/export"
)

// PageSize is the fixed number of products per catalog page.
const PageSize = 10

// Default limits used when ServiceConfig leaves a value at zero.
const (
	DefaultImportTimeout = 2 * time.Minute
	DefaultMaxRecords    = 50000
)

// Bounds on the number of import batches RecentImports returns.
const (
	DefaultRecentImports = 10
	MaxRecentImports     = 100
)

var (
	// ErrInvalidFormat is returned for an export format other than csv, xlsx or json.
	ErrInvalidFormat = export.ErrUnsupportedFormat

	ErrInvalidCategory = errors.New("invalid category id")
	ErrNoRecords       = errors.New("no records provided")
	ErrTooManyRecords  = errors.New("too many records")
	ErrNoValidRecords  = errors.New("no valid records")
	ErrPageOutOfRange  = errors.New("page out of range")
	ErrMalformedBody   = errors.New("malformed request body")
)

// ServiceConfig holds the service's tunables. Zero values select defaults.
type ServiceConfig struct {
	MaxConcurrentImports int
	MaxImportWait        time.Duration
	ImportTimeout        time.Duration
	MaxRecords           int
}

// Service provides the catalog business logic: listing, exporting and
// importing products.
type Service struct {
	store     Store
	limiter   *ImportLimiter
	validator *RecordValidator

	importTimeout time.Duration
	maxRecords    int
}

// NewService creates a Service over store.
func NewService(store Store, cfg ServiceConfig) *Service {
	if cfg.ImportTimeout <= 0 {
		cfg.ImportTimeout = DefaultImportTimeout
	}
	if cfg.MaxRecords <= 0 {
		cfg.MaxRecords = DefaultMaxRecords
	}

	return &Service{
		store:         store,
		limiter:       NewImportLimiter(cfg.MaxConcurrentImports, cfg.MaxImportWait),
		validator:     NewRecordValidator(),
		importTimeout: cfg.ImportTimeout,
		maxRecords:    cfg.MaxRecords,
	}
}

// Ping verifies the database is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// LimiterStatus reports import slot usage.
func (s *Service) LimiterStatus() ImportLimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until in-flight imports finish or ctx is done.
// Called during graceful shutdown.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
