package core

// import_limiter.go bounds the number of bulk imports running at once.
//
// Each import holds one slot of a buffered-channel semaphore for the whole
// coerce-and-insert cycle. When every slot is taken, new imports wait up to
// maxWait before failing with ErrTooManyImports. WaitForDrain lets shutdown
// block until in-flight imports finish.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrTooManyImports is returned when all import slots are occupied and the
// wait timeout expires. Clients should retry after a short delay.
var ErrTooManyImports = errors.New("too many concurrent imports, please try again later")

// DefaultMaxConcurrentImports is the default limit for parallel imports.
const DefaultMaxConcurrentImports = 4

// DefaultMaxImportWait is how long to wait for a slot before rejecting.
const DefaultMaxImportWait = 15 * time.Second

// ImportLimiter controls concurrent import processing using a semaphore.
type ImportLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int32
}

// NewImportLimiter creates a limiter that allows at most maxConcurrent imports.
// Requests that cannot get a slot within maxWait receive ErrTooManyImports.
func NewImportLimiter(maxConcurrent int, maxWait time.Duration) *ImportLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentImports
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxImportWait
	}

	return &ImportLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire waits for an import slot.
// The caller MUST call Release when the import completes (use defer).
func (l *ImportLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-timer.C:
		return ErrTooManyImports
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot taken by Acquire.
func (l *ImportLimiter) Release() {
	l.active.Add(-1)
	<-l.slots
}

// Active returns the number of imports currently holding a slot.
func (l *ImportLimiter) Active() int {
	return int(l.active.Load())
}

// ImportLimiterStatus is a snapshot of the limiter's state.
type ImportLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"maxConcurrent"`
}

// Status returns the current limiter state for health reporting.
func (l *ImportLimiter) Status() ImportLimiterStatus {
	return ImportLimiterStatus{
		Active:        l.Active(),
		Available:     cap(l.slots) - len(l.slots),
		MaxConcurrent: cap(l.slots),
	}
}

// WaitForDrain blocks until no import holds a slot or ctx is done.
func (l *ImportLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for l.Active() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
