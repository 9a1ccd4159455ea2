package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestImportLimiter_AcquireRelease(t *testing.T) {
	limiter := NewImportLimiter(2, time.Second)
	ctx := context.Background()

	if got := limiter.Active(); got != 0 {
		t.Errorf("initial Active = %d, want 0", got)
	}

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}

	status := limiter.Status()
	if status.Active != 2 || status.Available != 0 || status.MaxConcurrent != 2 {
		t.Errorf("Status = %+v, want {Active:2 Available:0 MaxConcurrent:2}", status)
	}

	limiter.Release()
	limiter.Release()

	if got := limiter.Active(); got != 0 {
		t.Errorf("after Release, Active = %d, want 0", got)
	}
}

func TestImportLimiter_TimesOutWhenFull(t *testing.T) {
	limiter := NewImportLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	start := time.Now()
	err := limiter.Acquire(ctx)
	elapsed := time.Since(start)

	if !errors.Is(err, ErrTooManyImports) {
		t.Errorf("expected ErrTooManyImports, got %v", err)
	}
	if elapsed < 40*time.Millisecond {
		t.Errorf("timeout too fast: %v", elapsed)
	}
}

func TestImportLimiter_ContextCancellation(t *testing.T) {
	limiter := NewImportLimiter(1, 5*time.Second)

	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- limiter.Acquire(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Error("Acquire did not return after context cancellation")
	}
}

func TestImportLimiter_ConcurrentAccess(t *testing.T) {
	const maxConcurrent = 3
	limiter := NewImportLimiter(maxConcurrent, time.Second)

	var (
		wg          sync.WaitGroup
		maxObserved atomic.Int32
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := limiter.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			defer limiter.Release()

			current := int32(limiter.Active())
			for {
				prev := maxObserved.Load()
				if current <= prev || maxObserved.CompareAndSwap(prev, current) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
		}()
	}
	wg.Wait()

	if got := maxObserved.Load(); got > maxConcurrent {
		t.Errorf("exceeded max concurrent: observed %d, max %d", got, maxConcurrent)
	}
	if got := limiter.Active(); got != 0 {
		t.Errorf("final Active = %d, want 0", got)
	}
}

func TestImportLimiter_WaitForDrain(t *testing.T) {
	limiter := NewImportLimiter(2, time.Second)
	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	drained := make(chan error, 1)
	go func() {
		drained <- limiter.WaitForDrain(context.Background())
	}()

	select {
	case <-drained:
		t.Fatal("WaitForDrain returned while an import was active")
	case <-time.After(30 * time.Millisecond):
	}

	limiter.Release()

	select {
	case err := <-drained:
		if err != nil {
			t.Errorf("WaitForDrain returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Error("WaitForDrain did not complete after release")
	}
}

func TestImportLimiter_DefaultValues(t *testing.T) {
	limiter := NewImportLimiter(0, 0)

	if got := limiter.Status().MaxConcurrent; got != DefaultMaxConcurrentImports {
		t.Errorf("MaxConcurrent = %d, want %d", got, DefaultMaxConcurrentImports)
	}
	if limiter.maxWait != DefaultMaxImportWait {
		t.Errorf("maxWait = %v, want %v", limiter.maxWait, DefaultMaxImportWait)
	}
}
