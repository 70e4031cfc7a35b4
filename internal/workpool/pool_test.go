package workpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestSubmitRunsAndReturnsResult(t *testing.T) {
	p := New(2)
	defer p.Close()

	h := p.Submit(context.Background(), func(ctx context.Context) error {
		return nil
	})
	if err := h.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSubmitPropagatesJobError(t *testing.T) {
	p := New(2)
	defer p.Close()

	boom := errors.New("boom")
	h := p.Submit(context.Background(), func(ctx context.Context) error {
		return boom
	})
	if err := h.Wait(); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestNilPoolRunsInline(t *testing.T) {
	var p *Pool
	ran := false
	h := p.Submit(context.Background(), func(ctx context.Context) error {
		ran = true
		return nil
	})
	if err := h.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ran {
		t.Fatalf("expected job to run inline on a nil pool")
	}
}

func TestBoundedConcurrency(t *testing.T) {
	const size = 2
	p := New(size)
	defer p.Close()

	var concurrent, maxConcurrent atomic.Int32
	const jobs = 8
	handles := make([]*Handle, jobs)
	for i := 0; i < jobs; i++ {
		handles[i] = p.Submit(context.Background(), func(ctx context.Context) error {
			n := concurrent.Add(1)
			for {
				m := maxConcurrent.Load()
				if n <= m || maxConcurrent.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(15 * time.Millisecond)
			concurrent.Add(-1)
			return nil
		})
	}
	for _, h := range handles {
		if err := h.Wait(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if maxConcurrent.Load() > size {
		t.Fatalf("observed %d concurrent jobs, pool size is %d", maxConcurrent.Load(), size)
	}
}

func TestSubmitAfterCloseReturnsErrPoolClosed(t *testing.T) {
	p := New(1)
	p.Close()

	h := p.Submit(context.Background(), func(ctx context.Context) error { return nil })
	if err := h.Wait(); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("expected ErrPoolClosed, got %v", err)
	}
}

func TestSubmitWithCancelledContext(t *testing.T) {
	p := New(1)
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := p.Submit(ctx, func(ctx context.Context) error { return nil })
	if err := h.Wait(); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
