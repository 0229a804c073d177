package utils

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
)

func TestWorkerPoolProcessesAllTasks(t *testing.T) {
	var processed int64

	pool := NewWorkerPool(context.Background(), 4, func(n int) {
		atomic.AddInt64(&processed, int64(n))
	})
	pool.Start()

	total := int64(0)
	for i := 1; i <= 100; i++ {
		pool.Submit(i)
		total += int64(i)
	}
	pool.Stop()

	if got := atomic.LoadInt64(&processed); got != total {
		t.Errorf("processed sum = %d, want %d", got, total)
	}
}

func TestWorkerPoolStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var mu sync.Mutex
	seen := 0
	pool := NewWorkerPool(ctx, 2, func(int) {
		mu.Lock()
		seen++
		mu.Unlock()
	})
	pool.Start()

	cancel()

	// Submits after cancellation are dropped rather than blocking
	for i := 0; i < 1000; i++ {
		pool.Submit(i)
	}
	pool.Stop()
}

func TestWorkerPoolDefaultsWorkerCount(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 0, func(int) {})
	if pool.workers <= 0 {
		t.Errorf("workers = %d, want > 0", pool.workers)
	}
	if pool.workers > MaxWorkers {
		t.Errorf("workers = %d exceeds cap %d", pool.workers, MaxWorkers)
	}
}
