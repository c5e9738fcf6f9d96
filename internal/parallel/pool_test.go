package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
)

func TestWorkerPool_Create(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{"explicit", 4, 4},
		{"zero uses GOMAXPROCS", 0, runtime.GOMAXPROCS(0)},
		{"negative uses GOMAXPROCS", -3, runtime.GOMAXPROCS(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := NewWorkerPool(tt.workers)
			defer pool.Close()
			if pool.Workers() != tt.want {
				t.Errorf("Workers() = %d, want %d", pool.Workers(), tt.want)
			}
			if !pool.IsRunning() {
				t.Error("pool should be running after creation")
			}
		})
	}
}

func TestWorkerPool_ExecuteAll(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var counter atomic.Int64
	work := make([]func(), 100)
	for i := range work {
		work[i] = func() { counter.Add(1) }
	}
	pool.ExecuteAll(work)

	if counter.Load() != 100 {
		t.Errorf("counter = %d, want 100", counter.Load())
	}
}

func TestWorkerPool_ExecuteAllAfterClose(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Close()
	pool.Close()

	ran := 0
	pool.ExecuteAll([]func(){func() { ran++ }, func() { ran++ }})
	if ran != 2 {
		t.Errorf("ran = %d, want 2 (closed pool runs inline)", ran)
	}
	if pool.IsRunning() {
		t.Error("IsRunning() = true after Close")
	}
}

func TestWorkerPool_Dispatch(t *testing.T) {
	pool := NewWorkerPool(3)
	defer pool.Close()

	tests := []struct {
		n, group int
	}{
		{0, 8},
		{1, 8},
		{7, 8},
		{64, 8},
		{100, 7},
		{5, 0},
	}
	for _, tt := range tests {
		hits := make([]int32, tt.n)
		var mu sync.Mutex
		groups := 0
		pool.Dispatch(tt.n, tt.group, func(start, end int) {
			mu.Lock()
			groups++
			mu.Unlock()
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			if h != 1 {
				t.Fatalf("n=%d group=%d: index %d visited %d times", tt.n, tt.group, i, h)
			}
		}
		size := max(tt.group, 1)
		if want := (tt.n + size - 1) / size; groups != want {
			t.Errorf("n=%d group=%d: %d groups, want %d", tt.n, tt.group, groups, want)
		}
	}
}

func TestWorkerPool_ConcurrentCallers(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var total atomic.Int64
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pool.Dispatch(1000, 64, func(start, end int) {
				total.Add(int64(end - start))
			})
		}()
	}
	wg.Wait()

	if total.Load() != 8000 {
		t.Errorf("total = %d, want 8000", total.Load())
	}
}

func TestDefaultPoolIsShared(t *testing.T) {
	if Default() != Default() {
		t.Error("Default() returned different pools")
	}
}
