package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewPool_ZeroWorkers(t *testing.T) {
	pool := NewPool(0)
	if pool.Stats().Workers <= 0 {
		t.Errorf("Expected a CPU based worker count, got %d", pool.Stats().Workers)
	}
}

func TestPool_SubmitAndWait(t *testing.T) {
	pool := NewPool(2)
	defer pool.Close()

	var counter atomic.Int32
	for i := 0; i < 5; i++ {
		if err := pool.Submit(context.Background(), func() { counter.Add(1) }); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	pool.Wait()

	if counter.Load() != 5 {
		t.Errorf("Expected counter to be 5, got %d", counter.Load())
	}
	stats := pool.Stats()
	if stats.TotalJobs != 5 || stats.CompletedJobs != 5 {
		t.Errorf("Expected 5 total and completed jobs, got %+v", stats)
	}
	if stats.ActiveWorkers != 0 {
		t.Errorf("Expected 0 active workers, got %d", stats.ActiveWorkers)
	}
}

func TestPool_StartOnce(t *testing.T) {
	pool := NewPool(2)
	pool.Start()
	pool.Start()
	defer pool.Close()

	done := make(chan struct{})
	if err := pool.Submit(context.Background(), func() { close(done) }); err != nil {
		t.Fatal(err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job was not executed")
	}
}

func TestPool_RunKeepsInputOrder(t *testing.T) {
	pool := NewPool(4)
	defer pool.Close()

	const n = 50
	out := make([]int, n)
	err := pool.Run(context.Background(), n, func(_ context.Context, i int) {
		// Later items finish first.
		time.Sleep(time.Duration(n-i) * 100 * time.Microsecond)
		out[i] = i * i
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i, v := range out {
		if v != i*i {
			t.Fatalf("out[%d] = %d, want %d", i, v, i*i)
		}
	}
}

func TestPool_RunIsBounded(t *testing.T) {
	pool := NewPool(3)
	defer pool.Close()

	var active, peak atomic.Int32
	var mu sync.Mutex
	err := pool.Run(context.Background(), 20, func(context.Context, int) {
		cur := active.Add(1)
		mu.Lock()
		if cur > peak.Load() {
			peak.Store(cur)
		}
		mu.Unlock()
		time.Sleep(2 * time.Millisecond)
		active.Add(-1)
	})
	if err != nil {
		t.Fatal(err)
	}
	if peak.Load() > 3 {
		t.Errorf("Expected at most 3 concurrent jobs, saw %d", peak.Load())
	}
}

func TestPool_ConcurrentRuns(t *testing.T) {
	pool := NewPool(2)
	defer pool.Close()

	var wg sync.WaitGroup
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out := make([]bool, 10)
			if err := pool.Run(context.Background(), len(out), func(_ context.Context, i int) { out[i] = true }); err != nil {
				t.Error(err)
				return
			}
			for i, ok := range out {
				if !ok {
					t.Errorf("item %d not processed", i)
				}
			}
		}()
	}
	wg.Wait()
}

func TestPool_SubmitAfterClose(t *testing.T) {
	pool := NewPool(1)
	pool.Close()
	pool.Close()

	if err := pool.Submit(context.Background(), func() {}); err != ErrClosed {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
	if err := pool.Run(context.Background(), 3, func(context.Context, int) {}); err != ErrClosed {
		t.Errorf("Expected ErrClosed from Run, got %v", err)
	}
}

func TestPool_SubmitCancelled(t *testing.T) {
	pool := NewPool(1)
	defer pool.Close()

	release := make(chan struct{})
	defer close(release)
	// Occupy the worker and fill the queue.
	for i := 0; i < 3; i++ {
		if err := pool.Submit(context.Background(), func() { <-release }); err != nil {
			t.Fatal(err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := pool.Submit(ctx, func() {}); err != context.DeadlineExceeded {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}

func TestPool_PanickingJobKeepsWorker(t *testing.T) {
	pool := NewPool(1)
	defer pool.Close()

	if err := pool.Submit(context.Background(), func() { panic("boom") }); err != nil {
		t.Fatal(err)
	}
	var ran atomic.Bool
	if err := pool.Submit(context.Background(), func() { ran.Store(true) }); err != nil {
		t.Fatal(err)
	}
	pool.Wait()

	if !ran.Load() {
		t.Error("Expected the next job to run on the same worker")
	}
	stats := pool.Stats()
	if stats.PanickedJobs != 1 || stats.CompletedJobs != 2 {
		t.Errorf("Expected 1 panicked and 2 completed jobs, got %+v", stats)
	}
}

func TestPool_RunSurvivesPanic(t *testing.T) {
	pool := NewPool(2)
	defer pool.Close()

	results := make([]int, 4)
	err := pool.Run(context.Background(), len(results), func(_ context.Context, i int) {
		if i == 1 {
			panic("bad item")
		}
		results[i] = i + 1
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if results[0] != 1 || results[1] != 0 || results[2] != 3 || results[3] != 4 {
		t.Errorf("Unexpected results %v", results)
	}
}
