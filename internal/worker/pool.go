// Package worker provides the bounded goroutine pool used for batch generation.
package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned when submitting to a closed pool.
var ErrClosed = errors.New("worker pool is closed")

// Stats is a snapshot of pool activity.
type Stats struct {
	Workers       int
	TotalJobs     int64
	CompletedJobs int64
	ActiveWorkers int64
	PanickedJobs  int64
}

// Pool runs submitted jobs on a fixed number of goroutines.
type Pool struct {
	workers  int
	jobQueue chan func()
	wg       sync.WaitGroup
	start    sync.Once
	mu       sync.RWMutex
	closed   bool

	total     atomic.Int64
	completed atomic.Int64
	active    atomic.Int64
	panicked  atomic.Int64
}

// NewPool creates a pool. workers <= 0 means one per CPU.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{
		workers:  workers,
		jobQueue: make(chan func(), workers*2),
	}
}

// Start launches the workers. Calling it more than once has no effect.
func (p *Pool) Start() {
	p.start.Do(func() {
		for i := 0; i < p.workers; i++ {
			go p.worker()
		}
	})
}

func (p *Pool) worker() {
	for job := range p.jobQueue {
		p.active.Add(1)
		p.runJob(job)
		p.active.Add(-1)
		p.completed.Add(1)
		p.wg.Done()
	}
}

// runJob keeps a panicking job from taking its worker down. Callers that need
// the panic value recover it inside the job.
func (p *Pool) runJob(job func()) {
	defer func() {
		if r := recover(); r != nil {
			p.panicked.Add(1)
		}
	}()
	job()
}

// Submit queues job, blocking while the queue is full. It fails if ctx ends
// first or the pool has been closed.
func (p *Pool) Submit(ctx context.Context, job func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	p.Start()

	p.wg.Add(1)
	select {
	case p.jobQueue <- job:
		p.total.Add(1)
		return nil
	case <-ctx.Done():
		p.wg.Done()
		return ctx.Err()
	}
}

// Run executes fn(ctx, i) for i in [0, n) on the pool and waits for all of
// them. Each call writes only its own index, so callers can collect results
// in input order. Submission stops at the first error, which Run returns
// once the calls already queued have finished.
func (p *Pool) Run(ctx context.Context, n int, fn func(ctx context.Context, i int)) error {
	var wg sync.WaitGroup
	var firstErr error
	for i := 0; i < n; i++ {
		wg.Add(1)
		err := p.Submit(ctx, func() {
			defer wg.Done()
			fn(ctx, i)
		})
		if err != nil {
			wg.Done()
			if firstErr == nil {
				firstErr = err
			}
			break
		}
	}
	wg.Wait()
	return firstErr
}

// Wait blocks until every job submitted so far has finished.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Close stops accepting jobs and lets queued jobs drain.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.jobQueue)
}

// Stats returns current counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Workers:       p.workers,
		TotalJobs:     p.total.Load(),
		CompletedJobs: p.completed.Load(),
		ActiveWorkers: p.active.Load(),
		PanickedJobs:  p.panicked.Load(),
	}
}
