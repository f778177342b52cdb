// Package parallel provides a bounded worker pool for running independent
// filter jobs concurrently.
package parallel

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool is a fixed set of goroutines draining a shared work queue.
//
// Each work item runs to completion on one worker; items never share
// mutable state through the pool.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	// workers is the number of worker goroutines.
	workers int

	// queue holds pending work items.
	queue chan func()

	// done signals workers to stop.
	done chan struct{}

	// wg waits for all workers to finish.
	wg sync.WaitGroup

	// running indicates whether the pool is accepting work.
	running atomic.Bool
}

// NewWorkerPool creates a new worker pool with the specified number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
// The pool starts immediately and workers begin waiting for work.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p := &WorkerPool{
		workers: workers,
		queue:   make(chan func(), workers*2),
		done:    make(chan struct{}),
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}

	return p
}

// worker is the main loop for each worker goroutine.
func (p *WorkerPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.done:
			// Drain remaining work before exiting
			for {
				select {
				case work := <-p.queue:
					work()
				default:
					return
				}
			}
		case work := <-p.queue:
			work()
		}
	}
}

// ExecuteAll runs every work item and waits for all of them to complete.
//
// Items not yet started when ctx is done are skipped and ExecuteAll returns
// ctx.Err(). Items already running are not interrupted; they should watch
// ctx themselves. If the pool is closed, ExecuteAll runs nothing and
// returns nil.
func (p *WorkerPool) ExecuteAll(ctx context.Context, work []func(context.Context)) error {
	if len(work) == 0 || !p.running.Load() {
		return nil
	}

	var completion sync.WaitGroup
	completion.Add(len(work))

	for i, fn := range work {
		wrapped := func() {
			defer completion.Done()
			if ctx.Err() != nil {
				return
			}
			fn(ctx)
		}

		select {
		case p.queue <- wrapped:
		case <-ctx.Done():
			completion.Add(-(len(work) - i))
			completion.Wait()
			return ctx.Err()
		case <-p.done:
			completion.Add(-(len(work) - i))
			completion.Wait()
			return nil
		}
	}

	completion.Wait()
	return ctx.Err()
}

// Close gracefully shuts down the pool.
// It stops accepting new work, waits for all queued work to complete,
// and then stops all workers.
// Close is safe to call multiple times.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning returns true if the pool is still accepting work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}
