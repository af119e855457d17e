package batch

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job is one file submitted to a Queue.
type Job struct {
	Path        string
	SubmittedAt time.Time
}

// Handler receives every finished job, successful or not.
type Handler func(job Job, item Item)

// Queue processes jobs on a fixed pool of workers until Shutdown.
type Queue struct {
	runner  *Runner
	handle  Handler
	logger  *slog.Logger
	workers int

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

// NewQueue reuses the runner's worker count, timeout and mode.
func NewQueue(r *Runner, handle Handler, size int) *Queue {
	if size <= 0 {
		size = 256
	}
	q := &Queue{
		runner:  r,
		handle:  handle,
		logger:  r.logger,
		workers: r.workers,
		ch:      make(chan Job, size),
	}
	q.start()
	return q
}

func (q *Queue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("worker started", "worker_id", workerID)

				for job := range q.ch {
					res, err := q.runner.one(context.Background(), job.Path)
					item := Item{File: job.Path, Result: res}
					if err != nil {
						item.Err = err.Error()
						q.logger.Error("processing failed", "worker_id", workerID, "path", job.Path, "error", err)
					}
					if q.handle != nil {
						q.handle(job, item)
					}
				}

				q.logger.Debug("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Enqueue blocks when the buffer is full. It reports false once the queue
// is shutting down.
func (q *Queue) Enqueue(ctx context.Context, path string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "path", path)
		return false
	}
	job := Job{Path: path, SubmittedAt: time.Now().UTC()}
	select {
	case q.ch <- job:
		return true
	default:
	}
	q.logger.Warn("queue full, applying backpressure", "path", path)
	select {
	case q.ch <- job:
		return true
	case <-ctx.Done():
		return false
	}
}

// Shutdown stops accepting jobs and waits for in-flight ones or ctx.
func (q *Queue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Debug("queue drained, shutdown complete")
	}
}
