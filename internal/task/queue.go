package task

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Common errors returned by the JobQueue.
var (
	ErrQueueClosed = errors.New("job queue is closed")
	ErrQueueFull   = errors.New("job queue is full")
)

// JobQueue is a buffered queue of email jobs for one priority lane.
type JobQueue struct {
	lane   string
	jobs   chan EmailJob
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewJobQueue creates a queue for lane with the given buffer size.
func NewJobQueue(lane string, size int, logger *slog.Logger) *JobQueue {
	return &JobQueue{
		lane:   lane,
		jobs:   make(chan EmailJob, size),
		logger: logger,
	}
}

// Enqueue adds a job to the queue. Returns ErrQueueFull when the buffer
// is at capacity and ErrQueueClosed after Close.
func (q *JobQueue) Enqueue(job EmailJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.jobs <- job:
		q.logger.Debug("email job enqueued",
			slog.String("job_id", job.ID.String()),
			slog.String("kind", job.Kind),
			slog.String("lane", q.lane),
			slog.Int("queue_len", len(q.jobs)),
			slog.Int("queue_cap", cap(q.jobs)))
		return nil
	default:
		return fmt.Errorf("%w: lane %s capacity %d reached", ErrQueueFull, q.lane, cap(q.jobs))
	}
}

// Close closes the queue, preventing further submission. Jobs already
// buffered remain consumable.
func (q *JobQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.jobs)
		q.logger.Debug("email job queue closed", slog.String("lane", q.lane))
	}
}

// Chan returns a read-only channel for consuming jobs.
func (q *JobQueue) Chan() <-chan EmailJob {
	return q.jobs
}
