package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job represents a queued background task.
type Job struct {
	ID       string
	Type     string
	Payload  interface{}
	Enqueued time.Time
}

// Handler processes a job.
type Handler func(context.Context, Job) error

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers    int
	BufferSize int
	Logger     *zap.Logger
}

// Queue is a lightweight in-memory dispatcher backed by goroutines. Handler
// errors are logged and dropped; callers never block on or observe them.
type Queue struct {
	name    string
	handler Handler

	workers    int
	bufferSize int
	logger     *zap.Logger

	jobs    chan Job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewQueue builds a new queue with the provided handler.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue{
		name:       name,
		handler:    handler,
		workers:    cfg.Workers,
		bufferSize: cfg.BufferSize,
		logger:     cfg.Logger,
		jobs:       make(chan Job, cfg.BufferSize),
	}
}

// Start begins worker consumption. Safe to call once.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.started = true
	q.logger.Sugar().Infow("queue started", "queue", q.name, "workers", q.workers)
}

// Stop cancels workers and waits for them to exit.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()
	q.logger.Sugar().Infow("queue stopped", "queue", q.name)
}

// TryEnqueue pushes a job without blocking. A full buffer drops the job; the
// drop is logged and the caller's operation still succeeds.
func (q *Queue) TryEnqueue(job Job) error {
	q.mu.Lock()
	started := q.started
	q.mu.Unlock()

	if !started {
		return fmt.Errorf("queue %s not started", q.name)
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}

	select {
	case q.jobs <- job:
		return nil
	default:
		return fmt.Errorf("queue %s buffer full", q.name)
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			if err := q.handler(q.ctx, job); err != nil {
				q.logger.Sugar().Warnw("job failed", "queue", q.name, "job_id", job.ID, "type", job.Type, "error", err)
			}
		}
	}
}
