package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Enqueue errors.
var (
	// ErrDuplicate is returned by EnqueueUnique when a job with the same key
	// is already waiting or running.
	ErrDuplicate  = errors.New("job already pending")
	ErrNotStarted = errors.New("queue not started")
	ErrStopped    = errors.New("queue stopped")
)

// Job represents a queued background task.
type Job struct {
	ID       string
	Type     string
	Key      string
	Payload  interface{}
	Attempt  int
	Enqueued time.Time
}

// Handler processes a job.
type Handler func(context.Context, Job) error

// QueueConfig configures worker pool behaviour. MaxRetries of zero disables
// retries.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// Queue is an in-memory job dispatcher backed by a fixed pool of goroutines.
// Failed or panicking jobs are retried after RetryDelay up to MaxRetries.
type Queue struct {
	name    string
	handler Handler

	workers    int
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger

	jobs    chan Job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
	pending map[string]struct{}
}

// NewQueue builds a new queue with the provided handler.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue{
		name:       name,
		handler:    handler,
		workers:    cfg.Workers,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger.With(zap.String("queue", name)),
		jobs:       make(chan Job, cfg.BufferSize),
		pending:    make(map[string]struct{}),
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
		go q.worker(i + 1)
	}
	q.started = true
	q.logger.Info("queue started", zap.Int("workers", q.workers))
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
	q.logger.Info("queue stopped")
}

// Enqueue pushes a job onto the queue.
func (q *Queue) Enqueue(job Job) error {
	q.mu.Lock()
	ctx := q.ctx
	started := q.started
	q.mu.Unlock()

	if !started {
		return fmt.Errorf("%s: %w", q.name, ErrNotStarted)
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", q.name, ErrStopped)
	case q.jobs <- job:
		return nil
	}
}

// EnqueueUnique enqueues the job unless another job with the same Key is
// still pending, so overlapping triggers collapse into one run.
func (q *Queue) EnqueueUnique(job Job) error {
	if job.Key == "" {
		return q.Enqueue(job)
	}
	q.mu.Lock()
	if _, exists := q.pending[job.Key]; exists {
		q.mu.Unlock()
		return ErrDuplicate
	}
	q.pending[job.Key] = struct{}{}
	q.mu.Unlock()

	if err := q.Enqueue(job); err != nil {
		q.release(job.Key)
		return err
	}
	return nil
}

func (q *Queue) release(key string) {
	if key == "" {
		return
	}
	q.mu.Lock()
	delete(q.pending, key)
	q.mu.Unlock()
}

func (q *Queue) worker(workerID int) {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			if err := q.run(job); err != nil {
				q.handleFailure(job, err)
				continue
			}
			q.release(job.Key)
		}
	}
}

// run invokes the handler, turning a panic into a retryable error.
func (q *Queue) run(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", job.ID, r)
		}
	}()
	return q.handler(q.ctx, job)
}

func (q *Queue) handleFailure(job Job, err error) {
	job.Attempt++
	if job.Attempt > q.maxRetries {
		q.release(job.Key)
		q.logger.Error("job failed",
			zap.String("job_id", job.ID),
			zap.String("type", job.Type),
			zap.Int("attempts", job.Attempt),
			zap.Error(err))
		return
	}
	q.logger.Warn("job failed, retrying",
		zap.String("job_id", job.ID),
		zap.String("type", job.Type),
		zap.Int("attempt", job.Attempt),
		zap.Duration("retry_in", q.retryDelay),
		zap.Error(err))

	go func(j Job) {
		timer := time.NewTimer(q.retryDelay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
			q.release(j.Key)
			return
		case <-timer.C:
			if err := q.Enqueue(j); err != nil {
				q.release(j.Key)
				q.logger.Error("failed to requeue job", zap.String("job_id", j.ID), zap.Error(err))
			}
		}
	}(job)
}
