package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Handler processes one queued item.
type Handler[T any] func(context.Context, T) error

// Config tunes worker pool behaviour.
type Config struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

type item[T any] struct {
	payload T
	attempt int
}

// Queue is a lightweight in-memory dispatcher backed by goroutines. It keeps
// slow side-effect writes, like audit logging, off the request path. Lifecycle
// belongs to Stop, not the Start context: the context passed to Start only
// scopes handler calls, so a caller can keep draining on shutdown while the
// rest of the process winds down.
type Queue[T any] struct {
	name    string
	handler Handler[T]

	workers    int
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger

	items   chan item[T]
	quit    chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	retryWG sync.WaitGroup
	mu      sync.RWMutex
	started bool
	stopped bool
}

// New builds a queue with the provided handler.
func New[T any](name string, handler Handler[T], cfg Config) *Queue[T] {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue[T]{
		name:       name,
		handler:    handler,
		workers:    cfg.Workers,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
		items:      make(chan item[T], cfg.BufferSize),
		quit:       make(chan struct{}),
	}
}

// Start begins worker consumption. Safe to call once. ctx is passed to the
// handler; cancelling it does not stop the workers.
func (q *Queue[T]) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.stopped {
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

// Stop refuses new work, drains every accepted item, and waits for the
// workers to exit. Pending retries are dropped rather than waited on.
func (q *Queue[T]) Stop() {
	q.mu.Lock()
	if !q.started || q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	close(q.quit)
	q.mu.Unlock()

	q.retryWG.Wait()
	close(q.items)
	q.wg.Wait()
	q.cancel()
	q.logger.Sugar().Infow("queue stopped", "queue", q.name)
}

// Enqueue pushes a payload onto the queue. It fails when the queue is not
// started or already stopped; it blocks while the buffer is full. An accepted
// payload is guaranteed a handler call before Stop returns.
func (q *Queue[T]) Enqueue(payload T) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if !q.started {
		return fmt.Errorf("queue %s not started", q.name)
	}
	if q.stopped {
		return fmt.Errorf("queue %s stopped", q.name)
	}

	q.items <- item[T]{payload: payload}
	return nil
}

func (q *Queue[T]) worker() {
	defer q.wg.Done()
	for it := range q.items {
		if err := q.handler(q.ctx, it.payload); err != nil {
			q.retry(it, err)
		}
	}
}

func (q *Queue[T]) retry(it item[T], err error) {
	it.attempt++
	if it.attempt > q.maxRetries {
		q.logger.Sugar().Errorw("job exceeded retries", "queue", q.name, "error", err)
		return
	}
	q.logger.Sugar().Warnw("job failed, retrying", "queue", q.name, "attempt", it.attempt, "error", err)

	q.retryWG.Add(1)
	go func() {
		defer q.retryWG.Done()
		timer := time.NewTimer(q.retryDelay)
		defer timer.Stop()
		select {
		case <-q.quit:
			q.logger.Sugar().Warnw("retry dropped during shutdown", "queue", q.name)
			return
		case <-timer.C:
		}

		q.mu.RLock()
		defer q.mu.RUnlock()
		if q.stopped {
			q.logger.Sugar().Warnw("retry dropped during shutdown", "queue", q.name)
			return
		}
		q.items <- it
	}()
}
