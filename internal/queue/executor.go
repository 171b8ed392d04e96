// Package queue runs fire-and-forget tasks on a bounded pool of workers.
//
// Submit never blocks: when the buffer is full or the executor is shutting
// down the task is dropped and reported. Each task runs with its own
// timeout, detached from the context of whoever submitted it.
package queue

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rdrlink/shortener/internal/metrics"
)

// Task is a unit of background work.
type Task func(ctx context.Context)

// Config sizes an Executor.
type Config struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration // Per-task deadline, 0 means none
}

// Executor is a worker pool fed by a buffered channel.
type Executor struct {
	cfg    Config
	tasks  chan Task
	logger *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// New creates an executor and starts its workers.
func New(cfg Config, logger *zap.Logger) *Executor {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 0 {
		cfg.QueueSize = 0
	}

	e := &Executor{
		cfg:    cfg,
		tasks:  make(chan Task, cfg.QueueSize),
		logger: logger,
	}

	e.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go e.worker()
	}
	return e
}

// Submit enqueues task. It returns false if the task was dropped.
func (e *Executor) Submit(task Task) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		e.drop("executor closed")
		return false
	}

	select {
	case e.tasks <- task:
		return true
	default:
		e.drop("queue full")
		return false
	}
}

// Shutdown stops accepting tasks and waits for queued ones to finish or
// for ctx to end, whichever comes first.
func (e *Executor) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		close(e.tasks)
	}
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Executor) worker() {
	defer e.wg.Done()
	for task := range e.tasks {
		e.run(task)
	}
}

func (e *Executor) run(task Task) {
	ctx := context.Background()
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("background task panicked", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()

	task(ctx)
}

func (e *Executor) drop(reason string) {
	metrics.BackgroundTasksDroppedTotal.Inc()
	e.logger.Warn("background task dropped", zap.String("reason", reason))
}
