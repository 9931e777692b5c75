package task

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Func is a unit of detached background work.
type Func func(ctx context.Context) error

// Observer is notified when a task finishes, successfully or not.
type Observer func(name string, err error, elapsed time.Duration)

// Config contains runner configuration.
type Config struct {
	MaxConcurrent int           `json:"max_concurrent" yaml:"max_concurrent"`
	Timeout       time.Duration `json:"timeout" yaml:"timeout"`
}

// DefaultConfig returns the default runner configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxConcurrent: 10,
		Timeout:       30 * time.Second,
	}
}

// Runner runs fire-and-forget tasks detached from the request that spawned them.
// Task errors never reach the caller; they go to the logger and the observer.
type Runner struct {
	mu      sync.RWMutex
	stopped bool

	logger   *zap.Logger
	config   *Config
	observer Observer

	// Concurrency control
	semaphore chan struct{}

	// Lifecycle
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewRunner creates a new task runner.
func NewRunner(logger *zap.Logger, config *Config) *Runner {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 10
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		logger:    logger.Named("task-runner"),
		config:    config,
		semaphore: make(chan struct{}, config.MaxConcurrent),
		baseCtx:   ctx,
		cancel:    cancel,
	}
}

// SetObserver registers the task completion observer.
func (r *Runner) SetObserver(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observer = o
}

// Go starts fn in the background and returns immediately.
// decorate, if non-nil, derives the task context (e.g. to carry a correlation id).
// Returns false if the runner is stopped.
func (r *Runner) Go(name string, decorate func(context.Context) context.Context, fn Func) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.stopped {
		r.logger.Warn("task rejected, runner stopped", zap.String("task", name))
		return false
	}

	r.wg.Add(1)
	go r.execute(name, decorate, fn)
	return true
}

func (r *Runner) execute(name string, decorate func(context.Context) context.Context, fn Func) {
	defer r.wg.Done()

	// Acquire semaphore
	select {
	case <-r.baseCtx.Done():
		r.finish(name, "", r.baseCtx.Err(), 0)
		return
	case r.semaphore <- struct{}{}:
		defer func() { <-r.semaphore }()
	}

	ctx, cancel := context.WithTimeout(r.baseCtx, r.config.Timeout)
	defer cancel()
	if decorate != nil {
		ctx = decorate(ctx)
	}

	taskID := uuid.NewString()
	start := time.Now()
	err := r.run(ctx, fn)
	r.finish(name, taskID, err, time.Since(start))
}

func (r *Runner) run(ctx context.Context, fn Func) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("task panicked: %v\n%s", p, debug.Stack())
		}
	}()
	return fn(ctx)
}

func (r *Runner) finish(name, taskID string, err error, elapsed time.Duration) {
	if err != nil {
		r.logger.Error("background task failed",
			zap.String("task", name),
			zap.String("task_id", taskID),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
	} else {
		r.logger.Debug("background task completed",
			zap.String("task", name),
			zap.String("task_id", taskID),
			zap.Duration("elapsed", elapsed))
	}

	r.mu.RLock()
	observer := r.observer
	r.mu.RUnlock()
	if observer != nil {
		observer(name, err, elapsed)
	}
}

// Stop rejects new tasks and waits for running ones until ctx expires,
// then cancels whatever is still in flight.
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()

	r.logger.Info("stopping task runner")

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.cancel()
		r.logger.Info("task runner stopped")
		return nil
	case <-ctx.Done():
		r.cancel()
		<-done
		r.logger.Warn("task runner stopped with tasks cancelled")
		return ctx.Err()
	}
}
