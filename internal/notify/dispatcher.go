// Package notify runs notification side effects off the request path.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"inkwell/internal/metrics"
)

type Job func(ctx context.Context) error

// Runner accepts side-effect jobs. Submit never drops a job.
type Runner interface {
	Submit(ctx context.Context, name string, job Job)
}

type task struct {
	ctx  context.Context
	name string
	job  Job
}

// Dispatcher is a bounded queue drained by a single worker. When the queue is
// full, or after Close, jobs run on the caller's goroutine instead.
type Dispatcher struct {
	queue   chan task
	logger  *slog.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewDispatcher(size int, logger *slog.Logger) *Dispatcher {
	if size <= 0 {
		size = 1
	}
	d := &Dispatcher{
		queue:   make(chan task, size),
		logger:  logger,
		timeout: 10 * time.Second,
		done:    make(chan struct{}),
	}
	go d.worker()
	return d
}

// Submit detaches ctx from the request's cancellation so the job outlives the
// response but keeps its trace values.
func (d *Dispatcher) Submit(ctx context.Context, name string, job Job) {
	t := task{ctx: context.WithoutCancel(ctx), name: name, job: job}

	d.mu.RLock()
	if !d.closed {
		select {
		case d.queue <- t:
			metrics.NotifyQueueDepth.Set(float64(len(d.queue)))
			d.mu.RUnlock()
			return
		default:
			d.logger.Warn("notification queue full, running inline", "job", name)
		}
	}
	d.mu.RUnlock()
	d.run(t)
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for t := range d.queue {
		metrics.NotifyQueueDepth.Set(float64(len(d.queue)))
		d.run(t)
	}
}

func (d *Dispatcher) run(t task) {
	ctx, cancel := context.WithTimeout(t.ctx, d.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			metrics.NotificationsDispatched.WithLabelValues("panic").Inc()
			d.logger.Error("notification job panicked", "job", t.name, "panic", r)
		}
	}()

	if err := t.job(ctx); err != nil {
		metrics.NotificationsDispatched.WithLabelValues("error").Inc()
		d.logger.Error("notification job failed", "job", t.name, "error", err)
		return
	}
	metrics.NotificationsDispatched.WithLabelValues("ok").Inc()
}

// Close stops accepting queued work and waits for the backlog to drain.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Inline runs every job synchronously. Tests use it to observe side effects
// right after the call returns.
type Inline struct {
	Logger *slog.Logger
}

func (in Inline) Submit(ctx context.Context, name string, job Job) {
	if err := job(ctx); err != nil && in.Logger != nil {
		in.Logger.Error("notification job failed", "job", name, "error", err)
	}
}
