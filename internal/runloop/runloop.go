// Package runloop serializes all widget state mutations onto a single
// logical thread. Network completions, timers, and user actions are posted
// as tasks and interleave cooperatively; no task runs in parallel with
// another.
package runloop

import (
	"context"
	"sync"
	"time"

	"github.com/solvyn/widgetcore/internal/logging"
)

// CancelFunc cancels a pending timer. Calling it after the timer fired is
// a no-op.
type CancelFunc func()

// Scheduler is the execution surface handed to every component. Post
// enqueues a task in FIFO order; After schedules a task on the loop once
// the delay elapses.
type Scheduler interface {
	Post(fn func())
	After(d time.Duration, fn func()) CancelFunc
}

// Loop is the production Scheduler, backed by a goroutine draining a task
// queue. Tasks execute strictly in the order posted.
type Loop struct {
	tasks chan func()
	log   *logging.Logger

	mu     sync.Mutex
	closed bool
}

// NewLoop creates a loop with a bounded task queue.
func NewLoop(log *logging.Logger) *Loop {
	return &Loop{
		tasks: make(chan func(), 256),
		log:   log.Sub("runloop"),
	}
}

// Run drains the task queue until the context is cancelled. It blocks and
// is intended to be the caller's main goroutine for the widget.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			l.mu.Lock()
			l.closed = true
			l.mu.Unlock()
			return
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Post enqueues a task. Tasks posted after shutdown are dropped.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()

	select {
	case l.tasks <- fn:
	default:
		// Queue full: the widget is wedged; dropping is preferable to
		// blocking a transport read pump.
		l.log.Warn().Msg("task queue full, dropping task")
	}
}

// After schedules fn to run on the loop after d.
func (l *Loop) After(d time.Duration, fn func()) CancelFunc {
	t := time.AfterFunc(d, func() {
		l.Post(fn)
	})
	return func() { t.Stop() }
}
