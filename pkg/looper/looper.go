package looper

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// Looper executes posted tasks sequentially on a dedicated goroutine.
type Looper struct {
	name   string
	logger *slog.Logger

	mu      sync.Mutex
	queue   taskHeap
	seq     uint64
	started bool
	stopped bool

	wake chan struct{}
	done chan struct{}
}

// Option configures a Looper.
type Option func(*Looper)

// WithLogger sets the logger used for recovered panics and lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(lp *Looper) {
		if l != nil {
			lp.logger = l
		}
	}
}

// New creates a looper. It does not run tasks until Start is called, but
// tasks may be posted before that.
func New(name string, opts ...Option) *Looper {
	l := &Looper{
		name:   name,
		logger: slog.Default(),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Name returns the looper name.
func (l *Looper) Name() string { return l.name }

// Start launches the looper goroutine.
func (l *Looper) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started || l.stopped {
		return ErrAlreadyStarted
	}
	l.started = true
	go l.run()
	return nil
}

// Running reports whether the looper has been started and not yet stopped.
func (l *Looper) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.started && !l.stopped
}

// Post schedules fn to run as soon as the tasks ahead of it have finished.
func (l *Looper) Post(fn func()) *Task {
	return l.PostDelayed(0, fn)
}

// PostDelayed schedules fn to run no earlier than d from now.
func (l *Looper) PostDelayed(d time.Duration, fn func()) *Task {
	t := &Task{fn: fn, index: -1, done: make(chan struct{}), owner: l}

	l.mu.Lock()
	if l.stopped || fn == nil {
		l.mu.Unlock()
		t.state.Store(taskCanceled)
		close(t.done)
		return t
	}
	l.seq++
	t.seq = l.seq
	t.due = time.Now().Add(max(d, 0))
	l.queue.push(t)
	head := l.queue.peek() == t
	l.mu.Unlock()

	if head {
		l.signal()
	}
	return t
}

// Len returns the number of tasks waiting to run.
func (l *Looper) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.queue.Len()
}

// Sync blocks until every task posted before the call with no remaining
// delay has run. It must not be called from the looper's own goroutine.
func (l *Looper) Sync(ctx context.Context) error {
	if !l.Running() {
		l.mu.Lock()
		stopped := l.stopped
		l.mu.Unlock()
		if stopped {
			return ErrStopped
		}
		return ErrNotStarted
	}
	t := l.Post(func() {})
	select {
	case <-t.Done():
		if t.Canceled() {
			return ErrStopped
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop ends the looper after the running task, cancelling everything still
// queued, and waits for the goroutine to exit or ctx to expire.
func (l *Looper) Stop(ctx context.Context) error {
	l.mu.Lock()
	if !l.started {
		l.mu.Unlock()
		return ErrNotStarted
	}
	l.stopped = true
	l.mu.Unlock()
	l.signal()

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("looper %s: stop: %w", l.name, ctx.Err())
	}
}

func (l *Looper) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Looper) run() {
	defer close(l.done)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		l.mu.Lock()
		if l.stopped {
			dropped := l.drainLocked()
			l.mu.Unlock()
			if dropped > 0 {
				l.logger.LogAttrs(context.Background(), slog.LevelDebug, "looper stopped with queued tasks",
					logger.Looper(l.name),
					logger.Count(dropped),
				)
			}
			return
		}

		head := l.queue.peek()
		if head == nil {
			l.mu.Unlock()
			<-l.wake
			continue
		}

		if wait := time.Until(head.due); wait > 0 {
			l.mu.Unlock()
			timer.Reset(wait)
			select {
			case <-timer.C:
			case <-l.wake:
				timer.Stop()
			}
			continue
		}

		t := l.queue.pop()
		t.state.Store(taskRunning)
		l.mu.Unlock()

		l.execute(t)
	}
}

func (l *Looper) execute(t *Task) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.LogAttrs(context.Background(), slog.LevelError, "looper task panicked",
				logger.Looper(l.name),
				slog.Any("panic", r),
			)
		}
		t.state.Store(taskDone)
		close(t.done)
	}()
	t.fn()
}

func (l *Looper) drainLocked() int {
	n := 0
	for l.queue.Len() > 0 {
		t := l.queue.pop()
		if t.state.CompareAndSwap(taskPending, taskCanceled) {
			close(t.done)
			n++
		}
	}
	return n
}
