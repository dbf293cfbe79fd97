package looper

import (
	"sync/atomic"
	"time"
)

const (
	taskPending int32 = iota
	taskRunning
	taskDone
	taskCanceled
)

// Task is a handle to a posted function.
type Task struct {
	fn    func()
	due   time.Time
	seq   uint64
	index int
	state atomic.Int32
	done  chan struct{}
	owner *Looper
}

// Cancel removes the task from its looper if it has not started yet.
// It reports whether the task was cancelled by this call.
func (t *Task) Cancel() bool {
	if t == nil || t.owner == nil {
		return false
	}
	l := t.owner
	l.mu.Lock()
	defer l.mu.Unlock()
	if !t.state.CompareAndSwap(taskPending, taskCanceled) {
		return false
	}
	if t.index >= 0 {
		l.queue.remove(t)
	}
	close(t.done)
	return true
}

// Done is closed once the task has run or was cancelled.
func (t *Task) Done() <-chan struct{} { return t.done }

// Canceled reports whether the task was cancelled before it ran.
func (t *Task) Canceled() bool { return t.state.Load() == taskCanceled }

// Pending reports whether the task is still waiting to run.
func (t *Task) Pending() bool { return t.state.Load() == taskPending }

// Due returns the earliest time the task may run.
func (t *Task) Due() time.Time { return t.due }
