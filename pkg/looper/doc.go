// Package looper provides a serial task queue backed by one goroutine.
//
// A Looper runs posted functions one at a time in (due time, post order)
// order, so code that only runs on one Looper never needs its own locking.
// Delayed tasks are kept in a timer heap; a task posted with a longer delay
// may run after a task posted later with a shorter one.
//
//	l := looper.New("local", looper.WithLogger(log))
//	if err := l.Start(); err != nil {
//	    return err
//	}
//	defer l.Stop(ctx)
//
//	task := l.PostDelayed(300*time.Millisecond, func() { show(entry) })
//	// later, if the entry is cancelled before it was shown:
//	task.Cancel()
//
// Every Post returns a *Task handle. The handle is the cancellation token:
// Cancel succeeds only while the task is still waiting. Tasks posted to a
// stopped Looper come back already cancelled. A panicking task is recovered
// and logged, and the Looper keeps running.
package looper
