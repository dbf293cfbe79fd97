package looper

import "errors"

var (
	// ErrAlreadyStarted is returned by Start on a running or stopped looper.
	ErrAlreadyStarted = errors.New("looper: already started")

	// ErrNotStarted is returned by Stop and Sync before Start.
	ErrNotStarted = errors.New("looper: not started")

	// ErrStopped is returned by Sync once the looper has been stopped.
	ErrStopped = errors.New("looper: stopped")
)
