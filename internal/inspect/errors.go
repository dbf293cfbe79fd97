package inspect

import "errors"

var (
	// ErrStart indicates that the server failed to start.
	ErrStart = errors.New("inspect: failed to start HTTP server")
	// ErrShutdown indicates that graceful shutdown failed.
	ErrShutdown = errors.New("inspect: failed to shutdown HTTP server gracefully")
	// ErrInvalidPhase is returned for an unknown phase filter.
	ErrInvalidPhase = errors.New("inspect: invalid phase")
	// ErrNotRunning is reported by the health probe while the delegater
	// is not initialized or already closed.
	ErrNotRunning = errors.New("inspect: delegater is not running")
)
