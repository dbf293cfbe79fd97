package notify

import "errors"

var (
	ErrAlreadyInitialized = errors.New("notify: already initialized")
	ErrNotInitialized     = errors.New("notify: not initialized")
	ErrClosed             = errors.New("notify: closed")
	ErrNilEntry           = errors.New("notify: nil entry")
	ErrNilHandler         = errors.New("notify: nil handler")
	ErrHandlerRegistered  = errors.New("notify: handler already registered for target")
	ErrUnknownTarget      = errors.New("notify: unknown target")
)
