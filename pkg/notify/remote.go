package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// StatusBar is the system notifier behind the remote target. Calls are
// synchronous.
type StatusBar interface {
	// Notify shows e, or replaces the content shown for it.
	Notify(e *Entry) error
	Cancel(e *Entry) error
	CancelAll() error
}

// RemoteHandler delivers entries to the system status bar.
type RemoteHandler struct {
	*Handler
	remote *remoteCaps
}

// NewRemoteHandler creates the remote handler. A nil bar ignores every send.
func NewRemoteHandler(bar StatusBar, opts ...HandlerOption) *RemoteHandler {
	r := &remoteCaps{bar: bar}
	h := newHandler(KindRemote, r, opts...)
	r.logger = h.logger
	return &RemoteHandler{Handler: h, remote: r}
}

// SetStatusBar swaps the status bar used for subsequent work.
func (h *RemoteHandler) SetStatusBar(bar StatusBar) {
	h.remote.set(bar)
}

type remoteCaps struct {
	logger *slog.Logger
	mu     sync.RWMutex
	bar    StatusBar
}

func (r *remoteCaps) get() StatusBar {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.bar
}

func (r *remoteCaps) set(bar StatusBar) {
	r.mu.Lock()
	r.bar = bar
	r.mu.Unlock()
}

func (r *remoteCaps) acceptSend(e *Entry, done func(bool)) {
	done(r.notify(e, "notify failed"))
}

func (r *remoteCaps) acceptUpdate(e *Entry, done func(bool)) {
	done(r.notify(e, "update failed"))
}

func (r *remoteCaps) notify(e *Entry, msg string) bool {
	bar := r.get()
	if bar == nil {
		return false
	}
	if err := bar.Notify(e); err != nil {
		r.logger.LogAttrs(context.Background(), slog.LevelWarn, msg,
			logger.EntryID(e.ID()),
			logger.Error(err),
		)
		return false
	}
	return true
}

func (r *remoteCaps) acceptCancel(e *Entry, done func()) {
	defer done()
	bar := r.get()
	if bar == nil {
		return
	}
	if err := bar.Cancel(e); err != nil {
		r.logger.LogAttrs(context.Background(), slog.LevelWarn, "cancel failed",
			logger.EntryID(e.ID()),
			logger.Error(err),
		)
	}
}

func (r *remoteCaps) acceptCancelAll(done func()) {
	defer done()
	bar := r.get()
	if bar == nil {
		return
	}
	if err := bar.CancelAll(); err != nil {
		r.logger.LogAttrs(context.Background(), slog.LevelWarn, "cancel all failed",
			logger.Error(err),
		)
	}
}
