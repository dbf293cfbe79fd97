package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/looper"
)

// Kind selects a handler variant.
type Kind uint8

const (
	KindRemote Kind = iota
	KindLocal
	KindGlobal
)

func (k Kind) String() string {
	switch k {
	case KindRemote:
		return "remote"
	case KindLocal:
		return "local"
	case KindGlobal:
		return "global"
	}
	return "unknown"
}

// Target returns the bit served by handlers of kind k.
func (k Kind) Target() Target {
	switch k {
	case KindRemote:
		return TargetRemote
	case KindLocal:
		return TargetLocal
	case KindGlobal:
		return TargetGlobal
	}
	return TargetNone
}

// capability is what a variant does with the renderer it drives. Every
// method runs on the handler's looper and must eventually call done,
// from any goroutine.
type capability interface {
	acceptSend(e *Entry, done func(shown bool))
	acceptUpdate(e *Entry, done func(updated bool))
	acceptCancel(e *Entry, done func())
	acceptCancelAll(done func())
}

// tracked is a handler's view of one entry it was asked to show.
type tracked struct {
	entry     *Entry
	task      *looper.Task
	accepted  bool
	delivered bool
	canceling bool
}

// Handler adapts one presentation channel to the Center's protocol. All
// renderer work runs on the handler's own looper.
type Handler struct {
	kind   Kind
	target Target
	caps   capability
	looper *looper.Looper
	logger *slog.Logger

	center *Center
	player *EffectPlayer

	enabled atomic.Bool

	mu    sync.Mutex
	owned map[int64]*tracked
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithHandlerLogger sets the logger for the Handler.
func WithHandlerLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithHandlerLooper runs the handler on lp instead of a looper of its own.
func WithHandlerLooper(lp *looper.Looper) HandlerOption {
	return func(h *Handler) {
		if lp != nil {
			h.looper = lp
		}
	}
}

func newHandler(kind Kind, caps capability, opts ...HandlerOption) *Handler {
	h := &Handler{
		kind:   kind,
		target: kind.Target(),
		caps:   caps,
		owned:  make(map[int64]*tracked),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	h.logger = h.logger.With(logger.Handler(kind.String()))
	if h.looper == nil {
		h.looper = looper.New("notify-"+kind.String(), looper.WithLogger(h.logger))
	}
	h.enabled.Store(true)
	return h
}

func (h *Handler) base() *Handler { return h }

func (h *Handler) bind(c *Center) {
	h.mu.Lock()
	h.center = c
	h.player = c.player
	h.mu.Unlock()
	if err := h.looper.Start(); err != nil {
		h.logger.LogAttrs(context.Background(), slog.LevelDebug, "handler looper not started",
			logger.Error(err),
		)
	}
}

// Kind returns the handler kind.
func (h *Handler) Kind() Kind { return h.kind }

// Target returns the target bit the handler serves.
func (h *Handler) Target() Target { return h.target }

// Enabled reports whether the handler accepts new arrivals.
func (h *Handler) Enabled() bool { return h.enabled.Load() }

// Looper returns the looper all renderer work runs on.
func (h *Handler) Looper() *looper.Looper { return h.looper }

// Count returns the number of entries the handler currently tracks.
func (h *Handler) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.owned)
}

// SetEnabled turns the handler on or off. Disabling cancels everything it
// shows; while disabled every send, including one already scheduled, is
// ignored.
func (h *Handler) SetEnabled(enabled bool) {
	if h.enabled.Swap(enabled) == enabled {
		return
	}
	h.logger.LogAttrs(context.Background(), slog.LevelDebug, "handler enabled changed",
		slog.Bool("enabled", enabled),
	)
	if !enabled {
		h.teardown(false)
	}
}

// Close stops the handler's looper. Queued renderer work is dropped.
func (h *Handler) Close(ctx context.Context) error {
	err := h.looper.Stop(ctx)
	if errors.Is(err, looper.ErrNotStarted) {
		return nil
	}
	return err
}

func (h *Handler) onSendRequested(e *Entry) {
	if !e.addressed(h.target) {
		return
	}
	if !h.Enabled() {
		h.reportSend(e, false)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.owned[e.id]; ok {
		return
	}
	tr := &tracked{entry: e}
	h.owned[e.id] = tr
	tr.task = h.looper.PostDelayed(e.Delay, func() { h.arrive(tr) })
}

// arrive runs when the entry's delay has passed.
func (h *Handler) arrive(tr *tracked) {
	e := tr.entry

	h.mu.Lock()
	if h.owned[e.id] != tr || tr.canceling {
		h.mu.Unlock()
		return
	}
	tr.task = nil
	if !h.Enabled() {
		delete(h.owned, e.id)
		h.mu.Unlock()
		h.reportSend(e, false)
		return
	}
	tr.accepted = true
	h.mu.Unlock()

	done := onceBool(func(shown bool) {
		h.looper.Post(func() { h.sendDone(tr, shown) })
	})
	h.guard("accept send", e, func() { h.caps.acceptSend(e, done) }, func() { done(false) })
}

func (h *Handler) sendDone(tr *tracked, shown bool) {
	e := tr.entry

	h.mu.Lock()
	if h.owned[e.id] != tr || tr.canceling {
		h.mu.Unlock()
		return
	}
	if !shown {
		delete(h.owned, e.id)
		h.mu.Unlock()
		h.reportSend(e, false)
		return
	}
	tr.delivered = true
	player := h.player
	h.mu.Unlock()

	if e.WantsEffect() && player.Play(h.target, e) {
		h.center.metrics.play(h.target)
	}
	h.reportSend(e, true)
}

func (h *Handler) onUpdateRequested(e *Entry, round uint64) {
	if !e.addressed(h.target) {
		return
	}

	h.mu.Lock()
	tr, ok := h.owned[e.id]
	switch {
	case !ok || tr.canceling || !h.Enabled():
		h.mu.Unlock()
		h.reportUpdate(e, false, round)
		return
	case !tr.delivered:
		// the pending arrival renders the latest content
		h.mu.Unlock()
		h.reportUpdate(e, true, round)
		return
	}
	h.mu.Unlock()

	h.looper.Post(func() {
		h.mu.Lock()
		if h.owned[e.id] != tr || tr.canceling {
			h.mu.Unlock()
			h.reportUpdate(e, false, round)
			return
		}
		h.mu.Unlock()

		done := onceBool(func(updated bool) {
			h.looper.Post(func() { h.reportUpdate(e, updated, round) })
		})
		h.guard("accept update", e, func() { h.caps.acceptUpdate(e, done) }, func() { done(false) })
	})
}

func (h *Handler) onCancelRequested(e *Entry) {
	if !e.addressed(h.target) || e.IsCanceled(h.target) {
		return
	}

	h.mu.Lock()
	tr, ok := h.owned[e.id]
	if !ok {
		h.mu.Unlock()
		h.looper.Post(func() { h.reportCancel(e) })
		return
	}
	if tr.canceling {
		h.mu.Unlock()
		return
	}
	tr.canceling = true
	if tr.task != nil {
		tr.task.Cancel()
	}
	h.mu.Unlock()

	h.looper.Post(func() { h.dismiss(tr) })
}

// dismiss runs on the looper after any in-flight arrival for tr.
func (h *Handler) dismiss(tr *tracked) {
	h.mu.Lock()
	accepted := tr.accepted && h.owned[tr.entry.id] == tr
	h.mu.Unlock()

	if !accepted {
		h.cancelDone(tr)
		return
	}
	done := sync.OnceFunc(func() {
		h.looper.Post(func() { h.cancelDone(tr) })
	})
	h.guard("accept cancel", tr.entry, func() { h.caps.acceptCancel(tr.entry, done) }, done)
}

// cancelDone acknowledges cancellation of tr once.
func (h *Handler) cancelDone(tr *tracked) {
	e := tr.entry

	h.mu.Lock()
	if h.owned[e.id] != tr {
		h.mu.Unlock()
		return
	}
	delete(h.owned, e.id)
	player := h.player
	h.mu.Unlock()

	player.Release(h.target, e)
	h.reportCancel(e)
}

// cancelAll tears down everything the handler tracks. Scheduled arrivals
// are cancelled first so none of them can slip in.
func (h *Handler) cancelAll() {
	h.teardown(true)
}

// teardown cancels the tracked entries and clears the renderer. Without
// scheduled, entries still waiting for their arrival are left alone; they
// arrive on a disabled handler and are ignored.
func (h *Handler) teardown(scheduled bool) {
	h.mu.Lock()
	snapshot := make([]*tracked, 0, len(h.owned))
	for _, tr := range h.owned {
		if tr.task != nil {
			if !scheduled {
				continue
			}
			tr.task.Cancel()
		}
		tr.canceling = true
		snapshot = append(snapshot, tr)
	}
	h.mu.Unlock()

	h.looper.Post(func() {
		done := sync.OnceFunc(func() {
			h.looper.Post(func() { h.cancelAllDone(snapshot) })
		})
		h.guard("accept cancel all", nil, func() { h.caps.acceptCancelAll(done) }, done)
	})
}

func (h *Handler) cancelAllDone(snapshot []*tracked) {
	for _, tr := range snapshot {
		h.cancelDone(tr)
	}
	h.player.ReleaseConsumer(h.target)

	h.logger.LogAttrs(context.Background(), slog.LevelDebug, "cancel all finished",
		logger.Count(len(snapshot)),
	)
	if h.center != nil {
		h.center.onCancelAllFinished(h)
	}
}

func (h *Handler) reportSend(e *Entry, shown bool) {
	e.ackSend(h.target, shown)
	if shown {
		h.center.metrics.ack(h.target, sendFinished.String())
	} else {
		h.center.metrics.ack(h.target, sendIgnored.String())
	}
	h.center.reconcile(e)
}

// reportUpdate records the update acknowledgement. An ignored update
// still counts as acknowledged. Acks for a superseded round are dropped.
func (h *Handler) reportUpdate(e *Entry, updated bool, round uint64) {
	if !e.ackUpdate(h.target, round) {
		h.center.metrics.ack(h.target, "update_stale")
		return
	}
	ack := "update_ignored"
	if updated {
		ack = updateFinished.String()
	}
	h.center.metrics.ack(h.target, ack)
	h.center.reconcile(e)
}

func (h *Handler) reportCancel(e *Entry) {
	e.ackCancel(h.target)
	h.center.metrics.ack(h.target, cancelFinished.String())
	h.center.reconcile(e)
}

// guard runs fn and turns a renderer panic into fallback.
func (h *Handler) guard(op string, e *Entry, fn, fallback func()) {
	defer func() {
		if r := recover(); r != nil {
			attrs := []slog.Attr{slog.String("op", op), slog.Any("panic", r)}
			if e != nil {
				attrs = append(attrs, logger.EntryID(e.ID()))
			}
			h.logger.LogAttrs(context.Background(), slog.LevelError, "renderer panicked", attrs...)
			fallback()
		}
	}()
	fn()
}

func onceBool(fn func(bool)) func(bool) {
	var once sync.Once
	return func(v bool) {
		once.Do(func() { fn(v) })
	}
}
