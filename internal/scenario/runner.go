package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notify"
)

// OverlaySwitch toggles overlay drawing permission for overlay steps.
type OverlaySwitch interface {
	SetAllowed(bool)
}

// Runner plays scenarios against a running Delegater.
type Runner struct {
	d       *notify.Delegater
	overlay OverlaySwitch
	logger  *slog.Logger
	refs    map[string]*notify.Entry
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the step logger.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithOverlaySwitch sets the target of overlay steps. Without it overlay
// steps are skipped.
func WithOverlaySwitch(s OverlaySwitch) RunnerOption {
	return func(r *Runner) { r.overlay = s }
}

// NewRunner creates a Runner driving d.
func NewRunner(d *notify.Delegater, opts ...RunnerOption) *Runner {
	r := &Runner{
		d:      d,
		logger: slog.Default(),
		refs:   make(map[string]*notify.Entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Entry returns the entry sent under ref.
func (r *Runner) Entry(ref string) (*notify.Entry, bool) {
	e, ok := r.refs[ref]
	return e, ok
}

// Run executes every step in order and settles the delivery queues once
// the last step is done. It stops at the first failing step or when ctx
// ends.
func (r *Runner) Run(ctx context.Context, sc *Scenario) error {
	if err := sc.Validate(); err != nil {
		return err
	}
	for i, st := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.step(ctx, st); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, st.Action, err)
		}
	}
	return r.Settle(ctx)
}

func (r *Runner) step(ctx context.Context, st Step) error {
	r.logger.LogAttrs(ctx, slog.LevelDebug, "scenario step",
		slog.String("action", string(st.Action)),
		slog.String("ref", st.Ref),
	)
	switch st.Action {
	case ActionSend:
		e, err := st.entry()
		if err != nil {
			return err
		}
		if st.Ref != "" {
			r.refs[st.Ref] = e
		}
		ok, err := r.d.Send(e)
		if err != nil {
			return err
		}
		if !ok {
			r.logger.LogAttrs(ctx, slog.LevelInfo, "send rejected", logger.EntryID(e.ID()))
		}
	case ActionUpdate:
		e, ok := r.refs[st.Ref]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownRef, st.Ref)
		}
		// Content may only change once every handler has acknowledged
		// the previous state.
		if err := r.Settle(ctx); err != nil {
			return err
		}
		if st.Title != "" {
			e.Title = st.Title
		}
		if st.Text != "" {
			e.Text = st.Text
		}
		if _, err := r.d.Update(e); err != nil {
			return err
		}
	case ActionCancel:
		e, ok := r.refs[st.Ref]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownRef, st.Ref)
		}
		if _, err := r.d.CancelEntry(e); err != nil {
			return err
		}
	case ActionCancelTag:
		n, err := r.d.CancelTag(st.Tag)
		if err != nil {
			return err
		}
		r.logger.LogAttrs(ctx, slog.LevelDebug, "canceled by tag", logger.Tag(st.Tag), logger.Count(n))
	case ActionCancelAll:
		return r.d.CancelAll()
	case ActionWait:
		t := time.NewTimer(time.Duration(st.Duration))
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	case ActionSettle:
		return r.Settle(ctx)
	case ActionEnable, ActionDisable:
		return r.d.SetEnabled(st.Action == ActionEnable)
	case ActionOverlay:
		if r.overlay == nil {
			return nil
		}
		// Arrivals already posted are judged against the old permission.
		if err := r.Settle(ctx); err != nil {
			return err
		}
		r.overlay.SetAllowed(st.Allowed)
	default:
		return ErrUnknownAction
	}
	return nil
}

// Settle waits until every handler queue and the listener queue have run
// what was posted to them. Renderer callbacks may post again, so the
// handlers are synced twice. Scheduled arrivals are not waited for.
func (r *Runner) Settle(ctx context.Context) error {
	if err := r.d.Err(); err != nil {
		return err
	}
	handlers := r.d.Handlers()
	for range 2 {
		for _, h := range handlers {
			if err := h.Looper().Sync(ctx); err != nil {
				return err
			}
		}
	}
	return r.d.Center().Sync(ctx)
}
