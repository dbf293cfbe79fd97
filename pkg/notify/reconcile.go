package notify

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/notifykit/pkg/logger"
)

type tableOp uint8

const (
	tableNone tableOp = iota
	tableToPending
	tableToActive
	tableRemove
)

type fanOut uint8

const (
	fanNone fanOut = iota
	fanSend
	fanUpdate
	fanCancel
)

// plan is the work one transition leaves to do once the entry lock is
// released.
type plan struct {
	table  tableOp
	notify EventKind
	fan    fanOut
	to     Target
	round  uint64
}

// reconcile drains the entry's transition queue. The first caller to find
// the entry idle becomes its drainer; concurrent and re-entrant callers
// only leave their transitions queued for it.
func (c *Center) reconcile(e *Entry) {
	e.mu.Lock()
	if e.draining {
		e.mu.Unlock()
		return
	}
	e.draining = true
	for {
		t, ok := e.queue.pop()
		if !ok {
			break
		}
		p := c.step(e, t)
		e.mu.Unlock()

		c.metrics.transition(t)
		c.logger.LogAttrs(context.Background(), slog.LevelDebug, "transition",
			logger.EntryID(e.id),
			logger.Transition(t.String()),
		)
		c.apply(e, p)

		e.mu.Lock()
	}
	e.draining = false
	e.mu.Unlock()
}

// step applies t to the routing state. Callers hold e.mu.
func (c *Center) step(e *Entry, t transition) plan {
	if e.stage == stageFinished {
		return plan{}
	}

	switch t {
	case requestSend:
		if e.cancelRequested || e.stage != stageCreated {
			return plan{}
		}
		e.targets &= c.registeredMask()
		if e.targets == TargetNone {
			return deliverDefault(e)
		}
		e.stage = stagePending
		return plan{table: tableToPending, fan: fanSend, to: e.targets}

	case requestUpdate:
		if e.cancelRequested || e.stage != stageActive {
			return plan{}
		}
		live := e.live()
		if e.defaulted || live == TargetNone {
			return plan{notify: e.listenerEvent(EventUpdate)}
		}
		e.updates = 0
		e.updating = true
		e.round++
		return plan{fan: fanUpdate, to: live, round: e.round}

	case requestCancel:
		if e.stage == stageCreated {
			e.stage = stageFinished
			return plan{}
		}
		e.cancels |= e.ignores
		if e.targets == TargetNone || e.allCanceled() {
			return finish(e)
		}
		return plan{fan: fanCancel, to: e.targets &^ e.cancels}

	case sendFinished:
		if e.cancelRequested || e.sent {
			return plan{}
		}
		e.sent = true
		e.stage = stageActive
		return plan{table: tableToActive, notify: e.listenerEvent(EventArrival)}

	case sendIgnored:
		if e.cancelRequested {
			e.cancels |= e.ignores
			if e.allCanceled() {
				return finish(e)
			}
			return plan{}
		}
		if e.sent {
			return plan{}
		}
		if e.ignores&e.targets == e.targets {
			return deliverDefault(e)
		}
		if (e.cancels|e.ignores)&e.targets == e.targets {
			e.cancels |= e.ignores
			return finish(e)
		}
		return plan{}

	case updateFinished:
		if !e.updating || e.cancelRequested {
			return plan{}
		}
		live := e.live()
		if e.updates&live != live {
			return plan{}
		}
		e.updating = false
		return plan{notify: e.listenerEvent(EventUpdate)}

	case cancelFinished:
		e.cancels |= e.ignores
		if e.allCanceled() {
			return finish(e)
		}
		if e.updating {
			// the canceled target no longer counts towards the update
			e.queue.push(updateFinished)
		}
		return plan{}
	}
	return plan{}
}

func (c *Center) apply(e *Entry, p plan) {
	if p.table != tableNone {
		c.mu.Lock()
		switch p.table {
		case tableToPending:
			c.pending[e.id] = e
		case tableToActive:
			delete(c.pending, e.id)
			c.active[e.id] = e
		case tableRemove:
			delete(c.pending, e.id)
			delete(c.active, e.id)
		}
		active, pending := len(c.active), len(c.pending)
		c.mu.Unlock()
		c.metrics.setEntries(active, pending)
	}

	if p.notify != "" {
		c.notifyListeners(p.notify, e)
	}

	if p.fan == fanNone {
		return
	}
	for _, h := range c.handlersFor(p.to) {
		switch p.fan {
		case fanSend:
			h.onSendRequested(e)
		case fanUpdate:
			h.onUpdateRequested(e, p.round)
		case fanCancel:
			h.onCancelRequested(e)
		}
	}
}

// deliverDefault makes e active without any handler showing it.
func deliverDefault(e *Entry) plan {
	e.defaulted = true
	e.sent = true
	e.stage = stageActive
	return plan{table: tableToActive, notify: e.listenerEvent(EventArrival)}
}

// finish removes e for good. Listeners hear about it only if they heard
// about its arrival.
func finish(e *Entry) plan {
	p := plan{table: tableRemove}
	if e.sent {
		p.notify = e.listenerEvent(EventCancel)
	}
	e.stage = stageFinished
	e.updating = false
	e.queue = 0
	return p
}

// live returns the targets still showing e.
func (e *Entry) live() Target {
	return e.targets &^ e.cancels &^ e.ignores
}

func (e *Entry) allCanceled() bool {
	return e.cancels&e.targets == e.targets
}

func (e *Entry) listenerEvent(kind EventKind) EventKind {
	if !e.sendToListener {
		return ""
	}
	return kind
}
