package notify

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

var lastEntryID atomic.Int64

type stage uint8

const (
	stageCreated stage = iota
	stagePending
	stageActive
	stageFinished
)

// Entry is one notification: its content and its routing state.
//
// Content fields may be set freely until the entry is first sent and are
// treated as read-only afterwards, except between an update request and
// its acknowledgement. Routing state belongs to the Center and its Handlers.
type Entry struct {
	Title          string
	Text           string
	Icon           string
	When           time.Time
	Priority       int
	Tag            string
	Ongoing        bool
	AutoCancel     bool
	Ringtone       string
	Vibrate        bool
	VibratePattern []time.Duration
	// Delay postpones the arrival on every handler.
	Delay time.Duration
	Extra map[string]any

	id int64

	mu       sync.Mutex
	targets  Target
	ignores  Target
	sends    Target
	updates  Target
	cancels  Target
	effects  Target
	queue    transitionSet
	draining bool
	stage    stage
	// round numbers update fan-outs; acks from an earlier round are stale
	round uint64

	sent            bool
	sendToListener  bool
	cancelRequested bool
	defaulted       bool
	updating        bool
}

// NewEntry creates an entry addressed to targets with a send request queued.
func NewEntry(targets Target) *Entry {
	e := &Entry{
		id:             lastEntryID.Add(1),
		targets:        targets & TargetAll,
		sendToListener: true,
	}
	e.queue.push(requestSend)
	return e
}

// ID returns the process-unique entry id.
func (e *Entry) ID() int64 { return e.id }

// Targets returns the targets the entry is addressed to.
func (e *Entry) Targets() Target {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.targets
}

// IsSentToTarget reports whether target t finished showing the entry.
func (e *Entry) IsSentToTarget(t Target) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sends.Has(t)
}

// IsCanceled reports whether target t acknowledged cancellation.
func (e *Entry) IsCanceled(t Target) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cancels.Has(t)
}

// IsIgnored reports whether target t declined to show the entry.
func (e *Entry) IsIgnored(t Target) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ignores.Has(t)
}

// HasEffect reports whether target t owns the effect player for this entry.
func (e *Entry) HasEffect(t Target) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.effects.Has(t)
}

// WantsEffect reports whether the entry asks for a ringtone or vibration.
func (e *Entry) WantsEffect() bool {
	return e.Ringtone != "" || e.Vibrate
}

// Sent reports whether listeners were told about the arrival.
func (e *Entry) Sent() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sent
}

// SendToListener reports whether listeners hear about this entry at all.
func (e *Entry) SendToListener() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sendToListener
}

// CancelRequested reports whether a cancel was requested.
func (e *Entry) CancelRequested() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cancelRequested
}

// Finished reports whether the entry has left the Center for good.
func (e *Entry) Finished() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stage == stageFinished
}

func (e *Entry) String() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fmt.Sprintf("Entry{id=%d tag=%q targets=%s sends=%s ignores=%s cancels=%s}",
		e.id, e.Tag, e.targets, e.sends, e.ignores, e.cancels)
}

// requestSend queues a send for a fresh entry or an update for an active
// one. It reports whether anything was queued.
func (e *Entry) requestSend() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancelRequested {
		return false
	}
	switch e.stage {
	case stageCreated:
		e.queue.push(requestSend)
		return true
	case stageActive:
		e.queue.push(requestUpdate)
		return true
	}
	return false
}

func (e *Entry) requestUpdate() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancelRequested || e.stage != stageActive {
		return false
	}
	e.queue.push(requestUpdate)
	return true
}

// requestCancel marks the entry canceled. Repeated calls queue nothing new.
// It reports whether this call made the request.
func (e *Entry) requestCancel() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancelRequested || e.stage == stageFinished {
		return false
	}
	e.cancelRequested = true
	e.queue.remove(requestUpdate)
	e.queue.push(requestCancel)
	return true
}

// addressed reports whether t is one of the entry's targets.
func (e *Entry) addressed(t Target) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.targets.Has(t)
}

func (e *Entry) ackSend(t Target, shown bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if shown {
		e.sends |= t
		e.queue.push(sendFinished)
		return
	}
	e.ignores |= t
	e.queue.push(sendIgnored)
}

// ackUpdate records t's acknowledgement of update round. It reports false
// for an ack that belongs to an earlier round.
func (e *Entry) ackUpdate(t Target, round uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if round != e.round {
		return false
	}
	e.updates |= t
	e.queue.push(updateFinished)
	return true
}

func (e *Entry) ackCancel(t Target) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancels |= t
	e.queue.push(cancelFinished)
}

func (e *Entry) setEffect(t Target, owned bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if owned {
		e.effects |= t
	} else {
		e.effects &^= t
	}
}

// masks returns the routing masks under a single lock.
func (e *Entry) masks() (targets, sends, ignores, cancels Target) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.targets, e.sends, e.ignores, e.cancels
}
