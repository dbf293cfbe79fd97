package notify

import "sync"

// Board is an in-process banner view. Every call reports completion
// through its callback, possibly from another goroutine.
type Board interface {
	Show(e *Entry, done func(shown bool))
	Update(e *Entry, done func(updated bool))
	Dismiss(e *Entry, done func())
	DismissAll(done func())
}

// LocalHandler delivers entries to a Board attached at runtime.
type LocalHandler struct {
	*Handler
	slot *boardSlot
}

// NewLocalHandler creates the local handler with no board attached.
func NewLocalHandler(opts ...HandlerOption) *LocalHandler {
	s := &boardSlot{}
	return &LocalHandler{Handler: newHandler(KindLocal, &localCaps{slot: s}, opts...), slot: s}
}

// Attach makes b the board for subsequent work and returns the previous one.
func (h *LocalHandler) Attach(b Board) Board { return h.slot.swap(b) }

// Detach removes the board. Sends are ignored until another is attached.
func (h *LocalHandler) Detach() Board { return h.slot.swap(nil) }

// Attached reports whether a board is attached.
func (h *LocalHandler) Attached() bool { return h.slot.get() != nil }

type boardSlot struct {
	mu    sync.RWMutex
	board Board
}

func (s *boardSlot) get() Board {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board
}

func (s *boardSlot) swap(b Board) Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.board
	s.board = b
	return prev
}

type localCaps struct {
	slot *boardSlot
}

func (l *localCaps) acceptSend(e *Entry, done func(bool)) {
	b := l.slot.get()
	if b == nil {
		done(false)
		return
	}
	b.Show(e, done)
}

func (l *localCaps) acceptUpdate(e *Entry, done func(bool)) {
	b := l.slot.get()
	if b == nil {
		done(false)
		return
	}
	b.Update(e, done)
}

func (l *localCaps) acceptCancel(e *Entry, done func()) {
	b := l.slot.get()
	if b == nil {
		done()
		return
	}
	b.Dismiss(e, done)
}

func (l *localCaps) acceptCancelAll(done func()) {
	b := l.slot.get()
	if b == nil {
		done()
		return
	}
	b.DismissAll(done)
}
