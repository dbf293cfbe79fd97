package notify

// Overlay is a floating window drawn above other applications.
type Overlay interface {
	Board
	// CanDraw reports whether the host currently grants overlay permission.
	CanDraw() bool
}

// GlobalHandler delivers entries to a floating Overlay.
type GlobalHandler struct {
	*Handler
	slot *boardSlot
}

// NewGlobalHandler creates the global handler. A nil overlay, or one that
// cannot draw, ignores every send.
func NewGlobalHandler(ov Overlay, opts ...HandlerOption) *GlobalHandler {
	s := &boardSlot{}
	if ov != nil {
		s.board = ov
	}
	return &GlobalHandler{Handler: newHandler(KindGlobal, &globalCaps{slot: s}, opts...), slot: s}
}

// SetOverlay swaps the overlay and returns the previous one.
func (h *GlobalHandler) SetOverlay(ov Overlay) Overlay {
	var b Board
	if ov != nil {
		b = ov
	}
	prev, _ := h.slot.swap(b).(Overlay)
	return prev
}

// Attached reports whether an overlay is attached.
func (h *GlobalHandler) Attached() bool { return h.slot.get() != nil }

type globalCaps struct {
	slot *boardSlot
}

func (g *globalCaps) overlay() Overlay {
	ov, _ := g.slot.get().(Overlay)
	return ov
}

func (g *globalCaps) acceptSend(e *Entry, done func(bool)) {
	ov := g.overlay()
	if ov == nil || !ov.CanDraw() {
		done(false)
		return
	}
	ov.Show(e, done)
}

func (g *globalCaps) acceptUpdate(e *Entry, done func(bool)) {
	ov := g.overlay()
	if ov == nil || !ov.CanDraw() {
		done(false)
		return
	}
	ov.Update(e, done)
}

func (g *globalCaps) acceptCancel(e *Entry, done func()) {
	ov := g.overlay()
	if ov == nil {
		done()
		return
	}
	ov.Dismiss(e, done)
}

func (g *globalCaps) acceptCancelAll(done func()) {
	ov := g.overlay()
	if ov == nil {
		done()
		return
	}
	ov.DismissAll(done)
}
