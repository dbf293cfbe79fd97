// Package console renders entries as text lines. It backs the demo
// application's status bar, banner board, overlay and effects device.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/notify"
	"github.com/dmitrymomot/notifykit/pkg/notify/display"
)

var (
	_ notify.StatusBar = (*StatusBar)(nil)
	_ notify.Board     = (*Board)(nil)
	_ notify.Overlay   = (*Overlay)(nil)
	_ notify.Effects   = (*Effects)(nil)
)

// Printer serializes writes from every renderer onto one writer.
type Printer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewPrinter wraps w. A nil w discards output.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = io.Discard
	}
	return &Printer{out: w}
}

// Printf writes one line prefixed with source.
func (p *Printer) Printf(source, format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%-8s "+format+"\n", append([]any{source}, args...)...)
}

func describe(e *notify.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d", e.ID())
	if e.Tag != "" {
		fmt.Fprintf(&b, " [%s]", e.Tag)
	}
	if e.Title != "" {
		fmt.Fprintf(&b, " %s", e.Title)
	}
	if e.Text != "" {
		fmt.Fprintf(&b, ": %s", e.Text)
	}
	return b.String()
}

// StatusBar prints the remote target.
type StatusBar struct {
	p *Printer
}

// NewStatusBar returns a status bar writing to p.
func NewStatusBar(p *Printer) *StatusBar { return &StatusBar{p: p} }

// Notify prints the posted entry.
func (s *StatusBar) Notify(e *notify.Entry) error {
	s.p.Printf("status", "notify %s", describe(e))
	return nil
}

// Cancel prints the removal of e.
func (s *StatusBar) Cancel(e *notify.Entry) error {
	s.p.Printf("status", "cancel #%d", e.ID())
	return nil
}

// CancelAll prints the removal of every posted entry.
func (s *StatusBar) CancelAll() error {
	s.p.Printf("status", "cancel all")
	return nil
}

// Board prints the local target and keeps what it shows in a priority
// queue, highest priority first.
type Board struct {
	p     *Printer
	name  string
	shown *display.Queue
}

// NewBoard returns a board labelled name in the output.
func NewBoard(p *Printer, name string) *Board {
	return &Board{p: p, name: name, shown: display.NewQueue()}
}

// Show queues e and prints it. An entry already shown is refused.
func (b *Board) Show(e *notify.Entry, done func(bool)) {
	if !b.shown.Push(e) {
		done(false)
		return
	}
	b.p.Printf(b.name, "show %s", describe(e))
	done(true)
}

// Update re-queues e with its current content. Unknown entries are refused.
func (b *Board) Update(e *notify.Entry, done func(bool)) {
	if !b.shown.Remove(e.ID()) {
		done(false)
		return
	}
	b.shown.Push(e)
	b.p.Printf(b.name, "update %s", describe(e))
	done(true)
}

// Dismiss drops e from the board.
func (b *Board) Dismiss(e *notify.Entry, done func()) {
	if b.shown.Remove(e.ID()) {
		b.p.Printf(b.name, "dismiss #%d", e.ID())
	}
	done()
}

// DismissAll empties the board.
func (b *Board) DismissAll(done func()) {
	for {
		if _, ok := b.shown.Pop(); !ok {
			break
		}
	}
	b.p.Printf(b.name, "dismiss all")
	done()
}

// Top returns the entry currently in front.
func (b *Board) Top() (*notify.Entry, bool) { return b.shown.Peek() }

// Shown returns the displayed entries in display order.
func (b *Board) Shown() []*notify.Entry { return b.shown.Items() }

// Overlay is a Board drawn over other applications. Drawing permission
// can be toggled at runtime.
type Overlay struct {
	*Board

	mu      sync.RWMutex
	allowed bool
}

// NewOverlay returns an overlay that may draw only while allowed is set.
func NewOverlay(p *Printer, allowed bool) *Overlay {
	return &Overlay{Board: NewBoard(p, "overlay"), allowed: allowed}
}

// CanDraw reports whether drawing over other apps is permitted.
func (o *Overlay) CanDraw() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.allowed
}

// SetAllowed grants or revokes the draw permission.
func (o *Overlay) SetAllowed(v bool) {
	o.mu.Lock()
	o.allowed = v
	o.mu.Unlock()
}

// Effects prints ringtone and vibration activity.
type Effects struct {
	p *Printer
}

// NewEffects returns an effects device writing to p.
func NewEffects(p *Printer) *Effects { return &Effects{p: p} }

// PlayRingtone prints the ringtone uri.
func (f *Effects) PlayRingtone(uri string) error {
	f.p.Printf("effects", "ring %s", uri)
	return nil
}

// StopRingtone prints the ringtone stop.
func (f *Effects) StopRingtone() { f.p.Printf("effects", "ring stop") }

// Vibrate prints the vibration pattern.
func (f *Effects) Vibrate(pattern []time.Duration) error {
	f.p.Printf("effects", "vibrate %v", pattern)
	return nil
}

// StopVibration prints the vibration stop.
func (f *Effects) StopVibration() { f.p.Printf("effects", "vibrate stop") }
