package notify

import (
	"maps"
	"slices"
	"time"
)

// Builder assembles an Entry with chained setters.
type Builder struct {
	targets     Target
	handlerOnly bool
	content     Entry
}

// NewBuilder starts an entry addressed to targets.
func NewBuilder(targets Target) *Builder {
	return &Builder{targets: targets}
}

// Content setters; each returns b.
func (b *Builder) Title(s string) *Builder    { b.content.Title = s; return b }
func (b *Builder) Text(s string) *Builder     { b.content.Text = s; return b }
func (b *Builder) Icon(s string) *Builder     { b.content.Icon = s; return b }
func (b *Builder) When(t time.Time) *Builder  { b.content.When = t; return b }
func (b *Builder) Priority(p int) *Builder    { b.content.Priority = p; return b }
func (b *Builder) Tag(s string) *Builder      { b.content.Tag = s; return b }
func (b *Builder) Ongoing(v bool) *Builder    { b.content.Ongoing = v; return b }
func (b *Builder) AutoCancel(v bool) *Builder { b.content.AutoCancel = v; return b }
func (b *Builder) Ringtone(uri string) *Builder {
	b.content.Ringtone = uri
	return b
}

// Vibrate enables vibration with an optional on/off pattern.
func (b *Builder) Vibrate(pattern ...time.Duration) *Builder {
	b.content.Vibrate = true
	b.content.VibratePattern = pattern
	return b
}

// Delay postpones the arrival on every handler by d.
func (b *Builder) Delay(d time.Duration) *Builder {
	b.content.Delay = d
	return b
}

func (b *Builder) Extra(key string, value any) *Builder {
	if b.content.Extra == nil {
		b.content.Extra = make(map[string]any)
	}
	b.content.Extra[key] = value
	return b
}

// HandlerOnly keeps the entry away from listeners and the event feed.
func (b *Builder) HandlerOnly() *Builder {
	b.handlerOnly = true
	return b
}

// Build returns a new Entry with the next id. The builder can be reused;
// every call yields a distinct entry.
func (b *Builder) Build() *Entry {
	e := NewEntry(b.targets)
	e.Title = b.content.Title
	e.Text = b.content.Text
	e.Icon = b.content.Icon
	e.When = b.content.When
	e.Priority = b.content.Priority
	e.Tag = b.content.Tag
	e.Ongoing = b.content.Ongoing
	e.AutoCancel = b.content.AutoCancel
	e.Ringtone = b.content.Ringtone
	e.Vibrate = b.content.Vibrate
	e.VibratePattern = slices.Clone(b.content.VibratePattern)
	e.Delay = b.content.Delay
	e.Extra = maps.Clone(b.content.Extra)
	if e.When.IsZero() {
		e.When = time.Now()
	}
	e.sendToListener = !b.handlerOnly
	return e
}
