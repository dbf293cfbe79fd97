package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// EventKind names what happened to an entry.
type EventKind string

const (
	EventArrival   EventKind = "arrival"
	EventUpdate    EventKind = "update"
	EventCancel    EventKind = "cancel"
	EventCancelAll EventKind = "cancel_all"
)

// Event is the feed form of a listener callback.
type Event struct {
	ID      uuid.UUID `json:"id"`
	Kind    EventKind `json:"kind"`
	EntryID int64     `json:"entry_id,omitempty"`
	Tag     string    `json:"tag,omitempty"`
	Targets Target    `json:"targets"`
	At      time.Time `json:"at"`
}

func newEvent(kind EventKind, e *Entry) Event {
	ev := Event{ID: uuid.New(), Kind: kind, At: time.Now()}
	if e != nil {
		ev.EntryID = e.ID()
		ev.Tag = e.Tag
		ev.Targets = e.Targets()
	}
	return ev
}

// Subscription receives feed events until it is closed or its context ends.
type Subscription struct {
	id     uuid.UUID
	ch     chan Event
	done   chan struct{}
	mu     sync.RWMutex
	closed bool
	feed   *feed
}

// ID identifies the subscription in logs.
func (s *Subscription) ID() uuid.UUID { return s.id }

// C returns the event channel. It is closed when the subscription ends.
func (s *Subscription) C() <-chan Event { return s.ch }

// Close ends the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	if s.feed != nil {
		s.feed.unsubscribe(s)
		return
	}
	s.close()
}

func (s *Subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
		close(s.done)
	}
}

func (s *Subscription) send(ev Event) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return true
	}
	select {
	case s.ch <- ev:
		return true
	default:
		return false
	}
}

// feed fans events out to subscribers without ever blocking the publisher.
// A subscriber whose buffer is full misses the event.
type feed struct {
	logger *slog.Logger
	buffer int

	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	closed bool
	wg     sync.WaitGroup
}

func newFeed(buffer int, l *slog.Logger) *feed {
	return &feed{
		logger: l,
		buffer: max(buffer, 1),
		subs:   make(map[*Subscription]struct{}),
	}
}

func (f *feed) subscribe(ctx context.Context) *Subscription {
	s := &Subscription{
		id:   uuid.New(),
		ch:   make(chan Event, f.buffer),
		done: make(chan struct{}),
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		s.close()
		return s
	}
	s.feed = f
	f.subs[s] = struct{}{}

	if ctx.Done() != nil {
		f.wg.Add(1)
		go func() {
			defer f.wg.Done()
			select {
			case <-ctx.Done():
				f.unsubscribe(s)
			case <-s.done:
			}
		}()
	}
	return s
}

func (f *feed) publish(ev Event) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return
	}
	for s := range f.subs {
		if !s.send(ev) {
			f.logger.LogAttrs(context.Background(), slog.LevelDebug, "dropped event for slow subscriber",
				logger.SubscriberID(s.id),
				slog.String("kind", string(ev.Kind)),
				logger.EntryID(ev.EntryID),
			)
		}
	}
}

func (f *feed) unsubscribe(s *Subscription) {
	f.mu.Lock()
	delete(f.subs, s)
	f.mu.Unlock()
	s.close()
}

func (f *feed) close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	for s := range f.subs {
		s.close()
	}
	clear(f.subs)
	f.mu.Unlock()
	f.wg.Wait()
}
