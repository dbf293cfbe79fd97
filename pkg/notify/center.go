package notify

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/looper"
)

// Center owns the pending and active entry tables and reconciles the
// acknowledgements reported by its Handlers.
type Center struct {
	logger     *slog.Logger
	main       *looper.Looper
	ownsMain   bool
	player     *EffectPlayer
	metrics    *metrics
	feed       *feed
	registerer prometheus.Registerer
	feedBuffer int

	enabled atomic.Bool

	hmu        sync.RWMutex
	handlers   [3]*Handler
	registered atomic.Uint32

	mu      sync.RWMutex
	active  map[int64]*Entry
	pending map[int64]*Entry

	lmu       sync.RWMutex
	listeners []Listener
}

// CenterOption configures a Center.
type CenterOption func(*Center)

// WithCenterLogger sets the logger for the Center.
func WithCenterLogger(l *slog.Logger) CenterOption {
	return func(c *Center) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMainLooper delivers listener callbacks on lp instead of a looper
// owned by the Center. The caller stops it.
func WithMainLooper(lp *looper.Looper) CenterOption {
	return func(c *Center) {
		if lp != nil {
			c.main = lp
		}
	}
}

// WithCenterRegisterer exports the Center's metrics to r.
func WithCenterRegisterer(r prometheus.Registerer) CenterOption {
	return func(c *Center) {
		c.registerer = r
	}
}

// WithFeedBuffer sets the per-subscriber event buffer.
func WithFeedBuffer(n int) CenterOption {
	return func(c *Center) {
		if n > 0 {
			c.feedBuffer = n
		}
	}
}

// WithEffectPlayer shares p with every registered Handler.
func WithEffectPlayer(p *EffectPlayer) CenterOption {
	return func(c *Center) {
		if p != nil {
			c.player = p
		}
	}
}

// NewCenter creates an enabled Center with no handlers.
func NewCenter(opts ...CenterOption) *Center {
	c := &Center{
		logger:     slog.Default(),
		metrics:    newMetrics(),
		feedBuffer: 64,
		active:     make(map[int64]*Entry),
		pending:    make(map[int64]*Entry),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.main == nil {
		c.main = looper.New("notify-main", looper.WithLogger(c.logger))
		c.ownsMain = true
	}
	if err := c.main.Start(); err != nil && c.ownsMain {
		c.logger.LogAttrs(context.Background(), slog.LevelError, "failed to start main looper",
			logger.Error(err),
		)
	}
	if c.player == nil {
		c.player = NewEffectPlayer(nil, WithPlayerLogger(c.logger))
	}
	c.feed = newFeed(c.feedBuffer, c.logger)
	if c.registerer != nil {
		if err := c.metrics.register(c.registerer); err != nil {
			c.logger.LogAttrs(context.Background(), slog.LevelWarn, "failed to register notify metrics",
				logger.Error(err),
			)
		}
	}
	c.enabled.Store(true)
	c.metrics.setEntries(0, 0)
	return c
}

// Registrable is implemented by *Handler and the handler variants that
// embed it.
type Registrable interface {
	base() *Handler
}

// Register binds h to its target bit. Each bit can be registered once.
func (c *Center) Register(r Registrable) error {
	if r == nil {
		return ErrNilHandler
	}
	h := r.base()
	if h == nil {
		return ErrNilHandler
	}
	idx := h.target.index()

	c.hmu.Lock()
	if c.handlers[idx] != nil {
		c.hmu.Unlock()
		return ErrHandlerRegistered
	}
	c.handlers[idx] = h
	c.registered.Store(c.registered.Load() | uint32(h.target))
	c.hmu.Unlock()

	h.bind(c)
	c.logger.LogAttrs(context.Background(), slog.LevelDebug, "handler registered",
		logger.Handler(h.kind.String()),
		logger.Target(h.target.String()),
	)
	return nil
}

// Handler returns the handler registered for the single-bit target t.
func (c *Center) Handler(t Target) (*Handler, bool) {
	idx := t.index()
	if idx < 0 {
		return nil, false
	}
	c.hmu.RLock()
	defer c.hmu.RUnlock()
	h := c.handlers[idx]
	return h, h != nil
}

func (c *Center) registeredMask() Target {
	return Target(c.registered.Load())
}

// handlersFor returns the registered handlers addressed by mask in target order.
func (c *Center) handlersFor(mask Target) []*Handler {
	c.hmu.RLock()
	defer c.hmu.RUnlock()
	out := make([]*Handler, 0, len(c.handlers))
	for _, t := range mask.Bits() {
		if h := c.handlers[t.index()]; h != nil {
			out = append(out, h)
		}
	}
	return out
}

// SetEnabled controls whether new sends are accepted.
func (c *Center) SetEnabled(enabled bool) {
	c.enabled.Store(enabled)
}

// Enabled reports whether new sends are accepted.
func (c *Center) Enabled() bool {
	return c.enabled.Load()
}

// Effects returns the player shared by the Center's handlers.
func (c *Center) Effects() *EffectPlayer {
	return c.player
}

// Send starts delivery of e, or updates it when it is already active.
// It returns false when nothing was queued.
func (c *Center) Send(e *Entry) bool {
	if e == nil {
		c.logger.LogAttrs(context.Background(), slog.LevelWarn, "send rejected",
			logger.Error(ErrNilEntry),
		)
		return false
	}
	if !c.Enabled() {
		c.logger.LogAttrs(context.Background(), slog.LevelDebug, "send rejected: center disabled",
			logger.EntryID(e.ID()),
		)
		return false
	}
	if !e.requestSend() {
		c.logger.LogAttrs(context.Background(), slog.LevelDebug, "send ignored",
			logger.EntryID(e.ID()),
			logger.Tag(e.Tag),
		)
		return false
	}
	c.reconcile(e)
	return true
}

// Update pushes changed content of an active entry to its targets.
func (c *Center) Update(e *Entry) bool {
	if e == nil {
		return false
	}
	if !e.requestUpdate() {
		c.logger.LogAttrs(context.Background(), slog.LevelDebug, "update ignored: entry not active",
			logger.EntryID(e.ID()),
		)
		return false
	}
	c.reconcile(e)
	return true
}

// Cancel requests cancellation of the entry with id. Unknown ids are
// logged and ignored.
func (c *Center) Cancel(id int64) bool {
	e, ok := c.Entry(id)
	if !ok {
		c.logger.LogAttrs(context.Background(), slog.LevelDebug, "cancel for unknown entry",
			logger.EntryID(id),
		)
		return false
	}
	return c.CancelEntry(e)
}

// CancelEntry requests cancellation of e. A repeated request is accepted
// but schedules nothing new.
func (c *Center) CancelEntry(e *Entry) bool {
	if e == nil || e.Finished() {
		return false
	}
	if e.requestCancel() {
		c.reconcile(e)
	}
	return true
}

// CancelTag cancels every held entry carrying tag and returns how many
// were found.
func (c *Center) CancelTag(tag string) int {
	if tag == "" {
		return 0
	}
	n := 0
	for _, e := range c.Entries(Query{Tag: tag}) {
		if c.CancelEntry(e) {
			n++
		}
	}
	return n
}

// CancelAll clears every handler and drops the entries delivered on the
// default path.
func (c *Center) CancelAll() {
	for _, h := range c.handlersFor(TargetAll) {
		h.cancelAll()
	}

	var canceled []*Entry
	dropped := 0
	c.mu.Lock()
	for _, table := range []map[int64]*Entry{c.active, c.pending} {
		for id, e := range table {
			e.mu.Lock()
			if e.stage != stageFinished && (e.targets == TargetNone || e.defaulted) {
				if e.sent && e.sendToListener {
					canceled = append(canceled, e)
				}
				e.stage = stageFinished
				e.queue = 0
				delete(table, id)
				dropped++
			}
			e.mu.Unlock()
		}
	}
	active, pending := len(c.active), len(c.pending)
	c.mu.Unlock()
	c.metrics.setEntries(active, pending)

	slices.SortFunc(canceled, byID)
	for _, e := range canceled {
		c.notifyListeners(EventCancel, e)
	}
	c.main.Post(func() { c.feed.publish(newEvent(EventCancelAll, nil)) })

	c.logger.LogAttrs(context.Background(), slog.LevelDebug, "cancel all",
		logger.Count(dropped),
	)
}

func (c *Center) onCancelAllFinished(h *Handler) {
	c.logger.LogAttrs(context.Background(), slog.LevelDebug, "handler cancel all finished",
		logger.Handler(h.kind.String()),
	)
	ev := newEvent(EventCancelAll, nil)
	ev.Targets = h.target
	c.main.Post(func() { c.feed.publish(ev) })
}

// HasEntry reports whether id is in the pending or active table.
func (c *Center) HasEntry(id int64) bool {
	_, ok := c.Entry(id)
	return ok
}

// Entry looks id up in the active table, then the pending one.
func (c *Center) Entry(id int64) (*Entry, bool) {
	e, _, ok := c.Lookup(id)
	return e, ok
}

// Lookup is Entry that also reports which table holds the entry.
func (c *Center) Lookup(id int64) (*Entry, Phase, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.active[id]; ok {
		return e, PhaseActive, true
	}
	if e, ok := c.pending[id]; ok {
		return e, PhasePending, true
	}
	return nil, PhaseAny, false
}

// Count returns the number of held entries matching q.
func (c *Center) Count(q Query) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, e := range c.active {
		if q.match(e, PhaseActive) {
			n++
		}
	}
	for _, e := range c.pending {
		if q.match(e, PhasePending) {
			n++
		}
	}
	return n
}

// Entries returns the held entries matching q ordered by id.
func (c *Center) Entries(q Query) []*Entry {
	c.mu.RLock()
	out := make([]*Entry, 0, len(c.active)+len(c.pending))
	for _, e := range c.active {
		if q.match(e, PhaseActive) {
			out = append(out, e)
		}
	}
	for _, e := range c.pending {
		if q.match(e, PhasePending) {
			out = append(out, e)
		}
	}
	c.mu.RUnlock()
	slices.SortFunc(out, byID)
	return out
}

// AddListener subscribes l to arrivals, updates and cancellations.
func (c *Center) AddListener(l Listener) {
	if l == nil {
		return
	}
	c.lmu.Lock()
	defer c.lmu.Unlock()
	if !slices.Contains(c.listeners, l) {
		c.listeners = append(c.listeners, l)
	}
}

// RemoveListener unsubscribes l.
func (c *Center) RemoveListener(l Listener) {
	c.lmu.Lock()
	defer c.lmu.Unlock()
	if i := slices.Index(c.listeners, l); i >= 0 {
		c.listeners = slices.Delete(c.listeners, i, i+1)
	}
}

// Subscribe returns an event feed subscription that ends with ctx.
func (c *Center) Subscribe(ctx context.Context) *Subscription {
	return c.feed.subscribe(ctx)
}

// Sync waits until every listener callback scheduled so far has run.
func (c *Center) Sync(ctx context.Context) error {
	return c.main.Sync(ctx)
}

// Close ends the event feed and stops the main looper if the Center owns it.
func (c *Center) Close(ctx context.Context) error {
	c.SetEnabled(false)
	if c.ownsMain {
		if err := c.main.Stop(ctx); err != nil {
			return err
		}
	}
	c.feed.close()
	return nil
}

func (c *Center) notifyListeners(kind EventKind, e *Entry) {
	c.main.Post(func() {
		c.lmu.RLock()
		listeners := slices.Clone(c.listeners)
		c.lmu.RUnlock()

		for _, l := range listeners {
			c.callListener(kind, l, e)
		}
		c.feed.publish(newEvent(kind, e))
	})
}

func (c *Center) callListener(kind EventKind, l Listener, e *Entry) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.LogAttrs(context.Background(), slog.LevelError, "listener panicked",
				logger.EntryID(e.ID()),
				slog.String("kind", string(kind)),
				slog.Any("panic", r),
			)
		}
	}()
	switch kind {
	case EventArrival:
		l.OnArrival(e)
	case EventUpdate:
		l.OnUpdate(e)
	case EventCancel:
		l.OnCancel(e)
	}
}

func byID(a, b *Entry) int {
	switch {
	case a.id < b.id:
		return -1
	case a.id > b.id:
		return 1
	}
	return 0
}
