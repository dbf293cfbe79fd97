package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/notifykit/pkg/logger"
)

type lifecycle uint8

const (
	stateIdle lifecycle = iota
	stateRunning
	stateClosed
)

// Delegater is the entry point for host applications. It builds a Center,
// the handlers for the requested components and the shared effect player,
// and forwards calls to them. It moves from idle to running on Init and
// to closed on Close; neither step can be repeated.
type Delegater struct {
	cfg        Config
	logger     *slog.Logger
	registerer prometheus.Registerer
	bar        StatusBar
	board      Board
	overlay    Overlay
	fx         Effects

	mu     sync.RWMutex
	state  lifecycle
	center *Center
	remote *RemoteHandler
	local  *LocalHandler
	global *GlobalHandler
}

// Option configures a Delegater.
type Option func(*Delegater)

// WithConfig replaces DefaultConfig.
func WithConfig(cfg Config) Option {
	return func(d *Delegater) {
		d.cfg = cfg
	}
}

// WithLogger sets the logger shared by every component. Without it the
// logger is built from the config's level and format.
func WithLogger(l *slog.Logger) Option {
	return func(d *Delegater) {
		d.logger = l
	}
}

// WithRegisterer exports the Center's metrics to r.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(d *Delegater) {
		d.registerer = r
	}
}

// WithStatusBar attaches bar to the remote handler at Init.
func WithStatusBar(bar StatusBar) Option {
	return func(d *Delegater) { d.bar = bar }
}

// WithBoard attaches b to the local handler at Init.
func WithBoard(b Board) Option {
	return func(d *Delegater) { d.board = b }
}

// WithOverlay attaches ov to the global handler at Init.
func WithOverlay(ov Overlay) Option {
	return func(d *Delegater) { d.overlay = ov }
}

// WithEffects sets the device used by the effect player.
func WithEffects(fx Effects) Option {
	return func(d *Delegater) { d.fx = fx }
}

// New creates an idle Delegater.
func New(opts ...Option) *Delegater {
	d := &Delegater{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Init builds the Center and registers a handler for every bit of
// components. TargetNone means the components named in the config.
func (d *Delegater) Init(ctx context.Context, components Target) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.state {
	case stateRunning:
		return ErrAlreadyInitialized
	case stateClosed:
		return ErrClosed
	}

	if components == TargetNone {
		mask, err := d.cfg.ComponentMask()
		if err != nil {
			return err
		}
		components = mask
	}
	components &= TargetAll

	log := d.logger
	if log == nil {
		log = logger.New(
			logger.WithLevelName(d.cfg.LogLevel),
			logger.WithFormat(logger.Format(d.cfg.LogFormat)),
		)
	}
	log = log.With(logger.Component("notify"))
	d.logger = log

	player := NewEffectPlayer(d.fx, WithPlayerLogger(log))
	player.SetEnabled(d.cfg.EffectsEnabled)

	center := NewCenter(
		WithCenterLogger(log),
		WithCenterRegisterer(d.registerer),
		WithFeedBuffer(d.cfg.FeedBuffer),
		WithEffectPlayer(player),
	)

	if components.Has(TargetRemote) {
		d.remote = NewRemoteHandler(d.bar, WithHandlerLogger(log))
		if err := center.Register(d.remote); err != nil {
			return err
		}
	}
	if components.Has(TargetLocal) {
		d.local = NewLocalHandler(WithHandlerLogger(log))
		if d.board != nil {
			d.local.Attach(d.board)
		}
		if err := center.Register(d.local); err != nil {
			return err
		}
	}
	if components.Has(TargetGlobal) {
		d.global = NewGlobalHandler(d.overlay, WithHandlerLogger(log))
		if err := center.Register(d.global); err != nil {
			return err
		}
	}
	center.SetEnabled(d.cfg.Enabled)

	d.center = center
	d.state = stateRunning
	log.LogAttrs(ctx, slog.LevelInfo, "notify initialized",
		logger.Target(components.String()),
	)
	return nil
}

// MustInit is like Init but panics on error.
func (d *Delegater) MustInit(ctx context.Context, components Target) {
	if err := d.Init(ctx, components); err != nil {
		panic(err)
	}
}

// Close stops every looper. Entries still held are abandoned.
func (d *Delegater) Close(ctx context.Context) error {
	d.mu.Lock()
	switch d.state {
	case stateIdle:
		d.state = stateClosed
		d.mu.Unlock()
		return nil
	case stateClosed:
		d.mu.Unlock()
		return nil
	}
	d.state = stateClosed
	center := d.center
	handlers := d.handlers()
	d.mu.Unlock()

	center.SetEnabled(false)
	g, gctx := errgroup.WithContext(ctx)
	for _, h := range handlers {
		g.Go(func() error { return h.Close(gctx) })
	}
	g.Go(func() error { return center.Close(gctx) })
	err := g.Wait()

	d.logger.LogAttrs(ctx, slog.LevelInfo, "notify closed")
	return err
}

func (d *Delegater) handlers() []*Handler {
	var out []*Handler
	if d.remote != nil {
		out = append(out, d.remote.Handler)
	}
	if d.local != nil {
		out = append(out, d.local.Handler)
	}
	if d.global != nil {
		out = append(out, d.global.Handler)
	}
	return out
}

// Handlers returns the initialized handlers in remote, local, global order.
func (d *Delegater) Handlers() []*Handler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.handlers()
}

// Err returns nil while the delegater is running, ErrNotInitialized before
// Init and ErrClosed after Close.
func (d *Delegater) Err() error {
	_, err := d.running()
	return err
}

func (d *Delegater) running() (*Center, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	switch d.state {
	case stateIdle:
		return nil, ErrNotInitialized
	case stateClosed:
		return nil, ErrClosed
	}
	return d.center, nil
}

// Send delivers e. It returns false, nil when the Center refused it.
func (d *Delegater) Send(e *Entry) (bool, error) {
	c, err := d.running()
	if err != nil {
		return false, err
	}
	if e == nil {
		return false, ErrNilEntry
	}
	return c.Send(e), nil
}

// Update re-renders an active entry on every target showing it.
func (d *Delegater) Update(e *Entry) (bool, error) {
	c, err := d.running()
	if err != nil {
		return false, err
	}
	if e == nil {
		return false, ErrNilEntry
	}
	return c.Update(e), nil
}

// Cancel cancels the held entry with id.
func (d *Delegater) Cancel(id int64) (bool, error) {
	c, err := d.running()
	if err != nil {
		return false, err
	}
	return c.Cancel(id), nil
}

// CancelEntry cancels e, even if it is not yet held.
func (d *Delegater) CancelEntry(e *Entry) (bool, error) {
	c, err := d.running()
	if err != nil {
		return false, err
	}
	if e == nil {
		return false, ErrNilEntry
	}
	return c.CancelEntry(e), nil
}

// CancelTag cancels every held entry tagged tag and returns how many.
func (d *Delegater) CancelTag(tag string) (int, error) {
	c, err := d.running()
	if err != nil {
		return 0, err
	}
	return c.CancelTag(tag), nil
}

// CancelAll clears every handler and every held entry.
func (d *Delegater) CancelAll() error {
	c, err := d.running()
	if err != nil {
		return err
	}
	c.CancelAll()
	return nil
}

// AddListener subscribes l to arrivals, updates and cancellations.
func (d *Delegater) AddListener(l Listener) error {
	c, err := d.running()
	if err != nil {
		return err
	}
	c.AddListener(l)
	return nil
}

// RemoveListener unsubscribes l.
func (d *Delegater) RemoveListener(l Listener) error {
	c, err := d.running()
	if err != nil {
		return err
	}
	c.RemoveListener(l)
	return nil
}

// Subscribe returns an event feed subscription bound to ctx.
func (d *Delegater) Subscribe(ctx context.Context) (*Subscription, error) {
	c, err := d.running()
	if err != nil {
		return nil, err
	}
	return c.Subscribe(ctx), nil
}

// Remote returns the remote handler, or nil if it was not initialized.
func (d *Delegater) Remote() *RemoteHandler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.remote
}

// Local returns the local handler, or nil if it was not initialized.
func (d *Delegater) Local() *LocalHandler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.local
}

// Global returns the global handler, or nil if it was not initialized.
func (d *Delegater) Global() *GlobalHandler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.global
}

// Count returns the number of held entries, zero before Init.
func (d *Delegater) Count() int {
	c, err := d.running()
	if err != nil {
		return 0
	}
	return c.Count(Query{})
}

// CountTag returns the number of held entries tagged tag.
func (d *Delegater) CountTag(tag string) int {
	c, err := d.running()
	if err != nil {
		return 0
	}
	return c.Count(Query{Tag: tag})
}

// HasEntry reports whether an entry with id is held.
func (d *Delegater) HasEntry(id int64) bool {
	c, err := d.running()
	if err != nil {
		return false
	}
	return c.HasEntry(id)
}

// Lookup returns the held entry with id and the phase it is in.
func (d *Delegater) Lookup(id int64) (*Entry, Phase, bool) {
	c, err := d.running()
	if err != nil {
		return nil, PhaseAny, false
	}
	return c.Lookup(id)
}

// Entries returns the held entries matching q, sorted by id.
func (d *Delegater) Entries(q Query) []*Entry {
	c, err := d.running()
	if err != nil {
		return nil
	}
	return c.Entries(q)
}

// SetEnabled controls whether the Center accepts new sends.
func (d *Delegater) SetEnabled(enabled bool) error {
	c, err := d.running()
	if err != nil {
		return err
	}
	c.SetEnabled(enabled)
	return nil
}

// Enabled reports whether the Center accepts new sends. False before Init.
func (d *Delegater) Enabled() bool {
	c, err := d.running()
	if err != nil {
		return false
	}
	return c.Enabled()
}

// Center returns the underlying Center, or nil before Init.
func (d *Delegater) Center() *Center {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.center
}

// Effects returns the shared effect player, or nil before Init.
func (d *Delegater) Effects() *EffectPlayer {
	c := d.Center()
	if c == nil {
		return nil
	}
	return c.Effects()
}
