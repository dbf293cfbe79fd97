package notify_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notify"
)

const (
	waitFor = time.Second
	tick    = 2 * time.Millisecond
)

// MockStatusBar is a mock remote renderer.
type MockStatusBar struct {
	mock.Mock
}

func (m *MockStatusBar) Notify(e *notify.Entry) error {
	args := m.Called(e)
	return args.Error(0)
}

func (m *MockStatusBar) Cancel(e *notify.Entry) error {
	args := m.Called(e)
	return args.Error(0)
}

func (m *MockStatusBar) CancelAll() error {
	args := m.Called()
	return args.Error(0)
}

// MockEffects is a mock effect device.
type MockEffects struct {
	mock.Mock
}

func (m *MockEffects) PlayRingtone(uri string) error {
	args := m.Called(uri)
	return args.Error(0)
}

func (m *MockEffects) StopRingtone() { m.Called() }

func (m *MockEffects) Vibrate(pattern []time.Duration) error {
	args := m.Called(pattern)
	return args.Error(0)
}

func (m *MockEffects) StopVibration() { m.Called() }

// manualBoard holds every callback until the test releases it.
type manualBoard struct {
	mu         sync.Mutex
	shows      map[int64][]func(bool)
	updates    map[int64][]func(bool)
	dismisses  map[int64][]func()
	dismissAll []func()
	canDraw    bool
}

func newManualBoard() *manualBoard {
	return &manualBoard{
		shows:     make(map[int64][]func(bool)),
		updates:   make(map[int64][]func(bool)),
		dismisses: make(map[int64][]func()),
		canDraw:   true,
	}
}

func (b *manualBoard) Show(e *notify.Entry, done func(bool)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shows[e.ID()] = append(b.shows[e.ID()], done)
}

func (b *manualBoard) Update(e *notify.Entry, done func(bool)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updates[e.ID()] = append(b.updates[e.ID()], done)
}

func (b *manualBoard) Dismiss(e *notify.Entry, done func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dismisses[e.ID()] = append(b.dismisses[e.ID()], done)
}

func (b *manualBoard) DismissAll(done func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dismissAll = append(b.dismissAll, done)
}

func (b *manualBoard) CanDraw() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.canDraw
}

func (b *manualBoard) setCanDraw(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.canDraw = v
}

func (b *manualBoard) showCalls(id int64) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.shows[id])
}

func (b *manualBoard) updateCalls(id int64) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.updates[id])
}

func (b *manualBoard) dismissCalls(id int64) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.dismisses[id])
}

func (b *manualBoard) dismissAllCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.dismissAll)
}

func (b *manualBoard) show(id int64, i int) func(bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shows[id][i]
}

func (b *manualBoard) update(id int64, i int) func(bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.updates[id][i]
}

func (b *manualBoard) dismiss(id int64, i int) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dismisses[id][i]
}

func (b *manualBoard) releaseDismissAll() {
	b.mu.Lock()
	calls := b.dismissAll
	b.dismissAll = nil
	b.mu.Unlock()
	for _, done := range calls {
		done()
	}
}

// autoBoard answers every call immediately.
type autoBoard struct {
	shown bool
}

func (b autoBoard) Show(_ *notify.Entry, done func(bool))   { done(b.shown) }
func (b autoBoard) Update(_ *notify.Entry, done func(bool)) { done(b.shown) }
func (autoBoard) Dismiss(_ *notify.Entry, done func())      { done() }
func (autoBoard) DismissAll(done func())                    { done() }

// recorder is a Listener collecting entry ids per callback.
type recorder struct {
	mu       sync.Mutex
	arrivals []int64
	updates  []int64
	cancels  []int64
}

func (r *recorder) OnArrival(e *notify.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.arrivals = append(r.arrivals, e.ID())
}

func (r *recorder) OnUpdate(e *notify.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, e.ID())
}

func (r *recorder) OnCancel(e *notify.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancels = append(r.cancels, e.ID())
}

func (r *recorder) counts() (arrivals, updates, cancels int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.arrivals), len(r.updates), len(r.cancels)
}

func (r *recorder) arrivalCount() int {
	n, _, _ := r.counts()
	return n
}

func (r *recorder) updateCount() int {
	_, n, _ := r.counts()
	return n
}

func (r *recorder) cancelCount() int {
	_, _, n := r.counts()
	return n
}

func newTestCenter(t *testing.T, opts ...notify.CenterOption) (*notify.Center, *recorder) {
	t.Helper()
	opts = append([]notify.CenterOption{notify.WithCenterLogger(logger.Discard())}, opts...)
	c := notify.NewCenter(opts...)
	rec := &recorder{}
	c.AddListener(rec)
	t.Cleanup(func() {
		_ = c.Close(context.Background())
	})
	return c, rec
}

func closeHandler(t *testing.T, h interface{ Close(context.Context) error }) {
	t.Helper()
	t.Cleanup(func() {
		_ = h.Close(context.Background())
	})
}

func newRemote(t *testing.T, c *notify.Center, bar notify.StatusBar) *notify.RemoteHandler {
	t.Helper()
	h := notify.NewRemoteHandler(bar, notify.WithHandlerLogger(logger.Discard()))
	require.NoError(t, c.Register(h))
	closeHandler(t, h)
	return h
}

func newLocal(t *testing.T, c *notify.Center, b notify.Board) *notify.LocalHandler {
	t.Helper()
	h := notify.NewLocalHandler(notify.WithHandlerLogger(logger.Discard()))
	if b != nil {
		h.Attach(b)
	}
	require.NoError(t, c.Register(h))
	closeHandler(t, h)
	return h
}

func newGlobal(t *testing.T, c *notify.Center, ov notify.Overlay) *notify.GlobalHandler {
	t.Helper()
	h := notify.NewGlobalHandler(ov, notify.WithHandlerLogger(logger.Discard()))
	require.NoError(t, c.Register(h))
	closeHandler(t, h)
	return h
}

// settle waits for the handler and main loopers to run what is queued.
func settle(t *testing.T, c *notify.Center, hs ...*notify.Handler) {
	t.Helper()
	ctx := context.Background()
	for _, h := range hs {
		require.NoError(t, h.Looper().Sync(ctx))
	}
	require.NoError(t, c.Sync(ctx))
}
