package notify_test

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/notify"
)

type panickyBoard struct{}

func (panickyBoard) Show(*notify.Entry, func(bool))   { panic("show") }
func (panickyBoard) Update(*notify.Entry, func(bool)) { panic("update") }
func (panickyBoard) Dismiss(*notify.Entry, func())    { panic("dismiss") }
func (panickyBoard) DismissAll(func())                { panic("dismiss all") }

func TestHandler_RendererPanicIsIgnored(t *testing.T) {
	c, rec := newTestCenter(t)
	newLocal(t, c, panickyBoard{})

	e := notify.NewEntry(notify.TargetLocal)
	require.True(t, c.Send(e))

	require.Eventually(t, func() bool { return e.IsIgnored(notify.TargetLocal) }, waitFor, tick)
	require.Eventually(t, func() bool { return rec.arrivalCount() == 1 }, waitFor, tick)
	assert.True(t, c.HasEntry(e.ID()), "ignored everywhere means default delivery")
}

func TestHandler_RemoteNotifyError(t *testing.T) {
	c, _ := newTestCenter(t)
	bar := new(MockStatusBar)
	bar.On("Notify", mock.Anything).Return(errors.New("channel blocked"))
	newRemote(t, c, bar)

	e := notify.NewEntry(notify.TargetRemote)
	require.True(t, c.Send(e))
	require.Eventually(t, func() bool { return e.IsIgnored(notify.TargetRemote) }, waitFor, tick)
	assert.False(t, e.IsSentToTarget(notify.TargetRemote))
}

func TestHandler_RemoteCancelErrorStillAcknowledged(t *testing.T) {
	c, rec := newTestCenter(t)
	bar := new(MockStatusBar)
	bar.On("Notify", mock.Anything).Return(nil)
	bar.On("Cancel", mock.Anything).Return(errors.New("gone"))
	newRemote(t, c, bar)

	e := notify.NewEntry(notify.TargetRemote)
	require.True(t, c.Send(e))
	require.Eventually(t, func() bool { return rec.arrivalCount() == 1 }, waitFor, tick)

	require.True(t, c.CancelEntry(e))
	require.Eventually(t, func() bool { return !c.HasEntry(e.ID()) }, waitFor, tick)
	assert.True(t, e.IsCanceled(notify.TargetRemote))
}

func TestHandler_NilRenderers(t *testing.T) {
	tests := []struct {
		name   string
		target notify.Target
		setup  func(t *testing.T, c *notify.Center)
	}{
		{
			name:   "remote without status bar",
			target: notify.TargetRemote,
			setup:  func(t *testing.T, c *notify.Center) { newRemote(t, c, nil) },
		},
		{
			name:   "local without board",
			target: notify.TargetLocal,
			setup:  func(t *testing.T, c *notify.Center) { newLocal(t, c, nil) },
		},
		{
			name:   "global without overlay",
			target: notify.TargetGlobal,
			setup:  func(t *testing.T, c *notify.Center) { newGlobal(t, c, nil) },
		},
		{
			name:   "global without draw permission",
			target: notify.TargetGlobal,
			setup: func(t *testing.T, c *notify.Center) {
				ov := newManualBoard()
				ov.setCanDraw(false)
				newGlobal(t, c, ov)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newTestCenter(t)
			tt.setup(t, c)

			e := notify.NewEntry(tt.target)
			require.True(t, c.Send(e))
			require.Eventually(t, func() bool { return e.IsIgnored(tt.target) }, waitFor, tick)
			require.Eventually(t, func() bool { return rec.arrivalCount() == 1 }, waitFor, tick)
		})
	}
}

func TestLocalHandler_AttachDetach(t *testing.T) {
	c, _ := newTestCenter(t)
	local := newLocal(t, c, nil)
	assert.False(t, local.Attached())

	board := newManualBoard()
	assert.Nil(t, local.Attach(board))
	assert.True(t, local.Attached())

	e := notify.NewEntry(notify.TargetLocal)
	require.True(t, c.Send(e))
	require.Eventually(t, func() bool { return board.showCalls(e.ID()) == 1 }, waitFor, tick)

	assert.Same(t, board, local.Detach())
	assert.False(t, local.Attached())

	// without a board the cancel is acknowledged right away
	board.show(e.ID(), 0)(true)
	require.Eventually(t, func() bool { return e.IsSentToTarget(notify.TargetLocal) }, waitFor, tick)
	require.True(t, c.CancelEntry(e))
	require.Eventually(t, func() bool { return !c.HasEntry(e.ID()) }, waitFor, tick)
	assert.Zero(t, board.dismissCalls(e.ID()))
}

func TestGlobalHandler_SetOverlay(t *testing.T) {
	c, _ := newTestCenter(t)
	global := newGlobal(t, c, nil)
	assert.False(t, global.Attached())

	ov := newManualBoard()
	assert.Nil(t, global.SetOverlay(ov))
	assert.True(t, global.Attached())
	assert.Same(t, ov, global.SetOverlay(nil))
	assert.False(t, global.Attached())
}

func TestHandler_DisableDismissesShownEntries(t *testing.T) {
	c, rec := newTestCenter(t)
	board := newManualBoard()
	local := newLocal(t, c, board)

	e := notify.NewEntry(notify.TargetLocal)
	require.True(t, c.Send(e))
	require.Eventually(t, func() bool { return board.showCalls(e.ID()) == 1 }, waitFor, tick)
	board.show(e.ID(), 0)(true)
	require.Eventually(t, func() bool { return rec.arrivalCount() == 1 }, waitFor, tick)

	local.SetEnabled(false)
	assert.False(t, local.Enabled())
	require.Eventually(t, func() bool { return board.dismissAllCalls() == 1 }, waitFor, tick)
	board.releaseDismissAll()

	require.Eventually(t, func() bool { return !c.HasEntry(e.ID()) }, waitFor, tick)
	require.Eventually(t, func() bool { return rec.cancelCount() == 1 }, waitFor, tick)

	// disabled handlers ignore new sends
	next := notify.NewEntry(notify.TargetLocal)
	require.True(t, c.Send(next))
	assert.True(t, next.IsIgnored(notify.TargetLocal))

	local.SetEnabled(true)
	again := notify.NewEntry(notify.TargetLocal)
	require.True(t, c.Send(again))
	require.Eventually(t, func() bool { return board.showCalls(again.ID()) == 1 }, waitFor, tick)
}

func TestHandler_UpdateIgnoredCountsAsAcknowledged(t *testing.T) {
	c, rec := newTestCenter(t)
	board := newManualBoard()
	local := newLocal(t, c, board)

	e := notify.NewEntry(notify.TargetLocal)
	require.True(t, c.Send(e))
	require.Eventually(t, func() bool { return board.showCalls(e.ID()) == 1 }, waitFor, tick)
	board.show(e.ID(), 0)(true)
	require.Eventually(t, func() bool { return e.IsSentToTarget(notify.TargetLocal) }, waitFor, tick)
	settle(t, c, local.Handler)

	require.True(t, c.Update(e))
	require.Eventually(t, func() bool { return board.updateCalls(e.ID()) == 1 }, waitFor, tick)
	board.update(e.ID(), 0)(false)
	require.Eventually(t, func() bool { return rec.updateCount() == 1 }, waitFor, tick)
}

func TestHandler_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, rec := newTestCenter(t, notify.WithCenterRegisterer(reg))
	bar := new(MockStatusBar)
	bar.On("Notify", mock.Anything).Return(nil)
	bar.On("Cancel", mock.Anything).Return(nil)
	newRemote(t, c, bar)
	newLocal(t, c, nil)

	e := notify.NewEntry(notify.TargetRemote | notify.TargetLocal)
	require.True(t, c.Send(e))
	require.Eventually(t, func() bool { return rec.arrivalCount() == 1 }, waitFor, tick)
	require.Eventually(t, func() bool { return e.IsIgnored(notify.TargetLocal) }, waitFor, tick)

	require.True(t, c.CancelEntry(e))
	require.Eventually(t, func() bool { return rec.cancelCount() == 1 }, waitFor, tick)

	n, err := testutil.GatherAndCount(reg, "notify_handler_acks_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n, "send and cancel from remote, ignore from local")

	n, err = testutil.GatherAndCount(reg, "notify_center_transitions_total")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 4)

	n, err = testutil.GatherAndCount(reg, "notify_center_entries")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestHandler_DelayedArrival(t *testing.T) {
	c, rec := newTestCenter(t)
	newLocal(t, c, autoBoard{shown: true})

	start := time.Now()
	e := notify.NewBuilder(notify.TargetLocal).Delay(20 * time.Millisecond).Build()
	require.True(t, c.Send(e))
	require.Eventually(t, func() bool { return rec.arrivalCount() == 1 }, waitFor, tick)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}
