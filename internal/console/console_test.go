package console_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/internal/console"
	"github.com/dmitrymomot/notifykit/pkg/notify"
)

func TestBoardOrdersByPriority(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	b := console.NewBoard(console.NewPrinter(&buf), "board")

	low := notify.NewBuilder(notify.TargetLocal).Title("low").Priority(0).Build()
	high := notify.NewBuilder(notify.TargetLocal).Title("high").Priority(2).Build()

	var shown []bool
	b.Show(low, func(ok bool) { shown = append(shown, ok) })
	b.Show(high, func(ok bool) { shown = append(shown, ok) })
	b.Show(high, func(ok bool) { shown = append(shown, ok) })
	assert.Equal(t, []bool{true, true, false}, shown)

	top, ok := b.Top()
	require.True(t, ok)
	assert.Equal(t, high.ID(), top.ID())

	dismissed := false
	b.Dismiss(high, func() { dismissed = true })
	assert.True(t, dismissed)
	top, ok = b.Top()
	require.True(t, ok)
	assert.Equal(t, low.ID(), top.ID())

	assert.Contains(t, buf.String(), "show #")
	assert.Contains(t, buf.String(), "high")
}

func TestBoardUpdateUnknown(t *testing.T) {
	t.Parallel()

	b := console.NewBoard(console.NewPrinter(nil), "board")
	e := notify.NewBuilder(notify.TargetLocal).Build()

	var updated bool
	b.Update(e, func(ok bool) { updated = ok })
	assert.False(t, updated)

	b.Show(e, func(bool) {})
	b.Update(e, func(ok bool) { updated = ok })
	assert.True(t, updated)
	assert.Len(t, b.Shown(), 1)

	b.DismissAll(func() {})
	assert.Empty(t, b.Shown())
}

func TestOverlayPermission(t *testing.T) {
	t.Parallel()

	ov := console.NewOverlay(console.NewPrinter(nil), false)
	assert.False(t, ov.CanDraw())
	ov.SetAllowed(true)
	assert.True(t, ov.CanDraw())
}

func TestStatusBarAndEffectsOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := console.NewPrinter(&buf)
	bar := console.NewStatusBar(p)
	fx := console.NewEffects(p)

	e := notify.NewBuilder(notify.TargetRemote).Title("hello").Tag("chat").Build()
	require.NoError(t, bar.Notify(e))
	require.NoError(t, bar.Cancel(e))
	require.NoError(t, bar.CancelAll())
	require.NoError(t, fx.PlayRingtone("bell"))
	fx.StopRingtone()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "status"))
	assert.Contains(t, lines[0], "[chat] hello")
	assert.Contains(t, lines[3], "ring bell")
}
