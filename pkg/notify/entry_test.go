package notify_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/notify"
)

func TestTarget(t *testing.T) {
	tests := []struct {
		target notify.Target
		str    string
		bits   []notify.Target
	}{
		{target: notify.TargetNone, str: "none"},
		{target: notify.TargetRemote, str: "remote", bits: []notify.Target{notify.TargetRemote}},
		{target: notify.TargetRemote | notify.TargetGlobal, str: "remote|global", bits: []notify.Target{notify.TargetRemote, notify.TargetGlobal}},
		{target: notify.TargetAll, str: "remote|local|global", bits: []notify.Target{notify.TargetRemote, notify.TargetLocal, notify.TargetGlobal}},
	}
	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			assert.Equal(t, tt.str, tt.target.String())
			assert.Equal(t, tt.bits, tt.target.Bits())
		})
	}

	assert.True(t, notify.TargetAll.Has(notify.TargetLocal))
	assert.True(t, notify.TargetAll.Has(notify.TargetLocal|notify.TargetRemote))
	assert.False(t, notify.TargetLocal.Has(notify.TargetLocal|notify.TargetRemote))
	assert.False(t, notify.TargetAll.Has(notify.TargetNone))
}

func TestParseTargets(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    notify.Target
		wantErr bool
	}{
		{name: "empty", in: nil, want: notify.TargetNone},
		{name: "single", in: []string{"remote"}, want: notify.TargetRemote},
		{name: "case and spaces", in: []string{" Local ", "GLOBAL", ""}, want: notify.TargetLocal | notify.TargetGlobal},
		{name: "all", in: []string{"all"}, want: notify.TargetAll},
		{name: "unknown", in: []string{"remote", "pager"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := notify.ParseTargets(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, notify.ErrUnknownTarget)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEntry_IDsAreMonotonic(t *testing.T) {
	const workers, perWorker = 8, 200

	var mu sync.Mutex
	seen := make(map[int64]struct{}, workers*perWorker)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prev := int64(0)
			for range perWorker {
				id := notify.NewEntry(notify.TargetNone).ID()
				assert.Greater(t, id, prev)
				prev = id

				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, workers*perWorker)

	a := notify.NewEntry(notify.TargetNone)
	b := notify.NewBuilder(notify.TargetNone).Build()
	assert.Greater(t, b.ID(), a.ID())
}

func TestBuilder_Build(t *testing.T) {
	when := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	b := notify.NewBuilder(notify.TargetRemote|notify.TargetLocal).
		Title("Build finished").
		Text("main is green").
		Icon("ci.png").
		When(when).
		Priority(2).
		Tag("ci").
		Ongoing(true).
		AutoCancel(true).
		Ringtone("chime").
		Vibrate(100*time.Millisecond, 50*time.Millisecond).
		Delay(time.Second).
		Extra("run", 42)

	e := b.Build()
	assert.Equal(t, "Build finished", e.Title)
	assert.Equal(t, "main is green", e.Text)
	assert.Equal(t, "ci.png", e.Icon)
	assert.Equal(t, when, e.When)
	assert.Equal(t, 2, e.Priority)
	assert.Equal(t, "ci", e.Tag)
	assert.True(t, e.Ongoing)
	assert.True(t, e.AutoCancel)
	assert.Equal(t, "chime", e.Ringtone)
	assert.True(t, e.Vibrate)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 50 * time.Millisecond}, e.VibratePattern)
	assert.Equal(t, time.Second, e.Delay)
	assert.Equal(t, map[string]any{"run": 42}, e.Extra)
	assert.Equal(t, notify.TargetRemote|notify.TargetLocal, e.Targets())
	assert.True(t, e.WantsEffect())
	assert.True(t, e.SendToListener())
	assert.False(t, e.Sent())
	assert.Contains(t, e.String(), `tag="ci"`)

	other := b.Build()
	assert.NotEqual(t, e.ID(), other.ID())
	other.Extra["run"] = 7
	assert.Equal(t, 42, e.Extra["run"], "entries do not share extras")
}

func TestBuilder_Defaults(t *testing.T) {
	e := notify.NewBuilder(notify.Target(0xff)).HandlerOnly().Build()
	assert.Equal(t, notify.TargetAll, e.Targets(), "unknown bits are dropped")
	assert.False(t, e.SendToListener())
	assert.False(t, e.When.IsZero())
	assert.False(t, e.WantsEffect())
	assert.Nil(t, e.Extra)
}
