package notify_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/notify"
)

func receive(t *testing.T, sub *notify.Subscription) notify.Event {
	t.Helper()
	select {
	case ev, ok := <-sub.C():
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(waitFor):
		t.Fatal("no event")
	}
	return notify.Event{}
}

func TestFeed_DeliversLifecycleEvents(t *testing.T) {
	c, _ := newTestCenter(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := c.Subscribe(ctx)

	e := notify.NewBuilder(notify.TargetNone).Tag("chat").Build()
	require.True(t, c.Send(e))
	require.True(t, c.Update(e))
	require.True(t, c.CancelEntry(e))

	for _, kind := range []notify.EventKind{notify.EventArrival, notify.EventUpdate, notify.EventCancel} {
		ev := receive(t, sub)
		assert.Equal(t, kind, ev.Kind)
		assert.Equal(t, e.ID(), ev.EntryID)
		assert.Equal(t, "chat", ev.Tag)
		assert.NotEqual(t, ev.ID.String(), "00000000-0000-0000-0000-000000000000")
		assert.False(t, ev.At.IsZero())
	}

	c.CancelAll()
	assert.Equal(t, notify.EventCancelAll, receive(t, sub).Kind)
}

func TestFeed_SlowSubscriberDropsEvents(t *testing.T) {
	c, _ := newTestCenter(t, notify.WithFeedBuffer(1))
	sub := c.Subscribe(context.Background())
	defer sub.Close()

	for range 5 {
		require.True(t, c.Send(notify.NewEntry(notify.TargetNone)))
	}
	require.NoError(t, c.Sync(context.Background()))

	assert.Equal(t, notify.EventArrival, receive(t, sub).Kind)
	select {
	case ev := <-sub.C():
		t.Fatalf("unexpected buffered event %v", ev)
	default:
	}
}

func TestFeed_ContextEndsSubscription(t *testing.T) {
	c, _ := newTestCenter(t)
	ctx, cancel := context.WithCancel(context.Background())
	sub := c.Subscribe(ctx)
	cancel()

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-sub.C():
			return !ok
		default:
			return false
		}
	}, waitFor, tick)
	sub.Close()
}

func TestFeed_SubscribeAfterClose(t *testing.T) {
	c := notify.NewCenter()
	require.NoError(t, c.Close(context.Background()))

	sub := c.Subscribe(context.Background())
	_, ok := <-sub.C()
	assert.False(t, ok)
}
