package logger_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/logger"
)

func TestGroup(t *testing.T) {
	attr := logger.Group("entry", slog.Int64("id", 1), slog.String("tag", "chat"))
	require.Equal(t, "entry", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, "id", g[0].Key)
	assert.Equal(t, "tag", g[1].Key)
}

func TestErrors(t *testing.T) {
	err1 := errors.New("first")
	err2 := errors.New("second")

	attr := logger.Errors(err1, nil, err2)
	require.Equal(t, "errors", attr.Key)
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, "0", g[0].Key)
	assert.Equal(t, "2", g[1].Key)

	assert.True(t, logger.Errors(nil, nil).Equal(slog.Attr{}))
}

func TestError(t *testing.T) {
	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
}

func TestDomainAttrs(t *testing.T) {
	tests := []struct {
		name string
		attr slog.Attr
		key  string
		want any
	}{
		{"entry id", logger.EntryID(42), "entry_id", int64(42)},
		{"tag", logger.Tag("chat"), "tag", "chat"},
		{"target", logger.Target("remote|local"), "target", "remote|local"},
		{"transition", logger.Transition("request_send"), "transition", "request_send"},
		{"handler", logger.Handler("local"), "handler", "local"},
		{"consumer", logger.Consumer("global"), "consumer", "global"},
		{"looper", logger.Looper("main"), "looper", "main"},
		{"count", logger.Count(3), "count", int64(3)},
		{"duration", logger.Duration(time.Second), "duration", time.Second},
		{"component", logger.Component("center"), "component", "center"},
		{"subscriber", logger.SubscriberID("abc"), "subscriber_id", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.key, tt.attr.Key)
			assert.Equal(t, tt.want, tt.attr.Value.Any())
		})
	}
}

func TestEmptyAttrs(t *testing.T) {
	assert.True(t, logger.Tag("").Equal(slog.Attr{}))
	assert.True(t, logger.SubscriberID(nil).Equal(slog.Attr{}))
}
