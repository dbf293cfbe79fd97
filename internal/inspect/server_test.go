package inspect_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/internal/inspect"
	"github.com/dmitrymomot/notifykit/pkg/logger"
)

func TestServerRunAndShutdown(t *testing.T) {
	t.Parallel()

	srv := inspect.NewServer(
		inspect.WithAddr("127.0.0.1:0"),
		inspect.WithShutdownTimeout(100*time.Millisecond),
		inspect.WithServerLogger(logger.Discard()),
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
	}()

	var resp *http.Response
	require.Eventually(t, func() bool {
		addr := srv.Addr()
		if addr == "127.0.0.1:0" {
			return false
		}
		var err error
		resp, err = http.Get("http://" + addr)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		require.Fail(t, "run did not return")
	}
	assert.NoError(t, srv.Shutdown(context.Background()), "repeated shutdown")
}

func TestServerRunTwice(t *testing.T) {
	t.Parallel()

	srv := inspect.NewServer(inspect.WithAddr("127.0.0.1:0"), inspect.WithServerLogger(logger.Discard()))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, nil) }()
	require.Eventually(t, func() bool { return srv.Addr() != "127.0.0.1:0" }, time.Second, 5*time.Millisecond)

	err := srv.Run(ctx, nil)
	assert.ErrorIs(t, err, inspect.ErrStart)

	require.NoError(t, srv.Shutdown(context.Background()))
	require.NoError(t, <-done)
}

func TestServerListenFailure(t *testing.T) {
	t.Parallel()

	srv := inspect.NewServer(inspect.WithAddr("256.0.0.1:bad"), inspect.WithServerLogger(logger.Discard()))
	err := srv.Run(context.Background(), nil)
	assert.ErrorIs(t, err, inspect.ErrStart)
}

func TestShutdownBeforeRun(t *testing.T) {
	t.Parallel()

	srv := inspect.NewServer()
	assert.NoError(t, srv.Shutdown(context.Background()))
}

func TestOptionPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { inspect.WithAddr("") })
	assert.Panics(t, func() { inspect.WithShutdownTimeout(0) })
	assert.Panics(t, func() { inspect.WithReadTimeout(-1) })
}
