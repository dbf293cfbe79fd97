package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestRunYAMLScenario(t *testing.T) {
	out, err := execute(t, "run", "testdata/chat.yaml", "--log-level", "error")
	require.NoError(t, err)

	assert.Contains(t, out, "status   notify")
	assert.Contains(t, out, "board    show")
	assert.Contains(t, out, "overlay  show")
	assert.Contains(t, out, "effects  ring bell")
	assert.Contains(t, out, "edited message")
	assert.Contains(t, out, "listener arrival")
	assert.Contains(t, out, "listener cancel")
	assert.Contains(t, out, "1 entries", "only the promo banner is left")
}

func TestRunTOMLScenario(t *testing.T) {
	out, err := execute(t, "run", "testdata/overlay.toml", "--log-level", "error", "--log-format", "text")
	require.NoError(t, err)

	assert.Contains(t, out, "Drawn")
	assert.NotRegexp(t, `overlay\s+show #\d+ Nobody`, out)
	assert.Contains(t, out, "effects  vibrate")
	assert.Contains(t, out, "0 entries")
}

func TestRunJSONScenario(t *testing.T) {
	out, err := execute(t, "run", "testdata/delayed.json", "--log-level", "error")
	require.NoError(t, err)

	assert.Contains(t, out, "Later")
	assert.Contains(t, out, "2 entries")
}

func TestRunErrors(t *testing.T) {
	_, err := execute(t, "run")
	assert.Error(t, err, "scenario path is required")

	_, err = execute(t, "run", "testdata/missing.yaml")
	assert.Error(t, err)

	_, err = execute(t, "run", "testdata/chat.yaml", "--log-level", "loud")
	assert.ErrorContains(t, err, "unknown log level")

	_, err = execute(t, "run", "testdata/chat.yaml", "--log-format", "xml")
	assert.ErrorContains(t, err, "unknown log format")
}

func TestRunWithEnvFile(t *testing.T) {
	t.Cleanup(func() { _ = os.Unsetenv("NOTIFY_ENABLED") })
	path := filepath.Join(t.TempDir(), "notify.env")
	require.NoError(t, os.WriteFile(path, []byte("NOTIFY_ENABLED=false\n"), 0o600))

	out, err := execute(t, "run", "testdata/delayed.json", "--env-file", path, "--log-level", "error")
	require.NoError(t, err)
	assert.NotContains(t, out, "board    show")
	assert.Contains(t, out, "0 entries", "a disabled center refuses every send")
}

func TestRunWithInspectionServer(t *testing.T) {
	out, err := execute(t, "run", "testdata/chat.yaml", "--log-level", "error", "--metrics-addr", "127.0.0.1:0")
	require.NoError(t, err)
	assert.Contains(t, out, "1 entries")
}
