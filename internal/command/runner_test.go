package command

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestRunnerCapturesStdout(t *testing.T) {
	requireShell(t)
	out, err := Runner{Timeout: 5 * time.Second}.Run(context.Background(), "sh", "-c", "printf hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))
}

func TestRunnerIncludesStderrInError(t *testing.T) {
	requireShell(t)
	_, err := Runner{Timeout: 5 * time.Second}.Run(context.Background(), "sh", "-c", "echo boom >&2; exit 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Contains(t, err.Error(), "sh -c")
}

func TestRunnerTimeout(t *testing.T) {
	requireShell(t)
	start := time.Now()
	_, err := Runner{Timeout: 50 * time.Millisecond}.Run(context.Background(), "sh", "-c", "sleep 3; true")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
	assert.Less(t, time.Since(start), time.Second)
}

func TestRunnerContextDeadline(t *testing.T) {
	requireShell(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := Runner{}.Run(ctx, "sh", "-c", "sleep 3; true")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRunnerMissingBinary(t *testing.T) {
	_, err := Runner{}.Run(context.Background(), "definitely-not-a-real-binary-xyz")
	require.Error(t, err)
}
