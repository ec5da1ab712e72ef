//go:build unix

package utils

import (
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessStatsSelf(t *testing.T) {
	rss, _, err := ProcessStats(os.Getpid())
	require.NoError(t, err)
	assert.Greater(t, rss, uint64(0))
}

func TestIsProcessRunning(t *testing.T) {
	running, err := IsProcessRunning(os.Getpid())
	require.NoError(t, err)
	assert.True(t, running)

	running, _ = IsProcessRunning(0)
	assert.False(t, running)
}

func TestTerminateGroupStopsChild(t *testing.T) {
	cmd := exec.Command("sh", "-c", "sleep 30")
	SetNewPG(cmd)
	require.NoError(t, cmd.Start())

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	require.NoError(t, TerminateGroup(cmd.Process.Pid))
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		_ = KillGroup(cmd.Process.Pid)
		t.Fatal("child did not exit after SIGTERM")
	}
}

func TestSignalGroupGoneIsNil(t *testing.T) {
	cmd := exec.Command("true")
	SetNewPG(cmd)
	require.NoError(t, cmd.Run())
	assert.NoError(t, KillGroup(cmd.Process.Pid))
}
