package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateListeners(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "run", "signalbox.sock")
	require.NoError(t, os.MkdirAll(filepath.Dir(sock), 0755))
	require.NoError(t, os.WriteFile(sock, []byte("stale"), 0644))

	listeners, err := CreateListeners([]ListenAddr{
		{Network: "tcp", Address: "127.0.0.1:0"},
		{Network: "unix", Address: sock},
		{Network: "tcp", Address: ""},
	})
	require.NoError(t, err)
	require.Len(t, listeners, 2)
	for _, ln := range listeners {
		defer ln.Close()
	}

	info, err := os.Stat(sock)
	require.NoError(t, err)
	assert.Equal(t, os.ModeSocket, info.Mode()&os.ModeSocket)
}

func TestCreateListenersReportsFailure(t *testing.T) {
	listeners, err := CreateListeners([]ListenAddr{
		{Network: "tcp", Address: "256.0.0.1:1"},
	})
	assert.Error(t, err)
	assert.Empty(t, listeners)
}
