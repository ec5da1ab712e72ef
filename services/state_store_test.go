package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateStoreMissingFile(t *testing.T) {
	got, err := NewStateStore(filepath.Join(t.TempDir(), "state.json")).Load()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStateStoreSaveReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewStateStore(path)

	require.NoError(t, store.Save(map[string]string{"kismet": "1234", "rtl433": "00000001"}))
	require.NoError(t, store.Save(map[string]string{"kismet": ""}))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"kismet": ""}, got)
}

func TestStateStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewStateStore(path).Load()
	assert.Error(t, err)
}

func TestStateStoreDisabled(t *testing.T) {
	store := NewStateStore("")
	require.NoError(t, store.Save(map[string]string{"kismet": "1"}))
	got, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, got)
}
