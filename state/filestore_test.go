package state_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jetsonhacks/install-deep-stream/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempStore(t *testing.T) *state.FileStore {
	t.Helper()
	store, err := state.NewFileStore(filepath.Join(t.TempDir(), "run", "state.json"))
	require.NoError(t, err)
	return store
}

func TestLoadAbsent(t *testing.T) {
	store := tempStore(t)
	_, err := store.Load()
	require.ErrorIs(t, err, state.ErrNoState)
}

func TestSaveLoadClear(t *testing.T) {
	store := tempStore(t)
	require.NoError(t, store.Save(&state.RunState{
		Plan:       "ultralytics",
		NextStepID: "post-reboot-wheels",
		InProgress: true,
	}))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	rs, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "ultralytics", rs.Plan)
	assert.Equal(t, "post-reboot-wheels", rs.NextStepID)
	assert.True(t, rs.InProgress)
	assert.False(t, rs.CreatedAt.IsZero())

	require.NoError(t, store.Clear())
	_, err = store.Load()
	require.ErrorIs(t, err, state.ErrNoState)
}

func TestClearAbsent(t *testing.T) {
	store := tempStore(t)
	require.NoError(t, store.Clear())
}

func TestLoadCorrupt(t *testing.T) {
	store := tempStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o755))
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0o600))
	_, err := store.Load()
	require.ErrorIs(t, err, state.ErrCorrupt)
}

func TestLoadMissingStepID(t *testing.T) {
	store := tempStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o755))
	require.NoError(t, os.WriteFile(store.Path(), []byte(`{"plan":"deepstream"}`), 0o600))
	_, err := store.Load()
	require.ErrorIs(t, err, state.ErrCorrupt)
}

func TestSaveReplacesExisting(t *testing.T) {
	store := tempStore(t)
	require.NoError(t, store.Save(&state.RunState{Plan: "a", NextStepID: "one", InProgress: true}))
	require.NoError(t, store.Save(&state.RunState{Plan: "a", NextStepID: "two", InProgress: true}))
	rs, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "two", rs.NextStepID)
}
