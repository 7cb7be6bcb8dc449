//go:build !windows

package app

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.db.lock")

	first, err := acquireLock(path)
	require.NoError(t, err)

	_, err = acquireLock(path)
	require.ErrorIs(t, err, ErrLocked)

	require.NoError(t, first.Release())

	again, err := acquireLock(path)
	require.NoError(t, err, "lock after release")
	again.Release()
}

func TestApp_MutatingCommandNeedsLock(t *testing.T) {
	env := newTestEnv(t)

	held, err := acquireLock(env.cfg.Database.Path + ".lock")
	require.NoError(t, err)
	defer held.Release()

	a := env.open(t, "AddSource")
	defer a.Close()

	_, err = a.AddSource("W51", "w51")
	assert.ErrorIs(t, err, ErrLocked)
	_, err = a.ListSources()
	assert.NoError(t, err, "read-only commands run while locked")
}
