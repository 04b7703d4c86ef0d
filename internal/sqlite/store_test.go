package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kiosk/internal/paths"
	"github.com/mesh-intelligence/kiosk/internal/storetest"
	"github.com/mesh-intelligence/kiosk/pkg/types"
)

func sqliteConfig(dir string) types.Config {
	return types.Config{Backend: types.BackendSQLite, DataDir: dir}
}

func newAttached(t *testing.T) types.Store {
	t.Helper()
	b := NewBackend()
	require.NoError(t, b.Attach(sqliteConfig(t.TempDir())))
	t.Cleanup(func() { b.Detach() })
	return b
}

func TestBackendConformance(t *testing.T) {
	storetest.Run(t, newAttached)
}

func TestAttachCreatesDatabase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	b := NewBackend()
	require.NoError(t, b.Attach(sqliteConfig(dir)))
	defer b.Detach()

	_, err := os.Stat(paths.SQLiteFile(dir))
	assert.NoError(t, err)
}

func TestAttachTwice(t *testing.T) {
	dir := t.TempDir()
	b := NewBackend()
	require.NoError(t, b.Attach(sqliteConfig(dir)))
	defer b.Detach()

	assert.ErrorIs(t, b.Attach(sqliteConfig(dir)), types.ErrAlreadyAttached)
}

func TestAttachRejectsOtherBackend(t *testing.T) {
	b := NewBackend()
	err := b.Attach(types.Config{Backend: types.BackendPebble, DataDir: t.TempDir()})
	assert.ErrorIs(t, err, types.ErrBackendUnknown)
}

func TestRecordsSurviveReattach(t *testing.T) {
	dir := t.TempDir()
	kiosk, key := types.NewID(), types.ListingKey(types.NewID(), true)

	b := NewBackend()
	require.NoError(t, b.Attach(sqliteConfig(dir)))
	require.NoError(t, b.Update(func(tx types.Tx) error {
		return tx.Add(kiosk, key, types.Record{Type: "uint64", Data: []byte{0x18, 0x64}})
	}))
	require.NoError(t, b.Detach())

	b2 := NewBackend()
	require.NoError(t, b2.Attach(sqliteConfig(dir)))
	defer b2.Detach()

	require.NoError(t, b2.View(func(tx types.Tx) error {
		got, err := tx.Get(kiosk, key)
		require.NoError(t, err)
		assert.Equal(t, "uint64", got.Type)
		assert.Equal(t, []byte{0x18, 0x64}, got.Data)
		return nil
	}))
}
