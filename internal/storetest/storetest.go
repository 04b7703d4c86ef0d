// Package storetest holds the conformance suite every attachment store
// backend must pass.
package storetest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kiosk/pkg/types"
)

// Factory returns an attached store. The factory registers its own cleanup.
type Factory func(t *testing.T) types.Store

var errAbort = errors.New("abort")

// Run exercises the types.Store contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("AddGetRemove", func(t *testing.T) { testAddGetRemove(t, newStore(t)) })
	t.Run("AddDuplicate", func(t *testing.T) { testAddDuplicate(t, newStore(t)) })
	t.Run("PutReplaces", func(t *testing.T) { testPutReplaces(t, newStore(t)) })
	t.Run("RemoveMissing", func(t *testing.T) { testRemoveMissing(t, newStore(t)) })
	t.Run("Rollback", func(t *testing.T) { testRollback(t, newStore(t)) })
	t.Run("ReadOnlyView", func(t *testing.T) { testReadOnlyView(t, newStore(t)) })
	t.Run("NamespaceIsolation", func(t *testing.T) { testNamespaceIsolation(t, newStore(t)) })
	t.Run("KeysListing", func(t *testing.T) { testKeys(t, newStore(t)) })
	t.Run("ExistsWithType", func(t *testing.T) { testExistsWithType(t, newStore(t)) })
	t.Run("Detached", func(t *testing.T) { testDetached(t, newStore(t)) })
}

func rec(typ, data string) types.Record {
	return types.Record{Type: typ, Data: []byte(data)}
}

func testAddGetRemove(t *testing.T, s types.Store) {
	kiosk, item := types.NewID(), types.NewID()
	key := types.ItemKey(item)

	require.NoError(t, s.Update(func(tx types.Tx) error {
		return tx.Add(kiosk, key, rec("sword", "payload"))
	}))

	require.NoError(t, s.View(func(tx types.Tx) error {
		got, err := tx.Get(kiosk, key)
		require.NoError(t, err)
		assert.Equal(t, "sword", got.Type)
		assert.Equal(t, []byte("payload"), got.Data)

		ok, err := tx.Exists(kiosk, key)
		require.NoError(t, err)
		assert.True(t, ok)
		return nil
	}))

	require.NoError(t, s.Update(func(tx types.Tx) error {
		got, err := tx.Remove(kiosk, key)
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), got.Data)
		return nil
	}))

	require.NoError(t, s.View(func(tx types.Tx) error {
		_, err := tx.Get(kiosk, key)
		assert.ErrorIs(t, err, types.ErrNotFound)
		ok, err := tx.Exists(kiosk, key)
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	}))
}

func testAddDuplicate(t *testing.T, s types.Store) {
	kiosk := types.NewID()
	key := types.LockKey(types.NewID())

	require.NoError(t, s.Update(func(tx types.Tx) error {
		return tx.Add(kiosk, key, rec("bool", "1"))
	}))
	err := s.Update(func(tx types.Tx) error {
		return tx.Add(kiosk, key, rec("bool", "1"))
	})
	assert.ErrorIs(t, err, types.ErrKeyExists)
}

func testPutReplaces(t *testing.T, s types.Store) {
	kiosk := types.NewID()
	key := types.HeaderKey()

	require.NoError(t, s.Update(func(tx types.Tx) error {
		if err := tx.Put(kiosk, key, rec("header", "v1")); err != nil {
			return err
		}
		return tx.Put(kiosk, key, rec("header", "v2"))
	}))

	require.NoError(t, s.View(func(tx types.Tx) error {
		got, err := tx.Get(kiosk, key)
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), got.Data)
		return nil
	}))
}

func testRemoveMissing(t *testing.T, s types.Store) {
	err := s.Update(func(tx types.Tx) error {
		_, err := tx.Remove(types.NewID(), types.ItemKey(types.NewID()))
		return err
	})
	assert.ErrorIs(t, err, types.ErrNotFound)

	require.NoError(t, s.Update(func(tx types.Tx) error {
		removed, err := types.RemoveIfExists(tx, types.NewID(), types.LockKey(types.NewID()))
		assert.False(t, removed)
		return err
	}))
}

func testRollback(t *testing.T, s types.Store) {
	kiosk := types.NewID()
	kept := types.ItemKey(types.NewID())
	added := types.ItemKey(types.NewID())

	require.NoError(t, s.Update(func(tx types.Tx) error {
		return tx.Add(kiosk, kept, rec("sword", "original"))
	}))

	err := s.Update(func(tx types.Tx) error {
		if _, err := tx.Remove(kiosk, kept); err != nil {
			return err
		}
		if err := tx.Add(kiosk, added, rec("shield", "new")); err != nil {
			return err
		}
		if err := tx.Put(kiosk, types.HeaderKey(), rec("header", "h")); err != nil {
			return err
		}
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	require.NoError(t, s.View(func(tx types.Tx) error {
		got, err := tx.Get(kiosk, kept)
		require.NoError(t, err, "removed record must be restored")
		assert.Equal(t, []byte("original"), got.Data)

		ok, err := tx.Exists(kiosk, added)
		require.NoError(t, err)
		assert.False(t, ok, "added record must be discarded")

		ok, err = tx.Exists(kiosk, types.HeaderKey())
		require.NoError(t, err)
		assert.False(t, ok, "put record must be discarded")
		return nil
	}))
}

func testReadOnlyView(t *testing.T, s types.Store) {
	kiosk := types.NewID()
	err := s.View(func(tx types.Tx) error {
		return tx.Add(kiosk, types.ItemKey(types.NewID()), rec("sword", "x"))
	})
	assert.ErrorIs(t, err, types.ErrReadOnly)
}

func testNamespaceIsolation(t *testing.T, s types.Store) {
	a, b := types.NewID(), types.NewID()
	key := types.ItemKey(types.NewID())

	require.NoError(t, s.Update(func(tx types.Tx) error {
		return tx.Add(a, key, rec("sword", "a"))
	}))

	require.NoError(t, s.View(func(tx types.Tx) error {
		ok, err := tx.Exists(b, key)
		require.NoError(t, err)
		assert.False(t, ok)
		keys, err := tx.Keys(b)
		require.NoError(t, err)
		assert.Empty(t, keys)
		return nil
	}))
}

func testKeys(t *testing.T, s types.Store) {
	kiosk, item := types.NewID(), types.NewID()
	want := []types.Key{
		types.HeaderKey(),
		types.ItemKey(item),
		types.ListingKey(item, false),
		types.ListingKey(item, true),
		types.LockKey(item),
	}

	require.NoError(t, s.Update(func(tx types.Tx) error {
		for _, k := range want {
			if err := tx.Add(kiosk, k, rec("x", k.String())); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, s.View(func(tx types.Tx) error {
		keys, err := tx.Keys(kiosk)
		require.NoError(t, err)
		assert.ElementsMatch(t, want, keys)

		namespaces, err := tx.Namespaces()
		require.NoError(t, err)
		assert.Contains(t, namespaces, kiosk)
		return nil
	}))
}

func testExistsWithType(t *testing.T, s types.Store) {
	kiosk := types.NewID()
	key := types.ItemKey(types.NewID())

	require.NoError(t, s.Update(func(tx types.Tx) error {
		return tx.Add(kiosk, key, rec("sword", "x"))
	}))

	require.NoError(t, s.View(func(tx types.Tx) error {
		ok, err := types.ExistsWithType(tx, kiosk, key, "sword")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = types.ExistsWithType(tx, kiosk, key, "shield")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = types.ExistsWithType(tx, kiosk, types.ItemKey(types.NewID()), "sword")
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	}))
}

func testDetached(t *testing.T, s types.Store) {
	require.NoError(t, s.Detach())
	require.NoError(t, s.Detach(), "detach is idempotent")

	err := s.View(func(tx types.Tx) error { return nil })
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	err = s.Update(func(tx types.Tx) error { return nil })
	assert.ErrorIs(t, err, types.ErrStoreDetached)
}
