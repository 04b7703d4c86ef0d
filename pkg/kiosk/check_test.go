package kiosk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kiosk/internal/codec"
	"github.com/mesh-intelligence/kiosk/pkg/types"
)

func TestCheck(t *testing.T) {
	put := func(key func(item types.ID) types.Key, v any) func(t *testing.T, k *Kiosk, item types.ID) {
		return func(t *testing.T, k *Kiosk, item types.ID) {
			rec, err := codec.Encode(v)
			require.NoError(t, err)
			require.NoError(t, k.store.Update(func(tx types.Tx) error {
				return tx.Put(k.id, key(item), rec)
			}))
		}
	}
	stray := func(kind types.Kind) func(types.ID) types.Key {
		return func(types.ID) types.Key { return types.Key{Kind: kind, Item: types.NewID()} }
	}

	tests := []struct {
		name   string
		mangle func(t *testing.T, k *Kiosk, item types.ID)
		want   error
	}{
		{"consistent", func(*testing.T, *Kiosk, types.ID) {}, nil},
		{"extra item", put(func(types.ID) types.Key { return types.ItemKey(types.NewID()) }, newSword(9)), ErrInconsistent},
		{"orphan listing", put(stray(types.KindListing), uint64(5)), ErrInconsistent},
		{"orphan lock", put(stray(types.KindLock), true), ErrInconsistent},
		{"listed both ways", func(t *testing.T, k *Kiosk, item types.ID) {
			put(func(id types.ID) types.Key { return types.ListingKey(id, false) }, uint64(5))(t, k, item)
			put(func(id types.ID) types.Key { return types.ListingKey(id, true) }, uint64(5))(t, k, item)
		}, ErrInconsistent},
		{"missing item", func(t *testing.T, k *Kiosk, item types.ID) {
			require.NoError(t, k.store.Update(func(tx types.Tx) error {
				_, err := tx.Remove(k.id, types.ItemKey(item))
				return err
			}))
		}, ErrInconsistent},
		{"missing header", func(t *testing.T, k *Kiosk, _ types.ID) {
			require.NoError(t, k.store.Update(func(tx types.Tx) error {
				_, err := tx.Remove(k.id, types.HeaderKey())
				return err
			}))
		}, ErrKioskNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, cap := newMemoryKiosk(t)
			item := newSword(1)
			require.NoError(t, PlaceAndList(k, cap, item, 10))
			tt.mangle(t, k, item.ID)

			err := k.store.View(func(tx types.Tx) error { return Check(tx, k.id) })
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCheckOutstandingLoan(t *testing.T) {
	k, cap := newMemoryKiosk(t)
	item := newSword(1)
	require.NoError(t, Place(k, cap, item))

	got, loan, err := BorrowVal[sword](k, cap, item.ID)
	require.NoError(t, err)
	err = k.store.View(func(tx types.Tx) error { return Check(tx, k.id) })
	assert.ErrorIs(t, err, ErrInconsistent)
	assert.ErrorIs(t, err, ErrInvariantViolation)

	require.NoError(t, ReturnVal(k, got, loan))
	assert.NoError(t, k.store.View(func(tx types.Tx) error { return Check(tx, k.id) }))
}
