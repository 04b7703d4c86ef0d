package kiosk

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kiosk/pkg/linear"
)

func TestBorrowAnyListingState(t *testing.T) {
	k, cap := newMemoryKiosk(t)
	item := newSword(3)
	require.NoError(t, PlaceAndList(k, cap, item, 5))

	got, err := Borrow[sword](k, cap, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item, got)

	_, err = Borrow[shield](k, cap, item.ID)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestBorrowMut(t *testing.T) {
	forEachBackend(t, func(t *testing.T, k *Kiosk, cap *OwnerCap) {
		item := newSword(3)
		require.NoError(t, Place(k, cap, item))

		require.NoError(t, BorrowMut(k, cap, item.ID, func(s *sword) error {
			s.Power = 9
			return nil
		}))

		got, err := Borrow[sword](k, cap, item.ID)
		require.NoError(t, err)
		assert.Equal(t, 9, got.Power)
	})
}

func TestBorrowMutRejected(t *testing.T) {
	k, cap := newMemoryKiosk(t)
	item := newSword(3)
	require.NoError(t, Place(k, cap, item))
	boom := errors.New("boom")

	tests := []struct {
		name string
		fn   func(s *sword) error
		want error
	}{
		{"callback error", func(s *sword) error { s.Power = 100; return boom }, boom},
		{"identity changed", func(s *sword) error { s.ID = newSword(0).ID; return nil }, ErrItemMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := BorrowMut(k, cap, item.ID, tt.fn)
			assert.ErrorIs(t, err, tt.want)

			got, err := Borrow[sword](k, cap, item.ID)
			require.NoError(t, err)
			assert.Equal(t, item, got, "rejected mutation is not stored")
		})
	}
}

func TestBorrowMutListed(t *testing.T) {
	k, cap := newMemoryKiosk(t)
	item := newSword(3)
	require.NoError(t, PlaceAndList(k, cap, item, 5))

	called := false
	err := BorrowMut(k, cap, item.ID, func(*sword) error { called = true; return nil })
	assert.ErrorIs(t, err, ErrItemIsListed)
	assert.False(t, called)

	require.NoError(t, Delist[sword](k, cap, item.ID))
	pcap, err := ListWithPurchaseCap[sword](k, cap, item.ID, 5)
	require.NoError(t, err)

	_, _, err = BorrowVal[sword](k, cap, item.ID)
	assert.ErrorIs(t, err, ErrItemIsListed)
	require.NoError(t, ReturnPurchaseCap(k, pcap))
}

func TestBorrowValRoundTrip(t *testing.T) {
	forEachBackend(t, func(t *testing.T, k *Kiosk, cap *OwnerCap) {
		item := newSword(6)
		require.NoError(t, Place(k, cap, item))

		got, loan, err := BorrowVal[sword](k, cap, item.ID)
		require.NoError(t, err)
		assert.Equal(t, item, got)
		assert.Equal(t, k.ID(), loan.Kiosk())
		assert.Equal(t, item.ID, loan.Item())

		ok, err := k.HasItem(item.ID)
		require.NoError(t, err)
		assert.False(t, ok, "borrowed item leaves storage")
		count, err := k.ItemCount()
		require.NoError(t, err)
		assert.Equal(t, uint32(1), count, "loan keeps the item count")

		require.NoError(t, ReturnVal(k, got, loan))
		assert.True(t, loan.Returned())

		back, err := Borrow[sword](k, cap, item.ID)
		require.NoError(t, err)
		assert.Equal(t, item, back)

		assert.ErrorIs(t, ReturnVal(k, got, loan), ErrTokenConsumed)
	})
}

func TestReturnValMismatch(t *testing.T) {
	l := linear.NewLedger()
	k, cap := newMemoryKiosk(t, WithLedger(l))
	other, otherCap := newMemoryKiosk(t)
	item := newSword(1)
	require.NoError(t, Place(k, cap, item))

	got, loan, err := BorrowVal[sword](k, cap, item.ID)
	require.NoError(t, err)

	err = ReturnVal(other, got, loan)
	assert.ErrorIs(t, err, ErrWrongKiosk)
	assert.ErrorIs(t, err, ErrIdentityMismatch)

	err = ReturnVal(k, newSword(1), loan)
	assert.ErrorIs(t, err, ErrItemMismatch)

	items, err := other.Items()
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.False(t, other.HasAccess(cap))
	assert.True(t, other.HasAccess(otherCap))

	assert.False(t, loan.Returned())
	assert.ErrorIs(t, l.Check(), linear.ErrLeaked)

	require.NoError(t, ReturnVal(k, got, loan))
	assert.NoError(t, l.Check())
}

func TestReturnValNil(t *testing.T) {
	k, _ := newMemoryKiosk(t)
	assert.ErrorIs(t, ReturnVal(k, newSword(1), nil), ErrTokenConsumed)
}
