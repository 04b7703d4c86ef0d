package kiosk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kiosk/pkg/coin"
	"github.com/mesh-intelligence/kiosk/pkg/linear"
	"github.com/mesh-intelligence/kiosk/pkg/policy"
)

func TestExclusiveScenario(t *testing.T) {
	forEachBackend(t, func(t *testing.T, k *Kiosk, cap *OwnerCap) {
		item := newSword(4)
		require.NoError(t, Place(k, cap, item))

		pcap, err := ListWithPurchaseCap[sword](k, cap, item.ID, 50)
		require.NoError(t, err)
		assert.Equal(t, k.ID(), pcap.Kiosk())
		assert.Equal(t, item.ID, pcap.Item())
		assert.Equal(t, uint64(50), pcap.MinPrice())

		excl, err := k.IsListedExclusively(item.ID)
		require.NoError(t, err)
		assert.True(t, excl)

		_, _, err = PurchaseWithCap(k, pcap, coin.New(40))
		assert.ErrorIs(t, err, ErrIncorrectAmount)
		assert.False(t, pcap.Consumed(), "failed purchase keeps the cap")

		got, req, err := PurchaseWithCap(k, pcap, coin.New(60))
		require.NoError(t, err)
		assert.Equal(t, item, got)
		assert.True(t, pcap.Consumed())
		assert.Equal(t, uint64(60), req.Paid())
		assert.Equal(t, k.ID(), req.From())

		profits, err := k.Profits()
		require.NoError(t, err)
		assert.Equal(t, uint64(60), profits)

		excl, err = k.IsListedExclusively(item.ID)
		require.NoError(t, err)
		assert.False(t, excl)

		_, _, err = PurchaseWithCap(k, pcap, coin.New(60))
		assert.ErrorIs(t, err, ErrTokenConsumed)

		confirm(t, req)
	})
}

func TestPurchaseWithCapClearsLock(t *testing.T) {
	forEachBackend(t, func(t *testing.T, k *Kiosk, cap *OwnerCap) {
		p, _ := policy.New[sword]()
		item := newSword(6)
		require.NoError(t, Lock(k, cap, p, item))

		pcap, err := ListWithPurchaseCap[sword](k, cap, item.ID, 50)
		require.NoError(t, err)

		got, req, err := PurchaseWithCap(k, pcap, coin.New(70))
		require.NoError(t, err)
		assert.Equal(t, item, got)
		assert.Equal(t, uint64(70), req.Paid())

		locked, err := k.IsLocked(item.ID)
		require.NoError(t, err)
		assert.False(t, locked)
		count, err := k.ItemCount()
		require.NoError(t, err)
		assert.Zero(t, count)
		profits, err := k.Profits()
		require.NoError(t, err)
		assert.Equal(t, uint64(70), profits)

		_, err = p.Confirm(req)
		require.NoError(t, err)
	})
}

func TestListWithPurchaseCapAlreadyListed(t *testing.T) {
	k, cap := newMemoryKiosk(t)
	item := newSword(1)
	require.NoError(t, PlaceAndList(k, cap, item, 10))

	_, err := ListWithPurchaseCap[sword](k, cap, item.ID, 5)
	assert.ErrorIs(t, err, ErrAlreadyListed)

	require.NoError(t, Delist[sword](k, cap, item.ID))
	pcap, err := ListWithPurchaseCap[sword](k, cap, item.ID, 5)
	require.NoError(t, err)

	_, err = ListWithPurchaseCap[sword](k, cap, item.ID, 5)
	assert.ErrorIs(t, err, ErrAlreadyListed)
	require.NoError(t, ReturnPurchaseCap(k, pcap))
}

func TestListWithPurchaseCapMissingItem(t *testing.T) {
	k, cap := newMemoryKiosk(t)
	item := newSword(1)
	require.NoError(t, Place(k, cap, item))

	_, err := ListWithPurchaseCap[shield](k, cap, item.ID, 5)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestPurchaseCapWrongKiosk(t *testing.T) {
	l := linear.NewLedger()
	k, cap := newMemoryKiosk(t, WithLedger(l))
	other, _ := newMemoryKiosk(t)
	item := newSword(1)
	require.NoError(t, Place(k, cap, item))

	pcap, err := ListWithPurchaseCap[sword](k, cap, item.ID, 5)
	require.NoError(t, err)

	_, _, err = PurchaseWithCap(other, pcap, coin.New(5))
	assert.ErrorIs(t, err, ErrWrongKiosk)
	assert.ErrorIs(t, err, ErrIdentityMismatch)

	err = ReturnPurchaseCap(other, pcap)
	assert.ErrorIs(t, err, ErrWrongKiosk)
	assert.False(t, pcap.Consumed())

	require.NoError(t, ReturnPurchaseCap(k, pcap))
	assert.NoError(t, l.Check())
}

func TestReturnPurchaseCapRestoresItem(t *testing.T) {
	forEachBackend(t, func(t *testing.T, k *Kiosk, cap *OwnerCap) {
		p, _ := policy.New[sword]()
		item := newSword(1)
		require.NoError(t, Lock(k, cap, p, item))

		pcap, err := ListWithPurchaseCap[sword](k, cap, item.ID, 5)
		require.NoError(t, err)
		require.NoError(t, ReturnPurchaseCap(k, pcap))

		assert.ErrorIs(t, ReturnPurchaseCap(k, pcap), ErrTokenConsumed)

		excl, err := k.IsListedExclusively(item.ID)
		require.NoError(t, err)
		assert.False(t, excl)
		locked, err := k.IsLocked(item.ID)
		require.NoError(t, err)
		assert.True(t, locked)

		require.NoError(t, List[sword](k, cap, item.ID, 9))
		require.NoError(t, Delist[sword](k, cap, item.ID))
	})
}

func TestNilPurchaseCap(t *testing.T) {
	k, _ := newMemoryKiosk(t)

	_, _, err := PurchaseWithCap[sword](k, nil, coin.New(1))
	assert.ErrorIs(t, err, ErrTokenConsumed)
	assert.ErrorIs(t, ReturnPurchaseCap[sword](k, nil), ErrTokenConsumed)
}
