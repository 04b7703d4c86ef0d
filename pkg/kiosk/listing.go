package kiosk

import (
	"errors"

	"github.com/mesh-intelligence/kiosk/internal/codec"
	"github.com/mesh-intelligence/kiosk/pkg/coin"
	"github.com/mesh-intelligence/kiosk/pkg/events"
	"github.com/mesh-intelligence/kiosk/pkg/policy"
	"github.com/mesh-intelligence/kiosk/pkg/types"
)

// List offers item id for sale to anyone at price. Listing an already
// listed item replaces its price.
func List[T Asset](k *Kiosk, cap *OwnerCap, id types.ID, price uint64) error {
	err := k.update(func(tx types.Tx, _ *header) error {
		if err := k.authorize(cap); err != nil {
			return err
		}
		return listItem[T](tx, k.id, id, price)
	})
	if err != nil {
		return err
	}
	k.emit(events.Event{Kind: events.ItemListed, AssetType: codec.TypeTag[T](), Item: id, Price: price})
	return nil
}

// PlaceAndList places item and lists it at price in one transaction.
func PlaceAndList[T Asset](k *Kiosk, cap *OwnerCap, item T, price uint64) error {
	id := item.AssetID()
	err := k.update(func(tx types.Tx, h *header) error {
		if err := k.authorize(cap); err != nil {
			return err
		}
		if err := placeItem(tx, k.id, h, item); err != nil {
			return err
		}
		return listItem[T](tx, k.id, id, price)
	})
	if err != nil {
		return err
	}
	k.emit(events.Event{Kind: events.ItemListed, AssetType: codec.TypeTag[T](), Item: id, Price: price})
	return nil
}

// Delist withdraws the non-exclusive listing of item id.
func Delist[T Asset](k *Kiosk, cap *OwnerCap, id types.ID) error {
	err := k.update(func(tx types.Tx, _ *header) error {
		if err := k.authorize(cap); err != nil {
			return err
		}
		if err := requireItem[T](tx, k.id, id); err != nil {
			return err
		}
		if err := checkNotExclusive(tx, k.id, id); err != nil {
			return err
		}
		_, err := tx.Remove(k.id, types.ListingKey(id, false))
		if errors.Is(err, types.ErrNotFound) {
			return ErrNotListed
		}
		return err
	})
	if err != nil {
		return err
	}
	k.emit(events.Event{Kind: events.ItemDelisted, AssetType: codec.TypeTag[T](), Item: id})
	return nil
}

// Purchase buys listed item id with payment, which must equal the price.
// Anyone may call it. The returned request must be confirmed by the
// transfer policy for T.
func Purchase[T Asset](k *Kiosk, id types.ID, payment coin.Coin) (T, *policy.TransferRequest[T], error) {
	var item T
	var price uint64
	err := k.update(func(tx types.Tx, h *header) error {
		var err error
		if price, err = listingPrice(tx, k.id, id, false); err != nil {
			return err
		}
		if payment.Value() != price {
			return ErrIncorrectAmount
		}
		if _, err := tx.Remove(k.id, types.ListingKey(id, false)); err != nil {
			return err
		}
		item, err = sell[T](tx, k.id, h, id, price)
		return err
	})
	if err != nil {
		var zero T
		return zero, nil, err
	}

	k.emit(events.Event{Kind: events.ItemPurchased, AssetType: codec.TypeTag[T](), Item: id, Price: price})
	return item, policy.NewRequest[T](k.ledger, id, price, k.id), nil
}

func listItem[T Asset](tx types.Tx, kiosk, id types.ID, price uint64) error {
	if err := requireItem[T](tx, kiosk, id); err != nil {
		return err
	}
	if err := checkNotExclusive(tx, kiosk, id); err != nil {
		return err
	}
	rec, err := codec.Encode(price)
	if err != nil {
		return err
	}
	return tx.Put(kiosk, types.ListingKey(id, false), rec)
}

// sell removes item id and its lock and credits paid to the proceeds. The
// caller has already removed the listing.
func sell[T Asset](tx types.Tx, kiosk types.ID, h *header, id types.ID, paid uint64) (T, error) {
	item, err := removeItem[T](tx, kiosk, h, id)
	if err != nil {
		return item, err
	}
	if _, err := types.RemoveIfExists(tx, kiosk, types.LockKey(id)); err != nil {
		return item, err
	}
	profits, err := coin.Credit(h.Profits, paid)
	if err != nil {
		return item, errProfitsOverflow
	}
	h.Profits = profits
	return item, nil
}

func listingPrice(tx types.Tx, kiosk, id types.ID, exclusive bool) (uint64, error) {
	rec, err := tx.Get(kiosk, types.ListingKey(id, exclusive))
	if errors.Is(err, types.ErrNotFound) {
		return 0, ErrNotListed
	}
	if err != nil {
		return 0, err
	}
	return codec.Decode[uint64](rec)
}
