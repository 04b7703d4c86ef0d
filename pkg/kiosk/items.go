package kiosk

import (
	"errors"

	"github.com/mesh-intelligence/kiosk/internal/codec"
	"github.com/mesh-intelligence/kiosk/pkg/events"
	"github.com/mesh-intelligence/kiosk/pkg/policy"
	"github.com/mesh-intelligence/kiosk/pkg/types"
)

// Place stores item in the kiosk.
func Place[T Asset](k *Kiosk, cap *OwnerCap, item T) error {
	return k.update(func(tx types.Tx, h *header) error {
		if err := k.authorize(cap); err != nil {
			return err
		}
		return placeItem(tx, k.id, h, item)
	})
}

// Lock stores item and disables Take for it, so it can leave only through
// a sale. p is the transfer policy for T; without one a locked item could
// never be sold.
func Lock[T Asset](k *Kiosk, cap *OwnerCap, p *policy.Policy[T], item T) error {
	return k.update(func(tx types.Tx, h *header) error {
		if err := k.authorize(cap); err != nil {
			return err
		}
		return lockItem(tx, k.id, h, p, item)
	})
}

// LockAndList locks item and lists it at price in one transaction.
func LockAndList[T Asset](k *Kiosk, cap *OwnerCap, p *policy.Policy[T], item T, price uint64) error {
	id := item.AssetID()
	err := k.update(func(tx types.Tx, h *header) error {
		if err := k.authorize(cap); err != nil {
			return err
		}
		if err := lockItem(tx, k.id, h, p, item); err != nil {
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

// Take removes an unlocked item and returns it. A non-exclusive listing is
// cleared along the way.
func Take[T Asset](k *Kiosk, cap *OwnerCap, id types.ID) (T, error) {
	var item T
	err := k.update(func(tx types.Tx, h *header) error {
		if err := k.authorize(cap); err != nil {
			return err
		}
		if locked, err := tx.Exists(k.id, types.LockKey(id)); err != nil {
			return err
		} else if locked {
			return ErrItemLocked
		}
		if err := checkNotExclusive(tx, k.id, id); err != nil {
			return err
		}

		var err error
		if item, err = removeItem[T](tx, k.id, h, id); err != nil {
			return err
		}
		_, err = types.RemoveIfExists(tx, k.id, types.ListingKey(id, false))
		return err
	})
	return item, err
}

// HasItemWithType reports whether the kiosk stores an item id of type T.
func HasItemWithType[T Asset](k *Kiosk, id types.ID) (bool, error) {
	var ok bool
	err := k.view(func(tx types.Tx, _ *header) error {
		var err error
		ok, err = hasItemWithType[T](tx, k.id, id)
		return err
	})
	return ok, err
}

func placeItem[T Asset](tx types.Tx, kiosk types.ID, h *header, item T) error {
	rec, err := codec.Encode(item)
	if err != nil {
		return err
	}
	err = tx.Add(kiosk, types.ItemKey(item.AssetID()), rec)
	if errors.Is(err, types.ErrKeyExists) {
		return ErrItemExists
	}
	if err != nil {
		return err
	}
	return h.addItem()
}

func lockItem[T Asset](tx types.Tx, kiosk types.ID, h *header, p *policy.Policy[T], item T) error {
	if p == nil {
		return ErrPolicyRequired
	}
	if err := placeItem(tx, kiosk, h, item); err != nil {
		return err
	}
	rec, err := codec.Encode(true)
	if err != nil {
		return err
	}
	return tx.Put(kiosk, types.LockKey(item.AssetID()), rec)
}

func getItem[T Asset](tx types.Tx, kiosk, id types.ID) (T, error) {
	var zero T
	rec, err := tx.Get(kiosk, types.ItemKey(id))
	if errors.Is(err, types.ErrNotFound) {
		return zero, ErrItemNotFound
	}
	if err != nil {
		return zero, err
	}
	item, err := codec.Decode[T](rec)
	if errors.Is(err, types.ErrTypeMismatch) {
		return zero, ErrItemNotFound
	}
	return item, err
}

func removeItem[T Asset](tx types.Tx, kiosk types.ID, h *header, id types.ID) (T, error) {
	item, err := getItem[T](tx, kiosk, id)
	if err != nil {
		return item, err
	}
	if _, err := tx.Remove(kiosk, types.ItemKey(id)); err != nil {
		return item, err
	}
	return item, h.removeItem()
}

func hasItemWithType[T Asset](tx types.Tx, kiosk, id types.ID) (bool, error) {
	return types.ExistsWithType(tx, kiosk, types.ItemKey(id), codec.TypeTag[T]())
}

func requireItem[T Asset](tx types.Tx, kiosk, id types.ID) error {
	ok, err := hasItemWithType[T](tx, kiosk, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrItemNotFound
	}
	return nil
}

func checkNotExclusive(tx types.Tx, kiosk, id types.ID) error {
	ok, err := tx.Exists(kiosk, types.ListingKey(id, true))
	if err != nil {
		return err
	}
	if ok {
		return ErrListedExclusively
	}
	return nil
}
