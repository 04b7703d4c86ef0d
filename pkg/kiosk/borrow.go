package kiosk

import (
	"errors"

	"github.com/mesh-intelligence/kiosk/internal/codec"
	"github.com/mesh-intelligence/kiosk/pkg/linear"
	"github.com/mesh-intelligence/kiosk/pkg/types"
)

// Borrow returns a copy of item id. It is allowed in any listing state.
func Borrow[T Asset](k *Kiosk, cap *OwnerCap, id types.ID) (T, error) {
	var item T
	err := k.view(func(tx types.Tx, _ *header) error {
		if err := k.authorize(cap); err != nil {
			return err
		}
		var err error
		item, err = getItem[T](tx, k.id, id)
		return err
	})
	return item, err
}

// BorrowMut lets fn modify item id in place. The change is stored only if
// fn returns nil and the item keeps its ID. Listed items cannot be
// modified.
func BorrowMut[T Asset](k *Kiosk, cap *OwnerCap, id types.ID, fn func(item *T) error) error {
	return k.update(func(tx types.Tx, _ *header) error {
		item, err := borrowable[T](k, tx, cap, id)
		if err != nil {
			return err
		}
		if err := fn(&item); err != nil {
			return err
		}
		if item.AssetID() != id {
			return ErrItemMismatch
		}
		rec, err := codec.Encode(item)
		if err != nil {
			return err
		}
		return tx.Put(k.id, types.ItemKey(id), rec)
	})
}

// BorrowVal takes item id out of the kiosk under a Loan receipt. The
// item still counts as owned by the kiosk and must come back through
// ReturnVal.
func BorrowVal[T Asset](k *Kiosk, cap *OwnerCap, id types.ID) (T, *Loan, error) {
	var item T
	err := k.update(func(tx types.Tx, _ *header) error {
		var err error
		if item, err = borrowable[T](k, tx, cap, id); err != nil {
			return err
		}
		_, err = tx.Remove(k.id, types.ItemKey(id))
		return err
	})
	if err != nil {
		var zero T
		return zero, nil, err
	}
	return item, &Loan{kiosk: k.id, item: id, tok: linear.NewToken(k.ledger, LoanToken)}, nil
}

// ReturnVal puts a borrowed item back and consumes its receipt. It is the
// only way to discharge a Loan.
func ReturnVal[T Asset](k *Kiosk, item T, b *Loan) error {
	if b == nil {
		return ErrTokenConsumed
	}
	return spend(b.tok, func() error {
		if b.kiosk != k.id {
			return ErrWrongKiosk
		}
		if item.AssetID() != b.item {
			return ErrItemMismatch
		}
		return k.update(func(tx types.Tx, _ *header) error {
			rec, err := codec.Encode(item)
			if err != nil {
				return err
			}
			err = tx.Add(k.id, types.ItemKey(b.item), rec)
			if errors.Is(err, types.ErrKeyExists) {
				return ErrItemExists
			}
			return err
		})
	})
}

// borrowable loads item id for a mutating borrow.
func borrowable[T Asset](k *Kiosk, tx types.Tx, cap *OwnerCap, id types.ID) (T, error) {
	var zero T
	if err := k.authorize(cap); err != nil {
		return zero, err
	}
	item, err := getItem[T](tx, k.id, id)
	if err != nil {
		return zero, err
	}
	for _, exclusive := range []bool{false, true} {
		listed, err := tx.Exists(k.id, types.ListingKey(id, exclusive))
		if err != nil {
			return zero, err
		}
		if listed {
			return zero, ErrItemIsListed
		}
	}
	return item, nil
}
