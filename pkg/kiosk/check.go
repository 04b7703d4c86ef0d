package kiosk

import (
	"fmt"

	"github.com/mesh-intelligence/kiosk/pkg/types"
)

// ErrInconsistent reports stored kiosk records that no sequence of kiosk
// operations could have produced.
var ErrInconsistent = newError("kiosk records are inconsistent", ErrInvariantViolation)

// Check verifies the records of kiosk id inside tx: the header's item
// count matches the stored items, and every listing and lock refers to a
// stored item. An item on loan is absent from the store, so a kiosk with
// an outstanding loan fails the check.
func Check(tx types.Tx, id types.ID) error {
	h, err := loadHeader(tx, id)
	if err != nil {
		return err
	}
	keys, err := tx.Keys(id)
	if err != nil {
		return err
	}

	items := make(map[types.ID]struct{})
	for _, key := range keys {
		if key.Kind == types.KindItem {
			items[key.Item] = struct{}{}
		}
	}
	if uint64(len(items)) != uint64(h.ItemCount) {
		return fmt.Errorf("%w: kiosk %s counts %d items but holds %d", ErrInconsistent, id, h.ItemCount, len(items))
	}

	listed := make(map[types.ID]bool)
	for _, key := range keys {
		switch key.Kind {
		case types.KindListing:
			if _, ok := items[key.Item]; !ok {
				return fmt.Errorf("%w: kiosk %s lists missing item %s", ErrInconsistent, id, key.Item)
			}
			if listed[key.Item] {
				return fmt.Errorf("%w: kiosk %s lists item %s twice", ErrInconsistent, id, key.Item)
			}
			listed[key.Item] = true
		case types.KindLock:
			if _, ok := items[key.Item]; !ok {
				return fmt.Errorf("%w: kiosk %s locks missing item %s", ErrInconsistent, id, key.Item)
			}
		}
	}
	return nil
}
