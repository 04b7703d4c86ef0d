package kiosk

import (
	"github.com/mesh-intelligence/kiosk/internal/codec"
	"github.com/mesh-intelligence/kiosk/pkg/coin"
	"github.com/mesh-intelligence/kiosk/pkg/events"
	"github.com/mesh-intelligence/kiosk/pkg/linear"
	"github.com/mesh-intelligence/kiosk/pkg/policy"
	"github.com/mesh-intelligence/kiosk/pkg/types"
)

// ListWithPurchaseCap lists item id exclusively and returns the only cap
// that can buy it, for at least minPrice. The item must not be listed.
//
// The cap can be handed to other code (an auction, a bundle sale) that
// decides the sale. If it is lost the item stays stranded in the kiosk.
func ListWithPurchaseCap[T Asset](k *Kiosk, cap *OwnerCap, id types.ID, minPrice uint64) (*PurchaseCap[T], error) {
	err := k.update(func(tx types.Tx, _ *header) error {
		if err := k.authorize(cap); err != nil {
			return err
		}
		if err := requireItem[T](tx, k.id, id); err != nil {
			return err
		}
		for _, exclusive := range []bool{false, true} {
			listed, err := tx.Exists(k.id, types.ListingKey(id, exclusive))
			if err != nil {
				return err
			}
			if listed {
				return ErrAlreadyListed
			}
		}
		rec, err := codec.Encode(minPrice)
		if err != nil {
			return err
		}
		return tx.Add(k.id, types.ListingKey(id, true), rec)
	})
	if err != nil {
		return nil, err
	}

	return &PurchaseCap[T]{
		id:       types.NewID(),
		kiosk:    k.id,
		item:     id,
		minPrice: minPrice,
		tok:      linear.NewToken(k.ledger, PurchaseCapToken),
	}, nil
}

// PurchaseWithCap buys the item pcap reserves, consuming pcap. payment
// must be at least the cap's minimum price; the whole payment goes to the
// proceeds and is reported as the price paid.
func PurchaseWithCap[T Asset](k *Kiosk, pcap *PurchaseCap[T], payment coin.Coin) (T, *policy.TransferRequest[T], error) {
	var item T
	if pcap == nil {
		return item, nil, ErrTokenConsumed
	}

	paid := payment.Value()
	err := spend(pcap.tok, func() error {
		if paid < pcap.minPrice {
			return ErrIncorrectAmount
		}
		if pcap.kiosk != k.id {
			return ErrWrongKiosk
		}
		return k.update(func(tx types.Tx, h *header) error {
			if _, err := tx.Remove(k.id, types.ListingKey(pcap.item, true)); err != nil {
				return err
			}
			var err error
			item, err = sell[T](tx, k.id, h, pcap.item, paid)
			return err
		})
	})
	if err != nil {
		var zero T
		return zero, nil, err
	}

	k.emit(events.Event{Kind: events.ItemPurchased, AssetType: codec.TypeTag[T](), Item: pcap.item, Price: paid})
	return item, policy.NewRequest[T](k.ledger, pcap.item, paid, k.id), nil
}

// ReturnPurchaseCap consumes pcap without a sale and removes the exclusive
// listing. The item stays in the kiosk, locked if it was locked before.
func ReturnPurchaseCap[T Asset](k *Kiosk, pcap *PurchaseCap[T]) error {
	if pcap == nil {
		return ErrTokenConsumed
	}
	return spend(pcap.tok, func() error {
		if pcap.kiosk != k.id {
			return ErrWrongKiosk
		}
		return k.update(func(tx types.Tx, _ *header) error {
			_, err := tx.Remove(k.id, types.ListingKey(pcap.item, true))
			return err
		})
	})
}
