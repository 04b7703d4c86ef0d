package kiosk

import (
	"errors"
	"math"
	"slices"
	"sync"

	"github.com/mesh-intelligence/kiosk/internal/codec"
	"github.com/mesh-intelligence/kiosk/internal/logger"
	"github.com/mesh-intelligence/kiosk/pkg/coin"
	"github.com/mesh-intelligence/kiosk/pkg/events"
	"github.com/mesh-intelligence/kiosk/pkg/linear"
	"github.com/mesh-intelligence/kiosk/pkg/types"
)

// Asset is a uniquely identified value a kiosk can hold. Implementations
// must be encodable as CBOR and must keep AssetID stable.
type Asset interface {
	AssetID() types.ID
}

// header is the kiosk state stored at types.HeaderKey.
type header struct {
	Owner     string   `cbor:"owner"`
	Profits   uint64   `cbor:"profits"`
	ItemCount uint32   `cbor:"item_count"`
	CapID     types.ID `cbor:"cap_id"`
}

// Info is a snapshot of a kiosk header.
type Info struct {
	ID        types.ID
	Owner     string
	Profits   uint64
	ItemCount uint32
}

// Kiosk is a handle to one kiosk in an attachment store. Operations on a
// handle are serialized; each runs as one store transaction.
type Kiosk struct {
	id     types.ID
	store  types.Store
	sender string
	sink   events.Sink
	ledger *linear.Ledger

	mu sync.Mutex
}

// Option configures a Kiosk handle.
type Option func(*Kiosk)

// WithSender sets the address of the party acting through the handle.
// New records it as the owner and SetOwner copies it.
func WithSender(addr string) Option {
	return func(k *Kiosk) { k.sender = addr }
}

// WithEvents delivers listing, purchase and delisting events to sink.
func WithEvents(sink events.Sink) Option {
	return func(k *Kiosk) {
		if sink != nil {
			k.sink = sink
		}
	}
}

// WithLedger registers every transfer request, purchase cap and loan the
// handle issues with l.
func WithLedger(l *linear.Ledger) Option {
	return func(k *Kiosk) { k.ledger = l }
}

func newHandle(id types.ID, store types.Store, opts []Option) *Kiosk {
	k := &Kiosk{id: id, store: store, sink: events.Discard{}}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// New creates an empty kiosk in store and returns it with its OwnerCap.
// The owner address is the sender set with WithSender.
func New(store types.Store, opts ...Option) (*Kiosk, *OwnerCap, error) {
	k := newHandle(types.NewID(), store, opts)
	capID := types.NewSecretID()

	err := store.Update(func(tx types.Tx) error {
		rec, err := codec.Encode(header{Owner: k.sender, CapID: capID})
		if err != nil {
			return err
		}
		return tx.Add(k.id, types.HeaderKey(), rec)
	})
	if err != nil {
		return nil, nil, err
	}

	logger.Debug("kiosk created", "kiosk", k.id, "owner", k.sender)
	return k, newOwnerCap(capID, k.id), nil
}

// Open returns a handle to an existing kiosk.
// Returns ErrKioskNotFound if no kiosk with id exists in store.
func Open(store types.Store, id types.ID, opts ...Option) (*Kiosk, error) {
	k := newHandle(id, store, opts)
	err := store.View(func(tx types.Tx) error {
		_, err := loadHeader(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return k, nil
}

// RecoverOwnerCap re-issues the OwnerCap recorded for the kiosk when capID
// matches it. It lets a process that persisted the cap ID regain control.
func (k *Kiosk) RecoverOwnerCap(capID types.ID) (*OwnerCap, error) {
	var found types.ID
	err := k.view(func(_ types.Tx, h *header) error {
		found = h.CapID
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found != capID {
		return nil, ErrNotOwner
	}
	return newOwnerCap(capID, k.id), nil
}

// ID returns the kiosk identifier.
func (k *Kiosk) ID() types.ID { return k.id }

// HasAccess reports whether cap authorizes this kiosk.
func (k *Kiosk) HasAccess(cap *OwnerCap) bool {
	return k.authorize(cap) == nil
}

func (k *Kiosk) authorize(cap *OwnerCap) error {
	if cap == nil || cap.kiosk != k.id {
		return ErrNotOwner
	}
	return nil
}

// Close deletes an empty kiosk, consumes cap and returns the remaining
// proceeds.
func (k *Kiosk) Close(cap *OwnerCap) (coin.Coin, error) {
	if err := k.authorize(cap); err != nil {
		return coin.Zero(), err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	var profits uint64
	err := spend(cap.tok, func() error {
		return k.store.Update(func(tx types.Tx) error {
			h, err := loadHeader(tx, k.id)
			if err != nil {
				return err
			}
			if h.ItemCount != 0 {
				return ErrNotEmpty
			}
			keys, err := tx.Keys(k.id)
			if err != nil {
				return err
			}
			for _, key := range keys {
				if _, err := tx.Remove(k.id, key); err != nil {
					return err
				}
			}
			profits = h.Profits
			return nil
		})
	})
	if err != nil {
		return coin.Zero(), err
	}

	logger.Debug("kiosk closed", "kiosk", k.id, "profits", profits)
	return coin.New(profits), nil
}

// SetOwner records the handle's sender as the owner address. The address
// is informational and never used for authorization.
func (k *Kiosk) SetOwner(cap *OwnerCap) error {
	return k.SetOwnerCustom(cap, k.sender)
}

// SetOwnerCustom records addr as the owner address.
func (k *Kiosk) SetOwnerCustom(cap *OwnerCap, addr string) error {
	return k.update(func(_ types.Tx, h *header) error {
		if err := k.authorize(cap); err != nil {
			return err
		}
		h.Owner = addr
		return nil
	})
}

// Withdraw removes amount from the proceeds, or all of them when amount is
// nil. Returns ErrNotEnough if amount exceeds the balance.
func (k *Kiosk) Withdraw(cap *OwnerCap, amount *uint64) (coin.Coin, error) {
	var out uint64
	err := k.update(func(_ types.Tx, h *header) error {
		if err := k.authorize(cap); err != nil {
			return err
		}
		out = h.Profits
		if amount != nil {
			out = *amount
		}
		rest, err := coin.Debit(h.Profits, out)
		if err != nil {
			return ErrNotEnough
		}
		h.Profits = rest
		return nil
	})
	if err != nil {
		return coin.Zero(), err
	}
	return coin.New(out), nil
}

// Info returns the kiosk header.
func (k *Kiosk) Info() (Info, error) {
	var info Info
	err := k.view(func(_ types.Tx, h *header) error {
		info = Info{ID: k.id, Owner: h.Owner, Profits: h.Profits, ItemCount: h.ItemCount}
		return nil
	})
	return info, err
}

// Owner returns the recorded owner address.
func (k *Kiosk) Owner() (string, error) {
	info, err := k.Info()
	return info.Owner, err
}

// Profits returns the accumulated proceeds.
func (k *Kiosk) Profits() (uint64, error) {
	info, err := k.Info()
	return info.Profits, err
}

// ItemCount returns the number of items owned by the kiosk, including items
// out on loan.
func (k *Kiosk) ItemCount() (uint32, error) {
	info, err := k.Info()
	return info.ItemCount, err
}

// HasItem reports whether item is stored in the kiosk.
func (k *Kiosk) HasItem(item types.ID) (bool, error) {
	return k.exists(types.ItemKey(item))
}

// IsLocked reports whether item is locked.
func (k *Kiosk) IsLocked(item types.ID) (bool, error) {
	return k.exists(types.LockKey(item))
}

// IsListed reports whether item has a non-exclusive listing.
func (k *Kiosk) IsListed(item types.ID) (bool, error) {
	return k.exists(types.ListingKey(item, false))
}

// IsListedExclusively reports whether item has an exclusive listing.
func (k *Kiosk) IsListedExclusively(item types.ID) (bool, error) {
	return k.exists(types.ListingKey(item, true))
}

// Price returns the price of item's non-exclusive listing.
func (k *Kiosk) Price(item types.ID) (uint64, error) {
	var price uint64
	err := k.view(func(tx types.Tx, _ *header) error {
		var err error
		price, err = listingPrice(tx, k.id, item, false)
		return err
	})
	return price, err
}

// Items returns the IDs of stored items in ascending order.
func (k *Kiosk) Items() ([]types.ID, error) {
	var ids []types.ID
	err := k.view(func(tx types.Tx, _ *header) error {
		keys, err := tx.Keys(k.id)
		if err != nil {
			return err
		}
		for _, key := range keys {
			if key.Kind == types.KindItem {
				ids = append(ids, key.Item)
			}
		}
		return nil
	})
	slices.SortFunc(ids, func(a, b types.ID) int {
		return slices.Compare(a[:], b[:])
	})
	return ids, err
}

func (k *Kiosk) exists(key types.Key) (bool, error) {
	var ok bool
	err := k.view(func(tx types.Tx, _ *header) error {
		var err error
		ok, err = tx.Exists(k.id, key)
		return err
	})
	return ok, err
}

// update runs fn in a write transaction with the decoded header and
// stores the header back when fn succeeds.
func (k *Kiosk) update(fn func(tx types.Tx, h *header) error) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.store.Update(func(tx types.Tx) error {
		h, err := loadHeader(tx, k.id)
		if err != nil {
			return err
		}
		if err := fn(tx, &h); err != nil {
			return err
		}
		rec, err := codec.Encode(h)
		if err != nil {
			return err
		}
		return tx.Put(k.id, types.HeaderKey(), rec)
	})
}

func (k *Kiosk) view(fn func(tx types.Tx, h *header) error) error {
	return k.store.View(func(tx types.Tx) error {
		h, err := loadHeader(tx, k.id)
		if err != nil {
			return err
		}
		return fn(tx, &h)
	})
}

func (k *Kiosk) emit(e events.Event) {
	e.Kiosk = k.id
	k.sink.Emit(e)
}

func loadHeader(tx types.Tx, id types.ID) (header, error) {
	rec, err := tx.Get(id, types.HeaderKey())
	if errors.Is(err, types.ErrNotFound) {
		return header{}, ErrKioskNotFound
	}
	if err != nil {
		return header{}, err
	}
	return codec.Decode[header](rec)
}

func (h *header) addItem() error {
	if h.ItemCount == math.MaxUint32 {
		return errCountOverflow
	}
	h.ItemCount++
	return nil
}

func (h *header) removeItem() error {
	if h.ItemCount == 0 {
		return errCountUnderflow
	}
	h.ItemCount--
	return nil
}

// spend consumes tok around fn, reporting reuse as ErrTokenConsumed.
func spend(tok *linear.Token, fn func() error) error {
	err := tok.Spend(fn)
	if errors.Is(err, linear.ErrConsumed) {
		return ErrTokenConsumed
	}
	return err
}
