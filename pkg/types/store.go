package types

import (
	"errors"
	"fmt"
)

// Kind discriminates the records a kiosk keeps in its attachment store.
type Kind uint8

// Record kinds. Items and locks are keyed by item ID alone; listings are
// keyed by item ID and the exclusive flag.
const (
	KindHeader  Kind = 1
	KindItem    Kind = 2
	KindListing Kind = 3
	KindLock    Kind = 4
)

// kindNames maps each kind to its stable text form.
var kindNames = map[Kind]string{
	KindHeader:  "header",
	KindItem:    "item",
	KindListing: "listing",
	KindLock:    "lock",
}

// String returns the stable text form of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind returns the kind for its text form.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, ErrInvalidKey
}

// Key addresses one record within a kiosk's attachment namespace.
type Key struct {
	Kind      Kind
	Item      ID
	Exclusive bool
}

// HeaderKey addresses the kiosk header record.
func HeaderKey() Key { return Key{Kind: KindHeader} }

// ItemKey addresses a stored item.
func ItemKey(item ID) Key { return Key{Kind: KindItem, Item: item} }

// ListingKey addresses a listing record for an item.
func ListingKey(item ID, exclusive bool) Key {
	return Key{Kind: KindListing, Item: item, Exclusive: exclusive}
}

// LockKey addresses the lock marker of an item.
func LockKey(item ID) Key { return Key{Kind: KindLock, Item: item} }

// String renders the key as kind/item[/x].
func (k Key) String() string {
	if k.Exclusive {
		return fmt.Sprintf("%s/%s/x", k.Kind, k.Item)
	}
	return fmt.Sprintf("%s/%s", k.Kind, k.Item)
}

// Bytes returns a fixed-width binary encoding of the key:
// kind (1 byte), item (16 bytes), exclusive flag (1 byte).
func (k Key) Bytes() []byte {
	buf := make([]byte, 18)
	buf[0] = byte(k.Kind)
	copy(buf[1:17], k.Item[:])
	if k.Exclusive {
		buf[17] = 1
	}
	return buf
}

// KeyFromBytes decodes a key produced by Key.Bytes.
func KeyFromBytes(b []byte) (Key, error) {
	if len(b) != 18 {
		return Key{}, ErrInvalidKey
	}
	var k Key
	k.Kind = Kind(b[0])
	if _, ok := kindNames[k.Kind]; !ok {
		return Key{}, ErrInvalidKey
	}
	copy(k.Item[:], b[1:17])
	k.Exclusive = b[17] == 1
	return k, nil
}

// Record is a typed value held against a key. Type names the Go type the
// payload decodes into; Data is the encoded payload.
type Record struct {
	Type string `cbor:"type" json:"type"`
	Data []byte `cbor:"data" json:"data"`
}

// Store is the keyed attachment store holding kiosk state. Each Update is
// all-or-nothing: if fn returns an error, none of its writes are visible.
type Store interface {
	// Attach connects the store to the backend described by config.
	// Returns ErrAlreadyAttached if called while attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent.
	// After Detach, transactions return ErrStoreDetached.
	Detach() error

	// Update runs fn in a read-write transaction.
	Update(fn func(tx Tx) error) error

	// View runs fn in a read-only transaction. Writes return ErrReadOnly.
	View(fn func(tx Tx) error) error
}

// Tx is the set of typed key/value operations available inside a
// transaction. Every operation is scoped to one kiosk namespace.
type Tx interface {
	// Add inserts a record. Returns ErrKeyExists if the key is live.
	Add(kiosk ID, key Key, rec Record) error

	// Get returns the record at key. Returns ErrNotFound if absent.
	Get(kiosk ID, key Key) (Record, error)

	// Put inserts or replaces the record at key.
	Put(kiosk ID, key Key, rec Record) error

	// Remove deletes and returns the record at key.
	// Returns ErrNotFound if absent.
	Remove(kiosk ID, key Key) (Record, error)

	// Exists reports whether key is live.
	Exists(kiosk ID, key Key) (bool, error)

	// Keys lists every live key in the kiosk namespace.
	Keys(kiosk ID) ([]Key, error)

	// Namespaces lists every kiosk ID holding at least one record.
	Namespaces() ([]ID, error)
}

// ExistsWithType reports whether key is live and holds a record of typ.
func ExistsWithType(tx Tx, kiosk ID, key Key, typ string) (bool, error) {
	rec, err := tx.Get(kiosk, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return rec.Type == typ, nil
}

// RemoveIfExists removes key when live and reports whether it did.
func RemoveIfExists(tx Tx, kiosk ID, key Key) (bool, error) {
	ok, err := tx.Exists(kiosk, key)
	if err != nil || !ok {
		return false, err
	}
	if _, err := tx.Remove(kiosk, key); err != nil {
		return false, err
	}
	return true, nil
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrReadOnly        = errors.New("write in read-only transaction")
)

// Record operation errors.
var (
	ErrNotFound     = errors.New("record not found")
	ErrKeyExists    = errors.New("record already exists")
	ErrInvalidKey   = errors.New("invalid record key")
	ErrInvalidID    = errors.New("invalid ID")
	ErrTypeMismatch = errors.New("record type mismatch")
)
