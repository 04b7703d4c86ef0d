package pebble

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/cockroachdb/pebble"
	"github.com/zeebo/blake3"

	"github.com/mesh-intelligence/kiosk/internal/codec"
	"github.com/mesh-intelligence/kiosk/pkg/types"
)

// attachmentPrefix is the Pebble key prefix for attachment records.
var attachmentPrefix = []byte("a:")

// Key layout: prefix (2) + kiosk ID (16) + blake3(field key) (32).
const (
	kioskOffset = 2
	hashOffset  = kioskOffset + 16
	keyLen      = hashOffset + 32
)

// reader is satisfied by *pebble.Batch (indexed) and *pebble.Snapshot.
type reader interface {
	Get(key []byte) ([]byte, io.Closer, error)
	NewIter(o *pebble.IterOptions) (*pebble.Iterator, error)
}

// writer is satisfied by *pebble.Batch.
type writer interface {
	Set(key, value []byte, opts *pebble.WriteOptions) error
	Delete(key []byte, opts *pebble.WriteOptions) error
}

// entry is the stored value. The field key is kept alongside the record
// because the Pebble key only carries its hash.
type entry struct {
	Key  []byte `cbor:"key"`
	Type string `cbor:"type"`
	Data []byte `cbor:"data"`
}

// pebbleTx implements types.Tx. w is nil for read-only transactions.
type pebbleTx struct {
	r reader
	w writer
}

// makeKey derives the Pebble key for a record, mirroring how object
// stores derive child field IDs from parent ID and field name.
func makeKey(kiosk types.ID, key types.Key) []byte {
	sum := blake3.Sum256(key.Bytes())

	out := make([]byte, keyLen)
	copy(out, attachmentPrefix)
	copy(out[kioskOffset:hashOffset], kiosk[:])
	copy(out[hashOffset:], sum[:])
	return out
}

// kioskPrefix returns the key prefix covering one kiosk namespace.
func kioskPrefix(kiosk types.ID) []byte {
	out := make([]byte, hashOffset)
	copy(out, attachmentPrefix)
	copy(out[kioskOffset:], kiosk[:])
	return out
}

func (t *pebbleTx) Add(kiosk types.ID, key types.Key, rec types.Record) error {
	if t.w == nil {
		return types.ErrReadOnly
	}
	ok, err := t.Exists(kiosk, key)
	if err != nil {
		return err
	}
	if ok {
		return types.ErrKeyExists
	}
	return t.set(kiosk, key, rec)
}

func (t *pebbleTx) Get(kiosk types.ID, key types.Key) (types.Record, error) {
	value, err := t.get(makeKey(kiosk, key))
	if err != nil {
		return types.Record{}, err
	}
	if value == nil {
		return types.Record{}, types.ErrNotFound
	}

	var e entry
	if err := codec.Unmarshal(value, &e); err != nil {
		return types.Record{}, fmt.Errorf("decoding %s: %w", key, err)
	}
	return types.Record{Type: e.Type, Data: e.Data}, nil
}

func (t *pebbleTx) Put(kiosk types.ID, key types.Key, rec types.Record) error {
	if t.w == nil {
		return types.ErrReadOnly
	}
	return t.set(kiosk, key, rec)
}

func (t *pebbleTx) Remove(kiosk types.ID, key types.Key) (types.Record, error) {
	if t.w == nil {
		return types.Record{}, types.ErrReadOnly
	}
	rec, err := t.Get(kiosk, key)
	if err != nil {
		return types.Record{}, err
	}
	if err := t.w.Delete(makeKey(kiosk, key), nil); err != nil {
		return types.Record{}, err
	}
	return rec, nil
}

func (t *pebbleTx) Exists(kiosk types.ID, key types.Key) (bool, error) {
	value, err := t.get(makeKey(kiosk, key))
	if err != nil {
		return false, err
	}
	return value != nil, nil
}

func (t *pebbleTx) Keys(kiosk types.ID) ([]types.Key, error) {
	var keys []types.Key

	err := t.iteratePrefix(kioskPrefix(kiosk), func(_, value []byte) error {
		var e entry
		if err := codec.Unmarshal(value, &e); err != nil {
			return err
		}
		k, err := types.KeyFromBytes(e.Key)
		if err != nil {
			return err
		}
		keys = append(keys, k)
		return nil
	})

	return keys, err
}

func (t *pebbleTx) Namespaces() ([]types.ID, error) {
	var ids []types.ID

	err := t.iteratePrefix(attachmentPrefix, func(key, _ []byte) error {
		if len(key) != keyLen {
			return nil
		}
		var id types.ID
		copy(id[:], key[kioskOffset:hashOffset])
		// Keys are sorted, so duplicates are adjacent.
		if n := len(ids); n == 0 || ids[n-1] != id {
			ids = append(ids, id)
		}
		return nil
	})

	return ids, err
}

func (t *pebbleTx) set(kiosk types.ID, key types.Key, rec types.Record) error {
	value, err := codec.Marshal(entry{Key: key.Bytes(), Type: rec.Type, Data: rec.Data})
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return t.w.Set(makeKey(kiosk, key), value, nil)
}

// get returns a copy of the value at key, or nil if absent.
func (t *pebbleTx) get(key []byte) ([]byte, error) {
	value, closer, err := t.r.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	// Copy the value since it's invalid after closer.Close()
	return bytes.Clone(value), nil
}

// iteratePrefix calls fn for each key-value pair with the given prefix.
func (t *pebbleTx) iteratePrefix(prefix []byte, fn func(key, value []byte) error) error {
	iter, err := t.r.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		value, err := iter.ValueAndErr()
		if err != nil {
			return err
		}
		if err := fn(iter.Key(), value); err != nil {
			return err
		}
	}

	return iter.Error()
}

// prefixUpperBound computes the exclusive upper bound for a prefix scan.
// Increments the last byte that is not 0xFF and truncates after it;
// returns nil if prefix is all 0xFF (full range).
func prefixUpperBound(prefix []byte) []byte {
	upper := bytes.Clone(prefix)

	for i := len(upper) - 1; i >= 0; i-- {
		upper[i]++
		if upper[i] != 0 {
			return upper[:i+1]
		}
	}

	return nil // all 0xFF: unbounded
}
