// Package memory implements an in-process attachment store. Records live in
// maps keyed by kiosk ID; each Update keeps an undo journal so a failed
// transaction leaves no trace.
package memory

import (
	"maps"
	"slices"
	"sync"

	"github.com/mesh-intelligence/kiosk/pkg/types"
)

// Store implements types.Store in memory.
type Store struct {
	mu       sync.RWMutex
	attached bool
	data     map[types.ID]map[types.Key]types.Record
}

// NewStore creates a detached memory store.
func NewStore() *Store {
	return &Store{}
}

// Attach initializes an empty namespace. The config must name the memory
// backend.
func (s *Store) Attach(config types.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if config.Backend != types.BackendMemory {
		return types.ErrBackendUnknown
	}

	s.data = make(map[types.ID]map[types.Key]types.Record)
	s.attached = true
	return nil
}

// Detach drops all records. Idempotent.
func (s *Store) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attached = false
	s.data = nil
	return nil
}

// Update runs fn under the write lock, rolling back every write if fn fails.
func (s *Store) Update(fn func(tx types.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return types.ErrStoreDetached
	}

	tx := &memTx{store: s, writable: true}
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

// View runs fn under the read lock.
func (s *Store) View(fn func(tx types.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return types.ErrStoreDetached
	}
	return fn(&memTx{store: s})
}

// undoEntry restores one key to its state before a write.
type undoEntry struct {
	kiosk   types.ID
	key     types.Key
	prev    types.Record
	existed bool
}

// memTx implements types.Tx over the store maps.
type memTx struct {
	store    *Store
	writable bool
	journal  []undoEntry
}

func (tx *memTx) Add(kiosk types.ID, key types.Key, rec types.Record) error {
	if !tx.writable {
		return types.ErrReadOnly
	}
	if _, ok := tx.lookup(kiosk, key); ok {
		return types.ErrKeyExists
	}
	tx.write(kiosk, key, rec)
	return nil
}

func (tx *memTx) Get(kiosk types.ID, key types.Key) (types.Record, error) {
	rec, ok := tx.lookup(kiosk, key)
	if !ok {
		return types.Record{}, types.ErrNotFound
	}
	return cloneRecord(rec), nil
}

func (tx *memTx) Put(kiosk types.ID, key types.Key, rec types.Record) error {
	if !tx.writable {
		return types.ErrReadOnly
	}
	tx.write(kiosk, key, rec)
	return nil
}

func (tx *memTx) Remove(kiosk types.ID, key types.Key) (types.Record, error) {
	if !tx.writable {
		return types.Record{}, types.ErrReadOnly
	}
	rec, ok := tx.lookup(kiosk, key)
	if !ok {
		return types.Record{}, types.ErrNotFound
	}
	tx.journal = append(tx.journal, undoEntry{kiosk: kiosk, key: key, prev: rec, existed: true})
	ns := tx.store.data[kiosk]
	delete(ns, key)
	if len(ns) == 0 {
		delete(tx.store.data, kiosk)
	}
	return rec, nil
}

func (tx *memTx) Exists(kiosk types.ID, key types.Key) (bool, error) {
	_, ok := tx.lookup(kiosk, key)
	return ok, nil
}

func (tx *memTx) Keys(kiosk types.ID) ([]types.Key, error) {
	keys := slices.Collect(maps.Keys(tx.store.data[kiosk]))
	slices.SortFunc(keys, compareKeys)
	return keys, nil
}

func (tx *memTx) Namespaces() ([]types.ID, error) {
	ids := slices.Collect(maps.Keys(tx.store.data))
	slices.SortFunc(ids, func(a, b types.ID) int { return slices.Compare(a[:], b[:]) })
	return ids, nil
}

func (tx *memTx) lookup(kiosk types.ID, key types.Key) (types.Record, bool) {
	rec, ok := tx.store.data[kiosk][key]
	return rec, ok
}

// write stores a copy of rec, journaling the previous value.
func (tx *memTx) write(kiosk types.ID, key types.Key, rec types.Record) {
	prev, existed := tx.lookup(kiosk, key)
	tx.journal = append(tx.journal, undoEntry{kiosk: kiosk, key: key, prev: prev, existed: existed})

	ns, ok := tx.store.data[kiosk]
	if !ok {
		ns = make(map[types.Key]types.Record)
		tx.store.data[kiosk] = ns
	}
	ns[key] = cloneRecord(rec)
}

// rollback replays the journal in reverse.
func (tx *memTx) rollback() {
	for i := len(tx.journal) - 1; i >= 0; i-- {
		u := tx.journal[i]
		ns, ok := tx.store.data[u.kiosk]
		if !ok {
			ns = make(map[types.Key]types.Record)
			tx.store.data[u.kiosk] = ns
		}
		if u.existed {
			ns[u.key] = u.prev
		} else {
			delete(ns, u.key)
		}
		if len(ns) == 0 {
			delete(tx.store.data, u.kiosk)
		}
	}
	tx.journal = nil
}

func cloneRecord(rec types.Record) types.Record {
	return types.Record{Type: rec.Type, Data: slices.Clone(rec.Data)}
}

// compareKeys orders keys by their binary encoding.
func compareKeys(a, b types.Key) int {
	return slices.Compare(a.Bytes(), b.Bytes())
}
