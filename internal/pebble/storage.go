// Package pebble implements the attachment store on a Pebble LSM database.
// Writes are committed with NoSync and a background goroutine periodically
// syncs the WAL to disk.
package pebble

import (
	"sync"
	"time"

	"github.com/cockroachdb/pebble"

	"github.com/mesh-intelligence/kiosk/internal/paths"
	"github.com/mesh-intelligence/kiosk/pkg/types"
)

// Store implements types.Store backed by Pebble.
type Store struct {
	mu       sync.RWMutex
	writeMu  sync.Mutex // serializes Update transactions
	attached bool
	db       *pebble.DB
	stopSync chan struct{}
	wg       sync.WaitGroup
}

// NewStore creates a detached Pebble store.
func NewStore() *Store {
	return &Store{}
}

// Attach opens the database under DataDir and starts the WAL sync loop.
func (s *Store) Attach(config types.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if config.Backend != types.BackendPebble {
		return types.ErrBackendUnknown
	}

	cache := pebble.NewCache(8 << 20) // 8 MB
	defer cache.Unref()
	opts := &pebble.Options{
		Cache:                       cache,
		MemTableSize:                4 << 20, // 4 MB memtable
		MemTableStopWritesThreshold: 2,
	}

	db, err := pebble.Open(paths.PebbleDir(config.DataDir), opts)
	if err != nil {
		return err
	}

	s.db = db
	s.stopSync = make(chan struct{})
	s.attached = true
	s.startSyncLoop(config.EffectiveSyncInterval())

	return nil
}

// Detach stops the sync loop, performs a final sync, and closes the database.
// Idempotent.
func (s *Store) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return nil
	}
	s.attached = false

	close(s.stopSync)
	s.wg.Wait()

	// Final sync before closing
	if err := s.sync(); err != nil {
		s.db.Close()
		s.db = nil
		return err
	}

	err := s.db.Close()
	s.db = nil
	return err
}

// Update runs fn against an indexed batch that sees its own writes.
// The batch is committed only if fn succeeds.
func (s *Store) Update(fn func(tx types.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return types.ErrStoreDetached
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	batch := s.db.NewIndexedBatch()
	defer batch.Close()

	if err := fn(&pebbleTx{r: batch, w: batch}); err != nil {
		return err
	}

	return batch.Commit(pebble.NoSync)
}

// View runs fn against a point-in-time snapshot.
func (s *Store) View(fn func(tx types.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return types.ErrStoreDetached
	}

	snap := s.db.NewSnapshot()
	defer snap.Close()

	return fn(&pebbleTx{r: snap})
}

// startSyncLoop starts the background goroutine that periodically syncs the WAL.
func (s *Store) startSyncLoop(interval time.Duration) {
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				_ = s.sync()
			case <-s.stopSync:
				return
			}
		}
	}()
}

// sync forces a WAL sync to disk.
func (s *Store) sync() error {
	return s.db.LogData(nil, pebble.Sync)
}
