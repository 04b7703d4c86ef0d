// Package store provides the public factory for attachment store backends,
// keeping backend implementations internal.
package store

import (
	"github.com/mesh-intelligence/kiosk/internal/memory"
	"github.com/mesh-intelligence/kiosk/internal/pebble"
	"github.com/mesh-intelligence/kiosk/internal/sqlite"
	"github.com/mesh-intelligence/kiosk/pkg/types"
)

// New returns a detached store for the named backend.
// Returns ErrBackendEmpty or ErrBackendUnknown for an invalid name.
func New(backend string) (types.Store, error) {
	switch backend {
	case types.BackendMemory:
		return memory.NewStore(), nil
	case types.BackendSQLite:
		return sqlite.NewBackend(), nil
	case types.BackendPebble:
		return pebble.NewStore(), nil
	case "":
		return nil, types.ErrBackendEmpty
	default:
		return nil, types.ErrBackendUnknown
	}
}

// Open creates the backend named in config and attaches it.
//
// Example:
//
//	s, err := store.Open(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".kiosk-db",
//	})
//	defer s.Detach()
func Open(config types.Config) (types.Store, error) {
	s, err := New(config.Backend)
	if err != nil {
		return nil, err
	}
	if err := s.Attach(config); err != nil {
		return nil, err
	}
	return s, nil
}
