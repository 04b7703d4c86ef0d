package types

import (
	"errors"
	"time"
)

// Config holds backend selection and parameters for Store.Attach.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// SyncInterval is the WAL sync period for the pebble backend.
	// Zero selects DefaultSyncInterval.
	SyncInterval time.Duration `json:"sync_interval,omitempty" yaml:"sync_interval,omitempty"`
}

// Supported backend names.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendPebble = "pebble"
)

// DefaultSyncInterval is the pebble WAL sync period when none is configured.
const DefaultSyncInterval = 100 * time.Millisecond

// Config validation errors.
var (
	ErrBackendEmpty         = errors.New("backend must not be empty")
	ErrBackendUnknown       = errors.New("unknown backend")
	ErrDataDirRequired      = errors.New("data directory required for persistent backend")
	ErrSyncIntervalNegative = errors.New("sync interval must not be negative")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendMemory: true,
	BackendSQLite: true,
	BackendPebble: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Backend != BackendMemory && c.DataDir == "" {
		return ErrDataDirRequired
	}
	if c.SyncInterval < 0 {
		return ErrSyncIntervalNegative
	}
	return nil
}

// EffectiveSyncInterval returns SyncInterval or the default when unset.
func (c Config) EffectiveSyncInterval() time.Duration {
	if c.SyncInterval == 0 {
		return DefaultSyncInterval
	}
	return c.SyncInterval
}
