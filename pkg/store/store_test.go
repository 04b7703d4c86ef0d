package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kiosk/pkg/types"
)

func TestOpenEachBackend(t *testing.T) {
	for _, backend := range []string{types.BackendMemory, types.BackendSQLite, types.BackendPebble} {
		t.Run(backend, func(t *testing.T) {
			s, err := Open(types.Config{Backend: backend, DataDir: t.TempDir()})
			require.NoError(t, err)
			defer s.Detach()

			kiosk := types.NewID()
			require.NoError(t, s.Update(func(tx types.Tx) error {
				return tx.Add(kiosk, types.HeaderKey(), types.Record{Type: "h", Data: []byte{1}})
			}))
		})
	}
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, types.ErrBackendEmpty)

	_, err = New("postgres")
	assert.ErrorIs(t, err, types.ErrBackendUnknown)
}

func TestOpenValidatesConfig(t *testing.T) {
	_, err := Open(types.Config{Backend: types.BackendSQLite})
	assert.ErrorIs(t, err, types.ErrDataDirRequired)
}
