package types

import (
	"errors"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend returns ErrBackendEmpty",
			config:  Config{Backend: "", DataDir: "/tmp/data"},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			config:  Config{Backend: "postgres", DataDir: "/tmp/data"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:    "valid sqlite config",
			config:  Config{Backend: BackendSQLite, DataDir: "/tmp/data"},
			wantErr: nil,
		},
		{
			name:    "sqlite without DataDir is rejected",
			config:  Config{Backend: BackendSQLite},
			wantErr: ErrDataDirRequired,
		},
		{
			name:    "pebble without DataDir is rejected",
			config:  Config{Backend: BackendPebble},
			wantErr: ErrDataDirRequired,
		},
		{
			name:    "memory needs no DataDir",
			config:  Config{Backend: BackendMemory},
			wantErr: nil,
		},
		{
			name:    "negative sync interval",
			config:  Config{Backend: BackendPebble, DataDir: "/tmp/data", SyncInterval: -time.Second},
			wantErr: ErrSyncIntervalNegative,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigEffectiveSyncInterval(t *testing.T) {
	if got := (Config{}).EffectiveSyncInterval(); got != DefaultSyncInterval {
		t.Fatalf("expected default %v, got %v", DefaultSyncInterval, got)
	}
	if got := (Config{SyncInterval: time.Second}).EffectiveSyncInterval(); got != time.Second {
		t.Fatalf("expected 1s, got %v", got)
	}
}
