package paths

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kiosk/pkg/types"
)

// fakeHome points the platform lookups at dir for the rest of the test.
func fakeHome(t *testing.T, dir string) {
	t.Helper()
	prev := platformDir
	t.Cleanup(func() { platformDir = prev })
	platformDir.homeDir = func() (string, error) { return dir, nil }
	platformDir.userConfigDir = func() (string, error) { return filepath.Join(dir, "AppConfig"), nil }
}

func TestDefaultDirs(t *testing.T) {
	home := t.TempDir()
	fakeHome(t, home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_DATA_HOME", "")

	configDir, err := DefaultConfigDir()
	require.NoError(t, err)
	dataDir, err := DefaultDataDir()
	require.NoError(t, err)

	if runtime.GOOS == "linux" {
		assert.Equal(t, filepath.Join(home, ".config", "kiosk"), configDir)
		assert.Equal(t, filepath.Join(home, ".local", "share", "kiosk"), dataDir)

		t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
		t.Setenv("XDG_DATA_HOME", "/xdg/data")
		configDir, err = DefaultConfigDir()
		require.NoError(t, err)
		dataDir, err = DefaultDataDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("/xdg/config", "kiosk"), configDir)
		assert.Equal(t, filepath.Join("/xdg/data", "kiosk"), dataDir)
		return
	}
	assert.Equal(t, filepath.Join(home, "AppConfig", "kiosk"), configDir)
	assert.Equal(t, configDir, dataDir)
}

func TestDefaultDirsPlatformError(t *testing.T) {
	boom := errors.New("no home")
	prev := platformDir
	t.Cleanup(func() { platformDir = prev })
	platformDir.homeDir = func() (string, error) { return "", boom }
	platformDir.userConfigDir = func() (string, error) { return "", boom }
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_DATA_HOME", "")

	_, err := DefaultConfigDir()
	assert.ErrorIs(t, err, boom)
	_, err = DefaultDataDir()
	assert.ErrorIs(t, err, boom)
}

func TestResolveConfigDir(t *testing.T) {
	home := t.TempDir()
	fakeHome(t, home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))
	defaultDir, err := DefaultConfigDir()
	require.NoError(t, err)

	cwd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		name string
		flag string
		env  string
		want string
	}{
		{"flag", "/flag/cfg", "/env/cfg", "/flag/cfg"},
		{"env", "", "/env/cfg", "/env/cfg"},
		{"relative flag", "cfg", "", filepath.Join(cwd, "cfg")},
		{"relative env", "", "envcfg", filepath.Join(cwd, "envcfg")},
		{"default", "", "", defaultDir},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvConfigDir, tt.env)
			got, err := ResolveConfigDir(tt.flag)
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestResolveDataDir(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		name   string
		flag   string
		config string
		env    string
		want   string
	}{
		{"flag", "/flag/data", "/config/data", "/env/data", "/flag/data"},
		{"config", "", "/config/data", "/env/data", "/config/data"},
		{"env", "", "", "/env/data", "/env/data"},
		{"relative config", "", "data", "", filepath.Join(cwd, "data")},
		{"working directory", "", "", "", filepath.Join(cwd, DefaultDataDirName)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvDataDir, tt.env)
			got, err := ResolveDataDir(tt.flag, tt.config)
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestFileResolvers(t *testing.T) {
	configDir := filepath.Join("home", "cfg")
	dataDir := filepath.Join("var", "kiosk")

	assert.Equal(t, filepath.Join(configDir, "config.yaml"), ConfigFile(configDir))
	assert.Equal(t, filepath.Join(configDir, "wallet.yaml"), WalletFile(configDir))
	assert.Equal(t, filepath.Join(dataDir, "kiosk.db"), SQLiteFile(dataDir))
	assert.Equal(t, filepath.Join(dataDir, "pebble"), PebbleDir(dataDir))
	assert.NotEqual(t, WalletFile(configDir), ConfigFile(configDir))
}

func TestStorePath(t *testing.T) {
	dataDir := t.TempDir()

	tests := []struct {
		backend string
		want    string
		wantErr error
	}{
		{types.BackendMemory, "", nil},
		{types.BackendSQLite, SQLiteFile(dataDir), nil},
		{types.BackendPebble, PebbleDir(dataDir), nil},
		{"bolt", "", types.ErrBackendUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			got, err := StorePath(types.Config{Backend: tt.backend, DataDir: dataDir})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
