// Package paths resolves configuration and data directory locations and
// the files kept inside them.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/mesh-intelligence/kiosk/pkg/types"
)

// CWD-relative directory names.
const (
	DefaultConfigDirName = ".kiosk"
	DefaultDataDirName   = ".kiosk-db"
)

// Names of the files kept in the config and data directories.
const (
	ConfigFileName = "config.yaml"
	WalletFileName = "wallet.yaml"
	SQLiteFileName = "kiosk.db"
	PebbleDirName  = "pebble"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "KIOSK_CONFIG_DIR"
	EnvDataDir   = "KIOSK_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/kiosk (fallback ~/.config/kiosk)
// macOS:   ~/Library/Application Support/kiosk
// Windows: %APPDATA%/kiosk
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "kiosk"), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "kiosk"), nil
	default:
		// macOS and Windows use os.UserConfigDir which returns
		// ~/Library/Application Support on macOS and %APPDATA% on Windows.
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "kiosk"), nil
	}
}

// DefaultDataDir returns the platform-specific default data directory.
//
// Linux:   $XDG_DATA_HOME/kiosk (fallback ~/.local/share/kiosk)
// macOS:   ~/Library/Application Support/kiosk
// Windows: %APPDATA%/kiosk
func DefaultDataDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, "kiosk"), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share", "kiosk"), nil
	default:
		// macOS and Windows: same as config dir.
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "kiosk"), nil
	}
}

// ResolveConfigDir returns the configuration directory following the precedence
// chain: flag > KIOSK_CONFIG_DIR env > DefaultConfigDir().
//
// If flag is non-empty it wins. Otherwise the KIOSK_CONFIG_DIR environment
// variable is checked. If neither is set, the platform default is returned.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > configYAMLValue > KIOSK_DATA_DIR env > DefaultDataDir().
// Without an override the data lives in .kiosk-db under the working
// directory, next to the project using it.
func ResolveDataDir(flag, configYAMLValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// ConfigFile returns the path of config.yaml in configDir.
func ConfigFile(configDir string) string {
	return filepath.Join(configDir, ConfigFileName)
}

// WalletFile returns the path of the owner cap wallet in configDir.
func WalletFile(configDir string) string {
	return filepath.Join(configDir, WalletFileName)
}

// SQLiteFile returns the SQLite database path in dataDir.
func SQLiteFile(dataDir string) string {
	return filepath.Join(dataDir, SQLiteFileName)
}

// PebbleDir returns the Pebble database directory in dataDir.
func PebbleDir(dataDir string) string {
	return filepath.Join(dataDir, PebbleDirName)
}

// StorePath returns where the backend in cfg keeps its data: a file for
// sqlite, a directory for pebble and "" for memory.
func StorePath(cfg types.Config) (string, error) {
	switch cfg.Backend {
	case types.BackendMemory:
		return "", nil
	case types.BackendSQLite:
		return SQLiteFile(cfg.DataDir), nil
	case types.BackendPebble:
		return PebbleDir(cfg.DataDir), nil
	}
	return "", fmt.Errorf("%w: %q", types.ErrBackendUnknown, cfg.Backend)
}
