package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/kiosk/internal/paths"
	"github.com/mesh-intelligence/kiosk/pkg/store"
	"github.com/mesh-intelligence/kiosk/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	cfgKeyBackend      = "backend"
	cfgKeyDataDir      = "data_dir"
	cfgKeySyncInterval = "sync_interval"
	cfgKeyLogLevel     = "log_level"
	cfgKeySender       = "sender"

	defaultBackend = types.BackendSQLite
)

// configFile holds the structure init writes to config.yaml.
type configFile struct {
	Backend  string `yaml:"backend"`
	DataDir  string `yaml:"data_dir,omitempty"`
	LogLevel string `yaml:"log_level,omitempty"`
	Sender   string `yaml:"sender,omitempty"`
}

// loadConfig reads config.yaml from configDir with Viper. Values may be
// overridden by KIOSK_* environment variables, e.g. KIOSK_BACKEND. A
// missing config.yaml is not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, defaultBackend)
	v.SetDefault(cfgKeyLogLevel, "warn")
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix("KIOSK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// writeConfigIfMissing creates config.yaml in configDir unless it exists.
// Reports whether the file was written.
func writeConfigIfMissing(configDir string, cfg configFile) (bool, error) {
	path := paths.ConfigFile(configDir)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# kiosk CLI configuration\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return false, err
	}
	return true, nil
}

// storeConfig builds the store configuration following the precedence
// flag > config.yaml (or KIOSK_* env) > default.
func (a *app) storeConfig() (types.Config, error) {
	backend := a.flags.backend
	if backend == "" {
		backend = a.config.GetString(cfgKeyBackend)
	}

	cfg := types.Config{
		Backend:      backend,
		SyncInterval: a.config.GetDuration(cfgKeySyncInterval),
	}
	if backend != types.BackendMemory {
		dir, err := paths.ResolveDataDir(a.flags.dataDir, a.config.GetString(cfgKeyDataDir))
		if err != nil {
			return types.Config{}, sysErr(fmt.Errorf("resolve data dir: %w", err))
		}
		cfg.DataDir = dir
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// openStore attaches the configured store. The caller must Detach it.
func (a *app) openStore() (types.Store, error) {
	cfg, err := a.storeConfig()
	if err != nil {
		return nil, err
	}
	s, err := store.Open(cfg)
	if err != nil {
		return nil, sysErr(fmt.Errorf("attach %s store: %w", cfg.Backend, err))
	}
	return s, nil
}

// sender returns the address recorded as owner of new kiosks.
func (a *app) sender() string {
	return a.config.GetString(cfgKeySender)
}
