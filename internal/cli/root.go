// Package cli implements the kiosk command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/kiosk/internal/logger"
	"github.com/mesh-intelligence/kiosk/internal/paths"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	backend   string
	logLevel  string
	jsonMode  bool
}

// app carries the state shared by the commands of one invocation.
type app struct {
	flags     rootFlags
	configDir string
	config    *viper.Viper
}

// NewRootCmd creates the top-level "kiosk" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "kiosk",
		Short: "Custody and trading of uniquely owned assets",
		Long: "Kiosk stores collectibles in per-owner kiosks, lists them for sale\n" +
			"and records proceeds. Owner caps are kept in the wallet file of the\n" +
			"configuration directory.",
		Version:           Version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.kiosk-db)")
	pf.StringVar(&a.flags.backend, "backend", "", "storage backend: sqlite, pebble or memory")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(
		newVersionCmd(),
		a.newInitCmd(),
		a.newCreateCmd(),
		a.newPlaceCmd(),
		a.newListCmd(),
		a.newDelistCmd(),
		a.newPurchaseCmd(),
		a.newTakeCmd(),
		a.newWithdrawCmd(),
		a.newShowCmd(),
		a.newCloseCmd(),
		a.newExportCmd(),
		a.newImportCmd(),
	)
	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(exitCode(err))
	}
	os.Exit(exitSuccess)
}

// setup resolves the configuration directory, loads config.yaml and
// installs the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	dir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysErr(fmt.Errorf("resolve config dir: %w", err))
	}
	v, err := loadConfig(dir)
	if err != nil {
		return sysErr(err)
	}
	a.configDir = dir
	a.config = v

	level := a.flags.logLevel
	if level == "" {
		level = v.GetString(cfgKeyLogLevel)
	}
	lvl, err := logger.ParseLevel(level)
	if err != nil {
		return err
	}
	logger.Init(cmd.ErrOrStderr(), lvl)
	logger.Debug("config loaded", "dir", dir, "file", v.ConfigFileUsed())
	return nil
}

// systemError marks failures of the environment rather than of the
// request, such as unreadable files or a broken store.
type systemError struct {
	err error
}

func (e *systemError) Error() string { return e.err.Error() }

func (e *systemError) Unwrap() error { return e.err }

func sysErr(err error) error {
	if err == nil {
		return nil
	}
	return &systemError{err: err}
}

func exitCode(err error) int {
	var se *systemError
	if errors.As(err, &se) {
		return exitSysError
	}
	return exitUserError
}
