package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kiosk/internal/paths"
)

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize kiosk configuration and storage",
		Long:  "Create the configuration directory and config.yaml, then attach and detach\nthe storage backend so its data directory is initialized.",
		Args:  cobra.NoArgs,
		RunE:  a.runInit,
	}
}

func (a *app) runInit(cmd *cobra.Command, _ []string) error {
	if err := os.MkdirAll(a.configDir, 0o755); err != nil {
		return sysErr(fmt.Errorf("create config directory: %w", err))
	}

	cfg, err := a.storeConfig()
	if err != nil {
		return err
	}
	written, err := writeConfigIfMissing(a.configDir, configFile{
		Backend: cfg.Backend,
		DataDir: cfg.DataDir,
		Sender:  a.sender(),
	})
	if err != nil {
		return sysErr(fmt.Errorf("write config: %w", err))
	}

	s, err := a.openStore()
	if err != nil {
		return err
	}
	if err := s.Detach(); err != nil {
		return sysErr(fmt.Errorf("finalize storage: %w", err))
	}

	out := cmd.OutOrStdout()
	if written {
		fmt.Fprintf(out, "Wrote %s\n", paths.ConfigFile(a.configDir))
	}
	location, err := paths.StorePath(cfg)
	if err != nil {
		return err
	}
	if location == "" {
		fmt.Fprintf(out, "Kiosk storage initialized (%s)\n", cfg.Backend)
	} else {
		fmt.Fprintf(out, "Kiosk storage initialized (%s at %s)\n", cfg.Backend, location)
	}
	return nil
}
