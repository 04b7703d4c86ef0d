package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kiosk/internal/snapshot"
)

func (a *app) newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write every kiosk record to a JSONL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, err := a.openSession()
			if err != nil {
				return err
			}
			defer s.closeWith(&err)

			stats, err := snapshot.Export(s.store, args[0])
			if err != nil {
				return sysErr(err)
			}
			return a.emit(cmd, stats, func(w io.Writer) {
				fmt.Fprintf(w, "Exported %d records from %d kiosks to %s\n", stats.Records, stats.Kiosks, args[0])
			})
		},
	}
}

func (a *app) newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load kiosk records from a JSONL file",
		Long:  "Import loads a file written by export in one transaction. Records with\nthe same key are replaced. Owner caps are not part of the file; the\nwallet that exported it must be copied along.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, err := a.openSession()
			if err != nil {
				return err
			}
			defer s.closeWith(&err)

			stats, err := snapshot.Import(s.store, args[0])
			if err != nil {
				return sysErr(err)
			}
			return a.emit(cmd, stats, func(w io.Writer) {
				fmt.Fprintf(w, "Imported %d records into %d kiosks (%d skipped)\n", stats.Records, stats.Kiosks, stats.Skipped)
			})
		},
	}
}
