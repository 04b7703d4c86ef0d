package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func (a *app) newCloseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close <kiosk>",
		Short: "Delete an empty kiosk and withdraw its proceeds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, err := a.openSession()
			if err != nil {
				return err
			}
			defer s.closeWith(&err)

			k, cap, err := s.owned(args[0])
			if err != nil {
				return err
			}
			out, err := k.Close(cap)
			if err != nil {
				return err
			}
			s.wallet.remove(k.ID())
			if err := s.wallet.save(); err != nil {
				return sysErr(err)
			}

			view := struct {
				ID       string `json:"id"`
				Proceeds uint64 `json:"proceeds"`
			}{k.ID().String(), out.Value()}
			return a.emit(cmd, view, func(w io.Writer) {
				fmt.Fprintf(w, "Closed %s, proceeds %d\n", view.ID, view.Proceeds)
			})
		},
	}
}
