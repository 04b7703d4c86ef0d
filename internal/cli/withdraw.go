package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func (a *app) newWithdrawCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw <kiosk> [amount]",
		Short: "Withdraw proceeds from a kiosk",
		Long:  "Withdraw takes the given amount out of the kiosk proceeds, or all of\nthem when no amount is given.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			var amount *uint64
			if len(args) == 2 {
				v, err := parseAmount(args[1])
				if err != nil {
					return err
				}
				amount = &v
			}

			s, err := a.openSession()
			if err != nil {
				return err
			}
			defer s.closeWith(&err)

			k, cap, err := s.owned(args[0])
			if err != nil {
				return err
			}
			out, err := k.Withdraw(cap, amount)
			if err != nil {
				return err
			}
			rest, err := k.Profits()
			if err != nil {
				return err
			}

			view := struct {
				Withdrawn uint64 `json:"withdrawn"`
				Remaining uint64 `json:"remaining"`
			}{out.Value(), rest}
			return a.emit(cmd, view, func(w io.Writer) {
				fmt.Fprintf(w, "Withdrew %d, %d remaining\n", view.Withdrawn, view.Remaining)
			})
		},
	}
}
