package cli

import (
	"errors"
	"io"
	"slices"

	"github.com/spf13/cobra"
)

func (a *app) newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [kiosk]",
		Short: "Display a kiosk, or every kiosk in the wallet",
		Long: `Show prints the proceeds and items of a kiosk. Item names are shown
for kiosks whose owner cap is in the wallet. Without an argument every
kiosk in the wallet is shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, err := a.openSession()
			if err != nil {
				return err
			}
			defer s.closeWith(&err)

			targets := args
			if len(targets) == 0 {
				for id := range s.wallet.Kiosks {
					targets = append(targets, id)
				}
				slices.Sort(targets)
			}

			views := []kioskView{}
			for _, arg := range targets {
				v, err := s.show(arg)
				if err != nil {
					return err
				}
				views = append(views, v)
			}

			var out any = views
			if len(args) == 1 {
				out = views[0]
			}
			return a.emit(cmd, out, func(w io.Writer) {
				for _, v := range views {
					printKiosk(w, v)
				}
			})
		},
	}
}

func (s *session) show(arg string) (kioskView, error) {
	k, cap, err := s.owned(arg)
	if errors.Is(err, ErrNoOwnerCap) {
		k, err = s.kiosk(arg)
		cap = nil
	}
	if err != nil {
		return kioskView{}, err
	}
	return describe(k, cap)
}
