package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kiosk/pkg/catalog"
	"github.com/mesh-intelligence/kiosk/pkg/kiosk"
)

func (a *app) newPlaceCmd() *cobra.Command {
	var price uint64
	var lock bool

	cmd := &cobra.Command{
		Use:   "place <kiosk> <name> [key=value...]",
		Short: "Place a new collectible in a kiosk",
		Long: `Place creates a collectible with the given name and attributes and
stores it in the kiosk. With --price it is listed for sale in the same
transaction. With --lock it can only leave the kiosk through a sale.

Example:
  kiosk place 0190... "Brass lamp" color=gold era=1920
  kiosk place 0190... Rug --price 40 --lock`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			attrs, err := catalog.ParseAttributes(args[2:])
			if err != nil {
				return err
			}
			item, err := catalog.New(args[1], attrs)
			if err != nil {
				return err
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

			listed := cmd.Flags().Changed("price")
			switch {
			case lock && listed:
				err = kiosk.LockAndList(k, cap, s.policy, item, price)
			case lock:
				err = kiosk.Lock(k, cap, s.policy, item)
			case listed:
				err = kiosk.PlaceAndList(k, cap, item, price)
			default:
				err = kiosk.Place(k, cap, item)
			}
			if err != nil {
				return err
			}

			view, err := describeItem(k, cap, item.ID)
			if err != nil {
				return err
			}
			return a.emit(cmd, view, func(w io.Writer) {
				fmt.Fprintln(w, item.ID)
			})
		},
	}
	cmd.Flags().Uint64Var(&price, "price", 0, "list the item at this price")
	cmd.Flags().BoolVar(&lock, "lock", false, "lock the item so it can only be sold")
	return cmd
}
