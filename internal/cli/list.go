package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kiosk/pkg/catalog"
	"github.com/mesh-intelligence/kiosk/pkg/kiosk"
)

func (a *app) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <kiosk> <item> <price>",
		Short: "List an item for sale",
		Long:  "List offers an item to any buyer at the given price. Listing a listed\nitem again changes its price.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			id, err := parseID("item", args[1])
			if err != nil {
				return err
			}
			price, err := parseAmount(args[2])
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
			if err := kiosk.List[catalog.Collectible](k, cap, id, price); err != nil {
				return err
			}

			view, err := describeItem(k, cap, id)
			if err != nil {
				return err
			}
			return a.emit(cmd, view, func(w io.Writer) {
				fmt.Fprintf(w, "Listed %s at %d\n", id, price)
			})
		},
	}
}

func (a *app) newDelistCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delist <kiosk> <item>",
		Short: "Withdraw an item from sale",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			id, err := parseID("item", args[1])
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
			if err := kiosk.Delist[catalog.Collectible](k, cap, id); err != nil {
				return err
			}

			view, err := describeItem(k, cap, id)
			if err != nil {
				return err
			}
			return a.emit(cmd, view, func(w io.Writer) {
				fmt.Fprintf(w, "Delisted %s\n", id)
			})
		},
	}
}
