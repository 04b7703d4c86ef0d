package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kiosk/pkg/catalog"
	"github.com/mesh-intelligence/kiosk/pkg/coin"
	"github.com/mesh-intelligence/kiosk/pkg/kiosk"
)

// purchaseView is the printed result of a purchase.
type purchaseView struct {
	Item   itemView `json:"item"`
	Paid   uint64   `json:"paid"`
	From   string   `json:"from"`
	Policy string   `json:"policy"`
	Into   string   `json:"into,omitempty"`
}

func (a *app) newPurchaseCmd() *cobra.Command {
	var into string

	cmd := &cobra.Command{
		Use:   "purchase <kiosk> <item> <payment>",
		Short: "Buy a listed item",
		Long: `Purchase pays for a listed item. The payment must equal the listed
price. The sale is confirmed against the transfer policy before the item
is handed over. With --into the item is placed in a kiosk you own.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			id, err := parseID("item", args[1])
			if err != nil {
				return err
			}
			payment, err := parseAmount(args[2])
			if err != nil {
				return err
			}

			s, err := a.openSession()
			if err != nil {
				return err
			}
			defer s.closeWith(&err)

			var dst *kiosk.Kiosk
			var dstCap *kiosk.OwnerCap
			if into != "" {
				if dst, dstCap, err = s.owned(into); err != nil {
					return err
				}
				held, err := dst.HasItem(id)
				if err != nil {
					return err
				}
				if held {
					return fmt.Errorf("kiosk %s cannot receive item %s: %w", dst.ID(), id, kiosk.ErrItemExists)
				}
			}

			k, err := s.kiosk(args[0])
			if err != nil {
				return err
			}
			item, req, err := kiosk.Purchase[catalog.Collectible](k, id, coin.New(payment))
			if err != nil {
				return err
			}
			receipt, err := s.policy.Confirm(req)
			if err != nil {
				return err
			}

			view := purchaseView{
				Item:   collectibleView(item),
				Paid:   receipt.Paid,
				From:   receipt.From.String(),
				Policy: receipt.Policy.String(),
			}
			if dst != nil {
				if err := kiosk.Place(dst, dstCap, item); err != nil {
					return fmt.Errorf("purchased item %s (%s) could not be placed in kiosk %s: %w", item.ID, item, dst.ID(), err)
				}
				view.Into = dst.ID().String()
			}
			return a.emit(cmd, view, func(w io.Writer) {
				fmt.Fprintf(w, "Bought %s %s for %d\n", item.ID, item, receipt.Paid)
				if view.Into != "" {
					fmt.Fprintf(w, "Placed in kiosk %s\n", view.Into)
				}
			})
		},
	}
	cmd.Flags().StringVar(&into, "into", "", "place the item in this kiosk from the wallet")
	return cmd
}
