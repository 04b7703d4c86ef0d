package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kiosk/pkg/catalog"
	"github.com/mesh-intelligence/kiosk/pkg/kiosk"
)

func (a *app) newTakeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "take <kiosk> <item>",
		Short: "Remove an item from a kiosk and print it",
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
			item, err := kiosk.Take[catalog.Collectible](k, cap, id)
			if err != nil {
				return err
			}

			return a.emit(cmd, collectibleView(item), func(w io.Writer) {
				fmt.Fprintf(w, "Took %s %s\n", item.ID, item)
			})
		},
	}
}
