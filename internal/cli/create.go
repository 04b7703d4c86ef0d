package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kiosk/pkg/kiosk"
)

func (a *app) newCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "new",
		Aliases: []string{"create"},
		Short:   "Create a kiosk and store its owner cap in the wallet",
		Args:    cobra.NoArgs,
		RunE:    a.runCreate,
	}
}

func (a *app) runCreate(cmd *cobra.Command, _ []string) (err error) {
	s, err := a.openSession()
	if err != nil {
		return err
	}
	defer s.closeWith(&err)

	k, cap, err := kiosk.New(s.store, s.options()...)
	if err != nil {
		return err
	}
	s.wallet.put(cap)
	if err := s.wallet.save(); err != nil {
		return sysErr(err)
	}

	view := struct {
		ID    string `json:"id"`
		Owner string `json:"owner,omitempty"`
	}{ID: k.ID().String(), Owner: a.sender()}
	return a.emit(cmd, view, func(w io.Writer) {
		fmt.Fprintln(w, view.ID)
	})
}
