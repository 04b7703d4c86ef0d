package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kiosk/pkg/catalog"
	"github.com/mesh-intelligence/kiosk/pkg/kiosk"
	"github.com/mesh-intelligence/kiosk/pkg/types"
)

// itemView is the printed form of a stored item.
type itemView struct {
	ID         string            `json:"id"`
	Name       string            `json:"name,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Locked     bool              `json:"locked"`
	Listed     bool              `json:"listed"`
	Exclusive  bool              `json:"exclusive"`
	Price      *uint64           `json:"price,omitempty"`
}

// kioskView is the printed form of a kiosk.
type kioskView struct {
	ID        string     `json:"id"`
	Owner     string     `json:"owner,omitempty"`
	Profits   uint64     `json:"profits"`
	ItemCount uint32     `json:"item_count"`
	Items     []itemView `json:"items"`
}

// emit prints v as indented JSON in --json mode, or calls text otherwise.
func (a *app) emit(cmd *cobra.Command, v any, text func(w io.Writer)) error {
	out := cmd.OutOrStdout()
	if a.flags.jsonMode {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal output: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}
	text(out)
	return nil
}

func collectibleView(c catalog.Collectible) itemView {
	return itemView{ID: c.ID.String(), Name: c.Name, Attributes: c.Attributes}
}

// describe builds the view of kiosk k. Item names are included when cap
// is non-nil.
func describe(k *kiosk.Kiosk, cap *kiosk.OwnerCap) (kioskView, error) {
	info, err := k.Info()
	if err != nil {
		return kioskView{}, err
	}
	view := kioskView{
		ID:        info.ID.String(),
		Owner:     info.Owner,
		Profits:   info.Profits,
		ItemCount: info.ItemCount,
		Items:     []itemView{},
	}

	ids, err := k.Items()
	if err != nil {
		return kioskView{}, err
	}
	for _, id := range ids {
		item, err := describeItem(k, cap, id)
		if err != nil {
			return kioskView{}, err
		}
		view.Items = append(view.Items, item)
	}
	return view, nil
}

func describeItem(k *kiosk.Kiosk, cap *kiosk.OwnerCap, id types.ID) (itemView, error) {
	item := itemView{ID: id.String()}
	if cap != nil {
		if c, err := kiosk.Borrow[catalog.Collectible](k, cap, id); err == nil {
			item = collectibleView(c)
		}
	}

	var err error
	if item.Locked, err = k.IsLocked(id); err != nil {
		return item, err
	}
	if item.Exclusive, err = k.IsListedExclusively(id); err != nil {
		return item, err
	}
	if item.Listed, err = k.IsListed(id); err != nil {
		return item, err
	}
	if item.Listed {
		price, err := k.Price(id)
		if err != nil {
			return item, err
		}
		item.Price = &price
	}
	return item, nil
}

func printKiosk(w io.Writer, v kioskView) {
	fmt.Fprintf(w, "Kiosk %s\n", v.ID)
	if v.Owner != "" {
		fmt.Fprintf(w, "  owner:   %s\n", v.Owner)
	}
	fmt.Fprintf(w, "  profits: %d\n", v.Profits)
	fmt.Fprintf(w, "  items:   %d\n", v.ItemCount)
	for _, it := range v.Items {
		fmt.Fprintf(w, "    %s %s%s\n", it.ID, displayName(it), itemState(it))
	}
}

func displayName(it itemView) string {
	if it.Name == "" {
		return "(unnamed)"
	}
	return catalog.Collectible{Name: it.Name, Attributes: it.Attributes}.String()
}

func itemState(it itemView) string {
	var flags []string
	if it.Locked {
		flags = append(flags, "locked")
	}
	if it.Exclusive {
		flags = append(flags, "listed exclusively")
	}
	if it.Price != nil {
		flags = append(flags, fmt.Sprintf("listed at %d", *it.Price))
	}
	if len(flags) == 0 {
		return ""
	}
	return " [" + strings.Join(flags, ", ") + "]"
}
