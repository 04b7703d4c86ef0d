package kiosk

import (
	"github.com/mesh-intelligence/kiosk/pkg/linear"
	"github.com/mesh-intelligence/kiosk/pkg/types"
)

// Linear token kinds.
const (
	OwnerCapToken    = "owner-cap"
	PurchaseCapToken = "purchase-cap"
	LoanToken        = "loan"
)

// OwnerCap proves the right to manage one kiosk. Its fields are unexported,
// so only New and RecoverOwnerCap can issue one.
type OwnerCap struct {
	id    types.ID
	kiosk types.ID
	tok   *linear.Token
}

func newOwnerCap(id, kiosk types.ID) *OwnerCap {
	return &OwnerCap{id: id, kiosk: kiosk, tok: linear.NewAffine(OwnerCapToken)}
}

// ID returns the capability identifier. Knowing it allows RecoverOwnerCap,
// so treat it as a secret.
func (c *OwnerCap) ID() types.ID { return c.id }

// For returns the ID of the kiosk this cap manages.
func (c *OwnerCap) For() types.ID { return c.kiosk }

// PurchaseCap grants the sole right to buy one exclusively listed item at or
// above MinPrice. Losing it leaves the item stranded in the kiosk.
type PurchaseCap[T Asset] struct {
	id       types.ID
	kiosk    types.ID
	item     types.ID
	minPrice uint64
	tok      *linear.Token
}

// ID returns the capability identifier.
func (c *PurchaseCap[T]) ID() types.ID { return c.id }

// Kiosk returns the ID of the kiosk holding the item.
func (c *PurchaseCap[T]) Kiosk() types.ID { return c.kiosk }

// Item returns the ID of the listed item.
func (c *PurchaseCap[T]) Item() types.ID { return c.item }

// MinPrice returns the floor price.
func (c *PurchaseCap[T]) MinPrice() uint64 { return c.minPrice }

// Consumed reports whether the cap was used or returned.
func (c *PurchaseCap[T]) Consumed() bool { return c.tok.Consumed() }

// Loan is the receipt for an item taken out with BorrowVal. The only way
// to discharge it is ReturnVal with the same item and kiosk.
type Loan struct {
	kiosk types.ID
	item  types.ID
	tok   *linear.Token
}

// Kiosk returns the ID of the kiosk the item came from.
func (l *Loan) Kiosk() types.ID { return l.kiosk }

// Item returns the ID of the borrowed item.
func (l *Loan) Item() types.ID { return l.item }

// Returned reports whether the item has been returned.
func (l *Loan) Returned() bool { return l.tok.Consumed() }
