package policy

import (
	"github.com/mesh-intelligence/kiosk/internal/codec"
	"github.com/mesh-intelligence/kiosk/pkg/linear"
	"github.com/mesh-intelligence/kiosk/pkg/types"
)

// RequestToken is the linear token kind of a TransferRequest.
const RequestToken = "transfer-request"

// TransferRequest is the handshake produced by every sale of a T. It carries
// no authority; it must be passed to Policy.Confirm exactly once before the
// acquisition counts as final.
type TransferRequest[T any] struct {
	item types.ID
	paid uint64
	from types.ID
	tok  *linear.Token
}

// NewRequest creates a transfer request for item, sold for paid by the
// kiosk from. If l is non-nil the request is tracked until confirmed.
func NewRequest[T any](l *linear.Ledger, item types.ID, paid uint64, from types.ID) *TransferRequest[T] {
	return &TransferRequest[T]{
		item: item,
		paid: paid,
		from: from,
		tok:  linear.NewToken(l, RequestToken),
	}
}

// Item returns the ID of the transferred item.
func (r *TransferRequest[T]) Item() types.ID { return r.item }

// Paid returns the amount paid for the item.
func (r *TransferRequest[T]) Paid() uint64 { return r.paid }

// From returns the ID of the kiosk the item left.
func (r *TransferRequest[T]) From() types.ID { return r.from }

// AssetType returns the type tag of T.
func (r *TransferRequest[T]) AssetType() string { return codec.TypeTag[T]() }

// Confirmed reports whether the request has been resolved.
func (r *TransferRequest[T]) Confirmed() bool { return r.tok.Consumed() }
