package kiosk

import "errors"

// Error classes. Every operation error wraps exactly one class, so callers
// can match either the class or the specific error with errors.Is.
var (
	ErrAuthorization      = errors.New("authorization failed")
	ErrNotFound           = errors.New("not found")
	ErrStateConflict      = errors.New("state conflict")
	ErrAmountMismatch     = errors.New("amount mismatch")
	ErrIdentityMismatch   = errors.New("identity mismatch")
	ErrInvariantViolation = errors.New("invariant violation")
)

// kioskError is a specific failure belonging to a class.
type kioskError struct {
	msg   string
	class error
}

func (e *kioskError) Error() string { return e.msg }

func (e *kioskError) Unwrap() error { return e.class }

func newError(msg string, class error) error {
	return &kioskError{msg: msg, class: class}
}

// Authorization errors.
var (
	ErrNotOwner = newError("capability does not own this kiosk", ErrAuthorization)
)

// Lookup errors.
var (
	ErrItemNotFound   = newError("item not found", ErrNotFound)
	ErrKioskNotFound  = newError("kiosk not found", ErrNotFound)
	ErrPolicyRequired = newError("transfer policy required to lock an item", ErrNotFound)
)

// State transition errors.
var (
	ErrItemLocked        = newError("item is locked", ErrStateConflict)
	ErrListedExclusively = newError("item is listed exclusively", ErrStateConflict)
	ErrAlreadyListed     = newError("item is already listed", ErrStateConflict)
	ErrNotListed         = newError("item is not listed", ErrStateConflict)
	ErrItemIsListed      = newError("item is listed and cannot be mutated", ErrStateConflict)
	ErrItemExists        = newError("item is already in the kiosk", ErrStateConflict)
	ErrTokenConsumed     = newError("token already consumed", ErrStateConflict)
)

// Amount errors.
var (
	ErrIncorrectAmount = newError("payment does not match price", ErrAmountMismatch)
	ErrNotEnough       = newError("not enough proceeds", ErrAmountMismatch)
)

// Identity errors.
var (
	ErrWrongKiosk   = newError("token is bound to another kiosk", ErrIdentityMismatch)
	ErrItemMismatch = newError("item does not match token", ErrIdentityMismatch)
)

// Invariant errors.
var (
	ErrNotEmpty = newError("kiosk still holds items", ErrInvariantViolation)
)

// Counter guards. Reaching either means the stored header is corrupt.
var (
	errCountOverflow   = newError("item count overflow", ErrInvariantViolation)
	errCountUnderflow  = newError("item count underflow", ErrInvariantViolation)
	errProfitsOverflow = newError("proceeds overflow", ErrInvariantViolation)
)
