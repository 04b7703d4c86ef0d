// Package coin is the monetary balance used for payments and kiosk proceeds.
package coin

import (
	"errors"
	"fmt"
)

// Balance errors.
var (
	ErrOverflow     = errors.New("balance overflow")
	ErrInsufficient = errors.New("insufficient balance")
)

// Coin is a payment of a fixed amount.
type Coin struct {
	value uint64
}

// New returns a coin worth value.
func New(value uint64) Coin {
	return Coin{value: value}
}

// Zero returns an empty coin.
func Zero() Coin {
	return Coin{}
}

// Value returns the coin amount.
func (c Coin) Value() uint64 {
	return c.value
}

// Join merges two coins. Returns ErrOverflow if the sum wraps.
func (c Coin) Join(other Coin) (Coin, error) {
	sum, err := Credit(c.value, other.value)
	if err != nil {
		return Coin{}, err
	}
	return Coin{value: sum}, nil
}

// Split takes amount out of c and returns the split coin and the remainder.
// Returns ErrInsufficient if amount exceeds the coin value.
func (c Coin) Split(amount uint64) (Coin, Coin, error) {
	rest, err := Debit(c.value, amount)
	if err != nil {
		return Coin{}, c, err
	}
	return Coin{value: amount}, Coin{value: rest}, nil
}

// String renders the coin amount.
func (c Coin) String() string {
	return fmt.Sprintf("%d", c.value)
}

// Credit adds amount to balance.
// Overflow check: balance + amount must not wrap.
func Credit(balance, amount uint64) (uint64, error) {
	sum := balance + amount
	if sum < balance {
		return balance, fmt.Errorf("%w: balance=%d + amount=%d wraps", ErrOverflow, balance, amount)
	}
	return sum, nil
}

// Debit subtracts amount from balance.
func Debit(balance, amount uint64) (uint64, error) {
	if amount > balance {
		return balance, fmt.Errorf("%w: balance=%d < amount=%d", ErrInsufficient, balance, amount)
	}
	return balance - amount, nil
}
