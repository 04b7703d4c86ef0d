package coin

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoin(t *testing.T) {
	c, err := New(40).Join(New(60))
	require.NoError(t, err)
	assert.Equal(t, uint64(100), c.Value())

	_, err = New(math.MaxUint64).Join(New(1))
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestSplit(t *testing.T) {
	part, rest, err := New(100).Split(30)
	require.NoError(t, err)
	assert.Equal(t, uint64(30), part.Value())
	assert.Equal(t, uint64(70), rest.Value())

	_, rest, err = New(10).Split(11)
	assert.ErrorIs(t, err, ErrInsufficient)
	assert.Equal(t, uint64(10), rest.Value(), "failed split keeps the original value")
}

func TestCreditDebit(t *testing.T) {
	tests := []struct {
		name    string
		fn      func(uint64, uint64) (uint64, error)
		balance uint64
		amount  uint64
		want    uint64
		wantErr error
	}{
		{name: "credit", fn: Credit, balance: 5, amount: 7, want: 12},
		{name: "credit zero", fn: Credit, balance: 5, amount: 0, want: 5},
		{name: "credit overflow", fn: Credit, balance: math.MaxUint64, amount: 1, want: math.MaxUint64, wantErr: ErrOverflow},
		{name: "debit", fn: Debit, balance: 10, amount: 10, want: 0},
		{name: "debit insufficient", fn: Debit, balance: 10, amount: 11, want: 10, wantErr: ErrInsufficient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn(tt.balance, tt.amount)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
