package policy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kiosk/pkg/linear"
	"github.com/mesh-intelligence/kiosk/pkg/types"
)

type sword struct{ ID types.ID }

func minPaid(min uint64) Rule[sword] {
	return RuleFunc[sword]{
		RuleName: "min_paid",
		Fn: func(req *TransferRequest[sword]) error {
			if req.Paid() < min {
				return errors.New("paid below minimum")
			}
			return nil
		},
	}
}

func TestConfirmWithoutRules(t *testing.T) {
	p, _ := New[sword]()
	l := linear.NewLedger()
	item, from := types.NewID(), types.NewID()

	req := NewRequest[sword](l, item, 100, from)
	assert.Len(t, l.Outstanding(), 1)

	receipt, err := p.Confirm(req)
	require.NoError(t, err)
	assert.Equal(t, Receipt{Policy: p.ID(), Item: item, Paid: 100, From: from}, receipt)
	assert.True(t, req.Confirmed())
	assert.NoError(t, l.Check())
	assert.Equal(t, uint64(1), p.Confirmed())
}

func TestConfirmTwiceFails(t *testing.T) {
	p, _ := New[sword]()
	req := NewRequest[sword](nil, types.NewID(), 1, types.NewID())

	_, err := p.Confirm(req)
	require.NoError(t, err)
	_, err = p.Confirm(req)
	assert.ErrorIs(t, err, linear.ErrConsumed)
}

func TestRuleFailureLeavesRequestOpen(t *testing.T) {
	p, cap := New[sword]()
	require.NoError(t, p.AddRule(cap, minPaid(50)))

	l := linear.NewLedger()
	req := NewRequest[sword](l, types.NewID(), 10, types.NewID())

	_, err := p.Confirm(req)
	assert.ErrorIs(t, err, ErrRuleFailed)
	assert.False(t, req.Confirmed())
	assert.ErrorIs(t, l.Check(), linear.ErrLeaked)

	require.NoError(t, p.RemoveRule(cap, "min_paid"))
	_, err = p.Confirm(req)
	require.NoError(t, err)
	assert.NoError(t, l.Check())
}

func TestRuleManagementRequiresCap(t *testing.T) {
	p, cap := New[sword]()
	_, otherCap := New[sword]()

	assert.ErrorIs(t, p.AddRule(otherCap, minPaid(1)), ErrNotPolicyOwner)
	assert.ErrorIs(t, p.AddRule(nil, minPaid(1)), ErrNotPolicyOwner)

	require.NoError(t, p.AddRule(cap, minPaid(1)))
	assert.ErrorIs(t, p.AddRule(cap, minPaid(2)), ErrRuleExists)
	assert.True(t, p.HasRule("min_paid"))
	assert.Equal(t, []string{"min_paid"}, p.Rules())

	assert.ErrorIs(t, p.RemoveRule(otherCap, "min_paid"), ErrNotPolicyOwner)
	assert.ErrorIs(t, p.RemoveRule(cap, "royalty"), ErrRuleNotFound)
}

func TestRequestAccessors(t *testing.T) {
	item, from := types.NewID(), types.NewID()
	req := NewRequest[sword](nil, item, 42, from)

	assert.Equal(t, item, req.Item())
	assert.Equal(t, uint64(42), req.Paid())
	assert.Equal(t, from, req.From())
	assert.Equal(t, "github.com/mesh-intelligence/kiosk/pkg/policy.sword", req.AssetType())
}
