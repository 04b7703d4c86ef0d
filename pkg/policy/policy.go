// Package policy resolves the transfer requests kiosks produce on sale.
//
// A Policy[T] holds the rules every transfer of a T must satisfy. Confirm
// evaluates them and consumes the request. Rule content (fees, royalties,
// allow-lists) is left to Rule implementations.
package policy

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/mesh-intelligence/kiosk/pkg/types"
)

// Policy errors.
var (
	ErrNotPolicyOwner = errors.New("policy cap does not match policy")
	ErrRuleExists     = errors.New("rule already set")
	ErrRuleNotFound   = errors.New("rule not found")
	ErrRuleFailed     = errors.New("transfer rule not satisfied")
)

// Rule checks one condition on a transfer request.
type Rule[T any] interface {
	Name() string
	Check(req *TransferRequest[T]) error
}

// RuleFunc adapts a function to a named Rule.
type RuleFunc[T any] struct {
	RuleName string
	Fn       func(req *TransferRequest[T]) error
}

// Name implements Rule.
func (r RuleFunc[T]) Name() string { return r.RuleName }

// Check implements Rule.
func (r RuleFunc[T]) Check(req *TransferRequest[T]) error { return r.Fn(req) }

// Policy is the transfer policy for asset type T. Its existence is the
// evidence kiosk.Lock requires before trapping an item behind sale-only
// exit.
type Policy[T any] struct {
	id types.ID

	mu        sync.RWMutex
	rules     map[string]Rule[T]
	confirmed uint64
}

// Cap authorizes rule changes on one Policy.
type Cap[T any] struct {
	id       types.ID
	policyID types.ID
}

// PolicyID returns the ID of the policy this cap controls.
func (c *Cap[T]) PolicyID() types.ID { return c.policyID }

// Receipt records a confirmed transfer.
type Receipt struct {
	Policy types.ID
	Item   types.ID
	Paid   uint64
	From   types.ID
}

// New creates an empty policy for T and the cap that manages it.
func New[T any]() (*Policy[T], *Cap[T]) {
	p := &Policy[T]{
		id:    types.NewID(),
		rules: make(map[string]Rule[T]),
	}
	return p, &Cap[T]{id: types.NewSecretID(), policyID: p.id}
}

// ID returns the policy identifier.
func (p *Policy[T]) ID() types.ID { return p.id }

// AddRule installs r. Returns ErrRuleExists if a rule of that name is set.
func (p *Policy[T]) AddRule(cap *Cap[T], r Rule[T]) error {
	if err := p.checkCap(cap); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.rules[r.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrRuleExists, r.Name())
	}
	p.rules[r.Name()] = r
	return nil
}

// RemoveRule uninstalls the named rule.
func (p *Policy[T]) RemoveRule(cap *Cap[T], name string) error {
	if err := p.checkCap(cap); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.rules[name]; !ok {
		return fmt.Errorf("%w: %s", ErrRuleNotFound, name)
	}
	delete(p.rules, name)
	return nil
}

// HasRule reports whether the named rule is installed.
func (p *Policy[T]) HasRule(name string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.rules[name]
	return ok
}

// Rules returns the installed rule names, sorted.
func (p *Policy[T]) Rules() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Sorted(maps.Keys(p.rules))
}

// Confirmed returns how many requests this policy has resolved.
func (p *Policy[T]) Confirmed() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.confirmed
}

// Confirm checks every rule against req and consumes it. If a rule fails
// the request stays unconsumed and the error wraps ErrRuleFailed.
// Returns linear.ErrConsumed if req was already confirmed.
func (p *Policy[T]) Confirm(req *TransferRequest[T]) (Receipt, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := req.tok.Spend(func() error {
		for _, name := range slices.Sorted(maps.Keys(p.rules)) {
			if err := p.rules[name].Check(req); err != nil {
				return fmt.Errorf("%w: %s: %w", ErrRuleFailed, name, err)
			}
		}
		return nil
	})
	if err != nil {
		return Receipt{}, err
	}

	p.confirmed++
	return Receipt{Policy: p.id, Item: req.item, Paid: req.paid, From: req.from}, nil
}

func (p *Policy[T]) checkCap(cap *Cap[T]) error {
	if cap == nil || cap.policyID != p.id {
		return ErrNotPolicyOwner
	}
	return nil
}
