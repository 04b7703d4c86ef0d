// Package linear provides single-use tokens and a ledger that reports
// tokens dropped without being consumed.
//
// Go has no linear types, so every must-consume value embeds a *Token.
// Consuming operations go through Spend, which marks the token used only
// if the operation succeeds; a second Spend returns ErrConsumed.
//
// Dropped tokens are caught twice. A token that becomes unreachable while
// unspent is logged at error level and counted by Dropped. Tokens
// registered with a Ledger also stay outstanding until spent, so
// Ledger.Check can fail the scope that leaked them.
package linear

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/mesh-intelligence/kiosk/internal/logger"
	"github.com/mesh-intelligence/kiosk/pkg/types"
)

// Token errors.
var (
	ErrConsumed = errors.New("token already consumed")
	ErrLeaked   = errors.New("tokens left unconsumed")
)

// Token is a single-use marker embedded in linear values.
type Token struct {
	id     types.ID
	kind   string
	ledger *Ledger
	state  *spendState
}

// spendState lives apart from its Token so the drop check can read it
// after the Token is unreachable.
type spendState struct {
	used atomic.Bool
}

// NewToken creates a token of the given kind and registers it with l.
// l may be nil, in which case only the drop check watches the token.
func NewToken(l *Ledger, kind string) *Token {
	t := newToken(kind, l)
	runtime.AddCleanup(t, checkDropped, dropCheck{id: t.id, kind: kind, state: t.state})
	if l != nil {
		l.open(t)
	}
	return t
}

// NewAffine creates a token that may be spent at most once but may also be
// dropped unspent, such as an owner capability a process re-issues at will.
func NewAffine(kind string) *Token {
	return newToken(kind, nil)
}

func newToken(kind string, l *Ledger) *Token {
	return &Token{id: types.NewID(), kind: kind, ledger: l, state: &spendState{}}
}

// ID returns the token identifier.
func (t *Token) ID() types.ID { return t.id }

// Kind returns the token kind, e.g. "transfer-request".
func (t *Token) Kind() string { return t.kind }

// Consumed reports whether the token has been spent.
func (t *Token) Consumed() bool {
	return t.state.used.Load()
}

// Spend runs fn with the token reserved. If fn fails the token is released
// and stays spendable; otherwise it is consumed and removed from its ledger.
// Returns ErrConsumed if the token was already spent or is being spent
// concurrently.
func (t *Token) Spend(fn func() error) error {
	if !t.state.used.CompareAndSwap(false, true) {
		return ErrConsumed
	}
	if err := fn(); err != nil {
		t.state.used.Store(false)
		return err
	}
	if t.ledger != nil {
		t.ledger.close(t)
	}
	return nil
}

type dropCheck struct {
	id    types.ID
	kind  string
	state *spendState
}

var drops = struct {
	mu     sync.Mutex
	byKind map[string]uint64
}{byKind: make(map[string]uint64)}

func checkDropped(d dropCheck) {
	if d.state.used.Load() {
		return
	}
	drops.mu.Lock()
	drops.byKind[d.kind]++
	drops.mu.Unlock()
	logger.Error("token dropped without being consumed", "kind", d.kind, "token", d.id)
}

// Dropped returns how many tokens of kind were garbage collected unspent
// since the process started.
func Dropped(kind string) uint64 {
	drops.mu.Lock()
	defer drops.mu.Unlock()
	return drops.byKind[kind]
}

// Entry describes an outstanding token.
type Entry struct {
	ID   types.ID
	Kind string
}

// Ledger tracks tokens that have been issued but not yet consumed.
// It is safe for concurrent use.
type Ledger struct {
	mu     sync.Mutex
	tokens map[types.ID]string
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{tokens: make(map[types.ID]string)}
}

func (l *Ledger) open(t *Token) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tokens[t.id] = t.kind
}

func (l *Ledger) close(t *Token) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.tokens, t.id)
}

// Outstanding returns the unconsumed tokens, ordered by ID.
func (l *Ledger) Outstanding() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]Entry, 0, len(l.tokens))
	for id, kind := range l.tokens {
		entries = append(entries, Entry{ID: id, Kind: kind})
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		return slices.Compare(a.ID[:], b.ID[:])
	})
	return entries
}

// Check returns an error wrapping ErrLeaked that names every outstanding
// token, or nil when all tokens were consumed. Call it on scope exit:
//
//	l := linear.NewLedger()
//	defer func() { err = errors.Join(err, l.Check()) }()
func (l *Ledger) Check() error {
	entries := l.Outstanding()
	if len(entries) == 0 {
		return nil
	}

	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprintf("%s %s", e.Kind, e.ID)
	}
	return fmt.Errorf("%w: %s", ErrLeaked, strings.Join(parts, ", "))
}
