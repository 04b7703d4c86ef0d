package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/mesh-intelligence/kiosk/pkg/catalog"
	"github.com/mesh-intelligence/kiosk/pkg/events"
	"github.com/mesh-intelligence/kiosk/pkg/kiosk"
	"github.com/mesh-intelligence/kiosk/pkg/linear"
	"github.com/mesh-intelligence/kiosk/pkg/policy"
	"github.com/mesh-intelligence/kiosk/pkg/types"
)

// session is the attached store, wallet and token ledger of one command.
type session struct {
	app    *app
	store  types.Store
	wallet *wallet
	ledger *linear.Ledger
	policy *policy.Policy[catalog.Collectible]
}

// openSession attaches the store and loads the wallet. The caller must
// call close, which also reports any transfer request or loan the command
// left unresolved.
func (a *app) openSession() (*session, error) {
	w, err := loadWallet(a.configDir)
	if err != nil {
		return nil, sysErr(err)
	}
	s, err := a.openStore()
	if err != nil {
		return nil, err
	}
	// Sales made through the CLI are final once paid, so the policy has
	// no rules.
	p, _ := policy.New[catalog.Collectible]()
	return &session{app: a, store: s, wallet: w, ledger: linear.NewLedger(), policy: p}, nil
}

func (s *session) close() error {
	leaked := s.ledger.Check()
	if err := s.store.Detach(); err != nil {
		return errors.Join(leaked, sysErr(err))
	}
	return leaked
}

// closeWith closes the session and joins its errors to err.
func (s *session) closeWith(err *error) {
	*err = errors.Join(*err, s.close())
}

func (s *session) options() []kiosk.Option {
	return []kiosk.Option{
		kiosk.WithSender(s.app.sender()),
		kiosk.WithLedger(s.ledger),
		kiosk.WithEvents(events.LogSink{Logger: slog.Default(), Level: slog.LevelInfo}),
	}
}

// kiosk opens the kiosk whose ID is arg.
func (s *session) kiosk(arg string) (*kiosk.Kiosk, error) {
	id, err := parseID("kiosk", arg)
	if err != nil {
		return nil, err
	}
	return kiosk.Open(s.store, id, s.options()...)
}

// owned opens the kiosk whose ID is arg together with its owner cap from
// the wallet.
func (s *session) owned(arg string) (*kiosk.Kiosk, *kiosk.OwnerCap, error) {
	k, err := s.kiosk(arg)
	if err != nil {
		return nil, nil, err
	}
	capID, err := s.wallet.capID(k.ID())
	if err != nil {
		return nil, nil, err
	}
	cap, err := k.RecoverOwnerCap(capID)
	if err != nil {
		return nil, nil, fmt.Errorf("wallet entry for kiosk %s: %w", k.ID(), err)
	}
	return k, cap, nil
}

func parseID(what, arg string) (types.ID, error) {
	id, err := types.ParseID(arg)
	if err != nil {
		return types.NilID, fmt.Errorf("invalid %s id %q: %w", what, arg, err)
	}
	return id, nil
}

func parseAmount(arg string) (uint64, error) {
	v, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: must be a non-negative integer", arg)
	}
	return v, nil
}
