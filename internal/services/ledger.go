package services

import (
	"context"
	"fmt"
	"time"

	"github.com/raiyan37/Centinel/internal/amqp"
	"github.com/raiyan37/Centinel/internal/auth"
	"github.com/raiyan37/Centinel/internal/core"
	"github.com/raiyan37/Centinel/internal/storage"
)

// Publisher is the outbound side of the ledger event stream.
type Publisher interface {
	PublishLedgerEvent(ctx context.Context, event *amqp.LedgerEvent) error
}

// Ledger holds what every service shares: the store, the clock that defines
// the statement period, and the change notifier.
type Ledger struct {
	store    *storage.SQLiteRepository
	clock    core.Clock
	notifier *ChangeNotifier
}

func NewLedger(store *storage.SQLiteRepository, clock core.Clock, notifier *ChangeNotifier) *Ledger {
	if clock == nil {
		clock = core.SystemClock(time.UTC)
	}
	if notifier == nil {
		notifier = NewChangeNotifier(nil, nil)
	}
	return &Ledger{store: store, clock: clock, notifier: notifier}
}

// scope resolves the authenticated caller to the handle on their account.
func (l *Ledger) scope(ctx context.Context) (*storage.AccountScope, error) {
	userID, ok := auth.CallerFromContext(ctx)
	if !ok {
		return nil, core.ErrUnauthorized
	}
	acc, err := l.store.AccountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return l.store.Scope(acc.ID), nil
}

func (l *Ledger) period() core.Period {
	return core.PeriodAt(l.clock())
}

// AccountService exposes the caller's own account.
type AccountService struct {
	*Ledger
}

func NewAccountService(l *Ledger) *AccountService {
	return &AccountService{Ledger: l}
}

// Get returns the caller's account or NotFound when it was never provisioned.
func (s *AccountService) Get(ctx context.Context) (core.Account, error) {
	sc, err := s.scope(ctx)
	if err != nil {
		return core.Account{}, err
	}
	return sc.Account(ctx)
}

// Ensure provisions the caller's account on first use.
func (s *AccountService) Ensure(ctx context.Context) (core.Account, error) {
	userID, ok := auth.CallerFromContext(ctx)
	if !ok {
		return core.Account{}, core.ErrUnauthorized
	}
	acc, err := s.store.EnsureAccount(ctx, userID)
	if err != nil {
		return core.Account{}, fmt.Errorf("ensure account: %w", err)
	}
	return acc, nil
}
