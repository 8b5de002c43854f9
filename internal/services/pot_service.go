package services

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/raiyan37/Centinel/internal/amqp"
	"github.com/raiyan37/Centinel/internal/core"
)

// PotService manages savings pots and moves money between them and the
// account balance.
type PotService struct {
	*Ledger
}

func NewPotService(l *Ledger) *PotService {
	return &PotService{Ledger: l}
}

func (s *PotService) List(ctx context.Context) ([]core.PotView, error) {
	sc, err := s.scope(ctx)
	if err != nil {
		return nil, err
	}
	pots, err := sc.ListPots(ctx, 0)
	if err != nil {
		return nil, err
	}
	return potViews(pots), nil
}

func (s *PotService) Get(ctx context.Context, id string) (core.PotView, error) {
	sc, err := s.scope(ctx)
	if err != nil {
		return core.PotView{}, err
	}
	p, err := sc.GetPot(ctx, id)
	if err != nil {
		return core.PotView{}, err
	}
	return core.NewPotView(p), nil
}

func (s *PotService) Create(ctx context.Context, p core.Pot) (core.PotView, error) {
	sc, err := s.scope(ctx)
	if err != nil {
		return core.PotView{}, err
	}
	created, err := sc.CreatePot(ctx, p)
	if err != nil {
		return core.PotView{}, err
	}

	slog.InfoContext(ctx, "Pot created", "account_id", sc.AccountID(), "pot_id", created.ID)
	s.notifier.Notify(ctx, amqp.PotCreated, sc.AccountID(), created.ID)
	return core.NewPotView(created), nil
}

func (s *PotService) Update(ctx context.Context, id string, patch core.PotPatch) (core.PotView, error) {
	sc, err := s.scope(ctx)
	if err != nil {
		return core.PotView{}, err
	}
	updated, err := sc.UpdatePot(ctx, id, patch)
	if err != nil {
		return core.PotView{}, err
	}

	slog.InfoContext(ctx, "Pot updated", "account_id", sc.AccountID(), "pot_id", id)
	s.notifier.Notify(ctx, amqp.PotUpdated, sc.AccountID(), id)
	return core.NewPotView(updated), nil
}

// Deposit moves amount from the balance into the pot.
func (s *PotService) Deposit(ctx context.Context, id string, amount decimal.Decimal) (core.TransferResult, error) {
	sc, err := s.scope(ctx)
	if err != nil {
		return core.TransferResult{}, err
	}
	pot, balance, err := sc.Deposit(ctx, id, amount)
	if err != nil {
		return core.TransferResult{}, err
	}

	s.notifier.Notify(ctx, amqp.PotDeposited, sc.AccountID(), id)
	view := core.NewPotView(pot)
	return core.TransferResult{Pot: &view, Balance: balance}, nil
}

// Withdraw moves amount from the pot back into the balance.
func (s *PotService) Withdraw(ctx context.Context, id string, amount decimal.Decimal) (core.TransferResult, error) {
	sc, err := s.scope(ctx)
	if err != nil {
		return core.TransferResult{}, err
	}
	pot, balance, err := sc.Withdraw(ctx, id, amount)
	if err != nil {
		return core.TransferResult{}, err
	}

	s.notifier.Notify(ctx, amqp.PotWithdrawn, sc.AccountID(), id)
	view := core.NewPotView(pot)
	return core.TransferResult{Pot: &view, Balance: balance}, nil
}

// Delete removes the pot after returning its total to the balance.
func (s *PotService) Delete(ctx context.Context, id string) (core.TransferResult, error) {
	sc, err := s.scope(ctx)
	if err != nil {
		return core.TransferResult{}, err
	}
	balance, err := sc.DeletePot(ctx, id)
	if err != nil {
		return core.TransferResult{}, err
	}

	s.notifier.Notify(ctx, amqp.PotDeleted, sc.AccountID(), id)
	return core.TransferResult{Balance: balance}, nil
}

func potViews(pots []core.Pot) []core.PotView {
	out := make([]core.PotView, 0, len(pots))
	for _, p := range pots {
		out = append(out, core.NewPotView(p))
	}
	return out
}
