package services

import (
	"context"
	"log/slog"

	"github.com/raiyan37/Centinel/internal/amqp"
	"github.com/raiyan37/Centinel/internal/core"
)

// TransactionService runs transaction CRUD for the authenticated caller.
// Balance accrual happens inside the store, in the same database transaction
// as each write.
type TransactionService struct {
	*Ledger
}

func NewTransactionService(l *Ledger) *TransactionService {
	return &TransactionService{Ledger: l}
}

func (s *TransactionService) List(ctx context.Context, query core.TransactionQuery) (core.TransactionPage, error) {
	sc, err := s.scope(ctx)
	if err != nil {
		return core.TransactionPage{}, err
	}
	return sc.ListTransactions(ctx, query)
}

func (s *TransactionService) Get(ctx context.Context, id string) (core.Transaction, error) {
	sc, err := s.scope(ctx)
	if err != nil {
		return core.Transaction{}, err
	}
	return sc.GetTransaction(ctx, id)
}

func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	sc, err := s.scope(ctx)
	if err != nil {
		return core.Transaction{}, err
	}
	created, err := sc.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction created",
		"account_id", sc.AccountID(),
		"transaction_id", created.ID,
		"category", created.Category,
		"amount_cents", core.ToCents(created.Amount))
	s.notifier.Notify(ctx, amqp.TransactionCreated, sc.AccountID(), created.ID)
	return created, nil
}

func (s *TransactionService) Update(ctx context.Context, id string, patch core.TransactionPatch) (core.Transaction, error) {
	sc, err := s.scope(ctx)
	if err != nil {
		return core.Transaction{}, err
	}
	updated, err := sc.UpdateTransaction(ctx, id, patch)
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction updated", "account_id", sc.AccountID(), "transaction_id", id)
	s.notifier.Notify(ctx, amqp.TransactionUpdated, sc.AccountID(), id)
	return updated, nil
}

func (s *TransactionService) Delete(ctx context.Context, id string) error {
	sc, err := s.scope(ctx)
	if err != nil {
		return err
	}
	if err := sc.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Transaction deleted", "account_id", sc.AccountID(), "transaction_id", id)
	s.notifier.Notify(ctx, amqp.TransactionDeleted, sc.AccountID(), id)
	return nil
}
